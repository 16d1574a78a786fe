package tasks

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"gorm.io/gorm"

	"travelbook_app/internal/models"
	"travelbook_app/internal/services"
)

// SendBookingEmailArgs defines the arguments for a booking e-mail task
type SendBookingEmailArgs struct {
	BookingID uint   `json:"booking_id"`
	Template  string `json:"template"`
}

// SendBookingEmailTaskDef sends booking lifecycle e-mails, honoring the
// recipient's notification preferences
type SendBookingEmailTaskDef struct{}

// TaskID returns the unique identifier for this task
func (t *SendBookingEmailTaskDef) TaskID() string {
	return services.TaskSendBookingEmail
}

// CreateTask builds a one-time e-mail task due at the given time
func (t *SendBookingEmailTaskDef) CreateTask(args SendBookingEmailArgs, due time.Time) (*models.ScheduledTask, error) {
	return BuildScheduledTask(t.TaskID(), args, due, nil, models.ScheduledTaskTypeOneTime, 3)
}

// HandleExecution loads the booking and sends the templated e-mail. A
// booking that has since moved past the state the template targets is
// skipped, not failed; so is a user who opted out.
func (t *SendBookingEmailTaskDef) HandleExecution(ctx context.Context, deps *Deps, task models.ScheduledTask) (map[string]interface{}, error) {
	bookingID, ok := uintArg(task.Arguments, "booking_id")
	if !ok {
		return nil, fmt.Errorf("booking_id not provided or invalid")
	}
	template, _ := task.Arguments["template"].(string)
	if template == "" {
		template = services.EmailTemplateConfirmation
	}

	var booking models.Booking
	err := deps.DB.WithContext(ctx).Preload("User").Preload("Package").First(&booking, bookingID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// Booking was deleted after the task was enqueued
			return map[string]interface{}{"status": "skipped", "reason": "booking not found"}, nil
		}
		return nil, fmt.Errorf("failed to fetch booking: %w", err)
	}

	pref := models.UserNotifPreference{BookingConfirmation: true, PaymentReminder: true}
	err = deps.DB.WithContext(ctx).Where("user_id = ?", booking.UserID).First(&pref).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to fetch preference: %w", err)
	}

	var subject, body string
	switch template {
	case services.EmailTemplateConfirmation:
		if !pref.BookingConfirmation {
			return map[string]interface{}{"status": "skipped", "reason": "user opted out"}, nil
		}
		if booking.PaymentStatus != models.PaymentStatusPaid {
			return map[string]interface{}{"status": "skipped", "reason": "booking not paid"}, nil
		}
		subject = fmt.Sprintf("Booking %s confirmed", booking.Reference)
		body = fmt.Sprintf(
			"Hi %s,\n\nYour booking for %s on %s is confirmed.\nTravelers: %d\nTotal paid: %.2f\n\nSafe travels!",
			booking.User.Name, booking.Package.Name,
			booking.BookingDate.Format("2 January 2006"),
			booking.NumberOfPeople, booking.TotalPrice)
	case services.EmailTemplatePaymentReminder:
		if !pref.PaymentReminder {
			return map[string]interface{}{"status": "skipped", "reason": "user opted out"}, nil
		}
		if booking.PaymentStatus != models.PaymentStatusPending {
			return map[string]interface{}{"status": "skipped", "reason": "payment no longer pending"}, nil
		}
		subject = fmt.Sprintf("Payment reminder for booking %s", booking.Reference)
		body = fmt.Sprintf(
			"Hi %s,\n\nYour booking for %s on %s is still awaiting payment of %.2f.\nUnpaid bookings are released automatically, so please complete your payment soon.",
			booking.User.Name, booking.Package.Name,
			booking.BookingDate.Format("2 January 2006"),
			booking.TotalPrice)
	default:
		return nil, fmt.Errorf("unknown email template: %s", template)
	}

	if err := deps.Email.SendEmail([]string{booking.User.Email}, subject, body); err != nil {
		log.Printf("Failed to send %s email for booking %s: %v", template, booking.Reference, err)
		return nil, err
	}

	return map[string]interface{}{
		"status":    "success",
		"template":  template,
		"recipient": booking.User.Email,
	}, nil
}

// SendBookingEmailTask is the singleton instance of SendBookingEmailTaskDef
var SendBookingEmailTask = &SendBookingEmailTaskDef{}
