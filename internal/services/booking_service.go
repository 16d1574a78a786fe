package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/jinzhu/now"

	"travelbook_app/internal/config"
	"travelbook_app/internal/models"
	"travelbook_app/internal/repository"
)

// Task names the booking flow enqueues for the background worker
const (
	TaskSendBookingEmail    = "send_booking_email"
	TaskExpireStaleBookings = "expire_stale_bookings"
)

// Email templates understood by the notification task
const (
	EmailTemplateConfirmation    = "confirmation"
	EmailTemplatePaymentReminder = "payment_reminder"
)

// BookingService owns the booking state machine: the (status,
// payment_status) pair, who may move it, and how gateway callbacks are
// reconciled. Every transition is a conditional update against the payment
// status the caller last observed; a blind overwrite of the paid marker is
// not possible through this service.
type BookingService struct {
	bookings repository.BookingRepository
	packages repository.PackageRepository
	sessions repository.SessionRepository
	payments repository.PaymentRecordRepository
	audits   repository.AuditRepository
	users    repository.UserRepository
	tasks    repository.TaskScheduler
	gateway  CheckoutGateway
	cfg      *config.Config
}

// NewBookingService wires the lifecycle manager
func NewBookingService(
	bookings repository.BookingRepository,
	packages repository.PackageRepository,
	sessions repository.SessionRepository,
	payments repository.PaymentRecordRepository,
	audits repository.AuditRepository,
	users repository.UserRepository,
	tasks repository.TaskScheduler,
	gateway CheckoutGateway,
	cfg *config.Config,
) *BookingService {
	return &BookingService{
		bookings: bookings,
		packages: packages,
		sessions: sessions,
		payments: payments,
		audits:   audits,
		users:    users,
		tasks:    tasks,
		gateway:  gateway,
		cfg:      cfg,
	}
}

// CreateBookingInput is the customer-facing booking creation request
type CreateBookingInput struct {
	UserID          uint
	PackageID       uint
	BookingDate     time.Time
	NumberOfPeople  int
	SpecialRequests string
}

// CreateBooking validates the request, snapshots the package price and
// persists a new booking in state (pending, pending)
func (s *BookingService) CreateBooking(ctx context.Context, input CreateBookingInput) (*models.Booking, error) {
	if input.NumberOfPeople < 1 || input.NumberOfPeople > s.cfg.MaxPartySize {
		return nil, fmt.Errorf("%w: number of people must be between 1 and %d", ErrValidation, s.cfg.MaxPartySize)
	}
	if input.BookingDate.IsZero() {
		return nil, fmt.Errorf("%w: booking date is required", ErrValidation)
	}

	pkg, err := s.packages.GetByID(ctx, input.PackageID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: package %d", ErrNotFound, input.PackageID)
		}
		return nil, err
	}
	if !pkg.IsActive {
		return nil, fmt.Errorf("%w: package is not available for booking", ErrValidation)
	}

	bookingDate := now.New(input.BookingDate).BeginningOfDay()
	if !pkg.IsBookableOn(bookingDate) {
		return nil, fmt.Errorf("%w: package has no departure on %s", ErrValidation, bookingDate.Format("2006-01-02"))
	}

	unitPrice, err := UnitPrice(pkg)
	if err != nil {
		return nil, err
	}
	totalPrice, err := Total(unitPrice, input.NumberOfPeople)
	if err != nil {
		return nil, err
	}

	booking := &models.Booking{
		Reference:      uuid.NewString(),
		UserID:         input.UserID,
		PackageID:      input.PackageID,
		BookingDate:    bookingDate,
		NumberOfPeople: input.NumberOfPeople,
		UnitPrice:      unitPrice,
		TotalPrice:     totalPrice,
		Status:         models.BookingStatusPending,
		PaymentStatus:  models.PaymentStatusPending,
	}
	if input.SpecialRequests != "" {
		booking.SpecialRequests = &input.SpecialRequests
	}

	if err := s.bookings.Create(ctx, booking); err != nil {
		return nil, err
	}

	s.recordAudit(ctx, booking.ID, input.UserID, models.AuditSourceCheckout,
		models.BookingStatusPending, models.BookingStatusPending,
		models.PaymentStatusPending, models.PaymentStatusPending,
		"booking created")

	// Nudge the customer if payment is still outstanding tomorrow; the
	// task skips itself when the booking has moved on
	s.enqueueEmailAt(ctx, booking.ID, EmailTemplatePaymentReminder, time.Now().Add(24*time.Hour))

	return booking, nil
}

// InitiatePaymentResult is what the checkout UI needs to send the customer
// to the gateway
type InitiatePaymentResult struct {
	SessionID   string `json:"session_id"`
	Token       string `json:"token"`
	RedirectURL string `json:"redirect_url"`
	IsExisting  bool   `json:"is_existing"`
}

// InitiatePayment opens (or resumes) a gateway checkout session for the
// booking. Only the owner may call it, and only while payment is still
// pending; a paid booking must never be charged again.
func (s *BookingService) InitiatePayment(ctx context.Context, bookingID, requesterID uint, forceNew bool) (*InitiatePaymentResult, error) {
	booking, err := s.getBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if booking.UserID != requesterID {
		return nil, fmt.Errorf("%w: booking belongs to another user", ErrUnauthorized)
	}
	if booking.PaymentStatus != models.PaymentStatusPending {
		return nil, fmt.Errorf("%w: payment is already %s", ErrInvalidState, booking.PaymentStatus)
	}

	// Reconcile any session we already opened before creating another one
	existing, err := s.sessions.ActiveForBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		status, err := s.gateway.RetrieveSession(ctx, existing.OrderID)
		if err != nil {
			// Gateway lost or rejects the session; treat the local mirror
			// as broken and start over
			_ = s.sessions.Deactivate(ctx, existing.ID)
		} else {
			switch status.State {
			case SessionStatePaid:
				// The money already moved; the success callback will land
				// the transition. Refuse a second charge.
				return nil, fmt.Errorf("%w: payment already made", ErrInvalidState)
			case SessionStateExpired, SessionStateCancelled:
				_ = s.sessions.Deactivate(ctx, existing.ID)
			default:
				if forceNew {
					if err := s.gateway.CancelSession(ctx, existing.OrderID); err != nil {
						log.Printf("cancel of stale session %s failed: %v", existing.OrderID, err)
					}
					_ = s.sessions.Deactivate(ctx, existing.ID)
				} else {
					var cached CheckoutSession
					if err := json.Unmarshal(existing.ResponseMetadata, &cached); err == nil {
						return &InitiatePaymentResult{
							SessionID:   existing.OrderID,
							Token:       cached.Token,
							RedirectURL: cached.RedirectURL,
							IsExisting:  true,
						}, nil
					}
					_ = s.sessions.Deactivate(ctx, existing.ID)
				}
			}
		}
	}

	user, err := s.users.GetByID(ctx, booking.UserID)
	if err != nil {
		return nil, err
	}

	orderID := fmt.Sprintf("booking-%d-%d", booking.ID, time.Now().Unix())
	req := CreateSessionRequest{
		OrderID:       orderID,
		Amount:        booking.TotalPrice,
		Currency:      s.cfg.Currency,
		CustomerName:  user.Name,
		CustomerEmail: user.Email,
		ItemID:        fmt.Sprintf("package-%d", booking.PackageID),
		ItemName:      fmt.Sprintf("Booking for %s", booking.Package.Name),
		FinishURL:     s.cfg.PaymentFinishURL,
	}

	checkout, err := s.gateway.CreateSession(ctx, req)
	if err != nil {
		// Booking stays (pending, pending); the customer can retry
		return nil, err
	}

	reqBytes, _ := json.Marshal(req)
	respBytes, _ := json.Marshal(checkout)
	session := &models.PaymentSession{
		BookingID:        booking.ID,
		UserID:           booking.UserID,
		PaymentGateway:   models.PaymentGatewayMidtrans,
		OrderID:          orderID,
		Amount:           booking.TotalPrice,
		IsActive:         true,
		RequestMetadata:  reqBytes,
		ResponseMetadata: respBytes,
	}
	if err := s.sessions.Create(ctx, session); err != nil {
		return nil, err
	}
	if err := s.bookings.SetPaymentSessionID(ctx, booking.ID, orderID); err != nil {
		return nil, err
	}

	return &InitiatePaymentResult{
		SessionID:   orderID,
		Token:       checkout.Token,
		RedirectURL: checkout.RedirectURL,
	}, nil
}

// ConfirmPaymentFromCallback lands a gateway success signal. The session
// status is always re-verified with the gateway; the query parameters the
// customer's browser carried back are never trusted. Idempotent: confirming
// an already-paid booking returns it unchanged.
func (s *BookingService) ConfirmPaymentFromCallback(ctx context.Context, sessionID string, bookingID uint) (*models.Booking, error) {
	booking, err := s.getBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	session, err := s.sessions.GetByOrderID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			// A session id we never issued. Say nothing about the booking.
			return nil, ErrSecurityViolation
		}
		return nil, err
	}
	if session.BookingID != booking.ID || session.UserID != booking.UserID {
		return nil, ErrSecurityViolation
	}

	if booking.PaymentStatus == models.PaymentStatusPaid {
		return booking, nil
	}

	status, err := s.gateway.RetrieveSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if status.State != SessionStatePaid {
		return nil, fmt.Errorf("%w: gateway reports session as %s", ErrPaymentNotCompleted, status.State)
	}

	return s.applyPaid(ctx, booking, session, status, models.AuditSourceCallback)
}

// applyPaid moves a booking to (confirmed, paid) via conditional update and
// performs the paid side effects exactly once. The gateway has already
// vouched for the payment when this is called.
func (s *BookingService) applyPaid(ctx context.Context, booking *models.Booking, session *models.PaymentSession, status *SessionStatus, source models.AuditSource) (*models.Booking, error) {
	paidAt := time.Now()
	updates := map[string]interface{}{
		"status":         models.BookingStatusConfirmed,
		"payment_status": models.PaymentStatusPaid,
		"transaction_id": status.TransactionID,
		"paid_at":        paidAt,
	}

	fromStatus, fromPayment := booking.Status, booking.PaymentStatus
	ok, err := s.bookings.TransitionIfPaymentStatus(ctx, booking.ID, booking.PaymentStatus, updates)
	if err != nil {
		return nil, err
	}
	if !ok {
		current, err := s.getBooking(ctx, booking.ID)
		if err != nil {
			return nil, err
		}
		if current.PaymentStatus == models.PaymentStatusPaid {
			// A concurrent confirmation won the race; nothing left to do
			return current, nil
		}
		// The booking moved under us (e.g. a cancel landed first), but the
		// gateway vouches for the money. A verified payment outranks a
		// local cancel, so retry from the state we just observed.
		fromStatus, fromPayment = current.Status, current.PaymentStatus
		ok, err = s.bookings.TransitionIfPaymentStatus(ctx, booking.ID, current.PaymentStatus, updates)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, fmt.Errorf("%w: booking state changed during confirmation", ErrInvalidState)
		}
	}

	s.recordAudit(ctx, booking.ID, 0, source,
		fromStatus, models.BookingStatusConfirmed,
		fromPayment, models.PaymentStatusPaid,
		fmt.Sprintf("gateway session %s verified paid", session.OrderID))

	payment := &models.PaymentRecord{
		BookingID:      booking.ID,
		UserID:         booking.UserID,
		TotalPay:       booking.TotalPrice,
		PaymentGateway: session.PaymentGateway,
		ChannelPayment: status.PaymentChannel,
		TransactionID:  status.TransactionID,
		PaymentDate:    paidAt,
	}
	if err := s.payments.Record(ctx, payment); err != nil {
		log.Printf("payment record for booking %d failed: %v", booking.ID, err)
	}
	if err := s.sessions.Deactivate(ctx, session.ID); err != nil {
		log.Printf("session deactivate for booking %d failed: %v", booking.ID, err)
	}
	s.enqueueEmail(ctx, booking.ID, EmailTemplateConfirmation)

	return s.getBooking(ctx, booking.ID)
}

// CancelPayment lands a gateway cancel signal; source says which path
// delivered it (redirect callback or webhook). A booking that is already
// paid is returned unchanged: a stale cancel arriving after a success must
// never downgrade the paid marker.
func (s *BookingService) CancelPayment(ctx context.Context, bookingID uint, source models.AuditSource) (*models.Booking, error) {
	return s.closePending(ctx, bookingID, models.PaymentStatusCancelled, source, "gateway cancel")
}

// MarkPaymentFailed lands a gateway deny/failure signal, with the same
// paid-booking guard as CancelPayment
func (s *BookingService) MarkPaymentFailed(ctx context.Context, bookingID uint) (*models.Booking, error) {
	return s.closePending(ctx, bookingID, models.PaymentStatusFailed, models.AuditSourceWebhook, "gateway reported failure")
}

func (s *BookingService) closePending(ctx context.Context, bookingID uint, target models.PaymentStatus, source models.AuditSource, note string) (*models.Booking, error) {
	booking, err := s.getBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if booking.PaymentStatus == models.PaymentStatusPaid {
		return booking, nil
	}

	updates := map[string]interface{}{
		"status":         models.BookingStatusCancelled,
		"payment_status": target,
	}
	ok, err := s.bookings.TransitionIfPaymentStatus(ctx, booking.ID, booking.PaymentStatus, updates)
	if err != nil {
		return nil, err
	}
	if !ok {
		// Raced against another transition; whatever landed (possibly a
		// verified payment) stands
		return s.getBooking(ctx, booking.ID)
	}

	s.recordAudit(ctx, booking.ID, 0, source,
		booking.Status, models.BookingStatusCancelled,
		booking.PaymentStatus, target, note)

	if session, err := s.sessions.ActiveForBooking(ctx, bookingID); err == nil && session != nil {
		_ = s.sessions.Deactivate(ctx, session.ID)
	}

	return s.getBooking(ctx, booking.ID)
}

// UpdateStatus is the admin override path: it applies any syntactically
// valid status pair directly, bypassing the normal-flow guards. This is the
// only code path allowed to force terminal states backwards, and every call
// is audited.
func (s *BookingService) UpdateStatus(ctx context.Context, bookingID, requesterID uint, newStatus *models.BookingStatus, newPaymentStatus *models.PaymentStatus) (*models.Booking, error) {
	isAdmin, err := s.users.IsAdmin(ctx, requesterID)
	if err != nil {
		return nil, err
	}
	if !isAdmin {
		return nil, fmt.Errorf("%w: admin privilege required", ErrUnauthorized)
	}

	if newStatus == nil && newPaymentStatus == nil {
		return nil, fmt.Errorf("%w: nothing to update", ErrValidation)
	}
	if newStatus != nil && !newStatus.Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", ErrValidation, *newStatus)
	}
	if newPaymentStatus != nil && !newPaymentStatus.Valid() {
		return nil, fmt.Errorf("%w: unknown payment status %q", ErrValidation, *newPaymentStatus)
	}

	booking, err := s.getBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	// Only the supplied fields are written, and only against the payment
	// status just observed. A transition landing in between (say a gateway
	// confirmation) keeps its fields; the override re-applies on top of it.
	updates := map[string]interface{}{}
	if newStatus != nil {
		updates["status"] = *newStatus
	}
	if newPaymentStatus != nil {
		updates["payment_status"] = *newPaymentStatus
	}

	fromStatus, fromPayment := booking.Status, booking.PaymentStatus
	if newPaymentStatus != nil && *newPaymentStatus == models.PaymentStatusPaid && booking.PaidAt == nil {
		updates["paid_at"] = time.Now()
	}
	ok, err := s.bookings.TransitionIfPaymentStatus(ctx, booking.ID, fromPayment, updates)
	if err != nil {
		return nil, err
	}
	if !ok {
		current, err := s.getBooking(ctx, booking.ID)
		if err != nil {
			return nil, err
		}
		fromStatus, fromPayment = current.Status, current.PaymentStatus
		if newPaymentStatus != nil && *newPaymentStatus == models.PaymentStatusPaid && current.PaidAt != nil {
			delete(updates, "paid_at")
		}
		ok, err = s.bookings.TransitionIfPaymentStatus(ctx, booking.ID, fromPayment, updates)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, fmt.Errorf("%w: booking state changed during override", ErrInvalidState)
		}
	}

	toStatus, toPayment := fromStatus, fromPayment
	if newStatus != nil {
		toStatus = *newStatus
	}
	if newPaymentStatus != nil {
		toPayment = *newPaymentStatus
	}
	s.recordAudit(ctx, booking.ID, requesterID, models.AuditSourceAdmin,
		fromStatus, toStatus,
		fromPayment, toPayment,
		"manual admin override")

	// Downgrading a paid booking means money must go back; leave a refund
	// trail for support to act on
	if fromPayment == models.PaymentStatusPaid && newPaymentStatus != nil && *newPaymentStatus != models.PaymentStatusPaid {
		refund := &models.Refund{
			BookingID:      booking.ID,
			UserID:         booking.UserID,
			TotalRefund:    booking.TotalPrice,
			PaymentGateway: models.PaymentGatewayMidtrans,
			Reason:         fmt.Sprintf("admin override %s -> %s", fromPayment, *newPaymentStatus),
			RefundDate:     time.Now(),
		}
		if record, err := s.payments.LatestForBooking(ctx, booking.ID); err == nil {
			refund.PaymentRecordID = record.ID
			refund.TotalRefund = record.TotalPay
		}
		if err := s.payments.RecordRefund(ctx, refund); err != nil {
			log.Printf("refund record for booking %d failed: %v", booking.ID, err)
		}
	}

	return s.getBooking(ctx, booking.ID)
}

// DeleteBooking hard-deletes a booking. Admin-only; an administrative
// data-retention action, not a lifecycle transition. The audit trail keeps
// its rows.
func (s *BookingService) DeleteBooking(ctx context.Context, bookingID, requesterID uint) error {
	isAdmin, err := s.users.IsAdmin(ctx, requesterID)
	if err != nil {
		return err
	}
	if !isAdmin {
		return fmt.Errorf("%w: admin privilege required", ErrUnauthorized)
	}

	booking, err := s.getBooking(ctx, bookingID)
	if err != nil {
		return err
	}

	if err := s.bookings.Delete(ctx, bookingID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fmt.Errorf("%w: booking %d", ErrNotFound, bookingID)
		}
		return err
	}

	s.recordAudit(ctx, bookingID, requesterID, models.AuditSourceAdmin,
		booking.Status, booking.Status,
		booking.PaymentStatus, booking.PaymentStatus,
		"booking hard-deleted")

	return nil
}

// GetBooking returns a booking to its owner or to an admin
func (s *BookingService) GetBooking(ctx context.Context, bookingID, requesterID uint) (*models.Booking, error) {
	booking, err := s.getBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if booking.UserID != requesterID {
		isAdmin, err := s.users.IsAdmin(ctx, requesterID)
		if err != nil {
			return nil, err
		}
		if !isAdmin {
			return nil, fmt.Errorf("%w: booking belongs to another user", ErrUnauthorized)
		}
	}
	return booking, nil
}

// ListUserBookings returns the requester's own bookings, newest first
func (s *BookingService) ListUserBookings(ctx context.Context, userID uint) ([]models.Booking, error) {
	return s.bookings.ListByUser(ctx, userID)
}

// InvoiceData is the snapshot an invoice renders from. Only paid bookings
// have one.
type InvoiceData struct {
	Reference      string     `json:"reference"`
	CustomerName   string     `json:"customer_name"`
	CustomerEmail  string     `json:"customer_email"`
	PackageName    string     `json:"package_name"`
	BookingDate    time.Time  `json:"booking_date"`
	NumberOfPeople int        `json:"number_of_people"`
	UnitPrice      float64    `json:"unit_price"`
	TotalPrice     float64    `json:"total_price"`
	Currency       string     `json:"currency"`
	TransactionID  string     `json:"transaction_id"`
	PaidAt         *time.Time `json:"paid_at"`
}

// Invoice builds the invoice snapshot for a paid booking; refuses otherwise
func (s *BookingService) Invoice(ctx context.Context, bookingID, requesterID uint) (*InvoiceData, error) {
	booking, err := s.GetBooking(ctx, bookingID, requesterID)
	if err != nil {
		return nil, err
	}
	if booking.PaymentStatus != models.PaymentStatusPaid {
		return nil, fmt.Errorf("%w: invoice requires a paid booking", ErrInvalidState)
	}

	user, err := s.users.GetByID(ctx, booking.UserID)
	if err != nil {
		return nil, err
	}

	transactionID := ""
	if booking.TransactionID != nil {
		transactionID = *booking.TransactionID
	}
	return &InvoiceData{
		Reference:      booking.Reference,
		CustomerName:   user.Name,
		CustomerEmail:  user.Email,
		PackageName:    booking.Package.Name,
		BookingDate:    booking.BookingDate,
		NumberOfPeople: booking.NumberOfPeople,
		UnitPrice:      booking.UnitPrice,
		TotalPrice:     booking.TotalPrice,
		Currency:       s.cfg.Currency,
		TransactionID:  transactionID,
		PaidAt:         booking.PaidAt,
	}, nil
}

// ExpireStalePending sweeps (pending, pending) bookings older than the
// configured TTL. Any open gateway session is checked first: a session that
// actually settled confirms the booking instead of expiring it.
func (s *BookingService) ExpireStalePending(ctx context.Context) (expired []models.Booking, confirmed []models.Booking, err error) {
	cutoff := time.Now().Add(-s.cfg.PendingBookingTTL)
	stale, err := s.bookings.ListStalePending(ctx, cutoff)
	if err != nil {
		return nil, nil, err
	}

	for i := range stale {
		booking := &stale[i]
		if ctx.Err() != nil {
			return expired, confirmed, ctx.Err()
		}

		session, err := s.sessions.ActiveForBooking(ctx, booking.ID)
		if err == nil && session != nil {
			status, err := s.gateway.RetrieveSession(ctx, session.OrderID)
			if err == nil && status.State == SessionStatePaid {
				if updated, err := s.applyPaid(ctx, booking, session, status, models.AuditSourceWorker); err == nil {
					confirmed = append(confirmed, *updated)
					continue
				} else {
					log.Printf("late confirmation of booking %d failed: %v", booking.ID, err)
					continue
				}
			}
		}

		updates := map[string]interface{}{
			"status":         models.BookingStatusCancelled,
			"payment_status": models.PaymentStatusCancelled,
		}
		ok, err := s.bookings.TransitionIfPaymentStatus(ctx, booking.ID, models.PaymentStatusPending, updates)
		if err != nil {
			log.Printf("expiry of booking %d failed: %v", booking.ID, err)
			continue
		}
		if !ok {
			continue
		}

		s.recordAudit(ctx, booking.ID, 0, models.AuditSourceWorker,
			booking.Status, models.BookingStatusCancelled,
			booking.PaymentStatus, models.PaymentStatusCancelled,
			"expired by stale-booking sweep")

		if session != nil {
			_ = s.sessions.Deactivate(ctx, session.ID)
		}
		expired = append(expired, *booking)
	}

	return expired, confirmed, nil
}

func (s *BookingService) getBooking(ctx context.Context, bookingID uint) (*models.Booking, error) {
	booking, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: booking %d", ErrNotFound, bookingID)
		}
		return nil, err
	}
	return booking, nil
}

// recordAudit appends to the audit trail; a failed audit write is logged
// but never fails the transition that already landed
func (s *BookingService) recordAudit(ctx context.Context, bookingID, actorID uint, source models.AuditSource,
	fromStatus, toStatus models.BookingStatus, fromPayment, toPayment models.PaymentStatus, note string) {
	entry := &models.BookingStatusAudit{
		BookingID:         bookingID,
		ActorID:           actorID,
		Source:            source,
		FromStatus:        fromStatus,
		ToStatus:          toStatus,
		FromPaymentStatus: fromPayment,
		ToPaymentStatus:   toPayment,
		Note:              note,
	}
	if err := s.audits.Record(ctx, entry); err != nil {
		log.Printf("audit record for booking %d failed: %v", bookingID, err)
	}
}

func (s *BookingService) enqueueEmail(ctx context.Context, bookingID uint, template string) {
	s.enqueueEmailAt(ctx, bookingID, template, time.Now())
}

func (s *BookingService) enqueueEmailAt(ctx context.Context, bookingID uint, template string, due time.Time) {
	task := &models.ScheduledTask{
		TaskName: TaskSendBookingEmail,
		Arguments: map[string]interface{}{
			"booking_id": bookingID,
			"template":   template,
		},
		Due:        due,
		Status:     models.ScheduledTaskStatusActive,
		TaskType:   models.ScheduledTaskTypeOneTime,
		MaxAttempt: 3,
	}
	if err := s.tasks.Enqueue(ctx, task); err != nil {
		log.Printf("email task enqueue for booking %d failed: %v", bookingID, err)
	}
}
