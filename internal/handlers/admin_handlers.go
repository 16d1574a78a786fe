package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"travelbook_app/internal/middleware"
	"travelbook_app/internal/models"
	"travelbook_app/internal/services"
)

// AdminHandler handles the back-office booking endpoints
type AdminHandler struct {
	db             *gorm.DB
	bookingService *services.BookingService
}

// NewAdminHandler creates a new AdminHandler
func NewAdminHandler(db *gorm.DB, bookingService *services.BookingService) *AdminHandler {
	return &AdminHandler{db: db, bookingService: bookingService}
}

// BookingListResponse wraps a paginated booking listing
type BookingListResponse struct {
	Bookings   []models.Booking `json:"bookings"`
	Page       int              `json:"page"`
	PageSize   int              `json:"page_size"`
	TotalCount int64            `json:"total_count"`
	TotalPages int              `json:"total_pages"`
}

// ListBookings returns bookings with filtering, sorting and pagination
func (h *AdminHandler) ListBookings(c echo.Context) error {
	// Parse query parameters
	filterStatus := c.QueryParam("status")
	filterPaymentStatus := c.QueryParam("payment_status")
	filterUserStr := c.QueryParam("user_id")
	filterPackageStr := c.QueryParam("package_id")
	showCancelled := c.QueryParam("show_cancelled") == "true"
	sortBy := c.QueryParam("sort_by")
	if sortBy == "" {
		sortBy = "booking_date"
	}
	sortOrder := c.QueryParam("sort_order")
	if sortOrder != "asc" {
		sortOrder = "desc"
	}

	page := 1
	if pageStr := c.QueryParam("page"); pageStr != "" {
		if p, err := strconv.Atoi(pageStr); err == nil && p > 0 {
			page = p
		}
	}
	pageSize := 20

	// Build base query with filters
	query := h.db.WithContext(c.Request().Context()).
		Model(&models.Booking{}).
		Preload("User").
		Preload("Package")

	if filterStatus != "" {
		if !models.BookingStatus(filterStatus).Valid() {
			return echo.NewHTTPError(http.StatusBadRequest, "unknown status filter")
		}
		query = query.Where("status = ?", filterStatus)
	}
	if filterPaymentStatus != "" {
		if !models.PaymentStatus(filterPaymentStatus).Valid() {
			return echo.NewHTTPError(http.StatusBadRequest, "unknown payment status filter")
		}
		query = query.Where("payment_status = ?", filterPaymentStatus)
	}
	if filterUserStr != "" {
		if val, err := strconv.ParseUint(filterUserStr, 10, 32); err == nil {
			query = query.Where("user_id = ?", uint(val))
		}
	}
	if filterPackageStr != "" {
		if val, err := strconv.ParseUint(filterPackageStr, 10, 32); err == nil {
			query = query.Where("package_id = ?", uint(val))
		}
	}
	// Hide cancelled bookings by default
	if !showCancelled && filterStatus == "" {
		query = query.Where("status != ?", models.BookingStatusCancelled)
	}

	// Get total count for pagination
	var totalCount int64
	if err := query.Count(&totalCount).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to count bookings")
	}

	totalPages := int((totalCount + int64(pageSize) - 1) / int64(pageSize))
	if totalPages == 0 {
		totalPages = 1
	}
	if page > totalPages {
		page = totalPages
	}
	offset := (page - 1) * pageSize

	// Apply sorting
	switch sortBy {
	case "user":
		query = query.Joins("JOIN users ON users.id = bookings.user_id").
			Order("users.name " + sortOrder)
	case "package":
		query = query.Joins("JOIN tour_packages ON tour_packages.id = bookings.package_id").
			Order("tour_packages.name " + sortOrder)
	case "total_price":
		query = query.Order("total_price " + sortOrder)
	case "booking_date":
		query = query.Order("booking_date " + sortOrder)
	default:
		query = query.Order("id " + sortOrder)
	}

	var bookings []models.Booking
	if err := query.Limit(pageSize).Offset(offset).Find(&bookings).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to fetch bookings")
	}

	return c.JSON(http.StatusOK, BookingListResponse{
		Bookings:   bookings,
		Page:       page,
		PageSize:   pageSize,
		TotalCount: totalCount,
		TotalPages: totalPages,
	})
}

// UpdateBookingStatus applies a manual status override
func (h *AdminHandler) UpdateBookingStatus(c echo.Context) error {
	bookingID, ok := parseUintParam(c, "id")
	if !ok {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid booking id")
	}

	var req UpdateBookingStatusRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	var newStatus *models.BookingStatus
	if req.Status != nil {
		s := models.BookingStatus(*req.Status)
		newStatus = &s
	}
	var newPaymentStatus *models.PaymentStatus
	if req.PaymentStatus != nil {
		p := models.PaymentStatus(*req.PaymentStatus)
		newPaymentStatus = &p
	}

	booking, err := h.bookingService.UpdateStatus(
		c.Request().Context(), bookingID, getUintFromContext(c, middleware.ContextUserID),
		newStatus, newPaymentStatus)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, booking)
}

// DeleteBooking removes a booking permanently
func (h *AdminHandler) DeleteBooking(c echo.Context) error {
	bookingID, ok := parseUintParam(c, "id")
	if !ok {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid booking id")
	}

	err := h.bookingService.DeleteBooking(
		c.Request().Context(), bookingID, getUintFromContext(c, middleware.ContextUserID))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, StatusResponse{Status: "deleted"})
}

// GetBookingAudit returns the transition history of a booking
func (h *AdminHandler) GetBookingAudit(c echo.Context) error {
	bookingID, ok := parseUintParam(c, "id")
	if !ok {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid booking id")
	}

	var entries []models.BookingStatusAudit
	err := h.db.WithContext(c.Request().Context()).
		Where("booking_id = ?", bookingID).
		Order("created_at ASC").
		Find(&entries).Error
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to fetch audit trail")
	}

	return c.JSON(http.StatusOK, entries)
}

// SummaryReport aggregates booking and revenue figures for a date range
type SummaryReport struct {
	From              time.Time `json:"from"`
	To                time.Time `json:"to"`
	TotalBookings     int64     `json:"total_bookings"`
	ConfirmedBookings int64     `json:"confirmed_bookings"`
	CancelledBookings int64     `json:"cancelled_bookings"`
	PendingBookings   int64     `json:"pending_bookings"`
	PaidRevenue       float64   `json:"paid_revenue"`
	RefundedAmount    float64   `json:"refunded_amount"`
}

// GetSummaryReport builds the back-office summary for a date range
// (defaults to the last 30 days)
func (h *AdminHandler) GetSummaryReport(c echo.Context) error {
	to := time.Now()
	from := to.AddDate(0, 0, -30)
	if raw := c.QueryParam("from"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "from must be YYYY-MM-DD")
		}
		from = parsed
	}
	if raw := c.QueryParam("to"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "to must be YYYY-MM-DD")
		}
		to = parsed.AddDate(0, 0, 1) // inclusive end date
	}

	ctx := c.Request().Context()
	report := SummaryReport{From: from, To: to}

	base := h.db.WithContext(ctx).Model(&models.Booking{}).
		Where("created_at >= ? AND created_at < ?", from, to)
	if err := base.Count(&report.TotalBookings).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to build report")
	}

	counts := []struct {
		status models.BookingStatus
		dest   *int64
	}{
		{models.BookingStatusConfirmed, &report.ConfirmedBookings},
		{models.BookingStatusCancelled, &report.CancelledBookings},
		{models.BookingStatusPending, &report.PendingBookings},
	}
	for _, count := range counts {
		err := h.db.WithContext(ctx).Model(&models.Booking{}).
			Where("created_at >= ? AND created_at < ? AND status = ?", from, to, count.status).
			Count(count.dest).Error
		if err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, "failed to build report")
		}
	}

	err := h.db.WithContext(ctx).Model(&models.PaymentRecord{}).
		Where("payment_date >= ? AND payment_date < ?", from, to).
		Select("COALESCE(SUM(total_pay), 0)").
		Scan(&report.PaidRevenue).Error
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to build report")
	}

	err = h.db.WithContext(ctx).Model(&models.Refund{}).
		Where("refund_date >= ? AND refund_date < ?", from, to).
		Select("COALESCE(SUM(total_refund), 0)").
		Scan(&report.RefundedAmount).Error
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to build report")
	}

	return c.JSON(http.StatusOK, report)
}
