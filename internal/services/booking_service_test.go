package services

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"travelbook_app/internal/config"
	"travelbook_app/internal/models"
	"travelbook_app/internal/repository"
)

// In-memory repositories. TransitionIfPaymentStatus mirrors the conditional
// update the real store performs: the write only lands when the row still
// holds the payment status the caller observed.

type fakeBookingRepo struct {
	mu       sync.Mutex
	bookings map[uint]*models.Booking
	packages map[uint]*models.TourPackage
	nextID   uint

	// beforeTransition, when set, runs once just before the next
	// conditional update; used to squeeze a concurrent transition in
	// between a read and its write
	beforeTransition func()
}

func newFakeBookingRepo() *fakeBookingRepo {
	return &fakeBookingRepo{
		bookings: make(map[uint]*models.Booking),
		packages: make(map[uint]*models.TourPackage),
		nextID:   1,
	}
}

func (f *fakeBookingRepo) Create(ctx context.Context, booking *models.Booking) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	booking.ID = f.nextID
	booking.CreatedAt = time.Now()
	f.nextID++
	stored := *booking
	f.bookings[booking.ID] = &stored
	return nil
}

func (f *fakeBookingRepo) GetByID(ctx context.Context, id uint) (*models.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	stored, ok := f.bookings[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	booking := *stored
	if pkg, ok := f.packages[booking.PackageID]; ok {
		booking.Package = *pkg
	}
	return &booking, nil
}

func (f *fakeBookingRepo) GetByReference(ctx context.Context, reference string) (*models.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, stored := range f.bookings {
		if stored.Reference == reference {
			booking := *stored
			return &booking, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeBookingRepo) ListByUser(ctx context.Context, userID uint) ([]models.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Booking
	for _, stored := range f.bookings {
		if stored.UserID == userID {
			out = append(out, *stored)
		}
	}
	return out, nil
}

func (f *fakeBookingRepo) ListStalePending(ctx context.Context, before time.Time) ([]models.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Booking
	for _, stored := range f.bookings {
		if stored.Status == models.BookingStatusPending &&
			stored.PaymentStatus == models.PaymentStatusPending &&
			stored.CreatedAt.Before(before) {
			out = append(out, *stored)
		}
	}
	return out, nil
}

func (f *fakeBookingRepo) SetPaymentSessionID(ctx context.Context, id uint, sessionID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	stored, ok := f.bookings[id]
	if !ok {
		return repository.ErrNotFound
	}
	stored.PaymentSessionID = &sessionID
	return nil
}

func (f *fakeBookingRepo) TransitionIfPaymentStatus(ctx context.Context, id uint, expected models.PaymentStatus, updates map[string]interface{}) (bool, error) {
	if f.beforeTransition != nil {
		hook := f.beforeTransition
		f.beforeTransition = nil
		hook()
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	stored, ok := f.bookings[id]
	if !ok || stored.PaymentStatus != expected {
		return false, nil
	}
	for key, val := range updates {
		switch key {
		case "status":
			stored.Status = val.(models.BookingStatus)
		case "payment_status":
			stored.PaymentStatus = val.(models.PaymentStatus)
		case "transaction_id":
			s := val.(string)
			stored.TransactionID = &s
		case "paid_at":
			t := val.(time.Time)
			stored.PaidAt = &t
		}
	}
	return true, nil
}

func (f *fakeBookingRepo) Delete(ctx context.Context, id uint) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.bookings[id]; !ok {
		return repository.ErrNotFound
	}
	delete(f.bookings, id)
	return nil
}

type fakePackageRepo struct {
	packages map[uint]*models.TourPackage
}

func (f *fakePackageRepo) GetByID(ctx context.Context, id uint) (*models.TourPackage, error) {
	pkg, ok := f.packages[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copied := *pkg
	return &copied, nil
}

func (f *fakePackageRepo) ListActive(ctx context.Context) ([]models.TourPackage, error) {
	var out []models.TourPackage
	for _, pkg := range f.packages {
		if pkg.IsActive {
			out = append(out, *pkg)
		}
	}
	return out, nil
}

func (f *fakePackageRepo) ListByDestination(ctx context.Context, destinationID uint) ([]models.TourPackage, error) {
	var out []models.TourPackage
	for _, pkg := range f.packages {
		if pkg.DestinationID == destinationID {
			out = append(out, *pkg)
		}
	}
	return out, nil
}

type fakeSessionRepo struct {
	mu       sync.Mutex
	sessions map[uint]*models.PaymentSession
	nextID   uint
}

func newFakeSessionRepo() *fakeSessionRepo {
	return &fakeSessionRepo{sessions: make(map[uint]*models.PaymentSession), nextID: 1}
}

func (f *fakeSessionRepo) Create(ctx context.Context, session *models.PaymentSession) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	session.ID = f.nextID
	f.nextID++
	stored := *session
	f.sessions[session.ID] = &stored
	return nil
}

func (f *fakeSessionRepo) ActiveForBooking(ctx context.Context, bookingID uint) (*models.PaymentSession, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, stored := range f.sessions {
		if stored.BookingID == bookingID && stored.IsActive {
			session := *stored
			return &session, nil
		}
	}
	return nil, nil
}

func (f *fakeSessionRepo) GetByOrderID(ctx context.Context, orderID string) (*models.PaymentSession, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, stored := range f.sessions {
		if stored.OrderID == orderID {
			session := *stored
			return &session, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeSessionRepo) Deactivate(ctx context.Context, id uint) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	stored, ok := f.sessions[id]
	if !ok {
		return repository.ErrNotFound
	}
	stored.IsActive = false
	return nil
}

type fakePaymentRepo struct {
	mu      sync.Mutex
	records []models.PaymentRecord
	refunds []models.Refund
}

func (f *fakePaymentRepo) Record(ctx context.Context, payment *models.PaymentRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	payment.ID = uint(len(f.records) + 1)
	f.records = append(f.records, *payment)
	return nil
}

func (f *fakePaymentRepo) LatestForBooking(ctx context.Context, bookingID uint) (*models.PaymentRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := len(f.records) - 1; i >= 0; i-- {
		if f.records[i].BookingID == bookingID {
			record := f.records[i]
			return &record, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakePaymentRepo) RecordRefund(ctx context.Context, refund *models.Refund) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.refunds = append(f.refunds, *refund)
	return nil
}

type fakeAuditRepo struct {
	mu      sync.Mutex
	entries []models.BookingStatusAudit
}

func (f *fakeAuditRepo) Record(ctx context.Context, entry *models.BookingStatusAudit) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entries = append(f.entries, *entry)
	return nil
}

func (f *fakeAuditRepo) ListForBooking(ctx context.Context, bookingID uint) ([]models.BookingStatusAudit, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.BookingStatusAudit
	for _, entry := range f.entries {
		if entry.BookingID == bookingID {
			out = append(out, entry)
		}
	}
	return out, nil
}

type fakeUserRepo struct {
	users map[uint]*models.User
}

func (f *fakeUserRepo) GetByID(ctx context.Context, id uint) (*models.User, error) {
	user, ok := f.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copied := *user
	return &copied, nil
}

func (f *fakeUserRepo) GetOrCreateByFirebaseUID(ctx context.Context, firebaseUID, email, name string) (*models.User, error) {
	for _, user := range f.users {
		if user.FirebaseUID == firebaseUID {
			copied := *user
			return &copied, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeUserRepo) IsAdmin(ctx context.Context, userID uint) (bool, error) {
	user, ok := f.users[userID]
	if !ok {
		return false, repository.ErrNotFound
	}
	return user.IsAdmin(), nil
}

type fakeTaskScheduler struct {
	mu    sync.Mutex
	tasks []models.ScheduledTask
}

func (f *fakeTaskScheduler) Enqueue(ctx context.Context, task *models.ScheduledTask) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tasks = append(f.tasks, *task)
	return nil
}

type mockGateway struct {
	mock.Mock
}

func (m *mockGateway) CreateSession(ctx context.Context, req CreateSessionRequest) (*CheckoutSession, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*CheckoutSession), args.Error(1)
}

func (m *mockGateway) RetrieveSession(ctx context.Context, sessionID string) (*SessionStatus, error) {
	args := m.Called(ctx, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*SessionStatus), args.Error(1)
}

func (m *mockGateway) ConfirmIntent(ctx context.Context, intentID, paymentMethodToken string) (*IntentResult, error) {
	args := m.Called(ctx, intentID, paymentMethodToken)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*IntentResult), args.Error(1)
}

func (m *mockGateway) CancelSession(ctx context.Context, sessionID string) error {
	args := m.Called(ctx, sessionID)
	return args.Error(0)
}

type serviceFixture struct {
	bookings *fakeBookingRepo
	packages *fakePackageRepo
	sessions *fakeSessionRepo
	payments *fakePaymentRepo
	audits   *fakeAuditRepo
	users    *fakeUserRepo
	tasks    *fakeTaskScheduler
	gateway  *mockGateway
	svc      *BookingService
}

func newServiceFixture() *serviceFixture {
	bookings := newFakeBookingRepo()
	packages := &fakePackageRepo{packages: make(map[uint]*models.TourPackage)}
	sessions := newFakeSessionRepo()
	payments := &fakePaymentRepo{}
	audits := &fakeAuditRepo{}
	users := &fakeUserRepo{users: make(map[uint]*models.User)}
	tasks := &fakeTaskScheduler{}
	gateway := &mockGateway{}

	cfg := &config.Config{
		Currency:          "IDR",
		MaxPartySize:      10,
		PendingBookingTTL: 48 * time.Hour,
		PaymentFinishURL:  "https://example.test/payments/success",
		GatewayTimeout:    15 * time.Second,
	}

	svc := NewBookingService(bookings, packages, sessions, payments, audits, users, tasks, gateway, cfg)
	return &serviceFixture{
		bookings: bookings,
		packages: packages,
		sessions: sessions,
		payments: payments,
		audits:   audits,
		users:    users,
		tasks:    tasks,
		gateway:  gateway,
		svc:      svc,
	}
}

func (f *serviceFixture) addUser(id uint, userType models.UserType) *models.User {
	user := &models.User{
		ID:          id,
		FirebaseUID: "uid-" + string(rune('0'+id)),
		Name:        "Test User",
		Email:       "user@example.test",
		UserType:    userType,
	}
	f.users.users[id] = user
	return user
}

func (f *serviceFixture) addPackage(id uint, price float64, offer *float64) *models.TourPackage {
	pkg := &models.TourPackage{
		ID:            id,
		DestinationID: 1,
		Name:          "Bali Escape",
		Price:         price,
		OfferPrice:    offer,
		DurationDays:  4,
		IsActive:      true,
	}
	f.packages.packages[id] = pkg
	f.bookings.packages[id] = pkg
	return pkg
}

func (f *serviceFixture) addBooking(userID, packageID uint, status models.BookingStatus, paymentStatus models.PaymentStatus) *models.Booking {
	booking := &models.Booking{
		Reference:      "ref",
		UserID:         userID,
		PackageID:      packageID,
		BookingDate:    time.Date(2030, time.May, 1, 0, 0, 0, 0, time.UTC),
		NumberOfPeople: 2,
		UnitPrice:      200,
		TotalPrice:     400,
		Status:         status,
		PaymentStatus:  paymentStatus,
	}
	_ = f.bookings.Create(context.Background(), booking)
	return booking
}

func (f *serviceFixture) addActiveSession(bookingID, userID uint, orderID string) *models.PaymentSession {
	meta, _ := json.Marshal(&CheckoutSession{SessionID: orderID, Token: "tok-1", RedirectURL: "https://pay.test/1"})
	session := &models.PaymentSession{
		BookingID:        bookingID,
		UserID:           userID,
		PaymentGateway:   models.PaymentGatewayMidtrans,
		OrderID:          orderID,
		Amount:           400,
		IsActive:         true,
		ResponseMetadata: meta,
	}
	_ = f.sessions.Create(context.Background(), session)
	return session
}

func TestCreateBooking(t *testing.T) {
	ctx := context.Background()

	t.Run("snapshots price and starts pending", func(t *testing.T) {
		fix := newServiceFixture()
		fix.addUser(1, models.UserTypeMember)
		fix.addPackage(1, 200, nil)

		booking, err := fix.svc.CreateBooking(ctx, CreateBookingInput{
			UserID:         1,
			PackageID:      1,
			BookingDate:    time.Date(2030, time.May, 1, 13, 30, 0, 0, time.UTC),
			NumberOfPeople: 2,
		})
		require.NoError(t, err)
		require.Equal(t, models.BookingStatusPending, booking.Status)
		require.Equal(t, models.PaymentStatusPending, booking.PaymentStatus)
		require.Equal(t, 200.0, booking.UnitPrice)
		require.Equal(t, 400.0, booking.TotalPrice)
		require.NotEmpty(t, booking.Reference)

		entries, _ := fix.audits.ListForBooking(ctx, booking.ID)
		require.Len(t, entries, 1)
		require.Equal(t, models.AuditSourceCheckout, entries[0].Source)

		// A payment reminder is queued for later
		require.Len(t, fix.tasks.tasks, 1)
		require.Equal(t, TaskSendBookingEmail, fix.tasks.tasks[0].TaskName)
	})

	t.Run("honors offer price", func(t *testing.T) {
		fix := newServiceFixture()
		fix.addUser(1, models.UserTypeMember)
		offer := 80.0
		fix.addPackage(1, 100, &offer)

		booking, err := fix.svc.CreateBooking(ctx, CreateBookingInput{
			UserID:         1,
			PackageID:      1,
			BookingDate:    time.Date(2030, time.May, 1, 0, 0, 0, 0, time.UTC),
			NumberOfPeople: 3,
		})
		require.NoError(t, err)
		require.Equal(t, 80.0, booking.UnitPrice)
		require.Equal(t, 240.0, booking.TotalPrice)
	})

	t.Run("rejects party size out of range", func(t *testing.T) {
		fix := newServiceFixture()
		fix.addUser(1, models.UserTypeMember)
		fix.addPackage(1, 200, nil)

		for _, people := range []int{0, -1, 11} {
			_, err := fix.svc.CreateBooking(ctx, CreateBookingInput{
				UserID:         1,
				PackageID:      1,
				BookingDate:    time.Date(2030, time.May, 1, 0, 0, 0, 0, time.UTC),
				NumberOfPeople: people,
			})
			require.ErrorIs(t, err, ErrValidation, "people=%d", people)
		}
	})

	t.Run("rejects inactive package", func(t *testing.T) {
		fix := newServiceFixture()
		fix.addUser(1, models.UserTypeMember)
		pkg := fix.addPackage(1, 200, nil)
		pkg.IsActive = false

		_, err := fix.svc.CreateBooking(ctx, CreateBookingInput{
			UserID:         1,
			PackageID:      1,
			BookingDate:    time.Date(2030, time.May, 1, 0, 0, 0, 0, time.UTC),
			NumberOfPeople: 2,
		})
		require.ErrorIs(t, err, ErrValidation)
	})

	t.Run("unknown package is not found", func(t *testing.T) {
		fix := newServiceFixture()
		fix.addUser(1, models.UserTypeMember)

		_, err := fix.svc.CreateBooking(ctx, CreateBookingInput{
			UserID:         1,
			PackageID:      99,
			BookingDate:    time.Date(2030, time.May, 1, 0, 0, 0, 0, time.UTC),
			NumberOfPeople: 2,
		})
		require.ErrorIs(t, err, ErrNotFound)
	})
}

func TestInitiatePayment(t *testing.T) {
	ctx := context.Background()

	t.Run("creates a checkout session", func(t *testing.T) {
		fix := newServiceFixture()
		fix.addUser(1, models.UserTypeMember)
		fix.addPackage(1, 200, nil)
		booking := fix.addBooking(1, 1, models.BookingStatusPending, models.PaymentStatusPending)

		fix.gateway.On("CreateSession", mock.Anything, mock.Anything).
			Return(&CheckoutSession{SessionID: "snap-1", Token: "tok-1", RedirectURL: "https://pay.test/1"}, nil)

		result, err := fix.svc.InitiatePayment(ctx, booking.ID, 1, false)
		require.NoError(t, err)
		require.Equal(t, "tok-1", result.Token)
		require.False(t, result.IsExisting)
		require.NotEmpty(t, result.SessionID)

		stored, err := fix.sessions.GetByOrderID(ctx, result.SessionID)
		require.NoError(t, err)
		require.True(t, stored.IsActive)
		require.Equal(t, booking.ID, stored.BookingID)

		reloaded, _ := fix.bookings.GetByID(ctx, booking.ID)
		require.NotNil(t, reloaded.PaymentSessionID)
		require.Equal(t, result.SessionID, *reloaded.PaymentSessionID)
	})

	t.Run("only the owner may pay", func(t *testing.T) {
		fix := newServiceFixture()
		fix.addUser(1, models.UserTypeMember)
		fix.addUser(2, models.UserTypeMember)
		fix.addPackage(1, 200, nil)
		booking := fix.addBooking(1, 1, models.BookingStatusPending, models.PaymentStatusPending)

		_, err := fix.svc.InitiatePayment(ctx, booking.ID, 2, false)
		require.ErrorIs(t, err, ErrUnauthorized)

		// No session reached the gateway or the store
		fix.gateway.AssertNotCalled(t, "CreateSession", mock.Anything, mock.Anything)
		session, _ := fix.sessions.ActiveForBooking(ctx, booking.ID)
		require.Nil(t, session)
	})

	t.Run("refuses a booking that is not payment pending", func(t *testing.T) {
		fix := newServiceFixture()
		fix.addUser(1, models.UserTypeMember)
		fix.addPackage(1, 200, nil)
		booking := fix.addBooking(1, 1, models.BookingStatusConfirmed, models.PaymentStatusPaid)

		_, err := fix.svc.InitiatePayment(ctx, booking.ID, 1, false)
		require.ErrorIs(t, err, ErrInvalidState)
	})

	t.Run("reuses an open session instead of double charging", func(t *testing.T) {
		fix := newServiceFixture()
		fix.addUser(1, models.UserTypeMember)
		fix.addPackage(1, 200, nil)
		booking := fix.addBooking(1, 1, models.BookingStatusPending, models.PaymentStatusPending)
		fix.addActiveSession(booking.ID, 1, "booking-1-100")

		fix.gateway.On("RetrieveSession", mock.Anything, "booking-1-100").
			Return(&SessionStatus{State: SessionStateUnpaid}, nil)

		result, err := fix.svc.InitiatePayment(ctx, booking.ID, 1, false)
		require.NoError(t, err)
		require.True(t, result.IsExisting)
		require.Equal(t, "booking-1-100", result.SessionID)
		require.Equal(t, "tok-1", result.Token)
		fix.gateway.AssertNotCalled(t, "CreateSession", mock.Anything, mock.Anything)
	})

	t.Run("force new cancels the open session first", func(t *testing.T) {
		fix := newServiceFixture()
		fix.addUser(1, models.UserTypeMember)
		fix.addPackage(1, 200, nil)
		booking := fix.addBooking(1, 1, models.BookingStatusPending, models.PaymentStatusPending)
		old := fix.addActiveSession(booking.ID, 1, "booking-1-100")

		fix.gateway.On("RetrieveSession", mock.Anything, "booking-1-100").
			Return(&SessionStatus{State: SessionStateUnpaid}, nil)
		fix.gateway.On("CancelSession", mock.Anything, "booking-1-100").Return(nil)
		fix.gateway.On("CreateSession", mock.Anything, mock.Anything).
			Return(&CheckoutSession{SessionID: "snap-2", Token: "tok-2", RedirectURL: "https://pay.test/2"}, nil)

		result, err := fix.svc.InitiatePayment(ctx, booking.ID, 1, true)
		require.NoError(t, err)
		require.False(t, result.IsExisting)
		require.Equal(t, "tok-2", result.Token)

		stale, err := fix.sessions.GetByOrderID(ctx, old.OrderID)
		require.NoError(t, err)
		require.False(t, stale.IsActive)
	})

	t.Run("session already paid on gateway refuses another charge", func(t *testing.T) {
		fix := newServiceFixture()
		fix.addUser(1, models.UserTypeMember)
		fix.addPackage(1, 200, nil)
		booking := fix.addBooking(1, 1, models.BookingStatusPending, models.PaymentStatusPending)
		fix.addActiveSession(booking.ID, 1, "booking-1-100")

		fix.gateway.On("RetrieveSession", mock.Anything, "booking-1-100").
			Return(&SessionStatus{State: SessionStatePaid, TransactionID: "trx-1"}, nil)

		_, err := fix.svc.InitiatePayment(ctx, booking.ID, 1, false)
		require.ErrorIs(t, err, ErrInvalidState)
		fix.gateway.AssertNotCalled(t, "CreateSession", mock.Anything, mock.Anything)
	})
}

func TestConfirmPaymentFromCallback(t *testing.T) {
	ctx := context.Background()

	t.Run("verified payment confirms the booking", func(t *testing.T) {
		fix := newServiceFixture()
		fix.addUser(1, models.UserTypeMember)
		fix.addPackage(1, 200, nil)
		booking := fix.addBooking(1, 1, models.BookingStatusPending, models.PaymentStatusPending)
		fix.addActiveSession(booking.ID, 1, "booking-1-100")

		fix.gateway.On("RetrieveSession", mock.Anything, "booking-1-100").
			Return(&SessionStatus{State: SessionStatePaid, TransactionID: "trx-1", PaymentChannel: "gopay"}, nil)

		confirmed, err := fix.svc.ConfirmPaymentFromCallback(ctx, "booking-1-100", booking.ID)
		require.NoError(t, err)
		require.Equal(t, models.BookingStatusConfirmed, confirmed.Status)
		require.Equal(t, models.PaymentStatusPaid, confirmed.PaymentStatus)
		require.NotNil(t, confirmed.TransactionID)
		require.Equal(t, "trx-1", *confirmed.TransactionID)
		require.NotNil(t, confirmed.PaidAt)

		// Paid side effects happened exactly once
		require.Len(t, fix.payments.records, 1)
		require.Equal(t, 400.0, fix.payments.records[0].TotalPay)
		session, _ := fix.sessions.ActiveForBooking(ctx, booking.ID)
		require.Nil(t, session)

		// A confirmation e-mail is queued
		require.NotEmpty(t, fix.tasks.tasks)
		require.Equal(t, TaskSendBookingEmail, fix.tasks.tasks[len(fix.tasks.tasks)-1].TaskName)
	})

	t.Run("idempotent on repeat", func(t *testing.T) {
		fix := newServiceFixture()
		fix.addUser(1, models.UserTypeMember)
		fix.addPackage(1, 200, nil)
		booking := fix.addBooking(1, 1, models.BookingStatusPending, models.PaymentStatusPending)
		fix.addActiveSession(booking.ID, 1, "booking-1-100")

		fix.gateway.On("RetrieveSession", mock.Anything, "booking-1-100").
			Return(&SessionStatus{State: SessionStatePaid, TransactionID: "trx-1"}, nil)

		first, err := fix.svc.ConfirmPaymentFromCallback(ctx, "booking-1-100", booking.ID)
		require.NoError(t, err)
		second, err := fix.svc.ConfirmPaymentFromCallback(ctx, "booking-1-100", booking.ID)
		require.NoError(t, err)

		require.Equal(t, first.Status, second.Status)
		require.Equal(t, first.PaymentStatus, second.PaymentStatus)
		// Still only one payment record and one paid transition in the trail
		require.Len(t, fix.payments.records, 1)
		paidTransitions := 0
		entries, _ := fix.audits.ListForBooking(ctx, booking.ID)
		for _, entry := range entries {
			if entry.ToPaymentStatus == models.PaymentStatusPaid {
				paidTransitions++
			}
		}
		require.Equal(t, 1, paidTransitions)
	})

	t.Run("verified payment outranks a cancel that landed first", func(t *testing.T) {
		fix := newServiceFixture()
		fix.addUser(1, models.UserTypeMember)
		fix.addPackage(1, 200, nil)
		booking := fix.addBooking(1, 1, models.BookingStatusPending, models.PaymentStatusPending)
		fix.addActiveSession(booking.ID, 1, "booking-1-100")

		fix.gateway.On("RetrieveSession", mock.Anything, "booking-1-100").
			Return(&SessionStatus{State: SessionStatePaid, TransactionID: "trx-3"}, nil)

		// A cancel slips in between the confirmation's read and its write
		fix.bookings.beforeTransition = func() {
			stored := fix.bookings.bookings[booking.ID]
			stored.Status = models.BookingStatusCancelled
			stored.PaymentStatus = models.PaymentStatusCancelled
		}

		confirmed, err := fix.svc.ConfirmPaymentFromCallback(ctx, "booking-1-100", booking.ID)
		require.NoError(t, err)
		require.Equal(t, models.BookingStatusConfirmed, confirmed.Status)
		require.Equal(t, models.PaymentStatusPaid, confirmed.PaymentStatus)
		require.Len(t, fix.payments.records, 1)
	})

	t.Run("session for another booking is a security violation", func(t *testing.T) {
		fix := newServiceFixture()
		fix.addUser(1, models.UserTypeMember)
		fix.addUser(2, models.UserTypeMember)
		fix.addPackage(1, 200, nil)
		victim := fix.addBooking(1, 1, models.BookingStatusPending, models.PaymentStatusPending)
		other := fix.addBooking(2, 1, models.BookingStatusPending, models.PaymentStatusPending)
		fix.addActiveSession(other.ID, 2, "booking-2-100")

		_, err := fix.svc.ConfirmPaymentFromCallback(ctx, "booking-2-100", victim.ID)
		require.ErrorIs(t, err, ErrSecurityViolation)

		reloaded, _ := fix.bookings.GetByID(ctx, victim.ID)
		require.Equal(t, models.PaymentStatusPending, reloaded.PaymentStatus)
	})

	t.Run("unknown session is a security violation", func(t *testing.T) {
		fix := newServiceFixture()
		fix.addUser(1, models.UserTypeMember)
		fix.addPackage(1, 200, nil)
		booking := fix.addBooking(1, 1, models.BookingStatusPending, models.PaymentStatusPending)

		_, err := fix.svc.ConfirmPaymentFromCallback(ctx, "never-issued", booking.ID)
		require.ErrorIs(t, err, ErrSecurityViolation)
	})

	t.Run("gateway not paid refuses confirmation", func(t *testing.T) {
		fix := newServiceFixture()
		fix.addUser(1, models.UserTypeMember)
		fix.addPackage(1, 200, nil)
		booking := fix.addBooking(1, 1, models.BookingStatusPending, models.PaymentStatusPending)
		fix.addActiveSession(booking.ID, 1, "booking-1-100")

		fix.gateway.On("RetrieveSession", mock.Anything, "booking-1-100").
			Return(&SessionStatus{State: SessionStateUnpaid}, nil)

		_, err := fix.svc.ConfirmPaymentFromCallback(ctx, "booking-1-100", booking.ID)
		require.ErrorIs(t, err, ErrPaymentNotCompleted)

		reloaded, _ := fix.bookings.GetByID(ctx, booking.ID)
		require.Equal(t, models.PaymentStatusPending, reloaded.PaymentStatus)
		require.Len(t, fix.payments.records, 0)
	})
}

func TestCancelPayment(t *testing.T) {
	ctx := context.Background()

	t.Run("pending booking is cancelled", func(t *testing.T) {
		fix := newServiceFixture()
		fix.addUser(1, models.UserTypeMember)
		fix.addPackage(1, 200, nil)
		booking := fix.addBooking(1, 1, models.BookingStatusPending, models.PaymentStatusPending)
		fix.addActiveSession(booking.ID, 1, "booking-1-100")

		cancelled, err := fix.svc.CancelPayment(ctx, booking.ID, models.AuditSourceCallback)
		require.NoError(t, err)
		require.Equal(t, models.BookingStatusCancelled, cancelled.Status)
		require.Equal(t, models.PaymentStatusCancelled, cancelled.PaymentStatus)

		session, _ := fix.sessions.ActiveForBooking(ctx, booking.ID)
		require.Nil(t, session)

		entries, _ := fix.audits.ListForBooking(ctx, booking.ID)
		require.NotEmpty(t, entries)
		require.Equal(t, models.AuditSourceCallback, entries[len(entries)-1].Source)
	})

	t.Run("webhook cancel is audited as webhook", func(t *testing.T) {
		fix := newServiceFixture()
		fix.addUser(1, models.UserTypeMember)
		fix.addPackage(1, 200, nil)
		booking := fix.addBooking(1, 1, models.BookingStatusPending, models.PaymentStatusPending)

		_, err := fix.svc.CancelPayment(ctx, booking.ID, models.AuditSourceWebhook)
		require.NoError(t, err)

		entries, _ := fix.audits.ListForBooking(ctx, booking.ID)
		require.NotEmpty(t, entries)
		require.Equal(t, models.AuditSourceWebhook, entries[len(entries)-1].Source)
	})

	t.Run("stale cancel never downgrades a paid booking", func(t *testing.T) {
		fix := newServiceFixture()
		fix.addUser(1, models.UserTypeMember)
		fix.addPackage(1, 200, nil)
		booking := fix.addBooking(1, 1, models.BookingStatusConfirmed, models.PaymentStatusPaid)

		result, err := fix.svc.CancelPayment(ctx, booking.ID, models.AuditSourceCallback)
		require.NoError(t, err)
		require.Equal(t, models.BookingStatusConfirmed, result.Status)
		require.Equal(t, models.PaymentStatusPaid, result.PaymentStatus)

		reloaded, _ := fix.bookings.GetByID(ctx, booking.ID)
		require.Equal(t, models.PaymentStatusPaid, reloaded.PaymentStatus)
	})

	t.Run("gateway failure marks payment failed", func(t *testing.T) {
		fix := newServiceFixture()
		fix.addUser(1, models.UserTypeMember)
		fix.addPackage(1, 200, nil)
		booking := fix.addBooking(1, 1, models.BookingStatusPending, models.PaymentStatusPending)

		failed, err := fix.svc.MarkPaymentFailed(ctx, booking.ID)
		require.NoError(t, err)
		require.Equal(t, models.BookingStatusCancelled, failed.Status)
		require.Equal(t, models.PaymentStatusFailed, failed.PaymentStatus)
	})
}

func TestUpdateStatus(t *testing.T) {
	ctx := context.Background()

	statusPtr := func(s models.BookingStatus) *models.BookingStatus { return &s }
	paymentPtr := func(p models.PaymentStatus) *models.PaymentStatus { return &p }

	t.Run("non admin is rejected and nothing moves", func(t *testing.T) {
		fix := newServiceFixture()
		fix.addUser(1, models.UserTypeMember)
		fix.addPackage(1, 200, nil)
		booking := fix.addBooking(1, 1, models.BookingStatusPending, models.PaymentStatusPending)

		_, err := fix.svc.UpdateStatus(ctx, booking.ID, 1, statusPtr(models.BookingStatusConfirmed), nil)
		require.ErrorIs(t, err, ErrUnauthorized)

		reloaded, _ := fix.bookings.GetByID(ctx, booking.ID)
		require.Equal(t, models.BookingStatusPending, reloaded.Status)
	})

	t.Run("admin can set any valid pair", func(t *testing.T) {
		fix := newServiceFixture()
		fix.addUser(1, models.UserTypeMember)
		fix.addUser(9, models.UserTypeAdmin)
		fix.addPackage(1, 200, nil)
		booking := fix.addBooking(1, 1, models.BookingStatusConfirmed, models.PaymentStatusPaid)

		updated, err := fix.svc.UpdateStatus(ctx, booking.ID, 9, statusPtr(models.BookingStatusCompleted), nil)
		require.NoError(t, err)
		require.Equal(t, models.BookingStatusCompleted, updated.Status)
		require.Equal(t, models.PaymentStatusPaid, updated.PaymentStatus)

		entries, _ := fix.audits.ListForBooking(ctx, booking.ID)
		require.NotEmpty(t, entries)
		require.Equal(t, models.AuditSourceAdmin, entries[len(entries)-1].Source)
		require.Equal(t, uint(9), entries[len(entries)-1].ActorID)
	})

	t.Run("downgrading a paid booking leaves a refund trail", func(t *testing.T) {
		fix := newServiceFixture()
		fix.addUser(1, models.UserTypeMember)
		fix.addUser(9, models.UserTypeAdmin)
		fix.addPackage(1, 200, nil)
		booking := fix.addBooking(1, 1, models.BookingStatusConfirmed, models.PaymentStatusPaid)
		_ = fix.payments.Record(ctx, &models.PaymentRecord{BookingID: booking.ID, UserID: 1, TotalPay: 400})

		updated, err := fix.svc.UpdateStatus(ctx, booking.ID, 9,
			statusPtr(models.BookingStatusCancelled), paymentPtr(models.PaymentStatusCancelled))
		require.NoError(t, err)
		require.Equal(t, models.PaymentStatusCancelled, updated.PaymentStatus)

		require.Len(t, fix.payments.refunds, 1)
		require.Equal(t, 400.0, fix.payments.refunds[0].TotalRefund)
		require.Equal(t, booking.ID, fix.payments.refunds[0].BookingID)
	})

	t.Run("does not clobber a concurrently landed payment", func(t *testing.T) {
		fix := newServiceFixture()
		fix.addUser(1, models.UserTypeMember)
		fix.addUser(9, models.UserTypeAdmin)
		fix.addPackage(1, 200, nil)
		booking := fix.addBooking(1, 1, models.BookingStatusPending, models.PaymentStatusPending)

		// A gateway confirmation lands between the override's read and its
		// write; the admin only asked for status=completed
		fix.bookings.beforeTransition = func() {
			stored := fix.bookings.bookings[booking.ID]
			stored.Status = models.BookingStatusConfirmed
			stored.PaymentStatus = models.PaymentStatusPaid
			trx := "trx-7"
			stored.TransactionID = &trx
			paidAt := time.Now()
			stored.PaidAt = &paidAt
		}

		updated, err := fix.svc.UpdateStatus(ctx, booking.ID, 9, statusPtr(models.BookingStatusCompleted), nil)
		require.NoError(t, err)
		require.Equal(t, models.BookingStatusCompleted, updated.Status)
		require.Equal(t, models.PaymentStatusPaid, updated.PaymentStatus)

		reloaded, _ := fix.bookings.GetByID(ctx, booking.ID)
		require.Equal(t, models.PaymentStatusPaid, reloaded.PaymentStatus)
		require.NotNil(t, reloaded.TransactionID)
		require.Equal(t, "trx-7", *reloaded.TransactionID)
		require.NotNil(t, reloaded.PaidAt)
	})

	t.Run("rejects unknown enum values", func(t *testing.T) {
		fix := newServiceFixture()
		fix.addUser(9, models.UserTypeAdmin)
		fix.addPackage(1, 200, nil)
		booking := fix.addBooking(9, 1, models.BookingStatusPending, models.PaymentStatusPending)

		bad := models.BookingStatus("shipped")
		_, err := fix.svc.UpdateStatus(ctx, booking.ID, 9, &bad, nil)
		require.ErrorIs(t, err, ErrValidation)

		_, err = fix.svc.UpdateStatus(ctx, booking.ID, 9, nil, nil)
		require.ErrorIs(t, err, ErrValidation)
	})
}

func TestGetBooking(t *testing.T) {
	ctx := context.Background()

	fix := newServiceFixture()
	fix.addUser(1, models.UserTypeMember)
	fix.addUser(2, models.UserTypeMember)
	fix.addUser(9, models.UserTypeAdmin)
	fix.addPackage(1, 200, nil)
	booking := fix.addBooking(1, 1, models.BookingStatusPending, models.PaymentStatusPending)

	_, err := fix.svc.GetBooking(ctx, booking.ID, 1)
	require.NoError(t, err, "owner can read")

	_, err = fix.svc.GetBooking(ctx, booking.ID, 9)
	require.NoError(t, err, "admin can read")

	_, err = fix.svc.GetBooking(ctx, booking.ID, 2)
	require.ErrorIs(t, err, ErrUnauthorized, "stranger cannot read")
}

func TestInvoice(t *testing.T) {
	ctx := context.Background()

	t.Run("refused unless paid", func(t *testing.T) {
		fix := newServiceFixture()
		fix.addUser(1, models.UserTypeMember)
		fix.addPackage(1, 200, nil)
		booking := fix.addBooking(1, 1, models.BookingStatusPending, models.PaymentStatusPending)

		_, err := fix.svc.Invoice(ctx, booking.ID, 1)
		require.ErrorIs(t, err, ErrInvalidState)
	})

	t.Run("paid booking gets a snapshot", func(t *testing.T) {
		fix := newServiceFixture()
		fix.addUser(1, models.UserTypeMember)
		fix.addPackage(1, 200, nil)
		booking := fix.addBooking(1, 1, models.BookingStatusConfirmed, models.PaymentStatusPaid)

		invoice, err := fix.svc.Invoice(ctx, booking.ID, 1)
		require.NoError(t, err)
		require.Equal(t, booking.Reference, invoice.Reference)
		require.Equal(t, 400.0, invoice.TotalPrice)
		require.Equal(t, "IDR", invoice.Currency)
		require.Equal(t, "Bali Escape", invoice.PackageName)
	})
}

func TestExpireStalePending(t *testing.T) {
	ctx := context.Background()

	t.Run("stale pending bookings are expired", func(t *testing.T) {
		fix := newServiceFixture()
		fix.addUser(1, models.UserTypeMember)
		fix.addPackage(1, 200, nil)
		stale := fix.addBooking(1, 1, models.BookingStatusPending, models.PaymentStatusPending)
		fix.bookings.bookings[stale.ID].CreatedAt = time.Now().Add(-72 * time.Hour)

		fresh := fix.addBooking(1, 1, models.BookingStatusPending, models.PaymentStatusPending)

		expired, confirmed, err := fix.svc.ExpireStalePending(ctx)
		require.NoError(t, err)
		require.Len(t, expired, 1)
		require.Empty(t, confirmed)
		require.Equal(t, stale.ID, expired[0].ID)

		reloadedStale, _ := fix.bookings.GetByID(ctx, stale.ID)
		require.Equal(t, models.BookingStatusCancelled, reloadedStale.Status)
		reloadedFresh, _ := fix.bookings.GetByID(ctx, fresh.ID)
		require.Equal(t, models.BookingStatusPending, reloadedFresh.Status)
	})

	t.Run("a session that settled confirms instead of expiring", func(t *testing.T) {
		fix := newServiceFixture()
		fix.addUser(1, models.UserTypeMember)
		fix.addPackage(1, 200, nil)
		stale := fix.addBooking(1, 1, models.BookingStatusPending, models.PaymentStatusPending)
		fix.bookings.bookings[stale.ID].CreatedAt = time.Now().Add(-72 * time.Hour)
		fix.addActiveSession(stale.ID, 1, "booking-1-100")

		fix.gateway.On("RetrieveSession", mock.Anything, "booking-1-100").
			Return(&SessionStatus{State: SessionStatePaid, TransactionID: "trx-9"}, nil)

		expired, confirmed, err := fix.svc.ExpireStalePending(ctx)
		require.NoError(t, err)
		require.Empty(t, expired)
		require.Len(t, confirmed, 1)
		require.Equal(t, models.PaymentStatusPaid, confirmed[0].PaymentStatus)
		require.Len(t, fix.payments.records, 1)
	})
}
