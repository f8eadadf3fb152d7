package payments

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/skyhaventravel/skyhaven-backend/internal/bookings"
	dbpkg "github.com/skyhaventravel/skyhaven-backend/pkg/db"
	"github.com/skyhaventravel/skyhaven-backend/pkg/db/models"
	"github.com/skyhaventravel/skyhaven-backend/pkg/enums"
	pkgerrors "github.com/skyhaventravel/skyhaven-backend/pkg/errors"
	"github.com/skyhaventravel/skyhaven-backend/pkg/gateways"
	"github.com/skyhaventravel/skyhaven-backend/pkg/outbox"
	"github.com/skyhaventravel/skyhaven-backend/pkg/pagination"
)

type fixture struct {
	svc *Service
	db  *gorm.DB
}

type fakeGateway struct {
	method enums.PaymentMethod
	result *gateways.InitializeResult
	err    error
}

func (f *fakeGateway) Method() enums.PaymentMethod { return f.method }

func (f *fakeGateway) Initialize(_ context.Context, _ gateways.InitializeRequest) (*gateways.InitializeResult, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

func newFixture(t *testing.T, gws ...gateways.Gateway) *fixture {
	t.Helper()
	gdb, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, gdb.AutoMigrate(
		&models.Booking{},
		&models.Payment{},
		&models.PaymentAudit{},
		&models.OutboxEvent{},
	))

	client := dbpkg.NewWithConn(gdb)
	svc, err := NewService(ServiceParams{
		DB:       client,
		Repo:     NewRepository(gdb),
		Bookings: bookings.NewRepository(gdb),
		Gateways: gateways.NewRegistry(gws...),
		Outbox:   outbox.NewService(outbox.NewRepository(gdb), nil),
	})
	require.NoError(t, err)
	return &fixture{svc: svc, db: gdb}
}

func (f *fixture) seedBooking(t *testing.T) *models.Booking {
	t.Helper()
	booking := &models.Booking{
		ID:             uuid.New(),
		BookingType:    enums.BookingTypeHotel,
		Status:         enums.BookingStatusPending,
		ItemID:         uuid.New(),
		ItemName:       "Harbor View Suite",
		GuestName:      "Ada Guest",
		GuestEmail:     "ada@example.com",
		UnitPriceCents: 10000,
		TotalCents:     33600,
		Currency:       enums.CurrencyUSD,
	}
	require.NoError(t, f.db.Create(booking).Error)
	return booking
}

func (f *fixture) seedPayment(t *testing.T, booking *models.Booking, method enums.PaymentMethod, status enums.PaymentStatus) *models.Payment {
	t.Helper()
	payment := &models.Payment{
		ID:           uuid.New(),
		BookingID:    booking.ID,
		Method:       method,
		Status:       status,
		AmountCents:  booking.TotalCents,
		Currency:     booking.Currency,
		RefundStatus: enums.RefundStatusNone,
		GuestName:    booking.GuestName,
		ItemName:     booking.ItemName,
	}
	// Bank transfers past pending have been through the upload path.
	if method == enums.PaymentMethodBankTransfer && status != enums.PaymentStatusPending {
		proof := "https://storage.googleapis.com/sky-proofs/proofs/" + booking.ID.String() + "/" + payment.ID.String() + ".pdf"
		payment.ProofOfPayment = &proof
	}
	require.NoError(t, f.db.Create(payment).Error)
	return payment
}

func TestInitializeBankTransferIssuesReference(t *testing.T) {
	f := newFixture(t)
	booking := f.seedBooking(t)

	resp, err := f.svc.Initialize(context.Background(), InitializeInput{
		BookingID: booking.ID.String(),
		Method:    "bank_transfer",
	})
	require.NoError(t, err)
	require.Empty(t, resp.RedirectURL)
	require.True(t, strings.HasPrefix(resp.Reference, "SKY-"+booking.ID.String()+"-"))
	require.Equal(t, "pending", resp.Payment.Status)
	require.Equal(t, int64(33600), resp.Payment.AmountCents)

	var events int64
	require.NoError(t, f.db.Model(&models.OutboxEvent{}).Count(&events).Error)
	require.Equal(t, int64(1), events)
}

func TestInitializeInstantMethodReturnsRedirect(t *testing.T) {
	f := newFixture(t, &fakeGateway{
		method: enums.PaymentMethodStripe,
		result: &gateways.InitializeResult{TransactionID: "cs_1", RedirectURL: "https://checkout.example/cs_1"},
	})
	booking := f.seedBooking(t)

	resp, err := f.svc.Initialize(context.Background(), InitializeInput{
		BookingID: booking.ID.String(),
		Method:    "stripe",
	})
	require.NoError(t, err)
	require.Equal(t, "https://checkout.example/cs_1", resp.RedirectURL)
	require.Equal(t, "cs_1", *resp.Payment.TransactionID)
}

func TestInitializeRejectsPaidBooking(t *testing.T) {
	f := newFixture(t)
	booking := f.seedBooking(t)
	f.seedPayment(t, booking, enums.PaymentMethodStripe, enums.PaymentStatusCompleted)

	_, err := f.svc.Initialize(context.Background(), InitializeInput{
		BookingID: booking.ID.String(),
		Method:    "bank_transfer",
	})
	require.Error(t, err)
	require.Equal(t, pkgerrors.CodeConflict, pkgerrors.As(err).Code())
}

func TestVerifyCompletesPaymentAndConfirmsBooking(t *testing.T) {
	f := newFixture(t)
	booking := f.seedBooking(t)
	payment := f.seedPayment(t, booking, enums.PaymentMethodBankTransfer, enums.PaymentStatusProcessing)
	actor := uuid.New()

	updated, err := f.svc.Verify(context.Background(), payment.ID, actor, VerifyInput{Notes: "matched statement line"})
	require.NoError(t, err)
	require.Equal(t, enums.PaymentStatusCompleted, updated.Status)

	var got models.Booking
	require.NoError(t, f.db.First(&got, "id = ?", booking.ID).Error)
	require.Equal(t, enums.BookingStatusConfirmed, got.Status)

	var audit models.PaymentAudit
	require.NoError(t, f.db.First(&audit, "payment_id = ?", payment.ID).Error)
	require.Equal(t, enums.AuditActionVerify, audit.Action)
	require.False(t, audit.OutOfPolicy)
	require.Equal(t, actor, audit.ActorID)
}

func TestVerifyRejectsInstantMethods(t *testing.T) {
	f := newFixture(t)
	booking := f.seedBooking(t)
	payment := f.seedPayment(t, booking, enums.PaymentMethodStripe, enums.PaymentStatusPending)

	_, err := f.svc.Verify(context.Background(), payment.ID, uuid.New(), VerifyInput{})
	require.Error(t, err)
	require.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())
}

func TestVerifyRejectsTerminalStatus(t *testing.T) {
	f := newFixture(t)
	booking := f.seedBooking(t)
	payment := f.seedPayment(t, booking, enums.PaymentMethodBankTransfer, enums.PaymentStatusCompleted)

	_, err := f.svc.Verify(context.Background(), payment.ID, uuid.New(), VerifyInput{})
	require.Error(t, err)
	require.Equal(t, pkgerrors.CodeStateConflict, pkgerrors.As(err).Code())
}

func TestVerifyRequiresProof(t *testing.T) {
	f := newFixture(t)
	booking := f.seedBooking(t)
	payment := f.seedPayment(t, booking, enums.PaymentMethodBankTransfer, enums.PaymentStatusPending)

	_, err := f.svc.Verify(context.Background(), payment.ID, uuid.New(), VerifyInput{})
	require.Error(t, err)
	require.Equal(t, pkgerrors.CodeStateConflict, pkgerrors.As(err).Code())

	var got models.Payment
	require.NoError(t, f.db.First(&got, "id = ?", payment.ID).Error)
	require.Equal(t, enums.PaymentStatusPending, got.Status)
}

func TestRefundAccumulatesAcrossPartials(t *testing.T) {
	f := newFixture(t)
	booking := f.seedBooking(t)
	payment := f.seedPayment(t, booking, enums.PaymentMethodStripe, enums.PaymentStatusCompleted)
	actor := uuid.New()

	first, err := f.svc.Refund(context.Background(), payment.ID, actor, RefundInput{AmountCents: 10000, Reason: "late cancellation"})
	require.NoError(t, err)
	require.Equal(t, int64(10000), first.RefundCents)
	require.Equal(t, enums.RefundStatusPartial, first.RefundStatus)
	require.Equal(t, enums.PaymentStatusCompleted, first.Status)

	second, err := f.svc.Refund(context.Background(), payment.ID, actor, RefundInput{AmountCents: 23600, Reason: "goodwill"})
	require.NoError(t, err)
	require.Equal(t, int64(33600), second.RefundCents)
	require.Equal(t, enums.RefundStatusFull, second.RefundStatus)
	require.Equal(t, enums.PaymentStatusRefunded, second.Status)
}

func TestRefundNeverExceedsCapturedAmount(t *testing.T) {
	f := newFixture(t)
	booking := f.seedBooking(t)
	payment := f.seedPayment(t, booking, enums.PaymentMethodStripe, enums.PaymentStatusCompleted)

	_, err := f.svc.Refund(context.Background(), payment.ID, uuid.New(), RefundInput{AmountCents: 33601, Reason: "too much"})
	require.Error(t, err)
	require.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())

	_, err = f.svc.Refund(context.Background(), payment.ID, uuid.New(), RefundInput{AmountCents: 20000, Reason: "partial"})
	require.NoError(t, err)

	_, err = f.svc.Refund(context.Background(), payment.ID, uuid.New(), RefundInput{AmountCents: 20000, Reason: "over the top"})
	require.Error(t, err)
}

func TestRefundRequiresCompletedPayment(t *testing.T) {
	f := newFixture(t)
	booking := f.seedBooking(t)
	payment := f.seedPayment(t, booking, enums.PaymentMethodStripe, enums.PaymentStatusPending)

	_, err := f.svc.Refund(context.Background(), payment.ID, uuid.New(), RefundInput{AmountCents: 100, Reason: "nope"})
	require.Error(t, err)
	require.Equal(t, pkgerrors.CodeStateConflict, pkgerrors.As(err).Code())
}

func TestUpdateStatusFlagsOutOfPolicyTransitions(t *testing.T) {
	f := newFixture(t)
	booking := f.seedBooking(t)
	payment := f.seedPayment(t, booking, enums.PaymentMethodStripe, enums.PaymentStatusRefunded)
	actor := uuid.New()

	updated, err := f.svc.UpdateStatus(context.Background(), payment.ID, actor, UpdateStatusInput{
		Status: "pending",
		Notes:  "provider reversed the refund",
	})
	require.NoError(t, err)
	require.Equal(t, enums.PaymentStatusPending, updated.Status)

	var audit models.PaymentAudit
	require.NoError(t, f.db.First(&audit, "payment_id = ?", payment.ID).Error)
	require.True(t, audit.OutOfPolicy)
	require.Equal(t, enums.AuditActionStatusOverride, audit.Action)
}

func TestUpdateStatusInPolicyIsNotFlagged(t *testing.T) {
	f := newFixture(t)
	booking := f.seedBooking(t)
	payment := f.seedPayment(t, booking, enums.PaymentMethodStripe, enums.PaymentStatusPending)

	_, err := f.svc.UpdateStatus(context.Background(), payment.ID, uuid.New(), UpdateStatusInput{Status: "processing"})
	require.NoError(t, err)

	var audit models.PaymentAudit
	require.NoError(t, f.db.First(&audit, "payment_id = ?", payment.ID).Error)
	require.False(t, audit.OutOfPolicy)
}

func TestUpdateStatusRejectsNoop(t *testing.T) {
	f := newFixture(t)
	booking := f.seedBooking(t)
	payment := f.seedPayment(t, booking, enums.PaymentMethodStripe, enums.PaymentStatusPending)

	_, err := f.svc.UpdateStatus(context.Background(), payment.ID, uuid.New(), UpdateStatusInput{Status: "pending"})
	require.Error(t, err)
	require.Equal(t, pkgerrors.CodeStateConflict, pkgerrors.As(err).Code())
}

func TestListFiltersAndPaginates(t *testing.T) {
	f := newFixture(t)
	booking := f.seedBooking(t)
	for i := 0; i < 25; i++ {
		f.seedPayment(t, booking, enums.PaymentMethodStripe, enums.PaymentStatusCompleted)
	}
	f.seedPayment(t, booking, enums.PaymentMethodBankTransfer, enums.PaymentStatusPending)

	status := enums.PaymentStatusCompleted
	resp, err := f.svc.List(context.Background(), ListFilters{
		Status: &status,
		Page:   pagination.Params{Page: 2, PerPage: 10},
	})
	require.NoError(t, err)
	require.Len(t, resp.Payments, 10)
	require.Equal(t, int64(25), resp.Page.Total)
	require.Equal(t, 3, resp.Page.TotalPages)
	require.Equal(t, 2, resp.Page.Page)
}

func TestListClampsPageBeyondRange(t *testing.T) {
	f := newFixture(t)
	booking := f.seedBooking(t)
	for i := 0; i < 5; i++ {
		f.seedPayment(t, booking, enums.PaymentMethodStripe, enums.PaymentStatusCompleted)
	}

	resp, err := f.svc.List(context.Background(), ListFilters{
		Page: pagination.Params{Page: 99, PerPage: 10},
	})
	require.NoError(t, err)
	require.Equal(t, 1, resp.Page.Page)
	require.Len(t, resp.Payments, 5)
}

func TestListFiltersByAmountBounds(t *testing.T) {
	f := newFixture(t)
	booking := f.seedBooking(t)
	for _, cents := range []int64{5000, 15000, 25000} {
		p := f.seedPayment(t, booking, enums.PaymentMethodStripe, enums.PaymentStatusCompleted)
		require.NoError(t, f.db.Model(p).Update("amount_cents", cents).Error)
	}

	min, max := int64(10000), int64(20000)
	resp, err := f.svc.List(context.Background(), ListFilters{
		AmountMin: &min,
		AmountMax: &max,
		Page:      pagination.Params{Page: 1, PerPage: 10},
	})
	require.NoError(t, err)
	require.Len(t, resp.Payments, 1)
	require.Equal(t, int64(15000), resp.Payments[0].AmountCents)
}

func TestMarkGatewayCompletedConfirmsBooking(t *testing.T) {
	f := newFixture(t)
	booking := f.seedBooking(t)
	payment := f.seedPayment(t, booking, enums.PaymentMethodStripe, enums.PaymentStatusPending)

	updated, err := f.svc.MarkGatewayCompleted(context.Background(), payment.ID, "pi_9f3a2c")
	require.NoError(t, err)
	require.Equal(t, enums.PaymentStatusCompleted, updated.Status)
	require.Equal(t, "pi_9f3a2c", *updated.TransactionID)

	var reloaded models.Booking
	require.NoError(t, f.db.First(&reloaded, "id = ?", booking.ID).Error)
	require.Equal(t, enums.BookingStatusConfirmed, reloaded.Status)

	var audit models.PaymentAudit
	require.NoError(t, f.db.First(&audit, "payment_id = ?", payment.ID).Error)
	require.Equal(t, enums.AuditActionGatewayConfirm, audit.Action)
}

func TestMarkGatewayCompletedIsIdempotent(t *testing.T) {
	f := newFixture(t)
	booking := f.seedBooking(t)
	payment := f.seedPayment(t, booking, enums.PaymentMethodStripe, enums.PaymentStatusCompleted)

	updated, err := f.svc.MarkGatewayCompleted(context.Background(), payment.ID, "pi_repeat")
	require.NoError(t, err)
	require.Equal(t, enums.PaymentStatusCompleted, updated.Status)

	// a replayed redirect return must not add a second audit entry
	var count int64
	require.NoError(t, f.db.Model(&models.PaymentAudit{}).Where("payment_id = ?", payment.ID).Count(&count).Error)
	require.Zero(t, count)
}

func TestMarkGatewayCompletedRejectsBankTransfers(t *testing.T) {
	f := newFixture(t)
	booking := f.seedBooking(t)
	payment := f.seedPayment(t, booking, enums.PaymentMethodBankTransfer, enums.PaymentStatusPending)

	_, err := f.svc.MarkGatewayCompleted(context.Background(), payment.ID, "")
	require.Error(t, err)
	require.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())
}

func TestStatsAggregatesByStatus(t *testing.T) {
	f := newFixture(t)
	booking := f.seedBooking(t)
	f.seedPayment(t, booking, enums.PaymentMethodStripe, enums.PaymentStatusCompleted)
	f.seedPayment(t, booking, enums.PaymentMethodStripe, enums.PaymentStatusCompleted)
	f.seedPayment(t, booking, enums.PaymentMethodBankTransfer, enums.PaymentStatusPending)

	stats, err := f.svc.Stats(context.Background())
	require.NoError(t, err)
	require.Equal(t, int64(3), stats.TotalCount)
	require.Equal(t, int64(3*33600), stats.TotalAmountCents)
	require.Equal(t, int64(2*33600), stats.CompletedAmountCents)
}

func TestDetailIncludesBookingAndAudits(t *testing.T) {
	f := newFixture(t)
	booking := f.seedBooking(t)
	payment := f.seedPayment(t, booking, enums.PaymentMethodBankTransfer, enums.PaymentStatusPending)

	_, err := f.svc.Verify(context.Background(), payment.ID, uuid.New(), VerifyInput{})
	require.NoError(t, err)

	detail, err := f.svc.Detail(context.Background(), payment.ID)
	require.NoError(t, err)
	require.NotNil(t, detail.Booking)
	require.Equal(t, booking.ID, detail.Booking.ID)
	require.Len(t, detail.Audits, 1)
	require.Equal(t, "verify", detail.Audits[0].Action)
}

func TestExportCSV(t *testing.T) {
	f := newFixture(t)
	booking := f.seedBooking(t)
	f.seedPayment(t, booking, enums.PaymentMethodStripe, enums.PaymentStatusCompleted)

	var sb strings.Builder
	require.NoError(t, f.svc.ExportCSV(context.Background(), &sb, ListFilters{}))

	lines := strings.Split(strings.TrimSpace(sb.String()), "\n")
	require.Len(t, lines, 2)
	require.Contains(t, lines[0], "payment_id,booking_id,guest_name")
	require.Contains(t, lines[1], "336.00")
	require.Contains(t, lines[1], "Ada Guest")
}
