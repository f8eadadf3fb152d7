package banktransfer

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/skyhaventravel/skyhaven-backend/internal/bookings"
	"github.com/skyhaventravel/skyhaven-backend/internal/payments"
	dbpkg "github.com/skyhaventravel/skyhaven-backend/pkg/db"
	"github.com/skyhaventravel/skyhaven-backend/pkg/db/models"
	"github.com/skyhaventravel/skyhaven-backend/pkg/enums"
	pkgerrors "github.com/skyhaventravel/skyhaven-backend/pkg/errors"
)

type stubUploader struct {
	object  string
	content string
	err     error
}

func (s *stubUploader) UploadObject(_ context.Context, object, _ string, body io.Reader) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	s.object = object
	b, _ := io.ReadAll(body)
	s.content = string(b)
	return "https://storage.googleapis.com/sky-proofs/" + object, nil
}

type fixture struct {
	svc      *Service
	db       *gorm.DB
	uploader *stubUploader
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	gdb, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, gdb.AutoMigrate(&models.Booking{}, &models.Payment{}, &models.OutboxEvent{}))

	uploader := &stubUploader{}
	svc, err := NewService(ServiceParams{
		DB:       dbpkg.NewWithConn(gdb),
		Payments: payments.NewRepository(gdb),
		Bookings: bookings.NewRepository(gdb),
		Uploader: uploader,
	})
	require.NoError(t, err)
	return &fixture{svc: svc, db: gdb, uploader: uploader}
}

func (f *fixture) seedTransfer(t *testing.T, bookingStatus enums.BookingStatus, paymentStatus enums.PaymentStatus) (*models.Booking, *models.Payment) {
	t.Helper()
	booking := &models.Booking{
		ID:          uuid.New(),
		BookingType: enums.BookingTypeCar,
		Status:      bookingStatus,
		ItemID:      uuid.New(),
		ItemName:    "Compact SUV",
		GuestName:   "Ada Guest",
		GuestEmail:  "ada@example.com",
		TotalCents:  22400,
		Currency:    enums.CurrencyUSD,
	}
	require.NoError(t, f.db.Create(booking).Error)

	ref := "SKY-" + booking.ID.String() + "-000042"
	payment := &models.Payment{
		ID:               uuid.New(),
		BookingID:        booking.ID,
		Method:           enums.PaymentMethodBankTransfer,
		Status:           paymentStatus,
		AmountCents:      booking.TotalCents,
		Currency:         booking.Currency,
		PaymentReference: &ref,
		RefundStatus:     enums.RefundStatusNone,
		GuestName:        booking.GuestName,
		ItemName:         booking.ItemName,
	}
	// The upload path is the only way past pending, so any seeded payment
	// beyond it carries a proof document.
	if paymentStatus != enums.PaymentStatusPending {
		proof := "https://storage.googleapis.com/sky-proofs/proofs/" + booking.ID.String() + "/" + payment.ID.String() + ".pdf"
		payment.ProofOfPayment = &proof
	}
	require.NoError(t, f.db.Create(payment).Error)
	return booking, payment
}

func TestUploadProofMovesPaymentToProcessing(t *testing.T) {
	f := newFixture(t)
	booking, payment := f.seedTransfer(t, enums.BookingStatusPending, enums.PaymentStatusPending)

	resp, err := f.svc.UploadProof(context.Background(), payment.ID, "application/pdf", 128, strings.NewReader("receipt"))
	require.NoError(t, err)
	require.Equal(t, "processing", resp.Status)
	require.NotNil(t, resp.ProofOfPayment)
	require.Contains(t, *resp.ProofOfPayment, booking.ID.String())
	require.Equal(t, "receipt", f.uploader.content)

	var events int64
	require.NoError(t, f.db.Model(&models.OutboxEvent{}).Count(&events).Error)
	require.Equal(t, int64(1), events)
}

func TestUploadProofRejectsUnsupportedType(t *testing.T) {
	f := newFixture(t)
	_, payment := f.seedTransfer(t, enums.BookingStatusPending, enums.PaymentStatusPending)

	_, err := f.svc.UploadProof(context.Background(), payment.ID, "text/plain", 128, strings.NewReader("x"))
	require.Error(t, err)
	require.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())
}

func TestUploadProofRejectsOversizedFile(t *testing.T) {
	f := newFixture(t)
	_, payment := f.seedTransfer(t, enums.BookingStatusPending, enums.PaymentStatusPending)

	_, err := f.svc.UploadProof(context.Background(), payment.ID, "image/png", MaxProofBytes+1, strings.NewReader("x"))
	require.Error(t, err)
	require.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())
}

func TestUploadProofRejectsVerifiedPayment(t *testing.T) {
	f := newFixture(t)
	_, payment := f.seedTransfer(t, enums.BookingStatusConfirmed, enums.PaymentStatusCompleted)

	_, err := f.svc.UploadProof(context.Background(), payment.ID, "image/png", 128, strings.NewReader("x"))
	require.Error(t, err)
	require.Equal(t, pkgerrors.CodeStateConflict, pkgerrors.As(err).Code())
}

func TestCompletePaymentParksBooking(t *testing.T) {
	f := newFixture(t)
	booking, _ := f.seedTransfer(t, enums.BookingStatusPending, enums.PaymentStatusProcessing)

	status, err := f.svc.CompletePayment(context.Background(), booking.ID)
	require.NoError(t, err)
	require.Equal(t, enums.BookingStatusPendingVerification, status)

	var got models.Booking
	require.NoError(t, f.db.First(&got, "id = ?", booking.ID).Error)
	require.Equal(t, enums.BookingStatusPendingVerification, got.Status)
}

func TestCompletePaymentIsRetrySafe(t *testing.T) {
	f := newFixture(t)
	booking, _ := f.seedTransfer(t, enums.BookingStatusPending, enums.PaymentStatusProcessing)

	_, err := f.svc.CompletePayment(context.Background(), booking.ID)
	require.NoError(t, err)

	status, err := f.svc.CompletePayment(context.Background(), booking.ID)
	require.NoError(t, err)
	require.Equal(t, enums.BookingStatusPendingVerification, status)
}

func TestCompletePaymentRequiresProof(t *testing.T) {
	f := newFixture(t)
	booking, payment := f.seedTransfer(t, enums.BookingStatusPending, enums.PaymentStatusPending)

	_, err := f.svc.CompletePayment(context.Background(), booking.ID)
	require.Error(t, err)
	require.Equal(t, pkgerrors.CodeStateConflict, pkgerrors.As(err).Code())

	var gotBooking models.Booking
	require.NoError(t, f.db.First(&gotBooking, "id = ?", booking.ID).Error)
	require.Equal(t, enums.BookingStatusPending, gotBooking.Status)

	// Uploading the proof unblocks the same call.
	_, err = f.svc.UploadProof(context.Background(), payment.ID, "application/pdf", 128, strings.NewReader("receipt"))
	require.NoError(t, err)

	status, err := f.svc.CompletePayment(context.Background(), booking.ID)
	require.NoError(t, err)
	require.Equal(t, enums.BookingStatusPendingVerification, status)
}

func TestCompletePaymentRejectsConfirmedBooking(t *testing.T) {
	f := newFixture(t)
	booking, _ := f.seedTransfer(t, enums.BookingStatusConfirmed, enums.PaymentStatusCompleted)

	_, err := f.svc.CompletePayment(context.Background(), booking.ID)
	require.Error(t, err)
	require.Equal(t, pkgerrors.CodeStateConflict, pkgerrors.As(err).Code())
}

func TestCompletePaymentRequiresOpenTransfer(t *testing.T) {
	f := newFixture(t)
	booking := &models.Booking{
		ID:          uuid.New(),
		BookingType: enums.BookingTypeHotel,
		Status:      enums.BookingStatusPending,
		ItemID:      uuid.New(),
		ItemName:    "Harbor View Suite",
		GuestName:   "Ada Guest",
		GuestEmail:  "ada@example.com",
		TotalCents:  33600,
		Currency:    enums.CurrencyUSD,
	}
	require.NoError(t, f.db.Create(booking).Error)

	_, err := f.svc.CompletePayment(context.Background(), booking.ID)
	require.Error(t, err)
	require.Equal(t, pkgerrors.CodeStateConflict, pkgerrors.As(err).Code())
}
