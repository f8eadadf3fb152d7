package controllers

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/skyhaventravel/skyhaven-backend/internal/banktransfer"
	bookingsvc "github.com/skyhaventravel/skyhaven-backend/internal/bookings"
	paymentsvc "github.com/skyhaventravel/skyhaven-backend/internal/payments"
	dbpkg "github.com/skyhaventravel/skyhaven-backend/pkg/db"
	"github.com/skyhaventravel/skyhaven-backend/pkg/db/models"
	"github.com/skyhaventravel/skyhaven-backend/pkg/enums"
	"github.com/skyhaventravel/skyhaven-backend/pkg/outbox"
)

type recordingUploader struct {
	object      string
	contentType string
	size        int64
}

func (u *recordingUploader) UploadObject(_ context.Context, object, contentType string, body io.Reader) (string, error) {
	u.object = object
	u.contentType = contentType
	n, err := io.Copy(io.Discard, body)
	if err != nil {
		return "", err
	}
	u.size = n
	return "https://storage.example.com/skyhaven-proofs/" + object, nil
}

func newProofServer(t *testing.T) (*chi.Mux, *gorm.DB, *recordingUploader) {
	t.Helper()
	gdb, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, gdb.AutoMigrate(
		&models.Booking{},
		&models.Payment{},
		&models.PaymentAudit{},
		&models.OutboxEvent{},
	))

	uploader := &recordingUploader{}
	svc, err := banktransfer.NewService(banktransfer.ServiceParams{
		DB:       dbpkg.NewWithConn(gdb),
		Payments: paymentsvc.NewRepository(gdb),
		Bookings: bookingsvc.NewRepository(gdb),
		Uploader: uploader,
		Outbox:   outbox.NewService(outbox.NewRepository(gdb), nil),
	})
	require.NoError(t, err)

	r := chi.NewRouter()
	r.Post("/api/v1/payments/{paymentId}/proof", UploadPaymentProof(svc, nil))
	return r, gdb, uploader
}

func seedBankTransfer(t *testing.T, gdb *gorm.DB) *models.Payment {
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
	require.NoError(t, gdb.Create(booking).Error)

	ref := paymentsvc.NewReference(booking.ID)
	payment := &models.Payment{
		ID:               uuid.New(),
		BookingID:        booking.ID,
		Method:           enums.PaymentMethodBankTransfer,
		Status:           enums.PaymentStatusPending,
		AmountCents:      booking.TotalCents,
		Currency:         enums.CurrencyUSD,
		PaymentReference: &ref,
	}
	require.NoError(t, gdb.Create(payment).Error)
	return payment
}

func multipartProof(t *testing.T, field, filename, contentType string, payload []byte) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	header := textproto.MIMEHeader{}
	header.Set("Content-Disposition", `form-data; name="`+field+`"; filename="`+filename+`"`)
	header.Set("Content-Type", contentType)
	part, err := writer.CreatePart(header)
	require.NoError(t, err)
	_, err = part.Write(payload)
	require.NoError(t, err)
	require.NoError(t, writer.Close())
	return body, writer.FormDataContentType()
}

func TestUploadPaymentProofAcceptsJPEG(t *testing.T) {
	r, gdb, uploader := newProofServer(t)
	payment := seedBankTransfer(t, gdb)

	body, contentType := multipartProof(t, "file", "receipt.jpg", "image/jpeg", []byte("jpeg-bytes"))
	req := httptest.NewRequest(http.MethodPost, "/api/v1/payments/"+payment.ID.String()+"/proof", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "image/jpeg", uploader.contentType)
	require.Contains(t, uploader.object, payment.ID.String())

	var reloaded models.Payment
	require.NoError(t, gdb.First(&reloaded, "id = ?", payment.ID).Error)
	require.Equal(t, enums.PaymentStatusProcessing, reloaded.Status)
	require.NotNil(t, reloaded.ProofOfPayment)
}

func TestUploadPaymentProofRejectsUnknownType(t *testing.T) {
	r, gdb, _ := newProofServer(t)
	payment := seedBankTransfer(t, gdb)

	body, contentType := multipartProof(t, "file", "receipt.gif", "image/gif", []byte("gif-bytes"))
	req := httptest.NewRequest(http.MethodPost, "/api/v1/payments/"+payment.ID.String()+"/proof", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUploadPaymentProofMissingFile(t *testing.T) {
	r, gdb, _ := newProofServer(t)
	payment := seedBankTransfer(t, gdb)

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	require.NoError(t, writer.WriteField("note", "no file attached"))
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/payments/"+payment.ID.String()+"/proof", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUploadPaymentProofInvalidID(t *testing.T) {
	r, _, _ := newProofServer(t)
	body, contentType := multipartProof(t, "file", "receipt.pdf", "application/pdf", []byte("pdf"))
	req := httptest.NewRequest(http.MethodPost, "/api/v1/payments/not-a-uuid/proof", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}
