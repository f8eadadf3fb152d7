package payments

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/skyhaventravel/skyhaven-backend/pkg/db/models"
	"github.com/skyhaventravel/skyhaven-backend/pkg/enums"
	pkgerrors "github.com/skyhaventravel/skyhaven-backend/pkg/errors"
	"github.com/skyhaventravel/skyhaven-backend/pkg/pagination"
)

// Repository handles payment persistence.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, payment *models.Payment) error
	Update(ctx context.Context, payment *models.Payment) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Payment, error)
	FindByReference(ctx context.Context, reference string) (*models.Payment, error)
	FindByBookingID(ctx context.Context, bookingID uuid.UUID) ([]models.Payment, error)
	List(ctx context.Context, filters ListFilters) ([]models.Payment, pagination.Page, error)
	ListFiltered(ctx context.Context, filters ListFilters) ([]models.Payment, error)
	Stats(ctx context.Context) (*StatsResponse, error)
	InsertAudit(ctx context.Context, audit *models.PaymentAudit) error
	ListAudits(ctx context.Context, paymentID uuid.UUID) ([]models.PaymentAudit, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a payment repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, payment *models.Payment) error {
	return r.db.WithContext(ctx).Create(payment).Error
}

func (r *repository) Update(ctx context.Context, payment *models.Payment) error {
	return r.db.WithContext(ctx).Save(payment).Error
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Payment, error) {
	var payment models.Payment
	err := r.db.WithContext(ctx).First(&payment, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "payment not found")
	}
	if err != nil {
		return nil, err
	}
	return &payment, nil
}

func (r *repository) FindByReference(ctx context.Context, reference string) (*models.Payment, error) {
	var payment models.Payment
	err := r.db.WithContext(ctx).First(&payment, "payment_reference = ?", reference).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "payment not found")
	}
	if err != nil {
		return nil, err
	}
	return &payment, nil
}

func (r *repository) FindByBookingID(ctx context.Context, bookingID uuid.UUID) ([]models.Payment, error) {
	var rows []models.Payment
	err := r.db.WithContext(ctx).
		Where("booking_id = ?", bookingID).
		Order("created_at DESC").
		Find(&rows).Error
	return rows, err
}

func (r *repository) applyFilters(ctx context.Context, filters ListFilters) *gorm.DB {
	q := r.db.WithContext(ctx).Model(&models.Payment{})
	if filters.Status != nil {
		q = q.Where("status = ?", *filters.Status)
	}
	if filters.Method != nil {
		q = q.Where("method = ?", *filters.Method)
	}
	if filters.BookingID != nil {
		q = q.Where("booking_id = ?", *filters.BookingID)
	}
	if filters.Search != "" {
		like := "%" + filters.Search + "%"
		q = q.Where(
			"guest_name LIKE ? OR item_name LIKE ? OR payment_reference LIKE ? OR transaction_id LIKE ?",
			like, like, like, like,
		)
	}
	if filters.DateFrom != nil {
		q = q.Where("created_at >= ?", *filters.DateFrom)
	}
	if filters.DateTo != nil {
		q = q.Where("created_at <= ?", *filters.DateTo)
	}
	if filters.AmountMin != nil {
		q = q.Where("amount_cents >= ?", *filters.AmountMin)
	}
	if filters.AmountMax != nil {
		q = q.Where("amount_cents <= ?", *filters.AmountMax)
	}
	return q
}

// List returns one page of payments newest-first, with the page clamped to
// the available range.
func (r *repository) List(ctx context.Context, filters ListFilters) ([]models.Payment, pagination.Page, error) {
	var total int64
	if err := r.applyFilters(ctx, filters).Count(&total).Error; err != nil {
		return nil, pagination.Page{}, err
	}

	page := pagination.NewPage(filters.Page.Page, filters.Page.PerPage, total)

	var rows []models.Payment
	err := r.applyFilters(ctx, filters).
		Order("created_at DESC").
		Order("id DESC").
		Limit(page.PerPage).
		Offset(page.Offset()).
		Find(&rows).Error
	if err != nil {
		return nil, pagination.Page{}, err
	}
	return rows, page, nil
}

// ListFiltered returns every matching payment without paging, for exports.
func (r *repository) ListFiltered(ctx context.Context, filters ListFilters) ([]models.Payment, error) {
	var rows []models.Payment
	err := r.applyFilters(ctx, filters).
		Order("created_at DESC").
		Order("id DESC").
		Find(&rows).Error
	return rows, err
}

func (r *repository) Stats(ctx context.Context) (*StatsResponse, error) {
	var buckets []StatusBucket
	err := r.db.WithContext(ctx).
		Model(&models.Payment{}).
		Select("status AS status, COUNT(*) AS count, COALESCE(SUM(amount_cents), 0) AS amount_cents").
		Group("status").
		Scan(&buckets).Error
	if err != nil {
		return nil, err
	}

	stats := &StatsResponse{ByStatus: buckets}
	for _, b := range buckets {
		stats.TotalCount += b.Count
		stats.TotalAmountCents += b.AmountCents
		if b.Status == enums.PaymentStatusCompleted.String() {
			stats.CompletedAmountCents += b.AmountCents
		}
	}

	var refunded int64
	err = r.db.WithContext(ctx).
		Model(&models.Payment{}).
		Select("COALESCE(SUM(refund_cents), 0)").
		Scan(&refunded).Error
	if err != nil {
		return nil, err
	}
	stats.RefundedAmountCents = refunded
	return stats, nil
}

func (r *repository) InsertAudit(ctx context.Context, audit *models.PaymentAudit) error {
	return r.db.WithContext(ctx).Create(audit).Error
}

func (r *repository) ListAudits(ctx context.Context, paymentID uuid.UUID) ([]models.PaymentAudit, error) {
	var rows []models.PaymentAudit
	err := r.db.WithContext(ctx).
		Where("payment_id = ?", paymentID).
		Order("created_at ASC").
		Order("id ASC").
		Find(&rows).Error
	return rows, err
}
