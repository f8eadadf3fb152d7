// Package bankaccounts surfaces the destination accounts shown to customers
// paying by bank transfer.
package bankaccounts

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/skyhaventravel/skyhaven-backend/pkg/db/models"
)

// AccountResponse is the wire representation of a destination account.
type AccountResponse struct {
	ID            uuid.UUID `json:"id"`
	BankName      string    `json:"bankName"`
	AccountNumber string    `json:"accountNumber"`
	AccountName   string    `json:"accountName"`
}

// Repository handles bank account persistence.
type Repository interface {
	ListActive(ctx context.Context) ([]models.BankAccount, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a bank account repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) ListActive(ctx context.Context) ([]models.BankAccount, error) {
	var rows []models.BankAccount
	err := r.db.WithContext(ctx).
		Where("active = ?", true).
		Order("bank_name ASC").
		Find(&rows).Error
	return rows, err
}

// Service exposes read access to active accounts.
type Service struct {
	repo Repository
}

// NewService builds a bank account service.
func NewService(repo Repository) (*Service, error) {
	if repo == nil {
		return nil, errors.New("repo is required")
	}
	return &Service{repo: repo}, nil
}

// ListActive returns the accounts customers can wire to.
func (s *Service) ListActive(ctx context.Context) ([]AccountResponse, error) {
	rows, err := s.repo.ListActive(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]AccountResponse, 0, len(rows))
	for _, row := range rows {
		out = append(out, AccountResponse{
			ID:            row.ID,
			BankName:      row.BankName,
			AccountNumber: row.AccountNumber,
			AccountName:   row.AccountName,
		})
	}
	return out, nil
}
