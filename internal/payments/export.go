package payments

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"time"

	"github.com/shopspring/decimal"
)

var exportHeader = []string{
	"payment_id",
	"booking_id",
	"guest_name",
	"item_name",
	"method",
	"status",
	"amount",
	"currency",
	"refund_amount",
	"refund_status",
	"transaction_id",
	"payment_reference",
	"created_at",
}

// ExportCSV streams every payment matching the filters as CSV, newest first.
// Amounts are rendered in major units with two decimals.
func (s *Service) ExportCSV(ctx context.Context, w io.Writer, filters ListFilters) error {
	rows, err := s.repo.ListFiltered(ctx, filters)
	if err != nil {
		return err
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(exportHeader); err != nil {
		return err
	}

	for i := range rows {
		p := &rows[i]
		record := []string{
			p.ID.String(),
			p.BookingID.String(),
			p.GuestName,
			p.ItemName,
			p.Method.String(),
			p.Status.String(),
			majorUnits(p.AmountCents),
			p.Currency.String(),
			majorUnits(p.RefundCents),
			p.RefundStatus.String(),
			deref(p.TransactionID),
			deref(p.PaymentReference),
			p.CreatedAt.UTC().Format(time.RFC3339),
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

// ExportFilename names the download with the current date.
func ExportFilename(now time.Time) string {
	return fmt.Sprintf("payments-%s.csv", now.UTC().Format("2006-01-02"))
}

func majorUnits(cents int64) string {
	return decimal.NewFromInt(cents).Div(decimal.NewFromInt(100)).StringFixed(2)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
