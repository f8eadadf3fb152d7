package bookings

import (
	"time"

	"github.com/shopspring/decimal"
)

// taxRate is applied on top of the nightly or daily subtotal.
var taxRate = decimal.NewFromFloat(0.12)

// ChargeableDays counts billable days between start and end. Partial days
// round up and a same-day booking still bills one day.
func ChargeableDays(start, end time.Time) int64 {
	if !end.After(start) {
		return 1
	}
	span := end.Sub(start)
	days := int64(span / (24 * time.Hour))
	if span%(24*time.Hour) != 0 {
		days++
	}
	if days < 1 {
		days = 1
	}
	return days
}

// Quote prices a stay: unit price times chargeable days plus tax, rounded to
// the nearest cent.
func Quote(unitPriceCents int64, start, end time.Time) (days int64, totalCents int64) {
	days = ChargeableDays(start, end)
	subtotal := decimal.NewFromInt(unitPriceCents).Mul(decimal.NewFromInt(days))
	total := subtotal.Mul(decimal.NewFromInt(1).Add(taxRate))
	return days, total.Round(0).IntPart()
}
