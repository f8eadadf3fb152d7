package controllers

import (
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/skyhaventravel/skyhaven-backend/pkg/enums"
	"github.com/skyhaventravel/skyhaven-backend/pkg/pagination"
)

func TestParseListFiltersDefaults(t *testing.T) {
	r := httptest.NewRequest("GET", "/api/v1/admin/payments/", nil)
	filters, err := parseListFilters(r)
	require.NoError(t, err)
	require.Nil(t, filters.Status)
	require.Nil(t, filters.Method)
	require.Nil(t, filters.BookingID)
	require.Empty(t, filters.Search)
	require.Equal(t, pagination.Params{Page: 1, PerPage: pagination.DefaultPerPage}, filters.Page)
}

func TestParseListFiltersFull(t *testing.T) {
	bookingID := uuid.New()
	r := httptest.NewRequest("GET", "/api/v1/admin/payments/?status=completed&method=bank_transfer&booking_id="+bookingID.String()+
		"&search=SKY-&date_from=2026-01-01&date_to=2026-01-31&amount_min=1000&amount_max=50000&page=3&per_page=50", nil)
	filters, err := parseListFilters(r)
	require.NoError(t, err)
	require.Equal(t, enums.PaymentStatusCompleted, *filters.Status)
	require.Equal(t, enums.PaymentMethodBankTransfer, *filters.Method)
	require.Equal(t, bookingID, *filters.BookingID)
	require.Equal(t, "SKY-", filters.Search)
	require.EqualValues(t, 1000, *filters.AmountMin)
	require.EqualValues(t, 50000, *filters.AmountMax)
	require.Equal(t, 3, filters.Page.Page)
	require.Equal(t, 50, filters.Page.PerPage)
	// date_to covers the entire named day
	require.True(t, filters.DateTo.After(*filters.DateFrom))
	require.Equal(t, 31, filters.DateTo.Day())
}

func TestParseListFiltersRejectsBadInput(t *testing.T) {
	cases := map[string]string{
		"unknown status":         "?status=settled",
		"unknown method":         "?method=cash",
		"bad booking id":         "?booking_id=not-a-uuid",
		"bad date":               "?date_from=01/02/2026",
		"inverted range":         "?date_from=2026-02-01&date_to=2026-01-01",
		"per_page too big":       "?per_page=5000",
		"non-numeric page":       "?page=abc",
		"negative amount_min":    "?amount_min=-1",
		"non-numeric amount_max": "?amount_max=lots",
		"inverted amount range":  "?amount_min=500&amount_max=100",
	}
	for name, query := range cases {
		t.Run(name, func(t *testing.T) {
			r := httptest.NewRequest("GET", "/api/v1/admin/payments/"+query, nil)
			_, err := parseListFilters(r)
			require.Error(t, err)
		})
	}
}
