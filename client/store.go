package client

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// StoreState is a read-only snapshot of the record store. Slices are copies;
// mutating them does not touch the store.
type StoreState struct {
	Payments []Payment
	Page     Page
	Filters  Filters
	Stats    *Stats
	Selected *PaymentDetail

	ListLoading   bool
	StatsLoading  bool
	DetailLoading bool
	Err           string
}

// PaymentRecordStore is the single local projection of payment records. All
// reads go through Snapshot; all writes go through the operation methods,
// which fetch from the server and apply the response under the store lock.
//
// Every operation class (list, stats, detail) stamps its outgoing request
// with a sequence number and applies the response only if no newer request
// of that class has been issued since, so a slow early response can never
// overwrite a later one. A filter change additionally cancels the in-flight
// listing before issuing the new one.
type PaymentRecordStore struct {
	api *Client

	mu       sync.Mutex
	payments []Payment
	page     Page
	filters  Filters
	stats    *Stats
	selected *PaymentDetail

	listLoading   bool
	statsLoading  bool
	detailLoading bool
	err           string

	listSeq    uint64
	statsSeq   uint64
	detailSeq  uint64
	cancelList context.CancelFunc
}

func NewPaymentRecordStore(api *Client) *PaymentRecordStore {
	return &PaymentRecordStore{
		api:  api,
		page: Page{Page: 1, PerPage: 20},
	}
}

// Snapshot returns a copy of the current state.
func (s *PaymentRecordStore) Snapshot() StoreState {
	s.mu.Lock()
	defer s.mu.Unlock()

	state := StoreState{
		Page:          s.page,
		Filters:       s.filters,
		ListLoading:   s.listLoading,
		StatsLoading:  s.statsLoading,
		DetailLoading: s.detailLoading,
		Err:           s.err,
	}
	if len(s.payments) > 0 {
		state.Payments = make([]Payment, len(s.payments))
		copy(state.Payments, s.payments)
	}
	if s.stats != nil {
		stats := *s.stats
		state.Stats = &stats
	}
	if s.selected != nil {
		detail := *s.selected
		state.Selected = &detail
	}
	return state
}

// ListPayments fetches the requested page with the current filters. On
// success the page and pagination are replaced atomically; on failure the
// previous page is kept and Err is set. The error is also returned for
// callers that want it directly.
func (s *PaymentRecordStore) ListPayments(ctx context.Context, page int) error {
	s.mu.Lock()
	s.listSeq++
	seq := s.listSeq
	if s.cancelList != nil {
		s.cancelList()
	}
	listCtx, cancel := context.WithCancel(ctx)
	s.cancelList = cancel
	filters := s.filters
	perPage := s.page.PerPage
	s.listLoading = true
	s.mu.Unlock()
	defer cancel()

	result, err := s.api.ListPayments(listCtx, filters, page, perPage)

	s.mu.Lock()
	defer s.mu.Unlock()
	if seq != s.listSeq {
		// A newer listing was issued while this one was in flight.
		return nil
	}
	s.listLoading = false
	if err != nil {
		s.err = err.Error()
		return err
	}
	s.err = ""
	s.payments = result.Payments
	s.page = result.Page
	return nil
}

// FetchStats refreshes the global aggregate. Failure does not touch the
// listing.
func (s *PaymentRecordStore) FetchStats(ctx context.Context) error {
	s.mu.Lock()
	s.statsSeq++
	seq := s.statsSeq
	s.statsLoading = true
	s.mu.Unlock()

	stats, err := s.api.PaymentStats(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	if seq != s.statsSeq {
		return nil
	}
	s.statsLoading = false
	if err != nil {
		s.err = err.Error()
		return err
	}
	s.stats = stats
	return nil
}

// FetchDetail loads one payment into the selected slot.
func (s *PaymentRecordStore) FetchDetail(ctx context.Context, paymentID uuid.UUID) error {
	s.mu.Lock()
	s.detailSeq++
	seq := s.detailSeq
	s.detailLoading = true
	s.mu.Unlock()

	detail, err := s.api.PaymentDetail(ctx, paymentID)

	s.mu.Lock()
	defer s.mu.Unlock()
	if seq != s.detailSeq {
		return nil
	}
	s.detailLoading = false
	if err != nil {
		s.err = err.Error()
		return err
	}
	s.selected = detail
	return nil
}

// SetFilters replaces the filter set wholesale and reloads page one. Any
// in-flight listing is cancelled first.
func (s *PaymentRecordStore) SetFilters(ctx context.Context, filters Filters) error {
	s.mu.Lock()
	s.filters = filters
	s.mu.Unlock()
	return s.ListPayments(ctx, 1)
}

// ResetFilters clears every filter and reloads page one. Calling it twice is
// the same as calling it once.
func (s *PaymentRecordStore) ResetFilters(ctx context.Context) error {
	return s.SetFilters(ctx, Filters{})
}

// CurrentPage reports the page the store last loaded, for post-mutation
// re-fetches.
func (s *PaymentRecordStore) CurrentPage() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.page.Page
}

// ApplyMutation patches a server-confirmed record into the loaded page and
// into the selected detail when the ids match. It is a cache update only;
// state changes always originate server-side.
func (s *PaymentRecordStore) ApplyMutation(updated Payment) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.payments {
		if s.payments[i].ID == updated.ID {
			s.payments[i] = updated
		}
	}
	if s.selected != nil && s.selected.Payment.ID == updated.ID {
		s.selected.Payment = updated
	}
}
