package pagination

import "testing"

func TestTotalPagesCeil(t *testing.T) {
	cases := []struct {
		total   int64
		perPage int
		want    int
	}{
		{0, 20, 0},
		{1, 20, 1},
		{20, 20, 1},
		{21, 20, 2},
		{3, 1, 3},
		{10, 3, 4},
	}
	for _, tc := range cases {
		if got := TotalPages(tc.total, tc.perPage); got != tc.want {
			t.Fatalf("TotalPages(%d, %d) = %d, want %d", tc.total, tc.perPage, got, tc.want)
		}
	}
}

func TestNewPageClampsRequestedPage(t *testing.T) {
	page := NewPage(99, 20, 45)
	if page.TotalPages != 3 {
		t.Fatalf("expected 3 pages, got %d", page.TotalPages)
	}
	if page.Page != 3 {
		t.Fatalf("expected clamp to last page, got %d", page.Page)
	}

	page = NewPage(0, 20, 45)
	if page.Page != 1 {
		t.Fatalf("expected clamp to first page, got %d", page.Page)
	}

	page = NewPage(5, 20, 0)
	if page.Page != 1 {
		t.Fatalf("expected page 1 on empty set, got %d", page.Page)
	}
}

func TestNormalizePerPageBounds(t *testing.T) {
	if NormalizePerPage(0) != DefaultPerPage {
		t.Fatal("expected default per_page")
	}
	if NormalizePerPage(10_000) != MaxPerPage {
		t.Fatal("expected per_page cap")
	}
	if NormalizePerPage(7) != 7 {
		t.Fatal("expected passthrough")
	}
}

func TestOffset(t *testing.T) {
	page := NewPage(3, 10, 100)
	if page.Offset() != 20 {
		t.Fatalf("expected offset 20, got %d", page.Offset())
	}
}
