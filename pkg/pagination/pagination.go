package pagination

// Offset-paged listing support. Payment listings are page/per_page driven so
// admins can jump to arbitrary pages; per_page is clamped to protect the
// database.

const (
	// DefaultPerPage is the standard page size when per_page is not provided.
	DefaultPerPage = 20
	// MaxPerPage caps how many rows any page query can request.
	MaxPerPage = 100
)

// Params holds offset pagination inputs from controllers or services.
type Params struct {
	Page    int
	PerPage int
}

// Page describes the slice returned alongside a listing.
type Page struct {
	Page       int   `json:"page"`
	PerPage    int   `json:"per_page"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
}

// NormalizePerPage enforces the configured default and maximum page sizes.
func NormalizePerPage(perPage int) int {
	if perPage <= 0 {
		return DefaultPerPage
	}
	if perPage > MaxPerPage {
		return MaxPerPage
	}
	return perPage
}

// TotalPages computes ceil(total / perPage).
func TotalPages(total int64, perPage int) int {
	perPage = NormalizePerPage(perPage)
	pages := int((total + int64(perPage) - 1) / int64(perPage))
	if pages < 1 && total > 0 {
		pages = 1
	}
	return pages
}

// ClampPage bounds the requested page to [1, max(totalPages, 1)].
func ClampPage(page, totalPages int) int {
	if page < 1 {
		return 1
	}
	if totalPages < 1 {
		totalPages = 1
	}
	if page > totalPages {
		return totalPages
	}
	return page
}

// NewPage builds the page descriptor for a listing, clamping the requested
// page against the computed page count.
func NewPage(requested int, perPage int, total int64) Page {
	perPage = NormalizePerPage(perPage)
	totalPages := TotalPages(total, perPage)
	return Page{
		Page:       ClampPage(requested, totalPages),
		PerPage:    perPage,
		Total:      total,
		TotalPages: totalPages,
	}
}

// Offset converts the clamped page into a SQL offset.
func (p Page) Offset() int {
	return (p.Page - 1) * p.PerPage
}
