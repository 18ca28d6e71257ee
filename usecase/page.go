package usecase

const (
	DefaultPageLimit = 50
	MaxPageLimit     = 200
)

// Page bounds a list response.
type Page struct {
	Limit  int
	Offset int
}

// NewPage clamps raw query values: a missing or non-positive limit becomes DefaultPageLimit
// and anything above MaxPageLimit is capped.
func NewPage(limit, offset int) Page {
	if limit <= 0 {
		limit = DefaultPageLimit
	}
	if limit > MaxPageLimit {
		limit = MaxPageLimit
	}
	if offset < 0 {
		offset = 0
	}
	return Page{Limit: limit, Offset: offset}
}

// Paginate returns the slice of items p selects. A zero Limit keeps everything after Offset.
func Paginate[T any](items []T, p Page) []T {
	if p.Offset >= len(items) {
		return items[:0]
	}
	items = items[p.Offset:]
	if p.Limit > 0 && p.Limit < len(items) {
		items = items[:p.Limit]
	}
	return items
}
