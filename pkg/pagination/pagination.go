package pagination

const (
	// DefaultLimit is the standard page size when a limit is not provided.
	DefaultLimit = 50
	// MaxLimit caps how many rows any ledger query can request.
	MaxLimit = 500
)

// Params holds offset pagination inputs.
type Params struct {
	Limit  int
	Offset int
}

// Page describes the returned window.
type Page struct {
	Limit   int  `json:"limit"`
	Offset  int  `json:"offset"`
	Total   int  `json:"total"`
	HasMore bool `json:"hasMore"`
}

// NormalizeLimit enforces the configured default and maximum limits.
func NormalizeLimit(limit int) int {
	if limit <= 0 {
		return DefaultLimit
	}
	if limit > MaxLimit {
		return MaxLimit
	}
	return limit
}

// Window returns the [start, end) slice bounds for total items.
func (p Params) Window(total int) (int, int, Page) {
	limit := NormalizeLimit(p.Limit)
	offset := p.Offset
	if offset < 0 {
		offset = 0
	}
	if offset > total {
		offset = total
	}
	end := offset + limit
	if end > total {
		end = total
	}
	return offset, end, Page{Limit: limit, Offset: offset, Total: total, HasMore: end < total}
}
