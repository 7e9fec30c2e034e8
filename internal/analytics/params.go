package analytics

import (
	"errors"
)

// DefaultTopLimit caps top-N breakdowns unless the caller asks otherwise.
const DefaultTopLimit = 10

// DefaultHistogramDays is the daily histogram window.
const DefaultHistogramDays = 30

// ScopedQueryParams scopes a query to exactly one link or one owning user.
// Limit 0 means the default; Days 0 means the default histogram window.
type ScopedQueryParams struct {
	LinkID  uint
	OwnerID uint
	Limit   int
	Days    int
}

// NewLinkScopedParams builds params for one link's events.
func NewLinkScopedParams(linkID uint) ScopedQueryParams {
	return ScopedQueryParams{LinkID: linkID, Limit: DefaultTopLimit, Days: DefaultHistogramDays}
}

// NewOwnerScopedParams builds params over all of a user's links.
func NewOwnerScopedParams(ownerID uint) ScopedQueryParams {
	return ScopedQueryParams{OwnerID: ownerID, Limit: DefaultTopLimit, Days: DefaultHistogramDays}
}

// scope returns the WHERE fragment and its argument for the chosen scope key.
func (p ScopedQueryParams) scope() (string, interface{}, error) {
	switch {
	case p.LinkID != 0 && p.OwnerID != 0:
		return "", nil, errors.New("query scope must be a link or an owner, not both")
	case p.LinkID != 0:
		return "link_id = ?", p.LinkID, nil
	case p.OwnerID != 0:
		return "owner_id = ?", p.OwnerID, nil
	default:
		return "", nil, errors.New("query scope required")
	}
}

func (p ScopedQueryParams) limit() int {
	if p.Limit == 0 {
		return DefaultTopLimit
	}
	return p.Limit
}

func (p ScopedQueryParams) days() int {
	if p.Days == 0 {
		return DefaultHistogramDays
	}
	return p.Days
}
