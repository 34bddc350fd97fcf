package models

import (
	"net/url"
	"strconv"
)

// Period is a relative time window filter.
type Period string

const (
	Period7D  Period = "7d"
	Period30D Period = "30d"
	Period90D Period = "90d"
	Period1Y  Period = "1y"
	PeriodAll Period = "all"
)

// Chamber filters by legislative body. Empty string and "any" both mean
// unrestricted.
type Chamber string

const (
	ChamberSenate Chamber = "senate"
	ChamberHouse  Chamber = "house"
	ChamberAny    Chamber = "any"
)

// Unrestricted reports whether the chamber selects no filter.
func (c Chamber) Unrestricted() bool {
	return c == "" || c == ChamberAny
}

// QueryKey is the canonical identity of a FilterState. It indexes the cache
// and deduplicates in-flight fetches.
type QueryKey string

// FilterState is an immutable filter selection. A filter change on the
// dashboard replaces the whole value.
type FilterState struct {
	Period  Period
	Chamber Chamber
	Limit   int
	Cursor  string
}

// Key canonicalizes the filter into a stable QueryKey. Fields that select
// "no filter" are omitted, so chamber=any and an unset chamber collapse to
// the same key. url.Values.Encode sorts by field name, which fixes the
// canonical ordering.
func (f FilterState) Key() QueryKey {
	return QueryKey(url.Values(f.Query()).Encode())
}

// Query returns the request parameters for the aggregation API. The same
// omission rules as Key apply, so the server can reconstruct the key.
func (f FilterState) Query() map[string][]string {
	v := url.Values{}
	if f.Period != "" {
		v.Set("period", string(f.Period))
	}
	if !f.Chamber.Unrestricted() {
		v.Set("chamber", string(f.Chamber))
	}
	if f.Limit > 0 {
		v.Set("limit", strconv.Itoa(f.Limit))
	}
	if f.Cursor != "" {
		v.Set("cursor", f.Cursor)
	}
	return v
}
