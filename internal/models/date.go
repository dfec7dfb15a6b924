package models

import "time"

// DateLayout is the wire and storage format for record dates.
const DateLayout = "2006-01-02"

// Today returns the current date in DateLayout.
func Today() string {
	return time.Now().Format(DateLayout)
}

// DateRange bounds a query by record date. Empty bounds are open.
type DateRange struct {
	Start string `json:"start_date,omitempty"`
	End   string `json:"end_date,omitempty"`
}

// Key identifies the range for caching.
func (r DateRange) Key() string {
	return r.Start + ".." + r.End
}
