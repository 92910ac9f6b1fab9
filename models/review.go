package models

import "time"

// Company is the summary of the business listing shown at the top of the
// reviews page. Produced once per run, read-only afterwards.
type Company struct {
	ID          int64
	Name        string
	Rating      float64
	RatingCount int
}

// Review is one user-submitted review in page-encounter order. Optional
// fields stay empty when the page does not carry them.
type Review struct {
	Author       string
	IconURL      string
	PublishedAt  int64 // Unix seconds
	Text         string
	Stars        int
	CompanyReply string
}

// Published returns the review timestamp in local time.
func (r Review) Published() time.Time {
	return time.Unix(r.PublishedAt, 0)
}

// Result is the complete output of one fetch: the company summary plus the
// ordered review batch. Immutable once returned.
type Result struct {
	Company   Company
	Reviews   []Review
	FetchedAt time.Time
}

// ReviewStats holds the computed summary over a fetched review batch.
type ReviewStats struct {
	Total        int
	AverageStars float64
	WithText     int
	WithReply    int
	Oldest       time.Time
	Newest       time.Time
}
