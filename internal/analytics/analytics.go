// Package analytics provides the read-only aggregation queries and report
// assemblers behind the link and user dashboards.
//
// The package is organized into focused modules:
//   - breakdowns.go: Top-N grouped counts (country, city, device, browser, referrer, UTM)
//   - timeseries.go: Daily click histogram
//   - totals.go: Total/unique/period counts and last-click timestamps
//   - reports.go: Per-link and per-user report assembly
//
// All queries run against the append-only click_events table with no special
// isolation; concurrent writers may make counts momentarily inconsistent
// across queries, which is acceptable for dashboard semantics.
package analytics

import (
	"time"

	"linkpress/internal/timeframe"
)

// MetricCountResult represents a generic key-count pair for query results
type MetricCountResult struct {
	Name  string `json:"name"`
	Count int64  `json:"count"`
}

// LinkReport is the full analytics payload for a single link.
type LinkReport struct {
	LinkID       uint       `json:"link_id"`
	Title        string     `json:"title"`
	ShortCode    string     `json:"short_code"`
	TotalClicks  int64      `json:"total_clicks"`
	UniqueClicks int64      `json:"unique_clicks"`
	LastClickAt  *time.Time `json:"last_click_at"`

	Countries    []MetricCountResult `json:"countries"`
	Cities       []MetricCountResult `json:"cities"`
	Devices      []MetricCountResult `json:"devices"`
	Browsers     []MetricCountResult `json:"browsers"`
	Referrers    []MetricCountResult `json:"referrers"`
	UTMSources   []MetricCountResult `json:"utm_sources"`
	UTMMediums   []MetricCountResult `json:"utm_mediums"`
	UTMCampaigns []MetricCountResult `json:"utm_campaigns"`

	DailyClicks []timeframe.DateStat `json:"daily_clicks"`
}

// UserReport is the account-wide analytics payload across all of a user's
// links. TotalClicks comes from the denormalized per-link counters while
// UniqueClicks and TopLinks derive from the event log, so the numbers can
// diverge if a counter and the log ever disagree.
type UserReport struct {
	UserID       uint  `json:"user_id"`
	TotalLinks   int   `json:"total_links"`
	TotalClicks  int64 `json:"total_clicks"`
	UniqueClicks int64 `json:"unique_clicks"`

	ClicksToday     int64 `json:"clicks_today"`
	ClicksThisWeek  int64 `json:"clicks_this_week"`
	ClicksThisMonth int64 `json:"clicks_this_month"`

	TopLinks     []MetricCountResult `json:"top_links"`
	Countries    []MetricCountResult `json:"countries"`
	Devices      []MetricCountResult `json:"devices"`
	Browsers     []MetricCountResult `json:"browsers"`
	Referrers    []MetricCountResult `json:"referrers"`
	UTMSources   []MetricCountResult `json:"utm_sources"`
	UTMMediums   []MetricCountResult `json:"utm_mediums"`
	UTMCampaigns []MetricCountResult `json:"utm_campaigns"`

	DailyClicks []timeframe.DateStat `json:"daily_clicks"`
}
