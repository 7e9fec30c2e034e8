package analytics

import (
	"context"
	"log/slog"
	"time"

	"gorm.io/gorm"

	"linkpress/internal/links"
	"linkpress/internal/pkg/async"
	"linkpress/internal/timeframe"
)

// reportPoolSize matches the number of independent queries a report fans out.
const reportPoolSize = 12

// BuildLinkReport assembles the analytics payload for one link. The ownership
// check runs first: a link that is missing or belongs to another user yields
// links.LinkNotFoundError before any aggregation is issued.
func BuildLinkReport(db *gorm.DB, logger *slog.Logger, linkID, ownerID uint) (*LinkReport, error) {
	link, err := links.GetOwnedByID(db, linkID, ownerID)
	if err != nil {
		return nil, err
	}

	params := NewLinkScopedParams(link.ID)
	pool := async.NewPool(reportPoolSize)
	tasks := []async.Task{
		{Name: "total", Execute: func() (interface{}, error) {
			return GetTotalClicks(db, params)
		}},
		{Name: "unique", Execute: func() (interface{}, error) {
			return GetUniqueClicks(db, params)
		}},
		{Name: "last_click", Execute: func() (interface{}, error) {
			return GetLastClickAt(db, params)
		}},
		{Name: "countries", Execute: func() (interface{}, error) {
			return GetTopCountries(db, params)
		}},
		{Name: "cities", Execute: func() (interface{}, error) {
			return GetTopCities(db, params)
		}},
		{Name: "devices", Execute: func() (interface{}, error) {
			return GetTopDevices(db, params)
		}},
		{Name: "browsers", Execute: func() (interface{}, error) {
			return GetTopBrowsers(db, params)
		}},
		{Name: "referrers", Execute: func() (interface{}, error) {
			return GetTopReferrerDomains(db, params)
		}},
		{Name: "utm_sources", Execute: func() (interface{}, error) {
			return GetTopUTMSources(db, params)
		}},
		{Name: "utm_mediums", Execute: func() (interface{}, error) {
			return GetTopUTMMediums(db, params)
		}},
		{Name: "utm_campaigns", Execute: func() (interface{}, error) {
			return GetTopUTMCampaigns(db, params)
		}},
		{Name: "daily", Execute: func() (interface{}, error) {
			return GetDailyClicks(db, params)
		}},
	}

	results := pool.Execute(context.Background(), tasks)
	if err := async.FirstError(results); err != nil {
		logger.Error("Link report aggregation failed",
			slog.Uint64("link_id", uint64(link.ID)),
			slog.Any("error", err))
		return nil, err
	}

	return &LinkReport{
		LinkID:       link.ID,
		Title:        link.Title,
		ShortCode:    link.ShortCode,
		TotalClicks:  countOf(results, "total"),
		UniqueClicks: countOf(results, "unique"),
		LastClickAt:  timeOf(results, "last_click"),
		Countries:    metricsOf(results, "countries"),
		Cities:       metricsOf(results, "cities"),
		Devices:      metricsOf(results, "devices"),
		Browsers:     metricsOf(results, "browsers"),
		Referrers:    metricsOf(results, "referrers"),
		UTMSources:   metricsOf(results, "utm_sources"),
		UTMMediums:   metricsOf(results, "utm_mediums"),
		UTMCampaigns: metricsOf(results, "utm_campaigns"),
		DailyClicks:  dailyOf(results, "daily"),
	}, nil
}

// BuildUserReport assembles the account-wide payload across all of a user's
// links. The total comes from the denormalized counters and the unique count
// from the event log; the two sources are reported side by side without
// reconciliation.
func BuildUserReport(db *gorm.DB, logger *slog.Logger, userID uint) (*UserReport, error) {
	userLinks, err := links.ListByOwner(db, userID)
	if err != nil {
		return nil, err
	}

	params := NewOwnerScopedParams(userID)
	pool := async.NewPool(reportPoolSize)
	tasks := []async.Task{
		{Name: "counter_total", Execute: func() (interface{}, error) {
			return GetCounterTotalForOwner(db, userID)
		}},
		{Name: "unique", Execute: func() (interface{}, error) {
			return GetUniqueClicks(db, params)
		}},
		{Name: "today", Execute: func() (interface{}, error) {
			return GetClicksInPeriod(db, userID, timeframe.Today())
		}},
		{Name: "week", Execute: func() (interface{}, error) {
			return GetClicksInPeriod(db, userID, timeframe.ThisISOWeek())
		}},
		{Name: "month", Execute: func() (interface{}, error) {
			return GetClicksInPeriod(db, userID, timeframe.ThisMonth())
		}},
		{Name: "top_links", Execute: func() (interface{}, error) {
			return GetTopLinksByClicks(db, userID, DefaultTopLimit)
		}},
		{Name: "countries", Execute: func() (interface{}, error) {
			return GetTopCountries(db, params)
		}},
		{Name: "devices", Execute: func() (interface{}, error) {
			return GetTopDevices(db, params)
		}},
		{Name: "browsers", Execute: func() (interface{}, error) {
			return GetTopBrowsers(db, params)
		}},
		{Name: "referrers", Execute: func() (interface{}, error) {
			return GetTopReferrerDomains(db, params)
		}},
		{Name: "utm_sources", Execute: func() (interface{}, error) {
			return GetTopUTMSources(db, params)
		}},
		{Name: "utm_mediums", Execute: func() (interface{}, error) {
			return GetTopUTMMediums(db, params)
		}},
		{Name: "utm_campaigns", Execute: func() (interface{}, error) {
			return GetTopUTMCampaigns(db, params)
		}},
		{Name: "daily", Execute: func() (interface{}, error) {
			return GetDailyClicks(db, params)
		}},
	}

	results := pool.Execute(context.Background(), tasks)
	if err := async.FirstError(results); err != nil {
		logger.Error("User report aggregation failed",
			slog.Uint64("user_id", uint64(userID)),
			slog.Any("error", err))
		return nil, err
	}

	return &UserReport{
		UserID:          userID,
		TotalLinks:      len(userLinks),
		TotalClicks:     countOf(results, "counter_total"),
		UniqueClicks:    countOf(results, "unique"),
		ClicksToday:     countOf(results, "today"),
		ClicksThisWeek:  countOf(results, "week"),
		ClicksThisMonth: countOf(results, "month"),
		TopLinks:        metricsOf(results, "top_links"),
		Countries:       metricsOf(results, "countries"),
		Devices:         metricsOf(results, "devices"),
		Browsers:        metricsOf(results, "browsers"),
		Referrers:       metricsOf(results, "referrers"),
		UTMSources:      metricsOf(results, "utm_sources"),
		UTMMediums:      metricsOf(results, "utm_mediums"),
		UTMCampaigns:    metricsOf(results, "utm_campaigns"),
		DailyClicks:     dailyOf(results, "daily"),
	}, nil
}

func countOf(results map[string]async.Result, name string) int64 {
	if result, ok := results[name]; ok && result.Err == nil {
		if count, ok := result.Data.(int64); ok {
			return count
		}
	}
	return 0
}

func timeOf(results map[string]async.Result, name string) *time.Time {
	if result, ok := results[name]; ok && result.Err == nil {
		if t, ok := result.Data.(*time.Time); ok {
			return t
		}
	}
	return nil
}

func metricsOf(results map[string]async.Result, name string) []MetricCountResult {
	if result, ok := results[name]; ok && result.Err == nil {
		if metrics, ok := result.Data.([]MetricCountResult); ok && metrics != nil {
			return metrics
		}
	}
	return []MetricCountResult{}
}

func dailyOf(results map[string]async.Result, name string) []timeframe.DateStat {
	if result, ok := results[name]; ok && result.Err == nil {
		if stats, ok := result.Data.([]timeframe.DateStat); ok && stats != nil {
			return stats
		}
	}
	return []timeframe.DateStat{}
}
