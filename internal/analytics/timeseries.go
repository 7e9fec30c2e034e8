package analytics

import (
	"fmt"

	"gorm.io/gorm"

	"linkpress/internal/timeframe"
)

// GetDailyClicks returns the per-calendar-date click counts for the
// params.Days window, ascending. Days with zero clicks produce no row -
// consumers must treat absent dates as zero.
func GetDailyClicks(db *gorm.DB, params ScopedQueryParams) ([]timeframe.DateStat, error) {
	scopeClause, scopeArg, err := params.scope()
	if err != nil {
		return nil, err
	}

	period := timeframe.LastNDays(params.days())

	var results []timeframe.DateStat
	query := fmt.Sprintf(`
    SELECT
        DATE(created_at) as date,
        COUNT(*) as count
    FROM click_events
    WHERE %s
    AND created_at >= ?
    GROUP BY DATE(created_at)
    ORDER BY date ASC
    `, scopeClause)

	err = db.Raw(query, scopeArg, period.Start).Scan(&results).Error
	if err != nil {
		return nil, fmt.Errorf("error fetching daily clicks: %w", err)
	}
	return results, nil
}
