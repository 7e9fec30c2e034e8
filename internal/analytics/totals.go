package analytics

import (
	"fmt"
	"time"

	"gorm.io/gorm"

	"linkpress/internal/timeframe"
)

// GetTotalClicks counts every event in scope.
func GetTotalClicks(db *gorm.DB, params ScopedQueryParams) (int64, error) {
	scopeClause, scopeArg, err := params.scope()
	if err != nil {
		return 0, err
	}

	var count int64
	query := fmt.Sprintf(`SELECT COUNT(*) FROM click_events WHERE %s`, scopeClause)
	if err := db.Raw(query, scopeArg).Scan(&count).Error; err != nil {
		return 0, fmt.Errorf("error counting clicks: %w", err)
	}
	return count, nil
}

// GetUniqueClicks counts events flagged unique at record time.
func GetUniqueClicks(db *gorm.DB, params ScopedQueryParams) (int64, error) {
	scopeClause, scopeArg, err := params.scope()
	if err != nil {
		return 0, err
	}

	var count int64
	query := fmt.Sprintf(`SELECT COUNT(*) FROM click_events WHERE %s AND is_unique = 1`, scopeClause)
	if err := db.Raw(query, scopeArg).Scan(&count).Error; err != nil {
		return 0, fmt.Errorf("error counting unique clicks: %w", err)
	}
	return count, nil
}

// GetClicksInPeriod counts an owner's events inside a time window. The
// today/week/month dashboard buckets issue three independent calls; the
// numbers may skew slightly if clicks land between the reads.
func GetClicksInPeriod(db *gorm.DB, ownerID uint, period timeframe.Period) (int64, error) {
	if err := period.Validate(); err != nil {
		return 0, err
	}

	var count int64
	query := `
    SELECT COUNT(*) FROM click_events
    WHERE owner_id = ?
    AND created_at >= ? AND created_at < ?
    `
	if err := db.Raw(query, ownerID, period.Start, period.End).Scan(&count).Error; err != nil {
		return 0, fmt.Errorf("error counting clicks in period: %w", err)
	}
	return count, nil
}

// GetLastClickAt returns the newest event timestamp in scope, or nil when no
// event exists.
func GetLastClickAt(db *gorm.DB, params ScopedQueryParams) (*time.Time, error) {
	scopeClause, scopeArg, err := params.scope()
	if err != nil {
		return nil, err
	}

	var result struct {
		Last *time.Time
	}
	query := fmt.Sprintf(`SELECT MAX(created_at) as last FROM click_events WHERE %s`, scopeClause)
	if err := db.Raw(query, scopeArg).Scan(&result).Error; err != nil {
		return nil, fmt.Errorf("error fetching last click: %w", err)
	}
	return result.Last, nil
}

// GetCounterTotalForOwner sums the denormalized click counters across an
// owner's links, which is what account-level totals report.
func GetCounterTotalForOwner(db *gorm.DB, ownerID uint) (int64, error) {
	var total int64
	query := `SELECT COALESCE(SUM(click_counter), 0) FROM links WHERE owner_id = ?`
	if err := db.Raw(query, ownerID).Scan(&total).Error; err != nil {
		return 0, fmt.Errorf("error summing click counters: %w", err)
	}
	return total, nil
}
