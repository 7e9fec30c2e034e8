package analytics

import (
	"fmt"

	"gorm.io/gorm"
)

// GetTopCountries fetches the most frequent click countries in scope.
func GetTopCountries(db *gorm.DB, params ScopedQueryParams) ([]MetricCountResult, error) {
	scopeClause, scopeArg, err := params.scope()
	if err != nil {
		return nil, err
	}

	var results []MetricCountResult
	query := fmt.Sprintf(`
    SELECT
        country as name,
        COUNT(*) as count
    FROM click_events
    WHERE %s
    AND country != ''
    GROUP BY country
    ORDER BY count DESC
    LIMIT ?
    `, scopeClause)

	err = db.Raw(query, scopeArg, params.limit()).Scan(&results).Error
	if err != nil {
		return nil, fmt.Errorf("error fetching top countries: %w", err)
	}
	return results, nil
}

// GetTopCities fetches the most frequent click cities in scope.
func GetTopCities(db *gorm.DB, params ScopedQueryParams) ([]MetricCountResult, error) {
	scopeClause, scopeArg, err := params.scope()
	if err != nil {
		return nil, err
	}

	var results []MetricCountResult
	query := fmt.Sprintf(`
    SELECT
        city as name,
        COUNT(*) as count
    FROM click_events
    WHERE %s
    AND city != ''
    GROUP BY city
    ORDER BY count DESC
    LIMIT ?
    `, scopeClause)

	err = db.Raw(query, scopeArg, params.limit()).Scan(&results).Error
	if err != nil {
		return nil, fmt.Errorf("error fetching top cities: %w", err)
	}
	return results, nil
}

// GetTopDevices fetches click counts per device type. The dimension has a
// handful of values, so no limit applies.
func GetTopDevices(db *gorm.DB, params ScopedQueryParams) ([]MetricCountResult, error) {
	scopeClause, scopeArg, err := params.scope()
	if err != nil {
		return nil, err
	}

	var results []MetricCountResult
	query := fmt.Sprintf(`
    SELECT
        device_type as name,
        COUNT(*) as count
    FROM click_events
    WHERE %s
    AND device_type != ''
    GROUP BY device_type
    ORDER BY count DESC
    `, scopeClause)

	err = db.Raw(query, scopeArg).Scan(&results).Error
	if err != nil {
		return nil, fmt.Errorf("error fetching top devices: %w", err)
	}
	return results, nil
}

// GetTopBrowsers fetches click counts per browser, unlimited like devices.
func GetTopBrowsers(db *gorm.DB, params ScopedQueryParams) ([]MetricCountResult, error) {
	scopeClause, scopeArg, err := params.scope()
	if err != nil {
		return nil, err
	}

	var results []MetricCountResult
	query := fmt.Sprintf(`
    SELECT
        browser as name,
        COUNT(*) as count
    FROM click_events
    WHERE %s
    AND browser != ''
    GROUP BY browser
    ORDER BY count DESC
    `, scopeClause)

	err = db.Raw(query, scopeArg).Scan(&results).Error
	if err != nil {
		return nil, fmt.Errorf("error fetching top browsers: %w", err)
	}
	return results, nil
}

// GetTopReferrerDomains fetches the most frequent referrer domains in scope.
func GetTopReferrerDomains(db *gorm.DB, params ScopedQueryParams) ([]MetricCountResult, error) {
	scopeClause, scopeArg, err := params.scope()
	if err != nil {
		return nil, err
	}

	var results []MetricCountResult
	query := fmt.Sprintf(`
    SELECT
        referrer_domain as name,
        COUNT(*) as count
    FROM click_events
    WHERE %s
    AND referrer_domain != ''
    GROUP BY referrer_domain
    ORDER BY count DESC
    LIMIT ?
    `, scopeClause)

	err = db.Raw(query, scopeArg, params.limit()).Scan(&results).Error
	if err != nil {
		return nil, fmt.Errorf("error fetching top referrer domains: %w", err)
	}
	return results, nil
}

// GetTopUTMSources fetches the most frequent utm_source values in scope.
func GetTopUTMSources(db *gorm.DB, params ScopedQueryParams) ([]MetricCountResult, error) {
	return topUTM(db, params, "utm_source")
}

// GetTopUTMMediums fetches the most frequent utm_medium values in scope.
func GetTopUTMMediums(db *gorm.DB, params ScopedQueryParams) ([]MetricCountResult, error) {
	return topUTM(db, params, "utm_medium")
}

// GetTopUTMCampaigns fetches the most frequent utm_campaign values in scope.
func GetTopUTMCampaigns(db *gorm.DB, params ScopedQueryParams) ([]MetricCountResult, error) {
	return topUTM(db, params, "utm_campaign")
}

// topUTM shares the query shape across the three UTM dimensions. The column
// name comes from the fixed callers above, never from user input.
func topUTM(db *gorm.DB, params ScopedQueryParams, column string) ([]MetricCountResult, error) {
	scopeClause, scopeArg, err := params.scope()
	if err != nil {
		return nil, err
	}

	var results []MetricCountResult
	query := fmt.Sprintf(`
    SELECT
        %s as name,
        COUNT(*) as count
    FROM click_events
    WHERE %s
    AND %s != ''
    GROUP BY %s
    ORDER BY count DESC
    LIMIT ?
    `, column, scopeClause, column, column)

	err = db.Raw(query, scopeArg, params.limit()).Scan(&results).Error
	if err != nil {
		return nil, fmt.Errorf("error fetching top %s values: %w", column, err)
	}
	return results, nil
}

// GetTopLinksByClicks ranks an owner's links by event-log click count. This
// deliberately counts events rather than reading the denormalized counters,
// so its ranking can differ from the counter-based account total.
func GetTopLinksByClicks(db *gorm.DB, ownerID uint, limit int) ([]MetricCountResult, error) {
	if limit <= 0 {
		limit = DefaultTopLimit
	}

	var results []MetricCountResult
	query := `
    SELECT
        COALESCE(NULLIF(links.title, ''), links.short_code) as name,
        COUNT(click_events.id) as count
    FROM click_events
    JOIN links ON links.id = click_events.link_id
    WHERE click_events.owner_id = ?
    GROUP BY click_events.link_id
    ORDER BY count DESC
    LIMIT ?
    `

	err := db.Raw(query, ownerID, limit).Scan(&results).Error
	if err != nil {
		return nil, fmt.Errorf("error fetching top links: %w", err)
	}
	return results, nil
}
