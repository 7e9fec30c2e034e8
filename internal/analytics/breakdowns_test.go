package analytics_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"linkpress/internal/analytics"
	"linkpress/internal/clicks"
	"linkpress/internal/testsupport"
)

func TestGetTopCountries(t *testing.T) {
	dbManager, _, user := testsupport.SetupTestDBManagerWithUser(t, "owner@example.com")
	db := dbManager.GetConnection()
	link := testsupport.CreateTestLink(t, db, user.ID, "abc1234", "https://example.com")

	now := time.Now().UTC()
	for i, country := range []string{"Spain", "Spain", "Spain", "Germany", "Germany", ""} {
		event := testsupport.ClickAt(link, "10.0.0.1", "ua", now.Add(-time.Duration(i)*time.Minute))
		event.Country = country
		testsupport.CreateTestClick(t, db, event)
	}

	results, err := analytics.GetTopCountries(db, analytics.NewLinkScopedParams(link.ID))
	require.NoError(t, err)

	// Empty countries are filtered out
	require.Len(t, results, 2)
	assert.Equal(t, analytics.MetricCountResult{Name: "Spain", Count: 3}, results[0])
	assert.Equal(t, analytics.MetricCountResult{Name: "Germany", Count: 2}, results[1])
}

func TestGetTopDevicesOwnerScoped(t *testing.T) {
	dbManager, _, user := testsupport.SetupTestDBManagerWithUser(t, "owner@example.com")
	db := dbManager.GetConnection()
	first := testsupport.CreateTestLink(t, db, user.ID, "abc1234", "https://example.com")
	second := testsupport.CreateTestLink(t, db, user.ID, "def5678", "https://example.org")

	other := testsupport.CreateTestUser(t, db, "other@example.com")
	foreign := testsupport.CreateTestLink(t, db, other.ID, "xyz0000", "https://example.net")

	now := time.Now().UTC()
	for _, device := range []string{"mobile", "mobile", "desktop"} {
		event := testsupport.ClickAt(first, "10.0.0.1", "ua", now)
		event.DeviceType = device
		testsupport.CreateTestClick(t, db, event)
	}
	event := testsupport.ClickAt(second, "10.0.0.2", "ua", now)
	event.DeviceType = "mobile"
	testsupport.CreateTestClick(t, db, event)

	// A different owner's click must not leak into the scope
	outsider := testsupport.ClickAt(foreign, "10.0.0.3", "ua", now)
	outsider.DeviceType = "tablet"
	testsupport.CreateTestClick(t, db, outsider)

	results, err := analytics.GetTopDevices(db, analytics.NewOwnerScopedParams(user.ID))
	require.NoError(t, err)

	require.Len(t, results, 2)
	assert.Equal(t, analytics.MetricCountResult{Name: "mobile", Count: 3}, results[0])
	assert.Equal(t, analytics.MetricCountResult{Name: "desktop", Count: 1}, results[1])
}

func TestTopBreakdownLimit(t *testing.T) {
	dbManager, _, user := testsupport.SetupTestDBManagerWithUser(t, "owner@example.com")
	db := dbManager.GetConnection()
	link := testsupport.CreateTestLink(t, db, user.ID, "abc1234", "https://example.com")

	now := time.Now().UTC()
	domains := []string{"a.com", "b.com", "c.com", "d.com"}
	for _, domain := range domains {
		event := testsupport.ClickAt(link, "10.0.0.1", "ua", now)
		event.ReferrerDomain = domain
		testsupport.CreateTestClick(t, db, event)
	}

	params := analytics.NewLinkScopedParams(link.ID)
	params.Limit = 2
	results, err := analytics.GetTopReferrerDomains(db, params)
	require.NoError(t, err)
	assert.Len(t, results, 2)
}

func TestGetTopUTMSources(t *testing.T) {
	dbManager, _, user := testsupport.SetupTestDBManagerWithUser(t, "owner@example.com")
	db := dbManager.GetConnection()
	link := testsupport.CreateTestLink(t, db, user.ID, "abc1234", "https://example.com")

	now := time.Now().UTC()
	for _, source := range []string{"newsletter", "newsletter", "twitter", ""} {
		event := testsupport.ClickAt(link, "10.0.0.1", "ua", now)
		event.UTMSource = source
		testsupport.CreateTestClick(t, db, event)
	}

	results, err := analytics.GetTopUTMSources(db, analytics.NewLinkScopedParams(link.ID))
	require.NoError(t, err)

	require.Len(t, results, 2)
	assert.Equal(t, analytics.MetricCountResult{Name: "newsletter", Count: 2}, results[0])
}

func TestGetTopLinksByClicksUsesEventLog(t *testing.T) {
	dbManager, logger, user := testsupport.SetupTestDBManagerWithUser(t, "owner@example.com")
	db := dbManager.GetConnection()
	busy := testsupport.CreateTestLink(t, db, user.ID, "busy123", "https://example.com")
	quiet := testsupport.CreateTestLink(t, db, user.ID, "quiet12", "https://example.org")

	// quiet has a huge stale counter but no events; the ranking must ignore it
	require.NoError(t, db.Model(&quiet).UpdateColumn("click_counter", 9999).Error)

	for i := 0; i < 3; i++ {
		_, err := clicks.Record(dbManager, logger, &clicks.RecordClickInput{
			LinkID:    busy.ID,
			OwnerID:   user.ID,
			IPAddress: "10.0.0.1",
			UserAgent: "ua",
		})
		require.NoError(t, err)
	}

	results, err := analytics.GetTopLinksByClicks(db, user.ID, 10)
	require.NoError(t, err)

	require.Len(t, results, 1)
	assert.Equal(t, "Test Link busy123", results[0].Name)
	assert.Equal(t, int64(3), results[0].Count)
}

func TestScopeValidation(t *testing.T) {
	dbManager, _ := testsupport.SetupTestDBManager(t)
	db := dbManager.GetConnection()

	_, err := analytics.GetTopCountries(db, analytics.ScopedQueryParams{})
	assert.Error(t, err)

	_, err = analytics.GetTotalClicks(db, analytics.ScopedQueryParams{LinkID: 1, OwnerID: 1})
	assert.Error(t, err)
}
