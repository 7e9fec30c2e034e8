package clicks_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"linkpress/internal/clicks"
	"linkpress/internal/testsupport"
)

const chromeUA = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 Chrome/118.0.0.0 Safari/537.36"

func TestRecordDerivesAllDimensions(t *testing.T) {
	dbManager, logger, user := testsupport.SetupTestDBManagerWithUser(t, "owner@example.com")
	link := testsupport.CreateTestLink(t, dbManager.GetConnection(), user.ID, "abc1234", "https://example.com")

	event, err := clicks.Record(dbManager, logger, &clicks.RecordClickInput{
		LinkID:      link.ID,
		OwnerID:     user.ID,
		IPAddress:   "127.0.0.1",
		UserAgent:   chromeUA,
		Referrer:    "https://www.google.com/search?q=linkpress",
		UTMSource:   "newsletter",
		UTMMedium:   "email",
		UTMCampaign: "launch",
		Language:    "en-US",
	})
	require.NoError(t, err)
	require.NotZero(t, event.ID)

	assert.Equal(t, link.ID, event.LinkID)
	assert.Equal(t, user.ID, event.OwnerID)
	assert.Equal(t, "desktop", event.DeviceType)
	assert.Equal(t, "Chrome", event.Browser)
	assert.Equal(t, "118.0.0.0", event.BrowserVersion)
	assert.Equal(t, "Windows", event.OS)
	assert.Equal(t, "10", event.OSVersion)
	assert.Equal(t, "www.google.com", event.ReferrerDomain)
	assert.Equal(t, "newsletter", event.UTMSource)
	assert.True(t, event.IsUnique)

	// Loopback IP yields no geodata
	assert.Empty(t, event.Country)
	assert.Empty(t, event.City)
	assert.Empty(t, event.Timezone)
}

func TestRecordUniquenessTriple(t *testing.T) {
	dbManager, logger, user := testsupport.SetupTestDBManagerWithUser(t, "owner@example.com")
	db := dbManager.GetConnection()
	link := testsupport.CreateTestLink(t, db, user.ID, "abc1234", "https://example.com")
	otherLink := testsupport.CreateTestLink(t, db, user.ID, "zzz9999", "https://example.org")

	hit := func(linkID uint, ip, ua string) *clicks.ClickEvent {
		event, err := clicks.Record(dbManager, logger, &clicks.RecordClickInput{
			LinkID:    linkID,
			OwnerID:   user.ID,
			IPAddress: ip,
			UserAgent: ua,
		})
		require.NoError(t, err)
		return event
	}

	// First visit is unique, exact repeat is not
	assert.True(t, hit(link.ID, "10.0.0.1", chromeUA).IsUnique)
	assert.False(t, hit(link.ID, "10.0.0.1", chromeUA).IsUnique)

	// Any component of the triple differing makes a fresh visitor
	assert.True(t, hit(link.ID, "10.0.0.2", chromeUA).IsUnique)
	assert.True(t, hit(link.ID, "10.0.0.1", "curl/8.4.0").IsUnique)
	assert.True(t, hit(otherLink.ID, "10.0.0.1", chromeUA).IsUnique)
}

func TestRecordForcesUniqueWhenIdentityMissing(t *testing.T) {
	dbManager, logger, user := testsupport.SetupTestDBManagerWithUser(t, "owner@example.com")
	link := testsupport.CreateTestLink(t, dbManager.GetConnection(), user.ID, "abc1234", "https://example.com")

	for i := 0; i < 2; i++ {
		noIP, err := clicks.Record(dbManager, logger, &clicks.RecordClickInput{
			LinkID:    link.ID,
			OwnerID:   user.ID,
			UserAgent: chromeUA,
		})
		require.NoError(t, err)
		assert.True(t, noIP.IsUnique)

		noUA, err := clicks.Record(dbManager, logger, &clicks.RecordClickInput{
			LinkID:    link.ID,
			OwnerID:   user.ID,
			IPAddress: "10.0.0.1",
		})
		require.NoError(t, err)
		assert.True(t, noUA.IsUnique)
	}
}

func TestRecordThreeClicksTwoUnique(t *testing.T) {
	dbManager, logger, user := testsupport.SetupTestDBManagerWithUser(t, "owner@example.com")
	db := dbManager.GetConnection()
	link := testsupport.CreateTestLink(t, db, user.ID, "abc1234", "https://example.com")

	visits := []struct {
		ip string
		ua string
	}{
		{"10.0.0.1", chromeUA},
		{"10.0.0.1", chromeUA},
		{"10.0.0.2", chromeUA},
	}
	for _, v := range visits {
		_, err := clicks.Record(dbManager, logger, &clicks.RecordClickInput{
			LinkID:    link.ID,
			OwnerID:   user.ID,
			IPAddress: v.ip,
			UserAgent: v.ua,
		})
		require.NoError(t, err)
	}

	var total, unique int64
	require.NoError(t, db.Model(&clicks.ClickEvent{}).Where("link_id = ?", link.ID).Count(&total).Error)
	require.NoError(t, db.Model(&clicks.ClickEvent{}).Where("link_id = ? AND is_unique = ?", link.ID, true).Count(&unique).Error)
	assert.Equal(t, int64(3), total)
	assert.Equal(t, int64(2), unique)
}

func TestRecordBotClick(t *testing.T) {
	dbManager, logger, user := testsupport.SetupTestDBManagerWithUser(t, "owner@example.com")
	link := testsupport.CreateTestLink(t, dbManager.GetConnection(), user.ID, "abc1234", "https://example.com")

	event, err := clicks.Record(dbManager, logger, &clicks.RecordClickInput{
		LinkID:    link.ID,
		OwnerID:   user.ID,
		IPAddress: "10.0.0.9",
		UserAgent: "facebookexternalhit/1.1 (+crawler)",
		Timestamp: time.Now().UTC(),
	})
	require.NoError(t, err)
	assert.Equal(t, "bot", event.DeviceType)
	assert.Equal(t, "Bot", event.Browser)
	assert.Empty(t, event.OS)
}
