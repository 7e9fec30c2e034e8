package links_test

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"linkpress/internal/config"
	"linkpress/internal/links"
	"linkpress/internal/testsupport"
)

func TestCreateGeneratesShortCodeAndPosition(t *testing.T) {
	dbManager, logger, user := testsupport.SetupTestDBManagerWithUser(t, "owner@example.com")
	db := dbManager.GetConnection()

	first := &links.Link{
		OwnerID:        user.ID,
		Title:          "Portfolio",
		DestinationURL: "https://example.com",
	}
	require.NoError(t, links.Create(logger, db, first))
	assert.Len(t, first.ShortCode, config.GetConfig().ShortCodeLength)
	assert.Equal(t, 1, first.Position)
	assert.True(t, first.IsActive)

	second := &links.Link{
		OwnerID:        user.ID,
		Title:          "Blog",
		DestinationURL: "https://blog.example.com",
	}
	require.NoError(t, links.Create(logger, db, second))
	assert.Equal(t, 2, second.Position)
	assert.NotEqual(t, first.ShortCode, second.ShortCode)
}

func TestCreateValidation(t *testing.T) {
	dbManager, logger, user := testsupport.SetupTestDBManagerWithUser(t, "owner@example.com")
	db := dbManager.GetConnection()

	err := links.Create(logger, db, &links.Link{DestinationURL: "https://example.com"})
	assert.Error(t, err)

	err = links.Create(logger, db, &links.Link{OwnerID: user.ID})
	assert.Error(t, err)
}

func TestGetByShortCodeRequiresActive(t *testing.T) {
	dbManager, logger, user := testsupport.SetupTestDBManagerWithUser(t, "owner@example.com")
	db := dbManager.GetConnection()
	link := testsupport.CreateTestLink(t, db, user.ID, "abc1234", "https://example.com")

	resolved, err := links.GetByShortCode(db, "abc1234")
	require.NoError(t, err)
	assert.Equal(t, link.ID, resolved.ID)

	require.NoError(t, links.SetActive(logger, db, link.ID, false))

	_, err = links.GetByShortCode(db, "abc1234")
	var notFound *links.LinkNotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, "abc1234", notFound.ShortCode)

	_, err = links.GetByShortCode(db, "missing")
	assert.True(t, errors.As(err, &notFound))
}

func TestGetOwnedByID(t *testing.T) {
	dbManager, _, user := testsupport.SetupTestDBManagerWithUser(t, "owner@example.com")
	db := dbManager.GetConnection()
	other := testsupport.CreateTestUser(t, db, "other@example.com")
	link := testsupport.CreateTestLink(t, db, user.ID, "abc1234", "https://example.com")

	owned, err := links.GetOwnedByID(db, link.ID, user.ID)
	require.NoError(t, err)
	assert.Equal(t, link.ID, owned.ID)

	// Someone else's link is indistinguishable from a missing one
	_, err = links.GetOwnedByID(db, link.ID, other.ID)
	var notFound *links.LinkNotFoundError
	assert.ErrorAs(t, err, &notFound)
}

func TestIncrementClickCounterConcurrent(t *testing.T) {
	dbManager, logger, user := testsupport.SetupTestDBManagerWithUser(t, "owner@example.com")
	db := dbManager.GetConnection()
	link := testsupport.CreateTestLink(t, db, user.ID, "abc1234", "https://example.com")

	const increments = 20
	var wg sync.WaitGroup
	for i := 0; i < increments; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, links.IncrementClickCounter(logger, db, link.ID))
		}()
	}
	wg.Wait()

	reloaded, err := links.GetByID(db, link.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(increments), reloaded.ClickCounter)
}

func TestListByOwnerOrdersByPosition(t *testing.T) {
	dbManager, logger, user := testsupport.SetupTestDBManagerWithUser(t, "owner@example.com")
	db := dbManager.GetConnection()

	for _, title := range []string{"first", "second", "third"} {
		require.NoError(t, links.Create(logger, db, &links.Link{
			OwnerID:        user.ID,
			Title:          title,
			DestinationURL: "https://example.com/" + title,
		}))
	}

	listed, err := links.ListByOwner(db, user.ID)
	require.NoError(t, err)
	require.Len(t, listed, 3)
	assert.Equal(t, "first", listed[0].Title)
	assert.Equal(t, "third", listed[2].Title)
}

func TestDeleteCascadesClickEvents(t *testing.T) {
	dbManager, logger, user := testsupport.SetupTestDBManagerWithUser(t, "owner@example.com")
	db := dbManager.GetConnection()
	link := testsupport.CreateTestLink(t, db, user.ID, "abc1234", "https://example.com")
	testsupport.CreateTestClick(t, db, testsupport.ClickAt(link, "10.0.0.1", "ua", link.CreatedAt))

	require.NoError(t, links.Delete(logger, db, link.ID, user.ID))

	var clickCount int64
	require.NoError(t, db.Table("click_events").Where("link_id = ?", link.ID).Count(&clickCount).Error)
	assert.Zero(t, clickCount)

	var notFound *links.LinkNotFoundError
	_, err := links.GetByID(db, link.ID)
	assert.ErrorAs(t, err, &notFound)
}

func TestGenerateShortCodeAvoidsExistingCodesAndSlugs(t *testing.T) {
	dbManager, _, user := testsupport.SetupTestDBManagerWithUser(t, "owner@example.com")
	db := dbManager.GetConnection()
	testsupport.CreateTestLink(t, db, user.ID, "abc1234", "https://example.com")

	seen := make(map[string]bool)
	for i := 0; i < 5; i++ {
		code, err := links.GenerateShortCode(db)
		require.NoError(t, err)
		assert.Len(t, code, config.GetConfig().ShortCodeLength)
		assert.NotEqual(t, "abc1234", code)
		assert.False(t, seen[code], "generated duplicate code %s", code)
		seen[code] = true
	}
}
