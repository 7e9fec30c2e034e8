package clicks

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/karloscodes/cartridge"
	"github.com/karloscodes/cartridge/sqlite"
	"gorm.io/gorm"

	"linkpress/internal/pkg/geoip"
	"linkpress/internal/pkg/referrers"
	"linkpress/internal/pkg/useragent"
)

// Record derives the full click event for one redirect hit and persists it.
// Classification and geolocation are independent and run concurrently. The
// redirect handler fires this from a goroutine and logs rather than surfaces
// any error, so a failed analytics write can never break a redirect.
func Record(dbManager cartridge.DBManager, logger *slog.Logger, input *RecordClickInput) (*ClickEvent, error) {
	if input.LinkID == 0 {
		return nil, fmt.Errorf("click input missing link id")
	}
	if input.Timestamp.IsZero() {
		input.Timestamp = time.Now().UTC()
	}

	var (
		wg             sync.WaitGroup
		classification useragent.Classification
		location       geoip.Location
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		classification = useragent.Classify(input.UserAgent)
	}()
	go func() {
		defer wg.Done()
		location = geoip.Resolve(context.Background(), input.IPAddress)
	}()
	wg.Wait()

	db := dbManager.GetConnection()

	isUnique, err := isFirstVisit(db, input)
	if err != nil {
		logger.Warn("Uniqueness probe failed, recording click as unique",
			slog.Uint64("link_id", uint64(input.LinkID)),
			slog.Any("error", err))
		isUnique = true
	}

	event := &ClickEvent{
		LinkID:    input.LinkID,
		OwnerID:   input.OwnerID,
		IPAddress: input.IPAddress,
		UserAgent: input.UserAgent,

		Country:     location.Country,
		CountryCode: location.CountryCode,
		Region:      location.Region,
		City:        location.City,
		Latitude:    location.Latitude,
		Longitude:   location.Longitude,
		Timezone:    location.Timezone,

		DeviceType:     classification.DeviceType,
		Browser:        classification.Browser,
		BrowserVersion: classification.BrowserVersion,
		OS:             classification.OS,
		OSVersion:      classification.OSVersion,

		Referrer:       input.Referrer,
		ReferrerDomain: referrers.ExtractDomain(input.Referrer),
		UTMSource:      input.UTMSource,
		UTMMedium:      input.UTMMedium,
		UTMCampaign:    input.UTMCampaign,
		UTMTerm:        input.UTMTerm,
		UTMContent:     input.UTMContent,

		Language: input.Language,
		IsUnique: isUnique,

		CreatedAt: input.Timestamp,
	}

	err = sqlite.PerformWrite(logger, db, func(tx *gorm.DB) error {
		return tx.Create(event).Error
	})
	if err != nil {
		logger.Error("Failed to store click event",
			slog.Uint64("link_id", uint64(input.LinkID)),
			slog.Any("error", err))
		return nil, fmt.Errorf("failed to store click event: %w", err)
	}

	return event, nil
}

// isFirstVisit reports whether no prior event carries the exact same
// (link, ip, user agent) triple. A click missing either the IP or the user
// agent cannot be matched against anything, so it counts as unique.
// Best-effort check-then-insert: two simultaneous first visits can both land
// as unique, which is acceptable for analytics.
func isFirstVisit(db *gorm.DB, input *RecordClickInput) (bool, error) {
	if input.IPAddress == "" || input.UserAgent == "" {
		return true, nil
	}

	var count int64
	err := db.Model(&ClickEvent{}).
		Where("link_id = ? AND ip_address = ? AND user_agent = ?",
			input.LinkID, input.IPAddress, input.UserAgent).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count == 0, nil
}
