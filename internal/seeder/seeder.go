package seeder

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"log/slog"

	"github.com/karloscodes/cartridge"
	"github.com/karloscodes/cartridge/sqlite"
	"gorm.io/gorm"

	"linkpress/internal/clicks"
	"linkpress/internal/links"
	"linkpress/internal/pages"
	"linkpress/internal/pkg/referrers"
	"linkpress/internal/pkg/useragent"
	"linkpress/internal/users"
)

// Seeder fills a development database with a demo user, a handful of links
// and a realistic spread of click events. Geo dimensions are fabricated
// locally so seeding never hits the lookup service.
type Seeder struct {
	DBManager  cartridge.DBManager
	Logger     *slog.Logger
	EventCount int
}

// NewSeeder creates a new seeder instance
func NewSeeder(dbManager cartridge.DBManager, logger *slog.Logger, eventCount int) *Seeder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Seeder{
		DBManager:  dbManager,
		Logger:     logger,
		EventCount: eventCount,
	}
}

// Run seeds the demo user, links and click events.
func (s *Seeder) Run(ctx context.Context) error {
	start := time.Now()
	s.Logger.Info("Starting database seeding...", slog.Int("eventCount", s.EventCount))

	user, err := s.seedUser()
	if err != nil {
		return fmt.Errorf("failed to seed user: %w", err)
	}

	if err := s.seedPage(user.ID); err != nil {
		return fmt.Errorf("failed to seed page: %w", err)
	}

	seededLinks, err := s.seedLinks(user.ID)
	if err != nil {
		return fmt.Errorf("failed to seed links: %w", err)
	}

	for _, link := range seededLinks {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		s.Logger.Info("Generating clicks for link", slog.String("short_code", link.ShortCode))
		if err := s.generateClicks(link); err != nil {
			return fmt.Errorf("failed to generate clicks for %s: %w", link.ShortCode, err)
		}
	}

	s.Logger.Info("Seeding completed successfully", slog.Duration("elapsed", time.Since(start)))
	return nil
}

// seedUser ensures the demo user exists
func (s *Seeder) seedUser() (*users.User, error) {
	db := s.DBManager.GetConnection()

	user, err := users.FindByEmail(db, "demo@example.com")
	if err == nil {
		s.Logger.Info("Demo user already exists", slog.String("email", user.Email))
		return user, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check for existing user: %w", err)
	}

	s.Logger.Info("Creating demo user")
	user, err = users.CreateUser(db, "demo@example.com", "password")
	if err != nil {
		return nil, fmt.Errorf("failed to create demo user: %w", err)
	}

	s.Logger.Info("Demo user created successfully",
		slog.Uint64("id", uint64(user.ID)), slog.String("api_key", user.APIKey))
	return user, nil
}

// seedPage ensures the demo bio page slug is reserved
func (s *Seeder) seedPage(userID uint) error {
	db := s.DBManager.GetConnection()

	exists, err := pages.SlugExists(db, "demo")
	if err != nil {
		return err
	}
	if exists {
		s.Logger.Info("Demo page already exists")
		return nil
	}

	return pages.CreatePage(s.Logger, db, &pages.Page{
		UserID: userID,
		Slug:   "demo",
		Title:  "Demo Page",
	})
}

// seedLinks creates the demo links, including a couple of special deep links
func (s *Seeder) seedLinks(userID uint) ([]*links.Link, error) {
	db := s.DBManager.GetConnection()

	definitions := []links.Link{
		{Title: "My Blog", DestinationURL: "https://blog.example.com", ShortCode: "blog"},
		{Title: "Latest Video", DestinationURL: "https://youtube.com/watch?v=demo123", ShortCode: "video"},
		{Title: "Newsletter", DestinationURL: "https://news.example.com/subscribe", ShortCode: "news"},
		{Title: "Chat With Me", SpecialType: "whatsapp", SpecialCode: "+15550001111", ShortCode: "chat"},
		{Title: "Telegram", SpecialType: "telegram", SpecialCode: "@demouser", ShortCode: "tg"},
	}

	var seeded []*links.Link
	for i := range definitions {
		link := definitions[i]
		link.OwnerID = userID

		existing, err := links.GetByShortCode(db, link.ShortCode)
		if err == nil {
			s.Logger.Info("Link already exists", slog.String("short_code", existing.ShortCode))
			seeded = append(seeded, existing)
			continue
		}
		var notFoundErr *links.LinkNotFoundError
		if !errors.As(err, &notFoundErr) {
			return nil, err
		}

		if err := links.Create(s.Logger, db, &link); err != nil {
			return nil, fmt.Errorf("failed to create link %s: %w", link.ShortCode, err)
		}
		s.Logger.Info("Link created successfully",
			slog.Uint64("id", uint64(link.ID)), slog.String("short_code", link.ShortCode))
		seeded = append(seeded, &link)
	}

	return seeded, nil
}

// geoSample is a fabricated but plausible location for seeded clicks
type geoSample struct {
	country     string
	countryCode string
	region      string
	city        string
	timezone    string
}

var geoSamples = []geoSample{
	{"United States", "US", "California", "San Francisco", "America/Los_Angeles"},
	{"United States", "US", "New York", "New York", "America/New_York"},
	{"Germany", "DE", "Berlin", "Berlin", "Europe/Berlin"},
	{"Spain", "ES", "Madrid", "Madrid", "Europe/Madrid"},
	{"Brazil", "BR", "Sao Paulo", "Sao Paulo", "America/Sao_Paulo"},
	{"Japan", "JP", "Tokyo", "Tokyo", "Asia/Tokyo"},
	{"United Kingdom", "GB", "England", "London", "Europe/London"},
	{"India", "IN", "Maharashtra", "Mumbai", "Asia/Kolkata"},
}

// generateClicks writes a spread of click events over the last 30 days
func (s *Seeder) generateClicks(link *links.Link) error {
	db := s.DBManager.GetConnection()

	numLinks := 5
	targetEvents := s.EventCount / numLinks
	if targetEvents == 0 {
		targetEvents = 1
	}

	ipPool := generateIPPool(targetEvents/3 + 1)
	userAgents := getUserAgents()
	referrerPool := getReferrers()

	seen := make(map[string]bool)
	events := make([]clicks.ClickEvent, 0, targetEvents)

	for i := 0; i < targetEvents; i++ {
		ip := ipPool[rand.IntN(len(ipPool))]
		ua := userAgents[rand.IntN(len(userAgents))]
		referrer := referrerPool[rand.IntN(len(referrerPool))]
		geo := geoSamples[rand.IntN(len(geoSamples))]
		createdAt := time.Now().UTC().
			Add(-time.Duration(rand.IntN(30*24)) * time.Hour).
			Add(-time.Duration(rand.IntN(3600)) * time.Second)

		classification := useragent.Classify(ua)

		identity := fmt.Sprintf("%s|%s", ip, ua)
		isUnique := !seen[identity]
		seen[identity] = true

		event := clicks.ClickEvent{
			LinkID:         link.ID,
			OwnerID:        link.OwnerID,
			IPAddress:      ip,
			UserAgent:      ua,
			Country:        geo.country,
			CountryCode:    geo.countryCode,
			Region:         geo.region,
			City:           geo.city,
			Timezone:       geo.timezone,
			DeviceType:     classification.DeviceType,
			Browser:        classification.Browser,
			BrowserVersion: classification.BrowserVersion,
			OS:             classification.OS,
			OSVersion:      classification.OSVersion,
			Referrer:       referrer,
			ReferrerDomain: referrers.ExtractDomain(referrer),
			Language:       []string{"en-US", "en-GB", "de-DE", "es-ES", "pt-BR"}[rand.IntN(5)],
			IsUnique:       isUnique,
			CreatedAt:      createdAt,
		}

		// Sprinkle campaign parameters on roughly a fifth of the clicks
		if rand.IntN(5) == 0 {
			event.UTMSource = []string{"twitter", "newsletter", "instagram"}[rand.IntN(3)]
			event.UTMMedium = []string{"social", "email", "bio"}[rand.IntN(3)]
			event.UTMCampaign = []string{"launch", "spring_promo", "collab"}[rand.IntN(3)]
		}

		events = append(events, event)
	}

	err := sqlite.PerformWrite(s.Logger, db, func(tx *gorm.DB) error {
		if err := tx.CreateInBatches(events, 200).Error; err != nil {
			return err
		}
		// Keep the denormalized counter consistent with the event log
		return tx.Model(&links.Link{}).
			Where("id = ?", link.ID).
			UpdateColumn("click_counter", gorm.Expr("click_counter + ?", len(events))).Error
	})
	if err != nil {
		return err
	}

	s.Logger.Info("Clicks generated",
		slog.String("short_code", link.ShortCode), slog.Int("count", len(events)))
	return nil
}

// generateIPPool creates a pool of unique IPv4 addresses
func generateIPPool(count int) []string {
	ipPool := make(map[string]bool)
	var ips []string
	for len(ips) < count {
		ip := fmt.Sprintf("%d.%d.%d.%d", rand.IntN(255)+1, rand.IntN(256), rand.IntN(256), rand.IntN(256))
		if !ipPool[ip] {
			ipPool[ip] = true
			ips = append(ips, ip)
		}
	}
	return ips
}

// getUserAgents returns a list of common user agent strings
func getUserAgents() []string {
	return []string{
		"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/108.0.0.0 Safari/537.36",
		"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/16.1 Safari/605.1.15",
		"Mozilla/5.0 (iPhone; CPU iPhone OS 16_1_1 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/16.1 Mobile/15E148 Safari/605.1",
		"Mozilla/5.0 (Linux; Android 13; Pixel 7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/108.0.0.0 Mobile Safari/537.36",
		"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/108.0.0.0 Safari/537.36",
		"Mozilla/5.0 (iPad; CPU OS 16_1_1 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/16.1 Mobile/15E148 Safari/605.1",
		"Googlebot/2.1 (+http://www.google.com/bot.html)",
		"curl/7.81.0",
	}
}

// getReferrers returns a list of common referrer URLs
func getReferrers() []string {
	return []string{
		"", // Direct visit
		"https://google.com",
		"https://www.instagram.com/",
		"https://t.co/abc123",
		"https://facebook.com",
		"https://linkedin.com",
		"https://github.com",
		"https://some-other-website.com/blog/post",
		"android-app://com.google.android.gm", // Example app referrer
	}
}
