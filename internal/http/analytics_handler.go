package http

import (
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/karloscodes/cartridge"
	"github.com/pariz/gountries"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"linkpress/internal/analytics"
	"linkpress/internal/http/middleware"
	"linkpress/internal/links"
	"linkpress/internal/pkg/referrers"
	"linkpress/internal/pkg/useragent"
)

// LinkAnalyticsAction returns the full analytics report for one of the
// authenticated user's links. A link owned by someone else is
// indistinguishable from a missing one.
func LinkAnalyticsAction(ctx *cartridge.Context) error {
	user := middleware.CurrentUser(ctx.Ctx)
	if user == nil {
		return ctx.SendStatus(fiber.StatusUnauthorized)
	}

	linkID, err := ctx.ParamsInt("id")
	if err != nil || linkID <= 0 {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid link id",
		})
	}

	db := ctx.DBManager.GetConnection()
	report, err := analytics.BuildLinkReport(db, ctx.Logger, uint(linkID), user.ID)
	if err != nil {
		var notFoundErr *links.LinkNotFoundError
		if errors.As(err, &notFoundErr) {
			return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Link not found",
			})
		}
		ctx.Logger.Error("Failed to build link report",
			slog.Int("link_id", linkID), slog.Any("error", err))
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to build analytics report",
		})
	}

	report.Countries = convertCountryStats(report.Countries)
	report.Devices = convertDeviceStats(report.Devices)
	report.Browsers = convertBrowserStats(report.Browsers)
	report.Referrers = convertReferrerStats(report.Referrers)

	return ctx.Status(fiber.StatusOK).JSON(report)
}

// UserAnalyticsAction returns the account-wide analytics report for the
// authenticated user.
func UserAnalyticsAction(ctx *cartridge.Context) error {
	user := middleware.CurrentUser(ctx.Ctx)
	if user == nil {
		return ctx.SendStatus(fiber.StatusUnauthorized)
	}

	db := ctx.DBManager.GetConnection()
	report, err := analytics.BuildUserReport(db, ctx.Logger, user.ID)
	if err != nil {
		ctx.Logger.Error("Failed to build user report",
			slog.Uint64("user_id", uint64(user.ID)), slog.Any("error", err))
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to build analytics report",
		})
	}

	report.Countries = convertCountryStats(report.Countries)
	report.Devices = convertDeviceStats(report.Devices)
	report.Browsers = convertBrowserStats(report.Browsers)
	report.Referrers = convertReferrerStats(report.Referrers)

	return ctx.Status(fiber.StatusOK).JSON(report)
}

// convertCountryStats prettifies country rows for display. Local mmdb lookups
// store full names already; the remote backend can fall back to bare ISO
// codes, which resolve through gountries.
func convertCountryStats(items []analytics.MetricCountResult) []analytics.MetricCountResult {
	caser := cases.Title(language.AmericanEnglish)
	countries := gountries.New()

	if len(items) == 0 {
		return []analytics.MetricCountResult{}
	}

	result := make([]analytics.MetricCountResult, len(items))
	for i, item := range items {
		name := item.Name
		if len(name) == 2 {
			if country, err := countries.FindCountryByAlpha(name); err == nil {
				name = country.Name.Common
			} else {
				name = caser.String(name)
			}
		}
		result[i] = analytics.MetricCountResult{
			Name:  name,
			Count: item.Count,
		}
	}
	return result
}

func convertDeviceStats(items []analytics.MetricCountResult) []analytics.MetricCountResult {
	caser := cases.Title(language.AmericanEnglish)

	if len(items) == 0 {
		return []analytics.MetricCountResult{}
	}

	result := make([]analytics.MetricCountResult, len(items))
	for i, item := range items {
		name := item.Name
		if name == useragent.DeviceUnknown {
			name = "Unknown"
		}
		result[i] = analytics.MetricCountResult{
			Name:  caser.String(name),
			Count: item.Count,
		}
	}
	return result
}

func convertBrowserStats(items []analytics.MetricCountResult) []analytics.MetricCountResult {
	caser := cases.Title(language.AmericanEnglish)

	if len(items) == 0 {
		return []analytics.MetricCountResult{}
	}

	result := make([]analytics.MetricCountResult, len(items))
	for i, item := range items {
		result[i] = analytics.MetricCountResult{
			Name:  caser.String(item.Name),
			Count: item.Count,
		}
	}
	return result
}

// convertReferrerStats maps bare referrer domains to the friendly names the
// dashboard shows (t.co -> Twitter, and so on).
func convertReferrerStats(items []analytics.MetricCountResult) []analytics.MetricCountResult {
	if len(items) == 0 {
		return []analytics.MetricCountResult{}
	}

	result := make([]analytics.MetricCountResult, len(items))
	for i, item := range items {
		result[i] = analytics.MetricCountResult{
			Name:  referrers.FriendlyName(item.Name),
			Count: item.Count,
		}
	}
	return result
}
