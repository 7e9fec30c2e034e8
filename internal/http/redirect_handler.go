package http

import (
	"errors"
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"
	"github.com/karloscodes/cartridge"

	"linkpress/internal/clicks"
	"linkpress/internal/links"
)

// RedirectAction resolves a short code and sends the visitor to the link's
// destination. Click recording happens off the request path: the redirect
// must not wait on classification or geolocation, and a failed recording
// never turns into a failed redirect. Only the denormalized counter bump is
// awaited.
func RedirectAction(ctx *cartridge.Context) error {
	shortCode := ctx.Params("code")
	db := ctx.DBManager.GetConnection()

	link, err := links.GetByShortCode(db, shortCode)
	if err != nil {
		var notFoundErr *links.LinkNotFoundError
		if errors.As(err, &notFoundErr) {
			return ctx.SendStatus(fiber.StatusNotFound)
		}
		ctx.Logger.Error("Failed to resolve short code",
			slog.String("short_code", shortCode), slog.Any("error", err))
		return ctx.SendStatus(fiber.StatusInternalServerError)
	}

	userAgentHeader := ctx.Get("User-Agent")
	if forwardedUA := ctx.Get("X-Forwarded-User-Agent"); forwardedUA != "" {
		userAgentHeader = forwardedUA
	}

	// Strings read from the request are backed by fasthttp buffers that get
	// recycled when the handler returns, so everything handed to the
	// recording goroutine must be copied first.
	input := &clicks.RecordClickInput{
		LinkID:      link.ID,
		OwnerID:     link.OwnerID,
		IPAddress:   utils.CopyString(getClientIP(ctx.Ctx)),
		UserAgent:   utils.CopyString(userAgentHeader),
		Referrer:    utils.CopyString(ctx.Get("Referer")),
		UTMSource:   utils.CopyString(ctx.Query("utm_source")),
		UTMMedium:   utils.CopyString(ctx.Query("utm_medium")),
		UTMCampaign: utils.CopyString(ctx.Query("utm_campaign")),
		UTMTerm:     utils.CopyString(ctx.Query("utm_term")),
		UTMContent:  utils.CopyString(ctx.Query("utm_content")),
		Language:    utils.CopyString(firstAcceptLanguage(ctx.Ctx)),
		Timestamp:   time.Now().UTC(),
	}

	dbManager := ctx.DBManager
	logger := ctx.Logger
	go func() {
		if _, err := clicks.Record(dbManager, logger, input); err != nil {
			logger.Error("Failed to record click",
				slog.Uint64("link_id", uint64(input.LinkID)), slog.Any("error", err))
		}
	}()

	if err := links.IncrementClickCounter(ctx.Logger, db, link.ID); err != nil {
		ctx.Logger.Error("Failed to increment click counter",
			slog.Uint64("link_id", uint64(link.ID)), slog.Any("error", err))
	}

	return ctx.Redirect(link.DestinationURL, fiber.StatusFound)
}
