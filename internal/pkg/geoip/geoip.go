// Package geoip resolves client IPs to coarse geolocation data for click
// events. Two backends: a local GeoLite2-City database when one is
// configured, and a remote ip-api-style HTTP lookup otherwise. Resolution
// never fails outward - any error folds into an empty Location.
package geoip

import (
	"context"
	"log/slog"
	"net"
	"os"
	"sync"

	"github.com/oschwald/geoip2-golang"

	"linkpress/internal/config"
)

// Location is the geolocation outcome for one IP. The zero value means
// "unknown", which is what loopback addresses and every failure mode yield.
type Location struct {
	Country     string
	CountryCode string
	Region      string
	City        string
	Latitude    float64
	Longitude   float64
	Timezone    string
}

// IsZero reports whether no geolocation data was derived.
func (l Location) IsZero() bool {
	return l == Location{}
}

var (
	geoDB  *geoip2.Reader
	once   sync.Once
	mu     sync.RWMutex
	logger *slog.Logger
)

// InitLogger sets the logger for the geoip package.
func InitLogger(l *slog.Logger) {
	logger = l
}

// InitGeoDB initializes the GeoLite2 database.
// Returns nil if the database is not configured or not found (the local
// backend is optional; resolution falls back to the remote lookup).
func InitGeoDB() *geoip2.Reader {
	cfg := config.GetConfig()
	if cfg.GeoDBPath == "" {
		if logger != nil {
			logger.Debug("GeoIP database path not configured - using remote lookup")
		}
		return nil
	}

	if _, err := os.Stat(cfg.GeoDBPath); os.IsNotExist(err) {
		if logger != nil {
			logger.Info("GeoLite2 database not found - using remote lookup",
				slog.String("path", cfg.GeoDBPath),
				slog.String("hint", "Download from https://www.maxmind.com/en/geolite2/signup"))
		}
		return nil
	} else if err != nil {
		if logger != nil {
			logger.Warn("Error checking GeoLite2 database file",
				slog.String("path", cfg.GeoDBPath),
				slog.Any("error", err))
		}
		return nil
	}

	db, err := geoip2.Open(cfg.GeoDBPath)
	if err != nil {
		if logger != nil {
			logger.Error("Failed to open GeoLite2 database",
				slog.String("path", cfg.GeoDBPath),
				slog.Any("error", err))
		}
		return nil
	}

	if logger != nil {
		logger.Info("GeoLite2 database initialized successfully",
			slog.String("path", cfg.GeoDBPath))
	}
	return db
}

// GetGeoDB returns the GeoLite2 database reader, initializing it if necessary.
func GetGeoDB() *geoip2.Reader {
	once.Do(func() {
		mu.Lock()
		geoDB = InitGeoDB()
		mu.Unlock()
	})
	mu.RLock()
	defer mu.RUnlock()
	return geoDB
}

// ReloadGeoDB reloads the GeoLite2 database from disk.
// Call this after downloading a new database file.
func ReloadGeoDB() {
	mu.Lock()
	defer mu.Unlock()

	if geoDB != nil {
		geoDB.Close()
	}

	geoDB = InitGeoDB()

	if geoDB != nil && logger != nil {
		logger.Info("GeoLite2 database reloaded successfully")
	}
}

// Resolve maps an IP to a Location. Loopback, private and unparseable
// addresses short-circuit to the zero Location without any I/O; lookup
// failures degrade to the zero Location as well.
func Resolve(ctx context.Context, ip string) Location {
	parsed := net.ParseIP(ip)
	if parsed == nil {
		return Location{}
	}
	if parsed.IsLoopback() || parsed.IsPrivate() || parsed.IsUnspecified() {
		return Location{}
	}

	if db := GetGeoDB(); db != nil {
		return resolveLocal(db, parsed)
	}

	location, err := lookupRemote(ctx, config.GetConfig().GeoAPIBaseURL, ip)
	if err != nil {
		if logger != nil {
			logger.Debug("Remote geolocation lookup failed",
				slog.String("ip", ip),
				slog.Any("error", err))
		}
		return Location{}
	}
	return location
}

func resolveLocal(db *geoip2.Reader, ip net.IP) Location {
	record, err := db.City(ip)
	if err != nil {
		return Location{}
	}

	location := Location{
		Country:     record.Country.Names["en"],
		CountryCode: record.Country.IsoCode,
		City:        record.City.Names["en"],
		Latitude:    record.Location.Latitude,
		Longitude:   record.Location.Longitude,
		Timezone:    record.Location.TimeZone,
	}
	if len(record.Subdivisions) > 0 {
		location.Region = record.Subdivisions[0].Names["en"]
	}
	return location
}
