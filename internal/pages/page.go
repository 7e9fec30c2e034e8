package pages

import (
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/karloscodes/cartridge/sqlite"
	"gorm.io/gorm"
)

// PageNotFoundError represents an error when a page is not found
type PageNotFoundError struct {
	Slug string
}

func (e *PageNotFoundError) Error() string {
	return fmt.Sprintf("page not found for slug: %s", e.Slug)
}

// NewPageNotFoundError creates a new PageNotFoundError
func NewPageNotFoundError(slug string) *PageNotFoundError {
	return &PageNotFoundError{Slug: slug}
}

// Page is a user's public link-in-bio page, addressed by its slug.
type Page struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID    uint      `gorm:"index;not null" json:"user_id"`
	Slug      string    `gorm:"uniqueIndex;not null" json:"slug"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

var slugPattern = regexp.MustCompile(`^[a-z0-9](?:[a-z0-9-]{0,62}[a-z0-9])?$`)

// NormalizeSlug lowercases and trims a requested slug.
func NormalizeSlug(slug string) string {
	return strings.ToLower(strings.TrimSpace(slug))
}

// ValidateSlug checks the slug's shape: lowercase alphanumerics and hyphens,
// no leading or trailing hyphen, 1-64 chars.
func ValidateSlug(slug string) error {
	if slug == "" {
		return errors.New("slug cannot be empty")
	}
	if !slugPattern.MatchString(slug) {
		return fmt.Errorf("invalid slug: %s", slug)
	}
	return nil
}

// SlugExists reports whether any page claims the slug. Short codes must not
// collide with page slugs since both are resolved from the same URL position.
func SlugExists(db *gorm.DB, slug string) (bool, error) {
	var count int64
	if err := db.Model(&Page{}).Where("slug = ?", slug).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// GetPageBySlug retrieves a page by exact slug match.
func GetPageBySlug(db *gorm.DB, slug string) (*Page, error) {
	var page Page
	if err := db.Where("slug = ?", slug).First(&page).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NewPageNotFoundError(slug)
		}
		return nil, fmt.Errorf("unexpected error querying page: %w", err)
	}
	return &page, nil
}

// GetPagesByUser retrieves all pages owned by the user.
func GetPagesByUser(db *gorm.DB, userID uint) ([]Page, error) {
	var result []Page
	if err := db.Where("user_id = ?", userID).Order("created_at ASC").Find(&result).Error; err != nil {
		return nil, fmt.Errorf("failed to get pages: %w", err)
	}
	return result, nil
}

// CreatePage creates a new page after normalizing and validating its slug.
func CreatePage(logger *slog.Logger, db *gorm.DB, page *Page) error {
	page.Slug = NormalizeSlug(page.Slug)
	if err := ValidateSlug(page.Slug); err != nil {
		return err
	}

	page.CreatedAt = time.Now().UTC()
	return sqlite.PerformWrite(logger, db, func(tx *gorm.DB) error {
		return tx.Create(page).Error
	})
}

// DeletePage deletes a page by its ID.
func DeletePage(logger *slog.Logger, db *gorm.DB, id uint) error {
	return sqlite.PerformWrite(logger, db, func(tx *gorm.DB) error {
		result := tx.Delete(&Page{}, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}
