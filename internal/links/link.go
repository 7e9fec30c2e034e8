package links

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/karloscodes/cartridge/sqlite"
	"gorm.io/gorm"
)

// LinkNotFoundError represents an error when a link is not found or not
// visible to the requesting user.
type LinkNotFoundError struct {
	ShortCode string
	ID        uint
}

func (e *LinkNotFoundError) Error() string {
	if e.ShortCode != "" {
		return fmt.Sprintf("link not found for code: %s", e.ShortCode)
	}
	return fmt.Sprintf("link not found: %d", e.ID)
}

// NewLinkNotFoundError creates a new LinkNotFoundError for a short code.
func NewLinkNotFoundError(shortCode string) *LinkNotFoundError {
	return &LinkNotFoundError{ShortCode: shortCode}
}

// NewLinkNotFoundByIDError creates a new LinkNotFoundError for a link ID.
func NewLinkNotFoundByIDError(id uint) *LinkNotFoundError {
	return &LinkNotFoundError{ID: id}
}

// Link is a shortened, trackable URL owned by a user.
type Link struct {
	ID             uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	OwnerID        uint      `gorm:"index;not null" json:"owner_id"`
	Title          string    `json:"title"`
	DestinationURL string    `gorm:"not null" json:"destination_url"`
	ShortCode      string    `gorm:"uniqueIndex;not null" json:"short_code"`
	Description    string    `json:"description,omitempty"`
	IsActive       bool      `gorm:"default:true" json:"is_active"`
	ClickCounter   int64     `gorm:"default:0" json:"click_counter"`
	Position       int       `json:"position"`
	SpecialType    string    `json:"special_type,omitempty"`
	SpecialCode    string    `json:"special_code,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// GetByShortCode resolves a short code for the redirect path. Only active
// links resolve; an inactive or unknown code returns LinkNotFoundError.
func GetByShortCode(db *gorm.DB, shortCode string) (*Link, error) {
	var link Link
	err := db.Where("short_code = ? AND is_active = ?", shortCode, true).First(&link).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NewLinkNotFoundError(shortCode)
		}
		return nil, fmt.Errorf("unexpected error querying link: %w", err)
	}
	return &link, nil
}

// GetByID retrieves a link by ID regardless of active state.
func GetByID(db *gorm.DB, id uint) (*Link, error) {
	var link Link
	if err := db.First(&link, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NewLinkNotFoundByIDError(id)
		}
		return nil, fmt.Errorf("unexpected error querying link: %w", err)
	}
	return &link, nil
}

// GetOwnedByID retrieves a link only if the given user owns it. A link that
// exists but belongs to someone else is indistinguishable from a missing one.
func GetOwnedByID(db *gorm.DB, id, ownerID uint) (*Link, error) {
	link, err := GetByID(db, id)
	if err != nil {
		return nil, err
	}
	if link.OwnerID != ownerID {
		return nil, NewLinkNotFoundByIDError(id)
	}
	return link, nil
}

// ListByOwner retrieves all links owned by the user, ordered by position.
func ListByOwner(db *gorm.DB, ownerID uint) ([]Link, error) {
	var result []Link
	err := db.Where("owner_id = ?", ownerID).
		Order("position ASC, id ASC").
		Find(&result).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list links: %w", err)
	}
	return result, nil
}

// Create persists a new link. The short code is generated when absent, the
// destination is derived from the special template when a special type is
// set, and the position defaults to the end of the owner's list.
func Create(logger *slog.Logger, db *gorm.DB, link *Link) error {
	if link.OwnerID == 0 {
		return errors.New("link owner cannot be empty")
	}

	if link.SpecialType != "" {
		destination, err := BuildSpecialDestination(link.SpecialType, link.SpecialCode)
		if err != nil {
			return err
		}
		link.DestinationURL = destination
	}
	if link.DestinationURL == "" {
		return errors.New("destination URL cannot be empty")
	}

	if link.ShortCode == "" {
		code, err := GenerateShortCode(db)
		if err != nil {
			return err
		}
		link.ShortCode = code
	}

	if link.Position == 0 {
		var maxPosition int
		row := db.Model(&Link{}).
			Select("COALESCE(MAX(position), 0)").
			Where("owner_id = ?", link.OwnerID).
			Row()
		if err := row.Scan(&maxPosition); err == nil {
			link.Position = maxPosition + 1
		} else {
			link.Position = 1
		}
	}

	link.IsActive = true
	link.CreatedAt = time.Now().UTC()

	return sqlite.PerformWrite(logger, db, func(tx *gorm.DB) error {
		return tx.Create(link).Error
	})
}

// IncrementClickCounter bumps the denormalized counter atomically in SQL so
// concurrent redirects never lose an increment.
func IncrementClickCounter(logger *slog.Logger, db *gorm.DB, linkID uint) error {
	return sqlite.PerformWrite(logger, db, func(tx *gorm.DB) error {
		return tx.Model(&Link{}).
			Where("id = ?", linkID).
			UpdateColumn("click_counter", gorm.Expr("click_counter + 1")).Error
	})
}

// SetActive toggles whether the link resolves on the redirect path.
func SetActive(logger *slog.Logger, db *gorm.DB, linkID uint, active bool) error {
	return sqlite.PerformWrite(logger, db, func(tx *gorm.DB) error {
		result := tx.Model(&Link{}).Where("id = ?", linkID).Update("is_active", active)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return NewLinkNotFoundByIDError(linkID)
		}
		return nil
	})
}

// Delete removes a link; its click events go with it via the FK cascade.
func Delete(logger *slog.Logger, db *gorm.DB, linkID, ownerID uint) error {
	if _, err := GetOwnedByID(db, linkID, ownerID); err != nil {
		return err
	}
	return sqlite.PerformWrite(logger, db, func(tx *gorm.DB) error {
		if err := tx.Exec("DELETE FROM click_events WHERE link_id = ?", linkID).Error; err != nil {
			return err
		}
		return tx.Delete(&Link{}, linkID).Error
	})
}
