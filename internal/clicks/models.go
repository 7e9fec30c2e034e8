package clicks

import (
	"time"
)

// ClickEvent is one recorded redirect hit, fully denormalized: the
// classification and geolocation outcomes are flattened onto the row so
// aggregation never needs a join. Empty strings mean the dimension could not
// be derived.
type ClickEvent struct {
	ID      uint `gorm:"primaryKey;autoIncrement" json:"id"`
	LinkID  uint `gorm:"index;not null;index:idx_click_identity,priority:1" json:"link_id"`
	OwnerID uint `gorm:"index;not null" json:"owner_id"`

	IPAddress string `gorm:"index:idx_click_identity,priority:2" json:"ip_address,omitempty"`
	UserAgent string `gorm:"index:idx_click_identity,priority:3" json:"user_agent,omitempty"`

	Country     string  `json:"country,omitempty"`
	CountryCode string  `json:"country_code,omitempty"`
	Region      string  `json:"region,omitempty"`
	City        string  `json:"city,omitempty"`
	Latitude    float64 `json:"latitude,omitempty"`
	Longitude   float64 `json:"longitude,omitempty"`
	Timezone    string  `json:"timezone,omitempty"`

	DeviceType     string `gorm:"index" json:"device_type,omitempty"`
	Browser        string `json:"browser,omitempty"`
	BrowserVersion string `json:"browser_version,omitempty"`
	OS             string `json:"os,omitempty"`
	OSVersion      string `json:"os_version,omitempty"`

	Referrer       string `json:"referrer,omitempty"`
	ReferrerDomain string `json:"referrer_domain,omitempty"`
	UTMSource      string `json:"utm_source,omitempty"`
	UTMMedium      string `json:"utm_medium,omitempty"`
	UTMCampaign    string `json:"utm_campaign,omitempty"`
	UTMTerm        string `json:"utm_term,omitempty"`
	UTMContent     string `json:"utm_content,omitempty"`

	Language string `json:"language,omitempty"`
	IsUnique bool   `json:"is_unique"`

	CreatedAt time.Time `gorm:"index" json:"created_at"`
}

// RecordClickInput carries everything the redirect path knows about a hit
// before classification and geolocation run.
type RecordClickInput struct {
	LinkID      uint
	OwnerID     uint
	IPAddress   string
	UserAgent   string
	Referrer    string
	UTMSource   string
	UTMMedium   string
	UTMCampaign string
	UTMTerm     string
	UTMContent  string
	Language    string
	Timestamp   time.Time
}
