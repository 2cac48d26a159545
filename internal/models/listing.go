package models

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"
)

// MaxMediaPerListing is the number of media entries a listing may carry.
const MaxMediaPerListing = 5

// MediaObject is one gallery entry. The storage key is kept next to the public URL
// so deletes never have to reverse-engineer the key from the URL.
type MediaObject struct {
	Key string `json:"key"`
	URL string `json:"url"`
}

// Listing represents a game in the catalog.
type Listing struct {
	ID          uint    `gorm:"primaryKey"`
	Name        string  `gorm:"size:255;not null"`
	Price       float64 `gorm:"not null;default:0"`
	Description *string `gorm:"type:text"`
	URL         *string `gorm:"size:512"`
	// Media stores the ordered gallery (JSON array of MediaObject); first entry is the cover.
	Media       datatypes.JSON
	DeveloperID *string `gorm:"size:64;index"`
	CreatedAt   time.Time
}

func (Listing) TableName() string { return "games" }

// MediaList decodes the stored gallery.
func (l *Listing) MediaList() []MediaObject {
	var arr []MediaObject
	if len(l.Media) == 0 {
		return arr
	}
	_ = json.Unmarshal(l.Media, &arr)
	return arr
}

// SetMediaList encodes the gallery into the Media column.
func (l *Listing) SetMediaList(media []MediaObject) {
	if media == nil {
		media = []MediaObject{}
	}
	b, _ := json.Marshal(media)
	l.Media = b
}

// MediaURLs returns the public URLs in display order.
func (l *Listing) MediaURLs() []string {
	media := l.MediaList()
	urls := make([]string, 0, len(media))
	for _, m := range media {
		urls = append(urls, m.URL)
	}
	return urls
}

// ListingPatch enumerates the fields an update may touch. Nil means "leave as is".
type ListingPatch struct {
	Name        *string
	Price       *float64
	Description *string
	URL         *string
	Media       *[]MediaObject
	DeveloperID *string
}

// IsEmpty reports whether the patch carries no field at all.
func (p ListingPatch) IsEmpty() bool {
	return p.Name == nil && p.Price == nil && p.Description == nil &&
		p.URL == nil && p.Media == nil && p.DeveloperID == nil
}
