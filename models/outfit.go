package models

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
)

// Outfit represents one wardrobe item customers can browse and attach to a
// booking. Image files live in S3 under the wardrobe/ prefix.
type Outfit struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	OutfitID  string         `gorm:"uniqueIndex;not null" json:"outfit_id"`
	Name      string         `gorm:"not null" json:"name"`
	ImageKey  string         `gorm:"not null" json:"image_key"`
	ImageURL  string         `gorm:"-" json:"image_url,omitempty"` // computed, presigned
	Category  string         `gorm:"index;not null" json:"category"`
	Gender    string         `gorm:"index" json:"gender"` // "female", "male", "unisex"
	Active    bool           `gorm:"default:true" json:"active"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName specifies the table name for the Outfit model
func (Outfit) TableName() string {
	return "outfits"
}

// DefaultOutfits is the starter wardrobe a fresh deployment serves before
// the studio curates its own. Image keys point at the wardrobe/ prefix in
// the media bucket.
var DefaultOutfits = []Outfit{
	{OutfitID: "kente-1", Name: "Kente Royal", ImageKey: "wardrobe/kente-1.jpg", Category: "traditional", Gender: "female", Active: true},
	{OutfitID: "kente-2", Name: "Kente Gown", ImageKey: "wardrobe/kente-2.jpg", Category: "traditional", Gender: "female", Active: true},
	{OutfitID: "agbada-1", Name: "Gold Agbada", ImageKey: "wardrobe/agbada-1.jpg", Category: "traditional", Gender: "male", Active: true},
	{OutfitID: "agbada-2", Name: "White Agbada", ImageKey: "wardrobe/agbada-2.jpg", Category: "traditional", Gender: "unisex", Active: true},
	{OutfitID: "suit-1", Name: "Charcoal Suit", ImageKey: "wardrobe/suit-1.jpg", Category: "corporate", Gender: "male", Active: true},
	{OutfitID: "suit-2", Name: "Cream Blazer Set", ImageKey: "wardrobe/suit-2.jpg", Category: "corporate", Gender: "female", Active: true},
	{OutfitID: "gown-1", Name: "Satin Evening Gown", ImageKey: "wardrobe/gown-1.jpg", Category: "evening", Gender: "female", Active: true},
	{OutfitID: "casual-1", Name: "Denim Casual", ImageKey: "wardrobe/casual-1.jpg", Category: "casual", Gender: "unisex", Active: true},
}

// SeedOutfits inserts any default wardrobe items missing from the database.
// Existing rows are left untouched so curation (renames, deactivations)
// survives redeploys.
func SeedOutfits(db *gorm.DB) error {
	for _, outfit := range DefaultOutfits {
		var existing Outfit
		err := db.Where("outfit_id = ?", outfit.OutfitID).First(&existing).Error
		if err == nil {
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("failed to look up outfit %s: %w", outfit.OutfitID, err)
		}

		record := outfit
		if err := db.Create(&record).Error; err != nil {
			return fmt.Errorf("failed to seed outfit %s: %w", outfit.OutfitID, err)
		}
	}
	return nil
}
