package models

import (
	"encoding/json"
	"fmt"
	"path"
	"strings"
	"time"

	"gorm.io/gorm"
)

// Order statuses
const (
	OrderStatusPending   = "pending"
	OrderStatusConfirmed = "confirmed"
)

// Order represents a booking order in the system. The client submits the
// order record first (status "pending"), then attaches media files one by
// one, and the record flips to "confirmed" once Paystack verifies payment.
type Order struct {
	ID             uint           `gorm:"primaryKey" json:"id"`
	OrderID        string         `gorm:"uniqueIndex;not null" json:"order_id"` // client-generated opaque id
	Status         string         `gorm:"not null;default:'pending'" json:"status"`
	Category       string         `gorm:"not null" json:"category"`
	PackageID      string         `gorm:"not null" json:"package_id"`
	PackageName    string         `json:"package_name"`
	PackagePrice   float64        `json:"package_price"`
	GroupSize      *int           `json:"group_size,omitempty"` // only set for group-category bookings
	Outfits        string         `gorm:"type:text" json:"-"`   // JSON, see OutfitSelections()
	Style          string         `gorm:"type:text" json:"-"`   // JSON styling preferences
	AddOns         string         `gorm:"type:text" json:"-"`   // JSON array of add-on ids
	WhatsappNumber string         `gorm:"not null" json:"whatsapp_number"`
	FinalTotal     float64        `gorm:"not null" json:"final_total"`
	Currency       string         `gorm:"not null;default:'NGN'" json:"currency"`
	PaymentRef     *string        `gorm:"index" json:"payment_ref,omitempty"` // set on confirmation
	UploadedFiles  string         `gorm:"type:text" json:"-"`                 // JSON array of stored file keys
	ConfirmedAt    *time.Time     `json:"confirmed_at,omitempty"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName specifies the table name for the Order model
func (Order) TableName() string {
	return "orders"
}

// OutfitSelection mirrors one outfit entry of the submitted draft.
type OutfitSelection struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Image    string `json:"image"`
	Category string `json:"category"`
	Uploaded bool   `json:"uploaded"` // true when the customer supplied their own photo
}

// OutfitSelections decodes the stored outfit list. An empty or malformed
// column decodes to an empty slice.
func (o *Order) OutfitSelections() []OutfitSelection {
	var outfits []OutfitSelection
	if o.Outfits == "" {
		return outfits
	}
	if err := json.Unmarshal([]byte(o.Outfits), &outfits); err != nil {
		return nil
	}
	return outfits
}

// SetOutfitSelections encodes and stores the outfit list.
func (o *Order) SetOutfitSelections(outfits []OutfitSelection) error {
	data, err := json.Marshal(outfits)
	if err != nil {
		return err
	}
	o.Outfits = string(data)
	return nil
}

// UploadedFileKeys decodes the set of file keys already stored for this order.
func (o *Order) UploadedFileKeys() []string {
	var keys []string
	if o.UploadedFiles == "" {
		return keys
	}
	if err := json.Unmarshal([]byte(o.UploadedFiles), &keys); err != nil {
		return nil
	}
	return keys
}

// AddUploadedFileKey appends a stored file key if not already present.
func (o *Order) AddUploadedFileKey(key string) error {
	keys := o.UploadedFileKeys()
	for _, k := range keys {
		if k == key {
			return nil
		}
	}
	keys = append(keys, key)
	data, err := json.Marshal(keys)
	if err != nil {
		return err
	}
	o.UploadedFiles = string(data)
	return nil
}

// ExpectedFileKeys derives the full set of upload keys this order should
// eventually have: face and body photos, one face photo per additional
// group member, and one photo per customer-supplied outfit. Mirrors the
// client's key derivation.
func (o *Order) ExpectedFileKeys() []string {
	keys := []string{"photo_face", "photo_body"}
	if o.GroupSize != nil {
		for n := 2; n <= *o.GroupSize; n++ {
			keys = append(keys, fmt.Sprintf("photo_face_%d", n))
		}
	}
	n := 0
	for _, outfit := range o.OutfitSelections() {
		if outfit.Uploaded {
			n++
			keys = append(keys, fmt.Sprintf("outfit_upload_%d", n))
		}
	}
	return keys
}

// MissingFileKeys returns the expected keys with no stored file yet.
// Uploads land under orders/{orderId}/{key}{ext}, so a stored key counts
// when its basename starts with the expected key.
func (o *Order) MissingFileKeys() []string {
	stored := o.UploadedFileKeys()
	var missing []string
	for _, want := range o.ExpectedFileKeys() {
		found := false
		for _, key := range stored {
			base := path.Base(key)
			if base == want || strings.HasPrefix(base, want+".") {
				found = true
				break
			}
		}
		if !found {
			missing = append(missing, want)
		}
	}
	return missing
}

// AddOnIDs decodes the stored add-on id list.
func (o *Order) AddOnIDs() []string {
	var ids []string
	if o.AddOns == "" {
		return ids
	}
	if err := json.Unmarshal([]byte(o.AddOns), &ids); err != nil {
		return nil
	}
	return ids
}
