package booking

import (
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/Livo-Africa/radikal-nigeria-sub000/catalog"
	"github.com/google/uuid"
)

// PaymentSurcharge is the provider fee pass-through applied to the order
// total before conversion to subunits.
const PaymentSurcharge = 1.02

// Makeup is the requested makeup level.
type Makeup string

const (
	MakeupNone  Makeup = "none"
	MakeupLight Makeup = "light"
	MakeupHeavy Makeup = "heavy"
	MakeupGlam  Makeup = "glam"
)

// ParseMakeup validates a makeup choice. The empty string reads as "none".
func ParseMakeup(s string) (Makeup, error) {
	switch Makeup(s) {
	case "", MakeupNone:
		return MakeupNone, nil
	case MakeupLight, MakeupHeavy, MakeupGlam:
		return Makeup(s), nil
	}
	return "", fmt.Errorf("unknown makeup choice %q", s)
}

// Hairstyle captures whether the studio should style hair and any notes.
type Hairstyle struct {
	Styled bool   `json:"styled"`
	Notes  string `json:"notes,omitempty"`
}

// Background captures the backdrop request: a studio preset or a custom
// description.
type Background struct {
	Custom bool   `json:"custom"`
	Choice string `json:"choice"` // preset id, or free text when Custom
}

// Style groups the styling preferences of a booking.
type Style struct {
	Makeup     Makeup     `json:"makeup"`
	Hairstyle  Hairstyle  `json:"hairstyle"`
	Background Background `json:"background"`
	Skipped    bool       `json:"skipped,omitempty"` // styling step skipped entirely
}

// Outfit is one wardrobe selection attached to a booking. Uploaded marks
// a customer-supplied outfit photo rather than a studio wardrobe item.
type Outfit struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Image    string `json:"image"`
	Category string `json:"category"`
	Uploaded bool   `json:"uploaded"`
}

// Selections is the in-memory UI state a draft is assembled from.
type Selections struct {
	CategoryID     string   `json:"categoryId"`
	PackageID      string   `json:"packageId"`
	GroupSize      int      `json:"groupSize,omitempty"`
	Outfits        []Outfit `json:"outfits"`
	Style          Style    `json:"style"`
	WhatsappNumber string   `json:"whatsappNumber"`
	AddOnIDs       []string `json:"addOns"`
}

// OrderDraft is the serialized representation of an intended purchase,
// posted as-is to the order-creation endpoint. Once submission starts the
// draft is never mutated; retries re-read progress from the pending store.
type OrderDraft struct {
	OrderID        string   `json:"orderId"`
	Status         string   `json:"status"` // the client only ever sets "pending"
	Category       string   `json:"category"`
	PackageID      string   `json:"packageId"`
	PackageName    string   `json:"packageName"`
	PackagePrice   float64  `json:"packagePrice"`
	GroupSize      *int     `json:"groupSize,omitempty"`
	Outfits        []Outfit `json:"outfits"`
	Style          Style    `json:"style"`
	WhatsappNumber string   `json:"whatsappNumber"`
	AddOnIDs       []string `json:"addOns"`
	FinalTotal     float64  `json:"finalTotal"`
	Currency       string   `json:"currency"`
}

// BuildDraft assembles the order payload from UI state, resolving the
// package and computing the final total against the catalog.
func BuildDraft(orderID string, sel Selections) (*OrderDraft, error) {
	cat, ok := catalog.CategoryByID(sel.CategoryID)
	if !ok {
		return nil, fmt.Errorf("unknown category %q", sel.CategoryID)
	}
	pkg, ok := catalog.PackageByID(sel.PackageID)
	if !ok {
		return nil, fmt.Errorf("unknown package %q", sel.PackageID)
	}
	if pkg.CategoryID != cat.ID {
		return nil, fmt.Errorf("package %q does not belong to category %q", pkg.ID, cat.ID)
	}

	draft := &OrderDraft{
		OrderID:        orderID,
		Status:         "pending",
		Category:       cat.ID,
		PackageID:      pkg.ID,
		PackageName:    pkg.Name,
		PackagePrice:   pkg.Price,
		Outfits:        sel.Outfits,
		Style:          sel.Style,
		WhatsappNumber: sel.WhatsappNumber,
		AddOnIDs:       sel.AddOnIDs,
		Currency:       CurrencyForPhone(sel.WhatsappNumber),
	}
	if cat.IsGroup {
		size := sel.GroupSize
		draft.GroupSize = &size
	}
	draft.FinalTotal = FinalTotal(cat, pkg, sel.GroupSize, sel.AddOnIDs)
	return draft, nil
}

// FinalTotal is the base (or group) price plus the add-on sum. Unknown
// add-on ids contribute zero.
func FinalTotal(cat catalog.Category, pkg catalog.Package, groupSize int, addOnIDs []string) float64 {
	total := catalog.GroupPrice(cat, pkg, groupSize)
	for _, id := range addOnIDs {
		total += catalog.AddOnPrice(id)
	}
	return total
}

// PaymentAmountSubunits converts a major-unit total to provider subunits
// with the surcharge applied. Rounding is ceiling: rounding down would
// underpay the provider.
func PaymentAmountSubunits(total float64) int64 {
	return int64(math.Ceil(total * PaymentSurcharge * 100))
}

// CurrencyForPhone picks the settlement currency from the delivery
// number's dialing code. Ghanaian numbers settle in GHS, everything else
// in NGN.
func CurrencyForPhone(whatsappNumber string) string {
	if strings.HasPrefix(whatsappNumber, "+233") {
		return "GHS"
	}
	return "NGN"
}

// FileUpload is one (key, binary content) unit of Phase B.
type FileUpload struct {
	Key  string
	Name string
	Data []byte
}

// Media holds the raw photo bytes collected by the UI.
type Media struct {
	FacePhoto       []byte
	BodyPhoto       []byte
	GroupFacePhotos [][]byte          // additional members, index 0 is member 2
	OutfitPhotos    map[string][]byte // outfit id -> customer-supplied photo
}

// DeriveUploads produces the upload units in their stable order: face,
// body, group members by index, then customer outfit photos in selection
// order. Keys are deterministic so re-derivation after a reload skips
// files the checkpoint already confirms.
func DeriveUploads(sel Selections, media Media) []FileUpload {
	var units []FileUpload
	if media.FacePhoto != nil {
		units = append(units, FileUpload{Key: "photo_face", Name: "photo_face.jpg", Data: media.FacePhoto})
	}
	if media.BodyPhoto != nil {
		units = append(units, FileUpload{Key: "photo_body", Name: "photo_body.jpg", Data: media.BodyPhoto})
	}
	for i, photo := range media.GroupFacePhotos {
		if photo == nil {
			continue
		}
		key := fmt.Sprintf("photo_face_%d", i+2)
		units = append(units, FileUpload{Key: key, Name: key + ".jpg", Data: photo})
	}
	n := 0
	for _, outfit := range sel.Outfits {
		if !outfit.Uploaded {
			continue
		}
		n++
		photo, ok := media.OutfitPhotos[outfit.ID]
		if !ok || photo == nil {
			continue
		}
		key := fmt.Sprintf("outfit_upload_%d", n)
		units = append(units, FileUpload{Key: key, Name: key + ".jpg", Data: photo})
	}
	return units
}

// UploadFingerprint hashes the package id plus the ordered derived keys.
// A changed fingerprint between attempts means the uploaded-set in the
// checkpoint no longer describes the current selections.
func UploadFingerprint(sel Selections, units []FileUpload) string {
	h := sha1.New()
	h.Write([]byte(sel.PackageID))
	for _, u := range units {
		h.Write([]byte{0})
		h.Write([]byte(u.Key))
	}
	return hex.EncodeToString(h.Sum(nil))
}

// NewOrderID generates an opaque order id unique with overwhelming
// probability across concurrent customers.
func NewOrderID(now time.Time) string {
	suffix := strings.Split(uuid.NewString(), "-")[0]
	return fmt.Sprintf("RDK-%s-%s", now.UTC().Format("20060102150405"), suffix)
}
