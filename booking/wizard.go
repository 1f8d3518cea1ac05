package booking

import (
	"errors"
	"log"
	"net/url"
	"strconv"

	"github.com/Livo-Africa/radikal-nigeria-sub000/catalog"
	"github.com/Livo-Africa/radikal-nigeria-sub000/utils"
	"github.com/google/uuid"
)

// Step is one stage of the linear booking journey.
type Step int

const (
	StepShootType Step = iota + 1
	StepPackage
	StepPhotos
	StepOutfits
	StepStyling
	StepReview
	StepPayment
)

// FormData is everything the wizard collects across its steps. Back
// navigation never clears it; only Reset does.
type FormData struct {
	Selections

	FacePhotoUploaded bool `json:"facePhotoUploaded"`
	BodyPhotoUploaded bool `json:"bodyPhotoUploaded"`

	PhoneCountry string `json:"phoneCountry"`
	PhoneLocal   string `json:"phoneLocal"`
}

// ErrCannotAdvance is returned by Next when the current step's gate is
// closed.
var ErrCannotAdvance = errors.New("current step is incomplete")

// Wizard is the seven-step booking journey:
// shoot type, package, photos+phone, outfits, styling (skippable),
// review+add-ons, payment. It snapshots itself into the store after every
// mutation so a navigation away (e.g. to the wardrobe page) and back
// restores the session.
type Wizard struct {
	sessionID string
	current   Step
	data      FormData
	store     *Store
}

// NewWizard starts a journey, restoring a prior snapshot when one exists.
func NewWizard(store *Store) *Wizard {
	w := &Wizard{
		sessionID: uuid.NewString(),
		current:   StepShootType,
		store:     store,
	}
	if snap := store.LoadProgress(); snap != nil {
		w.sessionID = snap.SessionID
		w.current = snap.CurrentStep
		w.data = snap.FormData
	}
	return w
}

// Current returns the active step.
func (w *Wizard) Current() Step {
	return w.current
}

// Data returns a copy of the collected form data.
func (w *Wizard) Data() FormData {
	return w.data
}

// SessionID identifies this journey across navigation boundaries.
func (w *Wizard) SessionID() string {
	return w.sessionID
}

// Update mutates the form data and persists the snapshot.
func (w *Wizard) Update(mutate func(*FormData)) {
	mutate(&w.data)
	w.persist()
}

// CanAdvance reports whether the given step's required fields are
// complete.
func (w *Wizard) CanAdvance(step Step) bool {
	switch step {
	case StepShootType:
		_, ok := catalog.CategoryByID(w.data.CategoryID)
		return ok
	case StepPackage:
		pkg, ok := catalog.PackageByID(w.data.PackageID)
		if !ok || pkg.CategoryID != w.data.CategoryID {
			return false
		}
		if cat, _ := catalog.CategoryByID(w.data.CategoryID); cat.IsGroup {
			return w.data.GroupSize >= 1
		}
		return true
	case StepPhotos:
		if !w.data.FacePhotoUploaded || !w.data.BodyPhotoUploaded {
			return false
		}
		return utils.ValidatePhone(w.data.PhoneCountry, w.data.PhoneLocal).IsValid
	case StepOutfits:
		pkg, ok := catalog.PackageByID(w.data.PackageID)
		if !ok {
			return false
		}
		return len(w.data.Outfits) >= 1 && len(w.data.Outfits) <= w.allowedOutfits(pkg)
	case StepStyling, StepReview:
		// Styling is optional; review always allows proceeding to payment.
		return true
	default:
		return false
	}
}

// allowedOutfits is the package allowance plus one per extra-outfit
// add-on.
func (w *Wizard) allowedOutfits(pkg catalog.Package) int {
	allowed := pkg.OutfitCount
	for _, id := range w.data.AddOnIDs {
		if id == "extra-outfit" {
			allowed++
		}
	}
	return allowed
}

// Next advances one step if the current gate is open. Leaving the photos
// step canonicalizes the WhatsApp number.
func (w *Wizard) Next() error {
	if w.current >= StepPayment {
		return nil
	}
	if !w.CanAdvance(w.current) {
		return ErrCannotAdvance
	}
	if w.current == StepPhotos {
		w.data.WhatsappNumber = utils.ValidatePhone(w.data.PhoneCountry, w.data.PhoneLocal).FullNumber
	}
	w.current++
	w.persist()
	return nil
}

// Back moves one step back. Always permitted; data is untouched.
func (w *Wizard) Back() {
	if w.current > StepShootType {
		w.current--
		w.persist()
	}
}

// SkipStyling records that styling was skipped and advances to review.
// Only meaningful on the styling step.
func (w *Wizard) SkipStyling() {
	if w.current != StepStyling {
		return
	}
	w.data.Style = Style{Makeup: MakeupNone, Skipped: true}
	w.current = StepReview
	w.persist()
}

// OnPaymentFailed returns the user to review with the draft intact.
func (w *Wizard) OnPaymentFailed() {
	w.current = StepReview
	w.persist()
}

// Reset discards the journey. Requires an explicit "start new order".
func (w *Wizard) Reset() {
	w.sessionID = uuid.NewString()
	w.current = StepShootType
	w.data = FormData{}
	w.store.ClearProgress()
	w.store.ClearSelectedOutfits()
}

// ApplyQuery implements the deep-linking contract of the booking entry
// point. category/packageId preselect a package and jump straight to the
// photos step; fromWardrobe=true&outfitCount=n picks the best-fit package
// for the outfit count and restores the outfits chosen on the wardrobe
// page.
func (w *Wizard) ApplyQuery(values url.Values) {
	categoryID := values.Get("category")
	if categoryID == "" {
		categoryID = w.data.CategoryID
	}

	if values.Get("fromWardrobe") == "true" {
		if categoryID == "" {
			categoryID = "solo"
		}
		count, _ := strconv.Atoi(values.Get("outfitCount"))
		if sel := w.store.LoadSelectedOutfits(); sel != nil {
			w.data.Outfits = sel.Outfits
			if count == 0 {
				count = len(sel.Outfits)
			}
		}
		if pkg, ok := catalog.BestFitPackage(categoryID, count); ok {
			w.data.CategoryID = categoryID
			w.data.PackageID = pkg.ID
			w.current = StepPhotos
		}
		w.persist()
		return
	}

	if pkgID := values.Get("packageId"); pkgID != "" {
		if pkg, ok := catalog.PackageByID(pkgID); ok && (categoryID == "" || pkg.CategoryID == categoryID) {
			w.data.CategoryID = pkg.CategoryID
			w.data.PackageID = pkg.ID
			w.current = StepPhotos
			w.persist()
			return
		}
	}

	if _, ok := catalog.CategoryByID(categoryID); ok {
		w.data.CategoryID = categoryID
		w.current = StepPackage
		w.persist()
	}
}

func (w *Wizard) persist() {
	snap := &ProgressSnapshot{
		SessionID:   w.sessionID,
		FormData:    w.data,
		CurrentStep: w.current,
	}
	if err := w.store.SaveProgress(snap); err != nil {
		// A lost snapshot only costs resumability, never the session.
		log.Printf("booking: failed to save progress: %v", err)
	}
}
