package booking

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Livo-Africa/radikal-nigeria-sub000/utils"
)

// bookingAPI is a fake server half that counts what the orchestrator
// actually sends and can be told to fail specific upload keys.
type bookingAPI struct {
	mu             sync.Mutex
	orderCreations int
	uploads        map[string]int // fileKey -> attempts
	confirmations  int
	failUploads    map[string]bool // fileKey -> always fail
	failConfirm    bool
}

func newBookingAPI() *bookingAPI {
	return &bookingAPI{
		uploads:     make(map[string]int),
		failUploads: make(map[string]bool),
	}
}

func (a *bookingAPI) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/orders", func(w http.ResponseWriter, r *http.Request) {
		a.mu.Lock()
		a.orderCreations++
		a.mu.Unlock()
		fmt.Fprint(w, `{"success":true}`)
	})
	mux.HandleFunc("/api/orders/upload-file", func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			w.WriteHeader(400)
			return
		}
		key := r.FormValue("fileKey")
		a.mu.Lock()
		a.uploads[key]++
		fail := a.failUploads[key]
		a.mu.Unlock()
		if fail {
			w.WriteHeader(500)
			return
		}
		fmt.Fprint(w, `{"success":true}`)
	})
	mux.HandleFunc("/api/orders/confirm", func(w http.ResponseWriter, r *http.Request) {
		a.mu.Lock()
		a.confirmations++
		fail := a.failConfirm
		a.mu.Unlock()
		if fail {
			w.WriteHeader(500)
			return
		}
		fmt.Fprint(w, `{"success":true}`)
	})
	return mux
}

func (a *bookingAPI) uploadAttempts(key string) int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.uploads[key]
}

func (a *bookingAPI) orderCount() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.orderCreations
}

func (a *bookingAPI) confirmCount() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.confirmations
}

var fastRetry = utils.RetryOptions{
	MaxRetries: 1,
	BaseDelay:  time.Millisecond,
	MaxJitter:  time.Millisecond,
	Silent:     true,
}

func testSelections() Selections {
	return Selections{
		CategoryID:     "solo",
		PackageID:      "solo-basic",
		Outfits:        []Outfit{{ID: "own-1", Uploaded: true}},
		WhatsappNumber: "+2348031234567",
	}
}

func testMedia() Media {
	return Media{
		FacePhoto:    []byte("face"),
		BodyPhoto:    []byte("body"),
		OutfitPhotos: map[string][]byte{"own-1": []byte("outfit")},
	}
}

func newTestCheckout(t *testing.T, api *bookingAPI, store *Store) (*Checkout, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(api.handler())
	t.Cleanup(server.Close)

	return NewCheckout(CheckoutConfig{
		BaseURL:          server.URL,
		PublicKey:        "pk_test_123",
		PayeeEmailDomain: "orders.radikalstudios.com",
		Store:            store,
		Retry:            fastRetry,
	}), server
}

func TestPay_FullFlow(t *testing.T) {
	api := newBookingAPI()
	store := NewStore(NewMemStore())
	checkout, _ := newTestCheckout(t, api, store)

	var states []State
	checkout.OnStateChange = func(s State) { states = append(states, s) }

	session, err := checkout.Pay(context.Background(), testSelections(), testMedia())
	require.NoError(t, err)

	assert.Equal(t, 1, api.orderCount())
	assert.Equal(t, 1, api.uploadAttempts("photo_face"))
	assert.Equal(t, 1, api.uploadAttempts("photo_body"))
	assert.Equal(t, 1, api.uploadAttempts("outfit_upload_1"))

	assert.Equal(t, []State{StateUploading, StateProcessing}, states)
	assert.Equal(t, StateProcessing, checkout.State())

	require.NotNil(t, session)
	assert.Equal(t, session.Reference, session.Metadata.OrderID)
	assert.Equal(t, "pk_test_123", session.PublicKey)
	assert.Equal(t, "NGN", session.Currency)
	// 2% surcharge in subunits: ceil(50000 * 1.02 * 100).
	assert.Equal(t, int64(5100000), session.AmountSubunits)
	assert.Contains(t, session.Email, "@orders.radikalstudios.com")
	assert.Equal(t, "rdk-", session.Email[:4])

	checkpoint := store.LoadPendingOrder()
	require.NotNil(t, checkpoint)
	assert.True(t, checkpoint.OrderDataSent)
	assert.ElementsMatch(t, []string{"photo_face", "photo_body", "outfit_upload_1"}, checkpoint.UploadedFiles)
}

func TestPay_ResumeSkipsCompletedWork(t *testing.T) {
	api := newBookingAPI()
	store := NewStore(NewMemStore())
	checkout, _ := newTestCheckout(t, api, store)

	sel := testSelections()
	media := testMedia()

	// Checkpoint from a fully completed prior attempt that never reached
	// the widget.
	units := DeriveUploads(sel, media)
	require.NoError(t, store.SavePendingOrder(&PendingOrderState{
		OrderID:       "RDK-resume",
		CreatedAt:     time.Now(),
		ExpiresAt:     time.Now().Add(time.Hour),
		OrderDataSent: true,
		UploadedFiles: []string{"photo_face", "photo_body", "outfit_upload_1"},
		Fingerprint:   UploadFingerprint(sel, units),
	}))

	session, err := checkout.Pay(context.Background(), sel, media)
	require.NoError(t, err)

	// Nothing was re-sent; the run went straight to the payment session.
	assert.Equal(t, 0, api.orderCount())
	assert.Equal(t, 0, api.uploadAttempts("photo_face"))
	assert.Equal(t, 0, api.uploadAttempts("photo_body"))
	assert.Equal(t, 0, api.uploadAttempts("outfit_upload_1"))
	assert.Equal(t, "RDK-resume", session.Reference)
}

func TestPay_PartialUploadFailureStillReachesPayment(t *testing.T) {
	api := newBookingAPI()
	api.failUploads["photo_body"] = true
	store := NewStore(NewMemStore())
	checkout, _ := newTestCheckout(t, api, store)

	session, err := checkout.Pay(context.Background(), testSelections(), testMedia())
	require.NoError(t, err)
	require.NotNil(t, session)
	assert.Equal(t, StateProcessing, checkout.State())

	// The failed unit exhausted its retries; the rest uploaded once.
	assert.Equal(t, fastRetry.MaxRetries+1, api.uploadAttempts("photo_body"))
	assert.Equal(t, 1, api.uploadAttempts("photo_face"))
	assert.Equal(t, 1, api.uploadAttempts("outfit_upload_1"))

	// Only the successes are checkpointed.
	checkpoint := store.LoadPendingOrder()
	require.NotNil(t, checkpoint)
	assert.True(t, checkpoint.HasUploaded("photo_face"))
	assert.True(t, checkpoint.HasUploaded("outfit_upload_1"))
	assert.False(t, checkpoint.HasUploaded("photo_body"))
}

func TestPay_CancelThenRetryOnlySendsMissingWork(t *testing.T) {
	api := newBookingAPI()
	api.failUploads["photo_body"] = true
	store := NewStore(NewMemStore())
	checkout, _ := newTestCheckout(t, api, store)

	session, err := checkout.Pay(context.Background(), testSelections(), testMedia())
	require.NoError(t, err)
	firstOrderID := session.Reference

	checkout.OnPaymentResult(context.Background(), OutcomeCancelled, "")
	assert.Equal(t, StateIdle, checkout.State())
	require.NotNil(t, store.LoadPendingOrder(), "cancel keeps the checkpoint")

	// The transient failure clears before the retry.
	api.mu.Lock()
	api.failUploads["photo_body"] = false
	api.mu.Unlock()

	session, err = checkout.Pay(context.Background(), testSelections(), testMedia())
	require.NoError(t, err)

	// Same order, no second creation, and only the missing file was sent.
	assert.Equal(t, firstOrderID, session.Reference)
	assert.Equal(t, 1, api.orderCount())
	assert.Equal(t, 1, api.uploadAttempts("photo_face"))
	assert.Equal(t, 1, api.uploadAttempts("outfit_upload_1"))
	assert.Equal(t, fastRetry.MaxRetries+2, api.uploadAttempts("photo_body"))
}

func TestPay_ChangedSelectionsInvalidateUploadedSet(t *testing.T) {
	api := newBookingAPI()
	store := NewStore(NewMemStore())
	checkout, _ := newTestCheckout(t, api, store)

	sel := testSelections()
	media := testMedia()

	_, err := checkout.Pay(context.Background(), sel, media)
	require.NoError(t, err)
	checkout.OnPaymentResult(context.Background(), OutcomeCancelled, "")

	// User goes back and swaps the uploaded outfit for a second one.
	sel.Outfits = append(sel.Outfits, Outfit{ID: "own-2", Uploaded: true})
	sel.PackageID = "solo-classic"
	media.OutfitPhotos["own-2"] = []byte("outfit-2")

	_, err = checkout.Pay(context.Background(), sel, media)
	require.NoError(t, err)

	// Order record survives, uploads start over against the new set.
	assert.Equal(t, 1, api.orderCount())
	assert.Equal(t, 2, api.uploadAttempts("photo_face"))
	assert.Equal(t, 2, api.uploadAttempts("outfit_upload_1"))
	assert.Equal(t, 1, api.uploadAttempts("outfit_upload_2"))
}

func TestPay_OrderCreationFailureIsFatal(t *testing.T) {
	store := NewStore(NewMemStore())
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(500)
	}))
	defer server.Close()

	checkout := NewCheckout(CheckoutConfig{
		BaseURL:   server.URL,
		PublicKey: "pk_test_123",
		Store:     store,
		Retry:     fastRetry,
	})

	_, err := checkout.Pay(context.Background(), testSelections(), testMedia())
	require.Error(t, err)
	assert.Equal(t, StateFailed, checkout.State())
	assert.Nil(t, store.LoadPendingOrder(), "nothing to resume before the record exists")
}

func TestPay_MissingPublicKeyFailsBeforeNetwork(t *testing.T) {
	api := newBookingAPI()
	store := NewStore(NewMemStore())
	server := httptest.NewServer(api.handler())
	defer server.Close()

	checkout := NewCheckout(CheckoutConfig{
		BaseURL: server.URL,
		Store:   store,
		Retry:   fastRetry,
	})

	_, err := checkout.Pay(context.Background(), testSelections(), testMedia())
	assert.ErrorIs(t, err, ErrNoPaymentKey)
	assert.Equal(t, 0, api.orderCount())
	assert.Equal(t, StateIdle, checkout.State())
}

func TestOnPaymentResult_SuccessClearsCheckpointAndConfirms(t *testing.T) {
	api := newBookingAPI()
	store := NewStore(NewMemStore())
	checkout, _ := newTestCheckout(t, api, store)

	_, err := checkout.Pay(context.Background(), testSelections(), testMedia())
	require.NoError(t, err)

	checkout.OnPaymentResult(context.Background(), OutcomeSuccess, "ref_abc123")
	assert.Equal(t, StateSuccess, checkout.State())
	assert.Nil(t, store.LoadPendingOrder())
	assert.Equal(t, 1, api.confirmCount())
}

func TestOnPaymentResult_ConfirmationFailureStillSucceeds(t *testing.T) {
	api := newBookingAPI()
	api.failConfirm = true
	store := NewStore(NewMemStore())
	checkout, _ := newTestCheckout(t, api, store)

	_, err := checkout.Pay(context.Background(), testSelections(), testMedia())
	require.NoError(t, err)

	// The provider already captured funds; a lost confirmation call must
	// not turn the screen red.
	checkout.OnPaymentResult(context.Background(), OutcomeSuccess, "ref_abc123")
	assert.Equal(t, StateSuccess, checkout.State())
	assert.Nil(t, store.LoadPendingOrder())
	assert.Equal(t, fastRetry.MaxRetries+1, api.confirmCount())
}

func TestOnPaymentResult_IgnoredWithoutSession(t *testing.T) {
	store := NewStore(NewMemStore())
	checkout := NewCheckout(CheckoutConfig{Store: store, Retry: fastRetry})

	checkout.OnPaymentResult(context.Background(), OutcomeSuccess, "ref")
	assert.Equal(t, StateIdle, checkout.State())
}

func TestReset(t *testing.T) {
	api := newBookingAPI()
	store := NewStore(NewMemStore())
	checkout, _ := newTestCheckout(t, api, store)

	_, err := checkout.Pay(context.Background(), testSelections(), testMedia())
	require.NoError(t, err)
	require.NotNil(t, store.LoadPendingOrder())

	checkout.Reset()
	assert.Equal(t, StateIdle, checkout.State())
	assert.Nil(t, store.LoadPendingOrder())
	assert.Nil(t, checkout.Session())
}
