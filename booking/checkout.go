package booking

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/Livo-Africa/radikal-nigeria-sub000/utils"
)

// State is the orchestrator's user-visible phase.
type State string

const (
	StateIdle       State = "idle"
	StateUploading  State = "uploading"
	StateProcessing State = "processing"
	StateSuccess    State = "success"
	StateFailed     State = "failed"
)

// PaymentOutcome is the external widget's verdict, delivered through
// OnPaymentResult.
type PaymentOutcome string

const (
	OutcomeSuccess   PaymentOutcome = "success"
	OutcomeCancelled PaymentOutcome = "cancelled"
)

// ErrNoPaymentKey means the Paystack public key is missing from
// configuration. Fatal: no network call is attempted.
var ErrNoPaymentKey = errors.New("payment public key is not configured")

// PaymentSession is the ephemeral config handed to the payment widget.
// Never persisted.
type PaymentSession struct {
	Reference      string      `json:"reference"` // equals the order id
	AmountSubunits int64       `json:"amount"`
	Email          string      `json:"email"`
	PublicKey      string      `json:"publicKey"`
	Currency       string      `json:"currency"`
	Metadata       *OrderDraft `json:"metadata"`
}

// CheckoutConfig wires a Checkout.
type CheckoutConfig struct {
	BaseURL          string // booking API origin, no trailing slash
	PublicKey        string // Paystack public key
	PayeeEmailDomain string
	Store            *Store
	Retry            utils.RetryOptions // applied to order creation and uploads
	Now              func() time.Time
}

// Checkout drives an order from "user clicked Pay" to "payment widget
// opened", checkpointing after every confirmed step so an interrupted
// submission resumes instead of duplicating work.
//
// Phases: A order record creation, B sequential file uploads, C payment
// session handoff, D post-payment confirmation. A strictly precedes B;
// C is entered only after B's loop completes; D only runs from the
// widget's success callback.
type Checkout struct {
	baseURL      string
	publicKey    string
	emailDomain  string
	store        *Store
	client       *utils.RetryClient
	silentClient *utils.RetryClient // Phase D: failures never surface
	now          func() time.Time

	state   State
	session *PaymentSession

	// OnStateChange, when set, is invoked after every transition. The
	// rendering layer subscribes here instead of being interleaved with
	// the flow.
	OnStateChange func(State)
}

// NewCheckout builds an orchestrator in the Idle state.
func NewCheckout(cfg CheckoutConfig) *Checkout {
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	silentOpts := cfg.Retry
	silentOpts.Silent = true
	domain := cfg.PayeeEmailDomain
	if domain == "" {
		domain = "orders.radikalstudios.com"
	}
	return &Checkout{
		baseURL:      cfg.BaseURL,
		publicKey:    cfg.PublicKey,
		emailDomain:  domain,
		store:        cfg.Store,
		client:       utils.NewRetryClient(cfg.Retry),
		silentClient: utils.NewRetryClient(silentOpts),
		now:          cfg.Now,
		state:        StateIdle,
	}
}

// State returns the current phase.
func (c *Checkout) State() State {
	return c.state
}

// Session returns the payment session of the current attempt, if Phase C
// was reached.
func (c *Checkout) Session() *PaymentSession {
	return c.session
}

func (c *Checkout) setState(s State) {
	c.state = s
	if c.OnStateChange != nil {
		c.OnStateChange(s)
	}
}

type apiResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// Pay runs phases A through C and returns the session for the external
// payment widget. The caller hands the session to the widget and reports
// the verdict back through OnPaymentResult.
func (c *Checkout) Pay(ctx context.Context, sel Selections, media Media) (*PaymentSession, error) {
	// Resume check: a non-expired checkpoint is the starting point.
	checkpoint := c.store.LoadPendingOrder()

	units := DeriveUploads(sel, media)
	fingerprint := UploadFingerprint(sel, units)
	if checkpoint != nil && checkpoint.Fingerprint != "" && checkpoint.Fingerprint != fingerprint {
		// Selections changed since the interrupted attempt: the uploaded
		// set no longer matches the derived keys. Keep the order id and
		// the created record, re-upload everything.
		log.Printf("booking: selections changed for %s, resetting uploaded set", checkpoint.OrderID)
		checkpoint.UploadedFiles = nil
		checkpoint.Fingerprint = fingerprint
		if err := c.store.SavePendingOrder(checkpoint); err != nil {
			log.Printf("booking: failed to checkpoint order %s: %v", checkpoint.OrderID, err)
		}
	}

	orderID := ""
	if checkpoint != nil {
		orderID = checkpoint.OrderID
	}
	if orderID == "" {
		orderID = NewOrderID(c.now())
	}

	// Precondition: without a payment key the widget can never open, so
	// fail before any network traffic.
	if c.publicKey == "" {
		return nil, ErrNoPaymentKey
	}

	draft, err := BuildDraft(orderID, sel)
	if err != nil {
		return nil, err
	}

	c.setState(StateUploading)

	// Phase A: create the order record, unless a checkpoint confirms the
	// server already has it.
	if checkpoint == nil || !checkpoint.OrderDataSent {
		var resp apiResponse
		err := c.client.DoJSON(ctx, "POST", c.baseURL+"/api/orders", draft, &resp)
		if err == nil && !resp.Success {
			err = fmt.Errorf("order creation rejected: %s", resp.Error)
		}
		if err != nil {
			c.setState(StateFailed)
			return nil, fmt.Errorf("failed to create order: %w", err)
		}

		next := &PendingOrderState{
			OrderID:       orderID,
			CreatedAt:     c.now(),
			ExpiresAt:     c.now().Add(PendingOrderTTL),
			OrderDataSent: true,
			Fingerprint:   fingerprint,
		}
		if checkpoint != nil {
			next.UploadedFiles = checkpoint.UploadedFiles
		}
		checkpoint = next
		if err := c.store.SavePendingOrder(checkpoint); err != nil {
			log.Printf("booking: failed to checkpoint order %s: %v", orderID, err)
		}
	}

	// Phase B: upload pending units sequentially. A unit that fails after
	// retries is logged and skipped; one missing asset must not block
	// payment.
	for _, unit := range units {
		if checkpoint.HasUploaded(unit.Key) {
			continue
		}
		fields := map[string]string{
			"orderId": orderID,
			"fileKey": unit.Key,
		}
		var resp apiResponse
		err := c.client.DoMultipart(ctx, c.baseURL+"/api/orders/upload-file", fields, "file", unit.Name, unit.Data, &resp)
		if err == nil && !resp.Success {
			err = fmt.Errorf("upload rejected: %s", resp.Error)
		}
		if err != nil {
			log.Printf("booking: upload of %s for %s failed, continuing: %v", unit.Key, orderID, err)
			continue
		}
		checkpoint.MarkUploaded(unit.Key)
		if err := c.store.SavePendingOrder(checkpoint); err != nil {
			log.Printf("booking: failed to checkpoint upload %s: %v", unit.Key, err)
		}
	}

	// Phase C: hand over to the payment widget.
	c.session = &PaymentSession{
		Reference:      orderID,
		AmountSubunits: PaymentAmountSubunits(draft.FinalTotal),
		Email:          c.payeeEmail(orderID),
		PublicKey:      c.publicKey,
		Currency:       draft.Currency,
		Metadata:       draft,
	}
	c.setState(StateProcessing)
	return c.session, nil
}

// OnPaymentResult is the orchestrator's re-entry point for the widget's
// verdict.
//
// Success clears the checkpoint (the order is committed, resumability is
// no longer needed) and runs Phase D. The end state is Success no matter
// how Phase D goes: the provider has already captured funds, and showing
// a failure screen for a captured payment is never acceptable. The
// server-side webhook is the backstop for a lost confirmation.
//
// Cancel returns to Idle but keeps the checkpoint, so a retry skips the
// order record and every file already uploaded.
func (c *Checkout) OnPaymentResult(ctx context.Context, outcome PaymentOutcome, paymentReference string) {
	if c.session == nil {
		return
	}

	switch outcome {
	case OutcomeSuccess:
		c.store.ClearPendingOrder()

		// Phase D: best-effort confirmation, silent retries.
		body := map[string]string{
			"orderId":          c.session.Reference,
			"paymentReference": paymentReference,
		}
		var resp apiResponse
		if err := c.silentClient.DoJSON(ctx, "POST", c.baseURL+"/api/orders/confirm", body, &resp); err != nil {
			log.Printf("booking: confirmation call for %s failed (webhook will reconcile): %v", c.session.Reference, err)
		}
		c.setState(StateSuccess)

	default:
		// Cancel or widget-reported failure: cheap retry later.
		c.setState(StateIdle)
	}
}

// Reset discards the checkpoint and returns to Idle. Only an explicit
// "start new booking" goes through here.
func (c *Checkout) Reset() {
	c.store.ClearPendingOrder()
	c.session = nil
	c.setState(StateIdle)
}

func (c *Checkout) payeeEmail(orderID string) string {
	return fmt.Sprintf("%s@%s", strings.ToLower(orderID), c.emailDomain)
}
