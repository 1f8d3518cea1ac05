package integration

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/Livo-Africa/radikal-nigeria-sub000/booking"
	"github.com/Livo-Africa/radikal-nigeria-sub000/config"
	"github.com/Livo-Africa/radikal-nigeria-sub000/controllers"
	"github.com/Livo-Africa/radikal-nigeria-sub000/models"
	"github.com/Livo-Africa/radikal-nigeria-sub000/services"
	"github.com/Livo-Africa/radikal-nigeria-sub000/tests/testutil"
	"github.com/Livo-Africa/radikal-nigeria-sub000/utils"
)

// CheckoutIntegrationTestSuite runs the client-side orchestrator against
// the real API router over HTTP.
type CheckoutIntegrationTestSuite struct {
	suite.Suite
	server   *httptest.Server
	db       *gorm.DB
	s3       *services.MockS3Service
	paystack *services.MockPaystackService
	notify   *services.MockNotifyService
	store    *booking.Store
	checkout *booking.Checkout
}

// SetupSuite runs once before all tests
func (suite *CheckoutIntegrationTestSuite) SetupSuite() {
	gin.SetMode(gin.TestMode)
	testutil.MustSetTestEnvironment(suite.T())
}

// SetupTest runs before each test
func (suite *CheckoutIntegrationTestSuite) SetupTest() {
	testutil.RequireTestEnvironment(suite.T())

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	suite.NoError(err)
	suite.db = db

	err = db.AutoMigrate(&models.Order{}, &models.Outfit{})
	suite.NoError(err)
	config.SetDB(db)
	config.SetConfig(&config.Config{GoEnv: "test"})

	suite.s3 = services.NewMockS3Service()
	suite.s3.SetAsMockForTesting()
	services.InitImageService(suite.s3)

	suite.paystack = services.NewMockPaystackService()
	suite.paystack.SetAsMockForTesting()

	suite.notify = services.NewMockNotifyService()
	suite.notify.SetAsMockForTesting()

	router := gin.New()
	api := router.Group("/api")
	{
		api.POST("/orders", controllers.CreateOrder)
		api.POST("/orders/upload-file", controllers.UploadOrderFile)
		api.POST("/orders/confirm", controllers.ConfirmOrder)
	}
	suite.server = httptest.NewServer(router)

	suite.store = booking.NewStore(booking.NewMemStore())
	suite.checkout = booking.NewCheckout(booking.CheckoutConfig{
		BaseURL:          suite.server.URL,
		PublicKey:        "pk_test_integration",
		PayeeEmailDomain: "orders.radikalstudios.com",
		Store:            suite.store,
		Retry: utils.RetryOptions{
			MaxRetries: 1,
			BaseDelay:  time.Millisecond,
			MaxJitter:  time.Millisecond,
			Silent:     true,
		},
	})
}

// TearDownTest runs after each test
func (suite *CheckoutIntegrationTestSuite) TearDownTest() {
	suite.server.Close()
	sqlDB, err := suite.db.DB()
	if err == nil {
		sqlDB.Close()
	}
}

func (suite *CheckoutIntegrationTestSuite) selections() booking.Selections {
	return booking.Selections{
		CategoryID: "solo",
		PackageID:  "solo-classic",
		Outfits: []booking.Outfit{
			{ID: "kente-1", Name: "Kente Royal", Category: "traditional"},
			{ID: "own-1", Name: "My Outfit", Uploaded: true},
		},
		WhatsappNumber: "+2348031234567",
		AddOnIDs:       []string{"express-delivery"},
	}
}

func (suite *CheckoutIntegrationTestSuite) media() booking.Media {
	return booking.Media{
		FacePhoto:    []byte("face-bytes"),
		BodyPhoto:    []byte("body-bytes"),
		OutfitPhotos: map[string][]byte{"own-1": []byte("outfit-bytes")},
	}
}

// TestCheckout_EndToEnd drives the whole journey: order creation, file
// uploads, payment session, confirmation.
func (suite *CheckoutIntegrationTestSuite) TestCheckout_EndToEnd() {
	t := suite.T()

	session, err := suite.checkout.Pay(context.Background(), suite.selections(), suite.media())
	suite.NoError(err)
	suite.Equal(booking.StateProcessing, suite.checkout.State())

	// The server has the order with the catalog-verified total.
	var order models.Order
	suite.NoError(suite.db.Where("order_id = ?", session.Reference).First(&order).Error)
	assert.Equal(t, models.OrderStatusPending, order.Status)
	assert.Equal(t, float64(105000), order.FinalTotal) // 85,000 + 20,000 express
	assert.Equal(t, "NGN", order.Currency)

	// All three photos landed in storage and are recorded on the order.
	suite.Equal(3, suite.s3.UploadCount())
	assert.Empty(t, order.MissingFileKeys())

	// Widget succeeds: the provider captured the surcharged amount.
	suite.paystack.AddTransaction("ref_integration", &services.PaystackVerification{
		Status:         "success",
		AmountSubunits: session.AmountSubunits,
		Currency:       "NGN",
	})
	suite.checkout.OnPaymentResult(context.Background(), booking.OutcomeSuccess, "ref_integration")
	suite.Equal(booking.StateSuccess, suite.checkout.State())

	suite.NoError(suite.db.Where("order_id = ?", session.Reference).First(&order).Error)
	assert.Equal(t, models.OrderStatusConfirmed, order.Status)
	assert.NotNil(t, order.PaymentRef)

	// The checkpoint is gone and notifications went out.
	assert.Nil(t, suite.store.LoadPendingOrder())
	assert.Len(t, suite.notify.TelegramMessages, 1)
	assert.Len(t, suite.notify.SMSMessages["+2348031234567"], 1)
}

// TestCheckout_InterruptionAndResume fails one upload, cancels at the
// widget, then retries after the fault clears.
func (suite *CheckoutIntegrationTestSuite) TestCheckout_InterruptionAndResume() {
	t := suite.T()

	suite.s3.FailUploadsFor("photo_body")

	session, err := suite.checkout.Pay(context.Background(), suite.selections(), suite.media())
	suite.NoError(err)
	firstOrderID := session.Reference

	// Payment still reachable with one asset missing.
	suite.Equal(booking.StateProcessing, suite.checkout.State())

	var order models.Order
	suite.NoError(suite.db.Where("order_id = ?", firstOrderID).First(&order).Error)
	assert.Equal(t, []string{"photo_body"}, order.MissingFileKeys())

	// User cancels at the widget and retries once storage recovers.
	suite.checkout.OnPaymentResult(context.Background(), booking.OutcomeCancelled, "")
	suite.Equal(booking.StateIdle, suite.checkout.State())

	suite.recoverStorage()

	session, err = suite.checkout.Pay(context.Background(), suite.selections(), suite.media())
	suite.NoError(err)
	suite.Equal(firstOrderID, session.Reference, "same order across attempts")

	// Exactly one order row, and the gap is filled.
	var count int64
	suite.db.Model(&models.Order{}).Count(&count)
	suite.Equal(int64(1), count)

	suite.NoError(suite.db.Where("order_id = ?", firstOrderID).First(&order).Error)
	assert.Empty(t, order.MissingFileKeys())
}

// recoverStorage swaps in a healthy storage mock, keeping the
// already-stored objects irrelevant to the retry assertions.
func (suite *CheckoutIntegrationTestSuite) recoverStorage() {
	recovered := services.NewMockS3Service()
	recovered.SetAsMockForTesting()
	services.InitImageService(recovered)
	suite.s3 = recovered
}

// TestCheckout_ConfirmationLossStillShowsSuccess drops the confirm
// endpoint after payment; the customer still sees success and the order
// stays pending for the webhook to reconcile.
func (suite *CheckoutIntegrationTestSuite) TestCheckout_ConfirmationLossStillShowsSuccess() {
	t := suite.T()

	session, err := suite.checkout.Pay(context.Background(), suite.selections(), suite.media())
	suite.NoError(err)

	// No transaction registered: the confirm call will fail verification.
	suite.checkout.OnPaymentResult(context.Background(), booking.OutcomeSuccess, "ref_lost")
	suite.Equal(booking.StateSuccess, suite.checkout.State())

	var order models.Order
	suite.NoError(suite.db.Where("order_id = ?", session.Reference).First(&order).Error)
	assert.Equal(t, models.OrderStatusPending, order.Status, "webhook reconciles later")
	assert.Nil(t, suite.store.LoadPendingOrder())
}

// TestCheckout_ExpiredCheckpointStartsFresh plants a stale checkpoint and
// verifies a new order id is generated.
func (suite *CheckoutIntegrationTestSuite) TestCheckout_ExpiredCheckpointStartsFresh() {
	suite.NoError(suite.store.SavePendingOrder(&booking.PendingOrderState{
		OrderID:   "RDK-stale",
		CreatedAt: time.Now().Add(-48 * time.Hour),
		ExpiresAt: time.Now().Add(-24 * time.Hour),
	}))

	session, err := suite.checkout.Pay(context.Background(), suite.selections(), suite.media())
	suite.NoError(err)
	suite.NotEqual("RDK-stale", session.Reference)

	var count int64
	suite.db.Model(&models.Order{}).Count(&count)
	suite.Equal(int64(1), count)
}

func TestCheckoutIntegrationTestSuite(t *testing.T) {
	suite.Run(t, new(CheckoutIntegrationTestSuite))
}
