package controllers

import (
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/Livo-Africa/radikal-nigeria-sub000/booking"
	"github.com/Livo-Africa/radikal-nigeria-sub000/catalog"
	"github.com/Livo-Africa/radikal-nigeria-sub000/config"
	"github.com/Livo-Africa/radikal-nigeria-sub000/models"
	"github.com/Livo-Africa/radikal-nigeria-sub000/services"
)

// CreateOrderRequest mirrors the order draft the client submits.
type CreateOrderRequest struct {
	OrderID        string                   `json:"orderId" binding:"required"`
	Status         string                   `json:"status"`
	Category       string                   `json:"category" binding:"required"`
	PackageID      string                   `json:"packageId" binding:"required"`
	PackageName    string                   `json:"packageName"`
	PackagePrice   float64                  `json:"packagePrice"`
	GroupSize      *int                     `json:"groupSize"`
	Outfits        []models.OutfitSelection `json:"outfits"`
	Style          booking.Style            `json:"style"`
	WhatsappNumber string                   `json:"whatsappNumber" binding:"required"`
	AddOnIDs       []string                 `json:"addOns"`
	FinalTotal     float64                  `json:"finalTotal"`
	Currency       string                   `json:"currency"`
}

// CreateOrder handles POST /api/orders - records a pending order draft.
// The call is idempotent on orderId: a client retrying after a lost
// response gets success instead of a duplicate-key error.
func CreateOrder(c *gin.Context) {
	var req CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "VALIDATION_ERROR",
				"message": "Invalid request data",
				"details": err.Error(),
			},
		})
		return
	}

	cat, ok := catalog.CategoryByID(req.Category)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "UNKNOWN_CATEGORY",
				"message": "Unknown shoot category",
			},
		})
		return
	}
	pkg, ok := catalog.PackageByID(req.PackageID)
	if !ok || pkg.CategoryID != cat.ID {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "UNKNOWN_PACKAGE",
				"message": "Unknown package for this category",
			},
		})
		return
	}

	// Never trust the client's arithmetic: recompute the total and
	// reject drifted payloads.
	groupSize := 0
	if req.GroupSize != nil {
		groupSize = *req.GroupSize
	}
	expectedTotal := booking.FinalTotal(cat, pkg, groupSize, req.AddOnIDs)
	if math.Abs(expectedTotal-req.FinalTotal) > 0.01 {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "PRICE_MISMATCH",
				"message": "Submitted total does not match the catalog price",
			},
		})
		return
	}

	db := config.GetDB()

	// Idempotency: a retried creation of the same order succeeds.
	var existing models.Order
	if err := db.Where("order_id = ?", req.OrderID).First(&existing).Error; err == nil {
		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"data":    existing,
		})
		return
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to check existing order",
			},
		})
		return
	}

	currency := req.Currency
	if currency == "" {
		currency = booking.CurrencyForPhone(req.WhatsappNumber)
	}

	order := models.Order{
		OrderID:        req.OrderID,
		Status:         models.OrderStatusPending,
		Category:       cat.ID,
		PackageID:      pkg.ID,
		PackageName:    pkg.Name,
		PackagePrice:   pkg.Price,
		GroupSize:      req.GroupSize,
		WhatsappNumber: req.WhatsappNumber,
		FinalTotal:     expectedTotal,
		Currency:       currency,
	}
	if err := order.SetOutfitSelections(req.Outfits); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "VALIDATION_ERROR",
				"message": "Invalid outfit selection",
			},
		})
		return
	}
	if styleJSON, err := json.Marshal(req.Style); err == nil {
		order.Style = string(styleJSON)
	}
	if addOnsJSON, err := json.Marshal(req.AddOnIDs); err == nil {
		order.AddOns = string(addOnsJSON)
	}

	if err := db.Create(&order).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to create order",
			},
		})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    order,
	})
}

// ConfirmOrderRequest represents the request body for confirming payment
type ConfirmOrderRequest struct {
	OrderID          string `json:"orderId" binding:"required"`
	PaymentReference string `json:"paymentReference" binding:"required"`
}

// ConfirmOrder handles POST /api/orders/confirm - verifies the payment
// with Paystack and flips the order to confirmed. Idempotent: confirming
// an already-confirmed order succeeds.
func ConfirmOrder(c *gin.Context) {
	var req ConfirmOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "VALIDATION_ERROR",
				"message": "Invalid request data",
				"details": err.Error(),
			},
		})
		return
	}

	db := config.GetDB()
	var order models.Order
	if err := db.Where("order_id = ?", req.OrderID).First(&order).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "ORDER_NOT_FOUND",
				"message": "Order not found",
			},
		})
		return
	}

	if order.Status == models.OrderStatusConfirmed {
		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"data":    order,
		})
		return
	}

	verification, err := services.GetPaystackService().VerifyTransaction(c.Request.Context(), req.PaymentReference)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "PAYMENT_VERIFICATION_FAILED",
				"message": "Could not verify payment with provider",
			},
		})
		return
	}
	if !verification.Succeeded() {
		c.JSON(http.StatusPaymentRequired, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "PAYMENT_NOT_COMPLETED",
				"message": "Payment was not completed",
			},
		})
		return
	}

	expectedAmount := booking.PaymentAmountSubunits(order.FinalTotal)
	if verification.AmountSubunits < expectedAmount {
		c.JSON(http.StatusPaymentRequired, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "PAYMENT_AMOUNT_MISMATCH",
				"message": "Captured amount is below the order total",
			},
		})
		return
	}

	now := time.Now()
	order.Status = models.OrderStatusConfirmed
	order.PaymentRef = &req.PaymentReference
	order.ConfirmedAt = &now
	if err := db.Save(&order).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to confirm order",
			},
		})
		return
	}

	// Best-effort notifications; a failure here never fails the confirm.
	if notify := services.GetNotifyService(); notify != nil {
		notify.NotifyOrderConfirmed(c.Request.Context(), &order)
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    order,
	})
}

// ListOrders handles GET /api/v1/admin/orders - ops view of recent orders
// with their missing assets surfaced for manual follow-up.
func ListOrders(c *gin.Context) {
	db := config.GetDB()

	query := db.Order("created_at DESC").Limit(200)
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	var orders []models.Order
	if err := query.Find(&orders).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to list orders",
			},
		})
		return
	}

	type orderSummary struct {
		models.Order
		MissingAssets []string `json:"missing_assets"`
	}
	summaries := make([]orderSummary, 0, len(orders))
	for _, order := range orders {
		summaries = append(summaries, orderSummary{
			Order:         order,
			MissingAssets: order.MissingFileKeys(),
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    summaries,
	})
}
