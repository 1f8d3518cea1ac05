package controllers

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Livo-Africa/radikal-nigeria-sub000/services"
	"github.com/Livo-Africa/radikal-nigeria-sub000/utils"
)

// TelegramNotifyRequest represents the request body for a studio alert
type TelegramNotifyRequest struct {
	Message string `json:"message" binding:"required"`
}

// TelegramNotify handles POST /api/telegram/notify - best-effort studio
// alert. Delivery failures are logged, never surfaced: the endpoint
// answers success for any accepted input.
func TelegramNotify(c *gin.Context) {
	var req TelegramNotifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "VALIDATION_ERROR",
				"message": "message is required",
			},
		})
		return
	}

	if err := services.GetNotifyService().SendTelegram(c.Request.Context(), req.Message); err != nil {
		log.Printf("notify: telegram delivery failed: %v", err)
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
	})
}

// SMSConfirmationRequest represents the request body for a customer SMS
type SMSConfirmationRequest struct {
	CountryCode string `json:"countryCode"`
	Phone       string `json:"phone" binding:"required"`
	Message     string `json:"message" binding:"required"`
}

// SendSMSConfirmation handles POST /api/sms/send-confirmation -
// best-effort customer SMS. Invalid numbers are rejected; delivery
// failures are not.
func SendSMSConfirmation(c *gin.Context) {
	var req SMSConfirmationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "VALIDATION_ERROR",
				"message": "phone and message are required",
			},
		})
		return
	}

	to := req.Phone
	if req.CountryCode != "" {
		validation := utils.ValidatePhone(req.CountryCode, req.Phone)
		if !validation.IsValid {
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "INVALID_PHONE",
					"message": validation.Error,
				},
			})
			return
		}
		to = validation.FullNumber
	}

	if err := services.GetNotifyService().SendSMS(c.Request.Context(), to, req.Message); err != nil {
		log.Printf("notify: sms delivery failed: %v", err)
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
	})
}
