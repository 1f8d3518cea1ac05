package services

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/Livo-Africa/radikal-nigeria-sub000/config"
	"github.com/Livo-Africa/radikal-nigeria-sub000/models"
	"github.com/Livo-Africa/radikal-nigeria-sub000/utils"
)

// NotifyInterface defines the best-effort notification operations. Every
// call may fail without consequence for the booking; failures are logged
// and swallowed at the call sites.
type NotifyInterface interface {
	SendTelegram(ctx context.Context, text string) error
	SendSMS(ctx context.Context, to, message string) error
	NotifyOrderConfirmed(ctx context.Context, order *models.Order)
}

// NotifyService fans out to the studio's Telegram channel and the SMS
// gateway, both through silent bounded retries.
type NotifyService struct {
	botToken     string
	chatID       string
	smsURL       string
	smsKey       string
	smsSender    string
	supportPhone string
	client       *utils.RetryClient
}

var notifyServiceInstance NotifyInterface

// InitNotifyService initializes the notification service from configuration
func InitNotifyService(cfg *config.Config) NotifyInterface {
	notifyServiceInstance = &NotifyService{
		botToken:     cfg.TelegramBotToken,
		chatID:       cfg.TelegramChatID,
		smsURL:       cfg.SMSGatewayURL,
		smsKey:       cfg.SMSGatewayKey,
		smsSender:    cfg.SMSSenderID,
		supportPhone: cfg.SupportPhone,
		client:       utils.NewRetryClient(utils.RetryOptions{MaxRetries: 2, Silent: true}),
	}
	return notifyServiceInstance
}

// GetNotifyService returns the initialized notification service instance
func GetNotifyService() NotifyInterface {
	return notifyServiceInstance
}

// SetNotifyService sets the notification service instance (primarily for testing)
func SetNotifyService(service NotifyInterface) {
	notifyServiceInstance = service
}

// SendTelegram posts a message to the studio's operations channel.
func (s *NotifyService) SendTelegram(ctx context.Context, text string) error {
	if s.botToken == "" || s.chatID == "" {
		return fmt.Errorf("telegram is not configured")
	}
	endpoint := fmt.Sprintf("https://api.telegram.org/bot%s/sendMessage", s.botToken)
	body := map[string]string{
		"chat_id": s.chatID,
		"text":    text,
	}
	return s.client.DoJSON(ctx, http.MethodPost, endpoint, body, nil)
}

// SendSMS delivers a message through the SMS gateway.
func (s *NotifyService) SendSMS(ctx context.Context, to, message string) error {
	if s.smsURL == "" {
		return fmt.Errorf("sms gateway is not configured")
	}
	body := map[string]string{
		"key":     s.smsKey,
		"sender":  s.smsSender,
		"to":      to,
		"message": message,
	}
	return s.client.DoJSON(ctx, http.MethodPost, s.smsURL, body, nil)
}

// NotifyOrderConfirmed fires the post-payment notifications: a Telegram
// alert for the studio and an SMS confirmation for the customer. Both are
// best-effort.
func (s *NotifyService) NotifyOrderConfirmed(ctx context.Context, order *models.Order) {
	text := fmt.Sprintf(
		"New confirmed booking %s\nPackage: %s (%s)\nTotal: %.2f %s\nWhatsApp: %s",
		order.OrderID, order.PackageName, order.Category,
		order.FinalTotal, order.Currency, order.WhatsappNumber,
	)
	if err := s.SendTelegram(ctx, text); err != nil {
		log.Printf("notify: telegram alert for %s failed: %v", order.OrderID, err)
	}

	sms := fmt.Sprintf(
		"Radikal: your booking %s is confirmed! We will reach out on WhatsApp. Questions? Call %s.",
		order.OrderID, s.supportPhone,
	)
	if err := s.SendSMS(ctx, order.WhatsappNumber, sms); err != nil {
		log.Printf("notify: sms confirmation for %s failed: %v", order.OrderID, err)
	}
}
