package services

import (
	"context"
	"sync"

	"github.com/Livo-Africa/radikal-nigeria-sub000/models"
)

// MockNotifyService is a mock implementation of NotifyService for testing
type MockNotifyService struct {
	TelegramMessages []string
	SMSMessages      map[string][]string // recipient -> messages
	mu               sync.Mutex
}

// NewMockNotifyService creates a new mock notification service
func NewMockNotifyService() *MockNotifyService {
	return &MockNotifyService{
		SMSMessages: make(map[string][]string),
	}
}

// SetAsMockForTesting sets this mock as the global notification service instance for testing
func (m *MockNotifyService) SetAsMockForTesting() {
	SetNotifyService(m)
}

// SendTelegram records the message.
func (m *MockNotifyService) SendTelegram(ctx context.Context, text string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.TelegramMessages = append(m.TelegramMessages, text)
	return nil
}

// SendSMS records the message per recipient.
func (m *MockNotifyService) SendSMS(ctx context.Context, to, message string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SMSMessages[to] = append(m.SMSMessages[to], message)
	return nil
}

// NotifyOrderConfirmed records both notifications.
func (m *MockNotifyService) NotifyOrderConfirmed(ctx context.Context, order *models.Order) {
	m.SendTelegram(ctx, "confirmed: "+order.OrderID)
	m.SendSMS(ctx, order.WhatsappNumber, "confirmed: "+order.OrderID)
}
