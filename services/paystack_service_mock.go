package services

import (
	"context"
	"fmt"
	"sync"
)

// MockPaystackService is a mock implementation of PaystackService for testing
type MockPaystackService struct {
	transactions map[string]*PaystackVerification
	mu           sync.RWMutex
}

// NewMockPaystackService creates a new mock Paystack service
func NewMockPaystackService() *MockPaystackService {
	return &MockPaystackService{
		transactions: make(map[string]*PaystackVerification),
	}
}

// SetAsMockForTesting sets this mock as the global Paystack service instance for testing
func (m *MockPaystackService) SetAsMockForTesting() {
	SetPaystackService(m)
}

// AddTransaction registers a verification result for a reference.
func (m *MockPaystackService) AddTransaction(reference string, v *PaystackVerification) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v.Reference = reference
	m.transactions[reference] = v
}

// VerifyTransaction returns the registered verification or an error for
// unknown references.
func (m *MockPaystackService) VerifyTransaction(ctx context.Context, reference string) (*PaystackVerification, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.transactions[reference]
	if !ok {
		return nil, fmt.Errorf("transaction not found: %s", reference)
	}
	return v, nil
}
