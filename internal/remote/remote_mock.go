package remote

import (
	"context"

	"github.com/huangsam/contacts/internal/contract"
	"github.com/huangsam/contacts/schema"
	"github.com/stretchr/testify/mock"
)

// MockContactService is a mock implementation of ContactService for testing.
type MockContactService struct {
	mock.Mock
}

var _ contract.ContactService = &MockContactService{} // Compile-time check

// List implements the ContactService interface.
func (m *MockContactService) List(ctx context.Context) ([]schema.Contact, error) {
	args := m.Called(ctx)
	contacts, _ := args.Get(0).([]schema.Contact)
	return contacts, args.Error(1)
}

// Get implements the ContactService interface.
func (m *MockContactService) Get(ctx context.Context, id string) (schema.Contact, error) {
	args := m.Called(ctx, id)
	contact, _ := args.Get(0).(schema.Contact)
	return contact, args.Error(1)
}

// Create implements the ContactService interface.
func (m *MockContactService) Create(ctx context.Context, draft schema.ContactDraft) (schema.Contact, error) {
	args := m.Called(ctx, draft)
	contact, _ := args.Get(0).(schema.Contact)
	return contact, args.Error(1)
}

// Update implements the ContactService interface.
func (m *MockContactService) Update(ctx context.Context, id string, draft schema.ContactDraft) (schema.Contact, error) {
	args := m.Called(ctx, id, draft)
	contact, _ := args.Get(0).(schema.Contact)
	return contact, args.Error(1)
}

// Delete implements the ContactService interface.
func (m *MockContactService) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}
