package mocks

import (
	"context"

	"github.com/killallgit/promptvault/pkg/catalog"
	"github.com/stretchr/testify/mock"
)

// MockCatalog is a testify mock of catalog.Client
type MockCatalog struct {
	mock.Mock
}

var _ catalog.Client = (*MockCatalog)(nil)

func (m *MockCatalog) CreatePrompt(ctx context.Context, in catalog.CreatePromptInput) (*catalog.PromptRecord, error) {
	args := m.Called(ctx, in)
	record, _ := args.Get(0).(*catalog.PromptRecord)
	return record, args.Error(1)
}

func (m *MockCatalog) CreatePromptVersion(ctx context.Context, in catalog.CreateVersionInput) (*catalog.PromptRecord, error) {
	args := m.Called(ctx, in)
	record, _ := args.Get(0).(*catalog.PromptRecord)
	return record, args.Error(1)
}

func (m *MockCatalog) GetPrompt(ctx context.Context, name string, version int) (*catalog.Variant, error) {
	args := m.Called(ctx, name, version)
	v, _ := args.Get(0).(*catalog.Variant)
	return v, args.Error(1)
}

func (m *MockCatalog) GetPromptByID(ctx context.Context, id string, version int) (*catalog.Variant, error) {
	args := m.Called(ctx, id, version)
	v, _ := args.Get(0).(*catalog.Variant)
	return v, args.Error(1)
}

func (m *MockCatalog) DeletePrompt(ctx context.Context, id string, version int) (*catalog.DeleteResult, error) {
	args := m.Called(ctx, id, version)
	result, _ := args.Get(0).(*catalog.DeleteResult)
	return result, args.Error(1)
}

func (m *MockCatalog) ListPrompts(ctx context.Context, in catalog.ListInput) ([]catalog.PromptSummary, error) {
	args := m.Called(ctx, in)
	summaries, _ := args.Get(0).([]catalog.PromptSummary)
	return summaries, args.Error(1)
}
