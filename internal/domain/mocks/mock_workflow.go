// Package mocks provides testify mocks for the domain package.
package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"clausestat.dev/pkg/clausestat/internal/domain"
	m "clausestat.dev/pkg/clausestat/internal/model"
)

// MockWorkflow is a mock implementation of domain.Workflow.
type MockWorkflow struct {
	mock.Mock
}

var _ domain.Workflow = (*MockWorkflow)(nil)

// NewMockWorkflow creates a MockWorkflow whose expectations are asserted on cleanup.
func NewMockWorkflow(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockWorkflow {
	w := &MockWorkflow{}
	w.Test(t)

	t.Cleanup(func() { w.AssertExpectations(t) })

	return w
}

// Run provides a mock function.
func (_m *MockWorkflow) Run(ctx context.Context, args domain.RunArgs) (m.RunSummary, error) {
	ret := _m.Called(ctx, args)

	var summary m.RunSummary
	if v, ok := ret.Get(0).(m.RunSummary); ok {
		summary = v
	}

	return summary, ret.Error(1)
}

// Classify provides a mock function.
func (_m *MockWorkflow) Classify(ctx context.Context, args domain.ClassifyArgs) error {
	ret := _m.Called(ctx, args)
	return ret.Error(0)
}

// Categories provides a mock function.
func (_m *MockWorkflow) Categories(ctx context.Context) error {
	ret := _m.Called(ctx)
	return ret.Error(0)
}

// View provides a mock function.
func (_m *MockWorkflow) View(ctx context.Context, args domain.ViewArgs) error {
	ret := _m.Called(ctx, args)
	return ret.Error(0)
}
