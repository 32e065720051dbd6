// Package mocks provides testify mocks for the controller package.
package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"clausestat.dev/pkg/clausestat/internal/controller"
	m "clausestat.dev/pkg/clausestat/internal/model"
)

// MockUI is a mock implementation of controller.UI.
type MockUI struct {
	mock.Mock
}

var _ controller.UI = (*MockUI)(nil)

// NewMockUI creates a MockUI whose expectations are asserted on cleanup.
func NewMockUI(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockUI {
	ui := &MockUI{}
	ui.Test(t)

	t.Cleanup(func() { ui.AssertExpectations(t) })

	return ui
}

// Start provides a mock function.
func (_m *MockUI) Start(ctx context.Context, options ...controller.StartOption) error {
	args := _m.Called(ctx, options)
	return args.Error(0)
}

// Close provides a mock function.
func (_m *MockUI) Close(ctx context.Context) {
	_m.Called(ctx)
}

// Wait provides a mock function.
func (_m *MockUI) Wait(ctx context.Context) {
	_m.Called(ctx)
}

// DisplaySubjects provides a mock function.
func (_m *MockUI) DisplaySubjects(ctx context.Context, subjects []m.Subject) {
	_m.Called(ctx, subjects)
}

// DisplaySubjectStarted provides a mock function.
func (_m *MockUI) DisplaySubjectStarted(ctx context.Context, subject m.Subject) {
	_m.Called(ctx, subject)
}

// DisplayFileSkipped provides a mock function.
func (_m *MockUI) DisplayFileSkipped(ctx context.Context, path m.Path, err error) {
	_m.Called(ctx, path, err)
}

// DisplaySubjectCompleted provides a mock function.
func (_m *MockUI) DisplaySubjectCompleted(ctx context.Context, stats m.SubjectStats) {
	_m.Called(ctx, stats)
}

// DisplayTotals provides a mock function.
func (_m *MockUI) DisplayTotals(ctx context.Context, totals []m.AggregateEntry) {
	_m.Called(ctx, totals)
}

// DisplayClauses provides a mock function.
func (_m *MockUI) DisplayClauses(ctx context.Context, path m.Path, clauses []m.Clause) {
	_m.Called(ctx, path, clauses)
}

// DisplayCategories provides a mock function.
func (_m *MockUI) DisplayCategories(ctx context.Context, names []string) {
	_m.Called(ctx, names)
}

// AllowProgress accepts any progress call, for tests that only assert on
// results.
func (_m *MockUI) AllowProgress() *MockUI {
	_m.On("Start", mock.Anything, mock.Anything).Return(nil).Maybe()
	_m.On("Close", mock.Anything).Return().Maybe()
	_m.On("Wait", mock.Anything).Return().Maybe()
	_m.On("DisplaySubjects", mock.Anything, mock.Anything).Return().Maybe()
	_m.On("DisplaySubjectStarted", mock.Anything, mock.Anything).Return().Maybe()
	_m.On("DisplayFileSkipped", mock.Anything, mock.Anything, mock.Anything).Return().Maybe()
	_m.On("DisplaySubjectCompleted", mock.Anything, mock.Anything).Return().Maybe()
	_m.On("DisplayTotals", mock.Anything, mock.Anything).Return().Maybe()

	return _m
}
