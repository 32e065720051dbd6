package cmd

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestCategoriesCmd(t *testing.T) {
	mockWorkflow := useMockWorkflow(t)
	mockWorkflow.On("Categories", mock.Anything).Return(nil).Once()

	cmd := newTestRootCmd(&bytes.Buffer{}, newCategoriesCmd())
	cmd.SetArgs([]string{"categories"})

	require.NoError(t, cmd.Execute())
}

func TestCategoriesCmd_Errors(t *testing.T) {
	t.Run("rejects arguments", func(t *testing.T) {
		useMockWorkflow(t)

		cmd := newTestRootCmd(&bytes.Buffer{}, newCategoriesCmd())
		cmd.SetArgs([]string{"categories", "extra"})

		require.Error(t, cmd.Execute())
	})

	t.Run("propagates workflow error", func(t *testing.T) {
		mockWorkflow := useMockWorkflow(t)

		uiErr := errors.New("failed to start UI")
		mockWorkflow.On("Categories", mock.Anything).Return(uiErr).Once()

		cmd := newTestRootCmd(&bytes.Buffer{}, newCategoriesCmd())
		cmd.SetArgs([]string{"categories"})

		require.ErrorIs(t, cmd.Execute(), uiErr)
	})
}
