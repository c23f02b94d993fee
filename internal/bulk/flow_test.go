package bulk

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/terra-clan/backoffice/pkg/client"
)

func suspendAction(fail map[string]bool, calls *atomic.Int32) Action {
	return Action{
		Name:    "suspend",
		Confirm: "Are you sure you want to suspend %d selected user(s)?",
		Success: "Successfully suspended %d users",
		Failure: "Failed to suspend some users",
		Run: func(ctx context.Context, id string) error {
			calls.Add(1)
			if fail[id] {
				return errors.New("boom")
			}
			return nil
		},
	}
}

func TestFlow_EmptySelection(t *testing.T) {
	f := NewFlow(nil)
	var calls atomic.Int32

	err := f.Begin(suspendAction(nil, &calls), nil)
	assert.ErrorIs(t, err, ErrEmptySelection)
	assert.Equal(t, PhaseIdle, f.Phase())
}

func TestFlow_AllSucceed(t *testing.T) {
	var cleared atomic.Int32
	f := NewFlow(func() { cleared.Add(1) })
	var calls atomic.Int32

	ids := []string{"a", "b", "c", "d", "e"}
	require.NoError(t, f.Begin(suspendAction(nil, &calls), ids))
	assert.Equal(t, PhaseConfirming, f.Phase())
	assert.Equal(t, "Are you sure you want to suspend 5 selected user(s)?", f.Describe())

	out, err := f.Execute(context.Background())
	require.NoError(t, err)

	assert.True(t, out.OK())
	assert.Equal(t, 5, out.Total)
	assert.Equal(t, 5, out.Succeeded)
	assert.Equal(t, "Successfully suspended 5 users", out.Message)
	assert.Equal(t, int32(5), calls.Load())
	assert.Equal(t, int32(1), cleared.Load())
	assert.Equal(t, PhaseIdle, f.Phase())
}

func TestFlow_PartialFailureWaitsForAll(t *testing.T) {
	var cleared atomic.Int32
	f := NewFlow(func() { cleared.Add(1) })
	var calls atomic.Int32

	require.NoError(t, f.Begin(suspendAction(map[string]bool{"b": true}, &calls), []string{"a", "b", "c"}))
	out, err := f.Execute(context.Background())
	require.NoError(t, err)

	assert.False(t, out.OK())
	assert.Equal(t, 2, out.Succeeded)
	assert.Equal(t, 1, out.Failed)
	assert.Equal(t, "Failed to suspend some users", out.Message)
	assert.Equal(t, int32(3), calls.Load())
	assert.Equal(t, int32(1), cleared.Load())
	assert.Equal(t, "b", out.Items[1].ID)
	assert.NotEmpty(t, out.Items[1].Error)
}

func TestRun_FailureWithoutMessage(t *testing.T) {
	action := Action{
		Name:    "revoke",
		Success: "Successfully revoked %d licenses",
		Failure: "Failed to revoke some licenses",
		Run: func(ctx context.Context, id string) error {
			if id == "l2" {
				return &client.Error{}
			}
			return nil
		},
	}

	out := Run(context.Background(), action, []string{"l1", "l2"})
	assert.False(t, out.OK())
	assert.Equal(t, 1, out.Succeeded)
	assert.Equal(t, 1, out.Failed)
	assert.Equal(t, "Failed to revoke some licenses", out.Message)
	assert.False(t, out.Items[0].Failed)
	assert.True(t, out.Items[1].Failed)
	assert.Equal(t, client.FallbackMessage, out.Items[1].Error)
}

func TestFlow_CancelKeepsSelection(t *testing.T) {
	var cleared atomic.Int32
	f := NewFlow(func() { cleared.Add(1) })
	var calls atomic.Int32

	require.NoError(t, f.Begin(suspendAction(nil, &calls), []string{"a"}))
	f.Cancel()

	assert.Equal(t, PhaseIdle, f.Phase())
	assert.Equal(t, int32(0), calls.Load())
	assert.Equal(t, int32(0), cleared.Load())

	_, err := f.Execute(context.Background())
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestFlow_DedupesSelection(t *testing.T) {
	f := NewFlow(nil)
	var calls atomic.Int32

	require.NoError(t, f.Begin(suspendAction(nil, &calls), []string{"a", "a", "", "b"}))
	assert.Equal(t, []string{"a", "b"}, f.Selection())
}
