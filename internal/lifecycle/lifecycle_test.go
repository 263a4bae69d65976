package lifecycle

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/tenant-booking/internal/errs"
	"github.com/iliyamo/tenant-booking/internal/model"
)

func TestMachinesAreExhaustive(t *testing.T) {
	tests := []struct {
		name        string
		machine     *Machine
		transitions []Transition
	}{
		{"space", Space, SpaceTransitions},
		{"table", Table, TableTransitions},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			allowed := make(map[edge]model.Status)
			for _, tr := range tt.transitions {
				allowed[edge{tr.Src, tr.Action}] = tr.Dst
			}
			for _, from := range tt.machine.States() {
				for _, action := range model.Actions {
					dst, err := tt.machine.Next(from, action)
					want, ok := allowed[edge{from, action}]
					if ok {
						require.NoError(t, err, "%s --%s-->", from, action)
						assert.Equal(t, want, dst)
						assert.True(t, tt.machine.Can(from, action))
						continue
					}
					require.Error(t, err, "%s --%s--> should be rejected", from, action)
					assert.True(t, errors.Is(err, errs.ErrInvalidTransition))
					assert.False(t, tt.machine.Can(from, action))
				}
			}
		})
	}
}

func TestSpaceRejectIsNotAllowed(t *testing.T) {
	_, err := Space.Next(model.StatusPending, model.ActionReject)
	var te *TransitionError
	require.True(t, errors.As(err, &te))
	assert.Equal(t, "space", te.Machine)
	assert.Equal(t, model.StatusPending, te.From)
	assert.Equal(t, model.ActionReject, te.Action)
}

func TestTerminalStates(t *testing.T) {
	for _, s := range []model.Status{model.StatusCancelled, model.StatusCompleted, model.StatusExpired} {
		assert.True(t, Space.IsTerminal(s), s)
		assert.True(t, Table.IsTerminal(s), s)
	}
	assert.True(t, Table.IsTerminal(model.StatusRejected))
	assert.False(t, Space.IsTerminal(model.StatusPending))
	assert.False(t, Table.IsTerminal(model.StatusConfirmed))
	assert.Equal(t, model.StatusPending, Table.Initial())
}

func TestConfirmTwice(t *testing.T) {
	s, err := Space.Next(Space.Initial(), model.ActionConfirm)
	require.NoError(t, err)
	_, err = Space.Next(s, model.ActionConfirm)
	assert.ErrorIs(t, err, errs.ErrInvalidTransition)
}
