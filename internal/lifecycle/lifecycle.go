// Package lifecycle holds the status transition tables for space and table
// reservations.  A transition not listed in a table is rejected.
package lifecycle

import (
	"fmt"

	"github.com/iliyamo/tenant-booking/internal/errs"
	"github.com/iliyamo/tenant-booking/internal/model"
)

// Transition moves a reservation from Src to Dst when Action fires.
type Transition struct {
	Action model.Action
	Src    model.Status
	Dst    model.Status
}

// SpaceTransitions is the space reservation lifecycle.
var SpaceTransitions = []Transition{
	{Action: model.ActionConfirm, Src: model.StatusPending, Dst: model.StatusConfirmed},
	{Action: model.ActionCancel, Src: model.StatusPending, Dst: model.StatusCancelled},
	{Action: model.ActionCancel, Src: model.StatusConfirmed, Dst: model.StatusCancelled},
	{Action: model.ActionComplete, Src: model.StatusConfirmed, Dst: model.StatusCompleted},
	{Action: model.ActionExpire, Src: model.StatusPending, Dst: model.StatusExpired},
}

// TableTransitions is the table reservation lifecycle.  It extends the space
// lifecycle with rejection of a pending request.
var TableTransitions = []Transition{
	{Action: model.ActionConfirm, Src: model.StatusPending, Dst: model.StatusConfirmed},
	{Action: model.ActionReject, Src: model.StatusPending, Dst: model.StatusRejected},
	{Action: model.ActionCancel, Src: model.StatusPending, Dst: model.StatusCancelled},
	{Action: model.ActionCancel, Src: model.StatusConfirmed, Dst: model.StatusCancelled},
	{Action: model.ActionComplete, Src: model.StatusConfirmed, Dst: model.StatusCompleted},
	{Action: model.ActionExpire, Src: model.StatusPending, Dst: model.StatusExpired},
}

type edge struct {
	src    model.Status
	action model.Action
}

// Machine validates transitions against a fixed table.
type Machine struct {
	name     string
	states   []model.Status
	edges    map[edge]model.Status
	outgoing map[model.Status]int
}

// New indexes transitions.  states lists every status the machine knows,
// including terminal ones.
func New(name string, states []model.Status, transitions []Transition) *Machine {
	m := &Machine{
		name:     name,
		states:   states,
		edges:    make(map[edge]model.Status, len(transitions)),
		outgoing: make(map[model.Status]int),
	}
	for _, t := range transitions {
		m.edges[edge{t.Src, t.Action}] = t.Dst
		m.outgoing[t.Src]++
	}
	return m
}

var (
	// Space governs space reservations.
	Space = New("space",
		[]model.Status{model.StatusPending, model.StatusConfirmed, model.StatusCancelled, model.StatusCompleted, model.StatusExpired},
		SpaceTransitions)
	// Table governs table reservations.
	Table = New("table",
		[]model.Status{model.StatusPending, model.StatusConfirmed, model.StatusRejected, model.StatusCancelled, model.StatusCompleted, model.StatusExpired},
		TableTransitions)
)

// Name identifies the machine in errors and metrics.
func (m *Machine) Name() string { return m.name }

// Initial is the status every new reservation starts in.
func (m *Machine) Initial() model.Status { return model.StatusPending }

// States lists the statuses this machine knows.
func (m *Machine) States() []model.Status { return m.states }

// Next returns the destination of action from the current status, or a
// *TransitionError when the pair is not in the table.
func (m *Machine) Next(from model.Status, action model.Action) (model.Status, error) {
	dst, ok := m.edges[edge{from, action}]
	if !ok {
		return "", &TransitionError{Machine: m.name, From: from, Action: action}
	}
	return dst, nil
}

// Can reports whether action is permitted from the current status.
func (m *Machine) Can(from model.Status, action model.Action) bool {
	_, ok := m.edges[edge{from, action}]
	return ok
}

// IsTerminal reports whether no action leaves status s.
func (m *Machine) IsTerminal(s model.Status) bool { return m.outgoing[s] == 0 }

// TransitionError is returned for a (status, action) pair outside the table.
type TransitionError struct {
	Machine string
	From    model.Status
	Action  model.Action
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("%s reservation: cannot %s from %s", e.Machine, e.Action, e.From)
}

func (e *TransitionError) Unwrap() error { return errs.ErrInvalidTransition }
