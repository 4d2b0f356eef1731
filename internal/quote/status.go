package quote

import (
	"errors"
	"fmt"

	"github.com/felixgeelhaar/statekit"
)

const (
	stateDraft    = "draft"
	stateSent     = "sent"
	stateApproved = "approved"
	stateRejected = "rejected"
	stateInvoiced = "invoiced"
)

// Events accepted by the status machine.
const (
	EventSend    = "send"
	EventApprove = "approve"
	EventReject  = "reject"
	EventRevise  = "revise"
	EventInvoice = "invoice"
)

// ErrInvalidTransition is returned when an event does not apply to the
// quote's current status.
var ErrInvalidTransition = errors.New("invalid quote transition")

// StatusContext carries the quote the machine belongs to.
type StatusContext struct {
	QuoteID string
}

// StatusMachine wraps a statekit interpreter over the quote approval flow.
type StatusMachine struct {
	interpreter *statekit.Interpreter[StatusContext]
}

// NewStatusMachine starts a machine in the given status.
func NewStatusMachine(initial Status, quoteID string) (*StatusMachine, error) {
	if !initial.Valid() {
		return nil, fmt.Errorf("unknown quote status %q", initial)
	}

	builder := statekit.NewMachine[StatusContext]("quote-status").
		WithInitial(statekit.StateID(string(initial))).
		WithContext(StatusContext{QuoteID: quoteID})

	builder.State(stateDraft).
		On(EventSend).Target(stateSent).
		Done()

	builder.State(stateSent).
		On(EventApprove).Target(stateApproved).
		On(EventReject).Target(stateRejected).
		On(EventRevise).Target(stateDraft).
		Done()

	builder.State(stateRejected).
		On(EventRevise).Target(stateDraft).
		Done()

	builder.State(stateApproved).
		On(EventInvoice).Target(stateInvoiced).
		Done()

	builder.State(stateInvoiced).
		Done()

	machine, err := builder.Build()
	if err != nil {
		return nil, fmt.Errorf("build quote status machine: %w", err)
	}

	interpreter := statekit.NewInterpreter(machine)
	interpreter.Start()

	return &StatusMachine{interpreter: interpreter}, nil
}

// Fire sends event to the machine. Events that leave the status unchanged
// are rejected.
func (m *StatusMachine) Fire(event string) error {
	before := m.Current()
	m.interpreter.Send(statekit.Event{Type: statekit.EventType(event)})
	if m.Current() != before {
		return nil
	}
	return fmt.Errorf("%w: %q is not allowed while the quote is %s", ErrInvalidTransition, event, before)
}

// Current returns the machine's status.
func (m *StatusMachine) Current() Status {
	return Status(m.interpreter.State().Value)
}

// NextStatus computes the status after applying event to a quote in status
// from, without touching any stored quote.
func NextStatus(from Status, quoteID, event string) (Status, error) {
	sm, err := NewStatusMachine(from, quoteID)
	if err != nil {
		return "", err
	}
	if err := sm.Fire(event); err != nil {
		return "", err
	}
	return sm.Current(), nil
}
