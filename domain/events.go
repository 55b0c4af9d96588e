package domain

import "time"

// SessionEventType defines what happened to the session
type SessionEventType string

const (
	// Authentication events
	SignedInEvent  SessionEventType = "SIGNED_IN"
	RestoredEvent  SessionEventType = "RESTORED"
	SignedOutEvent SessionEventType = "SIGNED_OUT"
	DemotedEvent   SessionEventType = "DEMOTED"

	// Account snapshot events
	RefreshedEvent SessionEventType = "REFRESHED"
	VerifiedEvent  SessionEventType = "VERIFIED"
	ActivatedEvent SessionEventType = "ACTIVATED"
	SuspendedEvent SessionEventType = "SUSPENDED"

	// Payment events
	PaymentOutcomeEvent SessionEventType = "PAYMENT_OUTCOME"
)

// SessionEvent is delivered to subscribers after the snapshot and token store were updated
type SessionEvent struct {
	Type      SessionEventType `json:"type"`
	From      SessionState     `json:"from"`
	To        SessionState     `json:"to"`
	AccountID string           `json:"account_id,omitempty"`
	Timestamp time.Time        `json:"timestamp"`
	Metadata  map[string]any   `json:"metadata,omitempty"`
	ErrorMsg  string           `json:"error_msg,omitempty"`
}

// NewSessionEvent creates an event for a transition between two states
func NewSessionEvent(eventType SessionEventType, from, to SessionState) *SessionEvent {
	return &SessionEvent{
		Type:      eventType,
		From:      from,
		To:        to,
		Timestamp: time.Now().UTC(),
		Metadata:  make(map[string]any),
	}
}

// WithAccount sets the account the event refers to
func (e *SessionEvent) WithAccount(a *Account) *SessionEvent {
	if a != nil {
		e.AccountID = a.ID
	}
	return e
}

// WithError records the failure that caused the event
func (e *SessionEvent) WithError(err error) *SessionEvent {
	if err != nil {
		e.ErrorMsg = err.Error()
	}
	return e
}

// WithMetadata adds metadata to the event
func (e *SessionEvent) WithMetadata(key string, value any) *SessionEvent {
	e.Metadata[key] = value
	return e
}

// Changed reports whether the event moved the session to a different state
func (e *SessionEvent) Changed() bool {
	return e.From != e.To
}
