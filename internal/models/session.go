// Package models defines session state structures for SupportFlow conversations.
package models

// Appointment accumulates the booking sub-flow fields. It is cleared as soon
// as a confirmation payload has been emitted.
type Appointment struct {
	DateTime string `json:"datetime,omitempty"`
	Name     string `json:"name,omitempty"`
	Email    string `json:"email,omitempty"`
}

// Empty reports whether no booking field has been collected yet.
func (a Appointment) Empty() bool {
	return a.DateTime == "" && a.Name == "" && a.Email == ""
}

// Session is the full mutable context of one ongoing conversation. It is
// owned by exactly one transport binding and never shared across callers.
type Session struct {
	Language     Language    `json:"language"`
	CurrentState string      `json:"current_state"`
	SelectedItem string      `json:"selected_item,omitempty"`
	BookingItem  string      `json:"booking_item,omitempty"`
	Appointment  Appointment `json:"appointment"`
}

// SessionWire is the JSON form of a Session round-tripped through the
// stateless transport. The caller echoes it back verbatim on the next turn.
// Options carries the current state's pre-localized options so a thin client
// can render buttons without any engine knowledge.
type SessionWire struct {
	Step         string      `json:"step"`
	Language     Language    `json:"language"`
	SelectedItem string      `json:"selected_item,omitempty"`
	BookingItem  string      `json:"booking_item,omitempty"`
	Appointment  Appointment `json:"appointment"`
	Options      []Option    `json:"options,omitempty"`
}

// Wire converts a Session to its transport form, attaching the options of
// the payload that accompanied it.
func (s *Session) Wire(opts []Option) SessionWire {
	return SessionWire{
		Step:         s.CurrentState,
		Language:     s.Language,
		SelectedItem: s.SelectedItem,
		BookingItem:  s.BookingItem,
		Appointment:  s.Appointment,
		Options:      opts,
	}
}

// Session reconstructs an engine Session from the wire form. The zero-value
// wire (no step) yields a Session the engine treats as brand new.
func (w SessionWire) Session() Session {
	return Session{
		Language:     w.Language,
		CurrentState: w.Step,
		SelectedItem: w.SelectedItem,
		BookingItem:  w.BookingItem,
		Appointment:  w.Appointment,
	}
}

// ChatRequest is the body of the stateless chat endpoint.
type ChatRequest struct {
	Message  string       `json:"message"`
	Language Language     `json:"language,omitempty"`
	State    *SessionWire `json:"state,omitempty"`
}

// ChatResponse is the reply of the stateless chat endpoint.
type ChatResponse struct {
	Response string      `json:"response"`
	State    SessionWire `json:"state"`
}

// ConversationRequest starts a server-held conversation.
type ConversationRequest struct {
	Language Language `json:"language,omitempty"`
}

// ConversationResponse describes one turn of a server-held conversation.
type ConversationResponse struct {
	ID       string      `json:"id"`
	Response string      `json:"response"`
	State    SessionWire `json:"state"`
}

// MessageRequest is one user turn against a server-held conversation.
type MessageRequest struct {
	Message string `json:"message"`
}
