package chat

import "strings"

// ParticipantID identifies a chat entity (individual or group) on the
// messaging network. IDs are stable for the lifetime of a conversation and
// are the sole key into every state table.
type ParticipantID string

// String returns the string representation of the participant ID
func (p ParticipantID) String() string {
	return string(p)
}

// Digits returns only the numeric characters of the ID, which is how the
// employee directory stores phone numbers (e.g. "628512340001@c.us" ->
// "628512340001").
func (p ParticipantID) Digits() string {
	var b strings.Builder
	for _, r := range p {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Class partitions inbound messages for routing precedence
type Class int

const (
	// ClassGroup is a message posted in a group chat
	ClassGroup Class = iota
	// ClassQuotedDirect is a direct message quoting an earlier message
	ClassQuotedDirect
	// ClassPlain is a direct message with no quote
	ClassPlain
)

// Message is one inbound chat event as delivered by the session gateway
type Message struct {
	From       ParticipantID
	Body       string
	IsGroup    bool
	QuotedID   string // identity of the quoted message, empty if none
	MediaRef   string // gateway reference to an attached media payload, empty if none
	NotifyName string // display name the sender advertises, best effort
}

// HasQuoted reports whether the message is a quote reply
func (m Message) HasQuoted() bool {
	return m.QuotedID != ""
}

// HasMedia reports whether the message carries a media payload
func (m Message) HasMedia() bool {
	return m.MediaRef != ""
}

// Classify returns the message class used by the router's precedence rules
func (m Message) Classify() Class {
	switch {
	case m.IsGroup:
		return ClassGroup
	case m.HasQuoted():
		return ClassQuotedDirect
	default:
		return ClassPlain
	}
}
