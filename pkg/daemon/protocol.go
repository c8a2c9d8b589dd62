package daemon

import (
	"encoding/json"
	"fmt"
)

// MessageType identifies the type of message
type MessageType string

const (
	MsgActivate  MessageType = "activate"  // ctl -> panel: keyboard-activate the nth group
	MsgProgress  MessageType = "progress"  // ctl -> panel: set a window's progress
	MsgAttention MessageType = "attention" // ctl -> panel: flag a window for attention
	MsgRefresh   MessageType = "refresh"   // ctl -> panel: re-read tmux now
	MsgStatus    MessageType = "status"    // ctl -> panel: describe the groups
	MsgPing      MessageType = "ping"
	MsgPong      MessageType = "pong"
	MsgResult    MessageType = "result" // panel -> ctl: outcome of a request
)

// Message is the envelope for every line on the control socket.
type Message struct {
	Type     MessageType     `json:"type"`
	ClientID string          `json:"client_id,omitempty"`
	Payload  json.RawMessage `json:"payload,omitempty"`
}

// ActivatePayload selects a group by its zero-based position on the panel.
type ActivatePayload struct {
	Index int `json:"index"`
}

// ProgressPayload sets a window's progress. A negative percent clears it.
type ProgressPayload struct {
	Window  string  `json:"window"`
	Percent float64 `json:"percent"`
}

type AttentionPayload struct {
	Window string `json:"window"`
}

type ResultPayload struct {
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
}

// GroupStatus describes one button.
type GroupStatus struct {
	App            string   `json:"app"`
	Name           string   `json:"name"`
	Favorite       bool     `json:"favorite"`
	Windows        []string `json:"windows"`
	LastFocused    string   `json:"last_focused,omitempty"`
	HasFocus       bool     `json:"has_focus"`
	NeedsAttention bool     `json:"needs_attention"`
	Progress       float64  `json:"progress,omitempty"`
}

type StatusPayload struct {
	Groups []GroupStatus `json:"groups"`
}

// NewMessage encodes payload into a message of type t.
func NewMessage(t MessageType, payload interface{}) (Message, error) {
	msg := Message{Type: t}
	if payload == nil {
		return msg, nil
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return msg, fmt.Errorf("failed to marshal %s payload: %w", t, err)
	}
	msg.Payload = data
	return msg, nil
}

// Decode unmarshals the payload into v.
func (m Message) Decode(v interface{}) error {
	if len(m.Payload) == 0 {
		return fmt.Errorf("%s: missing payload", m.Type)
	}
	if err := json.Unmarshal(m.Payload, v); err != nil {
		return fmt.Errorf("%s: bad payload: %w", m.Type, err)
	}
	return nil
}

// Result builds a result message for err.
func Result(err error) Message {
	p := ResultPayload{OK: err == nil}
	if err != nil {
		p.Error = err.Error()
	}
	msg, _ := NewMessage(MsgResult, p)
	return msg
}
