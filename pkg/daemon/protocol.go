package daemon

import (
	"encoding/json"
	"fmt"

	"github.com/b/tmux-autohide/pkg/paths"
)

// MessageType identifies the type of message
type MessageType string

const (
	MsgAttach       MessageType = "attach"        // Hook -> Daemon: host is mounted, start the controller
	MsgDetach       MessageType = "detach"        // Hook -> Daemon: window closed, drop its controller
	MsgSensorEnter  MessageType = "sensor_enter"  // Hook -> Daemon: pointer reached an edge zone
	MsgContentEnter MessageType = "content_enter" // Hook -> Daemon: pointer entered the main content
	MsgPointer      MessageType = "pointer"       // Hook -> Daemon: raw pointer position
	MsgResize       MessageType = "resize"        // Hook -> Daemon: viewport resized, no payload
	MsgShortcut     MessageType = "shortcut"      // Hook -> Daemon: key combination fired
	MsgQuery        MessageType = "query"         // Client -> Daemon: ask for current state
	MsgSubscribe    MessageType = "subscribe"     // Client -> Daemon: stream state changes
	MsgState        MessageType = "state"         // Daemon -> Client
	MsgError        MessageType = "error"         // Daemon -> Client
	MsgPing         MessageType = "ping"
	MsgPong         MessageType = "pong"
)

// Message is the envelope for every line on the socket. Window is the tmux
// window the message concerns; empty means the session's active window.
type Message struct {
	Type     MessageType     `json:"type"`
	ClientID string          `json:"client_id,omitempty"`
	Window   string          `json:"window,omitempty"`
	Payload  json.RawMessage `json:"payload,omitempty"`
}

// SensorPayload names the zone that was entered.
type SensorPayload struct {
	Region string `json:"region"` // "top", "left", "right"
}

// PointerPayload is a pointer position in window cells.
type PointerPayload struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// ShortcutPayload is a key combination and the window it fired in.
type ShortcutPayload struct {
	Combo    string `json:"combo"`
	WindowID string `json:"window_id"`
}

// RegionPayload is one region's state.
type RegionPayload struct {
	Region  string `json:"region"`
	Active  bool   `json:"active"`
	Visible bool   `json:"visible"`
	Size    int    `json:"size"`
}

// StatePayload is the daemon's answer to query and subscribe. Pushed states
// from a daemon with several attached windows are told apart by Window.
type StatePayload struct {
	SequenceNum   uint64          `json:"seq"`
	Window        string          `json:"window"`
	Mounted       bool            `json:"mounted"`
	PanelsEnabled bool            `json:"panels_enabled"`
	Regions       []RegionPayload `json:"regions"`
}

// ErrorPayload reports a rejected message.
type ErrorPayload struct {
	Message string `json:"message"`
}

// NewMessage builds a message with payload encoded as JSON. A nil payload
// is omitted.
func NewMessage(t MessageType, payload any) (Message, error) {
	msg := Message{Type: t}
	if payload == nil {
		return msg, nil
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return msg, fmt.Errorf("encode %s payload: %w", t, err)
	}
	msg.Payload = data
	return msg, nil
}

// Decode unpacks the payload into v.
func (m Message) Decode(v any) error {
	if len(m.Payload) == 0 {
		return fmt.Errorf("%s: missing payload", m.Type)
	}
	if err := json.Unmarshal(m.Payload, v); err != nil {
		return fmt.Errorf("%s: decode payload: %w", m.Type, err)
	}
	return nil
}

// SocketPath returns the daemon socket path for a session
func SocketPath(sessionID string) string {
	return paths.RuntimePath(sessionID, ".sock")
}

// PidPath returns the pidfile path for a session
func PidPath(sessionID string) string {
	return paths.RuntimePath(sessionID, ".pid")
}
