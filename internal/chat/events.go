package chat

import (
	"github.com/gorilla/websocket"

	"morsechat/internal/morse"
	"morsechat/internal/store"
)

// Event names exchanged over the socket.
const (
	EventJoinRoom    = "join_room"
	EventLeaveRoom   = "leave_room"
	EventSendMessage = "send_message"
	EventTranslate   = "translate"

	EventConnected      = "connected"
	EventRoomJoined     = "room_joined"
	EventRoomLeft       = "room_left"
	EventUserJoined     = "user_joined"
	EventUserLeft       = "user_left"
	EventReceiveMessage = "receive_message"
	EventTranslation    = "translation"
	EventError          = "error"
)

// Message encodings for send_message. The content is in this encoding and
// the server fills in the other one.
const (
	EncodingText  = "text"
	EncodingMorse = "morse"
)

// Client is a single websocket connection.
type Client struct {
	id     string
	hub    *Hub
	socket *websocket.Conn
	send   chan []byte

	// rooms is touched only by the read goroutine.
	rooms map[string]struct{}
}

// Inbound is a client -> server event.
type Inbound struct {
	Event     string          `json:"event"`
	Room      string          `json:"room,omitempty"`
	Content   string          `json:"content,omitempty"`
	Encoding  string          `json:"encoding,omitempty"`
	Direction morse.Direction `json:"direction,omitempty"`
}

// Outbound is a server -> client event.
type Outbound struct {
	Event       string             `json:"event"`
	Room        string             `json:"room,omitempty"`
	ClientID    string             `json:"clientId,omitempty"`
	Message     *store.Message     `json:"message,omitempty"`
	History     []store.Message    `json:"history,omitempty"`
	Translation *morse.Translation `json:"translation,omitempty"`
	Error       *ErrorBody         `json:"error,omitempty"`
}

// ErrorBody is the payload of an "error" event.
type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
