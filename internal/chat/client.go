package chat

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"morsechat/internal/morse"
	"morsechat/internal/store"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 8 << 10
	maxRoomLength  = 64
	storeTimeout   = 5 * time.Second
)

var errNotInRoom = errors.New("join the room before sending to it")

// NewUpgrader returns an upgrader accepting the given origins. "*" allows any.
func NewUpgrader(allowedOrigins []string) *websocket.Upgrader {
	allowAll := false
	allowed := make(map[string]struct{}, len(allowedOrigins))
	for _, o := range allowedOrigins {
		if o == "*" {
			allowAll = true
		}
		allowed[strings.TrimSuffix(o, "/")] = struct{}{}
	}
	return &websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			if allowAll {
				return true
			}
			origin := r.Header.Get("Origin")
			if origin == "" {
				return true
			}
			_, ok := allowed[origin]
			return ok
		},
	}
}

// ServeWS upgrades the request and attaches a client to the hub. userID is
// the authenticated subject; an empty one gets a random id.
func (h *Hub) ServeWS(upgrader *websocket.Upgrader, w http.ResponseWriter, r *http.Request, userID string) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written an HTTP error.
		h.log.WithError(err).Warn("websocket upgrade failed")
		return
	}
	if userID == "" {
		userID = uuid.NewString()
	}

	client := &Client{
		id:     userID,
		hub:    h,
		socket: conn,
		send:   make(chan []byte, h.sendBuffer),
		rooms:  make(map[string]struct{}),
	}
	if !submit(h, h.register, client) {
		conn.Close()
		return
	}

	go client.write()
	go client.read()
}

func (c *Client) read() {
	defer func() {
		submit(c.hub, c.hub.unregister, c)
		c.socket.Close()
	}()

	c.socket.SetReadLimit(maxMessageSize)
	_ = c.socket.SetReadDeadline(time.Now().Add(pongWait))
	c.socket.SetPongHandler(func(string) error {
		return c.socket.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, raw, err := c.socket.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.hub.log.WithError(err).WithField("client_id", c.id).Debug("unexpected close")
			}
			return
		}

		var in Inbound
		if err := json.Unmarshal(raw, &in); err != nil {
			c.reply(errorEvent("INVALID_JSON", "message must be a JSON event"))
			continue
		}
		if !c.handle(in) {
			return
		}
	}
}

func (c *Client) write() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.socket.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			_ = c.socket.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.socket.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.socket.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.socket.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.socket.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// handle processes one inbound event. It returns false once the hub has
// stopped and the connection should be torn down.
func (c *Client) handle(in Inbound) bool {
	switch in.Event {
	case EventJoinRoom:
		return c.joinRoom(strings.TrimSpace(in.Room))
	case EventLeaveRoom:
		return c.leaveRoom(strings.TrimSpace(in.Room))
	case EventSendMessage:
		return c.sendMessage(in)
	case EventTranslate:
		return c.translate(in)
	default:
		return c.reply(errorEvent("UNKNOWN_EVENT", "unknown event "+in.Event))
	}
}

func (c *Client) joinRoom(room string) bool {
	if room == "" || utf8.RuneCountInString(room) > maxRoomLength {
		return c.reply(errorEvent("INVALID_ROOM", "room must be 1-64 characters"))
	}
	if !submit(c.hub, c.hub.join, membership{client: c, room: room}) {
		return false
	}
	c.rooms[room] = struct{}{}

	ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
	defer cancel()
	history, err := c.hub.store.Recent(ctx, room, c.hub.historyLimit)
	if err != nil {
		c.hub.log.WithError(err).WithField("room", room).Warn("load room history")
		history = nil
	}
	return c.reply(Outbound{Event: EventRoomJoined, Room: room, History: history})
}

func (c *Client) leaveRoom(room string) bool {
	if _, ok := c.rooms[room]; !ok {
		return c.reply(errorEvent("NOT_IN_ROOM", errNotInRoom.Error()))
	}
	if !submit(c.hub, c.hub.leave, membership{client: c, room: room}) {
		return false
	}
	delete(c.rooms, room)
	return c.reply(Outbound{Event: EventRoomLeft, Room: room})
}

func (c *Client) sendMessage(in Inbound) bool {
	room := strings.TrimSpace(in.Room)
	if _, ok := c.rooms[room]; !ok {
		return c.reply(errorEvent("NOT_IN_ROOM", errNotInRoom.Error()))
	}

	encoding := in.Encoding
	if encoding == "" {
		encoding = EncodingText
	}
	msg, err := buildMessage(c.id, room, encoding, in.Content)
	if err != nil {
		label := encoding
		if errors.Is(err, morse.ErrInvalidDirection) {
			label = "unknown"
		}
		c.hub.recorder.RecordChatMessage(label, morse.Code(err))
		return c.reply(errorEvent(morse.Code(err), err.Error()))
	}

	ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
	defer cancel()
	if err := c.hub.store.Save(ctx, msg); err != nil {
		c.hub.log.WithError(err).WithFields(logrus.Fields{"room": room, "client_id": c.id}).Error("persist message")
		c.hub.recorder.RecordChatMessage(encoding, "store_error")
		return c.reply(errorEvent("STORE_UNAVAILABLE", "message could not be saved"))
	}

	c.hub.recorder.RecordChatMessage(encoding, "delivered")
	return submit(c.hub, c.hub.broadcast, roomMessage{
		room:    room,
		payload: encode(Outbound{Event: EventReceiveMessage, Room: room, Message: &msg}),
	})
}

func (c *Client) translate(in Inbound) bool {
	req := morse.Request{Direction: in.Direction}
	if in.Direction == morse.MorseToTextDirection {
		req.Morse = in.Content
	} else {
		req.Text = in.Content
	}
	res, err := morse.Translate(req)
	if err != nil {
		return c.reply(errorEvent(morse.Code(err), err.Error()))
	}
	return c.reply(Outbound{Event: EventTranslation, Translation: &res})
}

// reply queues an event for this client through the hub, which owns send.
func (c *Client) reply(out Outbound) bool {
	return submit(c.hub, c.hub.direct, directMessage{client: c, payload: encode(out)})
}

// buildMessage fills in whichever rendering the sender did not provide.
func buildMessage(sender, room, encoding, content string) (store.Message, error) {
	req := morse.Request{}
	switch encoding {
	case EncodingText:
		req.Direction, req.Text = morse.TextToMorseDirection, content
	case EncodingMorse:
		req.Direction, req.Morse = morse.MorseToTextDirection, content
	default:
		return store.Message{}, morse.ErrInvalidDirection
	}

	res, err := morse.Translate(req)
	if err != nil {
		return store.Message{}, err
	}

	msg := store.Message{
		ID:        uuid.NewString(),
		Room:      room,
		Sender:    sender,
		Encoding:  encoding,
		CreatedAt: res.Timestamp,
	}
	if encoding == EncodingText {
		msg.Text, msg.Morse = res.Original, res.Translated
	} else {
		msg.Text, msg.Morse = res.Translated, res.Original
	}
	return msg, nil
}

func errorEvent(code, message string) Outbound {
	return Outbound{Event: EventError, Error: &ErrorBody{Code: code, Message: message}}
}
