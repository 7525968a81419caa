// Package chat relays room messages between websocket clients, translating
// each message to or from Morse on the way through.
//
// A single Hub goroutine owns client and room membership. Each client runs a
// read goroutine that turns socket frames into hub requests and a write
// goroutine that drains the client's send channel back to the socket.
// Splitting read and write keeps one slow browser from stalling the others.
package chat

import (
	"context"
	"encoding/json"

	"github.com/sirupsen/logrus"

	"morsechat/internal/store"
)

// Recorder receives hub gauges and message counts.
type Recorder interface {
	SetConnectedClients(n int)
	SetActiveRooms(n int)
	RecordChatMessage(encoding, outcome string)
}

type membership struct {
	client *Client
	room   string
}

type roomMessage struct {
	room    string
	payload []byte
}

type directMessage struct {
	client  *Client
	payload []byte
}

// Hub tracks connected clients, their rooms, and fans messages out.
type Hub struct {
	clients map[*Client]struct{}
	rooms   map[string]map[*Client]struct{}

	register   chan *Client
	unregister chan *Client
	join       chan membership
	leave      chan membership
	broadcast  chan roomMessage
	direct     chan directMessage
	done       chan struct{}

	store        store.Store
	recorder     Recorder
	log          *logrus.Entry
	historyLimit int
	sendBuffer   int
}

// Options configures a Hub. Store and Logger are required.
type Options struct {
	Store        store.Store
	Recorder     Recorder
	Logger       *logrus.Entry
	HistoryLimit int
	SendBuffer   int
}

func NewHub(opts Options) *Hub {
	if opts.HistoryLimit <= 0 {
		opts.HistoryLimit = 50
	}
	if opts.SendBuffer <= 0 {
		opts.SendBuffer = 64
	}
	if opts.Recorder == nil {
		opts.Recorder = nopRecorder{}
	}
	return &Hub{
		clients:      make(map[*Client]struct{}),
		rooms:        make(map[string]map[*Client]struct{}),
		register:     make(chan *Client),
		unregister:   make(chan *Client),
		join:         make(chan membership),
		leave:        make(chan membership),
		broadcast:    make(chan roomMessage),
		direct:       make(chan directMessage),
		done:         make(chan struct{}),
		store:        opts.Store,
		recorder:     opts.Recorder,
		log:          opts.Logger.WithField("component", "chat_hub"),
		historyLimit: opts.HistoryLimit,
		sendBuffer:   opts.SendBuffer,
	}
}

// Run is the hub event loop. It returns when ctx is cancelled, after
// closing every client's send channel.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)

	for {
		select {
		case <-ctx.Done():
			for c := range h.clients {
				close(c.send)
			}
			h.clients = map[*Client]struct{}{}
			h.rooms = map[string]map[*Client]struct{}{}
			h.updateGauges()
			h.log.Info("chat hub stopped")
			return

		case c := <-h.register:
			h.clients[c] = struct{}{}
			h.deliver(c, encode(Outbound{Event: EventConnected, ClientID: c.id}))
			h.updateGauges()
			h.log.WithField("client_id", c.id).Debug("client connected")

		case c := <-h.unregister:
			if _, ok := h.clients[c]; ok {
				h.remove(c)
				h.log.WithField("client_id", c.id).Debug("client disconnected")
			}

		case m := <-h.join:
			if _, ok := h.clients[m.client]; !ok {
				continue
			}
			members, ok := h.rooms[m.room]
			if !ok {
				members = make(map[*Client]struct{})
				h.rooms[m.room] = members
			}
			if _, joined := members[m.client]; joined {
				continue
			}
			members[m.client] = struct{}{}
			h.fanout(m.room, encode(Outbound{Event: EventUserJoined, Room: m.room, ClientID: m.client.id}), m.client)
			h.updateGauges()

		case m := <-h.leave:
			h.leaveRoom(m.client, m.room)
			h.updateGauges()

		case msg := <-h.broadcast:
			h.fanout(msg.room, msg.payload, nil)

		case d := <-h.direct:
			if _, ok := h.clients[d.client]; ok {
				h.deliver(d.client, d.payload)
			}
		}
	}
}

// fanout sends payload to every member of room except ignore.
func (h *Hub) fanout(room string, payload []byte, ignore *Client) {
	for c := range h.rooms[room] {
		if c != ignore {
			h.deliver(c, payload)
		}
	}
}

// deliver never blocks the loop: a client whose buffer is full is dropped.
func (h *Hub) deliver(c *Client, payload []byte) {
	select {
	case c.send <- payload:
	default:
		h.log.WithField("client_id", c.id).Warn("send buffer full, dropping client")
		h.remove(c)
	}
}

func (h *Hub) remove(c *Client) {
	if _, ok := h.clients[c]; !ok {
		return
	}
	delete(h.clients, c)
	close(c.send)
	for room, members := range h.rooms {
		if _, ok := members[c]; ok {
			h.leaveRoom(c, room)
		}
	}
	h.updateGauges()
}

func (h *Hub) leaveRoom(c *Client, room string) {
	members, ok := h.rooms[room]
	if !ok {
		return
	}
	if _, ok := members[c]; !ok {
		return
	}
	delete(members, c)
	if len(members) == 0 {
		delete(h.rooms, room)
		return
	}
	h.fanout(room, encode(Outbound{Event: EventUserLeft, Room: room, ClientID: c.id}), nil)
}

func (h *Hub) updateGauges() {
	h.recorder.SetConnectedClients(len(h.clients))
	h.recorder.SetActiveRooms(len(h.rooms))
}

// submit hands a request to the loop unless the hub has stopped.
func submit[T any](h *Hub, ch chan<- T, v T) bool {
	select {
	case ch <- v:
		return true
	case <-h.done:
		return false
	}
}

func encode(out Outbound) []byte {
	raw, err := json.Marshal(out)
	if err != nil {
		// Outbound contains only plain data.
		panic(err)
	}
	return raw
}

type nopRecorder struct{}

func (nopRecorder) SetConnectedClients(int)          {}
func (nopRecorder) SetActiveRooms(int)               {}
func (nopRecorder) RecordChatMessage(string, string) {}
