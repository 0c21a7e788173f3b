package collab

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/trackforge/editor/internal/document"
	"github.com/trackforge/editor/internal/editor"
	"github.com/trackforge/editor/internal/engine"
)

// ErrNotFound is returned by a Loader for a track with no saved snapshot.
var ErrNotFound = errors.New("track not found")

// Loader fetches the latest saved document for a track.
type Loader func(ctx context.Context, trackID string) (*document.TrackDocument, error)

// Saver persists a document and returns the snapshot id.
type Saver func(ctx context.Context, doc *document.TrackDocument) (string, error)

const storeTimeout = 5 * time.Second

type Room struct {
	trackID  string
	clients  map[string]*Client // clientID -> client
	presence *PresenceManager
	state    *TrackState
}

func NewRoom(trackID string, state *TrackState) *Room {
	return &Room{
		trackID:  trackID,
		clients:  make(map[string]*Client),
		presence: NewPresenceManager(),
		state:    state,
	}
}

// HubOptions configure the rooms a hub creates.
type HubOptions struct {
	Engine engine.Options
	Load   Loader
	Save   Saver
	Logger *slog.Logger
}

type Hub struct {
	mu         sync.RWMutex
	rooms      map[string]*Room // trackID -> room
	register   chan *Client
	unregister chan *Client

	opts HubOptions
	log  *slog.Logger
}

func NewHub(opts HubOptions) *Hub {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Hub{
		rooms:      make(map[string]*Room),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		opts:       opts,
		log:        opts.Logger,
	}
}

func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case client := <-h.register:
			h.addClient(client)
		case client := <-h.unregister:
			h.removeClient(client)
		case <-ctx.Done():
			return
		}
	}
}

func (h *Hub) Register(client *Client) {
	h.register <- client
}

// loadDocument returns the saved track, or a fresh empty one when nothing
// has been saved under trackID yet.
func (h *Hub) loadDocument(trackID string) *document.TrackDocument {
	if h.opts.Load != nil {
		ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
		defer cancel()
		doc, err := h.opts.Load(ctx, trackID)
		if err == nil {
			return doc
		}
		if !errors.Is(err, ErrNotFound) {
			h.log.Error("failed to load track", "track", trackID, "error", err)
		}
	}
	return document.NewEmptyDocument(trackID, "Untitled")
}

func (h *Hub) addClient(client *Client) {
	h.mu.Lock()
	room, ok := h.rooms[client.TrackID]
	if !ok {
		state := NewTrackState(h.loadDocument(client.TrackID), h.opts.Engine)
		room = NewRoom(client.TrackID, state)
		h.rooms[client.TrackID] = room
	}
	room.clients[client.ClientID] = client
	room.presence.Join(client.ClientID, client.DisplayName)
	h.mu.Unlock()

	welcome := newMessage(TypeWelcome, WelcomePayload{
		ClientID: client.ClientID,
		TrackID:  client.TrackID,
		State:    room.state.State(),
	})
	client.Send(welcome)
	client.Send(room.state.Frame())
	if stateMsg := room.presence.StateMessage(); stateMsg != nil {
		client.Send(stateMsg)
	}

	join := newMessage(TypePresenceJoin, PresenceJoinPayload{
		ClientID:    client.ClientID,
		DisplayName: client.DisplayName,
	})
	join.ClientID = client.ClientID
	h.broadcastToRoom(client.TrackID, join, client.ClientID)

	h.log.Info("client joined", "client", client.ClientID, "track", client.TrackID)
}

func (h *Hub) removeClient(client *Client) {
	h.mu.Lock()
	room, ok := h.rooms[client.TrackID]
	if !ok {
		h.mu.Unlock()
		return
	}
	if _, member := room.clients[client.ClientID]; !member {
		h.mu.Unlock()
		return
	}

	delete(room.clients, client.ClientID)
	client.close()
	room.presence.Remove(client.ClientID)

	empty := len(room.clients) == 0
	if empty {
		delete(h.rooms, client.TrackID)
	}
	h.mu.Unlock()

	if empty && room.state.Unsaved() {
		h.save(room, nil)
	} else if !empty {
		leave := newMessage(TypePresenceLeave, PresenceLeavePayload{ClientID: client.ClientID})
		leave.ClientID = client.ClientID
		h.broadcastToRoom(client.TrackID, leave, "")
	}

	h.log.Info("client left", "client", client.ClientID, "track", client.TrackID)
}

func (h *Hub) room(trackID string) (*Room, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	room, ok := h.rooms[trackID]
	return room, ok
}

func (h *Hub) handleMessage(sender *Client, msg *Message) {
	room, ok := h.room(sender.TrackID)
	if !ok {
		return
	}

	if msg.Type == TypeFocus {
		var p FocusPayload
		if err := decode(msg.Payload, &p); err != nil {
			sender.Send(errorMessage(err))
			return
		}
		room.presence.SetFocus(sender.ClientID, p.Focused)
		return
	}

	res, err := room.state.Apply(msg, room.presence.HasFocus(sender.ClientID))
	if err != nil {
		h.log.Warn("message rejected", "type", msg.Type, "client", sender.ClientID, "error", err)
		sender.Send(errorMessage(err))
	}
	for _, a := range res.HostActions {
		h.hostAction(room, sender, a)
	}
	if err == nil && res.Changed {
		h.broadcastToRoom(sender.TrackID, room.state.Frame(), "")
	}
}

// hostAction carries out the file actions the editor hands back.
func (h *Hub) hostAction(room *Room, sender *Client, a editor.Action) {
	switch a {
	case editor.ActionSave, editor.ActionSaveAs:
		h.save(room, sender)
	case editor.ActionOpen:
		room.state.Replace(h.loadDocument(room.trackID))
		h.broadcastToRoom(room.trackID, room.state.Frame(), "")
	default:
		h.log.Debug("host action ignored", "action", a.String(), "track", room.trackID)
	}
}

// save persists the room's track. The result goes to the whole room; a nil
// requester means an automatic save with nobody to report errors to.
func (h *Hub) save(room *Room, requester *Client) {
	if h.opts.Save == nil {
		return
	}
	doc := room.state.Document()
	ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
	defer cancel()

	id, err := h.opts.Save(ctx, doc)
	if err != nil {
		h.log.Error("failed to save track", "track", room.trackID, "error", err)
		if requester != nil {
			requester.Send(errorMessage(err))
		}
		return
	}
	room.state.MarkSaved(doc.Version)
	h.log.Info("track saved", "track", room.trackID, "snapshot", id, "version", doc.Version)
	if requester != nil {
		h.broadcastToRoom(room.trackID, newMessage(TypeDocSaved, DocSavedPayload{
			SnapshotID: id,
			Version:    doc.Version,
		}), "")
	}
}

func (h *Hub) broadcastToRoom(trackID string, msg *Message, excludeClientID string) {
	h.mu.RLock()
	room, ok := h.rooms[trackID]
	if !ok {
		h.mu.RUnlock()
		return
	}

	clients := make([]*Client, 0, len(room.clients))
	for _, c := range room.clients {
		if c.ClientID != excludeClientID {
			clients = append(clients, c)
		}
	}
	h.mu.RUnlock()

	msg.TrackID = trackID
	for _, c := range clients {
		c.Send(msg)
	}
}
