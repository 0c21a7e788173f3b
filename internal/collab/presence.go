package collab

import (
	"encoding/json"
	"log/slog"
	"sync"
)

// Presence is what a room knows about one connected client. Focus is kept
// per client: one client typing into a panel must not block pointer input
// from the others.
type Presence struct {
	DisplayName string `json:"displayName"`
	Focused     bool   `json:"focused"`
}

type PresenceManager struct {
	mu        sync.RWMutex
	presences map[string]*Presence // clientID -> presence
}

func NewPresenceManager() *PresenceManager {
	return &PresenceManager{
		presences: make(map[string]*Presence),
	}
}

func (pm *PresenceManager) Join(clientID, displayName string) {
	pm.mu.Lock()
	defer pm.mu.Unlock()
	pm.presences[clientID] = &Presence{DisplayName: displayName}
}

// SetFocus records whether clientID has a widget focused. Unknown clients
// are ignored.
func (pm *PresenceManager) SetFocus(clientID string, focused bool) {
	pm.mu.Lock()
	defer pm.mu.Unlock()
	if p, ok := pm.presences[clientID]; ok {
		p.Focused = focused
	}
}

func (pm *PresenceManager) HasFocus(clientID string) bool {
	pm.mu.RLock()
	defer pm.mu.RUnlock()
	p, ok := pm.presences[clientID]
	return ok && p.Focused
}

func (pm *PresenceManager) Remove(clientID string) {
	pm.mu.Lock()
	defer pm.mu.Unlock()
	delete(pm.presences, clientID)
}

func (pm *PresenceManager) GetAll() map[string]*Presence {
	pm.mu.RLock()
	defer pm.mu.RUnlock()

	result := make(map[string]*Presence, len(pm.presences))
	for k, v := range pm.presences {
		cp := *v
		result[k] = &cp
	}
	return result
}

func (pm *PresenceManager) StateMessage() *Message {
	payload, err := json.Marshal(PresenceStatePayload{Presences: pm.GetAll()})
	if err != nil {
		slog.Error("marshal presence state", "error", err)
		return nil
	}
	return &Message{
		Type:    TypePresenceState,
		Payload: payload,
	}
}
