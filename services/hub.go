package services

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/ThreeDotsLabs/watermill/message"

	"github.com/bellapacxx/bingo-sessions/game"
	"github.com/bellapacxx/bingo-sessions/utils/logger"
)

// Hub fans match events out to the websocket clients watching each match
type Hub struct {
	bus     *EventBus
	matches *MatchService

	mu      sync.RWMutex
	clients map[uint]map[*Client]struct{} // match id -> clients
}

func NewHub(bus *EventBus, matches *MatchService) *Hub {
	return &Hub{
		bus:     bus,
		matches: matches,
		clients: make(map[uint]map[*Client]struct{}),
	}
}

// Start subscribes to the bus and dispatches until ctx is done
func (h *Hub) Start(ctx context.Context) error {
	messages, err := h.bus.Subscribe(ctx)
	if err != nil {
		return err
	}
	go h.run(messages)
	return nil
}

func (h *Hub) run(messages <-chan *message.Message) {
	for msg := range messages {
		evt, err := DecodeMatchEvent(msg)
		msg.Ack()
		if err != nil {
			logger.Errorf("[Hub] %v", err)
			continue
		}
		h.broadcast(evt)
	}
	logger.Info("[Hub] event stream closed")
}

// -------------------- Client management --------------------

// addClient loads the match snapshot and registers c while holding the
// write lock. broadcast needs the read lock, so an event is either already
// reflected in the snapshot or delivered after it.
func (h *Hub) addClient(ctx context.Context, c *Client) error {
	h.mu.Lock()
	snapshot, err := h.snapshot(ctx, c.matchID)
	if err != nil {
		h.mu.Unlock()
		return err
	}
	b, err := json.Marshal(snapshot)
	if err != nil {
		h.mu.Unlock()
		return err
	}
	c.send <- b

	set, ok := h.clients[c.matchID]
	if !ok {
		set = make(map[*Client]struct{})
		h.clients[c.matchID] = set
	}
	set[c] = struct{}{}
	total := len(set)
	h.mu.Unlock()

	go c.writePump()
	go c.readPump()

	logger.Infof("[Hub] client joined match %d (total=%d)", c.matchID, total)
	return nil
}

// snapshot is the first frame a client receives: everything drawn so far
func (h *Hub) snapshot(ctx context.Context, matchID uint) (MatchEvent, error) {
	match, err := h.matches.Get(ctx, matchID)
	if err != nil {
		return MatchEvent{}, err
	}
	evt := MatchEvent{
		Type:     EventSnapshot,
		MatchID:  match.ID,
		Numbers:  match.Numbers,
		WinnerID: match.WinnerID,
		At:       h.matches.now(),
	}
	if n := len(match.Numbers); n > 0 {
		last := match.Numbers[n-1]
		evt.Number = last
		evt.Letter = game.LetterFor(last, match.Type)
	}
	return evt, nil
}

func (h *Hub) removeClient(c *Client) {
	h.mu.Lock()
	if set, ok := h.clients[c.matchID]; ok {
		if _, ok := set[c]; ok {
			delete(set, c)
			c.Close()
		}
		if len(set) == 0 {
			delete(h.clients, c.matchID)
		}
	}
	h.mu.Unlock()
}

// ClientCount is the number of live clients watching a match
func (h *Hub) ClientCount(matchID uint) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[matchID])
}

// -------------------- Broadcast --------------------
func (h *Hub) broadcast(evt MatchEvent) {
	b, err := json.Marshal(evt)
	if err != nil {
		logger.Errorf("[Hub] marshal %s: %v", evt.Type, err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.clients[evt.MatchID] {
		select {
		case c.send <- b:
		default:
			logger.Warnf("[Hub] dropping %s for a slow client of match %d", evt.Type, evt.MatchID)
		}
	}
}
