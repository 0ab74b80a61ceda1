// Package push subscribes to the service's realtime channel. Frames are JSON
// text messages of the shape {"event": "...", "data": ...}; the client sends
// a join frame after connecting and then only reads.
//
// The subscriber owns one delivery channel. Events are delivered in read
// order; the transport reconnects on its own with capped backoff, and Close
// releases the connection and stops delivery for good.
package push

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"repdesk/internal/model"
)

const (
	readWait   = 60 * time.Second
	pingPeriod = 25 * time.Second
	maxBackoff = 30 * time.Second
)

type frame struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// Subscriber is a live connection to the push channel.
type Subscriber struct {
	url  string
	room string

	dialer *websocket.Dialer

	events chan model.Event

	mu     sync.Mutex
	conn   *websocket.Conn
	closed bool
	cancel context.CancelFunc
}

// Subscribe connects (and keeps reconnecting) to the push channel and starts
// delivering events. The returned subscriber must be closed when the view
// that consumes it goes away.
func Subscribe(url, room string) *Subscriber {
	ctx, cancel := context.WithCancel(context.Background())
	s := &Subscriber{
		url:    url,
		room:   room,
		dialer: &websocket.Dialer{HandshakeTimeout: 10 * time.Second},
		events: make(chan model.Event, 64),
		cancel: cancel,
	}
	go s.run(ctx)
	return s
}

// Events is the delivery channel. It is closed after Close (or when the
// context driving the run loop ends), so ranging over it terminates.
func (s *Subscriber) Events() <-chan model.Event { return s.events }

// Close tears the subscription down. Idempotent; no events are delivered
// after it returns.
func (s *Subscriber) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	conn := s.conn
	s.mu.Unlock()

	s.cancel()
	if conn != nil {
		_ = conn.Close()
	}
}

func (s *Subscriber) run(ctx context.Context) {
	defer close(s.events)

	backoff := time.Second
	for {
		if ctx.Err() != nil {
			return
		}

		conn, _, err := s.dialer.DialContext(ctx, s.url, nil)
		if err != nil {
			if !sleepCtx(ctx, backoff) {
				return
			}
			backoff *= 2
			if backoff > maxBackoff {
				backoff = maxBackoff
			}
			continue
		}
		backoff = time.Second

		s.mu.Lock()
		if s.closed {
			s.mu.Unlock()
			_ = conn.Close()
			return
		}
		s.conn = conn
		s.mu.Unlock()

		s.readLoop(ctx, conn)

		s.mu.Lock()
		s.conn = nil
		s.mu.Unlock()
	}
}

func (s *Subscriber) readLoop(ctx context.Context, conn *websocket.Conn) {
	defer conn.Close()

	joinData, _ := json.Marshal(s.room)
	join, _ := json.Marshal(frame{Event: "join", Data: joinData})
	if err := conn.WriteMessage(websocket.TextMessage, join); err != nil {
		return
	}

	_ = conn.SetReadDeadline(time.Now().Add(readWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(readWait))
	})

	// Keepalive pings; the loop exits with the connection.
	pingCtx, stopPing := context.WithCancel(ctx)
	defer stopPing()
	go func() {
		t := time.NewTicker(pingPeriod)
		defer t.Stop()
		for {
			select {
			case <-pingCtx.Done():
				return
			case <-t.C:
				_ = conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
				if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
					return
				}
			}
		}
	}()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return
		}
		ev, ok := decodeFrame(data)
		if !ok {
			continue
		}
		select {
		case s.events <- ev:
		case <-ctx.Done():
			return
		}
	}
}

// decodeFrame maps a wire frame onto a model event. Unknown events and
// malformed payloads are skipped.
func decodeFrame(data []byte) (model.Event, bool) {
	var f frame
	if err := json.Unmarshal(data, &f); err != nil {
		return model.Event{}, false
	}
	switch f.Event {
	case string(model.EventCreated):
		var rec model.RequestForm
		if err := json.Unmarshal(f.Data, &rec); err != nil {
			return model.Event{}, false
		}
		return model.CreatedEvent(rec.Normalized()), true
	case string(model.EventUpdated):
		var rec model.RequestForm
		if err := json.Unmarshal(f.Data, &rec); err != nil {
			return model.Event{}, false
		}
		return model.UpdatedEvent(rec.Normalized()), true
	case string(model.EventDeleted):
		// The delete payload is just the id (string or number).
		var id model.FormID
		if err := json.Unmarshal(f.Data, &id); err != nil {
			return model.Event{}, false
		}
		return model.DeletedEvent(id), true
	}
	return model.Event{}, false
}

func sleepCtx(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
