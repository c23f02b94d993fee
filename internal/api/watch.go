package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/terra-clan/backoffice/internal/querycache"
)

const (
	watchBuffer    = 64
	watchPingEvery = 30 * time.Second
	watchWriteWait = 10 * time.Second
)

// checkOrigin admits watch connections from the page's own host or a
// configured origin
func (s *Server) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	for _, allowed := range s.config.AllowedOrigins {
		if allowed == "*" || strings.EqualFold(allowed, origin) {
			return true
		}
	}
	u, err := url.Parse(origin)
	if err != nil {
		return false
	}
	return strings.EqualFold(u.Host, r.Host)
}

// WatchMessage is one frame of the watch stream. Clients send "watch"
// frames with Prefixes to narrow the stream; the server sends
// "connected", "event" and "error" frames.
type WatchMessage struct {
	Type     string            `json:"type"`
	Event    *querycache.Event `json:"event,omitempty"`
	Prefixes []querycache.Key  `json:"prefixes,omitempty"`
	Data     string            `json:"data,omitempty"`
}

// watchFilter holds the key prefixes a connection cares about. No prefixes
// means every event.
type watchFilter struct {
	mu       sync.RWMutex
	prefixes []querycache.Key
}

func (f *watchFilter) set(prefixes []querycache.Key) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.prefixes = prefixes
}

func (f *watchFilter) match(key querycache.Key) bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	if len(f.prefixes) == 0 {
		return true
	}
	for _, p := range f.prefixes {
		if key.HasPrefix(p) {
			return true
		}
	}
	return false
}

// handleWatch streams cache events over a websocket so clients know when to
// refetch. The optional repeated "prefix" query parameter holds JSON key
// prefixes such as ["users"].
func (s *Server) handleWatch(w http.ResponseWriter, r *http.Request) {
	filter := &watchFilter{}
	for _, raw := range r.URL.Query()["prefix"] {
		var key querycache.Key
		if err := json.Unmarshal([]byte(raw), &key); err != nil {
			respondError(w, r, http.StatusBadRequest, "invalid_request", "prefix must be a JSON array")
			return
		}
		filter.prefixes = append(filter.prefixes, key)
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Error("failed to upgrade to websocket", "error", err)
		return
	}
	defer conn.Close()

	slog.Info("watch stream connected", "admin", adminName(r), "prefixes", len(filter.prefixes))

	events := make(chan querycache.Event, watchBuffer)
	unsubscribe := s.registry.Cache().SubscribeAll(func(ev querycache.Event) {
		if !filter.match(ev.Key) {
			return
		}
		select {
		case events <- ev:
		default:
			slog.Debug("watch stream lagging, dropping event", "key", ev.Key.String())
		}
	})
	defer unsubscribe()

	acks := make(chan []querycache.Key, 1)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var wg sync.WaitGroup

	// Cache events -> websocket
	wg.Add(1)
	go func() {
		defer wg.Done()
		defer cancel()

		ping := time.NewTicker(watchPingEvery)
		defer ping.Stop()

		if err := writeWatch(conn, WatchMessage{Type: "connected", Data: "Watching cache events"}); err != nil {
			return
		}
		for {
			select {
			case <-ctx.Done():
				return
			case ev := <-events:
				if err := writeWatch(conn, WatchMessage{Type: "event", Event: &ev}); err != nil {
					return
				}
			case prefixes := <-acks:
				if err := writeWatch(conn, WatchMessage{Type: "watching", Prefixes: prefixes}); err != nil {
					return
				}
			case <-ping.C:
				conn.SetWriteDeadline(time.Now().Add(watchWriteWait))
				if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
					return
				}
			}
		}
	}()

	// Websocket -> filter updates
	wg.Add(1)
	go func() {
		defer wg.Done()
		defer cancel()
		for {
			_, message, err := conn.ReadMessage()
			if err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
					slog.Debug("websocket read error", "error", err)
				}
				return
			}

			var msg WatchMessage
			if err := json.Unmarshal(message, &msg); err != nil {
				slog.Debug("invalid watch message", "error", err)
				continue
			}
			if msg.Type == "watch" {
				filter.set(msg.Prefixes)
				slog.Debug("watch filter updated", "prefixes", len(msg.Prefixes))
				select {
				case acks <- msg.Prefixes:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	<-ctx.Done()
	conn.Close()
	wg.Wait()
	slog.Info("watch stream disconnected", "admin", adminName(r))
}

func writeWatch(conn *websocket.Conn, msg WatchMessage) error {
	data, err := json.Marshal(msg)
	if err != nil {
		slog.Error("failed to marshal watch message", "error", err)
		return err
	}
	conn.SetWriteDeadline(time.Now().Add(watchWriteWait))
	if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
		slog.Debug("failed to send watch message", "error", err)
		return err
	}
	return nil
}
