package broadcast

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/net/websocket"
)

// writeTimeout bounds a single push so a stalled viewer cannot pin its
// writer goroutine forever.
const writeTimeout = 10 * time.Second

// ErrUnknownTournament is returned by a Resolver for keys that name no
// tournament.
var ErrUnknownTournament = errors.New("unknown tournament")

// Resolver canonicalizes the tournament key taken from a request URL so it
// matches the key events are published under.
type Resolver interface {
	ResolveKey(ctx context.Context, key string) (string, error)
}

// subscribeParams validates the {key} path value and topic query parameter
// shared by both transports. It writes the HTTP error itself and returns
// false when the request cannot subscribe.
func subscribeParams(w http.ResponseWriter, r *http.Request, hub *Hub, resolver Resolver) (string, Topic, bool) {
	topicName := r.URL.Query().Get("topic")
	if topicName == "" {
		topicName = string(TopicUnified)
	}
	topic, err := ParseTopic(topicName)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return "", "", false
	}

	key, err := resolver.ResolveKey(r.Context(), r.PathValue("key"))
	if errors.Is(err, ErrUnknownTournament) {
		http.Error(w, "tournament not found", http.StatusNotFound)
		return "", "", false
	}
	if err != nil {
		hub.logger.Error("Failed to resolve tournament key", "key", r.PathValue("key"), "error", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return "", "", false
	}
	return key, topic, true
}

type sseConn struct {
	w  http.ResponseWriter
	rc *http.ResponseController
}

func (c *sseConn) Send(data []byte) error {
	_ = c.rc.SetWriteDeadline(time.Now().Add(writeTimeout))
	if _, err := fmt.Fprintf(c.w, "data: %s\n\n", data); err != nil {
		return err
	}
	return c.rc.Flush()
}

// SSEHandler serves a text/event-stream subscription at a route with a
// {key} path value. The topic comes from the "topic" query parameter and
// defaults to unified. Failures are logged through the hub's logger.
func SSEHandler(hub *Hub, resolver Resolver) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key, topic, ok := subscribeParams(w, r, hub, resolver)
		if !ok {
			return
		}

		rc := http.NewResponseController(w)
		w.Header().Set("Content-Type", "text/event-stream")
		w.Header().Set("Cache-Control", "no-cache")
		w.Header().Set("Connection", "keep-alive")
		w.Header().Set("X-Accel-Buffering", "no")
		w.WriteHeader(http.StatusOK)
		if err := rc.Flush(); err != nil {
			hub.logger.Error("SSE not supported by response writer", "error", err)
			return
		}

		sub, err := hub.Subscribe(r.Context(), key, topic, &sseConn{w: w, rc: rc})
		if err != nil {
			hub.logger.Warn("SSE subscribe rejected", "tournament_key", key, "error", err)
			return
		}
		<-sub.Done()
	})
}

type wsConn struct {
	ws *websocket.Conn
}

func (c wsConn) Send(data []byte) error {
	_ = c.ws.SetWriteDeadline(time.Now().Add(writeTimeout))
	return websocket.Message.Send(c.ws, string(data))
}

// WebSocketHandler serves the same event stream over a WebSocket, one JSON
// text frame per event. Frames sent by the client are ignored; the read
// side only detects the close.
func WebSocketHandler(hub *Hub, resolver Resolver) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key, topic, ok := subscribeParams(w, r, hub, resolver)
		if !ok {
			return
		}

		server := websocket.Server{Handler: func(ws *websocket.Conn) {
			ctx, cancel := context.WithCancel(r.Context())
			defer cancel()

			sub, err := hub.Subscribe(ctx, key, topic, wsConn{ws: ws})
			if err != nil {
				hub.logger.Warn("WebSocket subscribe rejected", "tournament_key", key, "error", err)
				return
			}

			go func() {
				var discard string
				for {
					if err := websocket.Message.Receive(ws, &discard); err != nil {
						cancel()
						return
					}
				}
			}()

			<-sub.Done()
		}}
		server.ServeHTTP(w, r)
	})
}
