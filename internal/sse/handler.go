package sse

import (
	"bytes"
	"encoding/json/v2"
	"fmt"
	"log/slog"
	"net/http"
	"time"
)

const (
	// keepaliveInterval is how often an idle stream gets a heartbeat frame.
	keepaliveInterval = 30 * time.Second
	// writeGrace bounds a single frame write before the connection is
	// considered hung.
	writeGrace = 60 * time.Second
)

// IdentityFunc extracts the authenticated user ID from a request.
// An empty string with ok=false rejects the connection.
type IdentityFunc func(r *http.Request) (userID string, ok bool)

// Handler serves the event stream endpoint. Each GET becomes a
// long-lived connection registered with the Manager for its user.
type Handler struct {
	manager  *Manager
	identity IdentityFunc
	logger   *slog.Logger
}

func NewHandler(manager *Manager, identity IdentityFunc, logger *slog.Logger) *Handler {
	return &Handler{manager: manager, identity: identity, logger: logger}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	userID, ok := h.identity(r)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	if r.Context().Err() != nil {
		// Client went away before we did any work.
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no") // nginx would buffer otherwise

	rc := http.NewResponseController(w)
	if err := rc.Flush(); err != nil {
		h.logger.Error("response writer does not support streaming", slog.String("error", err.Error()))
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		return
	}

	client, err := h.manager.Connect(userID)
	if err != nil {
		h.logger.Error("event stream registration failed", slog.String("error", err.Error()))
		http.Error(w, "Failed to establish connection", http.StatusInternalServerError)
		return
	}
	defer h.manager.Disconnect(client.ID)

	h.stream(r, w, rc, client)
}

// stream pumps the client's event channel onto the wire until the
// connection drops, the manager closes the client, or a write fails.
func (h *Handler) stream(r *http.Request, w http.ResponseWriter, rc *http.ResponseController, client *Client) {
	log := h.logger.With(slog.String("client_id", client.ID))

	hello := map[string]string{
		"client_id": client.ID,
		"message":   "SSE connection established",
	}
	if err := h.writeFrame(w, rc, "connected", hello); err != nil {
		log.Warn("handshake frame failed", slog.String("error", err.Error()))
		return
	}

	keepalive := time.NewTicker(keepaliveInterval)
	defer keepalive.Stop()

	for {
		select {
		case event := <-client.EventChan:
			if err := h.writeFrame(w, rc, string(event.Type), event); err != nil {
				log.Info("client went away mid-send")
				return
			}
		case <-keepalive.C:
			hb := NewHeartbeatEvent()
			if err := h.writeFrame(w, rc, string(hb.Type), hb); err != nil {
				log.Info("client went away on heartbeat")
				return
			}
		case <-client.Done:
			log.Info("stream closed by manager")
			return
		case <-r.Context().Done():
			log.Info("stream closed by client")
			return
		}
	}
}

// writeFrame emits one complete SSE frame and flushes it. The frame is
// assembled in a buffer first so a partial write never leaves a torn
// frame on the wire from our side.
func (h *Handler) writeFrame(w http.ResponseWriter, rc *http.ResponseController, eventType string, data any) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("marshal event data: %w", err)
	}

	var frame bytes.Buffer
	frame.Grow(len(payload) + len(eventType) + 16)
	fmt.Fprintf(&frame, "event: %s\ndata: %s\n\n", eventType, payload)

	if _, err := w.Write(frame.Bytes()); err != nil {
		return err
	}
	if err := rc.Flush(); err != nil {
		return err
	}

	// Re-arm the write deadline after every successful frame; not all
	// ResponseWriters support deadlines, so failure is only logged.
	if err := rc.SetWriteDeadline(time.Now().Add(writeGrace)); err != nil {
		h.logger.Debug("write deadline not supported", slog.String("error", err.Error()))
	}
	return nil
}
