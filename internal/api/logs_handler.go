package api

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"parley/internal/logging"

	"github.com/gorilla/websocket"
)

// LogsHandler streams structured log entries. A connection first
// receives a snapshot of the retained buffer, then live entries. The
// client can raise or lower the minimum level with a text message.
type LogsHandler struct {
	Logger         *logging.Logger
	AuthToken      string
	AllowedOrigins []string
}

type logFilterMessage struct {
	Level string `json:"level"`
}

type levelFilter struct {
	mu    sync.RWMutex
	level logging.Level
}

func (f *levelFilter) Get() logging.Level {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.level
}

func (f *levelFilter) Set(level logging.Level) {
	f.mu.Lock()
	f.level = level
	f.mu.Unlock()
}

func (h *LogsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if !requireWSToken(w, r, h.AuthToken, h.Logger) {
		return
	}

	filter := &levelFilter{}
	if rawLevel := r.URL.Query().Get("level"); rawLevel != "" {
		if level, ok := logging.ParseLevel(rawLevel); ok {
			filter.Set(level)
		}
	}

	if h.Logger == nil {
		writeWSError(w, r, nil, nil, wsError{
			Status:       http.StatusServiceUnavailable,
			Message:      "log stream unavailable",
			SendEnvelope: true,
		})
		return
	}

	output, cancel := h.Logger.Subscribe()
	if output == nil {
		writeWSError(w, r, nil, h.Logger, wsError{
			Status:       http.StatusServiceUnavailable,
			Message:      "log stream unavailable",
			SendEnvelope: true,
		})
		return
	}
	defer cancel()

	conn, err := upgradeWebSocket(w, r, h.AllowedOrigins)
	if err != nil {
		logWSError(h.Logger, r, wsError{
			Status:  http.StatusBadRequest,
			Message: "websocket upgrade failed",
			Err:     err,
		})
		return
	}
	defer conn.Close()

	snapshot := h.Logger.Buffer().List()
	writer, err := startWSWriteLoop(w, r, wsStreamConfig[logging.Entry]{
		Conn:           conn,
		AllowedOrigins: h.AllowedOrigins,
		Output:         output,
		Logger:         h.Logger,
		PreWrite: func(conn *websocket.Conn) error {
			return writeLogSnapshot(conn, snapshot, filter.Get())
		},
		BuildPayload: func(entry logging.Entry) (any, bool) {
			minLevel := filter.Get()
			if minLevel != "" && !logging.LevelAtLeast(entry.Level, minLevel) {
				return nil, false
			}
			return entry, true
		},
	})
	if err != nil {
		writeWSError(w, r, conn, h.Logger, wsError{
			Status:       http.StatusInternalServerError,
			Message:      "log stream unavailable",
			Err:          err,
			SendEnvelope: true,
		})
		return
	}
	defer writer.Stop()

	for {
		msgType, msg, err := conn.ReadMessage()
		if err != nil {
			return
		}
		if msgType != websocket.TextMessage {
			continue
		}
		var payload logFilterMessage
		if err := json.Unmarshal(msg, &payload); err != nil {
			continue
		}
		level, ok := logging.ParseLevel(payload.Level)
		if !ok {
			filter.Set("")
			continue
		}
		filter.Set(level)
	}
}

func writeLogSnapshot(conn *websocket.Conn, entries []logging.Entry, minLevel logging.Level) error {
	if conn == nil || len(entries) == 0 {
		return nil
	}
	for _, entry := range entries {
		if minLevel != "" && !logging.LevelAtLeast(entry.Level, minLevel) {
			continue
		}
		if err := conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout)); err != nil {
			return err
		}
		if err := conn.WriteJSON(entry); err != nil {
			return err
		}
	}
	return nil
}
