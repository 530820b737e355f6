package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"parley/internal/catalog"
	"parley/internal/event"
	"parley/internal/llm"
	"parley/internal/logging"
	"parley/internal/metrics"
	"parley/internal/negotiation"

	"github.com/gorilla/websocket"
)

const startCommandTimeout = 30 * time.Second
const sessionEventBuffer = 256

// NegotiateHandler runs one negotiation session per websocket
// connection. The client sends a single start command and then only
// receives events until the terminal done or error.
type NegotiateHandler struct {
	Catalog        *catalog.Store
	Generator      llm.Client
	Rounds         int
	Logger         *logging.Logger
	Metrics        *metrics.Registry
	AuthToken      string
	AllowedOrigins []string
}

type startCommand struct {
	Type       string         `json:"type"`
	Quantities map[string]int `json:"quantities"`
	Note       string         `json:"note"`
}

func (h *NegotiateHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if !requireWSToken(w, r, h.AuthToken, h.Logger) {
		return
	}

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

	if h.Catalog == nil || h.Generator == nil {
		writeWSError(w, r, conn, h.Logger, wsError{
			Status:       http.StatusServiceUnavailable,
			Message:      "negotiation service unavailable",
			SendEnvelope: true,
		})
		return
	}

	command, err := h.readStartCommand(conn)
	if err != nil {
		writeWSError(w, r, conn, h.Logger, wsError{
			Status:       http.StatusBadRequest,
			CloseCode:    websocket.ClosePolicyViolation,
			Message:      err.Error(),
			SendEnvelope: true,
		})
		return
	}

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	// A client disconnect cancels in-flight generation calls.
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				cancel()
				return
			}
		}
	}()

	bus := event.NewBus[event.Event](ctx, event.BusOptions{
		Name:                 "negotiation",
		SubscriberBufferSize: sessionEventBuffer,
		BlockOnFull:          true,
		WriteTimeout:         wsWriteTimeout,
		Registry:             h.Metrics,
	})
	defer bus.Close()

	output, unsubscribe := bus.Subscribe()
	defer unsubscribe()

	writer, err := startWSWriteLoop(w, r, wsStreamConfig[event.Event]{
		Conn:         conn,
		Output:       output,
		Logger:       h.Logger,
		BuildPayload: negotiationPayload,
	})
	if err != nil {
		writeWSError(w, r, conn, h.Logger, wsError{
			Status:       http.StatusInternalServerError,
			Message:      "event stream unavailable",
			Err:          err,
			SendEnvelope: true,
		})
		return
	}
	defer writer.Stop()

	session, err := negotiation.New(negotiation.Config{
		Suppliers:  h.Catalog.Suppliers(),
		Products:   h.Catalog.Products(),
		Quantities: command.Quantities,
		Note:       command.Note,
		Rounds:     h.Rounds,
		Generator:  h.Generator,
		Events:     bus,
		Logger:     h.Logger,
		Metrics:    h.Metrics,
	})
	if err != nil {
		bus.Close()
		writer.Wait()
		writeWSError(w, r, conn, h.Logger, wsError{
			Status:       http.StatusInternalServerError,
			Message:      err.Error(),
			SendEnvelope: true,
		})
		return
	}

	runErr := session.Run(ctx)

	// Close the bus so the write loop drains the remaining events,
	// including the terminal one, before the connection goes away.
	bus.Close()
	writer.Wait()

	closeCode := websocket.CloseNormalClosure
	reason := "negotiation complete"
	if runErr != nil {
		closeCode = websocket.CloseInternalServerErr
		reason = "negotiation failed"
	}
	deadline := time.Now().Add(wsWriteTimeout)
	_ = conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(closeCode, reason), deadline)
}

// readStartCommand reads and validates the one-shot start message.
// Anything other than a well-formed start_negotiation command is a
// protocol error and ends the session.
func (h *NegotiateHandler) readStartCommand(conn *websocket.Conn) (startCommand, error) {
	_ = conn.SetReadDeadline(time.Now().Add(startCommandTimeout))
	defer conn.SetReadDeadline(time.Time{})

	msgType, raw, err := conn.ReadMessage()
	if err != nil {
		return startCommand{}, fmt.Errorf("read start command: %w", err)
	}
	if msgType != websocket.TextMessage {
		return startCommand{}, fmt.Errorf("start command must be a text message")
	}

	var command startCommand
	if err := json.Unmarshal(raw, &command); err != nil {
		return startCommand{}, fmt.Errorf("malformed start command: %w", err)
	}
	if command.Type != "start_negotiation" {
		return startCommand{}, fmt.Errorf("unexpected command type %q", command.Type)
	}
	if len(command.Quantities) == 0 {
		return startCommand{}, fmt.Errorf("start command requires at least one product quantity")
	}
	for code, quantity := range command.Quantities {
		if quantity <= 0 {
			return startCommand{}, fmt.Errorf("quantity for %s must be positive", code)
		}
		if _, ok := h.Catalog.Product(code); !ok {
			return startCommand{}, fmt.Errorf("unknown product code %q", code)
		}
	}
	return command, nil
}
