package api

import (
	"parley/internal/event"
	"parley/internal/negotiation"
)

// Outbound event payloads for /ws/negotiate. Each event kind carries
// only its own fields.

type statusPayload struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

type messagePayload struct {
	Type       string `json:"type"`
	SupplierID int    `json:"supplier_id"`
	Role       string `json:"role"`
	Content    string `json:"content"`
	Round      int    `json:"round"`
}

type decisionPayload struct {
	Type             string                                 `json:"type"`
	WinnerSupplierID int                                    `json:"winner_supplier_id"`
	WinnerName       string                                 `json:"winner_name"`
	Reasoning        string                                 `json:"reasoning"`
	Comparison       map[string]negotiation.ComparisonEntry `json:"comparison"`
}

type donePayload struct {
	Type string `json:"type"`
}

type errorPayload struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// negotiationPayload maps a session event to its wire shape. Unknown
// event kinds are skipped.
func negotiationPayload(e event.Event) (any, bool) {
	switch ev := e.(type) {
	case negotiation.StatusEvent:
		return statusPayload{Type: negotiation.EventTypeStatus, Message: ev.Message}, true
	case negotiation.MessageEvent:
		return messagePayload{
			Type:       negotiation.EventTypeMessage,
			SupplierID: ev.SupplierID,
			Role:       string(ev.Role),
			Content:    ev.Content,
			Round:      ev.Round,
		}, true
	case negotiation.DecisionEvent:
		return decisionPayload{
			Type:             negotiation.EventTypeDecision,
			WinnerSupplierID: ev.Decision.WinnerSupplierID,
			WinnerName:       ev.Decision.WinnerName,
			Reasoning:        ev.Decision.Reasoning,
			Comparison:       ev.Decision.Comparison,
		}, true
	case negotiation.DoneEvent:
		return donePayload{Type: negotiation.EventTypeDone}, true
	case negotiation.ErrorEvent:
		return errorPayload{Type: negotiation.EventTypeError, Message: ev.Message}, true
	default:
		return nil, false
	}
}
