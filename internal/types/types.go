package types

import "github.com/DoyleJ11/worldcup-draw-backend/internal/engine"

// Client message types.
const (
	MsgDrawNext     = "DrawNext"
	MsgCompleteDraw = "CompleteDraw"
	MsgToggleAuto   = "ToggleAuto"
	MsgRestart      = "Restart"
)

// Server message types.
const (
	MsgStateSnapshot = "StateSnapshot"
	MsgError         = "Error"
)

type ClientMessage struct {
	Type string `json:"type"`
}

type ServerMessage struct {
	Type       string                   `json:"type"` // "StateSnapshot" | "Error"
	Version    int                      `json:"version,omitempty"`
	State      *engine.State            `json:"state,omitempty"`
	Auto       bool                     `json:"auto,omitempty"`
	Validation *engine.ValidationResult `json:"validation,omitempty"`
	Error      string                   `json:"error,omitempty"`
}
