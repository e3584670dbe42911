package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/DoyleJ11/worldcup-draw-backend/internal/hub"
	"github.com/DoyleJ11/worldcup-draw-backend/internal/lobby"
	"github.com/DoyleJ11/worldcup-draw-backend/internal/types"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"nhooyr.io/websocket"
)

type Options struct {
	// OriginPatterns loosens the same-origin check, e.g. "localhost:*" in dev.
	OriginPatterns []string
	Log            *zap.Logger
}

func Handler(h *hub.Hub, opts Options) http.HandlerFunc {
	log := opts.Log
	if log == nil {
		log = zap.NewNop()
	}

	return func(w http.ResponseWriter, r *http.Request) {
		code := r.URL.Query().Get("code")
		if code == "" {
			http.Error(w, "missing code", http.StatusBadRequest)
			return
		}

		reply := make(chan *lobby.Lobby, 1)
		h.Inbox() <- hub.GetLobby{Code: code, Reply: reply}
		lb := <-reply
		if lb == nil {
			http.Error(w, "lobby not found", http.StatusNotFound)
			return
		}

		conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{OriginPatterns: opts.OriginPatterns})
		if err != nil {
			log.Warn("ws: accept failed", zap.String("code", code), zap.Error(err))
			return
		}
		defer conn.Close(websocket.StatusNormalClosure, "bye")

		out := make(chan lobby.Snapshot, 8)
		clientID := uuid.NewString()
		clog := log.With(zap.String("code", code), zap.String("client", clientID))
		clog.Info("ws: client joined")

		select {
		case lb.Inbox() <- lobby.Join{ClientID: clientID, Outbox: out}:
		case <-lb.Done():
			conn.Close(websocket.StatusGoingAway, "lobby closed")
			return
		}
		defer func() {
			select {
			case lb.Inbox() <- lobby.Leave{ClientID: clientID}:
			case <-lb.Done():
			}
			clog.Info("ws: client left")
		}()

		// Writer goroutine
		writeCtx, writeCancel := context.WithCancel(r.Context())
		defer writeCancel()
		go func() {
			for {
				select {
				case snap, ok := <-out:
					if !ok {
						// Lobby closed our outbox: it dropped us or shut down.
						_ = conn.Close(websocket.StatusGoingAway, "lobby closed")
						return
					}
					msg := types.ServerMessage{
						Type:       types.MsgStateSnapshot,
						Version:    snap.Version,
						State:      &snap.State,
						Auto:       snap.Auto,
						Validation: snap.Validation,
					}
					if err := writeJSON(writeCtx, conn, msg); err != nil {
						clog.Debug("ws: write failed", zap.Error(err))
					}
				case <-writeCtx.Done():
					return
				}
			}
		}()

		// Reader loop
		for {
			_, data, err := conn.Read(r.Context())
			if err != nil {
				switch websocket.CloseStatus(err) {
				case websocket.StatusNormalClosure, websocket.StatusGoingAway:
				default:
					clog.Debug("ws: read failed", zap.Error(err))
				}
				return
			}

			var cm types.ClientMessage
			if err := json.Unmarshal(data, &cm); err != nil {
				_ = writeJSON(r.Context(), conn, types.ServerMessage{Type: types.MsgError, Error: "bad json"})
				continue
			}

			action, ok := toAction(cm)
			if !ok {
				_ = writeJSON(r.Context(), conn, types.ServerMessage{Type: types.MsgError, Error: "unknown type"})
				continue
			}

			res := make(chan error, 1)
			select {
			case lb.Inbox() <- lobby.FromClient{Action: action, Reply: res}:
			case <-lb.Done():
				return
			}
			select {
			case err := <-res:
				if err != nil {
					_ = writeJSON(r.Context(), conn, types.ServerMessage{Type: types.MsgError, Error: err.Error()})
				}
			case <-lb.Done():
				return
			}
		}
	}
}

func toAction(m types.ClientMessage) (lobby.Action, bool) {
	switch m.Type {
	case types.MsgDrawNext:
		return lobby.ActDrawNext, true
	case types.MsgCompleteDraw:
		return lobby.ActCompleteDraw, true
	case types.MsgToggleAuto:
		return lobby.ActToggleAuto, true
	case types.MsgRestart:
		return lobby.ActRestart, true
	default:
		return "", false
	}
}

func writeJSON(ctx context.Context, conn *websocket.Conn, msg types.ServerMessage) error {
	payload, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	return conn.Write(ctx, websocket.MessageText, payload)
}
