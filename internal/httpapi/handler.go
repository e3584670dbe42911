package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/DoyleJ11/worldcup-draw-backend/internal/commentary"
	"github.com/DoyleJ11/worldcup-draw-backend/internal/engine"
	"github.com/DoyleJ11/worldcup-draw-backend/internal/hub"
	"github.com/DoyleJ11/worldcup-draw-backend/internal/lobby"
	"github.com/DoyleJ11/worldcup-draw-backend/internal/store"
	gonanoid "github.com/matoous/go-nanoid/v2"
	"go.uber.org/zap"
)

var (
	errLobbyNotFound = errors.New("lobby not found")
	errLobbyClosed   = errors.New("lobby closed")
	errNotFinished   = errors.New("draw is not finished")
)

type Handler struct {
	Hub        *hub.Hub
	Store      store.Store
	Summarizer commentary.Summarizer
	Rules      engine.Rules
	Log        *zap.Logger
}

func NewHandler(h *hub.Hub, st store.Store, s commentary.Summarizer, rules engine.Rules, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{Hub: h, Store: st, Summarizer: s, Rules: rules, Log: logger}
}

func GenerateCode() (string, error) {
	return gonanoid.Generate("ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789", 6)
}

func (h *Handler) lookup(code string) *lobby.Lobby {
	reply := make(chan *lobby.Lobby, 1)
	h.Hub.Inbox() <- hub.GetLobby{Code: code, Reply: reply}
	return <-reply
}

// createLobby registers a lobby under a fresh code. A nil session starts a new draw.
func (h *Handler) createLobby(s *engine.Session) (string, error) {
	var code string
	for {
		c, err := GenerateCode()
		if err != nil {
			return "", err
		}
		if h.lookup(c) == nil {
			code = c
			break
		}
		h.Log.Debug("collision on code, regenerating", zap.String("code", c))
	}

	reply := make(chan *lobby.Lobby, 1)
	h.Hub.Inbox() <- hub.CreateLobby{Code: code, Session: s, Reply: reply}
	if <-reply == nil {
		return "", errors.New("failed to create lobby")
	}
	return code, nil
}

func view(ctx context.Context, lb *lobby.Lobby) (lobby.View, error) {
	reply := make(chan lobby.View, 1)
	select {
	case lb.Inbox() <- lobby.GetState{Reply: reply}:
	case <-lb.Done():
		return lobby.View{}, errLobbyClosed
	case <-ctx.Done():
		return lobby.View{}, ctx.Err()
	}
	select {
	case v := <-reply:
		return v, nil
	case <-lb.Done():
		return lobby.View{}, errLobbyClosed
	case <-ctx.Done():
		return lobby.View{}, ctx.Err()
	}
}

func act(ctx context.Context, lb *lobby.Lobby, a lobby.Action) error {
	reply := make(chan error, 1)
	select {
	case lb.Inbox() <- lobby.FromClient{Action: a, Reply: reply}:
	case <-lb.Done():
		return errLobbyClosed
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case err := <-reply:
		return err
	case <-lb.Done():
		return errLobbyClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// statusFor maps draw errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, errLobbyNotFound), errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, engine.ErrDrawPending),
		errors.Is(err, engine.ErrDrawFinished),
		errors.Is(err, engine.ErrIllegalPlacement),
		errors.Is(err, errNotFinished):
		return http.StatusConflict
	case errors.Is(err, engine.ErrUnsupportedCommand), errors.Is(err, engine.ErrInvalidExternalDraw):
		return http.StatusBadRequest
	case errors.Is(err, errLobbyClosed):
		return http.StatusGone
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func Healthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}
