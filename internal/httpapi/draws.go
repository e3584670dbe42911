package httpapi

import (
	"net/http"
	"strings"

	"github.com/DoyleJ11/worldcup-draw-backend/internal/commentary"
	"github.com/DoyleJ11/worldcup-draw-backend/internal/engine"
	"github.com/DoyleJ11/worldcup-draw-backend/internal/lobby"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

const loadFallbackNotice = "The saved draw could not be loaded. A new draw has been started."

type drawResponse struct {
	Code       string                   `json:"code"`
	Version    int                      `json:"version"`
	Clients    int                      `json:"clients"`
	Auto       bool                     `json:"auto"`
	State      engine.State             `json:"state"`
	Validation *engine.ValidationResult `json:"validation,omitempty"`
}

func toResponse(code string, v lobby.View) drawResponse {
	return drawResponse{
		Code:       code,
		Version:    v.Version,
		Clients:    v.NumClients,
		Auto:       v.Auto,
		State:      v.State,
		Validation: v.Validation,
	}
}

func (h *Handler) CreateDraw(w http.ResponseWriter, r *http.Request) {
	code, err := h.createLobby(nil)
	if err != nil {
		h.Log.Error("create draw", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to create draw")
		return
	}
	writeJSON(w, http.StatusCreated, struct {
		Code string `json:"code"`
	}{Code: code})
}

type loadResponse struct {
	Code   string `json:"code"`
	Loaded bool   `json:"loaded"`
	Notice string `json:"notice,omitempty"`
}

// LoadDraw opens a lobby on a saved draw (?id=) or a legacy share hash
// (?hash=). Anything that cannot be loaded falls back to a fresh draw.
func (h *Handler) LoadDraw(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("id")
	hash := r.URL.Query().Get("hash")
	if id == "" && hash == "" {
		writeError(w, http.StatusBadRequest, "missing id or hash")
		return
	}

	var (
		groups []engine.Group
		err    error
	)
	if id != "" {
		groups, err = h.Store.Fetch(r.Context(), id)
	} else {
		groups, err = engine.DecodeShareHash(hash)
	}

	var s *engine.Session
	if err == nil {
		s, err = engine.LoadExternalDraw(groups, engine.WithRules(h.Rules))
	}
	if err != nil {
		h.Log.Warn("load draw: falling back to a fresh draw", zap.String("id", id), zap.Error(err))
		s = nil
	}

	code, cerr := h.createLobby(s)
	if cerr != nil {
		h.Log.Error("load draw", zap.Error(cerr))
		writeError(w, http.StatusInternalServerError, "failed to create draw")
		return
	}

	resp := loadResponse{Code: code, Loaded: s != nil}
	if s == nil {
		resp.Notice = loadFallbackNotice
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (h *Handler) GetDraw(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")
	lb := h.lookup(code)
	if lb == nil {
		writeError(w, http.StatusNotFound, errLobbyNotFound.Error())
		return
	}
	v, err := view(r.Context(), lb)
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, toResponse(code, v))
}

// Action returns a handler that sends a to the lobby and replies with the new state.
func (h *Handler) Action(a lobby.Action) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		code := chi.URLParam(r, "code")
		lb := h.lookup(code)
		if lb == nil {
			writeError(w, http.StatusNotFound, errLobbyNotFound.Error())
			return
		}
		if err := act(r.Context(), lb, a); err != nil {
			status := statusFor(err)
			if status >= http.StatusInternalServerError {
				h.Log.Error("draw action failed", zap.String("code", code), zap.String("action", string(a)), zap.Error(err))
			}
			writeError(w, status, err.Error())
			return
		}
		v, err := view(r.Context(), lb)
		if err != nil {
			writeError(w, statusFor(err), err.Error())
			return
		}
		writeJSON(w, http.StatusOK, toResponse(code, v))
	}
}

// finishedGroups returns the groups of a finished draw in the lobby named by the route.
func (h *Handler) finishedGroups(r *http.Request) ([]engine.Group, error) {
	lb := h.lookup(chi.URLParam(r, "code"))
	if lb == nil {
		return nil, errLobbyNotFound
	}
	v, err := view(r.Context(), lb)
	if err != nil {
		return nil, err
	}
	if !v.State.Finished {
		return nil, errNotFinished
	}
	return v.State.Groups, nil
}

func (h *Handler) ShareDraw(w http.ResponseWriter, r *http.Request) {
	groups, err := h.finishedGroups(r)
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}

	id, err := h.Store.Save(r.Context(), groups)
	if err != nil {
		h.Log.Error("share draw: save failed", zap.Error(err))
		writeError(w, http.StatusBadGateway, "failed to save draw")
		return
	}
	hash, err := engine.EncodeShareHash(groups)
	if err != nil {
		h.Log.Warn("share draw: hash failed", zap.Error(err))
	}
	writeJSON(w, http.StatusCreated, struct {
		ID   string `json:"id"`
		Hash string `json:"hash,omitempty"`
	}{ID: id, Hash: hash})
}

// Analysis asks for commentary on the whole draw, or on one group with ?group=.
func (h *Handler) Analysis(w http.ResponseWriter, r *http.Request) {
	groups, err := h.finishedGroups(r)
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}

	if name := r.URL.Query().Get("group"); name != "" {
		var picked []engine.Group
		for _, g := range groups {
			if strings.EqualFold(g.Name, name) {
				picked = []engine.Group{g}
				break
			}
		}
		if picked == nil {
			writeError(w, http.StatusBadRequest, "unknown group "+name)
			return
		}
		groups = picked
	}

	text := commentary.Describe(r.Context(), h.Summarizer, groups, h.Log)
	writeJSON(w, http.StatusOK, struct {
		Text string `json:"text"`
	}{Text: text})
}
