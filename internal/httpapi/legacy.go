package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/DoyleJ11/worldcup-draw-backend/internal/engine"
	"github.com/DoyleJ11/worldcup-draw-backend/internal/store"
	"go.uber.org/zap"
)

// drawPayload is the body shape used by the browser client's save/load calls.
type drawPayload struct {
	DrawData []engine.Group `json:"drawData"`
}

func (h *Handler) SaveDraw(w http.ResponseWriter, r *http.Request) {
	var body drawPayload
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20)).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if body.DrawData == nil {
		writeError(w, http.StatusBadRequest, "Missing drawData")
		return
	}
	if _, err := engine.LoadExternalDraw(body.DrawData); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	id, err := h.Store.Save(r.Context(), body.DrawData)
	if err != nil {
		h.Log.Error("save-draw failed", zap.Error(err))
		writeError(w, http.StatusBadGateway, "Failed to save draw")
		return
	}
	writeJSON(w, http.StatusOK, struct {
		ID string `json:"id"`
	}{ID: id})
}

func (h *Handler) FetchDraw(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "Missing id")
		return
	}

	groups, err := h.Store.Fetch(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "Draw not found")
		return
	}
	if err != nil {
		h.Log.Error("get-draw failed", zap.String("id", id), zap.Error(err))
		writeError(w, http.StatusBadGateway, "Failed to fetch draw")
		return
	}
	writeJSON(w, http.StatusOK, drawPayload{DrawData: groups})
}
