package httpapi

import (
	"net/http"
	"net/url"

	"github.com/DoyleJ11/worldcup-draw-backend/internal/lobby"
	"github.com/DoyleJ11/worldcup-draw-backend/internal/ws"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

func SetupRoutes(h *Handler, allowedOrigins []string) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(h.Log))
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-Id"},
		MaxAge:         300,
	}))

	// Public routes
	r.Get("/healthz", Healthz)
	r.Get("/ws", ws.Handler(h.Hub, ws.Options{OriginPatterns: originPatterns(allowedOrigins), Log: h.Log}))

	r.Route("/draws", func(r chi.Router) {
		r.Post("/", h.CreateDraw)
		r.Post("/load", h.LoadDraw)
		r.Route("/{code}", func(r chi.Router) {
			r.Get("/", h.GetDraw)
			r.Post("/next", h.Action(lobby.ActDrawNext))
			r.Post("/complete", h.Action(lobby.ActCompleteDraw))
			r.Post("/auto", h.Action(lobby.ActToggleAuto))
			r.Post("/restart", h.Action(lobby.ActRestart))
			r.Post("/share", h.ShareDraw)
			r.Get("/analysis", h.Analysis)
		})
	})

	// Paths the browser client already calls.
	r.Post("/api/save-draw", h.SaveDraw)
	r.Get("/api/get-draw", h.FetchDraw)
	return r
}

// originPatterns turns CORS origins into the host patterns the websocket
// accept check expects.
func originPatterns(origins []string) []string {
	patterns := make([]string, 0, len(origins))
	for _, o := range origins {
		if u, err := url.Parse(o); err == nil && u.Host != "" {
			patterns = append(patterns, u.Host)
			continue
		}
		patterns = append(patterns, o)
	}
	return patterns
}
