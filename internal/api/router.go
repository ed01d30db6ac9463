// Package api exposes the operational HTTP surface: health, stream
// inspection, and manual run triggers. Publishing itself is driven by the
// scheduler; the API exists for operators.
package api

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/ptkhanh/herald/internal/config"
)

// StreamRunner executes one poll cycle for a stream on demand.
type StreamRunner interface {
	RunStream(ctx context.Context, stream config.StreamConfig, fresh bool) error
}

// NewRouter creates and configures the HTTP router. platforms is the list
// of configured publish targets, reported for inspection only.
func NewRouter(cfg *config.Config, runner StreamRunner, platforms []string) *chi.Mux {
	r := chi.NewRouter()

	r.Use(RequestLogger)
	r.Use(Recovery)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api", func(api chi.Router) {
		api.Get("/streams", listStreams(cfg, platforms))
		api.Post("/run/{stream}", runStream(cfg, runner))
	})

	return r
}

// listStreams reports the configured streams and publish targets.
func listStreams(cfg *config.Config, platforms []string) http.HandlerFunc {
	type streamInfo struct {
		Name    string `json:"name"`
		Kind    string `json:"kind"`
		Product string `json:"product"`
		Variant string `json:"variant"`
	}

	return func(w http.ResponseWriter, _ *http.Request) {
		infos := make([]streamInfo, 0, len(cfg.Streams))
		for _, s := range cfg.Streams {
			infos = append(infos, streamInfo{
				Name:    s.Name,
				Kind:    s.Kind,
				Product: s.Product,
				Variant: s.Variant,
			})
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"streams":   infos,
			"platforms": platforms,
		})
	}
}

// runStream triggers one poll cycle for the named stream synchronously.
// ?fresh=1 bypasses the summary cache read so an operator can force a
// regenerated summary.
func runStream(cfg *config.Config, runner StreamRunner) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name := chi.URLParam(r, "stream")

		stream, ok := findStream(cfg, name)
		if !ok {
			writeError(w, http.StatusNotFound, "unknown stream: "+name)
			return
		}

		fresh := r.URL.Query().Get("fresh") == "1"
		if err := runner.RunStream(r.Context(), stream, fresh); err != nil {
			writeError(w, http.StatusBadGateway, err.Error())
			return
		}

		writeJSON(w, http.StatusOK, map[string]string{
			"status": "completed",
			"stream": name,
		})
	}
}

func findStream(cfg *config.Config, name string) (config.StreamConfig, bool) {
	for _, s := range cfg.Streams {
		if s.Name == name {
			return s, true
		}
	}
	return config.StreamConfig{}, false
}
