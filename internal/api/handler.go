// Package api serves scene documents and one-shot renders over HTTP.
package api

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/inamate/geoview/internal/document"
	"github.com/inamate/geoview/internal/engine"
)

const maxBodySize = 4 << 20

type Handler struct {
	opts    engine.Options
	tileURL string
}

func NewHandler(opts engine.Options, tileURL string) *Handler {
	return &Handler{opts: opts, tileURL: tileURL}
}

type renderResponse struct {
	SceneID  string                 `json:"sceneId"`
	Mode     string                 `json:"mode"`
	Layers   []engine.LayerGeometry `json:"layers"`
	Commands []engine.DrawCommand   `json:"commands"`
}

var samples = []string{"globe", "tiles"}

// ListSamples returns the names of the built-in scenes.
func (h *Handler) ListSamples(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, samples)
}

func (h *Handler) GetSample(w http.ResponseWriter, r *http.Request) {
	scene := h.sample(mux.Vars(r)["name"])
	if scene == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "sample not found"})
		return
	}
	writeJSON(w, http.StatusOK, scene)
}

func (h *Handler) sample(name string) *document.Scene {
	switch name {
	case "globe":
		return document.NewSampleScene("")
	case "tiles":
		return document.NewSampleTileScene("", h.tileURL)
	}
	return nil
}

// Render runs one dispatch pass over the posted scene and returns its
// geometry and the compiled draw commands.
func (h *Handler) Render(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodySize))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	scene, err := document.Parse(body)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	rec := engine.NewRecorder()
	eng, err := engine.NewFromScene(scene, h.opts, rec, nil)
	if err != nil {
		handleSceneError(w, err)
		return
	}
	eng.Render()

	layers := rec.Layers()
	writeJSON(w, http.StatusOK, renderResponse{
		SceneID:  scene.ID,
		Mode:     eng.Mode().String(),
		Layers:   layers,
		Commands: engine.CompileDrawCommands(layers),
	})
}

func handleSceneError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, document.ErrInvalidScene), errors.Is(err, engine.ErrInvalidSetup):
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"error": err.Error()})
	default:
		slog.Error("render scene failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
	}
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
