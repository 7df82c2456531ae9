package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"

	"github.com/inamate/geoview/internal/engine"
)

func newRouter() *mux.Router {
	h := NewHandler(engine.Options{}, "https://{s}.example/{z}/{x}/{y}.png")
	r := mux.NewRouter()
	r.Use(Recovery)
	r.Use(CORS([]string{"http://localhost:5173"}))
	r.HandleFunc("/api/samples", h.ListSamples).Methods("GET")
	r.HandleFunc("/api/samples/{name}", h.GetSample).Methods("GET")
	r.HandleFunc("/api/render", h.Render).Methods("POST", "OPTIONS")
	return r
}

func do(r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Origin", "http://localhost:5173")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestSamples(t *testing.T) {
	r := newRouter()

	w := do(r, "GET", "/api/samples", "")
	var names []string
	if err := json.Unmarshal(w.Body.Bytes(), &names); err != nil || len(names) != 2 {
		t.Fatalf("samples %s (%v)", w.Body, err)
	}
	if w.Header().Get("Access-Control-Allow-Origin") != "http://localhost:5173" {
		t.Error("missing CORS header")
	}

	w = do(r, "GET", "/api/samples/globe", "")
	var scene struct {
		Projection string            `json:"projection"`
		Layers     []json.RawMessage `json:"layers"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &scene); err != nil {
		t.Fatal(err)
	}
	if w.Code != http.StatusOK || scene.Projection != "orthographic" || len(scene.Layers) == 0 {
		t.Errorf("globe sample: %d %s", w.Code, scene.Projection)
	}

	if w := do(r, "GET", "/api/samples/moon", ""); w.Code != http.StatusNotFound {
		t.Errorf("unknown sample: %d", w.Code)
	}
}

func TestRender(t *testing.T) {
	r := newRouter()
	body := `{
		"id": "scene_x",
		"width": 600,
		"height": 300,
		"projection": "equirectangular",
		"layers": [
			{"id": "clip", "kind": "clippath"},
			{"id": "grid", "kind": "graticule"}
		]
	}`
	w := do(r, "POST", "/api/render", body)
	if w.Code != http.StatusOK {
		t.Fatalf("status %d: %s", w.Code, w.Body)
	}
	var resp struct {
		SceneID  string `json:"sceneId"`
		Mode     string `json:"mode"`
		Layers   []struct{ ID string } `json:"layers"`
		Commands []struct{ Op string } `json:"commands"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.SceneID != "scene_x" || resp.Mode != "affine" || len(resp.Layers) != 2 {
		t.Errorf("render response %+v", resp)
	}
	n := len(resp.Commands)
	if n < 4 || resp.Commands[0].Op != "save" || resp.Commands[n-1].Op != "restore" {
		t.Errorf("commands %+v", resp.Commands)
	}
}

func TestRenderRejects(t *testing.T) {
	r := newRouter()
	for name, tc := range map[string]struct {
		body string
		code int
	}{
		"not json":     {`{`, http.StatusBadRequest},
		"no size":      {`{"projection": "mercator"}`, http.StatusBadRequest},
		"unknown proj": {`{"width": 10, "height": 10, "projection": "bonne"}`, http.StatusUnprocessableEntity},
		"unknown kind": {`{"width": 10, "height": 10, "layers": [{"id": "h", "kind": "heatmap"}]}`, http.StatusUnprocessableEntity},
		"fine graticule": {`{"width": 10, "height": 10, "projection": "orthographic", "layers": [{"id": "g", "kind": "graticule", "data": {"precision": 0.001}}]}`, http.StatusUnprocessableEntity},
		"tiny tiles":     {`{"width": 10, "height": 10, "projection": "mercator", "layers": [{"id": "t", "kind": "tile", "data": {"url": "x", "tileSize": 0.5}}]}`, http.StatusUnprocessableEntity},
	} {
		if w := do(r, "POST", "/api/render", tc.body); w.Code != tc.code {
			t.Errorf("%s: status %d, want %d", name, w.Code, tc.code)
		}
	}
}

func TestPreflight(t *testing.T) {
	w := do(newRouter(), "OPTIONS", "/api/render", "")
	if w.Code != http.StatusNoContent {
		t.Errorf("preflight status %d", w.Code)
	}
}

func TestRecovery(t *testing.T) {
	h := Recovery(http.HandlerFunc(func(http.ResponseWriter, *http.Request) { panic("boom") }))
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest("GET", "/", nil))
	if w.Code != http.StatusInternalServerError {
		t.Errorf("status %d", w.Code)
	}
}
