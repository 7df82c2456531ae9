//go:build js && wasm

package main

import (
	"encoding/json"
	"syscall/js"

	"github.com/golang/geo/r2"
	"github.com/paulmach/orb"

	"github.com/inamate/geoview/internal/document"
	"github.com/inamate/geoview/internal/engine"
	"github.com/inamate/geoview/internal/layer"
)

var (
	eng     *engine.Engine
	rec     *engine.Recorder
	tooltip = &jsTooltip{}
)

// jsTooltip forwards hides to a callback registered from JavaScript.
type jsTooltip struct {
	fn js.Value
}

func (t *jsTooltip) SetVisible(v bool) {
	if t.fn.Type() == js.TypeFunction {
		t.fn.Invoke(v)
	}
}

func main() {
	geoview := js.Global().Get("Object").New()

	// --- Commands (frontend → engine) ---
	geoview.Set("loadScene", js.FuncOf(loadScene))
	geoview.Set("loadSampleScene", js.FuncOf(loadSampleScene))
	geoview.Set("pointerDown", js.FuncOf(pointerDown))
	geoview.Set("pointerMove", js.FuncOf(pointerMove))
	geoview.Set("pointerUp", js.FuncOf(pointerUp))
	geoview.Set("pointerCancel", js.FuncOf(pointerCancel))
	geoview.Set("wheel", js.FuncOf(wheel))
	geoview.Set("zoomBy", js.FuncOf(zoomBy))
	geoview.Set("reset", js.FuncOf(reset))
	geoview.Set("upsertLayer", js.FuncOf(upsertLayer))
	geoview.Set("removeLayer", js.FuncOf(removeLayer))
	geoview.Set("setTooltipHandler", js.FuncOf(setTooltipHandler))

	// --- Queries (frontend ← engine) ---
	geoview.Set("render", js.FuncOf(render))
	geoview.Set("getChanges", js.FuncOf(getChanges))
	geoview.Set("getState", js.FuncOf(getState))
	geoview.Set("project", js.FuncOf(project))
	geoview.Set("unproject", js.FuncOf(unproject))
	geoview.Set("isActive", js.FuncOf(isActive))

	js.Global().Set("geoviewEngine", geoview)
	js.Global().Set("geoviewWasmReady", js.ValueOf(true))

	// Keep Go runtime alive
	select {}
}

func errorResult(err error) interface{} {
	return js.ValueOf(map[string]interface{}{"error": err.Error()})
}

func okResult() interface{} {
	return js.ValueOf(map[string]interface{}{"ok": true})
}

func start(scene *document.Scene) interface{} {
	r := engine.NewRecorder()
	e, err := engine.NewFromScene(scene, engine.Options{}, r, tooltip)
	if err != nil {
		return errorResult(err)
	}
	eng, rec = e, r
	eng.Render()
	return okResult()
}

// --- Command Handlers ---

func loadScene(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return js.ValueOf(map[string]interface{}{"error": "missing scene JSON"})
	}
	scene, err := document.Parse([]byte(args[0].String()))
	if err != nil {
		return errorResult(err)
	}
	return start(scene)
}

func loadSampleScene(this js.Value, args []js.Value) interface{} {
	name := "globe"
	if len(args) > 0 && args[0].Type() == js.TypeString {
		name = args[0].String()
	}
	if name == "tiles" {
		url := "https://tile.openstreetmap.org/{z}/{x}/{y}.png"
		if len(args) > 1 && args[1].Type() == js.TypeString {
			url = args[1].String()
		}
		return start(document.NewSampleTileScene("", url))
	}
	return start(document.NewSampleScene(""))
}

func pointerArgs(args []js.Value) (int, r2.Point, bool) {
	if eng == nil || len(args) < 3 {
		return 0, r2.Point{}, false
	}
	return args[0].Int(), r2.Point{X: args[1].Float(), Y: args[2].Float()}, true
}

func pointerDown(this js.Value, args []js.Value) interface{} {
	if id, p, ok := pointerArgs(args); ok {
		eng.PointerDown(id, p)
		eng.Flush()
	}
	return nil
}

func pointerMove(this js.Value, args []js.Value) interface{} {
	if id, p, ok := pointerArgs(args); ok {
		eng.PointerMove(id, p)
		eng.Flush()
	}
	return nil
}

func pointerUp(this js.Value, args []js.Value) interface{} {
	if id, p, ok := pointerArgs(args); ok {
		eng.PointerUp(id, p)
		eng.Flush()
	}
	return nil
}

func pointerCancel(this js.Value, args []js.Value) interface{} {
	if eng != nil {
		eng.PointerCancel()
	}
	return nil
}

func wheel(this js.Value, args []js.Value) interface{} {
	if eng == nil || len(args) < 3 {
		return nil
	}
	eng.Wheel(r2.Point{X: args[0].Float(), Y: args[1].Float()}, args[2].Float())
	eng.Flush()
	return nil
}

func zoomBy(this js.Value, args []js.Value) interface{} {
	if eng == nil || len(args) < 3 {
		return nil
	}
	eng.ZoomBy(args[0].Float(), r2.Point{X: args[1].Float(), Y: args[2].Float()})
	eng.Flush()
	return nil
}

func reset(this js.Value, args []js.Value) interface{} {
	if eng != nil {
		eng.Reset()
		eng.Flush()
	}
	return nil
}

func upsertLayer(this js.Value, args []js.Value) interface{} {
	if eng == nil || len(args) < 1 {
		return js.ValueOf(map[string]interface{}{"error": "no scene or layer"})
	}
	var l document.Layer
	if err := json.Unmarshal([]byte(args[0].String()), &l); err != nil {
		return errorResult(err)
	}
	if l.ID == "" {
		l.ID = layer.NewID()
	}
	d, err := l.Descriptor()
	if err != nil {
		return errorResult(err)
	}
	if err := eng.Upsert(d); err != nil {
		return errorResult(err)
	}
	return okResult()
}

func removeLayer(this js.Value, args []js.Value) interface{} {
	if eng == nil || len(args) < 1 {
		return nil
	}
	if err := eng.Remove(args[0].String()); err != nil {
		return errorResult(err)
	}
	return okResult()
}

func setTooltipHandler(this js.Value, args []js.Value) interface{} {
	if len(args) > 0 {
		tooltip.fn = args[0]
	}
	return nil
}

// --- Query Handlers ---

// render returns the draw commands of every layer's latest geometry.
func render(this js.Value, args []js.Value) interface{} {
	if rec == nil {
		return js.ValueOf("[]")
	}
	out, err := engine.DrawCommandsToJSON(engine.CompileDrawCommands(rec.Layers()))
	if err != nil {
		return js.ValueOf("[]")
	}
	return js.ValueOf(out)
}

// getChanges returns the layer geometry changed since the previous call.
func getChanges(this js.Value, args []js.Value) interface{} {
	if rec == nil {
		return js.ValueOf("[]")
	}
	data, err := json.Marshal(rec.Drain())
	if err != nil {
		return js.ValueOf("[]")
	}
	return js.ValueOf(string(data))
}

func getState(this js.Value, args []js.Value) interface{} {
	if eng == nil {
		return nil
	}
	st := eng.State()
	out := map[string]interface{}{
		"mode":      eng.Mode().String(),
		"scale":     st.Scale,
		"translate": []interface{}{st.Translate.X, st.Translate.Y},
		"passes":    eng.Passes(),
	}
	if st.Rotation != nil {
		q := *st.Rotation
		out["rotation"] = []interface{}{q.W, q.V[0], q.V[1], q.V[2]}
	}
	return js.ValueOf(out)
}

func project(this js.Value, args []js.Value) interface{} {
	if eng == nil || len(args) < 2 {
		return nil
	}
	p := eng.Project(orb.Point{args[0].Float(), args[1].Float()})
	return js.ValueOf([]interface{}{p.X, p.Y})
}

func unproject(this js.Value, args []js.Value) interface{} {
	if eng == nil || len(args) < 2 {
		return nil
	}
	p := eng.Unproject(r2.Point{X: args[0].Float(), Y: args[1].Float()})
	return js.ValueOf([]interface{}{p[0], p[1]})
}

func isActive(this js.Value, args []js.Value) interface{} {
	return js.ValueOf(eng != nil && eng.Active())
}
