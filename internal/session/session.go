// Package session serves live map scenes over websockets. Every connection
// owns one engine and feeds it the connection's input messages in order.
package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/golang/geo/r2"

	"github.com/inamate/geoview/internal/document"
	"github.com/inamate/geoview/internal/engine"
	"github.com/inamate/geoview/internal/layer"
)

// Error codes of outbound error messages.
const (
	CodeBadPayload   = "bad_payload"
	CodeNoScene      = "no_scene"
	CodeInvalidScene = "invalid_scene"
	CodeLayer        = "layer"
	CodeUnknownType  = "unknown_type"
)

// Options configures every session of a hub.
type Options struct {
	Engine  engine.Options
	TileURL string
}

// tooltip counts hides between two messages.
type tooltip struct{ hides int }

func (t *tooltip) SetVisible(v bool) {
	if !v {
		t.hides++
	}
}

// Session is the engine state of one connection. It is not safe for
// concurrent use; the owning client calls Handle from its read loop.
type Session struct {
	ID   string
	opts Options

	scene *document.Scene
	eng   *engine.Engine
	rec   *engine.Recorder
	tip   *tooltip
	seq   int64
}

func New(id string, opts Options) *Session {
	return &Session{ID: id, opts: opts}
}

// Scene returns the loaded scene, or nil.
func (s *Session) Scene() *document.Scene { return s.scene }

// Engine returns the engine of the loaded scene, or nil.
func (s *Session) Engine() *engine.Engine { return s.eng }

// Handle applies one inbound message and returns the replies: scene.ready
// for a load, otherwise the tooltip and geometry changes it caused, or an
// error.
func (s *Session) Handle(msg *Message) []*Message {
	if msg.Type == TypeSceneLoad {
		return s.handleLoad(msg)
	}
	if s.eng == nil {
		return []*Message{s.errorMessage(msg, CodeNoScene, "no scene loaded")}
	}

	if err := s.apply(msg); err != nil {
		slog.Debug("session message rejected", "session", s.ID, "type", msg.Type, "error", err)
		return []*Message{s.errorMessage(msg, errorCode(err), err.Error())}
	}
	s.eng.Flush()
	return s.collect()
}

type codedError struct {
	code string
	err  error
}

func (e *codedError) Error() string { return e.err.Error() }
func (e *codedError) Unwrap() error { return e.err }

func withCode(code string, err error) error { return &codedError{code: code, err: err} }

func errorCode(err error) string {
	var ce *codedError
	if errors.As(err, &ce) {
		return ce.code
	}
	return CodeBadPayload
}

func (s *Session) apply(msg *Message) error {
	switch msg.Type {
	case TypePointerDown, TypePointerMove, TypePointerUp:
		var p PointerPayload
		if err := decode(msg, &p); err != nil {
			return err
		}
		pt := r2.Point{X: p.X, Y: p.Y}
		switch msg.Type {
		case TypePointerDown:
			s.eng.PointerDown(p.ID, pt)
		case TypePointerMove:
			s.eng.PointerMove(p.ID, pt)
		default:
			s.eng.PointerUp(p.ID, pt)
		}
	case TypePointerCancel:
		s.eng.PointerCancel()
	case TypeWheel:
		var p WheelPayload
		if err := decode(msg, &p); err != nil {
			return err
		}
		s.eng.Wheel(r2.Point{X: p.X, Y: p.Y}, p.DeltaY)
	case TypeZoom:
		var p ZoomPayload
		if err := decode(msg, &p); err != nil {
			return err
		}
		s.eng.ZoomBy(p.Factor, r2.Point{X: p.X, Y: p.Y})
	case TypeReset:
		s.eng.Reset()
	case TypeLayerUpsert:
		var l document.Layer
		if err := decode(msg, &l); err != nil {
			return err
		}
		if l.ID == "" {
			l.ID = layer.NewID()
		}
		d, err := l.Descriptor()
		if err != nil {
			return withCode(CodeLayer, err)
		}
		if err := s.eng.Upsert(d); err != nil {
			return withCode(CodeLayer, err)
		}
	case TypeLayerRemove:
		var p LayerRemovePayload
		if err := decode(msg, &p); err != nil {
			return err
		}
		if err := s.eng.Remove(p.ID); err != nil {
			return withCode(CodeLayer, err)
		}
	default:
		return withCode(CodeUnknownType, fmt.Errorf("unknown message type %q", msg.Type))
	}
	return nil
}

func (s *Session) handleLoad(msg *Message) []*Message {
	var p SceneLoadPayload
	if err := decode(msg, &p); err != nil {
		return []*Message{s.errorMessage(msg, CodeBadPayload, err.Error())}
	}

	scene, err := s.loadScene(p)
	if err == nil {
		err = s.start(scene)
	}
	if err != nil {
		slog.Warn("scene load failed", "session", s.ID, "error", err)
		return []*Message{s.errorMessage(msg, CodeInvalidScene, err.Error())}
	}

	ready := s.Ready()
	slog.Info("scene loaded", "session", s.ID, "scene", scene.ID, "layers", len(s.scene.Layers))
	return []*Message{ready}
}

// Ready renders every layer at the current view and returns the
// scene.ready message, or nil before a scene is loaded.
func (s *Session) Ready() *Message {
	if s.eng == nil {
		return nil
	}
	s.eng.Render()
	s.tip.hides = 0
	return s.message(TypeSceneReady, SceneReadyPayload{
		SceneID: s.scene.ID,
		Name:    s.scene.Name,
		Width:   s.scene.Width,
		Height:  s.scene.Height,
		Mode:    s.eng.Mode().String(),
		Layers:  s.rec.Drain(),
	})
}

func (s *Session) loadScene(p SceneLoadPayload) (*document.Scene, error) {
	if len(p.Scene) > 0 {
		return document.Parse(p.Scene)
	}
	switch p.Sample {
	case SampleGlobe, "":
		return document.NewSampleScene(""), nil
	case SampleTiles:
		return document.NewSampleTileScene("", s.opts.TileURL), nil
	}
	return nil, fmt.Errorf("%w: unknown sample %q", document.ErrInvalidScene, p.Sample)
}

// start replaces the running engine, if any.
func (s *Session) start(scene *document.Scene) error {
	rec := engine.NewRecorder()
	tip := &tooltip{}
	eng, err := engine.NewFromScene(scene, s.opts.Engine, rec, tip)
	if err != nil {
		return err
	}
	s.scene, s.eng, s.rec, s.tip = scene, eng, rec, tip
	return nil
}

func (s *Session) collect() []*Message {
	var out []*Message
	if s.tip.hides > 0 {
		s.tip.hides = 0
		out = append(out, s.message(TypeTooltip, TooltipPayload{Visible: false}))
	}
	if layers := s.rec.Drain(); len(layers) > 0 {
		st := s.eng.State()
		out = append(out, s.message(TypeGeometry, GeometryPayload{
			Update: s.eng.LastUpdate().Kind.String(),
			Scale:  st.Scale,
			Passes: s.eng.Passes(),
			Layers: layers,
		}))
	}
	return out
}

func decode(msg *Message, v any) error {
	if len(msg.Payload) == 0 {
		return nil
	}
	if err := json.Unmarshal(msg.Payload, v); err != nil {
		return withCode(CodeBadPayload, fmt.Errorf("%s payload: %w", msg.Type, err))
	}
	return nil
}

func (s *Session) message(typ string, payload any) *Message {
	data, err := json.Marshal(payload)
	if err != nil {
		slog.Error("marshal payload", "type", typ, "error", err)
		data = nil
	}
	s.seq++
	return &Message{Type: typ, SessionID: s.ID, Seq: s.seq, Payload: data}
}

func (s *Session) errorMessage(req *Message, code, text string) *Message {
	return s.message(TypeError, ErrorPayload{Code: code, Message: text, Request: req.Type})
}
