package session

import (
	"encoding/json"

	"github.com/inamate/geoview/internal/engine"
)

type Message struct {
	Type      string          `json:"type"`
	SessionID string          `json:"sessionId,omitempty"`
	Seq       int64           `json:"seq,omitempty"`
	Payload   json.RawMessage `json:"payload,omitempty"`
}

const (
	// Inbound
	TypeSceneLoad     = "scene.load"
	TypePointerDown   = "pointer.down"
	TypePointerMove   = "pointer.move"
	TypePointerUp     = "pointer.up"
	TypePointerCancel = "pointer.cancel"
	TypeWheel         = "wheel"
	TypeZoom          = "zoom"
	TypeReset         = "reset"
	TypeLayerUpsert   = "layer.upsert"
	TypeLayerRemove   = "layer.remove"

	// Outbound
	TypeWelcome    = "welcome"
	TypeSceneReady = "scene.ready"
	TypeGeometry   = "geometry"
	TypeTooltip    = "tooltip"
	TypeError      = "error"
)

// Sample scene names accepted by scene.load.
const (
	SampleGlobe = "globe"
	SampleTiles = "tiles"
)

// SceneLoadPayload carries either an inline scene or the name of a sample.
type SceneLoadPayload struct {
	Sample string          `json:"sample,omitempty"`
	Scene  json.RawMessage `json:"scene,omitempty"`
}

type PointerPayload struct {
	ID int     `json:"id"`
	X  float64 `json:"x"`
	Y  float64 `json:"y"`
}

type WheelPayload struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	DeltaY float64 `json:"deltaY"`
}

type ZoomPayload struct {
	Factor float64 `json:"factor"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
}

type LayerRemovePayload struct {
	ID string `json:"id"`
}

type WelcomePayload struct {
	SessionID string `json:"sessionId"`
	// Peer is the reconnect key; the browser passes it back as ?client=.
	Peer    string `json:"peer"`
	Resumed bool   `json:"resumed,omitempty"`
}

type SceneReadyPayload struct {
	SceneID string                 `json:"sceneId"`
	Name    string                 `json:"name"`
	Width   int                    `json:"width"`
	Height  int                    `json:"height"`
	Mode    string                 `json:"mode"`
	Layers  []engine.LayerGeometry `json:"layers"`
}

// GeometryPayload lists the layers that changed while handling one inbound
// message.
type GeometryPayload struct {
	Update string                 `json:"update,omitempty"`
	Scale  float64                `json:"scale"`
	Passes int                    `json:"passes"`
	Layers []engine.LayerGeometry `json:"layers"`
}

type TooltipPayload struct {
	Visible bool `json:"visible"`
}

type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Request string `json:"request,omitempty"`
}
