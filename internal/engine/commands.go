package engine

import (
	"encoding/json"
)

// DrawCommand represents a single drawing operation for the frontend to execute.
// The frontend receives a list of these and executes them on a Canvas2D context.
type DrawCommand struct {
	Op          string        `json:"op"`                    // Operation: "path", "text", "image", "save", "restore", "clip"
	LayerID     string        `json:"layerId,omitempty"`     // For hit correlation
	Feature     *int          `json:"feature,omitempty"`     // Feature index for marks
	Transform   []float64     `json:"transform,omitempty"`   // [a, b, c, d, e, f] affine matrix
	Path        []PathCommand `json:"path,omitempty"`        // Path data for "path" and "clip" ops
	Text        string        `json:"text,omitempty"`        // Label for "text" ops
	ImageURL    string        `json:"imageUrl,omitempty"`    // Tile URL for "image" ops
	ImageWidth  float64       `json:"imageWidth,omitempty"`  // Drawn image width
	ImageHeight float64       `json:"imageHeight,omitempty"` // Drawn image height
}

// CompileDrawCommands generates a draw command buffer from layer geometry.
// Commands are in painter's order (back to front). A clip path layer
// clips every layer after it.
func CompileDrawCommands(layers []LayerGeometry) []DrawCommand {
	var commands []DrawCommand
	clips := 0
	for _, l := range layers {
		if l.Removed || l.Geometry == nil {
			continue
		}
		switch g := l.Geometry.(type) {
		case PathGeometry:
			if len(g.Path) == 0 {
				continue
			}
			if g.Clip {
				commands = append(commands,
					DrawCommand{Op: "save"},
					DrawCommand{Op: "clip", LayerID: l.ID, Path: g.Path},
				)
				clips++
				continue
			}
			commands = append(commands, DrawCommand{Op: "path", LayerID: l.ID, Path: g.Path})
		case MarkGeometry:
			compileMarks(l.ID, g, &commands)
		case TileGeometry:
			for _, t := range g.Tiles {
				commands = append(commands, DrawCommand{
					Op:          "image",
					LayerID:     l.ID,
					Transform:   Translate(t.Screen.X, t.Screen.Y).ToSlice(),
					ImageURL:    t.URL,
					ImageWidth:  t.Screen.Width,
					ImageHeight: t.Screen.Height,
				})
			}
		case ScalebarGeometry:
			compileScalebar(l.ID, g, &commands)
		case NorthGeometry:
			if g.Hidden {
				continue
			}
			m := Translate(g.X, g.Y).Multiply(RotateDegrees(g.Angle))
			commands = append(commands, DrawCommand{
				Op:        "path",
				LayerID:   l.ID,
				Transform: m.ToSlice(),
				Path:      northArrowPath(),
			})
		}
	}
	for ; clips > 0; clips-- {
		commands = append(commands, DrawCommand{Op: "restore"})
	}
	return commands
}

func compileMarks(layerID string, g MarkGeometry, commands *[]DrawCommand) {
	for _, m := range g.Marks {
		if m.Hidden {
			continue
		}
		feature := m.Feature
		cmd := DrawCommand{Op: "path", LayerID: layerID, Feature: &feature}
		switch {
		case m.Label != "":
			cmd.Op = "text"
			cmd.Text = m.Label
			cmd.Transform = Translate(m.X, m.Y).ToSlice()
		case len(m.Path) > 0:
			cmd.Path = m.Path
		case m.Radius > 0:
			cmd.Transform = Translate(m.X, m.Y).ToSlice()
			cmd.Path = circlePath(m.Radius)
		default:
			continue
		}
		*commands = append(*commands, cmd)
	}
}

func compileScalebar(layerID string, g ScalebarGeometry, commands *[]DrawCommand) {
	if g.Hidden {
		return
	}
	const tick = 5.0
	m := Translate(g.X, g.Y)
	path := []PathCommand{{"M", 0.0, 0.0}, {"L", g.Length, 0.0}}
	for _, x := range g.Ticks {
		path = append(path, PathCommand{"M", x, 0.0}, PathCommand{"L", x, -tick})
	}
	*commands = append(*commands, DrawCommand{Op: "path", LayerID: layerID, Transform: m.ToSlice(), Path: path})
	for i, label := range g.Labels {
		if i >= len(g.Ticks) {
			break
		}
		*commands = append(*commands, DrawCommand{
			Op:        "text",
			LayerID:   layerID,
			Transform: m.Multiply(Translate(g.Ticks[i], -2*tick)).ToSlice(),
			Text:      label,
		})
	}
}

// circlePath generates path commands for a circle of radius r about the
// origin using bezier curves.
func circlePath(r float64) []PathCommand {
	// Magic number for bezier approximation of a circle
	// k = 4 * (sqrt(2) - 1) / 3 ≈ 0.5522847498
	k := r * 0.5522847498

	return []PathCommand{
		{"M", r, 0.0},
		{"C", r, k, k, r, 0.0, r},
		{"C", -k, r, -r, k, -r, 0.0},
		{"C", -r, -k, -k, -r, 0.0, -r},
		{"C", k, -r, r, -k, r, 0.0},
		{"Z"},
	}
}

// northArrowPath is an arrow pointing up from the origin.
func northArrowPath() []PathCommand {
	return []PathCommand{
		{"M", 0.0, -20.0},
		{"L", 6.0, 0.0},
		{"L", 0.0, -5.0},
		{"L", -6.0, 0.0},
		{"Z"},
	}
}

// DrawCommandsToJSON serializes draw commands to JSON.
func DrawCommandsToJSON(commands []DrawCommand) (string, error) {
	data, err := json.Marshal(commands)
	if err != nil {
		return "[]", err
	}
	return string(data), nil
}
