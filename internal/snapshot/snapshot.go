// Package snapshot decodes widget-tree snapshots written by an extractor.
//
// Snapshots are JSON or YAML documents. Both are checked against the
// embedded JSON Schema before decoding, and colors may still be light/dark
// pairs until Resolve picks one for an appearance mode.
package snapshot

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pthm/widgetlint/internal/color"
	"github.com/pthm/widgetlint/internal/widget"
	"github.com/xeipuuv/gojsonschema"
	"gopkg.in/yaml.v3"
)

//go:embed schema.json
var schemaJSON []byte

var schemaLoader = gojsonschema.NewBytesLoader(schemaJSON)

// Schema returns the JSON Schema snapshots are validated against.
func Schema() []byte {
	return schemaJSON
}

// Format is the encoding of a snapshot file.
type Format int

const (
	FormatJSON Format = iota
	FormatYAML
)

// FormatFor picks a format from a file extension, defaulting to JSON.
func FormatFor(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	}
	return FormatJSON
}

// FieldError is one schema violation.
type FieldError struct {
	Field   string
	Message string
}

// SchemaError lists every schema violation found in a document.
type SchemaError struct {
	Errors []FieldError
}

func (e *SchemaError) Error() string {
	var sb strings.Builder
	sb.WriteString("snapshot does not match schema:\n")
	for i, fe := range e.Errors {
		sb.WriteString(fmt.Sprintf("  %d. %s: %s\n", i+1, fe.Field, fe.Message))
	}
	return sb.String()
}

// Document is a decoded snapshot whose colors are not yet resolved.
type Document struct {
	AppearanceMode string               `json:"appearance_mode"`
	TabOrder       []string             `json:"tab_order"`
	Interactions   []widget.Interaction `json:"interactions"`
	Root           *rawNode             `json:"root"`
}

type rawNode struct {
	ID     string `json:"id"`
	TestID string `json:"test_id"`
	Type   string `json:"widget_type"`

	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
	AbsX   int `json:"abs_x"`
	AbsY   int `json:"abs_y"`

	FgColor      color.Value `json:"fg_color"`
	BgColor      color.Value `json:"bg_color"`
	BorderColor  color.Value `json:"border_color"`
	FontFamily   string      `json:"font_family"`
	FontSize     int         `json:"font_size"`
	FontWeight   string      `json:"font_weight"`
	CornerRadius *int        `json:"corner_radius"`
	BorderWidth  *int        `json:"border_width"`

	Text            string   `json:"text"`
	PlaceholderText string   `json:"placeholder_text"`
	HasCommand      bool     `json:"has_command"`
	HasImage        bool     `json:"has_image"`
	Values          []string `json:"values"`
	Enabled         *bool    `json:"enabled"`
	Visible         *bool    `json:"visible"`
	Visibility      *bool    `json:"visibility"`
	Suppressed      bool     `json:"suppressed"`
	TakeFocus       *bool    `json:"take_focus"`
	Title           string   `json:"title"`
	ActiveTab       string   `json:"active_tab"`
	TabName         string   `json:"tab_name"`

	ParentID      string               `json:"parent_id"`
	LayoutManager widget.LayoutManager `json:"layout_manager"`
	LayoutDetail  map[string]any       `json:"layout_detail"`
	Padding       widget.Padding       `json:"padding"`
	Children      []*rawNode           `json:"children"`
}

// Load reads and decodes the snapshot at path.
func Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot: %w", err)
	}
	doc, err := Decode(data, FormatFor(path))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return doc, nil
}

// Decode validates data against the schema and decodes it.
func Decode(data []byte, f Format) (*Document, error) {
	if f == FormatYAML {
		var err error
		if data, err = yamlToJSON(data); err != nil {
			return nil, err
		}
	}

	result, err := gojsonschema.Validate(schemaLoader, gojsonschema.NewBytesLoader(data))
	if err != nil {
		return nil, fmt.Errorf("parsing snapshot: %w", err)
	}
	if !result.Valid() {
		serr := &SchemaError{Errors: make([]FieldError, 0, len(result.Errors()))}
		for _, desc := range result.Errors() {
			field := desc.Field()
			if field == "" {
				field = "(root)"
			}
			serr.Errors = append(serr.Errors, FieldError{Field: field, Message: desc.Description()})
		}
		return nil, serr
	}

	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decoding snapshot: %w", err)
	}
	return &doc, nil
}

func yamlToJSON(data []byte) ([]byte, error) {
	var v any
	if err := yaml.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("parsing snapshot: %w", err)
	}
	out, err := json.Marshal(stringKeys(v))
	if err != nil {
		return nil, fmt.Errorf("converting snapshot: %w", err)
	}
	return out, nil
}

// stringKeys rewrites YAML maps with non-string keys so encoding/json accepts them.
func stringKeys(v any) any {
	switch t := v.(type) {
	case map[string]any:
		for k, val := range t {
			t[k] = stringKeys(val)
		}
		return t
	case map[any]any:
		m := make(map[string]any, len(t))
		for k, val := range t {
			m[fmt.Sprint(k)] = stringKeys(val)
		}
		return m
	case []any:
		for i, val := range t {
			t[i] = stringKeys(val)
		}
		return t
	}
	return v
}

// Mode returns the document's appearance mode, or override when set.
func (d *Document) Mode(override string) (color.Mode, error) {
	if override != "" {
		return color.ParseMode(override)
	}
	return color.ParseMode(d.AppearanceMode)
}

// Resolve builds the widget tree, picking the member of every light/dark
// color pair that matches mode.
func (d *Document) Resolve(mode color.Mode) *widget.Node {
	return d.Root.resolve(mode)
}

func (r *rawNode) resolve(mode color.Mode) *widget.Node {
	id := r.ID
	if id == "" {
		id = r.TestID
	}
	visible := true
	switch {
	case r.Visible != nil:
		visible = *r.Visible
	case r.Visibility != nil:
		visible = *r.Visibility
	}
	enabled := r.Enabled == nil || *r.Enabled

	n := &widget.Node{
		ID:     id,
		Type:   r.Type,
		X:      r.X,
		Y:      r.Y,
		Width:  r.Width,
		Height: r.Height,
		AbsX:   r.AbsX,
		AbsY:   r.AbsY,

		FgColor:      color.Resolve(r.FgColor, mode),
		BgColor:      color.Resolve(r.BgColor, mode),
		BorderColor:  color.Resolve(r.BorderColor, mode),
		FontFamily:   r.FontFamily,
		FontSize:     r.FontSize,
		FontWeight:   r.FontWeight,
		CornerRadius: r.CornerRadius,
		BorderWidth:  r.BorderWidth,

		Text:            r.Text,
		PlaceholderText: r.PlaceholderText,
		HasCommand:      r.HasCommand,
		HasImage:        r.HasImage,
		Values:          r.Values,
		Enabled:         enabled,
		Visible:         visible,
		Suppressed:      r.Suppressed,
		TakeFocus:       r.TakeFocus,
		Title:           r.Title,
		ActiveTab:       r.ActiveTab,
		TabName:         r.TabName,

		ParentID:      r.ParentID,
		LayoutManager: r.LayoutManager,
		LayoutDetail:  r.LayoutDetail,
		Padding:       r.Padding,
	}
	for _, c := range r.Children {
		n.Children = append(n.Children, c.resolve(mode))
	}
	return n
}
