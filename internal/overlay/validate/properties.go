package validate

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"

	types "github.com/yungbote/overlay-backend/internal/domain"
)

type Position struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Anchor string  `json:"anchor,omitempty"`
}

// Dimension is a fraction of the overlay, or Auto to derive it from the media.
type Dimension struct {
	Value float64
	Auto  bool
}

func (d Dimension) MarshalJSON() ([]byte, error) {
	if d.Auto {
		return []byte(`"auto"`), nil
	}
	return json.Marshal(d.Value)
}

type Size struct {
	Width  *Dimension `json:"width,omitempty"`
	Height *Dimension `json:"height,omitempty"`
}

type propertyRule func(key string, v any, errs *errorList)

var propertyRules = map[string]propertyRule{
	"position": func(_ string, v any, errs *errorList) { _ = decodePosition(v, errs) },
	"size":     func(_ string, v any, errs *errorList) { _ = decodeSize(v, errs) },

	"opacity":      unitInterval,
	"volume":       unitInterval,
	"rotation":     anyNumber,
	"value":        anyNumber,
	"step":         anyNumber,
	"scale_x":      positiveNumber,
	"scale_y":      positiveNumber,
	"font_size":    positiveNumber,
	"aspect_ratio": positiveNumber,
	"duration_ms":  nonNegativeNumber,

	"z_index":        integer,
	"particle_count": nonNegativeInteger,

	"revealed": boolean,
	"autoplay": boolean,
	"loop":     boolean,
	"muted":    boolean,

	"text":        str,
	"front_text":  str,
	"back_text":   str,
	"font_family": str,
	"color":       str,
	"format":      str,
	"media_roles": stringList,
}

// ValidateProperties checks a full property set against the allow-list and
// structural rules for et. Every violation is reported, ordered by key.
func ValidateProperties(et types.ElementType, props map[string]any) (bool, []string) {
	errs := &errorList{}
	set, ok := allowed[et]
	if !ok {
		errs.addf("unknown element type '%s'", et)
		return false, errs.list()
	}

	names := make([]string, 0, len(props))
	for k := range props {
		names = append(names, k)
	}
	sort.Strings(names)

	for _, k := range names {
		if _, ok := set[k]; !ok {
			errs.addf("property '%s' is not allowed for %s elements", k, et)
			continue
		}
		if rule, ok := propertyRules[k]; ok {
			rule(k, props[k], errs)
		}
	}
	return errs.empty(), errs.list()
}

// DecodePosition parses a position object, returning any violations.
func DecodePosition(v any) (Position, []string) {
	errs := &errorList{}
	p := decodePosition(v, errs)
	return p, errs.list()
}

func decodePosition(v any, errs *errorList) Position {
	var p Position
	obj, ok := v.(map[string]any)
	if !ok {
		errs.add("position must be an object")
		return p
	}
	p.X = coordinate(obj, "x", errs)
	p.Y = coordinate(obj, "y", errs)
	if raw, ok := obj["anchor"]; ok {
		anchor, isStr := raw.(string)
		if !isStr || !inCatalog(Anchors, anchor) {
			errs.addf("position.anchor must be one of: %s", joinCatalog(Anchors))
		} else {
			p.Anchor = anchor
		}
	}
	for _, k := range sortedKeys(obj) {
		if k != "x" && k != "y" && k != "anchor" {
			errs.addf("position.%s is not allowed", k)
		}
	}
	return p
}

func coordinate(obj map[string]any, key string, errs *errorList) float64 {
	raw, ok := obj[key]
	if !ok {
		errs.addf("position.%s is required", key)
		return 0
	}
	f, ok := asNumber(raw)
	if !ok {
		errs.addf("position.%s must be a number", key)
		return 0
	}
	if f < 0 || f > 1 {
		errs.addf("position.%s must be between 0 and 1, got %v", key, f)
	}
	return f
}

func DecodeSize(v any) (Size, []string) {
	errs := &errorList{}
	s := decodeSize(v, errs)
	return s, errs.list()
}

func decodeSize(v any, errs *errorList) Size {
	var s Size
	obj, ok := v.(map[string]any)
	if !ok {
		errs.add("size must be an object")
		return s
	}
	s.Width = dimension(obj, "width", errs)
	s.Height = dimension(obj, "height", errs)
	for _, k := range sortedKeys(obj) {
		if k != "width" && k != "height" {
			errs.addf("size.%s is not allowed", k)
		}
	}
	return s
}

func dimension(obj map[string]any, key string, errs *errorList) *Dimension {
	raw, ok := obj[key]
	if !ok {
		return nil
	}
	if s, isStr := raw.(string); isStr && s == "auto" {
		return &Dimension{Auto: true}
	}
	f, isNum := asNumber(raw)
	if !isNum || f <= 0 || f > 1 {
		errs.addf(`size.%s must be a number in (0, 1] or "auto", got %v`, key, raw)
		return nil
	}
	return &Dimension{Value: f}
}

func unitInterval(key string, v any, errs *errorList) {
	f, ok := asNumber(v)
	if !ok {
		errs.addf("%s must be a number", key)
		return
	}
	if f < 0 || f > 1 {
		errs.addf("%s must be between 0 and 1, got %v", key, f)
	}
}

func anyNumber(key string, v any, errs *errorList) {
	if _, ok := asNumber(v); !ok {
		errs.addf("%s must be a number", key)
	}
}

func positiveNumber(key string, v any, errs *errorList) {
	f, ok := asNumber(v)
	if !ok || f <= 0 {
		errs.addf("%s must be a number greater than 0, got %v", key, v)
	}
}

func nonNegativeNumber(key string, v any, errs *errorList) {
	f, ok := asNumber(v)
	if !ok || f < 0 {
		errs.addf("%s must be a non-negative number, got %v", key, v)
	}
}

func integer(key string, v any, errs *errorList) {
	if _, ok := asInteger(v); !ok {
		errs.addf("%s must be an integer", key)
	}
}

func nonNegativeInteger(key string, v any, errs *errorList) {
	n, ok := asInteger(v)
	if !ok || n < 0 {
		errs.addf("%s must be a non-negative integer", key)
	}
}

func boolean(key string, v any, errs *errorList) {
	if _, ok := v.(bool); !ok {
		errs.addf("%s must be boolean", key)
	}
}

func str(key string, v any, errs *errorList) {
	if _, ok := v.(string); !ok {
		errs.addf("%s must be a string", key)
	}
}

func stringList(key string, v any, errs *errorList) {
	switch list := v.(type) {
	case []string:
		return
	case []any:
		for _, item := range list {
			if _, ok := item.(string); !ok {
				errs.addf("%s must be a list of strings", key)
				return
			}
		}
	default:
		errs.addf("%s must be a list of strings", key)
	}
}

// asNumber accepts every Go numeric kind plus json.Number. Booleans, NaN and
// infinities are not numbers here.
func asNumber(v any) (float64, bool) {
	var f float64
	switch n := v.(type) {
	case float64:
		f = n
	case float32:
		f = float64(n)
	case int:
		f = float64(n)
	case int8:
		f = float64(n)
	case int16:
		f = float64(n)
	case int32:
		f = float64(n)
	case int64:
		f = float64(n)
	case uint:
		f = float64(n)
	case uint8:
		f = float64(n)
	case uint16:
		f = float64(n)
	case uint32:
		f = float64(n)
	case uint64:
		f = float64(n)
	case json.Number:
		parsed, err := n.Float64()
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

func asInteger(v any) (int64, bool) {
	f, ok := asNumber(v)
	if !ok || f != math.Trunc(f) {
		return 0, false
	}
	return int64(f), true
}

func sortedKeys(m map[string]any) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

type errorList struct {
	items []string
}

func (e *errorList) add(msg string) { e.items = append(e.items, msg) }

func (e *errorList) addf(format string, args ...any) {
	e.items = append(e.items, fmt.Sprintf(format, args...))
}

func (e *errorList) empty() bool { return len(e.items) == 0 }

// list never returns nil so callers can compare against an empty slice.
func (e *errorList) list() []string {
	if e.items == nil {
		return []string{}
	}
	return e.items
}
