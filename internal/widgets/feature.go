package widgets

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
)

// FeatureFunc runs a feature against a live instance. Params has already been
// checked against the feature's parameter schema.
type FeatureFunc func(ctx context.Context, inst *Instance, p Params) (any, error)

type Param struct {
	Name        string   `json:"name"`
	Type        string   `json:"type"`
	Label       string   `json:"label,omitempty"`
	Optional    bool     `json:"optional,omitempty"`
	Default     any      `json:"default,omitempty"`
	Options     []string `json:"options,omitempty"`
	Min         *float64 `json:"min,omitempty"`
	Max         *float64 `json:"max,omitempty"`
	Step        *float64 `json:"step,omitempty"`
	Placeholder string   `json:"placeholder,omitempty"`
}

// Parameter types understood by the schema check. Anything else is passed
// through unchecked.
const (
	ParamNumber   = "number"
	ParamInteger  = "integer"
	ParamSlider   = "slider"
	ParamString   = "string"
	ParamBoolean  = "boolean"
	ParamSelect   = "select"
	ParamDropdown = "dropdown"
	ParamColor    = "color-picker"
)

type Feature struct {
	MethodName  string
	DisplayName string
	Description string
	Order       float64
	Parameters  []Param
	Run         FeatureFunc
}

type FeatureInfo struct {
	MethodName  string  `json:"method_name"`
	DisplayName string  `json:"display_name"`
	Description string  `json:"description"`
	Order       float64 `json:"order"`
	Parameters  []Param `json:"parameters"`
}

func (f Feature) Info() FeatureInfo {
	params := f.Parameters
	if params == nil {
		params = []Param{}
	}
	return FeatureInfo{
		MethodName:  f.MethodName,
		DisplayName: f.DisplayName,
		Description: f.Description,
		Order:       f.Order,
		Parameters:  params,
	}
}

// FeatureSet is the static feature table of a widget type.
type FeatureSet struct {
	items []Feature
}

func NewFeatureSet(features ...Feature) *FeatureSet {
	fs := &FeatureSet{}
	for _, f := range features {
		fs.Add(f)
	}
	return fs
}

func (fs *FeatureSet) Add(f Feature) *FeatureSet {
	if f.DisplayName == "" {
		f.DisplayName = f.MethodName
	}
	fs.items = append(fs.items, f)
	return fs
}

func (fs *FeatureSet) declared() []Feature {
	if fs == nil {
		return nil
	}
	return fs.items
}

// Features returns the set ordered by Order; equal orders keep declaration order.
func (fs *FeatureSet) Features() []Feature {
	out := append([]Feature(nil), fs.declared()...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Order < out[j].Order })
	return out
}

func (fs *FeatureSet) Info() []FeatureInfo {
	ordered := fs.Features()
	out := make([]FeatureInfo, 0, len(ordered))
	for _, f := range ordered {
		out = append(out, f.Info())
	}
	return out
}

func (fs *FeatureSet) Lookup(name string) (Feature, bool) {
	for _, f := range fs.declared() {
		if f.MethodName == name {
			return f, true
		}
	}
	return Feature{}, false
}

// expand checks raw against the schema and fills defaults. Numbers are
// normalized to float64.
func (f Feature) expand(raw map[string]any) (Params, error) {
	out := make(Params, len(f.Parameters))
	declared := make(map[string]struct{}, len(f.Parameters))
	for _, p := range f.Parameters {
		declared[p.Name] = struct{}{}
		v, ok := raw[p.Name]
		if !ok || v == nil {
			switch {
			case p.Default != nil:
				out[p.Name] = p.Default
			case p.Optional:
			default:
				return nil, fmt.Errorf("%w: %s", ErrMissingParameter, p.Name)
			}
			continue
		}
		norm, err := p.check(v)
		if err != nil {
			return nil, err
		}
		out[p.Name] = norm
	}

	var extra []string
	for k := range raw {
		if _, ok := declared[k]; !ok {
			extra = append(extra, k)
		}
	}
	if len(extra) > 0 {
		sort.Strings(extra)
		return nil, fmt.Errorf("%w: %s", ErrUnexpectedParameter, strings.Join(extra, ", "))
	}
	return out, nil
}

func (p Param) check(v any) (any, error) {
	switch p.Type {
	case ParamNumber, ParamInteger, ParamSlider:
		n, ok := toFloat(v)
		if !ok {
			return nil, fmt.Errorf("%w: %s must be a number", ErrInvalidParameter, p.Name)
		}
		if p.Type == ParamInteger && n != math.Trunc(n) {
			return nil, fmt.Errorf("%w: %s must be an integer", ErrInvalidParameter, p.Name)
		}
		if p.Min != nil && n < *p.Min {
			return nil, fmt.Errorf("%w: %s must be >= %v", ErrInvalidParameter, p.Name, *p.Min)
		}
		if p.Max != nil && n > *p.Max {
			return nil, fmt.Errorf("%w: %s must be <= %v", ErrInvalidParameter, p.Name, *p.Max)
		}
		return n, nil
	case ParamString, ParamColor:
		s, ok := v.(string)
		if !ok {
			return nil, fmt.Errorf("%w: %s must be a string", ErrInvalidParameter, p.Name)
		}
		return s, nil
	case ParamBoolean:
		b, ok := v.(bool)
		if !ok {
			return nil, fmt.Errorf("%w: %s must be boolean", ErrInvalidParameter, p.Name)
		}
		return b, nil
	case ParamSelect, ParamDropdown:
		s := fmt.Sprint(v)
		for _, opt := range p.Options {
			if opt == s {
				return s, nil
			}
		}
		return nil, fmt.Errorf("%w: %s must be one of: %s", ErrInvalidParameter, p.Name, strings.Join(p.Options, ", "))
	}
	return v, nil
}

// Params are the expanded arguments of one feature call.
type Params map[string]any

func (p Params) String(key string) string {
	s, _ := p[key].(string)
	return s
}

func (p Params) Float(key string, def float64) float64 {
	if n, ok := toFloat(p[key]); ok {
		return n
	}
	return def
}

func (p Params) Int(key string, def int) int {
	if n, ok := toFloat(p[key]); ok {
		return int(n)
	}
	return def
}

func (p Params) Bool(key string) bool {
	b, _ := p[key].(bool)
	return b
}

func (p Params) Has(key string) bool {
	_, ok := p[key]
	return ok
}

func toFloat(v any) (float64, bool) {
	var n float64
	switch x := v.(type) {
	case float64:
		n = x
	case float32:
		n = float64(x)
	case int:
		n = float64(x)
	case int32:
		n = float64(x)
	case int64:
		n = float64(x)
	case uint:
		n = float64(x)
	case json.Number:
		f, err := x.Float64()
		if err != nil {
			return 0, false
		}
		n = f
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		if err != nil {
			return 0, false
		}
		n = f
	default:
		return 0, false
	}
	if math.IsNaN(n) || math.IsInf(n, 0) {
		return 0, false
	}
	return n, true
}
