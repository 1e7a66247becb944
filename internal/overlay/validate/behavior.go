package validate

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/yungbote/overlay-backend/internal/platform/logger"
)

// Step is one decoded behavior step. Durations are milliseconds.
type Step struct {
	Type       StepType
	Animation  string
	Duration   *float64
	Properties []PropertyAnimation
	Set        map[string]any
}

type PropertyAnimation struct {
	Property   string
	From       any
	To         any
	Duration   float64
	Modulation *Modulation
}

// Modulation is an easing curve: a catalog name, or a typed object such as
// {"type": "cubic-bezier", "points": [...]}.
type Modulation struct {
	Type   string
	Params map[string]any
}

// ParseBehavior decodes a behavior document into steps, collecting every
// structural violation. Steps with violations are left out of the result.
func ParseBehavior(v any) ([]Step, []string) {
	errs := &errorList{}
	list, ok := asList(v)
	if !ok {
		errs.addf("behavior must be a list, got %s", kindOf(v))
		return nil, errs.list()
	}
	steps := make([]Step, 0, len(list))
	for i, raw := range list {
		before := len(errs.items)
		step := parseStep(i, raw, errs)
		if len(errs.items) == before {
			steps = append(steps, step)
		}
	}
	return steps, errs.list()
}

// ValidateBehavior reports whether v is a structurally valid behavior list.
// It never mutates or executes the steps.
func ValidateBehavior(v any) (bool, []string) {
	_, errs := ParseBehavior(v)
	return len(errs) == 0, errs
}

// ValidateAndLogBehavior logs violations as warnings instead of failing the caller.
func ValidateAndLogBehavior(log *logger.Logger, v any, context string) bool {
	ok, errs := ValidateBehavior(v)
	if ok {
		return true
	}
	if context == "" {
		context = "element"
	}
	if log != nil {
		for _, e := range errs {
			log.Warn("invalid behavior", "context", context, "error", e)
		}
	}
	return false
}

// StepDuration is the time a step occupies in the sequence.
func StepDuration(s Step) float64 {
	switch s.Type {
	case StepSet:
		return 0
	case StepAnimateProperty:
		var longest float64
		for _, p := range s.Properties {
			if p.Duration > longest {
				longest = p.Duration
			}
		}
		return longest
	default:
		if s.Duration == nil {
			return 0
		}
		return *s.Duration
	}
}

// TotalDuration sums step durations in order; overlap is not modelled.
func TotalDuration(steps []Step) float64 {
	var total float64
	for _, s := range steps {
		total += StepDuration(s)
	}
	return total
}

// BehaviorDuration parses v and returns its total duration, or an error
// listing the violations.
func BehaviorDuration(v any) (float64, error) {
	steps, errs := ParseBehavior(v)
	if len(errs) > 0 {
		return 0, fmt.Errorf("invalid behavior: %s", strings.Join(errs, "; "))
	}
	return TotalDuration(steps), nil
}

func parseStep(i int, raw any, errs *errorList) Step {
	var s Step
	obj, ok := raw.(map[string]any)
	if !ok {
		errs.addf("Step %d: step must be an object, got %s", i, kindOf(raw))
		return s
	}
	rawType, ok := obj["type"]
	if !ok {
		errs.addf("Step %d: missing required field 'type'", i)
		return s
	}
	typeName, _ := rawType.(string)
	s.Type = StepType(typeName)

	switch s.Type {
	case StepAppear, StepDisappear:
		s.Animation = optionalAnimation(i, obj, errs)
		s.Duration = optionalDuration(i, obj, errs)
	case StepAnimate:
		if _, ok := obj["animation"]; !ok {
			errs.addf("Step %d: 'animate' requires 'animation' field", i)
		} else {
			s.Animation = optionalAnimation(i, obj, errs)
		}
		s.Duration = optionalDuration(i, obj, errs)
	case StepWait:
		if _, ok := obj["duration"]; !ok {
			errs.addf("Step %d: 'wait' requires 'duration' field", i)
		} else {
			s.Duration = optionalDuration(i, obj, errs)
		}
	case StepSet:
		props, ok := obj["properties"]
		if !ok {
			errs.addf("Step %d: 'set' requires 'properties' field", i)
			break
		}
		m, isObj := props.(map[string]any)
		if !isObj {
			errs.addf("Step %d: 'properties' must be an object, got %s", i, kindOf(props))
			break
		}
		// Keys are not checked against the element's property schema here.
		s.Set = m
	case StepAnimateProperty:
		s.Properties = parsePropertyAnimations(i, obj, errs)
	default:
		errs.addf("Step %d: invalid step type '%v'. Must be one of: %s", i, rawType, joinCatalog(stepTypeNames()))
	}
	return s
}

func optionalAnimation(i int, obj map[string]any, errs *errorList) string {
	raw, ok := obj["animation"]
	if !ok {
		return ""
	}
	name, isStr := raw.(string)
	if !isStr {
		errs.addf("Step %d: 'animation' must be a string, got %s", i, kindOf(raw))
		return ""
	}
	if !inCatalog(Animations, name) {
		errs.addf("Step %d: invalid animation '%s'. Valid: %s", i, name, joinCatalog(Animations))
		return ""
	}
	return name
}

func optionalDuration(i int, obj map[string]any, errs *errorList) *float64 {
	raw, ok := obj["duration"]
	if !ok {
		return nil
	}
	d, isNum := asNumber(raw)
	if !isNum {
		errs.addf("Step %d: 'duration' must be a number, got %s", i, kindOf(raw))
		return nil
	}
	if d < 0 {
		errs.addf("Step %d: 'duration' must be non-negative, got %v", i, d)
		return nil
	}
	return &d
}

func parsePropertyAnimations(i int, obj map[string]any, errs *errorList) []PropertyAnimation {
	raw, ok := obj["properties"]
	if !ok {
		errs.addf("Step %d: 'animate_property' requires 'properties' field", i)
		return nil
	}
	list, ok := asList(raw)
	if !ok {
		errs.addf("Step %d: 'properties' must be a list, got %s", i, kindOf(raw))
		return nil
	}
	if len(list) == 0 {
		errs.addf("Step %d: 'properties' array must not be empty", i)
		return nil
	}
	out := make([]PropertyAnimation, 0, len(list))
	for j, item := range list {
		pa, isObj := item.(map[string]any)
		if !isObj {
			errs.addf("Step %d: property[%d] must be an object, got %s", i, j, kindOf(item))
			continue
		}
		var anim PropertyAnimation
		if name, _ := pa["property"].(string); name == "" {
			errs.addf("Step %d: property[%d] missing 'property' name", i, j)
		} else {
			anim.Property = name
		}
		from, hasFrom := pa["from"]
		to, hasTo := pa["to"]
		if !hasFrom || !hasTo {
			errs.addf("Step %d: property[%d] must have 'from' and 'to' values", i, j)
		}
		anim.From, anim.To = from, to
		if rawDur, ok := pa["duration"]; !ok {
			errs.addf("Step %d: property[%d] missing 'duration'", i, j)
		} else if d, isNum := asNumber(rawDur); !isNum {
			errs.addf("Step %d: property[%d] 'duration' must be a number", i, j)
		} else if d < 0 {
			errs.addf("Step %d: property[%d] 'duration' must be non-negative, got %v", i, j, d)
		} else {
			anim.Duration = d
		}
		if rawMod, ok := pa["modulation"]; ok {
			anim.Modulation = parseModulation(i, j, rawMod, errs)
		}
		out = append(out, anim)
	}
	return out
}

func parseModulation(i, j int, raw any, errs *errorList) *Modulation {
	switch m := raw.(type) {
	case string:
		if !inCatalog(Modulations, m) {
			errs.addf("Step %d: property[%d] unknown modulation '%s'. Valid: %s", i, j, m, joinCatalog(Modulations))
			return nil
		}
		return &Modulation{Type: m}
	case map[string]any:
		typ, _ := m["type"].(string)
		if typ == "" {
			errs.addf("Step %d: property[%d] modulation object missing 'type'", i, j)
			return nil
		}
		params := make(map[string]any, len(m))
		for k, v := range m {
			if k != "type" {
				params[k] = v
			}
		}
		return &Modulation{Type: typ, Params: params}
	default:
		errs.addf("Step %d: property[%d] modulation must be a string or an object", i, j)
		return nil
	}
}

// asList accepts decoded JSON arrays as well as raw JSON bytes.
func asList(v any) ([]any, bool) {
	switch l := v.(type) {
	case []any:
		return l, true
	case []map[string]any:
		out := make([]any, len(l))
		for i := range l {
			out[i] = l[i]
		}
		return out, true
	case json.RawMessage:
		return decodeList(l)
	case []byte:
		return decodeList(l)
	default:
		return nil, false
	}
}

func decodeList(raw []byte) ([]any, bool) {
	var out []any
	if err := json.Unmarshal(raw, &out); err != nil || out == nil {
		return nil, false
	}
	return out, true
}

func kindOf(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case map[string]any:
		return "object"
	case []any:
		return "list"
	case string:
		return "string"
	case bool:
		return "boolean"
	}
	if _, ok := asNumber(v); ok {
		return "number"
	}
	return fmt.Sprintf("%T", v)
}
