package validate

import (
	"sort"
	"strings"

	types "github.com/yungbote/overlay-backend/internal/domain"
)

// Catalogs shared with the overlay client. Adding a name here needs a matching
// client release.
var (
	Anchors = []string{
		"top-left", "top-center", "top-right",
		"center-left", "center", "center-right",
		"bottom-left", "bottom-center", "bottom-right",
	}

	Animations = []string{
		"fade-in", "fade-out",
		"slide-in", "slide-out",
		"scale-in", "scale-out",
		"explosion", "pop", "spin", "flip", "zoom", "fly", "swipe",
	}

	Modulations = []string{
		"linear", "ease-in", "ease-out", "ease-in-out", "cubic-bezier", "steps",
	}
)

type StepType string

const (
	StepAppear          StepType = "appear"
	StepAnimateProperty StepType = "animate_property"
	StepAnimate         StepType = "animate"
	StepWait            StepType = "wait"
	StepSet             StepType = "set"
	StepDisappear       StepType = "disappear"
)

var StepTypes = []StepType{StepAppear, StepAnimateProperty, StepAnimate, StepWait, StepSet, StepDisappear}

func inCatalog(catalog []string, v string) bool {
	for _, c := range catalog {
		if c == v {
			return true
		}
	}
	return false
}

func joinCatalog(catalog []string) string { return strings.Join(catalog, ", ") }

func stepTypeNames() []string {
	out := make([]string, len(StepTypes))
	for i, st := range StepTypes {
		out[i] = string(st)
	}
	return out
}

var visual = []string{"position", "size", "opacity", "rotation", "scale_x", "scale_y", "z_index"}

func keys(groups ...[]string) map[string]struct{} {
	out := map[string]struct{}{}
	for _, g := range groups {
		for _, k := range g {
			out[k] = struct{}{}
		}
	}
	return out
}

// allowed is the closed per-type property allow-list.
var allowed = map[types.ElementType]map[string]struct{}{
	types.ElementImage:     keys(visual, []string{"media_roles", "aspect_ratio"}),
	types.ElementVideo:     keys(visual, []string{"media_roles", "aspect_ratio", "volume", "autoplay", "loop", "muted"}),
	types.ElementAudio:     keys([]string{"media_roles", "volume", "autoplay", "loop"}),
	types.ElementText:      keys(visual, []string{"text", "font_family", "font_size", "color"}),
	types.ElementTimer:     keys(visual, []string{"duration_ms", "format", "font_family", "font_size", "color"}),
	types.ElementCounter:   keys(visual, []string{"value", "step", "format", "font_family", "font_size", "color"}),
	types.ElementCard:      keys(visual, []string{"revealed", "front_text", "back_text", "media_roles"}),
	types.ElementCanvas:    keys(visual, []string{"media_roles", "color", "particle_count"}),
	types.ElementAnimation: keys(visual, []string{"media_roles", "aspect_ratio", "loop"}),
}

// AllowedProperties returns the sorted allow-list for et, or nil for an unknown type.
func AllowedProperties(et types.ElementType) []string {
	set, ok := allowed[et]
	if !ok {
		return nil
	}
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
