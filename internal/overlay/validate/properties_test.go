package validate

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	types "github.com/yungbote/overlay-backend/internal/domain"
)

func containsErr(errs []string, parts ...string) bool {
	for _, e := range errs {
		match := true
		for _, p := range parts {
			if !strings.Contains(e, p) {
				match = false
				break
			}
		}
		if match {
			return true
		}
	}
	return false
}

func TestValidatePropertiesImage(t *testing.T) {
	ok, errs := ValidateProperties(types.ElementImage, map[string]any{
		"position": map[string]any{"x": 0.5, "y": 0.5, "anchor": "center"},
		"size":     map[string]any{"width": 0.25, "height": 0.3},
		"opacity":  0.8,
		"z_index":  10,
	})
	assert.True(t, ok)
	assert.Empty(t, errs)
}

func TestValidatePropertiesPositionBoundaries(t *testing.T) {
	cases := []struct {
		x     float64
		valid bool
	}{
		{0, true},
		{1, true},
		{0.5, true},
		{1.0000001, false},
		{-0.0001, false},
	}
	for _, tc := range cases {
		ok, errs := ValidateProperties(types.ElementImage, map[string]any{
			"position": map[string]any{"x": tc.x, "y": 0.5},
		})
		assert.Equal(t, tc.valid, ok, "x=%v errs=%v", tc.x, errs)
		if !tc.valid {
			assert.True(t, containsErr(errs, "between 0 and 1"), "errs=%v", errs)
		}
	}
}

func TestValidatePropertiesPositionRequiredFields(t *testing.T) {
	_, errs := ValidateProperties(types.ElementImage, map[string]any{"position": map[string]any{"y": 0.5}})
	assert.True(t, containsErr(errs, "x is required"))

	_, errs = ValidateProperties(types.ElementImage, map[string]any{"position": map[string]any{"x": 0.5}})
	assert.True(t, containsErr(errs, "y is required"))
}

func TestValidatePropertiesAnchors(t *testing.T) {
	for _, anchor := range Anchors {
		ok, errs := ValidateProperties(types.ElementImage, map[string]any{
			"position": map[string]any{"x": 0.5, "y": 0.5, "anchor": anchor},
		})
		assert.True(t, ok, "anchor %s: %v", anchor, errs)
	}
	ok, errs := ValidateProperties(types.ElementImage, map[string]any{
		"position": map[string]any{"x": 0.5, "y": 0.5, "anchor": "invalid"},
	})
	assert.False(t, ok)
	assert.True(t, containsErr(errs, "anchor must be one of"))
}

func TestValidatePropertiesScalarRules(t *testing.T) {
	cases := []struct {
		name  string
		et    types.ElementType
		props map[string]any
		want  string
	}{
		{"opacity above one", types.ElementImage, map[string]any{"opacity": 1.5}, "opacity"},
		{"width above one", types.ElementImage, map[string]any{"size": map[string]any{"width": 1.5, "height": 0.3}}, "width"},
		{"zero scale", types.ElementImage, map[string]any{"scale_x": 0}, "scale_x"},
		{"negative scale", types.ElementImage, map[string]any{"scale_y": -1.0}, "scale_y"},
		{"fractional z_index", types.ElementImage, map[string]any{"z_index": 1.5}, "z_index"},
		{"string rotation", types.ElementImage, map[string]any{"rotation": "90deg"}, "rotation"},
		{"revealed not bool", types.ElementCard, map[string]any{"revealed": "yes"}, "revealed must be boolean"},
		{"unknown key", types.ElementImage, map[string]any{"invalid_property": "value"}, "invalid_property"},
		{"position on audio", types.ElementAudio, map[string]any{"volume": 0.7, "position": map[string]any{"x": 0.5, "y": 0.5}}, "not allowed"},
		{"revealed on image", types.ElementImage, map[string]any{"revealed": true}, "not allowed"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ok, errs := ValidateProperties(tc.et, tc.props)
			assert.False(t, ok)
			assert.True(t, containsErr(errs, tc.want), "errs=%v", errs)
		})
	}
}

func TestValidatePropertiesAcceptsTypeSpecificKeys(t *testing.T) {
	ok, errs := ValidateProperties(types.ElementImage, map[string]any{
		"size":         map[string]any{"width": 0.25, "height": "auto"},
		"aspect_ratio": 1.777,
		"rotation":     -720,
		"media_roles":  []any{"image"},
	})
	assert.True(t, ok, "%v", errs)

	ok, errs = ValidateProperties(types.ElementCard, map[string]any{
		"position":   map[string]any{"x": 0.1, "y": 0.2},
		"size":       map[string]any{"width": 0.15, "height": 0.2},
		"scale_x":    1.5,
		"scale_y":    1.5,
		"opacity":    0.9,
		"z_index":    50,
		"revealed":   false,
		"front_text": "?",
		"back_text":  "ANSWER",
	})
	assert.True(t, ok, "%v", errs)

	ok, errs = ValidateProperties(types.ElementAudio, map[string]any{"volume": 0.7, "autoplay": false})
	assert.True(t, ok, "%v", errs)
}

func TestValidatePropertiesCollectsAllViolations(t *testing.T) {
	ok, errs := ValidateProperties(types.ElementImage, map[string]any{
		"opacity":  2,
		"scale_x":  0,
		"position": map[string]any{},
		"bogus":    1,
	})
	require.False(t, ok)
	// bogus, opacity, position.x, position.y, scale_x
	assert.Len(t, errs, 5)
	assert.Equal(t, "property 'bogus' is not allowed for image elements", errs[0])
}

func TestValidatePropertiesUnknownElementType(t *testing.T) {
	ok, errs := ValidateProperties(types.ElementType("hologram"), map[string]any{})
	assert.False(t, ok)
	assert.NotEmpty(t, errs)
}

func TestDecodePositionAndSize(t *testing.T) {
	p, errs := DecodePosition(map[string]any{"x": 0.25, "y": 1, "anchor": "bottom-right"})
	require.Empty(t, errs)
	assert.Equal(t, Position{X: 0.25, Y: 1, Anchor: "bottom-right"}, p)

	s, errs := DecodeSize(map[string]any{"width": 0.5, "height": "auto"})
	require.Empty(t, errs)
	require.NotNil(t, s.Width)
	require.NotNil(t, s.Height)
	assert.Equal(t, 0.5, s.Width.Value)
	assert.True(t, s.Height.Auto)
}
