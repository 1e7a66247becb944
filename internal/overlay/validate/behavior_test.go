package validate

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yungbote/overlay-backend/internal/platform/logger"
)

func alertSequence() []any {
	return []any{
		map[string]any{"type": "appear", "animation": "explosion", "duration": 500},
		map[string]any{"type": "wait", "duration": 2500},
		map[string]any{"type": "disappear", "animation": "fade-out", "duration": 500},
	}
}

func TestValidateBehaviorRejectsNonList(t *testing.T) {
	for _, v := range []any{nil, "appear", 42, map[string]any{"type": "wait"}, true} {
		ok, errs := ValidateBehavior(v)
		assert.False(t, ok, "value %v", v)
		assert.NotEmpty(t, errs)
	}
}

func TestValidateBehaviorEmptyList(t *testing.T) {
	ok, errs := ValidateBehavior([]any{})
	assert.True(t, ok)
	assert.Empty(t, errs)
}

func TestValidateBehaviorNegativeWait(t *testing.T) {
	ok, errs := ValidateBehavior([]any{map[string]any{"type": "wait", "duration": -5}})
	assert.False(t, ok)
	assert.True(t, containsErr(errs, "non-negative"), "errs=%v", errs)
}

func TestTotalDurationAlertSequence(t *testing.T) {
	steps, errs := ParseBehavior(alertSequence())
	require.Empty(t, errs)
	assert.Equal(t, 3500.0, TotalDuration(steps))
}

func TestValidateBehaviorIdempotent(t *testing.T) {
	seq := alertSequence()
	ok1, errs1 := ValidateBehavior(seq)
	ok2, errs2 := ValidateBehavior(seq)
	assert.True(t, ok1)
	assert.True(t, ok2)
	assert.Equal(t, errs1, errs2)
	assert.Equal(t, []string{}, errs1)
}

func TestStepDurations(t *testing.T) {
	raw := []any{
		map[string]any{"type": "set", "properties": map[string]any{"opacity": 0}},
		map[string]any{"type": "animate", "animation": "spin", "duration": 300},
		map[string]any{"type": "animate_property", "properties": []any{
			map[string]any{"property": "opacity", "from": 0, "to": 1, "duration": 200},
			map[string]any{"property": "rotation", "from": 0, "to": 90, "duration": 750, "modulation": "ease-in"},
		}},
		map[string]any{"type": "appear"},
	}
	steps, errs := ParseBehavior(raw)
	require.Empty(t, errs)
	require.Len(t, steps, 4)
	assert.Equal(t, 0.0, StepDuration(steps[0]))
	assert.Equal(t, 300.0, StepDuration(steps[1]))
	assert.Equal(t, 750.0, StepDuration(steps[2]))
	assert.Equal(t, 0.0, StepDuration(steps[3]))
	assert.Equal(t, 1050.0, TotalDuration(steps))
}

func TestValidateBehaviorStepRules(t *testing.T) {
	cases := []struct {
		name string
		step any
		want string
	}{
		{"not an object", "appear", "step must be an object"},
		{"missing type", map[string]any{"duration": 5}, "missing required field 'type'"},
		{"unknown type", map[string]any{"type": "teleport"}, "invalid step type 'teleport'"},
		{"unknown animation", map[string]any{"type": "appear", "animation": "wobble"}, "invalid animation 'wobble'"},
		{"animate without animation", map[string]any{"type": "animate", "duration": 10}, "requires 'animation'"},
		{"wait without duration", map[string]any{"type": "wait"}, "'wait' requires 'duration'"},
		{"duration not number", map[string]any{"type": "disappear", "duration": "fast"}, "'duration' must be a number"},
		{"set without properties", map[string]any{"type": "set"}, "'set' requires 'properties'"},
		{"set with list", map[string]any{"type": "set", "properties": []any{}}, "must be an object"},
		{"animate_property without list", map[string]any{"type": "animate_property"}, "requires 'properties' field"},
		{"animate_property empty", map[string]any{"type": "animate_property", "properties": []any{}}, "must not be empty"},
		{"property name", map[string]any{"type": "animate_property", "properties": []any{
			map[string]any{"from": 0, "to": 1, "duration": 1},
		}}, "missing 'property' name"},
		{"from and to", map[string]any{"type": "animate_property", "properties": []any{
			map[string]any{"property": "opacity", "to": 1, "duration": 1},
		}}, "must have 'from' and 'to'"},
		{"property duration", map[string]any{"type": "animate_property", "properties": []any{
			map[string]any{"property": "opacity", "from": 0, "to": 1},
		}}, "missing 'duration'"},
		{"negative property duration", map[string]any{"type": "animate_property", "properties": []any{
			map[string]any{"property": "opacity", "from": 0, "to": 1, "duration": -1},
		}}, "non-negative"},
		{"unknown modulation", map[string]any{"type": "animate_property", "properties": []any{
			map[string]any{"property": "opacity", "from": 0, "to": 1, "duration": 1, "modulation": "bouncy"},
		}}, "unknown modulation 'bouncy'"},
		{"modulation object without type", map[string]any{"type": "animate_property", "properties": []any{
			map[string]any{"property": "opacity", "from": 0, "to": 1, "duration": 1, "modulation": map[string]any{"points": []any{0.1}}},
		}}, "modulation object missing 'type'"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ok, errs := ValidateBehavior([]any{tc.step})
			assert.False(t, ok)
			assert.True(t, containsErr(errs, "Step 0", tc.want), "errs=%v", errs)
		})
	}
}

func TestSetStepPropertiesAreNotSchemaChecked(t *testing.T) {
	ok, errs := ValidateBehavior([]any{
		map[string]any{"type": "set", "properties": map[string]any{"opacity": 7, "made_up": true}},
	})
	assert.True(t, ok, "%v", errs)
}

func TestParseBehaviorStructuredModulation(t *testing.T) {
	steps, errs := ParseBehavior([]any{
		map[string]any{"type": "animate_property", "properties": []any{
			map[string]any{
				"property": "scale_x", "from": 1, "to": 2, "duration": 400,
				"modulation": map[string]any{"type": "cubic-bezier", "points": []any{0.1, 0.7, 1.0, 0.1}},
			},
		}},
	})
	require.Empty(t, errs)
	mod := steps[0].Properties[0].Modulation
	require.NotNil(t, mod)
	assert.Equal(t, "cubic-bezier", mod.Type)
	assert.Contains(t, mod.Params, "points")
}

func TestParseBehaviorFromRawJSON(t *testing.T) {
	raw, err := json.Marshal(alertSequence())
	require.NoError(t, err)
	d, err := BehaviorDuration(json.RawMessage(raw))
	require.NoError(t, err)
	assert.Equal(t, 3500.0, d)
}

func TestValidateAndLogBehavior(t *testing.T) {
	assert.True(t, ValidateAndLogBehavior(logger.Nop(), alertSequence(), "alert"))
	assert.False(t, ValidateAndLogBehavior(logger.Nop(), "nope", "alert"))
}
