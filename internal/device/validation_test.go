package device_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cajomferro/shelley-sub001/internal/device"
	"github.com/cajomferro/shelley-sub001/internal/device/devicetest"
)

func TestValidateName(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr error
	}{
		{name: "simple", input: "Led"},
		{name: "camel case", input: "deskLamp2"},
		{name: "empty", input: "", wantErr: device.ErrInvalidName},
		{name: "with dot", input: "b.pressed", wantErr: device.ErrInvalidName},
		{name: "with space", input: "desk lamp", wantErr: device.ErrInvalidName},
		{name: "too long", input: strings.Repeat("a", 101), wantErr: device.ErrInvalidName},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := device.ValidateName(tt.input)
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("ValidateName(%q) = %v, want nil", tt.input, err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ValidateName(%q) = %v, want %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestValidateActions(t *testing.T) {
	_, err := device.ValidateActions(nil)
	assert.ErrorIs(t, err, device.ErrEmptyList)

	_, err = device.ValidateActions([]device.Action{{Name: "turnOn"}, {Name: "turnOn"}})
	require.ErrorIs(t, err, device.ErrDuplicate)
	assert.Contains(t, err.Error(), `"turnOn"`)

	set, err := device.ValidateActions([]device.Action{{Name: "turnOn"}, {Name: "turnOff"}})
	require.NoError(t, err)
	assert.Len(t, set, 2)
}

func TestValidateEvents(t *testing.T) {
	_, _, err := device.ValidateEvents(nil)
	assert.ErrorIs(t, err, device.ErrEmptyList)

	// internal and external names share one namespace
	_, _, err = device.ValidateEvents([]device.Event{device.External("on"), device.Internal("on")})
	require.ErrorIs(t, err, device.ErrDuplicate)
	assert.Contains(t, err.Error(), `"on"`)

	internal, external, err := device.ValidateEvents([]device.Event{
		device.External("begin"),
		device.Internal("started"),
		device.External("timeout"),
		device.Internal("canceled"),
	})
	require.NoError(t, err)
	assert.Equal(t, []device.Event{device.Internal("started"), device.Internal("canceled")}, internal)
	assert.Equal(t, []device.Event{device.External("begin"), device.External("timeout")}, external)
}

func TestValidateBehaviours(t *testing.T) {
	begin, x, y := device.External("begin"), device.External("x"), device.External("y")
	on := device.Internal("on")
	external := []device.Event{begin, x, y}
	internal := []device.Event{on}
	actions := map[string]device.Action{"turnOn": {Name: "turnOn"}}

	tests := []struct {
		name       string
		behaviours []device.Behaviour
		wantErr    error
		wantMsg    string
	}{
		{
			name: "valid",
			behaviours: []device.Behaviour{
				{Left: begin, Right: x},
				{Left: x, Right: on, Action: &device.Action{Name: "turnOn"}},
				{Left: on, Right: x},
			},
		},
		{
			name:    "empty",
			wantErr: device.ErrEmptyList,
		},
		{
			name: "duplicate behaviour",
			behaviours: []device.Behaviour{
				{Left: begin, Right: x},
				{Left: x, Right: y},
				{Left: x, Right: y},
				{Left: y, Right: x},
			},
			wantErr: device.ErrDuplicate,
			wantMsg: "x -> y",
		},
		{
			name: "missing begin",
			behaviours: []device.Behaviour{
				{Left: x, Right: y},
				{Left: y, Right: x},
			},
			wantErr: device.ErrMissingBegin,
		},
		{
			name: "undeclared left",
			behaviours: []device.Behaviour{
				{Left: begin, Right: x},
				{Left: device.External("z"), Right: x},
			},
			wantErr: device.ErrEventUndeclared,
			wantMsg: `"z"`,
		},
		{
			name:       "undeclared right",
			behaviours: []device.Behaviour{{Left: begin, Right: device.External("z")}},
			wantErr:    device.ErrEventUndeclared,
			wantMsg:    "begin -> z",
		},
		{
			name:       "internal without action",
			behaviours: []device.Behaviour{{Left: begin, Right: on}},
			wantErr:    device.ErrActionUndeclared,
			wantMsg:    `"on"`,
		},
		{
			name:       "internal with undeclared action",
			behaviours: []device.Behaviour{{Left: begin, Right: on, Action: &device.Action{Name: "blink"}}},
			wantErr:    device.ErrActionUndeclared,
			wantMsg:    `"blink"`,
		},
		{
			name:       "external with action",
			behaviours: []device.Behaviour{{Left: begin, Right: x, Action: &device.Action{Name: "turnOn"}}},
			wantErr:    device.ErrUnexpectedAction,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := device.ValidateBehaviours(tt.behaviours, actions, internal, external)
			if tt.wantErr == nil {
				require.NoError(t, err)
				assert.Len(t, got, len(tt.behaviours))
				return
			}
			require.ErrorIs(t, err, tt.wantErr)
			if tt.wantMsg != "" {
				assert.Contains(t, err.Error(), tt.wantMsg)
			}
		})
	}
}

func TestValidateBehavioursResolvesKinds(t *testing.T) {
	// kinds come from the declared events, not from the behaviour input
	got, err := device.ValidateBehaviours(
		[]device.Behaviour{{Left: device.Internal("begin"), Right: device.Internal("x")}},
		nil, nil, []device.Event{device.External("x")},
	)
	require.NoError(t, err)
	assert.Equal(t, device.External("begin"), got[0].Left)
	assert.Equal(t, device.External("x"), got[0].Right)
}

func TestValidateComponents(t *testing.T) {
	cat := devicetest.Catalog()

	tests := []struct {
		name       string
		components []device.Component
		uses       []string
		wantErr    error
		wantMsg    string
	}{
		{
			name:       "valid",
			components: []device.Component{{Name: "ledA", Type: "Led"}, {Name: "ledB", Type: "Led"}},
			uses:       []string{"Led"},
		},
		{
			name:       "type not in uses",
			components: []device.Component{{Name: "b", Type: "Button"}},
			uses:       []string{"Led"},
			wantErr:    device.ErrDeviceNotUsed,
			wantMsg:    `"Button"`,
		},
		{
			name:       "uses undeclared device",
			components: []device.Component{{Name: "s", Type: "Sensor"}},
			uses:       []string{"Sensor"},
			wantErr:    device.ErrDeviceNotDeclared,
			wantMsg:    `"Sensor"`,
		},
		{
			name:       "duplicate component",
			components: []device.Component{{Name: "led", Type: "Led"}, {Name: "led", Type: "Led"}},
			uses:       []string{"Led"},
			wantErr:    device.ErrDuplicate,
			wantMsg:    `"led"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := device.ValidateComponents(tt.components, tt.uses, cat)
			if tt.wantErr == nil {
				require.NoError(t, err)
				for _, c := range got {
					assert.Same(t, cat[c.Type], c.Device)
				}
				return
			}
			require.ErrorIs(t, err, tt.wantErr)
			assert.Contains(t, err.Error(), tt.wantMsg)
		})
	}
}

func TestValidateTriggers(t *testing.T) {
	cat := devicetest.Catalog()
	components, err := device.ValidateComponents(
		[]device.Component{{Name: "b", Type: "Button"}, {Name: "ledA", Type: "Led"}},
		[]string{"Button", "Led"}, cat)
	require.NoError(t, err)
	external := []device.Event{device.External("begin"), device.External("level1")}
	on := device.On

	tests := []struct {
		name     string
		triggers []device.Trigger
		wantErr  error
		wantMsg  string
	}{
		{
			name: "valid",
			triggers: []device.Trigger{
				{Event: "begin", Rule: device.Seq(on("b", "begin"), on("ledA", "begin"))},
				{Event: "level1", Rule: device.Group(device.Seq(on("b", "pressed"), on("ledA", "on")))},
			},
		},
		{
			name:     "undeclared event",
			triggers: []device.Trigger{{Event: "level9", Rule: on("b", "pressed")}},
			wantErr:  device.ErrEventUndeclared,
			wantMsg:  `"level9"`,
		},
		{
			name: "duplicate trigger",
			triggers: []device.Trigger{
				{Event: "level1", Rule: on("b", "pressed")},
				{Event: "level1", Rule: on("ledA", "on")},
			},
			wantErr: device.ErrDuplicate,
			wantMsg: `"level1"`,
		},
		{
			name:     "unknown component",
			triggers: []device.Trigger{{Event: "level1", Rule: device.And(on("b", "pressed"), on("ledC", "on"))}},
			wantErr:  device.ErrDeviceNotDeclared,
			wantMsg:  `"ledC"`,
		},
		{
			name:     "unknown component event",
			triggers: []device.Trigger{{Event: "level1", Rule: device.Choice(on("b", "pressed"), on("ledA", "blink"))}},
			wantErr:  device.ErrEventNotDeclared,
			wantMsg:  "ledA.blink",
		},
		{
			name:     "missing rule",
			triggers: []device.Trigger{{Event: "level1"}},
			wantErr:  device.ErrInvalidRule,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := device.ValidateTriggers(tt.triggers, external, components)
			if tt.wantErr == nil {
				require.NoError(t, err)
				return
			}
			require.ErrorIs(t, err, tt.wantErr)
			assert.Contains(t, err.Error(), tt.wantMsg)
		})
	}
}

func TestValidate(t *testing.T) {
	cat := devicetest.Catalog()

	t.Run("fixtures", func(t *testing.T) {
		lamp, err := device.Validate(devicetest.DeskLamp(), cat)
		require.NoError(t, err)
		assert.True(t, lamp.IsComposite())
		for _, c := range lamp.Components {
			assert.NotNil(t, c.Device, c.Name)
		}
	})

	t.Run("idempotent", func(t *testing.T) {
		decl := devicetest.Led()
		first, err := device.Validate(decl, cat)
		require.NoError(t, err)
		second, err := device.Validate(decl, cat)
		require.NoError(t, err)
		assert.Equal(t, first, second)
	})

	t.Run("does not mutate declaration", func(t *testing.T) {
		decl := devicetest.DeskLamp()
		_, err := device.Validate(decl, cat)
		require.NoError(t, err)
		assert.Equal(t, devicetest.DeskLamp(), decl)
	})

	t.Run("no actions without internal events", func(t *testing.T) {
		_, err := device.Validate(devicetest.Button(), nil)
		assert.NoError(t, err)
	})

	t.Run("no actions with internal events", func(t *testing.T) {
		decl := devicetest.Led()
		decl.Actions = nil
		_, err := device.Validate(decl, nil)
		assert.ErrorIs(t, err, device.ErrEmptyList)
	})

	t.Run("error names device", func(t *testing.T) {
		decl := devicetest.DeskLamp()
		decl.Uses = []string{"Button", "Timer"}
		_, err := device.Validate(decl, cat)
		require.ErrorIs(t, err, device.ErrDeviceNotUsed)
		assert.Contains(t, err.Error(), "device DeskLamp")
		assert.Contains(t, err.Error(), `"ledA"`)
	})

	t.Run("missing dependency", func(t *testing.T) {
		_, err := device.Validate(devicetest.DeskLamp(), device.Catalog{})
		assert.ErrorIs(t, err, device.ErrDeviceNotDeclared)
	})

	t.Run("invalid name", func(t *testing.T) {
		decl := devicetest.Led()
		decl.Name = ""
		_, err := device.Validate(decl, nil)
		assert.ErrorIs(t, err, device.ErrInvalidName)
	})
}
