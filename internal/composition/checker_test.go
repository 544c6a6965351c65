package composition_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cajomferro/shelley-sub001/internal/composition"
	"github.com/cajomferro/shelley-sub001/internal/device"
	"github.com/cajomferro/shelley-sub001/internal/device/devicetest"
)

type recordingLogger struct {
	debug []string
}

func (l *recordingLogger) Debug(msg string, _ ...any) { l.debug = append(l.debug, msg) }
func (l *recordingLogger) Info(string, ...any)        {}
func (l *recordingLogger) Warn(string, ...any)        {}
func (l *recordingLogger) Error(string, ...any)       {}

func TestCheckDeskLamp(t *testing.T) {
	lamp, err := composition.Validate(devicetest.DeskLamp(), devicetest.Catalog())
	require.NoError(t, err)
	assert.Equal(t, "DeskLamp", lamp.Name)
}

func TestCheckDeskLampRejected(t *testing.T) {
	tests := []struct {
		name    string
		event   string
		rule    device.Rule
		wantMsg []string
	}{
		{
			name:  "led switched off twice",
			event: "level1",
			rule: device.Seq(device.On("b", "pressed"), device.On("b", "released"),
				device.On("ledA", "off"), device.On("t", "started")),
			wantMsg: []string{"ledA.begin -> ledA.off", "device DeskLamp", "begin -> level1", "component ledA"},
		},
		{
			name:    "timer times out without running",
			event:   "standby1",
			rule:    device.Seq(device.On("ledA", "off"), device.On("t", "canceled"), device.On("t", "timeout")),
			wantMsg: []string{"t.canceled -> t.timeout"},
		},
		{
			name:  "button released twice",
			event: "level2",
			rule: device.Seq(device.On("b", "released"), device.On("t", "canceled"),
				device.On("ledB", "on"), device.On("t", "started")),
			wantMsg: []string{"b.released -> b.released", "component b"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			decl := devicetest.DeskLamp()
			for i := range decl.Triggers {
				if decl.Triggers[i].Event == tt.event {
					decl.Triggers[i].Rule = tt.rule
				}
			}

			_, err := composition.Validate(decl, devicetest.Catalog())
			require.ErrorIs(t, err, composition.ErrCompositionInvalid)
			require.ErrorIs(t, err, composition.ErrInvalidReduction)
			for _, msg := range tt.wantMsg {
				assert.Contains(t, err.Error(), msg)
			}
		})
	}
}

func TestCheckStructuralFailureComesFirst(t *testing.T) {
	decl := devicetest.DeskLamp()
	decl.Triggers[0].Rule = device.On("ledC", "begin")

	_, err := composition.Validate(decl, devicetest.Catalog())
	require.ErrorIs(t, err, device.ErrDeviceNotDeclared)
	assert.NotErrorIs(t, err, composition.ErrCompositionInvalid)
}

func TestCheckConcurrentRule(t *testing.T) {
	decl := devicetest.DeskLamp()
	decl.Triggers[0].Rule = device.Seq(device.On("b", "begin"),
		device.And(device.On("ledA", "begin"), device.On("ledB", "begin")), device.On("t", "begin"))

	_, err := composition.Validate(decl, devicetest.Catalog())
	require.ErrorIs(t, err, composition.ErrCompositionInvalid)
	assert.ErrorIs(t, err, composition.ErrUnsupportedRule)
}

func TestCheckIsRepeatable(t *testing.T) {
	lamp, err := device.Validate(devicetest.DeskLamp(), devicetest.Catalog())
	require.NoError(t, err)

	checker := composition.New()
	log := &recordingLogger{}
	checker.SetLogger(log)

	for i := 0; i < 3; i++ {
		assert.NoError(t, checker.Check(lamp))
	}
	assert.Equal(t, []string{"composition checked", "composition checked", "composition checked"}, log.debug)
}

func TestCheckPrimitiveDevice(t *testing.T) {
	led, err := device.Validate(devicetest.Led(), nil)
	require.NoError(t, err)
	assert.NoError(t, composition.Check(led))
}
