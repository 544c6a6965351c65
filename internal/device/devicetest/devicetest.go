// Package devicetest provides device declarations shared by tests.
//
// The fixtures model a desk lamp: a button and a timer drive two LEDs.
// Pressing the button switches the first LED on; pressing it again before
// the timer fires switches the second one on too. A timeout switches the
// lamp back to standby.
package devicetest

import "github.com/cajomferro/shelley-sub001/internal/device"

func act(name string) *device.Action {
	return &device.Action{Name: name}
}

func beh(left, right device.Event, action *device.Action) device.Behaviour {
	return device.Behaviour{Left: left, Right: right, Action: action}
}

// Button is a push button: every press is followed by a release.
func Button() *device.Declaration {
	begin, pressed, released := device.External("begin"), device.External("pressed"), device.External("released")
	return &device.Declaration{
		Name:   "Button",
		Events: []device.Event{begin, pressed, released},
		Behaviours: []device.Behaviour{
			beh(begin, pressed, nil),
			beh(pressed, released, nil),
			beh(released, pressed, nil),
		},
	}
}

// Led is switched on first, then alternates between off and on.
func Led() *device.Declaration {
	begin, on, off := device.External("begin"), device.Internal("on"), device.Internal("off")
	return &device.Declaration{
		Name:    "Led",
		Actions: []device.Action{{Name: "turnOn"}, {Name: "turnOff"}},
		Events:  []device.Event{begin, on, off},
		Behaviours: []device.Behaviour{
			beh(begin, on, act("turnOn")),
			beh(on, off, act("turnOff")),
			beh(off, on, act("turnOn")),
		},
	}
}

// Timer is started, then either canceled or times out before being
// started again.
func Timer() *device.Declaration {
	begin, timeout := device.External("begin"), device.External("timeout")
	started, canceled := device.Internal("started"), device.Internal("canceled")
	return &device.Declaration{
		Name:    "Timer",
		Actions: []device.Action{{Name: "start"}, {Name: "cancel"}},
		Events:  []device.Event{begin, started, canceled, timeout},
		Behaviours: []device.Behaviour{
			beh(begin, started, act("start")),
			beh(started, canceled, act("cancel")),
			beh(started, timeout, nil),
			beh(canceled, started, act("start")),
			beh(timeout, started, act("start")),
		},
	}
}

// DeskLamp composes a button, two LEDs and a timer.
func DeskLamp() *device.Declaration {
	begin := device.External("begin")
	level1, level2 := device.External("level1"), device.External("level2")
	standby1, standby2 := device.External("standby1"), device.External("standby2")
	on := device.On

	return &device.Declaration{
		Name:   "DeskLamp",
		Events: []device.Event{begin, level1, level2, standby1, standby2},
		Behaviours: []device.Behaviour{
			beh(begin, level1, nil),
			beh(level1, standby1, nil),
			beh(level1, level2, nil),
			beh(level2, standby2, nil),
			beh(standby1, level1, nil),
			beh(standby2, level1, nil),
		},
		Uses: []string{"Button", "Led", "Timer"},
		Components: []device.Component{
			{Name: "b", Type: "Button"},
			{Name: "ledA", Type: "Led"},
			{Name: "ledB", Type: "Led"},
			{Name: "t", Type: "Timer"},
		},
		Triggers: []device.Trigger{
			{Event: "begin", Rule: device.Seq(on("b", "begin"), on("ledA", "begin"), on("ledB", "begin"), on("t", "begin"))},
			{Event: "level1", Rule: device.Seq(on("b", "pressed"), on("b", "released"), on("ledA", "on"), on("t", "started"))},
			{Event: "level2", Rule: device.Seq(on("b", "pressed"), on("b", "released"), on("t", "canceled"), on("ledB", "on"), on("t", "started"))},
			{Event: "standby1", Rule: device.Seq(on("t", "timeout"), on("ledA", "off"))},
			{Event: "standby2", Rule: device.Choice(
				device.Seq(on("b", "pressed"), on("b", "released"), on("t", "canceled"), on("ledB", "off"), on("ledA", "off")),
				device.Seq(on("t", "timeout"), on("ledB", "off"), on("ledA", "off")),
			)},
		},
	}
}

// Primitives returns the component types of the desk lamp.
func Primitives() []device.Declaration {
	return []device.Declaration{*Button(), *Led(), *Timer()}
}

// All returns every fixture, dependencies first.
func All() []device.Declaration {
	return append(Primitives(), *DeskLamp())
}

// Catalog validates the primitives structurally and returns them keyed by name.
// It panics on failure; fixtures are known to be valid.
func Catalog() device.Catalog {
	cat := device.Catalog{}
	for _, decl := range Primitives() {
		d, err := device.Validate(&decl, cat)
		if err != nil {
			panic(err)
		}
		cat[d.Name] = d
	}
	return cat
}
