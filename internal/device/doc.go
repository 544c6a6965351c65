// Package device provides the device model and the registry of declared
// devices for the Shelley verifier.
//
// A device is a protocol over events: its behaviours form a directed graph
// whose edges lead from event to event, starting at the distinguished
// "begin" event. Events are internal (the device reaches them itself, by
// calling one of its actions) or external (its environment drives them).
//
// A composite device is built from components, each an instance of a
// previously declared device. Triggers bind the composite's external events
// to rules over component events.
//
// # Architecture
//
//	┌──────────────────────────────────────────────────────────────────────┐
//	│                          Device Registry                             │
//	│                                                                      │
//	│  ┌──────────────────┐    ┌──────────────────┐    ┌────────────────┐  │
//	│  │     Registry     │    │    Repository    │    │   Validation   │  │
//	│  │   (registry.go)  │───▶│  (repository.go) │    │(validation.go) │  │
//	│  │                  │    │                  │    │                │  │
//	│  │ • Declare        │    │ • SQLite queries │    │ • Actions      │  │
//	│  │ • Dependency     │    │ • JSON declared  │    │ • Events       │  │
//	│  │   ordering       │    │   documents      │    │ • Behaviours   │  │
//	│  │ • In-memory cache│    │                  │    │ • Components   │  │
//	│  └──────────────────┘    └──────────────────┘    │ • Triggers     │  │
//	│           │                                      └────────────────┘  │
//	└───────────│──────────────────────────────────────────────────────────┘
//	            ▼
//	   composition.Check (behavioural check, injected as a Checker)
//
// # Usage
//
//	repo := device.NewSQLiteRepository(db)
//	registry := device.NewRegistry(repo, composition.Check)
//	registry.SetLogger(log)
//
//	if err := registry.RefreshCache(ctx); err != nil {
//	    return err
//	}
//
//	led := &device.Declaration{
//	    Name:    "Led",
//	    Actions: []device.Action{{Name: "turnOn"}, {Name: "turnOff"}},
//	    Events:  []device.Event{device.External("begin"), device.Internal("on"), device.Internal("off")},
//	    Behaviours: []device.Behaviour{
//	        {Left: device.External("begin"), Right: device.Internal("on"), Action: &device.Action{Name: "turnOn"}},
//	        ...
//	    },
//	}
//	if _, err := registry.Declare(ctx, led); err != nil {
//	    return err
//	}
//
// # Thread Safety
//
// All Registry methods are safe for concurrent use. Validated devices are
// never mutated after construction.
package device
