// Package manifest reads device declarations from YAML files.
//
// A manifest file holds one or more YAML documents, one device each:
//
//	name: Led
//	actions: [turnOn, turnOff]
//	events:
//	  external: [begin]
//	  internal: [on, off]
//	behaviours:
//	  - {from: begin, to: on, action: turnOn}
//	  - {from: on, to: off, action: turnOff}
//	  - {from: off, to: on, action: turnOn}
//	---
//	name: Lamp
//	uses: [Led]
//	events:
//	  external: [begin, lit]
//	behaviours:
//	  - {from: begin, to: lit}
//	components:
//	  - {name: led, type: Led}
//	triggers:
//	  - {event: begin, rule: led.begin}
//	  - {event: lit, rule: {seq: [led.on, led.off]}}
package manifest

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/cajomferro/shelley-sub001/internal/device"
)

// ErrInvalidManifest is returned when a manifest cannot be decoded.
var ErrInvalidManifest = errors.New("manifest: invalid")

// document is the YAML shape of one device.
type document struct {
	Name    string   `yaml:"name"`
	Uses    []string `yaml:"uses,omitempty"`
	Actions []string `yaml:"actions,omitempty"`
	Events  struct {
		Internal []string `yaml:"internal,omitempty"`
		External []string `yaml:"external,omitempty"`
	} `yaml:"events"`
	Behaviours []behaviourDoc `yaml:"behaviours"`
	Components []componentDoc `yaml:"components,omitempty"`
	Triggers   []triggerDoc   `yaml:"triggers,omitempty"`
}

type behaviourDoc struct {
	From   string `yaml:"from"`
	To     string `yaml:"to"`
	Action string `yaml:"action,omitempty"`
}

type componentDoc struct {
	Name string `yaml:"name"`
	Type string `yaml:"type"`
}

type triggerDoc struct {
	Event string          `yaml:"event"`
	Rule  device.RuleNode `yaml:"rule"`
}

// Parse decodes every YAML document in data into a declaration.
// Empty documents are skipped.
func Parse(data []byte) ([]device.Declaration, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var decls []device.Declaration
	for n := 1; ; n++ {
		var doc document
		err := dec.Decode(&doc)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: document %d: %w", ErrInvalidManifest, n, err)
		}
		if doc.Name == "" && len(doc.Behaviours) == 0 {
			continue
		}

		decl, err := doc.declaration()
		if err != nil {
			return nil, fmt.Errorf("%w: document %d (%s): %w", ErrInvalidManifest, n, doc.Name, err)
		}
		decls = append(decls, decl)
	}
	return decls, nil
}

// LoadFile reads and parses a manifest file.
func LoadFile(path string) ([]device.Declaration, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path comes from configuration or the command line
	if err != nil {
		return nil, fmt.Errorf("reading manifest: %w", err)
	}
	decls, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return decls, nil
}

// Load reads every path in order. Directories contribute their *.yaml and
// *.yml files, sorted by name.
func Load(paths ...string) ([]device.Declaration, error) {
	var decls []device.Declaration
	for _, p := range paths {
		files, err := expand(p)
		if err != nil {
			return nil, err
		}
		for _, f := range files {
			d, err := LoadFile(f)
			if err != nil {
				return nil, err
			}
			decls = append(decls, d...)
		}
	}
	return decls, nil
}

func expand(path string) ([]string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("reading manifest: %w", err)
	}
	if !info.IsDir() {
		return []string{path}, nil
	}

	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, fmt.Errorf("reading manifest directory: %w", err)
	}
	var files []string
	for _, e := range entries {
		ext := strings.ToLower(filepath.Ext(e.Name()))
		if e.IsDir() || (ext != ".yaml" && ext != ".yml") {
			continue
		}
		files = append(files, filepath.Join(path, e.Name()))
	}
	sort.Strings(files)
	return files, nil
}

func (doc *document) declaration() (device.Declaration, error) {
	decl := device.Declaration{
		Name: doc.Name,
		Uses: doc.Uses,
	}

	for _, a := range doc.Actions {
		decl.Actions = append(decl.Actions, device.Action{Name: a})
	}

	kinds := make(map[string]device.EventKind, len(doc.Events.Internal)+len(doc.Events.External))
	for _, e := range doc.Events.Internal {
		decl.Events = append(decl.Events, device.Internal(e))
		kinds[e] = device.KindInternal
	}
	for _, e := range doc.Events.External {
		decl.Events = append(decl.Events, device.External(e))
		kinds[e] = device.KindExternal
	}
	event := func(name string) device.Event {
		if k, ok := kinds[name]; ok {
			return device.Event{Name: name, Kind: k}
		}
		// undeclared names are reported by validation
		return device.External(name)
	}

	for _, b := range doc.Behaviours {
		beh := device.Behaviour{Left: event(b.From), Right: event(b.To)}
		if b.Action != "" {
			beh.Action = &device.Action{Name: b.Action}
		}
		decl.Behaviours = append(decl.Behaviours, beh)
	}

	for _, c := range doc.Components {
		decl.Components = append(decl.Components, device.Component{Name: c.Name, Type: c.Type})
	}

	for _, t := range doc.Triggers {
		r, err := t.Rule.Rule()
		if err != nil {
			return device.Declaration{}, fmt.Errorf("trigger %s: %w", t.Event, err)
		}
		decl.Triggers = append(decl.Triggers, device.Trigger{Event: t.Event, Rule: r})
	}
	return decl, nil
}
