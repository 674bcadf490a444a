package scene

import (
	"errors"
	"fmt"
	"math"
)

// Component names with meaning to the loader.
const (
	ComponentRender  = "render"
	ComponentCollect = "collect"
)

// ErrInvalidComponent is returned when a known component carries unusable properties.
var ErrInvalidComponent = errors.New("invalid component")

// Component is one entry in an entity's component list. The concrete type is one of
// RenderComponent, CollectComponent or UnknownComponent.
type Component interface {
	// ComponentName returns the component's name as written in the level file.
	ComponentName() string
}

// RenderComponent links an entity to a render by its index in the document.
type RenderComponent struct {
	Type   string
	Render int
}

// CollectComponent marks an entity's linked render as a scoring target.
type CollectComponent struct {
	Type string
}

// UnknownComponent keeps a component the loader does not interpret.
type UnknownComponent struct {
	Name       string
	Type       string
	Properties map[string]any
}

func (RenderComponent) ComponentName() string    { return ComponentRender }
func (CollectComponent) ComponentName() string   { return ComponentCollect }
func (c UnknownComponent) ComponentName() string { return c.Name }

// Entity is a scene entity with its components resolved.
type Entity struct {
	ID         *int
	Tags       []string
	Components []Component
}

// Render returns the render index of the entity's first render component.
func (e Entity) Render() (int, bool) {
	for _, c := range e.Components {
		if rc, ok := c.(RenderComponent); ok {
			return rc.Render, true
		}
	}
	return 0, false
}

// Collects reports whether the entity carries a collect component.
func (e Entity) Collects() bool {
	for _, c := range e.Components {
		if _, ok := c.(CollectComponent); ok {
			return true
		}
	}
	return false
}

// HasTag reports whether the entity carries tag.
func (e Entity) HasTag(tag string) bool {
	for _, t := range e.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

func newEntity(desc EntityDesc) (Entity, error) {
	e := Entity{ID: desc.ID, Tags: desc.Tags}
	for _, cd := range desc.Components {
		c, err := newComponent(cd)
		if err != nil {
			return Entity{}, err
		}
		e.Components = append(e.Components, c)
	}
	return e, nil
}

func newComponent(desc ComponentDesc) (Component, error) {
	switch desc.Name {
	case ComponentRender:
		if len(desc.Properties) == 0 {
			return nil, fmt.Errorf("%s: no render index: %w", desc.Name, ErrInvalidComponent)
		}
		idx, ok := asIndex(desc.Properties[0].Value)
		if !ok {
			return nil, fmt.Errorf("%s: render index %v: %w", desc.Name, desc.Properties[0].Value, ErrInvalidComponent)
		}
		return RenderComponent{Type: desc.Type, Render: idx}, nil
	case ComponentCollect:
		return CollectComponent{Type: desc.Type}, nil
	default:
		props := make(map[string]any, len(desc.Properties))
		for _, p := range desc.Properties {
			props[p.Name] = p.Value
		}
		return UnknownComponent{Name: desc.Name, Type: desc.Type, Properties: props}, nil
	}
}

// asIndex accepts the integer forms a YAML or JSON decoder produces.
func asIndex(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, n >= 0
	case int64:
		return int(n), n >= 0
	case uint64:
		return int(n), n <= math.MaxInt32
	case float64:
		if n < 0 || n != math.Trunc(n) {
			return 0, false
		}
		return int(n), true
	default:
		return 0, false
	}
}
