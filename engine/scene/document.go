package scene

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/go-gl/mathgl/mgl32"
	"gopkg.in/yaml.v3"
)

// Vec3 is a vector written as {x, y, z} in a level file.
type Vec3 struct {
	X float32 `yaml:"x"`
	Y float32 `yaml:"y"`
	Z float32 `yaml:"z"`
}

// Vec returns v as an mgl32 vector.
func (v Vec3) Vec() mgl32.Vec3 {
	return mgl32.Vec3{v.X, v.Y, v.Z}
}

// RenderDesc is one piece of static geometry. Rotation is in degrees; Scale is the full edge length of the box.
type RenderDesc struct {
	Position Vec3   `yaml:"pos"`
	Rotation Vec3   `yaml:"rot"`
	Scale    Vec3   `yaml:"scl"`
	Frag     string `yaml:"frag"`
}

// Property is a named component value.
type Property struct {
	Name  string `yaml:"name"`
	Value any    `yaml:"value"`
}

// ComponentDesc is a component as written in a level file.
type ComponentDesc struct {
	Name       string     `yaml:"name"`
	Type       string     `yaml:"type"`
	Properties []Property `yaml:"properties"`
}

// EntityDesc is an entity as written in a level file.
type EntityDesc struct {
	ID         *int            `yaml:"id,omitempty"`
	Tags       []string        `yaml:"tags"`
	Components []ComponentDesc `yaml:"components"`
}

// Document is a parsed level file.
type Document struct {
	Renders  []RenderDesc `yaml:"renders"`
	Entities []EntityDesc `yaml:"entities"`
}

// Parse decodes a level document. JSON documents are accepted since JSON is valid YAML.
//
// Parameters:
//   - data: the document bytes
//
// Returns:
//   - Document: the parsed document
//   - error: a decode error
func Parse(data []byte) (Document, error) {
	return Decode(bytes.NewReader(data))
}

// Decode reads a level document from r.
//
// Parameters:
//   - r: the reader to decode from
//
// Returns:
//   - Document: the parsed document
//   - error: a decode error
func Decode(r io.Reader) (Document, error) {
	var doc Document
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil && err != io.EOF {
		return Document{}, fmt.Errorf("decode level: %w", err)
	}
	return doc, nil
}

// ReadFile loads and parses the level file at path.
func ReadFile(path string) (Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return Document{}, err
	}
	defer f.Close()

	doc, err := Decode(f)
	if err != nil {
		return Document{}, fmt.Errorf("%s: %w", path, err)
	}
	return doc, nil
}
