package tool

import (
	"context"

	"github.com/tmc/langchaingo/tools"
)

// SchemaTool is a tool that declares a JSON schema for its arguments.
// Agents pass such tools the raw JSON arguments produced by the model.
type SchemaTool interface {
	tools.Tool
	Schema() map[string]any
}

// Param describes one argument in a tool schema.
type Param struct {
	Name        string
	Type        string
	Description string
	Required    bool
}

// StringParam is a required string argument.
func StringParam(name, description string) Param {
	return Param{Name: name, Type: "string", Description: description, Required: true}
}

// IntegerParam is a required integer argument.
func IntegerParam(name, description string) Param {
	return Param{Name: name, Type: "integer", Description: description, Required: true}
}

// Optional marks the parameter as not required.
func (p Param) Optional() Param {
	p.Required = false
	return p
}

// ObjectSchema builds a JSON schema object from params.
func ObjectSchema(params ...Param) map[string]any {
	props := make(map[string]any, len(params))
	required := make([]string, 0, len(params))
	for _, p := range params {
		prop := map[string]any{"type": p.Type}
		if p.Description != "" {
			prop["description"] = p.Description
		}
		props[p.Name] = prop
		if p.Required {
			required = append(required, p.Name)
		}
	}
	schema := map[string]any{
		"type":       "object",
		"properties": props,
	}
	if len(required) > 0 {
		schema["required"] = required
	}
	return schema
}

// Func adapts a function to tools.Tool.
type Func struct {
	name        string
	description string
	schema      map[string]any
	fn          func(ctx context.Context, args Args) (string, error)
}

var _ SchemaTool = (*Func)(nil)

// NewFunc creates a tool named name. A nil schema declares no arguments.
func NewFunc(name, description string, schema map[string]any, fn func(ctx context.Context, args Args) (string, error)) *Func {
	if schema == nil {
		schema = ObjectSchema()
	}
	return &Func{name: name, description: description, schema: schema, fn: fn}
}

// Name returns the name of the tool.
func (f *Func) Name() string { return f.name }

// Description returns the description of the tool.
func (f *Func) Description() string { return f.description }

// Schema returns the JSON schema of the tool arguments.
func (f *Func) Schema() map[string]any { return f.schema }

// Call executes the tool.
func (f *Func) Call(ctx context.Context, input string) (string, error) {
	return f.fn(ctx, ParseArgs(input))
}

// ByName indexes tools by name. Later tools win on duplicate names.
func ByName(ts []tools.Tool) map[string]tools.Tool {
	m := make(map[string]tools.Tool, len(ts))
	for _, t := range ts {
		m[t.Name()] = t
	}
	return m
}
