package tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"site-assistant/internal/llm"
)

var ErrUnknownTool = errors.New("unknown tool")

// Tool es una capacidad que el modelo puede invocar durante la generacion.
type Tool interface {
	Name() string
	Description() string
	Parameters() map[string]any
	Call(ctx context.Context, args json.RawMessage) (Result, error)
}

// Result es la salida tipada de una herramienta; se serializa tal cual como
// contenido del mensaje "tool".
type Result interface {
	Succeeded() bool
	// UI devuelve los datos de interfaz a transportar en la directiva, o nil.
	UI() *UIPayload
}

// Registry mantiene las herramientas en orden de registro.
type Registry struct {
	order []string
	tools map[string]Tool
}

func NewRegistry(tools ...Tool) *Registry {
	r := &Registry{tools: make(map[string]Tool, len(tools))}
	for _, t := range tools {
		r.Register(t)
	}
	return r
}

func (r *Registry) Register(t Tool) {
	if _, ok := r.tools[t.Name()]; !ok {
		r.order = append(r.order, t.Name())
	}
	r.tools[t.Name()] = t
}

// Definitions expone las herramientas en el formato de chat completions.
func (r *Registry) Definitions() []llm.ToolDefinition {
	defs := make([]llm.ToolDefinition, 0, len(r.order))
	for _, name := range r.order {
		t := r.tools[name]
		defs = append(defs, llm.ToolDefinition{
			Type: "function",
			Function: llm.FunctionDefinition{
				Name:        t.Name(),
				Description: t.Description(),
				Parameters:  t.Parameters(),
			},
		})
	}
	return defs
}

func (r *Registry) Call(ctx context.Context, name string, args json.RawMessage) (Result, error) {
	t, ok := r.tools[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownTool, name)
	}
	return t.Call(ctx, args)
}
