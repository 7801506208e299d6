// Package toolcall defines the tool catalog and extracts structured tool
// invocations from free-form model output.
package toolcall

import (
	"encoding/json"
	"sort"
	"time"

	jsonschema "github.com/swaggest/jsonschema-go"
)

// Status tracks a tool call through its lifecycle.
type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
	StatusExecuted Status = "executed"
	StatusFailed   Status = "failed"
)

// CanTransition reports whether a status may advance to the given one.
// Lifecycle: pending -> approved|rejected -> executed|failed. Never backward,
// never skipping.
func (s Status) CanTransition(to Status) bool {
	switch s {
	case StatusPending:
		return to == StatusApproved || to == StatusRejected
	case StatusApproved:
		return to == StatusExecuted || to == StatusFailed
	default:
		return false
	}
}

// ToolCall is a structured, side-effecting action request extracted from
// model output. Only Status, Result and Error may change after creation.
type ToolCall struct {
	ID         string                 `json:"id"`
	ToolName   string                 `json:"tool_name"`
	Parameters map[string]interface{} `json:"parameters"`
	Status     Status                 `json:"status"`
	Result     string                 `json:"result,omitempty"`
	Error      string                 `json:"error,omitempty"`
	Timestamp  time.Time              `json:"timestamp"`
}

// ParamSpec describes a single tool parameter.
type ParamSpec struct {
	Type        string `json:"type"`
	Description string `json:"description"`
	Required    bool   `json:"required,omitempty"`
}

// ToolDefinition is one entry of the fixed tool catalog.
type ToolDefinition struct {
	Name             string               `json:"name"`
	Description      string               `json:"description"`
	Parameters       map[string]ParamSpec `json:"parameters"`
	ApprovalRequired bool                 `json:"approval_required"`
}

// Schema renders the parameter specs as a JSON Schema object, used when
// presenting the catalog to the model.
func (d ToolDefinition) Schema() *jsonschema.Schema {
	props := make(map[string]jsonschema.SchemaOrBool, len(d.Parameters))
	var required []string

	for name, spec := range d.Parameters {
		propType := jsonschema.SimpleType(spec.Type)
		desc := spec.Description
		props[name] = jsonschema.SchemaOrBool{TypeObject: &jsonschema.Schema{
			Type:        &jsonschema.Type{SimpleTypes: &propType},
			Description: &desc,
		}}
		if spec.Required {
			required = append(required, name)
		}
	}
	sort.Strings(required)

	objType := jsonschema.SimpleType("object")
	return &jsonschema.Schema{
		Type:       &jsonschema.Type{SimpleTypes: &objType},
		Properties: props,
		Required:   required,
	}
}

// SchemaJSON returns the parameter schema as compact JSON.
func (d ToolDefinition) SchemaJSON() string {
	data, err := json.Marshal(d.Schema())
	if err != nil {
		return "{}"
	}
	return string(data)
}
