package toolcall

// Registry is the immutable tool catalog. Construct it once with NewRegistry
// and pass it by reference into the parser and the approval gate.
type Registry struct {
	tools map[string]ToolDefinition
	order []string
}

// NewRegistry builds a registry from the given definitions. Later duplicates
// of a name are ignored.
func NewRegistry(defs []ToolDefinition) *Registry {
	r := &Registry{tools: make(map[string]ToolDefinition, len(defs))}
	for _, def := range defs {
		if def.Name == "" {
			continue
		}
		if _, exists := r.tools[def.Name]; exists {
			continue
		}
		r.tools[def.Name] = def
		r.order = append(r.order, def.Name)
	}
	return r
}

// Tool returns the definition for the given name.
func (r *Registry) Tool(name string) (ToolDefinition, bool) {
	def, ok := r.tools[name]
	return def, ok
}

// HasTool checks if a tool is in the catalog.
func (r *Registry) HasTool(name string) bool {
	_, ok := r.tools[name]
	return ok
}

// RequiresApproval reports whether a tool call must clear the approval gate
// before execution. Unknown tools always require approval.
func (r *Registry) RequiresApproval(name string) bool {
	def, ok := r.tools[name]
	if !ok {
		return true
	}
	return def.ApprovalRequired
}

// Tools returns the definitions in registration order.
func (r *Registry) Tools() []ToolDefinition {
	out := make([]ToolDefinition, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.tools[name])
	}
	return out
}
