package main

import (
	"fmt"

	"github.com/skela-dev/skela/src/skelagent"
	"github.com/skela-dev/skela/src/toolcall"
)

// ToolsCmd lists the registered tools
type ToolsCmd struct {
	Schema bool `help:"Include each tool's parameter schema"`
}

// Run executes the tools command
func (c *ToolsCmd) Run(cli *CLI) error {
	registry := toolcall.NewRegistry(skelagent.DefaultTools())

	for _, tool := range registry.Tools() {
		approval := "no approval"
		if tool.ApprovalRequired {
			approval = "requires approval"
		}
		fmt.Printf("%-18s %-18s %s\n", tool.Name, approval, tool.Description)
		if c.Schema {
			fmt.Printf("  schema: %s\n", tool.SchemaJSON())
		}
	}
	return nil
}
