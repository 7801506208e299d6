// Package skelagent holds the Skela agent identity: its tool catalog, tier
// to model mapping, and system prompt.
package skelagent

import (
	"github.com/skela-dev/skela/src/router"
	"github.com/skela-dev/skela/src/toolcall"
)

// AgentID identifies this agent in pending-approval records.
const AgentID = "skela"

// DefaultModels maps each routing tier to its default model identifier.
// Overridable through configuration.
func DefaultModels() map[router.Tier]string {
	return map[router.Tier]string{
		router.TierFast:    "openai/gpt-4o-mini",
		router.TierChat:    "anthropic/claude-3.5-haiku",
		router.TierCode:    "anthropic/claude-sonnet-4",
		router.TierComplex: "anthropic/claude-opus-4",
	}
}

// DefaultTools returns the fixed tool catalog. Reads are unattended;
// anything that mutates the workspace or runs code needs an operator.
func DefaultTools() []toolcall.ToolDefinition {
	return []toolcall.ToolDefinition{
		{
			Name:        "readFile",
			Description: "Read the contents of a file",
			Parameters: map[string]toolcall.ParamSpec{
				"path": {Type: "string", Description: "File path to read", Required: true},
			},
			ApprovalRequired: false,
		},
		{
			Name:        "listFiles",
			Description: "List files in a directory",
			Parameters: map[string]toolcall.ParamSpec{
				"path": {Type: "string", Description: "Directory path to list", Required: true},
			},
			ApprovalRequired: false,
		},
		{
			Name:        "searchFiles",
			Description: "Search file contents for a pattern",
			Parameters: map[string]toolcall.ParamSpec{
				"pattern": {Type: "string", Description: "Pattern to search for", Required: true},
				"path":    {Type: "string", Description: "Directory to search in"},
			},
			ApprovalRequired: false,
		},
		{
			Name:        "writeFile",
			Description: "Write content to a file",
			Parameters: map[string]toolcall.ParamSpec{
				"path":    {Type: "string", Description: "File path to write", Required: true},
				"content": {Type: "string", Description: "Content to write", Required: true},
			},
			ApprovalRequired: true,
		},
		{
			Name:        "deleteFile",
			Description: "Delete a file",
			Parameters: map[string]toolcall.ParamSpec{
				"path": {Type: "string", Description: "File path to delete", Required: true},
			},
			ApprovalRequired: true,
		},
		{
			Name:        "runCommand",
			Description: "Run a shell command in the project workspace",
			Parameters: map[string]toolcall.ParamSpec{
				"command": {Type: "string", Description: "Command to run", Required: true},
			},
			ApprovalRequired: true,
		},
		{
			Name:        "scaffoldProject",
			Description: "Scaffold a new project from a template",
			Parameters: map[string]toolcall.ParamSpec{
				"template": {Type: "string", Description: "Template slug to scaffold from", Required: true},
				"name":     {Type: "string", Description: "Project name", Required: true},
			},
			ApprovalRequired: true,
		},
	}
}
