package skelagent

import (
	"fmt"
	"runtime"
	"strings"
	"time"

	"github.com/shirou/gopsutil/v3/host"

	"github.com/skela-dev/skela/src/router"
	"github.com/skela-dev/skela/src/templates"
	"github.com/skela-dev/skela/src/toolcall"
)

// Static prompt templates
const (
	mainPromptTemplate = `You are Skela, an AI assistant that helps users design and scaffold software projects.

You discuss requirements, propose architectures, and suggest project templates. Be concrete and practical; prefer small, well-understood designs over speculative ones.

`

	templateSectionHeader = `# Project templates
The following project templates are available. When one of them fits the user's intent, emit a line of the form:
SUGGEST_TEMPLATE: <slug>
on its own line, using the exact slug from the list. Suggest at most one template per reply, and only when it genuinely fits.

`

	toolSectionHeader = `# Tools
You may request side-effecting actions by emitting a tool call in your reply, formatted exactly as:
TOOL_CALL:<toolName><JSON parameters object>
Sensitive tools are held for human approval before anything executes; do not assume a requested action has happened.

Available tools:

`
)

// PromptInput carries the per-turn data the system prompt is built from.
type PromptInput struct {
	Tier      router.Tier
	Templates []templates.TemplateMeta
	Tools     []toolcall.ToolDefinition
}

// BuildSystemPrompt renders the full system prompt for one turn.
func BuildSystemPrompt(in PromptInput) string {
	var b strings.Builder

	b.WriteString(mainPromptTemplate)
	fmt.Fprintf(&b, "You are answering on the %q capacity tier.\n\n", in.Tier)

	b.WriteString(templateSectionHeader)
	for _, meta := range in.Templates {
		fmt.Fprintf(&b, "- %s (%s): %s\n", meta.Name, meta.Slug, meta.Description)
	}
	b.WriteString("\n")

	if len(in.Tools) > 0 {
		b.WriteString(toolSectionHeader)
		for _, def := range in.Tools {
			approval := "no approval needed"
			if def.ApprovalRequired {
				approval = "requires approval"
			}
			fmt.Fprintf(&b, "- %s (%s): %s\n  parameters: %s\n", def.Name, approval, def.Description, def.SchemaJSON())
		}
		b.WriteString("\n")
	}

	b.WriteString(getEnvironmentInfo())

	return b.String()
}

// getEnvironmentInfo generates dynamic environment information
func getEnvironmentInfo() string {
	today := time.Now().Format("2006-01-02")

	return fmt.Sprintf(`Here is useful information about the environment you are running in:
<env>
Platform: %s
OS Version: %s
Today's date: %s
</env>`, runtime.GOOS, getOSVersion(), today)
}

// getOSVersion returns detailed OS version information
func getOSVersion() string {
	info, err := host.Info()
	if err == nil {
		// gopsutil provides detailed info across all platforms
		if info.PlatformVersion != "" {
			return fmt.Sprintf("%s %s", info.Platform, info.PlatformVersion)
		}
		return info.Platform
	}

	// Fallback to basic OS name if gopsutil fails
	return runtime.GOOS
}
