package skelagent

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/skela-dev/skela/src/router"
	"github.com/skela-dev/skela/src/templates"
)

func TestBuildSystemPrompt(t *testing.T) {
	prompt := BuildSystemPrompt(PromptInput{
		Tier:      router.TierChat,
		Templates: templates.BuiltinTemplates(),
		Tools:     DefaultTools(),
	})

	assert.Contains(t, prompt, "You are Skela")
	assert.Contains(t, prompt, `"chat" capacity tier`)
	assert.Contains(t, prompt, "SUGGEST_TEMPLATE: <slug>")
	assert.Contains(t, prompt, "Tabs Dashboard (tabs): Multi-tab dashboard web app with routing and shared state")
	assert.Contains(t, prompt, "TOOL_CALL:<toolName><JSON parameters object>")
	assert.Contains(t, prompt, "writeFile (requires approval)")
	assert.Contains(t, prompt, "readFile (no approval needed)")
	assert.Contains(t, prompt, "<env>")
}

func TestBuildSystemPromptTemplateOrder(t *testing.T) {
	prompt := BuildSystemPrompt(PromptInput{
		Tier: router.TierFast,
		Templates: []templates.TemplateMeta{
			{Name: "B", Slug: "b", Description: "second"},
			{Name: "A", Slug: "a", Description: "first"},
		},
	})

	// Catalog order is preserved as given.
	assert.Less(t, strings.Index(prompt, "B (b)"), strings.Index(prompt, "A (a)"))
}

func TestDefaultToolsApprovalPolicy(t *testing.T) {
	byName := map[string]bool{}
	for _, def := range DefaultTools() {
		byName[def.Name] = def.ApprovalRequired
	}

	assert.False(t, byName["readFile"])
	assert.False(t, byName["listFiles"])
	assert.True(t, byName["writeFile"])
	assert.True(t, byName["deleteFile"])
	assert.True(t, byName["runCommand"])
	assert.True(t, byName["scaffoldProject"])
}

func TestDefaultModelsCoverAllTiers(t *testing.T) {
	models := DefaultModels()
	for _, tier := range []router.Tier{router.TierFast, router.TierChat, router.TierCode, router.TierComplex} {
		assert.NotEmpty(t, models[tier], "tier %s", tier)
	}
}
