// Package templates exposes the project template catalog consumed by the
// system prompt. Rendering template files is out of scope; only metadata
// lives here.
package templates

import (
	"context"
)

// TemplateMeta describes one catalog entry.
type TemplateMeta struct {
	Name        string `json:"name"`
	Slug        string `json:"slug"`
	Description string `json:"description"`
}

// Catalog provides ordered template metadata.
type Catalog interface {
	Metadata(ctx context.Context) ([]TemplateMeta, error)
}

// StaticCatalog serves a fixed metadata list.
type StaticCatalog struct {
	entries []TemplateMeta
}

// NewStaticCatalog creates a catalog over the given entries.
func NewStaticCatalog(entries []TemplateMeta) *StaticCatalog {
	return &StaticCatalog{entries: entries}
}

// Metadata returns the entries in their original order.
func (c *StaticCatalog) Metadata(_ context.Context) ([]TemplateMeta, error) {
	out := make([]TemplateMeta, len(c.entries))
	copy(out, c.entries)
	return out, nil
}

// BuiltinTemplates is the default catalog shipped with the server.
func BuiltinTemplates() []TemplateMeta {
	return []TemplateMeta{
		{Name: "Tabs Dashboard", Slug: "tabs", Description: "Multi-tab dashboard web app with routing and shared state"},
		{Name: "REST API", Slug: "rest-api", Description: "JSON REST API service with storage and request validation"},
		{Name: "CLI Tool", Slug: "cli", Description: "Command-line tool with subcommands and config discovery"},
		{Name: "Static Site", Slug: "static-site", Description: "Content-driven static site with templated pages"},
		{Name: "Worker Service", Slug: "worker", Description: "Background worker consuming jobs from a queue"},
	}
}
