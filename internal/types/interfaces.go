// Package types holds the small set of capabilities shared across the ERP
// packages. Keeping them here lets agents, reports and the router depend on
// behaviour instead of on the concrete store or model client.
package types

import "context"

// Executor runs read queries against the ERP store.
// Implementations own their connection pool and close every cursor they open.
type Executor interface {
	// Query runs a parameterised statement and returns each row as a
	// column-name keyed map. SQL uses '?' placeholders.
	Query(ctx context.Context, query string, args ...any) ([]Row, error)

	// ListTables returns the user tables of the store, sorted by name.
	ListTables(ctx context.Context) ([]string, error)
}

// LLMClient is the language-model backend used for narration.
type LLMClient interface {
	Complete(ctx context.Context, prompt string) (string, error)
	CompleteWithSystem(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}
