// Package logging provides a small abstraction over slog so the rest of
// Localmind depends on a minimal Logger interface while callers plug in any
// structured logger. RunLogger adds contextual helpers (component, run id,
// node) plus domain-specific helpers for tool and inference call logging.
package logging
