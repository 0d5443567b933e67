package errors

import (
	"sort"
	"sync"
)

// ErrorTemplate defines a registered error type.
type ErrorTemplate struct {
	Category   Category
	Message    string
	Suggestion string
}

var (
	registryMu sync.RWMutex

	// registry maps error codes to their templates.
	registry = map[string]ErrorTemplate{
		// Cache errors (C001-C009)
		"C001": {
			Category:   CategoryCache,
			Message:    "Empty cache key",
			Suggestion: "Cache keys must be non-empty strings. Use a namespaced key such as \"user/profile\".",
		},
		"C002": {
			Category:   CategoryCache,
			Message:    "Binding closed",
			Suggestion: "The consumer owning this binding has been torn down. Activate a new binding for the new consumer.",
		},
		"C003": {
			Category:   CategoryCache,
			Message:    "Cached value has unexpected type",
			Suggestion: "Use a distinct key per value type, or read the value with Cache.Get and type-switch.",
		},
		"C004": {
			Category:   CategoryCache,
			Message:    "No cache provided",
			Suggestion: "Call store.Provide(root, cache) on an ancestor owner before activating a binding.",
		},

		// Snapshot errors (C010-C019)
		"C010": {
			Category: CategorySnapshot,
			Message:  "Snapshot not found",
		},
		"C011": {
			Category:   CategorySnapshot,
			Message:    "Snapshot encoding failed",
			Suggestion: "Only JSON-encodable values can be captured in a snapshot.",
		},
		"C012": {
			Category: CategorySnapshot,
			Message:  "Snapshot backend failure",
		},

		// Config errors (C020-C029)
		"C020": {
			Category: CategoryConfig,
			Message:  "Invalid configuration",
		},
		"C021": {
			Category: CategoryConfig,
			Message:  "Configuration file unreadable",
		},

		// Transport errors (C030-C039)
		"C030": {
			Category: CategoryTransport,
			Message:  "Invalid request body",
		},
		"C031": {
			Category: CategoryTransport,
			Message:  "Key not found",
		},
	}
)

// GetAllCodes returns all registered error codes in sorted order.
func GetAllCodes() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()

	codes := make([]string, 0, len(registry))
	for code := range registry {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

// GetTemplate returns the template for an error code.
func GetTemplate(code string) (ErrorTemplate, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	t, ok := registry[code]
	return t, ok
}

// Register adds or replaces an error template.
func Register(code string, template ErrorTemplate) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[code] = template
}
