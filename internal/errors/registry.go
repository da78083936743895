package errors

import "sort"

// ErrorTemplate defines a registered error type.
type ErrorTemplate struct {
	Category   Category
	Message    string
	Detail     string
	Suggestion string
	DocURL     string
}

// registry maps error codes to their templates.
var registry = map[string]ErrorTemplate{
	// ============================================
	// History Errors (Q001-Q099)
	// ============================================

	"Q001": {
		Category:   CategoryHistory,
		Message:    "Push is not allowed in static history",
		Detail:     "The static history is used when no navigable environment exists. It has a fixed location and cannot navigate.",
		Suggestion: "Provide a live history (history.NewMemory or a websocket history) to write state.",
	},
	"Q002": {
		Category: CategoryHistory,
		Message:  "Static history cannot have subscriptions",
		Detail:   "Listeners registered on a static history are never called.",
	},

	// ============================================
	// Config Errors (Q100-Q199)
	// ============================================

	"Q101": {
		Category:   CategoryConfig,
		Message:    "Configuration file not found",
		Suggestion: "Create querystate.json (or querystate.yaml) or pass --config.",
	},
	"Q102": {
		Category: CategoryConfig,
		Message:  "Configuration file could not be parsed",
	},
	"Q103": {
		Category:   CategoryConfig,
		Message:    "Unknown codec kind in schema",
		Suggestion: "Use one of: identity, boolean, string, number.",
	},
	"Q104": {
		Category: CategoryConfig,
		Message:  "Invalid configuration",
	},

	// ============================================
	// Provider Errors (Q200-Q299)
	// ============================================

	"Q201": {
		Category: CategoryProvider,
		Message:  "Provider is closed",
		Detail:   "The provider has been detached from its history and no longer receives location changes.",
	},

	// ============================================
	// Transport Errors (Q300-Q399)
	// ============================================

	"Q301": {
		Category: CategoryTransport,
		Message:  "History handshake failed",
		Detail:   "The client must send a hello frame carrying its current location right after connecting.",
	},
	"Q302": {
		Category: CategoryTransport,
		Message:  "History connection closed",
	},

	// ============================================
	// CLI Errors (Q400-Q499)
	// ============================================

	"Q401": {
		Category: CategoryCLI,
		Message:  "Invalid argument",
	},
	"Q402": {
		Category: CategoryCLI,
		Message:  "Output could not be written",
	},
	"Q403": {
		Category:   CategoryCLI,
		Message:    "Malformed query string",
		Suggestion: "Percent-encode '%' as %25, or drop --strict to keep malformed escapes verbatim.",
	},
}

// Lookup returns the template registered for code.
func Lookup(code string) (ErrorTemplate, bool) {
	t, ok := registry[code]
	return t, ok
}

// Codes returns all registered codes in order.
func Codes() []string {
	codes := make([]string, 0, len(registry))
	for code := range registry {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}
