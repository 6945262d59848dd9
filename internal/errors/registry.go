package errors

import "slices"

// ErrorTemplate defines a registered error type.
type ErrorTemplate struct {
	Category Category
	Message  string
	Detail   string
}

var registry = map[string]ErrorTemplate{
	// ============================================
	// Config Errors (E100-E199)
	// ============================================

	"E101": {
		Category: CategoryConfig,
		Message:  "Config file not found",
		Detail:   "The configuration file does not exist at the given path.",
	},
	"E102": {
		Category: CategoryConfig,
		Message:  "Invalid config file",
		Detail:   "The configuration file could not be read or is not valid JSON.",
	},
	"E103": {
		Category: CategoryConfig,
		Message:  "Invalid log level",
		Detail:   "Log level must be one of debug, info, warn or error.",
	},
	"E104": {
		Category: CategoryConfig,
		Message:  "Invalid log format",
		Detail:   "Log format must be text or json.",
	},
	"E105": {
		Category: CategoryConfig,
		Message:  "Invalid devtools settings",
		Detail:   "The devtools address must be host:port and the history size must not be negative.",
	},
	"E106": {
		Category: CategoryConfig,
		Message:  "Config write failed",
		Detail:   "The configuration could not be written to disk.",
	},

	// ============================================
	// Scenario Errors (E200-E299)
	// ============================================

	"E201": {
		Category: CategoryScenario,
		Message:  "Scenario file not found",
		Detail:   "The scenario file does not exist or cannot be read.",
	},
	"E202": {
		Category: CategoryScenario,
		Message:  "Invalid scenario file",
		Detail:   "The scenario file is not valid YAML or JSON.",
	},
	"E203": {
		Category: CategoryScenario,
		Message:  "Unknown step operation",
		Detail:   "Steps support set, delete, push, pop, splice, add, remove, clear and read.",
	},
	"E204": {
		Category: CategoryScenario,
		Message:  "Path not found",
		Detail:   "A path segment does not resolve to a tracked container in the current document.",
	},
	"E205": {
		Category: CategoryScenario,
		Message:  "Step failed",
		Detail:   "The container rejected the operation.",
	},
	"E206": {
		Category: CategoryScenario,
		Message:  "Invalid watcher",
		Detail:   "Every watcher needs a path into the document.",
	},

	// ============================================
	// CLI Errors (E300-E399)
	// ============================================

	"E301": {
		Category: CategoryCLI,
		Message:  "Invalid output format",
		Detail:   "Output format must be text or json.",
	},
	"E302": {
		Category: CategoryCLI,
		Message:  "Devtools server failed",
		Detail:   "The inspector HTTP server could not start or stopped unexpectedly.",
	},
}

// GetAllCodes returns all registered error codes in ascending order.
func GetAllCodes() []string {
	codes := make([]string, 0, len(registry))
	for code := range registry {
		codes = append(codes, code)
	}
	slices.Sort(codes)
	return codes
}

// GetTemplate returns the template for an error code.
func GetTemplate(code string) (ErrorTemplate, bool) {
	t, ok := registry[code]
	return t, ok
}

// Register adds a new error template to the registry.
func Register(code string, template ErrorTemplate) {
	registry[code] = template
}
