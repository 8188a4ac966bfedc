package errors

// Registered error codes.
const (
	CodePathNotFound      = "E101"
	CodeTypeMismatch      = "E102"
	CodeParse             = "E103"
	CodeUnknownFilter     = "E104"
	CodeFilterFailed      = "E105"
	CodeWatchMultipleVars = "E106"
	CodeNotAssignable     = "E107"

	CodeDestroyed          = "E201"
	CodeUnknownComponent   = "E202"
	CodeRestrictViolation  = "E203"
	CodeInitAborted        = "E204"
	CodeTemplateLoadFailed = "E205"

	CodeConfigInvalid  = "E301"
	CodeConfigNotFound = "E302"
)

// ErrorTemplate defines a registered error type.
type ErrorTemplate struct {
	Category Category
	Message  string
	Detail   string
}

// registry maps error codes to their templates.
var registry = map[string]ErrorTemplate{
	// ============================================
	// Expression Errors (E101-E199)
	// ============================================

	CodePathNotFound: {
		Category: CategoryExpression,
		Message:  "Path not found",
		Detail:   "A property along the access path does not exist in the resolved scope. The expression renders as empty for this pass.",
	},
	CodeTypeMismatch: {
		Category: CategoryExpression,
		Message:  "Type mismatch",
		Detail:   "A path step was applied to a value that cannot be indexed that way, or an assigned value cannot be converted to the field type.",
	},
	CodeParse: {
		Category: CategoryExpression,
		Message:  "Invalid expression",
		Detail:   "The expression text could not be parsed.",
	},
	CodeUnknownFilter: {
		Category: CategoryExpression,
		Message:  "Unknown filter",
		Detail:   "The filter named in the pipeline is not registered with the engine.",
	},
	CodeFilterFailed: {
		Category: CategoryExpression,
		Message:  "Filter failed",
		Detail:   "A filter returned an error for its input.",
	},
	CodeWatchMultipleVars: {
		Category: CategoryUsage,
		Message:  "Only one property can be watched at a time",
		Detail:   "A watch expression referenced more than one variable. Register one watch per property.",
	},
	CodeNotAssignable: {
		Category: CategoryUsage,
		Message:  "Expression is not assignable",
		Detail:   "Only a single variable path can be the target of an assignment.",
	},

	// ============================================
	// Lifecycle Errors (E201-E299)
	// ============================================

	CodeDestroyed: {
		Category: CategoryLifecycle,
		Message:  "Component destroyed",
		Detail:   "The operation was attempted on a component that has already been destroyed.",
	},
	CodeUnknownComponent: {
		Category: CategoryLifecycle,
		Message:  "Unknown component",
		Detail:   "No component definition is registered under this name.",
	},
	CodeRestrictViolation: {
		Category: CategoryLifecycle,
		Message:  "Component restriction violated",
		Detail:   "The parent/child combination is not allowed by the component's restrict rules.",
	},
	CodeInitAborted: {
		Category: CategoryLifecycle,
		Message:  "Component init aborted",
		Detail:   "The view or the init hook rejected initialization; the component was destroyed.",
	},
	CodeTemplateLoadFailed: {
		Category: CategoryLifecycle,
		Message:  "Template load failed",
		Detail:   "The template URL could not be loaded.",
	},

	// ============================================
	// Config Errors (E301-E399)
	// ============================================

	CodeConfigInvalid: {
		Category: CategoryConfig,
		Message:  "Invalid configuration",
		Detail:   "vbind.yaml contains an invalid value.",
	},
	CodeConfigNotFound: {
		Category: CategoryConfig,
		Message:  "Configuration not found",
		Detail:   "No vbind.yaml was found in the directory or its parents.",
	},
}

// GetAllCodes returns all registered error codes.
func GetAllCodes() []string {
	codes := make([]string, 0, len(registry))
	for code := range registry {
		codes = append(codes, code)
	}
	return codes
}

// GetTemplate returns the template for an error code.
func GetTemplate(code string) (ErrorTemplate, bool) {
	t, ok := registry[code]
	return t, ok
}
