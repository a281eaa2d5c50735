package errors

// ErrorTemplate defines a registered error type.
type ErrorTemplate struct {
	Category Category
	Message  string
	Detail   string
	DocURL   string
}

// Code sentinels for errors.Is checks.
var (
	ErrNoReducer      = &StoreError{Code: "S001"}
	ErrActionType     = &StoreError{Code: "S002"}
	ErrPassPanic      = &StoreError{Code: "S003"}
	ErrConfigRead     = &StoreError{Code: "S120"}
	ErrConfigFormat   = &StoreError{Code: "S121"}
	ErrConfigInvalid  = &StoreError{Code: "S122"}
	ErrInspectorStart = &StoreError{Code: "S140"}
)

// registry maps error codes to their templates.
var registry = map[string]ErrorTemplate{
	// ============================================
	// Store Errors (S001-S099)
	// ============================================

	"S001": {
		Category: CategoryConfig,
		Message:  "Dispatch called on a store without a reducer",
		Detail:   "Dispatch only works on stores created with a reducer. The action was ignored and the store value is unchanged.",
		DocURL:   "https://vstore.dev/docs/errors/S001",
	},
	"S002": {
		Category: CategoryConfig,
		Message:  "Action type not accepted by reducer",
		Detail:   "The dispatched action does not match the reducer's action type. The action was ignored and the store value is unchanged.",
		DocURL:   "https://vstore.dev/docs/errors/S002",
	},
	"S003": {
		Category: CategoryRuntime,
		Message:  "Panic during notification pass",
		Detail:   "A reducer, projector or observer callback panicked. The pass was abandoned and queued mutations were discarded.",
		DocURL:   "https://vstore.dev/docs/errors/S003",
	},

	// ============================================
	// Config Errors (S120-S139)
	// ============================================

	"S120": {
		Category: CategoryConfig,
		Message:  "Cannot read config file",
		Detail:   "The configuration file could not be read or parsed.",
		DocURL:   "https://vstore.dev/docs/errors/S120",
	},
	"S121": {
		Category: CategoryConfig,
		Message:  "Unsupported config format",
		Detail:   "Configuration files must end in .json, .toml, .yaml or .yml.",
		DocURL:   "https://vstore.dev/docs/errors/S121",
	},
	"S122": {
		Category: CategoryConfig,
		Message:  "Invalid config value",
		Detail:   "A configuration value is out of range or not recognized.",
		DocURL:   "https://vstore.dev/docs/errors/S122",
	},

	// ============================================
	// CLI Errors (S140-S159)
	// ============================================

	"S140": {
		Category: CategoryCLI,
		Message:  "Inspector failed to start",
		Detail:   "The inspector could not listen on the configured address.",
		DocURL:   "https://vstore.dev/docs/errors/S140",
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
