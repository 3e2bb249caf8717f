package driven

// ConfigStore is a flat key/value view over the user's config file.
// Keys are dotted paths such as "pipeline.top_k" or "llm.provider".
// Typed getters return the zero value when a key is missing or has the wrong type.
type ConfigStore interface {
	// Get returns the raw value and whether the key is present.
	Get(key string) (any, bool)

	GetString(key string) string

	// GetInt truncates float values.
	GetInt(key string) int

	// GetFloat converts integers.
	GetFloat(key string) float64

	GetBool(key string) bool
	GetStringSlice(key string) []string

	// Set updates a key and writes the file.
	Set(key string, value any) error

	Save() error
	Load() error

	// Path is where Save writes.
	Path() string
}
