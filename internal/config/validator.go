package config

import (
	"fmt"
	"slices"
	"strings"

	"github.com/Iron-Ham/laneguard/internal/logging"
)

// ValidationError is one rejected config value.
type ValidationError struct {
	Field   string
	Value   any
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s (got: %v)", e.Field, e.Message, e.Value)
}

// ValidationErrors joins several failures into one error.
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	switch len(e) {
	case 0:
		return ""
	case 1:
		return e[0].Error()
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "%d invalid config values:\n", len(e))
	for _, err := range e {
		sb.WriteString("  - " + err.Error() + "\n")
	}
	return sb.String()
}

// ValidLogLevels lists the accepted logging.level values, lower-cased as
// they appear in config files.
func ValidLogLevels() []string {
	levels := logging.ValidLevels()
	out := make([]string, len(levels))
	for i, l := range levels {
		out[i] = strings.ToLower(l)
	}
	return out
}

// Validate returns every invalid value in c. Only the logging section is
// checked: an unknown coordination mode is ignored when the mode is
// resolved, and state paths are checked when the file is written.
func (c *Config) Validate() []ValidationError {
	var problems []ValidationError

	level := strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if level != "" && level != "warning" && !slices.Contains(ValidLogLevels(), level) {
		problems = append(problems, ValidationError{
			Field:   "logging.level",
			Value:   c.Logging.Level,
			Message: "must be one of: " + strings.Join(ValidLogLevels(), ", "),
		})
	}

	for _, f := range []struct {
		field string
		value int
	}{
		{"logging.max_size_mb", c.Logging.MaxSizeMB},
		{"logging.max_backups", c.Logging.MaxBackups},
	} {
		if f.value < 0 {
			problems = append(problems, ValidationError{Field: f.field, Value: f.value, Message: "must be non-negative"})
		}
	}

	return problems
}
