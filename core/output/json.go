// Package output - JSON formatter
package output

import (
	"encoding/json"
	"io"
)

// JSONFormatter emits the result as indented JSON. This is the wire
// contract for external plotting frontends.
type JSONFormatter struct{}

// Format returns the format type
func (f *JSONFormatter) Format() Format {
	return FormatJSON
}

// Render writes the result as JSON
func (f *JSONFormatter) Render(w io.Writer, result *Result) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}
