package movies

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"cinelog/internal/services"
)

// Export formats.
const (
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// FormatFromPath picks a format from a file extension, defaulting to JSON.
func FormatFromPath(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

// Encode writes list as a JSON array or a YAML sequence.
func Encode(w io.Writer, list []Record, format string) error {
	if list == nil {
		list = []Record{}
	}
	switch strings.ToLower(format) {
	case FormatJSON, "":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(list)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(list); err != nil {
			return err
		}
		return enc.Close()
	default:
		return services.Wrap(services.ErrValidation, "movies", "encode", fmt.Sprintf("unsupported format %q", format), nil)
	}
}

// Decode reads an exported collection. Every element goes through
// SanitizeValue; non-object elements are dropped.
func Decode(r io.Reader, format string) ([]Record, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read collection: %w", err)
	}

	var items []any
	switch strings.ToLower(format) {
	case FormatJSON, "":
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.UseNumber()
		err = dec.Decode(&items)
	case FormatYAML:
		err = yaml.Unmarshal(data, &items)
	default:
		return nil, services.Wrap(services.ErrValidation, "movies", "decode", fmt.Sprintf("unsupported format %q", format), nil)
	}
	if err != nil {
		return nil, services.Wrap(services.ErrValidation, "movies", "decode", "collection must be a list of movie records", err)
	}

	out := make([]Record, 0, len(items))
	for _, item := range items {
		obj, ok := item.(map[string]any)
		if !ok {
			continue
		}
		out = append(out, SanitizeValue(obj))
	}
	return dedupe(out), nil
}
