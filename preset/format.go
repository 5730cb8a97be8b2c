package preset

import (
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Format is the on-disk encoding of a preset or pattern file.
type Format int

const (
	JSON Format = iota
	YAML
)

// ErrUnknownFormat is returned for file extensions other than .json, .yaml
// and .yml.
var ErrUnknownFormat = errors.New("preset: unknown file format")

func (f Format) String() string {
	switch f {
	case JSON:
		return "json"
	case YAML:
		return "yaml"
	}
	return fmt.Sprintf("Format(%d)", int(f))
}

// FormatFromPath picks the encoding from the file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return JSON, nil
	case ".yaml", ".yml":
		return YAML, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownFormat, path)
}

func unmarshal(data []byte, format Format, v any) error {
	switch format {
	case JSON:
		return json.Unmarshal(data, v)
	case YAML:
		return yaml.Unmarshal(data, v)
	}
	return fmt.Errorf("%w: %v", ErrUnknownFormat, format)
}

func marshal(v any, format Format) ([]byte, error) {
	switch format {
	case JSON:
		b, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return nil, err
		}
		return append(b, '\n'), nil
	case YAML:
		return yaml.Marshal(v)
	}
	return nil, fmt.Errorf("%w: %v", ErrUnknownFormat, format)
}
