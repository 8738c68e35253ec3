// Where: internal/ami/output.go
// What: RegionMap serialization and output sink writing.
// Why: Downstream template generation reads the mapping from the job output.
package ami

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

// OutputKey is the key of the job output line carrying the region map.
const OutputKey = "region_map_json"

// Document is the serialized form {"RegionMap": {...}}.
type Document struct {
	RegionMap RegionMap `json:"RegionMap"`
}

// Encode renders m as a single-line JSON document.
func Encode(m RegionMap) (string, error) {
	if m == nil {
		m = RegionMap{}
	}
	data, err := json.Marshal(Document{RegionMap: m})
	if err != nil {
		return "", fmt.Errorf("encode region map: %w", err)
	}
	return string(data), nil
}

// WriteOutput appends "key=<json>" to w.
func WriteOutput(w io.Writer, key string, m RegionMap) error {
	if w == nil {
		return fmt.Errorf("output writer is nil")
	}
	if strings.TrimSpace(key) == "" {
		key = OutputKey
	}
	payload, err := Encode(m)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "%s=%s\n", key, payload); err != nil {
		return fmt.Errorf("write region map output: %w", err)
	}
	return nil
}
