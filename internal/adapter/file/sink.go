// Package file writes SensorThings documents to local JSON files for
// offline inspection. This is the only persistence in the system.
package file

import (
	"encoding/json"
	"fmt"
	"os"
)

// WriteDocument serializes v to path as indented JSON. Re-parsing the file
// yields a structure equal to v.
func WriteDocument(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "    ")
	if err != nil {
		return fmt.Errorf("marshal document: %w", err)
	}
	data = append(data, '\n')

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write document: %w", err)
	}
	return nil
}
