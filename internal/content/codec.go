package content

import (
	"encoding/json"
	"fmt"
)

// Marshal encodes a document in its transport shape.
func Marshal(doc Document) ([]byte, error) {
	return json.Marshal(doc)
}

// Unmarshal decodes JSON and coerces it into the schema's shape.
func (s *Schema) Unmarshal(data []byte) (Document, error) {
	if len(data) == 0 {
		return s.Default(), nil
	}
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decode %s document: %w", s.Key, err)
	}
	return s.Normalize(raw), nil
}
