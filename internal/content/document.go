package content

import (
	"fmt"
	"strconv"
	"strings"
)

// Document is one page's (or the site's) structured content. Values are
// string, bool, []string, Document or []Document, as declared by a Schema.
type Document map[string]any

// Clone returns a deep copy of the document.
func (d Document) Clone() Document {
	if d == nil {
		return nil
	}
	out := make(Document, len(d))
	for key, value := range d {
		out[key] = cloneValue(value)
	}
	return out
}

func cloneValue(value any) any {
	switch v := value.(type) {
	case Document:
		return v.Clone()
	case map[string]any:
		return Document(v).Clone()
	case []Document:
		items := make([]Document, len(v))
		for i, item := range v {
			items[i] = item.Clone()
		}
		return items
	case []string:
		return append([]string{}, v...)
	case []any:
		items := make([]any, len(v))
		for i, item := range v {
			items[i] = cloneValue(item)
		}
		return items
	default:
		return v
	}
}

// Lookup resolves a dotted path such as "hero.title" or
// "what_we_print.items.2.description". It reports false when any segment is
// missing.
func (d Document) Lookup(path string) (any, bool) {
	path = strings.Trim(path, ".")
	if path == "" {
		return d, true
	}

	var current any = d
	for _, segment := range strings.Split(path, ".") {
		switch node := current.(type) {
		case Document:
			next, ok := node[segment]
			if !ok {
				return nil, false
			}
			current = next
		case map[string]any:
			next, ok := node[segment]
			if !ok {
				return nil, false
			}
			current = next
		case []Document:
			index, err := strconv.Atoi(segment)
			if err != nil || index < 0 || index >= len(node) {
				return nil, false
			}
			current = node[index]
		default:
			return nil, false
		}
	}
	return current, true
}

// Text returns the string at path, or "" when absent. Non-string scalars are
// formatted.
func (d Document) Text(path string) string {
	value, ok := d.Lookup(path)
	if !ok || value == nil {
		return ""
	}
	switch v := value.(type) {
	case string:
		return v
	case bool:
		return strconv.FormatBool(v)
	case []string:
		return strings.Join(v, "\n")
	case Document, map[string]any, []Document:
		return ""
	default:
		return fmt.Sprint(v)
	}
}

// Flag returns the boolean at path.
func (d Document) Flag(path string) bool {
	value, _ := d.Lookup(path)
	switch v := value.(type) {
	case bool:
		return v
	case string:
		return truthy(v)
	}
	return false
}

// Lines returns the string list at path.
func (d Document) Lines(path string) []string {
	value, _ := d.Lookup(path)
	return asLines(value)
}

// Object returns the nested document at path, or an empty document.
func (d Document) Object(path string) Document {
	value, _ := d.Lookup(path)
	if doc := asDocument(value); doc != nil {
		return doc
	}
	return Document{}
}

// Items returns the collection at path.
func (d Document) Items(path string) []Document {
	value, _ := d.Lookup(path)
	return asDocuments(value)
}

func asDocument(value any) Document {
	switch v := value.(type) {
	case Document:
		return v
	case map[string]any:
		return Document(v)
	}
	return nil
}

func asDocuments(value any) []Document {
	switch v := value.(type) {
	case []Document:
		return v
	case []map[string]any:
		items := make([]Document, 0, len(v))
		for _, item := range v {
			items = append(items, Document(item))
		}
		return items
	case []any:
		items := make([]Document, 0, len(v))
		for _, item := range v {
			if doc := asDocument(item); doc != nil {
				items = append(items, doc)
			} else {
				items = append(items, Document{})
			}
		}
		return items
	}
	return nil
}

func asLines(value any) []string {
	switch v := value.(type) {
	case []string:
		return v
	case []any:
		lines := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				lines = append(lines, s)
			} else if item != nil {
				lines = append(lines, fmt.Sprint(item))
			}
		}
		return lines
	case string:
		return splitLines(v)
	}
	return nil
}

func asText(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case bool:
		return strconv.FormatBool(v)
	case int, int64, float64, uint, uint64, int32, float32:
		return fmt.Sprint(v)
	}
	return ""
}

func splitLines(value string) []string {
	lines := []string{}
	for _, line := range strings.Split(strings.ReplaceAll(value, "\r\n", "\n"), "\n") {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			lines = append(lines, trimmed)
		}
	}
	return lines
}

func truthy(value string) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "1", "true", "on", "yes":
		return true
	}
	return false
}
