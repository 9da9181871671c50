package content

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrUnknownPage is returned for page keys that have no declared schema.
var ErrUnknownPage = errors.New("unknown page")

// SiteKey is the reserved key of the site settings document.
const SiteKey = "site"

// Kind describes how a field is stored and encoded.
type Kind int

const (
	KindText Kind = iota
	KindURL
	KindImage
	KindLines
	KindFlag
	KindObject
	KindCollection
)

func (k Kind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindURL:
		return "url"
	case KindImage:
		return "image"
	case KindLines:
		return "lines"
	case KindFlag:
		return "flag"
	case KindObject:
		return "object"
	case KindCollection:
		return "collection"
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Field declares one key of a document. Object fields and collection items
// carry their own Fields.
type Field struct {
	Name     string
	Kind     Kind
	Form     string
	Required bool
	Fields   []Field
}

// FormName is the segment used for the field in flat form names.
func (f Field) FormName() string {
	if f.Form != "" {
		return f.Form
	}
	return f.Name
}

// Require marks a scalar field as required.
func (f Field) Require() Field {
	f.Required = true
	return f
}

func Text(name string) Field  { return Field{Name: name, Kind: KindText} }
func URL(name string) Field   { return Field{Name: name, Kind: KindURL} }
func Image(name string) Field { return Field{Name: name, Kind: KindImage} }
func Lines(name string) Field { return Field{Name: name, Kind: KindLines} }
func Flag(name string) Field  { return Field{Name: name, Kind: KindFlag} }

// Object declares a nested section.
func Object(name string, fields ...Field) Field {
	return Field{Name: name, Kind: KindObject, Fields: fields}
}

// Collection declares an ordered list of items. form is the singular segment
// used for indexed entries, e.g. "item" for item_0_title.
func Collection(name, form string, fields ...Field) Field {
	return Field{Name: name, Kind: KindCollection, Form: form, Fields: fields}
}

// Schema is the fixed shape of one document type.
type Schema struct {
	Key    string
	Prefix string
	Fields []Field
}

// NewSchema builds a page schema whose flat names carry no prefix.
func NewSchema(key string, fields ...Field) *Schema {
	return &Schema{Key: key, Fields: fields}
}

// Default returns an empty instance with every declared key present.
func (s *Schema) Default() Document {
	return normalizeObject(s.Fields, nil)
}

// Normalize coerces raw decoded data (JSON, YAML or a Document) into the
// schema's shape. Unknown keys are dropped and missing keys get zero values.
func (s *Schema) Normalize(raw map[string]any) Document {
	return normalizeObject(s.Fields, raw)
}

// Missing lists the dotted paths of required fields that are empty.
func (s *Schema) Missing(doc Document) []string {
	var missing []string
	var walk func(fields []Field, prefix string, node Document)
	walk = func(fields []Field, prefix string, node Document) {
		for _, f := range fields {
			path := joinPath(prefix, f.Name)
			switch f.Kind {
			case KindObject:
				walk(f.Fields, path, asDocument(node[f.Name]))
			case KindCollection:
				for i, item := range asDocuments(node[f.Name]) {
					walk(f.Fields, fmt.Sprintf("%s.%d", path, i), item)
				}
			default:
				if f.Required && strings.TrimSpace(asText(node[f.Name])) == "" && len(asLines(node[f.Name])) == 0 {
					missing = append(missing, path)
				}
			}
		}
	}
	walk(s.Fields, "", doc)
	return missing
}

func normalizeObject(fields []Field, raw map[string]any) Document {
	doc := make(Document, len(fields))
	for _, f := range fields {
		var value any
		if raw != nil {
			value = raw[f.Name]
		}
		doc[f.Name] = normalizeValue(f, value)
	}
	return doc
}

func normalizeValue(f Field, value any) any {
	switch f.Kind {
	case KindObject:
		return normalizeObject(f.Fields, asDocument(value))
	case KindCollection:
		items := []Document{}
		for _, item := range asDocuments(value) {
			items = append(items, normalizeObject(f.Fields, item))
		}
		return items
	case KindLines:
		lines := []string{}
		for _, line := range asLines(value) {
			if trimmed := strings.TrimSpace(line); trimmed != "" {
				lines = append(lines, trimmed)
			}
		}
		return lines
	case KindFlag:
		switch v := value.(type) {
		case bool:
			return v
		case string:
			return truthy(v)
		}
		return false
	default:
		return asText(value)
	}
}

func joinPath(prefix, name string) string {
	if prefix == "" {
		return name
	}
	return prefix + "." + name
}

var (
	siteSchema  *Schema
	pageSchemas = map[string]*Schema{}
)

func register(s *Schema) {
	pageSchemas[s.Key] = s
}

// PageSchema returns the schema for a page key.
func PageSchema(key string) (*Schema, error) {
	s, ok := pageSchemas[strings.TrimSpace(key)]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownPage, key)
	}
	return s, nil
}

// SiteSchema returns the schema of the site settings document.
func SiteSchema() *Schema {
	return siteSchema
}

// PageKeys lists the registered page keys in sorted order.
func PageKeys() []string {
	keys := make([]string, 0, len(pageSchemas))
	for key := range pageSchemas {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
