package content

import (
	"net/url"
	"sort"
	"strconv"
	"strings"
)

// Form is a flat submission: field name to value. Names encode document
// paths, e.g. hero_title or what_we_print_item_2_description.
type Form map[string]string

// FormFromValues keeps the first value of every key.
func FormFromValues(values url.Values) Form {
	form := make(Form, len(values))
	for key, list := range values {
		if len(list) > 0 {
			form[key] = list[0]
		}
	}
	return form
}

// Values converts the form back to url.Values for posting.
func (f Form) Values() url.Values {
	values := make(url.Values, len(f))
	for key, value := range f {
		values.Set(key, value)
	}
	return values
}

// FieldName returns the flat name for a segment under prefix.
func FieldName(prefix, segment string) string {
	if prefix == "" {
		return segment
	}
	return prefix + "_" + segment
}

// ItemPrefix returns the flat prefix of one collection entry.
func ItemPrefix(collectionPrefix string, index int) string {
	return collectionPrefix + "_" + strconv.Itoa(index)
}

// Encode flattens a document into form field names.
func (s *Schema) Encode(doc Document) Form {
	form := Form{}
	encodeObject(form, s.Fields, s.Prefix, doc)
	return form
}

func encodeObject(form Form, fields []Field, prefix string, doc Document) {
	for _, f := range fields {
		name := FieldName(prefix, f.FormName())
		value := doc[f.Name]
		switch f.Kind {
		case KindObject:
			encodeObject(form, f.Fields, name, asDocument(value))
		case KindCollection:
			for i, item := range asDocuments(value) {
				encodeObject(form, f.Fields, ItemPrefix(name, i), item)
			}
		case KindLines:
			form[name] = strings.Join(asLines(value), "\n")
		case KindFlag:
			if normalizeValue(f, value).(bool) {
				form[name] = "1"
			} else {
				form[name] = "0"
			}
		default:
			form[name] = asText(value)
		}
	}
}

// Decode turns a submission into a partial document: scalars appear only
// when submitted, collections always appear and hold exactly the indexed
// entries found, ordered by ascending index.
func (s *Schema) Decode(form Form) Document {
	patch, _ := s.decode(form)
	return patch
}

// DecodeDocument decodes a submission into a complete document.
func (s *Schema) DecodeDocument(form Form) Document {
	return s.MergePatch(s.Default(), s.Decode(form))
}

// Touches reports whether any submitted name addresses this schema.
func (s *Schema) Touches(form Form) bool {
	_, matched := s.decode(form)
	return matched > 0
}

func (s *Schema) decode(form Form) (Document, int) {
	names := make([]string, 0, len(form))
	for name := range form {
		names = append(names, name)
	}
	sort.Strings(names)
	return decodeObject(s.Fields, s.Prefix, form, names)
}

func decodeObject(fields []Field, prefix string, form Form, names []string) (Document, int) {
	patch := Document{}
	matched := 0
	for _, f := range fields {
		name := FieldName(prefix, f.FormName())
		switch f.Kind {
		case KindObject:
			sub, n := decodeObject(f.Fields, name, form, names)
			if len(sub) > 0 {
				patch[f.Name] = sub
			}
			matched += n
		case KindCollection:
			items, n := decodeCollection(f, name, form, names)
			patch[f.Name] = items
			matched += n
		default:
			if raw, ok := form[name]; ok {
				patch[f.Name] = decodeScalar(f, raw)
				matched++
			}
		}
	}
	return patch, matched
}

func decodeCollection(f Field, prefix string, form Form, names []string) ([]Document, int) {
	itemFields := make(map[string]Field, len(f.Fields))
	for _, itemField := range f.Fields {
		itemFields[itemField.FormName()] = itemField
	}

	entries := map[int]Document{}
	matched := 0
	for _, name := range names {
		rest, ok := strings.CutPrefix(name, prefix+"_")
		if !ok {
			continue
		}
		rawIndex, fieldName, ok := strings.Cut(rest, "_")
		if !ok || !isDigits(rawIndex) {
			continue
		}
		itemField, ok := itemFields[fieldName]
		if !ok {
			continue
		}
		index, err := strconv.Atoi(rawIndex)
		if err != nil {
			continue
		}
		if entries[index] == nil {
			entries[index] = Document{}
		}
		entries[index][itemField.Name] = decodeScalar(itemField, form[name])
		matched++
	}

	indices := make([]int, 0, len(entries))
	for index := range entries {
		indices = append(indices, index)
	}
	sort.Ints(indices)

	items := make([]Document, 0, len(indices))
	for _, index := range indices {
		items = append(items, normalizeObject(f.Fields, entries[index]))
	}
	return items, matched
}

func decodeScalar(f Field, raw string) any {
	switch f.Kind {
	case KindLines:
		return splitLines(raw)
	case KindFlag:
		return truthy(raw)
	case KindURL, KindImage:
		return SafeURL(raw)
	default:
		// Text is stored as typed; renderers write it as a text node.
		return strings.TrimSpace(raw)
	}
}

func isDigits(value string) bool {
	if value == "" {
		return false
	}
	for _, r := range value {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
