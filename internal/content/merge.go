package content

// MergePatch deep-merges a partial document onto base. Keys absent from the
// patch keep their base value, nested objects merge recursively, and a
// collection present in the patch replaces the base collection as a whole.
// Neither argument is modified.
func (s *Schema) MergePatch(base, patch Document) Document {
	return mergeObject(s.Fields, base, patch)
}

func mergeObject(fields []Field, base, patch Document) Document {
	out := make(Document, len(fields))
	for _, f := range fields {
		patchValue, patched := patch[f.Name]
		switch {
		case !patched:
			out[f.Name] = cloneValue(normalizeValue(f, base[f.Name]))
		case f.Kind == KindObject:
			out[f.Name] = mergeObject(f.Fields, asDocument(base[f.Name]), asDocument(patchValue))
		default:
			out[f.Name] = cloneValue(normalizeValue(f, patchValue))
		}
	}
	return out
}

// Merge applies a flat form submission onto base: submitted scalars are
// overwritten, every collection is rebuilt from the submitted entries, and
// everything else is kept. The result depends only on the arguments.
func (s *Schema) Merge(base Document, form Form) Document {
	return s.MergePatch(base, s.Decode(form))
}
