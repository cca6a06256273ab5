package req

import "slices"

// cloneValue deep-copies the containers a parameter value may hold,
// so no map or slice is shared with the caller.
func cloneValue(v any) any {
	switch v := v.(type) {
	case map[string]any:
		return map[string]any(cloneParams(v))
	case Params:
		return cloneParams(v)
	case []any:
		seq := make([]any, len(v))
		for i, el := range v {
			seq[i] = cloneValue(el)
		}
		return seq
	case []string:
		return slices.Clone(v)
	default:
		return v
	}
}

// cloneParams deep-copies p; nil stays nil.
func cloneParams(p map[string]any) Params {
	if p == nil {
		return nil
	}

	c := make(Params, len(p))
	for k, v := range p {
		c[k] = cloneValue(v)
	}

	return c
}

// cloneUploads copies every descriptor's slices; nil stays nil.
func cloneUploads(u Uploads) Uploads {
	if u == nil {
		return nil
	}

	c := make(Uploads, len(u))
	for name, up := range u {
		c[name] = Upload{
			Name:    slices.Clone(up.Name),
			Type:    slices.Clone(up.Type),
			Size:    slices.Clone(up.Size),
			TmpName: slices.Clone(up.TmpName),
			Error:   slices.Clone(up.Error),
			Multi:   up.Multi,
		}
	}

	return c
}
