package req

// mergeSources folds sources into one mapping where the first source holding a key wins.
// Callers pass sources in precedence order.
// Values are deep-copied, so fields never share containers with the raw groups.
func mergeSources(sources ...map[string]any) map[string]any {
	var n int
	for _, src := range sources {
		n += len(src)
	}

	merged := make(map[string]any, n)
	for _, src := range sources {
		for k, v := range src {
			if _, ok := merged[k]; !ok {
				merged[k] = cloneValue(v)
			}
		}
	}

	return merged
}

// merged computes the precedence mapping of r: cookies, body, query, headers,
// then the values the field store already holds.
func (r *Request) merged() map[string]any {
	headers := make(map[string]any, len(r.headers))
	for k, v := range r.headers {
		headers[k] = v
	}

	return mergeSources(r.cookies, r.body, r.queryParams, headers, r.priorValues())
}

// priorValues projects the field store into a source:
// a valid field contributes its value, an invalid one the raw value it was checked against,
// an absent one nothing.
func (r *Request) priorValues() map[string]any {
	prior := make(map[string]any, len(r.fields))
	for name, f := range r.fields {
		switch {
		case f.result.OK():
			prior[name] = f.result.Value()
		case f.result.IsInvalid():
			prior[name] = f.raw
		}
	}

	return prior
}
