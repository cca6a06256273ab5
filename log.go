package trailhead

import (
	"net/url"
	"strings"
)

const LogMaskVal = "xxxxxx"

// maskedKeys are the query and form keys whose values never reach a log line.
var maskedKeys = []string{"password", "passwd", "secret", "token"}

// Mask replaces every value set for key in vals with a single LogMaskVal.
func Mask(vals url.Values, key string) {
	if _, ok := vals[key]; !ok {
		return
	}

	vals[key] = []string{LogMaskVal}
}

// MaskAll applies Mask to every key in vals that looks like a credential.
// Keys match case-insensitively and by substring, so "new_password" is masked too.
func MaskAll(vals url.Values) {
	for key := range vals {
		lower := strings.ToLower(key)
		for _, masked := range maskedKeys {
			if strings.Contains(lower, masked) {
				Mask(vals, key)
				break
			}
		}
	}
}
