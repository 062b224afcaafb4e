package util

import (
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/goccy/go-json"
)

// GenerateETag returns a strong, quoted ETag for content. []byte and string
// are hashed as-is; anything else is hashed through its JSON encoding.
func GenerateETag(content any) string {
	var data []byte

	switch v := content.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		var err error
		data, err = json.Marshal(content)
		if err != nil {
			data = fmt.Appendf(nil, "%v", content)
		}
	}

	hash := sha1.Sum(data)
	return `"` + hex.EncodeToString(hash[:]) + `"`
}

// ETagMatches reports whether an If-None-Match header value matches etag.
// Weak validators compare equal to their strong form.
func ETagMatches(ifNoneMatch, etag string) bool {
	if ifNoneMatch == "" {
		return false
	}
	for _, candidate := range strings.Split(ifNoneMatch, ",") {
		candidate = strings.TrimSpace(candidate)
		if candidate == "*" {
			return true
		}
		if strings.TrimPrefix(candidate, "W/") == strings.TrimPrefix(etag, "W/") {
			return true
		}
	}
	return false
}
