package files

import "strings"

// Policy is the acceptance policy applied to every upload before and during
// streaming.
type Policy struct {
	MaxUploadBytes int64
	allowed        map[string]struct{}
}

// NewPolicy builds a Policy from the configured limits.
func NewPolicy(maxUploadBytes int64, allowedMimeTypes []string) Policy {
	allowed := make(map[string]struct{}, len(allowedMimeTypes))
	for _, m := range allowedMimeTypes {
		if trimmed := strings.ToLower(strings.TrimSpace(m)); trimmed != "" {
			allowed[trimmed] = struct{}{}
		}
	}
	return Policy{MaxUploadBytes: maxUploadBytes, allowed: allowed}
}

// CheckMime validates the declared MIME type against the allow-list.
func (p Policy) CheckMime(mimeType string) error {
	normalized := strings.ToLower(strings.TrimSpace(mimeType))
	if semi := strings.Index(normalized, ";"); semi >= 0 {
		normalized = strings.TrimSpace(normalized[:semi])
	}
	if _, ok := p.allowed[normalized]; !ok {
		return ErrUnsupportedMediaType
	}
	return nil
}
