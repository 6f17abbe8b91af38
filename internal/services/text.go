package services

import (
	"fmt"
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

const maxHashtagLength = 50

var textPolicy = bluemonday.StrictPolicy()

// sanitizeText strips markup from user text and rejects what is left empty.
func sanitizeText(text string) (string, error) {
	clean := strings.TrimSpace(html.UnescapeString(textPolicy.Sanitize(text)))
	if clean == "" {
		return "", ErrEmptyText
	}
	return clean, nil
}

// normalizeHashtags trims names, strips a leading '#', drops blanks and
// collapses duplicates while keeping first-seen order.
func normalizeHashtags(names []string) ([]string, error) {
	seen := make(map[string]struct{}, len(names))
	out := make([]string, 0, len(names))
	for _, name := range names {
		name = normalizeHashtag(name)
		if name == "" {
			continue
		}
		if len([]rune(name)) > maxHashtagLength {
			return nil, newError(ErrInvalidInput, fmt.Sprintf("Hashtag %q is longer than %d characters", name, maxHashtagLength))
		}
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		out = append(out, name)
	}
	return out, nil
}

func normalizeHashtag(name string) string {
	return strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(name), "#"))
}
