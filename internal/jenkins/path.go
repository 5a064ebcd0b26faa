package jenkins

import (
	"net/url"
	"strings"

	"github.com/rendis/jenkgate/pkg/schema"
)

// JobPath converts a slash-delimited job path to the server's nested-folder
// URL convention: each segment is percent-encoded and prefixed with "/job/",
// so "folder/my-job" becomes "/job/folder/job/my-job". The conversion is
// total and injective for well-formed paths.
func JobPath(path string) (string, error) {
	trimmed := strings.Trim(strings.TrimSpace(path), "/")
	if trimmed == "" {
		return "", schema.NewError(schema.ErrCodeValidation, "job path is empty")
	}
	segments := strings.Split(trimmed, "/")
	var b strings.Builder
	for _, seg := range segments {
		if seg == "" {
			return "", schema.NewErrorf(schema.ErrCodeValidation,
				"job path %q contains an empty segment", path)
		}
		b.WriteString("/job/")
		b.WriteString(url.PathEscape(seg))
	}
	return b.String(), nil
}

// FolderPath is JobPath for an optional folder prefix: an empty or
// whitespace-only path maps to the server root ("").
func FolderPath(path string) (string, error) {
	if strings.Trim(strings.TrimSpace(path), "/") == "" {
		return "", nil
	}
	return JobPath(path)
}
