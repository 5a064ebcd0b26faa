package jenkins

import (
	"context"
	"net/http"
	"regexp"
	"strings"

	"github.com/rendis/jenkgate/pkg/schema"
)

// stringParamBlockRe matches one complete StringParameterDefinition block in
// a job's config.xml. The patch below is a deliberate textual edit of this
// single well-known element shape, not a structural XML parse; multi-line
// content inside the block is tolerated via (?s).
var stringParamBlockRe = regexp.MustCompile(
	`(?s)<hudson\.model\.StringParameterDefinition>.*?</hudson\.model\.StringParameterDefinition>`)

var defaultValueRe = regexp.MustCompile(`(?s)<defaultValue>.*?</defaultValue>`)

var xmlTextEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&apos;",
)

// UpdateParameter rewrites the default value of a string parameter in the
// job's XML configuration. The ordering is fetch, verify, write: the config
// is fetched, the target block located, and only then is the patched document
// POSTed back, so a failed match never issues a write.
func (c *Client) UpdateParameter(ctx context.Context, path, name, value string) (*UpdateResult, error) {
	jobPath, err := JobPath(path)
	if err != nil {
		return nil, err
	}

	resp, err := c.get(ctx, jobPath+"/config.xml")
	if err != nil {
		return nil, err
	}
	doc := string(resp.raw)

	patched, found := patchStringParameter(doc, name, value)
	if !found {
		return nil, schema.NewErrorf(schema.ErrCodeNotFound,
			"job %q has no string parameter named %q", path, name).
			WithDetails(map[string]any{"job": path, "parameter": name})
	}

	if _, err := c.request(ctx, http.MethodPost, jobPath+"/config.xml",
		strings.NewReader(patched), "application/xml"); err != nil {
		return nil, err
	}
	return &UpdateResult{Updated: true, Parameter: name}, nil
}

// patchStringParameter replaces the defaultValue content of the first
// StringParameterDefinition block whose name element exactly matches the
// target (case-sensitive, compared against its XML-escaped form). Returns
// the patched document and whether a matching block was found.
func patchStringParameter(doc, name, value string) (string, bool) {
	nameElement := "<name>" + xmlTextEscaper.Replace(name) + "</name>"
	escapedValue := xmlTextEscaper.Replace(value)

	found := false
	patched := stringParamBlockRe.ReplaceAllStringFunc(doc, func(block string) string {
		if found || !strings.Contains(block, nameElement) {
			return block
		}
		replacement := "<defaultValue>" + escapedValue + "</defaultValue>"
		switch {
		case defaultValueRe.MatchString(block):
			found = true
			first := true
			return defaultValueRe.ReplaceAllStringFunc(block, func(m string) string {
				if !first {
					return m
				}
				first = false
				return replacement
			})
		case strings.Contains(block, "<defaultValue/>"):
			found = true
			return strings.Replace(block, "<defaultValue/>", replacement, 1)
		default:
			// Block matched by name but carries no defaultValue element;
			// leave it untouched rather than guessing an insertion point.
			return block
		}
	})
	return patched, found
}
