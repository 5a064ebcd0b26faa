package jenkins

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

const (
	buildListTree = "builds[number,url,result,timestamp,duration]"
	buildInfoTree = "number,url,result,building,timestamp,duration,displayName,description," +
		"actions[parameters[name,value]]"
)

// ListBuilds returns up to limit recent builds of a job, newest first, using
// the remote API's {0,limit} range syntax.
func (c *Client) ListBuilds(ctx context.Context, path string, limit int) ([]BuildListItem, error) {
	jobPath, err := JobPath(path)
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = 10
	}
	tree := fmt.Sprintf("%s{0,%d}", buildListTree, limit)
	resp, err := c.get(ctx, jobPath+"/api/json?tree="+tree)
	if err != nil {
		return nil, err
	}

	entries := c.queries.list(buildsQuery, resp.body)
	builds := make([]BuildListItem, 0, len(entries))
	for _, e := range entries {
		obj, ok := e.(map[string]any)
		if !ok {
			continue
		}
		builds = append(builds, BuildListItem{
			Number:    intOr(obj, "number", 0),
			URL:       stringOr(obj, "url", ""),
			Result:    stringOr(obj, "result", ""),
			Timestamp: intOr(obj, "timestamp", 0),
			Duration:  intOr(obj, "duration", 0),
		})
	}
	return builds, nil
}

// GetBuildInfo fetches one build, including the parameter values it consumed.
// The first actions entry exposing a parameters list wins.
func (c *Client) GetBuildInfo(ctx context.Context, path string, number int64) (*BuildInfo, error) {
	jobPath, err := JobPath(path)
	if err != nil {
		return nil, err
	}
	resp, err := c.get(ctx, fmt.Sprintf("%s/%d/api/json?tree=%s", jobPath, number, buildInfoTree))
	if err != nil {
		return nil, err
	}

	body := resp.body
	info := &BuildInfo{
		Number:      intOr(body, "number", 0),
		URL:         stringOr(body, "url", ""),
		Result:      stringOr(body, "result", ""),
		Building:    boolOr(body, "building", false),
		Timestamp:   intOr(body, "timestamp", 0),
		Duration:    intOr(body, "duration", 0),
		DisplayName: stringOr(body, "displayName", ""),
		Description: stringOr(body, "description", ""),
	}

	params := c.queries.list(buildArgsQuery, body)
	if len(params) > 0 {
		info.Parameters = make(map[string]any, len(params))
		for _, raw := range params {
			p, ok := raw.(map[string]any)
			if !ok {
				continue
			}
			name := stringOr(p, "name", "")
			if name == "" {
				continue
			}
			info.Parameters[name] = p["value"]
		}
	}
	return info, nil
}

// TriggerBuild POSTs to the plain or parameterized trigger endpoint depending
// on whether any parameters were supplied. The server queues asynchronously:
// a true Queued result does not imply the build has started, callers needing
// completion must poll ListBuilds or GetBuildInfo.
func (c *Client) TriggerBuild(ctx context.Context, path string, parameters map[string]string) (*TriggerResult, error) {
	jobPath, err := JobPath(path)
	if err != nil {
		return nil, err
	}

	endpoint := jobPath + "/build"
	var body io.Reader
	contentType := ""
	if len(parameters) > 0 {
		endpoint = jobPath + "/buildWithParameters"
		form := url.Values{}
		for name, value := range parameters {
			form.Set(name, value)
		}
		body = strings.NewReader(form.Encode())
		contentType = "application/x-www-form-urlencoded"
	}

	resp, err := c.request(ctx, http.MethodPost, endpoint, body, contentType)
	if err != nil {
		return nil, err
	}
	return &TriggerResult{
		Queued:   true,
		QueueURL: resp.header.Get("Location"),
	}, nil
}
