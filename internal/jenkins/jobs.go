package jenkins

import (
	"context"
	"strings"
)

// folderClassMarkers identify folder-like entries in a job listing. An entry
// whose declared class name contains any of these is a folder, everything
// else is a buildable job.
var folderClassMarkers = []string{
	"com.cloudbees.hudson.plugins.folder",
	"WorkflowMultiBranchProject",
	"OrganizationFolder",
}

const (
	listJobsTree = "jobs[name,url,color]"
	jobInfoTree  = "name,url,description,buildable,inQueue," +
		"lastBuild[number,url],lastSuccessfulBuild[number,url],lastFailedBuild[number,url]," +
		"property[parameterDefinitions[name,type,description,defaultParameterValue[value],choices]]"
)

// ListJobs returns the entries of a folder (or the server root when
// folderPath is empty), classified as job or folder.
func (c *Client) ListJobs(ctx context.Context, folderPath string) ([]JobListItem, error) {
	prefix, err := FolderPath(folderPath)
	if err != nil {
		return nil, err
	}
	resp, err := c.get(ctx, prefix+"/api/json?tree="+listJobsTree)
	if err != nil {
		return nil, err
	}

	entries := c.queries.list(jobsQuery, resp.body)
	items := make([]JobListItem, 0, len(entries))
	for _, e := range entries {
		obj, ok := e.(map[string]any)
		if !ok {
			continue
		}
		items = append(items, JobListItem{
			Name:  stringOr(obj, "name", ""),
			URL:   stringOr(obj, "url", ""),
			Color: stringOr(obj, "color", ""),
			Kind:  classifyJob(stringOr(obj, "_class", "")),
		})
	}
	return items, nil
}

// GetJobInfo fetches the detailed view of a job, including its declared
// parameters. The first property block exposing parameterDefinitions wins.
func (c *Client) GetJobInfo(ctx context.Context, path string) (*JobInfo, error) {
	jobPath, err := JobPath(path)
	if err != nil {
		return nil, err
	}
	resp, err := c.get(ctx, jobPath+"/api/json?tree="+jobInfoTree)
	if err != nil {
		return nil, err
	}

	body := resp.body
	info := &JobInfo{
		Name:                stringOr(body, "name", ""),
		URL:                 stringOr(body, "url", ""),
		Description:         stringOr(body, "description", ""),
		Buildable:           boolOr(body, "buildable", false),
		InQueue:             boolOr(body, "inQueue", false),
		LastBuild:           buildRefOr(body, "lastBuild"),
		LastSuccessfulBuild: buildRefOr(body, "lastSuccessfulBuild"),
		LastFailedBuild:     buildRefOr(body, "lastFailedBuild"),
	}

	for _, raw := range c.queries.list(paramDefsQuery, body) {
		def, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		info.Parameters = append(info.Parameters, parameterDefinition(def))
	}
	return info, nil
}

func parameterDefinition(def map[string]any) ParameterDefinition {
	pd := ParameterDefinition{
		Name:        stringOr(def, "name", ""),
		Type:        stringOr(def, "type", ""),
		Description: stringOr(def, "description", ""),
	}
	if dv := objectOr(def, "defaultParameterValue"); dv != nil {
		pd.DefaultValue = dv["value"]
	}
	if choices, ok := def["choices"].([]any); ok {
		for _, ch := range choices {
			if s, isString := ch.(string); isString {
				pd.Choices = append(pd.Choices, s)
			}
		}
	}
	return pd
}

func classifyJob(class string) JobKind {
	for _, marker := range folderClassMarkers {
		if strings.Contains(class, marker) {
			return KindFolder
		}
	}
	return KindJob
}
