package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/rendis/jenkgate/internal/logging"
	"github.com/rendis/jenkgate/internal/store"
)

// handleListJobs lists jobs and folders at the server root or inside a folder.
func (s *JenkgateServer) handleListJobs(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	folderPath := strings.TrimSpace(req.GetString("folder_path", ""))
	ctx = logging.WithOperation(ctx, "jenkins.list_jobs")
	ctx = logging.WithJobPath(ctx, folderPath)

	jobs, err := s.client.ListJobs(ctx, folderPath)
	if err != nil {
		s.record(ctx, "jenkins.list_jobs", auditParams("folder_path", folderPath), store.OutcomeError, err.Error())
		return mcp.NewToolResultError(fmt.Sprintf("job listing failed: %v", err)), nil
	}

	s.record(ctx, "jenkins.list_jobs", auditParams("folder_path", folderPath), store.OutcomeOK, "")
	return resultEnvelope(fmt.Sprintf("%d entries", len(jobs)), map[string]any{"jobs": jobs})
}

// handleGetJob returns detailed job information including declared parameters.
func (s *JenkgateServer) handleGetJob(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	jobPath, err := req.RequireString("job_path")
	if err != nil {
		return mcp.NewToolResultError("job_path is required"), nil
	}
	jobPath = strings.TrimSpace(jobPath)
	ctx = logging.WithOperation(ctx, "jenkins.get_job")
	ctx = logging.WithJobPath(ctx, jobPath)

	info, infoErr := s.client.GetJobInfo(ctx, jobPath)
	if infoErr != nil {
		s.record(ctx, "jenkins.get_job", auditParams("job_path", jobPath), store.OutcomeError, infoErr.Error())
		return mcp.NewToolResultError(fmt.Sprintf("job lookup failed: %v", infoErr)), nil
	}

	s.record(ctx, "jenkins.get_job", auditParams("job_path", jobPath), store.OutcomeOK, "")
	return resultEnvelope(fmt.Sprintf("job %q, %d declared parameters", info.Name, len(info.Parameters)), info)
}

// handleListBuilds returns a job's recent builds, newest first.
func (s *JenkgateServer) handleListBuilds(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	jobPath, err := req.RequireString("job_path")
	if err != nil {
		return mcp.NewToolResultError("job_path is required"), nil
	}
	jobPath = strings.TrimSpace(jobPath)
	limit := intArg(req, "limit", 10)
	ctx = logging.WithOperation(ctx, "jenkins.list_builds")
	ctx = logging.WithJobPath(ctx, jobPath)

	builds, listErr := s.client.ListBuilds(ctx, jobPath, limit)
	if listErr != nil {
		s.record(ctx, "jenkins.list_builds", auditParams("job_path", jobPath, "limit", limit), store.OutcomeError, listErr.Error())
		return mcp.NewToolResultError(fmt.Sprintf("build listing failed: %v", listErr)), nil
	}

	s.record(ctx, "jenkins.list_builds", auditParams("job_path", jobPath, "limit", limit), store.OutcomeOK, "")
	return resultEnvelope(fmt.Sprintf("%d builds", len(builds)), map[string]any{"builds": builds})
}

// handleGetBuild returns one build including its resolved parameters.
func (s *JenkgateServer) handleGetBuild(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	jobPath, err := req.RequireString("job_path")
	if err != nil {
		return mcp.NewToolResultError("job_path is required"), nil
	}
	jobPath = strings.TrimSpace(jobPath)
	number := int64(intArg(req, "build_number", 0))
	if number <= 0 {
		return mcp.NewToolResultError("build_number is required and must be a positive integer"), nil
	}
	ctx = logging.WithOperation(ctx, "jenkins.get_build")
	ctx = logging.WithJobPath(ctx, jobPath)

	info, infoErr := s.client.GetBuildInfo(ctx, jobPath, number)
	if infoErr != nil {
		s.record(ctx, "jenkins.get_build", auditParams("job_path", jobPath, "build_number", number), store.OutcomeError, infoErr.Error())
		return mcp.NewToolResultError(fmt.Sprintf("build lookup failed: %v", infoErr)), nil
	}

	s.record(ctx, "jenkins.get_build", auditParams("job_path", jobPath, "build_number", number), store.OutcomeOK, "")
	content := fmt.Sprintf("build #%d", info.Number)
	if info.Result != "" {
		content += " " + info.Result
	}
	return resultEnvelope(content, info)
}

// handleTriggerBuild queues a build. A parameterless trigger goes straight
// through; a parameterized one has every parameter name checked against the
// whitelist before any request is issued.
func (s *JenkgateServer) handleTriggerBuild(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	jobPath, err := req.RequireString("job_path")
	if err != nil {
		return mcp.NewToolResultError("job_path is required"), nil
	}
	jobPath = strings.TrimSpace(jobPath)
	ctx = logging.WithOperation(ctx, "jenkins.trigger_build")
	ctx = logging.WithJobPath(ctx, jobPath)

	raw := mcp.ParseStringMap(req, "parameters", nil)
	params, coerceErr := coerceParameters(raw)
	if coerceErr != nil {
		return mcp.NewToolResultError(coerceErr.Error()), nil
	}
	auditCtx := auditParams("job_path", jobPath, "parameters", raw)

	if len(params) > 0 {
		names := make([]string, 0, len(params))
		for name := range params {
			names = append(names, name)
		}
		if denyErr := s.whitelist.Check(names); denyErr != nil {
			s.logger.WarnContext(ctx, "parameterized trigger denied", "error", denyErr)
			s.record(ctx, "jenkins.trigger_build", auditCtx, store.OutcomeDenied, denyErr.Error())
			return mcp.NewToolResultError(denyErr.Error()), nil
		}
	}

	result, trigErr := s.client.TriggerBuild(ctx, jobPath, params)
	if trigErr != nil {
		s.record(ctx, "jenkins.trigger_build", auditCtx, store.OutcomeError, trigErr.Error())
		return mcp.NewToolResultError(fmt.Sprintf("trigger failed: %v", trigErr)), nil
	}

	s.logger.InfoContext(ctx, "build queued", "queue_url", result.QueueURL)
	s.record(ctx, "jenkins.trigger_build", auditCtx, store.OutcomeOK, "")
	return resultEnvelope("build queued", result)
}

// handleUpdateParameter patches the default value of a whitelisted string
// parameter in the job's config.xml.
func (s *JenkgateServer) handleUpdateParameter(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	jobPath, err := req.RequireString("job_path")
	if err != nil {
		return mcp.NewToolResultError("job_path is required"), nil
	}
	name, err := req.RequireString("parameter_name")
	if err != nil {
		return mcp.NewToolResultError("parameter_name is required"), nil
	}
	value, err := req.RequireString("value")
	if err != nil {
		return mcp.NewToolResultError("value is required"), nil
	}
	jobPath = strings.TrimSpace(jobPath)
	name = strings.TrimSpace(name)
	if name == "" {
		return mcp.NewToolResultError("parameter_name is required"), nil
	}
	ctx = logging.WithOperation(ctx, "jenkins.update_parameter")
	ctx = logging.WithJobPath(ctx, jobPath)

	auditCtx := auditParams("job_path", jobPath, "parameter_name", name)

	if denyErr := s.whitelist.Check([]string{name}); denyErr != nil {
		s.logger.WarnContext(ctx, "parameter update denied", "parameter", name, "error", denyErr)
		s.record(ctx, "jenkins.update_parameter", auditCtx, store.OutcomeDenied, denyErr.Error())
		return mcp.NewToolResultError(denyErr.Error()), nil
	}

	result, updErr := s.client.UpdateParameter(ctx, jobPath, name, value)
	if updErr != nil {
		s.record(ctx, "jenkins.update_parameter", auditCtx, store.OutcomeError, updErr.Error())
		return mcp.NewToolResultError(fmt.Sprintf("parameter update failed: %v", updErr)), nil
	}

	s.logger.InfoContext(ctx, "parameter updated", "parameter", name)
	s.record(ctx, "jenkins.update_parameter", auditCtx, store.OutcomeOK, "")
	return resultEnvelope(fmt.Sprintf("parameter %q updated", name), result)
}

// handleTestConnection verifies connectivity and credentials.
func (s *JenkgateServer) handleTestConnection(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ctx = logging.WithOperation(ctx, "jenkins.test_connection")

	result := s.client.TestConnection(ctx)
	outcome := store.OutcomeOK
	content := "connection verified"
	if !result.OK {
		outcome = store.OutcomeError
		content = "connection failed"
	}
	s.record(ctx, "jenkins.test_connection", nil, outcome, result.Error)
	return resultEnvelope(content, result)
}

// handleAudit lists recorded invocations, newest first.
func (s *JenkgateServer) handleAudit(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	filter := store.AuditFilter{
		Operation: strings.TrimSpace(req.GetString("operation", "")),
		Outcome:   strings.TrimSpace(req.GetString("outcome", "")),
		Limit:     intArg(req, "limit", 50),
	}

	records, err := s.audit.ListAudit(ctx, filter)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("audit listing failed: %v", err)), nil
	}
	return resultEnvelope(fmt.Sprintf("%d audit records", len(records)), map[string]any{"records": records})
}

// --- Internal helpers ---

// record appends one audit entry when auditing is enabled. Append failures
// are logged, never surfaced to the caller.
func (s *JenkgateServer) record(ctx context.Context, operation string, params map[string]any, outcome, errText string) {
	if s.audit == nil || !s.settings.AuditEnabled {
		return
	}
	rec := &store.AuditRecord{
		ID:        uuid.New().String(),
		Operation: operation,
		Params:    params,
		Outcome:   outcome,
		Error:     errText,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.audit.AppendAudit(ctx, rec); err != nil {
		s.logger.WarnContext(ctx, "audit append failed", "operation", operation, "error", err)
	}
}

// coerceParameters converts tool arguments to Jenkins form values. Scalars
// are accepted and stringified; nested objects and arrays are rejected.
func coerceParameters(raw map[string]any) (map[string]string, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	params := make(map[string]string, len(raw))
	for name, v := range raw {
		name = strings.TrimSpace(name)
		if name == "" {
			return nil, fmt.Errorf("parameter names must be non-empty strings")
		}
		switch val := v.(type) {
		case string:
			params[name] = val
		case bool:
			params[name] = strconv.FormatBool(val)
		case float64:
			params[name] = strconv.FormatFloat(val, 'f', -1, 64)
		case json.Number:
			params[name] = val.String()
		case nil:
			params[name] = ""
		default:
			return nil, fmt.Errorf("parameter %q has unsupported value type; only scalars are accepted", name)
		}
	}
	return params, nil
}

// auditParams builds a key/value map from alternating pairs.
func auditParams(pairs ...any) map[string]any {
	m := make(map[string]any, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		key, ok := pairs[i].(string)
		if !ok {
			continue
		}
		m[key] = pairs[i+1]
	}
	return m
}

// intArg reads a top-level numeric argument, tolerating JSON numbers and
// numeric strings.
func intArg(req mcp.CallToolRequest, key string, defaultVal int) int {
	args := req.GetArguments()
	v, ok := args[key]
	if !ok {
		return defaultVal
	}
	switch val := v.(type) {
	case float64:
		return int(val)
	case int:
		return val
	case int64:
		return int(val)
	case json.Number:
		if n, err := val.Int64(); err == nil {
			return int(n)
		}
	case string:
		if n, err := strconv.Atoi(val); err == nil {
			return n
		}
	}
	return defaultVal
}

// resultEnvelope wraps a tool result as the {content, details} envelope every
// operation returns: content is a short human summary, details the structured
// payload.
func resultEnvelope(content string, details any) (*mcp.CallToolResult, error) {
	return marshalResult(map[string]any{
		"content": content,
		"details": details,
	})
}

// marshalResult converts a value to a JSON text tool result.
func marshalResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal result: %v", err)), nil
	}
	return mcp.NewToolResultJSON(json.RawMessage(data))
}
