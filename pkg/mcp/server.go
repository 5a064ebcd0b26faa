package mcp

import (
	"context"
	"log/slog"
	"os"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/rendis/jenkgate/internal/config"
	"github.com/rendis/jenkgate/internal/jenkins"
	"github.com/rendis/jenkgate/internal/policy"
	"github.com/rendis/jenkgate/internal/store"
)

// JenkinsClient is the remote-server surface the tool handlers depend on.
// *jenkins.Client satisfies it; tests substitute a mock.
type JenkinsClient interface {
	ListJobs(ctx context.Context, folderPath string) ([]jenkins.JobListItem, error)
	GetJobInfo(ctx context.Context, path string) (*jenkins.JobInfo, error)
	ListBuilds(ctx context.Context, path string, limit int) ([]jenkins.BuildListItem, error)
	GetBuildInfo(ctx context.Context, path string, number int64) (*jenkins.BuildInfo, error)
	TriggerBuild(ctx context.Context, path string, parameters map[string]string) (*jenkins.TriggerResult, error)
	UpdateParameter(ctx context.Context, path, name, value string) (*jenkins.UpdateResult, error)
	TestConnection(ctx context.Context) *jenkins.ConnectionResult
}

var _ JenkinsClient = (*jenkins.Client)(nil)

// JenkgateServerDeps holds the dependencies for creating a JenkgateServer.
type JenkgateServerDeps struct {
	Client   JenkinsClient
	Settings *config.Settings
	Audit    store.AuditStore
	Logger   *slog.Logger
}

// JenkgateServer wraps an MCP server with Jenkins-specific tool handlers.
type JenkgateServer struct {
	client    JenkinsClient
	settings  *config.Settings
	whitelist *policy.Whitelist
	audit     store.AuditStore
	logger    *slog.Logger
	mcpServer *server.MCPServer
}

// NewJenkgateServer creates a new JenkgateServer with all tools registered.
func NewJenkgateServer(deps JenkgateServerDeps) *JenkgateServer {
	logger := deps.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))
	}
	settings := deps.Settings
	if settings == nil {
		settings = &config.Settings{}
	}

	s := &JenkgateServer{
		client:    deps.Client,
		settings:  settings,
		whitelist: policy.NewWhitelist(settings.AllowedParameters),
		audit:     deps.Audit,
		logger:    logger,
	}

	mcpSrv := server.NewMCPServer(
		"jenkgate",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithRecovery(),
		server.WithInstructions("Jenkgate is a credential-scoped Jenkins gateway. Use jenkins.list_jobs and jenkins.get_job to browse jobs, jenkins.list_builds and jenkins.get_build to inspect build history, jenkins.trigger_build to queue builds, jenkins.update_parameter to change a job's string parameter default, and jenkins.test_connection to verify connectivity. Parameter writes are restricted to an operator-configured whitelist."),
	)

	mcpSrv.AddTools(s.tools()...)
	s.mcpServer = mcpSrv
	return s
}

// Serve starts the stdio transport and blocks until ctx is cancelled or stdin closes.
func (s *JenkgateServer) Serve(ctx context.Context) error {
	stdio := server.NewStdioServer(s.mcpServer)
	return stdio.Listen(ctx, os.Stdin, os.Stdout)
}

// MCPServer returns the underlying MCPServer for testing or custom transports.
func (s *JenkgateServer) MCPServer() *server.MCPServer {
	return s.mcpServer
}

func (s *JenkgateServer) tools() []server.ServerTool {
	tools := []server.ServerTool{
		{Tool: listJobsTool(), Handler: s.handleListJobs},
		{Tool: getJobTool(), Handler: s.handleGetJob},
		{Tool: listBuildsTool(), Handler: s.handleListBuilds},
		{Tool: getBuildTool(), Handler: s.handleGetBuild},
		{Tool: triggerBuildTool(), Handler: s.handleTriggerBuild},
		{Tool: updateParameterTool(), Handler: s.handleUpdateParameter},
		{Tool: testConnectionTool(), Handler: s.handleTestConnection},
	}
	if s.audit != nil {
		tools = append(tools, server.ServerTool{Tool: auditTool(), Handler: s.handleAudit})
	}
	return tools
}

// --- Tool definitions ---

func listJobsTool() mcp.Tool {
	return mcp.NewTool("jenkins.list_jobs",
		mcp.WithDescription("List jobs and folders, optionally inside a folder"),
		mcp.WithString("folder_path", mcp.Description("Folder path like 'team/services' (empty for root)")),
	)
}

func getJobTool() mcp.Tool {
	return mcp.NewTool("jenkins.get_job",
		mcp.WithDescription("Get detailed job information including declared parameters"),
		mcp.WithString("job_path", mcp.Required(), mcp.Description("Job path like 'team/app' or 'app'")),
	)
}

func listBuildsTool() mcp.Tool {
	return mcp.NewTool("jenkins.list_builds",
		mcp.WithDescription("List recent builds of a job, newest first"),
		mcp.WithString("job_path", mcp.Required(), mcp.Description("Job path like 'team/app'")),
		mcp.WithNumber("limit", mcp.Description("Maximum number of builds to return (default 10)")),
	)
}

func getBuildTool() mcp.Tool {
	return mcp.NewTool("jenkins.get_build",
		mcp.WithDescription("Get detailed information about one build, including its parameters"),
		mcp.WithString("job_path", mcp.Required(), mcp.Description("Job path like 'team/app'")),
		mcp.WithNumber("build_number", mcp.Required(), mcp.Description("Build number")),
	)
}

func triggerBuildTool() mcp.Tool {
	return mcp.NewTool("jenkins.trigger_build",
		mcp.WithDescription("Queue a build, optionally with parameters. Parameterized triggers require every parameter name to be whitelisted"),
		mcp.WithString("job_path", mcp.Required(), mcp.Description("Job path like 'team/app'")),
		mcp.WithObject("parameters", mcp.Description("Build parameters as name/value pairs")),
	)
}

func updateParameterTool() mcp.Tool {
	return mcp.NewTool("jenkins.update_parameter",
		mcp.WithDescription("Update the default value of a job's string parameter. The parameter name must be whitelisted"),
		mcp.WithString("job_path", mcp.Required(), mcp.Description("Job path like 'team/app'")),
		mcp.WithString("parameter_name", mcp.Required(), mcp.Description("Name of the string parameter to update")),
		mcp.WithString("value", mcp.Required(), mcp.Description("New default value")),
	)
}

func testConnectionTool() mcp.Tool {
	return mcp.NewTool("jenkins.test_connection",
		mcp.WithDescription("Verify connectivity and credentials against the configured server"),
	)
}

func auditTool() mcp.Tool {
	return mcp.NewTool("jenkins.audit",
		mcp.WithDescription("List recorded tool invocations, newest first"),
		mcp.WithString("operation", mcp.Description("Filter by tool name, e.g. 'jenkins.trigger_build'")),
		mcp.WithString("outcome", mcp.Enum("ok", "denied", "error"), mcp.Description("Filter by outcome")),
		mcp.WithNumber("limit", mcp.Description("Maximum number of records to return (default 50)")),
	)
}
