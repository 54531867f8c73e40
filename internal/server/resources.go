package server

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"github.com/joshdurbin/bodycode-mcp/internal/logging"
	"github.com/joshdurbin/bodycode-mcp/internal/store"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const (
	classificationURI = "bodycode://classification/current"
	logsURI           = "bodycode://logs"
	weekSummaryURI    = "bodycode://summary/week/current"
	habitURIPrefix    = "bodycode://habits/"
)

// registerResources registers all MCP resources for the server
func (s *Server) registerResources() {
	s.mcp.AddResource(&mcp.Resource{
		URI:         classificationURI,
		Name:        "current_classification",
		Description: "The saved body type classification with scores and reasoning",
		MIMEType:    "application/json",
	}, s.readClassification)

	s.mcp.AddResource(&mcp.Resource{
		URI:         logsURI,
		Name:        "daily_logs",
		Description: "Every daily log, ordered by date",
		MIMEType:    "application/json",
	}, s.readLogs)

	s.mcp.AddResource(&mcp.Resource{
		URI:         weekSummaryURI,
		Name:        "current_week_summary",
		Description: "Summary of the 7 days ending today",
		MIMEType:    "application/json",
	}, s.readCurrentWeekSummary)

	s.mcp.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: habitURIPrefix + "{id}",
		Name:        "habit_by_id",
		Description: "A habit card from the catalog by its id",
		MIMEType:    "application/json",
	}, s.readHabitByID)

	logging.Debug("MCP resources registered", "count", 4)
}

// jsonResource wraps v as a single JSON resource content
func jsonResource(uri string, v any) (*mcp.ReadResourceResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, NewInternalErrorWithCause("failed to marshal resource", err)
	}
	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{
			{
				URI:      uri,
				MIMEType: "application/json",
				Text:     string(data),
			},
		},
	}, nil
}

func (s *Server) readClassification(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	logging.Info("MCP resource read", "resource", "current_classification")

	c, err := s.tracker.Classification(ctx)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return jsonResource(classificationURI, map[string]string{"error": "No classification yet. Call classify_body_type first."})
		}
		logging.Error("readClassification failed", "error", err)
		return nil, NewStorageError("read", err)
	}
	return jsonResource(classificationURI, c)
}

func (s *Server) readLogs(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	logging.Info("MCP resource read", "resource", "daily_logs")

	logs, err := s.tracker.Logs(ctx)
	if err != nil {
		logging.Error("readLogs failed", "error", err)
		return nil, NewStorageError("read", err)
	}
	return jsonResource(logsURI, logs)
}

func (s *Server) readCurrentWeekSummary(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	logging.Info("MCP resource read", "resource", "current_week_summary")

	summary, err := s.tracker.WeeklySummary(ctx, "")
	if err != nil {
		logging.Error("readCurrentWeekSummary failed", "error", err)
		return nil, NewStorageError("read", err)
	}
	return jsonResource(weekSummaryURI, summary)
}

// readHabitByID serves bodycode://habits/{id}
func (s *Server) readHabitByID(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	uri := req.Params.URI
	id := strings.TrimPrefix(uri, habitURIPrefix)
	if id == "" || id == uri {
		return nil, NewInvalidInputErrorWithDetails("invalid habit URI format", uri)
	}

	logging.Info("MCP resource read", "resource", "habit_by_id", "id", id)

	entry, ok := s.tracker.Catalog().LookupHabitByID(id)
	if !ok {
		return nil, mcp.ResourceNotFoundError(uri)
	}
	return jsonResource(uri, entry)
}
