package mcpServer

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/akolanti/docvector/internal/config"
	"github.com/akolanti/docvector/internal/domain/commonModels"
	"github.com/akolanti/docvector/internal/rag"
	"github.com/akolanti/docvector/pkg/logger_i"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

var ErrMissingService = errors.New("rag service is required")

// Server exposes the document operations as MCP tools.
type Server struct {
	service rag.Service
	server  *mcp.Server
	logger  *logger_i.Logger
}

type SearchInput struct {
	Query          string   `json:"query" jsonschema:"natural language query"`
	UserID         string   `json:"user_id" jsonschema:"owner whose documents are searched"`
	Limit          *int     `json:"limit,omitempty" jsonschema:"maximum number of results, 1 to 100 (default 10)"`
	ScoreThreshold *float32 `json:"score_threshold,omitempty" jsonschema:"minimum cosine similarity, 0 to 1 (default 0.7)"`
}

type SearchOutput struct {
	Results []commonModels.SearchResult `json:"results"`
	Count   int                         `json:"count"`
}

type ListInput struct {
	UserID string `json:"user_id" jsonschema:"owner whose documents are listed"`
}

type ListOutput struct {
	Documents []commonModels.DocumentSummary `json:"documents"`
	Count     int                            `json:"count"`
}

type DeleteInput struct {
	DocumentID string `json:"document_id" jsonschema:"document to delete"`
	UserID     string `json:"user_id" jsonschema:"owner of the document"`
}

type DeleteOutput struct {
	DocumentID string `json:"document_id"`
	Deleted    bool   `json:"deleted"`
}

type IngestInput struct {
	Text       string `json:"text" jsonschema:"raw text to index"`
	UserID     string `json:"user_id" jsonschema:"owner of the document"`
	DocumentID string `json:"document_id,omitempty" jsonschema:"document id; a new one is generated when empty"`
}

func New(service rag.Service) (*Server, error) {
	if service == nil {
		return nil, ErrMissingService
	}
	s := &Server{
		service: service,
		server: mcp.NewServer(&mcp.Implementation{
			Name:    config.ServiceName,
			Version: config.ServiceVersion,
		}, nil),
		logger: logger_i.NewLogger("MCP"),
	}
	s.registerTools()
	return s, nil
}

// Handler serves the tools over the streamable HTTP transport.
func (s *Server) Handler() http.Handler {
	return mcp.NewStreamableHTTPHandler(func(_ *http.Request) *mcp.Server {
		return s.server
	}, nil)
}

func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "search_documents",
		Description: "Semantic search over the chunks a user has indexed",
	}, s.handleSearch)
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "list_documents",
		Description: "List a user's documents with their chunk counts",
	}, s.handleList)
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "delete_document",
		Description: "Delete every chunk of a user's document",
	}, s.handleDelete)
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "ingest_text",
		Description: "Chunk, embed and index raw text for a user",
	}, s.handleIngest)
}

func (s *Server) handleSearch(ctx context.Context, _ *mcp.CallToolRequest, input SearchInput) (*mcp.CallToolResult, SearchOutput, error) {
	results, err := s.service.Search(ctx, commonModels.Query{
		Text:           input.Query,
		UserID:         input.UserID,
		Limit:          input.Limit,
		ScoreThreshold: input.ScoreThreshold,
	})
	if err != nil {
		return nil, SearchOutput{}, s.toolError(ctx, "search_documents", err)
	}
	if results == nil {
		results = []commonModels.SearchResult{}
	}
	return nil, SearchOutput{Results: results, Count: len(results)}, nil
}

func (s *Server) handleList(ctx context.Context, _ *mcp.CallToolRequest, input ListInput) (*mcp.CallToolResult, ListOutput, error) {
	documents, err := s.service.ListDocuments(ctx, input.UserID)
	if err != nil {
		return nil, ListOutput{}, s.toolError(ctx, "list_documents", err)
	}
	return nil, ListOutput{Documents: documents, Count: len(documents)}, nil
}

func (s *Server) handleDelete(ctx context.Context, _ *mcp.CallToolRequest, input DeleteInput) (*mcp.CallToolResult, DeleteOutput, error) {
	if err := s.service.DeleteDocument(ctx, input.DocumentID, input.UserID); err != nil {
		return nil, DeleteOutput{}, s.toolError(ctx, "delete_document", err)
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: fmt.Sprintf("Document %s deleted successfully", input.DocumentID)},
		},
	}, DeleteOutput{DocumentID: input.DocumentID, Deleted: true}, nil
}

func (s *Server) handleIngest(ctx context.Context, _ *mcp.CallToolRequest, input IngestInput) (*mcp.CallToolResult, commonModels.IngestionReport, error) {
	report, err := s.service.IngestText(ctx, input.Text, input.DocumentID, input.UserID)
	if err != nil {
		return nil, commonModels.IngestionReport{}, s.toolError(ctx, "ingest_text", err)
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: fmt.Sprintf("Indexed %d chunks as %s", report.ChunksProcessed, report.DocumentID)},
		},
	}, report, nil
}

func (s *Server) toolError(ctx context.Context, tool string, err error) error {
	s.logger.FromContext(ctx).Warn("Tool call failed", "tool", tool, "error", err)
	return fmt.Errorf("%s: %w", tool, err)
}
