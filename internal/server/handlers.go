package server

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ccollicutt/loglens/pkg/analytics"
	"github.com/ccollicutt/loglens/pkg/config"
	"github.com/ccollicutt/loglens/pkg/export"
	"github.com/ccollicutt/loglens/pkg/ingest"
	"github.com/ccollicutt/loglens/pkg/parser"
	"github.com/ccollicutt/loglens/pkg/query"
)

// apiRequest is the body shared by every endpoint. Sections are decoded
// over the defaults, so a client only sends what it changes.
type apiRequest struct {
	Content string              `json:"content"`
	Config  config.ParserConfig `json:"config"`
	View    config.ViewConfig   `json:"view"`
	Export  config.ExportConfig `json:"export"`
}

type parseResponse struct {
	RunID      string            `json:"run_id"`
	Format     string            `json:"format"`
	Fallback   bool              `json:"fallback"`
	ErrorCount int               `json:"error_count"`
	Entries    []parser.LogEntry `json:"entries"`
}

type queryResponse struct {
	Entries    []parser.LogEntry `json:"entries"`
	Page       int               `json:"page"`
	PageSize   int               `json:"page_size"`
	TotalPages int               `json:"total_pages"`
	ShownCount int               `json:"shown_count"`
	TotalCount int               `json:"total_count"`
}

var contentTypes = map[export.Format]string{
	export.FormatJSON: "application/json",
	export.FormatCSV:  "text/csv; charset=utf-8",
	export.FormatText: "text/plain; charset=utf-8",
}

// bind decodes and validates a request, writing a 400 response on failure.
func (s *Server) bind(c *gin.Context) (*config.Config, string, bool) {
	cfg := config.DefaultConfig()
	req := apiRequest{Config: cfg.Parser, View: cfg.View, Export: cfg.Export}
	if err := c.ShouldBindJSON(&req); err != nil {
		abort(c, http.StatusBadRequest, fmt.Errorf("invalid request body: %w", err))
		return nil, "", false
	}

	cfg.Parser, cfg.View, cfg.Export = req.Config, req.View, req.Export
	if err := config.Validate(cfg); err != nil {
		abort(c, http.StatusBadRequest, err)
		return nil, "", false
	}
	return cfg, req.Content, true
}

func (s *Server) ingest(c *gin.Context, cfg *config.Config, content string) (*ingest.Dataset, bool) {
	p := ingest.New(ingest.WithLogger(s.logger), ingest.WithClock(s.now))
	ds, err := p.Ingest(c.Request.Context(), content, cfg.ParserConfig())
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, parser.ErrCustomRegexMissing) {
			status = http.StatusBadRequest
		}
		abort(c, status, err)
		return nil, false
	}
	return ds, true
}

func (s *Server) handleParse(c *gin.Context) {
	cfg, content, ok := s.bind(c)
	if !ok {
		return
	}
	ds, ok := s.ingest(c, cfg, content)
	if !ok {
		return
	}

	resp := parseResponse{
		RunID:      ds.RunID.String(),
		Format:     string(ds.Format),
		ErrorCount: ds.ErrorCount(),
		Entries:    ds.Entries,
	}
	if ds.Detection != nil {
		resp.Fallback = ds.Detection.Fallback
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) handleQuery(c *gin.Context) {
	cfg, content, ok := s.bind(c)
	if !ok {
		return
	}
	ds, ok := s.ingest(c, cfg, content)
	if !ok {
		return
	}

	r := cfg.QueryView().Apply(ds.Entries)
	c.JSON(http.StatusOK, queryResponse{
		Entries:    r.Entries,
		Page:       r.Page,
		PageSize:   r.PageSize,
		TotalPages: r.TotalPages,
		ShownCount: r.ShownCount,
		TotalCount: r.TotalCount,
	})
}

func (s *Server) handleSummary(c *gin.Context) {
	cfg, content, ok := s.bind(c)
	if !ok {
		return
	}
	ds, ok := s.ingest(c, cfg, content)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, analytics.New().Summarize(ds.Entries))
}

func (s *Server) handleExport(c *gin.Context) {
	cfg, content, ok := s.bind(c)
	if !ok {
		return
	}
	req, err := cfg.ExportRequest()
	if err != nil {
		abort(c, http.StatusBadRequest, err)
		return
	}
	ds, ok := s.ingest(c, cfg, content)
	if !ok {
		return
	}

	// exports cover the searched and sorted set, unpaginated
	v := cfg.QueryView()
	entries := query.Sort(query.Filter(ds.Entries, v.SearchTerm), v.SortField, v.SortDirection)

	req.Now = s.now

	var buf bytes.Buffer
	if _, err := export.Export(c.Request.Context(), entries, req, &buf); err != nil {
		switch {
		case errors.Is(err, export.ErrNoData):
			abort(c, http.StatusUnprocessableEntity, err)
		case errors.Is(err, export.ErrInvalidFormat):
			abort(c, http.StatusBadRequest, err)
		default:
			abort(c, http.StatusInternalServerError, err)
		}
		return
	}

	name := "loglens_export_" + s.now().UTC().Format(config.DateLayout) + req.Format.Extension()
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, name))
	c.Data(http.StatusOK, contentTypes[req.Format], buf.Bytes())
}

func abort(c *gin.Context, status int, err error) {
	c.AbortWithStatusJSON(status, gin.H{"error": err.Error()})
}
