package api

import (
	"strings"

	"github.com/julianshen/repodoc/internal/ingest"
	"github.com/julianshen/repodoc/internal/pipeline"
)

// Source types accepted by the analyze endpoint.
const (
	SourceTypeRemote = "remote"
	SourceTypeLocal  = "local"
)

// SourceSpec selects the repository to analyze.
type SourceSpec struct {
	Type  string `json:"type"`
	URL   string `json:"url,omitempty"`
	Token string `json:"token,omitempty"`
	Path  string `json:"path,omitempty"`
}

// AnalyzeRequest is the body of POST /api/analyze.
type AnalyzeRequest struct {
	Source      SourceSpec `json:"source"`
	ProjectName string     `json:"project_name,omitempty"`
	Description string     `json:"description,omitempty"`
	SendEmail   bool       `json:"send_email,omitempty"`
	Recipient   string     `json:"recipient,omitempty"`
}

// toPipelineRequest validates the body and builds the run request.
func (r AnalyzeRequest) toPipelineRequest(allowLocal bool) (pipeline.Request, *APIError) {
	var src ingest.Source
	switch strings.ToLower(strings.TrimSpace(r.Source.Type)) {
	case SourceTypeRemote, "":
		if strings.TrimSpace(r.Source.URL) == "" {
			return pipeline.Request{}, NewValidationError("source.url", "required for remote sources")
		}
		src = ingest.RemoteSource{Locator: strings.TrimSpace(r.Source.URL), Credential: r.Source.Token}
	case SourceTypeLocal:
		if !allowLocal {
			return pipeline.Request{}, NewValidationError("source.type", "local sources are disabled on this server")
		}
		if strings.TrimSpace(r.Source.Path) == "" {
			return pipeline.Request{}, NewValidationError("source.path", "required for local sources")
		}
		src = ingest.LocalSource{Path: r.Source.Path}
	default:
		return pipeline.Request{}, NewValidationError("source.type", "must be remote or local")
	}

	if r.SendEmail && strings.TrimSpace(r.Recipient) == "" {
		return pipeline.Request{}, NewValidationError("recipient", "required when send_email is set")
	}

	return pipeline.Request{
		Source:      src,
		ProjectName: strings.TrimSpace(r.ProjectName),
		Description: r.Description,
		Delivery: pipeline.DeliveryOptions{
			Send:      r.SendEmail,
			Recipient: strings.TrimSpace(r.Recipient),
		},
	}, nil
}
