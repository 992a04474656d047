// Package pipeline sequences the analysis stages that turn a ranked file set
// into a technical and a functional document.
package pipeline

import (
	"time"

	"github.com/julianshen/repodoc/internal/ingest"
)

// Stage names one step of a run.
type Stage string

const (
	StageIdle         Stage = "idle"
	StageIngestion    Stage = "ingestion"
	StageCodeAnalysis Stage = "code_analysis"
	StageDocAnalysis  Stage = "doc_analysis"
	StageReview       Stage = "review"
	StageGeneration   Stage = "generation"
	StageSplit        Stage = "split"
	StageDelivery     Stage = "delivery"
	StageComplete     Stage = "complete"
	StageFailed       Stage = "failed"
)

// waypoint is the fixed progress reported when a stage begins.
type waypoint struct {
	percent int
	label   string
}

var waypoints = map[Stage]waypoint{
	StageIngestion:    {5, "Ingesting repository"},
	StageCodeAnalysis: {15, "Analyzing code structure"},
	StageDocAnalysis:  {30, "Analyzing documentation"},
	StageReview:       {50, "Reviewing analyses"},
	StageGeneration:   {70, "Generating specifications"},
	StageSplit:        {85, "Splitting documents"},
	StageDelivery:     {95, "Sending email"},
	StageComplete:     {100, "Complete"},
}

// Percent returns the progress waypoint of s, or 0 for stages without one.
func (s Stage) Percent() int { return waypoints[s].percent }

// Label returns the human-readable label of s.
func (s Stage) Label() string {
	if wp, ok := waypoints[s]; ok {
		return wp.label
	}
	return string(s)
}

// DeliveryOptions asks for the finished documents to be emailed.
type DeliveryOptions struct {
	Send      bool
	Recipient string
}

// requested reports whether delivery should run at all.
func (d DeliveryOptions) requested() bool {
	return d.Send && d.Recipient != ""
}

// Request is what a caller supplies to start a run from a source.
type Request struct {
	Source      ingest.Source
	ProjectName string
	Description string
	Delivery    DeliveryOptions
}

// Run is one pipeline execution over an already ingested file set. It is
// owned by a single Analyze call.
type Run struct {
	Records     []ingest.FileRecord
	ProjectName string
	Description string
	Delivery    DeliveryOptions
}

// Metadata describes a finished run.
type Metadata struct {
	RunID             string        `json:"run_id"`
	ProjectName       string        `json:"project_name"`
	FileCount         int           `json:"file_count"`
	Languages         []string      `json:"languages"`
	Frameworks        []string      `json:"frameworks"`
	Architecture      string        `json:"architecture"`
	GeneratedAt       time.Time     `json:"generated_at"`
	Duration          time.Duration `json:"duration"`
	DeliveryAttempted bool          `json:"delivery_attempted"`
	DeliverySucceeded bool          `json:"delivery_succeeded"`
	DeliveryError     string        `json:"delivery_error,omitempty"`
}

// AnalysisResult is the terminal artifact of a successful run.
type AnalysisResult struct {
	TechnicalSpec  string   `json:"technical_spec"`
	FunctionalSpec string   `json:"functional_spec"`
	Metadata       Metadata `json:"metadata"`
}
