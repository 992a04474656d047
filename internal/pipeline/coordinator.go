package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"text/template"
	"time"

	"github.com/google/uuid"

	"github.com/julianshen/repodoc/internal/delivery"
	"github.com/julianshen/repodoc/internal/ingest"
)

// Generator is the text-generation capability each stage calls.
type Generator interface {
	Generate(ctx context.Context, systemPrompt, userPrompt string, maxTokens int) (string, error)
}

// Ingester turns a source into a ranked record sequence.
type Ingester interface {
	Ingest(ctx context.Context, src ingest.Source) ([]ingest.FileRecord, error)
}

// ErrDeliveryNotConfigured is recorded when delivery is requested but no
// Deliverer was wired.
var ErrDeliveryNotConfigured = errors.New("email delivery is not configured")

// Coordinator runs the stages in order: code analysis, doc analysis, review,
// generation, split and optional delivery. It keeps no state between runs,
// so one Coordinator may serve concurrent runs.
type Coordinator struct {
	cfg       Config
	ingester  Ingester
	gen       Generator
	deliverer delivery.Deliverer
	logger    *slog.Logger
	now       func() time.Time
}

// NewCoordinator creates a Coordinator. ingester is needed only by Run and
// deliverer may be nil when email delivery is disabled.
func NewCoordinator(cfg Config, ingester Ingester, gen Generator, deliverer delivery.Deliverer, logger *slog.Logger) *Coordinator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Coordinator{
		cfg:       cfg.withDefaults(),
		ingester:  ingester,
		gen:       gen,
		deliverer: deliverer,
		logger:    logger,
		now:       time.Now,
	}
}

// runState carries one execution's identity and observer through the stages.
type runState struct {
	id      string
	start   time.Time
	obs     Observer
	logger  *slog.Logger
	percent int
}

func (c *Coordinator) newRunState(obs Observer) *runState {
	if obs == nil {
		obs = nopObserver{}
	}
	id := uuid.NewString()
	return &runState{id: id, start: c.now(), obs: obs, logger: c.logger.With("run_id", id)}
}

func (rs *runState) enter(stage Stage) {
	rs.percent = stage.Percent()
	rs.logger.Info("stage started", "stage", stage, "percent", rs.percent)
	rs.obs.OnProgress(ProgressEvent{RunID: rs.id, Stage: stage, Label: stage.Label(), Percent: rs.percent})
}

// failed reports the terminal Failed transition out of stage. The percent
// stays at the last waypoint reached.
func (rs *runState) failed(stage Stage) {
	label := "Failed"
	if stage != StageIdle {
		label = "Failed: " + stage.Label()
	}
	rs.obs.OnProgress(ProgressEvent{RunID: rs.id, Stage: StageFailed, Label: label, Percent: rs.percent})
}

// Run ingests req.Source and analyzes the result. Failures are *RunError.
func (c *Coordinator) Run(ctx context.Context, req Request, obs Observer) (*AnalysisResult, error) {
	rs := c.newRunState(obs)

	if req.Source == nil {
		rs.failed(StageIdle)
		return nil, ingestionError(fmt.Errorf("%w: no source", ingest.ErrInvalidSourceLocator))
	}
	if err := req.Source.Validate(); err != nil {
		rs.failed(StageIdle)
		return nil, ingestionError(err)
	}
	if c.ingester == nil {
		rs.failed(StageIdle)
		return nil, stageError(StageIngestion, errors.New("no ingester configured"))
	}

	rs.enter(StageIngestion)
	records, err := c.ingester.Ingest(ctx, req.Source)
	if err != nil {
		rs.logger.Error("ingestion failed", "error", err)
		rs.failed(StageIngestion)
		return nil, ingestionError(err)
	}

	project := req.ProjectName
	if strings.TrimSpace(project) == "" {
		project = ProjectNameFor(req.Source)
	}

	return c.analyze(ctx, rs, Run{
		Records:     records,
		ProjectName: project,
		Description: req.Description,
		Delivery:    req.Delivery,
	})
}

// Analyze runs every stage after ingestion over run.Records.
func (c *Coordinator) Analyze(ctx context.Context, run Run, obs Observer) (*AnalysisResult, error) {
	return c.analyze(ctx, c.newRunState(obs), run)
}

func (c *Coordinator) analyze(ctx context.Context, rs *runState, run Run) (*AnalysisResult, error) {
	if c.gen == nil {
		return nil, c.fail(rs, StageCodeAnalysis, errors.New("no generator configured"))
	}
	if run.ProjectName == "" {
		run.ProjectName = "project"
	}

	rs.enter(StageCodeAnalysis)
	codeAnalysis, err := c.generate(ctx, codeSystemPrompt, codeAnalysisTmpl, filesPromptData{
		Project:     run.ProjectName,
		Description: run.Description,
		Files:       codeFiles(run.Records, c.cfg),
	}, c.cfg.AnalysisMaxTokens)
	if err != nil {
		return nil, c.fail(rs, StageCodeAnalysis, err)
	}

	rs.enter(StageDocAnalysis)
	docAnalysis, err := c.generate(ctx, docSystemPrompt, docAnalysisTmpl, filesPromptData{
		Project:     run.ProjectName,
		Description: run.Description,
		Files:       docFiles(run.Records, c.cfg),
	}, c.cfg.AnalysisMaxTokens)
	if err != nil {
		return nil, c.fail(rs, StageDocAnalysis, err)
	}

	rs.enter(StageReview)
	reviewed, err := c.generate(ctx, reviewSystemPrompt, reviewTmpl, analysesPromptData{
		Project:      run.ProjectName,
		CodeAnalysis: codeAnalysis,
		DocAnalysis:  docAnalysis,
	}, c.cfg.ReviewMaxTokens)
	if err != nil {
		return nil, c.fail(rs, StageReview, err)
	}
	reviewedCode, reviewedDoc := parseReview(reviewed, codeAnalysis, docAnalysis)
	if reviewedCode == codeAnalysis && reviewedDoc == docAnalysis {
		rs.logger.Warn("review response unlabeled, keeping original analyses")
	}

	rs.enter(StageGeneration)
	combined, err := c.generate(ctx, generationSystemPrompt, generationTmpl, analysesPromptData{
		Project:      run.ProjectName,
		Description:  run.Description,
		CodeAnalysis: reviewedCode,
		DocAnalysis:  reviewedDoc,
	}, c.cfg.GenerationMaxTokens)
	if err != nil {
		return nil, c.fail(rs, StageGeneration, err)
	}

	rs.enter(StageSplit)
	technical, functional := Split(combined, SplitMarker)
	if functional == FallbackFunctionalSpec {
		rs.logger.Warn("split marker missing, using fallback functional document")
	}
	if technical == "" {
		rs.logger.Warn("generation produced no technical document, using fallback")
		technical = FallbackTechnicalSpec
	}

	result := &AnalysisResult{
		TechnicalSpec:  technical,
		FunctionalSpec: functional,
		Metadata: Metadata{
			RunID:        rs.id,
			ProjectName:  run.ProjectName,
			FileCount:    len(run.Records),
			Languages:    DetectLanguages(run.Records),
			Frameworks:   DetectFrameworks(run.Records),
			Architecture: ArchitectureLabel,
			GeneratedAt:  rs.start.UTC(),
		},
	}

	if run.Delivery.requested() {
		rs.enter(StageDelivery)
		c.deliver(ctx, rs, run, result)
	}

	result.Metadata.Duration = c.now().Sub(rs.start)
	rs.enter(StageComplete)
	return result, nil
}

func (c *Coordinator) generate(ctx context.Context, system string, tmpl *template.Template, data any, maxTokens int) (string, error) {
	prompt, err := render(tmpl, data)
	if err != nil {
		return "", err
	}
	out, err := c.gen.Generate(ctx, system, prompt, maxTokens)
	if err != nil {
		return "", fmt.Errorf("generation: %w", err)
	}
	return out, nil
}

func (c *Coordinator) fail(rs *runState, stage Stage, err error) error {
	rs.logger.Error("stage failed", "stage", stage, "error", err)
	rs.failed(stage)
	return stageError(stage, err)
}

// deliver sends the documents and records the outcome. It never fails the run.
func (c *Coordinator) deliver(ctx context.Context, rs *runState, run Run, result *AnalysisResult) {
	meta := &result.Metadata
	meta.DeliveryAttempted = true

	if c.deliverer == nil {
		meta.DeliveryError = ErrDeliveryNotConfigured.Error()
		rs.logger.Warn("delivery skipped", "reason", ErrDeliveryNotConfigured)
		return
	}

	msg, err := BuildMessage(run.Delivery.Recipient, result)
	if err == nil {
		err = c.deliverer.Send(ctx, msg)
	}
	if err != nil {
		meta.DeliveryError = err.Error()
		rs.logger.Warn("delivery failed", "recipient", run.Delivery.Recipient, "error", err)
		return
	}
	meta.DeliverySucceeded = true
}

// BuildMessage assembles the email for a finished result: a plain-text
// summary, both documents rendered to HTML and both attached as markdown.
func BuildMessage(recipient string, result *AnalysisResult) (delivery.Message, error) {
	meta := result.Metadata
	subject := delivery.Subject(meta.ProjectName)

	html, err := delivery.RenderHTML(subject,
		result.TechnicalSpec+"\n\n---\n\n"+result.FunctionalSpec)
	if err != nil {
		return delivery.Message{}, err
	}

	slug := delivery.Slug(meta.ProjectName)
	return delivery.Message{
		To:       recipient,
		Subject:  subject,
		HTMLBody: html,
		TextBody: textSummary(meta),
		Attachments: []delivery.Attachment{
			{Filename: slug + "-technical-spec.md", Content: result.TechnicalSpec, MIMEType: delivery.MIMEMarkdown},
			{Filename: slug + "-functional-spec.md", Content: result.FunctionalSpec, MIMEType: delivery.MIMEMarkdown},
		},
	}, nil
}

func textSummary(meta Metadata) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Specifications for %s\n\n", meta.ProjectName)
	fmt.Fprintf(&sb, "Files analyzed: %d\n", meta.FileCount)
	fmt.Fprintf(&sb, "Languages: %s\n", joinOrNone(meta.Languages))
	fmt.Fprintf(&sb, "Frameworks: %s\n", joinOrNone(meta.Frameworks))
	fmt.Fprintf(&sb, "Architecture: %s\n\n", meta.Architecture)
	sb.WriteString("The technical and functional specifications are attached as Markdown files.\n")
	return sb.String()
}

func joinOrNone(items []string) string {
	if len(items) == 0 {
		return "none detected"
	}
	return strings.Join(items, ", ")
}

// ProjectNameFor derives a display name from a source: the repository name
// for remote sources and the directory name for local ones.
func ProjectNameFor(src ingest.Source) string {
	switch s := src.(type) {
	case ingest.RemoteSource:
		if ref, err := ingest.ParseRepoRef(s.Locator); err == nil {
			return ref.Name
		}
	case ingest.LocalSource:
		if abs, err := filepath.Abs(s.Path); err == nil {
			return filepath.Base(abs)
		}
	}
	return "project"
}
