package tui

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"

	"github.com/charmbracelet/huh"

	"github.com/julianshen/repodoc/internal/ingest"
	"github.com/julianshen/repodoc/internal/pipeline"
)

// Source kinds offered by the generate form.
const (
	SourceRemote = "remote"
	SourceLocal  = "local"
)

// GenerateInputs holds the values collected by the generate form.
type GenerateInputs struct {
	SourceType  string
	Locator     string
	Token       string
	Path        string
	ProjectName string
	Description string
	SendEmail   bool
	Recipient   string
}

// Request converts the inputs into a pipeline request.
func (in GenerateInputs) Request() (pipeline.Request, error) {
	var src ingest.Source
	switch in.SourceType {
	case SourceLocal:
		if err := validateRequired("directory")(in.Path); err != nil {
			return pipeline.Request{}, err
		}
		src = ingest.LocalSource{Path: strings.TrimSpace(in.Path)}
	case SourceRemote, "":
		if err := validateLocator(in.Locator); err != nil {
			return pipeline.Request{}, err
		}
		src = ingest.RemoteSource{Locator: strings.TrimSpace(in.Locator), Credential: strings.TrimSpace(in.Token)}
	default:
		return pipeline.Request{}, fmt.Errorf("unknown source type %q", in.SourceType)
	}

	if in.SendEmail {
		if err := validateEmail(in.Recipient); err != nil {
			return pipeline.Request{}, err
		}
	}

	return pipeline.Request{
		Source:      src,
		ProjectName: strings.TrimSpace(in.ProjectName),
		Description: strings.TrimSpace(in.Description),
		Delivery: pipeline.DeliveryOptions{
			Send:      in.SendEmail,
			Recipient: strings.TrimSpace(in.Recipient),
		},
	}, nil
}

// GenerateForm wraps a Huh form collecting the inputs for one run.
type GenerateForm struct {
	form   *huh.Form
	inputs *GenerateInputs
}

// NewGenerateForm creates the form pre-filled with defaults.
func NewGenerateForm(defaults GenerateInputs, mailEnabled bool) *GenerateForm {
	in := defaults
	if in.SourceType == "" {
		in.SourceType = SourceRemote
	}
	gf := &GenerateForm{inputs: &in}

	sourceGroup := huh.NewGroup(
		huh.NewSelect[string]().
			Title("Source").
			Options(
				huh.NewOption("Remote repository (GitHub / GitLab)", SourceRemote),
				huh.NewOption("Local directory", SourceLocal),
			).
			Value(&in.SourceType),
	).Title("Repository")

	remoteGroup := huh.NewGroup(
		huh.NewInput().
			Title("Repository URL").
			Placeholder("https://github.com/owner/name").
			Validate(validateLocator).
			Value(&in.Locator),
		huh.NewInput().
			Title("Access token (optional)").
			EchoMode(huh.EchoModePassword).
			Value(&in.Token),
	).Title("Remote").
		WithHideFunc(func() bool { return in.SourceType != SourceRemote })

	localGroup := huh.NewGroup(
		huh.NewInput().
			Title("Directory").
			Placeholder(".").
			Validate(validateRequired("directory")).
			Value(&in.Path),
	).Title("Local").
		WithHideFunc(func() bool { return in.SourceType != SourceLocal })

	projectGroup := huh.NewGroup(
		huh.NewInput().
			Title("Project name").
			Placeholder("derived from the source").
			Value(&in.ProjectName),
		huh.NewText().
			Title("Description").
			Lines(3).
			Value(&in.Description),
	).Title("Project")

	deliveryGroup := huh.NewGroup(
		huh.NewConfirm().
			Title("Email the documents?").
			Value(&in.SendEmail),
	).Title("Delivery").
		WithHideFunc(func() bool { return !mailEnabled })

	recipientGroup := huh.NewGroup(
		huh.NewInput().
			Title("Recipient").
			Placeholder("team@example.com").
			Validate(validateEmail).
			Value(&in.Recipient),
	).Title("Delivery").
		WithHideFunc(func() bool { return !mailEnabled || !in.SendEmail })

	gf.form = huh.NewForm(sourceGroup, remoteGroup, localGroup, projectGroup, deliveryGroup, recipientGroup)
	return gf
}

// GroupCount returns the number of form groups.
func (g *GenerateForm) GroupCount() int { return 6 }

// Form returns the underlying huh.Form for Bubble Tea embedding.
func (g *GenerateForm) Form() *huh.Form { return g.form }

// Inputs returns the current values.
func (g *GenerateForm) Inputs() GenerateInputs { return *g.inputs }

// ErrFormAborted is returned when the user cancels the form.
var ErrFormAborted = errors.New("form aborted")

// Run shows the form on the terminal and returns the collected inputs.
func (g *GenerateForm) Run(ctx context.Context) (GenerateInputs, error) {
	if err := g.form.RunWithContext(ctx); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return GenerateInputs{}, ErrFormAborted
		}
		return GenerateInputs{}, fmt.Errorf("running form: %w", err)
	}
	return g.Inputs(), nil
}

func validateRequired(field string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s is required", field)
		}
		return nil
	}
}

func validateLocator(s string) error {
	if strings.TrimSpace(s) == "" {
		return errors.New("repository URL is required")
	}
	_, err := ingest.ParseRepoRef(strings.TrimSpace(s))
	return err
}

func validateEmail(s string) error {
	if strings.TrimSpace(s) == "" {
		return errors.New("recipient is required")
	}
	if _, err := mail.ParseAddress(strings.TrimSpace(s)); err != nil {
		return fmt.Errorf("invalid email address: %w", err)
	}
	return nil
}
