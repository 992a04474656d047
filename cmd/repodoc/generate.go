package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/julianshen/repodoc/internal/output"
	"github.com/julianshen/repodoc/internal/pipeline"
	"github.com/julianshen/repodoc/internal/tui"
)

type generateOptions struct {
	local       bool
	token       string
	project     string
	description string
	email       bool
	recipient   string
	outputDir   string
	format      string
	preview     bool
	interactive bool
	noProgress  bool
	timeout     time.Duration
}

func generateCmd(root *rootOptions) *cobra.Command {
	opts := &generateOptions{}

	cmd := &cobra.Command{
		Use:   "generate [repository | directory]",
		Short: "Analyze a repository and generate its specifications",
		Long: `Analyze a repository and generate a technical and a functional
specification.

The argument is a repository locator (https://github.com/owner/name,
gitlab.com/group/name, git@host:owner/name.git or owner/name) or, with
--local, a directory (default ".").`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerate(cmd, root, opts, args)
		},
	}

	cmd.Flags().BoolVar(&opts.local, "local", false, "treat the argument as a local directory")
	cmd.Flags().StringVar(&opts.token, "token", "", "access token for the repository host (default from config)")
	cmd.Flags().StringVar(&opts.project, "project", "", "project name (default derived from the source)")
	cmd.Flags().StringVar(&opts.description, "description", "", "short project description passed to the analysis")
	cmd.Flags().BoolVar(&opts.email, "email", false, "email the documents when done")
	cmd.Flags().StringVar(&opts.recipient, "recipient", "", "email recipient")
	cmd.Flags().StringVarP(&opts.outputDir, "output", "o", "", "write the documents into this directory")
	cmd.Flags().StringVar(&opts.format, "format", "markdown", "stdout format: json, markdown")
	cmd.Flags().BoolVar(&opts.preview, "preview", false, "render the documents in the terminal")
	cmd.Flags().BoolVarP(&opts.interactive, "interactive", "i", false, "collect inputs with an interactive form")
	cmd.Flags().BoolVar(&opts.noProgress, "no-progress", false, "log progress instead of drawing a progress bar")
	cmd.Flags().DurationVar(&opts.timeout, "timeout", 30*time.Minute, "overall run timeout")

	return cmd
}

// inputs converts flags and arguments into form inputs.
func (o *generateOptions) inputs(args []string) tui.GenerateInputs {
	in := tui.GenerateInputs{
		SourceType:  tui.SourceRemote,
		Token:       o.token,
		ProjectName: o.project,
		Description: o.description,
		SendEmail:   o.email,
		Recipient:   o.recipient,
	}
	if o.local {
		in.SourceType = tui.SourceLocal
		in.Path = "."
		if len(args) > 0 {
			in.Path = args[0]
		}
	} else if len(args) > 0 {
		in.Locator = args[0]
	}
	return in
}

func runGenerate(cmd *cobra.Command, root *rootOptions, opts *generateOptions, args []string) error {
	if !opts.interactive && !opts.local && len(args) == 0 {
		return errors.New("a repository locator is required (or use --local / --interactive)")
	}
	formatter, err := output.NewFormatter(opts.format)
	if err != nil {
		return err
	}

	cfg, err := root.loadConfig()
	if err != nil {
		return err
	}
	logger := root.newLogger(cmd.ErrOrStderr(), cfg)
	logger.Debug("configuration loaded", "config", cfg)

	ctx, cancel := context.WithTimeout(cmd.Context(), opts.timeout)
	defer cancel()

	in := opts.inputs(args)
	if opts.interactive {
		in, err = tui.NewGenerateForm(in, cfg.Mail.Enabled).Run(ctx)
		if err != nil {
			return err
		}
	}
	req, err := in.Request()
	if err != nil {
		return err
	}
	if req.Delivery.Send && !cfg.Mail.Enabled {
		logger.Warn("email requested but mail is not enabled in config; delivery will be reported as failed")
	}

	coord, err := newCoordinator(cfg, logger)
	if err != nil {
		return err
	}

	var result *pipeline.AnalysisResult
	if !opts.noProgress && isTerminal(cmd.ErrOrStderr()) {
		result, err = tui.RunWithProgress(ctx, func(ctx context.Context, obs pipeline.Observer) (*pipeline.AnalysisResult, error) {
			return coord.Run(ctx, req, obs)
		}, tea.WithOutput(cmd.ErrOrStderr()), tea.WithContext(ctx))
	} else {
		result, err = coord.Run(ctx, req, progressPrinter(cmd.ErrOrStderr()))
	}
	if err != nil {
		return err
	}

	return emitResult(cmd.OutOrStdout(), cmd.ErrOrStderr(), opts, formatter, result, logger)
}

func emitResult(stdout, stderr io.Writer, opts *generateOptions, formatter output.Formatter, result *pipeline.AnalysisResult, logger *slog.Logger) error {
	if opts.outputDir != "" {
		paths, err := output.WriteDocuments(opts.outputDir, result)
		if err != nil {
			return err
		}
		for _, p := range paths {
			logger.Info("document written", "path", p)
		}
	}

	if isTerminal(stderr) {
		fmt.Fprintln(stderr, tui.RenderSummary(result.Metadata))
	}

	if opts.preview {
		style := "notty"
		if isTerminal(stdout) {
			style = "dark"
		}
		r, err := tui.NewMarkdownRenderer(style, 100)
		if err != nil {
			return err
		}
		rendered, err := r.RenderResult(result)
		if err != nil {
			return fmt.Errorf("rendering preview: %w", err)
		}
		_, err = io.WriteString(stdout, rendered)
		return err
	}

	out, err := formatter.Format(result)
	if err != nil {
		return fmt.Errorf("formatting output: %w", err)
	}
	_, err = stdout.Write(out)
	return err
}

// progressPrinter writes one status line per stage when no terminal UI runs.
func progressPrinter(w io.Writer) pipeline.Observer {
	return pipeline.ObserverFunc(func(e pipeline.ProgressEvent) {
		fmt.Fprintln(w, pipeline.FormatProgress(e))
	})
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
