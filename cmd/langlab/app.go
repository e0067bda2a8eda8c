package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/kataras/golog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/tmc/langchaingo/llms"

	"github.com/smallnest/langlab/config"
	"github.com/smallnest/langlab/graph"
	"github.com/smallnest/langlab/log"
	"github.com/smallnest/langlab/metrics"
	"github.com/smallnest/langlab/models"
	"github.com/smallnest/langlab/render"
)

// app carries the state shared by all commands.
type app struct {
	v        *viper.Viper
	in       io.Reader
	out      io.Writer
	switcher *models.Switcher
	recorder *metrics.Recorder
	// tracer is nil unless --trace is set.
	tracer    *graph.Tracer
	traceFile io.Closer

	// newModel builds the model of the selected preset; replaced in tests.
	newModel func(ctx context.Context) (llms.Model, models.Info, error)
}

func newApp(in io.Reader, out io.Writer) *app {
	a := &app{
		v:        viper.New(),
		in:       in,
		out:      out,
		switcher: models.Default(),
		recorder: metrics.New(metrics.DefaultConfig()),
	}
	a.newModel = a.presetModel
	return a
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:           "langlab",
		Short:         "LLM orchestration tutorials: models, chains, agents and graphs",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd.Context())
		},
		PersistentPostRunE: func(*cobra.Command, []string) error {
			if a.traceFile != nil {
				return a.traceFile.Close()
			}
			return nil
		},
	}

	flags := root.PersistentFlags()
	flags.String("preset", "", "model preset to use (overrides ACTIVE_CONFIG)")
	flags.String("presets", "", "YAML file with model presets")
	flags.String("log-level", "warn", "log level: debug, info, warn, error, none")
	flags.String("metrics-addr", "", "serve Prometheus metrics on this address, e.g. :9090")
	flags.Bool("plain", false, "print replies without markdown rendering")
	flags.String("trace", "", "append JSON spans of graph runs and model calls to this file, - for stderr")

	a.v.SetEnvPrefix("langlab")
	a.v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	a.v.AutomaticEnv()
	if err := a.v.BindPFlags(flags); err != nil {
		panic(err)
	}

	root.AddCommand(
		a.modelsCmd(),
		a.askCmd(),
		a.chatCmd(),
		a.chainCmd(),
		a.agentCmd(),
		a.graphCmd(),
		a.evalCmd(),
	)
	return root
}

// setup loads .env, installs the logger and starts the metrics endpoint.
func (a *app) setup(ctx context.Context) error {
	if err := config.LoadEnv(); err != nil {
		return err
	}

	level, err := log.ParseLevel(a.v.GetString("log-level"))
	if err != nil {
		return err
	}
	logger := log.NewGologLogger(golog.New())
	logger.SetLevel(level)
	log.SetDefaultLogger(logger)

	if addr := a.v.GetString("metrics-addr"); addr != "" {
		go func() {
			if err := a.recorder.Serve(ctx, addr); err != nil {
				log.Error("metrics server: %v", err)
			}
		}()
		log.Info("serving metrics on %s/metrics", addr)
	}

	switch path := a.v.GetString("trace"); path {
	case "":
	case "-":
		a.tracer = graph.NewTracer(graph.LogTraceHook(), graph.JSONTraceHook(os.Stderr))
	default:
		f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return fmt.Errorf("open trace file: %w", err)
		}
		a.traceFile = f
		a.tracer = graph.NewTracer(graph.LogTraceHook(), graph.JSONTraceHook(f))
	}
	return nil
}

func (a *app) presets() (*config.Presets, error) {
	if path := a.v.GetString("presets"); path != "" {
		return config.Load(path)
	}
	return config.Default(), nil
}

// activeName is the preset selected by --preset, ACTIVE_CONFIG or the file.
func (a *app) activeName(p *config.Presets) string {
	if name := a.v.GetString("preset"); name != "" {
		return name
	}
	return p.ActiveName()
}

func (a *app) presetModel(ctx context.Context) (llms.Model, models.Info, error) {
	presets, err := a.presets()
	if err != nil {
		return nil, models.Info{}, err
	}
	preset, err := presets.Get(a.activeName(presets))
	if err != nil {
		return nil, models.Info{}, err
	}
	m, err := a.switcher.FromPreset(ctx, preset, models.WithRecorder(a.recorder), models.WithTracer(a.tracer))
	if err != nil {
		return nil, models.Info{}, err
	}
	return m, m.Info, nil
}

// model builds the selected model and prints its configuration.
func (a *app) model(ctx context.Context) (llms.Model, error) {
	m, info, err := a.newModel(ctx)
	if err != nil {
		return nil, fmt.Errorf("load model: %w", err)
	}
	render.ModelInfo(a.out, info)
	return m, nil
}

func (a *app) markdown() bool { return !a.v.GetBool("plain") }

func (a *app) print(content string) error {
	return render.PrintResponse(a.out, content, a.markdown())
}

func (a *app) printf(format string, v ...any) {
	fmt.Fprintf(a.out, format, v...)
}
