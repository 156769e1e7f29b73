package app

import (
	"context"
	"io"
	"os"
	"os/exec"
	"path/filepath"

	configapp "github.com/doeshing/cortex-shell/internal/application/config"
	"github.com/doeshing/cortex-shell/internal/application/dispatch"
	"github.com/doeshing/cortex-shell/internal/application/doctor"
	"github.com/doeshing/cortex-shell/internal/application/gate"
	"github.com/doeshing/cortex-shell/internal/application/orchestrator"
	"github.com/doeshing/cortex-shell/internal/application/session"
	"github.com/doeshing/cortex-shell/internal/application/shell"
	"github.com/doeshing/cortex-shell/internal/application/task"
	"github.com/doeshing/cortex-shell/internal/domain"
	"github.com/doeshing/cortex-shell/internal/infrastructure/ai"
	"github.com/doeshing/cortex-shell/internal/infrastructure/audit"
	"github.com/doeshing/cortex-shell/internal/infrastructure/builtins"
	"github.com/doeshing/cortex-shell/internal/infrastructure/config"
	contextcollector "github.com/doeshing/cortex-shell/internal/infrastructure/context"
	"github.com/doeshing/cortex-shell/internal/infrastructure/executor"
	"github.com/doeshing/cortex-shell/internal/infrastructure/history"
	"github.com/doeshing/cortex-shell/internal/infrastructure/lang"
	"github.com/doeshing/cortex-shell/internal/infrastructure/security"
	"github.com/doeshing/cortex-shell/internal/pkg/filesystem"
	"github.com/doeshing/cortex-shell/internal/pkg/logger"
	"github.com/doeshing/cortex-shell/internal/ports"
)

// Options carries what the container cannot build itself. The prompter and
// renderer live in the CLI layer.
type Options struct {
	Verbose    bool
	ConfigPath string
	Stdin      io.Reader
	Stdout     io.Writer
	Stderr     io.Writer
	Prompter   ports.ConfirmationPrompter
	Renderer   ports.Renderer
	Getenv     func(string) string
}

func (o Options) withDefaults() Options {
	if o.Stdin == nil {
		o.Stdin = os.Stdin
	}
	if o.Stdout == nil {
		o.Stdout = os.Stdout
	}
	if o.Stderr == nil {
		o.Stderr = os.Stderr
	}
	if o.Getenv == nil {
		o.Getenv = os.Getenv
	}
	return o
}

// Container wires up application services with infrastructure adapters.
type Container struct {
	Config         domain.Config
	ConfigProvider ports.ConfigProvider
	ConfigLoader   *config.FileLoader
	Logger         *logger.ZapLogger
	Audit          *audit.FileSink
	Risk           *security.Classifier
	Orchestrator   *orchestrator.Orchestrator
	Gate           *gate.Gate
	Dispatcher     *dispatch.Dispatcher
	History        *history.Store
	Shell          *shell.Service
	DoctorService  *doctor.Service
}

// BuildContainer constructs the dependency graph.
func BuildContainer(ctx context.Context, opts Options) (*Container, error) {
	opts = opts.withDefaults()

	cfgLoader := config.NewFileLoaderWithEnv(opts.ConfigPath, opts.Getenv)
	cfg, err := cfgLoader.Load(ctx)
	if err != nil {
		return nil, err
	}

	log := logger.New(opts.Verbose)
	if err := configapp.Validate(cfg); err != nil {
		log.Warn("configuration has problems; run 'cortex doctor'", map[string]interface{}{"error": err.Error()})
	}

	sink := buildAuditSink(cfg.Audit, log)

	rules, err := security.LoadRules(cfg.Security.RulesFile)
	if err != nil {
		log.Warn("risk rules unreadable, using defaults", map[string]interface{}{
			"path":  cfg.Security.RulesFile,
			"error": err.Error(),
		})
		rules = security.DefaultRules()
	}
	risk := security.NewClassifier(rules, cfg.Security.Threshold)

	orch, err := buildOrchestrator(ctx, cfg, opts.Getenv, sink, log)
	if err != nil {
		return nil, err
	}

	runner := executor.NewStreamingExecutor(opts.Stdin, opts.Stdout, opts.Stderr)
	commandGate := &gate.Gate{
		Analyzer: risk,
		Prompter: opts.Prompter,
		Executor: runner,
		Audit:    sink,
		Renderer: opts.Renderer,
		Logger:   log,
		Sandbox:  cfg.Security.Sandbox,
	}
	dispatcher := &dispatch.Dispatcher{
		Gate:             commandGate,
		Renderer:         opts.Renderer,
		Querier:          orch,
		Scanner:          executor.NewNmapScanner(),
		Audit:            sink,
		Logger:           log,
		MaxFollowUpDepth: cfg.AI.FollowUpDepth,
	}

	historyPath := filepath.Join(filesystem.UserHomeDir(), ".cortex", "history")
	store, err := history.OpenFileStore(historyPath, cfg.Shell.HistorySize)
	if err != nil {
		log.Warn("history unavailable, keeping it in memory", map[string]interface{}{"error": err.Error()})
		store = history.NewStore(cfg.Shell.HistorySize)
	}

	registry := builtins.NewDefaultRegistry(&builtins.Env{
		Out:       opts.Stdout,
		History:   store,
		Backends:  orch,
		Threshold: risk,
		Sandbox:   commandGate,
		Audit:     sink,
		Getenv:    opts.Getenv,
	})

	arabic, _ := domain.ParseLanguage(cfg.Language.ArabicScript)
	shellService := &shell.Service{
		Classifier: lang.NewClassifier(arabic),
		History:    store,
		Builtins:   registry,
		Assistant:  orch,
		Dispatcher: dispatcher,
		Gate:       commandGate,
		Renderer:   opts.Renderer,
		Logger:     log,
	}
	if cfg.AI.SystemContext {
		shellService.Environment = contextcollector.NewCollector()
	}

	doctorService := &doctor.Service{
		ConfigProvider: cfgLoader,
		Providers: func(ctx context.Context) []domain.ProviderDescriptor {
			return ai.Discover(ctx, opts.Getenv, ai.NewHTTPProber())
		},
		LoadRules: func(path string) error {
			_, err := security.LoadRules(path)
			return err
		},
		LookPath: exec.LookPath,
	}

	return &Container{
		Config:         cfg,
		ConfigProvider: cfgLoader,
		ConfigLoader:   cfgLoader,
		Logger:         log,
		Audit:          sink,
		Risk:           risk,
		Orchestrator:   orch,
		Gate:           commandGate,
		Dispatcher:     dispatcher,
		History:        store,
		Shell:          shellService,
		DoctorService:  doctorService,
	}, nil
}

func buildAuditSink(settings domain.AuditSettings, log ports.Logger) *audit.FileSink {
	var mirror *audit.SQLiteMirror
	if settings.Enabled && settings.MirrorSQLite {
		m, err := audit.OpenSQLiteMirror(settings.SQLitePath)
		if err != nil {
			log.Warn("audit mirror unavailable", map[string]interface{}{
				"path":  settings.SQLitePath,
				"error": err.Error(),
			})
		} else {
			mirror = m
		}
	}
	return audit.NewFileSink(audit.Options{
		Path:    settings.Path,
		Enabled: settings.Enabled,
		Mirror:  mirror,
		Logger:  log,
	})
}

func buildOrchestrator(ctx context.Context, cfg domain.Config, getenv func(string) string, sink ports.AuditSink, log ports.Logger) (*orchestrator.Orchestrator, error) {
	var prober ai.Prober
	if cfg.AI.OllamaProbe {
		prober = ai.NewHTTPProber()
	}
	descriptors := ai.Discover(ctx, getenv, prober)

	factory := ai.NewFactoryWithEnv(getenv, nil, nil)
	adapters, err := factory.Adapters(descriptors)
	if err != nil {
		return nil, err
	}

	var local ports.ModelLister
	for _, d := range descriptors {
		if d.Local {
			local = factory.LocalModels(d, task.CapabilitiesFor)
		}
	}

	language, ok := domain.ParseLanguage(cfg.Language.Preference)
	if !ok {
		language = domain.LangEnglish
	}

	return orchestrator.New(
		descriptors,
		adapters,
		task.NewSelector(local, descriptors),
		session.NewMemory(domain.SessionMemorySize),
		sink,
		log,
		orchestrator.Options{
			MaxContextBytes: cfg.AI.MaxContextBytes,
			Language:        language,
			Backend:         cfg.AI.Backend,
			Model:           cfg.AI.Model,
		},
	), nil
}

// Close flushes the logger and releases the audit mirror.
func (c *Container) Close() error {
	var firstErr error
	if mirror := c.Audit.Mirror(); mirror != nil {
		firstErr = mirror.Close()
	}
	_ = c.Logger.Sync()
	return firstErr
}
