package app

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/dshills/mechanistan/internal/bus"
	"github.com/dshills/mechanistan/internal/bus/topic"
	"github.com/dshills/mechanistan/internal/config"
	"github.com/dshills/mechanistan/internal/journal"
	"github.com/dshills/mechanistan/internal/script"
	"github.com/dshills/mechanistan/internal/subscriber"
	"github.com/dshills/mechanistan/internal/topology"
)

// Options configures the application.
type Options struct {
	// ConfigPath is the path to the TOML configuration file.
	ConfigPath string

	// LogLevel overrides the configured log level when set.
	LogLevel string

	// Output receives console subscriber output. Defaults to os.Stdout.
	Output io.Writer

	// LogOutput receives log lines. Defaults to os.Stderr.
	LogOutput io.Writer
}

// Application owns one forest and everything subscribed to it.
type Application struct {
	mu sync.Mutex

	cfg     *config.Config
	logger  *Logger
	out     io.Writer
	journal *journal.Journal
	counter *subscriber.Counter

	doc     *topology.Document
	forest  *topology.Forest
	fanouts map[string]*subscriber.Fanout
	scripts []*script.Script
	watcher *script.Watcher

	closed bool
}

// New loads configuration from opts.ConfigPath and creates an application.
func New(opts Options) (*Application, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, &OperationError{Op: "load config", Target: opts.ConfigPath, Err: err}
	}
	if opts.LogLevel != "" {
		cfg.Logging.Level = opts.LogLevel
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
	}
	return NewWithConfig(cfg, opts)
}

// NewWithConfig creates an application from an already loaded configuration.
// opts.ConfigPath and opts.LogLevel are ignored.
func NewWithConfig(cfg *config.Config, opts Options) (*Application, error) {
	out := opts.Output
	if out == nil {
		out = os.Stdout
	}

	app := &Application{
		cfg: cfg,
		logger: NewLogger(LoggerConfig{
			Level:  ParseLogLevel(cfg.Logging.Level),
			Output: opts.LogOutput,
			Prefix: cfg.Logging.Prefix,
		}),
		out:     out,
		counter: subscriber.NewCounter(),
		fanouts: make(map[string]*subscriber.Fanout),
	}

	if cfg.Journal.Enabled {
		jlog := app.logger.WithComponent("journal")
		j, err := journal.Open(context.Background(), cfg.Journal.Path,
			journal.WithErrorHandler(func(err error) {
				jlog.Error("%v", err)
			}),
		)
		if err != nil {
			return nil, &OperationError{Op: "open journal", Target: cfg.Journal.Path, Err: err}
		}
		app.journal = j
		jlog.Debug("recording to %s", cfg.Journal.Path)
	}

	return app, nil
}

// Config returns the active configuration.
func (app *Application) Config() *config.Config {
	return app.cfg
}

// Logger returns the application logger.
func (app *Application) Logger() *Logger {
	return app.logger
}

// Journal returns the message journal, or nil when it is disabled.
func (app *Application) Journal() *journal.Journal {
	return app.journal
}

// Forest returns the loaded forest, or nil before Load.
func (app *Application) Forest() *topology.Forest {
	app.mu.Lock()
	defer app.mu.Unlock()
	return app.forest
}

// Stats returns the number of deliveries per topic seen by the installed
// subscribers.
func (app *Application) Stats() map[topic.Topic]int {
	return app.counter.Snapshot()
}

// Load reads the topology document at path, builds its forest with the
// application's subscribers installed, and loads the configured scripts.
// Nodes are not safe for concurrent use, so Load, Run and the script
// watcher must not overlap.
func (app *Application) Load(path string) error {
	app.mu.Lock()
	defer app.mu.Unlock()

	if app.closed {
		return ErrShutdown
	}
	if app.forest != nil {
		return ErrAlreadyLoaded
	}

	doc, err := topology.Load(path)
	if err != nil {
		return &OperationError{Op: "load", Target: path, Err: err}
	}
	forest, err := topology.Build(doc, app.install)
	if err != nil {
		return &OperationError{Op: "build", Target: path, Err: err}
	}
	app.doc = doc
	app.forest = forest
	app.logger.Info("loaded %d buses, %d steps from %s", forest.Len(), len(doc.Steps), path)
	if mass := forest.Mass(); mass > 0 {
		app.logger.Debug("component mass %g", mass)
	}

	return app.loadScripts()
}

// install is the topology sink. Each bus with declared filters gets one
// fan-out feeding the counter, the console, the log bridge, and the journal.
// It is subscribed only on the widest filters, so a message matching
// several declared filters is still handled once.
func (app *Application) install(id string, node *bus.Node, filters []topic.Topic) {
	widest := topic.Widest(filters)
	if len(widest) == 0 {
		return
	}

	f := subscriber.NewFanout(app.counter.Subscriber())
	if app.cfg.Console.Enabled {
		f.Add(subscriber.Filtered(topic.Topic(app.cfg.Console.Filter), subscriber.Console(app.out)))
	}
	f.Add(subscriber.LogBridge(app.logger.WithComponent(id)))
	if app.journal != nil {
		f.Add(app.journal.Subscriber(node))
	}

	for _, filter := range widest {
		node.Subscribe(filter, f.Subscriber())
	}
	app.fanouts[id] = f
}

// loadScripts binds each configured script to the bus whose id, or failing
// that whose name, equals the file stem. The script joins the bus's fan-out;
// a bus with no declared filters gets one on the empty filter.
func (app *Application) loadScripts() error {
	scriptLog := app.logger.WithComponent("script")

	for _, path := range app.cfg.Scripts.Paths {
		stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		id, node, ok := app.lookup(stem)
		if !ok {
			scriptLog.Warn("no bus named %q for %s", stem, path)
			continue
		}

		plog := scriptLog.WithField("path", path)
		s, err := script.Load(path, node,
			script.WithTimeout(app.cfg.Scripts.TimeoutDuration()),
			script.WithErrorHandler(func(err error) {
				plog.Error("%v", err)
			}),
		)
		if err != nil {
			return &OperationError{Op: "load script", Target: path, Err: err}
		}

		f, ok := app.fanouts[id]
		if !ok {
			f = subscriber.NewFanout()
			node.Subscribe("", f.Subscriber())
			app.fanouts[id] = f
		}
		f.Add(s.Subscriber())
		app.scripts = append(app.scripts, s)
		plog.Info("bound to %s", node.Path())
	}

	return nil
}

// Watch starts reloading scripts when their files change. Reloaded scripts
// broadcast from the watcher goroutine, so Watch belongs after Run has
// returned. It is a no-op when watching is disabled or nothing is loaded.
func (app *Application) Watch() error {
	app.mu.Lock()
	defer app.mu.Unlock()

	if app.closed {
		return ErrShutdown
	}
	if app.watcher != nil || !app.cfg.Scripts.Watch || len(app.scripts) == 0 {
		return nil
	}

	scriptLog := app.logger.WithComponent("script")
	w, err := script.NewWatcher(app.scripts,
		script.OnReload(func(s *script.Script) {
			scriptLog.Info("reloaded %s", s.Path())
		}),
		script.OnError(func(err error) {
			scriptLog.Error("%v", err)
		}),
	)
	if err != nil {
		return &OperationError{Op: "watch scripts", Err: err}
	}
	app.watcher = w
	return nil
}

func (app *Application) lookup(name string) (string, *bus.Node, bool) {
	if n, ok := app.forest.Node(name); ok {
		return name, n, true
	}
	for _, id := range app.forest.IDs() {
		n, _ := app.forest.Node(id)
		if n.Name() == name {
			return id, n, true
		}
	}
	return "", nil, false
}

// Run plays the loaded document's steps. Rejected attach and detach steps
// are logged and do not stop the run.
func (app *Application) Run(ctx context.Context) (topology.Result, error) {
	app.mu.Lock()
	forest, doc, closed := app.forest, app.doc, app.closed
	app.mu.Unlock()

	if closed {
		return topology.Result{}, ErrShutdown
	}
	if forest == nil {
		return topology.Result{}, ErrNotLoaded
	}

	res, err := topology.Run(ctx, forest, doc.Steps)
	for _, rej := range res.Rejected {
		app.logger.Warn("%v", rej)
	}
	if err != nil {
		return res, &OperationError{Op: "run", Err: err}
	}
	app.logger.Info("ran %d steps, %d rejected", res.Executed, len(res.Rejected))
	return res, nil
}

// Tree renders every tree of the forest to w.
func (app *Application) Tree(w io.Writer) error {
	forest := app.Forest()
	if forest == nil {
		return ErrNotLoaded
	}
	for _, root := range forest.Roots() {
		if err := topology.Render(w, root); err != nil {
			return err
		}
	}
	return nil
}

// Shutdown stops the watcher and closes scripts and the journal. It is safe
// to call more than once.
func (app *Application) Shutdown() error {
	app.mu.Lock()
	defer app.mu.Unlock()

	if app.closed {
		return nil
	}
	app.closed = true

	var errs ErrorList
	if app.watcher != nil {
		errs.Add(app.watcher.Close())
	}
	for _, s := range app.scripts {
		errs.Add(s.Close())
	}
	if app.journal != nil {
		errs.Add(app.journal.Close())
	}

	app.logger.Debug("shutdown complete")
	return errs.AsError()
}
