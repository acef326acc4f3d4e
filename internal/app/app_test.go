package app

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dshills/mechanistan/internal/config"
)

const shipDoc = `
buses:
  - id: ship
    subscribe: ["damage", "alarm"]
  - id: reactor
    subscribe: ["damage"]
  - id: gun
links:
  - [ship, reactor]
  - [ship, gun]
steps:
  - broadcast: {from: gun, topic: damage.report, text: "hit for {}", args: [12]}
  - detach: [gun, reactor]
`

const reactorScript = `
function on_message(msg)
  emit("alarm.core", "reactor saw " .. msg.payload)
end
`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

type testApp struct {
	*Application
	out  *bytes.Buffer
	logs *bytes.Buffer
}

func newTestApp(t *testing.T, cfg *config.Config) *testApp {
	t.Helper()
	ta := &testApp{out: &bytes.Buffer{}, logs: &bytes.Buffer{}}
	app, err := NewWithConfig(cfg, Options{Output: ta.out, LogOutput: ta.logs})
	if err != nil {
		t.Fatalf("NewWithConfig() error = %v", err)
	}
	t.Cleanup(func() { _ = app.Shutdown() })
	ta.Application = app
	return ta
}

func TestApplication_RunScenario(t *testing.T) {
	dir := t.TempDir()
	cfg := config.Default()
	cfg.Journal.Enabled = true
	cfg.Journal.Path = ":memory:"
	cfg.Scripts.Paths = []string{writeFile(t, dir, "reactor.lua", reactorScript)}

	ta := newTestApp(t, cfg)
	if err := ta.Load(writeFile(t, dir, "ship.yaml", shipDoc)); err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	res, err := ta.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if res.Executed != 2 {
		t.Errorf("Executed = %d, want 2", res.Executed)
	}
	if len(res.Rejected) != 1 || res.Rejected[0].Kind != "detach" {
		t.Errorf("Rejected = %v, want one detach", res.Rejected)
	}

	expected := "[damage.report]@ship/gun:\n\thit for 12\n" +
		"[damage.report]@ship/gun:\n\thit for 12\n" +
		"[alarm.core]@ship/reactor:\n\treactor saw hit for 12\n"
	if ta.out.String() != expected {
		t.Errorf("console =\n%q\nwant\n%q", ta.out.String(), expected)
	}

	stats := ta.Stats()
	if stats["damage.report"] != 2 || stats["alarm.core"] != 1 {
		t.Errorf("Stats() = %v", stats)
	}

	ctx := context.Background()
	entries, err := ta.Journal().Query(ctx, "alarm")
	if err != nil {
		t.Fatalf("Query() error = %v", err)
	}
	if len(entries) != 1 || entries[0].Node != "ship" || entries[0].Sender != "ship/reactor" {
		t.Errorf("alarm entries = %+v", entries)
	}
	n, err := ta.Journal().Count(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if n != 3 {
		t.Errorf("journal Count() = %d, want 3", n)
	}

	if !strings.Contains(ta.logs.String(), "detach") {
		t.Errorf("rejected step not logged:\n%s", ta.logs.String())
	}
}

func TestApplication_Tree(t *testing.T) {
	dir := t.TempDir()
	doc := `
buses:
  - id: ship
  - id: hull
  - id: gun
  - id: drone
links:
  - [ship, hull]
  - [hull, gun]
`
	ta := newTestApp(t, config.Default())
	if err := ta.Tree(&bytes.Buffer{}); !errors.Is(err, ErrNotLoaded) {
		t.Errorf("Tree() before Load error = %v, want ErrNotLoaded", err)
	}
	if err := ta.Load(writeFile(t, dir, "doc.yaml", doc)); err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	if err := ta.Tree(&buf); err != nil {
		t.Fatal(err)
	}
	expected := "ship\n" +
		"└── hull\n" +
		"    └── gun\n" +
		"drone\n"
	if buf.String() != expected {
		t.Errorf("Tree() =\n%s\nwant\n%s", buf.String(), expected)
	}
}

func TestApplication_ConsoleFilter(t *testing.T) {
	dir := t.TempDir()
	cfg := config.Default()
	cfg.Console.Filter = "alarm"

	ta := newTestApp(t, cfg)
	doc := `
buses:
  - id: ship
    subscribe: [""]
steps:
  - broadcast: {from: ship, topic: damage, text: "ignored"}
  - broadcast: {from: ship, topic: alarm.fire, text: "shown"}
`
	if err := ta.Load(writeFile(t, dir, "doc.yaml", doc)); err != nil {
		t.Fatal(err)
	}
	if _, err := ta.Run(context.Background()); err != nil {
		t.Fatal(err)
	}
	if ta.out.String() != "[alarm.fire]@ship:\n\tshown\n" {
		t.Errorf("console = %q", ta.out.String())
	}
	if ta.Stats()["damage"] != 1 {
		t.Errorf("counter should still see filtered topics: %v", ta.Stats())
	}
}

func TestApplication_ScriptByName(t *testing.T) {
	dir := t.TempDir()
	cfg := config.Default()
	cfg.Console.Enabled = false
	cfg.Scripts.Paths = []string{
		writeFile(t, dir, "basic-gun-A.lua", `
function on_message(msg)
  if msg.topic == "trigger" then
    emit("fired", msg.payload)
  end
end
`),
		writeFile(t, dir, "ghost.lua", `function on_message(msg) end`),
	}

	ta := newTestApp(t, cfg)
	doc := `
buses:
  - id: ship
    subscribe: ["fired"]
  - id: gun
    name: basic-gun-A
links:
  - [ship, gun]
steps:
  - broadcast: {from: ship, topic: trigger, text: "bang"}
`
	if err := ta.Load(writeFile(t, dir, "doc.yaml", doc)); err != nil {
		t.Fatal(err)
	}
	if _, err := ta.Run(context.Background()); err != nil {
		t.Fatal(err)
	}

	// The gun declares no filters, so its script hears everything.
	if ta.Stats()["fired"] != 1 {
		t.Errorf("Stats() = %v, want one fired", ta.Stats())
	}
	if !strings.Contains(ta.logs.String(), `no bus named "ghost"`) {
		t.Errorf("missing ghost warning:\n%s", ta.logs.String())
	}
}

func TestApplication_LoadErrors(t *testing.T) {
	dir := t.TempDir()
	good := writeFile(t, dir, "doc.yaml", "buses:\n  - id: a\n")

	t.Run("missing document", func(t *testing.T) {
		ta := newTestApp(t, config.Default())
		err := ta.Load(filepath.Join(dir, "nope.yaml"))
		var opErr *OperationError
		if !errors.As(err, &opErr) || opErr.Op != "load" {
			t.Errorf("Load() error = %v, want load OperationError", err)
		}
	})

	t.Run("twice", func(t *testing.T) {
		ta := newTestApp(t, config.Default())
		if err := ta.Load(good); err != nil {
			t.Fatal(err)
		}
		if err := ta.Load(good); !errors.Is(err, ErrAlreadyLoaded) {
			t.Errorf("second Load() error = %v, want ErrAlreadyLoaded", err)
		}
	})

	t.Run("bad script", func(t *testing.T) {
		cfg := config.Default()
		cfg.Scripts.Paths = []string{writeFile(t, dir, "a.lua", "this is not lua")}
		ta := newTestApp(t, cfg)
		err := ta.Load(good)
		var opErr *OperationError
		if !errors.As(err, &opErr) || opErr.Op != "load script" {
			t.Errorf("Load() error = %v, want load script OperationError", err)
		}
	})

	t.Run("run before load", func(t *testing.T) {
		ta := newTestApp(t, config.Default())
		if _, err := ta.Run(context.Background()); !errors.Is(err, ErrNotLoaded) {
			t.Errorf("Run() error = %v, want ErrNotLoaded", err)
		}
	})
}

func TestApplication_Shutdown(t *testing.T) {
	cfg := config.Default()
	cfg.Journal.Enabled = true
	cfg.Journal.Path = ":memory:"
	ta := newTestApp(t, cfg)

	if err := ta.Shutdown(); err != nil {
		t.Fatalf("Shutdown() error = %v", err)
	}
	if err := ta.Shutdown(); err != nil {
		t.Errorf("second Shutdown() error = %v", err)
	}
	if err := ta.Load("whatever.yaml"); !errors.Is(err, ErrShutdown) {
		t.Errorf("Load() after Shutdown error = %v, want ErrShutdown", err)
	}
	if _, err := ta.Run(context.Background()); !errors.Is(err, ErrShutdown) {
		t.Errorf("Run() after Shutdown error = %v, want ErrShutdown", err)
	}
}

func TestNew(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "mechbus.toml", "[logging]\nlevel = \"error\"\n")

	app, err := New(Options{ConfigPath: path, LogLevel: "debug", LogOutput: &bytes.Buffer{}})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer app.Shutdown()
	if !app.Logger().Enabled(LogLevelDebug) {
		t.Error("debug should be enabled by the log level option")
	}

	if _, err := New(Options{ConfigPath: path, LogLevel: "shout"}); !errors.Is(err, config.ErrInvalid) {
		t.Errorf("New() with bad level error = %v, want config.ErrInvalid", err)
	}
}

func TestApplication_Watch(t *testing.T) {
	dir := t.TempDir()
	cfg := config.Default()
	cfg.Console.Enabled = false
	cfg.Scripts.Watch = true
	cfg.Scripts.Paths = []string{writeFile(t, dir, "ship.lua", `function on_message(msg) end`)}

	ta := newTestApp(t, cfg)
	if err := ta.Load(writeFile(t, dir, "doc.yaml", "buses:\n  - id: ship\n")); err != nil {
		t.Fatal(err)
	}
	if err := ta.Watch(); err != nil {
		t.Fatalf("Watch() error = %v", err)
	}
	if ta.watcher == nil {
		t.Fatal("watcher not started")
	}
	if err := ta.Watch(); err != nil {
		t.Errorf("second Watch() error = %v", err)
	}

	if err := ta.Shutdown(); err != nil {
		t.Fatalf("Shutdown() error = %v", err)
	}
	if err := ta.Watch(); !errors.Is(err, ErrShutdown) {
		t.Errorf("Watch() after Shutdown error = %v, want ErrShutdown", err)
	}
}

func TestApplication_OverlappingFilters(t *testing.T) {
	dir := t.TempDir()
	cfg := config.Default()
	cfg.Journal.Enabled = true
	cfg.Journal.Path = ":memory:"
	cfg.Scripts.Paths = []string{writeFile(t, dir, "ship.lua", `
seen = 0
function on_message(msg)
  if msg.topic == "damage.report" then
    seen = seen + 1
    emit("tally", tostring(seen))
  end
end
`)}

	ta := newTestApp(t, cfg)
	doc := `
buses:
  - id: ship
    subscribe: ["", "damage", "damage.report"]
steps:
  - broadcast: {from: ship, topic: damage.report, text: "hit"}
`
	if err := ta.Load(writeFile(t, dir, "doc.yaml", doc)); err != nil {
		t.Fatal(err)
	}
	if _, err := ta.Run(context.Background()); err != nil {
		t.Fatal(err)
	}

	expected := "[damage.report]@ship:\n\thit\n" +
		"[tally]@ship:\n\t1\n"
	if ta.out.String() != expected {
		t.Errorf("console =\n%q\nwant\n%q", ta.out.String(), expected)
	}

	entries, err := ta.Journal().Query(context.Background(), "damage.report")
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Errorf("journal has %d damage.report rows, want 1", len(entries))
	}

	stats := ta.Stats()
	if stats["damage.report"] != 1 || stats["tally"] != 1 {
		t.Errorf("Stats() = %v", stats)
	}
}

func TestApplication_ComponentBuses(t *testing.T) {
	dir := t.TempDir()
	cfg := config.Default()
	cfg.Console.Enabled = false
	ta := newTestApp(t, cfg)

	doc := `
buses:
  - id: chassis
    kind: BasicChassis
  - id: gun
    kind: BasicGun
links:
  - [chassis, gun]
`
	if err := ta.Load(writeFile(t, dir, "doc.yaml", doc)); err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	if err := ta.Tree(&buf); err != nil {
		t.Fatal(err)
	}
	if buf.String() != "basic-chassis-A\n└── basic-gun-A\n" {
		t.Errorf("Tree() = %q", buf.String())
	}
}
