package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"appimage-installer/internal/cli"
	"appimage-installer/internal/config"
	"appimage-installer/internal/desktop"
	"appimage-installer/internal/history"
	"appimage-installer/internal/icons"
	"appimage-installer/internal/installer"
	"appimage-installer/internal/logging"
	"appimage-installer/internal/registry"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/jonboulle/clockwork"
)

// Version info (set by ldflags)
var (
	version   = "dev"
	buildTime = "unknown"
)

// services are the long-lived objects shared by both frontends
type services struct {
	cfg      *config.Config
	inst     *installer.Installer
	writer   *desktop.Writer
	resolver *icons.Resolver
}

func newServices(cfg *config.Config) *services {
	writer := desktop.NewWriter(cfg.MenuDir, cfg.DesktopDir)

	resolver := &icons.Resolver{
		IconDir:   cfg.IconDir,
		Extractor: &icons.BundleExtractor{Timeout: cfg.ExtractTimeout},
	}
	if cfg.SearchIcons && len(cfg.Providers) > 0 {
		searcher := icons.NewSearcher(nil, cfg.FetchTimeout)
		searcher.Providers = icons.NewProviders(cfg, searcher.Client)
		resolver.Searcher = searcher
	}

	var recorder *history.Recorder
	if cfg.TrackHistory {
		r, err := history.Open(cfg.HistoryDir(), clockwork.NewRealClock())
		if err != nil {
			logging.Logger.Warn("registry history disabled", "error", err)
		} else {
			recorder = r
		}
	}

	inst := installer.New(installer.Options{
		BundleDir: cfg.BundleDir,
		IconDir:   cfg.IconDir,
		Store:     registry.NewStore(cfg.RegistryPath),
		Writer:    writer,
		Resolver:  resolver,
		History:   recorder,
	})

	return &services{cfg: cfg, inst: inst, writer: writer, resolver: resolver}
}

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	debug := false
	cfgPath := config.ConfigPath()

	var rest []string
	for i := 0; i < len(args); i++ {
		switch arg := args[i]; arg {
		case "-v", "--version":
			fmt.Printf("appimage-installer %s (built %s)\n", version, buildTime)
			return cli.ExitOK
		case "-h", "--help":
			fmt.Print(cli.Usage())
			return cli.ExitOK
		case "-d", "--debug":
			debug = true
		case "--config":
			if i+1 >= len(args) {
				fmt.Fprintln(os.Stderr, "Error: --config needs a path")
				return cli.ExitUsage
			}
			i++
			cfgPath = config.ExpandHome(args[i])
		default:
			rest = args[i:]
			i = len(args)
		}
	}

	cfg, err := config.LoadFrom(cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return cli.ExitFailed
	}
	var notice string
	if cfg.FirstRun {
		if err := cfg.SaveTo(cfgPath); err != nil {
			notice = fmt.Sprintf("Could not write %s: %v", cfgPath, err)
		} else {
			notice = "Created " + cfgPath
		}
	}

	level := cfg.LogLevel
	if debug {
		level = "debug"
	}
	var mirror io.Writer
	if debug && len(rest) > 0 {
		mirror = os.Stderr
	}
	if err := logging.Init(cfg.LogPath, level, mirror); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
	}
	defer logging.Close()
	logging.Logger.Debug("starting", "version", version, "config", cfgPath)

	if err := cfg.EnsureDirectories(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return cli.ExitFailed
	}

	svc := newServices(cfg)

	if len(rest) > 0 {
		if !cli.IsCommand(rest[0]) && looksLikeBundle(rest[0]) {
			rest = append([]string{"install"}, rest...)
		}
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return cli.New(svc.inst, version).Run(ctx, rest)
	}

	return runTUI(svc, notice)
}

// looksLikeBundle reports whether arg names an existing file, so that
// "appimage-installer Foo.AppImage" installs it.
func looksLikeBundle(arg string) bool {
	if strings.HasPrefix(arg, "-") {
		return false
	}
	info, err := os.Stat(arg)
	return err == nil && !info.IsDir()
}

func runTUI(svc *services, notice string) int {
	m := NewModel(svc)
	if notice != "" {
		m.setStatus("info", notice)
	}

	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion())
	svc.inst.SetPrompter(&tuiPrompter{send: p.Send})
	svc.resolver.Observer = func(s icons.State) {
		p.Send(resolverStateMsg(s))
	}

	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return cli.ExitFailed
	}
	return cli.ExitOK
}
