// Package cli is the scriptable command-line frontend of the installer.
package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"appimage-installer/internal/desktop"
	"appimage-installer/internal/installer"

	"golang.org/x/term"
)

// Exit codes
const (
	ExitOK      = 0
	ExitFailed  = 1 // rejected, failed or cancelled operation
	ExitUsage   = 2
	historySize = 10
)

const usage = `Usage: appimage-installer [command] [flags]

Without a command the interactive interface is started.

Commands:
  install <file> [-- args...]   Install an AppImage
      --icon PATH                 use PATH as the icon
      --no-icon                   use the default icon
      --comment TEXT              desktop entry comment
      --yes                       overwrite without asking, take the first icon found
  edit <name>                   Change an installed app
      --name NAME                 rename the app
      --comment TEXT              replace the comment
      --icon PATH                 replace the icon
      --dry-run                   print the desktop entry diff only
  remove <name> [--yes]         Remove an installed app
  list                          List installed apps
  history [-n N]                Show recent registry changes
  version                       Print the version
  help                          Show this help

Global flags (before the command):
  --debug                       also log to stderr
  --config PATH                 use another config file
`

// App runs one command against an installer
type App struct {
	Installer *installer.Installer
	Version   string
	Out       io.Writer
	// Interactive enables prompts; without it confirmations are declined
	// unless --yes is given.
	Interactive bool

	out      *Printer
	readPath func(prompt string) (string, error)
	prompter func() installer.Prompter
}

// New creates an App on the process terminal
func New(inst *installer.Installer, version string) *App {
	a := &App{
		Installer:   inst,
		Version:     version,
		Out:         os.Stdout,
		Interactive: term.IsTerminal(int(os.Stdin.Fd())),
	}
	return a.init()
}

func (a *App) init() *App {
	if a.Out == nil {
		a.Out = io.Discard
	}
	a.out = NewPrinter(a.Out)
	if a.readPath == nil {
		a.readPath = ReadPath
	}
	if a.prompter == nil {
		a.prompter = func() installer.Prompter { return NewPrompter(a.Out) }
	}
	return a
}

// IsCommand reports whether name is a known command
func IsCommand(name string) bool {
	switch name {
	case "install", "edit", "remove", "list", "history", "version", "help":
		return true
	}
	return false
}

// Usage returns the help text
func Usage() string {
	return usage
}

// Run executes the command in args and returns the process exit code
func (a *App) Run(ctx context.Context, args []string) int {
	if a.out == nil {
		a.init()
	}
	if len(args) == 0 {
		fmt.Fprint(a.Out, usage)
		return ExitUsage
	}

	cmd, rest := args[0], args[1:]
	switch cmd {
	case "install":
		return a.install(ctx, rest)
	case "edit":
		return a.edit(ctx, rest)
	case "remove":
		return a.remove(ctx, rest)
	case "list":
		return a.list()
	case "history":
		return a.history(rest)
	case "version":
		fmt.Fprintf(a.Out, "appimage-installer %s\n", a.Version)
		return ExitOK
	case "help", "-h", "--help":
		fmt.Fprint(a.Out, usage)
		return ExitOK
	default:
		a.out.Error(fmt.Sprintf("unknown command %q", cmd))
		fmt.Fprintln(a.Out, "Run 'appimage-installer help' for usage.")
		return ExitUsage
	}
}

func (a *App) install(ctx context.Context, args []string) int {
	fs := a.flagSet("install")
	icon := fs.String("icon", "", "icon file")
	noIcon := fs.Bool("no-icon", false, "use the default icon")
	comment := fs.String("comment", "", "desktop entry comment")
	yes := fs.Bool("yes", false, "do not ask")

	args, extra := splitExtraArgs(args)
	positional, err := parseInterspersed(fs, args)
	if err != nil {
		return a.usageError(err)
	}

	var src string
	if len(positional) > 0 {
		src = positional[0]
		extra = append(positional[1:], extra...)
	}
	if src == "" {
		if !a.Interactive {
			return a.usageError(errors.New("install needs a file"))
		}
		src, err = a.readPath("AppImage to install:")
		if err != nil || strings.TrimSpace(src) == "" {
			a.out.Warning("No file given")
			return ExitFailed
		}
	}

	a.Installer.SetPrompter(a.prompterFor(*yes))
	res := a.Installer.Install(ctx, src, installer.InstallOptions{
		SkipIcon:  *noIcon,
		Icon:      *icon,
		Comment:   *comment,
		ExtraArgs: extra,
	})
	return a.report(res)
}

func (a *App) edit(ctx context.Context, args []string) int {
	fs := a.flagSet("edit")
	newName := fs.String("name", "", "new name")
	comment := fs.String("comment", "", "new comment")
	icon := fs.String("icon", "", "new icon file")
	dryRun := fs.Bool("dry-run", false, "print the diff only")

	positional, err := parseInterspersed(fs, args)
	if err != nil {
		return a.usageError(err)
	}
	if len(positional) != 1 {
		return a.usageError(errors.New("edit needs exactly one app name"))
	}
	name := positional[0]

	var req installer.EditRequest
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "name":
			req.NewName = newName
		case "comment":
			req.Comment = comment
		case "icon":
			req.IconPath = *icon
		}
	})
	if req.NewName == nil && req.Comment == nil && req.IconPath == "" {
		return a.usageError(errors.New("nothing to change: use --name, --comment or --icon"))
	}

	if *dryRun {
		before, after, err := a.Installer.PreviewEdit(name, req)
		if err != nil {
			a.out.Error(err.Error())
			return ExitFailed
		}
		d := desktop.Diff(before, after)
		a.out.Section(name + ".desktop")
		a.out.Diff(d)
		a.out.Info(d.Summary())
		return ExitOK
	}

	a.Installer.SetPrompter(a.prompterFor(false))
	return a.report(a.Installer.Edit(ctx, name, req))
}

func (a *App) remove(ctx context.Context, args []string) int {
	fs := a.flagSet("remove")
	yes := fs.Bool("yes", false, "do not ask")

	positional, err := parseInterspersed(fs, args)
	if err != nil {
		return a.usageError(err)
	}
	if len(positional) != 1 {
		return a.usageError(errors.New("remove needs exactly one app name"))
	}
	if !*yes && !a.Interactive {
		a.out.Warning("Not a terminal; pass --yes to confirm the removal")
	}

	a.Installer.SetPrompter(a.prompterFor(*yes))
	return a.report(a.Installer.Remove(ctx, positional[0]))
}

func (a *App) list() int {
	records := a.Installer.List()
	if len(records) == 0 {
		a.out.Info("No apps installed")
		return ExitOK
	}

	rows := make([][]string, 0, len(records))
	for _, rec := range records {
		installed := ""
		if !rec.InstallDate.IsZero() {
			installed = rec.InstallDate.Local().Format("2006-01-02 15:04")
		}
		rows = append(rows, []string{rec.Name, installed, rec.Path})
	}
	a.out.Table([]string{"Name", "Installed", "Path"}, rows)
	return ExitOK
}

func (a *App) history(args []string) int {
	fs := a.flagSet("history")
	n := fs.Int("n", historySize, "number of entries")
	if _, err := parseInterspersed(fs, args); err != nil {
		return a.usageError(err)
	}

	entries, err := a.Installer.History(*n)
	if err != nil {
		a.out.Error(err.Error())
		return ExitFailed
	}
	if len(entries) == 0 {
		a.out.Info("No history recorded (enable track_history in the config)")
		return ExitOK
	}
	for _, e := range entries {
		fmt.Fprintf(a.Out, "%s %s %s\n", Yellow(e.Hash), Faint(e.When.Local().Format("2006-01-02 15:04")), e.Message)
	}
	return ExitOK
}

// prompterFor returns the prompter for one command. --yes and
// non-interactive runs never block on input.
func (a *App) prompterFor(yes bool) installer.Prompter {
	if yes || !a.Interactive {
		return installer.AutoPrompter{Yes: yes}
	}
	return a.prompter()
}

// report prints the outcome of an operation and maps it to an exit code
func (a *App) report(res installer.Result) int {
	for _, w := range res.Warnings {
		a.out.Warning(w.Error())
	}
	switch res.Status {
	case installer.StatusSucceeded:
		a.out.Success(res.Message())
		return ExitOK
	case installer.StatusCancelled:
		a.out.Info(res.Message())
		return ExitFailed
	default:
		a.out.Error(res.Message())
		return ExitFailed
	}
}

func (a *App) usageError(err error) int {
	if errors.Is(err, flag.ErrHelp) {
		fmt.Fprint(a.Out, usage)
		return ExitOK
	}
	a.out.Error(err.Error())
	fmt.Fprintln(a.Out, "Run 'appimage-installer help' for usage.")
	return ExitUsage
}

func (a *App) flagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	return fs
}

// splitExtraArgs splits args at the first "--"
func splitExtraArgs(args []string) (before, after []string) {
	for i, arg := range args {
		if arg == "--" {
			return args[:i], append([]string(nil), args[i+1:]...)
		}
	}
	return args, nil
}

// parseInterspersed parses flags that may appear before or after positional
// arguments and returns the positional ones.
func parseInterspersed(fs *flag.FlagSet, args []string) ([]string, error) {
	var positional []string
	for {
		if err := fs.Parse(args); err != nil {
			return nil, err
		}
		args = fs.Args()
		if len(args) == 0 {
			return positional, nil
		}
		positional = append(positional, args[0])
		args = args[1:]
	}
}
