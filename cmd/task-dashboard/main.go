package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"golang.org/x/term"

	"github.com/ThomasAdam/task-dashboard/pkg/dashboard"
)

var (
	flagConfig      string
	flagState       string
	flagTaskDir     string
	flagDryRun      bool
	flagPrintConfig bool
)

func init() {
	flag.StringVar(&flagConfig, "config", "", "Path to YAML config (defaults to XDG paths if empty)")
	flag.StringVar(&flagState, "state", "", "Path to state file (defaults to XDG paths if empty)")
	flag.StringVar(&flagTaskDir, "task-dir", "", "Taskwarrior data dir for hook commands (default: $TASKDATA or ~/.task)")
	flag.BoolVar(&flagDryRun, "dry-run", false, "Print the compiled split/command plan and exit")
	flag.BoolVar(&flagPrintConfig, "print-config-path", false, "Print resolved config path(s) and exit")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "task-dashboard\n\n")
		fmt.Fprintf(os.Stderr, "Usage:\n")
		fmt.Fprintf(os.Stderr, "  task-dashboard [options] start [name]\n")
		fmt.Fprintf(os.Stderr, "  task-dashboard [options] stop [name]\n")
		fmt.Fprintf(os.Stderr, "  task-dashboard [options] refresh [task-command]\n")
		fmt.Fprintf(os.Stderr, "  task-dashboard list\n")
		fmt.Fprintf(os.Stderr, "  task-dashboard hook <install|uninstall|status>\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, `
Examples:
  task-dashboard start
  task-dashboard --dry-run start reviews
  task-dashboard hook install
`)
	}
}

func main() {
	// Taskwarrior runs the on-exit hook through a symlink; detect that
	// before touching flags so hook feedback args never collide with our
	// own CLI surface.
	if dashboard.InvokedAsHook(os.Args[0]) {
		runHook(os.Args[1:])
		return
	}

	flag.Parse()

	if flagPrintConfig {
		for _, p := range dashboard.ConfigPathCandidates(flagConfig) {
			fmt.Println(p)
		}
		return
	}

	if err := run(flag.Args()); err != nil {
		fmt.Fprintf(os.Stderr, "task-dashboard: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	sub := "start"
	if len(args) > 0 {
		sub = args[0]
		args = args[1:]
	}

	switch sub {
	case "start":
		d, err := pickTarget(args)
		if err != nil {
			return err
		}
		if flagDryRun {
			plan, err := dashboard.Compile(d.Layout)
			if err != nil {
				return err
			}
			fmt.Print(dashboard.FormatPlan(plan))
			return nil
		}
		if err := dashboard.Start(d, flagState); err != nil {
			return err
		}
		fmt.Printf("started dashboard %q in tmux session %q\n", d.Name, d.EffectiveSession())
		return nil

	case "stop":
		d, err := pickTarget(args)
		if err != nil {
			return err
		}
		return dashboard.Stop(d, flagState)

	case "refresh":
		// Manual refresh; default to a whitelisted action so it always
		// fires.
		action := "modify"
		if len(args) > 0 {
			action = args[0]
		}
		cfg, _, err := dashboard.LoadConfig(flagConfig)
		if err != nil {
			return err
		}
		return dashboard.RefreshAll(cfg, flagState, action)

	case "list":
		cfg, path, err := dashboard.LoadConfig(flagConfig)
		if err != nil {
			return err
		}
		fmt.Printf("# %s\n", path)
		for _, d := range cfg.Dashboards {
			desc := d.Description
			if desc != "" {
				desc = " - " + desc
			}
			fmt.Printf("%s (%d panes)%s\n", d.Name, d.Layout.CountLeaves(), desc)
		}
		return nil

	case "hook":
		return runHookCommand(args)

	default:
		return fmt.Errorf("unknown command %q (try: start, stop, refresh, list, hook)", sub)
	}
}

// pickTarget resolves the dashboard named on the command line, or falls back
// to the config default, or the interactive picker on a terminal.
func pickTarget(args []string) (*dashboard.Dashboard, error) {
	cfg, _, err := dashboard.LoadConfig(flagConfig)
	if err != nil {
		return nil, err
	}

	if len(args) > 0 {
		d := cfg.FindDashboard(args[0])
		if d == nil {
			return nil, fmt.Errorf("dashboard %q not found", args[0])
		}
		return d, nil
	}

	if d := cfg.DefaultDashboard(); d != nil {
		return d, nil
	}

	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return nil, errors.New("several dashboards configured; name one (no terminal for the picker)")
	}
	return dashboard.PickDashboard(cfg)
}

func runHookCommand(args []string) error {
	if len(args) == 0 {
		return errors.New("hook: expected install, uninstall or status")
	}
	switch args[0] {
	case "install":
		link, err := dashboard.InstallHook(flagTaskDir)
		if err != nil {
			return err
		}
		fmt.Printf("installed hook %s\n", link)
		return nil
	case "uninstall":
		return dashboard.UninstallHook(flagTaskDir)
	case "status":
		ok, target, err := dashboard.HookInstalled(flagTaskDir)
		if err != nil {
			return err
		}
		if !ok {
			fmt.Println("hook not installed")
			return nil
		}
		fmt.Printf("hook installed -> %s\n", target)
		return nil
	default:
		return fmt.Errorf("hook: unknown action %q", args[0])
	}
}

// runHook handles invocation by taskwarrior through the on-exit symlink.
// Hook failures must never surface to the task command that triggered them,
// so everything here is best-effort and the exit code is always 0.
func runHook(args []string) {
	// on-exit hooks receive the affected tasks as JSON lines on stdin;
	// drain it so taskwarrior never blocks on a full pipe.
	_, _ = io.Copy(io.Discard, os.Stdin)

	action := dashboard.CommandFromHookArgs(args)
	if !dashboard.IsWriteAction(action) {
		return
	}

	cfg, _, err := dashboard.LoadConfig("")
	if err != nil {
		return
	}
	_ = dashboard.RefreshAll(cfg, "", action)
}
