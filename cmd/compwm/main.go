package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"text/tabwriter"

	"golang.org/x/term"
	"gopkg.in/yaml.v3"

	"github.com/1broseidon/compwm/internal/config"
	"github.com/1broseidon/compwm/internal/daemon"
	"github.com/1broseidon/compwm/internal/ipc"
	"github.com/1broseidon/compwm/internal/mcp"
	"github.com/1broseidon/compwm/internal/runtimepath"
	"github.com/1broseidon/compwm/internal/tui"
)

func main() {
	if len(os.Args) < 2 {
		printMainUsage(os.Stdout)
		os.Exit(0)
	}

	switch os.Args[1] {
	case "daemon":
		os.Exit(runDaemon(os.Args[2:]))
	case "status":
		os.Exit(runStatus(os.Args[2:]))
	case "windows":
		os.Exit(runWindows(os.Args[2:]))
	case "iconify":
		os.Exit(runWindowCommand("iconify", os.Args[2:]))
	case "close":
		os.Exit(runWindowCommand("close", os.Args[2:]))
	case "reload":
		os.Exit(runReload(os.Args[2:]))
	case "config":
		os.Exit(runConfig(os.Args[2:]))
	case "tui":
		os.Exit(runTUI(os.Args[2:]))
	case "mcp":
		os.Exit(runMCP(os.Args[2:]))
	case "help", "-h", "--help":
		printMainUsage(os.Stdout)
		os.Exit(0)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printMainUsage(os.Stderr)
		os.Exit(2)
	}
}

func printMainUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: compwm <command> [options]")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  daemon              Start the compositor (foreground)")
	fmt.Fprintln(w, "  status              Show compositor status")
	fmt.Fprintln(w, "  windows             List composited windows, bottom to top")
	fmt.Fprintln(w, "  iconify [ID]        Iconify a window (default: active window)")
	fmt.Fprintln(w, "  close [ID]          Close a window (default: active window)")
	fmt.Fprintln(w, "  reload              Reload configuration")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  config validate     Validate configuration")
	fmt.Fprintln(w, "  config print        Print configuration")
	fmt.Fprintln(w, "  config explain      Explain a config value")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  tui                 Live window table")
	fmt.Fprintln(w, "  mcp serve           Start MCP server (stdio transport)")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Run 'compwm <command> --help' for command-specific options.")
}

func newClient() (*ipc.Client, error) {
	path, err := runtimepath.SocketPath()
	if err != nil {
		return nil, err
	}
	return ipc.NewClient(path), nil
}

// parseNoArgs parses a flag set that takes no positional arguments.
func parseNoArgs(fs *flag.FlagSet, args []string) (int, bool) {
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0, false
		}
		return 2, false
	}
	if fs.NArg() != 0 {
		fmt.Fprintf(os.Stderr, "%s takes no arguments\n", fs.Name())
		fs.Usage()
		return 2, false
	}
	return 0, true
}

// useJSON reports whether output should be machine readable.
func useJSON(forced bool) bool {
	return forced || !term.IsTerminal(int(os.Stdout.Fd()))
}

func printJSON(v any) int {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

func runStatus(args []string) int {
	fs := flag.NewFlagSet("status", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	asJSON := fs.Bool("json", false, "Print JSON (default when stdout is not a terminal)")
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: compwm status [--json]")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Show compositor status via IPC.")
	}
	if code, ok := parseNoArgs(fs, args); !ok {
		return code
	}

	client, err := newClient()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	status, err := client.GetStatus()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	if useJSON(*asJSON) {
		return printJSON(status)
	}
	fmt.Printf("daemon_running: %v\n", status.DaemonRunning)
	fmt.Printf("renderer:       %s\n", status.Renderer)
	fmt.Printf("compositing:    %v\n", status.Compositing)
	fmt.Printf("windows:        %d\n", status.Windows)
	fmt.Printf("visible:        %d\n", status.Visible)
	fmt.Printf("transitioning:  %d\n", status.Transitioning)
	fmt.Printf("hung:           %d\n", status.Hung)
	fmt.Printf("iconified:      %d\n", status.Iconified)
	fmt.Printf("uptime_seconds: %d\n", status.UptimeSeconds)
	return 0
}

func runWindows(args []string) int {
	fs := flag.NewFlagSet("windows", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	asJSON := fs.Bool("json", false, "Print JSON (default when stdout is not a terminal)")
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: compwm windows [--json]")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "List composited windows, bottom to top.")
	}
	if code, ok := parseNoArgs(fs, args); !ok {
		return code
	}

	client, err := newClient()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	data, err := client.ListWindows()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	if useJSON(*asJSON) {
		return printJSON(data)
	}

	tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tSTATUS\tVISIBLE\tMAPPED\tICONIFIED\tBLURRED\tZ\tOPACITY\tBEHIND")
	for _, w := range data.Windows {
		behind := "-"
		if w.Behind != 0 {
			behind = fmt.Sprintf("0x%x", w.Behind)
		}
		fmt.Fprintf(tw, "0x%x\t%s\t%v\t%v\t%v\t%v\t%d\t%.2f\t%s\n",
			w.ID, w.Status, w.Visible, w.Mapped, w.Iconified, w.Blurred, w.ZValue, w.Opacity, behind)
	}
	if err := tw.Flush(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

// parseWindowID accepts decimal or 0x-prefixed hex ids.
func parseWindowID(s string) (uint32, error) {
	id, err := strconv.ParseUint(s, 0, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid window id %q", s)
	}
	return uint32(id), nil
}

func runWindowCommand(name string, args []string) int {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: compwm %s [WINDOW_ID]\n", name)
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Without an id the active window is used.")
	}
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}
	if fs.NArg() > 1 {
		fs.Usage()
		return 2
	}

	var id uint32
	if fs.NArg() == 1 {
		var err error
		if id, err = parseWindowID(fs.Arg(0)); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 2
		}
	}

	client, err := newClient()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	if name == "iconify" {
		err = client.Iconify(id)
	} else {
		err = client.Close(id)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

func runReload(args []string) int {
	fs := flag.NewFlagSet("reload", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: compwm reload")
	}
	if code, ok := parseNoArgs(fs, args); !ok {
		return code
	}

	client, err := newClient()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	if err := client.Reload(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	fmt.Println("config reloaded")
	return 0
}

func loadConfig(path string) (*config.LoadResult, error) {
	if path == "" {
		return config.LoadWithSources()
	}
	return config.LoadFromPath(path)
}

func runConfig(args []string) int {
	if len(args) == 0 || args[0] == "help" || args[0] == "-h" || args[0] == "--help" {
		fmt.Fprintln(os.Stderr, "Usage:")
		fmt.Fprintln(os.Stderr, "  compwm config validate [--path PATH]")
		fmt.Fprintln(os.Stderr, "  compwm config print [--path PATH] [--effective|--defaults]")
		fmt.Fprintln(os.Stderr, "  compwm config explain [--path PATH] <yaml.path>")
		return 2
	}

	switch args[0] {
	case "validate":
		fs := flag.NewFlagSet("validate", flag.ContinueOnError)
		fs.SetOutput(os.Stderr)
		path := fs.String("path", "", "Config file path (default: ~/.config/compwm/config.yaml)")
		if err := fs.Parse(args[1:]); err != nil {
			return 2
		}

		if _, err := loadConfig(*path); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		fmt.Println("config: ok")
		return 0

	case "print":
		fs := flag.NewFlagSet("print", flag.ContinueOnError)
		fs.SetOutput(os.Stderr)
		path := fs.String("path", "", "Config file path (default: ~/.config/compwm/config.yaml)")
		printDefaults := fs.Bool("defaults", false, "Print built-in defaults (no files)")
		printEffective := fs.Bool("effective", false, "Print effective config (default)")
		if err := fs.Parse(args[1:]); err != nil {
			return 2
		}
		defaultsOnly, err := printSelection(*printDefaults, *printEffective)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 2
		}

		cfg := config.DefaultConfig()
		if !defaultsOnly {
			res, err := loadConfig(*path)
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				return 1
			}
			cfg = res.Config
		}
		data, err := cfg.Marshal()
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		fmt.Print(string(data))
		return 0

	case "explain":
		fs := flag.NewFlagSet("explain", flag.ContinueOnError)
		fs.SetOutput(os.Stderr)
		path := fs.String("path", "", "Config file path (default: ~/.config/compwm/config.yaml)")
		if err := fs.Parse(args[1:]); err != nil {
			return 2
		}
		if fs.NArg() < 1 {
			fmt.Fprintln(os.Stderr, "explain requires <yaml.path>")
			return 2
		}
		queryPath := fs.Arg(0)

		res, err := loadConfig(*path)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}

		value, src, err := config.Explain(res, queryPath)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}

		out, err := yaml.Marshal(value)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}

		fmt.Printf("path: %s\n", queryPath)
		fmt.Printf("source: %s\n", formatSource(src))
		fmt.Printf("value:\n%s", string(out))
		return 0

	default:
		fmt.Fprintf(os.Stderr, "Unknown config subcommand: %s\n", args[0])
		return 2
	}
}

// printSelection reports whether config print shows only the built-in
// defaults. The effective config is printed unless -defaults is given.
func printSelection(defaults, effective bool) (defaultsOnly bool, err error) {
	if defaults && effective {
		return false, fmt.Errorf("-defaults and -effective are mutually exclusive")
	}
	return defaults, nil
}

func formatSource(src config.Source) string {
	switch src.Kind {
	case config.SourceFile:
		if src.File == "" {
			return "file"
		}
		if src.Line > 0 {
			return fmt.Sprintf("file:%s:%d:%d", src.File, src.Line, src.Column)
		}
		return "file:" + src.File
	case config.SourceEnv:
		if src.Name != "" {
			return "env:" + src.Name
		}
		return "env"
	case config.SourceDefault:
		if src.Name != "" {
			return "default:" + src.Name
		}
		return "default"
	default:
		return string(src.Kind)
	}
}

func runDaemon(args []string) int {
	fs := flag.NewFlagSet("daemon", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	path := fs.String("config", "", "Config file path (default: ~/.config/compwm/config.yaml)")
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: compwm daemon [--config PATH]")
	}
	if code, ok := parseNoArgs(fs, args); !ok {
		return code
	}

	cfgPath := *path
	if cfgPath == "" {
		var err error
		if cfgPath, err = config.DefaultConfigPath(); err != nil {
			log.Fatalf("Failed to resolve config path: %v", err)
		}
	}
	res, err := config.LoadFromPath(cfgPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	cfg := res.Config

	level := new(slog.LevelVar)
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	logger.Info("configuration loaded", "path", cfgPath, "files", len(res.Files), "compositing", cfg.Compositing)

	d := daemon.New(cfgPath, cfg, level, logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	hup := make(chan os.Signal, 1)
	signal.Notify(hup, syscall.SIGHUP)
	defer signal.Stop(hup)
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case <-hup:
				logger.Info("received SIGHUP, reloading config")
				if err := d.Reload(ctx); err != nil {
					logger.Warn("config reload failed", "error", err)
				}
			}
		}
	}()

	if err := d.Run(ctx); err != nil {
		log.Fatalf("compwm daemon: %v", err)
	}
	logger.Info("shutting down compwm daemon")
	return 0
}

func runTUI(args []string) int {
	fs := flag.NewFlagSet("tui", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	refresh := fs.Duration("refresh", tui.DefaultRefresh, "Refresh interval")
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: compwm tui [--refresh DURATION]")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Keybindings:")
		fmt.Fprintln(os.Stderr, "  j/k, ↑/↓  Select window")
		fmt.Fprintln(os.Stderr, "  i         Iconify selected window")
		fmt.Fprintln(os.Stderr, "  c         Close selected window")
		fmt.Fprintln(os.Stderr, "  r         Reload daemon config")
		fmt.Fprintln(os.Stderr, "  q, Esc    Quit")
	}
	if code, ok := parseNoArgs(fs, args); !ok {
		return code
	}

	client, err := newClient()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	if err := tui.Run(client, *refresh); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

func printMCPUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: compwm mcp <command>")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  serve    Start the MCP server (stdio transport)")
}

func runMCP(args []string) int {
	if len(args) == 0 {
		printMCPUsage(os.Stderr)
		return 2
	}

	switch args[0] {
	case "serve":
		if len(args) > 1 {
			fmt.Fprintln(os.Stderr, "mcp serve takes no arguments")
			return 2
		}
	case "help", "-h", "--help":
		printMCPUsage(os.Stdout)
		return 0
	default:
		fmt.Fprintf(os.Stderr, "Unknown mcp command: %s\n\n", args[0])
		printMCPUsage(os.Stderr)
		return 2
	}

	client, err := newClient()
	if err != nil {
		log.Fatalf("Failed to resolve daemon socket: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := mcp.NewServer(client).Run(ctx); err != nil {
		log.Fatalf("MCP server error: %v", err)
	}
	return 0
}
