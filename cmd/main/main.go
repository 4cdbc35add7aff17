package main

import (
	"fmt"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/user/ray-log-explorer/pkg/config"
	"github.com/user/ray-log-explorer/pkg/dashboard"
	"github.com/user/ray-log-explorer/pkg/demo"
	"github.com/user/ray-log-explorer/pkg/logging"
	"github.com/user/ray-log-explorer/pkg/models"
	"github.com/user/ray-log-explorer/pkg/nav"
	"github.com/user/ray-log-explorer/pkg/ui"
)

type options struct {
	dashboardURL string
	link         string
	node         string
	folder       string
	file         string
	demo         bool
	logLevel     string
	logFile      string
	exportDir    string
	fixture      string
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &options{}
	cmd := &cobra.Command{
		Use:   "ray-log-explorer",
		Short: "Browse Ray cluster logs from the terminal",
		Long: `Browse the log files of a Ray cluster's nodes through the dashboard API.
Every page is a link, the same as the web dashboard's /logs/ pages.`,
		Example: `  ray-log-explorer --dashboard-url http://head:8265
  ray-log-explorer --node <node-id> --folder events
  ray-log-explorer --url '/logs/viewer?nodeId=<node-id>&fileName=raylet.out'
  ray-log-explorer --demo`,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Flags(), opts)
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.dashboardURL, "dashboard-url", "", "Ray dashboard address (overrides config and RAYLOGS_DASHBOARD_URL)")
	f.StringVar(&opts.link, "url", "", "start at this link, e.g. /logs/?nodeId=<id>&folder=<dir>")
	f.StringVar(&opts.node, "node", "", "start in this node's log listing")
	f.StringVar(&opts.folder, "folder", "", "start in this folder (with --node)")
	f.StringVar(&opts.file, "file", "", "open this file in the viewer (with --node)")
	f.BoolVar(&opts.demo, "demo", false, "browse a built-in sample cluster instead of a dashboard")
	f.StringVar(&opts.fixture, "demo-fixture", "", "YAML cluster description served by --demo")
	f.StringVar(&opts.logLevel, "log-level", "", "log level: debug, info, warn, error")
	f.StringVar(&opts.logFile, "log-file", "", "write logs to this file")
	f.StringVar(&opts.exportDir, "export-dir", "", "directory for exported listings and saved files (default: working directory)")
	cmd.AddCommand(newConfigCmd())
	return cmd
}

func run(flags *pflag.FlagSet, opts *options) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	cfg = applyFlags(cfg, flags, opts)

	logFile := cfg.LogFile
	if logFile == "" {
		if logFile, err = config.DefaultLogFile(); err != nil {
			return fmt.Errorf("resolve log file: %w", err)
		}
	}
	if err := logging.Init(logging.Config{Level: cfg.LogLevel, OutputPath: logFile}); err != nil {
		return fmt.Errorf("init logging: %w", err)
	}
	defer func() { _ = logging.Sync() }()

	if opts.fixture != "" && !opts.demo {
		return fmt.Errorf("--demo-fixture needs --demo")
	}
	if opts.demo {
		cluster := demo.SampleCluster()
		if opts.fixture != "" {
			if cluster, err = demo.LoadFixture(opts.fixture); err != nil {
				return err
			}
		}
		srv, err := demo.Start(cluster, "127.0.0.1:0")
		if err != nil {
			return fmt.Errorf("start demo dashboard: %w", err)
		}
		defer func() { _ = srv.Close() }()
		cfg.DashboardURL = srv.URL()
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	link, err := startLink(opts)
	if err != nil {
		return err
	}

	client, err := dashboard.NewClient(cfg.DashboardURL, nil, cfg.Timeout())
	if err != nil {
		return err
	}

	app := ui.NewApp(client)
	app.SetVimMode(cfg.VimMode)
	app.SetViewerMaxLines(cfg.ViewerMaxLines)
	app.SetCacheTTL(cfg.CacheTTL())
	app.SetExportDir(opts.exportDir)
	if err := app.SetLocation(link); err != nil {
		return fmt.Errorf("start link %q: %w", link, err)
	}

	logging.Info("starting explorer",
		zap.String("dashboard", client.BaseURL()),
		zap.String("link", link),
		zap.Bool("demo", opts.demo))

	if _, err := tea.NewProgram(app, tea.WithAltScreen(), tea.WithMouseCellMotion()).Run(); err != nil {
		logging.Error("explorer exited", zap.Error(err))
		return err
	}
	return nil
}

// applyFlags overrides config values with the flags the user actually set
func applyFlags(cfg config.Config, flags *pflag.FlagSet, opts *options) config.Config {
	if flags.Changed("dashboard-url") {
		cfg.DashboardURL = strings.TrimRight(strings.TrimSpace(opts.dashboardURL), "/")
	}
	if flags.Changed("log-level") {
		cfg.LogLevel = opts.logLevel
	}
	if flags.Changed("log-file") {
		cfg.LogFile = opts.logFile
	}
	return cfg
}

// startLink builds the first location from --url or --node/--folder/--file
func startLink(opts *options) (string, error) {
	if opts.link != "" {
		if opts.node != "" || opts.folder != "" || opts.file != "" {
			return "", fmt.Errorf("--url cannot be combined with --node, --folder or --file")
		}
		if _, err := nav.ParseLocation(opts.link); err != nil {
			return "", err
		}
		return opts.link, nil
	}

	if opts.node == "" {
		if opts.folder != "" || opts.file != "" {
			return "", fmt.Errorf("--folder and --file need --node")
		}
		return nav.ListingBase, nil
	}

	state := models.NavigationState{
		NodeID:   opts.node,
		Folder:   strings.Trim(opts.folder, "/"),
		FileName: opts.file,
	}
	if opts.file != "" {
		if opts.folder != "" {
			return "", fmt.Errorf("--file takes the full path; drop --folder")
		}
		return nav.ViewerLink(state), nil
	}
	return nav.ListingLink(state), nil
}
