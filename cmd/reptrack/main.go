// Package main provides the CLI entrypoint for reptrack.
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/verte-zerg/reptrack/internal/backend"
	"github.com/verte-zerg/reptrack/internal/backend/fakebackend"
	"github.com/verte-zerg/reptrack/internal/config"
	"github.com/verte-zerg/reptrack/internal/report"
	"github.com/verte-zerg/reptrack/internal/shell"
	"github.com/verte-zerg/reptrack/internal/store"
	"github.com/verte-zerg/reptrack/internal/theme"
	"github.com/verte-zerg/reptrack/internal/tui"
)

const (
	defaultBackendURL   = "http://localhost:8000"
	defaultTimeout      = "10s"
	defaultFakeAddr     = ":8000"
	defaultFakeInterval = 100 * time.Millisecond
)

var (
	backendURL     string
	backendTimeout string
	logFile        string

	fakeAddr     string
	fakeInterval time.Duration
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "reptrack",
		Short:         "Terminal client for the AI push-up tracker",
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE:          runTrackerCmd,
	}

	rootCmd.PersistentFlags().StringVar(&backendURL, "backend", defaultBackendURL, "tracking backend base URL")
	rootCmd.PersistentFlags().StringVar(&backendTimeout, "timeout", defaultTimeout, "backend request timeout")
	rootCmd.Flags().StringVar(&logFile, "log-file", "", "diagnostic log file (default: XDG state dir)")

	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newStatusCmd())
	rootCmd.AddCommand(newThemeCmd())
	rootCmd.AddCommand(newFakeBackendCmd())

	return rootCmd
}

type settings struct {
	backendURL string
	timeout    time.Duration
	logFile    string
}

// resolveSettings merges the config file under the flags that were not set.
func resolveSettings(cmd *cobra.Command) (settings, error) {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return settings{}, fmt.Errorf("failed to load config: %w", err)
	}
	applyStringConfig(cmd, "backend", &backendURL, fileCfg.Backend.URL)
	applyStringConfig(cmd, "timeout", &backendTimeout, fileCfg.Backend.Timeout)
	applyStringConfig(cmd, "log-file", &logFile, fileCfg.Log.File)

	timeout, err := config.ParseTimeout(backendTimeout)
	if err != nil {
		return settings{}, fmt.Errorf("invalid --timeout value: %w", err)
	}
	path := logFile
	if path == "" {
		path = config.DefaultLogPath()
	}
	return settings{backendURL: strings.TrimSpace(backendURL), timeout: timeout, logFile: path}, nil
}

func newClient(s settings) (*backend.Client, error) {
	client, err := backend.NewClient(backend.Config{BaseURL: s.backendURL, Timeout: s.timeout})
	if err != nil {
		return nil, fmt.Errorf("invalid backend: %w", err)
	}
	return client, nil
}

func openStore() (*store.Store, func(), error) {
	st, err := store.Open(config.DefaultDBPath())
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open db: %w", err)
	}
	closeFn := func() {
		if cerr := st.Close(); cerr != nil {
			logErrf("failed to close db: %v\n", cerr)
		}
	}
	return st, closeFn, nil
}

func runTrackerCmd(cmd *cobra.Command, _ []string) error {
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return errors.New("reptrack needs an interactive terminal; use `reptrack status` for plain output")
	}
	s, err := resolveSettings(cmd)
	if err != nil {
		return err
	}
	client, err := newClient(s)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(s.logFile), 0o755); err != nil {
		return fmt.Errorf("failed to create log directory: %w", err)
	}
	logOut, err := tea.LogToFile(s.logFile, "reptrack")
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer func() {
		_ = logOut.Close()
	}()
	logger := log.Default()
	logger.Printf("session %s against %s", client.SessionID(), client.BaseURL())

	st, closeStore, err := openStore()
	if err != nil {
		return err
	}
	defer closeStore()

	styles := tui.NewStyles()
	themes := theme.NewStore(st, styles)
	if _, err := themes.Load(cmd.Context()); err != nil {
		logger.Printf("%v", err)
	}

	sh := shell.New(client, logger)
	defer sh.Close()

	model := tui.NewModel(tui.Options{
		Shell:   sh,
		Themes:  themes,
		Styles:  styles,
		FeedURL: client.VideoFeedURL(),
		Open:    openURL,
		Logger:  logger,
	})
	program := tea.NewProgram(model, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}
	return nil
}

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Create/open config file",
		Args:  cobra.NoArgs,
		RunE:  runConfigCmd,
	}
}

func runConfigCmd(_ *cobra.Command, _ []string) error {
	path := config.DefaultConfigPath()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if _, err := os.Stat(path); err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to stat config: %w", err)
		}
		if err := os.WriteFile(path, []byte(defaultConfigTemplate()), 0o644); err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}
	}

	editor := strings.TrimSpace(os.Getenv("EDITOR"))
	if editor == "" {
		editor = "vi"
	}
	parts := strings.Fields(editor)
	if len(parts) == 0 {
		return fmt.Errorf("editor command is empty")
	}
	cmd := exec.Command(parts[0], append(parts[1:], path)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to open editor: %w", err)
	}
	return nil
}

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show backend health and current stats",
		Args:  cobra.NoArgs,
		RunE:  runStatusCmd,
	}
}

func runStatusCmd(cmd *cobra.Command, _ []string) error {
	s, err := resolveSettings(cmd)
	if err != nil {
		return err
	}
	client, err := newClient(s)
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	status := report.Status{BackendURL: client.BaseURL(), SessionID: client.SessionID()}
	health, err := client.Health(ctx)
	if err != nil {
		status.HealthErr = err
	} else {
		status.HealthStatus = health.Status
		status.HealthMessage = health.Message
	}
	status.Stats, status.StatsErr = client.Stats(ctx)

	out := cmd.OutOrStdout()
	if err := report.RenderStatus(out, status, report.ShouldUseColor(out)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	if status.HealthErr != nil {
		return fmt.Errorf("backend unreachable at %s", client.BaseURL())
	}
	return nil
}

func newThemeCmd() *cobra.Command {
	themeCmd := &cobra.Command{
		Use:   "theme",
		Short: "Show or change the color scheme",
		Args:  cobra.NoArgs,
		RunE:  runThemeListCmd,
	}
	themeCmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List color schemes",
		Args:  cobra.NoArgs,
		RunE:  runThemeListCmd,
	})
	themeCmd.AddCommand(&cobra.Command{
		Use:   "next",
		Short: "Switch to the next color scheme",
		Args:  cobra.NoArgs,
		RunE:  runThemeNextCmd,
	})
	themeCmd.AddCommand(&cobra.Command{
		Use:       "set NAME",
		Short:     "Set the color scheme",
		Args:      cobra.ExactArgs(1),
		ValidArgs: schemeNames(),
		RunE:      runThemeSetCmd,
	})
	return themeCmd
}

func loadThemes(ctx context.Context) (*theme.Store, func(), error) {
	st, closeStore, err := openStore()
	if err != nil {
		return nil, nil, err
	}
	themes := theme.NewStore(st, nil)
	if _, err := themes.Load(ctx); err != nil {
		logErrf("%v\n", err)
	}
	return themes, closeStore, nil
}

func runThemeListCmd(cmd *cobra.Command, _ []string) error {
	themes, closeStore, err := loadThemes(cmd.Context())
	if err != nil {
		return err
	}
	defer closeStore()
	if err := report.RenderSchemes(cmd.OutOrStdout(), themes.Current()); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func runThemeNextCmd(cmd *cobra.Command, _ []string) error {
	themes, closeStore, err := loadThemes(cmd.Context())
	if err != nil {
		return err
	}
	defer closeStore()
	scheme, err := themes.Cycle(cmd.Context())
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", scheme, theme.PaletteFor(scheme).Label); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func runThemeSetCmd(cmd *cobra.Command, args []string) error {
	scheme, err := theme.ParseScheme(args[0])
	if err != nil {
		return fmt.Errorf("%w (available: %s)", err, strings.Join(schemeNames(), ", "))
	}
	themes, closeStore, err := loadThemes(cmd.Context())
	if err != nil {
		return err
	}
	defer closeStore()
	return themes.Set(cmd.Context(), scheme)
}

func schemeNames() []string {
	names := make([]string, 0, len(theme.Order))
	for _, s := range theme.Order {
		names = append(names, string(s))
	}
	return names
}

func newFakeBackendCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:    "fake-backend",
		Short:  "Serve a simulated tracking backend",
		Hidden: true,
		Args:   cobra.NoArgs,
		RunE:   runFakeBackendCmd,
	}
	cmd.Flags().StringVar(&fakeAddr, "addr", defaultFakeAddr, "listen address")
	cmd.Flags().DurationVar(&fakeInterval, "interval", defaultFakeInterval, "live stats push interval")
	return cmd
}

func runFakeBackendCmd(cmd *cobra.Command, _ []string) error {
	if fakeInterval <= 0 {
		return fmt.Errorf("--interval must be > 0")
	}
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	fake := fakebackend.New(fakebackend.Options{Interval: fakeInterval, Simulate: true})
	srv := &http.Server{
		Addr:              fakeAddr,
		Handler:           fake.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go fake.Run(ctx.Done())

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()
	logErrf("fake backend listening on %s\n", fakeAddr)

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("fake backend failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to stop fake backend: %w", err)
	}
	return nil
}

// openURL hands url to the platform viewer without waiting for it.
func openURL(url string) error {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	default:
		cmd = exec.Command("xdg-open", url)
	}
	if err := cmd.Start(); err != nil {
		return err
	}
	go func() {
		_ = cmd.Wait()
	}()
	return nil
}

func applyStringConfig(cmd *cobra.Command, name string, target, value *string) {
	if value == nil {
		return
	}
	if flag := cmd.Flags().Lookup(name); flag == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func defaultConfigTemplate() string {
	return fmt.Sprintf(`# reptrack configuration
# Uncomment a value to enable it. CLI flags override config values.

[backend]
# url = %q    # Tracking backend base URL
# timeout = %q            # Request timeout; 0 uses the default

[log]
# file = %q   # Diagnostic log file
`,
		defaultBackendURL,
		defaultTimeout,
		config.DefaultLogPath(),
	)
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}
