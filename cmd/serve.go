package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"strconv"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/joescharf/prscore/internal/api"
	"github.com/joescharf/prscore/internal/daemon"
	"github.com/joescharf/prscore/internal/jobs"
	webui "github.com/joescharf/prscore/internal/ui"
)

const (
	shutdownTimeout = 15 * time.Second
	stopTimeout     = 10 * time.Second
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the review HTTP service in the foreground",
	Long: `Start the HTTP service that accepts analysis jobs and serves the dashboard.

Endpoints:
  POST /analyze            submit a job, returns {job_id, status}
  GET  /analyze/{job_id}   poll a job
  GET  /analyze            list recent jobs
  GET  /health             liveness

By default it listens on port 8000. Use --port to change it, or
'prscore serve start' to run it in the background.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return serveRun(cmd.Context())
	},
}

var serveStartCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the service in the background",
	RunE: func(cmd *cobra.Command, args []string) error {
		return serveStartRun()
	},
}

var serveStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show whether the background service is running",
	RunE: func(cmd *cobra.Command, args []string) error {
		return serveStatusRun()
	},
}

var serveStopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop the background service",
	RunE: func(cmd *cobra.Command, args []string) error {
		return serveStopRun()
	},
}

func init() {
	serveCmd.AddCommand(serveStartCmd)
	serveCmd.AddCommand(serveStatusCmd)
	serveCmd.AddCommand(serveStopCmd)
	rootCmd.AddCommand(serveCmd)

	serveCmd.PersistentFlags().IntP("port", "p", 8000, "port to listen on")
	serveCmd.PersistentFlags().String("host", "", "interface to bind (default all)")
	_ = viper.BindPFlag("port", serveCmd.PersistentFlags().Lookup("port"))
	_ = viper.BindPFlag("host", serveCmd.PersistentFlags().Lookup("host"))
}

// pidFile returns the PID file tracking the background service.
func pidFile() *daemon.PIDFile {
	return daemon.NewPIDFile(filepath.Join(viper.GetString("state_dir"), "prscore-serve.pid"))
}

// serveLogPath is where the background service writes its output.
func serveLogPath() string {
	return filepath.Join(viper.GetString("state_dir"), "prscore-serve.log")
}

func listenAddr() string {
	return net.JoinHostPort(viper.GetString("host"), strconv.Itoa(viper.GetInt("port")))
}

// newHTTPServer wires store, pipeline, job runner and dashboard into an
// http.Server. The runner is returned so shutdown can drain it.
func newHTTPServer() (*http.Server, *jobs.Runner, error) {
	s, err := getStore()
	if err != nil {
		return nil, nil, err
	}

	analyzer := newAnalyzer()
	runner := jobs.NewRunner(s, analyzer, viper.GetInt("jobs.max_concurrent"))

	dashboard, err := webui.Handler()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize UI handler: %w", err)
	}

	router := api.NewServer(s, runner, analyzer).WithUI(dashboard).Router()
	return &http.Server{
		Addr:              listenAddr(),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}, runner, nil
}

func serveRun(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, shutdownSignals()...)
	defer stop()

	srv, runner, err := newHTTPServer()
	if err != nil {
		return err
	}

	pf := pidFile()
	pid := os.Getpid()
	if err := pf.Acquire(pid); err != nil {
		return fmt.Errorf("server %w", err)
	}
	defer func() { _ = pf.Release(pid) }()

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server listening", "addr", srv.Addr, "store", viper.GetString("store.driver"))
		errCh <- srv.ListenAndServe()
	}()
	ui.Info("Serving at http://localhost:%d", viper.GetInt("port"))

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	slog.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("http shutdown", "error", err)
	}

	drainJobs(shutdownCtx, runner.Wait, dataStore)
	return nil
}

// drainJobs waits for running jobs and then closes the store. When ctx ends
// first the store is left open so in-flight jobs can still record results,
// and false is returned.
func drainJobs(ctx context.Context, wait func(), s io.Closer) bool {
	drained := make(chan struct{})
	go func() {
		wait()
		close(drained)
	}()
	select {
	case <-drained:
	case <-ctx.Done():
		slog.Warn("shutdown timed out with jobs still running; leaving job store open")
		return false
	}

	if s != nil {
		if err := s.Close(); err != nil {
			slog.Error("closing job store", "error", err)
		}
	}
	return true
}

func serveStartRun() error {
	pf := pidFile()
	if pid, running := pf.IsRunning(); running {
		return fmt.Errorf("server already running (PID %d)", pid)
	}

	exe, err := os.Executable()
	if err != nil {
		return fmt.Errorf("locate executable: %w", err)
	}

	args := []string{"serve", "--port", strconv.Itoa(viper.GetInt("port"))}
	if host := viper.GetString("host"); host != "" {
		args = append(args, "--host", host)
	}
	if cfgFile, _ := rootCmd.PersistentFlags().GetString("config"); cfgFile != "" {
		args = append(args, "--config", cfgFile)
	}

	if dryRun {
		ui.DryRunMsg("Would run: %s %v", exe, args)
		return nil
	}

	logPath := serveLogPath()
	if err := os.MkdirAll(filepath.Dir(logPath), 0o755); err != nil {
		return fmt.Errorf("create state directory: %w", err)
	}
	logFile, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer logFile.Close()

	child := exec.Command(exe, args...)
	child.Stdout = logFile
	child.Stderr = logFile
	setDaemonAttrs(child)
	if err := child.Start(); err != nil {
		return fmt.Errorf("start server: %w", err)
	}
	_ = child.Process.Release()

	ui.Success("Server started (PID %d) at http://localhost:%d", child.Process.Pid, viper.GetInt("port"))
	ui.Info("Logs: %s", logPath)
	return nil
}

func serveStatusRun() error {
	pid, running := pidFile().IsRunning()
	if !running {
		ui.Info("Server is not running")
		return nil
	}
	ui.Success("Server running (PID %d) at http://localhost:%d", pid, viper.GetInt("port"))
	return nil
}

func serveStopRun() error {
	pf := pidFile()
	pid, running := pf.IsRunning()
	if !running {
		return fmt.Errorf("server not running")
	}

	if dryRun {
		ui.DryRunMsg("Would stop server (PID %d)", pid)
		return nil
	}

	if err := pf.Signal(sigTERM()); err != nil {
		return fmt.Errorf("signal server: %w", err)
	}
	if !pf.WaitExit(stopTimeout, 100*time.Millisecond) {
		ui.Warning("Server did not exit after %s, killing", stopTimeout)
		if err := pf.Signal(sigKILL()); err != nil {
			return fmt.Errorf("kill server: %w", err)
		}
	}
	_ = pf.Release(pid)

	ui.Success("Server stopped (PID %d)", pid)
	return nil
}
