package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/tdewolff/canvas"

	"github.com/kwv/sinefit/curve"
)

// defaultConfigFile is where --init-config writes when --config is not given
const defaultConfigFile = "sinefit.yaml"

// App encapsulates the application state and dependencies
type App struct {
	Out        io.Writer
	Config     *curve.Config
	Result     *curve.FitResult
	MQTTClient mqtt.Client
	Publisher  *curve.Publisher

	// CLI Flags (effectively dependencies)
	ConfigFile string
	DataFile   string
	OutputDir  string
	Format     string
	HttpPort   int
	MqttMode   bool
	HttpMode   bool
}

// NewApp creates a new App instance writing user-facing output to stdout
func NewApp() *App {
	return &App{
		Out:      os.Stdout,
		HttpPort: 8080,
	}
}

// ApplyOptions applies CLI options to the App instance
func (a *App) ApplyOptions(opts AppOptions) {
	a.ConfigFile = opts.ConfigFile
	a.DataFile = opts.DataFile
	a.OutputDir = opts.OutputDir
	a.Format = opts.Format
	a.HttpPort = opts.HttpPort
	a.MqttMode = opts.MqttMode
	a.HttpMode = opts.HttpMode
}

// loadConfig resolves the effective configuration: file (or defaults), then
// environment, then command-line overrides.
func (a *App) loadConfig() (*curve.Config, error) {
	cfg := curve.DefaultConfig()
	if a.ConfigFile != "" {
		loaded, err := curve.LoadConfig(a.ConfigFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
		log.Printf("Loaded config from %s", a.ConfigFile)
	}
	cfg.ApplyEnv()

	if a.DataFile != "" {
		cfg.Data.Path = a.DataFile
	}
	if a.OutputDir != "" {
		cfg.Output.Dir = a.OutputDir
	}
	if a.Format != "" {
		cfg.Output.Format = a.Format
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	a.Config = cfg
	return cfg, nil
}

// RunFit loads the observations, runs the two-stage search and writes the
// plots, the text report and the JSON result.
func (a *App) RunFit() error {
	cfg, err := a.loadConfig()
	if err != nil {
		return err
	}

	points, err := curve.LoadPointsCSV(cfg.Data.Path, cfg.Data.XColumn, cfg.Data.YColumn)
	if err != nil {
		return err
	}
	log.Printf("Loaded %d points from %s", len(points), cfg.Data.Path)

	opt := curve.NewOptimizerFromConfig(cfg, curve.WithLogger(log.Default()))
	res, err := opt.Fit(points)
	if err != nil {
		return fmt.Errorf("fitting %s: %w", cfg.Data.Path, err)
	}
	a.Result = &res

	saved, err := a.writeOutputs(cfg, res)
	if err != nil {
		return err
	}

	fmt.Fprintln(a.Out, "Done.")
	fmt.Fprintln(a.Out, curve.ParamsLine(res.Params))
	fmt.Fprintln(a.Out, curve.SavedLine(saved))
	return nil
}

// writeOutputs saves every artifact the config asks for and returns their paths
func (a *App) writeOutputs(cfg *curve.Config, res curve.FitResult) ([]string, error) {
	out := cfg.Output
	var saved []string

	var exts []string
	switch out.Format {
	case curve.FormatRaster:
		exts = []string{".png"}
	case curve.FormatVector:
		exts = []string{".svg"}
	case curve.FormatBoth:
		exts = []string{".png", ".svg"}
	}

	for _, ext := range exts {
		dataPath := filepath.Join(out.Dir, out.Plot+ext)
		if err := newPlotRenderer(res, cfg, curve.ViewData).SaveFile(dataPath); err != nil {
			return saved, err
		}
		saved = append(saved, dataPath)

		residualPath := filepath.Join(out.Dir, out.Plot+"_residuals"+ext)
		if err := newPlotRenderer(res, cfg, curve.ViewModelFrame).SaveFile(residualPath); err != nil {
			return saved, err
		}
		saved = append(saved, residualPath)
	}

	reportPath := filepath.Join(out.Dir, out.Report)
	if err := curve.SaveReport(reportPath, res); err != nil {
		return saved, err
	}
	saved = append(saved, reportPath)

	if out.Result != "" {
		resultPath := filepath.Join(out.Dir, out.Result)
		if err := curve.SaveResult(resultPath, res); err != nil {
			return saved, err
		}
		saved = append(saved, resultPath)
	}

	return saved, nil
}

// newPlotRenderer applies the output settings of cfg to a renderer for view
func newPlotRenderer(res curve.FitResult, cfg *curve.Config, view curve.PlotView) *curve.PlotRenderer {
	r := curve.NewPlotRenderer(res)
	r.View = view
	if cfg != nil {
		r.Resolution = canvas.DPI(cfg.Output.DPI)
		r.CurveSamples = cfg.Output.Samples
	}
	return r
}

// RunInitConfig writes the default configuration as a starting point
func (a *App) RunInitConfig() error {
	path := a.ConfigFile
	if path == "" {
		path = defaultConfigFile
	}
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists: %s", path)
	}

	if err := curve.SaveConfig(path, curve.DefaultConfig()); err != nil {
		return err
	}
	fmt.Fprintf(a.Out, "Wrote default configuration to %s\n", path)
	return nil
}

// RunService fits once, then publishes the result over MQTT and/or serves
// it over HTTP until interrupted.
func (a *App) RunService() error {
	fmt.Fprintln(a.Out, "Starting sinefit service...")

	if err := a.RunFit(); err != nil {
		return err
	}

	if a.MqttMode {
		if err := a.publish(); err != nil {
			return err
		}
	}

	if !a.HttpMode {
		return nil
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return a.serve(ctx)
}

// publish sends the latest result to the broker. A client injected into the
// App is used as is; otherwise one is created from the config and closed
// afterwards.
func (a *App) publish() error {
	if a.Result == nil {
		return fmt.Errorf("no fit result to publish")
	}

	if a.MQTTClient == nil {
		client, err := curve.NewMQTTClient(a.Config.MQTT)
		if err != nil {
			return fmt.Errorf("failed to initialize MQTT: %w", err)
		}
		if client == nil {
			return fmt.Errorf("MQTT broker not configured (set mqtt.broker or MQTT_BROKER)")
		}
		a.MQTTClient = client
		defer func() {
			client.Disconnect(250)
			a.MQTTClient = nil
		}()
	}

	a.Publisher = curve.NewPublisher(a.MQTTClient, a.Config.MQTT.PublishPrefix)
	if err := a.Publisher.PublishResult(*a.Result); err != nil {
		return err
	}

	fmt.Fprintf(a.Out, "Published to: %s and %s\n", a.Publisher.FitTopic(), a.Publisher.ParamsTopic())
	return nil
}

// serve runs the HTTP server until ctx is cancelled
func (a *App) serve(ctx context.Context) error {
	srv := &http.Server{
		Addr:              fmt.Sprintf("0.0.0.0:%d", a.HttpPort),
		Handler:           newHTTPServer(a.Result, a.Config),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("[HTTP] Starting server on %s", srv.Addr)
		errCh <- srv.ListenAndServe()
	}()

	fmt.Fprintf(a.Out, "\nHTTP endpoints (port %d):\n", a.HttpPort)
	fmt.Fprintln(a.Out, "  GET /health         - Health check")
	fmt.Fprintln(a.Out, "  GET /result.json    - Fit result with per-point arrays")
	fmt.Fprintln(a.Out, "  GET /params.txt     - Text report")
	fmt.Fprintln(a.Out, "  GET /plot.png       - Data and fitted curve (raster)")
	fmt.Fprintln(a.Out, "  GET /plot.svg       - Data and fitted curve (vector)")
	fmt.Fprintln(a.Out, "  GET /residuals.png  - Model-frame residual view (raster)")
	fmt.Fprintln(a.Out, "  GET /residuals.svg  - Model-frame residual view (vector)")
	fmt.Fprintln(a.Out, "\nPress Ctrl+C to stop")

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("[HTTP] server error: %w", err)
	case <-ctx.Done():
	}

	fmt.Fprintln(a.Out, "\nShutting down service...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("[HTTP] shutdown: %w", err)
	}
	fmt.Fprintln(a.Out, "Service stopped")
	return nil
}
