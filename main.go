package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/kwv/sinefit/curve"
)

// Version is set at build time via -ldflags
var Version = "dev"

// AppOptions holds the parsed command line
type AppOptions struct {
	ConfigFile string
	DataFile   string
	OutputDir  string
	Format     string
	InitConfig bool
	MqttMode   bool
	HttpMode   bool
	HttpPort   int
}

// Runner is the set of entry points the CLI dispatches to
type Runner interface {
	ApplyOptions(opts AppOptions)
	RunFit() error
	RunInitConfig() error
	RunService() error
}

func main() {
	if err := run(os.Args[1:], os.Stdout, NewApp()); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		log.Fatalf("sinefit: %v", err)
	}
}

func run(args []string, out io.Writer, app Runner) error {
	fs := flag.NewFlagSet("sinefit", flag.ContinueOnError)
	fs.SetOutput(out)

	configFile := fs.String("config", "", "Path to YAML configuration file (defaults are used when empty)")
	dataFile := fs.String("data", "", "CSV file with x,y observations (default "+curve.DefaultDataPath+")")
	outputDir := fs.String("output-dir", "", "Directory for plots, params.txt and fit_result.json (default outputs)")
	format := fs.String("format", "", "Plot format: raster, vector, or both")
	initConfig := fs.Bool("init-config", false, "Write the default configuration to --config (or sinefit.yaml) and exit")
	mqttMode := fs.Bool("mqtt", false, "Publish the fit result to the configured MQTT broker")
	httpMode := fs.Bool("http", false, "Serve the fit result and plots over HTTP after fitting")
	httpPort := fs.Int("http-port", 8080, "HTTP server port (default 8080)")

	if err := fs.Parse(args); err != nil {
		return err
	}

	fmt.Fprintf(out, "sinefit version: %s\n", Version)

	app.ApplyOptions(AppOptions{
		ConfigFile: *configFile,
		DataFile:   *dataFile,
		OutputDir:  *outputDir,
		Format:     *format,
		InitConfig: *initConfig,
		MqttMode:   *mqttMode,
		HttpMode:   *httpMode,
		HttpPort:   *httpPort,
	})

	switch {
	case *initConfig:
		return app.RunInitConfig()
	case *mqttMode || *httpMode:
		return app.RunService()
	default:
		return app.RunFit()
	}
}
