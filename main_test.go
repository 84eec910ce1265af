package main

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

type mockApp struct {
	opts   AppOptions
	called map[string]bool
	err    error
}

func newMockApp() *mockApp {
	return &mockApp{
		called: make(map[string]bool),
	}
}

func (m *mockApp) ApplyOptions(opts AppOptions) { m.opts = opts }
func (m *mockApp) RunFit() error                { m.called["RunFit"] = true; return m.err }
func (m *mockApp) RunInitConfig() error         { m.called["RunInitConfig"] = true; return m.err }
func (m *mockApp) RunService() error            { m.called["RunService"] = true; return m.err }

func TestRun_Flags(t *testing.T) {
	tests := []struct {
		name           string
		args           []string
		expectedCalled string
		verifyOpts     func(*testing.T, AppOptions)
	}{
		{
			name:           "Fit",
			args:           []string{"--data", "/tmp/xy.csv", "--output-dir", "/tmp/out"},
			expectedCalled: "RunFit",
			verifyOpts: func(t *testing.T, opts AppOptions) {
				if opts.DataFile != "/tmp/xy.csv" {
					t.Errorf("expected DataFile /tmp/xy.csv, got %s", opts.DataFile)
				}
				if opts.OutputDir != "/tmp/out" {
					t.Errorf("expected OutputDir /tmp/out, got %s", opts.OutputDir)
				}
			},
		},
		{
			name:           "FitWithConfigAndFormat",
			args:           []string{"--config", "fit.yaml", "--format", "both"},
			expectedCalled: "RunFit",
			verifyOpts: func(t *testing.T, opts AppOptions) {
				if opts.ConfigFile != "fit.yaml" {
					t.Errorf("expected ConfigFile fit.yaml, got %s", opts.ConfigFile)
				}
				if opts.Format != "both" {
					t.Errorf("expected Format both, got %s", opts.Format)
				}
			},
		},
		{
			name:           "InitConfig",
			args:           []string{"--init-config", "--config", "new.yaml"},
			expectedCalled: "RunInitConfig",
			verifyOpts: func(t *testing.T, opts AppOptions) {
				if !opts.InitConfig {
					t.Error("expected InitConfig true")
				}
				if opts.ConfigFile != "new.yaml" {
					t.Errorf("expected ConfigFile new.yaml, got %s", opts.ConfigFile)
				}
			},
		},
		{
			name:           "MqttMode",
			args:           []string{"--mqtt"},
			expectedCalled: "RunService",
			verifyOpts: func(t *testing.T, opts AppOptions) {
				if !opts.MqttMode {
					t.Error("expected MqttMode true")
				}
				if opts.HttpPort != 8080 {
					t.Errorf("expected default HttpPort 8080, got %d", opts.HttpPort)
				}
			},
		},
		{
			name:           "HttpMode",
			args:           []string{"--http", "--http-port", "9090"},
			expectedCalled: "RunService",
			verifyOpts: func(t *testing.T, opts AppOptions) {
				if !opts.HttpMode {
					t.Error("expected HttpMode true")
				}
				if opts.HttpPort != 9090 {
					t.Errorf("expected HttpPort 9090, got %d", opts.HttpPort)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := newMockApp()
			var out bytes.Buffer
			err := run(tt.args, &out, app)
			if err != nil {
				t.Fatalf("run failed: %v", err)
			}

			if !app.called[tt.expectedCalled] {
				t.Errorf("expected %s to be called", tt.expectedCalled)
			}
			if len(app.called) != 1 {
				t.Errorf("expected exactly one entry point, got %v", app.called)
			}

			if tt.verifyOpts != nil {
				tt.verifyOpts(t, app.opts)
			}
		})
	}
}

func TestRun_Help(t *testing.T) {
	app := newMockApp()
	var out bytes.Buffer
	err := run([]string{"--help"}, &out, app)
	if err == nil {
		t.Error("expected error from --help, got nil")
	}
	if !strings.Contains(out.String(), "Usage of sinefit") {
		t.Errorf("expected usage info in output, got: %s", out.String())
	}
	if len(app.called) != 0 {
		t.Errorf("expected no entry point to run, got %v", app.called)
	}
}

func TestRun_UnknownFlag(t *testing.T) {
	app := newMockApp()
	var out bytes.Buffer
	if err := run([]string{"--reference", "x"}, &out, app); err == nil {
		t.Error("expected error for unknown flag")
	}
}

func TestRun_Default(t *testing.T) {
	app := newMockApp()
	var out bytes.Buffer
	err := run([]string{}, &out, app)
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	expectedPrefix := "sinefit version: " + Version
	if !strings.Contains(out.String(), expectedPrefix) {
		t.Errorf("expected output to contain version, got: %s", out.String())
	}
	if !app.called["RunFit"] {
		t.Error("expected RunFit to be the default entry point")
	}
	if app.opts.ConfigFile != "" || app.opts.DataFile != "" {
		t.Errorf("expected empty paths so config defaults apply, got %+v", app.opts)
	}
}

func TestRun_PropagatesAppError(t *testing.T) {
	app := newMockApp()
	app.err = errors.New("boom")
	var out bytes.Buffer
	if err := run(nil, &out, app); !errors.Is(err, app.err) {
		t.Errorf("expected app error, got %v", err)
	}
}

func TestMain_Execute(t *testing.T) {
	// Smoke test to ensure version is set
	if Version == "" {
		t.Error("expected Version to be set")
	}
}
