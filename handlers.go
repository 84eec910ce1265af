package main

import (
	"bytes"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/kwv/sinefit/curve"
)

// newHTTPServer creates an HTTP server with all endpoints. result may be nil
// before the first fit has finished; data endpoints answer 503 until then.
func newHTTPServer(result *curve.FitResult, config *curve.Config) http.Handler {
	mux := http.NewServeMux()

	// Health check endpoint
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		log.Printf("[HTTP] /health request from %s", r.RemoteAddr)
		w.Header().Set("Content-Type", "application/json")
		status := struct {
			Status    string    `json:"status"`
			Timestamp time.Time `json:"timestamp"`
			HasResult bool      `json:"hasResult"`
		}{
			Status:    "ok",
			Timestamp: time.Now(),
			HasResult: result != nil,
		}
		if err := json.NewEncoder(w).Encode(status); err != nil {
			log.Printf("Error encoding health status: %v", err)
		}
	})

	mux.HandleFunc("/result.json", func(w http.ResponseWriter, r *http.Request) {
		if result == nil {
			http.Error(w, "No fit result available", http.StatusServiceUnavailable)
			return
		}
		rf := curve.NewResultFile(*result)
		rf.LastUpdated = time.Now().Unix()
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Cache-Control", "no-cache")
		if err := json.NewEncoder(w).Encode(rf); err != nil {
			log.Printf("Error encoding fit result: %v", err)
		}
	})

	mux.HandleFunc("/params.txt", func(w http.ResponseWriter, r *http.Request) {
		if result == nil {
			http.Error(w, "No fit result available", http.StatusServiceUnavailable)
			return
		}
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.Header().Set("Cache-Control", "no-cache")
		if err := curve.WriteReport(w, *result); err != nil {
			log.Printf("Error writing report: %v", err)
		}
	})

	mux.HandleFunc("/plot.png", plotHandler(result, config, curve.ViewData, "image/png"))
	mux.HandleFunc("/plot.svg", plotHandler(result, config, curve.ViewData, "image/svg+xml"))
	mux.HandleFunc("/residuals.png", plotHandler(result, config, curve.ViewModelFrame, "image/png"))
	mux.HandleFunc("/residuals.svg", plotHandler(result, config, curve.ViewModelFrame, "image/svg+xml"))

	return mux
}

// plotHandler renders the requested view into memory first so a failed
// render can still answer with a proper error status.
func plotHandler(result *curve.FitResult, config *curve.Config, view curve.PlotView, contentType string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if result == nil {
			http.Error(w, "No fit result available", http.StatusServiceUnavailable)
			return
		}

		renderer := newPlotRenderer(*result, config, view)
		render := renderer.RenderToPNG
		if contentType == "image/svg+xml" {
			render = renderer.RenderToSVG
		}

		var buf bytes.Buffer
		if err := render(&buf); err != nil {
			log.Printf("Error rendering %s plot for %s: %v", view, r.URL.Path, err)
			http.Error(w, "Failed to render plot", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", contentType)
		w.Header().Set("Cache-Control", "no-cache")
		if _, err := io.Copy(w, &buf); err != nil {
			log.Printf("Error writing %s: %v", r.URL.Path, err)
		}
	}
}
