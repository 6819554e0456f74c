// Entry point for the docport HTTP service — chi router, slog JSON
// logging, optional MCP stdio transport.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/hazyhaar/docport/convert"
	"github.com/hazyhaar/docport/encode"
	"github.com/hazyhaar/docport/extractor"
	"github.com/hazyhaar/docport/render"
)

// maxUpload caps source documents at 25 MiB.
const maxUpload int64 = 25 << 20

func main() {
	cfg, err := loadConfig(os.Getenv("DOCPORT_CONFIG"))
	if err != nil {
		slog.Error("config", "error", err)
		os.Exit(1)
	}

	var lvl slog.Level
	switch cfg.LogLevel {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl}))
	slog.SetDefault(logger)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// Content-reconstruction client.
	var ext extractor.Extractor
	switch {
	case cfg.Extractor.Endpoint != "":
		ext = extractor.NewHTTPClient(extractor.HTTPConfig{
			Endpoint: cfg.Extractor.Endpoint,
			Logger:   logger,
		})
	case cfg.Extractor.OpenAIAPIKey != "":
		ext = extractor.NewOpenAIClient(extractor.OpenAIConfig{
			APIKey:  cfg.Extractor.OpenAIAPIKey,
			BaseURL: cfg.Extractor.OpenAIBaseURL,
			Model:   cfg.Extractor.OpenAIModel,
		})
	default:
		slog.Error("EXTRACTOR_URL or OPENAI_API_KEY is required")
		os.Exit(1)
	}

	// Off-screen render surface. Raster targets are disabled if Chrome
	// cannot be reached; text-family targets keep working.
	var renderer convert.Renderer
	browser := render.NewBrowser(render.BrowserConfig{
		RemoteURL: cfg.Browser.RemoteURL,
		Logger:    logger,
	})
	if err := browser.Start(ctx); err != nil {
		slog.Warn("render: browser unavailable, raster targets disabled", "error", err)
	} else {
		defer browser.Close()
		bridge := render.NewBridge(render.Config{Browser: browser, Logger: logger})
		defer bridge.Close()
		renderer = bridge
	}

	newService := func() (*convert.Service, error) {
		return convert.New(convert.Config{
			Extractor: ext,
			Renderer:  renderer,
			Logger:    logger,
		})
	}

	// Optional MCP stdio transport.
	if env("MCP_TRANSPORT", "") == "stdio" {
		svc, err := newService()
		if err != nil {
			slog.Error("convert service", "error", err)
			os.Exit(1)
		}
		mcpSrv := mcp.NewServer(&mcp.Implementation{
			Name:    "docport",
			Version: "1.0.0",
		}, nil)
		svc.RegisterMCP(mcpSrv)

		slog.Info("MCP stdio starting")
		if err := mcpSrv.Run(ctx, &mcp.StdioTransport{}); err != nil && ctx.Err() == nil {
			slog.Error("MCP stdio", "error", err)
			os.Exit(1)
		}
		return
	}

	r := chi.NewRouter()

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, 200, map[string]string{"status": "ok"})
	})

	r.Get("/api/formats", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, 200, map[string]any{"formats": encode.SupportedFormats()})
	})

	r.Get("/api/status", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, 200, map[string]any{
			"status":         "ok",
			"raster_targets": renderer != nil,
			"formats":        encode.SupportedFormats(),
		})
	})

	r.Post("/api/convert", func(w http.ResponseWriter, req *http.Request) {
		target, err := encode.ParseFormat(req.FormValue("target"))
		if err != nil {
			writeError(w, 400, err)
			return
		}

		file, header, err := req.FormFile("file")
		if err != nil {
			writeError(w, 400, fmt.Errorf("missing file upload: %w", err))
			return
		}
		defer file.Close()

		data, err := io.ReadAll(io.LimitReader(file, maxUpload+1))
		if err != nil {
			writeError(w, 400, fmt.Errorf("read upload: %w", err))
			return
		}
		if int64(len(data)) > maxUpload {
			writeError(w, 413, fmt.Errorf("upload exceeds %d bytes", maxUpload))
			return
		}

		svc, err := newService()
		if err != nil {
			writeError(w, 500, err)
			return
		}

		if _, err := svc.SelectSource(header.Filename, header.Header.Get("Content-Type"), data); err != nil {
			writeError(w, 422, err)
			return
		}

		res, err := svc.Convert(req.Context(), target)
		if err != nil {
			switch {
			case errors.Is(err, convert.ErrExtraction):
				writeError(w, 502, err)
			case errors.Is(err, convert.ErrRender), errors.Is(err, convert.ErrEncode):
				writeError(w, 500, err)
			default:
				writeError(w, 500, err)
			}
			return
		}

		w.Header().Set("Content-Type", res.ContentType)
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", res.Filename))
		w.WriteHeader(200)
		w.Write(res.Payload)
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutCtx, shutCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutCancel()
		srv.Shutdown(shutCtx)
	}()

	slog.Info("docport listening", "port", cfg.Port)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("http server", "error", err)
		os.Exit(1)
	}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, err error) {
	writeJSON(w, code, map[string]string{"error": err.Error()})
}
