// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/poiesic/docit"
	"github.com/poiesic/docit/config"
	"github.com/poiesic/docit/httpapi"
)

func main() {
	app := &cli.App{
		Name:  "docit",
		Usage: "Document ingestion and retrieval-augmented question answering",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Run the HTTP API server",
				Action: serveCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "port",
						Usage: "HTTP listen port (overrides HTTP_PORT)",
					},
				},
			},
			{
				Name:   "ingest",
				Usage:  "Scan the data directories and rebuild the index",
				Action: ingestCommand,
			},
			{
				Name:      "query",
				Usage:     "Ask a question over the ingested documents",
				ArgsUsage: "<question>",
				Action:    queryCommand,
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:    "top-k",
						Aliases: []string{"k"},
						Usage:   "Number of chunks to retrieve (0 uses the configured default)",
					},
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func newApp() (*docit.App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	return docit.New(cfg)
}

func serveCommand(c *cli.Context) error {
	app, err := newApp()
	if err != nil {
		return err
	}
	defer app.Close()

	port := c.String("port")
	if port == "" {
		port = app.Config().HTTPPort
	}

	server := httpapi.NewServer(app.Pipeline(), app.Answerer(), app.Store(), httpapi.UploadDirs{
		PDF:   app.Config().PDFDir(),
		Image: app.Config().ImageDir(),
		Audio: app.Config().AudioDir(),
	})

	httpServer := &http.Server{
		Addr:    ":" + port,
		Handler: server.Router(),
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		slog.Info("listening", "addr", httpServer.Addr)
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
	case <-ctx.Done():
		slog.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return err
		}
	}
	return nil
}

func ingestCommand(c *cli.Context) error {
	app, err := newApp()
	if err != nil {
		return err
	}
	defer app.Close()

	stats, err := app.Ingest(c.Context)
	if err != nil {
		return err
	}

	fmt.Printf("ingested %d pdf, %d image, %d audio files into %d chunks\n",
		stats.PDF, stats.Image, stats.Audio, stats.Chunks)
	for _, skipped := range stats.Skipped {
		fmt.Printf("skipped %s: %s\n", skipped.Path, skipped.Reason)
	}
	return nil
}

func queryCommand(c *cli.Context) error {
	question := strings.TrimSpace(strings.Join(c.Args().Slice(), " "))
	if question == "" {
		return fmt.Errorf("usage: docit query <question>")
	}

	app, err := newApp()
	if err != nil {
		return err
	}
	defer app.Close()

	answer, err := app.Ask(c.Context, question, c.Int("top-k"))
	if err != nil {
		return err
	}

	fmt.Println(answer.Text)
	if len(answer.Sources) > 0 {
		fmt.Println("\nSources:")
		for _, src := range answer.Sources {
			if src.Page > 0 {
				fmt.Printf("  - %s (page %d)\n", src.Name, src.Page)
			} else {
				fmt.Printf("  - %s\n", src.Name)
			}
		}
	}
	return nil
}

func setupLogger(c *cli.Context) error {
	levelStr := strings.ToLower(c.String("log-level"))

	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", levelStr)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}
