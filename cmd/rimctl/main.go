// rimctl replays a JSON-lines operation log against a fresh enforcement
// instance and prints the resulting reciprocity-integrity report. It has no
// network surface; the engine is exercised purely in-process.
package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"

	_ "github.com/lib/pq"

	"reciprocity/internal/anchor"
	"reciprocity/internal/enforcer"
	"reciprocity/internal/platform/config"
	"reciprocity/internal/platform/logger"
	"reciprocity/internal/platform/metrics"
)

// main wires high-level dependencies and keeps the run lifecycle small.
// Replay logic lives in replay.go; business logic in internal packages.
func main() {
	opsPath := flag.String("ops", "-", "operation log path, or - for stdin")
	flag.Parse()

	cfg := config.FromEnv()
	log := logger.New(logger.ParseLevel(cfg.LogLevel))

	ctx := context.Background()

	opts := enforcer.Options{Logger: log, Metrics: metrics.New()}
	if cfg.AnchorMirrorDSN != "" {
		db, err := sql.Open("postgres", cfg.AnchorMirrorDSN)
		if err != nil {
			log.Error("open anchor mirror", "error", err.Error())
			os.Exit(1)
		}
		defer db.Close()
		mirror := anchor.NewPostgres(db)
		if err := mirror.EnsureSchema(ctx); err != nil {
			log.Error("prepare anchor mirror", "error", err.Error())
			os.Exit(1)
		}
		opts.AnchorMirror = mirror
	}

	var in io.Reader = os.Stdin
	if *opsPath != "-" {
		f, err := os.Open(*opsPath)
		if err != nil {
			log.Error("open operation log", "path", *opsPath, "error", err.Error())
			os.Exit(1)
		}
		defer f.Close()
		in = f
	}

	eng := enforcer.New(opts)
	if err := Replay(ctx, eng, in, log); err != nil {
		log.Error("replay failed", "error", err.Error())
		os.Exit(1)
	}

	report, err := eng.Audit(ctx)
	if err != nil {
		log.Error("audit failed", "error", err.Error())
		os.Exit(1)
	}

	enc := json.NewEncoder(os.Stdout)
	if cfg.PrettyReport {
		enc.SetIndent("", "  ")
	}
	if err := enc.Encode(report); err != nil {
		fmt.Fprintf(os.Stderr, "encode report: %v\n", err)
		os.Exit(1)
	}
}
