/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

// Command contentstore runs one read operation against the configured storage and
// prints the result as JSON.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/suparena/contentstore"
	"github.com/suparena/contentstore/config"
	"github.com/suparena/contentstore/filter"
	"github.com/suparena/contentstore/logger"
	"github.com/suparena/contentstore/metrics"
	"github.com/suparena/contentstore/storagemodels"
)

var (
	versionFlag = flag.Bool("version", false, "Show version information")
	configPath  = flag.String("config", "", "Path to the YAML configuration")
	collection  = flag.String("collection", "", "Collection slug")
	global      = flag.String("global", "", "Global slug")
	versions    = flag.Bool("versions", false, "Read versions instead of current documents")
	id          = flag.String("id", "", "Return the document or version with this id")
	where       = flag.String("where", "", `Filter as JSON, e.g. {"status":{"equals":"published"}}`)
	sortSpec    = flag.String("sort", "", `Sort fields, "-" prefixed for descending`)
	page        = flag.Int("page", 1, "Page number")
	limit       = flag.Int("limit", 0, "Page size; 0 uses the configured default")
	all         = flag.Bool("all", false, "Disable pagination")
	count       = flag.Bool("count", false, "Print the number of matching documents")
	locale      = flag.String("locale", "", `Locale of localized fields; "all" returns every locale`)
	fallback    = flag.String("fallback-locale", "", "Fallback locale")
	metricsFile = flag.String("metrics-file", "", "Write Prometheus metrics to this file on exit")
	timeout     = flag.Duration("timeout", 30*time.Second, "Timeout of the operation")
)

func main() {
	flag.Parse()

	if *versionFlag {
		b := contentstore.BuildInfo()
		commit := b.Commit
		if commit == "" {
			commit = "unknown"
		}
		if b.Modified {
			commit += " (modified)"
		}
		fmt.Printf("contentstore %s, commit %s, built %s, %s\n", b.Version, commit, b.BuildTime, b.GoVersion)
		os.Exit(0)
	}

	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "contentstore: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	if (*collection == "") == (*global == "") {
		return fmt.Errorf("exactly one of -collection and -global is required")
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}

	log := logger.New(cfg.Logger())

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()
	ctx, cancelTimeout := context.WithTimeout(ctx, *timeout)
	defer cancelTimeout()

	storage, closeStorage, err := openStorage(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeStorage()

	reg, err := cfg.Registry()
	if err != nil {
		return err
	}

	promRegistry := prometheus.NewRegistry()
	r, err := contentstore.New(reg, storage,
		contentstore.WithLogger(log),
		contentstore.WithMetrics(metrics.NewCollector(promRegistry)),
		contentstore.WithDefaultLimit(cfg.Pagination.DefaultLimit),
		contentstore.WithFallbackLocale(cfg.Localization.FallbackLocale),
		contentstore.WithLocales(cfg.Localization.Locales...),
	)
	if err != nil {
		return err
	}

	result, err := execute(ctx, r)
	if err != nil {
		return err
	}

	if *metricsFile != "" {
		if err := prometheus.WriteToTextfile(*metricsFile, promRegistry); err != nil {
			log.Warn("failed to write metrics", "file", *metricsFile, "error", err.Error())
		}
	}

	enc := jsoniter.ConfigCompatibleWithStandardLibrary.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}

func execute(ctx context.Context, r *contentstore.Retriever) (any, error) {
	var w filter.Where
	if *where != "" {
		parsed, err := filter.ParseJSON([]byte(*where))
		if err != nil {
			return nil, err
		}
		w = parsed
	}

	req := contentstore.Request{Locale: *locale, FallbackLocale: *fallback}
	pr := storagemodels.PageRequest{Page: *page, Limit: *limit, DisablePagination: *all}

	if *global != "" {
		switch {
		case *versions && *id != "":
			return r.FindGlobalVersionByID(ctx, contentstore.FindGlobalVersionByIDArgs{Request: req, Global: *global, ID: *id})
		case *versions:
			return r.FindGlobalVersions(ctx, contentstore.FindGlobalVersionsArgs{Request: req, Global: *global, Where: w, Sort: *sortSpec, PageRequest: pr})
		default:
			return r.FindGlobal(ctx, contentstore.FindGlobalArgs{Request: req, Global: *global, Where: w})
		}
	}

	switch {
	case *count:
		n, err := r.Count(ctx, contentstore.CountArgs{Request: req, Collection: *collection, Where: w})
		return map[string]int64{"totalDocs": n}, err
	case *versions && *id != "":
		return r.FindVersionByID(ctx, contentstore.FindByIDArgs{Request: req, Collection: *collection, ID: *id})
	case *versions:
		return r.FindVersions(ctx, contentstore.FindArgs{Request: req, Collection: *collection, Where: w, Sort: *sortSpec, PageRequest: pr})
	case *id != "":
		return r.FindByID(ctx, contentstore.FindByIDArgs{Request: req, Collection: *collection, ID: *id})
	default:
		return r.Find(ctx, contentstore.FindArgs{Request: req, Collection: *collection, Where: w, Sort: *sortSpec, PageRequest: pr})
	}
}
