package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/ZaguanLabs/ghostreader"
	"github.com/ZaguanLabs/ghostreader/cache"
	"github.com/ZaguanLabs/ghostreader/client"
	"github.com/ZaguanLabs/ghostreader/fallback"
	"github.com/ZaguanLabs/ghostreader/scanner"
)

// runLookup translates the keys given as arguments.
func runLookup(args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("ghostreader lookup", flag.ContinueOnError)
	fs.SetOutput(stderr)

	locale := fs.String("locale", "", "Locale to translate into (default: --default-locale)")
	scope := fs.String("scope", "", "Dot-separated scope prepended to every key")
	defaultText := fs.String("default", "", "Text to use when no source knows a key")
	jsonOutput := fs.Bool("json", false, "Output result as JSON")

	s, err := parseSettings(fs, args)
	if err != nil {
		return err
	}
	if fs.NArg() == 0 {
		fs.Usage()
		return fmt.Errorf("at least one key is required")
	}
	if *locale == "" {
		*locale = s.DefaultLocale
	}

	logger, closeLog, err := newLogger(s, stderr)
	if err != nil {
		return err
	}
	defer closeLog()

	backend, cleanup, err := buildBackend(s, logger)
	if err != nil {
		return err
	}
	defer cleanup()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	backend.Start(ctx)
	waitReady(ctx, backend, s.ReadyTimeout, logger)

	opts := &ghostreader.Options{Default: *defaultText}
	if *scope != "" {
		opts.Scope = strings.Split(*scope, ".")
	}

	keys := fs.Args()
	results := make(map[string]string, len(keys))
	var missing []string
	for _, key := range keys {
		value, err := backend.Translate(ctx, *locale, key, opts)
		if err != nil {
			logger.Warn("lookup failed", "locale", *locale, "key", key, "error", err)
			missing = append(missing, key)
			continue
		}
		results[key] = value
	}

	// Reports the fallback hits of this run.
	if err := backend.Close(); err != nil {
		logger.Warn("final report failed", "error", err)
	}

	if *jsonOutput {
		out := struct {
			Locale       string            `json:"locale"`
			Translations map[string]string `json:"translations"`
			Missing      []string          `json:"missing,omitempty"`
		}{Locale: *locale, Translations: results, Missing: missing}

		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(out); err != nil {
			return err
		}
	} else {
		for _, key := range keys {
			if value, ok := results[key]; ok {
				fmt.Fprintf(stdout, "%s\t%s\n", key, value)
			}
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("%d of %d keys missing: %s", len(missing), len(keys), strings.Join(missing, ", "))
	}
	return nil
}

// runScan lists the keys referenced under a directory and optionally checks
// that each one resolves.
func runScan(args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("ghostreader scan", flag.ContinueOnError)
	fs.SetOutput(stderr)

	check := fs.Bool("check", false, "Look up every key and report the ones that do not resolve")
	locale := fs.String("locale", "", "Locale for --check (default: --default-locale)")
	jsonOutput := fs.Bool("json", false, "Output result as JSON")

	s, err := parseSettings(fs, args)
	if err != nil {
		return err
	}
	if *locale == "" {
		*locale = s.DefaultLocale
	}

	dir := "."
	if fs.NArg() > 0 {
		dir = fs.Arg(0)
	}

	keys, err := scanner.ScanDir(dir)
	if err != nil {
		return fmt.Errorf("scanning %s: %w", dir, err)
	}
	names := scanner.Unique(keys)

	if !*check {
		if *jsonOutput {
			enc := json.NewEncoder(stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(keys)
		}

		fmt.Fprintf(stdout, "Found %d keys in %s:\n\n", len(names), dir)
		first := make(map[string]scanner.Key, len(names))
		for _, k := range keys {
			if _, ok := first[k.Key]; !ok {
				first[k.Key] = k
			}
		}
		for _, name := range names {
			k := first[name]
			if k.Line > 0 {
				fmt.Fprintf(stdout, "  %s  (%s:%d)\n", name, k.File, k.Line)
			} else {
				fmt.Fprintf(stdout, "  %s  (%s)\n", name, k.File)
			}
		}
		return nil
	}

	logger, closeLog, err := newLogger(s, stderr)
	if err != nil {
		return err
	}
	defer closeLog()

	backend, cleanup, err := buildBackend(s, logger)
	if err != nil {
		return err
	}
	defer cleanup()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	backend.Start(ctx)
	waitReady(ctx, backend, s.ReadyTimeout, logger)

	values, lookupErr := backend.TranslateAll(ctx, *locale, names)
	if lookupErr != nil {
		logger.Debug("some keys did not resolve", "error", lookupErr)
	}
	if err := backend.Close(); err != nil {
		logger.Warn("final report failed", "error", err)
	}

	var missing []string
	for _, name := range names {
		if _, ok := values[name]; !ok {
			missing = append(missing, name)
		}
	}

	if *jsonOutput {
		out := struct {
			Locale  string   `json:"locale"`
			Keys    int      `json:"keys"`
			Missing []string `json:"missing"`
		}{Locale: *locale, Keys: len(names), Missing: missing}

		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(out); err != nil {
			return err
		}
	} else {
		fmt.Fprintf(stdout, "Checked %d keys for %s: %d missing\n", len(names), *locale, len(missing))
		for _, name := range missing {
			fmt.Fprintf(stdout, "  - %s\n", name)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("%d keys missing for %s", len(missing), *locale)
	}
	return nil
}

// runExport fetches the full translation set and writes it as a JSON export.
func runExport(args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("ghostreader export", flag.ContinueOnError)
	fs.SetOutput(stderr)

	output := fs.String("output", "", "Output file (default: stdout)")
	outputShort := fs.String("o", "", "Output file (short for --output)")

	s, err := parseSettings(fs, args)
	if err != nil {
		return err
	}
	if *outputShort != "" && *output == "" {
		*output = *outputShort
	}

	logger, closeLog, err := newLogger(s, stderr)
	if err != nil {
		return err
	}
	defer closeLog()

	remote, err := newRemoteClient(s)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	resp, err := remote.InitialFetch(ctx)
	if err != nil {
		return fmt.Errorf("fetching translations: %w", err)
	}
	if resp.Status != 0 && !resp.OK() {
		return fmt.Errorf("fetching translations: service answered %d", resp.Status)
	}

	mem := cache.NewMemoized()
	mem.Seed(ghostreader.FlattenLocales(resp.Data))

	metadata := map[string]string{
		"source":    s.ServiceURL,
		"generator": ghostreader.UserAgent(),
	}
	exporter := cache.NewExporter(mem)
	if *output == "" {
		err = exporter.Export(stdout, metadata)
	} else {
		err = exporter.ExportToFile(*output, metadata)
	}
	if err != nil {
		return fmt.Errorf("writing export: %w", err)
	}

	logger.Info("export written", "entries", mem.Len(), "locales", len(mem.Locales()))
	return nil
}

// runImport loads a JSON export into the Redis snapshot store.
func runImport(args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("ghostreader import", flag.ContinueOnError)
	fs.SetOutput(stderr)

	s, err := parseSettings(fs, args)
	if err != nil {
		return err
	}
	if fs.NArg() != 1 {
		fs.Usage()
		return fmt.Errorf("exactly one export file is required")
	}
	if s.RedisURL == "" {
		return fmt.Errorf("--redis-url is required")
	}

	mem := cache.NewMemoized()
	result, err := cache.NewImporter(mem).ImportFromFile(fs.Arg(0))
	if err != nil {
		return fmt.Errorf("reading export: %w", err)
	}

	store, err := cache.NewRedisStore(cache.RedisConfig{URL: s.RedisURL})
	if err != nil {
		return err
	}
	defer store.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := store.Save(ctx, mem.Snapshot()); err != nil {
		return err
	}

	fmt.Fprintf(stdout, "Imported %d entries in %d locales\n", result.Imported, result.Locales)
	return nil
}

func newRemoteClient(s settings) (ghostreader.Client, error) {
	if s.ServiceURL == "" {
		return nil, fmt.Errorf("service URL required (--service-url or GHOSTREADER_SERVICE_URL)")
	}

	httpClient := client.NewHTTPClient(client.HTTPConfig{
		BaseURL: s.ServiceURL,
		APIKey:  s.APIKey,
	})
	return ghostreader.NewRetryableClient(httpClient, ghostreader.DefaultRetryConfig()), nil
}

// buildBackend wires the remote client, the fallback sources and the optional
// snapshot store. The returned cleanup releases the store.
func buildBackend(s settings, logger *slog.Logger) (*ghostreader.Backend, func(), error) {
	remote, err := newRemoteClient(s)
	if err != nil {
		return nil, nil, err
	}

	bundle, err := fallback.NewBundle(s.DefaultLocale)
	if err != nil {
		return nil, nil, err
	}
	if s.MessagesDir != "" {
		if err := bundle.LoadDir(s.MessagesDir); err != nil {
			return nil, nil, err
		}
	}

	var fb ghostreader.Fallback = bundle
	if s.OpenAIKey != "" {
		bundle.SetStrict(true)
		machine := fallback.NewMachineTranslator(bundle, fallback.MachineConfig{
			APIKey:       s.OpenAIKey,
			Model:        s.OpenAIModel,
			BaseURL:      s.OpenAIBaseURL,
			SourceLocale: s.DefaultLocale,
		})
		limited := ghostreader.NewRateLimitedFallback(machine, ghostreader.RateLimitConfig{
			RequestsPerMinute: s.MachineRPM,
		})
		fb = fallback.NewChain(bundle, limited)
	}

	opts := []ghostreader.Option{
		ghostreader.WithRetrievalInterval(s.RetrievalInterval),
		ghostreader.WithReportInterval(s.ReportInterval),
		ghostreader.WithLogger(logger),
	}

	cleanup := func() {}
	if s.RedisURL != "" {
		store, err := cache.NewRedisStore(cache.RedisConfig{URL: s.RedisURL})
		if err != nil {
			return nil, nil, err
		}
		opts = append(opts, ghostreader.WithSnapshotStore(store))
		cleanup = func() { _ = store.Close() }
	}

	backend, err := ghostreader.New(remote, fb, opts...)
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	return backend, cleanup, nil
}

// waitReady waits for the initial fetch. Lookups still work without it, they
// are just served by the fallback.
func waitReady(ctx context.Context, backend *ghostreader.Backend, timeout time.Duration, logger *slog.Logger) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if err := backend.WaitReady(ctx); err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			logger.Warn("translation service not ready, serving from fallback", "timeout", timeout)
			return
		}
		logger.Warn("waiting for translation service", "error", err)
	}
}
