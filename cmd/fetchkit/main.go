// Command fetchkit downloads every URL listed in a file, one per line,
// enforcing the same size envelope on each and saving the bodies to a
// directory.
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path"
	"path/filepath"
	"slices"
	"strings"
	"syscall"
	"time"

	"github.com/adamwoolhether/fetchkit"
	"github.com/adamwoolhether/fetchkit/client"
	"github.com/adamwoolhether/fetchkit/imageio"
	"github.com/adamwoolhether/fetchkit/logging"
	"github.com/adamwoolhether/fetchkit/misc"
)

type config struct {
	list        string
	outDir      string
	logFile     string
	images      bool
	minBytes    int64
	maxBytes    int64
	concurrency int
	rps         int
	burst       int
	timeout     time.Duration
	verbose     bool
}

func main() {
	var cfg config
	flag.StringVar(&cfg.list, "list", "", "File with one URL per line (required)")
	flag.StringVar(&cfg.outDir, "out", ".", "Directory to write downloads to")
	flag.StringVar(&cfg.logFile, "log", "", "Also write logs to this file")
	flag.BoolVar(&cfg.images, "images", false, "Require an image Content-Type")
	flag.Int64Var(&cfg.minBytes, "min", 0, "Smallest acceptable body size in bytes")
	flag.Int64Var(&cfg.maxBytes, "max", client.DefaultMaxBytes, "Largest acceptable body size in bytes")
	flag.IntVar(&cfg.concurrency, "c", 4, "Concurrent downloads")
	flag.IntVar(&cfg.rps, "rps", 0, "Requests per second, 0 disables throttling")
	flag.IntVar(&cfg.burst, "burst", 1, "Throttle burst size")
	flag.DurationVar(&cfg.timeout, "timeout", 30*time.Second, "Per-request timeout")
	flag.BoolVar(&cfg.verbose, "v", false, "Enable debug logging")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, "fetchkit:", err)
		os.Exit(1)
	}
}

var errSomeFailed = errors.New("some downloads failed")

func run(ctx context.Context, cfg config, stdout io.Writer) error {
	if cfg.list == "" {
		return errors.New("-list is required")
	}

	level := slog.LevelInfo
	if cfg.verbose {
		level = slog.LevelDebug
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	if cfg.logFile != "" {
		fileLogger, closeLog, err := logging.New(logging.Config{Path: cfg.logFile, Level: level, WithConsole: true})
		if err != nil {
			return err
		}
		defer closeLog()
		logger = fileLogger
	}

	urls, err := readURLs(cfg.list)
	if err != nil {
		return err
	}

	lines, err := misc.FileLineCount(cfg.list)
	if err != nil {
		return err
	}
	logger.Info("loaded url list", "path", cfg.list, "lines", lines, "urls", len(urls))

	if err := os.MkdirAll(cfg.outDir, 0o755); err != nil {
		return fmt.Errorf("creating output dir: %w", err)
	}

	clientOpts := []client.Option{client.WithLogger(logger), client.WithTimeout(cfg.timeout)}
	if cfg.rps > 0 {
		clientOpts = append(clientOpts, client.WithThrottle(cfg.rps, cfg.burst))
	}

	c, err := fetchkit.NewClient(clientOpts...)
	if err != nil {
		return fmt.Errorf("building client: %w", err)
	}

	batchOpts := []client.BatchOption{
		client.WithDownloadOptions(client.WithFetchOptions(client.WithBounds(cfg.minBytes, cfg.maxBytes))),
	}
	if cfg.images {
		batchOpts = append(batchOpts, client.WithImagesOnly())
	}

	// A cancelled ctx still yields the results finished so far, which are
	// saved before the error is reported.
	results, batchErr := c.DownloadAll(ctx, urls, cfg.concurrency, batchOpts...)
	if results == nil && batchErr != nil {
		return batchErr
	}

	summaries := make([]string, len(results))
	for i, r := range results {
		summaries[i] = summarize(logger, cfg, r)
	}
	for _, line := range misc.Numbered(summaries) {
		fmt.Fprintln(stdout, line)
	}

	if batchErr != nil {
		return batchErr
	}

	ok := misc.AllOf(slices.Values(results), func(r client.Result) bool { return r.Err == nil })
	if !ok {
		return errSomeFailed
	}

	return nil
}

// summarize saves a successful result and returns a one-line report.
func summarize(logger *slog.Logger, cfg config, r client.Result) string {
	if r.Err != nil {
		return fmt.Sprintf("%s FAILED %v", r.URL, r.Err)
	}

	name := fileName(r)
	dst := filepath.Join(cfg.outDir, name)
	if err := os.WriteFile(dst, r.Data, 0o644); err != nil {
		return fmt.Sprintf("%s FAILED writing %s: %v", r.URL, dst, err)
	}

	line := fmt.Sprintf("%s -> %s (%d bytes)", r.URL, name, len(r.Data))

	if cfg.images {
		img, format, err := imageio.Decode(r.Data)
		if err != nil {
			logger.Warn("undecodable image", "url", r.URL, "error", err)
			return line
		}

		b := img.Bounds()
		line += fmt.Sprintf(" %s %dx%d", format, b.Dx(), b.Dy())
		if imageio.IsGray(img, imageio.DefaultGrayTolerance) {
			line += " gray"
		}
	}

	return line
}

// fileName uses the last URL path segment, prefixed with the content
// digest so that identical names from different hosts do not collide.
func fileName(r client.Result) string {
	base := path.Base(strings.SplitN(r.URL, "?", 2)[0])
	if base == "." || base == "/" || strings.Contains(base, ":") {
		base = "download"
	}

	return fmt.Sprintf("%016x-%s", r.Digest, base)
}

func readURLs(listPath string) ([]string, error) {
	f, err := os.Open(listPath)
	if err != nil {
		return nil, fmt.Errorf("opening url list: %w", err)
	}
	defer f.Close()

	var urls []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		urls = append(urls, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading url list: %w", err)
	}

	return urls, nil
}
