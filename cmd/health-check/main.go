// Package main provides a standalone health probe for the MenuPairing API.
// It is meant for container health checks and monitoring scripts.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/alchemorsel/menupairing/internal/infrastructure/config"
	"github.com/alchemorsel/menupairing/internal/infrastructure/http/apiserver"
)

const (
	exitCodeSuccess = 0
	exitCodeFailure = 1
	exitCodeError   = 2
)

// options holds command-line configuration
type options struct {
	URL        string
	ConfigPath string
	Timeout    time.Duration
	Strict     bool
	RetryCount int
	RetryDelay time.Duration
	Verbose    bool
}

func main() {
	opts, err := parseFlags(os.Args[1:])
	if err != nil {
		os.Exit(exitCodeError)
	}
	os.Exit(probe(context.Background(), opts, http.DefaultClient, os.Stdout))
}

// parseFlags parses command-line flags
func parseFlags(args []string) (options, error) {
	var opts options

	fs := flag.NewFlagSet("health-check", flag.ContinueOnError)
	fs.StringVar(&opts.URL, "url", "", "health endpoint URL (default derived from config)")
	fs.StringVar(&opts.ConfigPath, "config", "", "config file used to derive the URL")
	fs.DurationVar(&opts.Timeout, "timeout", 5*time.Second, "request timeout")
	fs.BoolVar(&opts.Strict, "strict", false, "treat a degraded AI backend as a failure")
	fs.IntVar(&opts.RetryCount, "retries", 0, "number of retries on failure")
	fs.DurationVar(&opts.RetryDelay, "retry-delay", time.Second, "delay between retries")
	fs.BoolVar(&opts.Verbose, "verbose", false, "print the health response")

	if err := fs.Parse(args); err != nil {
		return opts, err
	}

	if opts.URL == "" {
		cfg, err := config.Load(opts.ConfigPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
			return opts, err
		}
		opts.URL = fmt.Sprintf("http://127.0.0.1:%d%s", cfg.Server.Port, cfg.Monitoring.HealthCheckPath)
	}

	return opts, nil
}

// probe returns the process exit code for the health of the service at opts.URL
func probe(ctx context.Context, opts options, client *http.Client, out io.Writer) int {
	var (
		resp *apiserver.HealthResponse
		err  error
	)

	for attempt := 0; attempt <= opts.RetryCount; attempt++ {
		if attempt > 0 {
			time.Sleep(opts.RetryDelay)
		}
		resp, err = fetch(ctx, opts, client)
		if err == nil && healthy(resp, opts.Strict) {
			break
		}
	}

	if err != nil {
		fmt.Fprintf(out, "UNHEALTHY: %v\n", err)
		return exitCodeFailure
	}

	if opts.Verbose {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		_ = enc.Encode(resp)
	}

	if !healthy(resp, opts.Strict) {
		fmt.Fprintf(out, "UNHEALTHY: status %s\n", resp.Status)
		return exitCodeFailure
	}

	fmt.Fprintf(out, "OK: %s %s is %s\n", resp.Service, resp.Version, resp.Status)
	return exitCodeSuccess
}

func healthy(resp *apiserver.HealthResponse, strict bool) bool {
	switch resp.Status {
	case "healthy":
		return true
	case "degraded":
		return !strict
	default:
		return false
	}
}

func fetch(ctx context.Context, opts options, client *http.Client) (*apiserver.HealthResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, opts.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, opts.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	res, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code %d", res.StatusCode)
	}

	var health apiserver.HealthResponse
	if err := json.NewDecoder(io.LimitReader(res.Body, 1<<20)).Decode(&health); err != nil {
		return nil, fmt.Errorf("invalid health response: %w", err)
	}
	return &health, nil
}
