// Command loadgen drives claim/purchase traffic against a running
// flagnode and reports latency and error statistics. Each worker owns a
// disjoint range of flag ids so pairs never contend on the same flag.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"sort"
	"strings"
	"sync"
	"syscall"
	"time"
)

const (
	defaultBaseURL = "http://localhost:8080"
	defaultPrice   = "10000000000000000"
)

type Config struct {
	BaseURL     string
	APIKey      string
	Pairs       int // Number of flag pairs to register and complete
	Concurrency int // Number of concurrent workers
	StartID     int // First flag id to use
	Timeout     time.Duration
	Debug       bool
}

type opResult struct {
	op       string
	duration time.Duration
	err      error
}

type opStats struct {
	count     int
	failed    int
	durations []time.Duration
}

func main() {
	cfg := parseFlags()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		fmt.Println("\n\nReceived interrupt signal, shutting down...")
		cancel()
	}()

	client := newClient(cfg)

	if err := client.healthCheck(ctx); err != nil {
		fmt.Printf("Error: node unreachable at %s: %v\n", cfg.BaseURL, err)
		os.Exit(1)
	}
	fmt.Printf("Connected to flagnode at %s\n", cfg.BaseURL)
	fmt.Printf("Running %d pairs with %d workers starting at flag id %d\n\n",
		cfg.Pairs, cfg.Concurrency, cfg.StartID)

	start := time.Now()
	results := make(chan opResult, cfg.Pairs*4)
	ids := make(chan int, cfg.Pairs)
	for i := 0; i < cfg.Pairs; i++ {
		ids <- cfg.StartID + i
	}
	close(ids)

	var wg sync.WaitGroup
	for w := 0; w < cfg.Concurrency; w++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			for id := range ids {
				select {
				case <-ctx.Done():
					return
				default:
				}
				client.runPair(ctx, worker, id, results)
			}
		}(w)
	}
	wg.Wait()
	close(results)

	elapsed := time.Since(start)
	printReport(collectStats(results), elapsed)
}

func parseFlags() *Config {
	cfg := &Config{}

	flag.StringVar(&cfg.BaseURL, "base-url", defaultBaseURL, "Base URL of the flagnode API")
	flag.StringVar(&cfg.APIKey, "api-key", "", "API key for admin endpoints")
	flag.IntVar(&cfg.Pairs, "pairs", 100, "Number of flag pairs to register and complete")
	flag.IntVar(&cfg.Concurrency, "concurrency", 5, "Number of concurrent workers")
	flag.IntVar(&cfg.StartID, "start-id", 1_000_000, "First flag id to use")
	flag.BoolVar(&cfg.Debug, "debug", false, "Enable debug logging")

	var timeoutSeconds int
	flag.IntVar(&timeoutSeconds, "timeout", 30, "Per-request timeout in seconds")

	configFile := flag.String("config", "", "Path to config file (optional)")

	flag.Parse()

	cfg.Timeout = time.Duration(timeoutSeconds) * time.Second

	if cfg.Pairs <= 0 {
		cfg.Pairs = 100
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 5
	}
	if cfg.Concurrency > 32 {
		cfg.Concurrency = 32
	}

	if *configFile != "" {
		fileCfg, err := LoadConfig(*configFile)
		if err != nil {
			fmt.Printf("Warning: failed to load config file: %v\n", err)
		} else {
			if cfg.BaseURL == defaultBaseURL && fileCfg.BaseURL != "" {
				cfg.BaseURL = fileCfg.BaseURL
			}
			if cfg.APIKey == "" && fileCfg.APIKey != "" {
				cfg.APIKey = fileCfg.APIKey
			}
		}
	}

	return cfg
}

type nodeClient struct {
	cfg  *Config
	http *http.Client
}

func newClient(cfg *Config) *nodeClient {
	return &nodeClient{
		cfg:  cfg,
		http: &http.Client{Timeout: cfg.Timeout},
	}
}

func (c *nodeClient) healthCheck(ctx context.Context) error {
	_, err := c.do(ctx, http.MethodGet, "/health", nil, false)
	return err
}

// runPair registers one flag and walks it through the full claim and
// purchase lifecycle, timing every step
func (c *nodeClient) runPair(ctx context.Context, worker, id int, results chan<- opResult) {
	flagID := fmt.Sprintf("%d", id)
	claimer := syntheticAddress(worker, id, 0)
	buyer := syntheticAddress(worker, id, 1)

	steps := []struct {
		op   string
		run  func() error
	}{
		{"register", func() error {
			_, err := c.do(ctx, http.MethodPost, "/api/v1/admin/flags", map[string]any{
				"flag_id":       flagID,
				"category":      0,
				"price_per_nft": defaultPrice,
				"nfts_required": 1,
			}, true)
			return err
		}},
		{"claim", func() error {
			_, err := c.do(ctx, http.MethodPost, "/api/v1/flags/"+flagID+"/claim", map[string]any{
				"caller": claimer,
			}, false)
			return err
		}},
		{"purchase", func() error {
			_, err := c.do(ctx, http.MethodPost, "/api/v1/flags/"+flagID+"/purchase", map[string]any{
				"caller": buyer,
				"value":  defaultPrice,
			}, false)
			return err
		}},
		{"read", func() error {
			_, err := c.do(ctx, http.MethodGet, "/api/v1/flags/"+flagID, nil, false)
			return err
		}},
	}

	for _, step := range steps {
		stepStart := time.Now()
		err := step.run()
		results <- opResult{op: step.op, duration: time.Since(stepStart), err: err}
		if err != nil {
			if c.cfg.Debug {
				fmt.Printf("worker %d flag %s: %s failed: %v\n", worker, flagID, step.op, err)
			}
			return
		}
	}
}

func (c *nodeClient) do(ctx context.Context, method, path string, body any, admin bool) ([]byte, error) {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return nil, err
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, c.cfg.BaseURL+path, &buf)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if admin {
		req.Header.Set("Authorization", "ApiKey "+c.cfg.APIKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close() //nolint:errcheck

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("%s %s: %d: %s", method, path, resp.StatusCode, strings.TrimSpace(string(data)))
	}
	return data, nil
}

// syntheticAddress derives a deterministic wallet address for one actor
func syntheticAddress(worker, id, role int) string {
	return fmt.Sprintf("0x%037d%d%02d", id, role, worker%100)
}

func collectStats(results <-chan opResult) map[string]*opStats {
	stats := make(map[string]*opStats)
	for r := range results {
		s := stats[r.op]
		if s == nil {
			s = &opStats{}
			stats[r.op] = s
		}
		s.count++
		if r.err != nil {
			s.failed++
			continue
		}
		s.durations = append(s.durations, r.duration)
	}
	return stats
}

func printReport(stats map[string]*opStats, elapsed time.Duration) {
	fmt.Println("\n" + strings.Repeat("=", 72))
	fmt.Println("LOADGEN RESULTS")
	fmt.Println(strings.Repeat("=", 72))

	ops := make([]string, 0, len(stats))
	for op := range stats {
		ops = append(ops, op)
	}
	sort.Strings(ops)

	total := 0
	for _, op := range ops {
		s := stats[op]
		total += s.count
		fmt.Printf("\n%-10s total: %d, failed: %s\n", op, s.count, percentageString(s.failed, s.count))
		if len(s.durations) > 0 {
			sort.Slice(s.durations, func(i, j int) bool { return s.durations[i] < s.durations[j] })
			fmt.Printf("%-10s p50: %s, p95: %s, max: %s\n", "",
				percentile(s.durations, 50), percentile(s.durations, 95),
				s.durations[len(s.durations)-1])
		}
	}

	fmt.Printf("\nElapsed: %s, throughput: %s\n", elapsed.Round(time.Millisecond), formatRate(total, elapsed))
}

func percentile(sorted []time.Duration, p int) time.Duration {
	if len(sorted) == 0 {
		return 0
	}
	idx := len(sorted) * p / 100
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}
	return sorted[idx]
}

// formatRate formats a rate (items per second)
func formatRate(count int, duration time.Duration) string {
	if duration.Seconds() == 0 {
		return "N/A"
	}
	rate := float64(count) / duration.Seconds()
	return fmt.Sprintf("%.2f/s", rate)
}

// percentageString calculates and formats a percentage
func percentageString(part, total int) string {
	if total == 0 {
		return "0.00%"
	}
	return fmt.Sprintf("%.2f%%", float64(part)/float64(total)*100)
}
