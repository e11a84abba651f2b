// Package main provides a benchmarking tool for the contacts CLI.
// It measures how long `contacts list` takes per snapshot backend, running
// each backend several times, treating the first successful run as cold (a
// full fetch) and averaging the rest as warm (served from the snapshot),
// and writes CSV output for performance analysis and documentation.
//
// Prerequisites:
// - contacts binary installed and available in PATH
// - a reachable contact service, given by the base URL argument
//
// Usage: go run benchmark/main.go [base-url]
package main

import (
	"encoding/csv"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"
)

// BenchmarkResult holds the cold and warm timings for one backend.
type BenchmarkResult struct {
	Backend  string
	ColdTime string
	WarmTime string
}

// BenchmarkConfig holds configuration for the benchmark run.
type BenchmarkConfig struct {
	BaseURL  string
	Timeout  time.Duration
	Runs     int
	Backends []string
}

func main() {
	if len(os.Args) != 2 {
		fmt.Printf("Usage: %s [base-url]\n", os.Args[0])
		os.Exit(1)
	}

	config := BenchmarkConfig{
		BaseURL:  os.Args[1],
		Timeout:  time.Minute,
		Runs:     5,
		Backends: []string{"none", "memory", "sqlite"},
	}

	if _, err := exec.LookPath("contacts"); err != nil {
		fmt.Printf("Prerequisites check failed: contacts binary not found in PATH\n")
		os.Exit(1)
	}

	results := runBenchmarks(config)

	if err := saveResults(results); err != nil {
		fmt.Printf("Failed to save results: %v\n", err)
		os.Exit(1)
	}

	printSummary(results)
}

// runBenchmarks executes the list benchmark for every configured backend.
func runBenchmarks(config BenchmarkConfig) []BenchmarkResult {
	var results []BenchmarkResult

	fmt.Printf("Starting benchmark: %d backends, %v timeout, %d runs each\n",
		len(config.Backends), config.Timeout, config.Runs)

	for _, backend := range config.Backends {
		fmt.Printf("Benchmarking %s\n", backend)

		clearCmd := exec.Command("contacts", "cache", "clear", "--cache-backend", backend)
		if output, err := clearCmd.CombinedOutput(); err != nil {
			fmt.Printf("  Warning: failed to clear cache: %v\n  Output: %s\n", err, string(output))
		}

		cold, warm := runBenchmark(config, backend)

		coldTimeStr := "TIMEOUT"
		if cold > 0 {
			coldTimeStr = fmt.Sprintf("%.3fs", cold)
		}
		warmAvg := "TIMEOUT"
		if len(warm) > 0 {
			var sum float64
			for _, t := range warm {
				sum += t
			}
			warmAvg = fmt.Sprintf("%.3fs", sum/float64(len(warm)))
		}

		fmt.Printf("  Cold time: %s, Warm average: %s\n", coldTimeStr, warmAvg)
		results = append(results, BenchmarkResult{Backend: backend, ColdTime: coldTimeStr, WarmTime: warmAvg})
	}

	return results
}

// runBenchmark runs `contacts list` config.Runs times and returns the cold time and warm times.
func runBenchmark(config BenchmarkConfig, backend string) (coldTime float64, warmTimes []float64) {
	args := []string{"list", "--base-url", config.BaseURL, "--cache-backend", backend, "--color", "no"}

	var times []float64
	for range config.Runs {
		start := time.Now()
		cmd := exec.Command("contacts", args...)

		done := make(chan bool)
		var output []byte
		var cmdErr error

		go func() {
			output, cmdErr = cmd.CombinedOutput()
			done <- true
		}()

		select {
		case <-done:
			if cmdErr == nil && isSuccess(output) {
				times = append(times, time.Since(start).Seconds())
			}
		case <-time.After(config.Timeout):
			_ = cmd.Process.Kill()
		}
	}

	if len(times) > 0 {
		coldTime = times[0]
		warmTimes = times[1:]
	}
	return
}

// isSuccess checks if command output indicates a rendered contact table.
func isSuccess(output []byte) bool {
	outputStr := string(output)
	return strings.Contains(outputStr, "Showing") && strings.Contains(outputStr, "Loaded in")
}

// saveResults writes benchmark results to a timestamped CSV file
func saveResults(results []BenchmarkResult) error {
	timestamp := time.Now().Format("20060102_150405")
	filename := fmt.Sprintf("/tmp/contacts_benchmark_%s.csv", timestamp)

	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil {
			fmt.Printf("Warning: failed to close file %s: %v\n", filename, closeErr)
		}
	}()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	if err := writer.Write([]string{"backend", "cold_time", "warm_avg"}); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}
	for _, result := range results {
		if err := writer.Write([]string{result.Backend, result.ColdTime, result.WarmTime}); err != nil {
			return fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	fmt.Printf("Results saved to %s\n", filename)
	return nil
}

// printSummary displays the final benchmark results summary
func printSummary(results []BenchmarkResult) {
	fmt.Printf("Benchmark complete\n")
	for _, result := range results {
		fmt.Printf("  %-8s: Cold: %s, Warm: %s\n", result.Backend, result.ColdTime, result.WarmTime)
	}
}
