package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"sort"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

// PublicReservationPayload mirrors the body of POST /public/reservations.
type PublicReservationPayload struct {
	StoreID  int64  `json:"store_id"`
	Name     string `json:"name"`
	Phone    string `json:"phone"`
	Datetime string `json:"datetime"`
	Guests   int    `json:"guests"`
	Notify   bool   `json:"notify"`
}

type LoadTestConfig struct {
	URL               string
	StoreID           int64
	RequestsPerSecond int
	DurationSeconds   int
	ConcurrentWorkers int
	Notify            bool
}

type Stats struct {
	successCount  atomic.Int64
	errorCount    atomic.Int64
	statusCounts  sync.Map
	responseTimes []float64
	mu            sync.Mutex
}

func (s *Stats) addResponseTime(duration float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.responseTimes = append(s.responseTimes, duration)
}

func (s *Stats) getResponseTimes() []float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	times := make([]float64, len(s.responseTimes))
	copy(times, s.responseTimes)
	return times
}

func (s *Stats) countStatus(code int) {
	v, _ := s.statusCounts.LoadOrStore(code, new(atomic.Int64))
	v.(*atomic.Int64).Add(1)
}

// payloadFor gives every request its own phone, so each one creates a
// customer on the first visit.
func payloadFor(config LoadTestConfig, seq int64, at time.Time) []byte {
	p := PublicReservationPayload{
		StoreID:  config.StoreID,
		Name:     fmt.Sprintf("Load Guest %d", seq),
		Phone:    fmt.Sprintf("0899%08d", seq),
		Datetime: at.Add(time.Duration(seq%600) * time.Minute).Format("2006-01-02T15:04"),
		Guests:   int(seq%8) + 1,
		Notify:   config.Notify,
	}
	b, _ := json.Marshal(p)
	return b
}

func sendRequest(client *http.Client, config LoadTestConfig, payload []byte, stats *Stats) {
	start := time.Now()

	req, err := http.NewRequest(http.MethodPost, config.URL, bytes.NewBuffer(payload))
	if err != nil {
		stats.errorCount.Add(1)
		return
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		stats.errorCount.Add(1)
		stats.addResponseTime(time.Since(start).Seconds())
		return
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	stats.addResponseTime(time.Since(start).Seconds())
	stats.countStatus(resp.StatusCode)
	if resp.StatusCode == http.StatusCreated {
		stats.successCount.Add(1)
	} else {
		stats.errorCount.Add(1)
	}
}

func worker(client *http.Client, config LoadTestConfig, at time.Time, seq *atomic.Int64, stats *Stats, jobs <-chan struct{}, wg *sync.WaitGroup) {
	defer wg.Done()

	for range jobs {
		sendRequest(client, config, payloadFor(config, seq.Add(1), at), stats)
	}
}

func calculatePercentile(sorted []float64, percentile float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	index := int(float64(len(sorted)) * percentile)
	if index >= len(sorted) {
		index = len(sorted) - 1
	}
	return sorted[index]
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func main() {
	config := LoadTestConfig{
		URL:               getEnvOrDefault("TARGET_URL", "http://localhost:8080/api/v1/public/reservations"),
		StoreID:           int64(getEnvIntOrDefault("STORE_ID", 1)),
		RequestsPerSecond: getEnvIntOrDefault("REQUESTS_PER_SECOND", 200),
		DurationSeconds:   getEnvIntOrDefault("DURATION_SECONDS", 30),
		ConcurrentWorkers: getEnvIntOrDefault("CONCURRENT_WORKERS", 50),
		Notify:            getEnvOrDefault("NOTIFY", "false") == "true",
	}

	now := time.Now()
	at := time.Date(now.Year(), now.Month()+1, 1, 10, 0, 0, 0, time.UTC)

	fmt.Println("Starting load test...")
	fmt.Printf("Target: %s (store %d)\n", config.URL, config.StoreID)
	fmt.Printf("Total requests: %d\n", config.RequestsPerSecond*config.DurationSeconds)
	fmt.Printf("Target RPS: %d\n", config.RequestsPerSecond)
	fmt.Printf("Concurrent workers: %d\n", config.ConcurrentWorkers)
	fmt.Printf("Duration: %d seconds\n", config.DurationSeconds)
	fmt.Printf("Notify: %t\n", config.Notify)
	fmt.Println(strings.Repeat("-", 50))

	stats := &Stats{}
	client := &http.Client{
		Transport: &http.Transport{
			MaxIdleConns:        config.ConcurrentWorkers,
			MaxIdleConnsPerHost: config.ConcurrentWorkers,
			IdleConnTimeout:     90 * time.Second,
		},
		Timeout: 30 * time.Second,
	}

	jobs := make(chan struct{}, config.RequestsPerSecond)
	var seq atomic.Int64

	var wg sync.WaitGroup
	for i := 0; i < config.ConcurrentWorkers; i++ {
		wg.Add(1)
		go worker(client, config, at, &seq, stats, jobs, &wg)
	}

	startTime := time.Now()
	totalRequests := config.RequestsPerSecond * config.DurationSeconds
	requestsSent := 0

	for i := 0; i < config.DurationSeconds && requestsSent < totalRequests; i++ {
		batchStart := time.Now()

		for j := 0; j < config.RequestsPerSecond && requestsSent < totalRequests; j++ {
			jobs <- struct{}{}
			requestsSent++
		}

		success := stats.successCount.Load()
		errors := stats.errorCount.Load()
		fmt.Printf("[%ds] Completed: %d | Created: %d | Errors: %d\n",
			i+1, success+errors, success, errors)

		elapsed := time.Since(batchStart)
		if elapsed < time.Second {
			time.Sleep(time.Second - elapsed)
		}
	}

	close(jobs)
	wg.Wait()

	duration := time.Since(startTime).Seconds()
	success := stats.successCount.Load()
	errors := stats.errorCount.Load()
	total := success + errors

	times := stats.getResponseTimes()
	sort.Float64s(times)
	var avgResponseTime float64
	if len(times) > 0 {
		sum := 0.0
		for _, t := range times {
			sum += t
		}
		avgResponseTime = sum / float64(len(times))
	}

	fmt.Println("\n" + strings.Repeat("=", 50))
	fmt.Println("LOAD TEST RESULTS")
	fmt.Println(strings.Repeat("=", 50))
	fmt.Printf("Duration: %.2f seconds\n", duration)
	fmt.Printf("Total requests: %d\n", total)
	fmt.Printf("Created: %d\n", success)
	fmt.Printf("Failed: %d\n", errors)
	if total > 0 {
		fmt.Printf("Success rate: %.2f%%\n", float64(success)/float64(total)*100)
		fmt.Printf("\nActual RPS: %.2f\n", float64(total)/duration)
	}
	fmt.Println("\nStatus codes:")
	stats.statusCounts.Range(func(k, v any) bool {
		fmt.Printf("  %d: %d\n", k.(int), v.(*atomic.Int64).Load())
		return true
	})
	if len(times) > 0 {
		fmt.Printf("\nResponse times:\n")
		fmt.Printf("  Average: %.2f ms\n", avgResponseTime*1000)
		fmt.Printf("  P50: %.2f ms\n", calculatePercentile(times, 0.50)*1000)
		fmt.Printf("  P95: %.2f ms\n", calculatePercentile(times, 0.95)*1000)
		fmt.Printf("  P99: %.2f ms\n", calculatePercentile(times, 0.99)*1000)
		fmt.Printf("  Min: %.2f ms\n", times[0]*1000)
		fmt.Printf("  Max: %.2f ms\n", times[len(times)-1]*1000)
	}
}
