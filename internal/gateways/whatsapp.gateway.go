package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/nimasrn/reservation-hub/pkg/logger"
	"github.com/nimasrn/reservation-hub/pkg/prom"
	"github.com/valyala/fasthttp"
)

var (
	ErrNoAvailableProviders = errors.New("no available providers")
	ErrMissingToken         = errors.New("whatsapp api token is empty")
	ErrMissingDestination   = errors.New("destination is empty")
)

// Result is what the provider reported for one accepted message.
type Result struct {
	Provider  string   `json:"provider"`
	Detail    string   `json:"detail"`
	IDs       []string `json:"ids,omitempty"`
	LatencyMs int64    `json:"latency_ms"`
}

// sendResponse mirrors the Fonnte reply. Status false carries a reason.
type sendResponse struct {
	Status bool            `json:"status"`
	Detail string          `json:"detail"`
	Reason string          `json:"reason"`
	ID     json.RawMessage `json:"id"`
}

func (r sendResponse) ids() []string {
	if len(r.ID) == 0 {
		return nil
	}
	var many []json.Number
	if err := json.Unmarshal(r.ID, &many); err == nil {
		out := make([]string, 0, len(many))
		for _, n := range many {
			out = append(out, n.String())
		}
		return out
	}
	var one json.Number
	if err := json.Unmarshal(r.ID, &one); err == nil {
		return []string{one.String()}
	}
	var s string
	if err := json.Unmarshal(r.ID, &s); err == nil && s != "" {
		return []string{s}
	}
	return nil
}

type ProviderMetrics struct {
	TotalRequests    atomic.Int64
	SuccessfulReqs   atomic.Int64
	FailedReqs       atomic.Int64
	TotalLatencyMs   atomic.Int64
	LastLatencyMs    atomic.Int64
	ConsecutiveFails atomic.Int32
	LastErrorTime    atomic.Int64
	LastSuccessTime  atomic.Int64

	mu             sync.RWMutex
	latencyHistory []int64
	maxHistorySize int
}

func NewProviderMetrics() *ProviderMetrics {
	return &ProviderMetrics{
		latencyHistory: make([]int64, 0, 100),
		maxHistorySize: 100,
	}
}

func (m *ProviderMetrics) RecordSuccess(latencyMs int64) {
	m.TotalRequests.Add(1)
	m.SuccessfulReqs.Add(1)
	m.TotalLatencyMs.Add(latencyMs)
	m.LastLatencyMs.Store(latencyMs)
	m.ConsecutiveFails.Store(0)
	m.LastSuccessTime.Store(time.Now().Unix())

	m.mu.Lock()
	if len(m.latencyHistory) >= m.maxHistorySize {
		m.latencyHistory = m.latencyHistory[1:]
	}
	m.latencyHistory = append(m.latencyHistory, latencyMs)
	m.mu.Unlock()
}

func (m *ProviderMetrics) RecordFailure() {
	m.TotalRequests.Add(1)
	m.FailedReqs.Add(1)
	m.ConsecutiveFails.Add(1)
	m.LastErrorTime.Store(time.Now().Unix())
}

func (m *ProviderMetrics) AvgLatencyMs() int64 {
	ok := m.SuccessfulReqs.Load()
	if ok == 0 {
		return 0
	}
	return m.TotalLatencyMs.Load() / ok
}

func (m *ProviderMetrics) SuccessRate() float64 {
	total := m.TotalRequests.Load()
	if total == 0 {
		return 1.0
	}
	return float64(m.SuccessfulReqs.Load()) / float64(total)
}

func (m *ProviderMetrics) P95LatencyMs() int64 {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if len(m.latencyHistory) == 0 {
		return 0
	}

	sorted := make([]int64, len(m.latencyHistory))
	copy(sorted, m.latencyHistory)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	idx := int(float64(len(sorted)) * 0.95)
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}
	return sorted[idx]
}

type ProviderState int

const (
	StateHealthy ProviderState = iota
	StateDegraded
	StateCircuitOpen
)

type Provider struct {
	name             string
	url              string
	client           *fasthttp.Client
	metrics          *ProviderMetrics
	state            atomic.Int32
	weight           atomic.Int32
	circuitOpenUntil atomic.Int64
}

func NewProvider(name, url string, weight int, client *fasthttp.Client) *Provider {
	p := &Provider{
		name:    name,
		url:     strings.TrimRight(url, "/"),
		client:  client,
		metrics: NewProviderMetrics(),
	}
	p.state.Store(int32(StateHealthy))
	p.weight.Store(int32(weight))
	return p
}

func (p *Provider) Name() string {
	return p.name
}

func (p *Provider) GetState() ProviderState {
	return ProviderState(p.state.Load())
}

func (p *Provider) SetState(state ProviderState) {
	p.state.Store(int32(state))
}

// IsAvailable reports false only while the circuit is open. An expired
// circuit moves the provider to degraded so it gets one more chance.
func (p *Provider) IsAvailable() bool {
	if p.GetState() != StateCircuitOpen {
		return true
	}
	if time.Now().UnixMilli() > p.circuitOpenUntil.Load() {
		p.SetState(StateDegraded)
		return true
	}
	return false
}

// CalculateScore ranks providers, higher is better.
func (p *Provider) CalculateScore() float64 {
	if !p.IsAvailable() {
		return 0.0
	}

	m := p.metrics
	successScore := m.SuccessRate() * 100

	// 0ms = 100 points, 5000ms and above = 0
	latencyScore := 100.0
	if avg := m.AvgLatencyMs(); avg > 0 {
		latencyScore = 100.0 * (1.0 - float64(avg)/5000.0)
		if latencyScore < 0 {
			latencyScore = 0
		}
	}

	recentPenalty := 1.0 - float64(m.ConsecutiveFails.Load())*0.1
	if recentPenalty < 0.1 {
		recentPenalty = 0.1
	}

	statePenalty := 1.0
	if p.GetState() == StateDegraded {
		statePenalty = 0.5
	}

	return (successScore*0.4 + latencyScore*0.4 + float64(p.weight.Load())*0.2) * recentPenalty * statePenalty
}

type Config struct {
	Providers               []ProviderConfig
	CountryCode             string
	Timeout                 time.Duration
	MaxConns                int
	CircuitBreakerThreshold int
	CircuitBreakerTimeout   time.Duration
	EvaluateInterval        time.Duration
}

type ProviderConfig struct {
	Name   string
	URL    string
	Weight int // 1-100
}

func DefaultConfig(urls ...string) *Config {
	cfg := &Config{
		CountryCode:             "62",
		Timeout:                 10 * time.Second,
		MaxConns:                64,
		CircuitBreakerThreshold: 5,
		CircuitBreakerTimeout:   30 * time.Second,
		EvaluateInterval:        30 * time.Second,
	}
	weight := 100
	for i, u := range urls {
		if strings.TrimSpace(u) == "" {
			continue
		}
		cfg.Providers = append(cfg.Providers, ProviderConfig{Name: fmt.Sprintf("provider-%d", i+1), URL: u, Weight: weight})
		weight -= 10
	}
	return cfg
}

// Client sends WhatsApp messages through a Fonnte-compatible HTTP API. Each
// Send walks the providers best score first and stops at the first one that
// accepts the message.
type Client struct {
	config    *Config
	providers []*Provider
	stopCh    chan struct{}
	closeOnce sync.Once
	wg        sync.WaitGroup
}

func NewClient(config *Config) (*Client, error) {
	if config == nil {
		return nil, errors.New("config is required")
	}
	if len(config.Providers) == 0 {
		return nil, errors.New("at least one provider is required")
	}
	if config.Timeout <= 0 {
		config.Timeout = 10 * time.Second
	}
	if config.CircuitBreakerThreshold <= 0 {
		config.CircuitBreakerThreshold = 5
	}
	if config.CircuitBreakerTimeout <= 0 {
		config.CircuitBreakerTimeout = 30 * time.Second
	}
	if config.CountryCode == "" {
		config.CountryCode = "62"
	}

	c := &Client{
		config:    config,
		providers: make([]*Provider, 0, len(config.Providers)),
		stopCh:    make(chan struct{}),
	}

	for _, pc := range config.Providers {
		httpClient := &fasthttp.Client{
			MaxConnsPerHost:     config.MaxConns,
			ReadTimeout:         config.Timeout,
			WriteTimeout:        config.Timeout,
			MaxIdleConnDuration: 60 * time.Second,
		}
		c.providers = append(c.providers, NewProvider(pc.Name, pc.URL, pc.Weight, httpClient))
		logger.Info("whatsapp provider initialized", "name", pc.Name, "url", pc.URL, "weight", pc.Weight)
	}

	if config.EvaluateInterval > 0 {
		c.wg.Add(1)
		go c.evaluator()
	}

	return c, nil
}

// rankedProviders returns the available providers, best score first.
func (c *Client) rankedProviders() []*Provider {
	out := make([]*Provider, 0, len(c.providers))
	for _, p := range c.providers {
		if p.IsAvailable() {
			out = append(out, p)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CalculateScore() > out[j].CalculateScore()
	})
	return out
}

// Send delivers text to destination. There is no timed retry: a failing
// provider hands over to the next one and the call fails once all have.
func (c *Client) Send(ctx context.Context, destination, text, token string) (*Result, error) {
	if strings.TrimSpace(token) == "" {
		return nil, ErrMissingToken
	}
	if strings.TrimSpace(destination) == "" {
		return nil, ErrMissingDestination
	}

	form := url.Values{}
	form.Set("target", destination)
	form.Set("message", text)
	form.Set("countryCode", c.config.CountryCode)
	body := []byte(form.Encode())

	providers := c.rankedProviders()
	if len(providers) == 0 {
		return nil, ErrNoAvailableProviders
	}

	var errs []error
	for _, p := range providers {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		start := time.Now()
		resp, err := c.doRequest(ctx, p, token, body)
		latency := time.Since(start)

		if err != nil {
			p.metrics.RecordFailure()
			c.checkCircuitBreaker(p)
			prom.AddGatewayRequestDuration(latency.Seconds(), p.name, "failed")
			logger.Warn("whatsapp send failed, trying next provider", "provider", p.name, "error", err)
			errs = append(errs, fmt.Errorf("%s: %w", p.name, err))
			continue
		}

		p.metrics.RecordSuccess(latency.Milliseconds())
		prom.AddGatewayRequestDuration(latency.Seconds(), p.name, "sent")
		logger.Debug("whatsapp message sent", "provider", p.name, "latency_ms", latency.Milliseconds())

		return &Result{
			Provider:  p.name,
			Detail:    resp.Detail,
			IDs:       resp.ids(),
			LatencyMs: latency.Milliseconds(),
		}, nil
	}

	return nil, fmt.Errorf("all %d providers failed: %w", len(providers), errors.Join(errs...))
}

func (c *Client) doRequest(ctx context.Context, p *Provider, token string, body []byte) (*sendResponse, error) {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(p.url + "/send")
	req.Header.SetMethod(fasthttp.MethodPost)
	req.Header.SetContentType("application/x-www-form-urlencoded")
	req.Header.Set("Authorization", token)
	req.SetBody(body)

	deadline := time.Now().Add(c.config.Timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}

	if err := p.client.DoDeadline(req, resp, deadline); err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}

	if code := resp.StatusCode(); code != fasthttp.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d, body: %s", code, resp.Body())
	}

	var out sendResponse
	if err := json.Unmarshal(resp.Body(), &out); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}
	if !out.Status {
		reason := out.Reason
		if reason == "" {
			reason = out.Detail
		}
		return nil, fmt.Errorf("provider rejected message: %s", reason)
	}
	return &out, nil
}

func (c *Client) checkCircuitBreaker(p *Provider) {
	fails := p.metrics.ConsecutiveFails.Load()
	if fails < int32(c.config.CircuitBreakerThreshold) {
		return
	}
	p.SetState(StateCircuitOpen)
	p.circuitOpenUntil.Store(time.Now().Add(c.config.CircuitBreakerTimeout).UnixMilli())
	logger.Warn("circuit breaker opened", "provider", p.name, "consecutive_fails", fails, "timeout", c.config.CircuitBreakerTimeout)
}

func (c *Client) evaluator() {
	defer c.wg.Done()

	ticker := time.NewTicker(c.config.EvaluateInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.evaluateProviders()
		case <-c.stopCh:
			return
		}
	}
}

// evaluateProviders demotes slow or failing providers and restores the ones
// that recovered.
func (c *Client) evaluateProviders() {
	for _, p := range c.providers {
		if p.GetState() == StateCircuitOpen {
			continue
		}

		successRate := p.metrics.SuccessRate()
		avgLatency := p.metrics.AvgLatencyMs()

		if successRate < 0.8 || avgLatency > 5000 {
			if p.GetState() != StateDegraded {
				p.SetState(StateDegraded)
				logger.Warn("whatsapp provider degraded", "provider", p.name, "success_rate", successRate, "avg_latency_ms", avgLatency)
			}
		} else if successRate > 0.95 && avgLatency < 2000 {
			if p.GetState() != StateHealthy {
				p.SetState(StateHealthy)
				logger.Info("whatsapp provider recovered", "provider", p.name)
			}
		}
	}
}

type ProviderStats struct {
	Name             string  `json:"name"`
	URL              string  `json:"url"`
	State            string  `json:"state"`
	Score            float64 `json:"score"`
	TotalRequests    int64   `json:"total_requests"`
	SuccessfulReqs   int64   `json:"successful_requests"`
	FailedReqs       int64   `json:"failed_requests"`
	SuccessRate      float64 `json:"success_rate"`
	AvgLatencyMs     int64   `json:"avg_latency_ms"`
	P95LatencyMs     int64   `json:"p95_latency_ms"`
	ConsecutiveFails int32   `json:"consecutive_fails"`
}

func (c *Client) GetProviderStats() []ProviderStats {
	stats := make([]ProviderStats, 0, len(c.providers))
	for _, p := range c.providers {
		stats = append(stats, ProviderStats{
			Name:             p.name,
			URL:              p.url,
			State:            stateString(p.GetState()),
			Score:            p.CalculateScore(),
			TotalRequests:    p.metrics.TotalRequests.Load(),
			SuccessfulReqs:   p.metrics.SuccessfulReqs.Load(),
			FailedReqs:       p.metrics.FailedReqs.Load(),
			SuccessRate:      p.metrics.SuccessRate(),
			AvgLatencyMs:     p.metrics.AvgLatencyMs(),
			P95LatencyMs:     p.metrics.P95LatencyMs(),
			ConsecutiveFails: p.metrics.ConsecutiveFails.Load(),
		})
	}
	sort.Slice(stats, func(i, j int) bool { return stats[i].Score > stats[j].Score })
	return stats
}

func (c *Client) Close() error {
	c.closeOnce.Do(func() {
		close(c.stopCh)
		c.wg.Wait()
		logger.Info("whatsapp client closed")
	})
	return nil
}

func stateString(state ProviderState) string {
	switch state {
	case StateHealthy:
		return "HEALTHY"
	case StateDegraded:
		return "DEGRADED"
	case StateCircuitOpen:
		return "CIRCUIT_OPEN"
	default:
		return "UNKNOWN"
	}
}
