package main

import (
	"context"
	"fmt"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// SendResponse mirrors the reply of the Fonnte /send endpoint.
type SendResponse struct {
	Status  bool     `json:"status"`
	Detail  string   `json:"detail,omitempty"`
	Reason  string   `json:"reason,omitempty"`
	ID      []int64  `json:"id,omitempty"`
	Process string   `json:"process,omitempty"`
	Target  []string `json:"target,omitempty"`
}

// SentMessage is kept in memory so local runs can inspect what was sent.
type SentMessage struct {
	ID          int64     `json:"id"`
	RequestID   string    `json:"request_id"`
	Target      string    `json:"target"`
	CountryCode string    `json:"country_code"`
	Message     string    `json:"message"`
	ReceivedAt  time.Time `json:"received_at"`
}

type HealthResponse struct {
	Status       string    `json:"status"`
	DeviceID     string    `json:"device_id"`
	Timestamp    time.Time `json:"timestamp"`
	DeliveryRate float64   `json:"delivery_rate"`
}

// MockGateway simulates a WhatsApp gateway account.
type MockGateway struct {
	mu           sync.Mutex
	token        string
	deliveryRate float64
	minDelay     time.Duration
	maxDelay     time.Duration
	deviceID     string
	rng          *rand.Rand
	nextID       int64
	sent         []SentMessage
	keep         int
}

func NewMockGateway(token string, deliveryRate float64, minDelay, maxDelay time.Duration) *MockGateway {
	return &MockGateway{
		token:        token,
		deliveryRate: deliveryRate,
		minDelay:     minDelay,
		maxDelay:     maxDelay,
		deviceID:     "MOCK_DEVICE_" + uuid.New().String()[:8],
		rng:          rand.New(rand.NewSource(time.Now().UnixNano())),
		nextID:       80367170,
		keep:         200,
	}
}

func (m *MockGateway) randomDelay() time.Duration {
	delta := m.maxDelay - m.minDelay
	if delta <= 0 {
		return m.minDelay
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.minDelay + time.Duration(m.rng.Int63n(int64(delta)))
}

func (m *MockGateway) shouldSucceed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.rng.Float64() < m.deliveryRate
}

func (m *MockGateway) record(msg SentMessage) SentMessage {
	m.mu.Lock()
	defer m.mu.Unlock()
	msg.ID = m.nextID
	m.nextID++
	m.sent = append(m.sent, msg)
	if len(m.sent) > m.keep {
		m.sent = m.sent[len(m.sent)-m.keep:]
	}
	return msg
}

func (m *MockGateway) authorized(header string) bool {
	if strings.TrimSpace(header) == "" {
		return false
	}
	return m.token == "" || header == m.token
}

type Handler struct {
	gateway *MockGateway
}

func NewHandler(gateway *MockGateway) *Handler {
	return &Handler{gateway: gateway}
}

// Send accepts form or query parameters target, message and countryCode.
func (h *Handler) Send(c *gin.Context) {
	requestID := uuid.NewString()

	if !h.gateway.authorized(c.GetHeader("Authorization")) {
		c.JSON(http.StatusOK, SendResponse{Status: false, Reason: "invalid token"})
		return
	}

	target := strings.TrimSpace(c.PostForm("target"))
	message := c.PostForm("message")
	if target == "" {
		c.JSON(http.StatusOK, SendResponse{Status: false, Reason: "target invalid"})
		return
	}
	if strings.TrimSpace(message) == "" {
		c.JSON(http.StatusOK, SendResponse{Status: false, Reason: "message is empty"})
		return
	}

	time.Sleep(h.gateway.randomDelay())

	if !h.gateway.shouldSucceed() {
		log.Warn().
			Str("request_id", requestID).
			Str("target", target).
			Msg("Message rejected")
		c.JSON(http.StatusOK, SendResponse{Status: false, Reason: "device disconnected"})
		return
	}

	sent := h.gateway.record(SentMessage{
		RequestID:   requestID,
		Target:      target,
		CountryCode: c.DefaultPostForm("countryCode", "62"),
		Message:     message,
		ReceivedAt:  time.Now(),
	})

	log.Info().
		Str("request_id", requestID).
		Int64("id", sent.ID).
		Str("target", target).
		Int("length", len(message)).
		Msg("Message queued")

	c.JSON(http.StatusOK, SendResponse{
		Status:  true,
		Detail:  "success! message in queue",
		ID:      []int64{sent.ID},
		Process: "pending",
		Target:  []string{target},
	})
}

func (h *Handler) Messages(c *gin.Context) {
	h.gateway.mu.Lock()
	out := make([]SentMessage, len(h.gateway.sent))
	copy(out, h.gateway.sent)
	h.gateway.mu.Unlock()
	c.JSON(http.StatusOK, out)
}

func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{
		Status:       "healthy",
		DeviceID:     h.gateway.deviceID,
		Timestamp:    time.Now(),
		DeliveryRate: h.gateway.deliveryRate,
	})
}

// UpdateConfig changes the delivery rate at runtime.
func (h *Handler) UpdateConfig(c *gin.Context) {
	var config struct {
		DeliveryRate *float64 `json:"delivery_rate"`
	}
	if err := c.ShouldBindJSON(&config); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request",
			"details": err.Error(),
		})
		return
	}

	h.gateway.mu.Lock()
	if config.DeliveryRate != nil && *config.DeliveryRate >= 0 && *config.DeliveryRate <= 1.0 {
		h.gateway.deliveryRate = *config.DeliveryRate
		log.Info().Float64("rate", *config.DeliveryRate).Msg("Updated delivery rate")
	}
	rate := h.gateway.deliveryRate
	h.gateway.mu.Unlock()

	c.JSON(http.StatusOK, gin.H{
		"detail":        "Configuration updated",
		"delivery_rate": rate,
	})
}

func SetupRouter(handler *Handler) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Info().
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("duration", time.Since(start)).
			Msg("Request processed")
	})

	router.POST("/send", handler.Send)
	router.GET("/messages", handler.Messages)
	router.GET("/health", handler.HealthCheck)
	router.PUT("/config", handler.UpdateConfig)
	return router
}

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	port := getEnv("PORT", "8081")
	token := getEnv("WAMOCK_TOKEN", "")
	deliveryRate := getEnvFloat("DELIVERY_RATE", 1)
	minDelay := getEnvDuration("MIN_DELAY", 50*time.Millisecond)
	maxDelay := getEnvDuration("MAX_DELAY", 300*time.Millisecond)

	log.Info().
		Str("port", port).
		Bool("token_required", token != "").
		Float64("delivery_rate", deliveryRate).
		Dur("min_delay", minDelay).
		Dur("max_delay", maxDelay).
		Msg("Starting mock WhatsApp gateway")

	router := SetupRouter(NewHandler(NewMockGateway(token, deliveryRate, minDelay, maxDelay)))
	srv := &http.Server{
		Addr:         ":" + port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("addr", srv.Addr).Msg("Server started")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}
	log.Info().Msg("Server exited")
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		var f float64
		if _, err := fmt.Sscanf(value, "%f", &f); err == nil {
			return f
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
