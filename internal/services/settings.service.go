package services

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/nimasrn/reservation-hub/internal/model"
	"github.com/nimasrn/reservation-hub/pkg/logger"
	goredis "github.com/redis/go-redis/v9"
)

const SettingsReloadChannel = "settings:reload"

type SettingRepository interface {
	Upsert(ctx context.Context, key, value string) error
	All(ctx context.Context) ([]*model.Setting, error)
}

// SettingsBus broadcasts reload hints between processes.
type SettingsBus interface {
	Publish(ctx context.Context, channel string, message string) error
	Subscribe(ctx context.Context, channel string) *goredis.PubSub
}

// SettingsService keeps an in-memory snapshot of the settings table.
type SettingsService struct {
	repo SettingRepository
	bus  SettingsBus

	mu       sync.RWMutex
	snapshot map[string]string
}

func NewSettingsService(repo SettingRepository, bus SettingsBus) *SettingsService {
	return &SettingsService{
		repo:     repo,
		bus:      bus,
		snapshot: map[string]string{},
	}
}

// Load replaces the snapshot with the persisted settings.
func (s *SettingsService) Load(ctx context.Context) error {
	settings, err := s.repo.All(ctx)
	if err != nil {
		return fmt.Errorf("failed to load settings: %w", err)
	}
	next := make(map[string]string, len(settings))
	for _, st := range settings {
		next[st.Key] = st.Value
	}

	s.mu.Lock()
	s.snapshot = next
	s.mu.Unlock()
	return nil
}

func (s *SettingsService) Get(key string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.snapshot[key]
	return v, ok
}

// WhatsAppToken returns the gateway token, empty when unset.
func (s *SettingsService) WhatsAppToken() string {
	v, _ := s.Get(model.SettingWhatsAppAPIToken)
	return strings.TrimSpace(v)
}

func (s *SettingsService) All() map[string]string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]string, len(s.snapshot))
	for k, v := range s.snapshot {
		out[k] = v
	}
	return out
}

// Set persists a value, reloads the local snapshot and tells other processes
// to reload theirs. A failed broadcast is logged only.
func (s *SettingsService) Set(ctx context.Context, key, value string) error {
	key = strings.TrimSpace(key)
	if key == "" {
		return model.NewValidationError("key", "setting key is required")
	}
	if err := s.repo.Upsert(ctx, key, value); err != nil {
		return fmt.Errorf("failed to save setting %s: %w", key, err)
	}
	if err := s.Load(ctx); err != nil {
		return err
	}
	if s.bus != nil {
		if err := s.bus.Publish(ctx, SettingsReloadChannel, key); err != nil {
			logger.Warn("failed to broadcast settings reload", "key", key, "error", err)
		}
	}
	return nil
}

// Watch reloads the snapshot whenever another process changes a setting. It
// blocks until ctx is done.
func (s *SettingsService) Watch(ctx context.Context) error {
	if s.bus == nil {
		<-ctx.Done()
		return nil
	}
	sub := s.bus.Subscribe(ctx, SettingsReloadChannel)
	defer sub.Close()

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			if err := s.Load(ctx); err != nil {
				logger.Error("settings reload failed", "key", msg.Payload, "error", err)
				continue
			}
			logger.Info("settings reloaded", "key", msg.Payload)
		}
	}
}
