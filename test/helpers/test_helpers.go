package helpers

import (
	"context"
	"fmt"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/nimasrn/reservation-hub/internal/model"
	"github.com/nimasrn/reservation-hub/internal/repository"
	"github.com/nimasrn/reservation-hub/pkg/pg"
	"github.com/nimasrn/reservation-hub/pkg/pg/sqlitetest"
	"github.com/nimasrn/reservation-hub/pkg/redis"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"github.com/valyala/fasthttp"
)

func SetupTestDB(t *testing.T) *pg.DB {
	return sqlitetest.Open(t, repository.Entities()...)
}

func SetupTestRedis(t *testing.T) (*miniredis.Miniredis, redis.RedisAdapter) {
	mr := miniredis.RunT(t)

	// unique per test, adapters are cached by name
	connName := fmt.Sprintf("test-%s-%d", t.Name(), time.Now().UnixNano())
	adapter, err := redis.NewRedisAdapter(connName, "", &goredis.UniversalOptions{
		Addrs: []string{mr.Addr()},
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = redis.Close(connName) })

	return mr, adapter
}

func CreateTestStore(t *testing.T, db *pg.DB, name string, whatsapp *string) *model.Store {
	s, err := repository.NewStoreRepository(db).Create(context.Background(), &model.Store{
		Name:                      name,
		WhatsApp:                  whatsapp,
		AcceptsPublicReservations: true,
	})
	require.NoError(t, err)
	return s
}

func CreateTestCustomer(t *testing.T, db *pg.DB, name, phone string) *model.Customer {
	c, err := repository.NewCustomerRepository(db).Create(context.Background(), &model.Customer{
		Name:      name,
		Code:      fmt.Sprintf("CUST-%d", time.Now().UnixNano()),
		Telephone: phone,
	})
	require.NoError(t, err)
	return c
}

// SentMessage is one request received by a FakeWhatsApp.
type SentMessage struct {
	Token   string
	Target  string
	Message string
}

// FakeWhatsApp is a Fonnte-compatible endpoint listening on a loopback port.
type FakeWhatsApp struct {
	URL string

	mu   sync.Mutex
	sent []SentMessage
}

func StartFakeWhatsApp(t *testing.T) *FakeWhatsApp {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	f := &FakeWhatsApp{URL: "http://" + ln.Addr().String()}
	go func() {
		_ = fasthttp.Serve(ln, func(ctx *fasthttp.RequestCtx) {
			f.mu.Lock()
			f.sent = append(f.sent, SentMessage{
				Token:   string(ctx.Request.Header.Peek("Authorization")),
				Target:  string(ctx.PostArgs().Peek("target")),
				Message: string(ctx.PostArgs().Peek("message")),
			})
			n := len(f.sent)
			f.mu.Unlock()

			ctx.SetContentType("application/json")
			ctx.SetBodyString(fmt.Sprintf(`{"status":true,"detail":"success! message in queue","id":[%d],"process":"pending"}`, 80367170+n))
		})
	}()
	t.Cleanup(func() { _ = ln.Close() })
	return f
}

func (f *FakeWhatsApp) Sent() []SentMessage {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]SentMessage(nil), f.sent...)
}

func WaitForCondition(t *testing.T, timeout time.Duration, condition func() bool) bool {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if condition() {
			return true
		}
		time.Sleep(10 * time.Millisecond)
	}
	return false
}

func AssertEventually(t *testing.T, timeout time.Duration, condition func() bool, msg string) {
	if !WaitForCondition(t, timeout, condition) {
		t.Fatal(msg)
	}
}

func ContextWithTimeout(timeout time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), timeout)
}

func Ptr[T any](v T) *T {
	return &v
}
