package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	sqlite "github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/tbourn/go-celebrations-backend/internal/ai"
	"github.com/tbourn/go-celebrations-backend/internal/repo"
)

// ---------- test helpers ----------

func newSvcDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:svc_%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, _ := db.DB()
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	db.Exec("PRAGMA foreign_keys=ON;")
	if err := repo.AutoMigrate(db); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	return db
}

// failTable makes every query or create touching table fail.
func failTable(t *testing.T, db *gorm.DB, table string, op string) {
	t.Helper()
	fn := func(tx *gorm.DB) {
		if tx.Statement.Table == table {
			_ = tx.AddError(errors.New("store unavailable"))
		}
	}
	name := "test:fail_" + table + "_" + op
	var err error
	switch op {
	case "query":
		err = db.Callback().Query().Before("gorm:query").Register(name, fn)
	case "create":
		err = db.Callback().Create().Before("gorm:create").Register(name, fn)
	case "update":
		err = db.Callback().Update().Before("gorm:update").Register(name, fn)
	}
	if err != nil {
		t.Fatalf("register callback: %v", err)
	}
}

// stallTable makes every op on table hang until the statement's context
// ends, then fail with the context's error.
func stallTable(t *testing.T, db *gorm.DB, table string, op string) {
	t.Helper()
	fn := func(tx *gorm.DB) {
		if tx.Statement.Table != table {
			return
		}
		ctx := tx.Statement.Context
		select {
		case <-ctx.Done():
			_ = tx.AddError(ctx.Err())
		case <-time.After(5 * time.Second):
			_ = tx.AddError(errors.New("stalled call was never cancelled"))
		}
	}
	name := "test:stall_" + table + "_" + op
	var err error
	switch op {
	case "query":
		err = db.Callback().Query().Before("gorm:query").Register(name, fn)
	case "create":
		err = db.Callback().Create().Before("gorm:create").Register(name, fn)
	case "update":
		err = db.Callback().Update().Before("gorm:update").Register(name, fn)
	}
	if err != nil {
		t.Fatalf("register callback: %v", err)
	}
}

// captureLogs redirects the global zerolog logger for the test.
func captureLogs(t *testing.T) *bytes.Buffer {
	t.Helper()
	buf := &bytes.Buffer{}
	prev := log.Logger
	log.Logger = zerolog.New(buf)
	t.Cleanup(func() { log.Logger = prev })
	return buf
}

type fakeGen struct {
	mu          sync.Mutex
	calls       int
	text        string
	service     string
	err         error
	useFallback bool
	last        []ai.Message
}

func (f *fakeGen) Generate(ctx context.Context, msgs []ai.Message, fallback func() string) (string, string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.last = msgs
	if f.useFallback && fallback != nil {
		return fallback(), ai.ServiceTemplate, nil
	}
	if f.err != nil {
		return "", "", f.err
	}
	svc := f.service
	if svc == "" {
		svc = "groq"
	}
	return f.text, svc, nil
}

func (f *fakeGen) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type sendCall struct{ to, body string }

type fakeSender struct {
	mu     sync.Mutex
	sent   []sendCall
	failOn map[string]error // by body substring
	n      int
	delay  time.Duration
	onSend func(body string) // runs after a successful send
}

func (f *fakeSender) Send(ctx context.Context, to, body string) (string, error) {
	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for sub, err := range f.failOn {
		if bytes.Contains([]byte(body), []byte(sub)) {
			return "", err
		}
	}
	f.n++
	f.sent = append(f.sent, sendCall{to, body})
	if f.onSend != nil {
		f.onSend(body)
	}
	return fmt.Sprintf("SM%03d", f.n), nil
}

func (f *fakeSender) Sent() []sendCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]sendCall(nil), f.sent...)
}
