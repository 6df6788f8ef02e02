package handlers

import (
	"context"
	"errors"
	"io"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-celebrations-backend/internal/auth"
	"github.com/tbourn/go-celebrations-backend/internal/clock"
	"github.com/tbourn/go-celebrations-backend/internal/domain"
	"github.com/tbourn/go-celebrations-backend/internal/http/middleware"
	"github.com/tbourn/go-celebrations-backend/internal/scheduler"
	"github.com/tbourn/go-celebrations-backend/internal/services"
)

func init() { gin.SetMode(gin.TestMode) }

var testNow = time.Date(2025, 3, 15, 9, 0, 0, 0, time.UTC)

type fakeWishes struct {
	mu        sync.Mutex
	calls     int
	err       error
	gotReq    services.WishRequest
	gotCaller services.Caller
	regenID   string
	regenCtx  string
	decision  services.Decision
	peekErr   error
	stored    map[string]*services.WishResult
}

func (f *fakeWishes) Generate(_ context.Context, req services.WishRequest, caller services.Caller, _ time.Time, regenerating *string) (*services.WishResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.gotReq, f.gotCaller = req, caller
	if f.err != nil {
		return nil, f.err
	}
	res := &services.WishResult{
		Text:              "Happy birthday, " + req.Name + "!",
		RequestID:         "01JAAAAAAAAAAAAAAAAAAAAAA" + string(rune('0'+f.calls)),
		OriginalRequestID: regenerating,
		Service:           "groq",
	}
	if !caller.Authenticated {
		remaining, reset := 4, testNow.Add(time.Hour)
		res.RemainingRequests, res.ResetAt = &remaining, &reset
	}
	if f.stored == nil {
		f.stored = map[string]*services.WishResult{}
	}
	f.stored[res.RequestID] = res
	return res, nil
}

func (f *fakeWishes) Regenerate(ctx context.Context, originalID, extra string, caller services.Caller, now time.Time) (*services.WishResult, error) {
	f.mu.Lock()
	f.regenID, f.regenCtx = originalID, extra
	orig, found := f.stored[originalID]
	f.mu.Unlock()
	if !found {
		return nil, services.ErrWishNotFound
	}
	id := orig.RequestID
	return f.Generate(ctx, services.WishRequest{Name: "again"}, caller, now, &id)
}

func (f *fakeWishes) Replay(_ context.Context, requestID string, _ services.Caller, _ time.Time) (*services.WishResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if res, found := f.stored[requestID]; found {
		return res, nil
	}
	return nil, services.ErrWishNotFound
}

func (f *fakeWishes) LimitStatus(context.Context, services.Caller, time.Time) (services.Decision, error) {
	return f.decision, f.peekErr
}

type fakeIdem struct {
	mu   sync.Mutex
	keys map[string]string
}

func (f *fakeIdem) Lookup(_ context.Context, clientID, key string, _ time.Time) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.keys[clientID+"|"+key], nil
}

func (f *fakeIdem) Remember(_ context.Context, clientID, key, requestID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.keys == nil {
		f.keys = map[string]string{}
	}
	if _, exists := f.keys[clientID+"|"+key]; !exists {
		f.keys[clientID+"|"+key] = requestID
	}
	return nil
}

type fakeCelebrations struct {
	services.CelebrationService // real calendar helpers; DB-backed methods are overridden
	records                     []domain.RosterRecord
	err                         error
	activeID                    uint
	active                      *bool
}

func newFakeCelebrations(recs ...domain.RosterRecord) *fakeCelebrations {
	return &fakeCelebrations{CelebrationService: services.CelebrationService{Location: time.UTC}, records: recs}
}

func (f *fakeCelebrations) DueToday(_ context.Context, today time.Time) ([]domain.RosterRecord, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []domain.RosterRecord
	for _, r := range f.records {
		if r.Active && clock.IsDueToday(r.EventDate, today) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeCelebrations) ForMonthDay(_ context.Context, md string) ([]domain.RosterRecord, error) {
	if _, _, err := clock.ParseMonthDay(md); err != nil {
		return nil, services.ErrInvalidDate
	}
	var out []domain.RosterRecord
	for _, r := range f.records {
		if r.Active && r.EventDate == md {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeCelebrations) Roster(_ context.Context, activeOnly bool) ([]domain.RosterRecord, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []domain.RosterRecord
	for _, r := range f.records {
		if !activeOnly || r.Active {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeCelebrations) SetActive(_ context.Context, id uint, active bool) error {
	for _, r := range f.records {
		if r.ID == id {
			f.activeID, f.active = id, &active
			return nil
		}
	}
	return services.ErrRecordNotFound
}

type fakeImporter struct {
	gotName string
	gotBody string
	err     error
}

func (f *fakeImporter) ImportCSV(_ context.Context, filename string, r io.Reader) (*services.ImportResult, error) {
	b, _ := io.ReadAll(r)
	f.gotName, f.gotBody = filename, string(b)
	if f.err != nil {
		return &services.ImportResult{Filename: filename}, f.err
	}
	return &services.ImportResult{Filename: filename, RecordsProcessed: 2, RecordsAdded: 1, RecordsUpdated: 1}, nil
}

func (f *fakeImporter) Imports(_ context.Context, limit int) ([]domain.RosterImport, error) {
	out := make([]domain.RosterImport, 0, limit)
	for i := 0; i < limit && i < 3; i++ {
		out = append(out, domain.RosterImport{ID: uint(i + 1), Filename: "roster.csv", Success: true})
	}
	return out, nil
}

type fakeScheduler struct {
	gotDay  time.Time
	err     error
	enabled bool
}

func (f *fakeScheduler) RunNow(_ context.Context, day time.Time) (services.Summary, error) {
	f.gotDay = day
	if f.err != nil {
		return services.Summary{}, f.err
	}
	return services.Summary{Date: clock.DateKey(day), Due: 1, Attempted: 1, Succeeded: 1}, nil
}

func (f *fakeScheduler) Status() scheduler.Status {
	return scheduler.Status{Enabled: f.enabled, ScheduleTime: "08:00", Timezone: "UTC", Now: testNow}
}

type fakeDeliveries struct{ gotDate string }

func (f *fakeDeliveries) Deliveries(_ context.Context, date string) ([]domain.DeliveryLogEntry, error) {
	f.gotDate = date
	id := "SM001"
	return []domain.DeliveryLogEntry{{ID: 1, RosterRecordID: 1, SentDate: date, Success: true, DeliveryID: &id}}, nil
}

// fixture bundles handlers, fakes and a router mounted like production.
type fixture struct {
	h      *Handlers
	wishes *fakeWishes
	idem   *fakeIdem
	cel    *fakeCelebrations
	imp    *fakeImporter
	sched  *fakeScheduler
	deliv  *fakeDeliveries
	tokens *auth.TokenManager
	r      *gin.Engine
}

func newFixture(recs ...domain.RosterRecord) *fixture {
	f := &fixture{
		wishes: &fakeWishes{},
		idem:   &fakeIdem{},
		cel:    newFakeCelebrations(recs...),
		imp:    &fakeImporter{},
		sched:  &fakeScheduler{enabled: true},
		deliv:  &fakeDeliveries{},
		tokens: auth.NewTokenManager("test-secret", "celebrations", time.Hour),
	}
	f.h = &Handlers{
		Wishes:       f.wishes,
		Idempotency:  f.idem,
		Celebrations: f.cel,
		Roster:       f.imp,
		Scheduler:    f.sched,
		Deliveries:   f.deliv,
		Clock:        clock.NewFake(testNow),
	}

	r := gin.New()
	r.Use(middleware.RequestID(), middleware.Authenticate(f.tokens))
	r.Use(middleware.IdempotencyValidator(middleware.IdempotencyOptions{}, func(ctx context.Context, clientID, key string, now time.Time) (bool, error) {
		id, err := f.idem.Lookup(ctx, clientID, key, now)
		return id != "", err
	}))
	r.GET("/health", f.h.Health)
	r.POST("/wish", f.h.GenerateWish)
	r.GET("/wish/rate-limit-info", f.h.RateLimitInfo)
	r.POST("/wish/:request_id/regenerate", f.h.RegenerateWish)
	r.GET("/roster", f.h.ListRoster)
	r.GET("/celebrations/today", f.h.TodayCelebrations)
	r.GET("/celebrations/:date", f.h.CelebrationsOn)
	r.GET("/scheduler/status", f.h.SchedulerStatus)
	admin := r.Group("", middleware.RequireAdmin())
	admin.POST("/roster/upload", f.h.UploadRoster)
	admin.GET("/roster/imports", f.h.ListRosterImports)
	admin.PATCH("/roster/:id", f.h.UpdateRoster)
	admin.POST("/celebrations/send", f.h.SendCelebrations)
	admin.GET("/celebrations/deliveries", f.h.ListDeliveries)
	f.r = r
	return f
}

func (f *fixture) token(role string) string {
	tok, err := f.tokens.Generate("tester", role)
	if err != nil {
		panic(err)
	}
	return "Bearer " + tok
}

var errBoom = errors.New("boom")
