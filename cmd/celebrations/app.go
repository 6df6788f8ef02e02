package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/tbourn/go-celebrations-backend/internal/ai"
	"github.com/tbourn/go-celebrations-backend/internal/auth"
	"github.com/tbourn/go-celebrations-backend/internal/clock"
	"github.com/tbourn/go-celebrations-backend/internal/config"
	"github.com/tbourn/go-celebrations-backend/internal/http/handlers"
	"github.com/tbourn/go-celebrations-backend/internal/messaging"
	"github.com/tbourn/go-celebrations-backend/internal/observability"
	"github.com/tbourn/go-celebrations-backend/internal/repo"
	"github.com/tbourn/go-celebrations-backend/internal/scheduler"
	"github.com/tbourn/go-celebrations-backend/internal/services"
)

// app holds every long-lived collaborator built from one Config.
type app struct {
	cfg config.Config
	db  *gorm.DB

	audit        *services.AuditRecorder
	limiter      *services.RateLimiter
	wishes       *services.WishService
	celebrations *services.CelebrationService
	roster       *services.RosterService
	idempotency  *services.IdempotencyStore
	dispatcher   *services.Dispatcher
	scheduler    *scheduler.Scheduler
	tokens       *auth.TokenManager

	closers []func() error
}

// newApp opens the store, migrates it and wires the services. Close must
// be called even when newApp fails halfway.
func newApp(ctx context.Context, cfg config.Config) (*app, error) {
	a := &app{cfg: cfg}

	db, err := repo.Open(repo.Options{
		Driver:  cfg.DB.Driver,
		Path:    cfg.DB.Path,
		DSN:     cfg.DB.DSN,
		Tracing: cfg.OTEL.Enabled,
	})
	if err != nil {
		return a, fmt.Errorf("open database: %w", err)
	}
	a.db = db
	a.closers = append(a.closers, func() error {
		sqlDB, err := db.DB()
		if err != nil {
			return err
		}
		return sqlDB.Close()
	})
	if err := repo.AutoMigrate(db); err != nil {
		return a, fmt.Errorf("migrate: %w", err)
	}

	gen, err := newGenerator(ctx, cfg.Generation)
	if err != nil {
		return a, err
	}
	sender, err := a.newSender(ctx)
	if err != nil {
		return a, err
	}
	locker, err := a.newLocker(ctx)
	if err != nil {
		return a, err
	}

	loc := cfg.Location()
	a.audit = services.NewAuditRecorder(db, cfg.AuditHashKey)
	a.audit.Timeout = cfg.DB.Timeout
	a.limiter = services.NewRateLimiter(db, cfg.RateLimit.MaxRequests, cfg.RateLimit.Window)
	a.limiter.Timeout = cfg.DB.Timeout
	a.wishes = services.NewWishService(a.limiter, a.audit, gen, cfg.Generation.TemplateFallback)
	a.celebrations = services.NewCelebrationService(db, loc)
	a.roster = services.NewRosterService(db)
	a.idempotency = services.NewIdempotencyStore(db, a.audit.HashClient, cfg.IdempotencyTTL)
	a.idempotency.Timeout = cfg.DB.Timeout
	a.dispatcher = &services.Dispatcher{
		DB:                db,
		Matcher:           a.celebrations,
		Gen:               gen,
		Sender:            sender,
		Recipient:         cfg.Messaging.Recipient,
		Locker:            locker,
		MaxAttemptsPerDay: cfg.Dispatch.MaxAttemptsPerDay,
		SendTimeout:       cfg.Messaging.Timeout,
		TemplateFallback:  cfg.Generation.TemplateFallback,
		Timeout:           cfg.DB.Timeout,
		ClaimTTL:          dispatchClaimTTL(cfg),
	}

	a.scheduler, err = scheduler.New(a.dispatcher, clock.RealClock{}, loc, cfg.Schedule.Time)
	if err != nil {
		return a, err
	}
	a.scheduler.Enabled = cfg.Schedule.Enabled
	a.scheduler.Housekeeper = a.housekeep

	a.tokens = auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.Issuer, cfg.Auth.TokenTTL)
	return a, nil
}

// housekeep drops rate-limit rows idle for longer than the prune horizon
// and expired idempotency keys.
func (a *app) housekeep(ctx context.Context, now time.Time) error {
	pruned, err1 := a.limiter.PruneStale(ctx, now, a.cfg.RateLimit.StaleAfter)
	purged, err2 := a.idempotency.Purge(ctx, now)
	log.Info().Int64("rate_limit_rows", pruned).Int64("idempotency_keys", purged).Msg("housekeeping done")
	return errors.Join(err1, err2)
}

func (a *app) handlers() *handlers.Handlers {
	return &handlers.Handlers{
		Wishes:       a.wishes,
		Idempotency:  a.idempotency,
		Celebrations: a.celebrations,
		Roster:       a.roster,
		Scheduler:    a.scheduler,
		Deliveries:   a.dispatcher,
		Ping:         func(ctx context.Context) error { return repo.Ping(ctx, a.db) },
		Clock:        clock.RealClock{},
	}
}

// Close releases resources in reverse acquisition order.
func (a *app) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		errs = append(errs, a.closers[i]())
	}
	return errors.Join(errs...)
}

// newRegistry registers every generation provider this service knows.
// Hosted providers without an API key fail at construction and are skipped
// by the chain.
func newRegistry(cfg config.GenerationConfig) *ai.Registry {
	reg := ai.NewRegistry()
	hosted := func(name, baseURL, key, defModel string) ai.ProviderFactory {
		return func(_ context.Context, model string) (ai.Provider, error) {
			if key == "" {
				return nil, fmt.Errorf("%s: %w", name, ai.ErrMissingAPIKey)
			}
			if model == "" {
				model = defModel
			}
			p := ai.NewOpenAICompatProvider(name, baseURL, key, model, cfg.Timeout)
			if name == "openrouter" {
				p.AppName = "celebrations-backend"
			}
			return p, nil
		}
	}
	reg.Register("groq", hosted("groq", ai.GroqBaseURL, cfg.GroqAPIKey, cfg.GroqModel))
	reg.Register("openai", hosted("openai", ai.OpenAIBaseURL, cfg.OpenAIAPIKey, cfg.OpenAIModel))
	reg.Register("openrouter", hosted("openrouter", ai.OpenRouterBaseURL, cfg.OpenRouterAPIKey, cfg.OpenRouterModel))
	reg.Register("ollama", func(_ context.Context, model string) (ai.Provider, error) {
		if model == "" {
			model = cfg.OllamaModel
		}
		return ai.NewOllamaProvider(cfg.OllamaURL, model, cfg.Timeout), nil
	})
	return reg
}

func newGenerator(ctx context.Context, cfg config.GenerationConfig) (*ai.Chain, error) {
	chain, skipped, err := newRegistry(cfg).Chain(ctx, cfg.Providers, cfg.Timeout)
	if err != nil {
		return nil, err
	}
	for name, why := range skipped {
		log.Warn().Err(why).Str("provider", name).Msg("generation provider disabled")
	}
	if len(chain.Providers) == 0 && !cfg.TemplateFallback {
		return nil, ai.ErrNoProviders
	}
	chain.Observe = observability.ObserveProvider
	log.Info().Strs("providers", chain.Names()).Bool("template_fallback", cfg.TemplateFallback).Msg("generation chain ready")
	return chain, nil
}

func (a *app) newSender(ctx context.Context) (messaging.Sender, error) {
	m := a.cfg.Messaging
	switch m.Provider {
	case messaging.ProviderTwilio:
		if m.TwilioAccountSID == "" || m.TwilioAuthToken == "" || m.TwilioFrom == "" {
			return nil, errors.New("twilio messaging needs TWILIO_ACCOUNT_SID, TWILIO_AUTH_TOKEN and WHATSAPP_FROM")
		}
		return messaging.NewTwilioSender(m.TwilioAccountSID, m.TwilioAuthToken, m.TwilioFrom, m.Timeout), nil
	case messaging.ProviderSES:
		return messaging.NewSESSender(ctx, m.SESRegion, m.SESFrom, m.SESSubject)
	case messaging.ProviderAMQP:
		s, err := messaging.NewAMQPSender(m.AMQPURL, m.AMQPQueue)
		if err != nil {
			return nil, fmt.Errorf("amqp: %w", err)
		}
		a.closers = append(a.closers, s.Close)
		return s, nil
	default:
		return messaging.LogSender{}, nil
	}
}

// dispatchClaimTTL outlasts the slowest possible attempt on one record:
// every provider timing out, then the send, then a minute of slack.
func dispatchClaimTTL(cfg config.Config) time.Duration {
	ttl := time.Duration(len(cfg.Generation.Providers))*cfg.Generation.Timeout +
		cfg.Messaging.Timeout + 4*cfg.DB.Timeout + time.Minute
	if ttl < cfg.Dispatch.LockTTL {
		ttl = cfg.Dispatch.LockTTL
	}
	return ttl
}

func (a *app) newLocker(ctx context.Context) (services.Locker, error) {
	if a.cfg.Dispatch.LockBackend != "redis" {
		return services.NewMemoryLocker(), nil
	}
	client := redis.NewClient(&redis.Options{
		Addr:     a.cfg.Redis.Addr,
		Password: a.cfg.Redis.Password,
		DB:       a.cfg.Redis.DB,
	})
	a.closers = append(a.closers, client.Close)

	pctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pctx).Err(); err != nil {
		return nil, fmt.Errorf("redis: %w", err)
	}
	return services.NewRedisLocker(client, a.cfg.Dispatch.LockTTL), nil
}
