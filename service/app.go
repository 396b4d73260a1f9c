package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"

	"inkwell/app/auth"
	"inkwell/app/config"
	"inkwell/app/logger"
	"inkwell/app/notify"
	"inkwell/app/repositories"
	"inkwell/app/routes"
	"inkwell/app/services"
	"inkwell/app/views"

	"go.uber.org/zap"
)

// App is a fully wired blog ready to serve.
type App struct {
	Handler http.Handler
	Store   *repositories.Store

	closers []func() error
}

// Close releases the store and any shared clients.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		errs = append(errs, a.closers[i]())
	}
	return errors.Join(errs...)
}

// BuildApp opens the store and wires services, controllers and routes.
func BuildApp(ctx context.Context, cfg *config.Config, log *zap.Logger) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	store, bs, err := openStore(cfg, log)
	if err != nil {
		return nil, err
	}
	app := &App{Store: store, closers: []func() error{store.Close}}

	revoker, err := newRevoker(ctx, cfg, bs, log)
	if err != nil {
		app.Close()
		return nil, err
	}
	if c, ok := revoker.(interface{ Close() error }); ok {
		app.closers = append(app.closers, c.Close)
	}

	var notifier notify.Notifier = notify.Noop{}
	if cfg.MailEnabled() {
		notifier = notify.NewMailer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword, cfg.MailFrom, cfg.BaseURL)
		log.Info("moderation notices enabled", zap.String("smtp_host", cfg.SMTPHost))
	}

	renderer, err := views.New()
	if err != nil {
		app.Close()
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}

	comments := services.NewCommentService(store, notifier, log, nil)
	// runs first on Close so queued notices go out before the store shuts
	app.closers = append(app.closers, func() error { comments.Wait(); return nil })

	issuer := auth.NewIssuer(cfg.JWTSecret, cfg.SessionTTL, nil)
	app.Handler = routes.SetupRoutes(routes.Dependencies{
		Posts:                services.NewPostService(store.Posts, store.Comments, nil),
		Comments:             comments,
		Auth:                 services.NewAuthService(store.Users, issuer, revoker),
		Views:                renderer,
		Log:                  log,
		CookieSecure:         cfg.CookieSecure,
		CommentRatePerMinute: cfg.CommentRatePerMinute,
	})
	return app, nil
}

// redisRevoker closes its client with the app.
type redisRevoker struct {
	*auth.RedisRevoker
	close func() error
}

func (r redisRevoker) Close() error { return r.close() }

// newRevoker prefers Redis, then the Badger store, then process memory.
func newRevoker(ctx context.Context, cfg *config.Config, bs *repositories.BadgerStore, log *zap.Logger) (auth.Revoker, error) {
	switch {
	case cfg.RedisAddr != "":
		client, err := auth.NewRedisClient(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			return nil, err
		}
		log.Info("token revocation in redis", zap.String("addr", cfg.RedisAddr))
		return redisRevoker{RedisRevoker: auth.NewRedisRevoker(client), close: client.Close}, nil
	case bs != nil:
		return auth.NewBadgerRevoker(bs.DB), nil
	default:
		log.Warn("REDIS_ADDR not set, revoked sessions are kept in memory only")
		return auth.NewMemoryRevoker(), nil
	}
}

// serve runs the HTTP server until ctx is cancelled or a signal arrives.
func (r *Runner) serve(ctx context.Context) int {
	log, err := logger.New(r.cfg)
	if err != nil {
		r.printf("Failed to create logger: %v\n", err)
		return 1
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, err := BuildApp(ctx, r.cfg, log)
	if err != nil {
		log.Error("failed to start", zap.Error(err))
		return 1
	}
	defer func() {
		if err := app.Close(); err != nil {
			log.Warn("failed to close store", zap.Error(err))
		}
	}()

	log.Info("starting blog server",
		zap.String("addr", r.cfg.Addr()),
		zap.String("store", r.cfg.StoreDriver),
		zap.String("version", Version))
	if err := routes.StartServer(ctx, r.cfg.Addr(), app.Handler, r.cfg.ShutdownTimeout, log); err != nil {
		log.Error("server stopped", zap.Error(err))
		return 1
	}
	log.Info("server stopped")
	return 0
}
