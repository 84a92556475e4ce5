package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	docs "github.com/Saatvik786/TaskSphere/docs"
	"github.com/Saatvik786/TaskSphere/internal/auth"
	"github.com/Saatvik786/TaskSphere/internal/config"
	api "github.com/Saatvik786/TaskSphere/internal/http"
	"github.com/Saatvik786/TaskSphere/internal/log"
	"github.com/Saatvik786/TaskSphere/internal/metrics"
	"github.com/Saatvik786/TaskSphere/internal/oauth"
	"github.com/Saatvik786/TaskSphere/internal/queue"
	"github.com/Saatvik786/TaskSphere/internal/repo"
	"github.com/Saatvik786/TaskSphere/internal/security"
	"github.com/Saatvik786/TaskSphere/internal/tasks"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gopkg.in/DataDog/dd-trace-go.v1/ddtrace/tracer"
)

// store is what the server needs from either the Mongo or the in-memory backend.
type store interface {
	auth.Store
	tasks.Store
	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}

// @title TaskSphere API
// @version 1.0.0
// @description Accounts (email/password and Google sign-in) and per-user task lists.
// @schemes http https
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	cfg, err := config.Load()
	if err != nil {
		// the logger is not up yet
		os.Stderr.WriteString("config: " + err.Error() + "\n")
		os.Exit(1)
	}

	l, err := log.Init(cfg.IsProduction())
	if err != nil {
		os.Stderr.WriteString("logger: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer l.Sync()

	if cfg.DDTraceEnabled {
		tracer.Start(tracer.WithService("tasksphere"), tracer.WithEnv(cfg.Env))
		defer tracer.Stop()
	}
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	metrics.MustRegister()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	st, err := openStore(ctx, cfg)
	if err != nil {
		l.Fatal("store", zap.Error(err))
	}
	defer st.Close(context.Background())

	tokens, err := tokenService(cfg)
	if err != nil {
		l.Fatal("signing keys", zap.Error(err))
	}

	pub := queue.NewNoop()
	if cfg.RabbitURL != "" {
		rp, err := queue.NewRabbit(cfg.RabbitURL, cfg.RabbitExchange)
		if err != nil {
			l.Fatal("rabbit publisher", zap.Error(err))
		}
		pub = rp
	}
	defer pub.Close()

	authSvc := auth.NewService(st, tokens, security.NewHasher(cfg.BcryptCost))
	h := api.NewHandler(authSvc, tasks.NewService(st), tokens, st, pub)
	h.ClientURL = cfg.ClientURL
	h.SecureCookies = cfg.IsProduction()
	h.ExposeErrDetail = cfg.IsDevelopment()
	h.Log = l
	h.State = oauth.NewStateSigner(cfg.OAuthStateSecret, cfg.OAuthStateTTL)

	if cfg.GoogleConfigured() {
		g, err := oauth.NewGoogle(context.Background(), cfg.GoogleClientID, cfg.GoogleClientSecret, cfg.GoogleCallbackURL)
		if err != nil {
			l.Fatal("google oauth", zap.Error(err))
		}
		h.Google = g
	} else {
		l.Warn("google oauth not configured; /api/auth/google will answer 500")
	}

	if cfg.RedisAddr != "" {
		rds := repo.NewRedis(cfg.RedisAddr)
		defer rds.Close()
		if err := rds.Ping(ctx); err != nil {
			l.Warn("redis unreachable, limiter will fail open until it is back", zap.Error(err))
		}
		h.Limiter = &api.RedisLimiter{C: rds.C, Rate: cfg.RateLimitPerMin, Period: time.Minute, Prefix: "rl:"}
	} else {
		h.Limiter = api.NewMemoryLimiter(cfg.RateLimitPerMin, time.Minute)
	}

	docs.SwaggerInfo.BasePath = "/"
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           api.NewRouter(h, cfg.AllowedOrigins()),
		ReadHeaderTimeout: 10 * time.Second,
	}

	srvErr := make(chan error, 1)
	go func() { srvErr <- srv.ListenAndServe() }()
	l.Info("tasksphere listening", zap.String("port", cfg.Port), zap.String("env", cfg.Env))

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)

	select {
	case s := <-sig:
		l.Info("shutting down", zap.String("signal", s.String()))
	case err := <-srvErr:
		if !errors.Is(err, http.ErrServerClosed) {
			l.Error("server error", zap.Error(err))
		}
	}

	sctx, scancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer scancel()
	if err := srv.Shutdown(sctx); err != nil {
		l.Error("shutdown", zap.Error(err))
	}
}

func openStore(ctx context.Context, cfg config.Config) (store, error) {
	if strings.HasPrefix(cfg.MongoURI, "memory://") {
		log.L().Warn("using in-memory store; data is lost on exit")
		return repo.NewMemoryStore(), nil
	}
	s, err := repo.NewStore(ctx, cfg.MongoURI, cfg.MongoDB)
	if err != nil {
		return nil, err
	}
	if err := s.EnsureIndexes(ctx); err != nil {
		_ = s.Close(context.Background())
		return nil, err
	}
	return s, nil
}

func tokenService(cfg config.Config) (*security.TokenService, error) {
	if cfg.JWTPrivateKeyPath == "" {
		return security.NewTokenService(cfg.JWTSecret, cfg.JWTExpiresIn), nil
	}
	var next []security.KeyFile
	if cfg.JWTNextKeyPath != "" {
		next = append(next, security.KeyFile{Kid: cfg.JWTNextKeyID, Path: cfg.JWTNextKeyPath})
	}
	km, err := security.LoadKeys(security.KeyFile{Kid: cfg.JWTKeyID, Path: cfg.JWTPrivateKeyPath}, next...)
	if err != nil {
		return nil, err
	}
	return security.NewTokenServiceRS256(km, cfg.JWTExpiresIn), nil
}
