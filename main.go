package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	intconfig "travelgateway/internal/config"
	"travelgateway/internal/gateway"
	router "travelgateway/internal/http"
	"travelgateway/internal/http/handlers"
	"travelgateway/internal/repositories"
	"travelgateway/internal/services"
	"travelgateway/internal/session"
	"travelgateway/internal/utils"
)

func main() {
	env, err := intconfig.LoadEnv()
	if err != nil {
		panic(err)
	}
	if env.GinMode != "" {
		gin.SetMode(env.GinMode)
	}

	logger, err := utils.InitLogger(env.GinMode == gin.ReleaseMode)
	if err != nil {
		panic(err)
	}
	defer func() { _ = logger.Sync() }()

	store, err := sessionStore(env)
	if err != nil {
		logger.Fatal("session store", zap.Error(err))
	}
	defer intconfig.CloseDB()

	h := &handlers.Handler{
		API:          gateway.NewBookingAPI(env.APIBaseURL, env.APITimeout, env.LoginRoute),
		Sessions:     session.NewManager(store, env.LoginRoute),
		Pricing:      utils.PricingPolicy{ChildDiscount: env.PricingChildDiscount, TaxRate: env.PricingTaxRate},
		Validator:    services.NewFormValidator(),
		InFlight:     services.NewInFlight(),
		CookieName:   env.SessionCookie,
		SecureCookie: env.SessionSecure,
	}

	r, err := router.NewRouter(env, h)
	if err != nil {
		logger.Fatal("router", zap.Error(err))
	}

	srv := &http.Server{
		Addr:              env.AppAddr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       20 * time.Second,
		WriteTimeout:      env.APITimeout*3 + 10*time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		logger.Info("gateway listening", zap.String("addr", env.AppAddr), zap.String("api", env.APIBaseURL))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("listen", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("shutdown", zap.Error(err))
		return
	}
	logger.Info("server stopped")
}

// sessionStore uses MySQL when DB_DSN is set, memory otherwise.
func sessionStore(env intconfig.Env) (session.Store, error) {
	if env.DBDSN == "" {
		utils.LogEvent("", "main", "session_store", "DB_DSN empty, sessions kept in memory")
		return session.NewMemoryStore(), nil
	}
	key, err := env.SessionKey()
	if err != nil {
		return nil, err
	}
	db, err := intconfig.ConnectDB(env.DBDSN)
	if err != nil {
		return nil, err
	}
	repo := repositories.SessionRepository{DB: db, Key: key}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := repo.EnsureTable(ctx); err != nil {
		return nil, err
	}
	return repo, nil
}
