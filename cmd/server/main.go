package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"chat-server/internal/actions"
	"chat-server/internal/auth"
	"chat-server/internal/config"
	"chat-server/internal/database"
	"chat-server/internal/handlers"
	ws "chat-server/internal/websocket"
	"chat-server/pkg/logger"
)

func main() {
	log := logger.New("chat-server")

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	ctx := context.Background()
	store, err := database.NewPostgresStore(ctx, cfg.DatabaseURL, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer store.Close()

	if err := store.EnsureSchema(ctx); err != nil {
		log.Fatal().Err(err).Msg("failed to ensure database schema")
	}

	authService := auth.NewService(store, []byte(cfg.JWTSecret), cfg.JWTExpiresIn)
	registry := ws.NewRegistry(log)
	acts := actions.New(store, log)
	dispatcher := ws.NewDispatcher(authService, registry, acts, log)

	authHandlers := handlers.NewAuthHandlers(authService, log)
	wsHandlers := handlers.NewWebSocketHandlers(registry, dispatcher, log)

	mux := http.NewServeMux()
	mux.HandleFunc("/user/create", authHandlers.Register)
	mux.HandleFunc("/user/newToken", authHandlers.Login)
	mux.HandleFunc("/ws", wsHandlers.HandleWebSocket)

	server := &http.Server{
		Addr:         cfg.ListenAddr,
		Handler:      corsMiddleware(mux),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	go func() {
		log.Info().Str("addr", cfg.ListenAddr).Msg("server started")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("server shutting down")

	if err := server.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("shutdown error")
	}
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
