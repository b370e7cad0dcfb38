package main

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"groupify/internal/auth"
	"groupify/internal/parser"
	"groupify/internal/server"
	"groupify/internal/service"
	"groupify/internal/storage/sqlite"
	"groupify/pkg/logging"
)

const defaultPort = "8080"

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func main() {
	logger := logging.SetupServer()

	dbPath := getEnv("DB_PATH", "./data/groupify.db")
	port := getEnv("PORT", defaultPort)
	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		slog.Error("JWT_SECRET is required")
		os.Exit(1)
	}

	store, err := sqlite.New(dbPath)
	if err != nil {
		slog.Error("Failed to initialize storage", "error", err)
		os.Exit(1)
	}
	defer store.Close()
	slog.Info("Storage initialized", "database", dbPath)

	jwtManager := auth.NewJWTManager(jwtSecret, 24*time.Hour)
	authenticator := auth.NewPasswordAuthenticator(store)

	p := parser.New(parser.DefaultConfig(), logger)
	receiptSvc := service.NewReceiptService(store, p)
	groupSvc := service.NewGroupService(store)
	authSvc := service.NewAuthService(authenticator, jwtManager)

	srv := server.New(receiptSvc, groupSvc, authSvc, jwtManager, logger)

	// h2c allows HTTP/2 without TLS for clients behind a local proxy.
	handler := h2c.NewHandler(srv.Handler(), &http2.Server{})

	addr := ":" + port
	slog.Info("Server starting", "address", addr, "url", fmt.Sprintf("http://localhost%s", addr))
	if err := http.ListenAndServe(addr, handler); err != nil {
		slog.Error("Server failed", "error", err)
		os.Exit(1)
	}
}
