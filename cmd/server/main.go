package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"teacher2student/internal/api"
	"teacher2student/internal/app/service"
	"teacher2student/internal/common/security"
	"teacher2student/internal/domain/repository"
	"teacher2student/internal/platform/cache"
	"teacher2student/internal/platform/config"
	"teacher2student/internal/platform/database"
)

func main() {
	// 1. Load Configuration
	config.Load()
	log.Println("Configuration loaded")

	// 2. Initialize JWT
	security.InitJWT()
	log.Println("JWT initialized")

	// 3. Initialize Database
	database.Connect()
	defer database.Close()

	// 4. Initialize Redis (token revocation store)
	cache.ConnectRedis()
	defer cache.CloseRedis()
	tokenStore := cache.NewRedisTokenStore(cache.RDB)

	// 5. Initialize Repositories
	userRepo := repository.NewPgUserRepository(database.DB)
	homeworkRepo := repository.NewPgHomeworkRepository(database.DB)
	answerRepo := repository.NewPgAnswerRepository(database.DB)

	// 6. Initialize Services
	authService := service.NewAuthService(userRepo, tokenStore)
	homeworkService := service.NewHomeworkService(homeworkRepo, userRepo, answerRepo)
	answerService := service.NewAnswerService(answerRepo, homeworkRepo, userRepo)

	// 7. Initialize Router & HTTP Server
	router := api.NewRouter(authService, homeworkService, answerService, tokenStore)

	server := &http.Server{
		Addr:         ":" + config.AppConfig.APIPort,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// 8. Graceful Shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		log.Printf("Server starting on port %s", config.AppConfig.APIPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Could not listen on %s: %v\n", config.AppConfig.APIPort, err)
		}
	}()

	<-stop // Wait for interrupt signal

	log.Println("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("Server shutdown failed: %v", err)
	}

	log.Println("Server stopped gracefully")
}
