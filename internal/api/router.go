package api

import (
	"net/http"
	"time"

	"teacher2student/internal/api/handler"
	"teacher2student/internal/api/middleware"
	"teacher2student/internal/app/service"
	"teacher2student/internal/common/security"
	"teacher2student/internal/platform/cache"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/jwtauth/v5"
)

func NewRouter(
	authService *service.AuthService,
	homeworkService *service.HomeworkService,
	answerService *service.AnswerService,
	tokenStore cache.TokenStore,
) http.Handler {
	r := chi.NewRouter()

	// Base Middlewares
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Timeout(60 * time.Second))

	// Verifies the Authorization: Bearer token when present and puts the
	// claims in the context; rejection happens later in Authenticator.
	r.Use(jwtauth.Verifier(security.TokenAuth))

	// Public health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})

	// API v1 Routes
	r.Route("/api/v1", func(v1 chi.Router) {
		// Auth routes (signup/login public; logout/profile authenticated)
		authHandler := handler.NewAuthHandler(authService, tokenStore)
		v1.Route("/auth", authHandler.RegisterRoutes)

		// Homework and answer routes (all authenticated, role-gated per group)
		homeworkHandler := handler.NewHomeworkHandler(homeworkService)
		answerHandler := handler.NewAnswerHandler(answerService)
		v1.Route("/homeworks", func(hw chi.Router) {
			hw.Use(middleware.Authenticator(tokenStore))
			homeworkHandler.RegisterRoutes(hw)
			answerHandler.RegisterRoutes(hw)
		})
	})

	return r
}
