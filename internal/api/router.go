package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/isdelr/expense-tracker-be/internal/api/handlers"
	ratelimit "github.com/isdelr/expense-tracker-be/internal/api/middleware"
	"github.com/isdelr/expense-tracker-be/internal/auth"
	"github.com/isdelr/expense-tracker-be/internal/services"
	"github.com/isdelr/expense-tracker-be/internal/websocket"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"
	"github.com/rs/zerolog/log"
)

// Options carries the transport settings of the router.
type Options struct {
	ClientURL     string // Allowed CORS and websocket origin
	SecureCookies bool
}

// NewRouter creates and configures a new Chi router.
func NewRouter(
	opts Options,
	authService services.AuthServiceProvider,
	expenseService services.ExpenseServiceProvider,
	hub *websocket.Hub,
	authLimiter *ratelimit.RateLimiter,
) *chi.Mux {
	r := chi.NewRouter()

	// Basic middleware stack
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(hlog.NewHandler(log.Logger))
	r.Use(requestIDLogger)
	r.Use(hlog.AccessHandler(func(r *http.Request, status, size int, duration time.Duration) {
		hlog.FromRequest(r).Info().
			Str("method", r.Method).
			Stringer("url", r.URL).
			Int("status", status).
			Int("size", size).
			Dur("duration", duration).
			Msg("Request handled")
	}))
	r.Use(middleware.Recoverer)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{opts.ClientURL},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Initialize handlers
	userHandler := handlers.NewUserHandler(authService, opts.SecureCookies)
	expenseHandler := handlers.NewExpenseHandler(expenseService)
	wsHandler := handlers.NewWebSocketHandler(hub, opts.ClientURL)
	requireAuth := auth.Middleware(authService, handlers.WriteError)

	r.Get("/health", health)
	r.Get("/", func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte("Expense tracker API"))
	})

	// API versioning
	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", health)

		r.Route("/user", func(r chi.Router) {
			r.Group(func(r chi.Router) {
				if authLimiter != nil {
					r.Use(authLimiter.Limit)
				}
				r.Post("/signup", userHandler.Signup)
				r.Post("/login", userHandler.Login)
			})
			r.Post("/logout", userHandler.Logout)
			r.With(requireAuth).Get("/me", userHandler.Me)
		})

		r.Route("/expense", func(r chi.Router) {
			r.Use(requireAuth)
			r.Get("/all", expenseHandler.GetAll)
			r.Post("/add", expenseHandler.Create)
			r.Put("/update/{id}", expenseHandler.Update)
			r.Delete("/delete/{id}", expenseHandler.Delete)
			r.Get("/analytics", expenseHandler.Analytics)
		})

		// WebSocket connection endpoint
		r.With(requireAuth).Get("/ws", wsHandler.Serve)
	})

	return r
}

// requestIDLogger adds chi's request id to the request-scoped logger.
func requestIDLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if id := middleware.GetReqID(r.Context()); id != "" {
			hlog.FromRequest(r).UpdateContext(func(c zerolog.Context) zerolog.Context {
				return c.Str("request_id", id)
			})
		}
		next.ServeHTTP(w, r)
	})
}

func health(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}
