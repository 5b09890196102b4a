// Package http is the transport layer: routing, middleware, request
// validation, and the uniform response envelope. All error paths
// funnel through a single ErrorWriter.
package http

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"

	"github.com/lionscafe/api/adapters/auth"
	"github.com/lionscafe/api/adapters/metrics"
	"github.com/lionscafe/api/app"
	"github.com/lionscafe/api/domain/user"
)

// Role groups used across routes.
var (
	staffRoles   = []user.Role{user.RoleStaff, user.RoleManager, user.RoleAdmin}
	managerRoles = []user.Role{user.RoleManager, user.RoleAdmin}
	adminRoles   = []user.Role{user.RoleAdmin}
)

// Server holds the services and cross-cutting pieces the routes need.
type Server struct {
	auth         *app.AuthService
	menu         *app.MenuService
	orders       *app.OrderService
	reservations *app.ReservationService
	users        *app.UserService

	mw      *Middleware
	errors  *ErrorWriter
	metrics *metrics.Collector
	logger  zerolog.Logger

	limiter       *RateLimiter
	strictLimiter *RateLimiter
	metricsPath   string // empty disables the endpoint
	frontendURL   string // empty disables CORS
}

// Options wires a Server.
type Options struct {
	Auth         *app.AuthService
	Menu         *app.MenuService
	Orders       *app.OrderService
	Reservations *app.ReservationService
	Users        *app.UserService

	Tokens  *auth.TokenService
	Errors  *ErrorWriter
	Metrics *metrics.Collector
	Logger  zerolog.Logger

	Limiter       *RateLimiter // nil disables the default limiter
	StrictLimiter *RateLimiter // nil disables the auth limiter
	MetricsPath   string
	FrontendURL   string
}

func NewServer(opts Options) *Server {
	return &Server{
		auth:          opts.Auth,
		menu:          opts.Menu,
		orders:        opts.Orders,
		reservations:  opts.Reservations,
		users:         opts.Users,
		mw:            NewMiddleware(opts.Tokens, opts.Errors, opts.Metrics, opts.Logger),
		errors:        opts.Errors,
		metrics:       opts.Metrics,
		logger:        opts.Logger,
		limiter:       opts.Limiter,
		strictLimiter: opts.StrictLimiter,
		metricsPath:   opts.MetricsPath,
		frontendURL:   opts.FrontendURL,
	}
}

// instrument records request counts and latency against the route
// pattern, not the raw path, to keep label cardinality bounded.
func (s *Server) instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		s.metrics.RequestsInFlight.Inc()
		defer s.metrics.RequestsInFlight.Dec()

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		pattern := chi.RouteContext(r.Context()).RoutePattern()
		if pattern == "" {
			pattern = "unmatched"
		}
		status := strconv.Itoa(ww.Status())
		s.metrics.RequestsTotal.WithLabelValues(r.Method, pattern, status).Inc()
		s.metrics.RequestDuration.WithLabelValues(r.Method, pattern, status).
			Observe(time.Since(start).Seconds())
	})
}

// Router builds the full route tree.
func (s *Server) Router() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	if s.frontendURL != "" {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   []string{s.frontendURL},
			AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
			AllowCredentials: true,
			MaxAge:           300,
		}))
	}
	r.Use(s.instrument)
	if s.limiter != nil {
		r.Use(s.limiter.Middleware)
	}

	r.Get("/health", s.handleHealth)
	if s.metricsPath != "" {
		r.Method(http.MethodGet, s.metricsPath, s.metrics.Handler())
	}

	r.Route("/api/auth", func(r chi.Router) {
		if s.strictLimiter != nil {
			r.Use(s.strictLimiter.Middleware)
		}
		r.With(Validate(s.errors, registerSchema, LocationBody)).
			Post("/register", s.handleRegister)
		r.With(Validate(s.errors, loginSchema, LocationBody)).
			Post("/login", s.handleLogin)
		r.With(Validate(s.errors, refreshSchema, LocationBody)).
			Post("/refresh", s.handleRefresh)
		r.With(Validate(s.errors, forgotPasswordSchema, LocationBody)).
			Post("/forgot-password", s.handleForgotPassword)
		r.With(Validate(s.errors, resetPasswordSchema, LocationBody)).
			Post("/reset-password", s.handleResetPassword)
		r.With(Validate(s.errors, forgotPasswordSchema, LocationBody)).
			Post("/resend-verification", s.handleResendVerification)
		r.With(Validate(s.errors, verifyEmailSchema, LocationQuery)).
			Get("/verify-email", s.handleVerifyEmail)
	})

	r.Route("/api/menu", func(r chi.Router) {
		r.With(s.mw.OptionalAuthenticate).Get("/categories", s.handleListCategories)
		r.Get("/categories/{id}", s.handleGetCategory)
		r.Get("/items", s.handleListItems)
		r.Get("/items/{id}", s.handleGetItem)
		r.Get("/featured", s.handleListFeatured)

		r.Group(func(r chi.Router) {
			r.Use(s.mw.Authenticate)
			r.With(s.mw.RequireRole(managerRoles...), Validate(s.errors, categorySchema, LocationBody)).
				Post("/categories", s.handleCreateCategory)
			r.With(s.mw.RequireRole(managerRoles...), Validate(s.errors, categorySchema, LocationBody)).
				Put("/categories/{id}", s.handleUpdateCategory)
			r.With(s.mw.RequireRole(managerRoles...)).
				Delete("/categories/{id}", s.handleDeleteCategory)

			r.With(s.mw.RequireRole(managerRoles...), Validate(s.errors, menuItemSchema, LocationBody)).
				Post("/items", s.handleCreateItem)
			r.With(s.mw.RequireRole(managerRoles...), Validate(s.errors, menuItemSchema, LocationBody)).
				Put("/items/{id}", s.handleUpdateItem)
			r.With(s.mw.RequireRole(staffRoles...), Validate(s.errors, itemAvailabilitySchema, LocationBody)).
				Patch("/items/{id}", s.handleItemAvailability)
			r.With(s.mw.RequireRole(managerRoles...)).
				Delete("/items/{id}", s.handleDeleteItem)
		})
	})

	r.Route("/api/orders", func(r chi.Router) {
		r.Use(s.mw.Authenticate)
		r.Get("/", s.handleListOrders)
		r.With(Validate(s.errors, orderSchema, LocationBody)).
			Post("/", s.handleCreateOrder)
		r.With(s.mw.RequireOwnership("userId")).
			Get("/user/{userId}", s.handleListUserOrders)
		r.Get("/{id}", s.handleGetOrder)
		r.With(s.mw.RequireRole(staffRoles...), Validate(s.errors, orderStatusSchema, LocationBody)).
			Patch("/{id}/status", s.handleOrderStatus)
		r.Delete("/{id}", s.handleCancelOrder)
	})

	r.Route("/api/reservations", func(r chi.Router) {
		r.Use(s.mw.Authenticate)
		r.Get("/", s.handleListReservations)
		r.With(Validate(s.errors, reservationSchema, LocationBody)).
			Post("/", s.handleCreateReservation)
		r.Get("/{id}", s.handleGetReservation)
		r.With(Validate(s.errors, reservationUpdateSchema, LocationBody)).
			Put("/{id}", s.handleUpdateReservation)
		r.Delete("/{id}", s.handleCancelReservation)
		r.With(s.mw.RequireRole(staffRoles...), Validate(s.errors, reservationStatusSchema, LocationBody)).
			Patch("/{id}/status", s.handleReservationStatus)
	})

	r.Route("/api/tables", func(r chi.Router) {
		r.Get("/available", s.handleAvailableTables)
		r.Group(func(r chi.Router) {
			r.Use(s.mw.Authenticate)
			r.With(s.mw.RequireRole(staffRoles...)).Get("/", s.handleListTables)
			r.With(s.mw.RequireRole(managerRoles...), Validate(s.errors, tableSchema, LocationBody)).
				Post("/", s.handleCreateTable)
			r.With(s.mw.RequireRole(staffRoles...), Validate(s.errors, tableStatusSchema, LocationBody)).
				Patch("/{id}/status", s.handleTableStatus)
		})
	})

	r.Route("/api/users", func(r chi.Router) {
		r.Use(s.mw.Authenticate)
		r.Get("/profile", s.handleGetProfile)
		r.With(Validate(s.errors, profileSchema, LocationBody)).
			Put("/profile", s.handleUpdateProfile)
		r.With(Validate(s.errors, passwordChangeSchema, LocationBody)).
			Put("/password", s.handleChangePassword)

		r.Group(func(r chi.Router) {
			r.Use(s.mw.RequireRole(adminRoles...))
			r.Get("/", s.handleListUsers)
			r.Get("/{id}", s.handleGetUser)
			r.With(Validate(s.errors, roleSchema, LocationBody)).
				Patch("/{id}/role", s.handleSetUserRole)
			r.With(Validate(s.errors, activeSchema, LocationBody)).
				Patch("/{id}/status", s.handleSetUserActive)
		})
	})

	r.NotFound(func(w http.ResponseWriter, req *http.Request) {
		s.errors.Write(w, req, notFoundRoute())
	})

	return r
}
