package routes

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/angelmondragon/pos-backend/api/controllers"
	"github.com/angelmondragon/pos-backend/api/middleware"
	"github.com/angelmondragon/pos-backend/internal/auth"
	"github.com/angelmondragon/pos-backend/internal/products"
	"github.com/angelmondragon/pos-backend/internal/reports"
	"github.com/angelmondragon/pos-backend/internal/sales"
	"github.com/angelmondragon/pos-backend/internal/users"
	"github.com/angelmondragon/pos-backend/pkg/auth/session"
	"github.com/angelmondragon/pos-backend/pkg/config"
	"github.com/angelmondragon/pos-backend/pkg/enums"
	"github.com/angelmondragon/pos-backend/pkg/logger"
)

type rateLimitStore interface {
	FixedWindowAllow(ctx context.Context, scope string, limit int64, window time.Duration) (bool, int64, error)
}

type redisStore interface {
	rateLimitStore
	middleware.IdempotencyStore
	controllers.Pinger
}

// Params bundles everything the router mounts. Redis may be nil, in which case
// rate limiting and idempotency replay are skipped.
type Params struct {
	Config   *config.Config
	Logger   *logger.Logger
	DB       controllers.Pinger
	Redis    redisStore
	Sessions session.AccessSessionChecker
	Metrics  prometheus.Gatherer

	Auth     auth.Service
	Users    users.Service
	Products products.Service
	Sales    sales.Service
	Reports  reports.Service
}

func NewRouter(p Params) http.Handler {
	cfg, logg := p.Config, p.Logger
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.CORS),
	)

	var limiter rateLimitStore
	var idempotency middleware.IdempotencyStore
	deps := map[string]controllers.Pinger{"postgres": p.DB}
	if p.Redis != nil {
		limiter = p.Redis
		idempotency = p.Redis
		deps["redis"] = p.Redis
	}

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
		cfg.AuthRateLimit.LoginEmailLimit,
	)
	registerPolicy := middleware.NewAuthRateLimitPolicy(
		"register",
		cfg.AuthRateLimit.RegisterWindow,
		cfg.AuthRateLimit.RegisterIPLimit,
		cfg.AuthRateLimit.RegisterEmailLimit,
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, deps))
	})
	if p.Metrics != nil {
		r.Handle("/metrics", promhttp.HandlerFor(p.Metrics, promhttp.HandlerOpts{}))
	}

	authenticate := middleware.Auth(cfg.JWT, p.Sessions, logg)
	adminOnly := middleware.RequireRole(logg, enums.UserRoleAdmin)

	r.Route("/api/users", func(r chi.Router) {
		r.With(middleware.AuthRateLimit(registerPolicy, limiter, logg)).Post("/register", controllers.AuthRegister(p.Auth, logg))
		r.With(middleware.AuthRateLimit(loginPolicy, limiter, logg)).Post("/login", controllers.AuthLogin(p.Auth, cfg.App, logg))
		r.Post("/logout", controllers.AuthLogout(p.Auth, cfg.JWT, cfg.App, logg))
		r.With(
			middleware.AuthRateLimit(loginPolicy, limiter, logg),
			middleware.OptionalAuth(cfg.JWT, p.Sessions, logg),
		).Post("/temp-password", controllers.AuthTempPassword(p.Auth, logg))

		r.Group(func(r chi.Router) {
			r.Use(authenticate)
			r.Get("/me", controllers.UsersMe(p.Users, logg))
			r.Get("/profile/{id}", controllers.UsersGetProfile(p.Users, logg))
			r.Put("/profile/{id}", controllers.UsersUpdateProfile(p.Users, logg))
			r.Delete("/profile/{id}", controllers.UsersDeleteProfile(p.Users, logg))

			r.Group(func(r chi.Router) {
				r.Use(adminOnly)
				r.Get("/list", controllers.UsersList(p.Users, logg))
				r.Get("/list/{id}", controllers.UsersGet(p.Users, logg))
				r.Put("/update/{id}", controllers.UsersAdminUpdate(p.Users, logg))
				r.Delete("/delete/{id}", controllers.UsersAdminDelete(p.Users, logg))
			})
		})
	})

	r.Route("/api/products", func(r chi.Router) {
		r.Use(authenticate)
		r.Get("/", controllers.ProductsList(p.Products, logg))
		r.Get("/{id}", controllers.ProductsGet(p.Products, logg))
		r.With(adminOnly).Post("/", controllers.ProductsCreate(p.Products, logg))
		r.With(adminOnly).Put("/{id}", controllers.ProductsUpdate(p.Products, logg))
		r.With(adminOnly).Delete("/{id}", controllers.ProductsDelete(p.Products, logg))
	})

	r.Route("/api/sales", func(r chi.Router) {
		r.Use(authenticate)
		r.With(middleware.Idempotency(idempotency, cfg.Sales.IdempotencyKeyTTL, logg)).Post("/", controllers.SalesCreate(p.Sales, logg))
		r.Get("/", controllers.SalesList(p.Sales, logg))
		r.Get("/{id}", controllers.SalesGet(p.Sales, logg))
		r.With(adminOnly).Put("/{id}", controllers.SalesUpdate(p.Sales, logg))
		r.With(adminOnly).Delete("/{id}", controllers.SalesDelete(p.Sales, logg))
	})

	r.Route("/api/reports", func(r chi.Router) {
		r.Use(authenticate, adminOnly)
		r.Get("/daily-sales", controllers.ReportsDailySales(p.Reports, logg))
		r.Get("/monthly-sales", controllers.ReportsMonthlySales(p.Reports, logg))
		r.Get("/user-sales", controllers.ReportsUserSales(p.Reports, logg))
		r.Get("/top-products", controllers.ReportsTopProducts(p.Reports, logg))
		r.Get("/total-income", controllers.ReportsTotalIncome(p.Reports, logg))
	})

	return r
}
