package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/velora-shop/storefront-backend/api/controllers"
	"github.com/velora-shop/storefront-backend/api/middleware"
	"github.com/velora-shop/storefront-backend/internal/cart"
	"github.com/velora-shop/storefront-backend/internal/catalog"
	"github.com/velora-shop/storefront-backend/internal/identity"
	"github.com/velora-shop/storefront-backend/internal/profile"
	"github.com/velora-shop/storefront-backend/pkg/auth/session"
	"github.com/velora-shop/storefront-backend/pkg/config"
	"github.com/velora-shop/storefront-backend/pkg/logger"
	"github.com/velora-shop/storefront-backend/pkg/metrics"
	"github.com/velora-shop/storefront-backend/pkg/redis"
)

// Deps bundles everything the router wires into handlers.
type Deps struct {
	Config         *config.Config
	Logger         *logger.Logger
	SessionManager session.AccessSessionChecker
	RedisClient    *redis.Client
	Identity       identity.Service
	Catalog        catalog.Service
	Profiles       profile.Service
	Carts          *cart.Registry
	Registry       prometheus.Registerer
	Gatherer       prometheus.Gatherer
	ReadyChecks    []func() error
}

func NewRouter(deps Deps) (http.Handler, error) {
	cfg := deps.Config
	logg := deps.Logger

	cartController, err := controllers.NewCartController(deps.Carts, deps.Catalog, deps.Profiles, logg)
	if err != nil {
		return nil, err
	}

	httpMetrics := metrics.NewHTTPMetrics(deps.Registry)

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.Metrics(httpMetrics),
		middleware.CORS(),
	)

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
		cfg.AuthRateLimit.LoginEmailLimit,
	)
	signupPolicy := middleware.NewAuthRateLimitPolicy(
		"signup",
		cfg.AuthRateLimit.SignupWindow,
		cfg.AuthRateLimit.SignupIPLimit,
		cfg.AuthRateLimit.SignupEmailLimit,
	)

	rateLimit := func(policy middleware.AuthRateLimitPolicy) func(http.Handler) http.Handler {
		if deps.RedisClient == nil {
			return middleware.AuthRateLimit(policy, nil, logg)
		}
		return middleware.AuthRateLimit(policy, deps.RedisClient, logg)
	}
	idempotency := middleware.Idempotency(nil, logg)
	if deps.RedisClient != nil {
		idempotency = middleware.Idempotency(deps.RedisClient, logg)
	}

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, deps.ReadyChecks...))
	})

	if deps.Gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/products", func(r chi.Router) {
			r.Get("/", controllers.ListProducts(deps.Catalog, logg))
			r.Get("/{productID}", controllers.GetProduct(deps.Catalog, logg))
			r.Get("/slug/{slug}", controllers.GetProductBySlug(deps.Catalog, logg))
		})

		r.Route("/auth", func(r chi.Router) {
			r.With(rateLimit(signupPolicy), idempotency).
				Post("/signup", controllers.SignUp(deps.Identity, logg))
			r.With(rateLimit(loginPolicy)).
				Post("/login", controllers.SignIn(deps.Identity, logg))
			r.Post("/refresh", controllers.Refresh(deps.Identity, logg))

			r.Group(func(r chi.Router) {
				r.Use(middleware.Auth(cfg.JWT, deps.SessionManager, logg))
				r.Post("/logout", controllers.SignOut(deps.Identity, deps.Carts, logg))
				r.Get("/me", controllers.Me(deps.Identity, logg))
			})
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(cfg.JWT, deps.SessionManager, logg))
			r.Use(idempotency)

			r.Route("/profile", func(r chi.Router) {
				r.Get("/", controllers.GetProfile(deps.Profiles, logg))
				r.Put("/", controllers.UpdateProfile(deps.Profiles, logg))
			})

			r.Route("/cart", func(r chi.Router) {
				r.Get("/", cartController.Get)
				r.Delete("/", cartController.Clear)
				r.Post("/items", cartController.AddItem)
				r.Patch("/items/{index}", cartController.UpdateItem)
				r.Delete("/items/{index}", cartController.RemoveItem)
				r.Put("/items/{index}/selection", cartController.SetSelection)
				r.Put("/selection", cartController.SelectAll)
				r.Get("/checkout-eligibility", cartController.CheckoutEligibility)
			})
		})
	})

	return r, nil
}
