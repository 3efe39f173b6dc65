package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/eyewantit/eyewantit-backend/api/controllers"
	"github.com/eyewantit/eyewantit-backend/api/middleware"
	"github.com/eyewantit/eyewantit-backend/internal/auth"
	"github.com/eyewantit/eyewantit-backend/internal/collections"
	"github.com/eyewantit/eyewantit-backend/internal/dashboard"
	"github.com/eyewantit/eyewantit-backend/internal/items"
	"github.com/eyewantit/eyewantit-backend/pkg/auth/session"
	"github.com/eyewantit/eyewantit-backend/pkg/config"
	"github.com/eyewantit/eyewantit-backend/pkg/db"
	"github.com/eyewantit/eyewantit-backend/pkg/logger"
	"github.com/eyewantit/eyewantit-backend/pkg/redis"
)

// RouterParams carries everything the HTTP surface depends on.
type RouterParams struct {
	Config         *config.Config
	Logger         *logger.Logger
	DBPinger       db.Pinger
	RedisClient    *redis.Client
	SessionChecker session.AccessSessionChecker
	AuthService    auth.Service
	RegisterSvc    auth.RegisterService
	ItemsService   items.Service
	CollectionsSvc collections.Service
	DashboardSvc   dashboard.Service
}

func NewRouter(params RouterParams) http.Handler {
	cfg := params.Config
	logg := params.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

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
		r.Get("/ready", controllers.HealthReady(cfg, logg, params.DBPinger, params.RedisClient))
	})

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.With(middleware.AuthRateLimit(registerPolicy, params.RedisClient, logg)).Post("/register", controllers.AuthRegister(params.RegisterSvc, params.AuthService, logg))
		r.With(middleware.AuthRateLimit(loginPolicy, params.RedisClient, logg)).Post("/login", controllers.AuthLogin(params.AuthService, logg))
		r.Post("/refresh", controllers.AuthRefresh(params.AuthService, logg))
		r.Post("/logout", controllers.AuthLogout(params.AuthService, cfg.JWT, logg))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, params.SessionChecker, logg))

		r.Route("/items", func(r chi.Router) {
			r.Post("/", controllers.ItemCreate(params.ItemsService, logg))
			r.Get("/search", controllers.ItemSearch(params.ItemsService, logg))
			r.Get("/by-score", controllers.ItemsByScoreRange(params.ItemsService, logg))
			r.Get("/{itemId}", controllers.ItemGet(params.ItemsService, logg))
			r.Patch("/{itemId}", controllers.ItemUpdate(params.ItemsService, logg))
			r.Delete("/{itemId}", controllers.ItemDelete(params.ItemsService, logg))
			r.Post("/{itemId}/claim", controllers.ItemClaim(params.ItemsService, logg))
			r.Delete("/{itemId}/claim", controllers.ItemUnclaim(params.ItemsService, logg))
			r.Post("/{itemId}/collections", controllers.ItemAddToCollections(params.ItemsService, logg))
			r.Delete("/{itemId}/collections", controllers.ItemRemoveFromCollections(params.ItemsService, logg))
		})

		r.Route("/collections", func(r chi.Router) {
			r.Post("/", controllers.CollectionCreate(params.CollectionsSvc, logg))
			r.Get("/", controllers.CollectionList(params.CollectionsSvc, logg))
			r.Get("/{collectionId}", controllers.CollectionGet(params.CollectionsSvc, logg))
			r.Patch("/{collectionId}", controllers.CollectionUpdate(params.CollectionsSvc, logg))
			r.Delete("/{collectionId}", controllers.CollectionDelete(params.CollectionsSvc, logg))
			r.Get("/{collectionId}/items", controllers.CollectionItems(params.ItemsService, logg))
		})

		r.Get("/dashboard", controllers.Dashboard(params.DashboardSvc, logg))
	})

	return r
}
