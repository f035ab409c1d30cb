package router

import (
	"context"
	"database/sql"

	accsvc "portfolio-backend/internal/application/accounts"
	assetsvc "portfolio-backend/internal/application/assets"
	holdsvc "portfolio-backend/internal/application/holdings"
	usersvc "portfolio-backend/internal/application/user"
	"portfolio-backend/internal/application/valuation"
	authsvc "portfolio-backend/internal/auth"
	"portfolio-backend/internal/config"
	"portfolio-backend/internal/infrastructure/database"
	acchandler "portfolio-backend/internal/interfaces/handlers/accounts"
	assethandler "portfolio-backend/internal/interfaces/handlers/assets"
	authhandler "portfolio-backend/internal/interfaces/handlers/auth"
	healthhandler "portfolio-backend/internal/interfaces/handlers/health"
	holdhandler "portfolio-backend/internal/interfaces/handlers/holdings"
	userhandler "portfolio-backend/internal/interfaces/handlers/user"
	"portfolio-backend/internal/middleware"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type gormDBPinger struct {
	db *gorm.DB
}

func (g *gormDBPinger) PingContext(ctx context.Context) error {
	sqlDB, err := g.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// Deps are the connections the app is built on.
type Deps struct {
	Config *config.Config
	DB     *gorm.DB
	Rdb    *redis.Client
}

// CreateApp opens the database and Redis from cfg and builds the app.
func CreateApp(cfg *config.Config) (*fiber.App, *gorm.DB, *redis.Client, error) {
	db, err := database.Open(cfg.DatabaseDriver, cfg.DatabaseURL)
	if err != nil {
		return nil, nil, nil, err
	}
	rdb, err := middleware.NewRedis(cfg.RedisURL)
	if err != nil {
		return nil, nil, nil, err
	}
	return New(Deps{Config: cfg, DB: db, Rdb: rdb}), db, rdb, nil
}

// New registers global middleware and all routes on a new Fiber app.
func New(d Deps) *fiber.App {
	cfg := d.Config
	app := fiber.New(fiber.Config{
		DisableStartupMessage:   true,
		ErrorHandler:            middleware.ErrorHandler,
		EnableTrustedProxyCheck: true,
	})

	app.Use(middleware.CORS(middleware.CORSConfig{
		AllowedSuffix: cfg.FrontendURLEndsWith,
		DevPassword:   cfg.DevPassword,
		IsProduction:  cfg.IsProduction(),
	}))
	app.Use(middleware.Tracing())
	app.Use(middleware.RouteLogger())
	app.Use(middleware.Session(d.Rdb))
	app.Use(middleware.HealthMarker(d.Rdb))

	hh := &healthhandler.Handlers{
		Rdb:            d.Rdb,
		DB:             &gormDBPinger{db: d.DB},
		HealthAdminKey: cfg.HealthAdminKey,
	}
	app.Get("/reset", hh.Reset)
	app.Get("/health/json", hh.JSON)
	app.Get("/health/errors", hh.Errors)

	sessionCfg := middleware.SessionConfig{
		Secret:            cfg.SessionSecret,
		AllowCrossSiteDev: cfg.AllowCrossSiteDev,
		IsProduction:      cfg.IsProduction(),
	}

	ah := &authhandler.Handlers{
		UserFinder: &authsvc.GormUserFinder{DB: d.DB},
		Rdb:        d.Rdb,
		Config:     sessionCfg,
	}
	authGroup := app.Group("/api/v1/auth")
	authGroup.Post("/login", ah.Login)
	authGroup.Get("/me", ah.Me)
	authGroup.Delete("/logout", ah.Logout)

	// User (create-user is public registration)
	us := &usersvc.Service{DB: d.DB, BcryptCost: cfg.BcryptCost}
	uh := &userhandler.Handlers{Service: us, Rdb: d.Rdb, Config: sessionCfg}
	app.Post("/api/v1/users/create-user", uh.CreateUser)
	ug := app.Group("/api/v1/users", middleware.RequireAuth())
	ug.Get("/view-user", uh.ViewUser)
	ug.Delete("/remove-user", uh.RemoveUser)

	vs := &valuation.Service{DB: d.DB, TxOptions: valuationTxOptions(cfg.DatabaseDriver)}

	// Accounts
	acch := &acchandler.Handlers{Service: &accsvc.Service{DB: d.DB}, Valuation: vs}
	ag := app.Group("/api/v1/accounts", middleware.RequireAuth())
	ag.Get("/", acch.List)
	ag.Post("/", acch.Create)
	ag.Get("/totals", acch.Totals)
	ag.Get("/:id", acch.Get)
	ag.Patch("/:id", acch.Update)
	ag.Delete("/:id", acch.Delete)

	// Assets
	asth := &assethandler.Handlers{Service: &assetsvc.Service{DB: d.DB}, Valuation: vs}
	sg := app.Group("/api/v1/assets", middleware.RequireAuth())
	sg.Get("/", asth.List)
	sg.Post("/", asth.Create)
	sg.Get("/totals", asth.Totals)
	sg.Get("/:id", asth.Get)
	sg.Patch("/:id/price", asth.UpdatePrice)
	sg.Patch("/:id", asth.Update)
	sg.Delete("/:id", asth.Delete)

	// Holdings
	holdh := &holdhandler.Handlers{Service: &holdsvc.Service{DB: d.DB}, Valuation: vs}
	hg := app.Group("/api/v1/holdings", middleware.RequireAuth())
	hg.Get("/", holdh.ViewHoldings)
	hg.Post("/", holdh.Create)
	hg.Get("/columns", holdh.Columns)
	hg.Get("/:id", holdh.Get)
	hg.Patch("/:id", holdh.Update)
	hg.Delete("/:id", holdh.Delete)

	return app
}

// valuationTxOptions gives the valuation read a single snapshot on Postgres.
// SQLite runs with one connection and default options.
func valuationTxOptions(driver string) *sql.TxOptions {
	if driver == database.DriverSQLite {
		return nil
	}
	return &sql.TxOptions{Isolation: sql.LevelRepeatableRead, ReadOnly: true}
}
