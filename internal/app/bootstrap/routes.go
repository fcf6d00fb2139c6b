// internal/app/bootstrap/routes.go
package bootstrap

import (
	"net/http"

	errorsfeature "github.com/Praytic/places-sub000/internal/app/features/errors"
	healthfeature "github.com/Praytic/places-sub000/internal/app/features/health"
	mapsfeature "github.com/Praytic/places-sub000/internal/app/features/maps"
	placesfeature "github.com/Praytic/places-sub000/internal/app/features/places"
	sharedfeature "github.com/Praytic/places-sub000/internal/app/features/shared"
	userinfofeature "github.com/Praytic/places-sub000/internal/app/features/userinfo"
	"github.com/Praytic/places-sub000/internal/app/service/mapservice"
	"github.com/Praytic/places-sub000/internal/app/service/placeservice"
	mapstore "github.com/Praytic/places-sub000/internal/app/store/maps"
	placestore "github.com/Praytic/places-sub000/internal/app/store/places"
	"github.com/Praytic/places-sub000/internal/app/system/auth"
	"github.com/Praytic/places-sub000/internal/app/system/workers"
	"github.com/dalemusser/waffle/config"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// orphanSweep is started in BuildHandler and stopped in Shutdown. The
// lifecycle hooks share no state object, so the worker lives here.
var orphanSweep *workers.OrphanSweep

// BuildHandler constructs the root HTTP handler (router) for this WAFFLE app.
//
// WAFFLE calls this after configuration, DB connections, schema setup, and
// any Startup hooks have completed. It builds the session manager, the
// map and place services, mounts the feature routers, and starts the
// background sweep for orphaned places.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	// Create the session manager using app config.
	// Secure cookies are enabled in production mode.
	secure := coreCfg.Env == "prod"
	sessionMgr, err := auth.NewSessionManager(appCfg.SessionKey, appCfg.SessionName, appCfg.SessionDomain, secure, logger)
	if err != nil {
		logger.Error("session manager init failed", zap.Error(err))
		return nil, err
	}

	// Error logger for handlers.
	errLog := errorsfeature.NewErrorLogger(logger)

	// Services.
	mapSvc := mapservice.New(deps.MongoClient, deps.MongoDatabase, logger, appCfg.TxnMaxAttempts)
	placeSvc := placeservice.New(deps.MongoDatabase, mapSvc, logger)

	r := chi.NewRouter()

	// Global auth middleware: loads SessionUser into context if signed in.
	// This makes the current user available to all handlers via auth.CurrentUser(r).
	r.Use(sessionMgr.LoadSessionUser)

	// Health check endpoint for load balancers and orchestrators.
	healthHandler := healthfeature.NewHandler(deps.MongoClient, logger)
	r.Mount("/health", healthfeature.Routes(healthHandler))

	// Session identity echo for clients.
	userinfofeature.MountRoutes(r, userinfofeature.NewHandler())

	// Map CRUD, sharing, and collaborator management.
	mapsHandler := mapsfeature.NewHandler(mapSvc, errLog, logger)
	mapsfeature.MountRoutes(r, mapsHandler)

	// Place CRUD under maps.
	placesHandler := placesfeature.NewHandler(placeSvc, errLog, logger)
	placesfeature.MountRoutes(r, placesHandler)

	// Collaborator-facing view of shared maps.
	sharedHandler := sharedfeature.NewHandler(mapSvc, errLog, logger)
	sharedfeature.MountRoutes(r, sharedHandler)

	// Background sweep reclaims places left behind when a map delete's
	// second phase was interrupted.
	if appCfg.SweepEnabled {
		orphanSweep = workers.NewOrphanSweep(
			mapstore.New(deps.MongoDatabase),
			placestore.New(deps.MongoDatabase),
			logger,
			appCfg.SweepInterval,
		)
		orphanSweep.Start()
	}

	return r, nil
}
