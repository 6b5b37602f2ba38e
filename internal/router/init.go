package router

import (
	"github.com/oksasatya/vidstream-accounts/config"
	"github.com/oksasatya/vidstream-accounts/internal/application"
	"github.com/oksasatya/vidstream-accounts/internal/container"
	"github.com/oksasatya/vidstream-accounts/internal/infrastructure/cache"
	pginfra "github.com/oksasatya/vidstream-accounts/internal/infrastructure/postgres"
	"github.com/oksasatya/vidstream-accounts/internal/infrastructure/search"
	"github.com/oksasatya/vidstream-accounts/internal/infrastructure/storage"
	handlers "github.com/oksasatya/vidstream-accounts/internal/interface/http"
	"github.com/oksasatya/vidstream-accounts/internal/interface/middleware"
	"github.com/oksasatya/vidstream-accounts/internal/router/modules"
	"github.com/oksasatya/vidstream-accounts/pkg/helpers"
)

// AccountModuleDeps are the wired pieces behind the account routes.
type AccountModuleDeps struct {
	Accounts *application.AccountService
	Profiles *application.ProfileService
	Module   *modules.AccountModule
}

func buildUploader(cfg *config.Config) application.AssetUploader {
	switch cfg.StorageDriver {
	case "s3":
		if c := container.GetS3(); c != nil {
			return storage.NewS3Uploader(c, cfg.S3Bucket, cfg.S3PublicBaseURL)
		}
	default:
		if c := container.GetGCS(); c != nil {
			return storage.NewGCSUploader(c, cfg.GCSBucket)
		}
	}
	return nil
}

// buildDeps leaves optional collaborators as untyped nil interfaces when
// their client is absent, so the services can skip them.
func buildDeps(cfg *config.Config) application.Deps {
	deps := application.Deps{
		Uploader: buildUploader(cfg),
		Logger:   container.GetLogger(),
		AppName:  cfg.AppName,
		LoginURL: cfg.LoginURL,
	}
	if rdb := container.GetRedis(); rdb != nil {
		deps.Cache = cache.NewIdentityCache(rdb, cfg.IdentityCacheTTL)
	}
	if es := container.GetES(); es != nil {
		deps.Index = search.NewAccountIndex(es, cfg.ESAccountsIndex)
	}
	if pub := container.GetRabbitPub(); pub != nil {
		deps.Events = pub
	}
	return deps
}

func buildAccountDeps() AccountModuleDeps {
	cfg := container.GetConfig()
	logger := container.GetLogger()
	repo := pginfra.NewAccountRepository(container.GetPGPool())
	deps := buildDeps(cfg)

	accounts := application.NewAccountService(repo, container.GetJWT(), deps)
	profiles := application.NewProfileService(repo, deps)

	module := modules.NewAccountModule(
		handlers.NewAccountHandler(accounts, helpers.NewCookieManager(cfg.CookieDomain, cfg.CookieSecure), logger, cfg.UploadMaxBytes),
		handlers.NewProfileHandler(profiles, logger, cfg.UploadMaxBytes),
		middleware.Auth(container.GetJWT(), accounts, logger),
		container.GetRedis(),
		logger,
		modules.RateLimits{
			AuthPerMin:    cfg.RateLimitAuthPerMin,
			RefreshPerMin: cfg.RateLimitRefreshPerMin,
			APIPerMin:     cfg.RateLimitAPIPerMin,
		},
	)
	return AccountModuleDeps{Accounts: accounts, Profiles: profiles, Module: module}
}

// InitModules builds every module from the container and adds it to the registry.
// Call once at startup after the container is populated.
func InitModules(r *Registry) {
	r.Add(buildAccountDeps().Module)
	if container.GetConfig().DebugMetricsEnabled {
		r.Add(modules.NewDebugModule(container.GetRedis(), container.GetLogger()))
	}
}
