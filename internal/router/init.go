package router

import (
	"github.com/loopers/commerce-api/internal/application"
	"github.com/loopers/commerce-api/internal/container"
	"github.com/loopers/commerce-api/internal/domain/repository"
	"github.com/loopers/commerce-api/internal/domain/service"
	"github.com/loopers/commerce-api/internal/infrastructure/memory"
	pginfra "github.com/loopers/commerce-api/internal/infrastructure/postgres"
	"github.com/loopers/commerce-api/internal/infrastructure/search"
	handlers "github.com/loopers/commerce-api/internal/interface/http"
	"github.com/loopers/commerce-api/internal/router/modules"
	"github.com/loopers/commerce-api/pkg/helpers"
)

// UserModuleDeps is what the user routes need: the header authenticator and
// the handler over the facade.
type UserModuleDeps struct {
	Auth    *service.UserAuthService
	Handler *handlers.UserHandler
}

func userStore() (repository.UserRepository, repository.Transactor) {
	if pool := container.GetPGPool(); pool != nil {
		return pginfra.NewUserRepository(pool), pginfra.NewTransactor(pool)
	}
	repo := memory.NewUserRepository()
	return repo, memory.NewTransactor(repo)
}

func buildUserDeps() (UserModuleDeps, error) {
	cfg := container.GetConfig()
	logger := container.GetLogger()
	repo, tx := userStore()
	encoder := helpers.NewBcryptEncoder(cfg.BcryptCost)

	users, err := service.NewUserService(repo, tx, encoder,
		service.WithLoginIDInDuplicateError(cfg.ExposeDuplicateLoginID),
		service.WithLogger(logger),
	)
	if err != nil {
		return UserModuleDeps{}, err
	}

	var authOpts []service.AuthOption
	if cfg.AuthEqualizeTiming {
		dummy, err := encoder.DummyHash()
		if err != nil {
			return UserModuleDeps{}, err
		}
		authOpts = append(authOpts, service.WithDummyHash(dummy))
	}
	auth, err := service.NewUserAuthService(repo, encoder, authOpts...)
	if err != nil {
		return UserModuleDeps{}, err
	}

	facadeOpts := []application.FacadeOption{application.WithFacadeLogger(logger)}
	if es := container.GetES(); es != nil {
		facadeOpts = append(facadeOpts, application.WithIndexer(search.NewUserIndexer(es, cfg.ESUsersIndex)))
	}
	if pub := container.GetRabbitPub(); pub != nil {
		facadeOpts = append(facadeOpts, application.WithEmailQueue(pub, cfg.Brand()))
	}
	facade, err := application.NewUserFacade(users, repo, facadeOpts...)
	if err != nil {
		return UserModuleDeps{}, err
	}

	return UserModuleDeps{
		Auth:    auth,
		Handler: handlers.NewUserHandler(facade, logger),
	}, nil
}

// InitModules initializes all application modules and registers them with the router registry
// This function should be called once during application startup to wire up all modules
func InitModules(r *Registry) error {
	cfg := container.GetConfig()
	logger := container.GetLogger()

	userDeps, err := buildUserDeps()
	if err != nil {
		return err
	}
	r.Add(modules.NewUserModule(userDeps.Handler, userDeps.Auth, container.GetRedis(), modules.RateLimits{
		RegisterPerIP: cfg.RateLimitRegisterPerMin,
		AuthPerIP:     cfg.RateLimitAuthPerMin,
		AuthPerUser:   cfg.RateLimitAuthPerUserPerMin,
	}, logger))

	if cfg.DebugMetricsEnabled {
		r.Add(modules.NewDebugModule(container.GetRedis(), logger))
	}
	return nil
}
