package biz

import (
	"context"

	"go.uber.org/fx"

	"github.com/looplj/tenanthub/internal/server/db"
	"github.com/looplj/tenanthub/internal/tenancy"
)

var Module = fx.Module("biz",
	fx.Provide(NewGuards),
	fx.Provide(NewAuthService),
	fx.Provide(NewUserService),
	fx.Provide(NewRoleService),
	fx.Provide(NewOrganizationService),
	fx.Provide(NewMembershipService),
	fx.Provide(NewProjectService),
	fx.Provide(NewScopingService),
	fx.Provide(func(svc *OrganizationService) *tenancy.OrganizationResolver {
		return tenancy.NewOrganizationResolver(svc.Lookup)
	}),
	fx.Invoke(func(lc fx.Lifecycle, database *db.DB, guards *Guards) {
		lc.Append(fx.Hook{
			OnStart: func(ctx context.Context) error {
				if err := database.Migrate(ctx); err != nil {
					return err
				}

				if err := guards.Validate(ctx); err != nil {
					return err
				}

				tenancy.DefaultRegistry().PrintSummary(ctx)

				return nil
			},
			OnStop: func(ctx context.Context) error {
				return database.Close()
			},
		})
	}),
)
