package usecase

import (
	"context"

	"go-hiring-pipeline/internal/domain"
	"go-hiring-pipeline/pkg/apperror"
)

func currentActor(ctx context.Context) (domain.Actor, error) {
	actor, ok := domain.ActorFromContext(ctx)
	if !ok {
		return domain.Actor{}, apperror.Unauthorized("User not authenticated")
	}
	return actor, nil
}

func requirePermission(ctx context.Context, resource domain.Resource, action domain.Action) error {
	actor, err := currentActor(ctx)
	if err != nil {
		return err
	}
	if !actor.Can(action, resource) {
		return apperror.Forbidden("Insufficient permissions to " + string(action) + " " + string(resource))
	}
	return nil
}

// requireRole passes when the caller holds any of roles.
func requireRole(ctx context.Context, roles ...domain.Role) error {
	actor, err := currentActor(ctx)
	if err != nil {
		return err
	}
	for _, role := range roles {
		if actor.Role == role {
			return nil
		}
	}
	return apperror.Forbidden("Insufficient permissions")
}
