package domain

import "context"

type actorKey struct{}

// Actor is the authenticated user performing a request.
type Actor struct {
	ID         string
	ExternalID string
	Name       string
	Email      string
	Role       Role
}

func (a Actor) Can(action Action, resource Resource) bool {
	return HasPermission(a.Role, resource, action)
}

func WithActor(ctx context.Context, actor Actor) context.Context {
	return context.WithValue(ctx, actorKey{}, actor)
}

// ActorFromContext returns the acting user, or false for system-initiated work.
func ActorFromContext(ctx context.Context) (Actor, bool) {
	actor, ok := ctx.Value(actorKey{}).(Actor)
	if !ok || actor.ID == "" {
		return Actor{}, false
	}
	return actor, true
}
