// Package auth carries the pre-resolved actor identity through request
// context. Token verification happens upstream; this service only stamps
// createdBy/updatedBy from whatever identity arrives.
package auth

import (
	"context"
	"net/http"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type actorKey struct{}

const actorHeader = "X-Actor-ID"

// WithActor returns a context carrying the admin actor id.
func WithActor(ctx context.Context, id primitive.ObjectID) context.Context {
	return context.WithValue(ctx, actorKey{}, id)
}

// ActorID returns the actor id from ctx, or nil when the request is
// unattributed (public storefront reads).
func ActorID(ctx context.Context) *primitive.ObjectID {
	if id, ok := ctx.Value(actorKey{}).(primitive.ObjectID); ok {
		return &id
	}
	return nil
}

// Middleware extracts the actor id header set by the upstream auth layer.
// Requests without a valid id pass through unattributed.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if raw := r.Header.Get(actorHeader); raw != "" {
			if id, err := primitive.ObjectIDFromHex(raw); err == nil {
				r = r.WithContext(WithActor(r.Context(), id))
			}
		}
		next.ServeHTTP(w, r)
	})
}
