package middleware

import (
	"context"
	"net/http"
)

type contextKey string

const (
	ownerIDKey contextKey = "owner_id"
	emailKey   contextKey = "email"
	slotKey    contextKey = "owner_slot"
)

// withOwnerSlot lets an outer middleware observe the owner set further down
// the chain, after the request context has been replaced.
func withOwnerSlot(ctx context.Context, slot *string) context.Context {
	return context.WithValue(ctx, slotKey, slot)
}

func slotOwner(ctx context.Context) string {
	if slot, ok := ctx.Value(slotKey).(*string); ok {
		return *slot
	}
	return ""
}

// SetOwnerID stores the authenticated profile ID on ctx.
func SetOwnerID(ctx context.Context, id string) context.Context {
	if slot, ok := ctx.Value(slotKey).(*string); ok {
		*slot = id
	}
	return context.WithValue(ctx, ownerIDKey, id)
}

// GetOwnerID returns the authenticated profile ID, if any.
func GetOwnerID(r *http.Request) (string, bool) {
	id, ok := r.Context().Value(ownerIDKey).(string)
	return id, ok && id != ""
}

// OwnerID returns the authenticated profile ID or "" for a guest.
func OwnerID(r *http.Request) string {
	id, _ := GetOwnerID(r)
	return id
}

func setEmail(ctx context.Context, email string) context.Context {
	return context.WithValue(ctx, emailKey, email)
}

// GetEmail returns the email claim of the session token.
func GetEmail(r *http.Request) string {
	email, _ := r.Context().Value(emailKey).(string)
	return email
}
