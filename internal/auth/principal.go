package auth

import (
	"context"
	"net/http"

	"github.com/farmstack/farm-backend/internal/apperror"
	"github.com/farmstack/farm-backend/internal/db"
	"github.com/farmstack/farm-backend/internal/utils"
)

func contextWithPrincipal(ctx context.Context, userID, role string) context.Context {
	ctx = context.WithValue(ctx, utils.ContextUserIDKey, userID)
	return context.WithValue(ctx, utils.ContextRoleKey, role)
}

// CurrentUser loads the account behind the request's token claims. Domain
// handlers call this to obtain the acting principal's internal key before any
// owner-scoped query.
func CurrentUser(r *http.Request) (*User, error) {
	userUUID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		return nil, apperror.Unauthorized("incorrect credentials")
	}
	return GetByUUID(db.DB, userUUID)
}
