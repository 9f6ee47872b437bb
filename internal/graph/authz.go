package graph

import (
	"context"

	"postboard/internal/apperr"
	"postboard/internal/auth"
	"postboard/internal/domain"
)

// Operation names used as keys in the role registry.
const (
	opMe         = "me"
	opUserPosts  = "userPosts"
	opPosts      = "posts"
	opCreatePost = "createPost"
	opUpdatePost = "updatePost"
	opDeletePost = "deletePost"
)

// requiredRoles is the explicit operation-to-role registry: ordinary data,
// consulted by every guarded resolver. register and login are deliberately
// absent; they run unauthenticated.
var requiredRoles = map[string][]domain.Role{
	opMe:         {domain.RoleUser, domain.RoleAdmin},
	opUserPosts:  {domain.RoleUser, domain.RoleAdmin},
	opPosts:      {domain.RoleUser, domain.RoleAdmin},
	opCreatePost: {domain.RoleUser, domain.RoleAdmin},
	opUpdatePost: {domain.RoleUser, domain.RoleAdmin},
	opDeletePost: {domain.RoleUser, domain.RoleAdmin},
}

// requireRole resolves the caller's identity and checks it against the
// operation's required role set.
func requireRole(ctx context.Context, op string) (auth.Identity, error) {
	id, ok := auth.IdentityFromContext(ctx)
	if !ok {
		return auth.Identity{}, apperr.New(apperr.KindUnauthenticated, "authentication required")
	}
	for _, role := range requiredRoles[op] {
		if id.Role == role {
			return id, nil
		}
	}
	return auth.Identity{}, apperr.New(apperr.KindForbidden, "insufficient role")
}
