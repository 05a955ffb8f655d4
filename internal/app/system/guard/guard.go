// Package guard answers workspace authorization questions for handlers.
//
// Roles in Harbor are per workspace, carried on the member record rather
// than the user, so every check is a membership lookup. Guards return
// the member record so handlers can reuse it as the acting identity
// (messages, reactions, and conversations are authored by members, not
// users).
package guard

import (
	"context"
	"errors"

	memberstore "github.com/harborteam/harbor/internal/app/store/members"
	"github.com/harborteam/harbor/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	// ErrNotMember is returned when the user has no membership in the
	// workspace. Handlers render it as not-found so workspace existence
	// is not leaked to outsiders.
	ErrNotMember = errors.New("not a member of this workspace")
	// ErrNotAdmin is returned when the member exists but lacks the admin
	// role.
	ErrNotAdmin = errors.New("admin role required")
)

type Guard struct {
	members *memberstore.Store
}

func New(members *memberstore.Store) *Guard {
	return &Guard{members: members}
}

// Member returns the user's membership in a workspace, or ErrNotMember.
func (g *Guard) Member(ctx context.Context, workspaceID, userID primitive.ObjectID) (models.Member, error) {
	m, err := g.members.GetByWorkspaceAndUser(ctx, workspaceID, userID)
	if err != nil {
		if errors.Is(err, memberstore.ErrNotFound) {
			return models.Member{}, ErrNotMember
		}
		return models.Member{}, err
	}
	return m, nil
}

// Admin returns the user's membership if it carries the admin role.
func (g *Guard) Admin(ctx context.Context, workspaceID, userID primitive.ObjectID) (models.Member, error) {
	m, err := g.Member(ctx, workspaceID, userID)
	if err != nil {
		return models.Member{}, err
	}
	if !m.IsAdmin() {
		return models.Member{}, ErrNotAdmin
	}
	return m, nil
}
