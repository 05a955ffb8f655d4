// internal/app/features/members/list.go
package members

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	apierrors "github.com/harborteam/harbor/internal/app/features/errors"
	"github.com/harborteam/harbor/internal/app/system/authz"
	"github.com/harborteam/harbor/internal/app/system/httpjson"
	"github.com/harborteam/harbor/internal/app/system/timeouts"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ServeList handles GET /api/workspaces/{id}/members: the roster in
// join order, each entry carrying the user profile.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	userID, ok := authz.UserID(r)
	if !ok {
		apierrors.Unauthenticated(w)
		return
	}
	wsID, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		apierrors.NotFound(w, "Workspace not found.")
		return
	}

	if _, err := h.Guard.Member(ctx, wsID, userID); err != nil {
		if !apierrors.FromGuard(w, err) {
			apierrors.ServerError(w, h.Log, "member list: guard", err)
		}
		return
	}

	roster, err := h.Members.ListByWorkspace(ctx, wsID)
	if err != nil {
		apierrors.ServerError(w, h.Log, "member list", err)
		return
	}

	userIDs := make([]primitive.ObjectID, 0, len(roster))
	for _, m := range roster {
		userIDs = append(userIDs, m.UserID)
	}
	users, err := h.Users.GetMany(ctx, userIDs)
	if err != nil {
		apierrors.ServerError(w, h.Log, "member list: users", err)
		return
	}

	out := make([]memberResponse, 0, len(roster))
	for _, m := range roster {
		out = append(out, toResponse(m, users[m.UserID]))
	}
	httpjson.OK(w, map[string]any{"members": out})
}

// ServeCurrent handles GET /api/workspaces/{id}/members/me: the
// caller's own membership.
func (h *Handler) ServeCurrent(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	userID, ok := authz.UserID(r)
	if !ok {
		apierrors.Unauthenticated(w)
		return
	}
	wsID, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		apierrors.NotFound(w, "Workspace not found.")
		return
	}

	member, err := h.Guard.Member(ctx, wsID, userID)
	if err != nil {
		if !apierrors.FromGuard(w, err) {
			apierrors.ServerError(w, h.Log, "current member: guard", err)
		}
		return
	}

	user, err := h.Users.GetByID(ctx, userID)
	if err != nil {
		apierrors.ServerError(w, h.Log, "current member: user", err)
		return
	}
	httpjson.OK(w, toResponse(member, user))
}

// ServeGet handles GET /api/members/{memberId}. The caller must share
// the member's workspace.
func (h *Handler) ServeGet(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	userID, ok := authz.UserID(r)
	if !ok {
		apierrors.Unauthenticated(w)
		return
	}
	memberID, err := primitive.ObjectIDFromHex(chi.URLParam(r, "memberId"))
	if err != nil {
		apierrors.NotFound(w, "Member not found.")
		return
	}

	target, err := h.Members.GetByID(ctx, memberID)
	if err != nil {
		apierrors.NotFound(w, "Member not found.")
		return
	}
	if _, err := h.Guard.Member(ctx, target.WorkspaceID, userID); err != nil {
		if !apierrors.FromGuard(w, err) {
			apierrors.ServerError(w, h.Log, "member get: guard", err)
		}
		return
	}

	user, err := h.Users.GetByID(ctx, target.UserID)
	if err != nil {
		apierrors.ServerError(w, h.Log, "member get: user", err)
		return
	}
	httpjson.OK(w, toResponse(target, user))
}
