// internal/app/features/members/update.go
package members

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	apierrors "github.com/harborteam/harbor/internal/app/features/errors"
	"github.com/harborteam/harbor/internal/app/system/authz"
	"github.com/harborteam/harbor/internal/app/system/httpjson"
	"github.com/harborteam/harbor/internal/app/system/timeouts"
	"github.com/harborteam/harbor/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// HandleUpdateRole handles PATCH /api/members/{memberId}. Admin only.
// Demoting the last admin is rejected so a workspace can never be left
// without one.
func (h *Handler) HandleUpdateRole(w http.ResponseWriter, r *http.Request) {
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
	if _, err := h.Guard.Admin(ctx, target.WorkspaceID, userID); err != nil {
		if !apierrors.FromGuard(w, err) {
			apierrors.ServerError(w, h.Log, "member role: guard", err)
		}
		return
	}

	var req updateRoleRequest
	if err := httpjson.DecodeBody(r, &req); err != nil {
		apierrors.ValidationFailed(w, "Request body must be valid JSON.")
		return
	}
	if req.Role != models.RoleAdmin && req.Role != models.RoleMember {
		apierrors.ValidationFailed(w, `Role must be "admin" or "member".`)
		return
	}
	if req.Role == target.Role {
		h.respondWithMember(ctx, w, target)
		return
	}

	if target.IsAdmin() && req.Role == models.RoleMember {
		admins, err := h.Members.CountByWorkspace(ctx, target.WorkspaceID, models.RoleAdmin)
		if err != nil {
			apierrors.ServerError(w, h.Log, "member role: count admins", err)
			return
		}
		if admins <= 1 {
			apierrors.Conflict(w, "A workspace must keep at least one admin.")
			return
		}
	}

	if err := h.Members.SetRole(ctx, memberID, req.Role); err != nil {
		apierrors.ServerError(w, h.Log, "member role", err)
		return
	}
	target.Role = req.Role

	h.Log.Info("member role changed",
		zap.String("member_id", memberID.Hex()),
		zap.String("role", req.Role))
	h.respondWithMember(ctx, w, target)
}

func (h *Handler) respondWithMember(ctx context.Context, w http.ResponseWriter, m models.Member) {
	user, err := h.Users.GetByID(ctx, m.UserID)
	if err != nil {
		apierrors.ServerError(w, h.Log, "member reload: user", err)
		return
	}
	httpjson.OK(w, toResponse(m, user))
}
