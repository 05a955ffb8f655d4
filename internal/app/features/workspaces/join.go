// internal/app/features/workspaces/join.go
package workspaces

import (
	"context"
	"errors"
	"net/http"
	"strings"

	apierrors "github.com/harborteam/harbor/internal/app/features/errors"
	memberstore "github.com/harborteam/harbor/internal/app/store/members"
	workspacestore "github.com/harborteam/harbor/internal/app/store/workspaces"
	"github.com/harborteam/harbor/internal/app/system/authz"
	"github.com/harborteam/harbor/internal/app/system/httpjson"
	"github.com/harborteam/harbor/internal/app/system/inputval"
	"github.com/harborteam/harbor/internal/app/system/joincode"
	"github.com/harborteam/harbor/internal/app/system/timeouts"
	"github.com/harborteam/harbor/internal/domain/models"
	"go.uber.org/zap"
)

// HandleJoin handles POST /api/workspaces/join.
//
// The code alone identifies the workspace. An unknown code renders as
// not-found, so the response never confirms which workspaces exist.
// Joining is idempotent: a second join with a valid code returns the
// existing membership rather than an error, so a double-submitted form
// never strands the user on an error screen.
func (h *Handler) HandleJoin(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	userID, ok := authz.UserID(r)
	if !ok {
		apierrors.Unauthenticated(w)
		return
	}

	var req joinRequest
	if err := httpjson.DecodeBody(r, &req); err != nil {
		apierrors.ValidationFailed(w, "Request body must be valid JSON.")
		return
	}
	if v := inputval.Validate(req); v.HasErrors() {
		apierrors.ValidationFailed(w, v.First())
		return
	}

	code := strings.ToLower(strings.TrimSpace(req.Code))
	if !joincode.Valid(code) {
		apierrors.NotFound(w, "No workspace matches that join code.")
		return
	}

	ws, err := h.Workspaces.GetByJoinCode(ctx, code)
	if err != nil {
		if errors.Is(err, workspacestore.ErrNotFound) {
			apierrors.NotFound(w, "No workspace matches that join code.")
			return
		}
		apierrors.ServerError(w, h.Log, "workspace join", err)
		return
	}

	member, err := h.Members.Add(ctx, ws.ID, userID, models.RoleMember)
	if err != nil {
		if errors.Is(err, memberstore.ErrDuplicate) {
			member, err = h.Members.GetByWorkspaceAndUser(ctx, ws.ID, userID)
			if err != nil {
				apierrors.ServerError(w, h.Log, "workspace join: reload member", err)
				return
			}
			httpjson.OK(w, toResponse(ws, member))
			return
		}
		apierrors.ServerError(w, h.Log, "workspace join", err)
		return
	}

	h.Log.Info("workspace joined",
		zap.String("workspace_id", ws.ID.Hex()),
		zap.String("user_id", userID.Hex()))
	httpjson.Created(w, toResponse(ws, member))
}
