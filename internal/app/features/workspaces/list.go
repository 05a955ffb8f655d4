// internal/app/features/workspaces/list.go
package workspaces

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	apierrors "github.com/harborteam/harbor/internal/app/features/errors"
	workspacestore "github.com/harborteam/harbor/internal/app/store/workspaces"
	"github.com/harborteam/harbor/internal/app/system/authz"
	"github.com/harborteam/harbor/internal/app/system/guard"
	"github.com/harborteam/harbor/internal/app/system/httpjson"
	"github.com/harborteam/harbor/internal/app/system/timeouts"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ServeList handles GET /api/workspaces: every workspace the caller is
// a member of, in join order.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	userID, ok := authz.UserID(r)
	if !ok {
		apierrors.Unauthenticated(w)
		return
	}

	memberships, err := h.Members.ListByUser(ctx, userID)
	if err != nil {
		apierrors.ServerError(w, h.Log, "workspace list: memberships", err)
		return
	}

	ids := make([]primitive.ObjectID, 0, len(memberships))
	byWorkspace := make(map[primitive.ObjectID]int, len(memberships))
	for i, m := range memberships {
		ids = append(ids, m.WorkspaceID)
		byWorkspace[m.WorkspaceID] = i
	}

	wss, err := h.Workspaces.GetMany(ctx, ids)
	if err != nil {
		apierrors.ServerError(w, h.Log, "workspace list", err)
		return
	}

	out := make([]workspaceResponse, 0, len(wss))
	for _, ws := range wss {
		out = append(out, toResponse(ws, memberships[byWorkspace[ws.ID]]))
	}
	httpjson.OK(w, map[string]any{"workspaces": out})
}

// ServeGet handles GET /api/workspaces/{id}. Members only; outsiders
// get not-found, not forbidden.
func (h *Handler) ServeGet(w http.ResponseWriter, r *http.Request) {
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
			apierrors.ServerError(w, h.Log, "workspace get: guard", err)
		}
		return
	}

	ws, err := h.Workspaces.GetByID(ctx, wsID)
	if err != nil {
		if errors.Is(err, workspacestore.ErrNotFound) {
			apierrors.NotFound(w, "Workspace not found.")
			return
		}
		apierrors.ServerError(w, h.Log, "workspace get", err)
		return
	}
	httpjson.OK(w, toResponse(ws, member))
}

// ServeInfo handles GET /api/workspaces/{id}/info: the pre-join view.
// Any signed-in user may call it; it reveals only the name and whether
// the caller already belongs.
func (h *Handler) ServeInfo(w http.ResponseWriter, r *http.Request) {
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

	ws, err := h.Workspaces.GetByID(ctx, wsID)
	if err != nil {
		if errors.Is(err, workspacestore.ErrNotFound) {
			apierrors.NotFound(w, "Workspace not found.")
			return
		}
		apierrors.ServerError(w, h.Log, "workspace info", err)
		return
	}

	isMember := true
	if _, err := h.Guard.Member(ctx, wsID, userID); err != nil {
		if errors.Is(err, guard.ErrNotMember) {
			isMember = false
		} else {
			apierrors.ServerError(w, h.Log, "workspace info: guard", err)
			return
		}
	}
	httpjson.OK(w, infoResponse{Name: ws.Name, IsMember: isMember})
}
