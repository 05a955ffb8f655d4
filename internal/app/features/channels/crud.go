// internal/app/features/channels/crud.go
package channels

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	apierrors "github.com/harborteam/harbor/internal/app/features/errors"
	channelstore "github.com/harborteam/harbor/internal/app/store/channels"
	"github.com/harborteam/harbor/internal/app/system/authz"
	"github.com/harborteam/harbor/internal/app/system/httpjson"
	"github.com/harborteam/harbor/internal/app/system/inputval"
	"github.com/harborteam/harbor/internal/app/system/timeouts"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// ServeList handles GET /api/workspaces/{id}/channels, in creation
// order.
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
			apierrors.ServerError(w, h.Log, "channel list: guard", err)
		}
		return
	}

	list, err := h.Channels.ListByWorkspace(ctx, wsID)
	if err != nil {
		apierrors.ServerError(w, h.Log, "channel list", err)
		return
	}
	out := make([]channelResponse, 0, len(list))
	for _, c := range list {
		out = append(out, toResponse(c))
	}
	httpjson.OK(w, map[string]any{"channels": out})
}

// HandleCreate handles POST /api/workspaces/{id}/channels. Admin only.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
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
	if _, err := h.Guard.Admin(ctx, wsID, userID); err != nil {
		if !apierrors.FromGuard(w, err) {
			apierrors.ServerError(w, h.Log, "channel create: guard", err)
		}
		return
	}

	var req nameRequest
	if err := httpjson.DecodeBody(r, &req); err != nil {
		apierrors.ValidationFailed(w, "Request body must be valid JSON.")
		return
	}
	req.Name = normalizeName(req.Name)
	if v := inputval.Validate(req); v.HasErrors() {
		apierrors.ValidationFailed(w, v.First())
		return
	}

	c, err := h.Channels.Create(ctx, wsID, req.Name)
	if err != nil {
		apierrors.ServerError(w, h.Log, "channel create", err)
		return
	}

	h.Log.Info("channel created",
		zap.String("channel_id", c.ID.Hex()),
		zap.String("workspace_id", wsID.Hex()))
	httpjson.Created(w, toResponse(c))
}

// ServeGet handles GET /api/channels/{channelId}.
func (h *Handler) ServeGet(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	userID, ok := authz.UserID(r)
	if !ok {
		apierrors.Unauthenticated(w)
		return
	}
	c, ok := h.loadChannelForMember(ctx, w, r, userID)
	if !ok {
		return
	}
	httpjson.OK(w, toResponse(c))
}

// HandleRename handles PATCH /api/channels/{channelId}. Admin only.
func (h *Handler) HandleRename(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	userID, ok := authz.UserID(r)
	if !ok {
		apierrors.Unauthenticated(w)
		return
	}
	c, ok := h.loadChannel(ctx, w, r)
	if !ok {
		return
	}
	if _, err := h.Guard.Admin(ctx, c.WorkspaceID, userID); err != nil {
		if !apierrors.FromGuard(w, err) {
			apierrors.ServerError(w, h.Log, "channel rename: guard", err)
		}
		return
	}

	var req nameRequest
	if err := httpjson.DecodeBody(r, &req); err != nil {
		apierrors.ValidationFailed(w, "Request body must be valid JSON.")
		return
	}
	req.Name = normalizeName(req.Name)
	if v := inputval.Validate(req); v.HasErrors() {
		apierrors.ValidationFailed(w, v.First())
		return
	}

	if err := h.Channels.Rename(ctx, c.ID, req.Name); err != nil {
		if errors.Is(err, channelstore.ErrNotFound) {
			apierrors.NotFound(w, "Channel not found.")
			return
		}
		apierrors.ServerError(w, h.Log, "channel rename", err)
		return
	}
	c.Name = req.Name
	httpjson.OK(w, toResponse(c))
}

// HandleDelete handles DELETE /api/channels/{channelId}. Admin only.
// The channel's messages and their reactions go with it.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	userID, ok := authz.UserID(r)
	if !ok {
		apierrors.Unauthenticated(w)
		return
	}
	c, ok := h.loadChannel(ctx, w, r)
	if !ok {
		return
	}
	if _, err := h.Guard.Admin(ctx, c.WorkspaceID, userID); err != nil {
		if !apierrors.FromGuard(w, err) {
			apierrors.ServerError(w, h.Log, "channel delete: guard", err)
		}
		return
	}

	messageIDs, err := h.Messages.ListIDsByChannel(ctx, c.ID)
	if err != nil {
		apierrors.ServerError(w, h.Log, "channel delete: collect messages", err)
		return
	}
	if _, err := h.Reactions.DeleteByMessages(ctx, messageIDs); err != nil {
		apierrors.ServerError(w, h.Log, "channel delete: reactions", err)
		return
	}
	if _, err := h.Messages.DeleteByChannel(ctx, c.ID); err != nil {
		apierrors.ServerError(w, h.Log, "channel delete: messages", err)
		return
	}
	if err := h.Channels.Delete(ctx, c.ID); err != nil {
		if errors.Is(err, channelstore.ErrNotFound) {
			apierrors.NotFound(w, "Channel not found.")
			return
		}
		apierrors.ServerError(w, h.Log, "channel delete", err)
		return
	}

	h.Log.Info("channel deleted",
		zap.String("channel_id", c.ID.Hex()),
		zap.String("workspace_id", c.WorkspaceID.Hex()),
		zap.Int("messages_removed", len(messageIDs)))
	httpjson.NoContent(w)
}
