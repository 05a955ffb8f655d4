// internal/app/features/messages/update.go
package messages

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	apierrors "github.com/harborteam/harbor/internal/app/features/errors"
	uploadstore "github.com/harborteam/harbor/internal/app/store/uploads"
	"github.com/harborteam/harbor/internal/app/system/authz"
	"github.com/harborteam/harbor/internal/app/system/htmlsanitize"
	"github.com/harborteam/harbor/internal/app/system/httpjson"
	"github.com/harborteam/harbor/internal/app/system/inputval"
	"github.com/harborteam/harbor/internal/app/system/realtime"
	"github.com/harborteam/harbor/internal/app/system/timeouts"
	"github.com/harborteam/harbor/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// HandleEdit handles PATCH /api/messages/{messageId}. Author only.
// Editing replaces the body and stamps updatedAt; createdAt and the
// message's timeline position never move.
func (h *Handler) HandleEdit(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	m, ok := h.loadOwnMessage(ctx, w, r)
	if !ok {
		return
	}

	var req editRequest
	if err := httpjson.DecodeBody(r, &req); err != nil {
		apierrors.ValidationFailed(w, "Request body must be valid JSON.")
		return
	}
	if v := inputval.Validate(req); v.HasErrors() {
		apierrors.ValidationFailed(w, v.First())
		return
	}
	body := htmlsanitize.Sanitize(strings.TrimSpace(req.Body))
	if body == "" && m.AttachmentID == "" {
		apierrors.ValidationFailed(w, "A message needs a body or an attachment.")
		return
	}

	if err := h.Messages.Edit(ctx, m.ID, body); err != nil {
		apierrors.ServerError(w, h.Log, "message edit", err)
		return
	}

	updated, err := h.Messages.GetByID(ctx, m.ID)
	if err != nil {
		apierrors.ServerError(w, h.Log, "message edit: reload", err)
		return
	}
	enriched, err := h.enrich(ctx, []models.Message{updated}, false)
	if err != nil {
		apierrors.ServerError(w, h.Log, "message edit: enrich", err)
		return
	}

	h.publish(updated, realtime.KindMessageUpdated, enriched[0])
	h.Log.Info("message edited", zap.String("message_id", m.ID.Hex()))
	httpjson.OK(w, enriched[0])
}

// HandleDelete handles DELETE /api/messages/{messageId}. Author only.
// The message's reactions and attachment go with it; thread replies
// stay and become orphans the thread projector no longer counts.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	m, ok := h.loadOwnMessage(ctx, w, r)
	if !ok {
		return
	}

	if _, err := h.Reactions.DeleteByMessage(ctx, m.ID); err != nil {
		apierrors.ServerError(w, h.Log, "message delete: reactions", err)
		return
	}
	if err := h.Messages.Delete(ctx, m.ID); err != nil {
		apierrors.ServerError(w, h.Log, "message delete", err)
		return
	}
	if m.AttachmentID != "" {
		// The message row is gone; a failure here only strands bytes,
		// so it logs rather than erroring the request.
		if err := h.Uploads.Delete(ctx, m.AttachmentID); err != nil && !errors.Is(err, uploadstore.ErrNotFound) {
			h.Log.Warn("attachment record cleanup failed",
				zap.String("storage_id", m.AttachmentID), zap.Error(err))
		}
		if err := h.Blobs.Delete(m.AttachmentID); err != nil {
			h.Log.Warn("attachment blob cleanup failed",
				zap.String("storage_id", m.AttachmentID), zap.Error(err))
		}
	}

	h.publish(m, realtime.KindMessageDeleted, map[string]string{"id": m.ID.Hex()})
	h.Log.Info("message deleted", zap.String("message_id", m.ID.Hex()))
	httpjson.NoContent(w)
}

// loadOwnMessage resolves {messageId} and verifies the caller authored
// it through a live membership. Writes the error response itself.
func (h *Handler) loadOwnMessage(ctx context.Context, w http.ResponseWriter, r *http.Request) (models.Message, bool) {
	userID, ok := authz.UserID(r)
	if !ok {
		apierrors.Unauthenticated(w)
		return models.Message{}, false
	}
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "messageId"))
	if err != nil {
		apierrors.NotFound(w, "Message not found.")
		return models.Message{}, false
	}
	m, err := h.Messages.GetByID(ctx, id)
	if err != nil {
		apierrors.NotFound(w, "Message not found.")
		return models.Message{}, false
	}

	member, err := h.Guard.Member(ctx, m.WorkspaceID, userID)
	if err != nil {
		if !apierrors.FromGuard(w, err) {
			apierrors.ServerError(w, h.Log, "message load: guard", err)
		}
		return models.Message{}, false
	}
	if m.MemberID != member.ID {
		apierrors.PermissionDenied(w, "Only the author can change a message.")
		return models.Message{}, false
	}
	return m, true
}
