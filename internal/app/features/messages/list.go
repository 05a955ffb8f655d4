// internal/app/features/messages/list.go
package messages

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	apierrors "github.com/harborteam/harbor/internal/app/features/errors"
	messagestore "github.com/harborteam/harbor/internal/app/store/messages"
	"github.com/harborteam/harbor/internal/app/system/authz"
	"github.com/harborteam/harbor/internal/app/system/httpjson"
	"github.com/harborteam/harbor/internal/app/system/timeouts"
	"github.com/harborteam/harbor/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ServeList handles GET /api/messages.
//
// Query parameters: channelId or conversationId selects the timeline;
// parentMessageId switches to that message's thread (the scope is then
// derived from the parent); cursor and limit page through older
// messages. Root timelines carry thread summaries, thread views do not.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	userID, ok := authz.UserID(r)
	if !ok {
		apierrors.Unauthenticated(w)
		return
	}

	q := r.URL.Query()
	limit := 0
	if raw := q.Get("limit"); raw != "" {
		limit, _ = strconv.Atoi(raw)
	}

	var (
		scope    messagestore.Scope
		parentID *primitive.ObjectID
	)

	if raw := q.Get("parentMessageId"); raw != "" {
		id, err := primitive.ObjectIDFromHex(raw)
		if err != nil {
			apierrors.NotFound(w, "Message not found.")
			return
		}
		parent, err := h.Messages.GetByID(ctx, id)
		if err != nil {
			apierrors.NotFound(w, "Message not found.")
			return
		}
		parentID = &parent.ID
		scope = messagestore.Scope{ChannelID: parent.ChannelID, ConversationID: parent.ConversationID}
	} else {
		if raw := q.Get("channelId"); raw != "" {
			id, err := primitive.ObjectIDFromHex(raw)
			if err != nil {
				apierrors.NotFound(w, "Channel not found.")
				return
			}
			scope.ChannelID = &id
		}
		if raw := q.Get("conversationId"); raw != "" {
			id, err := primitive.ObjectIDFromHex(raw)
			if err != nil {
				apierrors.NotFound(w, "Conversation not found.")
				return
			}
			scope.ConversationID = &id
		}
	}
	if err := scope.Validate(); err != nil {
		apierrors.ValidationFailed(w, "Provide exactly one of channelId or conversationId.")
		return
	}

	if !h.authorizeScope(ctx, w, scope, userID) {
		return
	}

	page, err := h.Messages.List(ctx, scope, parentID, q.Get("cursor"), limit)
	if err != nil {
		if errors.Is(err, messagestore.ErrBadCursor) {
			apierrors.ValidationFailed(w, "Pagination cursor is not valid.")
			return
		}
		apierrors.ServerError(w, h.Log, "message list", err)
		return
	}

	// Thread summaries only decorate root timelines.
	enriched, err := h.enrich(ctx, page.Messages, parentID == nil)
	if err != nil {
		apierrors.ServerError(w, h.Log, "message list: enrich", err)
		return
	}
	httpjson.OK(w, listResponse{
		Messages:     enriched,
		Continuation: page.Continuation,
		HasMore:      page.HasMore,
	})
}

// ServeGet handles GET /api/messages/{messageId}.
func (h *Handler) ServeGet(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	userID, ok := authz.UserID(r)
	if !ok {
		apierrors.Unauthenticated(w)
		return
	}
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "messageId"))
	if err != nil {
		apierrors.NotFound(w, "Message not found.")
		return
	}
	m, err := h.Messages.GetByID(ctx, id)
	if err != nil {
		apierrors.NotFound(w, "Message not found.")
		return
	}
	scope := messagestore.Scope{ChannelID: m.ChannelID, ConversationID: m.ConversationID}
	if !h.authorizeScope(ctx, w, scope, userID) {
		return
	}

	enriched, err := h.enrich(ctx, []models.Message{m}, m.IsRoot())
	if err != nil {
		apierrors.ServerError(w, h.Log, "message get: enrich", err)
		return
	}
	httpjson.OK(w, enriched[0])
}

// authorizeScope verifies the caller can read a timeline: workspace
// membership for channels, participation for conversations. Writes the
// error response itself and returns false on failure.
func (h *Handler) authorizeScope(ctx context.Context, w http.ResponseWriter, scope messagestore.Scope, userID primitive.ObjectID) bool {
	if scope.ChannelID != nil {
		c, err := h.Channels.GetByID(ctx, *scope.ChannelID)
		if err != nil {
			apierrors.NotFound(w, "Channel not found.")
			return false
		}
		if _, err := h.Guard.Member(ctx, c.WorkspaceID, userID); err != nil {
			if !apierrors.FromGuard(w, err) {
				apierrors.ServerError(w, h.Log, "message scope: guard", err)
			}
			return false
		}
		return true
	}

	c, err := h.Conversations.GetByID(ctx, *scope.ConversationID)
	if err != nil {
		apierrors.NotFound(w, "Conversation not found.")
		return false
	}
	member, err := h.Guard.Member(ctx, c.WorkspaceID, userID)
	if err != nil {
		if !apierrors.FromGuard(w, err) {
			apierrors.ServerError(w, h.Log, "message scope: guard", err)
		}
		return false
	}
	if !c.Includes(member.ID) {
		apierrors.NotFound(w, "Conversation not found.")
		return false
	}
	return true
}
