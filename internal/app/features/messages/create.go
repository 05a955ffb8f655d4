// internal/app/features/messages/create.go
package messages

import (
	"context"
	"errors"
	"net/http"
	"strings"

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

// HandlePost handles POST /api/messages.
//
// A message goes to exactly one scope: a channel or a conversation.
// Replies name a parent message; the scope is taken from the parent, and
// replying to a reply is rejected, so threads are always one level deep.
func (h *Handler) HandlePost(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	userID, ok := authz.UserID(r)
	if !ok {
		apierrors.Unauthenticated(w)
		return
	}

	var req postRequest
	if err := httpjson.DecodeBody(r, &req); err != nil {
		apierrors.ValidationFailed(w, "Request body must be valid JSON.")
		return
	}
	if v := inputval.Validate(req); v.HasErrors() {
		apierrors.ValidationFailed(w, v.First())
		return
	}

	wsID, err := primitive.ObjectIDFromHex(req.WorkspaceID)
	if err != nil {
		apierrors.NotFound(w, "Workspace not found.")
		return
	}
	member, err := h.Guard.Member(ctx, wsID, userID)
	if err != nil {
		if !apierrors.FromGuard(w, err) {
			apierrors.ServerError(w, h.Log, "message post: guard", err)
		}
		return
	}

	body := htmlsanitize.Sanitize(strings.TrimSpace(req.Body))
	if body == "" && req.AttachmentID == "" {
		apierrors.ValidationFailed(w, "A message needs a body or an attachment.")
		return
	}

	msg := models.Message{
		WorkspaceID: wsID,
		MemberID:    member.ID,
		Body:        body,
	}

	if req.AttachmentID != "" {
		up, err := h.Uploads.GetByStorageID(ctx, req.AttachmentID)
		if err != nil {
			if errors.Is(err, uploadstore.ErrNotFound) {
				apierrors.ValidationFailed(w, "Attachment not found.")
				return
			}
			apierrors.ServerError(w, h.Log, "message post: attachment", err)
			return
		}
		if !up.Uploaded {
			apierrors.ValidationFailed(w, "Attachment has no content yet.")
			return
		}
		msg.AttachmentID = up.StorageID
	}

	var parent *models.Message
	if req.ParentMessageID != "" {
		parentID, err := primitive.ObjectIDFromHex(req.ParentMessageID)
		if err != nil {
			apierrors.NotFound(w, "Parent message not found.")
			return
		}
		p, err := h.Messages.GetByID(ctx, parentID)
		if err != nil || p.WorkspaceID != wsID {
			apierrors.NotFound(w, "Parent message not found.")
			return
		}
		if !p.IsRoot() {
			apierrors.ValidationFailed(w, "Replies to replies are not supported.")
			return
		}
		parent = &p
		msg.ParentMessageID = &p.ID
	}

	if !h.resolveScope(ctx, w, &msg, member, req, parent) {
		return
	}

	created, err := h.Messages.Create(ctx, msg)
	if err != nil {
		apierrors.ServerError(w, h.Log, "message post", err)
		return
	}

	resp := baseResponse(created)
	user, err := h.Users.GetByID(ctx, userID)
	if err == nil {
		resp.Author = authorView{
			MemberID: member.ID.Hex(),
			UserID:   user.ID.Hex(),
			Name:     user.Name,
			Image:    user.Image,
		}
	}

	h.publish(created, realtime.KindMessageCreated, resp)
	h.Log.Info("message posted",
		zap.String("message_id", created.ID.Hex()),
		zap.String("workspace_id", wsID.Hex()),
		zap.Bool("reply", parent != nil))
	httpjson.Created(w, resp)
}

// resolveScope fills the message's channel or conversation reference,
// enforcing the one-scope rule and the caller's access to that scope.
// It writes the error response itself and returns false on failure.
func (h *Handler) resolveScope(ctx context.Context, w http.ResponseWriter, msg *models.Message, member models.Member, req postRequest, parent *models.Message) bool {
	channelID, conversationID := req.ChannelID, req.ConversationID

	// A reply inherits its parent's scope. An explicitly supplied scope
	// must agree.
	if parent != nil {
		if parent.ChannelID != nil {
			if conversationID != "" || (channelID != "" && channelID != parent.ChannelID.Hex()) {
				apierrors.ValidationFailed(w, "Reply scope must match the parent message.")
				return false
			}
			channelID, conversationID = parent.ChannelID.Hex(), ""
		} else if parent.ConversationID != nil {
			if channelID != "" || (conversationID != "" && conversationID != parent.ConversationID.Hex()) {
				apierrors.ValidationFailed(w, "Reply scope must match the parent message.")
				return false
			}
			channelID, conversationID = "", parent.ConversationID.Hex()
		}
	}

	if (channelID == "") == (conversationID == "") {
		apierrors.ValidationFailed(w, "A message goes to exactly one of a channel or a conversation.")
		return false
	}

	if channelID != "" {
		id, err := primitive.ObjectIDFromHex(channelID)
		if err != nil {
			apierrors.NotFound(w, "Channel not found.")
			return false
		}
		c, err := h.Channels.GetByID(ctx, id)
		if err != nil || c.WorkspaceID != msg.WorkspaceID {
			apierrors.NotFound(w, "Channel not found.")
			return false
		}
		msg.ChannelID = &c.ID
		return true
	}

	id, err := primitive.ObjectIDFromHex(conversationID)
	if err != nil {
		apierrors.NotFound(w, "Conversation not found.")
		return false
	}
	c, err := h.Conversations.GetByID(ctx, id)
	if err != nil || c.WorkspaceID != msg.WorkspaceID {
		apierrors.NotFound(w, "Conversation not found.")
		return false
	}
	if !c.Includes(member.ID) {
		apierrors.NotFound(w, "Conversation not found.")
		return false
	}
	msg.ConversationID = &c.ID
	return true
}

// publish fans a message event out to its scope topic, and to the
// parent's thread topic when the message is a reply.
func (h *Handler) publish(m models.Message, kind string, data any) {
	var topic string
	switch {
	case m.ChannelID != nil:
		topic = realtime.ChannelTopic(*m.ChannelID)
	case m.ConversationID != nil:
		topic = realtime.ConversationTopic(*m.ConversationID)
	default:
		return
	}
	h.Hub.Publish(realtime.Event{Topic: topic, Kind: kind, Data: data})
	if m.ParentMessageID != nil {
		h.Hub.Publish(realtime.Event{Topic: realtime.ThreadTopic(*m.ParentMessageID), Kind: kind, Data: data})
	}
}
