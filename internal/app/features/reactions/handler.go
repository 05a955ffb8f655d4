// internal/app/features/reactions/handler.go
package reactions

import (
	"context"
	"net/http"
	"unicode/utf8"

	"github.com/go-chi/chi/v5"
	apierrors "github.com/harborteam/harbor/internal/app/features/errors"
	conversationstore "github.com/harborteam/harbor/internal/app/store/conversations"
	messagestore "github.com/harborteam/harbor/internal/app/store/messages"
	reactionstore "github.com/harborteam/harbor/internal/app/store/reactions"
	"github.com/harborteam/harbor/internal/app/system/authz"
	"github.com/harborteam/harbor/internal/app/system/guard"
	"github.com/harborteam/harbor/internal/app/system/httpjson"
	"github.com/harborteam/harbor/internal/app/system/realtime"
	"github.com/harborteam/harbor/internal/app/system/timeouts"
	"github.com/harborteam/harbor/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// maxValueLen caps the reaction value. Emoji are short; anything longer
// is not a reaction.
const maxValueLen = 32

// Handler toggles reactions on messages.
type Handler struct {
	Reactions     *reactionstore.Store
	Messages      *messagestore.Store
	Conversations *conversationstore.Store
	Guard         *guard.Guard
	Hub           *realtime.Hub
	Log           *zap.Logger
}

// NewHandler creates a reactions Handler.
func NewHandler(
	reactions *reactionstore.Store,
	messages *messagestore.Store,
	conversations *conversationstore.Store,
	g *guard.Guard,
	hub *realtime.Hub,
	logger *zap.Logger,
) *Handler {
	return &Handler{
		Reactions:     reactions,
		Messages:      messages,
		Conversations: conversations,
		Guard:         g,
		Hub:           hub,
		Log:           logger,
	}
}

type toggleRequest struct {
	Value string `json:"value"`
}

type toggleResponse struct {
	MessageID string `json:"messageId"`
	Value     string `json:"value"`
	Added     bool   `json:"added"`
}

// HandleToggle handles POST /api/messages/{messageId}/reactions.
//
// Toggling is its own inverse: the same member sending the same value
// adds the reaction if absent and removes it if present. Two toggles
// land the message back where it started regardless of interleaving.
func (h *Handler) HandleToggle(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	userID, ok := authz.UserID(r)
	if !ok {
		apierrors.Unauthenticated(w)
		return
	}
	msgID, err := primitive.ObjectIDFromHex(chi.URLParam(r, "messageId"))
	if err != nil {
		apierrors.NotFound(w, "Message not found.")
		return
	}

	var req toggleRequest
	if err := httpjson.DecodeBody(r, &req); err != nil {
		apierrors.ValidationFailed(w, "Request body must be valid JSON.")
		return
	}
	if req.Value == "" || utf8.RuneCountInString(req.Value) > maxValueLen {
		apierrors.ValidationFailed(w, "Reaction value is required and must be short.")
		return
	}

	m, err := h.Messages.GetByID(ctx, msgID)
	if err != nil {
		apierrors.NotFound(w, "Message not found.")
		return
	}
	member, err := h.Guard.Member(ctx, m.WorkspaceID, userID)
	if err != nil {
		if !apierrors.FromGuard(w, err) {
			apierrors.ServerError(w, h.Log, "reaction toggle: guard", err)
		}
		return
	}
	if m.ConversationID != nil {
		c, err := h.Conversations.GetByID(ctx, *m.ConversationID)
		if err != nil || !c.Includes(member.ID) {
			apierrors.NotFound(w, "Message not found.")
			return
		}
	}

	added, err := h.Reactions.Toggle(ctx, m.WorkspaceID, m.ID, member.ID, req.Value)
	if err != nil {
		apierrors.ServerError(w, h.Log, "reaction toggle", err)
		return
	}

	resp := toggleResponse{MessageID: m.ID.Hex(), Value: req.Value, Added: added}
	h.publish(m, resp)
	h.Log.Debug("reaction toggled",
		zap.String("message_id", m.ID.Hex()),
		zap.Bool("added", added))
	httpjson.OK(w, resp)
}

// publish sends the toggle to the message's scope topic, and to the
// thread topic when the message is a reply.
func (h *Handler) publish(m models.Message, data any) {
	var topic string
	switch {
	case m.ChannelID != nil:
		topic = realtime.ChannelTopic(*m.ChannelID)
	case m.ConversationID != nil:
		topic = realtime.ConversationTopic(*m.ConversationID)
	default:
		return
	}
	h.Hub.Publish(realtime.Event{Topic: topic, Kind: realtime.KindReactionToggled, Data: data})
	if m.ParentMessageID != nil {
		h.Hub.Publish(realtime.Event{Topic: realtime.ThreadTopic(*m.ParentMessageID), Kind: realtime.KindReactionToggled, Data: data})
	}
}
