// internal/app/features/stream/handler.go
package stream

import (
	"context"
	"net/http"

	"github.com/gorilla/websocket"
	apierrors "github.com/harborteam/harbor/internal/app/features/errors"
	channelstore "github.com/harborteam/harbor/internal/app/store/channels"
	conversationstore "github.com/harborteam/harbor/internal/app/store/conversations"
	messagestore "github.com/harborteam/harbor/internal/app/store/messages"
	"github.com/harborteam/harbor/internal/app/system/authz"
	"github.com/harborteam/harbor/internal/app/system/guard"
	"github.com/harborteam/harbor/internal/app/system/realtime"
	"github.com/harborteam/harbor/internal/app/system/timeouts"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Handler serves the websocket change stream. A client subscribes to
// the timelines it is viewing and receives every event published to
// them, in commit order per timeline.
type Handler struct {
	Hub           *realtime.Hub
	Channels      *channelstore.Store
	Conversations *conversationstore.Store
	Messages      *messagestore.Store
	Guard         *guard.Guard
	Log           *zap.Logger

	upgrader websocket.Upgrader
}

// NewHandler creates a stream Handler. Only the listed origins may open
// a stream; an empty list allows same-host requests only.
func NewHandler(
	hub *realtime.Hub,
	channels *channelstore.Store,
	conversations *conversationstore.Store,
	messages *messagestore.Store,
	g *guard.Guard,
	allowedOrigins []string,
	logger *zap.Logger,
) *Handler {
	allowed := make(map[string]bool, len(allowedOrigins))
	for _, o := range allowedOrigins {
		allowed[o] = true
	}
	return &Handler{
		Hub:           hub,
		Channels:      channels,
		Conversations: conversations,
		Messages:      messages,
		Guard:         g,
		Log:           logger,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				if origin == "" {
					return true
				}
				return allowed[origin]
			},
		},
	}
}

// ServeStream handles GET /api/stream.
//
// Query parameters channelId, conversationId, and threadId may each
// repeat; the stream carries the union of those topics. Every topic is
// authorized before the upgrade, so an unauthorized request fails as a
// plain HTTP error rather than a closed socket.
func (h *Handler) ServeStream(w http.ResponseWriter, r *http.Request) {
	userID, ok := authz.UserID(r)
	if !ok {
		apierrors.Unauthenticated(w)
		return
	}

	topics, ok := h.resolveTopics(r.Context(), w, r, userID)
	if !ok {
		return
	}
	if len(topics) == 0 {
		apierrors.ValidationFailed(w, "Subscribe to at least one channel, conversation, or thread.")
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.Log.Debug("websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	sub := h.Hub.Subscribe(topics...)
	defer h.Hub.Unsubscribe(sub)

	h.Log.Info("stream opened",
		zap.String("user_id", userID.Hex()),
		zap.Int("topics", len(topics)))

	// Reader goroutine: drains client frames (keepalive pings) and
	// signals when the peer goes away.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case ev, open := <-sub.C:
			if !open {
				// Dropped as a slow consumer.
				return
			}
			if err := conn.WriteJSON(ev); err != nil {
				return
			}
		case <-done:
			return
		}
	}
}

// resolveTopics authorizes each requested timeline and returns its
// topic strings. Writes the error response itself on failure.
func (h *Handler) resolveTopics(ctx context.Context, w http.ResponseWriter, r *http.Request, userID primitive.ObjectID) ([]string, bool) {
	ctx, cancel := context.WithTimeout(ctx, timeouts.Medium())
	defer cancel()

	q := r.URL.Query()
	var topics []string

	for _, raw := range q["channelId"] {
		id, err := primitive.ObjectIDFromHex(raw)
		if err != nil {
			apierrors.NotFound(w, "Channel not found.")
			return nil, false
		}
		c, err := h.Channels.GetByID(ctx, id)
		if err != nil {
			apierrors.NotFound(w, "Channel not found.")
			return nil, false
		}
		if _, err := h.Guard.Member(ctx, c.WorkspaceID, userID); err != nil {
			if !apierrors.FromGuard(w, err) {
				apierrors.ServerError(w, h.Log, "stream: guard", err)
			}
			return nil, false
		}
		topics = append(topics, realtime.ChannelTopic(c.ID))
	}

	for _, raw := range q["conversationId"] {
		id, err := primitive.ObjectIDFromHex(raw)
		if err != nil {
			apierrors.NotFound(w, "Conversation not found.")
			return nil, false
		}
		c, err := h.Conversations.GetByID(ctx, id)
		if err != nil {
			apierrors.NotFound(w, "Conversation not found.")
			return nil, false
		}
		member, err := h.Guard.Member(ctx, c.WorkspaceID, userID)
		if err != nil {
			if !apierrors.FromGuard(w, err) {
				apierrors.ServerError(w, h.Log, "stream: guard", err)
			}
			return nil, false
		}
		if !c.Includes(member.ID) {
			apierrors.NotFound(w, "Conversation not found.")
			return nil, false
		}
		topics = append(topics, realtime.ConversationTopic(c.ID))
	}

	for _, raw := range q["threadId"] {
		id, err := primitive.ObjectIDFromHex(raw)
		if err != nil {
			apierrors.NotFound(w, "Message not found.")
			return nil, false
		}
		m, err := h.Messages.GetByID(ctx, id)
		if err != nil {
			apierrors.NotFound(w, "Message not found.")
			return nil, false
		}
		member, err := h.Guard.Member(ctx, m.WorkspaceID, userID)
		if err != nil {
			if !apierrors.FromGuard(w, err) {
				apierrors.ServerError(w, h.Log, "stream: guard", err)
			}
			return nil, false
		}
		if m.ConversationID != nil {
			c, err := h.Conversations.GetByID(ctx, *m.ConversationID)
			if err != nil || !c.Includes(member.ID) {
				apierrors.NotFound(w, "Message not found.")
				return nil, false
			}
		}
		topics = append(topics, realtime.ThreadTopic(m.ID))
	}

	return topics, true
}
