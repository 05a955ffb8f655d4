// internal/app/features/messages/handler.go
package messages

import (
	channelstore "github.com/harborteam/harbor/internal/app/store/channels"
	conversationstore "github.com/harborteam/harbor/internal/app/store/conversations"
	memberstore "github.com/harborteam/harbor/internal/app/store/members"
	messagestore "github.com/harborteam/harbor/internal/app/store/messages"
	reactionstore "github.com/harborteam/harbor/internal/app/store/reactions"
	uploadstore "github.com/harborteam/harbor/internal/app/store/uploads"
	userstore "github.com/harborteam/harbor/internal/app/store/users"
	"github.com/harborteam/harbor/internal/app/system/blob"
	"github.com/harborteam/harbor/internal/app/system/guard"
	"github.com/harborteam/harbor/internal/app/system/realtime"
	"go.uber.org/zap"
)

// Handler provides HTTP handlers for messages: posting into channels,
// conversations, and threads, editing, deleting, and paginated reads
// with author, reaction, and thread enrichment.
type Handler struct {
	Messages      *messagestore.Store
	Reactions     *reactionstore.Store
	Members       *memberstore.Store
	Users         *userstore.Store
	Channels      *channelstore.Store
	Conversations *conversationstore.Store
	Uploads       *uploadstore.Store
	Blobs         *blob.DiskStore
	Guard         *guard.Guard
	Hub           *realtime.Hub
	Log           *zap.Logger
}

// NewHandler creates a messages Handler.
func NewHandler(
	messages *messagestore.Store,
	reactions *reactionstore.Store,
	members *memberstore.Store,
	users *userstore.Store,
	channels *channelstore.Store,
	conversations *conversationstore.Store,
	uploads *uploadstore.Store,
	blobs *blob.DiskStore,
	g *guard.Guard,
	hub *realtime.Hub,
	logger *zap.Logger,
) *Handler {
	return &Handler{
		Messages:      messages,
		Reactions:     reactions,
		Members:       members,
		Users:         users,
		Channels:      channels,
		Conversations: conversations,
		Uploads:       uploads,
		Blobs:         blobs,
		Guard:         g,
		Hub:           hub,
		Log:           logger,
	}
}
