// internal/app/features/workspaces/handler.go
package workspaces

import (
	channelstore "github.com/harborteam/harbor/internal/app/store/channels"
	conversationstore "github.com/harborteam/harbor/internal/app/store/conversations"
	memberstore "github.com/harborteam/harbor/internal/app/store/members"
	messagestore "github.com/harborteam/harbor/internal/app/store/messages"
	reactionstore "github.com/harborteam/harbor/internal/app/store/reactions"
	workspacestore "github.com/harborteam/harbor/internal/app/store/workspaces"
	"github.com/harborteam/harbor/internal/app/system/guard"
	"go.uber.org/zap"
)

// Handler provides HTTP handlers for workspace lifecycle: create, list,
// rename, join-code rotation, joining by code, and full-cascade delete.
type Handler struct {
	Workspaces    *workspacestore.Store
	Members       *memberstore.Store
	Channels      *channelstore.Store
	Conversations *conversationstore.Store
	Messages      *messagestore.Store
	Reactions     *reactionstore.Store
	Guard         *guard.Guard
	Log           *zap.Logger
}

// NewHandler creates a workspaces Handler.
func NewHandler(
	workspaces *workspacestore.Store,
	members *memberstore.Store,
	channels *channelstore.Store,
	conversations *conversationstore.Store,
	messages *messagestore.Store,
	reactions *reactionstore.Store,
	g *guard.Guard,
	logger *zap.Logger,
) *Handler {
	return &Handler{
		Workspaces:    workspaces,
		Members:       members,
		Channels:      channels,
		Conversations: conversations,
		Messages:      messages,
		Reactions:     reactions,
		Guard:         g,
		Log:           logger,
	}
}
