// internal/app/features/members/handler.go
package members

import (
	"time"

	conversationstore "github.com/harborteam/harbor/internal/app/store/conversations"
	memberstore "github.com/harborteam/harbor/internal/app/store/members"
	messagestore "github.com/harborteam/harbor/internal/app/store/messages"
	reactionstore "github.com/harborteam/harbor/internal/app/store/reactions"
	userstore "github.com/harborteam/harbor/internal/app/store/users"
	"github.com/harborteam/harbor/internal/app/system/guard"
	"github.com/harborteam/harbor/internal/domain/models"
	"go.uber.org/zap"
)

// Handler provides HTTP handlers for workspace membership: listing the
// roster, role changes, and removal (kick or leave).
type Handler struct {
	Members       *memberstore.Store
	Users         *userstore.Store
	Messages      *messagestore.Store
	Reactions     *reactionstore.Store
	Conversations *conversationstore.Store
	Guard         *guard.Guard
	Log           *zap.Logger
}

// NewHandler creates a members Handler.
func NewHandler(
	members *memberstore.Store,
	users *userstore.Store,
	messages *messagestore.Store,
	reactions *reactionstore.Store,
	conversations *conversationstore.Store,
	g *guard.Guard,
	logger *zap.Logger,
) *Handler {
	return &Handler{
		Members:       members,
		Users:         users,
		Messages:      messages,
		Reactions:     reactions,
		Conversations: conversations,
		Guard:         g,
		Log:           logger,
	}
}

type updateRoleRequest struct {
	Role string `json:"role" validate:"required" label:"Role"`
}

// memberResponse is one roster entry: the membership plus the user
// profile behind it.
type memberResponse struct {
	ID          string       `json:"id"`
	WorkspaceID string       `json:"workspaceId"`
	Role        string       `json:"role"`
	User        userSnapshot `json:"user"`
	CreatedAt   time.Time    `json:"createdAt"`
}

type userSnapshot struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Image string `json:"image,omitempty"`
}

func toResponse(m models.Member, u models.User) memberResponse {
	return memberResponse{
		ID:          m.ID.Hex(),
		WorkspaceID: m.WorkspaceID.Hex(),
		Role:        m.Role,
		User: userSnapshot{
			ID:    u.ID.Hex(),
			Name:  u.Name,
			Email: u.Email,
			Image: u.Image,
		},
		CreatedAt: m.CreatedAt,
	}
}
