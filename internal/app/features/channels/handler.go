// internal/app/features/channels/handler.go
package channels

import (
	"regexp"
	"strings"
	"time"

	channelstore "github.com/harborteam/harbor/internal/app/store/channels"
	messagestore "github.com/harborteam/harbor/internal/app/store/messages"
	reactionstore "github.com/harborteam/harbor/internal/app/store/reactions"
	"github.com/harborteam/harbor/internal/app/system/guard"
	"github.com/harborteam/harbor/internal/domain/models"
	"go.uber.org/zap"
)

// Handler provides HTTP handlers for channels. Creating, renaming, and
// deleting channels is admin work; reading is open to every member.
type Handler struct {
	Channels  *channelstore.Store
	Messages  *messagestore.Store
	Reactions *reactionstore.Store
	Guard     *guard.Guard
	Log       *zap.Logger
}

// NewHandler creates a channels Handler.
func NewHandler(
	channels *channelstore.Store,
	messages *messagestore.Store,
	reactions *reactionstore.Store,
	g *guard.Guard,
	logger *zap.Logger,
) *Handler {
	return &Handler{
		Channels:  channels,
		Messages:  messages,
		Reactions: reactions,
		Guard:     g,
		Log:       logger,
	}
}

type nameRequest struct {
	Name string `json:"name" validate:"required,min=3,max=80" label:"Channel name"`
}

type channelResponse struct {
	ID          string    `json:"id"`
	WorkspaceID string    `json:"workspaceId"`
	Name        string    `json:"name"`
	CreatedAt   time.Time `json:"createdAt"`
}

func toResponse(c models.Channel) channelResponse {
	return channelResponse{
		ID:          c.ID.Hex(),
		WorkspaceID: c.WorkspaceID.Hex(),
		Name:        c.Name,
		CreatedAt:   c.CreatedAt,
	}
}

var nameSpaces = regexp.MustCompile(`\s+`)

// normalizeName turns display input into the slug form channels store:
// lowercased, runs of whitespace collapsed to a dash.
func normalizeName(name string) string {
	return strings.ToLower(nameSpaces.ReplaceAllString(strings.TrimSpace(name), "-"))
}
