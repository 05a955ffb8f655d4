// internal/app/features/channels/load.go
package channels

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	apierrors "github.com/harborteam/harbor/internal/app/features/errors"
	"github.com/harborteam/harbor/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// loadChannel resolves {channelId} and fetches the channel, writing the
// error response itself on failure.
func (h *Handler) loadChannel(ctx context.Context, w http.ResponseWriter, r *http.Request) (models.Channel, bool) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "channelId"))
	if err != nil {
		apierrors.NotFound(w, "Channel not found.")
		return models.Channel{}, false
	}
	c, err := h.Channels.GetByID(ctx, id)
	if err != nil {
		apierrors.NotFound(w, "Channel not found.")
		return models.Channel{}, false
	}
	return c, true
}

// loadChannelForMember additionally checks the caller's membership in
// the channel's workspace.
func (h *Handler) loadChannelForMember(ctx context.Context, w http.ResponseWriter, r *http.Request, userID primitive.ObjectID) (models.Channel, bool) {
	c, ok := h.loadChannel(ctx, w, r)
	if !ok {
		return models.Channel{}, false
	}
	if _, err := h.Guard.Member(ctx, c.WorkspaceID, userID); err != nil {
		if !apierrors.FromGuard(w, err) {
			apierrors.ServerError(w, h.Log, "channel load: guard", err)
		}
		return models.Channel{}, false
	}
	return c, true
}
