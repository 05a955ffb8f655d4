// internal/app/features/conversations/handler.go
package conversations

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	apierrors "github.com/harborteam/harbor/internal/app/features/errors"
	conversationstore "github.com/harborteam/harbor/internal/app/store/conversations"
	memberstore "github.com/harborteam/harbor/internal/app/store/members"
	"github.com/harborteam/harbor/internal/app/system/authz"
	"github.com/harborteam/harbor/internal/app/system/guard"
	"github.com/harborteam/harbor/internal/app/system/httpjson"
	"github.com/harborteam/harbor/internal/app/system/timeouts"
	"github.com/harborteam/harbor/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Handler provides HTTP handlers for direct-message conversations.
type Handler struct {
	Conversations *conversationstore.Store
	Members       *memberstore.Store
	Guard         *guard.Guard
	Log           *zap.Logger
}

// NewHandler creates a conversations Handler.
func NewHandler(conversations *conversationstore.Store, members *memberstore.Store, g *guard.Guard, logger *zap.Logger) *Handler {
	return &Handler{Conversations: conversations, Members: members, Guard: g, Log: logger}
}

type resolveRequest struct {
	MemberID string `json:"memberId" validate:"required" label:"Member"`
}

type conversationResponse struct {
	ID          string    `json:"id"`
	WorkspaceID string    `json:"workspaceId"`
	MemberOneID string    `json:"memberOneId"`
	MemberTwoID string    `json:"memberTwoId"`
	CreatedAt   time.Time `json:"createdAt"`
}

func toResponse(c models.Conversation) conversationResponse {
	return conversationResponse{
		ID:          c.ID.Hex(),
		WorkspaceID: c.WorkspaceID.Hex(),
		MemberOneID: c.MemberOneID.Hex(),
		MemberTwoID: c.MemberTwoID.Hex(),
		CreatedAt:   c.CreatedAt,
	}
}

// HandleResolve handles POST /api/workspaces/{id}/conversations.
//
// Resolving is get-or-create on the canonical member pair: any two
// members share exactly one conversation no matter who opens it or how
// many times. A member may resolve a conversation with themselves
// (notes-to-self).
func (h *Handler) HandleResolve(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	userID, ok := authz.UserID(r)
	if !ok {
		apierrors.Unauthenticated(w)
		return
	}
	wsID, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		apierrors.NotFound(w, "Workspace not found.")
		return
	}

	self, err := h.Guard.Member(ctx, wsID, userID)
	if err != nil {
		if !apierrors.FromGuard(w, err) {
			apierrors.ServerError(w, h.Log, "conversation resolve: guard", err)
		}
		return
	}

	var req resolveRequest
	if err := httpjson.DecodeBody(r, &req); err != nil {
		apierrors.ValidationFailed(w, "Request body must be valid JSON.")
		return
	}
	otherID, err := primitive.ObjectIDFromHex(req.MemberID)
	if err != nil {
		apierrors.NotFound(w, "Member not found.")
		return
	}
	other, err := h.Members.GetByID(ctx, otherID)
	if err != nil || other.WorkspaceID != wsID {
		apierrors.NotFound(w, "Member not found.")
		return
	}

	c, err := h.Conversations.Resolve(ctx, wsID, self.ID, other.ID)
	if err != nil {
		apierrors.ServerError(w, h.Log, "conversation resolve", err)
		return
	}
	httpjson.OK(w, toResponse(c))
}

// ServeGet handles GET /api/conversations/{conversationId}. Only the
// two participants can see a conversation.
func (h *Handler) ServeGet(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	userID, ok := authz.UserID(r)
	if !ok {
		apierrors.Unauthenticated(w)
		return
	}
	convID, err := primitive.ObjectIDFromHex(chi.URLParam(r, "conversationId"))
	if err != nil {
		apierrors.NotFound(w, "Conversation not found.")
		return
	}

	c, err := h.Conversations.GetByID(ctx, convID)
	if err != nil {
		apierrors.NotFound(w, "Conversation not found.")
		return
	}
	self, err := h.Guard.Member(ctx, c.WorkspaceID, userID)
	if err != nil {
		if !apierrors.FromGuard(w, err) {
			apierrors.ServerError(w, h.Log, "conversation get: guard", err)
		}
		return
	}
	if !c.Includes(self.ID) {
		apierrors.NotFound(w, "Conversation not found.")
		return
	}
	httpjson.OK(w, toResponse(c))
}
