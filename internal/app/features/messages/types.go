// internal/app/features/messages/types.go
package messages

import (
	"time"

	"github.com/harborteam/harbor/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type postRequest struct {
	WorkspaceID     string `json:"workspaceId" validate:"required" label:"Workspace"`
	ChannelID       string `json:"channelId,omitempty"`
	ConversationID  string `json:"conversationId,omitempty"`
	ParentMessageID string `json:"parentMessageId,omitempty"`
	Body            string `json:"body" validate:"max=20000" label:"Message body"`
	AttachmentID    string `json:"attachmentId,omitempty"`
}

type editRequest struct {
	Body string `json:"body" validate:"required,max=20000" label:"Message body"`
}

// authorView identifies who wrote a message, resolved through the
// membership to the user profile.
type authorView struct {
	MemberID string `json:"memberId"`
	UserID   string `json:"userId"`
	Name     string `json:"name"`
	Image    string `json:"image,omitempty"`
}

type reactionView struct {
	Value     string   `json:"value"`
	Count     int      `json:"count"`
	MemberIDs []string `json:"memberIds"`
}

// threadView summarizes a root message's replies for the timeline.
type threadView struct {
	Count           int64     `json:"count"`
	LastReplyAt     time.Time `json:"lastReplyAt"`
	LastAuthorName  string    `json:"lastAuthorName,omitempty"`
	LastAuthorImage string    `json:"lastAuthorImage,omitempty"`
}

type messageResponse struct {
	ID              string         `json:"id"`
	WorkspaceID     string         `json:"workspaceId"`
	ChannelID       string         `json:"channelId,omitempty"`
	ConversationID  string         `json:"conversationId,omitempty"`
	ParentMessageID string         `json:"parentMessageId,omitempty"`
	Body            string         `json:"body"`
	AttachmentURL   string         `json:"attachmentUrl,omitempty"`
	Author          authorView     `json:"author"`
	Reactions       []reactionView `json:"reactions"`
	Thread          *threadView    `json:"thread,omitempty"`
	CreatedAt       time.Time      `json:"createdAt"`
	UpdatedAt       *time.Time     `json:"updatedAt,omitempty"`
}

type listResponse struct {
	Messages     []messageResponse `json:"messages"`
	Continuation string            `json:"continuation,omitempty"`
	HasMore      bool              `json:"hasMore"`
}

func hexOrEmpty(id *primitive.ObjectID) string {
	if id == nil {
		return ""
	}
	return id.Hex()
}

// attachmentURL is where upload bytes are served from.
func attachmentURL(storageID string) string {
	if storageID == "" {
		return ""
	}
	return "/api/uploads/" + storageID
}

func baseResponse(m models.Message) messageResponse {
	return messageResponse{
		ID:              m.ID.Hex(),
		WorkspaceID:     m.WorkspaceID.Hex(),
		ChannelID:       hexOrEmpty(m.ChannelID),
		ConversationID:  hexOrEmpty(m.ConversationID),
		ParentMessageID: hexOrEmpty(m.ParentMessageID),
		Body:            m.Body,
		AttachmentURL:   attachmentURL(m.AttachmentID),
		Reactions:       []reactionView{},
		CreatedAt:       m.CreatedAt,
		UpdatedAt:       m.UpdatedAt,
	}
}
