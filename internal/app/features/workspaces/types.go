// internal/app/features/workspaces/types.go
package workspaces

import (
	"time"

	"github.com/harborteam/harbor/internal/domain/models"
)

type createRequest struct {
	Name string `json:"name" validate:"required,min=3,max=80" label:"Workspace name"`
}

type renameRequest struct {
	Name string `json:"name" validate:"required,min=3,max=80" label:"Workspace name"`
}

type joinRequest struct {
	Code string `json:"code" validate:"required" label:"Join code"`
}

// workspaceResponse is the member-facing view of a workspace. JoinCode
// is present only for admins.
type workspaceResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Role      string    `json:"role,omitempty"`
	JoinCode  string    `json:"joinCode,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func toResponse(ws models.Workspace, member models.Member) workspaceResponse {
	resp := workspaceResponse{
		ID:        ws.ID.Hex(),
		Name:      ws.Name,
		Role:      member.Role,
		CreatedAt: ws.CreatedAt,
		UpdatedAt: ws.UpdatedAt,
	}
	if member.IsAdmin() {
		resp.JoinCode = ws.JoinCode
	}
	return resp
}

// infoResponse is the pre-join view: enough to render a join screen,
// nothing more.
type infoResponse struct {
	Name     string `json:"name"`
	IsMember bool   `json:"isMember"`
}
