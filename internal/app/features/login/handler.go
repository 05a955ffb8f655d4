// internal/app/features/login/handler.go
package login

import (
	"fmt"
	"strings"
	"time"

	"github.com/harborteam/harbor/internal/app/store/emailverify"
	userstore "github.com/harborteam/harbor/internal/app/store/users"
	"github.com/harborteam/harbor/internal/app/system/auth"
	"github.com/harborteam/harbor/internal/app/system/mailer"
	"github.com/harborteam/harbor/internal/domain/models"
	"go.uber.org/zap"
)

// Auth methods recorded on the user.
const (
	methodPassword = "password"
	methodOTP      = "otp"
)

// Handler serves password and one-time-code authentication: signup,
// signin, signout, password reset, and the current-user endpoint.
type Handler struct {
	Users      *userstore.Store
	Verify     *emailverify.Store
	Mailer     *mailer.Mailer
	SessionMgr *auth.SessionManager
	SiteName   string
	Log        *zap.Logger
}

// NewHandler creates a login Handler.
func NewHandler(
	users *userstore.Store,
	verify *emailverify.Store,
	m *mailer.Mailer,
	sm *auth.SessionManager,
	siteName string,
	logger *zap.Logger,
) *Handler {
	return &Handler{
		Users:      users,
		Verify:     verify,
		Mailer:     m,
		SessionMgr: sm,
		SiteName:   siteName,
		Log:        logger,
	}
}

type signupRequest struct {
	Name     string `json:"name" validate:"required,max=120" label:"Full name"`
	Email    string `json:"email" validate:"required,email" label:"Email"`
	Password string `json:"password" validate:"required,min=8,max=128" label:"Password"`
}

type signinRequest struct {
	Email    string `json:"email" validate:"required,email" label:"Email"`
	Password string `json:"password" validate:"required" label:"Password"`
}

type emailRequest struct {
	Email string `json:"email" validate:"required,email" label:"Email"`
}

type otpVerifyRequest struct {
	Email string `json:"email" validate:"required,email" label:"Email"`
	Code  string `json:"code" validate:"required" label:"Code"`
}

type updateMeRequest struct {
	Name  string `json:"name,omitempty" validate:"max=120" label:"Full name"`
	Image string `json:"image,omitempty" validate:"max=2048" label:"Image URL"`
}

type resetConfirmRequest struct {
	Email       string `json:"email" validate:"required,email" label:"Email"`
	Code        string `json:"code" validate:"required" label:"Code"`
	NewPassword string `json:"newPassword" validate:"required,min=8,max=128" label:"Password"`
}

type userResponse struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Email      string    `json:"email"`
	Image      string    `json:"image,omitempty"`
	AuthMethod string    `json:"authMethod"`
	CreatedAt  time.Time `json:"createdAt"`
}

func toResponse(u models.User) userResponse {
	return userResponse{
		ID:         u.ID.Hex(),
		Name:       u.Name,
		Email:      u.Email,
		Image:      u.Image,
		AuthMethod: u.AuthMethod,
		CreatedAt:  u.CreatedAt,
	}
}

func sessionUser(u models.User) *auth.SessionUser {
	return &auth.SessionUser{ID: u.ID.Hex(), Name: u.Name, Email: u.Email}
}

// nameFromEmail derives a display name for accounts created by OTP
// sign-in, where no name was ever typed.
func nameFromEmail(email string) string {
	if at := strings.IndexByte(email, '@'); at > 0 {
		return email[:at]
	}
	return email
}

func expiresIn(d time.Duration) string {
	return fmt.Sprintf("%d minutes", int(d.Minutes()))
}
