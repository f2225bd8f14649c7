package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/internal-chat/backend/internal/models"
)

type RegisterRequest struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	Username    string `json:"username"`
	DisplayName string `json:"displayName"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email"`
}

type ResetPasswordRequest struct {
	NewPassword string `json:"newPassword"`
}

type GoogleAuthRequest struct {
	Code        string `json:"code"`
	RedirectURI string `json:"redirectUri"`
}

type GoogleIDTokenRequest struct {
	IDToken string `json:"idToken"`
}

type AuthResponse struct {
	AccessToken  string    `json:"accessToken,omitempty"`
	RefreshToken string    `json:"refreshToken,omitempty"`
	TokenType    string    `json:"tokenType,omitempty"`
	User         *UserInfo `json:"user"`
}

type UserInfo struct {
	AccountID   uuid.UUID `json:"accountId"`
	Email       string    `json:"email"`
	Username    string    `json:"username,omitempty"`
	DisplayName string    `json:"displayName,omitempty"`
	AvatarURL   string    `json:"avatarUrl,omitempty"`
	Bio         string    `json:"bio,omitempty"`
	Status      string    `json:"status"`
	Roles       []string  `json:"roles"`
	IsVerified  bool      `json:"isVerified"`
	CreatedAt   time.Time `json:"createdAt"`
}

// NewUserInfo maps an account and its profile to the public view.
func NewUserInfo(account *models.Account) *UserInfo {
	info := &UserInfo{
		AccountID:  account.ID,
		Email:      account.Email,
		Status:     models.StatusOffline,
		Roles:      append([]string(nil), account.Roles...),
		IsVerified: account.IsVerified,
		CreatedAt:  account.CreatedAt,
	}
	if p := account.Profile; p != nil {
		info.Username = p.Username
		info.DisplayName = p.DisplayName
		info.AvatarURL = p.AvatarURL
		info.Bio = p.Bio
		if p.Status != "" {
			info.Status = p.Status
		}
	}
	return info
}
