package transport

import "github.com/Skotchmaster/catalog/internal/models"

// Pointer fields distinguish an absent key from an empty value.

type CredentialsRequest struct {
	Email    *string `json:"email"    form:"email"`
	Password *string `json:"password" form:"password"`
}

type RevokeRequest struct {
	Revoke *bool `json:"revoke" form:"revoke"`
}

type CreateItemRequest struct {
	Itemname    string `json:"itemname"    form:"itemname"`
	Category    string `json:"category"    form:"category"`
	Description string `json:"description" form:"description"`
}

type AuthResponse struct {
	AccessToken  string       `json:"access_token"`
	RefreshToken string       `json:"refresh_token,omitempty"`
	User         *models.User `json:"user,omitempty"`
}

type DeletedResponse struct {
	ID      uint   `json:"id"`
	Message string `json:"message"`
}
