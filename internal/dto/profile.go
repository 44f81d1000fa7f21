package dto

import "github.com/Goh0809/Eventora-Backend/internal/domain"

// UpdateProfileRequest is a partial profile update
type UpdateProfileRequest struct {
	FullName  *string `json:"full_name,omitempty"`
	Bio       *string `json:"bio,omitempty"`
	AvatarURL *string `json:"avatar_url,omitempty"`
}

// ToDomain converts the request to a domain update
func (r *UpdateProfileRequest) ToDomain() *domain.ProfileUpdate {
	return &domain.ProfileUpdate{FullName: r.FullName, Bio: r.Bio, AvatarURL: r.AvatarURL}
}

// AvatarResponse carries the public URL of an uploaded avatar
type AvatarResponse struct {
	AvatarURL string `json:"avatar_url"`
}
