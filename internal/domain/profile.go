package domain

import "time"

// Profile is the application-side record of an identity user
type Profile struct {
	ID        string    `json:"id"`
	FullName  string    `json:"full_name"`
	Email     string    `json:"email"`
	Bio       string    `json:"bio"`
	AvatarURL string    `json:"avatar_url"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ProfileUpdate carries only the fields a caller wants to change
type ProfileUpdate struct {
	FullName  *string
	Bio       *string
	AvatarURL *string
}

// IsEmpty reports whether nothing would change
func (u *ProfileUpdate) IsEmpty() bool {
	return u.FullName == nil && u.Bio == nil && u.AvatarURL == nil
}

// PublicProfile is what other users may see
type PublicProfile struct {
	FullName  string `json:"full_name"`
	Email     string `json:"email"`
	Bio       string `json:"bio"`
	AvatarURL string `json:"avatar_url"`
}

// User is the authenticated caller as known to the identity provider
type User struct {
	ID           string                 `json:"id"`
	Email        string                 `json:"email"`
	UserMetadata map[string]interface{} `json:"user_metadata,omitempty"`
}
