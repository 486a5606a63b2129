package identity

import "time"

type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// Address is the structured blob stored in user_profiles.address and
// orders.shipping_address.
type Address struct {
	Address string `json:"address"`
	City    string `json:"city"`
	Region  string `json:"region,omitempty"`
}

type Profile struct {
	ID        string    `json:"id"`
	FullName  *string   `json:"full_name"`
	Phone     *string   `json:"phone"`
	Address   *Address  `json:"address"`
	IsAdmin   bool      `json:"is_admin"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type Session struct {
	ID        string
	UserID    string
	ExpiresAt time.Time
	RevokedAt *time.Time
}

// Identity is the signed-in caller as seen by the rest of the service.
type Identity struct {
	UserID    string  `json:"user_id"`
	Email     string  `json:"email"`
	SessionID string  `json:"-"`
	Profile   Profile `json:"profile"`
}

func (i Identity) IsAdmin() bool { return i.Profile.IsAdmin }

// SignUpRequest payload of account creation.
// swagger:model SignUpRequest
type SignUpRequest struct {
	Email           string `json:"email"            binding:"required,email" example:"abebe@example.com"`
	Password        string `json:"password"         binding:"required"       example:"secret1"`
	ConfirmPassword string `json:"confirm_password" binding:"required"       example:"secret1"`
	FullName        string `json:"full_name"        example:"Abebe Kebede"`
}

// SignInRequest payload of sign in.
// swagger:model SignInRequest
type SignInRequest struct {
	Email    string `json:"email"    binding:"required" example:"abebe@example.com"`
	Password string `json:"password" binding:"required" example:"secret1"`
}

// SignInResponse carries the bearer token for subsequent calls.
// swagger:model SignInResponse
type SignInResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	Identity  Identity  `json:"identity"`
}

// UpdateProfileRequest payload of profile update; empty fields are left unchanged.
// swagger:model UpdateProfileRequest
type UpdateProfileRequest struct {
	FullName string   `json:"full_name" example:"Abebe Kebede"`
	Phone    string   `json:"phone"     example:"+251911000000"`
	Address  *Address `json:"address"`
}
