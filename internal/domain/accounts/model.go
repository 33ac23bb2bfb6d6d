package accounts

import (
	"time"

	"github.com/google/uuid"
)

// User is an authenticated account. Staff accounts are created with an
// organization key; patient accounts are self-service and get a matching
// patient record under the same id.
type User struct {
	ID           uuid.UUID  `db:"id" json:"id"`
	Email        string     `db:"email" json:"email"`
	PasswordHash string     `db:"password_hash" json:"-"`
	FullName     string     `db:"full_name" json:"full_name"`
	Role         string     `db:"role" json:"role"`
	Verified     bool       `db:"verified" json:"verified"`
	FailedLogins int        `db:"failed_logins" json:"-"`
	VerifyToken  *string    `db:"verify_token" json:"-"`
	ResetToken   *string    `db:"reset_token" json:"-"`
	ResetExpires *time.Time `db:"reset_expires" json:"-"`
	CreatedAt    time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time  `db:"updated_at" json:"updated_at"`
}

type SignupInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"full_name"`
	Phone    string `json:"phone,omitempty"`
	OrgKey   string `json:"org_key,omitempty"`
}

type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResult struct {
	Token string `json:"token"`
	User  *User  `json:"user"`
}
