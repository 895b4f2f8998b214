package models

import "time"

// Role discriminates the three account collections. A session token minted
// for one role is never accepted by another role's guard.
type Role string

const (
	RoleUser   Role = "user"
	RoleSeller Role = "seller"
	RoleAdmin  Role = "admin"
)

// CookieName returns the session cookie name for the role.
func (r Role) CookieName() string {
	switch r {
	case RoleSeller:
		return "seller_token"
	case RoleAdmin:
		return "admin_token"
	default:
		return "token"
	}
}

type ShopStatus string

const (
	ShopStatusPending  ShopStatus = "pending"
	ShopStatusApproved ShopStatus = "approved"
)

type User struct {
	ID             string
	Name           string
	Email          *string
	PhoneNumber    string
	PasswordHash   []byte
	AvatarURL      *string
	Role           Role
	ResetTokenHash []byte
	ResetExpiresAt *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

type Address struct {
	ID          string
	UserID      string
	Country     string
	City        string
	Address1    string
	Address2    string
	ZipCode     string
	AddressType string
	CreatedAt   time.Time
}

type Shop struct {
	ID             string
	Name           string
	Email          string
	PhoneNumber    string
	PasswordHash   []byte
	Description    *string
	Address        string
	ZipCode        string
	AvatarURL      *string
	AadharCardURL  *string
	PanCardURL     *string
	ShopLicenseURL *string
	WithdrawMethod []byte // gateway account details, JSON
	Role           Role
	Status         ShopStatus
	ResetTokenHash []byte
	ResetExpiresAt *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

type Admin struct {
	ID             string
	Name           string
	Email          string
	PhoneNumber    string
	PasswordHash   []byte
	AvatarURL      *string
	Role           Role
	ResetTokenHash []byte
	ResetExpiresAt *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
