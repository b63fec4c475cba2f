package domain

// Role is the sole authorization signal carried by a UserProfile.
type Role string

const (
	RoleBuyer  Role = "buyer"
	RoleSeller Role = "seller"
	RoleAdmin  Role = "admin"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleBuyer, RoleSeller, RoleAdmin:
		return true
	}
	return false
}

// UserProfile models the authenticated actor as the storefront sees it.
type UserProfile struct {
	ID           string `json:"id"`
	FirstName    string `json:"firstName"`
	LastName     string `json:"lastName"`
	Email        string `json:"email"`
	Role         Role   `json:"role"`
	Phone        string `json:"phone,omitempty"`
	ProfileImage string `json:"profileImage,omitempty"`
}

// Credential pairs an opaque bearer token with the profile it proves.
type Credential struct {
	Token string      `json:"token"`
	User  UserProfile `json:"user"`
}

// ProfileUpdate carries the editable profile fields.
type ProfileUpdate struct {
	FirstName    string `json:"firstName"    validate:"required,max=60"`
	LastName     string `json:"lastName"     validate:"required,max=60"`
	Phone        string `json:"phone,omitempty"        validate:"omitempty,max=20"`
	ProfileImage string `json:"profileImage,omitempty" validate:"omitempty,url"`
}

// Registration is the sign-up payload forwarded to the backend.
type Registration struct {
	FirstName string `json:"firstName" validate:"required,max=60"`
	LastName  string `json:"lastName"  validate:"required,max=60"`
	Email     string `json:"email"     validate:"required,email"`
	Password  string `json:"password"  validate:"required,min=6"`
	Role      Role   `json:"role"      validate:"required,oneof=buyer seller"`
	Phone     string `json:"phone,omitempty" validate:"omitempty,max=20"`
}
