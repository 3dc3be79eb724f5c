package request

// AddUserRequest represents a user creation request
type AddUserRequest struct {
	Username     string `json:"username"`
	Password     string `json:"password"`
	IsSuperAdmin bool   `json:"is_super_admin"`
}

// ResetSuperAdminPasswordRequest replaces the password of every super admin
type ResetSuperAdminPasswordRequest struct {
	NewPassword     string `json:"new_password"`
	ConfirmPassword string `json:"confirm_password"`
}
