package models

// LoginRequest is the request body for POST /api/login.
type LoginRequest struct {
	Email       string  `json:"email"`
	Password    string  `json:"password"`
	DeviceToken *string `json:"deviceToken,omitempty"`
}

// SignOutRequest is the request body for POST /api/signOut.
type SignOutRequest struct {
	UserID      int64  `json:"userId"`
	DeviceToken string `json:"deviceToken"`
}
