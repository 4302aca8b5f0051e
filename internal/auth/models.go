package auth

// DevAuthRequest is the optional body of POST /v1/auth/dev.
type DevAuthRequest struct {
	UserID string `json:"userId"`
}

// DevAuthResponse carries a bearer token for the requested user.
type DevAuthResponse struct {
	AccessToken string `json:"accessToken"`
	TokenType   string `json:"tokenType"`
	ExpiresIn   int64  `json:"expiresIn"`
	UserID      string `json:"userId"`
}

// MeResponse is returned by GET /v1/users/me.
type MeResponse struct {
	UserID        string `json:"userId"`
	Authenticated bool   `json:"authenticated"`
	AuthMode      string `json:"authMode"`
}

// ErrorResponse is the standard error envelope.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
