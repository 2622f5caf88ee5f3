package accountsdk

// SignInRequest is the body for POST /signin.
type SignInRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// SignInResponse is the success body for POST /signin.
type SignInResponse struct {
	Token    string `json:"token"`
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

// SignUpRequest is the body for POST /signup. ID is a pointer so the server
// can tell a missing id apart from a literal zero.
type SignUpRequest struct {
	ID       *int64 `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// EditRequest is the body for POST /edit. NewUsername and Email are optional;
// empty fields are left unchanged. The token travels in the "token" header
// and, for older clients, in the body.
type EditRequest struct {
	ID          *int64 `json:"id"`
	Token       string `json:"token,omitempty"`
	NewUsername string `json:"newusername,omitempty"`
	Email       string `json:"email,omitempty"`
}

// DeleteRequest is the body for POST /delete.
type DeleteRequest struct {
	ID *int64 `json:"id"`
}

// MessageResponse is the generic message body used for every non-sign-in
// success and for all business errors.
type MessageResponse struct {
	Message string `json:"message"`
}

// HealthResponse is returned by the livez and readyz endpoints.
type HealthResponse struct {
	Status  string        `json:"status"`
	Uptime  string        `json:"uptime"`
	Version string        `json:"version"`
	Checks  *HealthChecks `json:"checks,omitempty"`
}

// HealthChecks reports per-dependency health inside a HealthResponse.
type HealthChecks struct {
	Database string `json:"database"`
}
