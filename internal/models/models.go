// Package models holds the JSON request/response shapes exposed by
// the control-plane HTTP surface.
package models

// PoolStatus is a point-in-time view of one accumulator pool.
type PoolStatus struct {
	Index                          int   `json:"index"`
	BytesSinceLastDrained          int64 `json:"bytes_since_last_drained"`
	EntropyEstimateBytesSinceDrain int64 `json:"entropy_estimate_bytes_since_drain"`
}

// StatusResponse is the payload for GET /api/v1/status.
type StatusResponse struct {
	GeneratorID    string       `json:"generator_id"`
	Priority       string       `json:"priority"`
	ReseedCount    uint64       `json:"reseed_count"`
	BytesRequested int64        `json:"bytes_requested"`
	Pools          []PoolStatus `json:"pools"`
}

// LoginRequest is the payload for POST /api/v1/admin/login.
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// LoginResponse is the payload returned on successful login.
type LoginResponse struct {
	Token string `json:"token"`
}

// AddSourceRequest is the payload for POST /api/v1/admin/sources.
type AddSourceRequest struct {
	Name string `json:"name" binding:"required"`
	URL  string `json:"url" binding:"required"`
}

// RandomResponse is the payload for GET /api/v1/random.
type RandomResponse struct {
	Base64 string `json:"base64"`
}

// ErrorResponse is the uniform error payload shape.
type ErrorResponse struct {
	Error string `json:"error"`
}
