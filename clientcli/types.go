package clientcli

import (
	"time"

	"github.com/google/uuid"
)

// CreateUserOptions configures a create user operation.
type CreateUserOptions struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// User mirrors a user record returned by the server.
type User struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

// UserList is the result of listing users.
type UserList struct {
	Users []User `json:"users"`
	Count int    `json:"count"`
}

// MemoryStats mirrors the runtime memory section of health and status.
type MemoryStats struct {
	Alloc      uint64 `json:"alloc"`
	TotalAlloc uint64 `json:"total_alloc"`
	Sys        uint64 `json:"sys"`
	HeapAlloc  uint64 `json:"heap_alloc"`
	HeapInuse  uint64 `json:"heap_inuse"`
	NumGC      uint32 `json:"num_gc"`
}

// Health is the server's health or status report. Timestamp is only set
// by the health endpoint.
type Health struct {
	Status    string      `json:"status"`
	Uptime    float64     `json:"uptime"`
	Memory    MemoryStats `json:"memory"`
	Timestamp string      `json:"timestamp,omitempty"`
}

// CalcResult mirrors the calc endpoint. Quotient is the string "undefined"
// when dividing by zero, otherwise a number.
type CalcResult struct {
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Sum      any     `json:"sum"`
	Diff     any     `json:"diff"`
	Product  any     `json:"product"`
	Quotient any     `json:"quotient"`
}

// serverCreateUserResult mirrors the JSON response for a created user.
type serverCreateUserResult struct {
	Message string `json:"message"`
	User    User   `json:"user"`
}

// serverError mirrors the JSON error envelope.
type serverError struct {
	Error  string `json:"error"`
	Path   string `json:"path,omitempty"`
	Method string `json:"method,omitempty"`
}
