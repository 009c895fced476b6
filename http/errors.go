package http

// Client-visible reasons. Internal details never appear in response bodies.
const (
	ReasonRequestTooLarge = "Request too large"
	ReasonInvalidJSON     = "Invalid JSON format"
	ReasonInvalidBody     = "Invalid request body"
	ReasonRouteNotFound   = "Route not found"
	ReasonInternal        = "Internal server error"
	ReasonUserFields      = "Name and email are required"
	ReasonInvalidInput    = "Invalid input"
	ReasonNotFound        = "Not found"
	ReasonUnavailable     = "Service unavailable"
)
