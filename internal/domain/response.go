package domain

// ErrorResponse is the JSON error body returned by the API layer.
type ErrorResponse struct {
	Message string `json:"message"`
	Code    int    `json:"code"`
}
