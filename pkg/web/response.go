// Package web defines common components for a web application.
package web

// JSONError provides type for explicit json encoded error response.
type JSONError struct {
	Error string `json:"error"`
}

// Error wraps a given err into json frinedly struct.
func Error(err error) JSONError {
	return JSONError{Error: err.Error()}
}

// Response holds the common response type for all APIs.
type Response struct {
	Data  any       `json:"data,omitempty"`
	Error JSONError `json:"error,omitempty"`
}
