package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"chatsearch/internal/domain"
)

type successResponse struct {
	Data interface{} `json:"data"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		_ = json.NewEncoder(w).Encode(data)
	}
}

func success(w http.ResponseWriter, status int, data interface{}) {
	writeJSON(w, status, successResponse{Data: data})
}

func failure(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

// statusFor maps domain error codes to HTTP status codes.
func statusFor(err error) int {
	var de *domain.DomainError
	if !errors.As(err, &de) {
		return http.StatusInternalServerError
	}
	switch de.Code {
	case domain.ErrCodeValidation:
		return http.StatusBadRequest
	case domain.ErrCodeNotFound:
		return http.StatusNotFound
	case domain.ErrCodeUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func handleError(w http.ResponseWriter, err error) {
	failure(w, statusFor(err), err.Error())
}
