package http

import (
	"encoding/json"
	"log"
	"net/http"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details string `json:"details,omitempty"`
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("failed to encode response: %v", err)
	}
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, ErrorResponse{
		Error: message,
		Code:  code,
	})
}

// handleGRPCError converts gRPC status codes to HTTP responses
func handleGRPCError(w http.ResponseWriter, err error) {
	st, ok := status.FromError(err)
	if !ok {
		respondError(w, http.StatusInternalServerError, "internal_error", "internal server error")
		return
	}

	var httpStatus int
	var code string

	switch st.Code() {
	case codes.InvalidArgument:
		httpStatus = http.StatusBadRequest
		code = "invalid_argument"
	case codes.NotFound:
		httpStatus = http.StatusNotFound
		code = "not_found"
	case codes.Canceled:
		httpStatus = http.StatusRequestTimeout
		code = "canceled"
	case codes.Unavailable:
		httpStatus = http.StatusServiceUnavailable
		code = "service_unavailable"
	case codes.DeadlineExceeded:
		httpStatus = http.StatusGatewayTimeout
		code = "timeout"
	default:
		httpStatus = http.StatusInternalServerError
		code = "internal_error"
	}

	if httpStatus == http.StatusInternalServerError {
		log.Printf("request failed: %v", st.Message())
		respondError(w, httpStatus, code, "internal server error")
		return
	}
	respondError(w, httpStatus, code, st.Message())
}
