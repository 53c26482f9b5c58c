package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	goerrors "github.com/goliatone/go-errors"

	"github.com/goliatone/go-devblog/internal/content"
)

const maxBodyBytes = 1 << 20

type errorResponse struct {
	Error   string                    `json:"error"`
	Message string                    `json:"message,omitempty"`
	Issues  goerrors.ValidationErrors `json:"issues,omitempty"`
}

func decodeJSON(r *http.Request, target any) error {
	if r == nil || r.Body == nil {
		return io.EOF
	}
	defer r.Body.Close()
	decoder := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	decoder.UseNumber()
	if err := decoder.Decode(target); err != nil {
		return err
	}
	if decoder.More() {
		return errors.New("request body must contain a single JSON value")
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	if w == nil {
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(payload)
}

func writeText(w http.ResponseWriter, contentType, body string) {
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(http.StatusOK)
	_, _ = io.WriteString(w, body)
}

func writeError(w http.ResponseWriter, err error) {
	status, payload := mapError(err)
	writeJSON(w, status, payload)
}

func mapError(err error) (int, errorResponse) {
	if err == nil {
		return http.StatusInternalServerError, errorResponse{Error: "unknown_error"}
	}

	var notFound *content.NotFoundError
	if errors.As(err, &notFound) {
		return http.StatusNotFound, errorResponse{
			Error:   "not_found",
			Message: notFound.Error(),
		}
	}

	if errors.Is(err, content.ErrUnknownCategory) {
		return http.StatusNotFound, errorResponse{
			Error:   "unknown_category",
			Message: err.Error(),
		}
	}

	if goerrors.IsCategory(err, goerrors.CategoryValidation) {
		var wrapped *goerrors.Error
		errors.As(err, &wrapped)
		message := wrapped.Message
		if wrapped.Source != nil {
			message = message + ": " + wrapped.Source.Error()
		}
		return http.StatusBadRequest, errorResponse{
			Error:   "bad_request",
			Message: message,
			Issues:  wrapped.ValidationErrors,
		}
	}

	return http.StatusInternalServerError, errorResponse{
		Error:   "internal_error",
		Message: err.Error(),
	}
}
