// Package response writes JSON bodies and translates domain errors into
// HTTP responses.
package response

import (
	"encoding/json"
	"net/http"

	"github.com/nikhil/teamtasks/internal/apperror"
	"github.com/nikhil/teamtasks/internal/logger"
)

type errorBody struct {
	Message string           `json:"message"`
	Issues  []apperror.Issue `json:"issues,omitempty"`
}

// JSON writes payload with the given status code.
func JSON(w http.ResponseWriter, code int, payload interface{}) {
	body, err := json.Marshal(payload)
	if err != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"message":"Internal Server Error"}`))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(body)
}

// Message writes {"message": msg}.
func Message(w http.ResponseWriter, code int, msg string) {
	JSON(w, code, map[string]string{"message": msg})
}

// Error renders err. Internal errors are logged with their cause and
// reported to the client without detail.
func Error(w http.ResponseWriter, r *http.Request, log *logger.Logger, err error) {
	appErr := apperror.From(err)
	if appErr.Kind == apperror.KindInternal {
		log.WithContext(r.Context()).Error("Request failed",
			"method", r.Method,
			"path", r.URL.Path,
			"error", err,
		)
	}
	body := errorBody{Message: appErr.Message}
	if appErr.Kind == apperror.KindValidation {
		body.Issues = appErr.Issues
	}
	JSON(w, appErr.Status(), body)
}
