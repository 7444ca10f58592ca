package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/nikhil/teamtasks/internal/apperror"
	"github.com/nikhil/teamtasks/internal/auth"
	"github.com/nikhil/teamtasks/internal/middleware"
	"github.com/nikhil/teamtasks/internal/validator"
)

const maxBodyBytes = 1 << 20

// decodeAndValidate reads a JSON body into dst and checks its validate tags.
// An empty body decodes as an empty object.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil && !errors.Is(err, io.EOF) {
		return apperror.Validation("Invalid request body", []apperror.Issue{
			{Field: "body", Message: "must be a valid JSON object"},
		})
	}
	return validator.Validate(dst)
}

// pathID returns a URL variable after checking it is a UUID.
func pathID(r *http.Request, name string) (string, error) {
	id := mux.Vars(r)[name]
	if err := validator.UUID(name, id); err != nil {
		return "", err
	}
	return id, nil
}

func principal(r *http.Request) (auth.Principal, error) {
	p, ok := middleware.PrincipalFrom(r.Context())
	if !ok {
		return auth.Principal{}, apperror.Unauthenticated("Missing auth token")
	}
	return p, nil
}
