// Package httputil holds the JSON response and multipart helpers shared by
// every handler package.
package httputil

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/dairydock/catalog-service/internal/apperr"
	"github.com/dairydock/catalog-service/internal/asset"
)

var validate = validator.New()

// maxUploadBytes caps multipart form memory; larger files spill to disk.
const maxUploadBytes = 10 << 20

type errorBody struct {
	Error string `json:"error"`
}

func WriteJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload != nil {
		_ = json.NewEncoder(w).Encode(payload)
	}
}

// WriteError maps the error taxonomy onto HTTP status codes. Unclassified
// errors become 500 with a generic message so internals never leak.
func WriteError(w http.ResponseWriter, err error) {
	switch apperr.KindOf(err) {
	case apperr.KindValidation:
		WriteJSON(w, http.StatusBadRequest, errorBody{Error: apperr.MessageOf(err)})
	case apperr.KindConflict:
		WriteJSON(w, http.StatusConflict, errorBody{Error: apperr.MessageOf(err)})
	case apperr.KindNotFound:
		WriteJSON(w, http.StatusNotFound, errorBody{Error: apperr.MessageOf(err)})
	case apperr.KindStoreUnavailable:
		WriteJSON(w, http.StatusServiceUnavailable, errorBody{Error: "store unavailable"})
	case apperr.KindAssetProvider:
		WriteJSON(w, http.StatusBadGateway, errorBody{Error: "asset provider unavailable"})
	default:
		WriteJSON(w, http.StatusInternalServerError, errorBody{Error: "internal error"})
	}
}

// DecodeJSON unmarshals the request body into dst and runs its validate
// struct tags.
func DecodeJSON(r *http.Request, dst interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return apperr.New(apperr.KindValidation, "invalid request body")
	}
	if err := validate.Struct(dst); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
			return apperr.New(apperr.KindValidation, formatFieldError(fieldErrs[0]))
		}
		return apperr.New(apperr.KindValidation, "invalid request body")
	}
	return nil
}

func formatFieldError(fe validator.FieldError) string {
	field := strings.ToLower(fe.Field()[:1]) + fe.Field()[1:]
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "min":
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of %s", field, fe.Param())
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}

// FormImage pulls the named file out of a multipart form. Returns (nil, nil)
// when the field is absent so optional-image endpoints can share it.
func FormImage(r *http.Request, field string) (*asset.Upload, error) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		return nil, apperr.New(apperr.KindValidation, "invalid multipart form")
	}
	file, header, err := r.FormFile(field)
	if err != nil {
		if err == http.ErrMissingFile {
			return nil, nil
		}
		return nil, apperr.New(apperr.KindValidation, "invalid image field")
	}
	return &asset.Upload{
		Reader:      file,
		FileName:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		SizeBytes:   header.Size,
	}, nil
}
