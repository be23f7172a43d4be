package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/Abdurahmanit/GroupProject/classifieds/internal/domain"
	"github.com/Abdurahmanit/GroupProject/classifieds/internal/platform/logger"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

const maxUploadSize = 32 << 20

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error string `json:"error"`
}

// ErrorToHTTPStatus maps domain errors onto HTTP status codes.
func ErrorToHTTPStatus(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, domain.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, domain.ErrUnavailable):
		return http.StatusServiceUnavailable
	case errors.Is(err, context.Canceled):
		return 499 // Client Closed Request
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, log *logger.Logger, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if body == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Error("Failed to encode response", zap.Error(err))
	}
}

// writeError logs err and answers with its mapped status. Internal errors are
// not exposed to the caller.
func writeError(w http.ResponseWriter, log *logger.Logger, op string, err error) {
	status := ErrorToHTTPStatus(err)
	msg := err.Error()
	if status >= http.StatusInternalServerError {
		log.Error("Request failed", zap.String("op", op), zap.Error(err))
		if status == http.StatusInternalServerError {
			msg = "internal server error"
		}
	} else {
		log.Debug("Request rejected", zap.String("op", op), zap.Int("status", status), zap.Error(err))
	}
	writeJSON(w, log, status, ErrorResponse{Error: msg})
}

func invalid(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", domain.ErrInvalidInput, fmt.Sprintf(format, args...))
}

func idParam(r *http.Request, name string) (int64, error) {
	raw := chi.URLParam(r, name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, invalid("%s must be a positive integer", name)
	}
	return id, nil
}

func intQuery(r *http.Request, name string, def int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, invalid("%s must be an integer", name)
	}
	return v, nil
}

func isMultipart(r *http.Request) bool {
	return strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data")
}

// decodeBody reads a JSON body, or the JSON "payload" field of a multipart
// form, into dst.
func decodeBody(r *http.Request, dst interface{}) error {
	if isMultipart(r) {
		if err := r.ParseMultipartForm(maxUploadSize); err != nil {
			return invalid("malformed multipart form: %v", err)
		}
		raw := r.FormValue("payload")
		if raw == "" {
			return invalid("payload field is required")
		}
		if err := json.Unmarshal([]byte(raw), dst); err != nil {
			return invalid("malformed payload: %v", err)
		}
		return nil
	}
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return invalid("malformed request body: %v", err)
	}
	return nil
}

func readUpload(fh *multipart.FileHeader) (domain.ImageUpload, error) {
	f, err := fh.Open()
	if err != nil {
		return domain.ImageUpload{}, invalid("cannot open %s", fh.Filename)
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		return domain.ImageUpload{}, invalid("cannot read %s", fh.Filename)
	}
	return domain.ImageUpload{FileName: fh.Filename, Data: data}, nil
}

// formFiles returns the uploads of field, or nil when the form has none.
func formFiles(r *http.Request, field string) ([]domain.ImageUpload, error) {
	if r.MultipartForm == nil || len(r.MultipartForm.File[field]) == 0 {
		return nil, nil
	}
	headers := r.MultipartForm.File[field]
	uploads := make([]domain.ImageUpload, 0, len(headers))
	for _, fh := range headers {
		u, err := readUpload(fh)
		if err != nil {
			return nil, err
		}
		uploads = append(uploads, u)
	}
	return uploads, nil
}
