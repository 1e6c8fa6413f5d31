package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strconv"

	"lexora/internal/api/middleware"
	"lexora/internal/app/service"
	"lexora/internal/common"
	"lexora/internal/common/security"
)

// multipartMemory is how much of a multipart body is kept in memory before
// spilling to temporary files.
const multipartMemory = 8 << 20

func decodeJSON(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return false
	}
	return true
}

func identity(w http.ResponseWriter, r *http.Request) (security.Identity, bool) {
	id, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		common.RespondWithError(w, http.StatusUnauthorized, "No token, authorization denied")
	}
	return id, ok
}

func isMultipart(r *http.Request) bool {
	mt, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return err == nil && mt == "multipart/form-data"
}

// parseMultipart limits the body to maxUpload plus some room for the other
// form fields and parses it.
func parseMultipart(w http.ResponseWriter, r *http.Request, maxUpload int64) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxUpload+1<<20)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			return tooLarge(maxUpload)
		}
		return common.NewPublicError(common.ErrBadRequest, "Invalid multipart form")
	}
	return nil
}

// formFile reads the uploaded file named field. A missing file yields nil.
func formFile(r *http.Request, field string, maxUpload int64) (*service.Upload, error) {
	f, hdr, err := r.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return nil, nil
		}
		return nil, common.NewPublicError(common.ErrBadRequest, "Invalid file upload")
	}
	defer f.Close()

	if hdr.Size > maxUpload {
		return nil, tooLarge(maxUpload)
	}
	data, err := io.ReadAll(io.LimitReader(f, maxUpload+1))
	if err != nil {
		return nil, fmt.Errorf("read upload %s: %w", field, err)
	}
	if int64(len(data)) > maxUpload {
		return nil, tooLarge(maxUpload)
	}
	return &service.Upload{Filename: hdr.Filename, Data: data}, nil
}

func tooLarge(maxUpload int64) error {
	return common.NewValidationError("file", fmt.Sprintf("File is too large (max %d MB)", maxUpload>>20))
}

func queryInt(r *http.Request, key string) int {
	n, _ := strconv.Atoi(r.URL.Query().Get(key))
	return n
}
