package upload

import (
	"crypto/rand"
	"encoding/hex"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"canteenadmin/internal/api"
	"canteenadmin/pkg/config"
)

type Handlers struct {
	Cfg    config.Config
	Repo   *Repository
	Logger *zap.Logger
}

// Create accepts a multipart upload under the "file" field, writes it to the
// configured upload directory, and records it. The response's fileUrl is
// what submit endpoints (top-up proof, menu image) reference.
func (h Handlers) Create(w http.ResponseWriter, r *http.Request) {
	identity := api.IdentityFromContext(r.Context())
	if identity == nil {
		api.WriteError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing identity")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.Cfg.MaxUploadBytes)
	if err := r.ParseMultipartForm(h.Cfg.MaxUploadBytes); err != nil {
		api.WriteError(w, http.StatusRequestEntityTooLarge, "UPLOAD_TOO_LARGE", "file exceeds the upload limit")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		api.WriteFieldError(w, http.StatusBadRequest, "VALIDATION_FAILED", "file field is required", "file")
		return
	}
	defer file.Close()

	ext := strings.ToLower(filepath.Ext(header.Filename))
	switch ext {
	case ".jpg", ".jpeg", ".png", ".webp", ".pdf":
	default:
		api.WriteFieldError(w, http.StatusBadRequest, "UNSUPPORTED_FILE_TYPE", "only jpg, png, webp, and pdf files are accepted", "file")
		return
	}

	name, err := randomName(ext)
	if err != nil {
		api.WriteError(w, http.StatusInternalServerError, "INTERNAL", "internal error")
		return
	}

	if err := os.MkdirAll(h.Cfg.UploadDir, 0o755); err != nil {
		h.Logger.Error("create upload dir", zap.Error(err))
		api.WriteError(w, http.StatusInternalServerError, "INTERNAL", "internal error")
		return
	}

	path := filepath.Join(h.Cfg.UploadDir, name)
	dst, err := os.Create(path)
	if err != nil {
		h.Logger.Error("create upload file", zap.Error(err))
		api.WriteError(w, http.StatusInternalServerError, "INTERNAL", "internal error")
		return
	}
	defer dst.Close()

	if _, err := io.Copy(dst, file); err != nil {
		_ = os.Remove(path)
		h.Logger.Error("write upload file", zap.Error(err))
		api.WriteError(w, http.StatusInternalServerError, "INTERNAL", "internal error")
		return
	}

	rec, err := h.Repo.Insert(r.Context(), identity.AccountID, "/uploads/"+name, r.FormValue("kind"))
	if err != nil {
		_ = os.Remove(path)
		h.Logger.Error("record upload", zap.Error(err))
		api.WriteError(w, http.StatusInternalServerError, "INTERNAL", "internal error")
		return
	}

	api.WriteJSON(w, http.StatusCreated, rec)
}

func (h Handlers) List(w http.ResponseWriter, r *http.Request) {
	identity := api.IdentityFromContext(r.Context())
	if identity == nil {
		api.WriteError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing identity")
		return
	}

	items, err := h.Repo.ListByUploader(r.Context(), identity.AccountID)
	if err != nil {
		h.Logger.Error("list uploads", zap.Error(err))
		api.WriteError(w, http.StatusInternalServerError, "INTERNAL", "internal error")
		return
	}
	api.WriteJSON(w, http.StatusOK, map[string]any{"items": items})
}

func randomName(ext string) (string, error) {
	var b [16]byte
	if _, err := rand.Read(b[:]); err != nil {
		return "", err
	}
	return hex.EncodeToString(b[:]) + ext, nil
}
