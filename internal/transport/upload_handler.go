package transport

import (
	"errors"
	"net/http"

	"storefront/internal/middleware"
	"storefront/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

const maxUploadSize = 5 << 20

type UploadHandler struct {
	uploads service.UploadService
	logger  *zap.Logger
}

func NewUploadHandler(uploads service.UploadService, logger *zap.Logger) *UploadHandler {
	return &UploadHandler{uploads: uploads, logger: logger}
}

func (h *UploadHandler) RegisterAdminRoutes(r chi.Router) {
	r.Post("/uploads", h.Upload)
}

// Upload stores the multipart "file" field as an image.
func (h *UploadHandler) Upload(w http.ResponseWriter, r *http.Request) {
	// Leave room for the multipart framing around the file itself.
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize+1<<20)
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respondWithServiceError(w, h.logger, service.ErrFileTooLarge, "Upload rejected")
			return
		}
		middleware.RespondWithError(w, http.StatusBadRequest, "expected multipart form with a file field")
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "file is required")
		return
	}
	defer file.Close()

	stored, err := h.uploads.StoreImage(r.Context(), file, header.Size)
	if err != nil {
		respondWithServiceError(w, h.logger, err, "Failed to store upload")
		return
	}
	h.logger.Info("Image uploaded", zap.String("path", stored.Path), zap.Int64("size", header.Size))
	middleware.RespondWithJSON(w, http.StatusCreated, stored)
}
