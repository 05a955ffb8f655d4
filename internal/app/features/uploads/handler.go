// internal/app/features/uploads/handler.go
package uploads

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	apierrors "github.com/harborteam/harbor/internal/app/features/errors"
	uploadstore "github.com/harborteam/harbor/internal/app/store/uploads"
	"github.com/harborteam/harbor/internal/app/system/blob"
	"github.com/harborteam/harbor/internal/app/system/httpjson"
	"github.com/harborteam/harbor/internal/app/system/timeouts"
	"go.uber.org/zap"
)

// MaxUploadBytes caps a single attachment.
const MaxUploadBytes = 25 << 20 // 25 MiB

// Handler implements the two-step upload flow: a client first requests
// an upload URL, then PUTs the bytes to it; the returned storage id is
// what messages reference as their attachment.
type Handler struct {
	Uploads *uploadstore.Store
	Blobs   *blob.DiskStore
	Log     *zap.Logger
}

// NewHandler creates an uploads Handler.
func NewHandler(uploads *uploadstore.Store, blobs *blob.DiskStore, logger *zap.Logger) *Handler {
	return &Handler{Uploads: uploads, Blobs: blobs, Log: logger}
}

type issueResponse struct {
	StorageID string `json:"storageId"`
	UploadURL string `json:"uploadUrl"`
}

// HandleIssue handles POST /api/uploads: reserves a storage id and
// tells the client where to PUT the bytes.
func (h *Handler) HandleIssue(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	up, err := h.Uploads.Issue(ctx)
	if err != nil {
		apierrors.ServerError(w, h.Log, "upload issue", err)
		return
	}
	httpjson.Created(w, issueResponse{
		StorageID: up.StorageID,
		UploadURL: "/api/uploads/" + up.StorageID,
	})
}

// HandlePut handles PUT /api/uploads/{storageId}: stores the bytes and
// marks the upload usable as an attachment.
func (h *Handler) HandlePut(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	storageID := chi.URLParam(r, "storageId")
	if _, err := h.Uploads.GetByStorageID(ctx, storageID); err != nil {
		if errors.Is(err, uploadstore.ErrNotFound) {
			apierrors.NotFound(w, "Upload not found.")
			return
		}
		apierrors.ServerError(w, h.Log, "upload put: lookup", err)
		return
	}

	body := http.MaxBytesReader(w, r.Body, MaxUploadBytes)
	defer body.Close()

	size, err := h.Blobs.Put(storageID, body)
	if err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			apierrors.ValidationFailed(w, "Attachment exceeds the size limit.")
			return
		}
		if errors.Is(err, blob.ErrBadKey) {
			apierrors.NotFound(w, "Upload not found.")
			return
		}
		apierrors.ServerError(w, h.Log, "upload put: store bytes", err)
		return
	}

	contentType := r.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	if err := h.Uploads.MarkUploaded(ctx, storageID, contentType, size); err != nil {
		apierrors.ServerError(w, h.Log, "upload put: mark", err)
		return
	}

	h.Log.Info("upload stored",
		zap.String("storage_id", storageID),
		zap.Int64("size", size))
	httpjson.OK(w, map[string]any{"storageId": storageID, "size": size})
}

// ServeGet handles GET /api/uploads/{storageId}: streams the bytes with
// the content type recorded at upload time.
func (h *Handler) ServeGet(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	storageID := chi.URLParam(r, "storageId")
	up, err := h.Uploads.GetByStorageID(ctx, storageID)
	if err != nil {
		if errors.Is(err, uploadstore.ErrNotFound) {
			apierrors.NotFound(w, "Upload not found.")
			return
		}
		apierrors.ServerError(w, h.Log, "upload get: lookup", err)
		return
	}
	if !up.Uploaded {
		apierrors.NotFound(w, "Upload not found.")
		return
	}

	rc, err := h.Blobs.Open(storageID)
	if err != nil {
		if errors.Is(err, blob.ErrNotFound) || errors.Is(err, blob.ErrBadKey) {
			apierrors.NotFound(w, "Upload not found.")
			return
		}
		apierrors.ServerError(w, h.Log, "upload get: open", err)
		return
	}
	defer rc.Close()

	w.Header().Set("Content-Type", up.ContentType)
	if _, err := io.Copy(w, rc); err != nil {
		h.Log.Debug("upload stream interrupted", zap.Error(err))
	}
}
