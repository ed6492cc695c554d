package drive

import (
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/gorilla/mux"
)

// Browser is the part of Service the admin routes need.
type Browser interface {
	ListFiles(ctx context.Context, folderID string) ([]*File, error)
	FindFolderByPath(ctx context.Context, path string) (string, error)
	DownloadFile(ctx context.Context, fileID string, w io.Writer) error
}

type Handler struct {
	service       Browser
	defaultFolder string
}

func NewHandler(service Browser, defaultFolder string) *Handler {
	return &Handler{
		service:       service,
		defaultFolder: defaultFolder,
	}
}

func (h *Handler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/drive/files", h.ListFiles).Methods("GET")
	router.HandleFunc("/drive/files/download", h.DownloadFile).Methods("GET")
}

func (h *Handler) ListFiles(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	folderID := query.Get("folderId")
	folderPath := query.Get("path")
	if folderID == "" {
		folderID = h.defaultFolder
	}

	var err error
	if folderPath != "" {
		// Find folder by path
		folderID, err = h.service.FindFolderByPath(r.Context(), folderPath)
		if err != nil {
			writeError(w, http.StatusNotFound, err)
			return
		}
	}

	files, err := h.service.ListFiles(r.Context(), folderID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	if files == nil {
		files = []*File{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(files)
}

func (h *Handler) DownloadFile(w http.ResponseWriter, r *http.Request) {
	fileID := r.URL.Query().Get("fileId")
	if fileID == "" {
		http.Error(w, "fileId parameter is required", http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "application/octet-stream")
	w.Header().Set("Content-Disposition", "attachment; filename="+fileID)

	if err := h.service.DownloadFile(r.Context(), fileID, w); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func writeError(w http.ResponseWriter, status int, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": http.StatusText(status), "details": err.Error()})
}
