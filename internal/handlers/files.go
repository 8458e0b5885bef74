package handlers

import (
	"errors"
	"io"
	"net/http"
	"os"
	"path"
	"path/filepath"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"renovaflow-backend/internal/database"
	"renovaflow-backend/internal/models"
	"renovaflow-backend/internal/services"
)

type FilesHandler struct {
	store     *database.Store
	docSync   *services.DocSync
	uploadDir string
}

func NewFilesHandler(store *database.Store, docSync *services.DocSync, uploadDir string) *FilesHandler {
	return &FilesHandler{
		store:     store,
		docSync:   docSync,
		uploadDir: uploadDir,
	}
}

// Upload accepts one multipart file for a project, stores the bytes
// locally, registers the file, and fires the best-effort remote copy.
func (h *FilesHandler) Upload(c *gin.Context) {
	projectID := c.Param("id")

	if _, err := h.store.ProjectStatus(projectID); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			c.JSON(http.StatusNotFound, models.ErrorResponse{Error: "project not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "failed to look up project",
			Message: err.Error(),
		})
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "no file uploaded"})
		return
	}

	src, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "failed to open uploaded file",
			Message: err.Error(),
		})
		return
	}
	data, err := io.ReadAll(src)
	src.Close()
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "failed to read uploaded file",
			Message: err.Error(),
		})
		return
	}

	fileID := uuid.NewString()
	displayName := filepath.Base(fileHeader.Filename)
	storedName := fileID + "_" + displayName

	if err := os.MkdirAll(h.uploadDir, 0o755); err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "failed to prepare upload directory",
			Message: err.Error(),
		})
		return
	}
	if err := os.WriteFile(filepath.Join(h.uploadDir, storedName), data, 0o644); err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "failed to store file",
			Message: err.Error(),
		})
		return
	}

	file := &models.ProjectFile{
		ID:        fileID,
		ProjectID: projectID,
		Name:      displayName,
		URL:       "/uploads/" + storedName,
	}
	if err := h.store.CreateProjectFile(file); err != nil {
		// keep the local filesystem consistent with the registry
		os.Remove(filepath.Join(h.uploadDir, storedName))
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "failed to register file",
			Message: err.Error(),
		})
		return
	}

	contentType := fileHeader.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	h.docSync.CopyProjectFile(projectID, storedName, data, contentType)

	c.JSON(http.StatusOK, models.FileUploadResponse{
		ID:   file.ID,
		Name: file.Name,
		URL:  file.URL,
	})
}

// Delete removes the registry row and the stored bytes, then fires the
// best-effort remote delete.
func (h *FilesHandler) Delete(c *gin.Context) {
	file, err := h.store.GetProjectFile(c.Param("id"))
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			c.JSON(http.StatusNotFound, models.ErrorResponse{Error: "file not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "failed to get file",
			Message: err.Error(),
		})
		return
	}

	if err := h.store.DeleteProjectFile(file.ID); err != nil && !errors.Is(err, database.ErrNotFound) {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "failed to delete file",
			Message: err.Error(),
		})
		return
	}

	storedName := path.Base(file.URL)
	if err := os.Remove(filepath.Join(h.uploadDir, storedName)); err != nil && !os.IsNotExist(err) {
		log.Warn().Err(err).Str("file_id", file.ID).Msg("failed to remove stored file")
	}

	h.docSync.RemoveProjectFile(file.ProjectID, storedName)

	c.JSON(http.StatusOK, models.SuccessResponse{Success: true})
}
