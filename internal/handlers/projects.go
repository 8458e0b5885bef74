package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"renovaflow-backend/internal/database"
	"renovaflow-backend/internal/lifecycle"
	"renovaflow-backend/internal/models"
	"renovaflow-backend/internal/services"
)

type ProjectsHandler struct {
	store   *database.Store
	engine  *lifecycle.Engine
	docSync *services.DocSync
}

func NewProjectsHandler(store *database.Store, engine *lifecycle.Engine, docSync *services.DocSync) *ProjectsHandler {
	return &ProjectsHandler{
		store:   store,
		engine:  engine,
		docSync: docSync,
	}
}

func (h *ProjectsHandler) ListProjects(c *gin.Context) {
	projects, err := h.store.ListProjects()
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "failed to list projects",
			Message: err.Error(),
		})
		return
	}
	if projects == nil {
		projects = []models.Project{}
	}
	c.JSON(http.StatusOK, projects)
}

// CreateProject inserts a new project together with any supplied child
// records, then fires the best-effort remote folder creation.
func (h *ProjectsHandler) CreateProject(c *gin.Context) {
	var project models.Project
	if err := c.ShouldBindJSON(&project); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "invalid request body",
			Message: err.Error(),
		})
		return
	}

	if project.ID == "" {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "project id is required"})
		return
	}
	if project.EstimateDate == "" || project.CompletionDate == "" {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "estimateDate and completionDate are required"})
		return
	}
	if project.Status == "" {
		project.Status = lifecycle.StatusEstimate
	}
	if !project.Status.Valid() {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "unknown status"})
		return
	}

	if err := h.store.CreateProject(&project); err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "failed to create project",
			Message: err.Error(),
		})
		return
	}

	h.docSync.EnsureProjectFolder(project.ID)

	c.JSON(http.StatusOK, models.SuccessResponse{Success: true})
}

func (h *ProjectsHandler) GetProject(c *gin.Context) {
	project, err := h.store.GetProject(c.Param("id"))
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			c.JSON(http.StatusNotFound, models.ErrorResponse{Error: "project not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "failed to get project",
			Message: err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, project)
}

// PatchProject applies a partial update: the status (through the lifecycle
// engine) and/or any of the six remark fields.
func (h *ProjectsHandler) PatchProject(c *gin.Context) {
	id := c.Param("id")

	var patch models.ProjectPatchRequest
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "invalid request body",
			Message: err.Error(),
		})
		return
	}

	if patch.Status != nil {
		target := lifecycle.Status(*patch.Status)
		if !target.Valid() {
			c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "unknown status"})
			return
		}
		if err := h.engine.Advance(id, target); err != nil {
			if errors.Is(err, database.ErrNotFound) {
				c.JSON(http.StatusNotFound, models.ErrorResponse{Error: "project not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, models.ErrorResponse{
				Error:   "failed to update status",
				Message: err.Error(),
			})
			return
		}
	}

	if err := h.store.PatchProjectRemarks(id, &patch); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			c.JSON(http.StatusNotFound, models.ErrorResponse{Error: "project not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "failed to patch project",
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, models.SuccessResponse{Success: true})
}

// UpdateProject is the full-replace update: the whole record plus the
// replacement of all three child collections in one transaction. It does
// not run the auto-advance check; that is tied to billing-flag patches
// only.
func (h *ProjectsHandler) UpdateProject(c *gin.Context) {
	var project models.Project
	if err := c.ShouldBindJSON(&project); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "invalid request body",
			Message: err.Error(),
		})
		return
	}
	project.ID = c.Param("id")

	// A full replace carries the whole record, status included.
	if !project.Status.Valid() {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "unknown status"})
		return
	}

	if err := h.store.UpdateProject(&project); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			c.JSON(http.StatusNotFound, models.ErrorResponse{Error: "project not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "failed to update project",
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, models.SuccessResponse{Success: true})
}

// DeleteProject removes the project and, via cascade, all of its children
// and file registry rows. Deleting an absent project is a no-op success.
func (h *ProjectsHandler) DeleteProject(c *gin.Context) {
	if err := h.store.DeleteProject(c.Param("id")); err != nil && !errors.Is(err, database.ErrNotFound) {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "failed to delete project",
			Message: err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, models.SuccessResponse{Success: true})
}
