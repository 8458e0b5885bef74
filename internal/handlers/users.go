package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"renovaflow-backend/internal/database"
	"renovaflow-backend/internal/models"
)

type UsersHandler struct {
	store *database.Store
}

func NewUsersHandler(store *database.Store) *UsersHandler {
	return &UsersHandler{store: store}
}

// ListUsers returns every user; the password field never serializes.
func (h *UsersHandler) ListUsers(c *gin.Context) {
	users, err := h.store.ListUsers()
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "failed to list users",
			Message: err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, users)
}

func (h *UsersHandler) CreateUser(c *gin.Context) {
	var req models.UserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "invalid request body",
			Message: err.Error(),
		})
		return
	}
	if req.Password == "" {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "password is required"})
		return
	}

	user := models.User{
		ID:       uuid.NewString(),
		Email:    req.Email,
		Password: req.Password,
		Name:     req.Name,
		Role:     req.Role,
		Remarks:  req.Remarks,
		IsActive: true,
	}
	if user.Role == "" {
		user.Role = models.RoleStaff
	}
	if req.IsActive != nil {
		user.IsActive = *req.IsActive
	}

	if err := h.store.CreateUser(&user); err != nil {
		if errors.Is(err, database.ErrDuplicateEmail) {
			c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "email already exists"})
			return
		}
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "failed to create user",
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, user)
}

func (h *UsersHandler) UpdateUser(c *gin.Context) {
	var req models.UserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "invalid request body",
			Message: err.Error(),
		})
		return
	}

	user := models.User{
		ID:       c.Param("id"),
		Email:    req.Email,
		Password: req.Password,
		Name:     req.Name,
		Role:     req.Role,
		Remarks:  req.Remarks,
		IsActive: true,
	}
	if user.Role == "" {
		user.Role = models.RoleStaff
	}
	if req.IsActive != nil {
		user.IsActive = *req.IsActive
	}

	if err := h.store.UpdateUser(&user); err != nil {
		if errors.Is(err, database.ErrDuplicateEmail) {
			c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "email already exists"})
			return
		}
		if errors.Is(err, database.ErrNotFound) {
			c.JSON(http.StatusNotFound, models.ErrorResponse{Error: "user not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "failed to update user",
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, models.SuccessResponse{Success: true})
}

func (h *UsersHandler) DeleteUser(c *gin.Context) {
	if err := h.store.DeleteUser(c.Param("id")); err != nil && !errors.Is(err, database.ErrNotFound) {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "failed to delete user",
			Message: err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, models.SuccessResponse{Success: true})
}
