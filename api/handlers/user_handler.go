package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/oakmail/mailcore/api/models"
	"github.com/oakmail/mailcore/api/utils"
	"github.com/oakmail/mailcore/store"
)

type UserHandler struct {
	st *store.Store
}

func NewUserHandler(st *store.Store) *UserHandler {
	return &UserHandler{st: st}
}

// GetUsers retrieves a paginated list of users
func (h *UserHandler) GetUsers(c *gin.Context) {
	query := c.Query("query")
	limit := utils.ParseIntParam(c.Query("limit"), 20)
	page := utils.ParseIntParam(c.Query("page"), 1)

	if limit > 250 {
		limit = 250
	}
	if limit < 1 {
		limit = 1
	}

	skip := (page - 1) * limit
	users, total, err := h.st.ListUsers(c.Request.Context(), query, limit, skip)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.APIError{Error: err.Error()})
		return
	}

	results := make([]gin.H, len(users))
	for i, user := range users {
		results[i] = gin.H{
			"id":       user.ID.Hex(),
			"username": user.Username,
			"address":  user.Address,
			"quota": gin.H{
				"allowed": user.Quota,
				"used":    user.StorageUsed,
			},
			"disabled": user.Disabled,
		}
	}

	var prevUrl, nextUrl *string
	if page > 1 {
		prev := "/api/users?page=" + strconv.Itoa(page-1) + "&limit=" + strconv.Itoa(limit)
		if query != "" {
			prev += "&query=" + query
		}
		prevUrl = &prev
	}

	if int64((page)*limit) < total {
		next := "/api/users?page=" + strconv.Itoa(page+1) + "&limit=" + strconv.Itoa(limit)
		if query != "" {
			next += "&query=" + query
		}
		nextUrl = &next
	}

	response := models.PaginatedResponse{
		Success: true,
		Query:   query,
		Total:   total,
		Page:    page,
		Results: results,
	}

	if prevUrl != nil {
		response.Prev = *prevUrl
	}
	if nextUrl != nil {
		response.Next = *nextUrl
	}

	c.JSON(http.StatusOK, response)
}

// CreateUser creates a new user
func (h *UserHandler) CreateUser(c *gin.Context) {
	var req struct {
		Username   string `json:"username" binding:"required,min=3,max=30"`
		Password   string `json:"password" binding:"required,min=6,max=256"`
		Address    string `json:"address"`
		Language   string `json:"language,omitempty"`
		Retention  int64  `json:"retention,omitempty"`
		Quota      int64  `json:"quota,omitempty"`
		Recipients int64  `json:"recipients,omitempty"`
		Forwards   int64  `json:"forwards,omitempty"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.APIError{Error: err.Error()})
		return
	}

	if !utils.ValidateUsername(req.Username) {
		c.JSON(http.StatusBadRequest, models.APIError{Error: "Invalid username format"})
		return
	}

	var address string
	if req.Address != "" {
		address = utils.NormalizeAddress(req.Address)
		if !utils.ValidateEmail(address) {
			c.JSON(http.StatusBadRequest, models.APIError{Error: "Invalid email address"})
			return
		}
	}

	userID, err := h.st.CreateAccount(c.Request.Context(), store.NewAccount{
		Username:   req.Username,
		Password:   req.Password,
		Address:    address,
		Language:   req.Language,
		Retention:  req.Retention,
		Quota:      req.Quota,
		Recipients: req.Recipients,
		Forwards:   req.Forwards,
	})
	if err != nil {
		if errors.Is(err, store.ErrConflict) {
			c.JSON(http.StatusConflict, models.APIError{Error: "Username or email address already exists"})
			return
		}
		c.JSON(http.StatusInternalServerError, models.APIError{Error: err.Error()})
		return
	}

	c.JSON(http.StatusCreated, models.APISuccess{
		Success: true,
		ID:      userID.Hex(),
	})
}

// GetUser retrieves a single user by ID
func (h *UserHandler) GetUser(c *gin.Context) {
	userID, err := utils.ParseObjectID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, models.APIError{Error: "Invalid user ID"})
		return
	}

	user, err := h.st.UserByID(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, models.APIError{Error: "User not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, models.APIError{Error: err.Error()})
		return
	}

	// TODO: Get Redis counters for rate limiting
	// For now, return static values
	response := models.UserResponse{
		ID:        user.ID,
		Username:  user.Username,
		Address:   user.Address,
		Language:  user.Language,
		Retention: user.Retention,
		Limits: models.UserLimits{
			Quota: models.UserQuota{
				Allowed: user.Quota,
				Used:    user.StorageUsed,
			},
			Recipients: map[string]interface{}{
				"allowed": user.Recipients,
				"used":    0,
				"ttl":     false,
			},
			Forwards: map[string]interface{}{
				"allowed": user.Forwards,
				"used":    0,
				"ttl":     false,
			},
		},
		Activated: user.Activated,
		Disabled:  user.Disabled,
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": response})
}

// UpdateUser updates user information
func (h *UserHandler) UpdateUser(c *gin.Context) {
	userID, err := utils.ParseObjectID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, models.APIError{Error: "Invalid user ID"})
		return
	}

	var req struct {
		Password   *string `json:"password,omitempty"`
		Language   *string `json:"language,omitempty"`
		Retention  *int64  `json:"retention,omitempty"`
		Quota      *int64  `json:"quota,omitempty"`
		Recipients *int64  `json:"recipients,omitempty"`
		Forwards   *int64  `json:"forwards,omitempty"`
		Disabled   *bool   `json:"disabled,omitempty"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.APIError{Error: err.Error()})
		return
	}

	if req.Password != nil && !utils.ValidatePassword(*req.Password) {
		c.JSON(http.StatusBadRequest, models.APIError{Error: "Invalid password"})
		return
	}

	matched, err := h.st.UpdateUser(c.Request.Context(), userID, store.UserUpdate{
		Password:   req.Password,
		Language:   req.Language,
		Retention:  req.Retention,
		Quota:      req.Quota,
		Recipients: req.Recipients,
		Forwards:   req.Forwards,
		Disabled:   req.Disabled,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.APIError{Error: err.Error()})
		return
	}
	if !matched {
		c.JSON(http.StatusNotFound, models.APIError{Error: "User not found"})
		return
	}

	c.JSON(http.StatusOK, models.APISuccess{Success: true})
}

// DeleteUser deletes a user
func (h *UserHandler) DeleteUser(c *gin.Context) {
	userID, err := utils.ParseObjectID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, models.APIError{Error: "Invalid user ID"})
		return
	}

	// TODO: Implement cascade deletion of user data (addresses, mailboxes, messages)
	deleted, err := h.st.DeleteUser(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.APIError{Error: err.Error()})
		return
	}
	if !deleted {
		c.JSON(http.StatusNotFound, models.APIError{Error: "User not found"})
		return
	}

	c.JSON(http.StatusOK, models.APISuccess{Success: true})
}

// ResetUserQuota recalculates and resets user storage quota
func (h *UserHandler) ResetUserQuota(c *gin.Context) {
	userID, err := utils.ParseObjectID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, models.APIError{Error: "Invalid user ID"})
		return
	}

	if _, err := h.st.UserByID(c.Request.Context(), userID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, models.APIError{Error: "User not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, models.APIError{Error: err.Error()})
		return
	}

	storageUsed, err := h.st.RecalculateStorageUsed(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.APIError{Error: err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"storageUsed": storageUsed,
	})
}
