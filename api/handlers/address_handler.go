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

type AddressHandler struct {
	st *store.Store
}

func NewAddressHandler(st *store.Store) *AddressHandler {
	return &AddressHandler{st: st}
}

// GetAddresses retrieves a paginated list of all addresses
func (h *AddressHandler) GetAddresses(c *gin.Context) {
	query := c.Query("query")
	limit := utils.ParseIntParam(c.Query("limit"), 20)
	page := utils.ParseIntParam(c.Query("page"), 1)

	if limit > 250 {
		limit = 250
	}
	if limit < 1 {
		limit = 1
	}

	escapedQuery := ""
	if query != "" {
		escapedQuery = utils.EscapeRegexSpecialChars(query)
	}

	skip := (page - 1) * limit
	addresses, total, err := h.st.ListAddresses(c.Request.Context(), escapedQuery, limit, skip)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.APIError{Error: err.Error()})
		return
	}

	results := make([]gin.H, len(addresses))
	for i, addr := range addresses {
		results[i] = gin.H{
			"id":      addr.ID.Hex(),
			"address": addr.Address,
			"user":    addr.User.Hex(),
		}
	}

	var prevUrl, nextUrl *string
	if page > 1 {
		prev := "/api/addresses?page=" + strconv.Itoa(page-1) + "&limit=" + strconv.Itoa(limit)
		if query != "" {
			prev += "&query=" + query
		}
		prevUrl = &prev
	}

	if int64((page)*limit) < total {
		next := "/api/addresses?page=" + strconv.Itoa(page+1) + "&limit=" + strconv.Itoa(limit)
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

// GetUserAddresses retrieves all addresses for a specific user
func (h *AddressHandler) GetUserAddresses(c *gin.Context) {
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

	addresses, err := h.st.ListUserAddresses(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.APIError{Error: err.Error()})
		return
	}

	results := make([]gin.H, len(addresses))
	for i, addr := range addresses {
		results[i] = gin.H{
			"id":      addr.ID.Hex(),
			"address": addr.Address,
			"main":    addr.Address == user.Address,
			"created": addr.Created,
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"addresses": results,
	})
}

// CreateUserAddress creates a new address for a user
func (h *AddressHandler) CreateUserAddress(c *gin.Context) {
	userID, err := utils.ParseObjectID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, models.APIError{Error: "Invalid user ID"})
		return
	}

	var req struct {
		Address string `json:"address" binding:"required,email"`
		Main    bool   `json:"main,omitempty"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.APIError{Error: err.Error()})
		return
	}

	address := utils.NormalizeAddress(req.Address)

	if !utils.ValidateEmail(address) {
		c.JSON(http.StatusBadRequest, models.APIError{Error: "Invalid email address"})
		return
	}

	if len(address) > 0 && address[0] == '+' {
		c.JSON(http.StatusBadRequest, models.APIError{Error: "Address cannot contain +"})
		return
	}

	addressID, err := h.st.CreateUserAddress(c.Request.Context(), userID, address, req.Main)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, models.APIError{Error: "User not found"})
			return
		}
		if errors.Is(err, store.ErrConflict) {
			c.JSON(http.StatusConflict, models.APIError{Error: "Email address already exists"})
			return
		}
		c.JSON(http.StatusInternalServerError, models.APIError{Error: err.Error()})
		return
	}

	c.JSON(http.StatusCreated, models.APISuccess{
		Success: true,
		ID:      addressID.Hex(),
	})
}

// GetUserAddress retrieves a specific address for a user
func (h *AddressHandler) GetUserAddress(c *gin.Context) {
	userID, err := utils.ParseObjectID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, models.APIError{Error: "Invalid user ID"})
		return
	}

	addressID, err := utils.ParseObjectID(c.Param("addressId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, models.APIError{Error: "Invalid address ID"})
		return
	}

	address, isMain, err := h.st.GetUserAddress(c.Request.Context(), userID, addressID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, models.APIError{Error: "Address not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, models.APIError{Error: err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"id":      address.ID.Hex(),
		"address": address.Address,
		"main":    isMain,
		"created": address.Created,
	})
}

// UpdateUserAddress updates a user's address (mainly to set as main address)
func (h *AddressHandler) UpdateUserAddress(c *gin.Context) {
	userID, err := utils.ParseObjectID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, models.APIError{Error: "Invalid user ID"})
		return
	}

	addressID, err := utils.ParseObjectID(c.Param("addressId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, models.APIError{Error: "Invalid address ID"})
		return
	}

	var req struct {
		Main bool `json:"main" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.APIError{Error: err.Error()})
		return
	}

	if !req.Main {
		c.JSON(http.StatusBadRequest, models.APIError{Error: "Cannot unset main status"})
		return
	}

	err = h.st.SetMainAddress(c.Request.Context(), userID, addressID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, models.APIError{Error: "Invalid or unknown address"})
			return
		}
		if errors.Is(err, store.ErrConflict) {
			c.JSON(http.StatusBadRequest, models.APIError{Error: "Selected address is already the main email address"})
			return
		}
		c.JSON(http.StatusInternalServerError, models.APIError{Error: err.Error()})
		return
	}

	c.JSON(http.StatusOK, models.APISuccess{Success: true})
}

// DeleteUserAddress deletes a user's address
func (h *AddressHandler) DeleteUserAddress(c *gin.Context) {
	userID, err := utils.ParseObjectID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, models.APIError{Error: "Invalid user ID"})
		return
	}

	addressID, err := utils.ParseObjectID(c.Param("addressId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, models.APIError{Error: "Invalid address ID"})
		return
	}

	err = h.st.DeleteUserAddress(c.Request.Context(), userID, addressID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, models.APIError{Error: "Invalid or unknown address"})
			return
		}
		if errors.Is(err, store.ErrConflict) {
			c.JSON(http.StatusBadRequest, models.APIError{Error: "Cannot delete main address. Set a new main address first"})
			return
		}
		c.JSON(http.StatusInternalServerError, models.APIError{Error: err.Error()})
		return
	}

	c.JSON(http.StatusOK, models.APISuccess{Success: true})
}
