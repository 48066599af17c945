package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/oakmail/mailcore/api/auth"
	"github.com/oakmail/mailcore/api/models"
	"github.com/oakmail/mailcore/store"
)

// AuthHandler exposes the login endpoint that exchanges a username and
// password for a bearer session token.
type AuthHandler struct {
	st     *store.Store
	issuer *auth.Issuer
}

func NewAuthHandler(st *store.Store, issuer *auth.Issuer) *AuthHandler {
	return &AuthHandler{st: st, issuer: issuer}
}

// Login verifies username/password against the bcrypt-hashed record and,
// on success, returns a signed bearer token.
func (h *AuthHandler) Login(c *gin.Context) {
	var req struct {
		Username string `json:"username" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.APIError{Error: err.Error()})
		return
	}

	user, err := h.st.Authenticate(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		c.JSON(http.StatusUnauthorized, models.APIError{Error: "Invalid username or password"})
		return
	}

	token, err := h.issuer.Issue(user.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.APIError{Error: err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"token":   token,
		"id":      user.ID.Hex(),
	})
}
