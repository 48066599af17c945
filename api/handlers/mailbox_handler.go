package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/oakmail/mailcore/api/models"
	"github.com/oakmail/mailcore/api/utils"
	"github.com/oakmail/mailcore/store"
)

type MailboxHandler struct {
	st *store.Store
}

func NewMailboxHandler(st *store.Store) *MailboxHandler {
	return &MailboxHandler{st: st}
}

// GetUserMailboxes retrieves all mailboxes for a specific user
func (h *MailboxHandler) GetUserMailboxes(c *gin.Context) {
	userID, err := utils.ParseObjectID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, models.APIError{Error: "Invalid user ID"})
		return
	}

	counters := utils.ParseBoolParam(c.Query("counters"))

	if _, err := h.st.UserByID(c.Request.Context(), userID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, models.APIError{Error: "User not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, models.APIError{Error: err.Error()})
		return
	}

	mailboxes, err := h.st.ListUserMailboxes(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.APIError{Error: err.Error()})
		return
	}

	results := make([]gin.H, len(mailboxes))
	for i, mb := range mailboxes {
		pathParts := strings.Split(mb.Path, "/")
		name := pathParts[len(pathParts)-1]

		result := gin.H{
			"id":          mb.ID.Hex(),
			"name":        name,
			"path":        mb.Path,
			"specialUse":  mb.SpecialUse,
			"modifyIndex": mb.ModifyIndex,
			"subscribed":  mb.Subscribed,
		}

		if counters {
			_, counts, err := h.st.GetMailboxForUser(c.Request.Context(), userID, mb.ID)
			if err == nil {
				result["total"] = counts.Total
				result["unseen"] = counts.Unseen
			}
		}

		results[i] = result
	}

	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"mailboxes": results,
	})
}

// CreateMailbox creates a new mailbox for a user
func (h *MailboxHandler) CreateMailbox(c *gin.Context) {
	userID, err := utils.ParseObjectID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, models.APIError{Error: "Invalid user ID"})
		return
	}

	var req struct {
		Path      string `json:"path" binding:"required"`
		Retention int64  `json:"retention,omitempty"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.APIError{Error: err.Error()})
		return
	}

	path := strings.TrimSpace(req.Path)

	if _, err := h.st.UserByID(c.Request.Context(), userID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, models.APIError{Error: "User not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, models.APIError{Error: err.Error()})
		return
	}

	mailboxID, err := h.st.CreateMailboxForUser(c.Request.Context(), userID, path, req.Retention)
	if err != nil {
		if errors.Is(err, store.ErrConflict) {
			c.JSON(http.StatusConflict, models.APIError{Error: "Mailbox already exists"})
			return
		}
		if strings.HasPrefix(err.Error(), "invalid mailbox path") {
			c.JSON(http.StatusBadRequest, models.APIError{Error: "Invalid mailbox path"})
			return
		}
		c.JSON(http.StatusInternalServerError, models.APIError{Error: err.Error()})
		return
	}

	c.JSON(http.StatusCreated, models.APISuccess{
		Success: true,
		ID:      mailboxID.Hex(),
	})
}

// GetMailbox retrieves a specific mailbox
func (h *MailboxHandler) GetMailbox(c *gin.Context) {
	userID, err := utils.ParseObjectID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, models.APIError{Error: "Invalid user ID"})
		return
	}

	mailboxID, err := utils.ParseObjectID(c.Param("mailboxId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, models.APIError{Error: "Invalid mailbox ID"})
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

	mailbox, counts, err := h.st.GetMailboxForUser(c.Request.Context(), userID, mailboxID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, models.APIError{Error: "Mailbox not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, models.APIError{Error: err.Error()})
		return
	}

	pathParts := strings.Split(mailbox.Path, "/")
	name := pathParts[len(pathParts)-1]

	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"id":          mailbox.ID.Hex(),
		"name":        name,
		"path":        mailbox.Path,
		"specialUse":  mailbox.SpecialUse,
		"modifyIndex": mailbox.ModifyIndex,
		"subscribed":  mailbox.Subscribed,
		"total":       counts.Total,
		"unseen":      counts.Unseen,
	})
}

// UpdateMailbox updates mailbox properties
func (h *MailboxHandler) UpdateMailbox(c *gin.Context) {
	userID, err := utils.ParseObjectID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, models.APIError{Error: "Invalid user ID"})
		return
	}

	mailboxID, err := utils.ParseObjectID(c.Param("mailboxId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, models.APIError{Error: "Invalid mailbox ID"})
		return
	}

	var req struct {
		Path       *string `json:"path,omitempty"`
		Retention  *int64  `json:"retention,omitempty"`
		Subscribed *bool   `json:"subscribed,omitempty"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.APIError{Error: err.Error()})
		return
	}

	if req.Path == nil && req.Retention == nil && req.Subscribed == nil {
		c.JSON(http.StatusBadRequest, models.APIError{Error: "Nothing was changed"})
		return
	}

	matched, err := h.st.UpdateMailboxForUser(c.Request.Context(), userID, mailboxID, store.MailboxUpdate{
		Path:       req.Path,
		Retention:  req.Retention,
		Subscribed: req.Subscribed,
	})
	if err != nil {
		if strings.HasPrefix(err.Error(), "invalid mailbox path") {
			c.JSON(http.StatusBadRequest, models.APIError{Error: "Invalid mailbox path"})
			return
		}
		c.JSON(http.StatusInternalServerError, models.APIError{Error: err.Error()})
		return
	}
	if !matched {
		c.JSON(http.StatusNotFound, models.APIError{Error: "Mailbox not found"})
		return
	}

	c.JSON(http.StatusOK, models.APISuccess{Success: true})
}

// DeleteMailbox deletes a mailbox
func (h *MailboxHandler) DeleteMailbox(c *gin.Context) {
	userID, err := utils.ParseObjectID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, models.APIError{Error: "Invalid user ID"})
		return
	}

	mailboxID, err := utils.ParseObjectID(c.Param("mailboxId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, models.APIError{Error: "Invalid mailbox ID"})
		return
	}

	deleted, err := h.st.DeleteMailboxForUser(c.Request.Context(), userID, mailboxID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, models.APIError{Error: "Mailbox not found"})
			return
		}
		switch err.Error() {
		case "cannot delete INBOX", "cannot delete mailbox with messages":
			c.JSON(http.StatusBadRequest, models.APIError{Error: strings.ToUpper(err.Error()[:1]) + err.Error()[1:]})
			return
		}
		c.JSON(http.StatusInternalServerError, models.APIError{Error: err.Error()})
		return
	}

	c.JSON(http.StatusOK, models.APISuccess{Success: deleted})
}
