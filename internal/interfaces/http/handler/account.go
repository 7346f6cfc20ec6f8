package handler

import (
	appidentity "github.com/datascientist-hue/live-dashboard/internal/application/identity"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// AccountHandler serves credential administration. Routes are mounted behind
// the super admin guard.
type AccountHandler struct {
	BaseHandler
	accountService *appidentity.AccountService
}

// NewAccountHandler creates an AccountHandler.
func NewAccountHandler(accountService *appidentity.AccountService) *AccountHandler {
	return &AccountHandler{accountService: accountService}
}

// List handles GET /api/v1/accounts
func (h *AccountHandler) List(c *gin.Context) {
	views, err := h.accountService.List(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, views)
}

// Get handles GET /api/v1/accounts/:id
func (h *AccountHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid account id")
		return
	}
	view, err := h.accountService.Get(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, view)
}

// Create handles POST /api/v1/accounts
func (h *AccountHandler) Create(c *gin.Context) {
	var input appidentity.CreateAccountInput
	if err := c.ShouldBindJSON(&input); err != nil {
		h.BadRequest(c, "Invalid account payload: "+err.Error())
		return
	}
	view, err := h.accountService.Create(c.Request.Context(), input)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, view)
}

// Update handles PUT /api/v1/accounts/:id
func (h *AccountHandler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid account id")
		return
	}
	var input appidentity.UpdateAccountInput
	if err := c.ShouldBindJSON(&input); err != nil {
		h.BadRequest(c, "Invalid account payload: "+err.Error())
		return
	}
	view, err := h.accountService.Update(c.Request.Context(), id, input)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, view)
}

// Delete handles DELETE /api/v1/accounts/:id
func (h *AccountHandler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid account id")
		return
	}
	if err := h.accountService.Delete(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}
