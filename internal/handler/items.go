package handler

import (
	"errors"
	"net/http"

	"stockswift/internal/apierror"
	"stockswift/internal/dto"
	"stockswift/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type ItemsHandler struct{ svc service.ItemService }

func NewItemsHandler(svc service.ItemService) *ItemsHandler {
	return &ItemsHandler{svc: svc}
}

// List godoc
// @Summary List inventory items with category summary
// @Tags items
// @Produce json
// @Param search query string false "Matches name or SKU, case-insensitive substring"
// @Param category query string false "Exact category filter"
// @Success 200 {object} dto.ItemListResponse
// @Router /items [get]
func (h *ItemsHandler) List(c *gin.Context) {
	var filter dto.ItemFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.JSON(http.StatusInternalServerError, apierror.New("Server error"))
		return
	}

	resp, err := h.svc.List(c.Request.Context(), filter)
	if err != nil {
		c.Error(err) //nolint:errcheck
		c.JSON(http.StatusInternalServerError, apierror.New("Server error"))
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *ItemsHandler) Create(c *gin.Context) {
	var req dto.CreateItemRequest
	if !bindAndValidate(c, &req) {
		return
	}

	resp, err := h.svc.Create(c.Request.Context(), req)
	if err != nil {
		var missing *service.MissingFieldError
		switch {
		case errors.As(err, &missing), errors.Is(err, service.ErrSKUTaken):
			c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		default:
			c.Error(err) //nolint:errcheck
			c.JSON(http.StatusInternalServerError, apierror.New("Server error"))
		}
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *ItemsHandler) Patch(c *gin.Context) {
	// An unparseable id cannot name any item
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, apierror.New(service.ErrItemNotFound.Error()))
		return
	}

	var req dto.PatchItemRequest
	if !bindAndValidate(c, &req) {
		return
	}

	resp, err := h.svc.Patch(c.Request.Context(), id, req)
	if err != nil {
		if errors.Is(err, service.ErrItemNotFound) {
			c.JSON(http.StatusNotFound, apierror.New(err.Error()))
			return
		}
		c.Error(err) //nolint:errcheck
		c.JSON(http.StatusInternalServerError, apierror.New("Server error"))
		return
	}
	c.JSON(http.StatusOK, resp)
}
