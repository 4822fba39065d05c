package handler

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/locvowork/quotes_service/internal/domain"
	"github.com/locvowork/quotes_service/internal/logger"
	"github.com/locvowork/quotes_service/internal/service"
	"github.com/locvowork/quotes_service/internal/service/serviceutils"
	"github.com/locvowork/quotes_service/pkg/quotexlsx"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type QuoteHandler struct {
	svc service.QuoteService
}

func NewQuoteHandler(svc service.QuoteService) *QuoteHandler {
	return &QuoteHandler{svc: svc}
}

// ExportHandler handles POST /export and POST /export/xlsx.
func (h *QuoteHandler) ExportHandler(c echo.Context) error {
	var req domain.QuoteExportRequest
	if err := c.Bind(&req); err != nil {
		return serviceutils.ResponseError(c, http.StatusBadRequest, "Invalid request body", err)
	}
	if err := c.Validate(&req); err != nil {
		return serviceutils.ResponseError(c, http.StatusBadRequest, "Invalid quote payload", err)
	}

	ctx := c.Request().Context()
	res, err := h.svc.Export(ctx, &req)
	if err != nil {
		switch {
		case errors.Is(err, quotexlsx.ErrTemplateNotFound):
			return serviceutils.ResponseError(c, http.StatusNotFound, "Template not found", err)
		case errors.Is(err, service.ErrInvalidRequest):
			return serviceutils.ResponseError(c, http.StatusBadRequest, "Invalid quote payload", err)
		}
		logger.ErrorLog(ctx, "Failed to export quote", err)
		return serviceutils.ResponseError(c, http.StatusInternalServerError, "Failed to export quote", err)
	}

	c.Response().Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, res.FileName))
	c.Response().Header().Set("X-Quote-Number", res.Token)
	return c.Blob(http.StatusOK, xlsxContentType, res.Data)
}

// NextNumberHandler handles POST /quote/next-number.
func (h *QuoteHandler) NextNumberHandler(c echo.Context) error {
	next, err := h.svc.NextNumber(c.Request().Context())
	if err != nil {
		return serviceutils.ResponseError(c, http.StatusInternalServerError, "Failed to get next quote number", err)
	}
	return serviceutils.ResponseSuccess(c, http.StatusOK, "Next quote number allocated", next)
}

// HealthHandler handles GET /health.
func (h *QuoteHandler) HealthHandler(c echo.Context) error {
	return serviceutils.ResponseSuccess(c, http.StatusOK, "ok", map[string]interface{}{
		"status":    "ok",
		"templates": h.svc.Templates(),
	})
}
