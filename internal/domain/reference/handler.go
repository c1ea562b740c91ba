package reference

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
)

type Handler struct {
	tables *Tables
}

func NewHandler(tables *Tables) *Handler {
	return &Handler{tables: tables}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	g := api.Group("/reference")
	g.GET("/denial-codes", h.ListDenialCodes)
	g.GET("/denial-codes/:code", h.GetDenialCode)
	g.GET("/modifiers", h.ListModifiers)
	g.GET("/payers", h.ListPayers)
	g.GET("/places-of-service", h.ListPlacesOfService)
	g.GET("/specialties", h.ListSpecialties)
	g.GET("/ncci-edits", h.ListNCCIEdits)
}

func (h *Handler) ListDenialCodes(c echo.Context) error {
	items := h.tables.DenialCodes()
	if category := strings.ToUpper(c.QueryParam("category")); category != "" {
		filtered := items[:0]
		for _, d := range items {
			if d.Category == category {
				filtered = append(filtered, d)
			}
		}
		items = filtered
	}
	return c.JSON(http.StatusOK, items)
}

func (h *Handler) GetDenialCode(c echo.Context) error {
	d, ok := h.tables.DenialCode(strings.ToUpper(c.Param("code")))
	if !ok {
		return echo.NewHTTPError(http.StatusNotFound, "denial code not found")
	}
	return c.JSON(http.StatusOK, d)
}

func (h *Handler) ListModifiers(c echo.Context) error {
	return c.JSON(http.StatusOK, h.tables.Modifiers())
}

func (h *Handler) ListPayers(c echo.Context) error {
	return c.JSON(http.StatusOK, h.tables.Payers())
}

func (h *Handler) ListPlacesOfService(c echo.Context) error {
	return c.JSON(http.StatusOK, h.tables.PlacesOfService())
}

func (h *Handler) ListSpecialties(c echo.Context) error {
	return c.JSON(http.StatusOK, h.tables.Specialties())
}

func (h *Handler) ListNCCIEdits(c echo.Context) error {
	return c.JSON(http.StatusOK, h.tables.NCCIEdits())
}
