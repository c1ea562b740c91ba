package claim

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/claimscrub/scrubber/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.POST("/claims", h.CreateClaim)
	api.GET("/claims", h.ListClaims)
	api.GET("/claims/:id", h.GetClaim)
	api.POST("/claims/:id/submit", h.SubmitClaim)
	api.POST("/claims/:id/response", h.RecordResponse)
}

// HTTPError maps claim errors onto HTTP status codes.
func HTTPError(err error) error {
	switch {
	case errors.Is(err, ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "claim not found")
	case errors.Is(err, ErrInvalidTransition):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	case errors.Is(err, ErrInvalid):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
}

// BindRequest binds and validates a claim body.
func BindRequest(c echo.Context) (*Claim, error) {
	var req Request
	if err := c.Bind(&req); err != nil {
		return nil, echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if c.Echo().Validator != nil {
		if err := c.Validate(&req); err != nil {
			return nil, err
		}
	}
	cl, err := req.ToClaim()
	if err != nil {
		return nil, echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return cl, nil
}

func parseID(c echo.Context) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return uuid.Nil, echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	return id, nil
}

func (h *Handler) CreateClaim(c echo.Context) error {
	cl, err := BindRequest(c)
	if err != nil {
		return err
	}
	if err := h.svc.CreateClaim(c.Request().Context(), cl); err != nil {
		return HTTPError(err)
	}
	return c.JSON(http.StatusCreated, cl)
}

func (h *Handler) GetClaim(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	cl, err := h.svc.GetClaim(c.Request().Context(), id)
	if err != nil {
		return HTTPError(err)
	}
	return c.JSON(http.StatusOK, cl)
}

func (h *Handler) ListClaims(c echo.Context) error {
	pg, err := pagination.Parse(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	filter := ListFilter{
		Status:    Status(c.QueryParam("status")),
		PayerID:   c.QueryParam("payer_id"),
		PatientID: c.QueryParam("patient_id"),
	}
	items, total, err := h.svc.ListClaims(c.Request().Context(), filter, pg.Limit, pg.Offset)
	if err != nil {
		return HTTPError(err)
	}
	return c.JSON(http.StatusOK, pagination.NewPage(items, total, pg, c.Request().URL.Path, c.QueryParams()))
}

func (h *Handler) SubmitClaim(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	cl, err := h.svc.SubmitClaim(c.Request().Context(), id)
	if err != nil {
		return HTTPError(err)
	}
	return c.JSON(http.StatusOK, cl)
}

func (h *Handler) RecordResponse(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	var req ResponseRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if c.Echo().Validator != nil {
		if err := c.Validate(&req); err != nil {
			return err
		}
	}
	cl, err := h.svc.RecordPayerResponse(c.Request().Context(), id, PayerResponse{
		Status: Status(req.Status),
		Codes:  req.Codes,
		Note:   req.Note,
	})
	if err != nil {
		return HTTPError(err)
	}
	return c.JSON(http.StatusOK, cl)
}
