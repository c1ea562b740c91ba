package scrub

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/claimscrub/scrubber/internal/domain/claim"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.POST("/claims/:id/validate", h.ValidateClaim)
	api.GET("/claims/:id/validation", h.GetValidation)
	api.POST("/validate", h.ValidateDraft)

	g := api.Group("/suggestions")
	g.GET("/icd", h.SuggestICD)
	g.GET("/modifiers", h.SuggestModifiers)
}

// ValidateRequest selects the checks to run. An empty list runs all of them.
type ValidateRequest struct {
	Checks []string `json:"checks"`
}

// DraftRequest carries an unsaved claim to validate.
type DraftRequest struct {
	Claim  claim.Request `json:"claim"`
	Checks []string      `json:"checks"`
}

func httpError(err error) error {
	switch {
	case errors.Is(err, ErrUnknownCheckType):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, ErrNotValidated):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	}
	return claim.HTTPError(err)
}

func parseChecks(names []string) ([]CheckType, error) {
	out := make([]CheckType, 0, len(names))
	for _, n := range names {
		t, err := ParseCheckType(n)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, nil
}

func parseID(c echo.Context) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return uuid.Nil, echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	return id, nil
}

func (h *Handler) ValidateClaim(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	var req ValidateRequest
	if c.Request().ContentLength != 0 {
		if err := c.Bind(&req); err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
		}
	}
	checks, err := parseChecks(req.Checks)
	if err != nil {
		return httpError(err)
	}
	v, err := h.svc.ValidateClaim(c.Request().Context(), id, checks)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, v)
}

func (h *Handler) GetValidation(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	v, err := h.svc.GetValidation(c.Request().Context(), id)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, v)
}

func (h *Handler) ValidateDraft(c echo.Context) error {
	var req DraftRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if c.Echo().Validator != nil {
		if err := c.Validate(&req); err != nil {
			return err
		}
	}
	checks, err := parseChecks(req.Checks)
	if err != nil {
		return httpError(err)
	}
	cl, err := req.Claim.ToClaim()
	if err != nil {
		return httpError(err)
	}
	claim.Normalize(cl)

	v, err := h.svc.ValidateDraft(c.Request().Context(), cl, checks)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, v)
}

type icdSuggestions struct {
	CPT         string   `json:"cpt"`
	Specialty   string   `json:"specialty,omitempty"`
	Suggestions []string `json:"suggestions"`
}

func (h *Handler) SuggestICD(c echo.Context) error {
	cpt := strings.ToUpper(strings.TrimSpace(c.QueryParam("cpt")))
	if cpt == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "cpt is required")
	}
	specialty := strings.ToUpper(strings.TrimSpace(c.QueryParam("specialty")))
	var conditions []string
	for _, s := range strings.Split(c.QueryParam("conditions"), ",") {
		if s = strings.ToUpper(strings.TrimSpace(s)); s != "" {
			conditions = append(conditions, s)
		}
	}
	return c.JSON(http.StatusOK, icdSuggestions{
		CPT:         cpt,
		Specialty:   specialty,
		Suggestions: SuggestICDCodes(h.svc.Engine().Tables(), cpt, conditions, specialty),
	})
}

type modifierSuggestions struct {
	CPT         string               `json:"cpt"`
	Suggestions []ModifierSuggestion `json:"suggestions"`
}

func (h *Handler) SuggestModifiers(c echo.Context) error {
	q := ModifierQuery{
		CPT:            strings.TrimSpace(c.QueryParam("cpt")),
		DrugCode:       strings.TrimSpace(c.QueryParam("drug_code")),
		PlaceOfService: strings.TrimSpace(c.QueryParam("pos")),
	}
	if q.CPT == "" && q.DrugCode == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "cpt or drug_code is required")
	}
	if raw := c.QueryParam("discarded_units"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			return echo.NewHTTPError(http.StatusBadRequest, "discarded_units must be a non-negative integer")
		}
		q.DrugDiscardedUnits = n
	}
	return c.JSON(http.StatusOK, modifierSuggestions{
		CPT:         strings.ToUpper(q.CPT),
		Suggestions: SuggestModifiers(h.svc.Engine().Tables(), q),
	})
}
