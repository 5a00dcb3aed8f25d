package bodyregion

import (
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/ayushbridge/ayushbridge/internal/platform/apperr"
	"github.com/ayushbridge/ayushbridge/internal/platform/auth"
)

// Handler exposes the interactive body map endpoints.
type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes wires body region endpoints. Authoring endpoints
// require an authenticated user.
func (h *Handler) RegisterRoutes(api *echo.Group, authRequired echo.MiddlewareFunc) {
	g := api.Group("/body-regions")
	g.GET("", h.ListRegions)
	g.GET("/:code/diagnoses", h.Diagnoses)
	g.POST("/:code/mappings", h.CreateMapping, authRequired)
	g.PATCH("/mappings/:id/verify", h.VerifyMapping, authRequired)
	g.DELETE("/mappings/:id", h.DeleteMapping, authRequired)
	g.POST("/remap", h.Rebuild, authRequired)
}

func jsonError(c echo.Context, err error) error {
	return c.JSON(apperr.HTTPStatus(err), map[string]string{"error": err.Error()})
}

// ListRegions handles GET /api/v1/body-regions
func (h *Handler) ListRegions(c echo.Context) error {
	regions, err := h.svc.ListRegions(c.Request().Context())
	if err != nil {
		return jsonError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"regions": regions})
}

// Diagnoses handles GET /api/v1/body-regions/:code/diagnoses
func (h *Handler) Diagnoses(c echo.Context) error {
	f := DiagnosesFilter{MinRelevance: 0.5, Limit: 50}
	if v := c.QueryParam("min_relevance"); v != "" {
		if parsed, err := strconv.ParseFloat(v, 64); err == nil {
			f.MinRelevance = parsed
		}
	}
	if v := c.QueryParam("limit"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			f.Limit = parsed
		}
	}
	f.VerifiedOnly = c.QueryParam("verified_only") == "true"

	region, diagnoses, err := h.svc.Diagnoses(c.Request().Context(), c.Param("code"), f)
	if err != nil {
		return jsonError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"region":    region,
		"diagnoses": diagnoses,
		"total":     len(diagnoses),
	})
}

// CreateMapping handles POST /api/v1/body-regions/:code/mappings
func (h *Handler) CreateMapping(c echo.Context) error {
	var in CreateMappingInput
	if err := c.Bind(&in); err != nil {
		return jsonError(c, apperr.Validation("invalid request body"))
	}
	authoredBy := ""
	if claims := auth.UserFromContext(c); claims != nil {
		authoredBy = claims.UserID
	}
	m, err := h.svc.CreateMapping(c.Request().Context(), c.Param("code"), in, authoredBy)
	if err != nil {
		return jsonError(c, err)
	}
	return c.JSON(http.StatusCreated, map[string]interface{}{"mapping": m})
}

// VerifyMapping handles PATCH /api/v1/body-regions/mappings/:id/verify
func (h *Handler) VerifyMapping(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return jsonError(c, apperr.Validation("invalid mapping id"))
	}
	verifiedBy := ""
	if claims := auth.UserFromContext(c); claims != nil {
		verifiedBy = claims.UserID
	}
	m, err := h.svc.Verify(c.Request().Context(), id, verifiedBy)
	if err != nil {
		return jsonError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"mapping": m})
}

// DeleteMapping handles DELETE /api/v1/body-regions/mappings/:id
func (h *Handler) DeleteMapping(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return jsonError(c, apperr.Validation("invalid mapping id"))
	}
	if err := h.svc.Delete(c.Request().Context(), id); err != nil {
		return jsonError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "mapping deleted"})
}

// Rebuild handles POST /api/v1/body-regions/remap
func (h *Handler) Rebuild(c echo.Context) error {
	stats, err := h.svc.Rebuild(c.Request().Context())
	if err != nil {
		return jsonError(c, err)
	}
	return c.JSON(http.StatusOK, stats)
}
