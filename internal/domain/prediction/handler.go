package prediction

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/ayushbridge/ayushbridge/internal/platform/apperr"
	"github.com/ayushbridge/ayushbridge/internal/platform/predict"
)

// Handler exposes prediction and semantic search endpoints.
type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes wires prediction endpoints. Embedding regeneration is
// restricted to authenticated users.
func (h *Handler) RegisterRoutes(api *echo.Group, authRequired echo.MiddlewareFunc) {
	g := api.Group("/prediction")
	g.GET("/symptoms", h.Symptoms)
	g.GET("/models", h.Models)
	g.POST("/disease", h.Predict)

	api.GET("/search/semantic", h.SemanticSearch)
	api.POST("/search/generate-embeddings", h.GenerateEmbeddings, authRequired)
}

func jsonError(c echo.Context, err error) error {
	return c.JSON(apperr.HTTPStatus(err), map[string]string{"error": err.Error()})
}

// Symptoms handles GET /api/v1/prediction/symptoms
func (h *Handler) Symptoms(c echo.Context) error {
	symptoms, err := h.svc.Symptoms(c.Request().Context())
	if err != nil {
		return jsonError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"symptoms": symptoms})
}

// Models handles GET /api/v1/prediction/models
func (h *Handler) Models(c echo.Context) error {
	models, err := h.svc.Models(c.Request().Context())
	if err != nil {
		return jsonError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"models": models})
}

// Predict handles POST /api/v1/prediction/disease
func (h *Handler) Predict(c echo.Context) error {
	var req predict.PredictionRequest
	if err := c.Bind(&req); err != nil {
		return jsonError(c, apperr.Validation("invalid request body"))
	}
	result, err := h.svc.Predict(c.Request().Context(), req)
	if err != nil {
		return jsonError(c, err)
	}
	return c.JSON(http.StatusOK, result)
}

// SemanticSearch handles GET /api/v1/search/semantic?query=...&type=...
func (h *Handler) SemanticSearch(c echo.Context) error {
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	results, err := h.svc.SemanticSearch(c.Request().Context(),
		c.QueryParam("query"), c.QueryParam("type"), limit)
	if err != nil {
		return jsonError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"results": results})
}

// GenerateEmbeddings handles POST /api/v1/search/generate-embeddings
func (h *Handler) GenerateEmbeddings(c echo.Context) error {
	if err := h.svc.RegenerateEmbeddings(c.Request().Context()); err != nil {
		return jsonError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "embedding index rebuilt"})
}
