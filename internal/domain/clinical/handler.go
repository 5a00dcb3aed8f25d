package clinical

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/ayushbridge/ayushbridge/internal/platform/apperr"
	"github.com/ayushbridge/ayushbridge/internal/platform/auth"
	"github.com/ayushbridge/ayushbridge/internal/platform/fhir"
)

// Handler exposes the clinical FHIR endpoints.
type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes wires clinical endpoints onto the FHIR group. All of
// them require an authenticated practitioner.
func (h *Handler) RegisterRoutes(fhirGroup *echo.Group, authRequired echo.MiddlewareFunc) {
	fhirGroup.POST("/Condition", h.CreateCondition, authRequired)
	fhirGroup.GET("/Condition", h.ProblemList, authRequired)
	fhirGroup.POST("/Bundle", h.ProcessBundle, authRequired)
}

func recorderFromContext(c echo.Context) (Recorder, error) {
	claims := auth.UserFromContext(c)
	if claims == nil {
		return Recorder{}, apperr.Validation("authenticated practitioner required")
	}
	doctorID, err := uuid.Parse(claims.UserID)
	if err != nil {
		return Recorder{}, apperr.Validation("token subject is not a practitioner id")
	}
	return Recorder{DoctorID: doctorID, HospitalID: claims.HospitalID}, nil
}

// CreateCondition handles POST /fhir/Condition
func (h *Handler) CreateCondition(c echo.Context) error {
	rec, err := recorderFromContext(c)
	if err != nil {
		return fhir.WriteError(c, err)
	}
	var in CreateConditionInput
	if err := c.Bind(&in); err != nil {
		return c.JSON(http.StatusBadRequest, fhir.ErrorOutcome("invalid request body"))
	}
	cond, err := h.svc.CreateCondition(c.Request().Context(), in, rec)
	if err != nil {
		return fhir.WriteError(c, err)
	}
	return c.JSON(http.StatusCreated, cond)
}

// ProblemList handles GET /fhir/Condition?patient=...&status=...
func (h *Handler) ProblemList(c echo.Context) error {
	raw := c.QueryParam("patient")
	if raw == "" {
		return c.JSON(http.StatusBadRequest, fhir.RequiredFieldOutcome("patient"))
	}
	patientID, err := uuid.Parse(raw)
	if err != nil {
		return c.JSON(http.StatusBadRequest, fhir.ErrorOutcome("invalid patient id"))
	}
	bundle, err := h.svc.ProblemList(c.Request().Context(), patientID, c.QueryParam("status"))
	if err != nil {
		return fhir.WriteError(c, err)
	}
	return c.JSON(http.StatusOK, bundle)
}

// ProcessBundle handles POST /fhir/Bundle
func (h *Handler) ProcessBundle(c echo.Context) error {
	rec, err := recorderFromContext(c)
	if err != nil {
		return fhir.WriteError(c, err)
	}
	var bundle fhir.Bundle
	if err := c.Bind(&bundle); err != nil {
		return c.JSON(http.StatusBadRequest, fhir.ErrorOutcome("invalid Bundle payload"))
	}
	resp, err := h.svc.ProcessBundle(c.Request().Context(), &bundle, rec)
	if err != nil {
		return fhir.WriteError(c, err)
	}
	return c.JSON(http.StatusOK, resp)
}
