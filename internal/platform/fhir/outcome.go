package fhir

import (
	"github.com/labstack/echo/v4"

	"github.com/ayushbridge/ayushbridge/internal/platform/apperr"
)

// WriteError renders an application error as an OperationOutcome with
// the matching HTTP status. FHIR-facing handlers use this instead of
// plain JSON error bodies.
func WriteError(c echo.Context, err error) error {
	var out *OperationOutcome
	switch {
	case apperr.IsNotFound(err):
		out = NotFoundOutcome(err.Error())
	case apperr.IsValidation(err):
		out = NewOperationOutcome(IssueSeverityError, IssueTypeInvalid, err.Error())
	case apperr.IsUpstreamUnavailable(err):
		out = UnavailableOutcome(err.Error())
	default:
		out = ErrorOutcome(err.Error())
	}
	return c.JSON(apperr.HTTPStatus(err), out)
}
