package terminology

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/ayushbridge/ayushbridge/internal/platform/apperr"
	"github.com/ayushbridge/ayushbridge/internal/platform/fhir"
	"github.com/ayushbridge/ayushbridge/pkg/pagination"
)

// Handler exposes terminology search, translation and FHIR resources.
type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes wires terminology endpoints on the API and FHIR groups.
func (h *Handler) RegisterRoutes(api *echo.Group, fhirGroup *echo.Group) {
	api.GET("/search", h.Search)
	api.GET("/search/diagnosis", h.SearchDiagnosis)
	api.GET("/translate", h.Translate)
	api.GET("/stats", h.Stats)
	api.GET("/mappings", h.ListMappings)
	api.POST("/mappings", h.CreateMapping)
	api.GET("/codes/namaste/:code", h.GetNamaste)
	api.GET("/codes/icd11/:code", h.GetICD11)

	fhirGroup.GET("/CodeSystem/namaste", h.NamasteCodeSystem)
	fhirGroup.GET("/CodeSystem/icd11", h.ICD11CodeSystem)
	fhirGroup.GET("/CodeSystem/namaste/$lookup", h.NamasteLookup)
	fhirGroup.GET("/CodeSystem/icd11/$lookup", h.ICD11Lookup)
	fhirGroup.GET("/ConceptMap/namaste-to-icd11", h.ConceptMap)
	fhirGroup.GET("/ConceptMap/$translate", h.FHIRTranslate)
	fhirGroup.POST("/ConceptMap/$translate", h.FHIRTranslate)
	fhirGroup.GET("/ValueSet/$expand", h.ExpandValueSet)
	fhirGroup.POST("/ValueSet/$expand", h.ExpandValueSet)
}

func jsonError(c echo.Context, err error) error {
	return c.JSON(apperr.HTTPStatus(err), map[string]string{"error": err.Error()})
}

func getLimit(c echo.Context) int {
	limit, _ := strconv.Atoi(c.QueryParam("_count"))
	if limit <= 0 {
		limit, _ = strconv.Atoi(c.QueryParam("limit"))
	}
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	return limit
}

// Search handles GET /api/v1/search?q=...&system=namaste|icd11
func (h *Handler) Search(c echo.Context) error {
	hits, err := h.svc.SearchCodes(c.Request().Context(), c.QueryParam("q"), c.QueryParam("system"), getLimit(c))
	if err != nil {
		return jsonError(c, err)
	}
	if hits == nil {
		hits = []SearchHit{}
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"query":   c.QueryParam("q"),
		"total":   len(hits),
		"results": hits,
	})
}

// SearchDiagnosis handles GET /api/v1/search/diagnosis?q=...&system_type=...
func (h *Handler) SearchDiagnosis(c echo.Context) error {
	results, err := h.svc.SearchDiagnosis(c.Request().Context(), c.QueryParam("q"), c.QueryParam("system_type"), getLimit(c))
	if err != nil {
		return jsonError(c, err)
	}
	if results == nil {
		results = []DiagnosisResult{}
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"query":   c.QueryParam("q"),
		"total":   len(results),
		"results": results,
	})
}

// Translate handles GET /api/v1/translate?code=...&system=namaste|icd11
func (h *Handler) Translate(c echo.Context) error {
	matches, err := h.svc.Translate(c.Request().Context(), c.QueryParam("code"), c.QueryParam("system"))
	if err != nil {
		return jsonError(c, err)
	}
	if matches == nil {
		matches = []Translation{}
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"code":    c.QueryParam("code"),
		"system":  c.QueryParam("system"),
		"matches": matches,
	})
}

// Stats handles GET /api/v1/stats
func (h *Handler) Stats(c echo.Context) error {
	stats, err := h.svc.Stats(c.Request().Context())
	if err != nil {
		return jsonError(c, err)
	}
	return c.JSON(http.StatusOK, stats)
}

// ListMappings handles GET /api/v1/mappings?system_type=...
func (h *Handler) ListMappings(c echo.Context) error {
	p := pagination.FromContext(c)
	rows, total, err := h.svc.ListMappings(c.Request().Context(), c.QueryParam("system_type"), p.Limit, p.Offset)
	if err != nil {
		return jsonError(c, err)
	}
	if rows == nil {
		rows = []MappingRow{}
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(rows, total, p.Limit, p.Offset))
}

type createMappingRequest struct {
	NamasteCode string  `json:"namaste_code"`
	ICDCode     string  `json:"icd_code"`
	Confidence  float64 `json:"confidence"`
	MappingType string  `json:"mapping_type"`
}

// CreateMapping handles POST /api/v1/mappings
func (h *Handler) CreateMapping(c echo.Context) error {
	var req createMappingRequest
	if err := c.Bind(&req); err != nil {
		return jsonError(c, apperr.Validation("invalid request body"))
	}
	created, err := h.svc.CreateMapping(c.Request().Context(), req.NamasteCode, req.ICDCode, req.Confidence, req.MappingType)
	if err != nil {
		return jsonError(c, err)
	}
	status := http.StatusCreated
	if !created {
		status = http.StatusOK
	}
	return c.JSON(status, map[string]interface{}{"created": created})
}

// GetNamaste handles GET /api/v1/codes/namaste/:code
func (h *Handler) GetNamaste(c echo.Context) error {
	code, err := h.svc.LookupNamaste(c.Request().Context(), c.Param("code"))
	if err != nil {
		return jsonError(c, err)
	}
	return c.JSON(http.StatusOK, code)
}

// GetICD11 handles GET /api/v1/codes/icd11/:code
func (h *Handler) GetICD11(c echo.Context) error {
	code, err := h.svc.LookupICD11(c.Request().Context(), c.Param("code"))
	if err != nil {
		return jsonError(c, err)
	}
	return c.JSON(http.StatusOK, code)
}

// NamasteCodeSystem handles GET /fhir/CodeSystem/namaste?system_type=...
func (h *Handler) NamasteCodeSystem(c echo.Context) error {
	cs, err := h.svc.NamasteCodeSystem(c.Request().Context(), c.QueryParam("system_type"))
	if err != nil {
		return fhir.WriteError(c, err)
	}
	return c.JSON(http.StatusOK, cs)
}

// ICD11CodeSystem handles GET /fhir/CodeSystem/icd11?module=...
func (h *Handler) ICD11CodeSystem(c echo.Context) error {
	cs, err := h.svc.ICD11CodeSystem(c.Request().Context(), c.QueryParam("module"))
	if err != nil {
		return fhir.WriteError(c, err)
	}
	return c.JSON(http.StatusOK, cs)
}

// NamasteLookup handles GET /fhir/CodeSystem/namaste/$lookup?code=...
func (h *Handler) NamasteLookup(c echo.Context) error {
	code := c.QueryParam("code")
	if code == "" {
		return c.JSON(http.StatusBadRequest, fhir.RequiredFieldOutcome("code"))
	}
	concept, err := h.svc.LookupNamaste(c.Request().Context(), code)
	if err != nil {
		return fhir.WriteError(c, err)
	}
	return c.JSON(http.StatusOK, BuildNamasteLookupParameters(concept))
}

// ICD11Lookup handles GET /fhir/CodeSystem/icd11/$lookup?code=...
func (h *Handler) ICD11Lookup(c echo.Context) error {
	code := c.QueryParam("code")
	if code == "" {
		return c.JSON(http.StatusBadRequest, fhir.RequiredFieldOutcome("code"))
	}
	concept, err := h.svc.LookupICD11(c.Request().Context(), code)
	if err != nil {
		return fhir.WriteError(c, err)
	}
	return c.JSON(http.StatusOK, BuildICD11LookupParameters(concept))
}

// ConceptMap handles GET /fhir/ConceptMap/namaste-to-icd11?system_type=...
func (h *Handler) ConceptMap(c echo.Context) error {
	cm, err := h.svc.ConceptMap(c.Request().Context(), c.QueryParam("system_type"))
	if err != nil {
		return fhir.WriteError(c, err)
	}
	return c.JSON(http.StatusOK, cm)
}

// FHIRTranslate handles $translate. Parameters come from the query
// string on GET or a Parameters resource on POST.
func (h *Handler) FHIRTranslate(c echo.Context) error {
	code := c.QueryParam("code")
	system := c.QueryParam("system")
	if c.Request().Method == http.MethodPost && code == "" {
		var params fhir.Parameters
		if err := c.Bind(&params); err != nil {
			return c.JSON(http.StatusBadRequest, fhir.ErrorOutcome("invalid Parameters resource"))
		}
		for _, p := range params.Parameter {
			switch p.Name {
			case "code":
				code = p.ValueCode
				if code == "" {
					code = p.ValueString
				}
			case "system":
				system = systemToVocabulary(p.ValueString)
			}
		}
	}
	if code == "" {
		return c.JSON(http.StatusBadRequest, fhir.RequiredFieldOutcome("code"))
	}
	if system == "" {
		system = VocabularyNamaste
	}
	matches, err := h.svc.Translate(c.Request().Context(), code, system)
	if err != nil {
		return fhir.WriteError(c, err)
	}
	return c.JSON(http.StatusOK, BuildTranslateParameters(matches, system))
}

// systemToVocabulary maps a canonical system URI to the short
// vocabulary name used internally. Short names pass through.
func systemToVocabulary(uri string) string {
	switch {
	case uri == SystemICD11:
		return VocabularyICD11
	case strings.HasPrefix(uri, SystemNamasteBase):
		return VocabularyNamaste
	}
	return uri
}

// ExpandValueSet handles GET/POST /fhir/ValueSet/$expand?filter=...
func (h *Handler) ExpandValueSet(c echo.Context) error {
	filter := c.QueryParam("filter")
	if filter == "" {
		return c.JSON(http.StatusBadRequest, fhir.RequiredFieldOutcome("filter"))
	}
	count, _ := strconv.Atoi(c.QueryParam("count"))
	if count <= 0 {
		count = getLimit(c)
	}
	vs, err := h.svc.ExpandValueSet(c.Request().Context(), filter, c.QueryParam("system"), count)
	if err != nil {
		return fhir.WriteError(c, err)
	}
	return c.JSON(http.StatusOK, vs)
}
