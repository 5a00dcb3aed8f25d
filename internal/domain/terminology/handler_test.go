package terminology

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/ayushbridge/ayushbridge/internal/platform/fhir"
)

func newTestServer() *echo.Echo {
	e := echo.New()
	h := NewHandler(NewService(seededRepo()))
	h.RegisterRoutes(e.Group("/api/v1"), e.Group("/fhir"))
	return e
}

func doRequest(e *echo.Echo, method, target, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestSearchEndpoint(t *testing.T) {
	e := newTestServer()
	rec := doRequest(e, http.MethodGet, "/api/v1/search?q=kasa&system=namaste", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		Total   int         `json:"total"`
		Results []SearchHit `json:"results"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Total != 1 || resp.Results[0].Code != "AY-002" {
		t.Errorf("unexpected response: %+v", resp)
	}
}

func TestSearchEndpointMissingQuery(t *testing.T) {
	e := newTestServer()
	rec := doRequest(e, http.MethodGet, "/api/v1/search", "")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestTranslateEndpointUnknownCode(t *testing.T) {
	e := newTestServer()
	rec := doRequest(e, http.MethodGet, "/api/v1/translate?code=AY-999&system=namaste", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var resp struct {
		Matches []Translation `json:"matches"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if len(resp.Matches) != 0 {
		t.Errorf("expected empty match list, got %d", len(resp.Matches))
	}
}

func TestCreateMappingEndpoint(t *testing.T) {
	e := newTestServer()
	body := `{"namaste_code":"AY-001","icd_code":"MD12","confidence":0.6,"mapping_type":"secondary"}`
	rec := doRequest(e, http.MethodPost, "/api/v1/mappings", body)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	rec = doRequest(e, http.MethodPost, "/api/v1/mappings", body)
	if rec.Code != http.StatusOK {
		t.Errorf("duplicate insert status = %d, want 200", rec.Code)
	}
}

func TestNamasteCodeSystemEndpoint(t *testing.T) {
	e := newTestServer()
	rec := doRequest(e, http.MethodGet, "/fhir/CodeSystem/namaste", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var cs CodeSystem
	if err := json.Unmarshal(rec.Body.Bytes(), &cs); err != nil {
		t.Fatal(err)
	}
	if cs.ResourceType != "CodeSystem" || cs.Count != 3 {
		t.Errorf("resourceType=%q count=%d", cs.ResourceType, cs.Count)
	}
}

func TestLookupMissingCodeReturnsOutcome(t *testing.T) {
	e := newTestServer()
	rec := doRequest(e, http.MethodGet, "/fhir/CodeSystem/namaste/$lookup", "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	var out fhir.OperationOutcome
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatal(err)
	}
	if out.ResourceType != "OperationOutcome" || out.Issue[0].Code != fhir.IssueTypeRequired {
		t.Errorf("unexpected outcome: %+v", out)
	}
}

func TestFHIRTranslateGet(t *testing.T) {
	e := newTestServer()
	rec := doRequest(e, http.MethodGet, "/fhir/ConceptMap/$translate?code=AY-002&system=namaste", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	var params fhir.Parameters
	if err := json.Unmarshal(rec.Body.Bytes(), &params); err != nil {
		t.Fatal(err)
	}
	if params.Parameter[0].Name != "result" || params.Parameter[0].ValueBoolean == nil || !*params.Parameter[0].ValueBoolean {
		t.Errorf("result parameter missing or false: %+v", params.Parameter)
	}
	matches := 0
	for _, p := range params.Parameter {
		if p.Name == "match" {
			matches++
		}
	}
	if matches != 2 {
		t.Errorf("match count = %d, want 2", matches)
	}
}

func TestFHIRTranslatePostParameters(t *testing.T) {
	e := newTestServer()
	body := `{"resourceType":"Parameters","parameter":[
		{"name":"code","valueCode":"AY-001"},
		{"name":"system","valueString":"http://ayush.gov.in/fhir/CodeSystem/namaste-ayurveda"}]}`
	rec := doRequest(e, http.MethodPost, "/fhir/ConceptMap/$translate", body)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	var params fhir.Parameters
	if err := json.Unmarshal(rec.Body.Bytes(), &params); err != nil {
		t.Fatal(err)
	}
	var coding *fhir.Coding
	for _, p := range params.Parameter {
		if p.Name != "match" {
			continue
		}
		for _, part := range p.Part {
			if part.Name == "concept" {
				coding = part.ValueCoding
			}
		}
	}
	if coding == nil || coding.Code != "MG26" {
		t.Errorf("expected MG26 concept, got %+v", coding)
	}
}

func TestExpandValueSetEndpoint(t *testing.T) {
	e := newTestServer()
	rec := doRequest(e, http.MethodGet, "/fhir/ValueSet/$expand?filter=fever", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var vs ValueSet
	if err := json.Unmarshal(rec.Body.Bytes(), &vs); err != nil {
		t.Fatal(err)
	}
	if vs.Expansion.Total == 0 {
		t.Error("expansion should not be empty")
	}
	rec = doRequest(e, http.MethodGet, "/fhir/ValueSet/$expand", "")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("missing filter status = %d, want 400", rec.Code)
	}
}

func TestMappingsEndpointPagination(t *testing.T) {
	e := newTestServer()
	rec := doRequest(e, http.MethodGet, "/api/v1/mappings?limit=2", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var resp struct {
		Data    []MappingRow `json:"data"`
		Total   int          `json:"total"`
		HasMore bool         `json:"has_more"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if len(resp.Data) != 2 || resp.Total != 3 || !resp.HasMore {
		t.Errorf("unexpected page: data=%d total=%d has_more=%v", len(resp.Data), resp.Total, resp.HasMore)
	}
}
