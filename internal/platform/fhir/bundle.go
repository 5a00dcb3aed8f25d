package fhir

import (
	"encoding/json"
	"time"
)

// Bundle represents a FHIR Bundle resource.
type Bundle struct {
	ResourceType string        `json:"resourceType"`
	ID           string        `json:"id,omitempty"`
	Type         string        `json:"type"`
	Total        *int          `json:"total,omitempty"`
	Timestamp    *time.Time    `json:"timestamp,omitempty"`
	Entry        []BundleEntry `json:"entry,omitempty"`
}

type BundleEntry struct {
	FullURL  string          `json:"fullUrl,omitempty"`
	Resource json.RawMessage `json:"resource,omitempty"`
	Request  *BundleRequest  `json:"request,omitempty"`
	Response *BundleResponse `json:"response,omitempty"`
}

type BundleRequest struct {
	Method string `json:"method"`
	URL    string `json:"url"`
}

type BundleResponse struct {
	Status   string      `json:"status"`
	Location string      `json:"location,omitempty"`
	Outcome  interface{} `json:"outcome,omitempty"`
}

// NewSearchBundle creates a searchset Bundle from a list of resources.
func NewSearchBundle(resources []interface{}, total int) *Bundle {
	now := time.Now().UTC()
	entries := make([]BundleEntry, len(resources))
	for i, r := range resources {
		raw, _ := json.Marshal(r)
		entries[i] = BundleEntry{Resource: raw}
	}
	return &Bundle{
		ResourceType: "Bundle",
		Type:         "searchset",
		Total:        &total,
		Timestamp:    &now,
		Entry:        entries,
	}
}

// NewTransactionResponse creates a transaction-response Bundle from entry
// outcomes. Each entry carries its own HTTP-style status; a failed entry does
// not affect its siblings.
func NewTransactionResponse(entries []BundleEntry) *Bundle {
	now := time.Now().UTC()
	return &Bundle{
		ResourceType: "Bundle",
		Type:         "transaction-response",
		Timestamp:    &now,
		Entry:        entries,
	}
}

// CreatedEntry builds a transaction-response entry for a created resource.
func CreatedEntry(location string) BundleEntry {
	return BundleEntry{
		Response: &BundleResponse{
			Status:   "201 Created",
			Location: location,
		},
	}
}

// FailedEntry builds a transaction-response entry for a rejected resource.
func FailedEntry(diagnostics string) BundleEntry {
	return BundleEntry{
		Response: &BundleResponse{
			Status:  "400 Bad Request",
			Outcome: ErrorOutcome(diagnostics),
		},
	}
}
