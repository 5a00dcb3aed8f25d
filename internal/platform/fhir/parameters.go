package fhir

// Parameters represents a FHIR Parameters resource, used by the $translate
// and $lookup terminology operations.
type Parameters struct {
	ResourceType string      `json:"resourceType"`
	Parameter    []Parameter `json:"parameter"`
}

// Parameter is a single name/value pair (or nested part list) in a
// Parameters resource. Exactly one value field should be set.
type Parameter struct {
	Name         string      `json:"name"`
	ValueString  string      `json:"valueString,omitempty"`
	ValueCode    string      `json:"valueCode,omitempty"`
	ValueBoolean *bool       `json:"valueBoolean,omitempty"`
	ValueDecimal *float64    `json:"valueDecimal,omitempty"`
	ValueCoding  *Coding     `json:"valueCoding,omitempty"`
	Part         []Parameter `json:"part,omitempty"`
}

// NewParameters creates a Parameters resource from the given parameters.
func NewParameters(params ...Parameter) *Parameters {
	return &Parameters{ResourceType: "Parameters", Parameter: params}
}

// BoolParameter builds a valueBoolean parameter.
func BoolParameter(name string, v bool) Parameter {
	return Parameter{Name: name, ValueBoolean: &v}
}

// DecimalParameter builds a valueDecimal parameter.
func DecimalParameter(name string, v float64) Parameter {
	return Parameter{Name: name, ValueDecimal: &v}
}

// StringParameter builds a valueString parameter.
func StringParameter(name, v string) Parameter {
	return Parameter{Name: name, ValueString: v}
}
