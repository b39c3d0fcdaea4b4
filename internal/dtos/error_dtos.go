package dtos

// ValidationErrorDetail gives the client a per-field breakdown of a
// failed payload validation.
type ValidationErrorDetail struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
}
