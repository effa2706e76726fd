package conversions

// CreateConversionRequest represents a request to run a conversion
type CreateConversionRequest struct {
	Force bool `json:"force"`
}

// ListConversionsResponse wraps a page of conversions
type ListConversionsResponse struct {
	Conversions interface{} `json:"conversions"`
}
