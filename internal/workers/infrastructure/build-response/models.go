// internal/workers/infrastructure/build-response/models.go
package buildresponse

import "adinsight-workers/internal/models"

type Input struct {
	TemplateId string                 `json:"templateId"`
	RequestId  string                 `json:"requestId"`
	Data       map[string]interface{} `json:"data"`
	Metadata   map[string]interface{} `json:"metadata,omitempty"`

	// Descriptors produced by classify-message upstream; passed through
	// into the envelope untouched so the renderer receives them verbatim.
	Visualizations []models.VisualizationDescriptor `json:"visualizations,omitempty"`
}

type Output struct {
	Response ResponsePayload `json:"response"`
}

type ResponsePayload struct {
	RequestId      string                           `json:"requestId"`
	Status         string                           `json:"status"` // "success" or "error"
	Data           map[string]interface{}           `json:"data"`
	Visualizations []models.VisualizationDescriptor `json:"visualizations,omitempty"`
	Metadata       ResponseMetadata                 `json:"metadata"`
}

type ResponseMetadata struct {
	Timestamp string `json:"timestamp"` // ISO 8601
	Version   string `json:"version"`
}

type TemplateDefinition struct {
	ID       string                 `json:"id"`
	Type     string                 `json:"type"`     // chat-analysis, report-summary, etc.
	Schema   map[string]interface{} `json:"schema"`   // JSON Schema for validation
	Template map[string]interface{} `json:"template"` // Base structure with placeholders
	Version  string                 `json:"version"`
}
