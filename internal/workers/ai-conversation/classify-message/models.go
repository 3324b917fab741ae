// internal/workers/ai-conversation/classify-message/models.go
package classifymessage

import "adinsight-workers/internal/models"

type Input struct {
	Role      string `json:"role"`
	Content   string `json:"content"`
	CreatedAt string `json:"createdAt,omitempty"`
}

type Output struct {
	Visualizations     []models.VisualizationDescriptor `json:"visualizations"`
	VisualizationCount int                              `json:"visualizationCount"`
	HasVisualizations  bool                             `json:"hasVisualizations"`
}
