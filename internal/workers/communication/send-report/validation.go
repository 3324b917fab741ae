package sendreport

import "adinsight-workers/internal/common/validation"

func GetInputSchema() validation.JSONSchema {
	return validation.JSONSchema{
		Type:     "object",
		Required: []string{"recipientId", "reportType"},
		Properties: map[string]validation.Property{
			"recipientId": {
				Type:        "string",
				Description: "Identifier of the user receiving the report",
				MinLength:   intPtr(1),
				MaxLength:   intPtr(64),
			},
			"reportType": {
				Type:        "string",
				Description: "Report template to deliver",
				Enum:        []string{TypeScheduledReport, TypePerformanceAlert},
			},
			"accountId": {
				Type:        "string",
				Description: "Ad account the report covers",
				MaxLength:   intPtr(64),
			},
			"priority": {
				Type:        "string",
				Description: "Delivery priority (high, normal, low)",
			},
			"reportData": {
				Type:        "object",
				Description: "Values substituted into the report template",
			},
		},
		// Job variables share process scope, so upstream workers' outputs
		// ride along with ours and must not fail validation.
		AdditionalProperties: true,
	}
}

func GetOutputSchema() validation.JSONSchema {
	return validation.JSONSchema{
		Type: "object",
		Properties: map[string]validation.Property{
			"reportId": {
				Type:        "string",
				Description: "Unique identifier for this delivery",
			},
			"status": {
				Type:        "string",
				Description: "Delivery status (sent, failed, disabled)",
			},
			"channels": {
				Type:        "array",
				Description: "Channels the report was delivered on",
			},
			"sentAt": {
				Type:        "string",
				Description: "Timestamp of the delivery attempt",
			},
		},
		AdditionalProperties: false,
	}
}

func intPtr(i int) *int {
	return &i
}
