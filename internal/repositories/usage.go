package repositories

import (
	"github.com/asifdigital/ai-marketing-functions/internal/domain"
)

// usageFields maps a usage record to the stored document shape.
// Both stores share it so the Firestore and Realtime Database entries match.
func usageFields(record domain.UsageRecord) map[string]interface{} {
	return map[string]interface{}{
		"requestId": record.RequestID,
		"endpoint":  record.Endpoint,
		"provider":  string(record.Provider),
		"model":     record.Model,
		"status":    record.Status,
		"degraded":  record.Degraded,
		"latencyMs": record.LatencyMs,
		"createdAt": record.CreatedAt.UnixMilli(),
	}
}
