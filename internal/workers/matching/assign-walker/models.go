// internal/workers/matching/assign-walker/models.go
package assignwalker

import "dogwalk-workers/internal/models"

type Input struct {
	RequestID string `json:"requestId"`
	WalkerID  string `json:"walkerId"`
}

type Output struct {
	RequestID string            `json:"requestId"`
	WalkerID  string            `json:"walkerId"`
	Status    models.WalkStatus `json:"status"`
}
