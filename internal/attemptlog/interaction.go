package attemptlog

import (
	"errors"
	"fmt"
	"time"

	"github.com/SAP-F-2025/exercise-service/internal/models"
)

var ErrUnknownInteraction = errors.New("unknown interaction type")

func NewInteraction(t models.InteractionType, target string, data map[string]any, at time.Time) (models.InteractionLogEntry, error) {
	if !isInteractionType(t) {
		return models.InteractionLogEntry{}, fmt.Errorf("%w %q", ErrUnknownInteraction, t)
	}
	return models.InteractionLogEntry{
		Type:      t,
		Target:    target,
		Timestamp: at,
		Data:      data,
	}, nil
}

func AppendInteraction(log []models.InteractionLogEntry, entry models.InteractionLogEntry) []models.InteractionLogEntry {
	out := make([]models.InteractionLogEntry, len(log), len(log)+1)
	copy(out, log)
	return append(out, entry)
}

// CountInteractions tallies entries by type. Every known type is present in
// the result, zero when unseen.
func CountInteractions(log []models.InteractionLogEntry) map[models.InteractionType]int {
	counts := make(map[models.InteractionType]int, len(models.InteractionTypes))
	for _, t := range models.InteractionTypes {
		counts[t] = 0
	}
	for _, entry := range log {
		counts[entry.Type]++
	}
	return counts
}

func isInteractionType(t models.InteractionType) bool {
	for _, known := range models.InteractionTypes {
		if t == known {
			return true
		}
	}
	return false
}
