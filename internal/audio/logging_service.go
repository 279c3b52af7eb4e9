package audio

import (
	"context"

	"github.com/SAP-F-2025/exercise-service/internal/utils"
)

// LoggingService is the server-side backend: the device renders the speech,
// so the service only records the command and reports it as playing.
type LoggingService struct {
	logger utils.Logger
}

func NewLoggingService(logger utils.Logger) *LoggingService {
	return &LoggingService{logger: logger}
}

func (s *LoggingService) Play(ctx context.Context, ref string, onStatus func(Status)) error {
	s.logger.DebugContext(ctx, "Audio play", "ref", ref)
	onStatus(StatusPlaying)
	return nil
}

func (s *LoggingService) Stop(ctx context.Context) error {
	s.logger.DebugContext(ctx, "Audio stop")
	return nil
}
