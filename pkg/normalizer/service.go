package normalizer

import (
	"context"

	"github.com/synaptica-ai/trialscope/pkg/common/logger"
	"github.com/synaptica-ai/trialscope/pkg/sources"
	"github.com/synaptica-ai/trialscope/pkg/tabular"
	"github.com/synaptica-ai/trialscope/pkg/trials"
)

type Service struct {
	transformer *Transformer
}

func NewService(transformer *Transformer) *Service {
	return &Service{transformer: transformer}
}

// Ingest retrieves and parses src, then builds canonical trials for source.
// The only error it returns is a retrieval failure.
func (s *Service) Ingest(ctx context.Context, source trials.Source, src sources.Source) ([]trials.Trial, error) {
	rows, err := tabular.ParseSource(ctx, src)
	if err != nil {
		logger.Log.WithError(err).WithField("source", string(source)).Error("failed to retrieve dataset")
		return nil, err
	}

	built := s.transformer.Transform(source, rows)
	logger.Log.WithFields(map[string]interface{}{
		"source": string(source),
		"rows":   len(rows),
		"trials": len(built),
	}).Info("Normalized trial records")
	return built, nil
}
