package filters

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/synaptica-ai/trialscope/pkg/common/kafka"
	"github.com/synaptica-ai/trialscope/pkg/common/logger"
	"github.com/synaptica-ai/trialscope/pkg/common/models"
)

const (
	CommandSet   = "filters.set"
	CommandReset = "filters.reset"
)

// CommandHandler applies filter commands read from the event bus to state.
// A filters.set event carries a Request in its data.
func CommandHandler(state *State) kafka.EventHandler {
	return func(ctx context.Context, event models.Event) error {
		switch event.Type {
		case CommandReset:
			state.Reset()
		case CommandSet:
			req, err := requestFromData(event.Data)
			if err != nil {
				return fmt.Errorf("%w: %v", kafka.ErrSkipEvent, err)
			}
			criteria, err := req.ToCriteria()
			if err != nil {
				return fmt.Errorf("%w: %v", kafka.ErrSkipEvent, err)
			}
			state.Replace(criteria)
		default:
			return fmt.Errorf("%w: unsupported event type %q", kafka.ErrSkipEvent, event.Type)
		}

		logger.WithFields(map[string]interface{}{
			"event_id":   event.ID,
			"event_type": event.Type,
		}).Info("Applied filter command")
		return nil
	}
}

func requestFromData(data map[string]interface{}) (Request, error) {
	var req Request
	raw, err := json.Marshal(data)
	if err != nil {
		return req, err
	}
	if err := json.Unmarshal(raw, &req); err != nil {
		return req, fmt.Errorf("invalid filter payload: %w", err)
	}
	return req, nil
}
