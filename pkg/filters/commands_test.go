package filters

import (
	"context"
	"errors"
	"testing"

	"github.com/synaptica-ai/trialscope/pkg/common/kafka"
	"github.com/synaptica-ai/trialscope/pkg/common/models"
	"github.com/synaptica-ai/trialscope/pkg/trials"
)

func TestCommandHandlerSetAndReset(t *testing.T) {
	state := NewState()
	handle := CommandHandler(state)

	err := handle(context.Background(), models.Event{
		ID:   "1",
		Type: CommandSet,
		Data: map[string]interface{}{
			"data_source": "eu",
			"condition":   "asthma",
			"start_date":  "2021-01-01",
		},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	current := state.Current()
	if current.Source != trials.SelectEU || current.Condition != "asthma" || current.DateRange.Start == nil {
		t.Fatalf("unexpected criteria %+v", current)
	}

	if err := handle(context.Background(), models.Event{ID: "2", Type: CommandReset}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !state.Current().IsDefault() {
		t.Fatalf("expected default criteria, got %+v", state.Current())
	}
}

func TestCommandHandlerSkipsInvalidCommands(t *testing.T) {
	state := NewState()
	handle := CommandHandler(state)

	cases := []models.Event{
		{Type: CommandSet, Data: map[string]interface{}{"data_source": "ASIA"}},
		{Type: CommandSet, Data: map[string]interface{}{"start_date": "yesterday"}},
		{Type: CommandSet, Data: map[string]interface{}{"condition": 42}},
		{Type: "unknown"},
	}
	for _, event := range cases {
		if err := handle(context.Background(), event); !errors.Is(err, kafka.ErrSkipEvent) {
			t.Fatalf("expected ErrSkipEvent for %+v, got %v", event, err)
		}
	}
	if !state.Current().IsDefault() {
		t.Fatalf("invalid commands must not change state, got %+v", state.Current())
	}
}
