package agent

import (
	"fmt"
	"io"

	"github.com/hailam/shogiplay/internal/config"
	"github.com/hailam/shogiplay/internal/engine"
)

// FromConfig builds an agent. Human agents read from in and prompt on out.
func FromConfig(cfg config.Agent, in io.Reader, out io.Writer) (Agent, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	eval, err := engine.EvaluatorByName(cfg.Evaluator)
	if err != nil {
		return nil, err
	}

	switch cfg.Kind {
	case config.KindSearch:
		return NewSearch(cfg.DisplayName(), eval, engine.SearchLimits{
			Depth:    cfg.Depth,
			MoveTime: cfg.MoveTimeDuration(),
		}), nil
	case config.KindRandom:
		return Random{Label: cfg.Name}, nil
	case config.KindGreedy:
		return NewGreedy(cfg.Name, eval), nil
	case config.KindHuman:
		return NewHuman(cfg.DisplayName(), in, out), nil
	}
	return nil, fmt.Errorf("unknown agent kind %q", cfg.Kind)
}
