package strategies

import (
	"fmt"
	"strings"

	"github.com/tradebench/barsim/eventhandlers/strategies/base"
	"github.com/tradebench/barsim/eventhandlers/strategies/buyandhold"
	"github.com/tradebench/barsim/eventhandlers/strategies/rsi"
	"github.com/tradebench/barsim/eventhandlers/strategies/smacrossover"
)

// LoadStrategyByName returns a new instance of the named strategy with its
// defaults set
func LoadStrategyByName(name string) (Handler, error) {
	for _, s := range GetStrategies() {
		if strings.EqualFold(name, s.Name()) {
			s.SetDefaults()
			return s, nil
		}
	}
	return nil, fmt.Errorf("strategy '%v' %w", name, base.ErrStrategyNotFound)
}

// GetStrategies returns a new instance of every supported strategy
func GetStrategies() []Handler {
	return []Handler{
		new(buyandhold.Strategy),
		new(smacrossover.Strategy),
		new(rsi.Strategy),
	}
}
