package optim

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/san-kum/chladni/internal/particle"
)

var ErrUnknownParam = errors.New("optim: unknown parameter")

// Objective scores one parameter assignment.
type Objective func(ctx context.Context, params map[string]float64) (float64, error)

// Trial is one evaluated grid point.
type Trial struct {
	Params map[string]float64
	Score  float64
}

// GridSearch evaluates every combination of the given parameter values.
type GridSearch struct {
	paramNames []string
	ranges     [][]float64
	maximize   bool
}

func NewGridSearch(params []string, ranges [][]float64, maximize bool) *GridSearch {
	return &GridSearch{paramNames: params, ranges: ranges, maximize: maximize}
}

// Size is the number of grid points.
func (g *GridSearch) Size() int {
	if len(g.ranges) == 0 {
		return 0
	}
	n := 1
	for _, r := range g.ranges {
		n *= len(r)
	}
	return n
}

// Search runs objective on every grid point and returns the trials sorted
// best first. It stops at the first error, including ctx cancellation.
func (g *GridSearch) Search(ctx context.Context, objective Objective) ([]Trial, error) {
	trials := make([]Trial, 0, g.Size())
	if err := g.searchRecursive(ctx, 0, map[string]float64{}, objective, &trials); err != nil {
		return nil, err
	}

	sort.SliceStable(trials, func(i, j int) bool {
		if g.maximize {
			return trials[i].Score > trials[j].Score
		}
		return trials[i].Score < trials[j].Score
	})
	return trials, nil
}

func (g *GridSearch) searchRecursive(
	ctx context.Context,
	depth int,
	current map[string]float64,
	objective Objective,
	trials *[]Trial,
) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if depth == len(g.paramNames) {
		score, err := objective(ctx, current)
		if err != nil {
			return err
		}
		*trials = append(*trials, Trial{Params: current, Score: score})
		return nil
	}

	paramName := g.paramNames[depth]
	for _, val := range g.ranges[depth] {
		newParams := make(map[string]float64, len(current)+1)
		for k, v := range current {
			newParams[k] = v
		}
		newParams[paramName] = val

		if err := g.searchRecursive(ctx, depth+1, newParams, objective, trials); err != nil {
			return err
		}
	}
	return nil
}

// ParamNames lists the physics constants Apply understands.
var ParamNames = []string{"repulsion", "jitter", "settle_threshold", "settled_damping", "free_damping", "bounce"}

// Apply sets the named physics constant on p. Non-finite values are rejected.
func Apply(p *particle.Params, name string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return fmt.Errorf("%w: %s %v", particle.ErrInvalidParams, name, v)
	}
	switch name {
	case "repulsion":
		p.Repulsion = v
	case "jitter":
		p.Jitter = v
	case "settle_threshold":
		p.SettleThreshold = v
	case "settled_damping":
		p.SettledDamping = v
	case "free_damping":
		p.FreeDamping = v
	case "bounce":
		p.Bounce = v
	default:
		return fmt.Errorf("%w: %s (available: %s)", ErrUnknownParam, name, strings.Join(ParamNames, ", "))
	}
	return nil
}

// ParseRange parses "name=v1,v2,..." into a parameter name and its values.
func ParseRange(s string) (string, []float64, error) {
	name, list, ok := strings.Cut(s, "=")
	if !ok || name == "" || list == "" {
		return "", nil, fmt.Errorf("optim: expected name=v1,v2,..., got %q", s)
	}
	if err := Apply(&particle.Params{}, name, 0); err != nil {
		return "", nil, err
	}

	parts := strings.Split(list, ",")
	values := make([]float64, 0, len(parts))
	for _, part := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil {
			return "", nil, fmt.Errorf("optim: %s: %w", name, err)
		}
		p := particle.DefaultParams()
		if err := Apply(&p, name, v); err != nil {
			return "", nil, err
		}
		if err := p.Validate(); err != nil {
			return "", nil, err
		}
		values = append(values, v)
	}
	return name, values, nil
}
