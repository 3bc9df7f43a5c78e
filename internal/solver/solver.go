package solver

import (
	"context"
	"errors"
	"fmt"
)

// ErrSolver marks an error returned by a Solver implementation as a
// locally recoverable solve failure (spec §7): the caller should log it,
// skip that one root combo, and continue the run rather than abort.
var ErrSolver = errors.New("solver error")

// Termination is the outcome of one solve call.
type Termination int

const (
	Optimal Termination = iota
	Infeasible
	Unbounded
)

// Result is what a Solver returns for one phase of one model.
type Result struct {
	Termination Termination
	Value       int
	Assignment  *Outcome
}

// Solver is the pluggable 0/1 ILP port described in spec §6. Any solver
// with optimality certification can sit behind it; AddExclusion lets the
// enumeration loop add cuts incrementally between solves without
// rebuilding the model from scratch.
type Solver interface {
	// SolveCombo runs the lexicographic two-phase solve for m's target
	// combo and returns one Pareto-optimal assignment, or Infeasible once
	// every such assignment has already been excluded.
	SolveCombo(ctx context.Context, m *Model) (Result, error)
}

// EnumerateAll repeatedly solves m, accumulating every Pareto-optimal
// assignment by adding an exclusion cut on the chosen card set after each
// acceptance, until the solver reports infeasibility (spec §4.E).
func EnumerateAll(ctx context.Context, sv Solver, m *Model) ([]*Outcome, error) {
	var outcomes []*Outcome
	for {
		select {
		case <-ctx.Done():
			return outcomes, ctx.Err()
		default:
		}
		res, err := sv.SolveCombo(ctx, m)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return outcomes, ctxErr
			}
			return outcomes, fmt.Errorf("%w: %w", ErrSolver, err)
		}
		if res.Termination != Optimal {
			return outcomes, nil
		}
		outcomes = append(outcomes, res.Assignment)
		m.AddExclusion(res.Assignment.CardIdx)
	}
}
