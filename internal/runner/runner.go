// Package runner drives the model checker: it takes a scenario (an
// initial store state plus a planned set of concurrent client operations),
// enumerates every legal execution order of those operations in parallel,
// and reports the first order that leaves the store inconsistent, if any.
package runner

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"

	"mc2/internal/actor"
	"mc2/internal/checker"
	"mc2/internal/planner"
	"mc2/internal/store"
)

// Scenario describes one thing to check: Init seeds a baseline store by
// running a single client's operations against it (compiled via its own
// throwaway Planner and replayed in the only ordering a lone client has),
// and Plan registers the concurrent clients whose every interleaving
// against that baseline will be checked.
type Scenario struct {
	Name string
	Init func(c *planner.Client)
	Plan func(p *planner.Planner)
}

// Config controls how a Run is executed.
type Config struct {
	// Workers is the number of orderings checked concurrently. Defaults
	// to 4 if zero or negative.
	Workers int
}

// Failure describes the first ordering a Run found to leave the store
// inconsistent.
type Failure struct {
	Errors []string
	State  *store.Store
	Plan   []*planner.Act
	Step   int
}

// Report is the outcome of checking one Scenario.
type Report struct {
	Name    string
	Pass    bool
	Checked int
	Failure *Failure
}

const defaultWorkers = 4

// Run enumerates every ordering of scenario's planned Acts against its
// baseline store, checking consistency after every Act of every ordering.
// It stops as soon as any worker finds a failing ordering and returns a
// Report describing it; if ctx is cancelled first, Run returns ctx.Err().
func Run(ctx context.Context, cfg Config, scenario Scenario) (Report, error) {
	workers := cfg.Workers
	if workers <= 0 {
		workers = defaultWorkers
	}

	baseline := buildBaseline(scenario.Init)

	p := planner.New()
	scenario.Plan(p)
	clientIDs := p.Clients()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	type indexedPlan struct {
		n    int
		acts []*planner.Act
	}
	plans := make(chan indexedPlan)

	go func() {
		defer close(plans)
		n := 0
		for ordering := range p.Orderings() {
			select {
			case plans <- indexedPlan{n: n, acts: ordering}:
				n++
			case <-ctx.Done():
				return
			}
		}
	}()

	var mu sync.Mutex
	checked := 0
	var failure *Failure

	g, gctx := errgroup.WithContext(ctx)
	for i := 0; i < workers; i++ {
		g.Go(func() error {
			for {
				select {
				case plan, ok := <-plans:
					if !ok {
						return nil
					}
					if f := checkOrdering(baseline, clientIDs, plan.acts); f != nil {
						mu.Lock()
						if failure == nil {
							failure = f
						}
						n := plan.n + 1
						if n > checked {
							checked = n
						}
						mu.Unlock()
						cancel()
						return nil
					}
					mu.Lock()
					n := plan.n + 1
					if n > checked {
						checked = n
					}
					mu.Unlock()
				case <-gctx.Done():
					return nil
				}
			}
		})
	}
	if err := g.Wait(); err != nil {
		return Report{}, err
	}
	if err := ctx.Err(); err != nil && failure == nil {
		return Report{}, err
	}

	return Report{
		Name:    scenario.Name,
		Pass:    failure == nil,
		Checked: checked,
		Failure: failure,
	}, nil
}

// buildBaseline runs init against a throwaway single-client plan and
// replays its one possible ordering onto a fresh Store.
func buildBaseline(init func(c *planner.Client)) *store.Store {
	p := planner.New()
	init(p.Client("tmp"))

	s := store.New()
	a := actor.New(s)

	for ordering := range p.Orderings() {
		for _, act := range ordering {
			dispatch(a, act)
		}
		break
	}
	return s
}

// checkOrdering replays acts, one per planned client actor, against a
// fresh clone of baseline, checking consistency after every act. It
// returns nil if the whole ordering leaves the store consistent, or a
// *Failure describing the first act that didn't.
func checkOrdering(baseline *store.Store, clientIDs []string, acts []*planner.Act) *Failure {
	s := baseline.Clone()

	actors := make(map[string]*actor.Actor, len(clientIDs))
	for _, id := range clientIDs {
		actors[id] = actor.New(s)
	}

	for i, act := range acts {
		dispatch(actors[act.ClientID], act)

		if err := checker.Check(s); err != nil {
			ce := err.(*checker.ConsistencyError)
			return &Failure{
				Errors: ce.Errors,
				State:  s.Clone(),
				Plan:   acts,
				Step:   i,
			}
		}
	}
	return nil
}

func dispatch(a *actor.Actor, act *planner.Act) {
	switch act.Kind {
	case planner.OpGet:
		a.Get(act.Path.String())
	case planner.OpPut:
		a.Put(act.Path.String(), act.Update)
	case planner.OpRm:
		a.Rm(act.Path.String())
	case planner.OpList:
		a.List(act.Path.String())
	case planner.OpLink:
		a.Link(act.Path.String(), act.Name)
	case planner.OpUnlink:
		a.Unlink(act.Path.String(), act.Name)
	}
}
