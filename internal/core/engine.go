package core

import (
	"fmt"
	"sync"

	"github.com/hashicorp/go-multierror"
	"golang.org/x/sync/errgroup"
)

// StateUpdater interface'i, Engine'in state paketine doğrudan bağımlı olmamasını sağlar.
type StateUpdater interface {
	UpdateResource(resType, name, targetState, status string) error
}

// ConfigItem, motorun işleyeceği ham konfigürasyon parçasıdır.
type ConfigItem struct {
	ID     string
	Name   string
	Type   string
	State  string
	When   string
	Params map[string]interface{}
}

func (c ConfigItem) label() string {
	if c.ID != "" {
		return c.ID
	}
	return c.Type + ":" + c.Name
}

// ResourceCreator builds a resource for a config item.
type ResourceCreator func(resType, name string, params map[string]interface{}, ctx *SystemContext) (Resource, error)

// Outcome is what happened to one config item during a run.
type Outcome struct {
	Item    ConfigItem
	Result  Result
	Err     error
	Skipped bool
}

// Engine, kaynakları yöneten ana yapıdır.
type Engine struct {
	Context      *SystemContext
	StateUpdater StateUpdater // Opsiyonel: State yöneticisi
	// Concurrency caps the resources applied at once within a layer.
	// Zero means unlimited.
	Concurrency int

	AppliedHistory []Resource
	Outcomes       []Outcome

	mu sync.Mutex
}

// NewEngine yeni bir motor örneği oluşturur.
func NewEngine(ctx *SystemContext, updater StateUpdater) *Engine {
	return &Engine{
		Context:      ctx,
		StateUpdater: updater,
	}
}

// Validate builds and validates every item without touching the system.
// All failures are reported together.
func (e *Engine) Validate(items []ConfigItem, createFn ResourceCreator) error {
	var result *multierror.Error
	for _, item := range items {
		res, err := e.build(item, createFn)
		if err != nil {
			result = multierror.Append(result, fmt.Errorf("%s: %w", item.label(), err))
			continue
		}
		if err := res.Validate(); err != nil {
			result = multierror.Append(result, fmt.Errorf("%s: %w", item.label(), err))
		}
	}
	return result.ErrorOrNil()
}

// RunLayers validates the whole catalog first, then applies the layers in
// order. A single invalid resource blocks the run before anything changes.
func (e *Engine) RunLayers(layers [][]ConfigItem, createFn ResourceCreator) error {
	var all []ConfigItem
	for _, layer := range layers {
		all = append(all, layer...)
	}
	if err := e.Validate(all, createFn); err != nil {
		return fmt.Errorf("validation failed, nothing applied: %w", err)
	}

	for i, layer := range layers {
		e.Context.Log().Debug("processing layer", "layer", i+1, "resources", len(layer))
		if err := e.RunParallel(layer, createFn); err != nil {
			return err
		}
	}
	return nil
}

// RunParallel, verilen layer'daki konfigürasyon parçalarını paralel işler.
// On any failure the changes of this layer and of every earlier layer are
// reverted, newest first.
func (e *Engine) RunParallel(layer []ConfigItem, createFn ResourceCreator) error {
	var (
		g       errgroup.Group
		mu      sync.Mutex
		errs    *multierror.Error
		updated []Resource // Başarılı olanları takip et (Rollback için)
	)
	if e.Concurrency > 0 {
		g.SetLimit(e.Concurrency)
	}

	for _, item := range layer {
		item := item
		g.Go(func() error {
			res, outcome := e.applyItem(item, createFn)

			mu.Lock()
			defer mu.Unlock()
			if outcome.Err != nil {
				errs = multierror.Append(errs, fmt.Errorf("%s: %w", item.label(), outcome.Err))
			} else if outcome.Result.Changed && !e.Context.DryRun {
				updated = append(updated, res)
			}
			return nil
		})
	}
	_ = g.Wait()

	if errs != nil {
		if !e.Context.DryRun {
			e.Context.Log().Warn("error occurred, rolling back",
				"current_layer", len(updated), "previous_layers", len(e.AppliedHistory))
			e.rollback(updated)
			e.rollback(e.AppliedHistory)
			e.AppliedHistory = nil
		}
		return fmt.Errorf("encountered %d errors in parallel layer execution: %w", errs.Len(), errs)
	}

	// Revert sırası için LIFO olması gerekir; rollback listeyi tersten gezer.
	e.AppliedHistory = append(e.AppliedHistory, updated...)
	return nil
}

func (e *Engine) applyItem(item ConfigItem, createFn ResourceCreator) (Resource, Outcome) {
	outcome := Outcome{Item: item}
	log := e.Context.Log().With("id", item.label())

	ok, err := EvaluateCondition(item.When, e.Context)
	if err != nil {
		outcome.Err = err
		e.finish(outcome, "failed")
		return nil, outcome
	}
	if !ok {
		log.Debug("skipped by condition", "when", item.When)
		outcome.Skipped = true
		e.finish(outcome, "skipped")
		return nil, outcome
	}

	// 1. Kaynağı oluştur
	res, err := e.build(item, createFn)
	if err == nil {
		err = res.Validate()
	}
	if err != nil {
		outcome.Err = err
		e.finish(outcome, "failed")
		return nil, outcome
	}

	// 2. Kaynağı uygula
	result, err := res.Apply(e.Context)
	outcome.Result = result
	outcome.Err = err

	status := "success"
	switch {
	case err != nil:
		status = "failed"
		log.Error("apply failed", "error", err)
	case result.Changed:
		log.Info("applied", "message", result.Message)
	default:
		log.Debug("in sync", "message", result.Message)
	}

	e.finish(outcome, status)
	return res, outcome
}

// finish records the outcome and, outside dry runs, the resource state.
func (e *Engine) finish(outcome Outcome, status string) {
	e.mu.Lock()
	e.Outcomes = append(e.Outcomes, outcome)
	e.mu.Unlock()

	if e.Context.DryRun || e.StateUpdater == nil {
		return
	}
	item := outcome.Item
	if err := e.StateUpdater.UpdateResource(item.Type, item.Name, item.State, status); err != nil {
		e.Context.Log().Warn("failed to save state", "id", item.label(), "error", err)
	}
}

// rollback, verilen kaynak listesini ters sırada geri alır.
func (e *Engine) rollback(resources []Resource) {
	for i := len(resources) - 1; i >= 0; i-- {
		res := resources[i]
		rev, ok := res.(Revertable)
		if !ok {
			continue
		}

		log := e.Context.Log().With("resource", res.GetName())
		if err := rev.Revert(e.Context); err != nil {
			log.Error("revert failed", "error", err)
			continue
		}
		log.Info("reverted")

		if e.StateUpdater != nil {
			_ = e.StateUpdater.UpdateResource(res.GetType(), res.GetName(), "", "reverted")
		}
	}
}

// PlannedChange is one resource that would change.
type PlannedChange struct {
	ID      string
	Type    string
	Name    string
	Action  string
	Details []string
}

// PlanResult is the outcome of a Plan.
type PlanResult struct {
	Changes []PlannedChange
	InSync  []string
	Skipped []string
}

// Plan checks every item and reports what Apply would change. Nothing is
// modified. Failing items are reported together after all others ran.
func (e *Engine) Plan(items []ConfigItem, createFn ResourceCreator) (*PlanResult, error) {
	plan := &PlanResult{}
	var errs *multierror.Error

	for _, item := range items {
		ok, err := EvaluateCondition(item.When, e.Context)
		if err != nil {
			errs = multierror.Append(errs, fmt.Errorf("%s: %w", item.label(), err))
			continue
		}
		if !ok {
			plan.Skipped = append(plan.Skipped, item.label())
			continue
		}

		res, err := e.build(item, createFn)
		if err == nil {
			err = res.Validate()
		}
		if err != nil {
			errs = multierror.Append(errs, fmt.Errorf("%s: %w", item.label(), err))
			continue
		}

		needs, err := res.Check(e.Context)
		if err != nil {
			errs = multierror.Append(errs, fmt.Errorf("%s: %w", item.label(), err))
			continue
		}
		if !needs {
			plan.InSync = append(plan.InSync, item.label())
			continue
		}

		change := PlannedChange{
			ID:     item.label(),
			Type:   res.GetType(),
			Name:   res.GetName(),
			Action: "apply",
		}
		if differ, ok := res.(Differ); ok {
			details, err := differ.Diff(e.Context)
			if err != nil {
				errs = multierror.Append(errs, fmt.Errorf("%s: %w", item.label(), err))
				continue
			}
			change.Details = details
		}
		plan.Changes = append(plan.Changes, change)
	}

	return plan, errs.ErrorOrNil()
}

// build renders the item params against the system context and creates the
// resource.
func (e *Engine) build(item ConfigItem, createFn ResourceCreator) (Resource, error) {
	params, err := RenderParams(withState(item), e.Context)
	if err != nil {
		return nil, err
	}
	return createFn(item.Type, item.Name, params, e.Context)
}

// withState copies the item params and adds the state, so resources see a
// single params map and the config is never modified.
func withState(item ConfigItem) map[string]interface{} {
	params := make(map[string]interface{}, len(item.Params)+1)
	for k, v := range item.Params {
		params[k] = v
	}
	params["state"] = item.State
	return params
}
