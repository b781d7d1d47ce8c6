// Package network holds the interface resources and the platform providers
// behind them.
package network

import (
	"fmt"
	"strings"

	"github.com/hashicorp/go-multierror"

	"github.com/melih-ucgun/ifprop/internal/core"
	"github.com/melih-ucgun/ifprop/internal/ipprop"
)

func init() {
	core.RegisterResource(ipprop.ResourceType, func(name string, params map[string]interface{}, ctx *core.SystemContext) (core.Resource, error) {
		return NewIPPropertiesAdapter(name, params), nil
	})
	core.RegisterResource(ipprop.InterfaceType, func(name string, params map[string]interface{}, ctx *core.SystemContext) (core.Resource, error) {
		return NewInterfaceAdapter(name, params), nil
	})
}

// IPPropertiesAdapter keeps the protocol properties of one IP interface at
// their desired values.
type IPPropertiesAdapter struct {
	core.BaseResource
	State        string
	Properties   interface{} // raw "properties" param
	TemporaryRaw interface{}

	// Set by Validate.
	Interface string
	Desired   ipprop.PropertyMap
	Temporary bool

	// Provider overrides the OS based choice.
	Provider PropertyProvider

	validated bool
	previous  ipprop.PropertyMap
}

func NewIPPropertiesAdapter(name string, params map[string]interface{}) *IPPropertiesAdapter {
	state, _ := params["state"].(string)

	return &IPPropertiesAdapter{
		BaseResource: core.BaseResource{Name: name, Type: ipprop.ResourceType},
		State:        state,
		Properties:   params["properties"],
		TemporaryRaw: params["temporary"],
	}
}

// Validate checks ensure, identity, temporary and properties, in that order,
// and normalizes the properties. After a legacy "net0/ipv4" identity the
// resource name is the bare interface and Properties holds the canonical map,
// so validating again gives the same result.
func (r *IPPropertiesAdapter) Validate() error {
	if _, err := ipprop.ParseEnsure(r.State); err != nil {
		return err
	}
	if err := ipprop.Validate(r.Name); err != nil {
		return err
	}

	temporary, err := ipprop.ParseTemporary(r.TemporaryRaw)
	if err != nil {
		return err
	}

	value, ok := ipprop.AsParams(r.Properties)
	if !ok {
		return fmt.Errorf("%w: properties must be a mapping, got %T", ipprop.ErrInvalidValue, r.Properties)
	}
	identity, desired, err := ipprop.Normalize(r.Name, value)
	if err != nil {
		return err
	}

	r.Name = identity
	r.Properties = desired.Params()
	r.Interface, _ = ipprop.SplitIdentity(identity)
	r.Desired = desired
	r.Temporary = temporary
	r.validated = true
	return nil
}

func (r *IPPropertiesAdapter) ensureValid() error {
	if r.validated {
		return nil
	}
	return r.Validate()
}

func (r *IPPropertiesAdapter) provider(ctx *core.SystemContext) (PropertyProvider, error) {
	if r.Provider != nil {
		return r.Provider, nil
	}
	return GetPropertyProvider(ctx)
}

// drift fetches the observed state and returns the provider with it.
func (r *IPPropertiesAdapter) drift(ctx *core.SystemContext) (PropertyProvider, ipprop.PropertyMap, error) {
	if err := r.ensureValid(); err != nil {
		return nil, nil, err
	}
	provider, err := r.provider(ctx)
	if err != nil {
		return nil, nil, err
	}
	observed, err := provider.Fetch(ctx, r.Interface)
	if err != nil {
		return nil, nil, err
	}
	return provider, observed, nil
}

// Check reports whether any desired property is missing or different.
func (r *IPPropertiesAdapter) Check(ctx *core.SystemContext) (bool, error) {
	provider, observed, err := r.drift(ctx)
	if err != nil {
		return false, err
	}
	return !ipprop.InSync(r.Desired, observed, provider.Match), nil
}

func (r *IPPropertiesAdapter) Apply(ctx *core.SystemContext) (core.Result, error) {
	provider, observed, err := r.drift(ctx)
	if err != nil {
		return core.Failure(err, "Check failed"), err
	}
	if ipprop.InSync(r.Desired, observed, provider.Match) {
		return core.SuccessNoChange(fmt.Sprintf("Interface %s properties are in sync", r.Interface)), nil
	}

	changes := ipprop.Diff(r.Desired, observed, provider.Match)
	result := core.Result{Changed: true, Changes: r.coreChanges(changes)}

	if ctx.DryRun {
		result.Message = fmt.Sprintf("[DryRun] Would set %s on %s", fields(changes), r.Interface)
		return result, nil
	}

	// Providers set one property at a time; a failure can leave earlier ones
	// applied, so they are put back before returning.
	r.previous = changes.Previous()
	if err := provider.Apply(ctx, r.Interface, changes.Desired(), r.Temporary); err != nil {
		if revertErr := r.Revert(ctx); revertErr != nil {
			err = multierror.Append(err, revertErr)
		}
		return core.Failure(err, "Apply failed"), err
	}

	result.Message = fmt.Sprintf("Set %s on %s", fields(changes), r.Interface)
	return result, nil
}

// Revert restores the values seen before the last Apply. Properties that had
// no value before cannot be restored and stay as applied.
func (r *IPPropertiesAdapter) Revert(ctx *core.SystemContext) error {
	if r.previous.Len() == 0 {
		return nil
	}
	provider, err := r.provider(ctx)
	if err != nil {
		return err
	}
	if err := provider.Apply(ctx, r.Interface, r.previous, r.Temporary); err != nil {
		return fmt.Errorf("revert %s: %w", r.Interface, err)
	}
	r.previous = nil
	return nil
}

// Diff lists every drifted property as "proto.prop: current -> desired".
func (r *IPPropertiesAdapter) Diff(ctx *core.SystemContext) ([]string, error) {
	provider, observed, err := r.drift(ctx)
	if err != nil {
		return nil, err
	}
	changes := ipprop.Diff(r.Desired, observed, provider.Match)
	lines := make([]string, 0, len(changes))
	for _, ch := range changes {
		lines = append(lines, ch.String())
	}
	return lines, nil
}

func (r *IPPropertiesAdapter) coreChanges(changes ipprop.Changes) []core.Change {
	out := make([]core.Change, 0, len(changes))
	for _, ch := range changes {
		out = append(out, core.Change{
			Target:    r.Interface,
			Field:     ch.Field(),
			From:      ch.Current.String(),
			To:        ch.Desired.String(),
			Absent:    ch.Missing,
			Temporary: r.Temporary,
		})
	}
	return out
}

func fields(changes ipprop.Changes) string {
	names := make([]string, 0, len(changes))
	for _, ch := range changes {
		names = append(names, ch.Field())
	}
	return strings.Join(names, ", ")
}
