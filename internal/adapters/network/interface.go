package network

import (
	"fmt"
	"strings"

	"github.com/melih-ucgun/ifprop/internal/core"
	"github.com/melih-ucgun/ifprop/internal/ipprop"
	"github.com/melih-ucgun/ifprop/internal/utils"
)

// InterfaceAdapter makes sure an IP interface exists (or does not). Property
// resources naming the interface are ordered after it.
type InterfaceAdapter struct {
	core.BaseResource
	State    string
	Provider PropertyProvider

	// ActionPerformed is "created" or "deleted" after a changing Apply.
	ActionPerformed string
}

func NewInterfaceAdapter(name string, params map[string]interface{}) *InterfaceAdapter {
	state, _ := params["state"].(string)
	if state == "" {
		state = string(ipprop.EnsurePresent)
	}

	return &InterfaceAdapter{
		BaseResource: core.BaseResource{Name: name, Type: ipprop.InterfaceType},
		State:        state,
	}
}

func (r *InterfaceAdapter) Validate() error {
	if !utils.IsOneOf(r.State, string(ipprop.EnsurePresent), string(ipprop.EnsureAbsent)) {
		return fmt.Errorf("%w %q: want present or absent", ipprop.ErrInvalidEnsure, r.State)
	}
	if strings.Contains(r.Name, "/") {
		return fmt.Errorf("%w: %q: an interface name has no protocol", ipprop.ErrInvalidFormat, r.Name)
	}
	return ipprop.Validate(r.Name)
}

func (r *InterfaceAdapter) provider(ctx *core.SystemContext) (PropertyProvider, error) {
	if r.Provider != nil {
		return r.Provider, nil
	}
	return GetPropertyProvider(ctx)
}

func (r *InterfaceAdapter) Check(ctx *core.SystemContext) (bool, error) {
	provider, err := r.provider(ctx)
	if err != nil {
		return false, err
	}
	exists, err := provider.InterfaceExists(ctx, r.Name)
	if err != nil {
		return false, err
	}
	if r.State == string(ipprop.EnsureAbsent) {
		return exists, nil
	}
	return !exists, nil
}

func (r *InterfaceAdapter) Apply(ctx *core.SystemContext) (core.Result, error) {
	needs, err := r.Check(ctx)
	if err != nil {
		return core.Failure(err, "Check failed"), err
	}
	if !needs {
		return core.SuccessNoChange(fmt.Sprintf("Interface %s is %s", r.Name, r.State)), nil
	}

	from, to := "absent", "present"
	if r.State == string(ipprop.EnsureAbsent) {
		from, to = to, from
	}
	result := core.Result{
		Changed: true,
		Changes: []core.Change{{Target: r.Name, Field: "interface", From: from, To: to}},
	}

	if ctx.DryRun {
		result.Message = fmt.Sprintf("[DryRun] Would make interface %s %s", r.Name, r.State)
		return result, nil
	}

	provider, err := r.provider(ctx)
	if err != nil {
		return core.Failure(err, "Apply failed"), err
	}
	if r.State == string(ipprop.EnsureAbsent) {
		err = provider.DeleteInterface(ctx, r.Name)
		r.ActionPerformed = "deleted"
	} else {
		err = provider.CreateInterface(ctx, r.Name)
		r.ActionPerformed = "created"
	}
	if err != nil {
		r.ActionPerformed = ""
		return core.Failure(err, "Apply failed"), err
	}

	result.Message = fmt.Sprintf("Interface %s %s", r.Name, r.ActionPerformed)
	return result, nil
}

// Revert undoes the last create or delete.
func (r *InterfaceAdapter) Revert(ctx *core.SystemContext) error {
	if r.ActionPerformed == "" {
		return nil
	}
	provider, err := r.provider(ctx)
	if err != nil {
		return err
	}
	switch r.ActionPerformed {
	case "created":
		err = provider.DeleteInterface(ctx, r.Name)
	case "deleted":
		err = provider.CreateInterface(ctx, r.Name)
	}
	if err != nil {
		return err
	}
	r.ActionPerformed = ""
	return nil
}
