package network

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/melih-ucgun/ifprop/internal/core"
	"github.com/melih-ucgun/ifprop/internal/ipprop"
)

func TestIPPropertiesAdapter_Validate(t *testing.T) {
	tests := []struct {
		name    string
		id      string
		params  map[string]interface{}
		wantErr error
		wantID  string
	}{
		{
			name:   "canonical",
			id:     "net0",
			params: map[string]interface{}{"properties": map[string]interface{}{"ipv4": map[string]interface{}{"mtu": 1500}}},
			wantID: "net0",
		},
		{
			name:   "legacy is re-keyed",
			id:     "net0/ipv6",
			params: map[string]interface{}{"properties": map[string]interface{}{"mtu": "1500"}, "temporary": "true"},
			wantID: "net0",
		},
		{
			name:    "absent is checked before identity",
			id:      "BAD",
			params:  map[string]interface{}{"state": "absent"},
			wantErr: ipprop.ErrUnsupportedEnsure,
		},
		{
			name:    "bad identity",
			id:      "net",
			params:  map[string]interface{}{"properties": map[string]interface{}{}},
			wantErr: ipprop.ErrInvalidFormat,
		},
		{
			name:    "bad temporary",
			id:      "net0",
			params:  map[string]interface{}{"temporary": "yes"},
			wantErr: ipprop.ErrInvalidTemporary,
		},
		{
			name:    "flat properties without protocol",
			id:      "net0",
			params:  map[string]interface{}{"properties": map[string]interface{}{"mtu": "1500"}},
			wantErr: ipprop.ErrMissingProtocol,
		},
		{
			name:    "properties not a map",
			id:      "net0",
			params:  map[string]interface{}{"properties": []interface{}{"mtu"}},
			wantErr: ipprop.ErrInvalidValue,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewIPPropertiesAdapter(tt.id, tt.params)
			err := r.Validate()
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantID, r.GetName())
			assert.Equal(t, tt.wantID, r.Interface)

			desired := r.Desired
			require.NoError(t, r.Validate(), "second validate")
			assert.Equal(t, tt.wantID, r.GetName())
			assert.Equal(t, desired, r.Desired)
		})
	}
}

func TestIPPropertiesAdapter_CheckAndApply(t *testing.T) {
	ctx, mock := illumosContext(t)
	mock.AddResponse(showNet0, net0Props)
	mock.AddResponse("ipadm set-ifprop -p mtu=1776 -m ipv4 net0", "")
	mock.AddResponse("ipadm set-ifprop -p mtu=1500 -m ipv4 net0", "")

	r := NewIPPropertiesAdapter("net0", map[string]interface{}{
		"properties": map[string]interface{}{
			"ipv4": map[string]interface{}{"mtu": "1776", "forwarding": "OFF"},
		},
	})
	require.NoError(t, r.Validate())

	needs, err := r.Check(ctx)
	require.NoError(t, err)
	assert.True(t, needs)

	diff, err := r.Diff(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"ipv4.mtu: 1500 -> 1776"}, diff, "forwarding matches case-insensitively")

	result, err := r.Apply(ctx)
	require.NoError(t, err)
	assert.True(t, result.Changed)
	assert.Equal(t, []core.Change{{Target: "net0", Field: "ipv4.mtu", From: "1500", To: "1776"}}, result.Changes)
	assert.True(t, mock.Called("ipadm set-ifprop -p mtu=1776 -m ipv4 net0"))

	require.NoError(t, r.Revert(ctx))
	assert.True(t, mock.Called("ipadm set-ifprop -p mtu=1500 -m ipv4 net0"))
}

func TestIPPropertiesAdapter_InSync(t *testing.T) {
	ctx, mock := illumosContext(t)
	mock.AddResponse(showNet0, net0Props)

	r := NewIPPropertiesAdapter("net0/ipv4", map[string]interface{}{
		"properties": map[string]interface{}{"mtu": 1500},
	})
	require.NoError(t, r.Validate())

	result, err := r.Apply(ctx)
	require.NoError(t, err)
	assert.False(t, result.Changed)
	assert.Equal(t, 0, mock.CalledWithPrefix("ipadm set-ifprop"))

	require.NoError(t, r.Revert(ctx), "nothing to revert")
}

func TestIPPropertiesAdapter_MissingProperty(t *testing.T) {
	ctx, mock := illumosContext(t)
	mock.AddResponse(showNet0, net0Props)
	mock.AddResponse("ipadm set-ifprop -t -p hoplimit=64 -m ipv6 net0", "")

	r := NewIPPropertiesAdapter("net0", map[string]interface{}{
		"properties": map[string]interface{}{"ipv6": map[string]interface{}{"hoplimit": 64}},
		"temporary":  true,
	})
	require.NoError(t, r.Validate())

	result, err := r.Apply(ctx)
	require.NoError(t, err)
	require.Len(t, result.Changes, 1)
	assert.True(t, result.Changes[0].Absent)
	assert.True(t, result.Changes[0].Temporary)

	// an absent value cannot be restored
	require.NoError(t, r.Revert(ctx))
	assert.Equal(t, 1, mock.CalledWithPrefix("ipadm set-ifprop"))
}

func TestIPPropertiesAdapter_DryRun(t *testing.T) {
	ctx, mock := illumosContext(t)
	ctx.DryRun = true
	mock.AddResponse(showNet0, net0Props)

	r := NewIPPropertiesAdapter("net0", map[string]interface{}{
		"properties": map[string]interface{}{"ipv6": map[string]interface{}{"mtu": 9000}},
	})
	require.NoError(t, r.Validate())

	result, err := r.Apply(ctx)
	require.NoError(t, err)
	assert.True(t, result.Changed)
	assert.Contains(t, result.Message, "[DryRun]")
	assert.Equal(t, 0, mock.CalledWithPrefix("ipadm set-ifprop"))
}

func TestIPPropertiesAdapter_ApplyFailure(t *testing.T) {
	ctx, mock := illumosContext(t)
	mock.AddResponse(showNet0, net0Props)
	mock.AddError("ipadm set-ifprop -p mtu=99999 -m ipv4 net0", "ipadm: Invalid argument provided", errors.New("exit status 1"))
	mock.AddResponse("ipadm set-ifprop -p mtu=1500 -m ipv4 net0", "")

	r := NewIPPropertiesAdapter("net0", map[string]interface{}{
		"properties": map[string]interface{}{"ipv4": map[string]interface{}{"mtu": 99999}},
	})
	require.NoError(t, r.Validate())

	_, err := r.Apply(ctx)
	assert.ErrorContains(t, err, "Invalid argument")
	assert.Equal(t, []string{
		showNet0,
		"ipadm set-ifprop -p mtu=99999 -m ipv4 net0",
		"ipadm set-ifprop -p mtu=1500 -m ipv4 net0",
	}, mock.Calls())
}

func TestIPPropertiesAdapter_PartialApplyIsReverted(t *testing.T) {
	ctx, mock := illumosContext(t)
	mock.AddResponse(showNet0, net0Props)
	mock.AddResponse("ipadm set-ifprop -p forwarding=on -m ipv4 net0", "")
	mock.AddError("ipadm set-ifprop -p mtu=9000 -m ipv4 net0", "ipadm: Invalid argument provided", errors.New("exit status 1"))
	mock.AddResponse("ipadm set-ifprop -p forwarding=off -m ipv4 net0", "")
	mock.AddResponse("ipadm set-ifprop -p mtu=1500 -m ipv4 net0", "")

	r := NewIPPropertiesAdapter("net0", map[string]interface{}{
		"properties": map[string]interface{}{
			"ipv4": map[string]interface{}{"forwarding": "on", "mtu": 9000},
		},
	})
	require.NoError(t, r.Validate())

	result, err := r.Apply(ctx)
	require.Error(t, err)
	assert.ErrorContains(t, err, "mtu")
	assert.Equal(t, err, result.Err)

	assert.Equal(t, []string{
		showNet0,
		"ipadm set-ifprop -p forwarding=on -m ipv4 net0",
		"ipadm set-ifprop -p mtu=9000 -m ipv4 net0",
		"ipadm set-ifprop -p forwarding=off -m ipv4 net0",
		"ipadm set-ifprop -p mtu=1500 -m ipv4 net0",
	}, mock.Calls())

	// already restored, a later rollback has nothing left to do
	require.NoError(t, r.Revert(ctx))
	assert.Equal(t, 2, mock.CalledWithPrefix("ipadm set-ifprop -p forwarding="))
}

func TestIPPropertiesAdapter_FailedRestoreIsReported(t *testing.T) {
	ctx, mock := illumosContext(t)
	mock.AddResponse(showNet0, net0Props)
	mock.AddError("ipadm set-ifprop -p mtu=9000 -m ipv4 net0", "ipadm: Invalid argument provided", errors.New("exit status 1"))
	mock.AddError("ipadm set-ifprop -p mtu=1500 -m ipv4 net0", "ipadm: Permission denied", errors.New("exit status 1"))

	r := NewIPPropertiesAdapter("net0/ipv4", map[string]interface{}{
		"properties": map[string]interface{}{"mtu": 9000},
	})
	require.NoError(t, r.Validate())

	_, err := r.Apply(ctx)
	assert.ErrorContains(t, err, "Invalid argument")
	assert.ErrorContains(t, err, "revert net0")
	assert.ErrorContains(t, err, "Permission denied")
}

func TestInterfaceAdapter(t *testing.T) {
	t.Run("create and revert", func(t *testing.T) {
		ctx, mock := illumosContext(t)
		mock.AddResponse("ipadm show-if -p -o IFNAME", "lo0")
		mock.AddResponse("ipadm create-ip net1", "")
		mock.AddResponse("ipadm delete-ip net1", "")

		r := NewInterfaceAdapter("net1", map[string]interface{}{})
		require.NoError(t, r.Validate())

		result, err := r.Apply(ctx)
		require.NoError(t, err)
		assert.True(t, result.Changed)
		assert.Equal(t, "created", r.ActionPerformed)

		require.NoError(t, r.Revert(ctx))
		assert.True(t, mock.Called("ipadm delete-ip net1"))
	})

	t.Run("already present", func(t *testing.T) {
		ctx, mock := illumosContext(t)
		mock.AddResponse("ipadm show-if -p -o IFNAME", "lo0\nnet0")

		r := NewInterfaceAdapter("net0", map[string]interface{}{"state": "present"})
		result, err := r.Apply(ctx)
		require.NoError(t, err)
		assert.False(t, result.Changed)
	})

	t.Run("absent", func(t *testing.T) {
		ctx, mock := illumosContext(t)
		mock.AddResponse("ipadm show-if -p -o IFNAME", "lo0\nnet0")
		mock.AddResponse("ipadm delete-ip net0", "")

		r := NewInterfaceAdapter("net0", map[string]interface{}{"state": "absent"})
		result, err := r.Apply(ctx)
		require.NoError(t, err)
		assert.Equal(t, []core.Change{{Target: "net0", Field: "interface", From: "present", To: "absent"}}, result.Changes)
	})

	t.Run("validation", func(t *testing.T) {
		assert.ErrorIs(t, NewInterfaceAdapter("net0", map[string]interface{}{"state": "gone"}).Validate(), ipprop.ErrInvalidEnsure)
		assert.ErrorIs(t, NewInterfaceAdapter("net0/ipv4", nil).Validate(), ipprop.ErrInvalidFormat)
	})
}

func TestRegistration(t *testing.T) {
	for _, typ := range []string{ipprop.ResourceType, ipprop.InterfaceType} {
		factory, ok := core.LookupResource(typ)
		require.True(t, ok, typ)
		res, err := factory("net0", map[string]interface{}{}, nil)
		require.NoError(t, err)
		assert.Equal(t, typ, res.GetType())
	}
}
