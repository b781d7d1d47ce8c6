package resource

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/melih-ucgun/ifprop/internal/core"
)

func TestCreateResourceWithParams(t *testing.T) {
	baseCtx := core.NewSystemContext(false, nil)

	tests := []struct {
		name     string
		resType  string
		resName  string
		params   map[string]interface{}
		wantErr  bool
		wantName string
	}{
		{
			name:    "Interface Properties",
			resType: "ip_interface_properties",
			resName: "net0",
			params: map[string]interface{}{
				"properties": map[string]interface{}{"ipv4": map[string]interface{}{"mtu": 1500}},
			},
			wantName: "net0",
		},
		{
			name:    "Legacy Interface Properties",
			resType: "ip_interface_properties",
			resName: "net0/ipv4",
			params: map[string]interface{}{
				"properties": map[string]interface{}{"mtu": 1500},
				"temporary":  true,
			},
			wantName: "net0",
		},
		{
			name:     "Interface",
			resType:  "ip_interface",
			resName:  "net0",
			wantName: "net0",
		},
		{
			name:    "Unknown Type",
			resType: "firewall_rule",
			resName: "ssh",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := CreateResourceWithParams(tt.resType, tt.resName, tt.params, baseCtx)
			if tt.wantErr {
				assert.ErrorContains(t, err, "bilinmeyen kaynak tipi")
				return
			}
			require.NoError(t, err)
			require.NoError(t, res.Validate())
			assert.Equal(t, tt.resType, res.GetType())
			assert.Equal(t, tt.wantName, res.GetName())
		})
	}
}
