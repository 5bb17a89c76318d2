//go:build !nogpu

package gpu

import (
	"testing"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

func TestAdapterScoreOrder(t *testing.T) {
	order := []gputypes.DeviceType{
		gputypes.DeviceTypeDiscreteGPU,
		gputypes.DeviceTypeIntegratedGPU,
		gputypes.DeviceTypeVirtualGPU,
		gputypes.DeviceTypeCPU,
		gputypes.DeviceTypeOther,
	}
	for i := 1; i < len(order); i++ {
		if adapterScore(order[i-1]) <= adapterScore(order[i]) {
			t.Errorf("adapterScore(%v) = %d, want > adapterScore(%v) = %d",
				order[i-1], adapterScore(order[i-1]), order[i], adapterScore(order[i]))
		}
	}
}

func TestSelectAdapter(t *testing.T) {
	adapters := func(types ...gputypes.DeviceType) []hal.ExposedAdapter {
		out := make([]hal.ExposedAdapter, len(types))
		for i, typ := range types {
			out[i].Info = gputypes.AdapterInfo{Name: typ.String(), DeviceType: typ}
		}
		return out
	}

	tests := []struct {
		name     string
		adapters []hal.ExposedAdapter
		want     string
	}{
		{"empty", nil, ""},
		{"discrete wins", adapters(gputypes.DeviceTypeCPU, gputypes.DeviceTypeIntegratedGPU, gputypes.DeviceTypeDiscreteGPU), "DiscreteGPU"},
		{"integrated over cpu", adapters(gputypes.DeviceTypeCPU, gputypes.DeviceTypeIntegratedGPU), "IntegratedGPU"},
		{"cpu only", adapters(gputypes.DeviceTypeCPU), "CPU"},
		{"first of equals", adapters(gputypes.DeviceTypeOther, gputypes.DeviceTypeOther), "Other"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := selectAdapter(tt.adapters)
			if tt.want == "" {
				if got != nil {
					t.Errorf("selectAdapter() = %q, want nil", got.Info.Name)
				}
				return
			}
			if got == nil {
				t.Fatalf("selectAdapter() = nil, want %q", tt.want)
			}
			if got.Info.Name != tt.want {
				t.Errorf("selectAdapter() = %q, want %q", got.Info.Name, tt.want)
			}
			if tt.name == "first of equals" && got != &tt.adapters[0] {
				t.Error("selectAdapter() did not keep the first adapter on a tie")
			}
		})
	}
}

func TestDeviceTypeOf(t *testing.T) {
	tests := []struct {
		in   gpucontext.AdapterType
		want gputypes.DeviceType
	}{
		{gpucontext.AdapterTypeDiscrete, gputypes.DeviceTypeDiscreteGPU},
		{gpucontext.AdapterTypeIntegrated, gputypes.DeviceTypeIntegratedGPU},
		{gpucontext.AdapterTypeSoftware, gputypes.DeviceTypeCPU},
		{gpucontext.AdapterTypeUnknown, gputypes.DeviceTypeOther},
	}
	for _, tt := range tests {
		if got := deviceTypeOf(tt.in); got != tt.want {
			t.Errorf("deviceTypeOf(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

// stubProvider is a DeviceProvider without HAL access.
type stubProvider struct{}

func (stubProvider) Device() gpucontext.Device             { return nil }
func (stubProvider) Queue() gpucontext.Queue               { return nil }
func (stubProvider) SurfaceFormat() gputypes.TextureFormat { return gputypes.TextureFormatUndefined }
func (stubProvider) Adapter() gpucontext.Adapter           { return nil }
func (stubProvider) AdapterInfo() gpucontext.AdapterInfo   { return gpucontext.AdapterInfo{Name: "stub"} }

// nilHalProvider exposes HAL accessors that return the wrong types.
type nilHalProvider struct{ stubProvider }

func (nilHalProvider) HalDevice() any { return nil }
func (nilHalProvider) HalQueue() any  { return nil }

func TestSharedDevice_Rejects(t *testing.T) {
	tests := []struct {
		name     string
		provider gpucontext.DeviceProvider
	}{
		{"no HAL accessors", stubProvider{}},
		{"nil HAL device", nilHalProvider{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, _, _, err := sharedDevice(tt.provider); err == nil {
				t.Error("sharedDevice() = nil error, want rejection")
			}
		})
	}
}

func TestSetDefaultDeviceProvider(t *testing.T) {
	t.Cleanup(func() { SetDefaultDeviceProvider(nil) })

	if currentProvider() != nil {
		t.Fatal("default provider should be nil initially")
	}
	SetDefaultDeviceProvider(stubProvider{})
	if currentProvider() == nil {
		t.Fatal("provider not stored")
	}

	// New must fail on a provider without HAL access instead of opening
	// its own device.
	if _, err := New(); err == nil {
		t.Error("New() with a non-HAL provider should fail")
	}
}
