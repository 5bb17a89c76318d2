//go:build !nogpu

package gpu

import (
	"errors"
	"fmt"
	"sync"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	// Import Vulkan backend so it registers via init().
	_ "github.com/gogpu/wgpu/hal/vulkan"
)

// ErrNoAdapter is returned when no usable compute adapter is found.
var ErrNoAdapter = errors.New("gpu: no compute adapter found")

// deviceInfo describes the device a Backend runs on.
type deviceInfo struct {
	Name     string
	Type     gputypes.DeviceType
	External bool
}

// adapterScore ranks adapters for selection: dedicated GPUs first, then
// integrated ones, then anything else the driver exposes. CPU
// implementations rank lowest.
func adapterScore(t gputypes.DeviceType) int {
	switch t {
	case gputypes.DeviceTypeDiscreteGPU:
		return 100
	case gputypes.DeviceTypeIntegratedGPU:
		return 90
	case gputypes.DeviceTypeVirtualGPU:
		return 80
	case gputypes.DeviceTypeCPU:
		return 50
	default:
		return 10
	}
}

// selectAdapter returns the highest-scoring adapter, preferring the earliest
// on ties. Returns nil for an empty list.
func selectAdapter(adapters []hal.ExposedAdapter) *hal.ExposedAdapter {
	var selected *hal.ExposedAdapter
	best := -1
	for i := range adapters {
		if s := adapterScore(adapters[i].Info.DeviceType); s > best {
			best = s
			selected = &adapters[i]
		}
	}
	return selected
}

// openDevice creates a Vulkan instance and opens the best adapter.
func openDevice() (hal.Instance, hal.OpenDevice, deviceInfo, error) {
	backend, ok := hal.GetBackend(gputypes.BackendVulkan)
	if !ok {
		return nil, hal.OpenDevice{}, deviceInfo{}, fmt.Errorf("vulkan backend not available")
	}
	instance, err := backend.CreateInstance(&hal.InstanceDescriptor{
		Backends: gputypes.BackendsVulkan,
	})
	if err != nil {
		return nil, hal.OpenDevice{}, deviceInfo{}, fmt.Errorf("create instance: %w", err)
	}

	selected := selectAdapter(instance.EnumerateAdapters(nil))
	if selected == nil {
		instance.Destroy()
		return nil, hal.OpenDevice{}, deviceInfo{}, ErrNoAdapter
	}

	openDev, err := selected.Adapter.Open(gputypes.Features(0), gputypes.DefaultLimits())
	if err != nil {
		instance.Destroy()
		return nil, hal.OpenDevice{}, deviceInfo{}, fmt.Errorf("open device %q: %w", selected.Info.Name, err)
	}

	info := deviceInfo{Name: selected.Info.Name, Type: selected.Info.DeviceType}
	return instance, openDev, info, nil
}

// halProvider is implemented by device providers that expose their HAL
// device and queue (e.g., gogpu windows).
type halProvider interface {
	HalDevice() any
	HalQueue() any
}

// sharedDevice unwraps a provider into HAL objects.
func sharedDevice(provider gpucontext.DeviceProvider) (hal.Device, hal.Queue, deviceInfo, error) {
	hp, ok := provider.(halProvider)
	if !ok {
		return nil, nil, deviceInfo{}, fmt.Errorf("gpu: provider %T does not expose HAL types", provider)
	}
	device, ok := hp.HalDevice().(hal.Device)
	if !ok || device == nil {
		return nil, nil, deviceInfo{}, fmt.Errorf("gpu: provider HalDevice is not hal.Device")
	}
	queue, ok := hp.HalQueue().(hal.Queue)
	if !ok || queue == nil {
		return nil, nil, deviceInfo{}, fmt.Errorf("gpu: provider HalQueue is not hal.Queue")
	}

	ai := provider.AdapterInfo()
	info := deviceInfo{Name: ai.Name, Type: deviceTypeOf(ai.Type), External: true}
	return device, queue, info, nil
}

// deviceTypeOf maps a provider adapter type onto the HAL device type.
func deviceTypeOf(t gpucontext.AdapterType) gputypes.DeviceType {
	switch t {
	case gpucontext.AdapterTypeDiscrete:
		return gputypes.DeviceTypeDiscreteGPU
	case gpucontext.AdapterTypeIntegrated:
		return gputypes.DeviceTypeIntegratedGPU
	case gpucontext.AdapterTypeSoftware:
		return gputypes.DeviceTypeCPU
	default:
		return gputypes.DeviceTypeOther
	}
}

// defaultProvider is the device provider used by New, if any.
var (
	providerMu      sync.RWMutex
	defaultProvider gpucontext.DeviceProvider
)

// SetDefaultDeviceProvider makes New share the provider's device instead of
// opening its own. Pass nil to restore standalone device creation.
func SetDefaultDeviceProvider(provider gpucontext.DeviceProvider) {
	providerMu.Lock()
	defer providerMu.Unlock()
	defaultProvider = provider
}

func currentProvider() gpucontext.DeviceProvider {
	providerMu.RLock()
	defer providerMu.RUnlock()
	return defaultProvider
}
