//go:build !nogpu

// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package gpu

import (
	"fmt"
	"log/slog"
	"sync"
	"unsafe"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/unsharp"
)

// Backend executes unsharp kernels as wgpu compute passes.
//
// A blur is encoded as one accumulation pass per window offset followed by
// a resolve pass, batched into command buffers of bounded size: the
// accumulation order matches the CPU backends, and the shaders contain no
// loops. A combine is
// a single pass. Each Dispatch uploads its inputs, waits for the queue and
// reads the result back before returning.
//
// Dispatches are serialized on one queue. Any device or queue failure is
// reported as unsharp.ErrDeviceDispatch; the backend never falls back to
// the CPU.
type Backend struct {
	mu sync.Mutex

	instance hal.Instance
	device   hal.Device
	queue    hal.Queue
	info     deviceInfo

	accumulate *computeProgram
	resolve    *computeProgram
	combine    *computeProgram

	closed bool
}

var _ unsharp.Backend = (*Backend)(nil)

// New opens a compute device and builds the blur and combine pipelines.
// If SetDefaultDeviceProvider installed a provider, its device is shared
// instead of opening a new one.
func New() (*Backend, error) {
	b := &Backend{}

	if p := currentProvider(); p != nil {
		device, queue, info, err := sharedDevice(p)
		if err != nil {
			return nil, err
		}
		b.device, b.queue, b.info = device, queue, info
	} else {
		instance, openDev, info, err := openDevice()
		if err != nil {
			return nil, err
		}
		b.instance, b.device, b.queue, b.info = instance, openDev.Device, openDev.Queue, info
	}

	if err := b.createPrograms(); err != nil {
		b.Close()
		return nil, fmt.Errorf("gpu: create pipelines: %w", err)
	}

	slogger().Info("gpu backend initialized",
		"adapter", b.info.Name, "type", b.info.Type, "shared", b.info.External)
	return b, nil
}

// Name implements unsharp.Backend.
func (b *Backend) Name() string { return unsharp.BackendGPU }

// AdapterName returns the name of the device the backend runs on.
func (b *Backend) AdapterName() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.info.Name
}

// SetLogger sets the logger for the GPU package.
// Called by unsharp.NewBackend when the backend is created.
func (b *Backend) SetLogger(l *slog.Logger) {
	setLogger(l)
}

// SetDeviceProvider switches the backend to a shared GPU device from an
// external provider. The provider must implement HalDevice() any and
// HalQueue() any returning hal.Device and hal.Queue.
func (b *Backend) SetDeviceProvider(provider gpucontext.DeviceProvider) error {
	device, queue, info, err := sharedDevice(provider)
	if err != nil {
		return err
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return unsharp.ErrBackendClosed
	}

	b.releaseDevice()
	b.device, b.queue, b.info = device, queue, info

	if err := b.createPrograms(); err != nil {
		b.destroyPrograms()
		b.closed = true
		return fmt.Errorf("gpu: create pipelines with shared device: %w", err)
	}
	slogger().Info("gpu backend switched to shared device", "adapter", info.Name)
	return nil
}

// Close implements unsharp.Backend. A shared device is left running.
func (b *Backend) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.releaseDevice()
	b.closed = true
}

// Dispatch implements unsharp.Backend for *unsharp.BlurKernel and
// *unsharp.CombineKernel. Other kernels return unsharp.ErrUnsupportedKernel.
func (b *Backend) Dispatch(k unsharp.Kernel) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return unsharp.ErrBackendClosed
	}

	var err error
	switch k := k.(type) {
	case *unsharp.BlurKernel:
		if k.Src == nil || k.Dst == nil {
			return fmt.Errorf("%w: gpu: nil blur image", unsharp.ErrPrecondition)
		}
		err = b.blur(k)
	case *unsharp.CombineKernel:
		if k.A == nil || k.B == nil || k.Dst == nil {
			return fmt.Errorf("%w: gpu: nil combine image", unsharp.ErrPrecondition)
		}
		err = b.combineImages(k)
	default:
		return fmt.Errorf("%w: %T", unsharp.ErrUnsupportedKernel, k)
	}

	if err != nil {
		slogger().Warn("gpu dispatch failed", "kernel", fmt.Sprintf("%T", k), "err", err)
		return fmt.Errorf("%w: gpu: %w", unsharp.ErrDeviceDispatch, err)
	}
	return nil
}

// maxPassesPerSubmit bounds the uniform buffers and bind groups alive at
// once while accumulating a large window.
const maxPassesPerSubmit = 256

// blur encodes (2r-1)^2 accumulation passes, submitted in batches of at
// most maxPassesPerSubmit, and one resolve pass.
func (b *Backend) blur(k *unsharp.BlurKernel) error {
	src, dst := k.Src, k.Dst
	n := src.Width() * src.Height()
	w, h := uint32(src.Width()), uint32(src.Height()) //nolint:gosec // dimensions always fit uint32
	pixelBytes := uint64(n) * 4
	accBytes := uint64(n) * 16

	res := b.newResources()
	defer res.release()

	srcBuf, err := res.upload("blur_src", packRGB(src.Data(), src.Channels(), n), gputypes.BufferUsageStorage)
	if err != nil {
		return err
	}
	accBuf, err := res.upload("blur_acc", make([]byte, accBytes), gputypes.BufferUsageStorage)
	if err != nil {
		return err
	}
	dstBuf, err := res.buffer("blur_dst", pixelBytes, gputypes.BufferUsageStorage|gputypes.BufferUsageCopySrc)
	if err != nil {
		return err
	}

	reach := k.Radius - 1
	side := 2*reach + 1
	for first := 0; first < side*side; first += maxPassesPerSubmit {
		last := min(first+maxPassesPerSubmit, side*side)
		if err := b.accumulateBatch(srcBuf, accBuf, w, h, reach, first, last); err != nil {
			return err
		}
	}

	params := blurResolveParams(w, h, float32(side*side))
	ub, err := res.upload("blur_resolve_params", params, gputypes.BufferUsageUniform)
	if err != nil {
		return err
	}
	bg, err := res.bindGroup("blur_resolve_bind", b.resolve.bindLayout,
		binding{ub, uint64(len(params))},
		binding{accBuf, accBytes},
		binding{dstBuf, pixelBytes},
	)
	if err != nil {
		return err
	}
	readback, err := b.submit(res, []computePass{{pipeline: b.resolve.pipeline, group: bg}}, w, h, dstBuf, pixelBytes)
	if err != nil {
		return err
	}
	unpackRGB(readback, dst.Data(), src.Data(), src.Channels(), n)
	return nil
}

// accumulateBatch adds window offsets [first, last) into acc and waits for
// them to complete. Offsets are numbered row-major over the window, so
// batches preserve the CPU summation order.
func (b *Backend) accumulateBatch(src, acc hal.Buffer, w, h uint32, reach, first, last int) error {
	batch := b.newResources()
	defer batch.release()

	n := uint64(w) * uint64(h)
	passes := make([]computePass, 0, last-first)
	for i := first; i < last; i++ {
		dx, dy := windowOffset(i, reach)
		params := blurOffsetParams(w, h, int32(dx), int32(dy)) //nolint:gosec // radius fits int32
		ub, err := batch.upload("blur_offset", params, gputypes.BufferUsageUniform)
		if err != nil {
			return err
		}
		bg, err := batch.bindGroup("blur_accumulate_bind", b.accumulate.bindLayout,
			binding{ub, uint64(len(params))},
			binding{src, n * 4},
			binding{acc, n * 16},
		)
		if err != nil {
			return err
		}
		passes = append(passes, computePass{pipeline: b.accumulate.pipeline, group: bg})
	}

	_, err := b.submit(batch, passes, w, h, nil, 0)
	return err
}

// windowOffset returns the (dx, dy) of the i-th offset of a window with the
// given reach, numbered row-major from (-reach, -reach).
func windowOffset(i, reach int) (dx, dy int) {
	side := 2*reach + 1
	return i%side - reach, i/side - reach
}

// combineImages encodes a single weighted-sum pass.
func (b *Backend) combineImages(k *unsharp.CombineKernel) error {
	a, bImg, dst := k.A, k.B, k.Dst
	n := a.Width() * a.Height()
	w, h := uint32(a.Width()), uint32(a.Height()) //nolint:gosec // dimensions always fit uint32
	pixelBytes := uint64(n) * 4

	res := b.newResources()
	defer res.release()

	aBuf, err := res.upload("combine_a", packRGB(a.Data(), a.Channels(), n), gputypes.BufferUsageStorage)
	if err != nil {
		return err
	}
	bBuf, err := res.upload("combine_b", packRGB(bImg.Data(), bImg.Channels(), n), gputypes.BufferUsageStorage)
	if err != nil {
		return err
	}
	dstBuf, err := res.buffer("combine_dst", pixelBytes, gputypes.BufferUsageStorage|gputypes.BufferUsageCopySrc)
	if err != nil {
		return err
	}

	wt := k.Weights
	params := combineParams(wt.Alpha, wt.Beta, wt.Gamma, w, h)
	ub, err := res.upload("combine_params", params, gputypes.BufferUsageUniform)
	if err != nil {
		return err
	}
	bg, err := res.bindGroup("combine_bind", b.combine.bindLayout,
		binding{ub, uint64(len(params))},
		binding{aBuf, pixelBytes},
		binding{bBuf, pixelBytes},
		binding{dstBuf, pixelBytes},
	)
	if err != nil {
		return err
	}

	readback, err := b.submit(res, []computePass{{pipeline: b.combine.pipeline, group: bg}}, w, h, dstBuf, pixelBytes)
	if err != nil {
		return err
	}
	unpackRGB(readback, dst.Data(), a.Data(), a.Channels(), n)
	return nil
}

// computePass is one dispatch of a pipeline with its bind group.
type computePass struct {
	pipeline hal.ComputePipeline
	group    hal.BindGroup
}

// submit records passes into one command buffer, waits for the queue and,
// when out is non-nil, copies it through a staging buffer and returns its
// bytes.
// Compute passes in one encoder are separated by implicit storage barriers.
func (b *Backend) submit(res *resources, passes []computePass, w, h uint32, out hal.Buffer, size uint64) ([]byte, error) {
	var staging hal.Buffer
	if out != nil {
		var err error
		staging, err = res.buffer("staging", size, gputypes.BufferUsageMapRead|gputypes.BufferUsageCopyDst)
		if err != nil {
			return nil, err
		}
	}

	encoder, err := b.device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{Label: "unsharp_encoder"})
	if err != nil {
		return nil, fmt.Errorf("create command encoder: %w", err)
	}
	if err := encoder.BeginEncoding("unsharp"); err != nil {
		return nil, fmt.Errorf("begin encoding: %w", err)
	}

	groupsX := (w + workgroupSize - 1) / workgroupSize
	groupsY := (h + workgroupSize - 1) / workgroupSize
	for _, p := range passes {
		computePass := encoder.BeginComputePass(&hal.ComputePassDescriptor{Label: "unsharp_pass"})
		computePass.SetPipeline(p.pipeline)
		computePass.SetBindGroup(0, p.group, nil)
		computePass.Dispatch(groupsX, groupsY, 1)
		computePass.End()
	}

	if out != nil {
		encoder.CopyBufferToBuffer(out, staging, []hal.BufferCopy{
			{SrcOffset: 0, DstOffset: 0, Size: size},
		})
	}
	cmdBuf, err := encoder.EndEncoding()
	if err != nil {
		return nil, fmt.Errorf("end encoding: %w", err)
	}
	defer b.device.FreeCommandBuffer(cmdBuf)

	subIdx, err := b.queue.Submit([]hal.CommandBuffer{cmdBuf})
	if err != nil {
		return nil, fmt.Errorf("submit: %w", err)
	}
	if err := b.device.WaitIdle(); err != nil {
		return nil, fmt.Errorf("wait for GPU: %w", err)
	}
	if done := b.queue.PollCompleted(); done < subIdx {
		return nil, fmt.Errorf("wait for GPU: submission %d not completed (at %d)", subIdx, done)
	}

	slogger().Debug("gpu dispatch", "width", w, "height", h, "passes", len(passes))
	if out == nil {
		return nil, nil
	}

	mapping, err := b.device.MapBuffer(staging, 0, size)
	if err != nil {
		return nil, fmt.Errorf("map staging buffer: %w", err)
	}
	readback := make([]byte, size)
	copy(readback, unsafe.Slice((*byte)(mapping.Ptr), size))
	if err := b.device.UnmapBuffer(staging); err != nil {
		return nil, fmt.Errorf("unmap staging buffer: %w", err)
	}
	return readback, nil
}

func (b *Backend) createPrograms() error {
	var err error
	if b.accumulate, err = createProgram(b.device, blurAccumulateProgram); err != nil {
		return err
	}
	if b.resolve, err = createProgram(b.device, blurResolveProgram); err != nil {
		return err
	}
	if b.combine, err = createProgram(b.device, combineProgram); err != nil {
		return err
	}
	return nil
}

func (b *Backend) destroyPrograms() {
	b.accumulate.destroy(b.device)
	b.resolve.destroy(b.device)
	b.combine.destroy(b.device)
	b.accumulate, b.resolve, b.combine = nil, nil, nil
}

// releaseDevice destroys the pipelines and, unless the device is shared,
// the device and instance.
func (b *Backend) releaseDevice() {
	b.destroyPrograms()
	if !b.info.External {
		if b.device != nil {
			_ = b.device.WaitIdle()
			b.device.Destroy()
		}
		if b.instance != nil {
			b.instance.Destroy()
		}
	}
	b.device = nil
	b.queue = nil
	b.instance = nil
}
