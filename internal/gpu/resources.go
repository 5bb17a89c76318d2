//go:build !nogpu

// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package gpu

import (
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// resources tracks the per-dispatch buffers and bind groups so they can be
// destroyed together once the readback is complete.
type resources struct {
	device  hal.Device
	queue   hal.Queue
	buffers []hal.Buffer
	groups  []hal.BindGroup
}

// binding is a whole-buffer binding of the given size.
type binding struct {
	buf  hal.Buffer
	size uint64
}

func (b *Backend) newResources() *resources {
	return &resources{device: b.device, queue: b.queue}
}

// buffer creates a buffer that is destroyed on release.
func (r *resources) buffer(label string, size uint64, usage gputypes.BufferUsage) (hal.Buffer, error) {
	buf, err := r.device.CreateBuffer(&hal.BufferDescriptor{Label: label, Size: size, Usage: usage})
	if err != nil {
		return nil, fmt.Errorf("create %s buffer: %w", label, err)
	}
	r.buffers = append(r.buffers, buf)
	return buf, nil
}

// upload creates a CPU-writable buffer and fills it with data.
func (r *resources) upload(label string, data []byte, usage gputypes.BufferUsage) (hal.Buffer, error) {
	// MapWrite keeps the buffer host-visible for HAL-level WriteBuffer.
	buf, err := r.buffer(label, uint64(len(data)), usage|gputypes.BufferUsageMapWrite)
	if err != nil {
		return nil, err
	}
	if err := r.queue.WriteBuffer(buf, 0, data); err != nil {
		return nil, fmt.Errorf("write %s buffer: %w", label, err)
	}
	return buf, nil
}

// bindGroup binds bufs to consecutive binding slots starting at 0.
func (r *resources) bindGroup(label string, layout hal.BindGroupLayout, bufs ...binding) (hal.BindGroup, error) {
	entries := make([]gputypes.BindGroupEntry, len(bufs))
	for i, bb := range bufs {
		entries[i] = gputypes.BindGroupEntry{
			Binding:  uint32(i), //nolint:gosec // binding count is tiny
			Resource: gputypes.BufferBinding{Buffer: bb.buf.NativeHandle(), Offset: 0, Size: bb.size},
		}
	}
	bg, err := r.device.CreateBindGroup(&hal.BindGroupDescriptor{
		Label:   label,
		Layout:  layout,
		Entries: entries,
	})
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", label, err)
	}
	r.groups = append(r.groups, bg)
	return bg, nil
}

// release destroys bind groups before the buffers they reference.
func (r *resources) release() {
	for _, bg := range r.groups {
		if bg != nil {
			r.device.DestroyBindGroup(bg)
		}
	}
	for _, buf := range r.buffers {
		if buf != nil {
			r.device.DestroyBuffer(buf)
		}
	}
	r.groups, r.buffers = nil, nil
}
