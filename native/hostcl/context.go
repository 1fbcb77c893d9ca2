/*
 *	Copyright 2023 Jan Pfeifer
 *
 *	Licensed under the Apache License, Version 2.0 (the "License");
 *	you may not use this file except in compliance with the License.
 *	You may obtain a copy of the License at
 *
 *	http://www.apache.org/licenses/LICENSE-2.0
 *
 *	Unless required by applicable law or agreed to in writing, software
 *	distributed under the License is distributed on an "AS IS" BASIS,
 *	WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 *	See the License for the specific language governing permissions and
 *	limitations under the License.
 */


package hostcl

import (
	"slices"

	"github.com/gomlx/webcl/native"
)

// validateProperties checks the context properties: only ContextPlatform is known, and it must name the
// host platform.
func (d *Driver) validateProperties(properties []native.ContextProperty) native.Status {
	seen := make(map[native.ContextPropertyName]bool, len(properties))
	for _, prop := range properties {
		if prop.Name != native.ContextPlatform || seen[prop.Name] {
			return native.InvalidValue
		}
		seen[prop.Name] = true
		if native.Handle(prop.Value) != d.platform.h {
			return native.InvalidPlatform
		}
	}
	return native.Success
}

func (d *Driver) newContext(properties []native.ContextProperty, devices []*device) native.Handle {
	return d.insert(&context{
		devices:    devices,
		properties: slices.Clone(properties),
	})
}

// CreateContext implements native.Driver.
func (d *Driver) CreateContext(properties []native.ContextProperty, deviceHandles []native.Handle) (
	native.Handle, native.Status) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if status := d.begin("clCreateContext"); status != native.Success {
		return native.NilHandle, status
	}
	if status := d.validateProperties(properties); status != native.Success {
		return native.NilHandle, status
	}
	if len(deviceHandles) == 0 {
		return native.NilHandle, native.InvalidValue
	}
	devices, ok := d.resolveDevices(deviceHandles, d.devices)
	if !ok {
		return native.NilHandle, native.InvalidDevice
	}
	return d.newContext(properties, devices), native.Success
}

// CreateContextFromType implements native.Driver.
func (d *Driver) CreateContextFromType(properties []native.ContextProperty, deviceType native.DeviceType) (
	native.Handle, native.Status) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if status := d.begin("clCreateContextFromType"); status != native.Success {
		return native.NilHandle, status
	}
	if status := d.validateProperties(properties); status != native.Success {
		return native.NilHandle, status
	}
	devices, status := d.matchDevices(deviceType)
	if status != native.Success {
		return native.NilHandle, status
	}
	if len(devices) == 0 {
		return native.NilHandle, native.DeviceNotFound
	}
	return d.newContext(properties, devices), native.Success
}

func deviceHandles(devices []*device) []native.Handle {
	handles := make([]native.Handle, len(devices))
	for ii, dev := range devices {
		handles[ii] = dev.h
	}
	return handles
}

// GetContextInfo implements native.Driver.
func (d *Driver) GetContextInfo(h native.Handle, param native.ContextInfo, value []byte) (int, native.Status) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if status := d.begin("clGetContextInfo"); status != native.Success {
		return 0, status
	}
	ctx, found := lookup[*context](d, h)
	if !found {
		return 0, native.InvalidContext
	}
	var data []byte
	switch param {
	case native.ContextReferenceCount:
		data = encodeUint32(uint32(ctx.user))
	case native.ContextNumDevices:
		data = encodeUint32(uint32(len(ctx.devices)))
	case native.ContextDevices:
		data = encodeHandles(deviceHandles(ctx.devices)...)
	case native.ContextProperties:
		// Zero terminated list of (name, value) pairs, or nothing if created without properties.
		if len(ctx.properties) > 0 {
			values := make([]uint64, 0, 2*len(ctx.properties)+1)
			for _, prop := range ctx.properties {
				values = append(values, uint64(prop.Name), uint64(prop.Value))
			}
			data = encodeSizes(append(values, 0)...)
		}
	default:
		return 0, native.InvalidValue
	}
	return answer(data, value)
}

// ReleaseContext implements native.Driver.
func (d *Driver) ReleaseContext(h native.Handle) native.Status {
	return release[*context](d, "clReleaseContext", h, native.InvalidContext)
}

// CreateCommandQueue implements native.Driver.
func (d *Driver) CreateCommandQueue(ctxHandle, devHandle native.Handle, properties native.CommandQueueProperties) (
	native.Handle, native.Status) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if status := d.begin("clCreateCommandQueue"); status != native.Success {
		return native.NilHandle, status
	}
	ctx, found := lookup[*context](d, ctxHandle)
	if !found {
		return native.NilHandle, native.InvalidContext
	}
	dev, found := d.findDevice(devHandle)
	if !found || !slices.Contains(ctx.devices, dev) {
		return native.NilHandle, native.InvalidDevice
	}
	if properties&^(native.QueueOutOfOrderExecModeEnable|native.QueueProfilingEnable) != 0 {
		return native.NilHandle, native.InvalidValue
	}
	if properties&native.QueueOutOfOrderExecModeEnable != 0 && !d.cfg.OutOfOrder {
		return native.NilHandle, native.InvalidQueueProperties
	}
	return d.insert(&queue{ctx: ctx, device: dev, properties: properties}), native.Success
}

// GetCommandQueueInfo implements native.Driver.
func (d *Driver) GetCommandQueueInfo(h native.Handle, param native.CommandQueueInfo, value []byte) (
	int, native.Status) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if status := d.begin("clGetCommandQueueInfo"); status != native.Success {
		return 0, status
	}
	q, found := lookup[*queue](d, h)
	if !found {
		return 0, native.InvalidCommandQueue
	}
	var data []byte
	switch param {
	case native.QueueContext:
		data = encodeHandles(q.ctx.h)
	case native.QueueDevice:
		data = encodeHandles(q.device.h)
	case native.QueueReferenceCount:
		data = encodeUint32(uint32(q.user))
	case native.QueueProperties:
		data = encodeUint64(uint64(q.properties))
	default:
		return 0, native.InvalidValue
	}
	return answer(data, value)
}

// ReleaseCommandQueue implements native.Driver.
func (d *Driver) ReleaseCommandQueue(h native.Handle) native.Status {
	return release[*queue](d, "clReleaseCommandQueue", h, native.InvalidCommandQueue)
}

// CreateSampler implements native.Driver.
func (d *Driver) CreateSampler(ctxHandle native.Handle, normalized bool, addressing native.AddressingMode,
	filter native.FilterMode) (native.Handle, native.Status) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if status := d.begin("clCreateSampler"); status != native.Success {
		return native.NilHandle, status
	}
	ctx, found := lookup[*context](d, ctxHandle)
	if !found {
		return native.NilHandle, native.InvalidContext
	}
	if addressing < native.AddressNone || addressing > native.AddressMirroredRepeat ||
		(filter != native.FilterNearest && filter != native.FilterLinear) {
		return native.NilHandle, native.InvalidValue
	}
	if !d.cfg.ImageSupport {
		return native.NilHandle, native.InvalidOperation
	}
	return d.insert(&sampler{ctx: ctx, normalized: normalized, addressing: addressing, filter: filter}),
		native.Success
}

// GetSamplerInfo implements native.Driver.
func (d *Driver) GetSamplerInfo(h native.Handle, param native.SamplerInfo, value []byte) (int, native.Status) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if status := d.begin("clGetSamplerInfo"); status != native.Success {
		return 0, status
	}
	s, found := lookup[*sampler](d, h)
	if !found {
		return 0, native.InvalidSampler
	}
	var data []byte
	switch param {
	case native.SamplerReferenceCount:
		data = encodeUint32(uint32(s.user))
	case native.SamplerContext:
		data = encodeHandles(s.ctx.h)
	case native.SamplerNormalizedCoords:
		data = encodeBool(s.normalized)
	case native.SamplerAddressingMode:
		data = encodeUint32(uint32(s.addressing))
	case native.SamplerFilterMode:
		data = encodeUint32(uint32(s.filter))
	default:
		return 0, native.InvalidValue
	}
	return answer(data, value)
}

// ReleaseSampler implements native.Driver.
func (d *Driver) ReleaseSampler(h native.Handle) native.Status {
	return release[*sampler](d, "clReleaseSampler", h, native.InvalidSampler)
}

// CreateUserEvent implements native.Driver. User events start as CL_SUBMITTED.
func (d *Driver) CreateUserEvent(ctxHandle native.Handle) (native.Handle, native.Status) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if status := d.begin("clCreateUserEvent"); status != native.Success {
		return native.NilHandle, status
	}
	ctx, found := lookup[*context](d, ctxHandle)
	if !found {
		return native.NilHandle, native.InvalidContext
	}
	return d.insert(&event{ctx: ctx, status: native.Submitted}), native.Success
}

// SetUserEventStatus implements native.Driver. The status can only be set once, to CL_COMPLETE or to a
// negative error value.
func (d *Driver) SetUserEventStatus(h native.Handle, executionStatus int32) native.Status {
	d.mu.Lock()
	defer d.mu.Unlock()
	if status := d.begin("clSetUserEventStatus"); status != native.Success {
		return status
	}
	ev, found := lookup[*event](d, h)
	if !found {
		return native.InvalidEvent
	}
	if executionStatus != native.Complete && executionStatus >= 0 {
		return native.InvalidValue
	}
	if ev.statusSet {
		return native.InvalidOperation
	}
	ev.status = executionStatus
	ev.statusSet = true
	return native.Success
}

// GetEventInfo implements native.Driver.
func (d *Driver) GetEventInfo(h native.Handle, param native.EventInfo, value []byte) (int, native.Status) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if status := d.begin("clGetEventInfo"); status != native.Success {
		return 0, status
	}
	ev, found := lookup[*event](d, h)
	if !found {
		return 0, native.InvalidEvent
	}
	var data []byte
	switch param {
	case native.EventCommandQueue:
		// User events are not associated with a queue.
		data = encodeHandles(native.NilHandle)
	case native.EventCommandType:
		data = encodeUint32(native.CommandUser)
	case native.EventReferenceCount:
		data = encodeUint32(uint32(ev.user))
	case native.EventCommandExecutionStatus:
		data = encodeInt32(ev.status)
	case native.EventContext:
		data = encodeHandles(ev.ctx.h)
	default:
		return 0, native.InvalidValue
	}
	return answer(data, value)
}

// ReleaseEvent implements native.Driver.
func (d *Driver) ReleaseEvent(h native.Handle) native.Status {
	return release[*event](d, "clReleaseEvent", h, native.InvalidEvent)
}
