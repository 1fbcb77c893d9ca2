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


package webcl

import (
	"runtime"

	"github.com/dustin/go-humanize"
	"github.com/gomlx/webcl/native"
	"k8s.io/klog/v2"
)

// Context groups devices and the resources shared among them, and is the factory of every other resource.
type Context struct {
	object
}

var contextInfoTypes = map[native.ContextInfo]infoType{
	native.ContextReferenceCount: infoUint32,
	native.ContextNumDevices:     infoUint32,
	native.ContextDevices:        infoHandles,
	native.ContextProperties:     infoProperties,
}

// GetInfo returns the value of the context parameter:
//
//   - ContextReferenceCount and ContextNumDevices: uint32.
//   - ContextDevices: []*Device.
//   - ContextProperties: []int64, the (name, value) pairs the context was created with.
func (c *Context) GetInfo(param native.ContextInfo) (any, error) {
	defer runtime.KeepAlive(c)
	const op = "Context.GetInfo"
	t, found := contextInfoTypes[param]
	if !found {
		return nil, errorf(InvalidParameter, op, "unknown context info 0x%X", uint32(param))
	}
	id, err := c.res.id(op)
	if err != nil {
		return nil, err
	}
	driver := c.Binding().Driver()
	value, err := queryInfo(siteGetContextInfo, t, func(value []byte) (int, native.Status) {
		return driver.GetContextInfo(id, param, value)
	})
	if err != nil {
		return nil, err
	}
	if param == native.ContextDevices {
		return c.Binding().internDevices(value.([]native.Handle), nil)
	}
	return value, nil
}

// NumDevices returns the number of devices in the context.
func (c *Context) NumDevices() (int, error) {
	n, err := infoAs[uint32](c.GetInfo(native.ContextNumDevices))
	return int(n), err
}

// Devices returns the devices in the context.
func (c *Context) Devices() ([]*Device, error) {
	return infoAs[[]*Device](c.GetInfo(native.ContextDevices))
}

// Properties returns the properties the context was created with, as (name, value) pairs.
func (c *Context) Properties() ([]int64, error) {
	return infoAs[[]int64](c.GetInfo(native.ContextProperties))
}

// CreateCommandQueue creates a command queue for device, which must be one of the context devices.
func (c *Context) CreateCommandQueue(device *Device, props native.CommandQueueProperties) (*CommandQueue, error) {
	defer runtime.KeepAlive(c)
	defer runtime.KeepAlive(device)
	const op = "Context.CreateCommandQueue"
	id, err := c.res.id(op)
	if err != nil {
		return nil, err
	}
	if device == nil {
		return nil, errorf(InvalidDevice, op, "nil device")
	}
	deviceID, err := device.res.id(op)
	if err != nil {
		return nil, err
	}
	queueID, status := c.Binding().Driver().CreateCommandQueue(id, deviceID, props)
	if err := siteCreateCommandQueue.check(status); err != nil {
		return nil, err
	}
	return wrapCommandQueue(c, queueID, device), nil
}

// CreateBuffer creates a buffer of size bytes.
//
// host is passed to the driver as is, without copying: with native.MemCopyHostPtr it's copied by the
// driver, with native.MemUseHostPtr the driver uses it as storage, and it's kept referenced by the buffer
// until it is released.
func (c *Context) CreateBuffer(flags native.MemFlags, size int, host []byte) (*MemoryObject, error) {
	defer runtime.KeepAlive(c)
	const op = "Context.CreateBuffer"
	if err := checkSize(op, "size", size); err != nil {
		return nil, err
	}
	id, err := c.res.id(op)
	if err != nil {
		return nil, err
	}
	if klog.V(2).Enabled() {
		klog.Infof("webcl[%s]: clCreateBuffer(flags=0x%X, size=%s, host=%s)", c.Binding(), uint64(flags),
			humanize.IBytes(uint64(size)), humanize.IBytes(uint64(len(host))))
	}
	memID, status := c.Binding().Driver().CreateBuffer(id, flags, size, host)
	if err := siteCreateBuffer.check(status); err != nil {
		return nil, err
	}
	return wrapMemoryObject(c, memID, flags, host), nil
}

// CreateImage2D creates a 2D image. See CreateBuffer about host.
func (c *Context) CreateImage2D(flags native.MemFlags, format ImageFormat, width, height, rowPitch int,
	host []byte) (*MemoryObject, error) {
	defer runtime.KeepAlive(c)
	const op = "Context.CreateImage2D"
	for _, dim := range []struct {
		name  string
		value int
	}{{"width", width}, {"height", height}, {"row pitch", rowPitch}} {
		if err := checkSize(op, dim.name, dim.value); err != nil {
			return nil, err
		}
	}
	id, err := c.res.id(op)
	if err != nil {
		return nil, err
	}
	klog.V(2).Infof("webcl[%s]: clCreateImage2D(flags=0x%X, format=%+v, %dx%d, rowPitch=%d, host=%s)",
		c.Binding(), uint64(flags), format, width, height, rowPitch, humanize.IBytes(uint64(len(host))))
	memID, status := c.Binding().Driver().CreateImage2D(id, flags, &format, width, height, rowPitch, host)
	if err := siteCreateImage2D.check(status); err != nil {
		return nil, err
	}
	return wrapMemoryObject(c, memID, flags, host), nil
}

// CreateImage3D creates a 3D image. See CreateBuffer about host.
func (c *Context) CreateImage3D(flags native.MemFlags, format ImageFormat, width, height, depth, rowPitch,
	slicePitch int, host []byte) (*MemoryObject, error) {
	defer runtime.KeepAlive(c)
	const op = "Context.CreateImage3D"
	for _, dim := range []struct {
		name  string
		value int
	}{{"width", width}, {"height", height}, {"depth", depth}, {"row pitch", rowPitch}, {"slice pitch", slicePitch}} {
		if err := checkSize(op, dim.name, dim.value); err != nil {
			return nil, err
		}
	}
	id, err := c.res.id(op)
	if err != nil {
		return nil, err
	}
	klog.V(2).Infof("webcl[%s]: clCreateImage3D(flags=0x%X, format=%+v, %dx%dx%d, rowPitch=%d, slicePitch=%d, host=%s)",
		c.Binding(), uint64(flags), format, width, height, depth, rowPitch, slicePitch,
		humanize.IBytes(uint64(len(host))))
	memID, status := c.Binding().Driver().CreateImage3D(id, flags, &format, width, height, depth, rowPitch,
		slicePitch, host)
	if err := siteCreateImage3D.check(status); err != nil {
		return nil, err
	}
	return wrapMemoryObject(c, memID, flags, host), nil
}

// CreateSampler creates a sampler, to read images from kernels.
func (c *Context) CreateSampler(normalizedCoords bool, addressing native.AddressingMode,
	filter native.FilterMode) (*Sampler, error) {
	defer runtime.KeepAlive(c)
	id, err := c.res.id("Context.CreateSampler")
	if err != nil {
		return nil, err
	}
	samplerID, status := c.Binding().Driver().CreateSampler(id, normalizedCoords, addressing, filter)
	if err := siteCreateSampler.check(status); err != nil {
		return nil, err
	}
	return wrapSampler(c, samplerID), nil
}

// CreateProgram creates a program from its Source or from Binaries previously built for the same devices.
func (c *Context) CreateProgram(src ProgramSource) (*Program, error) {
	defer runtime.KeepAlive(c)
	defer runtime.KeepAlive(src)
	const op = "Context.CreateProgram"
	var (
		binaryIDs []native.Handle
		err       error
	)
	switch s := src.(type) {
	case Source:
	case Binaries:
		if binaryIDs, err = s.marshal(op); err != nil {
			return nil, err
		}
	case *Binaries:
		if s == nil {
			return nil, errorf(InvalidValue, op, "nil program binaries")
		}
		if binaryIDs, err = s.marshal(op); err != nil {
			return nil, err
		}
		src = *s
	default:
		return nil, errorf(InvalidValue, op, "invalid program source %T", src)
	}
	id, err := c.res.id(op)
	if err != nil {
		return nil, err
	}

	driver := c.Binding().Driver()
	var (
		programID native.Handle
		status    native.Status
	)
	if source, ok := src.(Source); ok {
		programID, status = driver.CreateProgramWithSource(id, []string{string(source)})
		err = siteCreateProgramWithSource.check(status)
	} else {
		bins := src.(Binaries)
		binaryStatus := make([]native.Status, len(bins.Blobs))
		programID, status = driver.CreateProgramWithBinary(id, binaryIDs, bins.Blobs, binaryStatus)
		err = siteCreateProgramWithBinary.check(status)
		if err != nil {
			klog.V(1).Infof("webcl[%s]: clCreateProgramWithBinary per device status: %v", c.Binding(), binaryStatus)
		}
	}
	if err != nil {
		return nil, err
	}
	return wrapProgram(c, programID), nil
}

// CreateUserEvent creates an event whose status is set by the host, see Event.SetUserEventStatus.
func (c *Context) CreateUserEvent() (*Event, error) {
	defer runtime.KeepAlive(c)
	id, err := c.res.id("Context.CreateUserEvent")
	if err != nil {
		return nil, err
	}
	eventID, status := c.Binding().Driver().CreateUserEvent(id)
	if err := siteCreateUserEvent.check(status); err != nil {
		return nil, err
	}
	return wrapEvent(c, eventID), nil
}

// GetSupportedImageFormats returns the image formats supported by the context for the given flags and
// image type (native.MemObjectImage2D or native.MemObjectImage3D).
func (c *Context) GetSupportedImageFormats(flags native.MemFlags, imageType native.MemObjectType) (
	[]ImageFormat, error) {
	defer runtime.KeepAlive(c)
	id, err := c.res.id("Context.GetSupportedImageFormats")
	if err != nil {
		return nil, err
	}
	driver := c.Binding().Driver()
	numFormats, status := driver.GetSupportedImageFormats(id, flags, imageType, nil)
	if err := siteCountSupportedImageFormats.check(status); err != nil {
		return nil, err
	}
	if numFormats == 0 {
		return nil, nil
	}
	formats := make([]ImageFormat, numFormats)
	numFormats, status = driver.GetSupportedImageFormats(id, flags, imageType, formats)
	if err := siteGetSupportedImageFormats.check(status); err != nil {
		return nil, err
	}
	return formats[:min(numFormats, len(formats))], nil
}
