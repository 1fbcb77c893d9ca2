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
	"fmt"

	"github.com/gomlx/webcl/native"
)

const (
	clVersion       = "OpenCL 1.1 hostcl"
	vendorName      = "GoMLX"
	vendorID        = 0x60a1
	maxWorkGroup    = 1024
	image2DMaxSize  = 8192
	image3DMaxSize  = 2048
	globalMemFactor = 4 // Global memory is reported as this multiple of the max allocation size.
)

// GetPlatformIDs implements native.Driver. There is always exactly one platform.
func (d *Driver) GetPlatformIDs(platforms []native.Handle) (int, native.Status) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if status := d.begin("clGetPlatformIDs"); status != native.Success {
		return 0, status
	}
	if platforms != nil && len(platforms) == 0 {
		return 0, native.InvalidValue
	}
	if len(platforms) > 0 {
		platforms[0] = d.platform.h
	}
	return 1, native.Success
}

// GetPlatformInfo implements native.Driver.
func (d *Driver) GetPlatformInfo(h native.Handle, param native.PlatformInfo, value []byte) (int, native.Status) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if status := d.begin("clGetPlatformInfo"); status != native.Success {
		return 0, status
	}
	if h != d.platform.h && h != native.NilHandle {
		return 0, native.InvalidPlatform
	}
	var data string
	switch param {
	case native.PlatformProfile:
		data = "FULL_PROFILE"
	case native.PlatformVersion:
		data = clVersion
	case native.PlatformName:
		data = d.cfg.PlatformName
	case native.PlatformVendor:
		data = vendorName
	case native.PlatformExtensions:
		data = ""
	default:
		return 0, native.InvalidValue
	}
	return answer(encodeString(data), value)
}

// deviceType of the device: the first one is reported as a GPU, the others as CPUs.
func (dev *device) deviceType() native.DeviceType {
	if dev.index == 0 {
		return native.DeviceTypeGPU
	}
	return native.DeviceTypeCPU
}

// matchDevices returns the devices of the given type, or InvalidDeviceType if the type is not valid.
func (d *Driver) matchDevices(deviceType native.DeviceType) ([]*device, native.Status) {
	const validTypes = native.DeviceTypeDefault | native.DeviceTypeCPU | native.DeviceTypeGPU |
		native.DeviceTypeAccelerator
	if deviceType == native.DeviceTypeAll {
		return d.devices, native.Success
	}
	if deviceType == 0 || deviceType&^validTypes != 0 {
		return nil, native.InvalidDeviceType
	}
	var matched []*device
	for _, dev := range d.devices {
		if dev.deviceType()&deviceType != 0 || (deviceType&native.DeviceTypeDefault != 0 && dev.index == 0) {
			matched = append(matched, dev)
		}
	}
	return matched, native.Success
}

// GetDeviceIDs implements native.Driver.
func (d *Driver) GetDeviceIDs(platformHandle native.Handle, deviceType native.DeviceType,
	devices []native.Handle) (int, native.Status) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if status := d.begin("clGetDeviceIDs"); status != native.Success {
		return 0, status
	}
	if platformHandle != d.platform.h && platformHandle != native.NilHandle {
		return 0, native.InvalidPlatform
	}
	matched, status := d.matchDevices(deviceType)
	if status != native.Success {
		return 0, status
	}
	if devices != nil && len(devices) == 0 {
		return 0, native.InvalidValue
	}
	if len(matched) == 0 {
		return 0, native.DeviceNotFound
	}
	for ii := 0; ii < len(devices) && ii < len(matched); ii++ {
		devices[ii] = matched[ii].h
	}
	return len(matched), native.Success
}

// GetDeviceInfo implements native.Driver.
func (d *Driver) GetDeviceInfo(h native.Handle, param native.DeviceInfo, value []byte) (int, native.Status) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if status := d.begin("clGetDeviceInfo"); status != native.Success {
		return 0, status
	}
	dev, found := d.findDevice(h)
	if !found {
		return 0, native.InvalidDevice
	}
	var data []byte
	switch param {
	case native.DeviceInfoType:
		data = encodeUint64(uint64(dev.deviceType()))
	case native.DeviceVendorID:
		data = encodeUint32(vendorID)
	case native.DeviceMaxComputeUnits:
		data = encodeUint32(uint32(4 * (dev.index + 1)))
	case native.DeviceMaxWorkGroupSize:
		data = encodeSize(maxWorkGroup)
	case native.DeviceMaxMemAllocSize:
		data = encodeUint64(uint64(d.cfg.MaxAllocSize))
	case native.DeviceGlobalMemSize:
		data = encodeUint64(uint64(d.cfg.MaxAllocSize) * globalMemFactor)
	case native.DeviceImage2DMaxWidth, native.DeviceImage2DMaxHeight:
		data = encodeSize(d.imageMax(image2DMaxSize))
	case native.DeviceImage3DMaxWidth, native.DeviceImage3DMaxHeight, native.DeviceImage3DMaxDepth:
		data = encodeSize(d.imageMax(image3DMaxSize))
	case native.DeviceImageSupport:
		data = encodeBool(d.cfg.ImageSupport)
	case native.DeviceQueueProperties:
		props := native.QueueProfilingEnable
		if d.cfg.OutOfOrder {
			props |= native.QueueOutOfOrderExecModeEnable
		}
		data = encodeUint64(uint64(props))
	case native.DeviceName:
		data = encodeString(fmt.Sprintf("Host Device #%d", dev.index))
	case native.DeviceVendor:
		data = encodeString(vendorName)
	case native.DeviceDriverVersion:
		data = encodeString("1.0")
	case native.DeviceProfile:
		data = encodeString("FULL_PROFILE")
	case native.DeviceVersion:
		data = encodeString(clVersion)
	case native.DeviceExtensions:
		data = encodeString("")
	case native.DevicePlatform:
		data = encodeHandles(d.platform.h)
	case native.DeviceAvailable, native.DeviceCompilerAvailable:
		data = encodeBool(true)
	default:
		return 0, native.InvalidValue
	}
	return answer(data, value)
}

// imageMax returns limit if images are supported, 0 otherwise.
func (d *Driver) imageMax(limit int) int {
	if !d.cfg.ImageSupport {
		return 0
	}
	return limit
}
