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

	"github.com/gomlx/webcl/native"
)

// Device is a compute device of a Platform.
//
// Devices are interned by their Binding: the same native device is always represented by the same
// wrapper. Releasing them is a no-op on the native side.
type Device struct {
	object
	child[Platform]
}

var deviceInfoTypes = map[native.DeviceInfo]infoType{
	native.DeviceInfoType:          infoUint64,
	native.DeviceVendorID:          infoUint32,
	native.DeviceMaxComputeUnits:   infoUint32,
	native.DeviceMaxWorkGroupSize:  infoSize,
	native.DeviceMaxMemAllocSize:   infoUint64,
	native.DeviceGlobalMemSize:     infoUint64,
	native.DeviceImage2DMaxWidth:   infoSize,
	native.DeviceImage2DMaxHeight:  infoSize,
	native.DeviceImage3DMaxWidth:   infoSize,
	native.DeviceImage3DMaxHeight:  infoSize,
	native.DeviceImage3DMaxDepth:   infoSize,
	native.DeviceImageSupport:      infoBool,
	native.DeviceAvailable:         infoBool,
	native.DeviceCompilerAvailable: infoBool,
	native.DeviceQueueProperties:   infoUint64,
	native.DeviceName:              infoString,
	native.DeviceVendor:            infoString,
	native.DeviceDriverVersion:     infoString,
	native.DeviceProfile:           infoString,
	native.DeviceVersion:           infoString,
	native.DeviceExtensions:        infoString,
	native.DevicePlatform:          infoHandle,
}

// GetInfo returns the value of the device parameter: uint32, uint64, int (size_t), bool or string
// depending on the parameter. DevicePlatform returns the *Platform.
func (d *Device) GetInfo(param native.DeviceInfo) (any, error) {
	defer runtime.KeepAlive(d)
	const op = "Device.GetInfo"
	t, found := deviceInfoTypes[param]
	if !found {
		return nil, errorf(InvalidParameter, op, "unknown device info 0x%X", uint32(param))
	}
	id, err := d.res.id(op)
	if err != nil {
		return nil, err
	}
	driver := d.Binding().Driver()
	value, err := queryInfo(siteGetDeviceInfo, t, func(value []byte) (int, native.Status) {
		return driver.GetDeviceInfo(id, param, value)
	})
	if err != nil {
		return nil, err
	}
	if param == native.DevicePlatform {
		if p := d.Parent(); p != nil && !p.Released() {
			return p, nil
		}
		return d.Binding().internPlatform(value.(native.Handle)), nil
	}
	return value, nil
}

// Name of the device.
func (d *Device) Name() (string, error) {
	return infoAs[string](d.GetInfo(native.DeviceName))
}

// Type of the device.
func (d *Device) Type() (native.DeviceType, error) {
	t, err := infoAs[uint64](d.GetInfo(native.DeviceInfoType))
	return native.DeviceType(t), err
}

// ImageSupport returns whether the device supports images.
func (d *Device) ImageSupport() (bool, error) {
	return infoAs[bool](d.GetInfo(native.DeviceImageSupport))
}

// MaxMemAllocSize is the maximum size of a memory object in the device.
func (d *Device) MaxMemAllocSize() (uint64, error) {
	return infoAs[uint64](d.GetInfo(native.DeviceMaxMemAllocSize))
}

// Platform of the device.
func (d *Device) Platform() (*Platform, error) {
	return infoAs[*Platform](d.GetInfo(native.DevicePlatform))
}
