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

// Platform is an implementation of the native API (a vendor's driver), with its devices.
//
// Platforms are interned by their Binding. Releasing them is a no-op on the native side.
type Platform struct {
	object
}

// GetInfo returns the value of the platform parameter. All platform parameters are strings.
func (p *Platform) GetInfo(param native.PlatformInfo) (any, error) {
	defer runtime.KeepAlive(p)
	const op = "Platform.GetInfo"
	switch param {
	case native.PlatformProfile, native.PlatformVersion, native.PlatformName, native.PlatformVendor,
		native.PlatformExtensions:
	default:
		return nil, errorf(InvalidParameter, op, "unknown platform info 0x%X", uint32(param))
	}
	id, err := p.res.id(op)
	if err != nil {
		return nil, err
	}
	driver := p.Binding().Driver()
	return queryInfo(siteGetPlatformInfo, infoString, func(value []byte) (int, native.Status) {
		return driver.GetPlatformInfo(id, param, value)
	})
}

// Name of the platform.
func (p *Platform) Name() (string, error) {
	return infoAs[string](p.GetInfo(native.PlatformName))
}

// Version of the platform, e.g. "OpenCL 1.1 ...".
func (p *Platform) Version() (string, error) {
	return infoAs[string](p.GetInfo(native.PlatformVersion))
}

// Vendor of the platform.
func (p *Platform) Vendor() (string, error) {
	return infoAs[string](p.GetInfo(native.PlatformVendor))
}

// Devices of the platform matching deviceType (e.g. native.DeviceTypeAll).
func (p *Platform) Devices(deviceType native.DeviceType) ([]*Device, error) {
	defer runtime.KeepAlive(p)
	id, err := p.res.id("Platform.Devices")
	if err != nil {
		return nil, err
	}
	driver := p.Binding().Driver()
	numDevices, status := driver.GetDeviceIDs(id, deviceType, nil)
	if err := siteGetDeviceIDs.check(status); err != nil {
		return nil, err
	}
	if numDevices == 0 {
		return nil, nil
	}
	ids := make([]native.Handle, numDevices)
	if _, status = driver.GetDeviceIDs(id, deviceType, ids); status != native.Success {
		return nil, siteGetDeviceIDs.check(status)
	}
	return p.Binding().internDevices(ids, p)
}
