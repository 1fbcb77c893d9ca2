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
	"k8s.io/klog/v2"
)

// Kernel is a kernel function of a Program, with its arguments.
type Kernel struct {
	object
	child[Program]
}

var kernelInfoTypes = map[native.KernelInfo]infoType{
	native.KernelFunctionName:   infoString,
	native.KernelNumArgs:        infoUint32,
	native.KernelReferenceCount: infoUint32,
	native.KernelContext:        infoHandle,
	native.KernelProgram:        infoHandle,
}

// GetInfo returns the value of the kernel parameter: KernelProgram returns the *Program, KernelContext the
// *Context, KernelFunctionName a string, the others an uint32.
func (k *Kernel) GetInfo(param native.KernelInfo) (any, error) {
	defer runtime.KeepAlive(k)
	const op = "Kernel.GetInfo"
	t, found := kernelInfoTypes[param]
	if !found {
		return nil, errorf(InvalidParameter, op, "unknown kernel info 0x%X", uint32(param))
	}
	id, err := k.res.id(op)
	if err != nil {
		return nil, err
	}
	driver := k.Binding().Driver()
	value, err := queryInfo(siteGetKernelInfo, t, func(value []byte) (int, native.Status) {
		return driver.GetKernelInfo(id, param, value)
	})
	if err != nil {
		return nil, err
	}
	switch param {
	case native.KernelProgram:
		return k.Parent(), nil
	case native.KernelContext:
		if program := k.Parent(); program != nil {
			return program.Parent(), nil
		}
		return (*Context)(nil), nil
	}
	return value, nil
}

// FunctionName of the kernel.
func (k *Kernel) FunctionName() (string, error) {
	return infoAs[string](k.GetInfo(native.KernelFunctionName))
}

// NumArgs returns the number of arguments of the kernel.
func (k *Kernel) NumArgs() (int, error) {
	n, err := infoAs[uint32](k.GetInfo(native.KernelNumArgs))
	return int(n), err
}

var kernelWorkGroupInfoTypes = map[native.KernelWorkGroupInfo]infoType{
	native.KernelWorkGroupSize:                  infoSize,
	native.KernelCompileWorkGroupSize:           infoSizes,
	native.KernelLocalMemSize:                   infoUint64,
	native.KernelPreferredWorkGroupSizeMultiple: infoSize,
	native.KernelPrivateMemSize:                 infoUint64,
}

// GetWorkGroupInfo returns work-group information of the kernel for device: KernelCompileWorkGroupSize
// returns an []int, the memory sizes an uint64, the others an int.
//
// device may be nil if the kernel's program is associated with only one device.
func (k *Kernel) GetWorkGroupInfo(device *Device, param native.KernelWorkGroupInfo) (any, error) {
	defer runtime.KeepAlive(k)
	defer runtime.KeepAlive(device)
	const op = "Kernel.GetWorkGroupInfo"
	t, found := kernelWorkGroupInfoTypes[param]
	if !found {
		return nil, errorf(InvalidParameter, op, "unknown kernel work-group info 0x%X", uint32(param))
	}
	deviceID := native.NilHandle
	if device != nil {
		var err error
		if deviceID, err = device.res.id(op); err != nil {
			return nil, err
		}
	}
	id, err := k.res.id(op)
	if err != nil {
		return nil, err
	}
	driver := k.Binding().Driver()
	return queryInfo(siteGetKernelWorkGroupInfo, t, func(value []byte) (int, native.Status) {
		return driver.GetKernelWorkGroupInfo(id, deviceID, param, value)
	})
}

// SetArg sets the value of the kernel argument at index.
func (k *Kernel) SetArg(index int, arg KernelArg) error {
	defer runtime.KeepAlive(k)
	defer runtime.KeepAlive(arg)
	const op = "Kernel.SetArg"
	if index < 0 {
		return errorf(InvalidArgIndex, op, "negative argument index %d", index)
	}
	if arg == nil {
		return errorf(InvalidValue, op, "nil argument #%d", index)
	}
	size, value, err := arg.marshalArg(op)
	if err != nil {
		return err
	}
	id, err := k.res.id(op)
	if err != nil {
		return err
	}
	klog.V(2).Infof("webcl[%s]: clSetKernelArg(%s, %d, %s) with %d bytes", k.Binding(), id, index, arg, size)
	return siteSetKernelArg.check(k.Binding().Driver().SetKernelArg(id, index, size, value))
}
