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
	"github.com/pkg/errors"
	"k8s.io/klog/v2"
)

// Program is a set of kernels, created from source or binaries, and built for some of the context devices.
type Program struct {
	object
	child[Context]
}

var programInfoTypes = map[native.ProgramInfo]infoType{
	native.ProgramReferenceCount: infoUint32,
	native.ProgramContext:        infoHandle,
	native.ProgramNumDevices:     infoUint32,
	native.ProgramDevices:        infoHandles,
	native.ProgramSource:         infoString,
	native.ProgramBinarySizes:    infoSizes,
}

// GetInfo returns the value of the program parameter: ProgramContext returns the *Context, ProgramDevices
// a []*Device, ProgramSource a string, ProgramBinarySizes an []int, the others an uint32.
// Use Binaries for the program binaries.
func (p *Program) GetInfo(param native.ProgramInfo) (any, error) {
	defer runtime.KeepAlive(p)
	const op = "Program.GetInfo"
	t, found := programInfoTypes[param]
	if !found {
		return nil, errorf(InvalidParameter, op, "unknown program info 0x%X", uint32(param))
	}
	id, err := p.res.id(op)
	if err != nil {
		return nil, err
	}
	driver := p.Binding().Driver()
	value, err := queryInfo(siteGetProgramInfo, t, func(value []byte) (int, native.Status) {
		return driver.GetProgramInfo(id, param, value)
	})
	if err != nil {
		return nil, err
	}
	switch param {
	case native.ProgramContext:
		return p.Parent(), nil
	case native.ProgramDevices:
		return p.Binding().internDevices(value.([]native.Handle), nil)
	}
	return value, nil
}

// Devices the program is associated with.
func (p *Program) Devices() ([]*Device, error) {
	return infoAs[[]*Device](p.GetInfo(native.ProgramDevices))
}

// Source of the program, empty if created from binaries.
func (p *Program) Source() (string, error) {
	return infoAs[string](p.GetInfo(native.ProgramSource))
}

// Binaries returns the program binaries for each of its devices, which can be used to create the same
// program with Context.CreateProgram. Devices for which the program wasn't built have an empty binary.
func (p *Program) Binaries() (Binaries, error) {
	defer runtime.KeepAlive(p)
	const op = "Program.Binaries"
	devices, err := p.Devices()
	if err != nil {
		return Binaries{}, err
	}
	sizes, err := infoAs[[]int](p.GetInfo(native.ProgramBinarySizes))
	if err != nil {
		return Binaries{}, err
	}
	if len(sizes) != len(devices) {
		return Binaries{}, errors.WithStack(&Error{Kind: UnknownNativeError, Op: op,
			Msg: "number of binary sizes doesn't match number of devices"})
	}
	id, err := p.res.id(op)
	if err != nil {
		return Binaries{}, err
	}
	blobs := make([][]byte, len(sizes))
	for ii, size := range sizes {
		if size > 0 {
			blobs[ii] = make([]byte, size)
		}
	}
	if err := siteGetProgramInfo.check(p.Binding().Driver().GetProgramBinaries(id, blobs)); err != nil {
		return Binaries{}, err
	}
	return Binaries{Devices: devices, Blobs: blobs}, nil
}

// Build (compile and link) the program for devices, or for all the program devices if devices is empty.
// If the build fails, the build log is available with BuildLog.
func (p *Program) Build(devices []*Device, options string) error {
	defer runtime.KeepAlive(p)
	const op = "Program.Build"
	ids, err := unwrapDevices(op, devices)
	if err != nil {
		return err
	}
	id, err := p.res.id(op)
	if err != nil {
		return err
	}
	if len(ids) == 0 {
		ids = nil
	}
	err = siteBuildProgram.check(p.Binding().Driver().BuildProgram(id, ids, options))
	if err != nil && IsKind(err, BuildProgramFailure) && klog.V(1).Enabled() {
		if len(devices) == 0 {
			devices, _ = p.Devices()
		}
		for _, d := range devices {
			if log, logErr := p.BuildLog(d); logErr == nil && log != "" {
				klog.Infof("webcl[%s]: build log for %s:\n%s", p.Binding(), d, log)
			}
		}
	}
	return err
}

var programBuildInfoTypes = map[native.ProgramBuildInfo]infoType{
	native.ProgramBuildStatus:  infoInt32,
	native.ProgramBuildOptions: infoString,
	native.ProgramBuildLog:     infoString,
}

// GetBuildInfo returns the build information of the program for device: ProgramBuildStatus returns a
// native.BuildStatus, the others a string.
func (p *Program) GetBuildInfo(device *Device, param native.ProgramBuildInfo) (any, error) {
	defer runtime.KeepAlive(p)
	defer runtime.KeepAlive(device)
	const op = "Program.GetBuildInfo"
	t, found := programBuildInfoTypes[param]
	if !found {
		return nil, errorf(InvalidParameter, op, "unknown program build info 0x%X", uint32(param))
	}
	if device == nil {
		return nil, errorf(InvalidDevice, op, "nil device")
	}
	deviceID, err := device.res.id(op)
	if err != nil {
		return nil, err
	}
	id, err := p.res.id(op)
	if err != nil {
		return nil, err
	}
	driver := p.Binding().Driver()
	value, err := queryInfo(siteGetProgramBuildInfo, t, func(value []byte) (int, native.Status) {
		return driver.GetProgramBuildInfo(id, deviceID, param, value)
	})
	if err != nil {
		return nil, err
	}
	if param == native.ProgramBuildStatus {
		return native.BuildStatus(value.(int32)), nil
	}
	return value, nil
}

// BuildStatus of the program for device.
func (p *Program) BuildStatus(device *Device) (native.BuildStatus, error) {
	return infoAs[native.BuildStatus](p.GetBuildInfo(device, native.ProgramBuildStatus))
}

// BuildLog of the last build of the program for device.
func (p *Program) BuildLog(device *Device) (string, error) {
	return infoAs[string](p.GetBuildInfo(device, native.ProgramBuildLog))
}

// CreateKernel creates the kernel with the given name. The program must have been built.
func (p *Program) CreateKernel(name string) (*Kernel, error) {
	defer runtime.KeepAlive(p)
	id, err := p.res.id("Program.CreateKernel")
	if err != nil {
		return nil, err
	}
	kernelID, status := p.Binding().Driver().CreateKernel(id, name)
	if err := siteCreateKernel.check(status); err != nil {
		return nil, err
	}
	return wrapKernel(p, kernelID), nil
}

// CreateKernelsInProgram creates one kernel for each kernel function in the program.
func (p *Program) CreateKernelsInProgram() ([]*Kernel, error) {
	defer runtime.KeepAlive(p)
	id, err := p.res.id("Program.CreateKernelsInProgram")
	if err != nil {
		return nil, err
	}
	driver := p.Binding().Driver()
	numKernels, status := driver.CreateKernelsInProgram(id, nil)
	if err := siteCreateKernelsInProgram.check(status); err != nil {
		return nil, err
	}
	if numKernels == 0 {
		return nil, nil
	}
	ids := make([]native.Handle, numKernels)
	numKernels, status = driver.CreateKernelsInProgram(id, ids)
	if err := siteCreateKernelsInProgram.check(status); err != nil {
		return nil, err
	}
	kernels := make([]*Kernel, 0, numKernels)
	for _, kernelID := range ids[:numKernels] {
		kernels = append(kernels, wrapKernel(p, kernelID))
	}
	return kernels, nil
}
