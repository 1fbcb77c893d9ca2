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
	"strings"

	"github.com/gomlx/webcl/native"
	"k8s.io/klog/v2"
)

type buildResult struct {
	status  native.BuildStatus
	options string
	log     string
}

type program struct {
	refCounts
	ctx     *context
	devices []*device

	// source is empty for programs created from binaries.
	source   string
	binaries map[*device][]byte
	builds   map[*device]*buildResult

	// kernels of the last successful build, and number of kernel objects attached to the program.
	kernels    []kernelDecl
	executable bool
	attached   int
}

func (p *program) parents() []object { return []object{p.ctx} }
func (p *program) releaseFn() string { return "clReleaseProgram" }

func (p *program) findKernel(name string) (kernelDecl, bool) {
	for _, decl := range p.kernels {
		if decl.name == name {
			return decl, true
		}
	}
	return kernelDecl{}, false
}

type kernel struct {
	refCounts
	prog *program
	decl kernelDecl
}

func (k *kernel) parents() []object { return []object{k.prog} }
func (k *kernel) releaseFn() string { return "clReleaseKernel" }
func (k *kernel) destroy(*Driver)   { k.prog.attached-- }

// CreateProgramWithSource implements native.Driver. The program is associated with all context devices.
func (d *Driver) CreateProgramWithSource(ctxHandle native.Handle, sources []string) (native.Handle, native.Status) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if status := d.begin("clCreateProgramWithSource"); status != native.Success {
		return native.NilHandle, status
	}
	ctx, found := lookup[*context](d, ctxHandle)
	if !found {
		return native.NilHandle, native.InvalidContext
	}
	if len(sources) == 0 {
		return native.NilHandle, native.InvalidValue
	}
	for _, source := range sources {
		if source == "" {
			return native.NilHandle, native.InvalidValue
		}
	}
	return d.insert(&program{
		ctx:      ctx,
		devices:  ctx.devices,
		source:   strings.Join(sources, ""),
		binaries: make(map[*device][]byte),
		builds:   make(map[*device]*buildResult),
	}), native.Success
}

// CreateProgramWithBinary implements native.Driver.
func (d *Driver) CreateProgramWithBinary(ctxHandle native.Handle, deviceHandles []native.Handle, binaries [][]byte,
	binaryStatus []native.Status) (native.Handle, native.Status) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if status := d.begin("clCreateProgramWithBinary"); status != native.Success {
		return native.NilHandle, status
	}
	ctx, found := lookup[*context](d, ctxHandle)
	if !found {
		return native.NilHandle, native.InvalidContext
	}
	if len(deviceHandles) == 0 || len(binaries) != len(deviceHandles) {
		return native.NilHandle, native.InvalidValue
	}
	devices, ok := d.resolveDevices(deviceHandles, ctx.devices)
	if !ok {
		return native.NilHandle, native.InvalidDevice
	}
	for _, binary := range binaries {
		if len(binary) == 0 {
			return native.NilHandle, native.InvalidValue
		}
	}
	p := &program{
		ctx:      ctx,
		devices:  devices,
		binaries: make(map[*device][]byte, len(devices)),
		builds:   make(map[*device]*buildResult),
	}
	result := native.Success
	for ii, binary := range binaries {
		status := native.Success
		if _, valid := decodeBinary(binary); !valid {
			status = native.InvalidBinary
			result = native.InvalidBinary
		}
		if ii < len(binaryStatus) {
			binaryStatus[ii] = status
		}
		p.binaries[devices[ii]] = append([]byte(nil), binary...)
	}
	if result != native.Success {
		return native.NilHandle, result
	}
	return d.insert(p), native.Success
}

// programSource returns the source to build for dev.
func (p *program) programSource(dev *device) string {
	if p.source != "" {
		return p.source
	}
	source, _ := decodeBinary(p.binaries[dev])
	return source
}

// BuildProgram implements native.Driver. An empty devices list builds for all program devices.
func (d *Driver) BuildProgram(h native.Handle, deviceHandles []native.Handle, options string) native.Status {
	d.mu.Lock()
	defer d.mu.Unlock()
	if status := d.begin("clBuildProgram"); status != native.Success {
		return status
	}
	p, found := lookup[*program](d, h)
	if !found {
		return native.InvalidProgram
	}
	devices := p.devices
	if len(deviceHandles) > 0 {
		var ok bool
		devices, ok = d.resolveDevices(deviceHandles, p.devices)
		if !ok {
			return native.InvalidDevice
		}
	}
	if err := validateOptions(options); err != nil {
		klog.V(1).Infof("host driver: build of %s: %v", h, err)
		return native.InvalidBuildOptions
	}
	if p.attached > 0 {
		return native.InvalidOperation
	}
	result := native.Success
	for _, dev := range devices {
		source := p.programSource(dev)
		kernels, err := compile(source)
		if err != nil {
			p.builds[dev] = &buildResult{status: native.BuildError, options: options, log: err.Error()}
			result = native.BuildProgramFailure
			continue
		}
		p.builds[dev] = &buildResult{status: native.BuildSuccess, options: options, log: buildLog(kernels)}
		p.binaries[dev] = encodeBinary(source)
		p.kernels = kernels
		p.executable = true
	}
	return result
}

// GetProgramInfo implements native.Driver. Use GetProgramBinaries for CL_PROGRAM_BINARIES.
func (d *Driver) GetProgramInfo(h native.Handle, param native.ProgramInfo, value []byte) (int, native.Status) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if status := d.begin("clGetProgramInfo"); status != native.Success {
		return 0, status
	}
	p, found := lookup[*program](d, h)
	if !found {
		return 0, native.InvalidProgram
	}
	var data []byte
	switch param {
	case native.ProgramReferenceCount:
		data = encodeUint32(uint32(p.user))
	case native.ProgramContext:
		data = encodeHandles(p.ctx.h)
	case native.ProgramNumDevices:
		data = encodeUint32(uint32(len(p.devices)))
	case native.ProgramDevices:
		data = encodeHandles(deviceHandles(p.devices)...)
	case native.ProgramSource:
		data = encodeString(p.source)
	case native.ProgramBinarySizes:
		sizes := make([]uint64, len(p.devices))
		for ii, dev := range p.devices {
			sizes[ii] = uint64(len(p.binaries[dev]))
		}
		data = encodeSizes(sizes...)
	default:
		return 0, native.InvalidValue
	}
	return answer(data, value)
}

// GetProgramBinaries implements native.Driver.
func (d *Driver) GetProgramBinaries(h native.Handle, binaries [][]byte) native.Status {
	d.mu.Lock()
	defer d.mu.Unlock()
	if status := d.begin("clGetProgramInfo"); status != native.Success {
		return status
	}
	p, found := lookup[*program](d, h)
	if !found {
		return native.InvalidProgram
	}
	if len(binaries) != len(p.devices) {
		return native.InvalidValue
	}
	for ii, dev := range p.devices {
		if binaries[ii] == nil {
			continue
		}
		if len(binaries[ii]) < len(p.binaries[dev]) {
			return native.InvalidValue
		}
		copy(binaries[ii], p.binaries[dev])
	}
	return native.Success
}

// GetProgramBuildInfo implements native.Driver.
func (d *Driver) GetProgramBuildInfo(h, devHandle native.Handle, param native.ProgramBuildInfo, value []byte) (
	int, native.Status) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if status := d.begin("clGetProgramBuildInfo"); status != native.Success {
		return 0, status
	}
	p, found := lookup[*program](d, h)
	if !found {
		return 0, native.InvalidProgram
	}
	devices, ok := d.resolveDevices([]native.Handle{devHandle}, p.devices)
	if !ok {
		return 0, native.InvalidDevice
	}
	build := p.builds[devices[0]]
	if build == nil {
		build = &buildResult{status: native.BuildNone}
	}
	var data []byte
	switch param {
	case native.ProgramBuildStatus:
		data = encodeInt32(int32(build.status))
	case native.ProgramBuildOptions:
		data = encodeString(build.options)
	case native.ProgramBuildLog:
		data = encodeString(build.log)
	default:
		return 0, native.InvalidValue
	}
	return answer(data, value)
}

// ReleaseProgram implements native.Driver.
func (d *Driver) ReleaseProgram(h native.Handle) native.Status {
	return release[*program](d, "clReleaseProgram", h, native.InvalidProgram)
}

func (d *Driver) newKernel(p *program, decl kernelDecl) native.Handle {
	p.attached++
	return d.insert(&kernel{prog: p, decl: decl})
}

// CreateKernel implements native.Driver.
func (d *Driver) CreateKernel(programHandle native.Handle, name string) (native.Handle, native.Status) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if status := d.begin("clCreateKernel"); status != native.Success {
		return native.NilHandle, status
	}
	p, found := lookup[*program](d, programHandle)
	if !found {
		return native.NilHandle, native.InvalidProgram
	}
	if !p.executable {
		return native.NilHandle, native.InvalidProgramExecutable
	}
	if name == "" {
		return native.NilHandle, native.InvalidValue
	}
	decl, found := p.findKernel(name)
	if !found {
		return native.NilHandle, native.InvalidKernelName
	}
	return d.newKernel(p, decl), native.Success
}

// CreateKernelsInProgram implements native.Driver. With nil kernels it only returns the number of kernels.
func (d *Driver) CreateKernelsInProgram(programHandle native.Handle, kernels []native.Handle) (int, native.Status) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if status := d.begin("clCreateKernelsInProgram"); status != native.Success {
		return 0, status
	}
	p, found := lookup[*program](d, programHandle)
	if !found {
		return 0, native.InvalidProgram
	}
	if !p.executable {
		return 0, native.InvalidProgramExecutable
	}
	if kernels != nil {
		if len(kernels) < len(p.kernels) {
			return 0, native.InvalidValue
		}
		for ii, decl := range p.kernels {
			kernels[ii] = d.newKernel(p, decl)
		}
	}
	return len(p.kernels), native.Success
}

// GetKernelInfo implements native.Driver.
func (d *Driver) GetKernelInfo(h native.Handle, param native.KernelInfo, value []byte) (int, native.Status) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if status := d.begin("clGetKernelInfo"); status != native.Success {
		return 0, status
	}
	k, found := lookup[*kernel](d, h)
	if !found {
		return 0, native.InvalidKernel
	}
	var data []byte
	switch param {
	case native.KernelFunctionName:
		data = encodeString(k.decl.name)
	case native.KernelNumArgs:
		data = encodeUint32(uint32(len(k.decl.args)))
	case native.KernelReferenceCount:
		data = encodeUint32(uint32(k.user))
	case native.KernelContext:
		data = encodeHandles(k.prog.ctx.h)
	case native.KernelProgram:
		data = encodeHandles(k.prog.h)
	default:
		return 0, native.InvalidValue
	}
	return answer(data, value)
}

// GetKernelWorkGroupInfo implements native.Driver. The device may be omitted if the program has only one.
func (d *Driver) GetKernelWorkGroupInfo(h, devHandle native.Handle, param native.KernelWorkGroupInfo,
	value []byte) (int, native.Status) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if status := d.begin("clGetKernelWorkGroupInfo"); status != native.Success {
		return 0, status
	}
	k, found := lookup[*kernel](d, h)
	if !found {
		return 0, native.InvalidKernel
	}
	if devHandle == native.NilHandle {
		if len(k.prog.devices) != 1 {
			return 0, native.InvalidDevice
		}
	} else if _, ok := d.resolveDevices([]native.Handle{devHandle}, k.prog.devices); !ok {
		return 0, native.InvalidDevice
	}
	var data []byte
	switch param {
	case native.KernelWorkGroupSize:
		data = encodeSize(maxWorkGroup)
	case native.KernelCompileWorkGroupSize:
		data = encodeSizes(0, 0, 0)
	case native.KernelLocalMemSize:
		data = encodeUint64(0)
	case native.KernelPreferredWorkGroupSizeMultiple:
		data = encodeSize(1)
	case native.KernelPrivateMemSize:
		data = encodeUint64(0)
	default:
		return 0, native.InvalidValue
	}
	return answer(data, value)
}

// SetKernelArg implements native.Driver.
func (d *Driver) SetKernelArg(h native.Handle, index int, size int, value []byte) native.Status {
	d.mu.Lock()
	defer d.mu.Unlock()
	if status := d.begin("clSetKernelArg"); status != native.Success {
		return status
	}
	k, found := lookup[*kernel](d, h)
	if !found {
		return native.InvalidKernel
	}
	if index < 0 || index >= len(k.decl.args) {
		return native.InvalidArgIndex
	}
	return d.validateArg(k.decl.args[index], size, value)
}

func (d *Driver) validateArg(arg argDecl, size int, value []byte) native.Status {
	switch arg.kind {
	case argLocal:
		if value != nil {
			return native.InvalidArgValue
		}
		if size == 0 {
			return native.InvalidArgSize
		}
	case argGlobal, argImage:
		if size != native.SizeTBytes {
			return native.InvalidArgSize
		}
		if value == nil {
			if arg.kind == argImage {
				return native.InvalidArgValue
			}
			// NULL buffer.
			return native.Success
		}
		if len(value) < size {
			return native.InvalidArgValue
		}
		mem, found := lookup[*memObject](d, decodeHandle(value))
		if !found || (arg.kind == argImage) == (mem.memType == native.MemObjectBuffer) {
			return native.InvalidMemObject
		}
	case argSampler:
		if size != native.SizeTBytes {
			return native.InvalidArgSize
		}
		if value == nil || len(value) < size {
			return native.InvalidArgValue
		}
		if _, found := lookup[*sampler](d, decodeHandle(value)); !found {
			return native.InvalidSampler
		}
	default:
		if value == nil || len(value) < size {
			return native.InvalidArgValue
		}
		if arg.size != 0 && size != arg.size {
			return native.InvalidArgSize
		}
	}
	return native.Success
}

// ReleaseKernel implements native.Driver.
func (d *Driver) ReleaseKernel(h native.Handle) native.Status {
	return release[*kernel](d, "clReleaseKernel", h, native.InvalidKernel)
}
