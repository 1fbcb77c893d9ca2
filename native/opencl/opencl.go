//go:build opencl

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

package opencl

/*
#cgo CFLAGS: -DCL_TARGET_OPENCL_VERSION=110 -DCL_USE_DEPRECATED_OPENCL_1_1_APIS
#cgo linux LDFLAGS: -lOpenCL
#cgo darwin LDFLAGS: -framework OpenCL
#ifdef __APPLE__
#include <OpenCL/opencl.h>
#else
#include <CL/cl.h>
#endif
#include <stdlib.h>
*/
import "C"

import (
	"runtime"
	"sync"
	"unsafe"

	"github.com/gomlx/webcl/native"
	"github.com/pkg/errors"
	"k8s.io/klog/v2"
)

func init() {
	native.Register(DriverName, func(config string) (native.Driver, error) {
		if config != "" {
			return nil, errors.Errorf("opencl driver takes no configuration, got %q", config)
		}
		return New(), nil
	})
}

// Driver implements native.Driver with cgo calls to the system OpenCL library.
type Driver struct {
	muPinned sync.Mutex
	pinned   map[native.Handle]*runtime.Pinner
}

var _ native.Driver = (*Driver)(nil)

// New returns a new Driver. All drivers share the same underlying OpenCL library.
func New() *Driver {
	return &Driver{pinned: make(map[native.Handle]*runtime.Pinner)}
}

// Name implements native.Driver.
func (d *Driver) Name() string { return DriverName }

func status(err C.cl_int) native.Status { return native.Status(err) }

// ptr converts a handle to the opaque pointer the C API expects.
func ptr(h native.Handle) unsafe.Pointer {
	return unsafe.Pointer(h) //nolint:govet // Handles are C owned pointers.
}

func handle(p unsafe.Pointer) native.Handle { return native.Handle(uintptr(p)) }

// handlesPtr returns a pointer to the first handle, or nil. Handles have the layout of C pointers.
func handlesPtr(handles []native.Handle) unsafe.Pointer {
	if len(handles) == 0 {
		return nil
	}
	return unsafe.Pointer(&handles[0])
}

func bytesPtr(value []byte) unsafe.Pointer {
	if len(value) == 0 {
		return nil
	}
	return unsafe.Pointer(&value[0])
}

// query implements the native.Driver query convention on top of a clGet*Info call.
func query(value []byte, call func(size C.size_t, value unsafe.Pointer, sizeRet *C.size_t) C.cl_int) (
	int, native.Status) {
	var sizeRet C.size_t
	err := call(C.size_t(len(value)), bytesPtr(value), &sizeRet)
	return int(sizeRet), status(err)
}

// GetPlatformIDs implements native.Driver.
func (d *Driver) GetPlatformIDs(platforms []native.Handle) (int, native.Status) {
	var num C.cl_uint
	err := C.clGetPlatformIDs(C.cl_uint(len(platforms)), (*C.cl_platform_id)(handlesPtr(platforms)), &num)
	return int(num), status(err)
}

// GetPlatformInfo implements native.Driver.
func (d *Driver) GetPlatformInfo(h native.Handle, param native.PlatformInfo, value []byte) (int, native.Status) {
	return query(value, func(size C.size_t, v unsafe.Pointer, sizeRet *C.size_t) C.cl_int {
		return C.clGetPlatformInfo(C.cl_platform_id(ptr(h)), C.cl_platform_info(param), size, v, sizeRet)
	})
}

// GetDeviceIDs implements native.Driver.
func (d *Driver) GetDeviceIDs(platform native.Handle, deviceType native.DeviceType, devices []native.Handle) (
	int, native.Status) {
	var num C.cl_uint
	err := C.clGetDeviceIDs(C.cl_platform_id(ptr(platform)), C.cl_device_type(deviceType),
		C.cl_uint(len(devices)), (*C.cl_device_id)(handlesPtr(devices)), &num)
	return int(num), status(err)
}

// GetDeviceInfo implements native.Driver.
func (d *Driver) GetDeviceInfo(h native.Handle, param native.DeviceInfo, value []byte) (int, native.Status) {
	return query(value, func(size C.size_t, v unsafe.Pointer, sizeRet *C.size_t) C.cl_int {
		return C.clGetDeviceInfo(C.cl_device_id(ptr(h)), C.cl_device_info(param), size, v, sizeRet)
	})
}

// contextProperties returns the zero terminated C properties list, or nil if there are none.
func contextProperties(properties []native.ContextProperty) *C.cl_context_properties {
	if len(properties) == 0 {
		return nil
	}
	list := make([]C.cl_context_properties, 0, 2*len(properties)+1)
	for _, prop := range properties {
		list = append(list, C.cl_context_properties(prop.Name), C.cl_context_properties(prop.Value))
	}
	list = append(list, 0)
	return &list[0]
}

// CreateContext implements native.Driver.
func (d *Driver) CreateContext(properties []native.ContextProperty, devices []native.Handle) (
	native.Handle, native.Status) {
	var err C.cl_int
	ctx := C.clCreateContext(contextProperties(properties), C.cl_uint(len(devices)),
		(*C.cl_device_id)(handlesPtr(devices)), nil, nil, &err)
	return handle(unsafe.Pointer(ctx)), status(err)
}

// CreateContextFromType implements native.Driver.
func (d *Driver) CreateContextFromType(properties []native.ContextProperty, deviceType native.DeviceType) (
	native.Handle, native.Status) {
	var err C.cl_int
	ctx := C.clCreateContextFromType(contextProperties(properties), C.cl_device_type(deviceType), nil, nil, &err)
	return handle(unsafe.Pointer(ctx)), status(err)
}

// GetContextInfo implements native.Driver.
func (d *Driver) GetContextInfo(h native.Handle, param native.ContextInfo, value []byte) (int, native.Status) {
	return query(value, func(size C.size_t, v unsafe.Pointer, sizeRet *C.size_t) C.cl_int {
		return C.clGetContextInfo(C.cl_context(ptr(h)), C.cl_context_info(param), size, v, sizeRet)
	})
}

// ReleaseContext implements native.Driver.
func (d *Driver) ReleaseContext(h native.Handle) native.Status {
	return status(C.clReleaseContext(C.cl_context(ptr(h))))
}

// CreateCommandQueue implements native.Driver.
func (d *Driver) CreateCommandQueue(ctx, device native.Handle, properties native.CommandQueueProperties) (
	native.Handle, native.Status) {
	var err C.cl_int
	q := C.clCreateCommandQueue(C.cl_context(ptr(ctx)), C.cl_device_id(ptr(device)),
		C.cl_command_queue_properties(properties), &err)
	return handle(unsafe.Pointer(q)), status(err)
}

// GetCommandQueueInfo implements native.Driver.
func (d *Driver) GetCommandQueueInfo(h native.Handle, param native.CommandQueueInfo, value []byte) (
	int, native.Status) {
	return query(value, func(size C.size_t, v unsafe.Pointer, sizeRet *C.size_t) C.cl_int {
		return C.clGetCommandQueueInfo(C.cl_command_queue(ptr(h)), C.cl_command_queue_info(param), size, v, sizeRet)
	})
}

// ReleaseCommandQueue implements native.Driver.
func (d *Driver) ReleaseCommandQueue(h native.Handle) native.Status {
	return status(C.clReleaseCommandQueue(C.cl_command_queue(ptr(h))))
}

// hostPointer returns the pointer to pass as host_ptr, pinning it if the implementation keeps it.
// The returned pinner is nil if nothing was pinned.
func hostPointer(flags native.MemFlags, hostPtr []byte) (unsafe.Pointer, *runtime.Pinner) {
	if len(hostPtr) == 0 {
		return nil, nil
	}
	p := unsafe.Pointer(&hostPtr[0])
	if flags&native.MemUseHostPtr == 0 {
		return p, nil
	}
	pinner := &runtime.Pinner{}
	pinner.Pin(p)
	return p, pinner
}

// keepPinned associates the pinner with the memory object h, or unpins it right away if creation failed.
func (d *Driver) keepPinned(h native.Handle, pinner *runtime.Pinner) {
	if pinner == nil {
		return
	}
	if h == native.NilHandle {
		pinner.Unpin()
		return
	}
	d.muPinned.Lock()
	defer d.muPinned.Unlock()
	d.pinned[h] = pinner
}

// CreateBuffer implements native.Driver.
func (d *Driver) CreateBuffer(ctx native.Handle, flags native.MemFlags, size int, hostPtr []byte) (
	native.Handle, native.Status) {
	p, pinner := hostPointer(flags, hostPtr)
	var err C.cl_int
	mem := C.clCreateBuffer(C.cl_context(ptr(ctx)), C.cl_mem_flags(flags), C.size_t(size), p, &err)
	h := handle(unsafe.Pointer(mem))
	d.keepPinned(h, pinner)
	return h, status(err)
}

func imageFormat(format *native.ImageFormat) *C.cl_image_format {
	if format == nil {
		return nil
	}
	return &C.cl_image_format{
		image_channel_order:     C.cl_channel_order(format.ChannelOrder),
		image_channel_data_type: C.cl_channel_type(format.ChannelDataType),
	}
}

// CreateImage2D implements native.Driver.
func (d *Driver) CreateImage2D(ctx native.Handle, flags native.MemFlags, format *native.ImageFormat,
	width, height, rowPitch int, hostPtr []byte) (native.Handle, native.Status) {
	p, pinner := hostPointer(flags, hostPtr)
	var err C.cl_int
	mem := C.clCreateImage2D(C.cl_context(ptr(ctx)), C.cl_mem_flags(flags), imageFormat(format),
		C.size_t(width), C.size_t(height), C.size_t(rowPitch), p, &err)
	h := handle(unsafe.Pointer(mem))
	d.keepPinned(h, pinner)
	return h, status(err)
}

// CreateImage3D implements native.Driver.
func (d *Driver) CreateImage3D(ctx native.Handle, flags native.MemFlags, format *native.ImageFormat,
	width, height, depth, rowPitch, slicePitch int, hostPtr []byte) (native.Handle, native.Status) {
	p, pinner := hostPointer(flags, hostPtr)
	var err C.cl_int
	mem := C.clCreateImage3D(C.cl_context(ptr(ctx)), C.cl_mem_flags(flags), imageFormat(format),
		C.size_t(width), C.size_t(height), C.size_t(depth), C.size_t(rowPitch), C.size_t(slicePitch), p, &err)
	h := handle(unsafe.Pointer(mem))
	d.keepPinned(h, pinner)
	return h, status(err)
}

// GetSupportedImageFormats implements native.Driver.
func (d *Driver) GetSupportedImageFormats(ctx native.Handle, flags native.MemFlags, imageType native.MemObjectType,
	formats []native.ImageFormat) (int, native.Status) {
	var num C.cl_uint
	var cFormats []C.cl_image_format
	var cFormatsPtr *C.cl_image_format
	if len(formats) > 0 {
		cFormats = make([]C.cl_image_format, len(formats))
		cFormatsPtr = &cFormats[0]
	}
	err := C.clGetSupportedImageFormats(C.cl_context(ptr(ctx)), C.cl_mem_flags(flags),
		C.cl_mem_object_type(imageType), C.cl_uint(len(formats)), cFormatsPtr, &num)
	for ii := 0; ii < len(formats) && ii < int(num); ii++ {
		formats[ii] = native.ImageFormat{
			ChannelOrder:    native.ChannelOrder(cFormats[ii].image_channel_order),
			ChannelDataType: native.ChannelType(cFormats[ii].image_channel_data_type),
		}
	}
	return int(num), status(err)
}

// GetMemObjectInfo implements native.Driver.
func (d *Driver) GetMemObjectInfo(h native.Handle, param native.MemInfo, value []byte) (int, native.Status) {
	return query(value, func(size C.size_t, v unsafe.Pointer, sizeRet *C.size_t) C.cl_int {
		return C.clGetMemObjectInfo(C.cl_mem(ptr(h)), C.cl_mem_info(param), size, v, sizeRet)
	})
}

// GetImageInfo implements native.Driver.
func (d *Driver) GetImageInfo(h native.Handle, param native.ImageInfo, value []byte) (int, native.Status) {
	return query(value, func(size C.size_t, v unsafe.Pointer, sizeRet *C.size_t) C.cl_int {
		return C.clGetImageInfo(C.cl_mem(ptr(h)), C.cl_image_info(param), size, v, sizeRet)
	})
}

// ReleaseMemObject implements native.Driver. Pinned host memory is unpinned on success.
func (d *Driver) ReleaseMemObject(h native.Handle) native.Status {
	s := status(C.clReleaseMemObject(C.cl_mem(ptr(h))))
	if s == native.Success {
		d.muPinned.Lock()
		pinner := d.pinned[h]
		delete(d.pinned, h)
		d.muPinned.Unlock()
		if pinner != nil {
			pinner.Unpin()
		}
	}
	return s
}

func clBool(v bool) C.cl_bool {
	if v {
		return C.CL_TRUE
	}
	return C.CL_FALSE
}

// CreateSampler implements native.Driver.
func (d *Driver) CreateSampler(ctx native.Handle, normalized bool, addressing native.AddressingMode,
	filter native.FilterMode) (native.Handle, native.Status) {
	var err C.cl_int
	s := C.clCreateSampler(C.cl_context(ptr(ctx)), clBool(normalized), C.cl_addressing_mode(addressing),
		C.cl_filter_mode(filter), &err)
	return handle(unsafe.Pointer(s)), status(err)
}

// GetSamplerInfo implements native.Driver.
func (d *Driver) GetSamplerInfo(h native.Handle, param native.SamplerInfo, value []byte) (int, native.Status) {
	return query(value, func(size C.size_t, v unsafe.Pointer, sizeRet *C.size_t) C.cl_int {
		return C.clGetSamplerInfo(C.cl_sampler(ptr(h)), C.cl_sampler_info(param), size, v, sizeRet)
	})
}

// ReleaseSampler implements native.Driver.
func (d *Driver) ReleaseSampler(h native.Handle) native.Status {
	return status(C.clReleaseSampler(C.cl_sampler(ptr(h))))
}

// cStrings allocates the strings in C memory, in a C allocated array. Free with freeCArray.
func cStrings(values []string) **C.char {
	array := (**C.char)(C.malloc(C.size_t(len(values)) * C.size_t(unsafe.Sizeof(uintptr(0)))))
	elements := unsafe.Slice(array, len(values))
	for ii, value := range values {
		elements[ii] = C.CString(value)
	}
	return array
}

func cBytes(values [][]byte) **C.uchar {
	array := (**C.uchar)(C.malloc(C.size_t(len(values)) * C.size_t(unsafe.Sizeof(uintptr(0)))))
	elements := unsafe.Slice(array, len(values))
	for ii, value := range values {
		elements[ii] = (*C.uchar)(C.CBytes(value))
	}
	return array
}

// freeCArray frees an array of n C allocated pointers, and the pointers themselves.
func freeCArray(array unsafe.Pointer, n int) {
	for _, p := range unsafe.Slice((*unsafe.Pointer)(array), n) {
		C.free(p)
	}
	C.free(array)
}

// CreateProgramWithSource implements native.Driver.
func (d *Driver) CreateProgramWithSource(ctx native.Handle, sources []string) (native.Handle, native.Status) {
	if len(sources) == 0 {
		return native.NilHandle, native.InvalidValue
	}
	strs := cStrings(sources)
	defer freeCArray(unsafe.Pointer(strs), len(sources))
	var err C.cl_int
	p := C.clCreateProgramWithSource(C.cl_context(ptr(ctx)), C.cl_uint(len(sources)), strs, nil, &err)
	return handle(unsafe.Pointer(p)), status(err)
}

// CreateProgramWithBinary implements native.Driver.
func (d *Driver) CreateProgramWithBinary(ctx native.Handle, devices []native.Handle, binaries [][]byte,
	binaryStatus []native.Status) (native.Handle, native.Status) {
	if len(devices) == 0 || len(binaries) != len(devices) {
		return native.NilHandle, native.InvalidValue
	}
	lengths := make([]C.size_t, len(binaries))
	for ii, binary := range binaries {
		lengths[ii] = C.size_t(len(binary))
	}
	cBinaries := cBytes(binaries)
	defer freeCArray(unsafe.Pointer(cBinaries), len(binaries))
	cStatus := make([]C.cl_int, len(devices))
	var err C.cl_int
	p := C.clCreateProgramWithBinary(C.cl_context(ptr(ctx)), C.cl_uint(len(devices)),
		(*C.cl_device_id)(handlesPtr(devices)), &lengths[0], cBinaries, &cStatus[0], &err)
	for ii := 0; ii < len(binaryStatus) && ii < len(cStatus); ii++ {
		binaryStatus[ii] = status(cStatus[ii])
	}
	return handle(unsafe.Pointer(p)), status(err)
}

// BuildProgram implements native.Driver.
func (d *Driver) BuildProgram(program native.Handle, devices []native.Handle, options string) native.Status {
	cOptions := C.CString(options)
	defer C.free(unsafe.Pointer(cOptions))
	return status(C.clBuildProgram(C.cl_program(ptr(program)), C.cl_uint(len(devices)),
		(*C.cl_device_id)(handlesPtr(devices)), cOptions, nil, nil))
}

// GetProgramInfo implements native.Driver.
func (d *Driver) GetProgramInfo(h native.Handle, param native.ProgramInfo, value []byte) (int, native.Status) {
	if param == native.ProgramBinaries {
		return 0, native.InvalidValue
	}
	return query(value, func(size C.size_t, v unsafe.Pointer, sizeRet *C.size_t) C.cl_int {
		return C.clGetProgramInfo(C.cl_program(ptr(h)), C.cl_program_info(param), size, v, sizeRet)
	})
}

// GetProgramBinaries implements native.Driver. The binaries are fetched into C memory and then copied.
func (d *Driver) GetProgramBinaries(h native.Handle, binaries [][]byte) native.Status {
	if len(binaries) == 0 {
		return native.InvalidValue
	}
	// Allocate zeroed C buffers of the same sizes.
	cBinaries := cBytes(binaries)
	defer freeCArray(unsafe.Pointer(cBinaries), len(binaries))
	s := status(C.clGetProgramInfo(C.cl_program(ptr(h)), C.CL_PROGRAM_BINARIES,
		C.size_t(len(binaries))*C.size_t(unsafe.Sizeof(uintptr(0))), unsafe.Pointer(cBinaries), nil))
	if s != native.Success {
		return s
	}
	for ii, p := range unsafe.Slice(cBinaries, len(binaries)) {
		copy(binaries[ii], unsafe.Slice((*byte)(unsafe.Pointer(p)), len(binaries[ii])))
	}
	return native.Success
}

// GetProgramBuildInfo implements native.Driver.
func (d *Driver) GetProgramBuildInfo(h, device native.Handle, param native.ProgramBuildInfo, value []byte) (
	int, native.Status) {
	return query(value, func(size C.size_t, v unsafe.Pointer, sizeRet *C.size_t) C.cl_int {
		return C.clGetProgramBuildInfo(C.cl_program(ptr(h)), C.cl_device_id(ptr(device)),
			C.cl_program_build_info(param), size, v, sizeRet)
	})
}

// ReleaseProgram implements native.Driver.
func (d *Driver) ReleaseProgram(h native.Handle) native.Status {
	return status(C.clReleaseProgram(C.cl_program(ptr(h))))
}

// CreateKernel implements native.Driver.
func (d *Driver) CreateKernel(program native.Handle, name string) (native.Handle, native.Status) {
	cName := C.CString(name)
	defer C.free(unsafe.Pointer(cName))
	var err C.cl_int
	k := C.clCreateKernel(C.cl_program(ptr(program)), cName, &err)
	return handle(unsafe.Pointer(k)), status(err)
}

// CreateKernelsInProgram implements native.Driver.
func (d *Driver) CreateKernelsInProgram(program native.Handle, kernels []native.Handle) (int, native.Status) {
	var num C.cl_uint
	err := C.clCreateKernelsInProgram(C.cl_program(ptr(program)), C.cl_uint(len(kernels)),
		(*C.cl_kernel)(handlesPtr(kernels)), &num)
	return int(num), status(err)
}

// GetKernelInfo implements native.Driver.
func (d *Driver) GetKernelInfo(h native.Handle, param native.KernelInfo, value []byte) (int, native.Status) {
	return query(value, func(size C.size_t, v unsafe.Pointer, sizeRet *C.size_t) C.cl_int {
		return C.clGetKernelInfo(C.cl_kernel(ptr(h)), C.cl_kernel_info(param), size, v, sizeRet)
	})
}

// GetKernelWorkGroupInfo implements native.Driver.
func (d *Driver) GetKernelWorkGroupInfo(h, device native.Handle, param native.KernelWorkGroupInfo, value []byte) (
	int, native.Status) {
	return query(value, func(size C.size_t, v unsafe.Pointer, sizeRet *C.size_t) C.cl_int {
		return C.clGetKernelWorkGroupInfo(C.cl_kernel(ptr(h)), C.cl_device_id(ptr(device)),
			C.cl_kernel_work_group_info(param), size, v, sizeRet)
	})
}

// SetKernelArg implements native.Driver.
func (d *Driver) SetKernelArg(h native.Handle, index int, size int, value []byte) native.Status {
	return status(C.clSetKernelArg(C.cl_kernel(ptr(h)), C.cl_uint(index), C.size_t(size), bytesPtr(value)))
}

// ReleaseKernel implements native.Driver.
func (d *Driver) ReleaseKernel(h native.Handle) native.Status {
	return status(C.clReleaseKernel(C.cl_kernel(ptr(h))))
}

// CreateUserEvent implements native.Driver.
func (d *Driver) CreateUserEvent(ctx native.Handle) (native.Handle, native.Status) {
	var err C.cl_int
	ev := C.clCreateUserEvent(C.cl_context(ptr(ctx)), &err)
	return handle(unsafe.Pointer(ev)), status(err)
}

// SetUserEventStatus implements native.Driver.
func (d *Driver) SetUserEventStatus(h native.Handle, executionStatus int32) native.Status {
	return status(C.clSetUserEventStatus(C.cl_event(ptr(h)), C.cl_int(executionStatus)))
}

// GetEventInfo implements native.Driver.
func (d *Driver) GetEventInfo(h native.Handle, param native.EventInfo, value []byte) (int, native.Status) {
	return query(value, func(size C.size_t, v unsafe.Pointer, sizeRet *C.size_t) C.cl_int {
		return C.clGetEventInfo(C.cl_event(ptr(h)), C.cl_event_info(param), size, v, sizeRet)
	})
}

// ReleaseEvent implements native.Driver.
func (d *Driver) ReleaseEvent(h native.Handle) native.Status {
	s := status(C.clReleaseEvent(C.cl_event(ptr(h))))
	if s != native.Success {
		klog.V(1).Infof("opencl: clReleaseEvent(%s) failed: %s", h, s)
	}
	return s
}
