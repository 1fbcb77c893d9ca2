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


// Package native defines the boundary to a handle-based heterogeneous compute API (OpenCL 1.1 shaped)
// that package webcl wraps.
//
// A Driver mirrors the C API closely: every creation call returns a Handle and a Status, every query
// takes a destination buffer and reports the size it needs (so callers can use the two-step
// "query length, then fetch" protocol), and every ownable kind has exactly one release function.
//
// Values returned by the Get*Info functions are encoded in native byte order, with the native widths
// of the C types (cl_uint is 4 bytes, size_t and handles are SizeTBytes).
//
// Drivers register themselves with Register, and are selected with New or NewWithConfig.
package native

import (
	"strconv"
	"unsafe"
)

// Handle is an opaque identifier of a driver-managed resource (cl_context, cl_mem, ...).
type Handle uintptr

// NilHandle is the sentinel for "no handle", also used to invalidate released handles.
const NilHandle = Handle(0)

// SizeTBytes is the width of size_t, intptr_t and handles in encoded info values.
const SizeTBytes = int(unsafe.Sizeof(uintptr(0)))

// String implements fmt.Stringer.
func (h Handle) String() string {
	if h == NilHandle {
		return "<nil>"
	}
	return "0x" + strconv.FormatUint(uint64(h), 16)
}

// ImageFormat mirrors cl_image_format.
type ImageFormat struct {
	ChannelOrder    ChannelOrder
	ChannelDataType ChannelType
}

// Driver is the native API. Implementations must be safe to call from a finalizer goroutine for the
// release functions, everything else is called synchronously from the host thread.
//
// Query functions follow the C convention: if value is nil only the needed size is returned; otherwise
// value must be large enough to hold the result, or CL_INVALID_VALUE is returned.
type Driver interface {
	// Name of the driver, e.g. "host" or "opencl".
	Name() string

	GetPlatformIDs(platforms []Handle) (numPlatforms int, status Status)
	GetPlatformInfo(platform Handle, param PlatformInfo, value []byte) (size int, status Status)
	GetDeviceIDs(platform Handle, deviceType DeviceType, devices []Handle) (numDevices int, status Status)
	GetDeviceInfo(device Handle, param DeviceInfo, value []byte) (size int, status Status)

	CreateContext(properties []ContextProperty, devices []Handle) (Handle, Status)
	CreateContextFromType(properties []ContextProperty, deviceType DeviceType) (Handle, Status)
	GetContextInfo(context Handle, param ContextInfo, value []byte) (size int, status Status)
	ReleaseContext(context Handle) Status

	CreateCommandQueue(context, device Handle, properties CommandQueueProperties) (Handle, Status)
	GetCommandQueueInfo(queue Handle, param CommandQueueInfo, value []byte) (size int, status Status)
	ReleaseCommandQueue(queue Handle) Status

	// CreateBuffer receives hostPtr as-is: it must not be copied unless flags ask for it.
	CreateBuffer(context Handle, flags MemFlags, size int, hostPtr []byte) (Handle, Status)
	CreateImage2D(context Handle, flags MemFlags, format *ImageFormat, width, height, rowPitch int,
		hostPtr []byte) (Handle, Status)
	CreateImage3D(context Handle, flags MemFlags, format *ImageFormat, width, height, depth, rowPitch,
		slicePitch int, hostPtr []byte) (Handle, Status)
	// GetSupportedImageFormats fills formats (up to its length) and returns the total number supported.
	GetSupportedImageFormats(context Handle, flags MemFlags, imageType MemObjectType,
		formats []ImageFormat) (numFormats int, status Status)
	GetMemObjectInfo(mem Handle, param MemInfo, value []byte) (size int, status Status)
	GetImageInfo(image Handle, param ImageInfo, value []byte) (size int, status Status)
	ReleaseMemObject(mem Handle) Status

	CreateSampler(context Handle, normalizedCoords bool, addressing AddressingMode,
		filter FilterMode) (Handle, Status)
	GetSamplerInfo(sampler Handle, param SamplerInfo, value []byte) (size int, status Status)
	ReleaseSampler(sampler Handle) Status

	CreateProgramWithSource(context Handle, sources []string) (Handle, Status)
	// CreateProgramWithBinary pairs devices[i] with binaries[i]; binaryStatus, if not nil, receives
	// the per-device load status.
	CreateProgramWithBinary(context Handle, devices []Handle, binaries [][]byte,
		binaryStatus []Status) (Handle, Status)
	BuildProgram(program Handle, devices []Handle, options string) Status
	GetProgramInfo(program Handle, param ProgramInfo, value []byte) (size int, status Status)
	// GetProgramBinaries fills binaries[i] for the i-th program device, each of which must be at
	// least as large as reported by ProgramBinarySizes.
	GetProgramBinaries(program Handle, binaries [][]byte) Status
	GetProgramBuildInfo(program, device Handle, param ProgramBuildInfo, value []byte) (size int, status Status)
	ReleaseProgram(program Handle) Status

	CreateKernel(program Handle, name string) (Handle, Status)
	CreateKernelsInProgram(program Handle, kernels []Handle) (numKernels int, status Status)
	GetKernelInfo(kernel Handle, param KernelInfo, value []byte) (size int, status Status)
	GetKernelWorkGroupInfo(kernel, device Handle, param KernelWorkGroupInfo, value []byte) (size int, status Status)
	// SetKernelArg with a nil value declares a __local argument of the given size.
	SetKernelArg(kernel Handle, index int, size int, value []byte) Status
	ReleaseKernel(kernel Handle) Status

	CreateUserEvent(context Handle) (Handle, Status)
	SetUserEventStatus(event Handle, executionStatus int32) Status
	GetEventInfo(event Handle, param EventInfo, value []byte) (size int, status Status)
	ReleaseEvent(event Handle) Status
}
