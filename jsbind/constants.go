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


package jsbind

import (
	"fmt"
	"slices"
	"strings"

	"github.com/gomlx/webcl/native"
	"github.com/gomlx/webcl/webcl"
)

// constants exposed on the webcl object, with their C names. Statuses are added from native.Statuses.
var constants = map[string]int64{
	"CL_TRUE":  int64(native.True),
	"CL_FALSE": int64(native.False),

	"CL_PLATFORM_PROFILE":    int64(native.PlatformProfile),
	"CL_PLATFORM_VERSION":    int64(native.PlatformVersion),
	"CL_PLATFORM_NAME":       int64(native.PlatformName),
	"CL_PLATFORM_VENDOR":     int64(native.PlatformVendor),
	"CL_PLATFORM_EXTENSIONS": int64(native.PlatformExtensions),

	"CL_DEVICE_TYPE_DEFAULT":     int64(native.DeviceTypeDefault),
	"CL_DEVICE_TYPE_CPU":         int64(native.DeviceTypeCPU),
	"CL_DEVICE_TYPE_GPU":         int64(native.DeviceTypeGPU),
	"CL_DEVICE_TYPE_ACCELERATOR": int64(native.DeviceTypeAccelerator),
	"CL_DEVICE_TYPE_ALL":         int64(native.DeviceTypeAll),

	"CL_DEVICE_TYPE":                int64(native.DeviceInfoType),
	"CL_DEVICE_VENDOR_ID":           int64(native.DeviceVendorID),
	"CL_DEVICE_MAX_COMPUTE_UNITS":   int64(native.DeviceMaxComputeUnits),
	"CL_DEVICE_MAX_WORK_GROUP_SIZE": int64(native.DeviceMaxWorkGroupSize),
	"CL_DEVICE_MAX_MEM_ALLOC_SIZE":  int64(native.DeviceMaxMemAllocSize),
	"CL_DEVICE_IMAGE2D_MAX_WIDTH":   int64(native.DeviceImage2DMaxWidth),
	"CL_DEVICE_IMAGE2D_MAX_HEIGHT":  int64(native.DeviceImage2DMaxHeight),
	"CL_DEVICE_IMAGE3D_MAX_WIDTH":   int64(native.DeviceImage3DMaxWidth),
	"CL_DEVICE_IMAGE3D_MAX_HEIGHT":  int64(native.DeviceImage3DMaxHeight),
	"CL_DEVICE_IMAGE3D_MAX_DEPTH":   int64(native.DeviceImage3DMaxDepth),
	"CL_DEVICE_IMAGE_SUPPORT":       int64(native.DeviceImageSupport),
	"CL_DEVICE_GLOBAL_MEM_SIZE":     int64(native.DeviceGlobalMemSize),
	"CL_DEVICE_QUEUE_PROPERTIES":    int64(native.DeviceQueueProperties),
	"CL_DEVICE_NAME":                int64(native.DeviceName),
	"CL_DEVICE_VENDOR":              int64(native.DeviceVendor),
	"CL_DRIVER_VERSION":             int64(native.DeviceDriverVersion),
	"CL_DEVICE_PROFILE":             int64(native.DeviceProfile),
	"CL_DEVICE_VERSION":             int64(native.DeviceVersion),
	"CL_DEVICE_EXTENSIONS":          int64(native.DeviceExtensions),
	"CL_DEVICE_PLATFORM":            int64(native.DevicePlatform),
	"CL_DEVICE_AVAILABLE":           int64(native.DeviceAvailable),
	"CL_DEVICE_COMPILER_AVAILABLE":  int64(native.DeviceCompilerAvailable),

	"CL_CONTEXT_REFERENCE_COUNT": int64(native.ContextReferenceCount),
	"CL_CONTEXT_DEVICES":         int64(native.ContextDevices),
	"CL_CONTEXT_PROPERTIES":      int64(native.ContextProperties),
	"CL_CONTEXT_NUM_DEVICES":     int64(native.ContextNumDevices),
	"CL_CONTEXT_PLATFORM":        int64(native.ContextPlatform),

	"CL_QUEUE_OUT_OF_ORDER_EXEC_MODE_ENABLE": int64(native.QueueOutOfOrderExecModeEnable),
	"CL_QUEUE_PROFILING_ENABLE":              int64(native.QueueProfilingEnable),
	"CL_QUEUE_CONTEXT":                       int64(native.QueueContext),
	"CL_QUEUE_DEVICE":                        int64(native.QueueDevice),
	"CL_QUEUE_REFERENCE_COUNT":               int64(native.QueueReferenceCount),
	"CL_QUEUE_PROPERTIES":                    int64(native.QueueProperties),

	"CL_MEM_READ_WRITE":     int64(native.MemReadWrite),
	"CL_MEM_WRITE_ONLY":     int64(native.MemWriteOnly),
	"CL_MEM_READ_ONLY":      int64(native.MemReadOnly),
	"CL_MEM_USE_HOST_PTR":   int64(native.MemUseHostPtr),
	"CL_MEM_ALLOC_HOST_PTR": int64(native.MemAllocHostPtr),
	"CL_MEM_COPY_HOST_PTR":  int64(native.MemCopyHostPtr),

	"CL_MEM_OBJECT_BUFFER":  int64(native.MemObjectBuffer),
	"CL_MEM_OBJECT_IMAGE2D": int64(native.MemObjectImage2D),
	"CL_MEM_OBJECT_IMAGE3D": int64(native.MemObjectImage3D),

	"CL_MEM_TYPE":            int64(native.MemType),
	"CL_MEM_FLAGS":           int64(native.MemInfoFlags),
	"CL_MEM_SIZE":            int64(native.MemSize),
	"CL_MEM_HOST_PTR":        int64(native.MemHostPtr),
	"CL_MEM_MAP_COUNT":       int64(native.MemMapCount),
	"CL_MEM_REFERENCE_COUNT": int64(native.MemReferenceCount),
	"CL_MEM_CONTEXT":         int64(native.MemContext),

	"CL_IMAGE_FORMAT":       int64(native.ImageInfoFormat),
	"CL_IMAGE_ELEMENT_SIZE": int64(native.ImageElementSize),
	"CL_IMAGE_ROW_PITCH":    int64(native.ImageRowPitch),
	"CL_IMAGE_SLICE_PITCH":  int64(native.ImageSlicePitch),
	"CL_IMAGE_WIDTH":        int64(native.ImageWidth),
	"CL_IMAGE_HEIGHT":       int64(native.ImageHeight),
	"CL_IMAGE_DEPTH":        int64(native.ImageDepth),

	"CL_R":         int64(native.ChannelR),
	"CL_A":         int64(native.ChannelA),
	"CL_RG":        int64(native.ChannelRG),
	"CL_RA":        int64(native.ChannelRA),
	"CL_RGB":       int64(native.ChannelRGB),
	"CL_RGBA":      int64(native.ChannelRGBA),
	"CL_BGRA":      int64(native.ChannelBGRA),
	"CL_ARGB":      int64(native.ChannelARGB),
	"CL_INTENSITY": int64(native.ChannelIntensity),
	"CL_LUMINANCE": int64(native.ChannelLuminance),
	"CL_Rx":        int64(native.ChannelRx),
	"CL_RGx":       int64(native.ChannelRGx),
	"CL_RGBx":      int64(native.ChannelRGBx),

	"CL_SNORM_INT8":       int64(native.ChannelSNormInt8),
	"CL_SNORM_INT16":      int64(native.ChannelSNormInt16),
	"CL_UNORM_INT8":       int64(native.ChannelUNormInt8),
	"CL_UNORM_INT16":      int64(native.ChannelUNormInt16),
	"CL_UNORM_SHORT_565":  int64(native.ChannelUNormShort565),
	"CL_UNORM_SHORT_555":  int64(native.ChannelUNormShort555),
	"CL_UNORM_INT_101010": int64(native.ChannelUNormInt101010),
	"CL_SIGNED_INT8":      int64(native.ChannelSignedInt8),
	"CL_SIGNED_INT16":     int64(native.ChannelSignedInt16),
	"CL_SIGNED_INT32":     int64(native.ChannelSignedInt32),
	"CL_UNSIGNED_INT8":    int64(native.ChannelUnsignedInt8),
	"CL_UNSIGNED_INT16":   int64(native.ChannelUnsignedInt16),
	"CL_UNSIGNED_INT32":   int64(native.ChannelUnsignedInt32),
	"CL_HALF_FLOAT":       int64(native.ChannelHalfFloat),
	"CL_FLOAT":            int64(native.ChannelFloat),

	"CL_ADDRESS_NONE":            int64(native.AddressNone),
	"CL_ADDRESS_CLAMP_TO_EDGE":   int64(native.AddressClampToEdge),
	"CL_ADDRESS_CLAMP":           int64(native.AddressClamp),
	"CL_ADDRESS_REPEAT":          int64(native.AddressRepeat),
	"CL_ADDRESS_MIRRORED_REPEAT": int64(native.AddressMirroredRepeat),
	"CL_FILTER_NEAREST":          int64(native.FilterNearest),
	"CL_FILTER_LINEAR":           int64(native.FilterLinear),

	"CL_SAMPLER_REFERENCE_COUNT":   int64(native.SamplerReferenceCount),
	"CL_SAMPLER_CONTEXT":           int64(native.SamplerContext),
	"CL_SAMPLER_NORMALIZED_COORDS": int64(native.SamplerNormalizedCoords),
	"CL_SAMPLER_ADDRESSING_MODE":   int64(native.SamplerAddressingMode),
	"CL_SAMPLER_FILTER_MODE":       int64(native.SamplerFilterMode),

	"CL_PROGRAM_REFERENCE_COUNT": int64(native.ProgramReferenceCount),
	"CL_PROGRAM_CONTEXT":         int64(native.ProgramContext),
	"CL_PROGRAM_NUM_DEVICES":     int64(native.ProgramNumDevices),
	"CL_PROGRAM_DEVICES":         int64(native.ProgramDevices),
	"CL_PROGRAM_SOURCE":          int64(native.ProgramSource),
	"CL_PROGRAM_BINARY_SIZES":    int64(native.ProgramBinarySizes),
	"CL_PROGRAM_BINARIES":        int64(native.ProgramBinaries),

	"CL_PROGRAM_BUILD_STATUS":  int64(native.ProgramBuildStatus),
	"CL_PROGRAM_BUILD_OPTIONS": int64(native.ProgramBuildOptions),
	"CL_PROGRAM_BUILD_LOG":     int64(native.ProgramBuildLog),
	"CL_BUILD_SUCCESS":         int64(native.BuildSuccess),
	"CL_BUILD_NONE":            int64(native.BuildNone),
	"CL_BUILD_ERROR":           int64(native.BuildError),
	"CL_BUILD_IN_PROGRESS":     int64(native.BuildInProgress),

	"CL_KERNEL_FUNCTION_NAME":                      int64(native.KernelFunctionName),
	"CL_KERNEL_NUM_ARGS":                           int64(native.KernelNumArgs),
	"CL_KERNEL_REFERENCE_COUNT":                    int64(native.KernelReferenceCount),
	"CL_KERNEL_CONTEXT":                            int64(native.KernelContext),
	"CL_KERNEL_PROGRAM":                            int64(native.KernelProgram),
	"CL_KERNEL_WORK_GROUP_SIZE":                    int64(native.KernelWorkGroupSize),
	"CL_KERNEL_COMPILE_WORK_GROUP_SIZE":            int64(native.KernelCompileWorkGroupSize),
	"CL_KERNEL_LOCAL_MEM_SIZE":                     int64(native.KernelLocalMemSize),
	"CL_KERNEL_PREFERRED_WORK_GROUP_SIZE_MULTIPLE": int64(native.KernelPreferredWorkGroupSizeMultiple),
	"CL_KERNEL_PRIVATE_MEM_SIZE":                   int64(native.KernelPrivateMemSize),

	"CL_EVENT_COMMAND_QUEUE":            int64(native.EventCommandQueue),
	"CL_EVENT_COMMAND_TYPE":             int64(native.EventCommandType),
	"CL_EVENT_REFERENCE_COUNT":          int64(native.EventReferenceCount),
	"CL_EVENT_COMMAND_EXECUTION_STATUS": int64(native.EventCommandExecutionStatus),
	"CL_EVENT_CONTEXT":                  int64(native.EventContext),
	"CL_COMMAND_USER":                   int64(native.CommandUser),
	"CL_COMPLETE":                       int64(native.Complete),
	"CL_RUNNING":                        int64(native.Running),
	"CL_SUBMITTED":                      int64(native.Submitted),
	"CL_QUEUED":                         int64(native.Queued),
}

// argTypes returns the kernel argument type flags by name, as in webcl.type.FLOAT.
func argTypes() map[string]int64 {
	types := make(map[string]int64)
	for bit := range 32 {
		t := webcl.ArgType(1) << bit
		if name := t.String(); name[0] != '0' {
			types[name] = int64(t)
		}
	}
	return types
}

// ConstantName returns the name of the constant starting with prefix that has the given value, e.g.
// ConstantName("CL_DEVICE_TYPE_", 4) returns "CL_DEVICE_TYPE_GPU". If there is none, it returns the value
// in hexadecimal.
func ConstantName(prefix string, value int64) string {
	var names []string
	for name, v := range constants {
		if v == value && strings.HasPrefix(name, prefix) {
			names = append(names, name)
		}
	}
	if len(names) == 0 {
		return fmt.Sprintf("0x%X", value)
	}
	slices.Sort(names)
	return names[0]
}
