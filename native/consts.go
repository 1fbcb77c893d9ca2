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


package native

// Enumerations and bit-fields of the native API. Values from CL/cl.h (OpenCL 1.1).

// PlatformInfo is a cl_platform_info.
type PlatformInfo uint32

const (
	PlatformProfile    PlatformInfo = 0x0900
	PlatformVersion    PlatformInfo = 0x0901
	PlatformName       PlatformInfo = 0x0902
	PlatformVendor     PlatformInfo = 0x0903
	PlatformExtensions PlatformInfo = 0x0904
)

// DeviceType is a cl_device_type bit-field.
type DeviceType uint64

const (
	DeviceTypeDefault     DeviceType = 1 << 0
	DeviceTypeCPU         DeviceType = 1 << 1
	DeviceTypeGPU         DeviceType = 1 << 2
	DeviceTypeAccelerator DeviceType = 1 << 3
	DeviceTypeAll         DeviceType = 0xFFFFFFFF
)

// DeviceInfo is a cl_device_info.
type DeviceInfo uint32

const (
	DeviceInfoType          DeviceInfo = 0x1000
	DeviceVendorID          DeviceInfo = 0x1001
	DeviceMaxComputeUnits   DeviceInfo = 0x1002
	DeviceMaxWorkGroupSize  DeviceInfo = 0x1004
	DeviceMaxMemAllocSize   DeviceInfo = 0x1010
	DeviceImage2DMaxWidth   DeviceInfo = 0x1011
	DeviceImage2DMaxHeight  DeviceInfo = 0x1012
	DeviceImage3DMaxWidth   DeviceInfo = 0x1013
	DeviceImage3DMaxHeight  DeviceInfo = 0x1014
	DeviceImage3DMaxDepth   DeviceInfo = 0x1015
	DeviceImageSupport      DeviceInfo = 0x1016
	DeviceGlobalMemSize     DeviceInfo = 0x101F
	DeviceQueueProperties   DeviceInfo = 0x102A
	DeviceName              DeviceInfo = 0x102B
	DeviceVendor            DeviceInfo = 0x102C
	DeviceDriverVersion     DeviceInfo = 0x102D
	DeviceProfile           DeviceInfo = 0x102E
	DeviceVersion           DeviceInfo = 0x102F
	DeviceExtensions        DeviceInfo = 0x1030
	DevicePlatform          DeviceInfo = 0x1031
	DeviceAvailable         DeviceInfo = 0x1027
	DeviceCompilerAvailable DeviceInfo = 0x1028
)

// ContextInfo is a cl_context_info.
type ContextInfo uint32

const (
	ContextReferenceCount ContextInfo = 0x1080
	ContextDevices        ContextInfo = 0x1081
	ContextProperties     ContextInfo = 0x1082
	ContextNumDevices     ContextInfo = 0x1083
)

// ContextPropertyName is the key of a cl_context_properties pair.
type ContextPropertyName uintptr

const ContextPlatform ContextPropertyName = 0x1084

// ContextProperty is one (name, value) pair of a cl_context_properties list. The list passed to
// the driver is not zero terminated: the driver adds the terminator when needed.
type ContextProperty struct {
	Name  ContextPropertyName
	Value uintptr
}

// CommandQueueProperties is a cl_command_queue_properties bit-field.
type CommandQueueProperties uint64

const (
	QueueOutOfOrderExecModeEnable CommandQueueProperties = 1 << 0
	QueueProfilingEnable          CommandQueueProperties = 1 << 1
)

// CommandQueueInfo is a cl_command_queue_info.
type CommandQueueInfo uint32

const (
	QueueContext        CommandQueueInfo = 0x1090
	QueueDevice         CommandQueueInfo = 0x1091
	QueueReferenceCount CommandQueueInfo = 0x1092
	QueueProperties     CommandQueueInfo = 0x1093
)

// MemFlags is a cl_mem_flags bit-field.
type MemFlags uint64

const (
	MemReadWrite    MemFlags = 1 << 0
	MemWriteOnly    MemFlags = 1 << 1
	MemReadOnly     MemFlags = 1 << 2
	MemUseHostPtr   MemFlags = 1 << 3
	MemAllocHostPtr MemFlags = 1 << 4
	MemCopyHostPtr  MemFlags = 1 << 5

	// MemAllFlags is the union of all known flags.
	MemAllFlags = MemReadWrite | MemWriteOnly | MemReadOnly | MemUseHostPtr | MemAllocHostPtr | MemCopyHostPtr
)

// MemObjectType is a cl_mem_object_type.
type MemObjectType uint32

const (
	MemObjectBuffer  MemObjectType = 0x10F0
	MemObjectImage2D MemObjectType = 0x10F1
	MemObjectImage3D MemObjectType = 0x10F2
)

// MemInfo is a cl_mem_info.
type MemInfo uint32

const (
	MemType           MemInfo = 0x1100
	MemInfoFlags      MemInfo = 0x1101
	MemSize           MemInfo = 0x1102
	MemHostPtr        MemInfo = 0x1103
	MemMapCount       MemInfo = 0x1104
	MemReferenceCount MemInfo = 0x1105
	MemContext        MemInfo = 0x1106
)

// ImageInfo is a cl_image_info.
type ImageInfo uint32

const (
	ImageInfoFormat  ImageInfo = 0x1110
	ImageElementSize ImageInfo = 0x1111
	ImageRowPitch    ImageInfo = 0x1112
	ImageSlicePitch  ImageInfo = 0x1113
	ImageWidth       ImageInfo = 0x1114
	ImageHeight      ImageInfo = 0x1115
	ImageDepth       ImageInfo = 0x1116
)

// ChannelOrder is a cl_channel_order.
type ChannelOrder uint32

const (
	ChannelR         ChannelOrder = 0x10B0
	ChannelA         ChannelOrder = 0x10B1
	ChannelRG        ChannelOrder = 0x10B2
	ChannelRA        ChannelOrder = 0x10B3
	ChannelRGB       ChannelOrder = 0x10B4
	ChannelRGBA      ChannelOrder = 0x10B5
	ChannelBGRA      ChannelOrder = 0x10B6
	ChannelARGB      ChannelOrder = 0x10B7
	ChannelIntensity ChannelOrder = 0x10B8
	ChannelLuminance ChannelOrder = 0x10B9
	ChannelRx        ChannelOrder = 0x10BA
	ChannelRGx       ChannelOrder = 0x10BB
	ChannelRGBx      ChannelOrder = 0x10BC
)

// NumChannels returns the number of channels of the order, or 0 if the order is unknown.
func (o ChannelOrder) NumChannels() int {
	switch o {
	case ChannelR, ChannelA, ChannelIntensity, ChannelLuminance, ChannelRx:
		return 1
	case ChannelRG, ChannelRA, ChannelRGx:
		return 2
	case ChannelRGB, ChannelRGBx:
		return 3
	case ChannelRGBA, ChannelBGRA, ChannelARGB:
		return 4
	}
	return 0
}

// ChannelType is a cl_channel_type.
type ChannelType uint32

const (
	ChannelSNormInt8      ChannelType = 0x10D0
	ChannelSNormInt16     ChannelType = 0x10D1
	ChannelUNormInt8      ChannelType = 0x10D2
	ChannelUNormInt16     ChannelType = 0x10D3
	ChannelUNormShort565  ChannelType = 0x10D4
	ChannelUNormShort555  ChannelType = 0x10D5
	ChannelUNormInt101010 ChannelType = 0x10D6
	ChannelSignedInt8     ChannelType = 0x10D7
	ChannelSignedInt16    ChannelType = 0x10D8
	ChannelSignedInt32    ChannelType = 0x10D9
	ChannelUnsignedInt8   ChannelType = 0x10DA
	ChannelUnsignedInt16  ChannelType = 0x10DB
	ChannelUnsignedInt32  ChannelType = 0x10DC
	ChannelHalfFloat      ChannelType = 0x10DD
	ChannelFloat          ChannelType = 0x10DE
)

// Bytes returns the size in bytes of one channel, or of the whole packed pixel for the packed types
// (565, 555 and 101010). It returns 0 for unknown types.
func (t ChannelType) Bytes() int {
	switch t {
	case ChannelSNormInt8, ChannelUNormInt8, ChannelSignedInt8, ChannelUnsignedInt8:
		return 1
	case ChannelSNormInt16, ChannelUNormInt16, ChannelSignedInt16, ChannelUnsignedInt16, ChannelHalfFloat,
		ChannelUNormShort565, ChannelUNormShort555:
		return 2
	case ChannelSignedInt32, ChannelUnsignedInt32, ChannelFloat, ChannelUNormInt101010:
		return 4
	}
	return 0
}

// IsPacked returns whether all channels are packed in one value (565, 555 and 101010).
func (t ChannelType) IsPacked() bool {
	return t == ChannelUNormShort565 || t == ChannelUNormShort555 || t == ChannelUNormInt101010
}

// ElementSize returns the size in bytes of one pixel of the format, or 0 if the format is invalid.
func (f ImageFormat) ElementSize() int {
	channels := f.ChannelOrder.NumChannels()
	bytes := f.ChannelDataType.Bytes()
	if channels == 0 || bytes == 0 {
		return 0
	}
	if f.ChannelDataType.IsPacked() {
		// Packed types are only valid with RGB and RGBx.
		if f.ChannelOrder != ChannelRGB && f.ChannelOrder != ChannelRGBx {
			return 0
		}
		return bytes
	}
	return channels * bytes
}

// AddressingMode is a cl_addressing_mode.
type AddressingMode uint32

const (
	AddressNone           AddressingMode = 0x1130
	AddressClampToEdge    AddressingMode = 0x1131
	AddressClamp          AddressingMode = 0x1132
	AddressRepeat         AddressingMode = 0x1133
	AddressMirroredRepeat AddressingMode = 0x1134
)

// FilterMode is a cl_filter_mode.
type FilterMode uint32

const (
	FilterNearest FilterMode = 0x1140
	FilterLinear  FilterMode = 0x1141
)

// SamplerInfo is a cl_sampler_info.
type SamplerInfo uint32

const (
	SamplerReferenceCount   SamplerInfo = 0x1150
	SamplerContext          SamplerInfo = 0x1151
	SamplerNormalizedCoords SamplerInfo = 0x1152
	SamplerAddressingMode   SamplerInfo = 0x1153
	SamplerFilterMode       SamplerInfo = 0x1154
)

// ProgramInfo is a cl_program_info.
type ProgramInfo uint32

const (
	ProgramReferenceCount ProgramInfo = 0x1160
	ProgramContext        ProgramInfo = 0x1161
	ProgramNumDevices     ProgramInfo = 0x1162
	ProgramDevices        ProgramInfo = 0x1163
	ProgramSource         ProgramInfo = 0x1164
	ProgramBinarySizes    ProgramInfo = 0x1165
	ProgramBinaries       ProgramInfo = 0x1166
)

// ProgramBuildInfo is a cl_program_build_info.
type ProgramBuildInfo uint32

const (
	ProgramBuildStatus  ProgramBuildInfo = 0x1181
	ProgramBuildOptions ProgramBuildInfo = 0x1182
	ProgramBuildLog     ProgramBuildInfo = 0x1183
)

// BuildStatus is a cl_build_status.
type BuildStatus int32

const (
	BuildSuccess    BuildStatus = 0
	BuildNone       BuildStatus = -1
	BuildError      BuildStatus = -2
	BuildInProgress BuildStatus = -3
)

// KernelInfo is a cl_kernel_info.
type KernelInfo uint32

const (
	KernelFunctionName   KernelInfo = 0x1190
	KernelNumArgs        KernelInfo = 0x1191
	KernelReferenceCount KernelInfo = 0x1192
	KernelContext        KernelInfo = 0x1193
	KernelProgram        KernelInfo = 0x1194
)

// KernelWorkGroupInfo is a cl_kernel_work_group_info.
type KernelWorkGroupInfo uint32

const (
	KernelWorkGroupSize                  KernelWorkGroupInfo = 0x11B0
	KernelCompileWorkGroupSize           KernelWorkGroupInfo = 0x11B1
	KernelLocalMemSize                   KernelWorkGroupInfo = 0x11B2
	KernelPreferredWorkGroupSizeMultiple KernelWorkGroupInfo = 0x11B3
	KernelPrivateMemSize                 KernelWorkGroupInfo = 0x11B4
)

// EventInfo is a cl_event_info.
type EventInfo uint32

const (
	EventCommandQueue           EventInfo = 0x11D0
	EventCommandType            EventInfo = 0x11D1
	EventReferenceCount         EventInfo = 0x11D2
	EventCommandExecutionStatus EventInfo = 0x11D3
	EventContext                EventInfo = 0x11D4
)

// CommandUser is the cl_command_type of user events.
const CommandUser uint32 = 0x1204

// Command execution status values (cl_int). Negative values are errors.
const (
	Complete  int32 = 0x0
	Running   int32 = 0x1
	Submitted int32 = 0x2
	Queued    int32 = 0x3
)

// True and False are the cl_bool encodings.
const (
	True  uint32 = 1
	False uint32 = 0
)
