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

import cl "github.com/gomlx/webcl/native"

// Declared call sites. The order of the statuses is the order in which they are matched.
//
// Statuses declared for the context factories follow the original binding, including its omissions
// (clCreateBuffer doesn't declare CL_INVALID_CONTEXT). The remaining sites follow the error lists of
// the OpenCL 1.1 specification.
var (
	siteGetPlatformIDs = declare("clGetPlatformIDs",
		cl.InvalidValue, cl.OutOfHostMemory)
	siteGetPlatformInfo = declare("clGetPlatformInfo",
		cl.InvalidPlatform, cl.InvalidValue, cl.OutOfHostMemory)
	siteGetDeviceIDs = declare("clGetDeviceIDs",
		cl.InvalidPlatform, cl.InvalidDeviceType, cl.InvalidValue, cl.DeviceNotFound, cl.OutOfResources,
		cl.OutOfHostMemory)
	siteGetDeviceInfo = declare("clGetDeviceInfo",
		cl.InvalidDevice, cl.InvalidValue, cl.OutOfResources, cl.OutOfHostMemory)

	siteCreateContext = declare("clCreateContext",
		cl.InvalidPlatform, cl.InvalidValue, cl.InvalidDevice, cl.OutOfResources, cl.OutOfHostMemory)
	siteCreateContextFromType = declare("clCreateContextFromType",
		cl.InvalidPlatform, cl.InvalidValue, cl.InvalidDeviceType, cl.DeviceNotFound, cl.OutOfResources,
		cl.OutOfHostMemory)
	siteGetContextInfo = declare("clGetContextInfo",
		cl.InvalidContext, cl.InvalidValue, cl.OutOfResources, cl.OutOfHostMemory)

	siteCreateProgramWithSource = declare("clCreateProgramWithSource",
		cl.InvalidContext, cl.InvalidValue, cl.OutOfResources, cl.OutOfHostMemory)
	siteCreateProgramWithBinary = declare("clCreateProgramWithBinary",
		cl.InvalidContext, cl.InvalidValue, cl.InvalidDevice, cl.InvalidBinary, cl.OutOfResources,
		cl.OutOfHostMemory)
	siteCreateCommandQueue = declare("clCreateCommandQueue",
		cl.InvalidContext, cl.InvalidDevice, cl.InvalidValue, cl.InvalidQueueProperties, cl.OutOfResources,
		cl.OutOfHostMemory)
	siteCreateBuffer = declare("clCreateBuffer",
		cl.InvalidValue, cl.InvalidBufferSize, cl.InvalidHostPtr, cl.MemObjectAllocationFailure,
		cl.OutOfResources, cl.OutOfHostMemory)
	siteCreateImage2D = declare("clCreateImage2D",
		cl.InvalidContext, cl.InvalidValue, cl.InvalidImageFormatDescriptor, cl.InvalidImageSize,
		cl.InvalidHostPtr, cl.ImageFormatNotSupported, cl.MemObjectAllocationFailure, cl.InvalidOperation,
		cl.OutOfResources, cl.OutOfHostMemory)
	siteCreateImage3D = declare("clCreateImage3D",
		cl.InvalidContext, cl.InvalidValue, cl.InvalidImageFormatDescriptor, cl.InvalidImageSize,
		cl.InvalidHostPtr, cl.ImageFormatNotSupported, cl.MemObjectAllocationFailure, cl.InvalidOperation,
		cl.OutOfResources, cl.OutOfHostMemory)
	siteCreateSampler = declare("clCreateSampler",
		cl.InvalidContext, cl.InvalidValue, cl.InvalidOperation, cl.OutOfResources, cl.OutOfHostMemory)
	siteCountSupportedImageFormats = declare("clGetSupportedImageFormats",
		cl.InvalidValue)
	siteGetSupportedImageFormats = declare("clGetSupportedImageFormats",
		cl.InvalidContext, cl.InvalidValue, cl.OutOfResources, cl.OutOfHostMemory)
	siteCreateUserEvent = declare("clCreateUserEvent",
		cl.InvalidContext, cl.OutOfResources, cl.OutOfHostMemory)

	siteGetCommandQueueInfo = declare("clGetCommandQueueInfo",
		cl.InvalidCommandQueue, cl.InvalidValue, cl.OutOfResources, cl.OutOfHostMemory)

	siteGetMemObjectInfo = declare("clGetMemObjectInfo",
		cl.InvalidMemObject, cl.InvalidValue, cl.OutOfResources, cl.OutOfHostMemory)
	siteGetImageInfo = declare("clGetImageInfo",
		cl.InvalidMemObject, cl.InvalidValue, cl.OutOfResources, cl.OutOfHostMemory)

	siteGetSamplerInfo = declare("clGetSamplerInfo",
		cl.InvalidSampler, cl.InvalidValue, cl.OutOfResources, cl.OutOfHostMemory)

	siteBuildProgram = declare("clBuildProgram",
		cl.InvalidProgram, cl.InvalidValue, cl.InvalidDevice, cl.InvalidBinary, cl.InvalidBuildOptions,
		cl.InvalidOperation, cl.CompilerNotAvailable, cl.BuildProgramFailure, cl.OutOfResources,
		cl.OutOfHostMemory)
	siteGetProgramInfo = declare("clGetProgramInfo",
		cl.InvalidProgram, cl.InvalidValue, cl.OutOfResources, cl.OutOfHostMemory)
	siteGetProgramBuildInfo = declare("clGetProgramBuildInfo",
		cl.InvalidDevice, cl.InvalidValue, cl.InvalidProgram, cl.OutOfResources, cl.OutOfHostMemory)
	siteCreateKernel = declare("clCreateKernel",
		cl.InvalidProgram, cl.InvalidProgramExecutable, cl.InvalidKernelName, cl.InvalidKernelDefinition,
		cl.InvalidValue, cl.OutOfResources, cl.OutOfHostMemory)
	siteCreateKernelsInProgram = declare("clCreateKernelsInProgram",
		cl.InvalidProgram, cl.InvalidProgramExecutable, cl.InvalidKernelDefinition, cl.InvalidValue,
		cl.OutOfResources, cl.OutOfHostMemory)

	siteGetKernelInfo = declare("clGetKernelInfo",
		cl.InvalidKernel, cl.InvalidValue, cl.OutOfResources, cl.OutOfHostMemory)
	siteGetKernelWorkGroupInfo = declare("clGetKernelWorkGroupInfo",
		cl.InvalidDevice, cl.InvalidValue, cl.InvalidKernel, cl.OutOfResources, cl.OutOfHostMemory)
	siteSetKernelArg = declare("clSetKernelArg",
		cl.InvalidKernel, cl.InvalidArgIndex, cl.InvalidArgValue, cl.InvalidMemObject, cl.InvalidSampler,
		cl.InvalidArgSize, cl.OutOfResources, cl.OutOfHostMemory)

	siteSetUserEventStatus = declare("clSetUserEventStatus",
		cl.InvalidEvent, cl.InvalidValue, cl.InvalidOperation, cl.OutOfResources, cl.OutOfHostMemory)
	siteGetEventInfo = declare("clGetEventInfo",
		cl.InvalidEvent, cl.InvalidValue, cl.OutOfResources, cl.OutOfHostMemory)
)
