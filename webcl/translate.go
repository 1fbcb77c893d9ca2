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
	"github.com/gomlx/exceptions"
	"github.com/gomlx/webcl/native"
)

// canonicalKinds maps each status a call site may declare to its error kind.
var canonicalKinds = map[native.Status]ErrorKind{
	native.DeviceNotFound:               DeviceNotFound,
	native.CompilerNotAvailable:         CompilerNotAvailable,
	native.MemObjectAllocationFailure:   MemoryAllocationFailure,
	native.OutOfResources:               OutOfResources,
	native.OutOfHostMemory:              OutOfHostMemory,
	native.ImageFormatNotSupported:      InvalidImageFormat,
	native.BuildProgramFailure:          BuildProgramFailure,
	native.InvalidValue:                 InvalidValue,
	native.InvalidDeviceType:            InvalidDeviceType,
	native.InvalidPlatform:              InvalidPlatform,
	native.InvalidDevice:                InvalidDevice,
	native.InvalidContext:               InvalidContext,
	native.InvalidQueueProperties:       InvalidQueueProperties,
	native.InvalidCommandQueue:          InvalidCommandQueue,
	native.InvalidHostPtr:               InvalidHostPointer,
	native.InvalidMemObject:             InvalidMemObject,
	native.InvalidImageFormatDescriptor: InvalidImageFormat,
	native.InvalidImageSize:             InvalidImageSize,
	native.InvalidSampler:               InvalidSampler,
	native.InvalidBinary:                InvalidBinary,
	native.InvalidBuildOptions:          InvalidBuildOptions,
	native.InvalidProgram:               InvalidProgram,
	native.InvalidProgramExecutable:     InvalidProgramExecutable,
	native.InvalidKernelName:            InvalidKernelName,
	native.InvalidKernelDefinition:      InvalidKernelDefinition,
	native.InvalidKernel:                InvalidKernel,
	native.InvalidArgIndex:              InvalidArgIndex,
	native.InvalidArgValue:              InvalidArgValue,
	native.InvalidArgSize:               InvalidArgSize,
	native.InvalidEvent:                 InvalidEvent,
	native.InvalidOperation:             InvalidOperation,
	native.InvalidBufferSize:            InvalidBufferSize,
}

// statusMapping is one entry of a call site's declared list.
type statusMapping struct {
	Status native.Status
	Kind   ErrorKind
}

// callSite is a native function as called from one place of the binding, with the ordered list of the
// statuses it declares. Statuses not declared translate to UnknownNativeError.
type callSite struct {
	op       string
	mappings []statusMapping
}

// callSites holds every declared call site, in declaration order.
var callSites []*callSite

// declare creates a call site for the native function op. All statuses must have a canonical kind.
func declare(op string, statuses ...native.Status) *callSite {
	site := &callSite{op: op, mappings: make([]statusMapping, 0, len(statuses))}
	for _, status := range statuses {
		kind, found := canonicalKinds[status]
		if !found {
			exceptions.Panicf("webcl: call site %q declares %s, which has no error kind", op, status)
		}
		site.mappings = append(site.mappings, statusMapping{Status: status, Kind: kind})
	}
	callSites = append(callSites, site)
	return site
}

// translate returns the error kind for a non-success status: the first declared match, or
// UnknownNativeError.
func (site *callSite) translate(status native.Status) ErrorKind {
	for _, m := range site.mappings {
		if m.Status == status {
			return m.Kind
		}
	}
	return UnknownNativeError
}

// check returns nil for native.Success, or the translated error.
func (site *callSite) check(status native.Status) error {
	if status == native.Success {
		return nil
	}
	return nativeError(site.translate(status), status, site.op)
}
