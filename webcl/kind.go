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
	"fmt"

	"github.com/gomlx/webcl/native"
)

// Kind of native resource a wrapper owns.
type Kind int

const (
	KindContext Kind = iota
	KindCommandQueue
	KindMemoryObject
	KindSampler
	KindProgram
	KindKernel
	KindEvent
	KindDevice
	KindPlatform
)

var kindNames = [...]string{
	KindContext:      "Context",
	KindCommandQueue: "CommandQueue",
	KindMemoryObject: "MemoryObject",
	KindSampler:      "Sampler",
	KindProgram:      "Program",
	KindKernel:       "Kernel",
	KindEvent:        "Event",
	KindDevice:       "Device",
	KindPlatform:     "Platform",
}

// String implements fmt.Stringer.
func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return fmt.Sprintf("Kind(%d)", int(k))
	}
	return kindNames[k]
}

// Handle identifies a native resource: its kind and its native id.
// While the resource is live, ID is unique among resources of the same kind.
type Handle struct {
	Kind Kind
	ID   native.Handle
}

// IsNil returns whether the handle is the sentinel for released (or never created) resources.
func (h Handle) IsNil() bool {
	return h.ID == native.NilHandle
}

// String implements fmt.Stringer.
func (h Handle) String() string {
	return fmt.Sprintf("%s(%s)", h.Kind, h.ID)
}

// releasePrimitive returns the driver function releasing resources of the kind, or nil for kinds
// (Device and Platform) whose release is a no-op.
func releasePrimitive(driver native.Driver, kind Kind) (name string, release func(native.Handle) native.Status) {
	switch kind {
	case KindContext:
		return "clReleaseContext", driver.ReleaseContext
	case KindCommandQueue:
		return "clReleaseCommandQueue", driver.ReleaseCommandQueue
	case KindMemoryObject:
		return "clReleaseMemObject", driver.ReleaseMemObject
	case KindSampler:
		return "clReleaseSampler", driver.ReleaseSampler
	case KindProgram:
		return "clReleaseProgram", driver.ReleaseProgram
	case KindKernel:
		return "clReleaseKernel", driver.ReleaseKernel
	case KindEvent:
		return "clReleaseEvent", driver.ReleaseEvent
	}
	return "", nil
}
