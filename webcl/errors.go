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
	"github.com/pkg/errors"
)

// ErrorKind classifies the errors returned by the binding.
type ErrorKind int

const (
	// UnknownNativeError is a status not declared by the call site that returned it.
	UnknownNativeError ErrorKind = iota
	InvalidContext
	InvalidDevice
	InvalidValue
	InvalidOperation
	InvalidBufferSize
	InvalidHostPointer
	InvalidImageFormat
	InvalidImageSize
	InvalidBinary
	InvalidQueueProperties
	MemoryAllocationFailure
	OutOfResources
	OutOfHostMemory

	// UseAfterRelease is returned when using a wrapper whose resource was already released.
	UseAfterRelease

	// InvalidParameter is an info query parameter the binding doesn't know how to decode.
	InvalidParameter

	InvalidPlatform
	InvalidDeviceType
	DeviceNotFound
	InvalidCommandQueue
	InvalidMemObject
	InvalidSampler
	InvalidProgram
	InvalidProgramExecutable
	InvalidBuildOptions
	BuildProgramFailure
	CompilerNotAvailable
	InvalidKernelName
	InvalidKernelDefinition
	InvalidKernel
	InvalidArgIndex
	InvalidArgValue
	InvalidArgSize
	InvalidEvent
)

var errorKindNames = [...]string{
	UnknownNativeError:       "UnknownNativeError",
	InvalidContext:           "InvalidContext",
	InvalidDevice:            "InvalidDevice",
	InvalidValue:             "InvalidValue",
	InvalidOperation:         "InvalidOperation",
	InvalidBufferSize:        "InvalidBufferSize",
	InvalidHostPointer:       "InvalidHostPointer",
	InvalidImageFormat:       "InvalidImageFormat",
	InvalidImageSize:         "InvalidImageSize",
	InvalidBinary:            "InvalidBinary",
	InvalidQueueProperties:   "InvalidQueueProperties",
	MemoryAllocationFailure:  "MemoryAllocationFailure",
	OutOfResources:           "OutOfResources",
	OutOfHostMemory:          "OutOfHostMemory",
	UseAfterRelease:          "UseAfterRelease",
	InvalidParameter:         "InvalidParameter",
	InvalidPlatform:          "InvalidPlatform",
	InvalidDeviceType:        "InvalidDeviceType",
	DeviceNotFound:           "DeviceNotFound",
	InvalidCommandQueue:      "InvalidCommandQueue",
	InvalidMemObject:         "InvalidMemObject",
	InvalidSampler:           "InvalidSampler",
	InvalidProgram:           "InvalidProgram",
	InvalidProgramExecutable: "InvalidProgramExecutable",
	InvalidBuildOptions:      "InvalidBuildOptions",
	BuildProgramFailure:      "BuildProgramFailure",
	CompilerNotAvailable:     "CompilerNotAvailable",
	InvalidKernelName:        "InvalidKernelName",
	InvalidKernelDefinition:  "InvalidKernelDefinition",
	InvalidKernel:            "InvalidKernel",
	InvalidArgIndex:          "InvalidArgIndex",
	InvalidArgValue:          "InvalidArgValue",
	InvalidArgSize:           "InvalidArgSize",
	InvalidEvent:             "InvalidEvent",
}

// String implements fmt.Stringer.
func (k ErrorKind) String() string {
	if k < 0 || int(k) >= len(errorKindNames) {
		return fmt.Sprintf("ErrorKind(%d)", int(k))
	}
	return errorKindNames[k]
}

// ErrorKinds returns all error kinds.
func ErrorKinds() []ErrorKind {
	kinds := make([]ErrorKind, len(errorKindNames))
	for ii := range kinds {
		kinds[ii] = ErrorKind(ii)
	}
	return kinds
}

// Error is the error returned by the binding.
//
// Errors are returned wrapped with a stack trace (github.com/pkg/errors), use KindOf, IsKind or errors.As
// to inspect them.
type Error struct {
	Kind ErrorKind

	// Status returned by the native call, or native.Success if the error was raised by the binding
	// before reaching the native layer.
	Status native.Status

	// Op is the native function (e.g. "clCreateBuffer") or binding operation that failed.
	Op string

	// Msg is an optional detail.
	Msg string
}

// Error implements error.
func (e *Error) Error() string {
	msg := fmt.Sprintf("webcl: %s: %s", e.Op, e.Kind)
	if e.Status != native.Success {
		msg = fmt.Sprintf("%s (%s)", msg, e.Status)
	}
	if e.Msg != "" {
		msg = msg + ": " + e.Msg
	}
	return msg
}

// errorf returns an error raised by the binding itself, before any native call.
func errorf(kind ErrorKind, op, format string, args ...any) error {
	return errors.WithStack(&Error{Kind: kind, Op: op, Msg: fmt.Sprintf(format, args...)})
}

// nativeError returns the error for a failed native call.
func nativeError(kind ErrorKind, status native.Status, op string) error {
	return errors.WithStack(&Error{Kind: kind, Status: status, Op: op})
}

// KindOf returns the kind of err, if it is (or wraps) an *Error.
func KindOf(err error) (kind ErrorKind, ok bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return UnknownNativeError, false
}

// IsKind returns whether err is (or wraps) an *Error of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	k, ok := KindOf(err)
	return ok && k == kind
}

// StatusOf returns the native status of err, or native.Success if it wasn't caused by a native call.
func StatusOf(err error) native.Status {
	var e *Error
	if errors.As(err, &e) {
		return e.Status
	}
	return native.Success
}
