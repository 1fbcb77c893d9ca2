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


// Package opencl implements native.Driver on top of a system OpenCL 1.1 (or later) implementation using cgo.
//
// It's only compiled with the "opencl" build tag, since it requires the OpenCL headers and library
// (libOpenCL.so, or the OpenCL framework on macOS):
//
//	go build -tags opencl ./...
//
// Import it for its side effect of registering the "opencl" driver:
//
//	import _ "github.com/gomlx/webcl/native/opencl"
//
// Memory given with CL_MEM_USE_HOST_PTR is pinned (see runtime.Pinner) until the memory object is released.
package opencl

// DriverName is the name used to register the driver, see native.Register.
const DriverName = "opencl"
