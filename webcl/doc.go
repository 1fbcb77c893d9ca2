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


// Package webcl binds a handle-based heterogeneous compute API (see package native) to Go's garbage collected
// world, the way WebCL binds OpenCL to a browser.
//
// Every native resource (context, command queue, memory object, sampler, program, kernel, event) is owned by
// exactly one wrapper object. The native resource is released exactly once: either explicitly with
// Release, by the garbage collector (a finalizer) when the wrapper becomes unreachable, or when the Binding
// that created it is closed.
//
// A Binding holds the driver and the registry of live resources, and is where everything starts:
//
//	b, err := webcl.Open()
//	if err != nil { ... }
//	defer b.Close()
//	platforms, err := b.Platforms()
//	...
//	ctx, err := b.CreateContextFromType(webcl.ContextProperties{}, native.DeviceTypeAll)
//	buf, err := ctx.CreateBuffer(native.MemReadWrite, 1024, nil)
//	defer buf.Release()
//
// Errors returned are *Error (wrapped with a stack trace), see KindOf and IsKind.
package webcl
