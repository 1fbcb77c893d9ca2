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

import "runtime"

// Finalizer is any object that implements Finalize, that can be called
// when an object is deallocated using runtime.SetFinalizer.
type Finalizer interface {
	// Finalize frees the underlying native resource.
	//
	// Finalize is idempotent: if called multiple times subsequent calls are no-ops.
	Finalize()
}

// RegisterFinalizer makes sure o.Finalize is called when o is garbage collected.
func RegisterFinalizer[T Finalizer](o T) {
	runtime.SetFinalizer(o, func(o T) {
		o.Finalize()
	})
}
