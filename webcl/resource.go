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
	"runtime"
	"sync"
	"sync/atomic"
	"weak"

	"github.com/gomlx/webcl/native"
	"k8s.io/klog/v2"
)

// resource owns one native handle, and is what the Registry tracks.
type resource struct {
	mu       sync.Mutex
	binding  *Binding
	handle   Handle
	key      Key
	released atomic.Bool

	// hostRegion is a host memory region the driver may use (CL_MEM_USE_HOST_PTR), kept referenced
	// until the native resource is released.
	hostRegion []byte
}

// id returns the native handle, or a UseAfterRelease error.
func (r *resource) id(op string) (native.Handle, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.released.Load() {
		return native.NilHandle, errorf(UseAfterRelease, op, "%s already released", r.handle.Kind)
	}
	if r.binding.debug {
		r.binding.registry.assertRegistered(r)
	}
	return r.handle.ID, nil
}

// release the native resource, if not yet released. It returns whether it was released by this call.
func (r *resource) release() bool {
	handle, hostRegion, ok := r.invalidate()
	if !ok {
		return false
	}
	if name, releaseFn := releasePrimitive(r.binding.driver, handle.Kind); releaseFn != nil {
		if status := releaseFn(handle.ID); status != native.Success {
			klog.Warningf("webcl: %s(%s) failed with %s", name, handle.ID, status)
		}
	}
	runtime.KeepAlive(hostRegion)
	if handle.Kind == KindDevice || handle.Kind == KindPlatform {
		r.binding.forget(handle)
	}
	klog.V(1).Infof("webcl[%s]: released %s", r.binding, handle)
	return true
}

// invalidate marks the resource as released and unregisters it. It returns false if it was already released.
func (r *resource) invalidate() (handle Handle, hostRegion []byte, ok bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.released.Load() {
		return
	}
	handle, hostRegion = r.handle, r.hostRegion
	r.released.Store(true)
	r.handle.ID = native.NilHandle
	r.hostRegion = nil
	r.binding.registry.unregister(r)
	r.key = noKey
	return handle, hostRegion, true
}

// object is the base of all wrapper objects.
type object struct {
	res *resource
}

// Handle returns the kind and native id of the resource, or a UseAfterRelease error if it has been released.
func (o *object) Handle() (Handle, error) {
	defer runtime.KeepAlive(o)
	id, err := o.res.id("Handle")
	if err != nil {
		return Handle{Kind: o.res.handle.Kind}, err
	}
	return Handle{Kind: o.res.handle.Kind, ID: id}, nil
}

// Kind of the resource.
func (o *object) Kind() Kind {
	return o.res.handle.Kind
}

// Release the native resource. It is idempotent and never fails: a failure of the native release is logged.
//
// Any use of the object after it is released fails with UseAfterRelease.
func (o *object) Release() {
	defer runtime.KeepAlive(o)
	o.res.release()
}

// Released returns whether the object has already been released.
func (o *object) Released() bool {
	return o.res.released.Load()
}

// Finalize implements Finalizer.
func (o *object) Finalize() {
	o.Release()
}

// Binding that created the object.
func (o *object) Binding() *Binding {
	return o.res.binding
}

// String implements fmt.Stringer.
func (o *object) String() string {
	if o.Released() {
		return fmt.Sprintf("%s(released)", o.res.handle.Kind)
	}
	o.res.mu.Lock()
	defer o.res.mu.Unlock()
	return o.res.handle.String()
}

// child is embedded by wrappers that have a parent. The parent is only weakly referenced: it is never kept
// alive by its children.
type child[P any] struct {
	parent weak.Pointer[P]
}

func childOf[P any](parent *P) child[P] {
	return child[P]{parent: weak.Make(parent)}
}

// Parent returns the object this one was created from, or nil if it has already been garbage collected.
func (c *child[P]) Parent() *P {
	return c.parent.Value()
}
