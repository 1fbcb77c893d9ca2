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


// Package jsbind installs a webcl.Binding in a goja JavaScript runtime, with the shape of the WebCL API:
//
//	var ctx = webcl.createContext(webcl.CL_DEVICE_TYPE_ALL);
//	var buf = ctx.createBuffer(webcl.CL_MEM_READ_WRITE, 1024);
//	var program = ctx.createProgram("__kernel void k(__global float *x) {}");
//	program.build();
//	program.createKernel("k").setArg(0, buf);
//	buf.release();
//
// Every wrapped object has a release() method. Objects not explicitly released are released when the
// JavaScript object is garbage collected, or when the binding is closed.
//
// Errors are thrown as Go errors with two extra properties: kind (the webcl.ErrorKind name, e.g.
// "InvalidBufferSize") and code (the native status, e.g. webcl.CL_INVALID_BUFFER_SIZE, or 0 for errors
// detected before calling the driver).
//
// A Host is bound to its runtime, and like the runtime it's not safe for concurrent use.
package jsbind

import (
	"fmt"
	"weak"

	"github.com/dop251/goja"
	"github.com/gomlx/webcl/native"
	"github.com/gomlx/webcl/webcl"
	"github.com/pkg/errors"
	"k8s.io/klog/v2"
)

// GlobalName is the name of the global object installed in the runtime.
const GlobalName = "webcl"

// Host exposes a webcl.Binding to a goja runtime.
type Host struct {
	rt      *goja.Runtime
	binding *webcl.Binding

	// key is the symbol under which JavaScript objects keep their Go wrapper.
	key *goja.Symbol

	// objects maps live handles to their JavaScript objects, so queries return the same object for the
	// same resource. Entries don't keep the objects alive.
	objects    map[webcl.Handle]weak.Pointer[jsObject]
	sinceSweep int
}

// resource is implemented by all webcl wrappers.
type resource interface {
	fmt.Stringer
	Handle() (webcl.Handle, error)
	Release()
	Released() bool
}

// jsObject links a JavaScript object to its Go wrapper. It's only referenced (strongly) by the JavaScript
// object itself.
type jsObject struct {
	obj *goja.Object
	res resource
}

// methods of a JavaScript object.
type methods map[string]func(call goja.FunctionCall) goja.Value

// sweepInterval is the number of wrapped objects after which dead entries are removed from Host.objects.
const sweepInterval = 256

// Install creates the webcl global object in rt, bound to b.
func Install(rt *goja.Runtime, b *webcl.Binding) (*Host, error) {
	h := &Host{
		rt:      rt,
		binding: b,
		key:     goja.NewSymbol("webcl.object"),
		objects: make(map[webcl.Handle]weak.Pointer[jsObject]),
	}
	if err := rt.Set(GlobalName, h.newGlobal()); err != nil {
		return nil, errors.Wrapf(err, "failed to install %q in the JavaScript runtime", GlobalName)
	}
	return h, nil
}

// Runtime returns the runtime the host was installed in.
func (h *Host) Runtime() *goja.Runtime {
	return h.rt
}

// Binding returns the binding exposed by the host.
func (h *Host) Binding() *webcl.Binding {
	return h.binding
}

// Live returns the number of wrapped objects whose JavaScript object may still be reachable.
func (h *Host) Live() int {
	h.sweep()
	return len(h.objects)
}

func (h *Host) newGlobal() *goja.Object {
	obj := h.rt.NewObject()
	for name, value := range constants {
		_ = obj.Set(name, value)
	}
	for _, status := range native.Statuses() {
		_ = obj.Set(status.String(), int64(status))
	}
	_ = obj.Set("type", argTypes())
	_ = obj.Set("getPlatforms", h.getPlatforms)
	_ = obj.Set("createContext", h.createContext)
	_ = obj.Set("releaseAll", h.releaseAll)
	return obj
}

// wrap returns the JavaScript object for res, creating it with the given methods if needed.
// All objects get release() and toString() methods.
func (h *Host) wrap(res resource, newMethods func() methods) *goja.Object {
	handle, err := res.Handle()
	h.check(err)
	if ptr, found := h.objects[handle]; found {
		if jo := ptr.Value(); jo != nil && jo.res == res {
			return jo.obj
		}
	}

	obj := h.rt.NewObject()
	jo := &jsObject{obj: obj, res: res}
	_ = obj.SetSymbol(h.key, jo)
	for name, fn := range newMethods() {
		_ = obj.Set(name, fn)
	}
	_ = obj.Set("release", func(goja.FunctionCall) goja.Value {
		res.Release()
		return goja.Undefined()
	})
	_ = obj.Set("toString", func(goja.FunctionCall) goja.Value {
		return h.rt.ToValue(res.String())
	})
	h.objects[handle] = weak.Make(jo)
	h.sinceSweep++
	if h.sinceSweep >= sweepInterval {
		h.sweep()
	}
	return obj
}

// sweep removes entries of collected or released objects.
func (h *Host) sweep() {
	for handle, ptr := range h.objects {
		if jo := ptr.Value(); jo == nil || jo.res.Released() {
			delete(h.objects, handle)
		}
	}
	h.sinceSweep = 0
}

// jsObjectOf returns the link to the Go wrapper of v, or nil if v is not a wrapped object.
func (h *Host) jsObjectOf(v goja.Value) *jsObject {
	obj, ok := v.(*goja.Object)
	if !ok {
		return nil
	}
	wrapped := obj.GetSymbol(h.key)
	if wrapped == nil {
		return nil
	}
	jo, _ := wrapped.Export().(*jsObject)
	return jo
}

// Object returns the Go wrapper (e.g. a *webcl.Context) of the WebCL JavaScript object v, or nil if v
// isn't one.
func (h *Host) Object(v goja.Value) any {
	if jo := h.jsObjectOf(v); jo != nil {
		return jo.res
	}
	return nil
}

// unwrap returns the Go wrapper of the JavaScript object v, or nil if v is null or undefined.
// It throws InvalidValue if v is not an object of type T.
func unwrap[T any](h *Host, op string, v goja.Value) *T {
	if isMissing(v) {
		return nil
	}
	if jo := h.jsObjectOf(v); jo != nil {
		if res, ok := any(jo.res).(*T); ok {
			return res
		}
	}
	panic(h.invalidValue(op, "expected a %T, got %s", (*T)(nil), v))
}

// exception converts err to a JavaScript exception, to be thrown with panic.
func (h *Host) exception(err error) *goja.Object {
	obj := h.rt.NewGoError(err)
	if kind, ok := webcl.KindOf(err); ok {
		_ = obj.Set("name", "WebCLException")
		_ = obj.Set("kind", kind.String())
		_ = obj.Set("code", int64(webcl.StatusOf(err)))
	}
	klog.V(2).Infof("jsbind: throwing %v", err)
	return obj
}

// check throws err, if not nil.
func (h *Host) check(err error) {
	if err != nil {
		panic(h.exception(err))
	}
}

// invalidValue creates an InvalidValue exception for malformed arguments.
func (h *Host) invalidValue(op, format string, args ...any) *goja.Object {
	return h.exception(errors.WithStack(&webcl.Error{Kind: webcl.InvalidValue, Op: op,
		Msg: fmt.Sprintf(format, args...)}))
}

// result throws err or returns value converted to JavaScript.
func (h *Host) result(value any, err error) goja.Value {
	h.check(err)
	return h.toJS(value)
}
