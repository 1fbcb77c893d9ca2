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
	"github.com/gomlx/webcl/native"
	"k8s.io/klog/v2"
)

// Factories wrap the handles returned by successful creation calls. Each registers the new resource
// with the binding, and a finalizer that releases it when the wrapper is garbage collected.

// track registers a new resource with the binding.
func (b *Binding) track(kind Kind, id native.Handle) object {
	res := &resource{binding: b, handle: Handle{Kind: kind, ID: id}}
	res.key = b.registry.register(res)
	klog.V(1).Infof("webcl[%s]: created %s", b, res.handle)
	return object{res: res}
}

func wrapPlatform(b *Binding, id native.Handle) *Platform {
	p := &Platform{object: b.track(KindPlatform, id)}
	RegisterFinalizer(p)
	return p
}

func wrapDevice(b *Binding, id native.Handle, platform *Platform) *Device {
	d := &Device{object: b.track(KindDevice, id), child: childOf(platform)}
	RegisterFinalizer(d)
	return d
}

func wrapContext(b *Binding, id native.Handle) *Context {
	c := &Context{object: b.track(KindContext, id)}
	RegisterFinalizer(c)
	return c
}

func wrapCommandQueue(ctx *Context, id native.Handle, device *Device) *CommandQueue {
	q := &CommandQueue{object: ctx.Binding().track(KindCommandQueue, id), child: childOf(ctx), device: device}
	RegisterFinalizer(q)
	return q
}

// wrapMemoryObject wraps a buffer or image. hostRegion is kept referenced until the object is released
// if the driver may use it (CL_MEM_USE_HOST_PTR).
func wrapMemoryObject(ctx *Context, id native.Handle, flags native.MemFlags, hostRegion []byte) *MemoryObject {
	m := &MemoryObject{object: ctx.Binding().track(KindMemoryObject, id), child: childOf(ctx)}
	if flags&native.MemUseHostPtr != 0 {
		m.res.hostRegion = hostRegion
	}
	RegisterFinalizer(m)
	return m
}

func wrapSampler(ctx *Context, id native.Handle) *Sampler {
	s := &Sampler{object: ctx.Binding().track(KindSampler, id), child: childOf(ctx)}
	RegisterFinalizer(s)
	return s
}

func wrapProgram(ctx *Context, id native.Handle) *Program {
	p := &Program{object: ctx.Binding().track(KindProgram, id), child: childOf(ctx)}
	RegisterFinalizer(p)
	return p
}

func wrapKernel(program *Program, id native.Handle) *Kernel {
	k := &Kernel{object: program.Binding().track(KindKernel, id), child: childOf(program)}
	RegisterFinalizer(k)
	return k
}

func wrapEvent(ctx *Context, id native.Handle) *Event {
	e := &Event{object: ctx.Binding().track(KindEvent, id), child: childOf(ctx)}
	RegisterFinalizer(e)
	return e
}
