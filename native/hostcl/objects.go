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


package hostcl

import (
	"slices"

	"github.com/gomlx/webcl/native"
	"k8s.io/klog/v2"
)

// object is any reference counted resource owned by the driver.
type object interface {
	counts() *refCounts
	// parents holding an internal reference from this object.
	parents() []object
	// releaseFn is the name of the function releasing it, e.g. "clReleaseMemObject".
	releaseFn() string
}

// refCounts of an object: user references are the ones visible through the API (retain/release), internal
// references are held by children. The object is destroyed when both drop to zero.
type refCounts struct {
	h        native.Handle
	user     int
	internal int
}

func (rc *refCounts) counts() *refCounts { return rc }

// platform and device are not reference counted: they live as long as the driver.
type platform struct {
	h native.Handle
}

type device struct {
	h     native.Handle
	index int
}

type context struct {
	refCounts
	devices    []*device
	properties []native.ContextProperty
}

func (c *context) parents() []object { return nil }
func (c *context) releaseFn() string { return "clReleaseContext" }

type queue struct {
	refCounts
	ctx        *context
	device     *device
	properties native.CommandQueueProperties
}

func (q *queue) parents() []object { return []object{q.ctx} }
func (q *queue) releaseFn() string { return "clReleaseCommandQueue" }

type sampler struct {
	refCounts
	ctx        *context
	normalized bool
	addressing native.AddressingMode
	filter     native.FilterMode
}

func (s *sampler) parents() []object { return []object{s.ctx} }
func (s *sampler) releaseFn() string { return "clReleaseSampler" }

type event struct {
	refCounts
	ctx       *context
	status    int32
	statusSet bool
}

func (e *event) parents() []object { return []object{e.ctx} }
func (e *event) releaseFn() string { return "clReleaseEvent" }

// insert a new object with one user reference, and take internal references on its parents.
func (d *Driver) insert(obj object) native.Handle {
	rc := obj.counts()
	rc.h = d.newHandle()
	rc.user = 1
	for _, parent := range obj.parents() {
		parent.counts().internal++
	}
	d.objects[rc.h] = obj
	return rc.h
}

// lookup returns the live object of type T with handle h. Objects whose user references are gone are not
// visible anymore, even if they are kept alive internally.
func lookup[T object](d *Driver, h native.Handle) (T, bool) {
	var zero T
	obj, found := d.objects[h]
	if !found {
		return zero, false
	}
	typed, ok := obj.(T)
	if !ok || typed.counts().user <= 0 {
		return zero, false
	}
	return typed, true
}

// release drops one user reference of the object of type T with handle h, returning invalidStatus if
// there is no such live object.
func release[T object](d *Driver, fn string, h native.Handle, invalidStatus native.Status) native.Status {
	d.mu.Lock()
	defer d.mu.Unlock()
	if status := d.begin(fn); status != native.Success {
		d.releaseFailures++
		return status
	}
	obj, found := lookup[T](d, h)
	if !found {
		d.releaseFailures++
		klog.V(1).Infof("host driver: %s(%s) of invalid handle", fn, h)
		return invalidStatus
	}
	d.releases[fn]++
	obj.counts().user--
	d.maybeDestroy(obj)
	return native.Success
}

// maybeDestroy destroys obj if it has no references left, and recursively its parents.
func (d *Driver) maybeDestroy(obj object) {
	rc := obj.counts()
	if rc.user > 0 || rc.internal > 0 {
		return
	}
	delete(d.objects, rc.h)
	if destroyer, ok := obj.(interface{ destroy(d *Driver) }); ok {
		destroyer.destroy(d)
	}
	klog.V(2).Infof("host driver: destroyed %s, last released by %s", rc.h, obj.releaseFn())
	for _, parent := range obj.parents() {
		parent.counts().internal--
		d.maybeDestroy(parent)
	}
}

// findDevice returns the driver device with handle h.
func (d *Driver) findDevice(h native.Handle) (*device, bool) {
	for _, dev := range d.devices {
		if dev.h == h {
			return dev, true
		}
	}
	return nil, false
}

// resolveDevices converts handles to devices, all of which must be in allowed.
func (d *Driver) resolveDevices(handles []native.Handle, allowed []*device) ([]*device, bool) {
	devices := make([]*device, 0, len(handles))
	for _, h := range handles {
		dev, found := d.findDevice(h)
		if !found || !slices.Contains(allowed, dev) {
			return nil, false
		}
		devices = append(devices, dev)
	}
	return devices, true
}
