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
	"sync"

	"github.com/gomlx/exceptions"
	"k8s.io/klog/v2"
)

// Registry tracks the live resources of a Binding, so they can all be released when it is closed.
//
// It holds the resources, not the wrapper objects, so it never prevents a wrapper from being garbage
// collected (which in turn releases its resource).
type Registry struct {
	mu sync.Mutex

	// slots is indexed by Key. Slots not holding a *resource hold the Key of the next free slot,
	// forming a linked list.
	slots []any

	// nextFree is the first free slot, or endOfList.
	nextFree Key

	live int
}

// Key identifies a registered resource. Keys are reused after being unregistered.
type Key int

const (
	initialFreeSlots = 64
	endOfList        = Key(-1)
	noKey            = Key(-1)
)

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	r := &Registry{slots: make([]any, initialFreeSlots)}
	for ii := 0; ii < len(r.slots)-1; ii++ {
		r.slots[ii] = Key(ii + 1)
	}
	r.slots[len(r.slots)-1] = endOfList
	return r
}

// register res, returning its key.
func (r *Registry) register(res *resource) Key {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.live++
	if r.nextFree == endOfList {
		r.slots = append(r.slots, res)
		return Key(len(r.slots) - 1)
	}
	key := r.nextFree
	r.nextFree = r.slots[key].(Key)
	r.slots[key] = res
	return key
}

// unregister frees the slot of res. Unregistering a resource not registered is a no-op.
func (r *Registry) unregister(res *resource) {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := res.key
	if key < 0 || int(key) >= len(r.slots) || r.slots[key] != res {
		return
	}
	r.slots[key] = r.nextFree
	r.nextFree = key
	r.live--
}

// assertRegistered panics if res is not registered under its key.
func (r *Registry) assertRegistered(res *resource) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if res.key < 0 || int(res.key) >= len(r.slots) || r.slots[res.key] != res {
		exceptions.Panicf("webcl: %s used but not registered (key %d)", res.handle, res.key)
	}
}

// Len returns the number of registered resources.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.live
}

// snapshot returns the registered resources.
func (r *Registry) snapshot() []*resource {
	r.mu.Lock()
	defer r.mu.Unlock()
	resources := make([]*resource, 0, r.live)
	for _, slot := range r.slots {
		if res, ok := slot.(*resource); ok {
			resources = append(resources, res)
		}
	}
	return resources
}

// DrainAll releases every registered resource, in no particular order, and returns how many were released.
//
// Resources released concurrently (e.g. by a finalizer) are skipped. A panic while releasing one resource
// is logged and doesn't stop the drain.
func (r *Registry) DrainAll() int {
	drained := 0
	for _, res := range r.snapshot() {
		exception := exceptions.Try(func() {
			if res.release() {
				drained++
			}
		})
		if exception != nil {
			klog.Errorf("webcl: failed to release %s while draining: %v", res.handle, exception)
		}
	}
	return drained
}
