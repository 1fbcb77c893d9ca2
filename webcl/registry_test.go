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
	"runtime"
	"testing"

	"github.com/gomlx/webcl/native"
	"github.com/gomlx/webcl/native/hostcl"
	"github.com/janpfeifer/must"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryKeys(t *testing.T) {
	b, _ := newTestBinding(t, "")
	r := NewRegistry()
	var resources []*resource
	for range initialFreeSlots + 10 {
		res := &resource{binding: b, handle: Handle{Kind: KindDevice}}
		res.key = r.register(res)
		resources = append(resources, res)
	}
	require.Equal(t, initialFreeSlots+10, r.Len())
	for ii, res := range resources {
		require.Equal(t, Key(ii), res.key)
	}

	// Freed keys are reused, most recently freed first.
	r.unregister(resources[3])
	r.unregister(resources[7])
	r.unregister(resources[7]) // No-op.
	require.Equal(t, initialFreeSlots+8, r.Len())
	res := &resource{binding: b}
	assert.Equal(t, Key(7), r.register(res))
	assert.Equal(t, Key(3), r.register(res))
	assert.Equal(t, Key(initialFreeSlots+10), r.register(res))
	assert.Len(t, r.snapshot(), initialFreeSlots+11)
}

func TestDrainAll(t *testing.T) {
	b, driver, ctx := newTestContext(t, "")
	buffers := make([]*MemoryObject, 5)
	for ii := range buffers {
		buffers[ii] = must.M1(ctx.CreateBuffer(native.MemReadWrite, 1024, nil))
	}
	queue := must.M1(ctx.CreateCommandQueue(must.M1(ctx.Devices())[0], 0))
	event := must.M1(ctx.CreateUserEvent())

	// Explicitly release some.
	buffers[1].Release()
	buffers[3].Release()
	event.Release()
	event.Release()
	require.Equal(t, 3, driver.TotalReleases())

	// 1 context, 5 buffers, 1 queue, 1 event: 8 created in total. Plus the interned device and platform.
	live := b.Registry().Len()
	require.Equal(t, 8-3+2, live)
	require.Equal(t, live, b.Close())
	assert.Equal(t, 8, driver.TotalReleases())
	assert.Equal(t, 1, driver.Releases("clReleaseContext"))
	assert.Equal(t, 5, driver.Releases("clReleaseMemObject"))
	assert.Equal(t, 1, driver.Releases("clReleaseCommandQueue"))
	assert.Equal(t, 1, driver.Releases("clReleaseEvent"))
	assert.Zero(t, driver.ReleaseFailures())
	assert.Zero(t, driver.LiveObjects())
	assert.Zero(t, b.Registry().Len())

	// Everything is released, closing again is a no-op.
	for _, buf := range buffers {
		assert.True(t, buf.Released())
	}
	assert.True(t, queue.Released())
	assert.Zero(t, b.Close())
	assert.Equal(t, 8, driver.TotalReleases())
	_, err := ctx.CreateBuffer(native.MemReadWrite, 1024, nil)
	requireKind(t, err, UseAfterRelease)
}

func TestCloseKeepsBindingUsable(t *testing.T) {
	b, driver, ctx := newTestContext(t, "")
	require.Positive(t, b.Close())
	assert.True(t, ctx.Released())

	// New resources can still be created, and are released by the next Close.
	ctx = must.M1(b.CreateContextFromType(ContextProperties{}, native.DeviceTypeAll))
	must.M1(ctx.CreateBuffer(native.MemReadWrite, 16, nil))
	assert.Equal(t, 1, driver.Releases("clReleaseContext"))
	assert.Equal(t, 2, b.Close(), "context and buffer")
	assert.Equal(t, 2, driver.Releases("clReleaseContext"))
	assert.Equal(t, 1, driver.Releases("clReleaseMemObject"))
	assert.Zero(t, driver.LiveObjects())
}

// panickyDriver panics when releasing memory objects.
type panickyDriver struct {
	*hostcl.Driver
}

func (d panickyDriver) ReleaseMemObject(native.Handle) native.Status {
	panic("ReleaseMemObject failed")
}

func TestDrainAllWithPanics(t *testing.T) {
	driver := must.M1(hostcl.New(""))
	b := New(panickyDriver{driver}, Options{})
	ctx := must.M1(b.CreateContextFromType(ContextProperties{}, native.DeviceTypeAll))
	for range 3 {
		must.M1(ctx.CreateBuffer(native.MemReadWrite, 16, nil))
	}
	must.M1(ctx.CreateSampler(true, native.AddressClamp, native.FilterLinear))

	// The drain goes on in spite of the panics.
	assert.Equal(t, 2, b.Close())
	assert.Equal(t, 1, driver.Releases("clReleaseContext"))
	assert.Equal(t, 1, driver.Releases("clReleaseSampler"))
	assert.Zero(t, b.Registry().Len())
}

func TestDebugAssertions(t *testing.T) {
	_, _, ctx := newTestContext(t, "")
	buf := must.M1(ctx.CreateBuffer(native.MemReadWrite, 16, nil))

	// Simulate a registry corruption: the resource is live, but not registered.
	ctx.Binding().Registry().unregister(buf.res)
	assert.Panics(t, func() { _, _ = buf.Size() })
	runtime.KeepAlive(buf)
}
