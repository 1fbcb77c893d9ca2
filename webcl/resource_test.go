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
	"sync"
	"testing"
	"time"

	"github.com/gomlx/webcl/native"
	"github.com/janpfeifer/must"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRelease(t *testing.T) {
	b, driver, ctx := newTestContext(t, "")
	buf := must.M1(ctx.CreateBuffer(native.MemReadWrite, 1024, nil))
	h, err := buf.Handle()
	require.NoError(t, err)
	assert.Equal(t, KindMemoryObject, h.Kind)
	assert.False(t, h.IsNil())
	assert.False(t, buf.Released())
	numLive := b.Registry().Len()

	buf.Release()
	assert.True(t, buf.Released())
	assert.Equal(t, numLive-1, b.Registry().Len())
	assert.Equal(t, 1, driver.Releases("clReleaseMemObject"))

	// Double release is a no-op.
	buf.Release()
	buf.Finalize()
	assert.Equal(t, 1, driver.Releases("clReleaseMemObject"))
	assert.Zero(t, driver.ReleaseFailures())
	assert.Equal(t, numLive-1, b.Registry().Len())

	// Use after release.
	h, err = buf.Handle()
	requireKind(t, err, UseAfterRelease)
	assert.True(t, h.IsNil())
	assert.Equal(t, KindMemoryObject, h.Kind)
	numCalls := driver.TotalCalls()
	_, err = buf.Size()
	requireKind(t, err, UseAfterRelease)
	assert.Equal(t, numCalls, driver.TotalCalls(), "no native call should be made with a released handle")
	assert.Equal(t, "MemoryObject(released)", buf.String())
}

func TestConcurrentRelease(t *testing.T) {
	b, driver, ctx := newTestContext(t, "")
	const numBuffers, numGoroutines = 200, 8
	buffers := make([]*MemoryObject, numBuffers)
	for ii := range buffers {
		buffers[ii] = must.M1(ctx.CreateBuffer(native.MemReadWrite, 16, nil))
	}

	// Explicit releases and finalizations race each other and a drain of the registry.
	var wg sync.WaitGroup
	for g := range numGoroutines {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for ii := range buffers {
				buf := buffers[(ii+g*numBuffers/numGoroutines)%numBuffers]
				if ii%2 == 0 {
					buf.Release()
				} else {
					buf.Finalize()
				}
				_ = buf.String()
			}
		}()
	}
	wg.Add(1)
	go func() {
		defer wg.Done()
		b.Registry().DrainAll()
	}()
	wg.Wait()

	for _, buf := range buffers {
		require.True(t, buf.Released())
	}
	assert.Equal(t, numBuffers, driver.Releases("clReleaseMemObject"))
	assert.Zero(t, driver.ReleaseFailures())
	b.Close()
	assert.Equal(t, numBuffers, driver.Releases("clReleaseMemObject"))
	assert.Zero(t, driver.LiveObjects())
}

func TestUniqueHandles(t *testing.T) {
	_, _, ctx := newTestContext(t, "")
	seen := make(map[Handle]bool)
	for range 10 {
		buf := must.M1(ctx.CreateBuffer(native.MemReadOnly, 64, nil))
		h := must.M1(buf.Handle())
		require.False(t, seen[h], "handle %s returned twice", h)
		seen[h] = true
	}
}

func TestInterning(t *testing.T) {
	b, _ := newTestBinding(t, "devices=2")
	platforms := must.M1(b.Platforms())
	require.Len(t, platforms, 1)
	assert.Same(t, platforms[0], must.M1(b.Platforms())[0])

	devices := must.M1(platforms[0].Devices(native.DeviceTypeAll))
	require.Len(t, devices, 2)
	for _, d := range devices {
		assert.Same(t, platforms[0], d.Parent())
		assert.Same(t, platforms[0], must.M1(d.Platform()))
	}
	ctx := must.M1(b.CreateContext(ContextProperties{Platform: platforms[0]}, devices))
	ctxDevices := must.M1(ctx.Devices())
	require.Len(t, ctxDevices, 2)
	for ii := range devices {
		assert.Same(t, devices[ii], ctxDevices[ii])
	}

	// Releasing an interned device is a no-op natively, and a new wrapper is created on the next query.
	devices[0].Release()
	_, err := devices[0].Name()
	requireKind(t, err, UseAfterRelease)
	again := must.M1(ctx.Devices())[0]
	assert.NotSame(t, devices[0], again)
	assert.Equal(t, "Host Device #0", must.M1(again.Name()))

	// Released devices can't be used to create contexts.
	_, err = b.CreateContext(ContextProperties{}, devices)
	requireKind(t, err, UseAfterRelease)
	_, err = b.CreateContext(ContextProperties{}, []*Device{nil})
	requireKind(t, err, InvalidDevice)
	_, err = b.CreateContext(ContextProperties{}, nil)
	requireKind(t, err, InvalidValue)
}

// gcUntil runs the garbage collector until cond is true, or fails after a few seconds.
func gcUntil(t *testing.T, cond func() bool, msg string) {
	t.Helper()
	require.Eventually(t, func() bool {
		runtime.GC()
		runtime.Gosched()
		return cond()
	}, 5*time.Second, 10*time.Millisecond, msg)
}

func TestFinalizer(t *testing.T) {
	b, driver, ctx := newTestContext(t, "")
	numLive := b.Registry().Len()
	func() {
		for range 3 {
			_ = must.M1(ctx.CreateBuffer(native.MemReadWrite, 1024, nil))
		}
	}()
	require.Equal(t, numLive+3, b.Registry().Len())
	gcUntil(t, func() bool { return driver.Releases("clReleaseMemObject") == 3 },
		"buffers should be released once garbage collected")
	assert.Equal(t, numLive, b.Registry().Len())
	assert.Zero(t, driver.ReleaseFailures())
	runtime.KeepAlive(ctx)
}

func TestWeakParent(t *testing.T) {
	b, driver := newTestBinding(t, "")
	var buf *MemoryObject
	func() {
		ctx := must.M1(b.CreateContextFromType(ContextProperties{}, native.DeviceTypeAll))
		buf = must.M1(ctx.CreateBuffer(native.MemReadWrite, 1024, nil))
		require.Same(t, ctx, buf.Parent())
		require.Same(t, ctx, must.M1(buf.GetInfo(native.MemContext)))
	}()

	// The buffer doesn't keep its context alive, but the native buffer stays valid.
	gcUntil(t, func() bool { return buf.Parent() == nil }, "context should be collected")
	gcUntil(t, func() bool { return driver.Releases("clReleaseContext") == 1 }, "context should be released")
	assert.Equal(t, 1024, must.M1(buf.Size()))
	buf.Release()
	assert.Zero(t, driver.LiveObjects())
}
