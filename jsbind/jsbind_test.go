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


package jsbind

import (
	"runtime"
	"testing"
	"time"

	"github.com/dop251/goja"
	"github.com/gomlx/webcl/native"
	"github.com/gomlx/webcl/native/hostcl"
	"github.com/gomlx/webcl/webcl"
	"github.com/janpfeifer/must"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestHost(t *testing.T, config string) (*Host, *hostcl.Driver) {
	driver := must.M1(hostcl.New(config))
	b := webcl.New(driver, webcl.Options{Debug: true})
	t.Cleanup(func() { b.Close() })
	h := must.M1(Install(goja.New(), b))
	_, err := h.Runtime().RunString(`
		function kindOf(f) {
			try {
				f();
				return "no error";
			} catch (e) {
				return [e.kind, e.code];
			}
		}`)
	require.NoError(t, err)
	return h, driver
}

// run runs script and returns its exported result.
func run(t *testing.T, h *Host, script string) any {
	t.Helper()
	v, err := h.Runtime().RunString(script)
	require.NoError(t, err, "script:\n%s", script)
	return v.Export()
}

const testSource = `
__kernel void k() {}
__kernel void scale(__global float *data, const float factor, __local float *scratch, uint4 mask) {}
`

func TestConstants(t *testing.T) {
	h, _ := newTestHost(t, "")
	assert.Equal(t, int64(native.MemReadWrite), run(t, h, "webcl.CL_MEM_READ_WRITE"))
	assert.Equal(t, int64(native.ChannelRGBA), run(t, h, "webcl.CL_RGBA"))
	assert.Equal(t, int64(native.InvalidBufferSize), run(t, h, "webcl.CL_INVALID_BUFFER_SIZE"))
	assert.Equal(t, int64(0), run(t, h, "webcl.CL_SUCCESS"))
	assert.Equal(t, int64(webcl.ArgFloat), run(t, h, "webcl.type.FLOAT"))
	assert.Equal(t, int64(webcl.ArgUnsigned|webcl.ArgInt|webcl.ArgV4),
		run(t, h, "webcl.type.UNSIGNED | webcl.type.INT | webcl.type.V4"))
}

func TestContexts(t *testing.T) {
	h, _ := newTestHost(t, "devices=2")
	got := run(t, h, `
		var platform = webcl.getPlatforms()[0];
		var ctx = webcl.createContext(webcl.CL_DEVICE_TYPE_ALL, platform);
		var devices = ctx.getInfo(webcl.CL_CONTEXT_DEVICES);
		var buf = ctx.createBuffer(webcl.CL_MEM_READ_WRITE, 1024);
		var single = webcl.createContext(devices[1]);
		[
			devices.length,
			ctx.getInfo(webcl.CL_CONTEXT_NUM_DEVICES),
			buf.getInfo(webcl.CL_MEM_SIZE),
			buf.getInfo(webcl.CL_MEM_CONTEXT) === ctx,
			ctx.getInfo(webcl.CL_CONTEXT_DEVICES)[0] === devices[0],
			devices[0].getInfo(webcl.CL_DEVICE_PLATFORM) === platform,
			platform.getDevices().length,
			single.getInfo(webcl.CL_CONTEXT_NUM_DEVICES),
			devices[1].getInfo(webcl.CL_DEVICE_NAME),
		]`)
	assert.Equal(t, []any{int64(2), int64(2), int64(1024), true, true, true, int64(2), int64(1), "Host Device #1"},
		got)
}

func TestErrors(t *testing.T) {
	h, driver := newTestHost(t, "")
	got := run(t, h, `
		var ctx = webcl.createContext();
		var buf = ctx.createBuffer(webcl.CL_MEM_READ_WRITE, 16);
		buf.release();
		buf.release();
		[
			kindOf(function() { ctx.createBuffer(webcl.CL_MEM_READ_WRITE, 0); }),
			kindOf(function() { ctx.createBuffer(webcl.CL_MEM_READ_WRITE, -1); }),
			kindOf(function() { ctx.createBuffer(webcl.CL_MEM_READ_WRITE, "large"); }),
			kindOf(function() { ctx.createBuffer(webcl.CL_MEM_READ_WRITE, 1.5); }),
			kindOf(function() { ctx.createBuffer(webcl.CL_MEM_READ_WRITE, 16, "not bytes"); }),
			kindOf(function() { buf.getInfo(webcl.CL_MEM_SIZE); }),
			kindOf(function() { ctx.getInfo(12345); }),
			kindOf(function() { ctx.createCommandQueue(ctx); }),
			kindOf(function() { ctx.createProgram(); }),
		]`)
	invalidValue := []any{"InvalidValue", int64(0)}
	assert.Equal(t, []any{
		[]any{"InvalidBufferSize", int64(native.InvalidBufferSize)},
		invalidValue,
		invalidValue,
		invalidValue,
		invalidValue,
		[]any{"UseAfterRelease", int64(0)},
		[]any{"InvalidParameter", int64(0)},
		invalidValue,
		invalidValue,
	}, got)
	assert.Equal(t, 1, driver.Releases("clReleaseMemObject"))

	// Uncaught errors reach Go as exceptions, with the error message.
	_, err := h.Runtime().RunString(`ctx.createBuffer(webcl.CL_MEM_READ_WRITE, 0)`)
	var exception *goja.Exception
	require.ErrorAs(t, err, &exception)
	assert.Contains(t, exception.Error(), "CL_INVALID_BUFFER_SIZE")
}

func TestPrograms(t *testing.T) {
	h, _ := newTestHost(t, "")
	require.NoError(t, h.Runtime().Set("source", testSource))
	got := run(t, h, `
		var ctx = webcl.createContext();
		var device = ctx.getInfo(webcl.CL_CONTEXT_DEVICES)[0];
		var program = ctx.createProgram(source);
		program.build("-w");
		var kernels = program.createKernelsInProgram();
		var names = kernels.map(function(k) { return k.getInfo(webcl.CL_KERNEL_FUNCTION_NAME); });
		var binaries = program.getBinaries();

		var copy = ctx.createProgram([device], binaries);
		copy.build([device]);
		var scale = copy.createKernel("scale");
		var buf = ctx.createBuffer(webcl.CL_MEM_READ_WRITE, 64);
		scale.setArg(0, buf);
		scale.setArg(0, null);
		scale.setArg(1, 2.5, webcl.type.FLOAT);
		scale.setArg(2, 128, webcl.type.LOCAL);
		scale.setArg(3, [1, 2, 3, 4], webcl.type.UNSIGNED | webcl.type.INT | webcl.type.V4);
		[
			program.getBuildInfo(device, webcl.CL_PROGRAM_BUILD_STATUS),
			program.getBuildInfo(device, webcl.CL_PROGRAM_BUILD_OPTIONS),
			names.join(","),
			binaries.length,
			binaries[0].length > 0,
			copy.getInfo(webcl.CL_PROGRAM_SOURCE),
			scale.getInfo(webcl.CL_KERNEL_PROGRAM) === copy,
			scale.getInfo(webcl.CL_KERNEL_CONTEXT) === ctx,
			scale.getWorkGroupInfo(device, webcl.CL_KERNEL_WORK_GROUP_SIZE),
			kindOf(function() { scale.setArg(1, 2.5); }),
			kindOf(function() { scale.setArg(1, 2.5, webcl.type.DOUBLE); }),
			kindOf(function() { scale.setArg(3, [1, 2, 3], webcl.type.UNSIGNED | webcl.type.INT | webcl.type.V4); }),
			kindOf(function() { scale.setArg(9, buf); }),
			kindOf(function() { copy.createKernel("missing"); }),
			kindOf(function() { ctx.createProgram([device], []); }),
		]`)
	assert.Equal(t, []any{
		int64(native.BuildSuccess),
		"-w",
		"k,scale",
		int64(1),
		true,
		"",
		true,
		true,
		int64(1024),
		[]any{"InvalidArgValue", int64(0)},
		[]any{"InvalidArgSize", int64(native.InvalidArgSize)},
		[]any{"InvalidArgValue", int64(0)},
		[]any{"InvalidArgIndex", int64(native.InvalidArgIndex)},
		[]any{"InvalidKernelName", int64(native.InvalidKernelName)},
		[]any{"InvalidValue", int64(0)},
	}, got)
}

func TestBuildFailure(t *testing.T) {
	h, _ := newTestHost(t, "")
	got := run(t, h, `
		var ctx = webcl.createContext();
		var device = ctx.getInfo(webcl.CL_CONTEXT_DEVICES)[0];
		var program = ctx.createProgram("__kernel void broken( {");
		[
			kindOf(function() { program.build(); }),
			program.getBuildInfo(device, webcl.CL_PROGRAM_BUILD_STATUS),
			program.getBuildInfo(device, webcl.CL_PROGRAM_BUILD_LOG).indexOf("unbalanced") >= 0,
		]`)
	assert.Equal(t, []any{
		[]any{"BuildProgramFailure", int64(native.BuildProgramFailure)},
		int64(native.BuildError),
		true,
	}, got)
}

func TestImages(t *testing.T) {
	h, _ := newTestHost(t, "")
	got := run(t, h, `
		var ctx = webcl.createContext();
		var formats = ctx.getSupportedImageFormats(webcl.CL_MEM_READ_ONLY, webcl.CL_MEM_OBJECT_IMAGE2D);
		var img = ctx.createImage2D(webcl.CL_MEM_READ_ONLY, formats[0], 4, 4);
		var format = img.getImageInfo(webcl.CL_IMAGE_FORMAT);
		var literal = ctx.createImage2D(webcl.CL_MEM_READ_ONLY, {order: webcl.CL_RGBA, data_type: webcl.CL_FLOAT},
			2, 2);
		var volume = ctx.createImage3D(webcl.CL_MEM_COPY_HOST_PTR, {order: webcl.CL_R, data_type: webcl.CL_FLOAT},
			2, 2, 2, 0, 0, new Float32Array(8));
		var sampler = ctx.createSampler(true, webcl.CL_ADDRESS_REPEAT, webcl.CL_FILTER_LINEAR);
		[
			formats.length,
			format.order === formats[0].order && format.data_type === formats[0].data_type,
			literal.getImageInfo(webcl.CL_IMAGE_ELEMENT_SIZE),
			volume.getImageInfo(webcl.CL_IMAGE_DEPTH),
			sampler.getInfo(webcl.CL_SAMPLER_NORMALIZED_COORDS),
			sampler.getInfo(webcl.CL_SAMPLER_CONTEXT) === ctx,
			kindOf(function() { ctx.createImage2D(webcl.CL_MEM_READ_ONLY, {order: webcl.CL_RGBA}, 2, 2); }),
			kindOf(function() { ctx.createImage2D(webcl.CL_MEM_READ_ONLY, "rgba", 2, 2); }),
		]`)
	assert.Equal(t, []any{
		int64(len(hostcl.SupportedImageFormats)),
		true,
		int64(16),
		int64(2),
		true,
		true,
		[]any{"InvalidValue", int64(0)},
		[]any{"InvalidValue", int64(0)},
	}, got)
}

func TestQueuesAndEvents(t *testing.T) {
	h, _ := newTestHost(t, "")
	got := run(t, h, `
		var ctx = webcl.createContext();
		var device = ctx.getInfo(webcl.CL_CONTEXT_DEVICES)[0];
		var queue = ctx.createCommandQueue(device, webcl.CL_QUEUE_PROFILING_ENABLE);
		var event = ctx.createUserEvent();
		var before = event.getInfo(webcl.CL_EVENT_COMMAND_EXECUTION_STATUS);
		event.setUserEventStatus(webcl.CL_COMPLETE);
		[
			queue.getInfo(webcl.CL_QUEUE_DEVICE) === device,
			queue.getInfo(webcl.CL_QUEUE_PROPERTIES),
			before,
			event.getInfo(webcl.CL_EVENT_COMMAND_EXECUTION_STATUS),
			event.getInfo(webcl.CL_EVENT_COMMAND_QUEUE),
			kindOf(function() { event.setUserEventStatus(webcl.CL_COMPLETE); }),
		]`)
	assert.Equal(t, []any{
		true,
		int64(native.QueueProfilingEnable),
		int64(native.Submitted),
		int64(native.Complete),
		nil,
		[]any{"InvalidOperation", int64(native.InvalidOperation)},
	}, got)
}

func TestHostMemory(t *testing.T) {
	h, driver := newTestHost(t, "")
	v, err := h.Runtime().RunString(`
		var ctx = webcl.createContext();
		var data = new Uint8Array(32);
		data[4] = 42;
		ctx.createBuffer(webcl.CL_MEM_USE_HOST_PTR, 16, new Uint8Array(data.buffer, 4, 16));`)
	require.NoError(t, err)
	mem := unwrap[webcl.MemoryObject](h, "test", v)
	require.NotNil(t, mem)
	assert.Equal(t, any(mem), h.Object(v))
	assert.Nil(t, h.Object(goja.Undefined()))
	hostData, found := driver.HostData(must.M1(mem.Handle()).ID)
	require.True(t, found)
	require.Len(t, hostData, 16)
	assert.Equal(t, byte(42), hostData[0])

	// The buffer uses the script's memory.
	run(t, h, "data[5] = 7;")
	assert.Equal(t, byte(7), hostData[1])
}

func TestGarbageCollection(t *testing.T) {
	h, driver := newTestHost(t, "")
	const numBuffers = 20
	require.NoError(t, h.Runtime().Set("numBuffers", numBuffers))
	run(t, h, `
		var ctx = webcl.createContext();
		(function() {
			for (var i = 0; i < numBuffers; i++) {
				ctx.createBuffer(webcl.CL_MEM_READ_WRITE, 16);
			}
		})();`)
	assert.Equal(t, 0, driver.Releases("clReleaseMemObject"))

	// Objects unreachable from the script are released by their finalizers. The runtime may still hold
	// the last few values in its stack.
	require.Eventually(t, func() bool {
		runtime.GC()
		runtime.Gosched()
		return driver.Releases("clReleaseMemObject") >= numBuffers-2
	}, 5*time.Second, 10*time.Millisecond)
	assert.LessOrEqual(t, h.Live(), 3+2)
}

func TestReleaseAll(t *testing.T) {
	h, driver := newTestHost(t, "")
	got := run(t, h, `
		var ctx = webcl.createContext();
		var buf = ctx.createBuffer(webcl.CL_MEM_READ_WRITE, 16);
		var event = ctx.createUserEvent();
		var released = webcl.releaseAll();
		[released >= 3, kindOf(function() { buf.getInfo(webcl.CL_MEM_SIZE); }), webcl.releaseAll()]`)
	assert.Equal(t, []any{true, []any{"UseAfterRelease", int64(0)}, int64(0)}, got)
	assert.Zero(t, driver.LiveObjects())
	assert.Zero(t, h.Binding().Registry().Len())
}

func TestConstantName(t *testing.T) {
	assert.Equal(t, "CL_DEVICE_TYPE_GPU", ConstantName("CL_DEVICE_TYPE_", int64(native.DeviceTypeGPU)))
	assert.Equal(t, "CL_DEVICE_TYPE_ALL", ConstantName("CL_DEVICE_TYPE_", int64(native.DeviceTypeAll)))
	assert.Equal(t, "CL_RGBA", ConstantName("CL_", int64(native.ChannelRGBA)))
	assert.Equal(t, "0x6", ConstantName("CL_DEVICE_TYPE_", 6))
}

func TestUnwrap(t *testing.T) {
	h, _ := newTestHost(t, "")
	v, err := h.Runtime().RunString("webcl.createContext()")
	require.NoError(t, err)
	ctx := unwrap[webcl.Context](h, "test", v)
	require.NotNil(t, ctx)
	assert.Equal(t, any(ctx), h.Object(v))
	assert.Nil(t, unwrap[webcl.Context](h, "test", goja.Null()))
	assert.Nil(t, unwrap[webcl.Context](h, "test", goja.Undefined()))

	// Objects of another type, and values that aren't WebCL objects, throw InvalidValue.
	for _, value := range []goja.Value{v, h.Runtime().NewObject(), h.Runtime().ToValue(1)} {
		thrown := func() (thrown any) {
			defer func() { thrown = recover() }()
			unwrap[webcl.MemoryObject](h, "test", value)
			return nil
		}()
		require.IsType(t, &goja.Object{}, thrown)
		assert.Equal(t, "InvalidValue", thrown.(*goja.Object).Get("kind").String())
	}
}
