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
	"testing"

	"github.com/gomlx/webcl/native"
	"github.com/janpfeifer/must"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestProgram creates and builds testSource on all devices of ctx.
func newTestProgram(t *testing.T, ctx *Context) *Program {
	program := must.M1(ctx.CreateProgram(Source(testSource)))
	require.NoError(t, program.Build(nil, "-cl-fast-relaxed-math -DSCALE=2"))
	return program
}

func TestCreateProgram(t *testing.T) {
	_, driver, ctx := newTestContext(t, "devices=2")
	devices := must.M1(ctx.Devices())

	program, err := ctx.CreateProgram(Source("__kernel void k() {}"))
	require.NoError(t, err)
	assert.Equal(t, "__kernel void k() {}", must.M1(program.Source()))
	assert.Equal(t, devices, must.M1(program.Devices()))
	assert.Same(t, ctx, must.M1(program.GetInfo(native.ProgramContext)))
	assert.Equal(t, uint32(2), must.M1(program.GetInfo(native.ProgramNumDevices)))

	_, err = ctx.CreateProgram(nil)
	requireKind(t, err, InvalidValue)
	_, err = ctx.CreateProgram(Source(""))
	requireKind(t, err, InvalidValue)
	_, err = ctx.CreateProgram((*Binaries)(nil))
	requireKind(t, err, InvalidValue)

	// Malformed binaries are rejected before reaching the driver.
	numCalls := driver.TotalCalls()
	blob := []byte("blob")
	for _, bins := range []Binaries{
		{},
		{Devices: devices, Blobs: [][]byte{blob}},
		{Devices: devices[:1], Blobs: [][]byte{blob, blob}},
		{Devices: devices[:1], Blobs: [][]byte{nil}},
		{Devices: []*Device{nil}, Blobs: [][]byte{blob}},
	} {
		_, err = ctx.CreateProgram(bins)
		require.Error(t, err)
		kind, _ := KindOf(err)
		assert.Contains(t, []ErrorKind{InvalidValue, InvalidDevice}, kind)
	}
	assert.Equal(t, numCalls, driver.TotalCalls())

	_, err = ctx.CreateProgram(Binaries{Devices: devices[:1], Blobs: [][]byte{blob}})
	requireKind(t, err, InvalidBinary)
}

func TestBuild(t *testing.T) {
	_, _, ctx := newTestContext(t, "devices=2")
	devices := must.M1(ctx.Devices())

	program := must.M1(ctx.CreateProgram(Source(testSource)))
	assert.Equal(t, native.BuildNone, must.M1(program.BuildStatus(devices[0])))
	_, err := program.CreateKernel("k")
	requireKind(t, err, InvalidProgramExecutable)

	// Build for the second device only.
	require.NoError(t, program.Build(devices[1:], "-w"))
	assert.Equal(t, native.BuildNone, must.M1(program.BuildStatus(devices[0])))
	assert.Equal(t, native.BuildSuccess, must.M1(program.BuildStatus(devices[1])))
	assert.Contains(t, must.M1(program.BuildLog(devices[1])), "kernel scale: 4 argument(s)")
	assert.Equal(t, "-w", must.M1(program.GetBuildInfo(devices[1], native.ProgramBuildOptions)))

	_, err = program.GetBuildInfo(nil, native.ProgramBuildLog)
	requireKind(t, err, InvalidDevice)
	_, err = program.GetBuildInfo(devices[0], native.ProgramBuildInfo(0))
	requireKind(t, err, InvalidParameter)
	requireKind(t, program.Build(nil, "-bogus"), InvalidBuildOptions)
	requireKind(t, program.Build([]*Device{nil}, ""), InvalidDevice)

	// Programs can't be rebuilt while they have kernels.
	kernel := must.M1(program.CreateKernel("k"))
	requireKind(t, program.Build(nil, ""), InvalidOperation)
	kernel.Release()
	require.NoError(t, program.Build(nil, ""))

	broken := must.M1(ctx.CreateProgram(Source("__kernel void broken(__global float *x) {")))
	err = broken.Build(nil, "")
	requireKind(t, err, BuildProgramFailure)
	assert.Equal(t, native.BuildError, must.M1(broken.BuildStatus(devices[0])))
	assert.Contains(t, must.M1(broken.BuildLog(devices[0])), "unbalanced braces")
}

func TestProgramBinaries(t *testing.T) {
	_, _, ctx := newTestContext(t, "")
	devices := must.M1(ctx.Devices())

	// Not built: no binaries, which can't be used to create programs.
	program := must.M1(ctx.CreateProgram(Source(testSource)))
	bins := must.M1(program.Binaries())
	require.Equal(t, devices, bins.Devices)
	assert.Empty(t, bins.Blobs[0])
	_, err := ctx.CreateProgram(bins)
	requireKind(t, err, InvalidValue)

	require.NoError(t, program.Build(nil, ""))
	bins = must.M1(program.Binaries())
	require.NotEmpty(t, bins.Blobs[0])
	assert.Equal(t, []int{len(bins.Blobs[0])}, must.M1(program.GetInfo(native.ProgramBinarySizes)))

	fromBinaries, err := ctx.CreateProgram(&bins)
	require.NoError(t, err)
	assert.Empty(t, must.M1(fromBinaries.Source()))
	require.NoError(t, fromBinaries.Build(nil, ""))
	kernel := must.M1(fromBinaries.CreateKernel("scale"))
	assert.Equal(t, 4, must.M1(kernel.NumArgs()))
}

func TestKernels(t *testing.T) {
	_, _, ctx := newTestContext(t, "")
	program := newTestProgram(t, ctx)

	kernels, err := program.CreateKernelsInProgram()
	require.NoError(t, err)
	require.Len(t, kernels, 3)
	var names []string
	for _, k := range kernels {
		names = append(names, must.M1(k.FunctionName()))
	}
	assert.Equal(t, []string{"k", "scale", "blur"}, names)
	assert.Equal(t, 0, must.M1(kernels[0].NumArgs()))
	assert.Equal(t, 3, must.M1(kernels[2].NumArgs()))
	assert.Same(t, program, must.M1(kernels[1].GetInfo(native.KernelProgram)))
	assert.Same(t, ctx, must.M1(kernels[1].GetInfo(native.KernelContext)))

	_, err = program.CreateKernel("missing")
	requireKind(t, err, InvalidKernelName)
	_, err = program.CreateKernel("")
	requireKind(t, err, InvalidValue)

	// The only device can be omitted.
	assert.Equal(t, 1024, must.M1(kernels[0].GetWorkGroupInfo(nil, native.KernelWorkGroupSize)))
	assert.Equal(t, []int{0, 0, 0}, must.M1(kernels[0].GetWorkGroupInfo(nil, native.KernelCompileWorkGroupSize)))
	assert.Equal(t, uint64(0), must.M1(kernels[0].GetWorkGroupInfo(nil, native.KernelLocalMemSize)))
}

func TestWorkGroupInfoDevices(t *testing.T) {
	_, _, ctx := newTestContext(t, "devices=2")
	devices := must.M1(ctx.Devices())
	kernel := must.M1(newTestProgram(t, ctx).CreateKernel("k"))
	_, err := kernel.GetWorkGroupInfo(nil, native.KernelWorkGroupSize)
	requireKind(t, err, InvalidDevice)
	assert.Equal(t, 1, must.M1(kernel.GetWorkGroupInfo(devices[1], native.KernelPreferredWorkGroupSizeMultiple)))
}

func TestSetArg(t *testing.T) {
	_, driver, ctx := newTestContext(t, "")
	program := newTestProgram(t, ctx)
	scale := must.M1(program.CreateKernel("scale"))
	blur := must.M1(program.CreateKernel("blur"))

	buf := must.M1(ctx.CreateBuffer(native.MemReadWrite, 64, nil))
	format := ImageFormat{ChannelOrder: native.ChannelRGBA, ChannelDataType: native.ChannelFloat}
	img := must.M1(ctx.CreateImage2D(native.MemReadOnly, format, 8, 8, 0, nil))
	sampler := must.M1(ctx.CreateSampler(false, native.AddressClampToEdge, native.FilterNearest))

	// scale(__global float *data, const float factor, __local float *scratch, uint4 mask)
	require.NoError(t, scale.SetArg(0, Mem(buf)))
	require.NoError(t, scale.SetArg(0, Mem(nil)))
	requireKind(t, scale.SetArg(0, Mem(img)), InvalidMemObject)
	require.NoError(t, scale.SetArg(1, Scalar(ArgFloat, 2.0)))
	require.NoError(t, scale.SetArg(1, Scalar[int](ArgInt, 2)))
	requireKind(t, scale.SetArg(1, Scalar(ArgDouble, 2.0)), InvalidArgSize)
	require.NoError(t, scale.SetArg(2, Local(256)))
	requireKind(t, scale.SetArg(2, Local(0)), InvalidArgSize)
	requireKind(t, scale.SetArg(2, Mem(buf)), InvalidArgValue)
	require.NoError(t, scale.SetArg(3, Scalar[uint32](ArgUnsigned|ArgInt|ArgV4, 1, 2, 3, 0xFFFFFFFF)))
	requireKind(t, scale.SetArg(4, Local(16)), InvalidArgIndex)

	// blur(read_only image2d_t src, write_only image2d_t dst, sampler_t sampler)
	require.NoError(t, blur.SetArg(0, Mem(img)))
	requireKind(t, blur.SetArg(1, Mem(buf)), InvalidMemObject)
	requireKind(t, blur.SetArg(1, Mem(nil)), InvalidArgValue)
	require.NoError(t, blur.SetArg(2, SamplerArg(sampler)))
	requireKind(t, blur.SetArg(0, SamplerArg(sampler)), InvalidMemObject)

	// Errors detected before calling the driver.
	numCalls := driver.Calls("clSetKernelArg")
	requireKind(t, scale.SetArg(-1, Local(16)), InvalidArgIndex)
	requireKind(t, scale.SetArg(0, nil), InvalidValue)
	requireKind(t, scale.SetArg(2, Local(-1)), InvalidValue)
	requireKind(t, scale.SetArg(1, Scalar(ArgFloat, 1.0, 2.0)), InvalidArgValue)
	requireKind(t, scale.SetArg(3, Scalar(ArgUnsigned|ArgInt|ArgV4, -1, 0, 0, 0)), InvalidArgValue)
	requireKind(t, scale.SetArg(3, Scalar(ArgInt|ArgFloat, 1)), InvalidArgValue)
	requireKind(t, blur.SetArg(2, SamplerArg(nil)), InvalidSampler)
	buf.Release()
	requireKind(t, scale.SetArg(0, Mem(buf)), UseAfterRelease)
	assert.Equal(t, numCalls, driver.Calls("clSetKernelArg"))

	scale.Release()
	requireKind(t, scale.SetArg(0, Mem(nil)), UseAfterRelease)
}
