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
	"testing"

	"github.com/gomlx/webcl/native"
	"github.com/gomlx/webcl/native/hostcl"
	"github.com/janpfeifer/must"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContextInfo(t *testing.T) {
	for _, numDevices := range []int{1, 3} {
		b, _ := newTestBinding(t, fmt.Sprintf("devices=%d", numDevices))
		ctx := must.M1(b.CreateContextFromType(ContextProperties{}, native.DeviceTypeAll))
		devices := must.M1(ctx.Devices())
		assert.Len(t, devices, must.M1(ctx.NumDevices()))
		assert.Equal(t, numDevices, len(devices))
		assert.Equal(t, uint32(1), must.M1(ctx.GetInfo(native.ContextReferenceCount)))
		assert.Empty(t, must.M1(ctx.Properties()))
	}

	b, _ := newTestBinding(t, "")
	platform := must.M1(b.Platforms())[0]
	ctx := must.M1(b.CreateContextFromType(ContextProperties{Platform: platform}, native.DeviceTypeGPU))
	platformID := must.M1(platform.Handle()).ID
	assert.Equal(t, []int64{int64(native.ContextPlatform), int64(platformID)}, must.M1(ctx.Properties()))

	_, err := b.CreateContextFromType(ContextProperties{}, native.DeviceTypeAccelerator)
	requireKind(t, err, DeviceNotFound)
	_, err = b.CreateContextFromType(ContextProperties{}, native.DeviceType(1<<40))
	requireKind(t, err, InvalidDeviceType)
}

func TestUnknownInfoParameter(t *testing.T) {
	_, driver, ctx := newTestContext(t, "")
	buf := must.M1(ctx.CreateBuffer(native.MemReadWrite, 16, nil))
	numCalls := driver.TotalCalls()
	_, err := ctx.GetInfo(native.ContextInfo(0x9999))
	requireKind(t, err, InvalidParameter)
	_, err = buf.GetInfo(native.MemHostPtr)
	requireKind(t, err, InvalidParameter)
	_, err = buf.GetImageInfo(native.ImageInfo(0))
	requireKind(t, err, InvalidParameter)
	assert.Equal(t, numCalls, driver.TotalCalls())
}

func TestCreateBuffer(t *testing.T) {
	_, driver, ctx := newTestContext(t, "max_alloc=1MiB")
	buf, err := ctx.CreateBuffer(native.MemReadWrite, 1024, nil)
	require.NoError(t, err)
	assert.Equal(t, 1024, must.M1(buf.Size()))
	assert.Equal(t, native.MemObjectBuffer, must.M1(buf.Type()))
	assert.Equal(t, native.MemReadWrite, must.M1(buf.Flags()))
	assert.Same(t, ctx, buf.Parent())
	assert.Equal(t, uint32(0), must.M1(buf.GetInfo(native.MemMapCount)))

	_, err = ctx.CreateBuffer(native.MemReadWrite, 0, nil)
	requireKind(t, err, InvalidBufferSize)
	_, err = ctx.CreateBuffer(native.MemReadWrite, 2<<20, nil)
	requireKind(t, err, InvalidBufferSize)
	_, err = ctx.CreateBuffer(native.MemReadWrite|native.MemReadOnly, 16, nil)
	requireKind(t, err, InvalidValue)
	_, err = ctx.CreateBuffer(native.MemCopyHostPtr, 16, nil)
	requireKind(t, err, InvalidHostPointer)
	_, err = ctx.CreateBuffer(native.MemCopyHostPtr, 16, make([]byte, 8))
	requireKind(t, err, InvalidHostPointer)

	// Negative sizes never reach the driver.
	numCalls := driver.Calls("clCreateBuffer")
	_, err = ctx.CreateBuffer(native.MemReadWrite, -1, nil)
	requireKind(t, err, InvalidValue)
	assert.Equal(t, numCalls, driver.Calls("clCreateBuffer"))
	assert.Equal(t, native.Success, StatusOf(err))

	// Injected failures: clCreateBuffer doesn't declare CL_INVALID_CONTEXT.
	driver.FailNext("clCreateBuffer", native.InvalidContext)
	_, err = ctx.CreateBuffer(native.MemReadWrite, 16, nil)
	requireKind(t, err, UnknownNativeError)
	assert.Equal(t, native.InvalidContext, StatusOf(err))
	driver.FailNext("clCreateBuffer", native.MemObjectAllocationFailure)
	_, err = ctx.CreateBuffer(native.MemReadWrite, 16, nil)
	requireKind(t, err, MemoryAllocationFailure)
}

func TestHostRegions(t *testing.T) {
	_, driver, ctx := newTestContext(t, "")
	host := []byte("0123456789abcdef")

	// USE_HOST_PTR: the driver uses the region, and the buffer keeps it referenced.
	buf := must.M1(ctx.CreateBuffer(native.MemUseHostPtr, len(host), host))
	data, found := driver.HostData(must.M1(buf.Handle()).ID)
	require.True(t, found)
	require.Equal(t, host, data)
	host[0] = 'X'
	assert.Equal(t, byte('X'), data[0], "region should not be copied")
	assert.NotNil(t, buf.res.hostRegion)
	buf.Release()
	assert.Nil(t, buf.res.hostRegion)

	// COPY_HOST_PTR: the driver copies it, and the buffer doesn't keep it.
	buf = must.M1(ctx.CreateBuffer(native.MemCopyHostPtr, len(host), host))
	data, _ = driver.HostData(must.M1(buf.Handle()).ID)
	host[1] = 'Y'
	assert.Equal(t, byte('1'), data[1])
	assert.Nil(t, buf.res.hostRegion)
}

func TestImages(t *testing.T) {
	_, _, ctx := newTestContext(t, "")
	formats, err := ctx.GetSupportedImageFormats(native.MemReadOnly, native.MemObjectImage2D)
	require.NoError(t, err)
	require.Equal(t, hostcl.SupportedImageFormats, formats)

	// Every supported format round-trips.
	for _, format := range formats {
		img, err := ctx.CreateImage2D(native.MemReadOnly, format, 16, 8, 0, nil)
		require.NoError(t, err, "format %+v", format)
		assert.Equal(t, format, must.M1(img.ImageFormat()))
		assert.Equal(t, native.MemObjectImage2D, must.M1(img.Type()))
		assert.Equal(t, format.ElementSize(), must.M1(img.GetImageInfo(native.ImageElementSize)))
		assert.Equal(t, 16*format.ElementSize(), must.M1(img.GetImageInfo(native.ImageRowPitch)))
		img.Release()
	}

	format := ImageFormat{ChannelOrder: native.ChannelRGBA, ChannelDataType: native.ChannelFloat}
	host := make([]byte, 4*4*16*2)
	img := must.M1(ctx.CreateImage3D(native.MemCopyHostPtr, format, 4, 4, 2, 0, 0, host))
	width, height, depth, err := img.ImageSize()
	require.NoError(t, err)
	assert.Equal(t, []int{4, 4, 2}, []int{width, height, depth})
	assert.Equal(t, 4*4*16, must.M1(img.GetImageInfo(native.ImageSlicePitch)))

	unsupported := ImageFormat{ChannelOrder: native.ChannelRGB, ChannelDataType: native.ChannelFloat}
	_, err = ctx.CreateImage2D(native.MemReadOnly, unsupported, 4, 4, 0, nil)
	requireKind(t, err, InvalidImageFormat)
	assert.Equal(t, native.ImageFormatNotSupported, StatusOf(err))
	invalid := ImageFormat{ChannelOrder: native.ChannelRGBA}
	_, err = ctx.CreateImage2D(native.MemReadOnly, invalid, 4, 4, 0, nil)
	requireKind(t, err, InvalidImageFormat)
	assert.Equal(t, native.InvalidImageFormatDescriptor, StatusOf(err))
	_, err = ctx.CreateImage2D(native.MemReadOnly, format, 0, 4, 0, nil)
	requireKind(t, err, InvalidImageSize)
	_, err = ctx.CreateImage2D(native.MemReadOnly, format, -1, 4, 0, nil)
	requireKind(t, err, InvalidValue)
	_, err = ctx.CreateImage3D(native.MemReadOnly, format, 4, 4, 1, 0, 0, nil)
	requireKind(t, err, InvalidImageSize)

	// Buffers aren't images.
	buf := must.M1(ctx.CreateBuffer(native.MemReadWrite, 16, nil))
	_, err = buf.ImageFormat()
	requireKind(t, err, InvalidMemObject)
	_, err = ctx.GetSupportedImageFormats(native.MemReadOnly, native.MemObjectBuffer)
	requireKind(t, err, InvalidValue)
}

func TestNoImageSupport(t *testing.T) {
	_, _, ctx := newTestContext(t, "image_support=false")
	formats, err := ctx.GetSupportedImageFormats(native.MemReadOnly, native.MemObjectImage2D)
	require.NoError(t, err)
	assert.Empty(t, formats)
	format := ImageFormat{ChannelOrder: native.ChannelRGBA, ChannelDataType: native.ChannelUNormInt8}
	_, err = ctx.CreateImage2D(native.MemReadOnly, format, 4, 4, 0, nil)
	requireKind(t, err, InvalidOperation)
	_, err = ctx.CreateSampler(false, native.AddressNone, native.FilterNearest)
	requireKind(t, err, InvalidOperation)
}

func TestCommandQueues(t *testing.T) {
	b, _, ctx := newTestContext(t, "devices=2,out_of_order=false")
	devices := must.M1(ctx.Devices())
	queue := must.M1(ctx.CreateCommandQueue(devices[1], native.QueueProfilingEnable))
	assert.Same(t, devices[1], must.M1(queue.Device()))
	assert.Same(t, ctx, must.M1(queue.GetInfo(native.QueueContext)))
	assert.Same(t, ctx, queue.Parent())
	assert.Equal(t, native.QueueProfilingEnable, must.M1(queue.Properties()))

	_, err := ctx.CreateCommandQueue(devices[0], native.QueueOutOfOrderExecModeEnable)
	requireKind(t, err, InvalidQueueProperties)
	_, err = ctx.CreateCommandQueue(nil, 0)
	requireKind(t, err, InvalidDevice)

	// A device of another context.
	other := must.M1(b.CreateContext(ContextProperties{}, devices[:1]))
	_, err = other.CreateCommandQueue(devices[1], 0)
	requireKind(t, err, InvalidDevice)
}

func TestSamplers(t *testing.T) {
	_, _, ctx := newTestContext(t, "")
	sampler := must.M1(ctx.CreateSampler(true, native.AddressRepeat, native.FilterLinear))
	assert.Equal(t, true, must.M1(sampler.GetInfo(native.SamplerNormalizedCoords)))
	assert.Equal(t, uint32(native.AddressRepeat), must.M1(sampler.GetInfo(native.SamplerAddressingMode)))
	assert.Equal(t, uint32(native.FilterLinear), must.M1(sampler.GetInfo(native.SamplerFilterMode)))
	assert.Same(t, ctx, must.M1(sampler.GetInfo(native.SamplerContext)))

	_, err := ctx.CreateSampler(false, native.AddressingMode(0), native.FilterLinear)
	requireKind(t, err, InvalidValue)
}

func TestUserEvents(t *testing.T) {
	_, driver, ctx := newTestContext(t, "")
	event := must.M1(ctx.CreateUserEvent())
	assert.Equal(t, native.Submitted, must.M1(event.ExecutionStatus()))
	assert.Equal(t, native.CommandUser, must.M1(event.GetInfo(native.EventCommandType)))
	assert.Nil(t, must.M1(event.GetInfo(native.EventCommandQueue)))
	assert.Same(t, ctx, must.M1(event.GetInfo(native.EventContext)))

	requireKind(t, event.SetUserEventStatus(native.Running), InvalidValue)
	require.NoError(t, event.SetUserEventStatus(native.Complete))
	assert.Equal(t, native.Complete, must.M1(event.ExecutionStatus()))
	requireKind(t, event.SetUserEventStatus(native.Complete), InvalidOperation)

	driver.FailNext("clCreateUserEvent", native.OutOfHostMemory)
	_, err := ctx.CreateUserEvent()
	requireKind(t, err, OutOfHostMemory)
	driver.FailNext("clCreateUserEvent", native.InvalidValue)
	_, err = ctx.CreateUserEvent()
	requireKind(t, err, UnknownNativeError)
}
