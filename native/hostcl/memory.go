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
)

type memObject struct {
	refCounts
	ctx     *context
	memType native.MemObjectType
	flags   native.MemFlags
	size    int

	// data is the storage of the object. With CL_MEM_USE_HOST_PTR it aliases the host memory given.
	data []byte

	// Images only.
	format               native.ImageFormat
	width, height, depth int
	rowPitch, slicePitch int
}

func (m *memObject) parents() []object { return []object{m.ctx} }
func (m *memObject) releaseFn() string { return "clReleaseMemObject" }
func (m *memObject) destroy(*Driver)   { m.data = nil }

// SupportedImageFormats lists the formats the host driver supports for both 2D and 3D images.
var SupportedImageFormats = []native.ImageFormat{
	{ChannelOrder: native.ChannelRGBA, ChannelDataType: native.ChannelUNormInt8},
	{ChannelOrder: native.ChannelRGBA, ChannelDataType: native.ChannelUNormInt16},
	{ChannelOrder: native.ChannelRGBA, ChannelDataType: native.ChannelSignedInt8},
	{ChannelOrder: native.ChannelRGBA, ChannelDataType: native.ChannelSignedInt16},
	{ChannelOrder: native.ChannelRGBA, ChannelDataType: native.ChannelSignedInt32},
	{ChannelOrder: native.ChannelRGBA, ChannelDataType: native.ChannelUnsignedInt8},
	{ChannelOrder: native.ChannelRGBA, ChannelDataType: native.ChannelUnsignedInt16},
	{ChannelOrder: native.ChannelRGBA, ChannelDataType: native.ChannelUnsignedInt32},
	{ChannelOrder: native.ChannelRGBA, ChannelDataType: native.ChannelHalfFloat},
	{ChannelOrder: native.ChannelRGBA, ChannelDataType: native.ChannelFloat},
	{ChannelOrder: native.ChannelBGRA, ChannelDataType: native.ChannelUNormInt8},
	{ChannelOrder: native.ChannelR, ChannelDataType: native.ChannelUNormInt8},
	{ChannelOrder: native.ChannelR, ChannelDataType: native.ChannelUnsignedInt8},
	{ChannelOrder: native.ChannelR, ChannelDataType: native.ChannelFloat},
	{ChannelOrder: native.ChannelRG, ChannelDataType: native.ChannelUNormInt8},
	{ChannelOrder: native.ChannelRG, ChannelDataType: native.ChannelFloat},
}

// validateMemFlags checks flags are known and consistent. No access flag defaults to CL_MEM_READ_WRITE.
func validateMemFlags(flags native.MemFlags) (native.MemFlags, native.Status) {
	if flags&^native.MemAllFlags != 0 {
		return flags, native.InvalidValue
	}
	access := flags & (native.MemReadWrite | native.MemWriteOnly | native.MemReadOnly)
	if access != 0 && access&(access-1) != 0 {
		// More than one access flag.
		return flags, native.InvalidValue
	}
	if flags&native.MemUseHostPtr != 0 && flags&(native.MemAllocHostPtr|native.MemCopyHostPtr) != 0 {
		return flags, native.InvalidValue
	}
	if access == 0 {
		flags |= native.MemReadWrite
	}
	return flags, native.Success
}

// validateHostPtr checks hostPtr against flags, and that it holds at least size bytes.
func validateHostPtr(flags native.MemFlags, hostPtr []byte, size int) native.Status {
	usesHostPtr := flags&(native.MemUseHostPtr|native.MemCopyHostPtr) != 0
	if usesHostPtr != (hostPtr != nil) {
		return native.InvalidHostPtr
	}
	if usesHostPtr && len(hostPtr) < size {
		return native.InvalidHostPtr
	}
	return native.Success
}

// storage for a new memory object of the given size.
func storage(flags native.MemFlags, hostPtr []byte, size int) []byte {
	switch {
	case flags&native.MemUseHostPtr != 0:
		return hostPtr[:size:size]
	case flags&native.MemCopyHostPtr != 0:
		return slices.Clone(hostPtr[:size])
	default:
		return make([]byte, size)
	}
}

// CreateBuffer implements native.Driver.
func (d *Driver) CreateBuffer(ctxHandle native.Handle, flags native.MemFlags, size int, hostPtr []byte) (
	native.Handle, native.Status) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if status := d.begin("clCreateBuffer"); status != native.Success {
		return native.NilHandle, status
	}
	ctx, found := lookup[*context](d, ctxHandle)
	if !found {
		return native.NilHandle, native.InvalidContext
	}
	flags, status := validateMemFlags(flags)
	if status != native.Success {
		return native.NilHandle, status
	}
	if size <= 0 || size > d.cfg.MaxAllocSize {
		return native.NilHandle, native.InvalidBufferSize
	}
	if status := validateHostPtr(flags, hostPtr, size); status != native.Success {
		return native.NilHandle, status
	}
	return d.insert(&memObject{
		ctx:     ctx,
		memType: native.MemObjectBuffer,
		flags:   flags,
		size:    size,
		data:    storage(flags, hostPtr, size),
	}), native.Success
}

// imageLimits returns the maximum dimensions of the given image type.
func imageLimits(memType native.MemObjectType) int {
	if memType == native.MemObjectImage3D {
		return image3DMaxSize
	}
	return image2DMaxSize
}

// createImage validates and creates 2D (depth == 1) and 3D images.
func (d *Driver) createImage(ctxHandle native.Handle, memType native.MemObjectType, flags native.MemFlags,
	format *native.ImageFormat, width, height, depth, rowPitch, slicePitch int, hostPtr []byte) (
	native.Handle, native.Status) {
	ctx, found := lookup[*context](d, ctxHandle)
	if !found {
		return native.NilHandle, native.InvalidContext
	}
	flags, status := validateMemFlags(flags)
	if status != native.Success {
		return native.NilHandle, status
	}
	if format == nil || format.ElementSize() == 0 {
		return native.NilHandle, native.InvalidImageFormatDescriptor
	}
	if !d.cfg.ImageSupport {
		return native.NilHandle, native.InvalidOperation
	}

	limit := imageLimits(memType)
	if width <= 0 || height <= 0 || width > limit || height > limit {
		return native.NilHandle, native.InvalidImageSize
	}
	if memType == native.MemObjectImage3D && (depth <= 1 || depth > limit) {
		return native.NilHandle, native.InvalidImageSize
	}
	elementSize := format.ElementSize()
	if hostPtr == nil && (rowPitch != 0 || slicePitch != 0) {
		return native.NilHandle, native.InvalidImageSize
	}
	if rowPitch == 0 {
		rowPitch = width * elementSize
	} else if rowPitch < width*elementSize || rowPitch%elementSize != 0 {
		return native.NilHandle, native.InvalidImageSize
	}
	if memType == native.MemObjectImage3D {
		if slicePitch == 0 {
			slicePitch = rowPitch * height
		} else if slicePitch < rowPitch*height || slicePitch%rowPitch != 0 {
			return native.NilHandle, native.InvalidImageSize
		}
	}
	size := rowPitch * height
	if memType == native.MemObjectImage3D {
		size = slicePitch * depth
	}
	if status := validateHostPtr(flags, hostPtr, size); status != native.Success {
		return native.NilHandle, status
	}
	if !slices.Contains(SupportedImageFormats, *format) {
		return native.NilHandle, native.ImageFormatNotSupported
	}
	if size > d.cfg.MaxAllocSize {
		return native.NilHandle, native.InvalidImageSize
	}
	img := &memObject{
		ctx:      ctx,
		memType:  memType,
		flags:    flags,
		size:     size,
		data:     storage(flags, hostPtr, size),
		format:   *format,
		width:    width,
		height:   height,
		rowPitch: rowPitch,
	}
	if memType == native.MemObjectImage3D {
		img.depth = depth
		img.slicePitch = slicePitch
	}
	return d.insert(img), native.Success
}

// CreateImage2D implements native.Driver.
func (d *Driver) CreateImage2D(ctxHandle native.Handle, flags native.MemFlags, format *native.ImageFormat,
	width, height, rowPitch int, hostPtr []byte) (native.Handle, native.Status) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if status := d.begin("clCreateImage2D"); status != native.Success {
		return native.NilHandle, status
	}
	return d.createImage(ctxHandle, native.MemObjectImage2D, flags, format, width, height, 1, rowPitch, 0, hostPtr)
}

// CreateImage3D implements native.Driver.
func (d *Driver) CreateImage3D(ctxHandle native.Handle, flags native.MemFlags, format *native.ImageFormat,
	width, height, depth, rowPitch, slicePitch int, hostPtr []byte) (native.Handle, native.Status) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if status := d.begin("clCreateImage3D"); status != native.Success {
		return native.NilHandle, status
	}
	return d.createImage(ctxHandle, native.MemObjectImage3D, flags, format, width, height, depth, rowPitch,
		slicePitch, hostPtr)
}

// GetSupportedImageFormats implements native.Driver.
func (d *Driver) GetSupportedImageFormats(ctxHandle native.Handle, flags native.MemFlags,
	imageType native.MemObjectType, formats []native.ImageFormat) (int, native.Status) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if status := d.begin("clGetSupportedImageFormats"); status != native.Success {
		return 0, status
	}
	if _, found := lookup[*context](d, ctxHandle); !found {
		return 0, native.InvalidContext
	}
	if _, status := validateMemFlags(flags); status != native.Success {
		return 0, status
	}
	if imageType != native.MemObjectImage2D && imageType != native.MemObjectImage3D {
		return 0, native.InvalidValue
	}
	if !d.cfg.ImageSupport {
		return 0, native.Success
	}
	copy(formats, SupportedImageFormats)
	return len(SupportedImageFormats), native.Success
}

// GetMemObjectInfo implements native.Driver. CL_MEM_HOST_PTR is not supported.
func (d *Driver) GetMemObjectInfo(h native.Handle, param native.MemInfo, value []byte) (int, native.Status) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if status := d.begin("clGetMemObjectInfo"); status != native.Success {
		return 0, status
	}
	mem, found := lookup[*memObject](d, h)
	if !found {
		return 0, native.InvalidMemObject
	}
	var data []byte
	switch param {
	case native.MemType:
		data = encodeUint32(uint32(mem.memType))
	case native.MemInfoFlags:
		data = encodeUint64(uint64(mem.flags))
	case native.MemSize:
		data = encodeSize(mem.size)
	case native.MemMapCount:
		data = encodeUint32(0)
	case native.MemReferenceCount:
		data = encodeUint32(uint32(mem.user))
	case native.MemContext:
		data = encodeHandles(mem.ctx.h)
	default:
		return 0, native.InvalidValue
	}
	return answer(data, value)
}

// GetImageInfo implements native.Driver.
func (d *Driver) GetImageInfo(h native.Handle, param native.ImageInfo, value []byte) (int, native.Status) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if status := d.begin("clGetImageInfo"); status != native.Success {
		return 0, status
	}
	img, found := lookup[*memObject](d, h)
	if !found || img.memType == native.MemObjectBuffer {
		return 0, native.InvalidMemObject
	}
	var data []byte
	switch param {
	case native.ImageInfoFormat:
		data = append(encodeUint32(uint32(img.format.ChannelOrder)), encodeUint32(uint32(img.format.ChannelDataType))...)
	case native.ImageElementSize:
		data = encodeSize(img.format.ElementSize())
	case native.ImageRowPitch:
		data = encodeSize(img.rowPitch)
	case native.ImageSlicePitch:
		data = encodeSize(img.slicePitch)
	case native.ImageWidth:
		data = encodeSize(img.width)
	case native.ImageHeight:
		data = encodeSize(img.height)
	case native.ImageDepth:
		data = encodeSize(img.depth)
	default:
		return 0, native.InvalidValue
	}
	return answer(data, value)
}

// ReleaseMemObject implements native.Driver.
func (d *Driver) ReleaseMemObject(h native.Handle) native.Status {
	return release[*memObject](d, "clReleaseMemObject", h, native.InvalidMemObject)
}

// HostData returns the storage of the memory object h, for tests to verify CL_MEM_USE_HOST_PTR aliasing and
// CL_MEM_COPY_HOST_PTR copies.
func (d *Driver) HostData(h native.Handle) ([]byte, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	mem, found := lookup[*memObject](d, h)
	if !found {
		return nil, false
	}
	return mem.data, true
}
