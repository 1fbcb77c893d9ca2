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

	"github.com/gomlx/webcl/native"
)

// MemoryObject is a buffer or an image.
type MemoryObject struct {
	object
	child[Context]
}

var memInfoTypes = map[native.MemInfo]infoType{
	native.MemType:           infoUint32,
	native.MemInfoFlags:      infoUint64,
	native.MemSize:           infoSize,
	native.MemMapCount:       infoUint32,
	native.MemReferenceCount: infoUint32,
	native.MemContext:        infoHandle,
}

// GetInfo returns the value of the memory object parameter: MemContext returns the *Context, MemSize an
// int, MemInfoFlags an uint64, the others an uint32.
//
// MemHostPtr is not supported: the host region is only accessible from the slice given at creation.
func (m *MemoryObject) GetInfo(param native.MemInfo) (any, error) {
	defer runtime.KeepAlive(m)
	const op = "MemoryObject.GetInfo"
	t, found := memInfoTypes[param]
	if !found {
		return nil, errorf(InvalidParameter, op, "unknown memory object info 0x%X", uint32(param))
	}
	id, err := m.res.id(op)
	if err != nil {
		return nil, err
	}
	driver := m.Binding().Driver()
	value, err := queryInfo(siteGetMemObjectInfo, t, func(value []byte) (int, native.Status) {
		return driver.GetMemObjectInfo(id, param, value)
	})
	if err != nil {
		return nil, err
	}
	if param == native.MemContext {
		return m.Parent(), nil
	}
	return value, nil
}

var imageInfoTypes = map[native.ImageInfo]infoType{
	native.ImageInfoFormat:  infoImageFormat,
	native.ImageElementSize: infoSize,
	native.ImageRowPitch:    infoSize,
	native.ImageSlicePitch:  infoSize,
	native.ImageWidth:       infoSize,
	native.ImageHeight:      infoSize,
	native.ImageDepth:       infoSize,
}

// GetImageInfo returns the value of the image parameter: ImageInfoFormat returns an ImageFormat, the others
// an int. It fails with InvalidMemObject for buffers.
func (m *MemoryObject) GetImageInfo(param native.ImageInfo) (any, error) {
	defer runtime.KeepAlive(m)
	const op = "MemoryObject.GetImageInfo"
	t, found := imageInfoTypes[param]
	if !found {
		return nil, errorf(InvalidParameter, op, "unknown image info 0x%X", uint32(param))
	}
	id, err := m.res.id(op)
	if err != nil {
		return nil, err
	}
	driver := m.Binding().Driver()
	return queryInfo(siteGetImageInfo, t, func(value []byte) (int, native.Status) {
		return driver.GetImageInfo(id, param, value)
	})
}

// Type of the memory object: buffer, 2D or 3D image.
func (m *MemoryObject) Type() (native.MemObjectType, error) {
	t, err := infoAs[uint32](m.GetInfo(native.MemType))
	return native.MemObjectType(t), err
}

// Flags the memory object was created with.
func (m *MemoryObject) Flags() (native.MemFlags, error) {
	flags, err := infoAs[uint64](m.GetInfo(native.MemInfoFlags))
	return native.MemFlags(flags), err
}

// Size in bytes of the memory object.
func (m *MemoryObject) Size() (int, error) {
	return infoAs[int](m.GetInfo(native.MemSize))
}

// ImageFormat of an image.
func (m *MemoryObject) ImageFormat() (ImageFormat, error) {
	return infoAs[ImageFormat](m.GetImageInfo(native.ImageInfoFormat))
}

// ImageSize returns the width, height and depth of an image. Depth is 0 for 2D images.
func (m *MemoryObject) ImageSize() (width, height, depth int, err error) {
	if width, err = infoAs[int](m.GetImageInfo(native.ImageWidth)); err != nil {
		return
	}
	if height, err = infoAs[int](m.GetImageInfo(native.ImageHeight)); err != nil {
		return
	}
	depth, err = infoAs[int](m.GetImageInfo(native.ImageDepth))
	return
}
