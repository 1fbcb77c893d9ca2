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
	"bytes"
	"encoding/binary"

	"github.com/dustin/go-humanize"
	"github.com/gomlx/webcl/native"
	"github.com/pkg/errors"
	"k8s.io/klog/v2"
)

// infoType is the native type of an info query result.
type infoType int

const (
	infoUint32      infoType = iota // cl_uint, returned as uint32.
	infoInt32                       // cl_int, returned as int32.
	infoUint64                      // cl_ulong and bit-fields, returned as uint64.
	infoSize                        // size_t, returned as int.
	infoBool                        // cl_bool, returned as bool.
	infoString                      // NUL terminated char[], returned as string.
	infoHandle                      // one handle, returned as native.Handle.
	infoHandles                     // handle[], returned as []native.Handle.
	infoSizes                       // size_t[], returned as []int.
	infoProperties                  // zero terminated intptr_t[], returned as []int64.
	infoImageFormat                 // cl_image_format, returned as ImageFormat.
)

// fixedSize returns the size of fixed size types, or 0 for variable length ones.
func (t infoType) fixedSize() int {
	switch t {
	case infoUint32, infoInt32, infoBool:
		return 4
	case infoUint64:
		return 8
	case infoSize, infoHandle:
		return native.SizeTBytes
	case infoImageFormat:
		return 8
	}
	return 0
}

// queryFn calls a native Get*Info function, bound to its object and parameter.
type queryFn func(value []byte) (size int, status native.Status)

// fetchInfo fetches the raw value of an info query.
//
// Variable length values use the two-step protocol: query the size first, then fetch. Fixed size values
// are fetched directly.
func fetchInfo(site *callSite, t infoType, query queryFn) ([]byte, error) {
	size := t.fixedSize()
	if size == 0 {
		var status native.Status
		size, status = query(nil)
		if err := site.check(status); err != nil {
			return nil, err
		}
		if size == 0 {
			return nil, nil
		}
	}
	value := make([]byte, size)
	size, status := query(value)
	if err := site.check(status); err != nil {
		return nil, err
	}
	if size < len(value) {
		value = value[:size]
	}
	if klog.V(2).Enabled() {
		klog.Infof("webcl: %s returned %s", site.op, humanize.IBytes(uint64(len(value))))
	}
	return value, nil
}

// queryInfo fetches and decodes an info query.
func queryInfo(site *callSite, t infoType, query queryFn) (any, error) {
	value, err := fetchInfo(site, t, query)
	if err != nil {
		return nil, err
	}
	decoded, err := decodeInfo(t, value)
	if err != nil {
		return nil, errors.WithStack(&Error{Kind: UnknownNativeError, Op: site.op, Msg: err.Error()})
	}
	return decoded, nil
}

// decodeInfo decodes the native encoded (native byte order) value of type t.
func decodeInfo(t infoType, value []byte) (any, error) {
	if fixed := t.fixedSize(); fixed > 0 && len(value) < fixed {
		return nil, errors.Errorf("info value has %d bytes, wanted %d", len(value), fixed)
	}
	order := binary.NativeEndian
	switch t {
	case infoUint32:
		return order.Uint32(value), nil
	case infoInt32:
		return int32(order.Uint32(value)), nil
	case infoUint64:
		return order.Uint64(value), nil
	case infoSize:
		return int(decodeSize(value)), nil
	case infoBool:
		return order.Uint32(value) != native.False, nil
	case infoString:
		if idx := bytes.IndexByte(value, 0); idx >= 0 {
			value = value[:idx]
		}
		return string(value), nil
	case infoHandle:
		return native.Handle(decodeSize(value)), nil
	case infoHandles:
		values := decodeSizes(value)
		handles := make([]native.Handle, len(values))
		for ii, v := range values {
			handles[ii] = native.Handle(v)
		}
		return handles, nil
	case infoSizes:
		values := decodeSizes(value)
		sizes := make([]int, len(values))
		for ii, v := range values {
			sizes[ii] = int(v)
		}
		return sizes, nil
	case infoProperties:
		values := decodeSizes(value)
		// (name, value) pairs, terminated by a 0 name. Values may be 0.
		properties := make([]int64, 0, len(values))
		for ii := 0; ii+1 < len(values) && values[ii] != 0; ii += 2 {
			properties = append(properties, int64(values[ii]), int64(values[ii+1]))
		}
		return properties, nil
	case infoImageFormat:
		return ImageFormat{
			ChannelOrder:    native.ChannelOrder(order.Uint32(value)),
			ChannelDataType: native.ChannelType(order.Uint32(value[4:])),
		}, nil
	}
	return nil, errors.Errorf("unknown info type %d", t)
}

// decodeSize decodes one size_t (or intptr_t, or handle).
func decodeSize(value []byte) uint64 {
	if native.SizeTBytes == 4 {
		return uint64(binary.NativeEndian.Uint32(value))
	}
	return binary.NativeEndian.Uint64(value)
}

// decodeSizes decodes an array of size_t, ignoring trailing partial values.
func decodeSizes(value []byte) []uint64 {
	values := make([]uint64, len(value)/native.SizeTBytes)
	for ii := range values {
		values[ii] = decodeSize(value[ii*native.SizeTBytes:])
	}
	return values
}

// infoAs converts the result of a GetInfo call to its expected type.
func infoAs[T any](value any, err error) (T, error) {
	var zero T
	if err != nil {
		return zero, err
	}
	if value == nil {
		return zero, nil
	}
	typed, ok := value.(T)
	if !ok {
		return zero, errors.Errorf("webcl: info value %v is a %T, not a %T", value, value, zero)
	}
	return typed, nil
}
