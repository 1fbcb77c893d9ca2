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
	"encoding/binary"

	"github.com/gomlx/webcl/native"
)

// Encoders of info values, in native byte order and C widths.

func encodeUint32(v uint32) []byte {
	return binary.NativeEndian.AppendUint32(nil, v)
}

func encodeInt32(v int32) []byte {
	return encodeUint32(uint32(v))
}

func encodeUint64(v uint64) []byte {
	return binary.NativeEndian.AppendUint64(nil, v)
}

func encodeBool(v bool) []byte {
	if v {
		return encodeUint32(native.True)
	}
	return encodeUint32(native.False)
}

// encodeSizes encodes values as size_t (or intptr_t, or handles).
func encodeSizes(values ...uint64) []byte {
	buf := make([]byte, 0, len(values)*native.SizeTBytes)
	for _, v := range values {
		if native.SizeTBytes == 4 {
			buf = binary.NativeEndian.AppendUint32(buf, uint32(v))
		} else {
			buf = binary.NativeEndian.AppendUint64(buf, v)
		}
	}
	return buf
}

func encodeSize(v int) []byte {
	return encodeSizes(uint64(v))
}

func encodeHandles(handles ...native.Handle) []byte {
	values := make([]uint64, len(handles))
	for ii, h := range handles {
		values[ii] = uint64(h)
	}
	return encodeSizes(values...)
}

// encodeString encodes s as a zero terminated C string.
func encodeString(s string) []byte {
	return append([]byte(s), 0)
}

// decodeHandle decodes a handle passed by value, e.g. as a kernel argument.
func decodeHandle(value []byte) native.Handle {
	if native.SizeTBytes == 4 {
		return native.Handle(binary.NativeEndian.Uint32(value))
	}
	return native.Handle(binary.NativeEndian.Uint64(value))
}

// answer implements the query convention: with a nil value only the size is returned, otherwise value
// must be large enough for data.
func answer(data []byte, value []byte) (int, native.Status) {
	if value != nil {
		if len(value) < len(data) {
			return 0, native.InvalidValue
		}
		copy(value, data)
	}
	return len(data), native.Success
}
