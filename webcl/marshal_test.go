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
	"encoding/binary"
	"math"
	"testing"

	"github.com/gomlx/webcl/native"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/x448/float16"
)

func TestToInteger(t *testing.T) {
	const op = "test"
	v8, err := ToInteger[uint8](op, 255)
	require.NoError(t, err)
	assert.Equal(t, uint8(255), v8)
	_, err = ToInteger[uint8](op, 256)
	requireKind(t, err, InvalidValue)
	_, err = ToInteger[uint8](op, -1)
	requireKind(t, err, InvalidValue)

	i8, err := ToInteger[int8](op, -128)
	require.NoError(t, err)
	assert.Equal(t, int8(-128), i8)
	_, err = ToInteger[int8](op, 128)
	requireKind(t, err, InvalidValue)

	for _, bad := range []float64{0.5, math.NaN(), math.Inf(1), math.Inf(-1), 1 << 32} {
		_, err = ToInteger[uint32](op, bad)
		requireKind(t, err, InvalidValue, "value %v", bad)
	}
	u32, err := ToInteger[uint32](op, 1<<32-1)
	require.NoError(t, err)
	assert.Equal(t, uint32(math.MaxUint32), u32)
	i64, err := ToInteger[int64](op, -1<<53)
	require.NoError(t, err)
	assert.Equal(t, int64(-1<<53), i64)
}

func TestImageFormatRecord(t *testing.T) {
	const op = "test"
	format := ImageFormat{ChannelOrder: native.ChannelBGRA, ChannelDataType: native.ChannelUNormInt8}
	record := ImageFormatRecord(format)
	assert.Equal(t, uint32(native.ChannelBGRA), record[ImageFormatOrderField])
	got, err := ImageFormatFromRecord(op, record)
	require.NoError(t, err)
	assert.Equal(t, format, got)

	// Script numbers are float64 or int64.
	got, err = ImageFormatFromRecord(op, map[string]any{
		"order":     float64(native.ChannelRGBA),
		"data_type": int64(native.ChannelFloat),
	})
	require.NoError(t, err)
	assert.Equal(t, ImageFormat{ChannelOrder: native.ChannelRGBA, ChannelDataType: native.ChannelFloat}, got)

	for _, record := range []map[string]any{
		nil,
		{"order": 0x10B5},
		{"order": 0x10B5, "data_type": nil},
		{"order": "CL_RGBA", "data_type": 0x10DE},
		{"order": 0x10B5, "data_type": 1.5},
		{"order": -1, "data_type": 0x10DE},
	} {
		_, err = ImageFormatFromRecord(op, record)
		requireKind(t, err, InvalidValue, "record %v", record)
	}
}

func TestArgType(t *testing.T) {
	assert.Equal(t, "UNKNOWN", ArgUnknown.String())
	assert.Equal(t, "UNSIGNED|INT|V4", (ArgUnsigned | ArgInt | ArgV4).String())
	assert.Equal(t, "FLOAT|0x80000000", (ArgFloat | ArgType(1<<31)).String())
	assert.Equal(t, 1, ArgFloat.VectorWidth())
	assert.Equal(t, 3, (ArgFloat | ArgV3).VectorWidth())
	assert.Equal(t, 16, (ArgChar | ArgV16).VectorWidth())
	assert.True(t, (ArgUnsigned | ArgLong | ArgV2).validScalar())
	assert.False(t, ArgUnsigned.validScalar())
	assert.False(t, (ArgInt | ArgV2 | ArgV4).validScalar())
	assert.False(t, (ArgInt | ArgPointer).validScalar())
}

func TestScalarEncoding(t *testing.T) {
	const op = "test"
	order := binary.NativeEndian
	marshal := func(arg KernelArg) []byte {
		size, value, err := arg.marshalArg(op)
		require.NoError(t, err, "%s", arg)
		require.Len(t, value, size)
		return value
	}

	assert.Equal(t, []byte{1}, marshal(Scalar(ArgBool, 7)))
	assert.Equal(t, []byte{0xFF}, marshal(Scalar(ArgChar, -1)))
	assert.Equal(t, []byte{0xFF}, marshal(Scalar(ArgUnsigned|ArgChar, 255)))
	assert.Equal(t, order.AppendUint16(nil, 0x8000), marshal(Scalar(ArgShort, math.MinInt16)))
	assert.Equal(t, order.AppendUint64(nil, math.MaxUint64), marshal(Scalar[uint64](ArgUnsigned|ArgLong,
		math.MaxUint64)))
	assert.Equal(t, order.AppendUint32(nil, math.Float32bits(0.5)), marshal(Scalar(ArgFloat, 0.5)))
	assert.Equal(t, order.AppendUint64(nil, math.Float64bits(0.1)), marshal(Scalar(ArgDouble, 0.1)))
	assert.Equal(t, order.AppendUint16(nil, float16.Fromfloat32(1.5).Bits()), marshal(Scalar(ArgHalfFloat, 1.5)))

	// Integral floats are accepted for integer types.
	assert.Equal(t, order.AppendUint32(nil, 3), marshal(Scalar(ArgInt, 3.0)))

	// Vectors of 3 components are padded to 4.
	want := order.AppendUint32(nil, 1)
	want = order.AppendUint32(want, 2)
	want = order.AppendUint32(want, 3)
	want = order.AppendUint32(want, 0)
	assert.Equal(t, want, marshal(Scalar(ArgUnsigned|ArgInt|ArgV3, 1, 2, 3)))

	for _, arg := range []KernelArg{
		Scalar(ArgChar, 128),
		Scalar(ArgUnsigned|ArgShort, -1),
		Scalar(ArgInt, 0.5),
		Scalar(ArgInt|ArgV2, 1),
		Scalar(ArgPointer, 1),
		Scalar(ArgUnknown, 1),
	} {
		_, _, err := arg.marshalArg(op)
		requireKind(t, err, InvalidArgValue, "%s", arg)
	}

	size, value, err := Local(128).marshalArg(op)
	require.NoError(t, err)
	assert.Equal(t, 128, size)
	assert.Nil(t, value)
	size, value, err = Mem(nil).marshalArg(op)
	require.NoError(t, err)
	assert.Equal(t, native.SizeTBytes, size)
	assert.Nil(t, value)
}
