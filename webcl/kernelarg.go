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
	"fmt"
	"math"
	"strings"

	"github.com/gomlx/webcl/native"
	"github.com/x448/float16"
	"golang.org/x/exp/constraints"
)

// ArgType is a bit-mask describing the type of a kernel argument: a base type, optionally UNSIGNED, and a
// vector width.
type ArgType uint32

const (
	ArgUnknown   ArgType = 0
	ArgLocal     ArgType = 1 << 0
	ArgPointer   ArgType = 1 << 1
	ArgUnsigned  ArgType = 1 << 2
	ArgMem       ArgType = 1 << 3
	ArgComplex   ArgType = 1 << 4
	ArgImaginary ArgType = 1 << 5
	ArgBool      ArgType = 1 << 8
	ArgChar      ArgType = 1 << 9
	ArgShort     ArgType = 1 << 10
	ArgInt       ArgType = 1 << 11
	ArgLong      ArgType = 1 << 12
	ArgFloat     ArgType = 1 << 13
	ArgHalfFloat ArgType = 1 << 14
	ArgDouble    ArgType = 1 << 15
	ArgQuad      ArgType = 1 << 16
	ArgLongLong  ArgType = 1 << 17
	ArgV2        ArgType = 1 << 20
	ArgV3        ArgType = 1 << 21
	ArgV4        ArgType = 1 << 22
	ArgV8        ArgType = 1 << 23
	ArgV16       ArgType = 1 << 24
	ArgSampler   ArgType = 1 << 30

	argBaseMask   = ArgBool | ArgChar | ArgShort | ArgInt | ArgLong | ArgFloat | ArgHalfFloat | ArgDouble
	argVectorMask = ArgV2 | ArgV3 | ArgV4 | ArgV8 | ArgV16
)

var argTypeNames = []struct {
	t    ArgType
	name string
}{
	{ArgLocal, "LOCAL"}, {ArgPointer, "POINTER"}, {ArgUnsigned, "UNSIGNED"}, {ArgMem, "MEM"},
	{ArgComplex, "COMPLEX"}, {ArgImaginary, "IMAGINARY"}, {ArgBool, "BOOL"}, {ArgChar, "CHAR"},
	{ArgShort, "SHORT"}, {ArgInt, "INT"}, {ArgLong, "LONG"}, {ArgFloat, "FLOAT"}, {ArgHalfFloat, "HALF_FLOAT"},
	{ArgDouble, "DOUBLE"}, {ArgQuad, "QUAD"}, {ArgLongLong, "LONG_LONG"}, {ArgV2, "V2"}, {ArgV3, "V3"},
	{ArgV4, "V4"}, {ArgV8, "V8"}, {ArgV16, "V16"}, {ArgSampler, "SAMPLER"},
}

// String implements fmt.Stringer, e.g. "UNSIGNED|INT|V4".
func (t ArgType) String() string {
	if t == ArgUnknown {
		return "UNKNOWN"
	}
	var parts []string
	for _, n := range argTypeNames {
		if t&n.t != 0 {
			parts = append(parts, n.name)
			t &^= n.t
		}
	}
	if t != 0 {
		parts = append(parts, fmt.Sprintf("0x%X", uint32(t)))
	}
	return strings.Join(parts, "|")
}

// VectorWidth returns the number of components of the type: 1 for scalars.
func (t ArgType) VectorWidth() int {
	switch t & argVectorMask {
	case ArgV2:
		return 2
	case ArgV3:
		return 3
	case ArgV4:
		return 4
	case ArgV8:
		return 8
	case ArgV16:
		return 16
	}
	return 1
}

// componentBytes returns the size of one component of the base type, or 0 if not supported.
func (t ArgType) componentBytes() int {
	switch t & argBaseMask {
	case ArgBool, ArgChar:
		return 1
	case ArgShort, ArgHalfFloat:
		return 2
	case ArgInt, ArgFloat:
		return 4
	case ArgLong, ArgDouble:
		return 8
	}
	return 0
}

// validScalar returns whether t describes exactly one supported base type, with at most one vector width.
func (t ArgType) validScalar() bool {
	base := t & argBaseMask
	vector := t & argVectorMask
	rest := t &^ (argBaseMask | argVectorMask | ArgUnsigned)
	return rest == 0 && base != 0 && base&(base-1) == 0 && vector&(vector-1) == 0
}

// KernelArg is the value of a kernel argument: Local, Mem, SamplerArg or Scalar.
type KernelArg interface {
	fmt.Stringer

	// marshalArg returns the size and value to pass to the native SetKernelArg.
	marshalArg(op string) (size int, value []byte, err error)
}

type localArg int

// Local declares a __local memory argument of size bytes.
func Local(size int) KernelArg {
	return localArg(size)
}

func (a localArg) String() string {
	return fmt.Sprintf("Local(%d)", int(a))
}

func (a localArg) marshalArg(op string) (int, []byte, error) {
	if err := checkSize(op, "local memory size", int(a)); err != nil {
		return 0, nil, err
	}
	return int(a), nil, nil
}

type memArg struct {
	mem *MemoryObject
}

// Mem passes a buffer or image as an argument. A nil buffer is passed as a NULL __global pointer.
func Mem(mem *MemoryObject) KernelArg {
	return memArg{mem: mem}
}

func (a memArg) String() string {
	if a.mem == nil {
		return "Mem(nil)"
	}
	return fmt.Sprintf("Mem(%s)", a.mem)
}

func (a memArg) marshalArg(op string) (int, []byte, error) {
	if a.mem == nil {
		return native.SizeTBytes, nil, nil
	}
	id, err := a.mem.res.id(op)
	if err != nil {
		return 0, nil, err
	}
	return native.SizeTBytes, encodeHandle(id), nil
}

type samplerArg struct {
	sampler *Sampler
}

// SamplerArg passes a sampler as an argument.
func SamplerArg(sampler *Sampler) KernelArg {
	return samplerArg{sampler: sampler}
}

func (a samplerArg) String() string {
	return fmt.Sprintf("Sampler(%v)", a.sampler)
}

func (a samplerArg) marshalArg(op string) (int, []byte, error) {
	if a.sampler == nil {
		return 0, nil, errorf(InvalidSampler, op, "nil sampler")
	}
	id, err := a.sampler.res.id(op)
	if err != nil {
		return 0, nil, err
	}
	return native.SizeTBytes, encodeHandle(id), nil
}

// encodeHandle encodes a handle passed by value, as a kernel argument.
func encodeHandle(id native.Handle) []byte {
	if native.SizeTBytes == 4 {
		return binary.NativeEndian.AppendUint32(nil, uint32(id))
	}
	return binary.NativeEndian.AppendUint64(nil, uint64(id))
}

type scalarArg[T constraints.Integer | constraints.Float] struct {
	t      ArgType
	values []T
}

// Scalar passes a scalar or a vector (of width given by t) argument. The number of values must match the
// vector width of t, and each value must be representable in the base type.
//
// Example: Scalar(ArgFloat|ArgV4, 1, 0, 0, 1) for a float4.
func Scalar[T constraints.Integer | constraints.Float](t ArgType, values ...T) KernelArg {
	return scalarArg[T]{t: t, values: values}
}

func (a scalarArg[T]) String() string {
	return fmt.Sprintf("Scalar(%s, %v)", a.t, a.values)
}

func (a scalarArg[T]) marshalArg(op string) (int, []byte, error) {
	if !a.t.validScalar() {
		return 0, nil, errorf(InvalidArgValue, op, "unsupported scalar argument type %s", a.t)
	}
	width := a.t.VectorWidth()
	if len(a.values) != width {
		return 0, nil, errorf(InvalidArgValue, op, "%s takes %d values, %d given", a.t, width, len(a.values))
	}
	// 3-component vectors take the space of 4.
	slots := width
	if width == 3 {
		slots = 4
	}
	buf := make([]byte, 0, slots*a.t.componentBytes())
	var err error
	for _, v := range a.values {
		if buf, err = appendScalar(op, buf, a.t, v); err != nil {
			return 0, nil, err
		}
	}
	for ii := width; ii < slots; ii++ {
		buf = append(buf, make([]byte, a.t.componentBytes())...)
	}
	return len(buf), buf, nil
}

// appendScalar appends v encoded (native byte order) as the base type of t.
func appendScalar[T constraints.Integer | constraints.Float](op string, buf []byte, t ArgType, v T) ([]byte, error) {
	order := binary.NativeEndian
	unsigned := t&ArgUnsigned != 0
	switch t & argBaseMask {
	case ArgBool:
		if v != 0 {
			return append(buf, 1), nil
		}
		return append(buf, 0), nil
	case ArgChar:
		if unsigned {
			x, err := convertInteger[T, uint8](op, v)
			return append(buf, x), err
		}
		x, err := convertInteger[T, int8](op, v)
		return append(buf, uint8(x)), err
	case ArgShort:
		if unsigned {
			x, err := convertInteger[T, uint16](op, v)
			return order.AppendUint16(buf, x), err
		}
		x, err := convertInteger[T, int16](op, v)
		return order.AppendUint16(buf, uint16(x)), err
	case ArgInt:
		if unsigned {
			x, err := convertInteger[T, uint32](op, v)
			return order.AppendUint32(buf, x), err
		}
		x, err := convertInteger[T, int32](op, v)
		return order.AppendUint32(buf, uint32(x)), err
	case ArgLong:
		if unsigned {
			x, err := convertInteger[T, uint64](op, v)
			return order.AppendUint64(buf, x), err
		}
		x, err := convertInteger[T, int64](op, v)
		return order.AppendUint64(buf, uint64(x)), err
	case ArgHalfFloat:
		return order.AppendUint16(buf, float16.Fromfloat32(float32(v)).Bits()), nil
	case ArgFloat:
		return order.AppendUint32(buf, math.Float32bits(float32(v))), nil
	case ArgDouble:
		return order.AppendUint64(buf, math.Float64bits(float64(v))), nil
	}
	return buf, errorf(InvalidArgValue, op, "unsupported scalar argument type %s", t)
}

// convertInteger converts v to the integer type D, failing with InvalidArgValue if it doesn't fit.
func convertInteger[T constraints.Integer | constraints.Float, D constraints.Integer](op string, v T) (D, error) {
	switch any(v).(type) {
	case float32, float64:
		d, err := ToInteger[D](op, float64(v))
		if err != nil {
			return 0, errorf(InvalidArgValue, op, "%v doesn't fit a %T", v, d)
		}
		return d, nil
	}
	d := D(v)
	if T(d) != v || (d < 0) != (v < 0) {
		return 0, errorf(InvalidArgValue, op, "%v doesn't fit a %T", v, d)
	}
	return d, nil
}
