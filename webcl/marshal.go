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
	"math"
	"runtime"
	"unsafe"

	"github.com/gomlx/webcl/native"
	"golang.org/x/exp/constraints"
)

// ImageFormat of an image memory object: its channel order and channel data type.
type ImageFormat = native.ImageFormat

// Field names of an image format record, as in {order: CL_RGBA, data_type: CL_FLOAT}.
const (
	ImageFormatOrderField    = "order"
	ImageFormatDataTypeField = "data_type"
)

// ImageFormatFromRecord decodes an image format from a record (e.g. an exported script object). Both fields
// must be present and integral numbers, otherwise it fails with InvalidValue.
func ImageFormatFromRecord(op string, record map[string]any) (ImageFormat, error) {
	order, err := recordField[uint32](op, record, ImageFormatOrderField)
	if err != nil {
		return ImageFormat{}, err
	}
	dataType, err := recordField[uint32](op, record, ImageFormatDataTypeField)
	if err != nil {
		return ImageFormat{}, err
	}
	return ImageFormat{ChannelOrder: native.ChannelOrder(order), ChannelDataType: native.ChannelType(dataType)}, nil
}

// ImageFormatRecord is the inverse of ImageFormatFromRecord.
func ImageFormatRecord(format ImageFormat) map[string]any {
	return map[string]any{
		ImageFormatOrderField:    uint32(format.ChannelOrder),
		ImageFormatDataTypeField: uint32(format.ChannelDataType),
	}
}

func recordField[T constraints.Integer](op string, record map[string]any, field string) (T, error) {
	value, found := record[field]
	if !found || value == nil {
		return 0, errorf(InvalidValue, op, "image format record missing field %q", field)
	}
	number, ok := toFloat64(value)
	if !ok {
		return 0, errorf(InvalidValue, op, "image format field %q is a %T, not a number", field, value)
	}
	return ToInteger[T](op, number)
}

// toFloat64 converts any Go number to float64.
func toFloat64(value any) (float64, bool) {
	switch v := value.(type) {
	case int:
		return float64(v), true
	case int8:
		return float64(v), true
	case int16:
		return float64(v), true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	case uint:
		return float64(v), true
	case uint8:
		return float64(v), true
	case uint16:
		return float64(v), true
	case uint32:
		return float64(v), true
	case uint64:
		return float64(v), true
	case float32:
		return float64(v), true
	case float64:
		return v, true
	}
	return 0, false
}

// ToInteger converts a host number to the integer type T. It fails with InvalidValue if the number is not
// integral, or if it is out of the range of T.
func ToInteger[T constraints.Integer](op string, value float64) (T, error) {
	var zero T
	bits := int(unsafe.Sizeof(zero)) * 8
	low, high := 0.0, math.Ldexp(1, bits)
	if zero-1 < zero {
		// Signed type.
		low, high = -math.Ldexp(1, bits-1), math.Ldexp(1, bits-1)
	}
	if math.IsNaN(value) || math.Trunc(value) != value || value < low || value >= high {
		return 0, errorf(InvalidValue, op, "%v is not a valid %T", value, zero)
	}
	return T(value), nil
}

// checkSize returns an InvalidValue error if size is negative.
func checkSize(op, name string, size int) error {
	if size < 0 {
		return errorf(InvalidValue, op, "negative %s (%d)", name, size)
	}
	return nil
}

// unwrapDevices converts devices to their native handles, in order.
// Nil devices fail with InvalidDevice, released ones with UseAfterRelease.
func unwrapDevices(op string, devices []*Device) ([]native.Handle, error) {
	defer runtime.KeepAlive(devices)
	ids := make([]native.Handle, len(devices))
	for ii, d := range devices {
		if d == nil {
			return nil, errorf(InvalidDevice, op, "device #%d is nil", ii)
		}
		id, err := d.res.id(op)
		if err != nil {
			return nil, err
		}
		ids[ii] = id
	}
	return ids, nil
}

// ProgramSource is what a program is created from: either Source or Binaries.
type ProgramSource interface {
	isProgramSource()
}

// Source code of a program.
type Source string

func (Source) isProgramSource() {}

// Binaries of a program, one per device, as returned by Program.Binaries.
type Binaries struct {
	Devices []*Device
	Blobs   [][]byte
}

func (Binaries) isProgramSource() {}

// marshal validates the binaries and returns the device handles.
func (bins Binaries) marshal(op string) ([]native.Handle, error) {
	if len(bins.Devices) == 0 {
		return nil, errorf(InvalidValue, op, "no devices given for program binaries")
	}
	if len(bins.Devices) != len(bins.Blobs) {
		return nil, errorf(InvalidValue, op, "%d devices given, but %d binaries", len(bins.Devices), len(bins.Blobs))
	}
	for ii, blob := range bins.Blobs {
		if len(blob) == 0 {
			return nil, errorf(InvalidValue, op, "binary #%d is empty", ii)
		}
	}
	return unwrapDevices(op, bins.Devices)
}
