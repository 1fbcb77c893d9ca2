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
	"reflect"
	"strconv"

	"github.com/dop251/goja"
	"github.com/gomlx/webcl/native"
	"github.com/gomlx/webcl/webcl"
	"golang.org/x/exp/constraints"
)

// isMissing returns whether v is absent, undefined or null.
func isMissing(v goja.Value) bool {
	return v == nil || goja.IsUndefined(v) || goja.IsNull(v)
}

// integerArg converts a required JavaScript number to T, throwing InvalidValue if it's not an integer
// in the range of T.
func integerArg[T constraints.Integer](h *Host, op string, v goja.Value) T {
	if isMissing(v) {
		panic(h.invalidValue(op, "missing integer argument"))
	}
	x, err := webcl.ToInteger[T](op, v.ToFloat())
	h.check(err)
	return x
}

// optionalIntegerArg is like integerArg, but returns defaultValue if v is missing.
func optionalIntegerArg[T constraints.Integer](h *Host, op string, v goja.Value, defaultValue T) T {
	if isMissing(v) {
		return defaultValue
	}
	return integerArg[T](h, op, v)
}

// bytesArg returns the memory of an ArrayBuffer, a typed array or a DataView, without copying.
// It returns nil if v is missing.
func (h *Host) bytesArg(op string, v goja.Value) []byte {
	if isMissing(v) {
		return nil
	}
	if buf, ok := v.Export().(goja.ArrayBuffer); ok {
		return buf.Bytes()
	}
	if obj, ok := v.(*goja.Object); ok {
		if bufValue := obj.Get("buffer"); !isMissing(bufValue) {
			if buf, ok := bufValue.Export().(goja.ArrayBuffer); ok {
				offset := obj.Get("byteOffset").ToInteger()
				length := obj.Get("byteLength").ToInteger()
				data := buf.Bytes()
				if offset >= 0 && length >= 0 && offset+length <= int64(len(data)) {
					return data[offset : offset+length : offset+length]
				}
			}
		}
	}
	panic(h.invalidValue(op, "expected an ArrayBuffer or a typed array, got %s", v))
}

// elements returns the elements of the JavaScript array v.
func (h *Host) elements(op string, v goja.Value) []goja.Value {
	obj, ok := v.(*goja.Object)
	if !ok || obj.ClassName() != "Array" {
		panic(h.invalidValue(op, "expected an array, got %s", v))
	}
	length := obj.Get("length").ToInteger()
	values := make([]goja.Value, length)
	for ii := range values {
		values[ii] = obj.Get(strconv.Itoa(ii))
	}
	return values
}

// devicesArg accepts a device or an array of devices.
func (h *Host) devicesArg(op string, v goja.Value) []*webcl.Device {
	if isMissing(v) {
		return nil
	}
	if obj, ok := v.(*goja.Object); ok && obj.ClassName() != "Array" {
		return []*webcl.Device{unwrap[webcl.Device](h, op, v)}
	}
	values := h.elements(op, v)
	devices := make([]*webcl.Device, len(values))
	for ii, value := range values {
		if devices[ii] = unwrap[webcl.Device](h, op, value); devices[ii] == nil {
			panic(h.invalidValue(op, "device #%d is %s", ii, value))
		}
	}
	return devices
}

// imageFormatArg accepts a record {order, data_type}.
func (h *Host) imageFormatArg(op string, v goja.Value) webcl.ImageFormat {
	var record map[string]any
	if !isMissing(v) {
		record, _ = v.Export().(map[string]any)
	}
	if record == nil {
		panic(h.invalidValue(op, "expected an image format {%s, %s}, got %s", webcl.ImageFormatOrderField,
			webcl.ImageFormatDataTypeField, v))
	}
	format, err := webcl.ImageFormatFromRecord(op, record)
	h.check(err)
	return format
}

// toJS converts values returned by webcl to JavaScript: wrappers become (unique) JavaScript objects,
// image formats become records, and numbers of any named type become numbers.
func (h *Host) toJS(value any) goja.Value {
	switch v := value.(type) {
	case nil:
		return goja.Null()
	case *webcl.Platform:
		return h.platform(v)
	case *webcl.Device:
		return h.device(v)
	case *webcl.Context:
		return h.context(v)
	case *webcl.CommandQueue:
		return h.commandQueue(v)
	case *webcl.MemoryObject:
		return h.memoryObject(v)
	case *webcl.Sampler:
		return h.sampler(v)
	case *webcl.Program:
		return h.program(v)
	case *webcl.Kernel:
		return h.kernel(v)
	case *webcl.Event:
		return h.event(v)
	case webcl.ImageFormat:
		return h.rt.ToValue(webcl.ImageFormatRecord(v))
	case native.Status:
		return h.rt.ToValue(int64(v))
	case string:
		return h.rt.ToValue(v)
	case []byte:
		return h.uint8Array(v)
	}
	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Bool:
		return h.rt.ToValue(rv.Bool())
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return h.rt.ToValue(rv.Int())
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return h.rt.ToValue(rv.Uint())
	case reflect.Float32, reflect.Float64:
		return h.rt.ToValue(rv.Float())
	case reflect.Slice:
		items := make([]any, rv.Len())
		for ii := range items {
			items[ii] = h.toJS(rv.Index(ii).Interface())
		}
		return h.rt.NewArray(items...)
	}
	return h.rt.ToValue(value)
}

// uint8Array returns a new Uint8Array with a copy of data.
func (h *Host) uint8Array(data []byte) goja.Value {
	buf := h.rt.NewArrayBuffer(append([]byte(nil), data...))
	array, err := h.rt.New(h.rt.Get("Uint8Array"), h.rt.ToValue(buf))
	h.check(err)
	return array
}
