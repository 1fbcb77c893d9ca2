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
	"github.com/dop251/goja"
	"github.com/gomlx/webcl/native"
	"github.com/gomlx/webcl/webcl"
)

func (h *Host) getPlatforms(goja.FunctionCall) goja.Value {
	return h.result(h.binding.Platforms())
}

// createContext(devices | deviceType, [platform]). Without arguments it uses the default device type.
func (h *Host) createContext(call goja.FunctionCall) goja.Value {
	const op = "webcl.createContext"
	props := webcl.ContextProperties{Platform: unwrap[webcl.Platform](h, op, call.Argument(1))}
	arg := call.Argument(0)
	if _, isObject := arg.(*goja.Object); isObject {
		return h.result(h.binding.CreateContext(props, h.devicesArg(op, arg)))
	}
	deviceType := optionalIntegerArg(h, op, arg, native.DeviceTypeDefault)
	return h.result(h.binding.CreateContextFromType(props, deviceType))
}

// releaseAll releases every live object of the binding, and returns how many were released.
func (h *Host) releaseAll(goja.FunctionCall) goja.Value {
	return h.rt.ToValue(h.binding.Registry().DrainAll())
}

func (h *Host) platform(p *webcl.Platform) goja.Value {
	if p == nil {
		return goja.Null()
	}
	return h.wrap(p, func() methods {
		return methods{
			"getInfo": func(call goja.FunctionCall) goja.Value {
				param := integerArg[uint32](h, "WebCLPlatform.getInfo", call.Argument(0))
				return h.result(p.GetInfo(native.PlatformInfo(param)))
			},
			"getDevices": func(call goja.FunctionCall) goja.Value {
				deviceType := optionalIntegerArg(h, "WebCLPlatform.getDevices", call.Argument(0),
					native.DeviceTypeAll)
				return h.result(p.Devices(deviceType))
			},
		}
	})
}

func (h *Host) device(d *webcl.Device) goja.Value {
	if d == nil {
		return goja.Null()
	}
	return h.wrap(d, func() methods {
		return methods{
			"getInfo": func(call goja.FunctionCall) goja.Value {
				param := integerArg[uint32](h, "WebCLDevice.getInfo", call.Argument(0))
				return h.result(d.GetInfo(native.DeviceInfo(param)))
			},
		}
	})
}

func (h *Host) context(c *webcl.Context) goja.Value {
	if c == nil {
		return goja.Null()
	}
	return h.wrap(c, func() methods {
		return methods{
			"getInfo": func(call goja.FunctionCall) goja.Value {
				param := integerArg[uint32](h, "WebCLContext.getInfo", call.Argument(0))
				return h.result(c.GetInfo(native.ContextInfo(param)))
			},

			// createProgram(source) or createProgram(devices, binaries).
			"createProgram": func(call goja.FunctionCall) goja.Value {
				const op = "WebCLContext.createProgram"
				arg := call.Argument(0)
				if source, isString := arg.Export().(string); isString {
					return h.result(c.CreateProgram(webcl.Source(source)))
				}
				if isMissing(arg) {
					panic(h.invalidValue(op, "missing program source"))
				}
				devices := h.devicesArg(op, arg)
				if isMissing(call.Argument(1)) {
					panic(h.invalidValue(op, "missing program binaries"))
				}
				var blobs [][]byte
				for _, blob := range h.elements(op, call.Argument(1)) {
					blobs = append(blobs, h.bytesArg(op, blob))
				}
				return h.result(c.CreateProgram(webcl.Binaries{Devices: devices, Blobs: blobs}))
			},

			"createCommandQueue": func(call goja.FunctionCall) goja.Value {
				const op = "WebCLContext.createCommandQueue"
				device := unwrap[webcl.Device](h, op, call.Argument(0))
				props := optionalIntegerArg[native.CommandQueueProperties](h, op, call.Argument(1), 0)
				return h.result(c.CreateCommandQueue(device, props))
			},

			// createBuffer(flags, size, [host]).
			"createBuffer": func(call goja.FunctionCall) goja.Value {
				const op = "WebCLContext.createBuffer"
				flags := integerArg[native.MemFlags](h, op, call.Argument(0))
				size := integerArg[int](h, op, call.Argument(1))
				return h.result(c.CreateBuffer(flags, size, h.bytesArg(op, call.Argument(2))))
			},

			// createImage2D(flags, {order, data_type}, width, height, [rowPitch], [host]).
			"createImage2D": func(call goja.FunctionCall) goja.Value {
				const op = "WebCLContext.createImage2D"
				flags := integerArg[native.MemFlags](h, op, call.Argument(0))
				format := h.imageFormatArg(op, call.Argument(1))
				width := integerArg[int](h, op, call.Argument(2))
				height := integerArg[int](h, op, call.Argument(3))
				rowPitch := optionalIntegerArg(h, op, call.Argument(4), 0)
				return h.result(c.CreateImage2D(flags, format, width, height, rowPitch,
					h.bytesArg(op, call.Argument(5))))
			},

			// createImage3D(flags, {order, data_type}, width, height, depth, [rowPitch], [slicePitch], [host]).
			"createImage3D": func(call goja.FunctionCall) goja.Value {
				const op = "WebCLContext.createImage3D"
				flags := integerArg[native.MemFlags](h, op, call.Argument(0))
				format := h.imageFormatArg(op, call.Argument(1))
				width := integerArg[int](h, op, call.Argument(2))
				height := integerArg[int](h, op, call.Argument(3))
				depth := integerArg[int](h, op, call.Argument(4))
				rowPitch := optionalIntegerArg(h, op, call.Argument(5), 0)
				slicePitch := optionalIntegerArg(h, op, call.Argument(6), 0)
				return h.result(c.CreateImage3D(flags, format, width, height, depth, rowPitch, slicePitch,
					h.bytesArg(op, call.Argument(7))))
			},

			"createSampler": func(call goja.FunctionCall) goja.Value {
				const op = "WebCLContext.createSampler"
				normalized := call.Argument(0).ToBoolean()
				addressing := integerArg[native.AddressingMode](h, op, call.Argument(1))
				filter := integerArg[native.FilterMode](h, op, call.Argument(2))
				return h.result(c.CreateSampler(normalized, addressing, filter))
			},

			"getSupportedImageFormats": func(call goja.FunctionCall) goja.Value {
				const op = "WebCLContext.getSupportedImageFormats"
				flags := optionalIntegerArg(h, op, call.Argument(0), native.MemReadWrite)
				imageType := optionalIntegerArg(h, op, call.Argument(1), native.MemObjectImage2D)
				return h.result(c.GetSupportedImageFormats(flags, imageType))
			},

			"createUserEvent": func(goja.FunctionCall) goja.Value {
				return h.result(c.CreateUserEvent())
			},
		}
	})
}

func (h *Host) commandQueue(q *webcl.CommandQueue) goja.Value {
	if q == nil {
		return goja.Null()
	}
	return h.wrap(q, func() methods {
		return methods{
			"getInfo": func(call goja.FunctionCall) goja.Value {
				param := integerArg[uint32](h, "WebCLCommandQueue.getInfo", call.Argument(0))
				return h.result(q.GetInfo(native.CommandQueueInfo(param)))
			},
		}
	})
}

func (h *Host) memoryObject(m *webcl.MemoryObject) goja.Value {
	if m == nil {
		return goja.Null()
	}
	return h.wrap(m, func() methods {
		return methods{
			"getInfo": func(call goja.FunctionCall) goja.Value {
				param := integerArg[uint32](h, "WebCLMemoryObject.getInfo", call.Argument(0))
				return h.result(m.GetInfo(native.MemInfo(param)))
			},
			"getImageInfo": func(call goja.FunctionCall) goja.Value {
				param := integerArg[uint32](h, "WebCLMemoryObject.getImageInfo", call.Argument(0))
				return h.result(m.GetImageInfo(native.ImageInfo(param)))
			},
		}
	})
}

func (h *Host) sampler(s *webcl.Sampler) goja.Value {
	if s == nil {
		return goja.Null()
	}
	return h.wrap(s, func() methods {
		return methods{
			"getInfo": func(call goja.FunctionCall) goja.Value {
				param := integerArg[uint32](h, "WebCLSampler.getInfo", call.Argument(0))
				return h.result(s.GetInfo(native.SamplerInfo(param)))
			},
		}
	})
}

func (h *Host) program(p *webcl.Program) goja.Value {
	if p == nil {
		return goja.Null()
	}
	return h.wrap(p, func() methods {
		return methods{
			"getInfo": func(call goja.FunctionCall) goja.Value {
				param := integerArg[uint32](h, "WebCLProgram.getInfo", call.Argument(0))
				return h.result(p.GetInfo(native.ProgramInfo(param)))
			},

			// build([devices], [options]). build(options) is also accepted.
			"build": func(call goja.FunctionCall) goja.Value {
				const op = "WebCLProgram.build"
				devicesValue, optionsValue := call.Argument(0), call.Argument(1)
				if _, isString := devicesValue.Export().(string); isString {
					devicesValue, optionsValue = goja.Undefined(), devicesValue
				}
				var options string
				if !isMissing(optionsValue) {
					options = optionsValue.String()
				}
				h.check(p.Build(h.devicesArg(op, devicesValue), options))
				return goja.Undefined()
			},

			"getBuildInfo": func(call goja.FunctionCall) goja.Value {
				const op = "WebCLProgram.getBuildInfo"
				device := unwrap[webcl.Device](h, op, call.Argument(0))
				param := integerArg[uint32](h, op, call.Argument(1))
				return h.result(p.GetBuildInfo(device, native.ProgramBuildInfo(param)))
			},

			// getBinaries returns one Uint8Array per program device, see CL_PROGRAM_DEVICES.
			"getBinaries": func(goja.FunctionCall) goja.Value {
				bins, err := p.Binaries()
				h.check(err)
				return h.toJS(bins.Blobs)
			},

			"createKernel": func(call goja.FunctionCall) goja.Value {
				name := call.Argument(0)
				if isMissing(name) {
					panic(h.invalidValue("WebCLProgram.createKernel", "missing kernel name"))
				}
				return h.result(p.CreateKernel(name.String()))
			},

			"createKernelsInProgram": func(goja.FunctionCall) goja.Value {
				kernels, err := p.CreateKernelsInProgram()
				h.check(err)
				if kernels == nil {
					return h.rt.NewArray()
				}
				return h.toJS(kernels)
			},
		}
	})
}

func (h *Host) kernel(k *webcl.Kernel) goja.Value {
	if k == nil {
		return goja.Null()
	}
	return h.wrap(k, func() methods {
		return methods{
			"getInfo": func(call goja.FunctionCall) goja.Value {
				param := integerArg[uint32](h, "WebCLKernel.getInfo", call.Argument(0))
				return h.result(k.GetInfo(native.KernelInfo(param)))
			},

			"getWorkGroupInfo": func(call goja.FunctionCall) goja.Value {
				const op = "WebCLKernel.getWorkGroupInfo"
				device := unwrap[webcl.Device](h, op, call.Argument(0))
				param := integerArg[uint32](h, op, call.Argument(1))
				return h.result(k.GetWorkGroupInfo(device, native.KernelWorkGroupInfo(param)))
			},

			// setArg(index, value, [type]), where type is a combination of webcl.type flags.
			"setArg": func(call goja.FunctionCall) goja.Value {
				const op = "WebCLKernel.setArg"
				index := integerArg[int](h, op, call.Argument(0))
				h.check(k.SetArg(index, h.kernelArg(op, call.Argument(1), call.Argument(2))))
				return goja.Undefined()
			},
		}
	})
}

// kernelArg converts a setArg value. Memory objects and samplers don't need a type, scalars and vectors
// (arrays of numbers) do, and local memory arguments take their size as value.
func (h *Host) kernelArg(op string, value, typeValue goja.Value) webcl.KernelArg {
	t := optionalIntegerArg(h, op, typeValue, webcl.ArgUnknown)
	switch {
	case t&webcl.ArgLocal != 0:
		return webcl.Local(integerArg[int](h, op, value))
	case t&webcl.ArgSampler != 0:
		return webcl.SamplerArg(unwrap[webcl.Sampler](h, op, value))
	case t&webcl.ArgMem != 0, t == webcl.ArgUnknown && isMissing(value):
		return webcl.Mem(unwrap[webcl.MemoryObject](h, op, value))
	}
	if jo := h.jsObjectOf(value); jo != nil && t == webcl.ArgUnknown {
		switch res := jo.res.(type) {
		case *webcl.MemoryObject:
			return webcl.Mem(res)
		case *webcl.Sampler:
			return webcl.SamplerArg(res)
		}
	}
	var values []float64
	if obj, isObject := value.(*goja.Object); isObject && obj.ClassName() == "Array" {
		for _, v := range h.elements(op, value) {
			values = append(values, v.ToFloat())
		}
	} else if !isMissing(value) {
		values = []float64{value.ToFloat()}
	}
	return webcl.Scalar(t, values...)
}

func (h *Host) event(e *webcl.Event) goja.Value {
	if e == nil {
		return goja.Null()
	}
	return h.wrap(e, func() methods {
		return methods{
			"getInfo": func(call goja.FunctionCall) goja.Value {
				param := integerArg[uint32](h, "WebCLEvent.getInfo", call.Argument(0))
				return h.result(e.GetInfo(native.EventInfo(param)))
			},
			"setUserEventStatus": func(call goja.FunctionCall) goja.Value {
				status := integerArg[int32](h, "WebCLEvent.setUserEventStatus", call.Argument(0))
				h.check(e.SetUserEventStatus(status))
				return goja.Undefined()
			},
		}
	})
}
