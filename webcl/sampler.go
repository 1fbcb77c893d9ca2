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

// Sampler describes how kernels read images.
type Sampler struct {
	object
	child[Context]
}

var samplerInfoTypes = map[native.SamplerInfo]infoType{
	native.SamplerReferenceCount:   infoUint32,
	native.SamplerContext:          infoHandle,
	native.SamplerNormalizedCoords: infoBool,
	native.SamplerAddressingMode:   infoUint32,
	native.SamplerFilterMode:       infoUint32,
}

// GetInfo returns the value of the sampler parameter: SamplerContext returns the *Context,
// SamplerNormalizedCoords a bool, the others an uint32.
func (s *Sampler) GetInfo(param native.SamplerInfo) (any, error) {
	defer runtime.KeepAlive(s)
	const op = "Sampler.GetInfo"
	t, found := samplerInfoTypes[param]
	if !found {
		return nil, errorf(InvalidParameter, op, "unknown sampler info 0x%X", uint32(param))
	}
	id, err := s.res.id(op)
	if err != nil {
		return nil, err
	}
	driver := s.Binding().Driver()
	value, err := queryInfo(siteGetSamplerInfo, t, func(value []byte) (int, native.Status) {
		return driver.GetSamplerInfo(id, param, value)
	})
	if err != nil {
		return nil, err
	}
	if param == native.SamplerContext {
		return s.Parent(), nil
	}
	return value, nil
}
