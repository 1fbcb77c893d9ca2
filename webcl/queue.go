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

// CommandQueue of a device in a Context.
type CommandQueue struct {
	object
	child[Context]
	device *Device
}

var queueInfoTypes = map[native.CommandQueueInfo]infoType{
	native.QueueContext:        infoHandle,
	native.QueueDevice:         infoHandle,
	native.QueueReferenceCount: infoUint32,
	native.QueueProperties:     infoUint64,
}

// GetInfo returns the value of the command queue parameter: QueueContext returns the *Context, QueueDevice
// the *Device, QueueReferenceCount an uint32 and QueueProperties an uint64.
func (q *CommandQueue) GetInfo(param native.CommandQueueInfo) (any, error) {
	defer runtime.KeepAlive(q)
	const op = "CommandQueue.GetInfo"
	t, found := queueInfoTypes[param]
	if !found {
		return nil, errorf(InvalidParameter, op, "unknown command queue info 0x%X", uint32(param))
	}
	id, err := q.res.id(op)
	if err != nil {
		return nil, err
	}
	driver := q.Binding().Driver()
	value, err := queryInfo(siteGetCommandQueueInfo, t, func(value []byte) (int, native.Status) {
		return driver.GetCommandQueueInfo(id, param, value)
	})
	if err != nil {
		return nil, err
	}
	switch param {
	case native.QueueContext:
		return q.Parent(), nil
	case native.QueueDevice:
		if q.device != nil && !q.device.Released() {
			return q.device, nil
		}
		return q.Binding().internDevice(value.(native.Handle), nil)
	}
	return value, nil
}

// Device of the command queue.
func (q *CommandQueue) Device() (*Device, error) {
	return infoAs[*Device](q.GetInfo(native.QueueDevice))
}

// Properties the command queue was created with.
func (q *CommandQueue) Properties() (native.CommandQueueProperties, error) {
	props, err := infoAs[uint64](q.GetInfo(native.QueueProperties))
	return native.CommandQueueProperties(props), err
}
