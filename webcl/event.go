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

// Event tracks the status of a command. Only user events (Context.CreateUserEvent) can be created.
type Event struct {
	object
	child[Context]
}

var eventInfoTypes = map[native.EventInfo]infoType{
	native.EventCommandQueue:           infoHandle,
	native.EventCommandType:            infoUint32,
	native.EventReferenceCount:         infoUint32,
	native.EventCommandExecutionStatus: infoInt32,
	native.EventContext:                infoHandle,
}

// GetInfo returns the value of the event parameter: EventContext returns the *Context, EventCommandQueue a
// *CommandQueue (nil for user events), EventCommandExecutionStatus an int32, the others an uint32.
func (e *Event) GetInfo(param native.EventInfo) (any, error) {
	defer runtime.KeepAlive(e)
	const op = "Event.GetInfo"
	t, found := eventInfoTypes[param]
	if !found {
		return nil, errorf(InvalidParameter, op, "unknown event info 0x%X", uint32(param))
	}
	id, err := e.res.id(op)
	if err != nil {
		return nil, err
	}
	driver := e.Binding().Driver()
	value, err := queryInfo(siteGetEventInfo, t, func(value []byte) (int, native.Status) {
		return driver.GetEventInfo(id, param, value)
	})
	if err != nil {
		return nil, err
	}
	switch param {
	case native.EventContext:
		return e.Parent(), nil
	case native.EventCommandQueue:
		// Only user events are created by the binding, and those have no queue.
		return (*CommandQueue)(nil), nil
	}
	return value, nil
}

// ExecutionStatus returns the command execution status: native.Complete, native.Running, native.Submitted,
// native.Queued, or a negative error code.
func (e *Event) ExecutionStatus() (int32, error) {
	return infoAs[int32](e.GetInfo(native.EventCommandExecutionStatus))
}

// SetUserEventStatus sets the execution status of a user event: either native.Complete or a negative
// error code. It can only be set once.
func (e *Event) SetUserEventStatus(executionStatus int32) error {
	defer runtime.KeepAlive(e)
	id, err := e.res.id("Event.SetUserEventStatus")
	if err != nil {
		return err
	}
	return siteSetUserEventStatus.check(e.Binding().Driver().SetUserEventStatus(id, executionStatus))
}
