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
	"fmt"
	"testing"

	"github.com/gomlx/webcl/native"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCallSites(t *testing.T) {
	require.NotEmpty(t, callSites)
	for _, site := range callSites {
		require.NotEmpty(t, site.mappings, "call site %s", site.op)
		for _, m := range site.mappings {
			assert.Equal(t, canonicalKinds[m.Status], m.Kind, "call site %s, status %s", site.op, m.Status)
			assert.Equal(t, m.Kind, site.translate(m.Status), "call site %s, status %s", site.op, m.Status)
			err := site.check(m.Status)
			requireKind(t, err, m.Kind)
			assert.Equal(t, m.Status, StatusOf(err))
		}
		assert.NoError(t, site.check(native.Success))
		// A status no call site declares.
		requireKind(t, site.check(native.InvalidGLObject), UnknownNativeError)
	}
}

func TestCallSiteDeclarations(t *testing.T) {
	// clCreateBuffer doesn't declare CL_INVALID_CONTEXT.
	assert.Equal(t, UnknownNativeError, siteCreateBuffer.translate(native.InvalidContext))
	assert.Equal(t, InvalidContext, siteCreateImage2D.translate(native.InvalidContext))

	// The count step of clGetSupportedImageFormats only declares CL_INVALID_VALUE.
	assert.Equal(t, InvalidValue, siteCountSupportedImageFormats.translate(native.InvalidValue))
	assert.Equal(t, UnknownNativeError, siteCountSupportedImageFormats.translate(native.InvalidContext))
	assert.Equal(t, InvalidContext, siteGetSupportedImageFormats.translate(native.InvalidContext))

	// Both image format statuses translate to InvalidImageFormat.
	assert.Equal(t, InvalidImageFormat, siteCreateImage3D.translate(native.ImageFormatNotSupported))
	assert.Equal(t, InvalidImageFormat, siteCreateImage3D.translate(native.InvalidImageFormatDescriptor))
	assert.Equal(t, MemoryAllocationFailure, siteCreateImage3D.translate(native.MemObjectAllocationFailure))
	assert.Equal(t, InvalidHostPointer, siteCreateBuffer.translate(native.InvalidHostPtr))

	assert.Equal(t, UnknownNativeError, siteCreateUserEvent.translate(native.InvalidValue))
}

func TestErrors(t *testing.T) {
	err := siteCreateBuffer.check(native.InvalidBufferSize)
	assert.Equal(t, "webcl: clCreateBuffer: InvalidBufferSize (CL_INVALID_BUFFER_SIZE)", err.Error())
	assert.Contains(t, fmt.Sprintf("%+v", err), "translate.go", "error should carry a stack trace")

	wrapped := errors.Wrap(err, "creating scratch buffer")
	assert.True(t, IsKind(wrapped, InvalidBufferSize))
	assert.False(t, IsKind(wrapped, InvalidValue))
	var e *Error
	require.True(t, errors.As(wrapped, &e))
	assert.Equal(t, "clCreateBuffer", e.Op)
	assert.Equal(t, native.InvalidBufferSize, e.Status)

	err = errorf(UseAfterRelease, "Handle", "%s already released", KindContext)
	assert.Equal(t, "webcl: Handle: UseAfterRelease: Context already released", err.Error())
	assert.Equal(t, native.Success, StatusOf(err))

	_, ok := KindOf(errors.New("not a webcl error"))
	assert.False(t, ok)
	assert.Equal(t, "InvalidEvent", InvalidEvent.String())
	assert.Equal(t, "ErrorKind(1000)", ErrorKind(1000).String())
	assert.Len(t, ErrorKinds(), int(InvalidEvent)+1)
}
