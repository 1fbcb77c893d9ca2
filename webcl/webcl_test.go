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
	"testing"

	"github.com/gomlx/webcl/native"
	"github.com/gomlx/webcl/native/hostcl"
	"github.com/janpfeifer/must"
	"github.com/stretchr/testify/require"
)

// newTestBinding returns a binding on a fresh host driver, closed at the end of the test.
func newTestBinding(t *testing.T, config string) (*Binding, *hostcl.Driver) {
	driver := must.M1(hostcl.New(config))
	b := New(driver, Options{Debug: true})
	t.Cleanup(func() { b.Close() })
	return b, driver
}

// newTestContext returns a binding and a context with all the devices of the host driver.
func newTestContext(t *testing.T, config string) (*Binding, *hostcl.Driver, *Context) {
	b, driver := newTestBinding(t, config)
	ctx, err := b.CreateContextFromType(ContextProperties{}, native.DeviceTypeAll)
	require.NoError(t, err)
	return b, driver, ctx
}

// requireKind fails the test if err is not an *Error of the given kind.
func requireKind(t *testing.T, err error, kind ErrorKind, msgAndArgs ...any) {
	t.Helper()
	require.Error(t, err, msgAndArgs...)
	got, ok := KindOf(err)
	require.Truef(t, ok, "error %v is not a *webcl.Error", err)
	require.Equal(t, kind, got, msgAndArgs...)
}

const testSource = `
// Test kernels.
__kernel void k() {}

__kernel void scale(__global float *data, const float factor, __local float *scratch, uint4 mask) {
	data[get_global_id(0)] *= factor;
}

kernel void blur(read_only image2d_t src, write_only image2d_t dst, sampler_t sampler) {}
`
