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


package native

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitConfig(t *testing.T) {
	name, config := SplitConfig("host:devices=2,image_support=false")
	assert.Equal(t, "host", name)
	assert.Equal(t, "devices=2,image_support=false", config)

	name, config = SplitConfig("opencl")
	assert.Equal(t, "opencl", name)
	assert.Equal(t, "", config)

	name, config = SplitConfig("")
	assert.Equal(t, "", name)
	assert.Equal(t, "", config)
}

// nameOnly is a Driver that only answers Name: the embedded nil interface panics on anything else.
type nameOnly struct {
	Driver
	config string
}

func (d nameOnly) Name() string { return "fake" }

func TestRegister(t *testing.T) {
	Register("fake", func(config string) (Driver, error) {
		if config == "fail" {
			return nil, errors.New("asked to fail")
		}
		return nameOnly{config: config}, nil
	})
	require.Contains(t, Registered(), "fake")
	require.Panics(t, func() { Register("fake", nil) })

	d, err := NewWithConfig("fake:x=1")
	require.NoError(t, err)
	require.Equal(t, "fake", d.Name())
	require.Equal(t, "x=1", d.(nameOnly).config)

	_, err = NewWithConfig("fake:fail")
	require.ErrorContains(t, err, "asked to fail")

	_, err = NewWithConfig("missing")
	require.ErrorContains(t, err, `can't find native driver "missing"`)

	t.Setenv(WEBCL_DRIVER, "fake:from_env")
	d, err = New()
	require.NoError(t, err)
	require.Equal(t, "from_env", d.(nameOnly).config)
}

func TestStatusString(t *testing.T) {
	assert.Equal(t, "CL_SUCCESS", Success.String())
	assert.Equal(t, "CL_INVALID_BUFFER_SIZE", InvalidBufferSize.String())
	assert.Equal(t, "CL_UNKNOWN_STATUS(-1001)", Status(-1001).String())
	assert.True(t, Success.Ok())
	assert.False(t, InvalidValue.Ok())

	statuses := Statuses()
	require.Len(t, statuses, 47)
	assert.Equal(t, Success, statuses[0])
	assert.Equal(t, InvalidGlobalWorkSize, statuses[len(statuses)-1])
}

func TestImageFormatElementSize(t *testing.T) {
	assert.Equal(t, 4, ImageFormat{ChannelRGBA, ChannelUNormInt8}.ElementSize())
	assert.Equal(t, 16, ImageFormat{ChannelRGBA, ChannelFloat}.ElementSize())
	assert.Equal(t, 2, ImageFormat{ChannelR, ChannelHalfFloat}.ElementSize())
	assert.Equal(t, 2, ImageFormat{ChannelRGB, ChannelUNormShort565}.ElementSize())
	assert.Equal(t, 0, ImageFormat{ChannelRGBA, ChannelUNormShort565}.ElementSize())
	assert.Equal(t, 0, ImageFormat{0x1234, ChannelFloat}.ElementSize())
}
