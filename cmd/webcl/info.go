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


package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	lgtable "github.com/charmbracelet/lipgloss/table"
	"github.com/dustin/go-humanize"
	"github.com/gomlx/webcl/jsbind"
	"github.com/gomlx/webcl/native"
	"github.com/gomlx/webcl/webcl"
	"github.com/janpfeifer/must"
	"github.com/muesli/termenv"
)

// styles used by the tables, created for a specific output.
type styles struct {
	title, header, oddRow, evenRow, border lipgloss.Style
}

func newStyles(w io.Writer) *styles {
	// Colors are only used when writing to a terminal.
	profile := termenv.NewOutput(w).EnvColorProfile()
	r := lipgloss.NewRenderer(w, termenv.WithProfile(profile))
	return &styles{
		title:   r.NewStyle().Bold(true).Padding(1, 4, 0, 4),
		header:  r.NewStyle().Reverse(true).Padding(0, 2, 0, 2).Align(lipgloss.Center),
		oddRow:  r.NewStyle().Faint(false).PaddingLeft(1).PaddingRight(1),
		evenRow: r.NewStyle().Faint(true).PaddingLeft(1).PaddingRight(1),
		border:  r.NewStyle().Foreground(lipgloss.Color("99")),
	}
}

func (s *styles) newTable(headers ...string) *lgtable.Table {
	return lgtable.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(s.border).
		Headers(headers...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row < 0 {
				return s.header
			}
			style := s.evenRow
			if row%2 == 0 {
				style = s.oddRow
			}
			if col == 0 {
				return style.Align(lipgloss.Right)
			}
			return style.Align(lipgloss.Left)
		})
}

// infoAs queries and converts an information value, panicking on errors.
func infoAs[T any](value any, err error) T {
	must.M(err)
	return value.(T)
}

// printInfo writes the platforms of the binding, their devices, and the image formats supported by
// a context with all of them.
func printInfo(w io.Writer, b *webcl.Binding) {
	s := newStyles(w)
	platforms := must.M1(b.Platforms())
	if len(platforms) == 0 {
		_, _ = fmt.Fprintln(w, s.title.Render("No platforms found"))
		return
	}
	for ii, platform := range platforms {
		_, _ = fmt.Fprintln(w, s.title.Render(fmt.Sprintf("Platform #%d: %s", ii, must.M1(platform.Name()))))
		table := s.newTable("Property", "Value")
		table.Row("Vendor", must.M1(platform.Vendor()))
		table.Row("Version", must.M1(platform.Version()))
		table.Row("Profile", infoAs[string](platform.GetInfo(native.PlatformProfile)))
		table.Row("Extensions", infoAs[string](platform.GetInfo(native.PlatformExtensions)))
		_, _ = fmt.Fprintln(w, table.Render())

		devices := must.M1(platform.Devices(native.DeviceTypeAll))
		_, _ = fmt.Fprintln(w, s.title.Render("Devices"))
		table = s.newTable("#", "Name", "Type", "Compute Units", "Global Memory", "Max Allocation",
			"Max Work Group", "Images", "Version")
		for jj, device := range devices {
			table.Row(
				fmt.Sprintf("%d", jj),
				must.M1(device.Name()),
				deviceTypeString(must.M1(device.Type())),
				humanize.Comma(int64(infoAs[uint32](device.GetInfo(native.DeviceMaxComputeUnits)))),
				humanize.IBytes(infoAs[uint64](device.GetInfo(native.DeviceGlobalMemSize))),
				humanize.IBytes(must.M1(device.MaxMemAllocSize())),
				humanize.Comma(int64(infoAs[int](device.GetInfo(native.DeviceMaxWorkGroupSize)))),
				fmt.Sprintf("%v", must.M1(device.ImageSupport())),
				infoAs[string](device.GetInfo(native.DeviceVersion)),
			)
		}
		_, _ = fmt.Fprintln(w, table.Render())
		if len(devices) == 0 {
			continue
		}

		ctx := must.M1(b.CreateContext(webcl.ContextProperties{Platform: platform}, devices))
		for _, imageType := range []native.MemObjectType{native.MemObjectImage2D, native.MemObjectImage3D} {
			formats := must.M1(ctx.GetSupportedImageFormats(native.MemReadWrite, imageType))
			title := fmt.Sprintf("%s read-write formats: %d",
				strings.TrimPrefix(jsbind.ConstantName("CL_MEM_OBJECT_", int64(imageType)), "CL_MEM_OBJECT_"),
				len(formats))
			_, _ = fmt.Fprintln(w, s.title.Render(title))
			if len(formats) == 0 {
				continue
			}
			table = s.newTable("Channel Order", "Channel Type", "Element Size")
			for _, format := range formats {
				table.Row(
					jsbind.ConstantName("CL_", int64(format.ChannelOrder)),
					jsbind.ConstantName("CL_", int64(format.ChannelDataType)),
					humanize.Bytes(uint64(format.ElementSize())),
				)
			}
			_, _ = fmt.Fprintln(w, table.Render())
		}
		ctx.Release()
	}
}

// deviceTypeString returns the names of the device type bits, e.g. "GPU|DEFAULT".
func deviceTypeString(t native.DeviceType) string {
	const prefix = "CL_DEVICE_TYPE_"
	var names []string
	for _, bit := range []native.DeviceType{native.DeviceTypeCPU, native.DeviceTypeGPU, native.DeviceTypeAccelerator,
		native.DeviceTypeDefault} {
		if t&bit != 0 {
			names = append(names, strings.TrimPrefix(jsbind.ConstantName(prefix, int64(bit)), prefix))
			t &^= bit
		}
	}
	if t != 0 {
		names = append(names, fmt.Sprintf("0x%X", uint64(t)))
	}
	return strings.Join(names, "|")
}
