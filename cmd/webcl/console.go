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
	"reflect"
	"slices"
	"strconv"
	"strings"

	"github.com/dop251/goja"
	"github.com/fatih/color"
	"github.com/gomlx/webcl/jsbind"
)

const maxPrintDepth = 3

var (
	specialColor  = color.New(color.Bold).SprintfFunc()
	numberColor   = color.New(color.FgRed).SprintfFunc()
	stringColor   = color.New(color.FgGreen).SprintfFunc()
	functionColor = color.New(color.FgMagenta).SprintfFunc()
	objectColor   = color.New(color.FgCyan).SprintfFunc()
	errorColor    = color.New(color.FgHiRed).SprintfFunc()
)

// console implements the JavaScript console object: its methods pretty print their arguments.
type console struct {
	host *jsbind.Host
	w    io.Writer
}

// installConsole sets the global console of the host's runtime.
func installConsole(h *jsbind.Host, w io.Writer) error {
	c := &console{host: h, w: w}
	obj := h.Runtime().NewObject()
	for _, name := range []string{"log", "info", "debug"} {
		if err := obj.Set(name, c.log); err != nil {
			return err
		}
	}
	for _, name := range []string{"warn", "error"} {
		if err := obj.Set(name, c.logError); err != nil {
			return err
		}
	}
	return h.Runtime().Set("console", obj)
}

func (c *console) log(call goja.FunctionCall) goja.Value {
	c.println(call.Arguments, fmt.Sprintf)
	return goja.Undefined()
}

func (c *console) logError(call goja.FunctionCall) goja.Value {
	c.println(call.Arguments, errorColor)
	return goja.Undefined()
}

// println prints the arguments separated by spaces. Strings given directly as arguments are printed as
// is, formatted by text.
func (c *console) println(args []goja.Value, text func(format string, args ...any) string) {
	var sb strings.Builder
	for ii, arg := range args {
		if ii > 0 {
			sb.WriteByte(' ')
		}
		if s, isString := arg.Export().(string); isString {
			sb.WriteString(text("%s", s))
			continue
		}
		c.format(&sb, arg, 0)
	}
	sb.WriteByte('\n')
	_, _ = io.WriteString(c.w, sb.String())
}

func (c *console) format(sb *strings.Builder, v goja.Value, depth int) {
	if v == nil {
		v = goja.Undefined()
	}
	if goja.IsNull(v) || goja.IsUndefined(v) {
		sb.WriteString(specialColor("%s", v.String()))
		return
	}
	if res := c.host.Object(v); res != nil {
		sb.WriteString(objectColor("<%s>", res))
		return
	}
	var kind reflect.Kind
	if t := v.ExportType(); t != nil {
		kind = t.Kind()
	}
	switch kind {
	case reflect.Bool:
		sb.WriteString(specialColor("%t", v.ToBoolean()))
		return
	case reflect.String:
		sb.WriteString(stringColor("%q", v.String()))
		return
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64, reflect.Uint, reflect.Uint8,
		reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Float32, reflect.Float64:
		sb.WriteString(numberColor("%s", v.String()))
		return
	}
	obj, ok := v.(*goja.Object)
	if !ok {
		_, _ = fmt.Fprintf(sb, "<unprintable %T>", v)
		return
	}
	switch obj.ClassName() {
	case "Array":
		length := obj.Get("length").ToInteger()
		if length == 0 {
			sb.WriteString("[]")
			return
		}
		if depth >= maxPrintDepth {
			sb.WriteString("[...]")
			return
		}
		sb.WriteByte('[')
		for ii := range length {
			if ii > 0 {
				sb.WriteString(", ")
			}
			c.format(sb, obj.Get(strconv.FormatInt(ii, 10)), depth+1)
		}
		sb.WriteByte(']')

	case "Function":
		sb.WriteString(functionColor("function"))

	case "Error":
		sb.WriteString(errorColor("%s", obj.String()))

	case "Object":
		keys := obj.Keys()
		if len(keys) == 0 {
			sb.WriteString("{}")
			return
		}
		if depth >= maxPrintDepth {
			sb.WriteString("{...}")
			return
		}
		slices.Sort(keys)
		sb.WriteString("{")
		for ii, key := range keys {
			if ii > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(key)
			sb.WriteString(": ")
			c.format(sb, obj.Get(key), depth+1)
		}
		sb.WriteString("}")

	default:
		_, _ = fmt.Fprintf(sb, "<%s %s>", obj.ClassName(), obj.String())
	}
}
