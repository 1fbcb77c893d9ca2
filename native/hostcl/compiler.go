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


package hostcl

import (
	"bytes"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/gomlx/webcl/native"
	"github.com/pkg/errors"
)

// The host "compiler" only parses the kernel signatures of a program, which is all that is needed to
// create kernels and validate their arguments.

type argKind int

const (
	argScalar argKind = iota
	argGlobal         // __global or __constant pointer.
	argLocal          // __local pointer.
	argImage          // image2d_t or image3d_t.
	argSampler
)

type argDecl struct {
	kind     argKind
	typeName string
	// size of a scalar argument in bytes, 0 if unknown (e.g. structs), in which case any size is accepted.
	size int
}

type kernelDecl struct {
	name string
	args []argDecl
}

var (
	reKernel       = regexp.MustCompile(`(?s)(?:__kernel|\bkernel)\s+void\s+([A-Za-z_]\w*)\s*\(([^)]*)\)`)
	reLineComment  = regexp.MustCompile(`//[^\n]*`)
	reBlockComment = regexp.MustCompile(`(?s)/\*.*?\*/`)
	reVectorType   = regexp.MustCompile(`^([a-z]+?)(2|3|4|8|16)?$`)
)

var scalarSizes = map[string]int{
	"char": 1, "uchar": 1, "bool": 1,
	"short": 2, "ushort": 2, "half": 2,
	"int": 4, "uint": 4, "float": 4,
	"long": 8, "ulong": 8, "double": 8,
	"size_t": native.SizeTBytes, "ptrdiff_t": native.SizeTBytes, "intptr_t": native.SizeTBytes,
	"uintptr_t": native.SizeTBytes,
}

var qualifiers = map[string]bool{
	"const": true, "volatile": true, "restrict": true, "unsigned": true,
	"__private": true, "private": true, "__read_only": true, "read_only": true,
	"__write_only": true, "write_only": true,
}

// compile parses the kernels in source. Errors are build errors, to be reported in the build log.
func compile(source string) ([]kernelDecl, error) {
	source = reBlockComment.ReplaceAllString(source, "")
	source = reLineComment.ReplaceAllString(source, "")
	if strings.TrimSpace(source) == "" {
		return nil, errors.New("error: empty program source")
	}
	if depth := strings.Count(source, "{") - strings.Count(source, "}"); depth != 0 {
		return nil, errors.Errorf("error: unbalanced braces (%+d)", depth)
	}
	var kernels []kernelDecl
	seen := make(map[string]bool)
	for _, match := range reKernel.FindAllStringSubmatch(source, -1) {
		name := match[1]
		if seen[name] {
			return nil, errors.Errorf("error: redefinition of kernel %q", name)
		}
		seen[name] = true
		args, err := parseArgs(match[2])
		if err != nil {
			return nil, errors.WithMessagef(err, "error: in kernel %q", name)
		}
		kernels = append(kernels, kernelDecl{name: name, args: args})
	}
	return kernels, nil
}

func parseArgs(list string) ([]argDecl, error) {
	list = strings.TrimSpace(list)
	if list == "" || list == "void" {
		return nil, nil
	}
	parts := strings.Split(list, ",")
	args := make([]argDecl, 0, len(parts))
	for ii, part := range parts {
		arg, err := parseArg(part)
		if err != nil {
			return nil, errors.WithMessagef(err, "argument #%d", ii)
		}
		args = append(args, arg)
	}
	return args, nil
}

func parseArg(decl string) (argDecl, error) {
	isPointer := strings.Contains(decl, "*")
	fields := strings.Fields(strings.ReplaceAll(decl, "*", " "))
	if len(fields) < 2 {
		return argDecl{}, errors.Errorf("can't parse declaration %q", strings.TrimSpace(decl))
	}
	// The last field is the argument name, the first non-qualifier field is its type.
	var addressSpace, typeName string
	for _, field := range fields[:len(fields)-1] {
		switch field {
		case "__global", "global", "__constant", "constant", "__local", "local":
			addressSpace = strings.TrimPrefix(field, "__")
			continue
		}
		if qualifiers[field] {
			continue
		}
		if typeName == "" {
			typeName = field
		}
	}
	if typeName == "" {
		return argDecl{}, errors.Errorf("missing type in %q", strings.TrimSpace(decl))
	}
	switch {
	case isPointer && addressSpace == "local":
		return argDecl{kind: argLocal, typeName: typeName}, nil
	case isPointer:
		if addressSpace == "" {
			return argDecl{}, errors.Errorf("pointer argument %q must be __global, __constant or __local",
				strings.TrimSpace(decl))
		}
		return argDecl{kind: argGlobal, typeName: typeName}, nil
	case typeName == "image2d_t" || typeName == "image3d_t":
		return argDecl{kind: argImage, typeName: typeName}, nil
	case typeName == "sampler_t":
		return argDecl{kind: argSampler, typeName: typeName}, nil
	}
	return argDecl{kind: argScalar, typeName: typeName, size: scalarSize(typeName)}, nil
}

// scalarSize returns the size of scalar and vector types, or 0 if unknown.
// 3-component vectors take the space of 4 components.
func scalarSize(typeName string) int {
	if size, found := scalarSizes[typeName]; found {
		return size
	}
	match := reVectorType.FindStringSubmatch(typeName)
	if match == nil || match[2] == "" {
		return 0
	}
	base, found := scalarSizes[match[1]]
	if !found {
		return 0
	}
	width, _ := strconv.Atoi(match[2])
	if width == 3 {
		width = 4
	}
	return base * width
}

// Binaries of the host driver are the source prefixed by a magic header.
var binaryMagic = []byte("HOSTCL-BINARY-1\n")

func encodeBinary(source string) []byte {
	return append(bytes.Clone(binaryMagic), source...)
}

func decodeBinary(binary []byte) (string, bool) {
	if !bytes.HasPrefix(binary, binaryMagic) {
		return "", false
	}
	return string(binary[len(binaryMagic):]), true
}

// validateOptions checks the build options, returning a message for the build log if invalid.
func validateOptions(options string) error {
	fields := strings.Fields(options)
	for ii := 0; ii < len(fields); ii++ {
		option := fields[ii]
		switch {
		case option == "-D" || option == "-I":
			if ii+1 >= len(fields) {
				return errors.Errorf("missing value for option %q", option)
			}
			ii++
		case strings.HasPrefix(option, "-D"), strings.HasPrefix(option, "-I"):
		case option == "-w", option == "-Werror":
		case strings.HasPrefix(option, "-cl-"):
		default:
			return errors.Errorf("unknown build option %q", option)
		}
	}
	return nil
}

// buildLog formats a successful build log.
func buildLog(kernels []kernelDecl) string {
	var sb strings.Builder
	for _, k := range kernels {
		fmt.Fprintf(&sb, "kernel %s: %d argument(s)\n", k.name, len(k.args))
	}
	return sb.String()
}
