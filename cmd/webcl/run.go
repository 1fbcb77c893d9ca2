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
	"io"
	"os"
	"time"

	"github.com/dop251/goja"
	"github.com/gomlx/webcl/jsbind"
	"github.com/gomlx/webcl/webcl"
	"github.com/pkg/errors"
	"k8s.io/klog/v2"
)

// runScripts runs the JavaScript files in order, in the same runtime, with the "webcl" and "console"
// globals installed. Console output goes to w.
//
// It stops at the first uncaught exception.
func runScripts(b *webcl.Binding, w io.Writer, files ...string) error {
	h, err := jsbind.Install(goja.New(), b)
	if err != nil {
		return err
	}
	if err = installConsole(h, w); err != nil {
		return errors.Wrap(err, "failed to install console")
	}
	for _, file := range files {
		source, err := os.ReadFile(file)
		if err != nil {
			return errors.Wrapf(err, "failed to read script")
		}
		start := time.Now()
		_, err = h.Runtime().RunScript(file, string(source))
		if err != nil {
			var exception *goja.Exception
			if errors.As(err, &exception) {
				return errors.Errorf("%s: uncaught %s", file, exception.String())
			}
			return errors.Wrapf(err, "failed to run %q", file)
		}
		klog.V(1).Infof("%s: finished in %s, %d WebCL objects reachable", file, time.Since(start), h.Live())
	}
	return nil
}
