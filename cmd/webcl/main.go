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


// webcl runs JavaScript programs with the WebCL API installed, or prints information about the
// native platforms and devices.
//
// Usage:
//
//	webcl -info
//	webcl -driver=host:devices=2,out_of_order=false script.js [more_scripts.js...]
//
// The driver defaults to $WEBCL_DRIVER, or to the in-process "host" driver. The "opencl" driver is
// only available if built with the "opencl" build tag.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/gomlx/webcl/native"
	"github.com/gomlx/webcl/native/hostcl"
	"github.com/gomlx/webcl/webcl"
	"github.com/janpfeifer/must"
	"k8s.io/klog/v2"
)

var (
	flagDriver = flag.String("driver", "", fmt.Sprintf(
		"Native driver configuration, as name[:config]. If empty, $%s or %q is used.",
		native.WEBCL_DRIVER, hostcl.DriverName))
	flagDebug = flag.Bool("debug", false, "Checks that every native handle used is still registered. "+
		fmt.Sprintf("Also enabled with $%s=true.", webcl.WEBCL_DEBUG))
	flagInfo = flag.Bool("info", false, "Prints the platforms, devices and supported image formats.")
)

func main() {
	klog.InitFlags(nil)
	flag.Usage = func() {
		_, _ = fmt.Fprintf(flag.CommandLine.Output(), "Usage: %s [flags] [script.js...]\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()
	if !*flagInfo && flag.NArg() == 0 {
		klog.Errorf("Nothing to do: give scripts to run or -info. See 'webcl -help'.")
		os.Exit(1)
	}

	native.DefaultConfig = hostcl.DriverName
	var driver native.Driver
	if *flagDriver != "" {
		driver = must.M1(native.NewWithConfig(*flagDriver))
	} else {
		driver = must.M1(native.New())
	}
	opts := webcl.DefaultOptions()
	opts.Debug = opts.Debug || *flagDebug
	b := webcl.New(driver, opts)
	klog.V(1).Infof("webcl[%s]: using native driver %q", b, driver.Name())

	if *flagInfo {
		printInfo(os.Stdout, b)
	}
	exitCode := 0
	if flag.NArg() > 0 {
		if err := runScripts(b, os.Stdout, flag.Args()...); err != nil {
			klog.Errorf("%v", err)
			exitCode = 1
		}
	}
	if count := b.Close(); count > 0 {
		klog.Infof("Released %d objects still live at exit", count)
	}
	klog.Flush()
	os.Exit(exitCode)
}
