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


// Package hostcl implements a native.Driver entirely in Go, running "devices" in the host process.
//
// It implements the handle and reference-count semantics of OpenCL 1.1 (children hold internal references
// on their context and program, so releasing a context while its buffers are alive is fine), and validates
// arguments returning the same status codes a conforming implementation would. Programs are "compiled" by
// parsing the kernel signatures in their source; nothing is ever executed.
//
// It is the default driver (registered as "host"), and since it counts every native call and release, it
// doubles as the test double for package webcl. Use FailNext to inject failures.
//
// Configuration is a comma separated list of key=value pairs, e.g. "host:devices=2,image_support=false":
//
//   - devices: number of devices in the platform (default 1).
//   - image_support: whether devices support images (default true).
//   - out_of_order: whether devices support out-of-order command queues (default true).
//   - max_alloc: maximum size of a memory object, e.g. "64MiB" (default 256MiB).
//   - platform: name of the platform.
package hostcl

import (
	"strconv"
	"strings"
	"sync"

	"github.com/dustin/go-humanize"
	"github.com/gomlx/webcl/native"
	"github.com/pkg/errors"
	"k8s.io/klog/v2"
)

// DriverName is the name used to register the driver, see native.Register.
const DriverName = "host"

func init() {
	native.Register(DriverName, func(config string) (native.Driver, error) {
		return New(config)
	})
}

// Config of the host driver.
type Config struct {
	NumDevices   int
	ImageSupport bool
	OutOfOrder   bool
	MaxAllocSize int
	PlatformName string
}

// DefaultConfig returns the configuration used for an empty config string.
func DefaultConfig() Config {
	return Config{
		NumDevices:   1,
		ImageSupport: true,
		OutOfOrder:   true,
		MaxAllocSize: 256 << 20,
		PlatformName: "WebCL Host Platform",
	}
}

// ParseConfig parses a comma separated list of key=value pairs, see package documentation.
func ParseConfig(config string) (Config, error) {
	cfg := DefaultConfig()
	for _, part := range strings.Split(config, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		key, value, found := strings.Cut(part, "=")
		if !found {
			return cfg, errors.Errorf("host driver config %q: missing \"=\" in %q", config, part)
		}
		var err error
		switch key {
		case "devices":
			cfg.NumDevices, err = strconv.Atoi(value)
			if err == nil && cfg.NumDevices < 1 {
				err = errors.New("at least one device is required")
			}
		case "image_support":
			cfg.ImageSupport, err = strconv.ParseBool(value)
		case "out_of_order":
			cfg.OutOfOrder, err = strconv.ParseBool(value)
		case "max_alloc":
			var bytes uint64
			bytes, err = humanize.ParseBytes(value)
			cfg.MaxAllocSize = int(bytes)
		case "platform":
			cfg.PlatformName = value
		default:
			err = errors.New("unknown key")
		}
		if err != nil {
			return cfg, errors.Wrapf(err, "host driver config %q: invalid %q", config, part)
		}
	}
	return cfg, nil
}

// Driver implements native.Driver in Go. It's safe for concurrent use.
type Driver struct {
	mu  sync.Mutex
	cfg Config

	nextHandle native.Handle
	objects    map[native.Handle]object
	platform   *platform
	devices    []*device

	calls           map[string]int
	releases        map[string]int
	releaseFailures int
	faults          map[string]native.Status
}

var _ native.Driver = (*Driver)(nil)

// New creates a host driver from the config string, see package documentation.
func New(config string) (*Driver, error) {
	cfg, err := ParseConfig(config)
	if err != nil {
		return nil, err
	}
	return NewWithConfig(cfg), nil
}

// NewWithConfig creates a host driver with the given configuration.
func NewWithConfig(cfg Config) *Driver {
	d := &Driver{
		cfg:        cfg,
		nextHandle: 0x1000,
		objects:    make(map[native.Handle]object),
		calls:      make(map[string]int),
		releases:   make(map[string]int),
		faults:     make(map[string]native.Status),
	}
	d.platform = &platform{h: d.newHandle()}
	for ii := range cfg.NumDevices {
		d.devices = append(d.devices, &device{h: d.newHandle(), index: ii})
	}
	klog.V(1).Infof("host driver created: %d device(s), image support=%v, max alloc=%s",
		cfg.NumDevices, cfg.ImageSupport, humanize.IBytes(uint64(cfg.MaxAllocSize)))
	return d
}

// Name implements native.Driver.
func (d *Driver) Name() string {
	return DriverName
}

// Config returns the driver configuration.
func (d *Driver) Config() Config {
	return d.cfg
}

// newHandle allocates a never before used handle. Handles are not reused, so stale handles stay invalid.
func (d *Driver) newHandle() native.Handle {
	h := d.nextHandle
	d.nextHandle += 0x10
	return h
}

// begin accounts for a call to the native function fn, and returns the injected failure, if any.
// It must be called with d.mu locked.
func (d *Driver) begin(fn string) native.Status {
	d.calls[fn]++
	if status, found := d.faults[fn]; found {
		delete(d.faults, fn)
		klog.V(2).Infof("host driver: %s failing with injected %s", fn, status)
		return status
	}
	return native.Success
}

// FailNext makes the next call to the native function fn (e.g. "clCreateBuffer") fail with status,
// without any side effects.
func (d *Driver) FailNext(fn string, status native.Status) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.faults[fn] = status
}

// Calls returns how many times the native function fn (e.g. "clCreateBuffer") was called.
func (d *Driver) Calls(fn string) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.calls[fn]
}

// TotalCalls returns the number of native calls of any function.
func (d *Driver) TotalCalls() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	total := 0
	for _, count := range d.calls {
		total += count
	}
	return total
}

// Releases returns the number of successful calls to the release function fn (e.g. "clReleaseContext").
func (d *Driver) Releases(fn string) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.releases[fn]
}

// TotalReleases returns the number of successful calls to any release function.
func (d *Driver) TotalReleases() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	total := 0
	for _, count := range d.releases {
		total += count
	}
	return total
}

// ReleaseFailures returns the number of release calls that failed, e.g. double releases.
func (d *Driver) ReleaseFailures() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.releaseFailures
}

// LiveObjects returns the number of objects not yet destroyed. Objects released by the user but still
// referenced internally (e.g. a context with live buffers) are counted.
func (d *Driver) LiveObjects() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.objects)
}
