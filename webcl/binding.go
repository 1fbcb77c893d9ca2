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
	"os"
	"runtime"
	"strconv"
	"sync"

	"github.com/gomlx/webcl/native"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"k8s.io/klog/v2"
)

// WEBCL_DEBUG is the environment variable that, if set to a true value ("1", "true", ...), enables the
// debug checks by default, see Options.Debug.
const WEBCL_DEBUG = "WEBCL_DEBUG"

// Options for a Binding.
type Options struct {
	// Debug asserts on every use of a native handle that its resource is still registered.
	Debug bool
}

// DefaultOptions returns the options used by Open, with Debug taken from the WEBCL_DEBUG environment variable.
func DefaultOptions() Options {
	var opts Options
	if value, found := os.LookupEnv(WEBCL_DEBUG); found {
		debug, err := strconv.ParseBool(value)
		if err != nil {
			klog.Warningf("webcl: invalid value %q for $%s, ignoring it", value, WEBCL_DEBUG)
		}
		opts.Debug = debug
	}
	return opts
}

// Binding is the top-level object of the binding: it holds the native driver and the registry of
// every resource created through it.
//
// Platforms and devices are interned: there is at most one live wrapper per native platform or device.
type Binding struct {
	driver   native.Driver
	registry *Registry
	id       uuid.UUID
	debug    bool

	muIntern  sync.Mutex
	platforms map[native.Handle]*Platform
	devices   map[native.Handle]*Device
}

// New creates a Binding using the given driver.
func New(driver native.Driver, opts Options) *Binding {
	b := &Binding{
		driver:    driver,
		registry:  NewRegistry(),
		id:        uuid.New(),
		debug:     opts.Debug,
		platforms: make(map[native.Handle]*Platform),
		devices:   make(map[native.Handle]*Device),
	}
	klog.V(1).Infof("webcl[%s]: created binding with driver %q (debug=%v)", b, driver.Name(), b.debug)
	return b
}

// Open creates a Binding with the default driver (see native.New) and DefaultOptions.
func Open() (*Binding, error) {
	driver, err := native.New()
	if err != nil {
		return nil, err
	}
	return New(driver, DefaultOptions()), nil
}

// OpenWithConfig creates a Binding with the driver selected by config (see native.NewWithConfig) and
// DefaultOptions.
func OpenWithConfig(config string) (*Binding, error) {
	driver, err := native.NewWithConfig(config)
	if err != nil {
		return nil, err
	}
	return New(driver, DefaultOptions()), nil
}

// Driver returns the native driver.
func (b *Binding) Driver() native.Driver {
	return b.driver
}

// Registry of the live resources.
func (b *Binding) Registry() *Registry {
	return b.registry
}

// ID uniquely identifies the binding, it's used to tag log messages.
func (b *Binding) ID() uuid.UUID {
	return b.id
}

// String implements fmt.Stringer. It returns a short form of the ID.
func (b *Binding) String() string {
	return b.id.String()[:8]
}

// Close releases every resource still alive, and returns how many there were.
// Wrappers remain valid objects, but any use fails with UseAfterRelease.
//
// The binding itself remains usable: resources created after Close are registered as usual, and
// released by the next Close (or by their finalizers).
func (b *Binding) Close() int {
	count := b.registry.DrainAll()
	b.muIntern.Lock()
	clear(b.platforms)
	clear(b.devices)
	b.muIntern.Unlock()
	klog.V(1).Infof("webcl[%s]: closed, %d resources released", b, count)
	return count
}

// Platforms returns the available platforms.
func (b *Binding) Platforms() ([]*Platform, error) {
	numPlatforms, status := b.driver.GetPlatformIDs(nil)
	if err := siteGetPlatformIDs.check(status); err != nil {
		return nil, err
	}
	if numPlatforms == 0 {
		return nil, nil
	}
	ids := make([]native.Handle, numPlatforms)
	if _, status = b.driver.GetPlatformIDs(ids); status != native.Success {
		return nil, siteGetPlatformIDs.check(status)
	}
	platforms := make([]*Platform, 0, numPlatforms)
	for _, id := range ids {
		platforms = append(platforms, b.internPlatform(id))
	}
	return platforms, nil
}

// ContextProperties used when creating a context.
type ContextProperties struct {
	// Platform of the context, optional.
	Platform *Platform
}

// marshal converts the properties to the native list.
func (props ContextProperties) marshal(op string) ([]native.ContextProperty, error) {
	if props.Platform == nil {
		return nil, nil
	}
	id, err := props.Platform.res.id(op)
	if err != nil {
		return nil, err
	}
	return []native.ContextProperty{{Name: native.ContextPlatform, Value: uintptr(id)}}, nil
}

// CreateContext creates a context for the given devices.
func (b *Binding) CreateContext(props ContextProperties, devices []*Device) (*Context, error) {
	const op = "CreateContext"
	defer runtime.KeepAlive(props)
	defer runtime.KeepAlive(devices)
	properties, err := props.marshal(op)
	if err != nil {
		return nil, err
	}
	if len(devices) == 0 {
		return nil, errorf(InvalidValue, op, "no devices given")
	}
	ids, err := unwrapDevices(op, devices)
	if err != nil {
		return nil, err
	}
	id, status := b.driver.CreateContext(properties, ids)
	if err := siteCreateContext.check(status); err != nil {
		return nil, err
	}
	return wrapContext(b, id), nil
}

// CreateContextFromType creates a context with all devices of the given type.
func (b *Binding) CreateContextFromType(props ContextProperties, deviceType native.DeviceType) (*Context, error) {
	const op = "CreateContextFromType"
	defer runtime.KeepAlive(props)
	properties, err := props.marshal(op)
	if err != nil {
		return nil, err
	}
	id, status := b.driver.CreateContextFromType(properties, deviceType)
	if err := siteCreateContextFromType.check(status); err != nil {
		return nil, err
	}
	return wrapContext(b, id), nil
}

// internPlatform returns the wrapper of the platform id, creating it if needed.
func (b *Binding) internPlatform(id native.Handle) *Platform {
	if id == native.NilHandle {
		return nil
	}
	b.muIntern.Lock()
	defer b.muIntern.Unlock()
	if p, found := b.platforms[id]; found && !p.Released() {
		return p
	}
	p := wrapPlatform(b, id)
	b.platforms[id] = p
	return p
}

// internDevice returns the wrapper of the device id, creating it if needed. If platform is nil, it's
// queried from the driver.
func (b *Binding) internDevice(id native.Handle, platform *Platform) (*Device, error) {
	if id == native.NilHandle {
		return nil, nil
	}
	b.muIntern.Lock()
	d, found := b.devices[id]
	b.muIntern.Unlock()
	if found && !d.Released() {
		return d, nil
	}
	if platform == nil {
		value, err := queryInfo(siteGetDeviceInfo, infoHandle, func(value []byte) (int, native.Status) {
			return b.driver.GetDeviceInfo(id, native.DevicePlatform, value)
		})
		if err != nil {
			return nil, errors.WithMessagef(err, "querying platform of device %s", id)
		}
		platform = b.internPlatform(value.(native.Handle))
	}

	b.muIntern.Lock()
	defer b.muIntern.Unlock()
	if d, found := b.devices[id]; found && !d.Released() {
		return d, nil
	}
	d = wrapDevice(b, id, platform)
	b.devices[id] = d
	return d, nil
}

// internDevices interns a list of device ids.
func (b *Binding) internDevices(ids []native.Handle, platform *Platform) ([]*Device, error) {
	devices := make([]*Device, 0, len(ids))
	for _, id := range ids {
		d, err := b.internDevice(id, platform)
		if err != nil {
			return nil, err
		}
		devices = append(devices, d)
	}
	return devices, nil
}

// forget drops the interned wrapper of a released platform or device.
func (b *Binding) forget(handle Handle) {
	b.muIntern.Lock()
	defer b.muIntern.Unlock()
	switch handle.Kind {
	case KindPlatform:
		if p, found := b.platforms[handle.ID]; found && p.Released() {
			delete(b.platforms, handle.ID)
		}
	case KindDevice:
		if d, found := b.devices[handle.ID]; found && d.Released() {
			delete(b.devices, handle.ID)
		}
	}
}
