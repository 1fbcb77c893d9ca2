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
	"os"
	"sort"
	"strings"
	"sync"

	"github.com/gomlx/exceptions"
	"github.com/pkg/errors"
)

// Constructor takes a driver-specific config string (optionally empty) and returns a Driver.
type Constructor func(config string) (Driver, error)

var (
	muDrivers              sync.Mutex
	registeredConstructors = make(map[string]Constructor)
	firstRegistered        string
)

// Register driver with the given name, and a constructor that takes as input a configuration string that is
// passed along to the driver.
//
// To be safe, call Register during initialization of a package. Registering the same name twice panics.
func Register(name string, constructor Constructor) {
	muDrivers.Lock()
	defer muDrivers.Unlock()
	if _, found := registeredConstructors[name]; found {
		exceptions.Panicf("native driver %q registered twice", name)
	}
	if len(registeredConstructors) == 0 {
		firstRegistered = name
	}
	registeredConstructors[name] = constructor
}

// Registered returns the sorted names of the registered drivers.
func Registered() []string {
	muDrivers.Lock()
	defer muDrivers.Unlock()
	names := make([]string, 0, len(registeredConstructors))
	for name := range registeredConstructors {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DefaultConfig is the name of the default driver configuration to use if specified.
//
// See NewWithConfig for the format of the configuration string.
var DefaultConfig string

// WEBCL_DRIVER is the environment variable with the default driver configuration to use.
//
// The format of config is "<driver_name>:<driver_configuration>".
// The "<driver_name>" is the name of a registered driver (e.g.: "host") and
// "<driver_configuration>" is driver specific (e.g.: for the host driver, "devices=2").
const WEBCL_DRIVER = "WEBCL_DRIVER"

// New returns a new default Driver.
//
// The default is:
//
// 1. The environment WEBCL_DRIVER is used as a configuration if defined.
// 2. Next the variable DefaultConfig is used as a configuration if defined.
// 3. The first registered driver is used with an empty configuration.
func New() (Driver, error) {
	config, found := os.LookupEnv(WEBCL_DRIVER)
	if found {
		return NewWithConfig(config)
	}
	if DefaultConfig != "" {
		return NewWithConfig(DefaultConfig)
	}
	return NewWithConfig("")
}

// NewWithConfig takes a configuration string formatted as "<driver_name>:<driver_configuration>".
// If there is no ":" in config, it's taken as the name of the driver, with an empty configuration.
// An empty config selects the first registered driver.
func NewWithConfig(config string) (Driver, error) {
	name, driverConfig := SplitConfig(config)
	muDrivers.Lock()
	if name == "" {
		name = firstRegistered
	}
	constructor, found := registeredConstructors[name]
	numRegistered := len(registeredConstructors)
	muDrivers.Unlock()
	if numRegistered == 0 {
		return nil, errors.New(`no registered native drivers -- maybe import the host one with ` +
			`import _ "github.com/gomlx/webcl/native/hostcl"?`)
	}
	if !found {
		return nil, errors.Errorf("can't find native driver %q for configuration %q given, registered drivers: %v",
			name, config, Registered())
	}
	driver, err := constructor(driverConfig)
	if err != nil {
		return nil, errors.WithMessagef(err, "failed to create native driver %q with config %q", name, driverConfig)
	}
	return driver, nil
}

// SplitConfig splits "<driver_name>:<driver_configuration>" in its two parts.
func SplitConfig(config string) (name, driverConfig string) {
	if idx := strings.Index(config, ":"); idx != -1 {
		return config[:idx], config[idx+1:]
	}
	return config, ""
}
