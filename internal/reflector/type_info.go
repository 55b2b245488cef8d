// Package reflector derives stable names for event types. The runtime
// dispatches messages statically, so these names are never used for routing;
// they only label log records and metrics.
package reflector

import (
	"reflect"
	"sync"
)

var (
	mu    sync.RWMutex
	cache = make(map[reflect.Type]string)
)

// EventName returns a package-qualified name for the dynamic type of x,
// e.g. "github.com/lunarpulse/drogue-device/drivers/hts221.DataReady".
// Pointer types are named after their element type. Results are cached.
func EventName(x any) string {
	t := reflect.TypeOf(x)
	if t == nil {
		return "<nil>"
	}

	mu.RLock()
	name, ok := cache[t]
	mu.RUnlock()
	if ok {
		return name
	}

	e := t
	if e.Kind() == reflect.Pointer {
		e = e.Elem()
	}
	if e.PkgPath() != "" {
		name = e.PkgPath() + "." + e.Name()
	} else {
		name = e.String()
	}

	mu.Lock()
	cache[t] = name
	mu.Unlock()
	return name
}
