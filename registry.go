package edba

import (
	"fmt"
	"plugin"
	"sync"

	"github.com/caohanyu/edba/backend"
)

// DriverFactory constructs a backend connection for a parsed connection
// descriptor. Re-exported from backend so drivers never import edba
// directly (spec §4.9's registry, grounded on gdb's driverMap).
type DriverFactory = backend.DriverFactory

var (
	registryMu sync.RWMutex
	registry   = map[string]DriverFactory{}
)

// Register adds a statically linked driver factory under name, the
// prefix a connection URI uses before its first ':'. Calling Register
// twice with the same name overwrites the earlier registration — useful
// for tests that substitute a fake backend.
func Register(name string, factory DriverFactory) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[name] = factory
}

// lookup finds a registered factory, attempting a plugin load if the
// driver hasn't been statically linked. Dynamic loading follows the
// convention documented in spec §4.9: a shared object named
// "edba_<driver>.so" exporting a symbol "Edba_<driver>_GetConnection" of
// type DriverFactory. Platforms without plugin support (anything but
// linux) simply never find a match this way; Register remains the
// primary path everywhere.
func lookup(name string) (DriverFactory, error) {
	registryMu.RLock()
	factory, ok := registry[name]
	registryMu.RUnlock()
	if ok {
		return factory, nil
	}

	factory, err := loadPlugin(name)
	if err != nil {
		return nil, ErrInvalidConnectionString
	}

	registryMu.Lock()
	registry[name] = factory
	registryMu.Unlock()
	return factory, nil
}

func loadPlugin(name string) (DriverFactory, error) {
	p, err := plugin.Open(fmt.Sprintf("edba_%s.so", name))
	if err != nil {
		return nil, err
	}
	sym, err := p.Lookup(fmt.Sprintf("Edba_%s_GetConnection", name))
	if err != nil {
		return nil, err
	}
	// A plugin's exported func arrives with its unnamed func type, and an
	// exported variable arrives as a pointer to it.
	switch f := sym.(type) {
	case func(backend.ConnInfoView, backend.Monitor) (backend.Connection, error):
		return f, nil
	case *DriverFactory:
		return *f, nil
	default:
		return nil, fmt.Errorf("edba: plugin symbol for driver %q has the wrong type", name)
	}
}

// Open parses uri, resolves its driver (statically registered or loaded
// as a plugin), and opens a new Session.
func Open(uri string, opts ...Option) (*Session, error) {
	o := newOptions(opts)

	ci, err := ParseConnInfo(uri)
	if err != nil {
		return nil, err
	}
	factory, err := lookup(ci.DriverName())
	if err != nil {
		return nil, err
	}
	conn, err := factory(ci, o.monitor)
	if err != nil {
		return nil, wrapBackendErr("open", err)
	}
	return newSession(conn, ci, o.monitor, o.logger, nil), nil
}
