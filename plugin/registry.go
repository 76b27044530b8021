package plugin

import (
	"sort"
	"sync"

	"github.com/pkg/errors"
)

var (
	registryMu sync.Mutex
	registry   = map[string]Factory{}
)

// RegisterFactory makes a factory available by name. Plugins call it from
// an init function.
func RegisterFactory(f Factory) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[f.Name()] = f
}

// LookupFactory returns the factory registered under name.
func LookupFactory(name string) (Factory, error) {
	registryMu.Lock()
	defer registryMu.Unlock()
	if f, found := registry[name]; found {
		return f, nil
	}
	return nil, errors.Errorf("Factory '%s' not registered", name)
}

// Factories returns all registered factories sorted by name.
func Factories() []Factory {
	registryMu.Lock()
	defer registryMu.Unlock()
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	list := make([]Factory, len(names))
	for i, name := range names {
		list[i] = registry[name]
	}
	return list
}

// Instantiate looks up a factory, creates an instance and returns the
// implementation of the requested interface along with the handle.
func Instantiate(name string, info map[string]string, support *Support, iface string) (Handle, interface{}, error) {
	f, err := LookupFactory(name)
	if err != nil {
		return nil, nil, err
	}
	h, err := f.Init(info, support)
	if err != nil {
		return nil, nil, errors.Wrapf(err, "init %s", name)
	}
	i, err := h.Interface(iface)
	if err != nil {
		h.Clear()
		return nil, nil, errors.Wrapf(err, "%s interface %s", name, iface)
	}
	return h, i, nil
}
