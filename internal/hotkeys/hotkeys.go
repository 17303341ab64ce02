package hotkeys

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"
	"golang.design/x/hotkey"
)

// Commands are the coordinator operations reachable from the keyboard.
type Commands interface {
	InsertToActiveWindow() error
	ToggleMode() error
	CopyOutput() error
}

// Binding maps one key chord to an action.
type Binding struct {
	Name   string
	Mods   []hotkey.Modifier
	Key    hotkey.Key
	Action func() error
}

// DefaultBindings returns ctrl+shift+T (insert), ctrl+shift+L (mode) and
// ctrl+shift+C (copy).
func DefaultBindings(cmds Commands) []Binding {
	mods := []hotkey.Modifier{hotkey.ModCtrl, hotkey.ModShift}
	return []Binding{
		{Name: "ctrl+shift+t", Mods: mods, Key: hotkey.KeyT, Action: cmds.InsertToActiveWindow},
		{Name: "ctrl+shift+l", Mods: mods, Key: hotkey.KeyL, Action: cmds.ToggleMode},
		{Name: "ctrl+shift+c", Mods: mods, Key: hotkey.KeyC, Action: cmds.CopyOutput},
	}
}

type registration interface {
	Register() error
	Unregister() error
	Keydown() <-chan hotkey.Event
}

type registerFunc func(mods []hotkey.Modifier, key hotkey.Key) registration

func systemRegistration(mods []hotkey.Modifier, key hotkey.Key) registration {
	return hotkey.New(mods, key)
}

// Manager owns the global hotkey registrations for the app lifetime.
type Manager struct {
	bindings []Binding
	logger   *zap.Logger
	newKey   registerFunc

	mu     sync.Mutex
	active []registration
	wg     sync.WaitGroup
}

func NewManager(bindings []Binding, logger *zap.Logger) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{bindings: bindings, logger: logger, newKey: systemRegistration}
}

// Start registers every binding and dispatches keydowns until ctx is done.
// Bindings that fail to register are skipped; the joined error lists them.
func (m *Manager) Start(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	var errs []error
	for _, binding := range m.bindings {
		reg := m.newKey(binding.Mods, binding.Key)
		if err := reg.Register(); err != nil {
			m.logger.Warn("hotkey registration failed", zap.String("hotkey", binding.Name), zap.Error(err))
			errs = append(errs, fmt.Errorf("%s: %w", binding.Name, err))
			continue
		}
		m.active = append(m.active, reg)

		m.wg.Add(1)
		go m.listen(ctx, binding, reg)
	}
	return errors.Join(errs...)
}

func (m *Manager) listen(ctx context.Context, binding Binding, reg registration) {
	defer m.wg.Done()
	keydown := reg.Keydown()
	for {
		select {
		case <-ctx.Done():
			return
		case _, ok := <-keydown:
			if !ok {
				return
			}
			if err := binding.Action(); err != nil {
				m.logger.Debug("hotkey action failed", zap.String("hotkey", binding.Name), zap.Error(err))
			}
		}
	}
}

// Stop unregisters all hotkeys and waits for the listeners to return.
func (m *Manager) Stop() {
	m.mu.Lock()
	active := m.active
	m.active = nil
	m.mu.Unlock()

	for _, reg := range active {
		if err := reg.Unregister(); err != nil {
			m.logger.Debug("hotkey unregister failed", zap.Error(err))
		}
	}
	m.wg.Wait()
}

// Names lists the configured chords, for display.
func (m *Manager) Names() string {
	names := make([]string, 0, len(m.bindings))
	for _, binding := range m.bindings {
		names = append(names, binding.Name)
	}
	return strings.Join(names, ", ")
}
