package device

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/example/go-dnn-parity/internal/engine"
)

// Device is a resolved execution handle bound to one target. Its lifetime is
// scoped to a single validation case; devices are never shared across cases.
type Device struct {
	target     Target
	class      engine.DeviceClass
	plugin     engine.Plugin
	session    *Session
	extensions []string
}

// Target returns the target the device was resolved for.
func (d *Device) Target() Target {
	return d.target
}

// Class returns the resolved device class.
func (d *Device) Class() engine.DeviceClass {
	return d.class
}

// Plugin returns the underlying vendor plugin.
func (d *Device) Plugin() engine.Plugin {
	return d.plugin
}

// AddExtension attaches a capability extension to the plugin and records its
// name on the device.
func (d *Device) AddExtension(ext engine.Extension) error {
	if err := d.plugin.AddExtension(ext); err != nil {
		return fmt.Errorf("device: attach extension %q: %w", ext.Name(), err)
	}

	d.extensions = append(d.extensions, ext.Name())

	return nil
}

// Extensions returns the names of every extension attached so far.
func (d *Device) Extensions() []string {
	return append([]string(nil), d.extensions...)
}

// Release returns the device's exclusive session slot, if it holds one.
// Safe to call multiple times.
func (d *Device) Release() {
	if d.session != nil {
		d.session.Release()
		d.session = nil
	}
}

// Session is the token for one acquisition of an exclusive device class.
// At most one unreleased session exists per class per process.
type Session struct {
	class    engine.DeviceClass
	registry *sessionRegistry
}

// Release frees the session's slot. Safe to call multiple times; releasing a
// session that was already force-reset is a no-op.
func (s *Session) Release() {
	s.registry.release(s)
}

type sessionRegistry struct {
	mu   sync.Mutex
	held map[engine.DeviceClass]*Session
}

func newSessionRegistry() *sessionRegistry {
	return &sessionRegistry{held: make(map[engine.DeviceClass]*Session)}
}

func (r *sessionRegistry) acquire(class engine.DeviceClass) (*Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.held[class]; ok {
		return nil, &ExclusiveDeviceHeldError{Class: class}
	}

	s := &Session{class: class, registry: r}
	r.held[class] = s

	return s, nil
}

func (r *sessionRegistry) release(s *Session) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.held[s.class] == s {
		delete(r.held, s.class)
	}
}

func (r *sessionRegistry) reset() {
	r.mu.Lock()
	defer r.mu.Unlock()

	for class := range r.held {
		slog.Info("force released exclusive device session", "class", class)
		delete(r.held, class)
	}
}

// Resolver maps targets to devices through the vendor runtime's plugin
// dispatcher. Resolution is fresh per case; plugin acquisition may carry
// process-wide driver-initialization cost, so nothing is cached here.
type Resolver struct {
	dispatcher engine.Dispatcher
	sessions   *sessionRegistry
}

// NewResolver creates a resolver over a plugin dispatcher.
func NewResolver(dispatcher engine.Dispatcher) *Resolver {
	return &Resolver{
		dispatcher: dispatcher,
		sessions:   newSessionRegistry(),
	}
}

// Resolve acquires a device for the target. For exclusive targets the
// resolver claims the class's single session slot first; acquisition fails
// with ExclusiveDeviceHeldError while a prior session is unreleased.
func (r *Resolver) Resolve(target Target) (*Device, error) {
	class, err := target.Class()
	if err != nil {
		return nil, err
	}

	var session *Session
	if target.Exclusive() {
		session, err = r.sessions.acquire(class)
		if err != nil {
			return nil, err
		}
	}

	plugin, err := r.resolvePlugin(target)
	if err != nil {
		if session != nil {
			session.Release()
		}

		return nil, fmt.Errorf("device: resolve plugin for %s: %w", target, err)
	}

	return &Device{
		target:  target,
		class:   class,
		plugin:  plugin,
		session: session,
	}, nil
}

func (r *Resolver) resolvePlugin(target Target) (engine.Plugin, error) {
	switch target {
	case TargetCPU:
		return r.dispatcher.PluginFor(engine.ClassCPU)
	case TargetGPUFP32, TargetGPUFP16:
		return r.dispatcher.PluginFor(engine.ClassGPU)
	case TargetNPU:
		return r.dispatcher.PluginFor(engine.ClassNPU)
	case TargetHeteroNPUCPU:
		return r.dispatcher.PluginForHetero(engine.HeteroSpec{
			Primary:  engine.ClassNPU,
			Fallback: engine.ClassCPU,
		})
	default:
		return nil, &UnsupportedTargetError{Target: target}
	}
}

// ResetExclusive force-releases every held exclusive session. The orchestrator
// calls this before a case on an exclusive target so a stale session from an
// earlier case can never block or be silently shared.
func (r *Resolver) ResetExclusive() {
	r.sessions.reset()
}

// Available probes which targets resolve on this host. Probing asks the
// dispatcher for each target's plugin without claiming session slots, so it
// never interferes with a running case.
func (r *Resolver) Available() []Target {
	var out []Target

	for _, target := range AllTargets() {
		if _, err := r.resolvePlugin(target); err != nil {
			slog.Debug("target unavailable", "target", target, "error", err)
			continue
		}

		out = append(out, target)
	}

	return out
}
