package iopoll

// Source is implemented by anything that can be registered with a
// [Registry]. Implementations normally forward to [Registry.RegisterHandle],
// [Registry.ReregisterHandle], and [Registry.DeregisterHandle], passing their
// underlying handle.
//
// Sources are driven by the registry, e.g. via [Registry.Register], rather
// than by calling these methods directly.
type Source interface {
	Register(registry *Registry, token Token, interest Interest) error
	Reregister(registry *Registry, token Token, interest Interest) error
	Deregister(registry *Registry) error
}

// SourceHandle adapts a raw [Handle] to [Source]. The caller retains
// ownership of the handle, and must deregister it before closing it.
type SourceHandle Handle

var _ Source = SourceHandle(0)

func (h SourceHandle) Register(registry *Registry, token Token, interest Interest) error {
	return registry.RegisterHandle(Handle(h), token, interest)
}

func (h SourceHandle) Reregister(registry *Registry, token Token, interest Interest) error {
	return registry.ReregisterHandle(Handle(h), token, interest)
}

func (h SourceHandle) Deregister(registry *Registry) error {
	return registry.DeregisterHandle(Handle(h))
}
