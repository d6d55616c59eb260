package mdb

import (
	"context"

	"github.com/sebastienferry/mongo-zbx/internal/pkg/interfaces"
	"go.uber.org/multierr"
)

// Factory opens the source described by opts.
type Factory func(opts Options) interfaces.MongoSource

func DefaultFactory(opts Options) interfaces.MongoSource {
	return NewMongo(opts)
}

// Registry hands out one source per address, sharing the credentials and
// timeouts of a template, and disconnects them all on Close.
type Registry struct {
	template  Options
	factory   Factory
	instances map[string]interfaces.MongoSource
	order     []string
}

// NewRegistry returns a registry opening sources with factory, or with
// NewMongo when factory is nil.
func NewRegistry(template Options, factory Factory) *Registry {
	if factory == nil {
		factory = DefaultFactory
	}
	return &Registry{
		template:  template,
		factory:   factory,
		instances: make(map[string]interfaces.MongoSource),
	}
}

func (r *Registry) Get(address string) interfaces.MongoSource {
	if m, found := r.instances[address]; found {
		return m
	}
	opts := r.template
	opts.Address = address
	m := r.factory(opts)
	r.instances[address] = m
	r.order = append(r.order, address)
	return m
}

// Reader is Get typed as a status reader, usable as a replica set opener.
func (r *Registry) Reader(address string) interfaces.StatusReader {
	return r.Get(address)
}

func (r *Registry) Len() int {
	return len(r.instances)
}

func (r *Registry) Close(ctx context.Context) error {
	var err error
	for _, address := range r.order {
		err = multierr.Append(err, r.instances[address].Disconnect(ctx))
	}
	r.instances = make(map[string]interfaces.MongoSource)
	r.order = nil
	return err
}
