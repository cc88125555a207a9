package sim

import (
	"log"
	"sync"
)

// A Simulation indexes the named parts of a simulated machine so that they
// can be looked up by name.
type Simulation struct {
	lock          sync.Mutex
	components    []Named
	compNameIndex map[string]int
}

// NewSimulation creates a new simulation.
func NewSimulation() *Simulation {
	return &Simulation{
		compNameIndex: make(map[string]int),
	}
}

// RegisterComponent registers a component with the simulation. Names must be
// unique.
func (s *Simulation) RegisterComponent(c Named) {
	s.lock.Lock()
	defer s.lock.Unlock()

	compName := c.Name()
	if _, found := s.compNameIndex[compName]; found {
		log.Panicf("component %s already registered", compName)
	}

	s.components = append(s.components, c)
	s.compNameIndex[compName] = len(s.components) - 1
}

// GetComponentByName returns the component with the given name, or nil if
// no such component is registered.
func (s *Simulation) GetComponentByName(name string) Named {
	s.lock.Lock()
	defer s.lock.Unlock()

	i, found := s.compNameIndex[name]
	if !found {
		return nil
	}

	return s.components[i]
}

// Components returns the registered components in registration order.
func (s *Simulation) Components() []Named {
	s.lock.Lock()
	defer s.lock.Unlock()

	return append([]Named(nil), s.components...)
}
