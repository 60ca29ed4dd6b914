package stack

import (
	"fmt"

	"sullivan/internal/config"
)

// Graph is the declared service set with its dependency edges. Resolution
// output is deterministic: ties are broken by declaration order.
type Graph struct {
	services map[string]config.Service
	order    []string
}

// NewGraph validates the declared services and builds the dependency graph.
// Duplicate names, edges to undeclared services, and cycles are rejected.
func NewGraph(services []config.Service) (*Graph, error) {
	g := &Graph{services: make(map[string]config.Service, len(services))}
	for _, svc := range services {
		if _, dup := g.services[svc.Name]; dup {
			return nil, fmt.Errorf("service %q declared twice", svc.Name)
		}
		g.services[svc.Name] = svc
		g.order = append(g.order, svc.Name)
	}
	for _, svc := range services {
		for _, dep := range svc.DependsOn {
			if _, ok := g.services[dep]; !ok {
				return nil, fmt.Errorf("service %q depends on undeclared service %q", svc.Name, dep)
			}
		}
	}
	if cycle := g.findCycle(); len(cycle) > 0 {
		return nil, fmt.Errorf("dependency cycle: %v", cycle)
	}
	return g, nil
}

// Has reports whether name is a declared service.
func (g *Graph) Has(name string) bool {
	_, ok := g.services[name]
	return ok
}

// Service returns the declaration for name.
func (g *Graph) Service(name string) (config.Service, bool) {
	svc, ok := g.services[name]
	return svc, ok
}

// Names returns all declared service names in declaration order.
func (g *Graph) Names() []string {
	names := make([]string, len(g.order))
	copy(names, g.order)
	return names
}

// Resolve expands the requested services to their dependency closure and
// returns it in start order: every dependency precedes its dependents. An
// empty request resolves the whole graph.
func (g *Graph) Resolve(names []string) ([]string, error) {
	wanted := make(map[string]bool)
	if len(names) == 0 {
		for _, name := range g.order {
			wanted[name] = true
		}
	} else {
		var expand func(name string) error
		expand = func(name string) error {
			svc, ok := g.services[name]
			if !ok {
				return fmt.Errorf("unknown service %q", name)
			}
			if wanted[name] {
				return nil
			}
			wanted[name] = true
			for _, dep := range svc.DependsOn {
				if err := expand(dep); err != nil {
					return err
				}
			}
			return nil
		}
		for _, name := range names {
			if err := expand(name); err != nil {
				return nil, err
			}
		}
	}
	return g.sort(wanted), nil
}

// sort runs Kahn's algorithm over the wanted subset, scanning declaration
// order so the result is stable across runs.
func (g *Graph) sort(wanted map[string]bool) []string {
	pending := make(map[string]int, len(wanted))
	for name := range wanted {
		count := 0
		for _, dep := range g.services[name].DependsOn {
			if wanted[dep] {
				count++
			}
		}
		pending[name] = count
	}

	placed := make(map[string]bool, len(wanted))
	result := make([]string, 0, len(wanted))
	for len(result) < len(wanted) {
		progressed := false
		for _, name := range g.order {
			if !wanted[name] || placed[name] || pending[name] != 0 {
				continue
			}
			placed[name] = true
			result = append(result, name)
			progressed = true
			for _, other := range g.order {
				if !wanted[other] || placed[other] {
					continue
				}
				for _, dep := range g.services[other].DependsOn {
					if dep == name {
						pending[other]--
					}
				}
			}
		}
		if !progressed {
			// Unreachable once NewGraph has rejected cycles.
			break
		}
	}
	return result
}

// Reverse returns the names in stop order.
func Reverse(names []string) []string {
	out := make([]string, len(names))
	for i, name := range names {
		out[len(names)-1-i] = name
	}
	return out
}

func (g *Graph) findCycle() []string {
	const (
		unvisited = 0
		visiting  = 1
		done      = 2
	)
	state := make(map[string]int, len(g.order))
	var stack []string
	var cycle []string

	var visit func(name string) bool
	visit = func(name string) bool {
		state[name] = visiting
		stack = append(stack, name)
		for _, dep := range g.services[name].DependsOn {
			switch state[dep] {
			case visiting:
				for i, n := range stack {
					if n == dep {
						cycle = append(append([]string{}, stack[i:]...), dep)
						return true
					}
				}
			case unvisited:
				if visit(dep) {
					return true
				}
			}
		}
		stack = stack[:len(stack)-1]
		state[name] = done
		return false
	}

	for _, name := range g.order {
		if state[name] == unvisited && visit(name) {
			return cycle
		}
	}
	return nil
}
