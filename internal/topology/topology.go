package topology

import "strings"

// ServiceTopology is an immutable dependency graph between named services.
// Edges point from a service to the services it depends on; the graph is
// assumed acyclic by convention (a cycle would make TransitiveDependents
// loop forever on real data, so construction copies but does not validate).
type ServiceTopology struct {
	services  []string
	dependsOn map[string][]string
	// reverse edges, built once at construction
	dependents map[string][]string
}

// New builds a ServiceTopology from a service list and a dependency mapping.
// The service slice fixes the stable iteration order used everywhere else.
func New(services []string, dependsOn map[string][]string) *ServiceTopology {
	t := &ServiceTopology{
		services:   append([]string(nil), services...),
		dependsOn:  make(map[string][]string, len(services)),
		dependents: make(map[string][]string, len(services)),
	}
	for _, svc := range services {
		deps := append([]string(nil), dependsOn[svc]...)
		t.dependsOn[svc] = deps
		for _, dep := range deps {
			t.dependents[dep] = append(t.dependents[dep], svc)
		}
	}
	return t
}

// Default returns the four-service topology the prediction model is trained
// on: api-gateway -> {auth-service, user-service} -> database.
func Default() *ServiceTopology {
	return New(
		[]string{"api-gateway", "auth-service", "user-service", "database"},
		map[string][]string{
			"api-gateway":  {"auth-service", "user-service"},
			"auth-service": {"database"},
			"user-service": {"database"},
			"database":     {},
		},
	)
}

// Services returns the service names in their stable declaration order.
func (t *ServiceTopology) Services() []string {
	return append([]string(nil), t.services...)
}

// Contains reports whether the named service is part of the topology.
func (t *ServiceTopology) Contains(service string) bool {
	_, ok := t.dependsOn[service]
	return ok
}

// DependsOn returns the direct dependencies of a service.
func (t *ServiceTopology) DependsOn(service string) []string {
	return append([]string(nil), t.dependsOn[service]...)
}

// DependentsOf returns the services that depend directly on the given one.
func (t *ServiceTopology) DependentsOf(service string) []string {
	return append([]string(nil), t.dependents[service]...)
}

// TransitiveDependents walks the reverse edges and returns every service
// that depends on the given one, directly or through intermediaries, in the
// topology's stable service order. A failure of the input service cascades
// to exactly this set.
func (t *ServiceTopology) TransitiveDependents(service string) []string {
	reached := make(map[string]bool)
	var visit func(string)
	visit = func(svc string) {
		for _, dep := range t.dependents[svc] {
			if reached[dep] {
				continue
			}
			reached[dep] = true
			visit(dep)
		}
	}
	visit(service)

	out := make([]string, 0, len(reached))
	for _, svc := range t.services {
		if reached[svc] {
			out = append(out, svc)
		}
	}
	return out
}

// Roots returns services nothing depends on; for the default topology this
// is the single api-gateway entrypoint.
func (t *ServiceTopology) Roots() []string {
	out := make([]string, 0, 1)
	for _, svc := range t.services {
		if len(t.dependents[svc]) == 0 {
			out = append(out, svc)
		}
	}
	return out
}

// Leaves returns services with no dependencies of their own.
func (t *ServiceTopology) Leaves() []string {
	out := make([]string, 0, 1)
	for _, svc := range t.services {
		if len(t.dependsOn[svc]) == 0 {
			out = append(out, svc)
		}
	}
	return out
}

// FeaturePrefix converts a service name into the prefix used for its
// flattened metric feature names (dashes become underscores).
func FeaturePrefix(service string) string {
	return strings.ReplaceAll(service, "-", "_")
}
