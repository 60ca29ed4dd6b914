package stack

import (
	"reflect"
	"strings"
	"testing"

	"sullivan/internal/config"
)

func declared(services ...config.Service) []config.Service { return services }

func TestResolveExpandsDependencyClosureInStartOrder(t *testing.T) {
	graph, err := NewGraph(declared(
		config.Service{Name: "qbittorrent"},
		config.Service{Name: "jackett"},
		config.Service{Name: "sonarr", DependsOn: []string{"qbittorrent", "jackett"}},
		config.Service{Name: "jellyfin"},
	))
	if err != nil {
		t.Fatalf("NewGraph: %v", err)
	}

	order, err := graph.Resolve([]string{"sonarr"})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	want := []string{"qbittorrent", "jackett", "sonarr"}
	if !reflect.DeepEqual(order, want) {
		t.Fatalf("start order = %v, want %v", order, want)
	}
}

func TestResolveEmptySelectionIsWholeGraph(t *testing.T) {
	graph, err := NewGraph(declared(
		config.Service{Name: "a"},
		config.Service{Name: "b", DependsOn: []string{"c"}},
		config.Service{Name: "c"},
	))
	if err != nil {
		t.Fatal(err)
	}

	order, err := graph.Resolve(nil)
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"a", "c", "b"}
	if !reflect.DeepEqual(order, want) {
		t.Fatalf("order = %v, want %v", order, want)
	}
}

func TestResolveIsDeterministic(t *testing.T) {
	graph, err := NewGraph(declared(
		config.Service{Name: "radarr"},
		config.Service{Name: "sonarr"},
		config.Service{Name: "bazarr", DependsOn: []string{"sonarr", "radarr"}},
	))
	if err != nil {
		t.Fatal(err)
	}

	first, err := graph.Resolve([]string{"bazarr"})
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 20; i++ {
		again, err := graph.Resolve([]string{"bazarr"})
		if err != nil {
			t.Fatal(err)
		}
		if !reflect.DeepEqual(first, again) {
			t.Fatalf("order varies across runs: %v vs %v", first, again)
		}
	}
}

func TestResolveRejectsUnknownService(t *testing.T) {
	graph, err := NewGraph(declared(config.Service{Name: "sonarr"}))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := graph.Resolve([]string{"plexx"}); err == nil {
		t.Fatal("unknown service must be rejected")
	}
}

func TestNewGraphRejectsCycle(t *testing.T) {
	_, err := NewGraph(declared(
		config.Service{Name: "a", DependsOn: []string{"b"}},
		config.Service{Name: "b", DependsOn: []string{"a"}},
	))
	if err == nil {
		t.Fatal("cycle must be rejected")
	}
	if !strings.Contains(err.Error(), "cycle") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestNewGraphRejectsUndeclaredDependency(t *testing.T) {
	_, err := NewGraph(declared(
		config.Service{Name: "sonarr", DependsOn: []string{"qbittorrent"}},
	))
	if err == nil {
		t.Fatal("undeclared dependency must be rejected")
	}
}

func TestReverseIsStopOrder(t *testing.T) {
	got := Reverse([]string{"qbittorrent", "jackett", "sonarr"})
	want := []string{"sonarr", "jackett", "qbittorrent"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("stop order = %v, want %v", got, want)
	}
}
