package ui

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/user/ray-log-explorer/pkg/dashboard"
	"github.com/user/ray-log-explorer/pkg/demo"
	"github.com/user/ray-log-explorer/pkg/nav"
)

func newDemoApp(t *testing.T) (*App, *demo.Cluster) {
	t.Helper()
	cluster := demo.NewCluster(
		demo.Node{
			ID:    "N1",
			IP:    "10.0.0.1",
			State: "ALIVE",
			Groups: map[string]map[string]string{
				"raylet": {
					"raylet.out":       "raylet up\n",
					"old/raylet.1.out": "rotated\n",
				},
				"misc": {
					"events/event_GCS.log": "node added\n",
					"my logs/a b.log":      "spaces\n",
				},
			},
		},
		demo.Node{ID: "N0", IP: "10.0.0.9", State: "DEAD"},
	)
	srv := httptest.NewServer(demo.NewRouter(cluster))
	t.Cleanup(srv.Close)

	client, err := dashboard.NewClient(srv.URL, srv.Client(), 5*time.Second)
	if err != nil {
		t.Fatalf("NewClient failed: %v", err)
	}
	return NewApp(client), cluster
}

func TestIntegrationBrowseDemoCluster(t *testing.T) {
	a, cluster := newDemoApp(t)

	drain(a, a.Init())
	if a.Status() != StatusMissingNode {
		t.Fatalf("Expected node list first, got %s", a.Status())
	}
	view := a.View()
	if !strings.Contains(view, "Node ID: N1 (IP: 10.0.0.1)") || strings.Contains(view, "N0") {
		t.Fatalf("Expected only alive nodes, view:\n%s", view)
	}

	press(a, "enter")
	if cluster.Hits("N1", "") != 1 {
		t.Fatalf("Expected root listing without glob, hits=%d", cluster.Hits("N1", ""))
	}
	want := "events/,my logs/,old/,raylet.out"
	if got := strings.Join(entryPaths(a), ","); got != want {
		t.Fatalf("Expected %s, got %s", want, got)
	}

	selectPath(t, a, "my logs/")
	press(a, "enter")
	if a.Location().Link() != "/logs/?nodeId=N1&folder=my%20logs" {
		t.Errorf("Unexpected link %q", a.Location().Link())
	}
	if cluster.Hits("N1", "my logs/*") != 1 {
		t.Errorf("Expected decoded folder in glob")
	}

	selectPath(t, a, "my logs/a b.log")
	press(a, "enter")
	if a.Location().Page != nav.PageViewer || !strings.Contains(a.View(), "spaces") {
		t.Fatalf("Expected viewer with content, got %s", a.Status())
	}

	press(a, "b")
	press(a, "b")
	if a.Location().Link() != "/logs/?nodeId=N1" {
		t.Errorf("Expected root after two backs, got %q", a.Location().Link())
	}
}

func TestIntegrationUnknownNode(t *testing.T) {
	a, _ := newDemoApp(t)
	if err := a.SetLocation("/logs/?nodeId=nope"); err != nil {
		t.Fatal(err)
	}
	drain(a, a.Init())

	if a.Status() != StatusFetchError {
		t.Fatalf("Expected fetch error, got %s", a.Status())
	}
	if latest := a.toasts.GetLatest(); latest == nil || !strings.HasPrefix(latest.Text, "Not found") {
		t.Errorf("Expected not found toast, got %+v", latest)
	}
}

func TestIntegrationMissingFile(t *testing.T) {
	a, _ := newDemoApp(t)
	if err := a.SetLocation("/logs/viewer?nodeId=N1&fileName=gone.log"); err != nil {
		t.Fatal(err)
	}
	drain(a, a.Init())

	if a.Status() != StatusFetchError {
		t.Errorf("Expected fetch error for a missing file, got %s", a.Status())
	}
}
