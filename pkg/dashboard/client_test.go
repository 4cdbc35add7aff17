package dashboard

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/user/ray-log-explorer/pkg/demo"
)

func newDemoClient(t *testing.T) (*Client, *demo.Cluster) {
	t.Helper()
	cluster := demo.NewCluster(
		demo.Node{
			ID:    "N1",
			IP:    "10.0.0.1",
			State: "ALIVE",
			Groups: map[string]map[string]string{
				"raylet": {"raylet.out": "hello\nworld\n", "old/raylet.1.out": "rotated\n"},
				"gcs":    {"gcs_server.out": "gcs\n"},
			},
		},
		demo.Node{ID: "N2", IP: "10.0.0.2", State: "DEAD"},
	)
	srv := httptest.NewServer(demo.NewRouter(cluster))
	t.Cleanup(srv.Close)

	client, err := NewClient(srv.URL, srv.Client(), 5*time.Second)
	if err != nil {
		t.Fatalf("NewClient failed: %v", err)
	}
	return client, cluster
}

func TestNewClient(t *testing.T) {
	tests := []struct {
		url     string
		wantErr bool
	}{
		{"http://127.0.0.1:8265", false},
		{"http://head:8265/dashboard/", false},
		{"127.0.0.1:8265", true},
		{"", true},
	}

	for _, tt := range tests {
		_, err := NewClient(tt.url, nil, 0)
		if (err != nil) != tt.wantErr {
			t.Errorf("NewClient(%q): expected error=%v, got %v", tt.url, tt.wantErr, err)
		}
	}
}

func TestDownloadURL(t *testing.T) {
	client, err := NewClient("http://head:8265/prefix", nil, time.Second)
	if err != nil {
		t.Fatal(err)
	}

	got := client.DownloadURL("N 1", "old/raylet out", -1)
	u, err := url.Parse(got)
	if err != nil {
		t.Fatalf("Download URL does not parse: %v", err)
	}
	if u.Path != "/prefix/api/v0/logs/file" {
		t.Errorf("Unexpected path %q", u.Path)
	}
	q := u.Query()
	if q.Get("node_id") != "N 1" || q.Get("filename") != "old/raylet out" || q.Get("lines") != "-1" {
		t.Errorf("Unexpected query %v", q)
	}
}

func TestListLogGroupsRoot(t *testing.T) {
	client, cluster := newDemoClient(t)

	groups, err := client.ListLogGroups(context.Background(), "N1", "")
	if err != nil {
		t.Fatalf("ListLogGroups failed: %v", err)
	}

	raylet := append([]string{}, groups["raylet"]...)
	sort.Strings(raylet)
	if strings.Join(raylet, ",") != "old/,raylet.out" {
		t.Errorf("Unexpected raylet group %v", raylet)
	}
	if len(groups["gcs"]) != 1 {
		t.Errorf("Unexpected gcs group %v", groups["gcs"])
	}
	if cluster.Hits("N1", "") != 1 {
		t.Errorf("Expected the glob parameter to be omitted, hits=%d", cluster.Hits("N1", ""))
	}
}

func TestListLogGroupsWithGlob(t *testing.T) {
	client, cluster := newDemoClient(t)

	groups, err := client.ListLogGroups(context.Background(), "N1", "old/*")
	if err != nil {
		t.Fatalf("ListLogGroups failed: %v", err)
	}
	if len(groups) != 1 || len(groups["raylet"]) != 1 || groups["raylet"][0] != "old/raylet.1.out" {
		t.Errorf("Unexpected groups %v", groups)
	}
	if cluster.Hits("N1", "old/*") != 1 {
		t.Error("Expected glob to be sent verbatim")
	}
}

func TestListLogGroupsUnknownNode(t *testing.T) {
	client, _ := newDemoClient(t)

	_, err := client.ListLogGroups(context.Background(), "missing", "")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
	if !IsNotFound(err) {
		t.Error("IsNotFound should match")
	}
}

func TestListLogGroupsNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	base := srv.URL
	srv.Close()

	client, err := NewClient(base, nil, time.Second)
	if err != nil {
		t.Fatal(err)
	}
	_, err = client.ListLogGroups(context.Background(), "N1", "")
	if !errors.Is(err, ErrNetwork) {
		t.Errorf("Expected ErrNetwork, got %v", err)
	}
}

func TestListLogGroupsServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"result": false, "msg": "agent crashed", "data": null}`))
	}))
	defer srv.Close()

	client, _ := NewClient(srv.URL, srv.Client(), time.Second)
	_, err := client.ListLogGroups(context.Background(), "N1", "")
	if !errors.Is(err, ErrNetwork) {
		t.Errorf("Expected ErrNetwork, got %v", err)
	}
	if err == nil || !strings.Contains(err.Error(), "agent crashed") {
		t.Errorf("Expected server message in error, got %v", err)
	}
}

func TestServerErrorTextTruncated(t *testing.T) {
	long := strings.Repeat("日", 300)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte(`{"result": false, "msg": "` + long + `"}`))
	}))
	defer srv.Close()

	client, _ := NewClient(srv.URL, srv.Client(), time.Second)
	_, err := client.ListLogGroups(context.Background(), "N1", "")
	if err == nil {
		t.Fatal("Expected error")
	}
	if !utf8.ValidString(err.Error()) {
		t.Errorf("Error text split a character: %q", err.Error())
	}
	if strings.Contains(err.Error(), long) || !strings.HasSuffix(err.Error(), "日...") {
		t.Errorf("Expected truncated server text, got %q", err.Error())
	}
}

func TestListLogGroupsFailedEnvelope(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"result": false, "msg": "glob is invalid"}`))
	}))
	defer srv.Close()

	client, _ := NewClient(srv.URL, srv.Client(), time.Second)
	_, err := client.ListLogGroups(context.Background(), "N1", "[")
	if !errors.Is(err, ErrRequestFailed) {
		t.Errorf("Expected ErrRequestFailed, got %v", err)
	}
}

func TestListLogGroupsBadJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html>`))
	}))
	defer srv.Close()

	client, _ := NewClient(srv.URL, srv.Client(), time.Second)
	_, err := client.ListLogGroups(context.Background(), "N1", "")
	if !errors.Is(err, ErrBadResponse) {
		t.Errorf("Expected ErrBadResponse, got %v", err)
	}
}

func TestListLogGroupsSharesInFlightRequest(t *testing.T) {
	var calls int32
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		<-release
		_, _ = w.Write([]byte(`{"result": true, "data": {"result": {"raylet": ["raylet.out"]}}}`))
	}))
	defer srv.Close()

	client, _ := NewClient(srv.URL, srv.Client(), 5*time.Second)

	var wg sync.WaitGroup
	errs := make(chan error, 5)
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := client.ListLogGroups(context.Background(), "N1", "*out*")
			errs <- err
		}()
	}

	// let every goroutine join the flight before answering
	deadline := time.Now().Add(2 * time.Second)
	for atomic.LoadInt32(&calls) == 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()
	close(errs)

	for err := range errs {
		if err != nil {
			t.Errorf("ListLogGroups failed: %v", err)
		}
	}
	if got := atomic.LoadInt32(&calls); got != 1 {
		t.Errorf("Expected 1 request for identical concurrent calls, got %d", got)
	}
}

func TestListAliveNodes(t *testing.T) {
	client, _ := newDemoClient(t)

	nodes, err := client.ListAliveNodes(context.Background())
	if err != nil {
		t.Fatalf("ListAliveNodes failed: %v", err)
	}
	if len(nodes) != 1 {
		t.Fatalf("Expected 1 alive node, got %d", len(nodes))
	}
	if nodes[0].NodeID != "N1" || nodes[0].IP != "10.0.0.1" {
		t.Errorf("Unexpected node %+v", nodes[0])
	}
}

func TestFetchLogFile(t *testing.T) {
	client, _ := newDemoClient(t)

	content, err := client.FetchLogFile(context.Background(), "N1", "raylet.out", -1)
	if err != nil {
		t.Fatalf("FetchLogFile failed: %v", err)
	}
	if content != "hello\nworld\n" {
		t.Errorf("Unexpected content %q", content)
	}

	content, err = client.FetchLogFile(context.Background(), "N1", "raylet.out", 1)
	if err != nil {
		t.Fatalf("FetchLogFile failed: %v", err)
	}
	if content != "world\n" {
		t.Errorf("Expected last line only, got %q", content)
	}

	_, err = client.FetchLogFile(context.Background(), "N1", "nope.log", -1)
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestContextDeadlineRespected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer srv.Close()

	client, _ := NewClient(srv.URL, srv.Client(), time.Minute)
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := client.ListAliveNodes(ctx)
	if !errors.Is(err, ErrNetwork) {
		t.Errorf("Expected ErrNetwork on deadline, got %v", err)
	}
}
