// Package demo serves a fake Ray dashboard with sample nodes and log files,
// for running the explorer without a cluster and for tests.
package demo

import (
	"encoding/json"
	"fmt"
	"net/http"
	"path"
	"strconv"
	"strings"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Node is a fixture node and the log files it holds, keyed by group
type Node struct {
	ID     string
	IP     string
	State  string
	Groups map[string]map[string]string // group -> path -> content
}

// Cluster is the fixture served by the router
type Cluster struct {
	mu      sync.RWMutex
	nodes   []Node
	hits    map[string]int
	metrics *metrics
}

// NewCluster creates a cluster from fixture nodes
func NewCluster(nodes ...Node) *Cluster {
	return &Cluster{nodes: nodes, hits: map[string]int{}, metrics: newMetrics()}
}

// SampleCluster returns a small cluster with a head node, a worker and a dead node
func SampleCluster() *Cluster {
	head := Node{
		ID:    "f3a1c0de5b7e4a2d9c1b8e6f0a3d2c1b5e4f7a9c8d6b3e2f1a0c9d8e",
		IP:    "10.0.0.1",
		State: "ALIVE",
		Groups: map[string]map[string]string{
			"gcs_server": {
				"gcs_server.out": sampleLines("gcs_server", "GCS started on port 6379", 40),
				"gcs_server.err": "",
			},
			"raylet": {
				"raylet.out": sampleLines("raylet", "Raylet heartbeat ok", 120),
				"raylet.err": "",
			},
			"dashboard": {
				"dashboard.log":       sampleLines("dashboard", "GET /api/v0/logs 200", 30),
				"dashboard_agent.log": sampleLines("agent", "reporter tick", 25),
			},
			"worker_out": {
				"worker-0a1b-01000000-1234.out": sampleLines("worker", "task finished", 60),
				"worker-0a1b-01000000-1234.err": sampleLines("worker", "WARNING: slow task", 5),
			},
			"misc": {
				"events/event_GCS.log":           sampleLines("event", "node added", 10),
				"events/event_RAYLET.log":        sampleLines("event", "worker started", 10),
				"old/raylet.1.out":               sampleLines("raylet", "rotated", 15),
				"old/archive/raylet.0.out":       sampleLines("raylet", "rotated older", 15),
				"runtime_env_setup-01000000.log": sampleLines("runtime_env", "setting up env", 8),
			},
		},
	}
	worker := Node{
		ID:    "9b8a7c6d5e4f3a2b1c0d9e8f7a6b5c4d3e2f1a0b9c8d7e6f5a4b3c2d",
		IP:    "10.0.0.2",
		State: "ALIVE",
		Groups: map[string]map[string]string{
			"raylet": {
				"raylet.out": sampleLines("raylet", "worker node heartbeat ok", 50),
			},
			"worker_out": {
				"worker-ffee-02000000-4321.out": sampleLines("worker", "actor method call", 40),
			},
		},
	}
	dead := Node{
		ID:     "0000dead0000dead0000dead0000dead0000dead0000dead0000dead",
		IP:     "10.0.0.3",
		State:  "DEAD",
		Groups: map[string]map[string]string{},
	}
	return NewCluster(head, worker, dead)
}

func sampleLines(component, message string, n int) string {
	var sb strings.Builder
	for i := 1; i <= n; i++ {
		fmt.Fprintf(&sb, "[2024-05-01 12:%02d:%02d,000 I %s] %s (%d)\n", (i/60)%60, i%60, component, message, i)
	}
	return sb.String()
}

// Hits returns how many listing requests a node/glob pair has received
func (c *Cluster) Hits(nodeID, glob string) int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.hits[nodeID+"|"+glob]
}

func (c *Cluster) node(id string) (Node, bool) {
	for _, n := range c.nodes {
		if n.ID == id {
			return n, true
		}
	}
	return Node{}, false
}

// NewRouter returns an http.Handler implementing the dashboard endpoints
func NewRouter(c *Cluster) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(c.metrics.Middleware)

	r.Get("/nodes", c.handleNodes)
	r.Route("/api/v0/logs", func(r chi.Router) {
		r.Get("/", c.handleListLogs)
		r.Get("/file", c.handleLogFile)
	})
	r.Handle("/metrics", c.metrics.Handler())
	return r
}

func (c *Cluster) handleNodes(w http.ResponseWriter, r *http.Request) {
	type raylet struct {
		NodeID string `json:"nodeId"`
		State  string `json:"state"`
	}
	type summary struct {
		IP       string `json:"ip"`
		Hostname string `json:"hostname"`
		Raylet   raylet `json:"raylet"`
	}

	out := []summary{}
	for i, n := range c.nodes {
		out = append(out, summary{
			IP:       n.IP,
			Hostname: fmt.Sprintf("ray-node-%d", i),
			Raylet:   raylet{NodeID: n.ID, State: n.State},
		})
	}
	writeEnvelope(w, http.StatusOK, true, "", map[string]interface{}{"summary": out})
}

func (c *Cluster) handleListLogs(w http.ResponseWriter, r *http.Request) {
	nodeID := r.URL.Query().Get("node_id")
	glob := r.URL.Query().Get("glob")

	c.mu.Lock()
	c.hits[nodeID+"|"+glob]++
	c.mu.Unlock()

	n, ok := c.node(nodeID)
	if !ok || nodeID == "" {
		writeEnvelope(w, http.StatusNotFound, false, fmt.Sprintf("node %s not found", nodeID), nil)
		return
	}
	if glob == "" {
		glob = "*"
	}

	result := map[string][]string{}
	for group, files := range n.Groups {
		matched := MatchPaths(glob, files)
		if len(matched) > 0 {
			result[group] = matched
		}
	}
	writeEnvelope(w, http.StatusOK, true, "", map[string]interface{}{"result": result})
}

func (c *Cluster) handleLogFile(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	nodeID := q.Get("node_id")
	filename := q.Get("filename")

	n, ok := c.node(nodeID)
	if !ok {
		http.Error(w, fmt.Sprintf("node %s not found", nodeID), http.StatusNotFound)
		return
	}

	for _, files := range n.Groups {
		content, ok := files[filename]
		if !ok {
			continue
		}
		lines := -1
		if v := q.Get("lines"); v != "" {
			parsed, err := strconv.Atoi(v)
			if err != nil {
				http.Error(w, "lines must be an integer", http.StatusBadRequest)
				return
			}
			lines = parsed
		}
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		n, _ := w.Write([]byte(tailLines(content, lines)))
		c.metrics.RecordBytesServed(n)
		return
	}
	http.Error(w, fmt.Sprintf("file %s does not exist", filename), http.StatusNotFound)
}

// MatchPaths returns the files and directories matching glob.
// "*" does not cross "/", so a glob lists one directory level; a
// directory is reported once, with a trailing slash.
func MatchPaths(glob string, files map[string]string) []string {
	seen := map[string]bool{}
	out := []string{}
	add := func(p string) {
		if !seen[p] {
			seen[p] = true
			out = append(out, p)
		}
	}

	for file := range files {
		if ok, _ := path.Match(glob, file); ok {
			add(file)
		}
		// every ancestor directory of the file is a listable entry
		dir := path.Dir(file)
		for dir != "." && dir != "/" {
			if ok, _ := path.Match(glob, dir); ok {
				add(dir + "/")
			}
			dir = path.Dir(dir)
		}
	}
	return out
}

func tailLines(content string, n int) string {
	if n < 0 {
		return content
	}
	lines := strings.SplitAfter(content, "\n")
	if len(lines) > 0 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return strings.Join(lines, "")
}

func writeEnvelope(w http.ResponseWriter, status int, ok bool, msg string, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"result": ok,
		"msg":    msg,
		"data":   data,
	})
}
