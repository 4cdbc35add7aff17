package demo

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrInvalidFixture is returned for fixtures that cannot describe a cluster
var ErrInvalidFixture = errors.New("invalid demo fixture")

// fixture is the YAML form of a cluster:
//
//	nodes:
//	  - id: N1
//	    ip: 10.0.0.1
//	    groups:
//	      raylet:
//	        raylet.out: |
//	          [2024-03-01 12:00:00,000 I 1 1] started
type fixture struct {
	Nodes []fixtureNode `yaml:"nodes"`
}

type fixtureNode struct {
	ID     string                       `yaml:"id"`
	IP     string                       `yaml:"ip"`
	State  string                       `yaml:"state"`
	Groups map[string]map[string]string `yaml:"groups"`
}

// LoadFixture reads a cluster description from a YAML file
func LoadFixture(path string) (*Cluster, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open fixture: %w", err)
	}
	defer f.Close()
	return DecodeFixture(f)
}

// DecodeFixture reads a cluster description from YAML.
// Nodes default to ALIVE; file paths must be relative and not end in "/".
func DecodeFixture(r io.Reader) (*Cluster, error) {
	var fx fixture
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&fx); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFixture, err)
	}
	if len(fx.Nodes) == 0 {
		return nil, fmt.Errorf("%w: no nodes", ErrInvalidFixture)
	}

	seen := map[string]bool{}
	nodes := make([]Node, 0, len(fx.Nodes))
	for i, n := range fx.Nodes {
		if n.ID == "" {
			return nil, fmt.Errorf("%w: node %d has no id", ErrInvalidFixture, i)
		}
		if seen[n.ID] {
			return nil, fmt.Errorf("%w: duplicate node id %s", ErrInvalidFixture, n.ID)
		}
		seen[n.ID] = true

		for group, files := range n.Groups {
			for p := range files {
				if p == "" || strings.HasPrefix(p, "/") || strings.HasSuffix(p, "/") {
					return nil, fmt.Errorf("%w: node %s group %s: bad path %q", ErrInvalidFixture, n.ID, group, p)
				}
			}
		}

		state := strings.ToUpper(n.State)
		if state == "" {
			state = "ALIVE"
		}
		nodes = append(nodes, Node{ID: n.ID, IP: n.IP, State: state, Groups: n.Groups})
	}
	return NewCluster(nodes...), nil
}
