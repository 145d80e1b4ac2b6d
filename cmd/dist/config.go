package main

import (
	"fmt"
	"io"
	"os"

	"github.com/gobwas/balancer"
	"gopkg.in/yaml.v3"
)

// config describes a node set to run simulation against.
//
//	strategies: [smooth_weighted, consistent_hash]
//	replicas: 160
//	nodes:
//	  - id: 10.0.0.1
//	    weight: 3
//	  - id: 10.0.0.2
//	    down: true
type config struct {
	Strategies []balancer.Strategy `yaml:"strategies"`
	Replicas   int                 `yaml:"replicas"`
	Nodes      []nodeConfig        `yaml:"nodes"`
}

type nodeConfig struct {
	ID     string `yaml:"id"`
	Weight int    `yaml:"weight"`
	Down   bool   `yaml:"down"`
}

func loadConfigFile(path string) (*config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	c, err := loadConfig(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}

func loadConfig(r io.Reader) (*config, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var c config
	if err := dec.Decode(&c); err != nil && err != io.EOF {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := c.validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func (c *config) validate() error {
	if c.Replicas < 0 {
		return fmt.Errorf("replicas must not be negative: %d", c.Replicas)
	}
	seen := make(map[string]bool, len(c.Nodes))
	for i := range c.Nodes {
		n := &c.Nodes[i]
		if n.ID == "" {
			return fmt.Errorf("node #%d: empty id", i)
		}
		if seen[n.ID] {
			return fmt.Errorf("node #%d: duplicate id %q", i, n.ID)
		}
		seen[n.ID] = true
		if n.Weight == 0 {
			n.Weight = 1
		}
		if n.Weight < 0 {
			return fmt.Errorf("node %q: weight must be positive: %d", n.ID, n.Weight)
		}
	}
	return nil
}

// buildNodes returns fresh nodes described by ns. Nodes carry scheduling
// state, so every balancer must get its own set.
func buildNodes(ns []nodeConfig) ([]*balancer.Node[string], error) {
	ret := make([]*balancer.Node[string], len(ns))
	for i, nc := range ns {
		n, err := balancer.NewWeightedNode(nc.ID, nc.Weight)
		if err != nil {
			return nil, err
		}
		ret[i] = n
	}
	return ret, nil
}
