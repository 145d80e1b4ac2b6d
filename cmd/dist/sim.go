package main

import (
	"crypto/md5"
	"encoding/binary"
	"fmt"
	"hash"
	"hash/fnv"
	"math"
	"time"

	"github.com/gobwas/balancer"
	"github.com/spaolacci/murmur3"
)

type result struct {
	strategy balancer.Strategy

	// share holds percentage of requests served by each node.
	share map[string]float64

	// stddev is a standard deviation of per-node request counts from the
	// weight-proportional expectation, in percents of all requests.
	stddev float64

	// empty is a number of requests for which no node was available.
	empty int

	// relocated is a percentage of requests which changed their node after
	// removal of the first node. It is computed only for consistent hashing.
	relocated float64

	latency time.Duration
}

func simulate(
	s balancer.Strategy,
	nodes []nodeConfig,
	keys []string,
	opts ...balancer.Option,
) (*result, error) {
	ns, err := buildNodes(nodes)
	if err != nil {
		return nil, err
	}
	b, err := balancer.TryNew(s, ns, opts...)
	if err != nil {
		return nil, err
	}
	for _, nc := range nodes {
		if !nc.Down {
			continue
		}
		if err := b.SetDown(nc.ID, true); err != nil {
			return nil, err
		}
	}

	var (
		start  = time.Now()
		counts = make(map[string]int, len(nodes))
		owners = make([]string, len(keys))
		res    = result{strategy: s}
	)
	for i, key := range keys {
		id, ok := b.PickID(key)
		if !ok {
			res.empty++
			continue
		}
		counts[id]++
		owners[i] = id
	}
	res.latency = time.Since(start)

	var total int
	for _, n := range nodes {
		if !n.Down || s == balancer.ConsistentHashStrategy {
			total += n.Weight
		}
	}
	res.share = make(map[string]float64, len(nodes))
	var variance float64
	for _, n := range nodes {
		res.share[n.ID] = pct(counts[n.ID], len(keys))

		var exp float64
		if total > 0 && (!n.Down || s == balancer.ConsistentHashStrategy) {
			exp = float64(len(keys)) * float64(n.Weight) / float64(total)
		}
		variance += math.Pow(float64(counts[n.ID])-exp, 2)
	}
	if len(nodes) > 0 {
		variance /= float64(len(nodes))
		res.stddev = math.Sqrt(variance) / float64(len(keys)) * 100
	}

	if s == balancer.ConsistentHashStrategy && len(nodes) > 1 {
		if err := b.RemoveNode(nodes[0].ID); err != nil {
			return nil, err
		}
		var moved int
		for i, key := range keys {
			id, _ := b.PickID(key)
			if owners[i] != nodes[0].ID && id != owners[i] {
				return nil, fmt.Errorf(
					"key %q moved from %q to %q after removal of %q",
					key, owners[i], id, nodes[0].ID,
				)
			}
			if id != owners[i] {
				moved++
			}
		}
		res.relocated = pct(moved, len(keys))
	}

	return &res, nil
}

func pct(n, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(n) / float64(total) * 100
}

func hashFunc(name string) (func() hash.Hash64, error) {
	switch name {
	case "", "xxhash":
		return nil, nil
	case "murmur3":
		return func() hash.Hash64 {
			return murmur3.New64()
		}, nil
	case "fnv":
		return fnv.New64a, nil
	case "md5":
		return func() hash.Hash64 {
			return newHash64(md5.New())
		}, nil
	default:
		return nil, fmt.Errorf("unexpected hash function: %q", name)
	}
}

type hash64 struct {
	hash.Hash
}

func newHash64(h hash.Hash) hash.Hash64 {
	return &hash64{Hash: h}
}

func (h *hash64) Sum64() uint64 {
	if h.Size() < 8 {
		panic("too small hash")
	}
	sum := h.Sum(nil)
	return binary.LittleEndian.Uint64(sum)
}
