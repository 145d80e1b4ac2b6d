package main

import (
	"flag"
	"fmt"
	"math/rand"
	"net"
	"os"
	"runtime"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/gobwas/balancer"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

func main() {
	var (
		p          int    // Number of goroutines.
		n          int    // Number of requests.
		s          int    // Number of servers.
		replicas   int    // Ring points per unit of weight.
		strategies string // Comma-separated strategies list.
		hashName   string // Optional hash function name.
		configPath string // Optional node set file.
		csv        bool

		verbose bool
		silent  bool
	)
	flag.IntVar(&p,
		"parallelism", runtime.NumCPU(),
		"number of concurrent simulations",
	)
	flag.IntVar(&n,
		"requests", 1e5,
		"number of requests to spread across servers",
	)
	flag.IntVar(&s,
		"servers", 10,
		"number of servers when no config is given",
	)
	flag.IntVar(&replicas,
		"replicas", 0,
		"consistent hashing points per unit of weight",
	)
	flag.StringVar(&strategies,
		"strategies", "all",
		"comma-separated list of strategies to simulate",
	)
	flag.StringVar(&hashName,
		"hash", "",
		"consistent hashing function: xxhash, murmur3, fnv or md5",
	)
	flag.StringVar(&configPath,
		"config", "",
		"path to yaml file describing node set",
	)
	flag.BoolVar(&verbose,
		"v", false,
		"be verbose",
	)
	flag.BoolVar(&silent,
		"s", false,
		"be silent",
	)
	flag.BoolVar(&csv,
		"csv", false,
		"print csv instead of table",
	)

	flag.Parse()

	logger := zap.NewNop()
	if verbose {
		var err error
		logger, err = zap.NewDevelopment()
		if err != nil {
			fatalf("can't create logger: %v", err)
		}
	}
	defer logger.Sync()

	printf := func(f string, args ...interface{}) {
		if silent {
			return
		}
		fmt.Fprintf(os.Stderr, f, args...)
	}

	cfg := &config{
		Replicas: replicas,
	}
	if configPath != "" {
		var err error
		cfg, err = loadConfigFile(configPath)
		if err != nil {
			fatalf("can't load config: %v", err)
		}
		if replicas != 0 {
			cfg.Replicas = replicas
		}
	}
	if len(cfg.Nodes) == 0 {
		cfg.Nodes = randomNodes(s)
	}
	logger.Info("node set is ready", zap.Int("nodes", len(cfg.Nodes)))

	if len(cfg.Strategies) == 0 {
		var err error
		cfg.Strategies, err = parseStrategies(strategies)
		if err != nil {
			fatalf("%v", err)
		}
	}

	h, err := hashFunc(hashName)
	if err != nil {
		fatalf("%v", err)
	}

	keys := make([]string, n)
	for i := range keys {
		keys[i] = uuid.NewString()
	}
	logger.Info("requests are ready", zap.Int("requests", len(keys)))

	var (
		g       errgroup.Group
		results = make([]*result, len(cfg.Strategies))
	)
	g.SetLimit(p)
	for i, st := range cfg.Strategies {
		i, st := i, st
		g.Go(func() error {
			log := logger.With(zap.Stringer("strategy", st))
			log.Debug("simulation started")
			r, err := simulate(st, cfg.Nodes, keys,
				balancer.WithReplicas(cfg.Replicas),
				balancer.WithHash(h),
				balancer.WithLogger(log),
			)
			if err != nil {
				return fmt.Errorf("%s: %w", st, err)
			}
			log.Debug("simulation finished", zap.Duration("latency", r.latency))
			results[i] = r
			printf(".")
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		fatalf("simulation failed: %v", err)
	}
	printf("\n")

	tw := tabwriter.NewWriter(os.Stdout, 2, 2, 2, ' ', 0)
	for _, r := range results {
		if csv {
			fmt.Fprintf(tw,
				"%s,\t%.4f,\t%d,\t%.4f,\t%.2f\n",
				r.strategy, r.stddev, r.empty, r.relocated,
				r.latency.Seconds()*1000,
			)
			continue
		}
		fmt.Fprintf(tw, "%s\tstddev=%.2f%%\tempty=%d\trelocated=%.2f%%\tlatency=%s\n",
			r.strategy, r.stddev, r.empty, r.relocated, r.latency,
		)
		for _, nc := range cfg.Nodes {
			state := "up"
			if nc.Down {
				state = "down"
			}
			fmt.Fprintf(tw, "\t%s~%d\t%s\t%.2f%%\t\n",
				nc.ID, nc.Weight, state, r.share[nc.ID],
			)
		}
	}
	tw.Flush()

	printf("OK\n")
}

func parseStrategies(s string) ([]balancer.Strategy, error) {
	if s == "" || s == "all" {
		return []balancer.Strategy{
			balancer.RoundRobinStrategy,
			balancer.RandomStrategy,
			balancer.SmoothWeightedStrategy,
			balancer.ConsistentHashStrategy,
		}, nil
	}
	var ret []balancer.Strategy
	for _, name := range strings.Split(s, ",") {
		if strings.TrimSpace(name) == "" {
			continue
		}
		st, err := balancer.ParseStrategy(name)
		if err != nil {
			return nil, err
		}
		ret = append(ret, st)
	}
	return ret, nil
}

// randomNodes returns n nodes with distinct random IPv4 identifiers sorted
// lexicographically.
func randomNodes(n int) []nodeConfig {
	seen := make(map[string]bool, n)
	ret := make([]nodeConfig, 0, n)
	for len(ret) < n {
		var b [4]byte
		rand.Read(b[:])
		ip := net.IPv4(b[0], b[1], b[2], b[3]).String()
		if seen[ip] {
			continue
		}
		seen[ip] = true
		ret = append(ret, nodeConfig{
			ID:     ip,
			Weight: 1,
		})
	}
	sort.Slice(ret, func(i, j int) bool {
		return ret[i].ID < ret[j].ID
	})
	return ret
}

func fatalf(f string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, f+"\n", args...)
	os.Exit(1)
}
