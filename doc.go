/*
Package balancer implements node selection strategies for callers such as
reverse proxies, RPC clients or cluster routers.

On each call a balancer picks which of the registered nodes should handle the
next unit of work. There are four interchangeable strategies:

	RoundRobin     - nodes in insertion order, one after another;
	Random         - random start, first up node from there;
	SmoothWeighted - nginx-style smooth weighted round robin;
	Ring           - consistent hashing of a request key.

Balancer wraps any of them behind one contract. Nothing here does network
I/O or health checking: callers report liveness by marking nodes down.

Selection never fails with an error. When there is nothing to select (no
nodes registered, or all of them are down) the result is simply nil. Errors
are returned only for configuration faults: duplicate identifiers
(ErrDuplicateKey), unknown identifiers (ErrNotFound) and non-positive weights
(ErrInvalidParameter).

New panics on an unknown Strategy, so it is meant for strategies chosen at
compile time. Strategies coming from runtime input (flags, config files)
should go through ParseStrategy, or TryNew which returns an error instead.

Unless stated otherwise, strategy types are not safe for concurrent use. Ring
is the exception: it is goroutine safe and its reads block only for the time
needed to load the current tree root. AtomicRoundRobin allows concurrent
Next() calls, but only while the node set is not being mutated.
*/
package balancer
