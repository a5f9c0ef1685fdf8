package types

import (
	"github.com/hashicorp/go-set/v3"
)

// DefaultMaxDepth bounds recursion in subtype checking and instantiation.
// Pathological recursive generics (`type T<X> = T<Box<X>>`) fail closed at
// this depth instead of overflowing the stack.
const DefaultMaxDepth = 100

type handlePair struct {
	s, t Handle
}

type recursionOutcome int

const (
	recursionEntered recursionOutcome = iota
	recursionCycle
	recursionDepthExceeded
)

// recursionGuard combines pair-wise cycle detection (coinduction) with a
// depth bound. A revisited pair is a closed loop in the type graph and counts
// as valid recursion; exceeding the depth bound is expansive recursion and
// fails closed.
type recursionGuard struct {
	visiting *set.Set[handlePair]
	depth    int
	maxDepth int
	exceeded bool
}

func newRecursionGuard(maxDepth int) recursionGuard {
	if maxDepth <= 0 {
		maxDepth = DefaultMaxDepth
	}
	return recursionGuard{visiting: set.New[handlePair](16), maxDepth: maxDepth}
}

func (g *recursionGuard) enter(p handlePair) recursionOutcome {
	if g.visiting.Contains(p) {
		return recursionCycle
	}
	if g.depth >= g.maxDepth {
		g.exceeded = true
		return recursionDepthExceeded
	}
	g.visiting.Insert(p)
	g.depth++
	return recursionEntered
}

func (g *recursionGuard) leave(p handlePair) {
	g.visiting.Remove(p)
	g.depth--
}

func (g *recursionGuard) reset() {
	g.visiting = set.New[handlePair](16)
	g.depth = 0
	g.exceeded = false
}
