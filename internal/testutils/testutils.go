// Package testutils provides simplified testing utilities and helper functions
package testutils

import (
	"math/rand"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// Default polling settings for asynchronous assertions
const (
	EventuallyTimeout = 5 * time.Second
	EventuallyTick    = 5 * time.Millisecond
)

// Gate blocks tasks until the test opens it
type Gate struct {
	ch   chan struct{}
	once sync.Once
}

// NewGate creates a closed gate
func NewGate() *Gate {
	return &Gate{ch: make(chan struct{})}
}

// Wait blocks until the gate is opened
func (g *Gate) Wait() {
	<-g.ch
}

// Open releases every current and future waiter
func (g *Gate) Open() {
	g.once.Do(func() { close(g.ch) })
}

// RandomInts returns n values in [0, maxValue) from a seeded source
func RandomInts(n, maxValue int, seed int64) []int {
	rng := rand.New(rand.NewSource(seed))
	values := make([]int, n)
	for i := range values {
		values[i] = rng.Intn(maxValue)
	}
	return values
}

// SumRange sums values[start:end]
func SumRange(values []int, start, end int) int {
	sum := 0
	for _, v := range values[start:end] {
		sum += v
	}
	return sum
}

// AssertEventually waits for condition with the default timeout and tick
func AssertEventually(t testing.TB, condition func() bool, msgAndArgs ...interface{}) bool {
	t.Helper()
	return assert.Eventually(t, condition, EventuallyTimeout, EventuallyTick, msgAndArgs...)
}
