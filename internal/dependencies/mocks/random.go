package mocks

import (
	"github.com/mcoot/letterstacks/internal/dependencies/random"
)

// queue hands out scripted values in order, then the zero value
type queue[T any] struct {
	values []T
	next   int
}

func (q *queue[T]) push(values ...T) {
	q.values = append(q.values, values...)
}

func (q *queue[T]) pop() (T, bool) {
	var zero T
	if q.next >= len(q.values) {
		return zero, false
	}
	v := q.values[q.next]
	q.next++
	return v, true
}

// MockRandom is a scripted Random for tests.
// Intn results are clamped into [0, n) so a stale script can never index out of range.
type MockRandom struct {
	ints    queue[int]
	strings queue[string]

	// Calls records the n passed to each Intn call
	Calls []int
}

var _ random.Random = (*MockRandom)(nil)

// NewMockRandom creates a MockRandom with nothing queued; every Intn returns 0
func NewMockRandom() *MockRandom {
	return &MockRandom{}
}

func (r *MockRandom) Intn(n int) int {
	r.Calls = append(r.Calls, n)
	v, ok := r.ints.pop()
	if !ok || n <= 0 {
		return 0
	}
	return min(max(v, 0), n-1)
}

func (r *MockRandom) String(length int, alphabet string) string {
	v, _ := r.strings.pop()
	return v
}

// QueueIntn scripts the next Intn results
func (r *MockRandom) QueueIntn(values ...int) {
	r.ints.push(values...)
}

// QueueString scripts the next String results
func (r *MockRandom) QueueString(values ...string) {
	r.strings.push(values...)
}
