package crawl

// Queue is a FIFO of unique URLs. Taken URLs stay in the backing slice so
// All can report discovery order.
type Queue struct {
	order []string
	seen  map[string]struct{}
	head  int
}

func NewQueue() *Queue {
	return &Queue{seen: make(map[string]struct{})}
}

// Add enqueues u the first time it is seen. It reports whether u was new.
func (q *Queue) Add(u string) bool {
	if _, dup := q.seen[u]; dup {
		return false
	}
	q.seen[u] = struct{}{}
	q.order = append(q.order, u)
	return true
}

func (q *Queue) HasNext() bool { return q.head < len(q.order) }

// Next dequeues the oldest pending URL. Call HasNext first.
func (q *Queue) Next() string {
	u := q.order[q.head]
	q.head++
	return u
}

// Visited counts URLs taken with Next.
func (q *Queue) Visited() int { return q.head }

// Len counts unique URLs ever added.
func (q *Queue) Len() int { return len(q.order) }

// All returns every added URL in insertion order.
func (q *Queue) All() []string { return q.order }
