package gc

// grayQueue is a LIFO of pending headers, threaded through Header.grayNext
// rather than a parallel slice. Stack discipline only requires eventual
// drainage, and an intrusive link avoids a second allocation per marked
// object, reusing a struct field that's otherwise idle outside marking.
type grayQueue struct {
	top *Header
}

func (q *grayQueue) push(h *Header) {
	h.grayNext = q.top
	q.top = h
}

func (q *grayQueue) pop() *Header {
	h := q.top
	if h != nil {
		q.top = h.grayNext
		h.grayNext = nil
	}
	return h
}

func (q *grayQueue) empty() bool { return q.top == nil }
