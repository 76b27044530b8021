package audioconvert

// queue is a FIFO of buffer slots ready to be filled. It never allocates.
type queue struct {
	ids  [MaxBuffers]uint32
	head int
	n    int
}

func (q *queue) reset() {
	q.head, q.n = 0, 0
}

func (q *queue) len() int {
	return q.n
}

func (q *queue) push(id uint32) {
	q.ids[(q.head+q.n)%MaxBuffers] = id
	q.n++
}

func (q *queue) pop() (uint32, bool) {
	if q.n == 0 {
		return 0, false
	}
	id := q.ids[q.head]
	q.head = (q.head + 1) % MaxBuffers
	q.n--
	return id, true
}

// queueBuffer makes a slot available again. A slot is queued at most once.
func (p *port) queueBuffer(id uint32) {
	b := &p.buffers[id]
	if b.flags&bufferQueued != 0 {
		return
	}
	p.queue.push(id)
	b.flags |= bufferQueued
}

func (p *port) dequeueBuffer() (uint32, bool) {
	id, ok := p.queue.pop()
	if ok {
		p.buffers[id].flags &^= bufferQueued
	}
	return id, ok
}
