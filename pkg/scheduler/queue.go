package scheduler

type queue[T comparable] []T

func (wq *queue[T]) Len() int { return len(*wq) }

func (wq *queue[T]) Pop() T {
	old := *wq
	x := old[0]
	var zero T
	old[0] = zero
	*wq = old[1:]
	return x
}

func (wq *queue[T]) Push(t T) {
	*wq = append(*wq, t)
}

// Remove deletes the first occurrence of t and reports whether it was found.
func (wq *queue[T]) Remove(t T) bool {
	for i, x := range *wq {
		if x == t {
			*wq = append((*wq)[:i], (*wq)[i+1:]...)
			return true
		}
	}
	return false
}

// Drain empties the queue and returns its content in order.
func (wq *queue[T]) Drain() []T {
	items := *wq
	*wq = nil
	return items
}
