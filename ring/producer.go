// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package ring

// Producer is a handle a single goroutine uses to publish records into a
// Queue. It tracks whether it has produced yet so that its very first
// write goes through [Queue.ProduceFirst], matching the discipline a
// producer attaching to a shared-memory region it did not itself create
// must follow. On an SPMC queue that first write is poison-tolerant; on
// an MPMC queue it is the same CAS-based claim every other write uses,
// since poison-tolerance there would race concurrent producers (see
// [Queue.ProduceFirst]).
type Producer[T any] struct {
	queue        *Queue[T]
	producedOnce bool
}

// NewProducer returns a handle bound to q.
func NewProducer[T any](q *Queue[T]) *Producer[T] {
	return &Producer[T]{queue: q}
}

// Produce publishes data, using [Queue.ProduceFirst] the first time this
// handle is used and [Queue.Produce] afterward.
func (p *Producer[T]) Produce(data *T) {
	if !p.producedOnce {
		p.queue.ProduceFirst(data)
		p.producedOnce = true
		return
	}
	p.queue.Produce(data)
}

// Queue returns the underlying queue.
func (p *Producer[T]) Queue() *Queue[T] { return p.queue }
