// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package ring

import (
	"code.hybscloud.com/iox"
	"code.hybscloud.com/spin"
	"go.uber.org/zap"
)

// ConsumerBare is the minimal, logging-free consumer handle: a position
// into the queue and the version that position is expected to carry. Each
// consumer goroutine owns an independent ConsumerBare: there is no shared
// consumer-side state, which is what lets any number of consumers read
// the same queue without coordinating with each other.
type ConsumerBare[T any] struct {
	queue           *Queue[T]
	pos             uint64
	expectedVersion uint64
}

// NewConsumerBare returns a handle positioned at the start of q. Starting
// at zero means a consumer attached after a producer has already lapped
// the queue will immediately observe [ErrSpedPast] on its first read;
// each [ConsumerBare.Recover] then raises its expected version by one lap
// until it matches the slot's current lap.
func NewConsumerBare[T any](q *Queue[T]) *ConsumerBare[T] {
	return &ConsumerBare[T]{queue: q, expectedVersion: version(0, q.header.Capacity())}
}

// updatePos advances the handle to the next slot, bumping the expected
// version by one lap's worth every time pos wraps back to zero mod
// capacity.
func (c *ConsumerBare[T]) updatePos() {
	c.pos++
	if c.pos&c.queue.header.mask == 0 {
		c.expectedVersion += 2
	}
}

// TryConsume reads the slot at the handle's current position into out,
// advancing the handle on success. It returns [ErrEmpty] if the producer
// has not yet reached this position, or [ErrSpedPast] if the producer
// lapped past it: in the latter case the handle is left in place so the
// caller can decide whether to [ConsumerBare.Recover] or retry.
func (c *ConsumerBare[T]) TryConsume(out *T) error {
	cell := c.queue.cellAt(c.pos)
	if err := cell.ReadWithVersion(out, c.expectedVersion); err != nil {
		return err
	}
	c.updatePos()
	return nil
}

// TryConsumeLast reads whichever slot the producer most recently
// completed, ignoring the handle's own position entirely: useful for a
// "give me the latest value" consumer that does not care about every
// intermediate record. It does not advance the handle's position.
func (c *ConsumerBare[T]) TryConsumeLast(out *T) error {
	latest := c.queue.header.count.LoadAcquire()
	if latest == 0 {
		return ErrEmpty
	}
	cell := c.queue.cellAt(latest - 1)
	_, _, err := cell.ReadCopyIfUpdated(0)
	if err != nil {
		return err
	}
	return cell.Read(out)
}

// Recover raises the handle's expected version by one lap (+2) and leaves
// its position unchanged. Call this after observing [ErrSpedPast] and
// retry: a handle more than one lap behind sees [ErrSpedPast] again and
// needs another Recover. Records overwritten in the meantime are lost.
func (c *ConsumerBare[T]) Recover() {
	c.expectedVersion += 2
}

// BlockingConsume spins until a record is available, escalating through
// [spin.Wait] and then [iox.Backoff] the longer the queue stays empty, and
// auto-recovering on [ErrSpedPast] since a blocking caller wants the next
// record, not a stale one it already lost.
func (c *ConsumerBare[T]) BlockingConsume(out *T) {
	sw := spin.Wait{}
	backoff := iox.Backoff{}
	spins := 0
	for {
		err := c.TryConsume(out)
		if err == nil {
			return
		}
		if IsSpedPast(err) {
			c.Recover()
			continue
		}
		spins++
		if spins < 1024 {
			sw.Once()
			continue
		}
		backoff.Wait()
	}
}

// Consumer wraps [ConsumerBare] with an optional logger for observing
// sped-past events instead of silently recovering from them.
type Consumer[T any] struct {
	bare      ConsumerBare[T]
	shouldLog bool
	logger    *zap.Logger
}

// NewConsumer returns a logging-aware Consumer bound to q. logger may be
// nil; SetLogging(true) with a nil logger is a no-op.
func NewConsumer[T any](q *Queue[T], logger *zap.Logger) *Consumer[T] {
	return &Consumer[T]{bare: *NewConsumerBare[T](q), logger: logger}
}

// SetLogging toggles whether a sped-past event is logged before the
// consumer recovers forward.
func (c *Consumer[T]) SetLogging(enabled bool) { c.shouldLog = enabled }

// Consume drains every currently-available record through f, returning
// the number of records handled. It recovers automatically from
// [ErrSpedPast], optionally logging it first.
func (c *Consumer[T]) Consume(f func(T)) int {
	n := 0
	var msg T
	for {
		err := c.bare.TryConsume(&msg)
		if err == nil {
			f(msg)
			n++
			continue
		}
		if IsSpedPast(err) {
			c.logAndRecover()
			continue
		}
		return n
	}
}

// ConsumeLast delivers only the most recently produced record, if any has
// been produced, without disturbing the handle's streaming position.
func (c *Consumer[T]) ConsumeLast(f func(T)) bool {
	var msg T
	if err := c.bare.TryConsumeLast(&msg); err != nil {
		return false
	}
	f(msg)
	return true
}

// ConsumeFiltered is like [Consumer.Consume] but only invokes f for
// records that satisfy predicate; records that do not are still consumed
// (the position still advances) so the consumer does not stall behind a
// record it intends to skip.
func (c *Consumer[T]) ConsumeFiltered(predicate func(*T) bool, f func(T)) int {
	n := 0
	var msg T
	for {
		err := c.bare.TryConsume(&msg)
		if err == nil {
			if predicate(&msg) {
				f(msg)
				n++
			}
			continue
		}
		if IsSpedPast(err) {
			c.logAndRecover()
			continue
		}
		return n
	}
}

func (c *Consumer[T]) logAndRecover() {
	if c.shouldLog && c.logger != nil {
		c.logger.Warn("ring: consumer sped past", zap.Uint64("pos", c.bare.pos))
	}
	c.bare.Recover()
}

// Bare exposes the underlying logging-free handle, for callers that want
// to mix logged and bare operations on the same position.
func (c *Consumer[T]) Bare() *ConsumerBare[T] { return &c.bare }
