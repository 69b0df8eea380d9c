// Adapters that run representation-specific operations on any buffer
package bridge

import (
	"fmt"
	"sync/atomic"

	log "github.com/sirupsen/logrus"

	"generic-imaging/internal/pixel"
)

// Op transforms a buffer of the adapter's input kind into a new buffer.
type Op func(src pixel.Buffer) (pixel.Buffer, error)

// ConsumerOp mutates a buffer of the adapter's kind in place.
type ConsumerOp func(dst pixel.Buffer) error

// Function adapts an Op so it accepts any representation and returns the
// output factory's representation. Buffers are converted only when kinds
// differ, and only buffers allocated here are released here.
type Function struct {
	op     Op
	in     pixel.Factory
	out    pixel.Factory
	copies atomic.Int64
}

// NewFunction wraps op, which expects buffers from in, so that its results
// are delivered as buffers from out.
func NewFunction(op Op, in, out pixel.Factory) *Function {
	return &Function{op: op, in: in, out: out}
}

// Copies is the number of full-buffer copies performed so far.
func (f *Function) Copies() int64 {
	return f.copies.Load()
}

// Apply runs the wrapped operation on src.
func (f *Function) Apply(src pixel.Buffer) (pixel.Buffer, error) {
	var owned pixel.Buffer
	work := src
	if src.Kind() != f.in.Kind() {
		log.WithFields(log.Fields{
			"from": src.Kind(),
			"to":   f.in.Kind(),
		}).Debug("converting input buffer")

		converted, err := pixel.CreateCopy(src, f.in)
		if err != nil {
			return nil, fmt.Errorf("converting input to %s: %w", f.in.Kind(), err)
		}
		f.copies.Add(1)
		owned = converted
		work = converted
	}

	res, err := f.op(work)
	if err != nil {
		if owned != nil {
			owned.Release()
		}
		return nil, err
	}

	if res.Kind() == f.out.Kind() {
		if owned != nil && res != owned {
			owned.Release()
		}
		return res, nil
	}

	out, err := pixel.CreateCopy(res, f.out)
	if res != src {
		res.Release()
	}
	if owned != nil && owned != res {
		owned.Release()
	}
	if err != nil {
		return nil, fmt.Errorf("converting result to %s: %w", f.out.Kind(), err)
	}
	f.copies.Add(1)
	return out, nil
}

// Consumer adapts a ConsumerOp so that mutations land on the caller's
// buffer whatever its representation.
type Consumer struct {
	op      ConsumerOp
	factory pixel.Factory
	copies  atomic.Int64
}

// NewConsumer wraps op, which expects buffers from factory.
func NewConsumer(op ConsumerOp, factory pixel.Factory) *Consumer {
	return &Consumer{op: op, factory: factory}
}

// Copies is the number of full-buffer copies performed so far.
func (c *Consumer) Copies() int64 {
	return c.copies.Load()
}

// Accept runs the wrapped operation against dst.
func (c *Consumer) Accept(dst pixel.Buffer) error {
	if dst.Kind() == c.factory.Kind() {
		return c.op(dst)
	}

	work, err := pixel.CreateCopy(dst, c.factory)
	if err != nil {
		return fmt.Errorf("converting buffer to %s: %w", c.factory.Kind(), err)
	}
	defer work.Release()
	c.copies.Add(1)

	if err := c.op(work); err != nil {
		return err
	}

	if err := pixel.CopyTo(work, dst); err != nil {
		return fmt.Errorf("copying result back: %w", err)
	}
	c.copies.Add(1)
	return nil
}
