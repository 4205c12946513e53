package http

import (
	"bufio"
	"runtime"
	"sync/atomic"

	"github.com/pkg/errors"
)

var (
	ErrFull  = errors.New("ring buffer is full")
	ErrEmpty = errors.New("ring buffer is empty")

	ErrPoolExhausted = errors.New("http: connection limit reached")
)

// ConnPool hands out the MaxConns connection contexts allocated when the
// server is created, so buffer memory is fixed up front.
type ConnPool struct {
	contexts [MaxConns]RequestCtx
	ready    RingBuffer[*RequestCtx]
}

func NewConnPool() *ConnPool {
	pool := &ConnPool{}
	pool.ready = NewRingBuffer[*RequestCtx]()
	for i := range pool.contexts {
		pool.contexts[i].ConnReader = bufio.NewReaderSize(nil, DefaultReadBufferSize)
		pool.contexts[i].ConnWriter = bufio.NewWriterSize(nil, DefaultWriteBufferSize)
		pool.ready.Enqueue(&pool.contexts[i])
	}
	return pool
}

func (pool *ConnPool) Acquire() (*RequestCtx, error) {
	reqCtx, err := pool.ready.Dequeue()
	if err != nil {
		return nil, ErrPoolExhausted
	}
	return reqCtx, nil
}

func (pool *ConnPool) Release(reqCtx *RequestCtx) {
	reqCtx.release()
	pool.ready.Enqueue(reqCtx)
}

type RingBuffer[T any] struct {
	buffer [MaxConns]slot[T]
	mask   uint64
	enqPos uint64
	deqPos uint64
}

type slot[T any] struct {
	sequence uint64
	value    T
}

func NewRingBuffer[T any]() RingBuffer[T] {
	var buf [MaxConns]slot[T]
	for i := range buf {
		buf[i].sequence = uint64(i)
	}
	return RingBuffer[T]{
		buffer: buf,
		mask:   MaxConns - 1,
	}
}

func (q *RingBuffer[T]) Enqueue(val T) error {
	for {
		pos := atomic.LoadUint64(&q.enqPos)
		slot := &q.buffer[pos&q.mask]

		seq := atomic.LoadUint64(&slot.sequence)
		delta := int64(seq) - int64(pos)

		if delta == 0 {
			if atomic.CompareAndSwapUint64(&q.enqPos, pos, pos+1) {
				slot.value = val
				atomic.StoreUint64(&slot.sequence, pos+1)
				return nil
			}
		} else if delta < 0 {
			return ErrFull
		} else {
			runtime.Gosched()
		}
	}
}

func (q *RingBuffer[T]) Dequeue() (T, error) {
	var zero T
	for {
		pos := atomic.LoadUint64(&q.deqPos)
		slot := &q.buffer[pos&q.mask]

		seq := atomic.LoadUint64(&slot.sequence)
		delta := int64(seq) - int64(pos+1)

		if delta == 0 {
			if atomic.CompareAndSwapUint64(&q.deqPos, pos, pos+1) {
				val := slot.value
				atomic.StoreUint64(&slot.sequence, pos+q.mask+1)
				return val, nil
			}
		} else if delta < 0 {
			return zero, ErrEmpty
		} else {
			runtime.Gosched()
		}
	}
}
