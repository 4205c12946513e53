package http

import (
	"io"
	"iter"
)

// ChunkProducer yields a body one chunk at a time. Next returns io.EOF
// once exhausted. Producers are finite and cannot be restarted; those that
// also implement io.Closer are closed once the encoder is done with them.
type ChunkProducer interface {
	Next() ([]byte, error)
}

type ProducerFunc func() ([]byte, error)

func (f ProducerFunc) Next() ([]byte, error) {
	return f()
}

type sliceProducer struct {
	chunks [][]byte
}

// Chunks produces the given chunks in order.
func Chunks(chunks ...[]byte) ChunkProducer {
	return &sliceProducer{chunks: chunks}
}

func (p *sliceProducer) Next() ([]byte, error) {
	if len(p.chunks) == 0 {
		return nil, io.EOF
	}

	chunk := p.chunks[0]
	p.chunks = p.chunks[1:]
	return chunk, nil
}

type seqProducer struct {
	next func() ([]byte, bool)
	stop func()
}

// FromSeq adapts an iterator into a ChunkProducer.
func FromSeq(seq iter.Seq[[]byte]) ChunkProducer {
	next, stop := iter.Pull(seq)
	return &seqProducer{next: next, stop: stop}
}

func (p *seqProducer) Next() ([]byte, error) {
	chunk, ok := p.next()
	if !ok {
		p.stop()
		return nil, io.EOF
	}
	return chunk, nil
}

func (p *seqProducer) Close() error {
	p.stop()
	return nil
}

func closeProducer(p ChunkProducer) error {
	if closer, ok := p.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}
