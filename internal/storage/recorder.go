package storage

import (
	"context"
	"errors"

	"github.com/san-kum/sphsim/internal/dynamo"
)

// Source is the receiving side of a snapshot stream.
type Source interface {
	Receive(ctx context.Context) (dynamo.Snapshot, error)
}

// Recorder is a consumer that keeps every n-th snapshot in memory until the
// producer finishes. The zero value keeps every snapshot.
type Recorder struct {
	every    int
	frames   []dynamo.Snapshot
	received uint64
}

func NewRecorder(every int) *Recorder {
	if every < 1 {
		every = 1
	}
	return &Recorder{every: every}
}

// Consume drains src until the producer is gone. That is the normal way to
// finish and yields a nil error.
func (r *Recorder) Consume(ctx context.Context, src Source) error {
	every := uint64(max(r.every, 1))
	for {
		snap, err := src.Receive(ctx)
		if errors.Is(err, dynamo.ErrProducerGone) {
			return nil
		}
		if err != nil {
			return err
		}
		if r.received%every == 0 {
			r.frames = append(r.frames, snap)
		}
		r.received++
	}
}

func (r *Recorder) Every() int { return max(r.every, 1) }

func (r *Recorder) Frames() []dynamo.Snapshot { return r.frames }
func (r *Recorder) Received() uint64          { return r.received }
