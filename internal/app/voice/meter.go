package voice

import (
	"context"
	"time"
)

// meter samples an audio stream at a fixed interval and reports its level.
type meter struct {
	cancel context.CancelFunc
	done   chan struct{}
	stream AudioStream
}

func startMeter(ctx context.Context, capture AudioCapture, interval time.Duration, onLevel func(int)) (*meter, error) {
	stream, err := capture.Open(ctx)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(ctx)
	m := &meter{
		cancel: cancel,
		done:   make(chan struct{}),
		stream: stream,
	}

	go func() {
		defer close(m.done)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if onLevel != nil {
					onLevel(Level(stream.ByteFrequencyData()))
				}
			}
		}
	}()

	return m, nil
}

// stop ends the sampling loop and then releases the stream.
func (m *meter) stop() {
	m.cancel()
	<-m.done
	_ = m.stream.Close()
}
