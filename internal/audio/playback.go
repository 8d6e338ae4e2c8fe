package audio

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
)

// PlaybackBuffer queues PCM bytes for one utterance. The playback callback
// drains it; once closed and empty it reports Drained.
type PlaybackBuffer struct {
	mu      sync.Mutex
	data    []byte
	closed  bool
	drained chan struct{}
	once    sync.Once
}

var _ io.WriteCloser = (*PlaybackBuffer)(nil)

func NewPlaybackBuffer() *PlaybackBuffer {
	return &PlaybackBuffer{drained: make(chan struct{})}
}

func (b *PlaybackBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return 0, io.ErrClosedPipe
	}
	b.data = append(b.data, p...)

	return len(p), nil
}

// Close marks the end of the utterance.
func (b *PlaybackBuffer) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.closed = true
	if len(b.data) == 0 {
		b.markDrained()
	}

	return nil
}

// Reset discards queued audio and ends the utterance immediately.
func (b *PlaybackBuffer) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.data = nil
	b.closed = true
	b.markDrained()
}

// Fill copies queued audio into out and pads the remainder with silence.
func (b *PlaybackBuffer) Fill(out []byte) {
	b.mu.Lock()
	defer b.mu.Unlock()

	n := copy(out, b.data)
	b.data = b.data[n:]
	clear(out[n:])

	if b.closed && len(b.data) == 0 {
		b.markDrained()
	}
}

// Drained is closed once every queued byte has been played.
func (b *PlaybackBuffer) Drained() <-chan struct{} {
	return b.drained
}

func (b *PlaybackBuffer) markDrained() {
	b.once.Do(func() { close(b.drained) })
}

// Player plays one PCM stream at a time through a lazily allocated
// playback device.
type Player struct {
	conf DeviceConfig

	devMu  sync.Mutex
	device *Device

	// curMu is the only lock taken on the audio thread
	curMu   sync.Mutex
	current *PlaybackBuffer
}

func NewPlayer(conf DeviceConfig) *Player {
	return &Player{conf: conf}
}

// Play streams S16LE mono PCM from r and blocks until it has been heard or
// ctx is cancelled. A newer Play cuts off an older one.
func (p *Player) Play(ctx context.Context, r io.Reader) error {
	buf := NewPlaybackBuffer()
	p.swap(buf)
	defer p.release(buf)

	if err := p.start(ctx); err != nil {
		return err
	}

	copyErr := make(chan error, 1)
	go func() {
		_, err := io.Copy(buf, r)
		_ = buf.Close()
		copyErr <- err
	}()

	select {
	case <-buf.Drained():
	case <-ctx.Done():
		buf.Reset()
		return ctx.Err()
	}

	if err := <-copyErr; err != nil && !errors.Is(err, io.ErrClosedPipe) {
		return fmt.Errorf("streaming audio: %w", err)
	}

	return nil
}

// Close cuts off playback and releases the device.
func (p *Player) Close() error {
	p.swap(nil)

	p.devMu.Lock()
	defer p.devMu.Unlock()

	if p.device != nil {
		p.device.Dealloc(context.Background())
		p.device = nil
	}

	return nil
}

func (p *Player) start(ctx context.Context) error {
	p.devMu.Lock()
	defer p.devMu.Unlock()

	if p.device == nil {
		dev := NewDevice(p.conf)
		if err := dev.Playback(ctx, p.fill); err != nil {
			return err
		}
		p.device = dev
	}

	return p.device.Start(ctx)
}

// swap makes buf the stream being played, ending the previous one.
func (p *Player) swap(buf *PlaybackBuffer) {
	p.curMu.Lock()
	defer p.curMu.Unlock()

	if p.current != nil {
		p.current.Reset()
	}
	p.current = buf
}

func (p *Player) release(buf *PlaybackBuffer) {
	p.curMu.Lock()
	defer p.curMu.Unlock()

	if p.current == buf {
		p.current = nil
	}
}

// fill runs on the audio thread.
func (p *Player) fill(out []byte) {
	p.curMu.Lock()
	buf := p.current
	p.curMu.Unlock()

	if buf == nil {
		clear(out)
		return
	}

	buf.Fill(out)
}
