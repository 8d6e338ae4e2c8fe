// Package channels has small generic helpers for channel plumbing between
// goroutines that must never block each other for long.
package channels

import (
	"errors"
	"time"
)

var (
	ErrChannelClosed  = errors.New("channel closed")
	ErrChannelTimeout = errors.New("send timeout")
	ErrChannelFull    = errors.New("channel full")
)

// SendNonBlock attempts to send a message without blocking.
// Returns error if the channel is full or closed.
func SendNonBlock[T any](ch chan<- T, msg T) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = ErrChannelClosed
		}
	}()

	select {
	case ch <- msg:
		return nil
	default:
		return ErrChannelFull
	}
}

// SendWithTimeout sends a message with a timeout.
// Returns error if the timeout expires or channel is closed.
func SendWithTimeout[T any](ch chan<- T, msg T, timeout time.Duration) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = ErrChannelClosed
		}
	}()

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case ch <- msg:
		return nil
	case <-timer.C:
		return ErrChannelTimeout
	}
}

// Drain returns every message currently buffered in ch without blocking.
func Drain[T any](ch <-chan T) []T {
	var out []T
	for {
		select {
		case msg, ok := <-ch:
			if !ok {
				return out
			}
			out = append(out, msg)
		default:
			return out
		}
	}
}

// Latest returns the most recent buffered message in ch, or first when
// nothing newer is waiting.
func Latest[T any](ch <-chan T, first T) T {
	msgs := Drain(ch)
	if len(msgs) == 0 {
		return first
	}
	return msgs[len(msgs)-1]
}
