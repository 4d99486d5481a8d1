package app

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRunOrAbandonWaitsForCallback(t *testing.T) {
	ran := false
	runOrAbandon(func(fn func()) { go fn() }, func() { ran = true }, make(chan struct{}))
	assert.True(t, ran)
}

func TestRunOrAbandonReturnsOnceStopped(t *testing.T) {
	stopped := make(chan struct{})
	queued := make(chan func(), 1)
	returned := make(chan struct{})

	go func() {
		runOrAbandon(func(fn func()) { queued <- fn }, func() {}, stopped)
		close(returned)
	}()
	<-queued
	close(stopped)

	select {
	case <-returned:
	case <-time.After(time.Second):
		t.Fatal("runOrAbandon kept waiting after the toolkit stopped")
	}
}

func TestStoppedHostSkipsWork(t *testing.T) {
	h := &fyneHost{stopped: make(chan struct{})}
	h.stop()
	h.stop()

	ran := false
	h.Do(func() { ran = true })
	assert.False(t, ran)
}
