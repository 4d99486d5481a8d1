package cancel

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestFlag(t *testing.T) {
	f := New()
	assert.False(t, f.IsSet())

	f.Set()
	f.Set()
	assert.True(t, f.IsSet())

	select {
	case <-f.Done():
	default:
		t.Fatal("Done not closed after Set")
	}
}

func TestNilFlag(t *testing.T) {
	var f *Flag
	assert.False(t, f.IsSet())
	assert.Nil(t, f.Done())
	f.Set()
}

func TestBindEndsWhenFlagSet(t *testing.T) {
	f := New()
	ctx, cancel := f.Bind(context.Background())
	defer cancel()

	f.Set()

	select {
	case <-ctx.Done():
	case <-time.After(time.Second):
		t.Fatal("bound context still alive after Set")
	}
}

func TestBindEndsWithParent(t *testing.T) {
	parent, stopParent := context.WithCancel(context.Background())
	ctx, cancel := New().Bind(parent)
	defer cancel()

	stopParent()

	select {
	case <-ctx.Done():
	case <-time.After(time.Second):
		t.Fatal("bound context still alive after parent cancel")
	}
}
