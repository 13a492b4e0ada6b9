package jitter

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestJitterBounds(t *testing.T) {
	tests := []struct {
		name string
		max  time.Duration
	}{
		{"default wait", 2 * time.Second},
		{"tiny wait", time.Nanosecond},
		{"millisecond wait", time.Millisecond},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			j := New(tt.max, 7)
			for i := 0; i < 1000; i++ {
				d := j.Next()
				assert.GreaterOrEqual(t, d, time.Duration(0))
				assert.Less(t, d, tt.max)
			}
		})
	}
}

func TestJitterNonPositive(t *testing.T) {
	assert.Zero(t, New(0, 1).Next())
	assert.Zero(t, New(-time.Second, 1).Next())
	assert.Zero(t, NewRandom(0).Next())
}

func TestJitterSeeded(t *testing.T) {
	a := New(time.Second, 42)
	b := New(time.Second, 42)
	c := New(time.Second, 43)

	var sameAsC int
	for i := 0; i < 100; i++ {
		da, db, dc := a.Next(), b.Next(), c.Next()
		assert.Equal(t, da, db, "equal seeds yield equal sequences")
		if da == dc {
			sameAsC++
		}
	}
	assert.Less(t, sameAsC, 100, "different seeds should diverge")
}
