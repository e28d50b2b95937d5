package sportsdata

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSubscribeDeduplicatesFixtureIDs(t *testing.T) {
	client := NewOddsStreamClient("ws://example/odds", "key", nil, testLogger())

	client.Subscribe([]int64{1, 2, 3})
	client.Subscribe([]int64{2, 3, 4})
	client.Subscribe([]int64{1, 2, 3, 4})

	assert.Equal(t, []int64{1, 2, 3, 4}, client.subscriptions,
		"repeated subscription cycles must not grow the list")
}
