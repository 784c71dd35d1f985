package hub

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeFrame(t *testing.T) {
	frame, err := EncodeFrame(map[string]any{"type": "ping", "n": 1})
	require.NoError(t, err)
	assert.Equal(t, "data: {\"n\":1,\"type\":\"ping\"}\n\n", string(frame))
}

func TestEncodeFrame_Unserializable(t *testing.T) {
	_, err := EncodeFrame(make(chan int))
	assert.Error(t, err)
}

func TestNewCommentEvent(t *testing.T) {
	at := time.Date(2026, 10, 16, 12, 0, 0, 0, time.UTC)
	ev := NewCommentEvent(map[string]string{"text": "great"}, at)

	assert.Equal(t, "new_comment", ev.Type)
	assert.Equal(t, "2026-10-16T12:00:00Z", ev.Timestamp)

	frame, err := EncodeFrame(ev)
	require.NoError(t, err)
	assert.Equal(t,
		"data: {\"type\":\"new_comment\",\"data\":{\"text\":\"great\"},\"timestamp\":\"2026-10-16T12:00:00Z\"}\n\n",
		string(frame))
}
