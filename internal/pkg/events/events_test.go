package events

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingRecorder map[string]int

func (r countingRecorder) RecordEvent(eventType string) { r[eventType]++ }

func TestSubjectPrefix(t *testing.T) {
	p := &NATSPublisher{prefix: "mentorbridge"}
	assert.Equal(t, "mentorbridge.messages.sent", p.Subject(MessageSent))

	p.prefix = ""
	assert.Equal(t, "messages.sent", p.Subject(MessageSent))
}

func TestLogPublisherRecords(t *testing.T) {
	rec := countingRecorder{}
	p := NewLogPublisher(rec, zerolog.Nop())

	require.NoError(t, p.Publish(context.Background(), ConnectionAccepted, nil))
	require.NoError(t, p.Publish(context.Background(), ConnectionAccepted, nil))
	assert.Equal(t, 2, rec[ConnectionAccepted])
	assert.NoError(t, p.Close())
}

func TestRecordingPublisher(t *testing.T) {
	p := &RecordingPublisher{}
	require.NoError(t, p.Publish(context.Background(), MessageSent, map[string]string{"id": "1"}))
	require.NoError(t, p.Publish(context.Background(), MessagesRead, nil))

	assert.Equal(t, []string{MessageSent, MessagesRead}, p.Types())
	assert.Equal(t, map[string]string{"id": "1"}, p.Events()[0].Data)
}
