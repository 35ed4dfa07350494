package nats

import (
	"context"
	"errors"
	"testing"

	"github.com/nats-io/nats.go/jetstream"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStream struct {
	subject string
	payload []byte
	err     error
}

func (f *fakeStream) Publish(_ context.Context, subject string, payload []byte, _ ...jetstream.PublishOpt) (*jetstream.PubAck, error) {
	f.subject = subject
	f.payload = payload
	if f.err != nil {
		return nil, f.err
	}
	return &jetstream.PubAck{Stream: "CATALOG", Sequence: 1}, nil
}

type testEvent struct {
	payload []byte
	err     error
}

func (e testEvent) Subject() string          { return "catalog.test" }
func (e testEvent) Payload() ([]byte, error) { return e.payload, e.err }

func TestNatsPublisher_Publish(t *testing.T) {
	ErrBroker := errors.New("broker down")
	ErrPayload := errors.New("bad payload")
	testCases := []struct {
		name        string
		stream      *fakeStream
		event       testEvent
		expectError error
	}{
		{
			name:   "Success - event published",
			stream: &fakeStream{},
			event:  testEvent{payload: []byte(`{"id":1}`)},
		},
		{
			name:        "Error - broker error",
			stream:      &fakeStream{err: ErrBroker},
			event:       testEvent{payload: []byte(`{"id":1}`)},
			expectError: ErrBroker,
		},
		{
			name:        "Error - payload error",
			stream:      &fakeStream{},
			event:       testEvent{err: ErrPayload},
			expectError: ErrPayload,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// given
			publisher := &NatsPublisher{js: tc.stream}
			// when
			err := publisher.Publish(context.Background(), tc.event)
			// then
			if tc.expectError != nil {
				assert.ErrorIs(t, err, tc.expectError)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "catalog.test", tc.stream.subject)
			assert.Equal(t, tc.event.payload, tc.stream.payload)
		})
	}
}
