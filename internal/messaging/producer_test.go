package messaging_test

import (
	"testing"
	"time"

	"mechanic-service/internal/messaging"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEvent(t *testing.T) {
	before := time.Now().UTC()
	event := messaging.NewEvent("customer", "created", 7)

	assert.Equal(t, "customer", event.Entity)
	assert.Equal(t, "created", event.Action)
	assert.Equal(t, 7, event.ID)
	assert.False(t, event.At.Before(before))
}

func TestProducerCloseWithoutConnection(t *testing.T) {
	// shutdown must tolerate a producer whose connection never came up
	p := &messaging.Producer{}
	require.NoError(t, p.Close())
}
