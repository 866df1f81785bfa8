package discovery

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestConfigDefaults(t *testing.T) {
	a := NewAdvertiser(Config{})

	assert.Equal(t, ServiceType, a.config.Service)
	assert.Equal(t, 120*time.Second, a.config.TTL)
	assert.Equal(t, 5*time.Second, a.config.RetryInterval)
	assert.NotNil(t, a.config.Logger)
}

func TestConfigOverrides(t *testing.T) {
	a := NewAdvertiser(Config{
		Service:       "_test._udp",
		TTL:           30 * time.Second,
		RetryInterval: time.Second,
	})

	assert.Equal(t, "_test._udp", a.config.Service)
	assert.Equal(t, 30*time.Second, a.config.TTL)
	assert.Equal(t, time.Second, a.config.RetryInterval)
}

func TestWithdrawWithoutAdvertise(t *testing.T) {
	a := NewAdvertiser(Config{})

	// Must return immediately with nothing in flight.
	done := make(chan struct{})
	go func() {
		a.Withdraw()
		a.Withdraw()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Withdraw blocked with no advertisement")
	}
}
