package statsd

import (
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newUDPListener(t *testing.T) (net.PacketConn, string) {
	t.Helper()
	conn, err := net.ListenPacket("udp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn, conn.LocalAddr().String()
}

func readPacket(t *testing.T, conn net.PacketConn) string {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	buf := make([]byte, 1024)
	n, _, err := conn.ReadFrom(buf)
	require.NoError(t, err)
	return string(buf[:n])
}

func TestClientCount(t *testing.T) {
	conn, addr := newUDPListener(t)

	client, err := NewClient(Config{
		Enabled:    true,
		Address:    addr,
		Prefix:     "promptline.",
		GlobalTags: map[string]string{"env": "test"},
	})
	require.NoError(t, err)
	defer func() { _ = client.Close() }()

	client.Count("job.transition", 1, map[string]string{"result": "success"})

	assert.Equal(t, "promptline.job.transition:1|c|#env:test,result:success", readPacket(t, conn))
}

func TestClientTiming(t *testing.T) {
	conn, addr := newUDPListener(t)

	client, err := NewClient(Config{Enabled: true, Address: addr})
	require.NoError(t, err)
	defer func() { _ = client.Close() }()

	client.Timing("job.duration", 1500*time.Millisecond, nil)

	assert.Equal(t, "job.duration:1500|ms", readPacket(t, conn))
}

func TestDisabledClientDropsMetrics(t *testing.T) {
	client, err := NewClient(Config{Enabled: false, Address: "localhost:8125"})
	require.NoError(t, err)

	// Must not panic or dial anything.
	client.Count("job.transition", 1, nil)
	require.NoError(t, client.Close())
}

func TestLocalTagsOverrideGlobal(t *testing.T) {
	conn, addr := newUDPListener(t)

	client, err := NewClient(Config{
		Enabled:    true,
		Address:    addr,
		GlobalTags: map[string]string{"result": "unknown"},
	})
	require.NoError(t, err)
	defer func() { _ = client.Close() }()

	client.Count("job.transition", 1, map[string]string{"result": "error"})

	assert.Equal(t, "job.transition:1|c|#result:error", readPacket(t, conn))
}
