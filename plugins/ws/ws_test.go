package ws

import (
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/shadabshaukat/DELTAV2/pkg/plugin"
	"github.com/stretchr/testify/require"
)

func TestNew_RequiresListen(t *testing.T) {
	_, err := New(plugin.OutputConfig{Type: "ws"})
	require.Error(t, err)
	require.Equal(t, plugin.KindConfig, plugin.KindOf(err))
}

func TestWSOutput_Broadcast(t *testing.T) {
	out, err := New(plugin.OutputConfig{Type: "ws", Listen: "127.0.0.1:0"})
	require.NoError(t, err)
	w := out.(*WSOutput)
	require.NoError(t, w.Start())
	defer w.Stop()

	conn, _, err := websocket.DefaultDialer.Dial("ws://"+w.Addr()+"/ws", nil)
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool { return w.clientCount() == 1 }, 2*time.Second, 10*time.Millisecond)

	sample := plugin.Sample{
		Backend:   "oracle",
		Timestamp: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
		Duration:  3.5,
		Metadata:  plugin.Metadata{SID: "42", Instance: "1"},
	}
	require.NoError(t, w.Send(sample))

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var got plugin.Sample
	require.NoError(t, conn.ReadJSON(&got))
	require.Equal(t, sample.Backend, got.Backend)
	require.Equal(t, sample.Duration, got.Duration)
	require.Equal(t, sample.Metadata, got.Metadata)
	require.True(t, sample.Timestamp.Equal(got.Timestamp))
}

func TestWSOutput_ClientGone(t *testing.T) {
	out, err := New(plugin.OutputConfig{Type: "ws", Listen: "127.0.0.1:0"})
	require.NoError(t, err)
	w := out.(*WSOutput)
	require.NoError(t, w.Start())
	defer w.Stop()

	conn, _, err := websocket.DefaultDialer.Dial("ws://"+w.Addr()+"/ws", nil)
	require.NoError(t, err)
	require.Eventually(t, func() bool { return w.clientCount() == 1 }, 2*time.Second, 10*time.Millisecond)
	conn.Close()

	require.Eventually(t, func() bool { return w.clientCount() == 0 }, 2*time.Second, 10*time.Millisecond)
	require.NoError(t, w.Send(plugin.Sample{Backend: "url", Duration: 1}))
}

func TestWSOutput_StopWithoutStart(t *testing.T) {
	out, err := New(plugin.OutputConfig{Type: "ws", Listen: "127.0.0.1:0"})
	require.NoError(t, err)
	require.NoError(t, out.Stop())
}
