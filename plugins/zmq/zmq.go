//go:build zmq

package zmq

import (
	"encoding/json"
	"fmt"

	zmq "github.com/pebbe/zmq4"
	"github.com/shadabshaukat/DELTAV2/pkg/plugin"
)

// Topic prefixes every published frame.
const Topic = "delta"

// ZMQOutput publishes every sample as a two-frame message: topic, JSON body.
type ZMQOutput struct {
	endpoint string
	socket   *zmq.Socket
}

func init() {
	plugin.RegisterOutput("zmq", New)
}

func New(cfg plugin.OutputConfig) (plugin.Output, error) {
	if cfg.Listen == "" {
		return nil, plugin.NewError(plugin.KindConfig, "zmq", "new_output", fmt.Errorf("listen endpoint is required"))
	}
	return &ZMQOutput{endpoint: cfg.Listen}, nil
}

func (o *ZMQOutput) Name() string { return "zmq" }

func (o *ZMQOutput) Start() error {
	sock, err := zmq.NewSocket(zmq.PUB)
	if err != nil {
		return err
	}
	if err := sock.Bind(o.endpoint); err != nil {
		sock.Close()
		return fmt.Errorf("zmq bind %s: %w", o.endpoint, err)
	}
	o.socket = sock
	return nil
}

func (o *ZMQOutput) Send(s plugin.Sample) error {
	if o.socket == nil {
		return fmt.Errorf("zmq output %s is not started", o.endpoint)
	}
	b, err := json.Marshal(s)
	if err != nil {
		return err
	}
	_, err = o.socket.SendMessage(Topic, b)
	return err
}

func (o *ZMQOutput) Stop() error {
	if o.socket == nil {
		return nil
	}
	err := o.socket.Close()
	o.socket = nil
	return err
}
