package influxdb

import (
	"context"
	"fmt"
	"time"

	"github.com/shadabshaukat/DELTAV2/pkg/plugin"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	api "github.com/influxdata/influxdb-client-go/v2/api"
)

const (
	measurement  = "latency"
	writeTimeout = 5 * time.Second
)

type InfluxOutput struct {
	client   influxdb2.Client
	writeAPI api.WriteAPIBlocking
}

func init() {
	plugin.RegisterOutput("influxdb", New)
}

func New(cfg plugin.OutputConfig) (plugin.Output, error) {
	if cfg.URL == "" || cfg.Bucket == "" {
		return nil, plugin.NewError(plugin.KindConfig, "influxdb", "new_output", fmt.Errorf("url and bucket are required"))
	}
	client := influxdb2.NewClient(cfg.URL, cfg.Token)
	writeAPI := client.WriteAPIBlocking(cfg.Org, cfg.Bucket)
	return &InfluxOutput{client: client, writeAPI: writeAPI}, nil
}

func (o *InfluxOutput) Name() string { return "influxdb" }
func (o *InfluxOutput) Start() error { return nil }

func (o *InfluxOutput) Send(s plugin.Sample) error {
	point := influxdb2.NewPointWithMeasurement(measurement).
		AddTag("backend", s.Backend).
		AddField("value", s.Duration).
		SetTime(s.Timestamp)
	if s.Metadata.SID != "" {
		point.AddField("sid", s.Metadata.SID)
	}
	if s.Metadata.Instance != "" {
		point.AddTag("instance", s.Metadata.Instance)
	}

	ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
	defer cancel()
	if err := o.writeAPI.WritePoint(ctx, point); err != nil {
		return fmt.Errorf("influx write: %w", err)
	}
	return nil
}

func (o *InfluxOutput) Stop() error {
	o.client.Close()
	return nil
}
