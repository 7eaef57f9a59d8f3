package csv

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"

	"github.com/shadabshaukat/DELTAV2/pkg/plugin"
)

// Header is the first row of every file written by the csv output.
var Header = []string{"Timestamp", "Query time (ms)", "SID", "Instance"}

// TimestampFormat is the local wall-clock layout of the Timestamp column.
const TimestampFormat = "2006-01-02 15:04:05"

// Output writes one row per sample and flushes it before Send returns, so a
// reader tailing the file sees every completed iteration.
type Output struct {
	path   string
	file   *os.File
	writer *csv.Writer
}

func init() {
	plugin.RegisterOutput("csv", New)
}

func New(cfg plugin.OutputConfig) (plugin.Output, error) {
	if cfg.Path == "" {
		return nil, plugin.NewError(plugin.KindConfig, "csv", "new_output", fmt.Errorf("path is required"))
	}
	return &Output{path: cfg.Path}, nil
}

func (o *Output) Name() string { return "csv" }

// Start truncates the file and writes the header.
func (o *Output) Start() error {
	f, err := os.Create(o.path)
	if err != nil {
		return fmt.Errorf("failed to create csv file: %w", err)
	}
	o.file = f
	o.writer = csv.NewWriter(f)
	return o.write(Header)
}

func (o *Output) Send(s plugin.Sample) error {
	if o.writer == nil {
		return fmt.Errorf("csv output %s is not started", o.path)
	}
	return o.write(Row(s))
}

func (o *Output) Stop() error {
	if o.file == nil {
		return nil
	}
	o.writer.Flush()
	werr := o.writer.Error()
	cerr := o.file.Close()
	o.file, o.writer = nil, nil
	if werr != nil {
		return werr
	}
	return cerr
}

func (o *Output) write(record []string) error {
	if err := o.writer.Write(record); err != nil {
		return fmt.Errorf("failed to write csv record: %w", err)
	}
	o.writer.Flush()
	if err := o.writer.Error(); err != nil {
		return fmt.Errorf("failed to flush csv record: %w", err)
	}
	return nil
}

// Row renders a sample as a four-column record. Missing metadata is left
// blank.
func Row(s plugin.Sample) []string {
	return []string{
		s.Timestamp.Local().Format(TimestampFormat),
		strconv.FormatFloat(s.Duration, 'f', -1, 64),
		s.Metadata.SID,
		s.Metadata.Instance,
	}
}
