package sender

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"

	"github.com/sebastienferry/mongo-zbx/internal/pkg/log"
	"github.com/sebastienferry/mongo-zbx/internal/pkg/metrics"
)

const DefaultPath = "zabbix_sender"

// Sender relays item values through the zabbix_sender binary,
// one process per value.
type Sender struct {
	// Path of the zabbix_sender binary
	Path string
	// Zabbix server address (-z)
	Server string
	// Zabbix trapper port (-p), 0 keeps the sender default
	Port int
}

func NewSender(path string, server string, port int) *Sender {
	if path == "" {
		path = DefaultPath
	}
	return &Sender{
		Path:   path,
		Server: server,
		Port:   port,
	}
}

// Args builds the command line for one value.
func (s *Sender) Args(host string, key string, value string) []string {
	args := []string{"-z", s.Server}
	if s.Port > 0 {
		args = append(args, "-p", strconv.Itoa(s.Port))
	}
	return append(args, "-s", host, "-k", key, "-o", value)
}

// Send runs zabbix_sender for a single value. Only the exit status is
// interpreted; the output is logged as is.
func (s *Sender) Send(ctx context.Context, host string, key string, value string) error {
	var out bytes.Buffer
	cmd := exec.CommandContext(ctx, s.Path, s.Args(host, key, value)...)
	cmd.Stdout = &out
	cmd.Stderr = &out

	err := cmd.Run()
	metrics.SenderValuesTotal.WithLabelValues(key, metrics.Result(err)).Inc()

	output := strings.TrimSpace(out.String())
	if output != "" {
		log.Debug(output)
	}

	fields := log.Fields{"host": host, "key": key, "value": value}
	if log.IsDebug() {
		fields["command"] = cmd.String()
	}
	if err != nil {
		fields["error"] = err
		log.ErrorWithFields("failed to send", fields)
		return fmt.Errorf("error sending %s for %s: %w", key, host, err)
	}
	log.InfoWithFields("send successfully", fields)
	return nil
}
