package cli

import (
	"io"
	"net/http"
	"os"
	"time"

	"github.com/sebastienferry/mongo-zbx/internal/pkg/interfaces"
	"github.com/sebastienferry/mongo-zbx/internal/pkg/mdb"
	"github.com/sebastienferry/mongo-zbx/internal/pkg/sender"
	"github.com/sebastienferry/mongo-zbx/internal/pkg/zabbix"
)

const HttpTimeout = 30 * time.Second

// ZabbixClient is the part of the Zabbix API the commands use.
type ZabbixClient interface {
	interfaces.ZabbixAPI
	interfaces.Versioner
}

// Deps holds the collaborators of the commands, swapped in tests.
type Deps struct {
	Out io.Writer
	Err io.Writer

	NewZabbix func(endpoint string) ZabbixClient
	NewRelay  func(path string, server string, port int) interfaces.Relay
	NewMongo  mdb.Factory
}

func DefaultDeps() *Deps {
	return &Deps{
		Out: os.Stdout,
		Err: os.Stderr,
		NewZabbix: func(endpoint string) ZabbixClient {
			return zabbix.NewClient(endpoint, &http.Client{Timeout: HttpTimeout})
		},
		NewRelay: func(path string, server string, port int) interfaces.Relay {
			return sender.NewSender(path, server, port)
		},
		NewMongo: mdb.DefaultFactory,
	}
}
