package cli

import (
	"errors"

	healthgo "github.com/hellofresh/health-go/v5"
	"github.com/sebastienferry/mongo-zbx/internal/pkg/health"
	"github.com/sebastienferry/mongo-zbx/internal/pkg/mdb"
	"github.com/sebastienferry/mongo-zbx/internal/pkg/zabbix"
	"github.com/spf13/cobra"
)

var ErrCheckFailed = errors.New("some checks failed")

var checkFlagKeys = flagKeys{
	"zabbix-server": "zabbix.server",
	"zabbix-url":    "zabbix.url",
	"mongo-host":    "mongo.host",
	"port":          "mongo.port",
	"timeout":       "mongo.server_selection_timeout",
	"sender":        "sender.path",
}

func newCheckCmd(deps *Deps) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "check",
		Short:   "Check that Zabbix, MongoDB and zabbix_sender are usable",
		Example: "  mongo-zbx check -z <zabbix_server_ip> -m <mongodb_ip> -p <mongodb_port>",
		Args:    noArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(cmd, deps)
		},
	}

	flags := cmd.Flags()
	flags.StringP("zabbix-server", "z", "", "Zabbix server address")
	flags.String("zabbix-url", "", "Zabbix API url, overrides the one derived from the server address")
	flags.StringP("mongo-host", "m", "", "ip of a mongod to ping, skipped when empty")
	flags.IntP("port", "p", 27017, "port of the mongod")
	flags.Duration("timeout", mdb.DefaultSelectionTTL, "MongoDB server selection timeout")
	flags.String("sender", "zabbix_sender", "path of the zabbix_sender binary")
	return cmd
}

func runCheck(cmd *cobra.Command, deps *Deps) error {
	cfg, err := loadConfig(cmd, deps, checkFlagKeys)
	if err != nil {
		return err
	}
	defer writeMetrics(cfg)

	if cfg.Zabbix.Server == "" && cfg.Zabbix.URL == "" {
		return usageErrorf(cmd.CommandPath(), "missing the Zabbix server address (-z)")
	}

	ctx := cmd.Context()
	checks := []healthgo.Config{
		health.ZabbixCheck(deps.NewZabbix(zabbix.Endpoint(cfg.Zabbix.Server, cfg.Zabbix.URL))),
	}
	if cfg.Mongo.Host != "" {
		registry := mdb.NewRegistry(mongoOptions(cfg), deps.NewMongo)
		defer registry.Close(ctx)
		checks = append(checks, health.MongoCheck(registry.Get(cfg.MongoAddress()), health.MongoTimeout(cfg.Mongo.ServerSelectionTimeout)))
	}
	checks = append(checks, health.SenderCheck(cfg.Sender.Path))

	checker, err := health.NewChecker(Version, checks...)
	if err != nil {
		return err
	}
	result := checker.Run(ctx)
	result.Render(deps.Out)
	if !result.OK() {
		return ErrCheckFailed
	}
	return nil
}
