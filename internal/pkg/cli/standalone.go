package cli

import (
	"github.com/sebastienferry/mongo-zbx/internal/pkg/config"
	"github.com/sebastienferry/mongo-zbx/internal/pkg/log"
	"github.com/sebastienferry/mongo-zbx/internal/pkg/mdb"
	"github.com/sebastienferry/mongo-zbx/internal/pkg/probe"
	"github.com/spf13/cobra"
)

var standaloneFlagKeys = flagKeys{
	"zabbix-server": "zabbix.server",
	"mongo-host":    "mongo.host",
	"port":          "mongo.port",
	"user":          "mongo.user",
	"password":      "mongo.password",
	"auth-source":   "mongo.auth_source",
	"timeout":       "mongo.server_selection_timeout",
	"host-name":     "host.name",
	"sender":        "sender.path",
	"sender-port":   "sender.port",
}

func newStandaloneCmd(deps *Deps) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "standalone",
		Short:   "Poll an authenticated standalone mongod and relay its status to Zabbix",
		Example: "  mongo-zbx standalone -z <zabbix_server_ip> -m <mongodb_ip> -p <mongodb_port> -u <mongodb_user> -d <mongodb_password>",
		Args:    noArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStandalone(cmd, deps)
		},
	}

	flags := cmd.Flags()
	flags.StringP("zabbix-server", "z", "", "Zabbix server address")
	flags.StringP("mongo-host", "m", "", "ip of the mongod")
	flags.IntP("port", "p", 27017, "port of the mongod")
	flags.StringP("user", "u", "", "MongoDB user")
	flags.StringP("password", "d", "", "MongoDB password")
	flags.String("auth-source", "admin", "MongoDB authentication database")
	flags.Duration("timeout", mdb.DefaultSelectionTTL, "MongoDB server selection timeout")
	flags.String("host-name", "mongo_server", "name of the host in Zabbix")
	flags.String("sender", "zabbix_sender", "path of the zabbix_sender binary")
	flags.Int("sender-port", 0, "Zabbix trapper port, 0 keeps the zabbix_sender default")
	return cmd
}

func runStandalone(cmd *cobra.Command, deps *Deps) error {
	cfg, err := loadConfig(cmd, deps, standaloneFlagKeys)
	if err != nil {
		return err
	}
	defer writeMetrics(cfg)

	switch {
	case cfg.Zabbix.Server == "":
		return usageErrorf(cmd.CommandPath(), "missing the Zabbix server address (-z)")
	case cfg.Mongo.Host == "":
		return usageErrorf(cmd.CommandPath(), "missing the MongoDB address (-m)")
	case cfg.Mongo.Port <= 0:
		return usageErrorf(cmd.CommandPath(), "invalid MongoDB port (-p) %d", cfg.Mongo.Port)
	case cfg.Mongo.User == "":
		return usageErrorf(cmd.CommandPath(), "missing the MongoDB user (-u)")
	case cfg.Mongo.Password == "":
		return usageErrorf(cmd.CommandPath(), "missing the MongoDB password (-d)")
	}

	ctx := cmd.Context()
	registry := mdb.NewRegistry(mongoOptions(cfg), deps.NewMongo)
	defer registry.Close(ctx)

	p := probe.NewProbe(deps.NewRelay(cfg.Sender.Path, cfg.Zabbix.Server, cfg.Sender.Port))
	outcome, err := p.ProcessMongod(ctx, registry.Reader(cfg.MongoAddress()), cfg.Host.Name)

	fields := log.Fields{"host": cfg.Host.Name, "address": cfg.MongoAddress(), "outcome": outcome.String()}
	if err != nil {
		fields["error"] = err
		log.WarnWithFields("probe completed with errors", fields)
		return nil
	}
	log.InfoWithFields("probe completed", fields)
	return nil
}

// mongoOptions is the connection template shared by every probed instance.
func mongoOptions(cfg *config.AppConfig) mdb.Options {
	return mdb.Options{
		User:                   cfg.Mongo.User,
		Password:               cfg.Mongo.Password,
		AuthSource:             cfg.Mongo.AuthSource,
		ServerSelectionTimeout: cfg.Mongo.ServerSelectionTimeout,
	}
}
