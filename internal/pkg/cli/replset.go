package cli

import (
	"github.com/sebastienferry/mongo-zbx/internal/pkg/log"
	"github.com/sebastienferry/mongo-zbx/internal/pkg/mdb"
	"github.com/sebastienferry/mongo-zbx/internal/pkg/probe"
	"github.com/sebastienferry/mongo-zbx/internal/pkg/replset"
	"github.com/spf13/cobra"
)

var replSetFlagKeys = flagKeys{
	"zabbix-server": "zabbix.server",
	"members":       "replset.members",
	"prefix":        "host.prefix",
	"user":          "mongo.user",
	"password":      "mongo.password",
	"auth-source":   "mongo.auth_source",
	"timeout":       "mongo.server_selection_timeout",
	"sender":        "sender.path",
	"sender-port":   "sender.port",
}

func newReplSetCmd(deps *Deps) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "replset",
		Short:   "Poll every member of a replica set and relay their status to Zabbix",
		Example: "  mongo-zbx replset -z <zabbix_server_ip> -c repl.json",
		Args:    noArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReplSet(cmd, deps)
		},
	}

	flags := cmd.Flags()
	flags.StringP("zabbix-server", "z", "", "Zabbix server address")
	flags.StringP("members", "c", "repl.json", "file listing the replica set members")
	flags.String("prefix", "repl_", "name prefix of the member hosts in Zabbix")
	flags.StringP("user", "u", "", "MongoDB user, used for the data bearing members")
	flags.StringP("password", "d", "", "MongoDB password")
	flags.String("auth-source", "admin", "MongoDB authentication database")
	flags.Duration("timeout", mdb.DefaultSelectionTTL, "MongoDB server selection timeout")
	flags.String("sender", "zabbix_sender", "path of the zabbix_sender binary")
	flags.Int("sender-port", 0, "Zabbix trapper port, 0 keeps the zabbix_sender default")
	return cmd
}

func runReplSet(cmd *cobra.Command, deps *Deps) error {
	cfg, err := loadConfig(cmd, deps, replSetFlagKeys)
	if err != nil {
		return err
	}
	defer writeMetrics(cfg)

	if cfg.Zabbix.Server == "" {
		return usageErrorf(cmd.CommandPath(), "missing the Zabbix server address (-z)")
	}

	members, err := replset.LoadMembers(cfg.ReplSet.Members)
	if err != nil {
		return err
	}
	log.InfoWithFields("members loaded", log.Fields{"file": cfg.ReplSet.Members, "count": len(members)})

	ctx := cmd.Context()
	registry := mdb.NewRegistry(mongoOptions(cfg), deps.NewMongo)
	defer registry.Close(ctx)

	p := probe.NewProbe(deps.NewRelay(cfg.Sender.Path, cfg.Zabbix.Server, cfg.Sender.Port))
	results, err := replset.Run(ctx, members, registry.Reader, p, cfg.Host.Prefix)
	for _, r := range results {
		fields := log.Fields{"host": r.Host, "address": r.Member.Address(), "role": r.Member.Role}
		if r.Skipped {
			fields["outcome"] = "skipped"
		} else {
			fields["outcome"] = r.Outcome.String()
		}
		log.InfoWithFields("member processed", fields)
	}
	if err != nil {
		log.WarnWithFields("replica set probe completed with errors", log.Fields{"error": err})
	}
	return nil
}
