package cli

import (
	"github.com/sebastienferry/mongo-zbx/internal/pkg/config"
	"github.com/sebastienferry/mongo-zbx/internal/pkg/log"
	"github.com/sebastienferry/mongo-zbx/internal/pkg/provision"
	"github.com/sebastienferry/mongo-zbx/internal/pkg/replset"
	"github.com/sebastienferry/mongo-zbx/internal/pkg/zabbix"
	"github.com/spf13/cobra"
)

var provisionFlagKeys = flagKeys{
	"zabbix-server": "zabbix.server",
	"zabbix-url":    "zabbix.url",
	"user":          "zabbix.user",
	"password":      "zabbix.password",
	"mongo-host":    "mongo.host",
	"template":      "provision.template_file",
	"template-name": "provision.template_name",
	"group":         "provision.group",
	"host-name":     "host.name",
	"prefix":        "host.prefix",
	"members":       "provision.members",
}

func newProvisionCmd(deps *Deps) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "provision",
		Short: "Import the MongoDB template and register the monitored host(s) in Zabbix",
		Example: "  mongo-zbx provision -z <zabbix_server_ip> -u <zabbix_user> -p <zabbix_password> -m <mongodb_ip>\n" +
			"  mongo-zbx provision -z <zabbix_server_ip> --members repl.json",
		Args: noArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runProvision(cmd, deps)
		},
	}

	flags := cmd.Flags()
	flags.StringP("zabbix-server", "z", "", "Zabbix server address")
	flags.String("zabbix-url", "", "Zabbix API url, overrides the one derived from the server address")
	flags.StringP("user", "u", "Admin", "Zabbix user")
	flags.StringP("password", "p", "zabbix", "Zabbix password")
	flags.StringP("mongo-host", "m", "", "ip of the mongod to register")
	flags.StringP("template", "t", "./mongo_standalone.xml", "template definition to import")
	flags.String("template-name", "Template DB MongoDB", "name of the imported template")
	flags.String("group", "Mongodb Standalone", "host group of the registered host(s)")
	flags.String("host-name", "mongo_server", "name of the registered host")
	flags.String("members", "", "register every member of this replica set file instead of a single host")
	flags.String("prefix", "repl_", "name prefix of the replica set member hosts")
	return cmd
}

func runProvision(cmd *cobra.Command, deps *Deps) error {
	cfg, err := loadConfig(cmd, deps, provisionFlagKeys)
	if err != nil {
		return err
	}
	defer writeMetrics(cfg)

	if cfg.Zabbix.Server == "" && cfg.Zabbix.URL == "" {
		return usageErrorf(cmd.CommandPath(), "missing the Zabbix server address (-z)")
	}
	if cfg.Mongo.Host == "" && cfg.Provision.Members == "" {
		return usageErrorf(cmd.CommandPath(), "missing the MongoDB address (-m) or the members file (--members)")
	}

	hosts, err := provisionTargets(cfg)
	if err != nil {
		return err
	}

	api := deps.NewZabbix(zabbix.Endpoint(cfg.Zabbix.Server, cfg.Zabbix.URL))
	report, err := provision.Run(cmd.Context(), api, provision.Options{
		User:         cfg.Zabbix.User,
		Password:     cfg.Zabbix.Password,
		TemplateFile: cfg.Provision.TemplateFile,
		TemplateName: cfg.Provision.TemplateName,
		Group:        cfg.Provision.Group,
		Hosts:        hosts,
	})
	if report != nil {
		report.Render(deps.Out)
	}
	if err != nil {
		return err
	}

	if report.Passed() {
		log.Info("provisioning completed")
	} else {
		log.Error("provisioning failed, see the report above")
	}
	return nil
}

// provisionTargets lists the hosts to register: the single mongod, or one
// host per replica set member.
func provisionTargets(cfg *config.AppConfig) ([]provision.HostTarget, error) {
	if cfg.Provision.Members == "" {
		return []provision.HostTarget{{Name: cfg.Host.Name, IP: cfg.Mongo.Host}}, nil
	}

	members, err := replset.LoadMembers(cfg.Provision.Members)
	if err != nil {
		return nil, err
	}
	hosts := make([]provision.HostTarget, 0, len(members))
	for _, m := range members {
		hosts = append(hosts, provision.HostTarget{Name: m.HostName(cfg.Host.Prefix), IP: m.IP})
	}
	return hosts, nil
}
