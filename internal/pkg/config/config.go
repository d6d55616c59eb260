package config

import (
	"fmt"
	"net"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/sebastienferry/mongo-zbx/internal/pkg/log"
	"github.com/spf13/viper"
)

// Environment variables are read as MONGO_ZBX_<SECTION>_<KEY>,
// e.g. MONGO_ZBX_ZABBIX_SERVER.
const EnvPrefix = "MONGO_ZBX"

type LoggingConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
}

type ZabbixConfig struct {
	// Address of the Zabbix server (ip or ip:port)
	Server string `mapstructure:"server" yaml:"server"`
	// Full API endpoint, overrides the one derived from Server
	URL      string `mapstructure:"url" yaml:"url"`
	User     string `mapstructure:"user" yaml:"user"`
	Password string `mapstructure:"password" yaml:"password"`
}

type MongoConfig struct {
	Host       string `mapstructure:"host" yaml:"host"`
	Port       int    `mapstructure:"port" yaml:"port"`
	User       string `mapstructure:"user" yaml:"user"`
	Password   string `mapstructure:"password" yaml:"password"`
	AuthSource string `mapstructure:"auth_source" yaml:"auth_source"`
	// How long the driver waits for a reachable server
	ServerSelectionTimeout time.Duration `mapstructure:"server_selection_timeout" yaml:"server_selection_timeout"`
}

type SenderConfig struct {
	// Path of the zabbix_sender binary
	Path string `mapstructure:"path" yaml:"path"`
	// Trapper port of the Zabbix server, 0 keeps the sender default
	Port int `mapstructure:"port" yaml:"port"`
}

type HostConfig struct {
	// Name of the standalone host in Zabbix
	Name string `mapstructure:"name" yaml:"name"`
	// Prefix of the replica set member hosts, followed by the member ip
	Prefix string `mapstructure:"prefix" yaml:"prefix"`
}

type ProvisionConfig struct {
	TemplateFile string `mapstructure:"template_file" yaml:"template_file"`
	TemplateName string `mapstructure:"template_name" yaml:"template_name"`
	Group        string `mapstructure:"group" yaml:"group"`
	// When set, one host per member of this replica set file is registered
	Members string `mapstructure:"members" yaml:"members"`
}

type ReplSetConfig struct {
	// File listing the replica set members
	Members string `mapstructure:"members" yaml:"members"`
}

type AppConfig struct {
	Logging   LoggingConfig   `mapstructure:"logging" yaml:"logging"`
	Zabbix    ZabbixConfig    `mapstructure:"zabbix" yaml:"zabbix"`
	Mongo     MongoConfig     `mapstructure:"mongo" yaml:"mongo"`
	Sender    SenderConfig    `mapstructure:"sender" yaml:"sender"`
	Host      HostConfig      `mapstructure:"host" yaml:"host"`
	Provision ProvisionConfig `mapstructure:"provision" yaml:"provision"`
	ReplSet   ReplSetConfig   `mapstructure:"replset" yaml:"replset"`

	// Write the self-metrics to this file on exit (textfile collector format)
	MetricsFile string `mapstructure:"metrics_file" yaml:"metrics_file"`
}

var defaults = map[string]interface{}{
	"logging.level":                  log.InfoLevel,
	"logging.format":                 "text",
	"zabbix.server":                  "",
	"zabbix.url":                     "",
	"zabbix.user":                    "Admin",
	"zabbix.password":                "zabbix",
	"mongo.host":                     "",
	"mongo.port":                     27017,
	"mongo.user":                     "",
	"mongo.password":                 "",
	"mongo.auth_source":              "admin",
	"mongo.server_selection_timeout": 30 * time.Second,
	"sender.path":                    "zabbix_sender",
	"sender.port":                    0,
	"host.name":                      "mongo_server",
	"host.prefix":                    "repl_",
	"provision.template_file":        "./mongo_standalone.xml",
	"provision.template_name":        "Template DB MongoDB",
	"provision.group":                "Mongodb Standalone",
	"provision.members":              "",
	"replset.members":                "repl.json",
	"metrics_file":                   "",
}

// NewViper returns a viper instance carrying the defaults, the environment
// overrides and, when configFile is set, the content of that YAML file.
func NewViper(configFile string) (*viper.Viper, error) {
	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("error reading configuration file %s: %w", configFile, err)
		}
	}
	return v, nil
}

// Load decodes the settings held by v.
func Load(v *viper.Viper) (*AppConfig, error) {
	c := &AppConfig{}
	if err := v.Unmarshal(c); err != nil {
		return nil, fmt.Errorf("error decoding configuration: %w", err)
	}
	c.Zabbix.Server = strings.TrimSpace(c.Zabbix.Server)
	c.Mongo.Host = strings.TrimSpace(c.Mongo.Host)
	return c, nil
}

// MongoAddress is the host:port of the configured mongod.
func (c *AppConfig) MongoAddress() string {
	return net.JoinHostPort(c.Mongo.Host, strconv.Itoa(c.Mongo.Port))
}

func (c *AppConfig) LogConfig() {
	log.DebugWithFields("configuration", log.Fields{
		"zabbix.server":   c.Zabbix.Server,
		"zabbix.url":      ObfuscateCredentials(c.Zabbix.URL),
		"zabbix.user":     c.Zabbix.User,
		"zabbix.password": Mask(c.Zabbix.Password),
		"mongo.address":   c.MongoAddress(),
		"mongo.user":      c.Mongo.User,
		"mongo.password":  Mask(c.Mongo.Password),
		"sender.path":     c.Sender.Path,
		"host.name":       c.Host.Name,
		"host.prefix":     c.Host.Prefix,
	})
}

// Considering the following structure for a connection string:
// "<scheme>://<username>:<password>@<host>:<port>"
// The following function replaces the username and password with "****"
func ObfuscateCredentials(connectionString string) string {
	re := regexp.MustCompile(`^([a-zA-Z][a-zA-Z0-9+.-]*):\/\/([^:@\/]*):([^@\/]*)@`)
	if re.MatchString(connectionString) {
		return re.ReplaceAllString(connectionString, "$1://****:****@")
	}
	return connectionString
}

// Mask hides a secret while keeping visible whether it was set.
func Mask(secret string) string {
	if secret == "" {
		return ""
	}
	return "****"
}
