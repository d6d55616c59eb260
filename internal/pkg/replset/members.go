package replset

import (
	"fmt"
	"net"
	"os"
	"strconv"

	"gopkg.in/yaml.v2"
)

const (
	RoleArbiter    = "arbiter"
	RoleNotArbiter = "not arbiter"

	DefaultPort = 27017
)

type Member struct {
	IP   string `json:"ip" yaml:"ip"`
	Port int    `json:"port" yaml:"port"`
	// "arbiter" or "not arbiter"
	Role string `json:"role" yaml:"role"`
}

// Address is the host:port the member is reached at.
func (m Member) Address() string {
	port := m.Port
	if port == 0 {
		port = DefaultPort
	}
	return net.JoinHostPort(m.IP, strconv.Itoa(port))
}

// HostName is the name of the member in Zabbix.
func (m Member) HostName(prefix string) string {
	return prefix + m.IP
}

func (m Member) IsArbiter() bool {
	return m.Role == RoleArbiter
}

type membersFile struct {
	Members []Member `json:"members" yaml:"members"`
}

// ParseMembers decodes a member list. JSON being a subset of YAML, both
// formats are accepted.
func ParseMembers(data []byte) ([]Member, error) {
	var file membersFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("error decoding members: %w", err)
	}
	return file.Members, nil
}

// LoadMembers reads the member list from path.
func LoadMembers(path string) ([]Member, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading members file %s: %w", path, err)
	}
	members, err := ParseMembers(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return members, nil
}
