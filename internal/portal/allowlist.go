package portal

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// AllowList is the set of wallet addresses granted portal access. It is built
// once at startup and never mutated.
type AllowList struct {
	addrs map[string]struct{}
}

type adminsFile struct {
	AdminWallets []struct {
		Address string `yaml:"address" json:"address"`
	} `yaml:"adminWallets" json:"adminWallets"`
}

func NewAllowList(addresses ...string) *AllowList {
	a := &AllowList{addrs: make(map[string]struct{}, len(addresses))}
	for _, addr := range addresses {
		if key := normalize(addr); key != "" {
			a.addrs[key] = struct{}{}
		}
	}
	return a
}

// LoadAllowList reads an admins file. JSON files parse as YAML, so either
// format is accepted.
func LoadAllowList(path string) (*AllowList, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read admins file: %w", err)
	}

	var f adminsFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse admins file %s: %w", path, err)
	}

	addrs := make([]string, 0, len(f.AdminWallets))
	for _, w := range f.AdminWallets {
		addrs = append(addrs, w.Address)
	}
	return NewAllowList(addrs...), nil
}

func (a *AllowList) IsAdmin(address string) bool {
	key := normalize(address)
	if key == "" {
		return false
	}
	_, ok := a.addrs[key]
	return ok
}

func (a *AllowList) Len() int {
	return len(a.addrs)
}

func normalize(address string) string {
	return strings.ToLower(strings.TrimSpace(address))
}
