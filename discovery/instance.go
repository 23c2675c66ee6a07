package discovery

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/haydenhayden/projectzen/consts"
)

// Instance describes this server on the local network.
type Instance struct {
	ID         string            `json:"id"`
	Name       string            `json:"name"`
	Properties map[string]string `json:"properties,omitempty"`
}

// NewInstance names the instance after name, or the hostname when name is empty.
// The TXT record carries the instance id, the feed path and the build identity.
func NewInstance(name string) Instance {
	if name == "" {
		name, _ = os.Hostname()
	}
	if name == "" {
		name = consts.AppName
	}
	id := uuid.NewSHA1(uuid.NameSpaceDNS, []byte(name)).String()
	return Instance{
		ID:   id,
		Name: name,
		Properties: map[string]string{
			"id":   id,
			"path": FeedPath,
			"gc":   consts.GitCommit,
			"gr":   consts.GitRepo,
		},
	}
}

func propertiesAsTXT(p map[string]string) (txt []string) {
	for k, v := range p {
		txt = append(txt, fmt.Sprintf("%s=%s", k, v))
	}
	sort.Strings(txt)
	return
}

func propertiesFromTXT(txt []string) (p map[string]string) {
	p = make(map[string]string)
	for _, kv := range txt {
		parts := strings.SplitN(kv, "=", 2)
		if parts[0] == "" {
			continue
		}
		if len(parts) == 2 {
			p[parts[0]] = parts[1]
		} else {
			p[parts[0]] = ""
		}
	}
	return
}
