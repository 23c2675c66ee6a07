// Package discovery advertises the feed server over mDNS and keeps track of the
// other feed servers seen on the local network.
package discovery

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/grandcat/zeroconf"
	"github.com/haydenhayden/projectzen/logging"
	"go.uber.org/zap"
)

const (
	ServiceName = "_projectzen._tcp"
	Domain      = "local."
	// FeedPath is where subscribers find the ICS feed.
	FeedPath = "/api/ics"

	browseInterval = 5 * time.Minute
)

// Peer is a feed server found on the network.
type Peer struct {
	Name       string            `json:"name"`
	ID         string            `json:"id"`
	URL        string            `json:"url"`
	Properties map[string]string `json:"properties,omitempty"`
	IsSelf     bool              `json:"self,omitempty"`
}

type Controller struct {
	instance Instance
	port     int

	peers    map[string]Peer
	peerLock sync.RWMutex
}

func NewController(instance Instance, port int) *Controller {
	return &Controller{
		instance: instance,
		port:     port,
		peers:    make(map[string]Peer),
	}
}

// ListenAndServe registers the service and browses for peers until ctx is done.
func (c *Controller) ListenAndServe(ctx context.Context) error {
	logger, ctx := logging.SubFrom(ctx, "discovery")
	server, err := zeroconf.Register(c.instance.Name, ServiceName, Domain, c.port, propertiesAsTXT(c.instance.Properties), nil)
	if err != nil {
		return fmt.Errorf("publishing mDNS service: %w", err)
	}
	defer server.Shutdown()
	logger.Info("mDNS service published",
		zap.String("instance", c.instance.Name),
		zap.String("service", ServiceName),
		zap.Int("port", c.port))

	for {
		if err := c.browse(ctx); err != nil {
			logger.Warn("Failed to browse mDNS services", zap.Error(err))
		}
		select {
		case <-ctx.Done():
			logger.Info("mDNS service withdrawn")
			return nil
		case <-time.After(browseInterval):
		}
	}
}

func (c *Controller) browse(ctx context.Context) error {
	resolver, err := zeroconf.NewResolver()
	if err != nil {
		return err
	}
	entries := make(chan *zeroconf.ServiceEntry)
	browseCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := resolver.Browse(browseCtx, ServiceName, Domain, entries); err != nil {
		return err
	}
	for {
		select {
		case e := <-entries:
			if e != nil {
				c.peerDiscovered(ctx, e)
			}
		case <-browseCtx.Done():
			return nil
		}
	}
}

func (c *Controller) peerDiscovered(ctx context.Context, e *zeroconf.ServiceEntry) {
	props := propertiesFromTXT(e.Text)
	peer := Peer{
		Name:       e.Instance,
		ID:         props["id"],
		URL:        asURL(e, props["path"]),
		Properties: props,
		IsSelf:     props["id"] == c.instance.ID,
	}
	c.peerLock.Lock()
	defer c.peerLock.Unlock()
	if _, found := c.peers[peer.Name]; !found {
		logging.From(ctx).Info("Peer detected",
			zap.String("peer.instance", peer.Name),
			zap.String("peer.URL", peer.URL),
			zap.String("peer.hostname", e.HostName))
	}
	c.peers[peer.Name] = peer
}

func asURL(e *zeroconf.ServiceEntry, path string) string {
	if len(e.AddrIPv4) > 0 {
		return fmt.Sprintf("http://%s:%d%s", e.AddrIPv4[0], e.Port, path)
	}
	if len(e.AddrIPv6) > 0 {
		return fmt.Sprintf("http://[%s]:%d%s", e.AddrIPv6[0], e.Port, path)
	}
	return ""
}

// Instance returns the advertised instance.
func (c *Controller) Instance() Instance {
	return c.instance
}

// GetPeers returns the peers seen so far, sorted by name.
func (c *Controller) GetPeers() (r []Peer) {
	c.peerLock.RLock()
	defer c.peerLock.RUnlock()

	for _, p := range c.peers {
		r = append(r, p)
	}
	sort.Slice(r, func(i, j int) bool { return r[i].Name < r[j].Name })
	return
}
