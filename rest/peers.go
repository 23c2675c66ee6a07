package rest

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/haydenhayden/projectzen/discovery"
)

// Peers lists the feed servers found on the local network.
type Peers interface {
	Instance() discovery.Instance
	GetPeers() []discovery.Peer
}

type PeersAPI struct {
	peers Peers
}

func NewPeersAPI(peers Peers) *PeersAPI {
	return &PeersAPI{peers: peers}
}

func (p *PeersAPI) InitRoutes(router *mux.Router) {
	router.HandleFunc("/api/peers", p.listPeers).Methods(http.MethodGet)
}

func (p *PeersAPI) listPeers(w http.ResponseWriter, r *http.Request) {
	data := struct {
		Self      discovery.Instance `json:"self"`
		Instances []discovery.Peer   `json:"instances,omitempty"`
	}{
		Self:      p.peers.Instance(),
		Instances: p.peers.GetPeers(),
	}
	Respond(r).WithJSON(w, http.StatusOK, &simplePayload{Data: data})
}
