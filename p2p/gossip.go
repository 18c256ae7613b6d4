// Package p2p carries a trade-offer gossip surface: a way to announce
// and watch for funded trade offers across a swarm of wallets, without
// any of the core signing/covenant logic depending on it. Two backends
// are wired, a libp2p gossipsub topic and a NATS subject, behind one
// narrow interface so `cmd trade list --watch` can use either.
package p2p

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/libp2p/go-libp2p"
	pubsub "github.com/libp2p/go-libp2p-pubsub"
	"github.com/libp2p/go-libp2p/core/host"
	"github.com/multiformats/go-multiaddr"
	"github.com/nats-io/nats.go"
)

// TopicName is the single gossipsub/NATS subject every wallet in a swarm
// publishes funded trade offers to and subscribes from.
const TopicName = "bchtrade-offers"

// Offer is the wire form of an announced trade offer, mirroring the
// nine-push OP_RETURN fields of outputs.TradeOffer closely enough for a
// peer to decide whether to go fetch and verify the real transaction.
type Offer struct {
	TxIDHex          string `json:"txid"`
	OutputIdx        uint32 `json:"output_idx"`
	SellAmount       uint64 `json:"sell_amount"`
	BuyAmount        uint64 `json:"buy_amount"`
	ReceivingAddress string `json:"receiving_address"`
	CancelAddress    string `json:"cancel_address"`
}

// OfferGossip announces and watches for trade offers. Neither backend
// here validates an offer against the chain; that is the TradeIndex /
// SLPValidity collaborators' job. This is announcement only.
type OfferGossip interface {
	PublishOffer(ctx context.Context, offer Offer) error
	SubscribeOffers(ctx context.Context) (<-chan Offer, error)
	Close() error
}

// LibP2PGossip publishes and watches offers over a gossipsub topic.
// Peer discovery (mDNS/bootstrap) is intentionally absent here; this
// carries the topic itself, not a full peer-networking layer.
type LibP2PGossip struct {
	host  host.Host
	topic *pubsub.Topic
	sub   *pubsub.Subscription
}

// NewLibP2PGossip starts a libp2p host listening on listenAddr (e.g.
// "/ip4/0.0.0.0/tcp/0") and joins the shared offer topic.
func NewLibP2PGossip(ctx context.Context, listenAddr string) (*LibP2PGossip, error) {
	addr, err := multiaddr.NewMultiaddr(listenAddr)
	if err != nil {
		return nil, fmt.Errorf("p2p: invalid listen address %q: %w", listenAddr, err)
	}

	h, err := libp2p.New(
		libp2p.ListenAddrs(addr),
		libp2p.DefaultSecurity,
		libp2p.DefaultMuxers,
	)
	if err != nil {
		return nil, fmt.Errorf("p2p: creating libp2p host: %w", err)
	}
	log.Printf("p2p: host %s listening on %s", h.ID(), h.Addrs())

	ps, err := pubsub.NewGossipSub(ctx, h)
	if err != nil {
		h.Close()
		return nil, fmt.Errorf("p2p: starting gossipsub: %w", err)
	}
	topic, err := ps.Join(TopicName)
	if err != nil {
		h.Close()
		return nil, fmt.Errorf("p2p: joining topic %q: %w", TopicName, err)
	}
	sub, err := topic.Subscribe()
	if err != nil {
		h.Close()
		return nil, fmt.Errorf("p2p: subscribing to topic %q: %w", TopicName, err)
	}

	return &LibP2PGossip{host: h, topic: topic, sub: sub}, nil
}

func (g *LibP2PGossip) PublishOffer(ctx context.Context, offer Offer) error {
	data, err := json.Marshal(offer)
	if err != nil {
		return fmt.Errorf("p2p: marshaling offer: %w", err)
	}
	return g.topic.Publish(ctx, data)
}

func (g *LibP2PGossip) SubscribeOffers(ctx context.Context) (<-chan Offer, error) {
	out := make(chan Offer, 16)
	go func() {
		defer close(out)
		for {
			msg, err := g.sub.Next(ctx)
			if err != nil {
				return
			}
			var offer Offer
			if err := json.Unmarshal(msg.Data, &offer); err != nil {
				log.Printf("p2p: dropping malformed offer message: %v", err)
				continue
			}
			select {
			case out <- offer:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out, nil
}

func (g *LibP2PGossip) Close() error {
	g.sub.Cancel()
	return g.host.Close()
}

// NATSGossip publishes and watches offers over a NATS subject — a
// simpler transport for a swarm that already runs a shared message bus
// rather than direct peer discovery.
type NATSGossip struct {
	conn *nats.Conn
}

// NewNATSGossip connects to a NATS server at url (e.g.
// "nats://127.0.0.1:4222").
func NewNATSGossip(url string) (*NATSGossip, error) {
	conn, err := nats.Connect(url)
	if err != nil {
		return nil, fmt.Errorf("p2p: connecting to nats at %s: %w", url, err)
	}
	return &NATSGossip{conn: conn}, nil
}

func (g *NATSGossip) PublishOffer(ctx context.Context, offer Offer) error {
	data, err := json.Marshal(offer)
	if err != nil {
		return fmt.Errorf("p2p: marshaling offer: %w", err)
	}
	return g.conn.Publish(TopicName, data)
}

func (g *NATSGossip) SubscribeOffers(ctx context.Context) (<-chan Offer, error) {
	out := make(chan Offer, 16)
	sub, err := g.conn.Subscribe(TopicName, func(msg *nats.Msg) {
		var offer Offer
		if err := json.Unmarshal(msg.Data, &offer); err != nil {
			log.Printf("p2p: dropping malformed offer message: %v", err)
			return
		}
		select {
		case out <- offer:
		case <-ctx.Done():
		}
	})
	if err != nil {
		return nil, fmt.Errorf("p2p: subscribing to subject %q: %w", TopicName, err)
	}
	go func() {
		<-ctx.Done()
		sub.Unsubscribe()
		close(out)
	}()
	return out, nil
}

func (g *NATSGossip) Close() error {
	g.conn.Close()
	return nil
}
