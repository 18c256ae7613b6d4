package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bchtrade/bchtrade/p2p"
)

var (
	gossipBackend string
	gossipListen  string
	gossipNATSURL string
	watchOffers   bool
)

var tradeListCmd = &cobra.Command{
	Use:   "list",
	Short: "Watch trade offers announced over the gossip network",
	Long: `list joins the shared offer gossip topic and prints offers other
wallets announce; it never publishes. By default it waits for the first
offer, prints it and exits; pass --watch to keep the connection open and
stream offers as they arrive.`,
	Run: func(cmd *cobra.Command, args []string) {
		runTradeList(context.Background())
	},
}

func init() {
	tradeCmd.AddCommand(tradeListCmd)
	tradeListCmd.Flags().StringVar(&gossipBackend, "backend", "libp2p", `gossip backend: "libp2p" or "nats"`)
	tradeListCmd.Flags().StringVar(&gossipListen, "listen", "/ip4/0.0.0.0/tcp/0", "libp2p listen multiaddr (libp2p backend only)")
	tradeListCmd.Flags().StringVar(&gossipNATSURL, "nats-url", "nats://127.0.0.1:4222", "NATS server URL (nats backend only)")
	tradeListCmd.Flags().BoolVar(&watchOffers, "watch", false, "keep streaming offers until interrupted, instead of exiting after the first offer")
}

func openGossip(ctx context.Context) (p2p.OfferGossip, error) {
	switch gossipBackend {
	case "libp2p":
		return p2p.NewLibP2PGossip(ctx, gossipListen)
	case "nats":
		return p2p.NewNATSGossip(gossipNATSURL)
	default:
		return nil, fmt.Errorf("unknown gossip backend %q (want \"libp2p\" or \"nats\")", gossipBackend)
	}
}

func runTradeList(ctx context.Context) {
	gossip, err := openGossip(ctx)
	if err != nil {
		fmt.Println("Error starting gossip backend:", err)
		return
	}
	defer gossip.Close()

	offers, err := gossip.SubscribeOffers(ctx)
	if err != nil {
		fmt.Println("Error subscribing to offers:", err)
		return
	}

	fmt.Printf("Listening for trade offers on %q via %s", p2p.TopicName, gossipBackend)
	if watchOffers {
		fmt.Println(" (press Ctrl+C to stop)...")
	} else {
		fmt.Println(" (one-shot snapshot)...")
	}

	for offer := range offers {
		fmt.Printf("offer: txid=%s vout=%d sell=%d buy=%d receiving=%s cancel=%s\n",
			offer.TxIDHex, offer.OutputIdx, offer.SellAmount, offer.BuyAmount,
			offer.ReceivingAddress, offer.CancelAddress)
		if !watchOffers {
			return
		}
	}
}
