package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/bchtrade/bchtrade/internal/explorer"
	"github.com/bchtrade/bchtrade/wallet"
)

var (
	explorerURL string
	walletPath  string
	passphrase  string
)

var rootCmd = &cobra.Command{
	Use:   "bchtrade",
	Short: "A non-custodial CLI wallet for covenant-based P2P token trades",
	Long: `bchtrade is a non-custodial wallet for trading tokens peer-to-peer
on a UTXO chain using a P2SH covenant: a seller funds a covenant address
with a token SEND, announces the offer, and any buyer can settle it by
presenting the exact enforced outputs — no counterparty trust required.

Run with no subcommand for the interactive menu (balance, send, create
trade, accept trade).`,
	Run: runInteractiveMenu,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&explorerURL, "explorer-url", "https://rest.bitcoin.com/v2", "base URL of the UTXO explorer/broadcast REST API")
	rootCmd.PersistentFlags().StringVar(&walletPath, "wallet-file", "", "path to the wallet secret file (default: ~/.bchtrade/wallet.json)")
	rootCmd.PersistentFlags().StringVar(&passphrase, "passphrase", "", "passphrase protecting the wallet file, if encrypted")
}

// openWallet loads or creates the wallet at walletPath (falling back to
// wallet.DefaultPath when unset).
func openWallet() (*wallet.Wallet, error) {
	path := walletPath
	if path == "" {
		defaultPath, err := wallet.DefaultPath()
		if err != nil {
			return nil, err
		}
		path = defaultPath
	}
	return wallet.LoadOrCreate(path, []byte(passphrase))
}

func restClient() *explorer.RestClient {
	return explorer.NewRestClient(explorerURL)
}

func runInteractiveMenu(cmd *cobra.Command, args []string) {
	w, err := openWallet()
	if err != nil {
		fmt.Println("Error opening wallet:", err)
		return
	}
	defer w.Zero()

	ctx := context.Background()
	client := restClient()

	for {
		fmt.Println()
		fmt.Println("1) Show balance and receive address")
		fmt.Println("2) Send BCH")
		fmt.Println("3) Create a trade")
		fmt.Println("4) Browse/accept trades")
		fmt.Println("5) Quit")
		fmt.Print("> ")

		var choice string
		if _, err := fmt.Scanln(&choice); err != nil {
			fmt.Println("Error reading choice:", err)
			return
		}

		switch choice {
		case "1":
			showBalance(ctx, w, client)
		case "2":
			interactiveSend(ctx, w, client)
		case "3":
			interactiveTradeCreate(ctx, w, client)
		case "4":
			interactiveTradeAccept(ctx, w, client)
		case "5", "q", "quit":
			return
		default:
			fmt.Println("Unrecognized choice:", choice)
		}
	}
}
