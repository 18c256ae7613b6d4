package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bchtrade/bchtrade/internal/explorer"
	"github.com/bchtrade/bchtrade/wallet"
)

var balanceCmd = &cobra.Command{
	Use:   "balance",
	Short: "Show the wallet's balance and receive address",
	Run: func(cmd *cobra.Command, args []string) {
		w, err := openWallet()
		if err != nil {
			fmt.Println("Error opening wallet:", err)
			return
		}
		defer w.Zero()
		showBalance(context.Background(), w, restClient())
	},
}

func init() {
	rootCmd.AddCommand(balanceCmd)
}

func showBalance(ctx context.Context, w *wallet.Wallet, client *explorer.RestClient) {
	addr := w.Address().CashAddr()
	fmt.Println("Receive address:", addr)

	balance, err := w.Balance(ctx, client)
	if err != nil {
		fmt.Println("Error fetching balance:", err)
		return
	}
	fmt.Printf("Balance: %d satoshis\n", balance)
	if balance == 0 {
		fmt.Println("Waiting for a funding transaction will block on `bchtrade wallet wait`.")
	}
}
