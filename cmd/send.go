package cmd

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/bchtrade/bchtrade/internal/address"
	"github.com/bchtrade/bchtrade/internal/explorer"
	"github.com/bchtrade/bchtrade/internal/outputs"
	"github.com/bchtrade/bchtrade/wallet"
)

var sendCmd = &cobra.Command{
	Use:   "send <address> <amount|all>",
	Short: `Send BCH from this wallet to a CashAddr address`,
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		w, err := openWallet()
		if err != nil {
			fmt.Println("Error opening wallet:", err)
			return
		}
		defer w.Zero()
		runSend(context.Background(), w, restClient(), args[0], args[1])
	},
}

func init() {
	rootCmd.AddCommand(sendCmd)
}

func interactiveSend(ctx context.Context, w *wallet.Wallet, client *explorer.RestClient) {
	fmt.Print("Enter the address to send to: ")
	var addrStr string
	fmt.Scanln(&addrStr)
	fmt.Print("Enter the amount in satoshis to send, or \"all\": ")
	var amountStr string
	fmt.Scanln(&amountStr)
	runSend(ctx, w, client, addrStr, amountStr)
}

// runSend builds and broadcasts a single send transaction: a payment
// output to recipient and, unless the whole balance is spent, a change
// output back to the wallet's own address. The fee is a flat
// estimated-size+5 sats.
func runSend(ctx context.Context, w *wallet.Wallet, client *explorer.RestClient, addrStr, amountStr string) {
	recipient, err := address.Parse(addrStr)
	if err != nil {
		fmt.Println("Please enter a valid address:", err)
		return
	}
	if recipient.IsTokenAddr() {
		fmt.Println("Note: you entered a token (simpleledger) address, but this wallet only holds plain BCH. Proceeding anyway.")
	}

	builder, balance, err := w.InitTransaction(ctx, client)
	if err != nil {
		fmt.Println("Error fetching UTXOs:", err)
		return
	}
	fmt.Printf("Your wallet's balance is %d satoshis.\n", balance)
	if balance < wallet.DustAmount {
		fmt.Printf("Balance isn't sufficient to broadcast a transaction. Fund %s first.\n", w.Address().CashAddr())
		return
	}

	var sendAmount uint64
	if amountStr == "all" {
		sendAmount = balance
	} else {
		sendAmount, err = strconv.ParseUint(amountStr, 10, 64)
		if err != nil {
			fmt.Println("Invalid amount:", err)
			return
		}
	}

	sendIdx := builder.AddOutput(outputs.P2PKHOutput{ValueSats: sendAmount, Address: recipient})
	changeIdx := builder.AddOutput(outputs.P2PKHOutput{ValueSats: 0, Address: w.Address()})

	const feeBuffer = 5
	estimatedSize := builder.EstimateSize()
	var changeAmount uint64
	if balance < sendAmount+estimatedSize+feeBuffer {
		sendAmount = balance - (estimatedSize + feeBuffer)
		builder.ReplaceOutput(sendIdx, outputs.P2PKHOutput{ValueSats: sendAmount, Address: recipient})
	} else {
		changeAmount = balance - (sendAmount + estimatedSize + feeBuffer)
	}

	if changeAmount < wallet.DustAmount {
		builder.RemoveOutput(changeIdx)
	} else {
		builder.ReplaceOutput(changeIdx, outputs.P2PKHOutput{ValueSats: changeAmount, Address: w.Address()})
	}

	tx, err := builder.Sign()
	if err != nil {
		fmt.Println("Error signing transaction:", err)
		return
	}

	txID, err := w.Broadcast(ctx, tx, client)
	if err != nil {
		fmt.Println("Error broadcasting transaction:", err)
		return
	}
	fmt.Println("Sent transaction. Transaction ID:", txID)
}
