package cmd

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/bchtrade/bchtrade/internal/covenant"
	"github.com/bchtrade/bchtrade/internal/explorer"
	"github.com/bchtrade/bchtrade/internal/ifaces"
	"github.com/bchtrade/bchtrade/internal/outputs"
	"github.com/bchtrade/bchtrade/internal/txmodel"
	"github.com/bchtrade/bchtrade/wallet"
)

// tokenRegistry is the collaborator that resolves a token id/name/symbol
// to its metadata. No concrete implementation ships in this repo (it
// would mean a full SLP indexer client); nil means "not configured".
var tokenRegistry ifaces.TokenRegistry

var tradeCmd = &cobra.Command{
	Use:   "trade",
	Short: "Create or accept covenant-based trade offers",
}

var tradeCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a new trade offer for a token",
	Run: func(cmd *cobra.Command, args []string) {
		w, err := openWallet()
		if err != nil {
			fmt.Println("Error opening wallet:", err)
			return
		}
		defer w.Zero()
		interactiveTradeCreate(context.Background(), w, restClient())
	},
}

func init() {
	rootCmd.AddCommand(tradeCmd)
	tradeCmd.AddCommand(tradeCreateCmd)
}

// interactiveTradeCreate walks the seller through picking a token,
// funding the covenant address it derives, and broadcasting the
// trade-offer announcement. The token lookup goes through the
// TokenRegistry collaborator rather than a hardcoded SLP indexer URL.
func interactiveTradeCreate(ctx context.Context, w *wallet.Wallet, client *explorer.RestClient) {
	if tokenRegistry == nil {
		fmt.Println("No token registry configured; cannot resolve a token id/name/symbol to metadata.")
		return
	}

	fmt.Print("Enter the token id or token name/symbol you want to sell: ")
	var tokenQuery string
	fmt.Scanln(&tokenQuery)

	tokens, err := tokenRegistry.FindToken(ctx, tokenQuery)
	if err != nil {
		fmt.Println("Error looking up token:", err)
		return
	}
	if len(tokens) == 0 {
		fmt.Printf("Didn't find any tokens matching %q.\n", tokenQuery)
		return
	}
	token := tokens[0]
	if len(tokens) > 1 {
		fmt.Println("Found multiple tokens with those criteria:")
		for i, t := range tokens {
			fmt.Printf("%3d %64s %12s %s\n", i, t.IDHex, t.Symbol, t.Name)
		}
		fmt.Printf("Enter the number (0-%d) you want to sell: ", len(tokens)-1)
		var idxStr string
		fmt.Scanln(&idxStr)
		idx, err := strconv.Atoi(idxStr)
		if err != nil || idx < 0 || idx >= len(tokens) {
			fmt.Println("Invalid selection.")
			return
		}
		token = tokens[idx]
	}

	tokenID, err := decodeTokenID(token.IDHex)
	if err != nil {
		fmt.Println("Error decoding token id:", err)
		return
	}
	fmt.Printf("Selected token: %s (%s), decimals=%d\n", token.Name, token.Symbol, token.Decimals)
	fmt.Println("Token ID (base32):", tokenIDBase32(tokenID))
	fmt.Print("Enter the amount you want to sell (decimal): ")
	var sellDisplayStr string
	fmt.Scanln(&sellDisplayStr)
	sellDisplay, err := strconv.ParseFloat(sellDisplayStr, 64)
	if err != nil {
		fmt.Println("Invalid number:", err)
		return
	}
	sellAmount := uint64(sellDisplay * pow10(token.Decimals))

	fmt.Print("Enter the amount of BCH you want to receive (satoshis): ")
	var buyAmountStr string
	fmt.Scanln(&buyAmountStr)
	buyAmount, err := strconv.ParseUint(buyAmountStr, 10, 64)
	if err != nil {
		fmt.Println("Invalid number:", err)
		return
	}

	tokenSend := outputs.TokenSendOutput{TokenType: 1, TokenID: tokenID, OutputQuantities: []uint64{0, sellAmount}}
	payment := outputs.P2PKHOutput{ValueSats: buyAmount, Address: w.Address()}
	enforced := covenant.EnforceOutputsOutput{
		ValueSats:       0,
		CancelAddress:   w.Address(),
		EnforcedOutputs: []outputs.Output{tokenSend, payment},
	}
	p2sh := outputs.P2SHOutput{Inner: &enforced}

	fmt.Println("--------------------------------------------------")
	fmt.Printf("Send EXACTLY %s %s to the following address:\n", sellDisplayStr, token.Symbol)
	fmt.Println(p2shAddress("simpleledger", p2sh).CashAddr())
	fmt.Println()
	fmt.Println("Sending a different amount or token will likely burn the tokens.")
	fmt.Println("Waiting for the funding transaction...")

	fundingAddr := p2shAddress("bitcoincash", p2sh)
	fundedEntry, err := waitForFundingAt(ctx, client, fundingAddr.CashAddr())
	if err != nil {
		fmt.Println("Error:", err)
		return
	}
	fmt.Println("Received funding tx:", fundedEntry.TxIDHex)

	builder, balance, err := w.InitTransaction(ctx, client)
	if err != nil {
		fmt.Println("Error fetching UTXOs:", err)
		return
	}

	fundingTxID, err := txmodel.ParseTxID(fundedEntry.TxIDHex)
	if err != nil {
		fmt.Println("Error decoding funding txid:", err)
		return
	}
	offer := outputs.TradeOffer{
		TxID:             fundingTxID,
		OutputIdx:        fundedEntry.Vout,
		SellAmount:       sellAmount,
		BuyAmount:        buyAmount,
		ReceivingAddress: w.Address(),
		CancelAddress:    w.Address(),
	}
	builder.AddOutput(offer.ToOpReturn())

	sizeSoFar := builder.EstimateSize()
	changeOutput := outputs.P2PKHOutput{ValueSats: 0, Address: w.Address()}
	scriptLen := uint64(len(changeOutput.Script().Bytes()))
	changeIdx := builder.AddOutput(changeOutput)
	const feeBuffer = 20
	changeOutput.ValueSats = balance - (sizeSoFar + scriptLen) - feeBuffer
	builder.ReplaceOutput(changeIdx, changeOutput)

	tx, err := builder.Sign()
	if err != nil {
		fmt.Println("Error signing transaction:", err)
		return
	}
	txID, err := w.Broadcast(ctx, tx, client)
	if err != nil {
		fmt.Println("Error broadcasting listing transaction:", err)
		return
	}
	fmt.Println("The trade listing transaction ID is:", txID)
}
