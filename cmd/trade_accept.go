package cmd

import (
	"context"
	"fmt"
	"strconv"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/spf13/cobra"

	"github.com/bchtrade/bchtrade/internal/address"
	"github.com/bchtrade/bchtrade/internal/covenant"
	"github.com/bchtrade/bchtrade/internal/explorer"
	"github.com/bchtrade/bchtrade/internal/ifaces"
	"github.com/bchtrade/bchtrade/internal/outputs"
	"github.com/bchtrade/bchtrade/internal/txbuilder"
	"github.com/bchtrade/bchtrade/internal/txmodel"
	"github.com/bchtrade/bchtrade/wallet"
)

// tradeIndex and slpValidity are the collaborators that list announced
// offers and confirm their funding transactions are SLP-consensus
// valid. Neither has a concrete implementation in this repo (they map
// to a bitdb/SLP-indexer client); nil means "not configured".
var tradeIndex ifaces.TradeIndex
var slpValidity ifaces.SLPValidity

// acceptSpendKeySeed is the arbitrary, publicly known key a buy spend's
// covenant input is signed with. The buy branch's CHECKDATASIG couples
// the signature to the enforced outputs, not to any particular pubkey,
// so any keypair works here.
var acceptSpendKeySeed = []byte("TruthIsTreasonInTheEmpireOfLies.")

var tradeAcceptCmd = &cobra.Command{
	Use:   "accept",
	Short: "Browse open trade offers for a token and accept one",
	Run: func(cmd *cobra.Command, args []string) {
		w, err := openWallet()
		if err != nil {
			fmt.Println("Error opening wallet:", err)
			return
		}
		defer w.Zero()
		interactiveTradeAccept(context.Background(), w, restClient())
	},
}

func init() {
	tradeCmd.AddCommand(tradeAcceptCmd)
}

type candidateTrade struct {
	txIDHex    string
	entry      ifaces.TradeEntry
	token      ifaces.TokenMetadata
	p2shAddr   address.Address
	amountSats uint64
}

func interactiveTradeAccept(ctx context.Context, w *wallet.Wallet, client *explorer.RestClient) {
	if tokenRegistry == nil || tradeIndex == nil || slpValidity == nil {
		fmt.Println("No token registry, trade index, or SLP validity service configured; cannot browse trade offers.")
		return
	}

	fmt.Print("Enter the token id or token name/symbol you want to buy: ")
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

	tokenID, err := decodeTokenID(token.IDHex)
	if err != nil {
		fmt.Println("Error decoding token id:", err)
		return
	}
	fmt.Println("Token ID (base32):", tokenIDBase32(tokenID))

	fmt.Println("Loading trades... this may take a few seconds.")
	entries, err := tradeIndex.ListTrades(ctx, token.IDHex)
	if err != nil {
		fmt.Println("Error listing trades:", err)
		return
	}

	var candidates []candidateTrade
	for _, entry := range entries {
		valid, err := slpValidity.IsValid(ctx, entry.TxIDHex)
		if err != nil || !valid {
			continue
		}
		recvAddr, err := address.Parse(entry.ReceivingAddress)
		if err != nil {
			continue
		}
		cancelAddr, err := address.Parse(entry.CancelAddress)
		if err != nil {
			continue
		}
		tokenSend := outputs.TokenSendOutput{TokenType: 1, TokenID: tokenID, OutputQuantities: []uint64{0, entry.SellAmount}}
		payment := outputs.P2PKHOutput{ValueSats: entry.BuyAmount, Address: recvAddr}
		enforced := covenant.EnforceOutputsOutput{
			CancelAddress:   cancelAddr,
			EnforcedOutputs: []outputs.Output{tokenSend, payment},
		}
		p2sh := outputs.P2SHOutput{Inner: &enforced}
		p2shAddr := p2shAddress("bitcoincash", p2sh)

		utxos, err := client.UTXOs(ctx, p2shAddr.CashAddr())
		if err != nil {
			continue
		}
		var amountSats uint64
		var found bool
		for _, u := range utxos {
			if u.TxIDHex == entry.TxIDHex && u.Vout == entry.OutputIdx {
				amountSats = u.Satoshis
				found = true
				break
			}
		}
		if !found {
			continue
		}

		candidates = append(candidates, candidateTrade{
			txIDHex:    entry.TxIDHex,
			entry:      entry,
			token:      token,
			p2shAddr:   p2shAddr,
			amountSats: amountSats,
		})
	}

	if len(candidates) == 0 {
		fmt.Println("There currently aren't any open, funded trades for this token.")
		return
	}

	builder, balance, err := w.InitTransaction(ctx, client)
	if err != nil {
		fmt.Println("Error fetching UTXOs:", err)
		return
	}
	fmt.Printf("Your balance: %d sats\n", balance)
	fmt.Println("Current trade offers:")
	fmt.Printf("%3s | %15s | %14s | %10s |\n", "#", "Selling", "Asking", "Price")
	fmt.Println("-------------------------------------------------------------------")
	for i, c := range candidates {
		sellDisplay := float64(c.entry.SellAmount) / pow10(c.token.Decimals)
		price := float64(c.entry.BuyAmount) / sellDisplay
		fmt.Printf("%3d | %8.2f %-6s | %10d sat | %6.0f sat |\n", i, sellDisplay, c.token.Symbol, c.entry.BuyAmount, price)
	}

	fmt.Printf("Enter the trade offer number to accept (0-%d): ", len(candidates)-1)
	var idxStr string
	fmt.Scanln(&idxStr)
	idx, err := strconv.Atoi(idxStr)
	if err != nil || idx < 0 || idx >= len(candidates) {
		fmt.Println("Invalid selection.")
		return
	}
	trade := candidates[idx]

	if balance < trade.entry.BuyAmount {
		fmt.Printf("Insufficient funds. The trade asks for %d sats but your wallet's balance is only %d sats.\n", trade.entry.BuyAmount, balance)
		fmt.Println("Note that you also need to pay for transaction fees.")
	}

	var recvAddr address.Address
	for {
		fmt.Print("Enter the simpleledger address to send the tokens to: ")
		var addrStr string
		fmt.Scanln(&addrStr)
		if addrStr == "" {
			fmt.Println("Bye!")
			return
		}
		parsed, err := address.Parse(addrStr)
		if err != nil {
			fmt.Println("Please enter a valid address:", err)
			continue
		}
		if !parsed.IsTokenAddr() {
			fmt.Println("Please enter a simpleledger address, it starts with \"simpleledger\".")
			continue
		}
		recvAddr = parsed
		break
	}

	sellerRecvAddr, err := address.Parse(trade.entry.ReceivingAddress)
	if err != nil {
		fmt.Println("Error parsing trade's receiving address:", err)
		return
	}
	sellerCancelAddr, err := address.Parse(trade.entry.CancelAddress)
	if err != nil {
		fmt.Println("Error parsing trade's cancel address:", err)
		return
	}

	outputSLP := outputs.TokenSendOutput{TokenType: 1, TokenID: tokenID, OutputQuantities: []uint64{0, trade.entry.SellAmount}}
	outputBuyAmount := outputs.P2PKHOutput{ValueSats: trade.entry.BuyAmount, Address: sellerRecvAddr}
	isCancel := false
	inputOutput := &covenant.EnforceOutputsOutput{
		ValueSats:       trade.amountSats,
		CancelAddress:   sellerCancelAddr,
		EnforcedOutputs: []outputs.Output{outputSLP, outputBuyAmount},
		IsCancel:        &isCancel,
	}
	outputSellAmount := outputs.P2PKHOutput{ValueSats: wallet.DustAmount, Address: recvAddr}
	outputBackToWallet := outputs.P2PKHOutput{ValueSats: 0, Address: w.Address()}

	txHash, err := txmodel.ParseTxID(trade.txIDHex)
	if err != nil {
		fmt.Println("Error decoding trade txid:", err)
		return
	}
	spendKey, _ := btcec.PrivKeyFromBytes(acceptSpendKeySeed)

	builder.AddUTXO(txbuilder.UTXOContext{
		Outpoint:   txmodel.Outpoint{TxHash: txHash, OutputIdx: trade.entry.OutputIdx},
		Descriptor: outputs.P2SHOutput{Inner: inputOutput},
		Sequence:   0xffffffff,
		SecretKey:  spendKey,
		IsCancel:   &isCancel,
	})
	builder.AddOutput(outputSLP)
	builder.AddOutput(outputBuyAmount)
	builder.AddOutput(outputSellAmount)
	backToWalletIdx := builder.AddOutput(outputBackToWallet)

	tx, err := builder.Sign()
	if err != nil {
		fmt.Println("Error signing transaction:", err)
		return
	}
	estimatedSize := uint64(len(tx.Bytes()))
	fmt.Printf("The estimated transaction size is %d bytes.\n", estimatedSize)
	const feeBase = 21
	fee := estimatedSize + feeBase
	totalSpent := outputSLP.Value() + outputBuyAmount.Value() + outputSellAmount.Value() + fee
	if totalSpent > balance {
		fmt.Printf("Including fees and dust outputs, this transaction will spend %d sats, but your wallet's balance is only %d sats.\n", totalSpent, balance)
		return
	}
	outputBackToWallet.ValueSats = balance - totalSpent
	builder.ReplaceOutput(backToWalletIdx, outputBackToWallet)

	tx, err = builder.Sign()
	if err != nil {
		fmt.Println("Error signing transaction:", err)
		return
	}

	fmt.Printf("After broadcasting, your balance will be %d sats.\n", balance-totalSpent)
	fmt.Print("Broadcast the transaction now to seal the deal? Type \"yes\": ")
	var confirm string
	fmt.Scanln(&confirm)
	if confirm != "yes" {
		fmt.Println("Not broadcasting.")
		return
	}

	txID, err := w.Broadcast(ctx, tx, client)
	if err != nil {
		fmt.Println("Error broadcasting transaction:", err)
		return
	}
	fmt.Println("Sent transaction. Transaction ID:", txID)
}
