package wallet

import (
	"bytes"
	"context"
	"encoding/binary"
	"encoding/hex"
	"testing"

	"github.com/btcsuite/btcd/btcec/v2"

	"github.com/bchtrade/bchtrade/internal/address"
	"github.com/bchtrade/bchtrade/internal/bchhash"
	"github.com/bchtrade/bchtrade/internal/covenant"
	"github.com/bchtrade/bchtrade/internal/ifaces"
	"github.com/bchtrade/bchtrade/internal/outputs"
	"github.com/bchtrade/bchtrade/internal/script"
	"github.com/bchtrade/bchtrade/internal/scriptvm"
	"github.com/bchtrade/bchtrade/internal/sighash"
	"github.com/bchtrade/bchtrade/internal/txbuilder"
	"github.com/bchtrade/bchtrade/internal/txmodel"
)

// memChain is an in-memory ledger standing in for the explorer
// collaborators: UTXOs keyed by cash address.
type memChain struct {
	utxos map[string][]ifaces.UTXOEntry
}

func newMemChain() *memChain {
	return &memChain{utxos: make(map[string][]ifaces.UTXOEntry)}
}

func (c *memChain) UTXOs(_ context.Context, cashAddr string) ([]ifaces.UTXOEntry, error) {
	return c.utxos[cashAddr], nil
}

func (c *memChain) credit(cashAddr, txIDHex string, vout uint32, sats uint64) {
	c.utxos[cashAddr] = append(c.utxos[cashAddr], ifaces.UTXOEntry{TxIDHex: txIDHex, Vout: vout, Satoshis: sats})
}

func (c *memChain) spend(cashAddr, txIDHex string, vout uint32) {
	entries := c.utxos[cashAddr]
	kept := entries[:0]
	for _, e := range entries {
		if e.TxIDHex != txIDHex || e.Vout != vout {
			kept = append(kept, e)
		}
	}
	c.utxos[cashAddr] = kept
}

func (c *memChain) balance(cashAddr string) uint64 {
	var total uint64
	for _, e := range c.utxos[cashAddr] {
		total += e.Satoshis
	}
	return total
}

func displayTxID(tx txmodel.Tx) string {
	d := tx.TxIDDisplay()
	return hex.EncodeToString(d[:])
}

// verifyInput script-interprets one input of tx: for a P2SH spend it
// checks the redeem hash and executes the redeem script against the
// sig-script's remaining pushes; for P2PKH it runs the concatenation
// directly.
func verifyInput(t *testing.T, preImage sighash.PreImage, sigScript script.Script, lockingScript script.Script) {
	t.Helper()
	sigOps := sigScript.Ops()
	lockOps := lockingScript.Ops()

	runOps := append(append([]script.Op{}, sigOps...), lockOps...)
	if len(lockOps) == 3 && !lockOps[0].IsPush() && lockOps[0].OpCode() == script.OpHash160 {
		// P2SH shell: the last sig-script push is the redeem script.
		redeemBytes := sigOps[len(sigOps)-1].PushData()
		redeemHash := bchhash.Hash160(redeemBytes)
		if !bytes.Equal(redeemHash[:], lockOps[1].PushData()) {
			t.Fatal("redeem script hash does not match the P2SH shell")
		}
		redeem, err := script.Parse(redeemBytes)
		if err != nil {
			t.Fatalf("parsing redeem script: %v", err)
		}
		runOps = append(append([]script.Op{}, sigOps[:len(sigOps)-1]...), redeem.Ops()...)
	}

	vm := scriptvm.New(preImage.Bytes())
	if err := vm.Run(runOps); err != nil {
		t.Fatalf("input script failed: %v", err)
	}
	if !vm.Succeeded() {
		t.Fatal("input script did not evaluate to true")
	}
}

func TestTradeOfferEndToEnd(t *testing.T) {
	ctx := context.Background()
	chain := newMemChain()

	seller, err := FromSecret(testSecret("e2e-seller"))
	if err != nil {
		t.Fatalf("seller wallet: %v", err)
	}
	buyer, err := FromSecret(testSecret("e2e-buyer"))
	if err != nil {
		t.Fatalf("buyer wallet: %v", err)
	}

	var tokenID [32]byte
	copy(tokenID[:], []byte("end-to-end-trade-token-id-32-byt"))
	const sellAmount = 1_000_000
	const buyAmount = 50_000

	seedTxID := hex.EncodeToString(bytes.Repeat([]byte{0x51}, 32))
	chain.credit(seller.Address().CashAddr(), seedTxID, 0, 100_000)
	buyerSeedTxID := hex.EncodeToString(bytes.Repeat([]byte{0x52}, 32))
	chain.credit(buyer.Address().CashAddr(), buyerSeedTxID, 0, 80_000)

	// --- Seller side: fund the covenant and announce the offer. ---

	tokenSend := outputs.TokenSendOutput{TokenType: 1, TokenID: tokenID, OutputQuantities: []uint64{0, sellAmount}}
	payment := outputs.P2PKHOutput{ValueSats: buyAmount, Address: seller.Address()}
	enforced := &covenant.EnforceOutputsOutput{
		ValueSats:       DustAmount,
		CancelAddress:   seller.Address(),
		EnforcedOutputs: []outputs.Output{tokenSend, payment},
	}
	p2sh := outputs.P2SHOutput{Inner: enforced}
	p2shHash := bchhash.Hash160(enforced.Script().Bytes())
	p2shAddr := address.FromHash160(address.TypeP2SH, p2shHash)

	fundBuilder, sellerBalance, err := seller.InitTransaction(ctx, chain)
	if err != nil {
		t.Fatalf("seller InitTransaction: %v", err)
	}
	fundingSLP := outputs.TokenSendOutput{TokenType: 1, TokenID: tokenID, OutputQuantities: []uint64{sellAmount}}
	fundBuilder.AddOutput(fundingSLP)
	fundBuilder.AddOutput(p2sh)
	const fundingFee = 400
	sellerChange := sellerBalance - DustAmount - fundingFee
	fundBuilder.AddOutput(outputs.P2PKHOutput{ValueSats: sellerChange, Address: seller.Address()})

	fundingTx, err := fundBuilder.Sign()
	if err != nil {
		t.Fatalf("signing funding tx: %v", err)
	}
	fundingTxID := displayTxID(fundingTx)

	chain.spend(seller.Address().CashAddr(), seedTxID, 0)
	chain.credit(p2shAddr.CashAddr(), fundingTxID, 1, DustAmount)
	chain.credit(seller.Address().CashAddr(), fundingTxID, 2, sellerChange)

	offer := outputs.TradeOffer{
		TxID:             fundingTx.TxID(),
		OutputIdx:        1,
		SellAmount:       sellAmount,
		BuyAmount:        buyAmount,
		ReceivingAddress: seller.Address(),
		CancelAddress:    seller.Address(),
	}
	announcement, err := script.Parse(offer.ToOpReturn().Script().Bytes())
	if err != nil {
		t.Fatalf("parsing announcement: %v", err)
	}

	// --- Buyer side: reconstruct the covenant from the announcement. ---

	pushes := announcement.Ops()[1:]
	var offerTxHash [32]byte
	copy(offerTxHash[:], pushes[3].PushData())
	offerVout := binary.BigEndian.Uint32(pushes[4].PushData())
	offerSell := binary.BigEndian.Uint64(pushes[5].PushData())
	offerBuy := binary.BigEndian.Uint64(pushes[6].PushData())
	var recvHash, cancelHash [20]byte
	copy(recvHash[:], pushes[7].PushData())
	copy(cancelHash[:], pushes[8].PushData())

	buyTokenSend := outputs.TokenSendOutput{TokenType: 1, TokenID: tokenID, OutputQuantities: []uint64{0, offerSell}}
	buyPayment := outputs.P2PKHOutput{ValueSats: offerBuy, Address: address.FromHash160(address.TypeP2PKH, recvHash)}
	isCancel := false
	buyCovenant := &covenant.EnforceOutputsOutput{
		ValueSats:       DustAmount,
		CancelAddress:   address.FromHash160(address.TypeP2PKH, cancelHash),
		EnforcedOutputs: []outputs.Output{buyTokenSend, buyPayment},
		IsCancel:        &isCancel,
	}
	if !bytes.Equal(buyCovenant.Script().Bytes(), enforced.Script().Bytes()) {
		t.Fatal("buyer-reconstructed covenant script differs from the seller's")
	}

	acceptBuilder, buyerBalance, err := buyer.InitTransaction(ctx, chain)
	if err != nil {
		t.Fatalf("buyer InitTransaction: %v", err)
	}
	anyKey, _ := btcec.PrivKeyFromBytes(bytes.Repeat([]byte{0x6b}, 32))
	covenantInputIdx := acceptBuilder.AddUTXO(txbuilder.UTXOContext{
		Outpoint:   txmodel.Outpoint{TxHash: offerTxHash, OutputIdx: offerVout},
		Descriptor: outputs.P2SHOutput{Inner: buyCovenant},
		Sequence:   0xffffffff,
		SecretKey:  anyKey,
		IsCancel:   &isCancel,
	})

	buyerTokenAddr := address.FromHash160WithPrefix("simpleledger", address.TypeP2PKH, buyer.Address().Hash())
	const acceptFee = 500
	buyerChange := buyerBalance + DustAmount - offerBuy - DustAmount - acceptFee
	acceptBuilder.AddOutput(buyTokenSend)
	acceptBuilder.AddOutput(buyPayment)
	acceptBuilder.AddOutput(outputs.P2PKHOutput{ValueSats: DustAmount, Address: buyerTokenAddr})
	acceptBuilder.AddOutput(outputs.P2PKHOutput{ValueSats: buyerChange, Address: buyer.Address()})

	acceptTx, err := acceptBuilder.Sign()
	if err != nil {
		t.Fatalf("signing accept tx: %v", err)
	}

	// Script-interpret both inputs of the accept transaction.
	preImages := acceptBuilder.PreImages(sighash.SigHashAll)
	buyerSpent := outputs.P2PKHOutput{ValueSats: 80_000, Address: buyer.Address()}
	verifyInput(t, preImages[0], acceptTx.Inputs[0].Script, buyerSpent.Script())
	verifyInput(t, preImages[covenantInputIdx], acceptTx.Inputs[covenantInputIdx].Script, p2sh.Script())

	// The enforced outputs must lead the accept transaction verbatim.
	if acceptTx.Outputs[0].Value != 0 || !bytes.Equal(acceptTx.Outputs[0].Script.Bytes(), buyTokenSend.Script().Bytes()) {
		t.Fatal("first output must be the enforced token SEND")
	}
	if acceptTx.Outputs[1].Value != offerBuy || !bytes.Equal(acceptTx.Outputs[1].Script.Bytes(), buyPayment.Script().Bytes()) {
		t.Fatal("second output must be the enforced seller payment")
	}

	// --- Settle the accept tx and check final balances. ---

	acceptTxID := displayTxID(acceptTx)
	chain.spend(p2shAddr.CashAddr(), fundingTxID, 1)
	chain.spend(buyer.Address().CashAddr(), buyerSeedTxID, 0)
	chain.credit(seller.Address().CashAddr(), acceptTxID, 1, offerBuy)
	chain.credit(buyerTokenAddr.CashAddr(), acceptTxID, 2, DustAmount)
	chain.credit(buyer.Address().CashAddr(), acceptTxID, 3, buyerChange)

	if got := chain.balance(seller.Address().CashAddr()); got != sellerChange+buyAmount {
		t.Fatalf("seller final balance: got %d, want %d", got, sellerChange+buyAmount)
	}
	if got := chain.balance(p2shAddr.CashAddr()); got != 0 {
		t.Fatalf("offer UTXO must be spent, found %d sats", got)
	}
	if got := chain.balance(buyerTokenAddr.CashAddr()); got != DustAmount {
		t.Fatalf("buyer must hold the token-carrying dust output, got %d", got)
	}
	if got := chain.balance(buyer.Address().CashAddr()); got != buyerChange {
		t.Fatalf("buyer final balance: got %d, want %d", got, buyerChange)
	}
}
