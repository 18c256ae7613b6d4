package cmd

import (
	"context"
	"fmt"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/bchtrade/bchtrade/wallet"
)

var walletCmd = &cobra.Command{
	Use:   "wallet",
	Short: "Manage the local wallet file",
}

var walletNewCmd = &cobra.Command{
	Use:   "new",
	Short: "Create a new wallet file, generating a fresh secret",
	Run:   runWalletNew,
}

var walletAddressCmd = &cobra.Command{
	Use:   "address",
	Short: "Print the wallet's receive address",
	Run:   runWalletAddress,
}

var walletWaitCmd = &cobra.Command{
	Use:   "wait",
	Short: "Block until a transaction funds the wallet's address",
	Run:   runWalletWait,
}

var walletExportWIFCmd = &cobra.Command{
	Use:   "export-wif",
	Short: "Print the wallet's secret in Wallet Import Format",
	Run:   runWalletExportWIF,
}

var walletImportWIFCmd = &cobra.Command{
	Use:   "import-wif <wif>",
	Short: "Replace the wallet file's secret with one decoded from WIF",
	Args:  cobra.ExactArgs(1),
	Run:   runWalletImportWIF,
}

func init() {
	rootCmd.AddCommand(walletCmd)
	walletCmd.AddCommand(walletNewCmd)
	walletCmd.AddCommand(walletAddressCmd)
	walletCmd.AddCommand(walletWaitCmd)
	walletCmd.AddCommand(walletExportWIFCmd)
	walletCmd.AddCommand(walletImportWIFCmd)
}

func resolveWalletPath() (string, error) {
	if walletPath != "" {
		return walletPath, nil
	}
	return wallet.DefaultPath()
}

func runWalletNew(cmd *cobra.Command, args []string) {
	path, err := resolveWalletPath()
	if err != nil {
		fmt.Println("Error:", err)
		return
	}
	w, err := wallet.LoadOrCreate(path, []byte(passphrase))
	if err != nil {
		fmt.Println("Error creating wallet:", err)
		return
	}
	defer w.Zero()
	fmt.Println("Wallet file:", path)
	fmt.Println("Address:", w.Address().CashAddr())
	fmt.Println("Legacy address:", w.Address().LegacyBase58())
}

func runWalletAddress(cmd *cobra.Command, args []string) {
	w, err := openWallet()
	if err != nil {
		fmt.Println("Error opening wallet:", err)
		return
	}
	defer w.Zero()
	fmt.Println(w.Address().CashAddr())
	fmt.Println(w.Address().LegacyBase58())
}

func runWalletWait(cmd *cobra.Command, args []string) {
	w, err := openWallet()
	if err != nil {
		fmt.Println("Error opening wallet:", err)
		return
	}
	defer w.Zero()

	fmt.Println("Waiting for a transaction to", w.Address().CashAddr())
	entry, err := w.WaitForTransaction(context.Background(), restClient())
	if err != nil {
		fmt.Println("Error:", err)
		return
	}
	fmt.Printf("Funded: %s:%d (%d satoshis)\n", entry.TxIDHex, entry.Vout, entry.Satoshis)
}

func runWalletExportWIF(cmd *cobra.Command, args []string) {
	w, err := openWallet()
	if err != nil {
		fmt.Println("Error opening wallet:", err)
		return
	}
	defer w.Zero()
	fmt.Println(w.ExportWIF())
}

func runWalletImportWIF(cmd *cobra.Command, args []string) {
	w, err := wallet.ImportWIF(args[0])
	if err != nil {
		fmt.Println("Error:", err)
		return
	}
	defer w.Zero()

	path, err := resolveWalletPath()
	if err != nil {
		fmt.Println("Error:", err)
		return
	}

	pass := []byte(passphrase)
	if len(pass) == 0 {
		fmt.Print("Encrypt the imported wallet with a passphrase? Leave blank to skip: ")
		entered, err := term.ReadPassword(int(syscall.Stdin))
		fmt.Println()
		if err != nil {
			fmt.Println("Error reading passphrase:", err)
			return
		}
		pass = entered
	}

	if err := w.Save(path, pass); err != nil {
		fmt.Println("Error saving wallet:", err)
		return
	}
	fmt.Println("Imported address:", w.Address().CashAddr())
}
