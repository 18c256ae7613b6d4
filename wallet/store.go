package wallet

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/btcsuite/btcutil/base58"
	"golang.org/x/crypto/pbkdf2"
)

const (
	pbkdf2Iterations = 100000
	aesKeySize       = 32

	walletDir  = ".bchtrade"
	walletFile = "wallet.json"

	wifMainnetVersion = 0x80
)

// walletOnDisk is the persisted form of a wallet secret. When Salt is
// empty the Secret field holds the raw 32-byte scalar; otherwise Secret
// holds an AES-256-GCM ciphertext (nonce-prefixed) decryptable with a
// PBKDF2-derived key.
type walletOnDisk struct {
	Secret []byte `json:"secret"`
	Salt   []byte `json:"salt,omitempty"`
}

// DefaultPath returns the default wallet file location under the user's
// home directory, ~/.bchtrade/wallet.json.
func DefaultPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("wallet: failed to get home directory: %w", err)
	}
	return filepath.Join(homeDir, walletDir, walletFile), nil
}

// LoadOrCreate reads the wallet secret at path, decrypting it with
// passphrase if the file was created encrypted, or generates and
// persists a fresh one if no file exists yet. A nil passphrase stores
// and loads the secret unencrypted.
func LoadOrCreate(path string, passphrase []byte) (*Wallet, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		w, secret, err := NewRandom()
		if err != nil {
			return nil, err
		}
		if err := save(path, secret[:], passphrase); err != nil {
			return nil, err
		}
		return w, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("wallet: reading %s: %w", path, err)
	}
	var onDisk walletOnDisk
	if err := json.Unmarshal(data, &onDisk); err != nil {
		return nil, fmt.Errorf("wallet: parsing %s: %w", path, err)
	}

	var secretBytes []byte
	if len(onDisk.Salt) == 0 {
		secretBytes = onDisk.Secret
	} else {
		if len(passphrase) == 0 {
			return nil, fmt.Errorf("wallet: %s is passphrase-encrypted but no passphrase was given", path)
		}
		secretBytes, err = decryptSecret(onDisk.Secret, deriveKey(passphrase, onDisk.Salt))
		if err != nil {
			return nil, fmt.Errorf("wallet: decrypting %s (wrong passphrase?): %w", path, err)
		}
	}
	if len(secretBytes) != 32 {
		return nil, fmt.Errorf("wallet: %s does not hold a 32-byte secret", path)
	}
	var secret [32]byte
	copy(secret[:], secretBytes)
	return FromSecret(secret)
}

// Save persists the wallet's secret to path, encrypting it with
// passphrase when non-empty.
func (w *Wallet) Save(path string, passphrase []byte) error {
	return save(path, w.secretKey.Serialize(), passphrase)
}

func save(path string, secret []byte, passphrase []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("wallet: creating directory for %s: %w", path, err)
	}

	onDisk := walletOnDisk{Secret: secret}
	if len(passphrase) > 0 {
		salt := make([]byte, 32)
		if _, err := io.ReadFull(rand.Reader, salt); err != nil {
			return fmt.Errorf("wallet: generating salt: %w", err)
		}
		ciphertext, err := encryptSecret(secret, deriveKey(passphrase, salt))
		if err != nil {
			return fmt.Errorf("wallet: encrypting secret: %w", err)
		}
		onDisk = walletOnDisk{Secret: ciphertext, Salt: salt}
	}

	data, err := json.MarshalIndent(onDisk, "", "  ")
	if err != nil {
		return fmt.Errorf("wallet: marshaling wallet file: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("wallet: writing %s: %w", path, err)
	}
	return nil
}

func deriveKey(passphrase, salt []byte) []byte {
	return pbkdf2.Key(passphrase, salt, pbkdf2Iterations, aesKeySize, sha256.New)
}

func encryptSecret(secret, key []byte) ([]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}
	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, err
	}
	return gcm.Seal(nonce, nonce, secret, nil), nil
}

func decryptSecret(ciphertext, key []byte) ([]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}
	nonceSize := gcm.NonceSize()
	if len(ciphertext) < nonceSize {
		return nil, fmt.Errorf("ciphertext too short")
	}
	nonce, body := ciphertext[:nonceSize], ciphertext[nonceSize:]
	return gcm.Open(nil, nonce, body, nil)
}

// ExportWIF encodes the wallet's secret in Wallet Import Format,
// base58check-encoded with the mainnet private-key version byte and a
// trailing compressed-pubkey marker, matching the format every other
// BCH-family wallet accepts on import.
func (w *Wallet) ExportWIF() string {
	secret := w.secretKey.Serialize()
	payload := append([]byte{}, secret...)
	payload = append(payload, 0x01) // compressed pubkey marker
	return base58.CheckEncode(payload, wifMainnetVersion)
}

// ImportWIF decodes a WIF-encoded secret back into a Wallet.
func ImportWIF(wif string) (*Wallet, error) {
	payload, version, err := base58.CheckDecode(wif)
	if err != nil {
		return nil, fmt.Errorf("wallet: decoding WIF: %w", err)
	}
	if version != wifMainnetVersion {
		return nil, fmt.Errorf("wallet: unexpected WIF version byte 0x%02x", version)
	}
	if len(payload) != 32 && len(payload) != 33 {
		return nil, fmt.Errorf("wallet: WIF payload has unexpected length %d", len(payload))
	}
	var secret [32]byte
	copy(secret[:], payload[:32])
	return FromSecret(secret)
}
