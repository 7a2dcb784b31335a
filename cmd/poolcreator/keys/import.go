package keys

import (
	"strings"

	"github.com/btcsuite/btcutil/bech32"
	"github.com/pkg/errors"
	"github.com/poolforge/poolcreator/domain/ledger/utils/signing"
)

const privateKeyHRP = "suiprivkey"

// ParseBech32PrivateKey parses a private key in the suiprivkey bech32 form
func ParseBech32PrivateKey(encoded string) (signing.PrivateKey, error) {
	hrp, data, err := bech32.Decode(strings.TrimSpace(encoded))
	if err != nil {
		return nil, errors.Wrapf(signing.ErrInvalidKey, "bech32: %s", err)
	}
	if hrp != privateKeyHRP {
		return nil, errors.Wrapf(signing.ErrInvalidKey, "expected prefix %s, got %s", privateKeyHRP, hrp)
	}
	serialized, err := bech32.ConvertBits(data, 5, 8, false)
	if err != nil {
		return nil, errors.Wrapf(signing.ErrInvalidKey, "bech32: %s", err)
	}
	return signing.ParsePrivateKey(serialized)
}

// EncodeBech32PrivateKey returns privateKey in the suiprivkey bech32 form
func EncodeBech32PrivateKey(privateKey signing.PrivateKey) (string, error) {
	data, err := bech32.ConvertBits(privateKey.Serialize(), 8, 5, true)
	if err != nil {
		return "", err
	}
	return bech32.Encode(privateKeyHRP, data)
}

// ImportPrivateKey parses a private key given either in the suiprivkey bech32
// form or as a mnemonic. Mnemonics derive an ed25519 key along path.
func ImportPrivateKey(input string, path string) (signing.PrivateKey, error) {
	input = strings.TrimSpace(input)
	if strings.HasPrefix(input, privateKeyHRP+"1") {
		return ParseBech32PrivateKey(input)
	}
	if path == "" {
		path = signing.DefaultEd25519DerivationPath
	}
	return signing.Ed25519KeyFromMnemonic(strings.Join(strings.Fields(input), " "), path)
}
