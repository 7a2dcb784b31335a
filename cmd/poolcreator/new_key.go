package main

import (
	"fmt"

	"github.com/poolforge/poolcreator/cmd/poolcreator/keys"
	"github.com/poolforge/poolcreator/domain/ledger/utils/signing"
)

func newKey(conf *newKeyConfig) error {
	mnemonic, err := signing.CreateMnemonic()
	if err != nil {
		return err
	}
	path := conf.DerivationPath
	if path == "" {
		path = signing.DefaultEd25519DerivationPath
	}
	privateKey, err := signing.Ed25519KeyFromMnemonic(mnemonic, path)
	if err != nil {
		return err
	}

	password, err := keystorePassword(&conf.KeystoreFlags, true)
	if err != nil {
		return err
	}
	err = keys.AddKeys(conf.KeysFile, password, privateKey)
	if err != nil {
		return err
	}

	fmt.Printf("Mnemonic (write it down and keep it secret):\n%s\n\n", mnemonic)
	fmt.Printf("Address:\n%s\n", signing.AddressOf(privateKey))
	return nil
}
