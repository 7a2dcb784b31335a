package main

import (
	"fmt"

	"github.com/poolforge/poolcreator/cmd/poolcreator/keys"
	"github.com/poolforge/poolcreator/domain/ledger/utils/signing"
)

func importKey(conf *importKeyConfig) error {
	input := conf.Key
	if input == "" {
		secret, err := keys.GetPassword("Private key or mnemonic: ")
		if err != nil {
			return err
		}
		input = string(secret)
	}

	privateKey, err := keys.ImportPrivateKey(input, conf.DerivationPath)
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

	fmt.Printf("Imported %s key of address:\n%s\n", privateKey.Scheme(), signing.AddressOf(privateKey))
	fmt.Printf("Keys file: %s\n", conf.KeysFile)
	return nil
}
