package main

import (
	"fmt"

	"github.com/poolforge/poolcreator/cmd/poolcreator/keys"
	"github.com/poolforge/poolcreator/domain/ledger/model/externalapi"
)

func showAddresses(conf *showAddressesConfig) error {
	var addresses []externalapi.Address
	var err error
	if conf.FileKeystore != "" {
		fileKeystore, err := keys.OpenFileKeystore(conf.FileKeystore)
		if err != nil {
			return err
		}
		addresses = fileKeystore.Addresses()
	} else {
		addresses, err = keys.ReadAddresses(conf.KeysFile)
		if err != nil {
			return err
		}
	}

	fmt.Printf("Addresses (%d):\n", len(addresses))
	for _, address := range addresses {
		fmt.Println(address)
	}
	return nil
}
