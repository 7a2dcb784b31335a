package main

import (
	"fmt"
	"os"

	"github.com/pkg/errors"
	"github.com/poolforge/poolcreator/cmd/poolcreator/keys"
	"github.com/poolforge/poolcreator/domain/netconfig"
	"github.com/poolforge/poolcreator/infrastructure/network/rpcclient"
)

func printErrorAndExit(err error) {
	if printStackTraces {
		fmt.Fprintf(os.Stderr, "%+v\n", err)
	} else {
		fmt.Fprintf(os.Stderr, "%s\n", err)
	}
	os.Exit(1)
}

func connectToRPC(params *netconfig.Params, conf *RPCFlags) (*rpcclient.RPCClient, error) {
	rpcAddress := conf.RPCServer
	if rpcAddress == "" {
		rpcAddress = params.RPCURL
	}

	var proxy *rpcclient.ProxyConfig
	if conf.Proxy != "" {
		proxy = &rpcclient.ProxyConfig{
			Address:  conf.Proxy,
			Username: conf.ProxyUser,
			Password: conf.ProxyPass,
		}
	}

	client, err := rpcclient.NewRPCClient(rpcAddress, proxy)
	if err != nil {
		return nil, err
	}
	if conf.Timeout != 0 {
		client.SetTimeout(conf.Timeout)
	}
	return client, nil
}

func keystorePassword(conf *KeystoreFlags, confirm bool) ([]byte, error) {
	if conf.Password != "" {
		return []byte(conf.Password), nil
	}
	password, err := keys.GetPassword("Password: ")
	if err != nil {
		return nil, err
	}
	if !confirm {
		return password, nil
	}
	confirmation, err := keys.GetPassword("Confirm password: ")
	if err != nil {
		return nil, err
	}
	if string(password) != string(confirmation) {
		return nil, errors.New("passwords are not identical")
	}
	return password, nil
}

func openKeystore(conf *KeystoreFlags) (keys.Keystore, error) {
	if conf.FileKeystore != "" {
		fileKeystore, err := keys.OpenFileKeystore(conf.FileKeystore)
		if err != nil {
			return nil, err
		}
		return fileKeystore, nil
	}

	password, err := keystorePassword(conf, false)
	if err != nil {
		return nil, err
	}
	encryptedKeystore, err := keys.OpenEncryptedKeystore(conf.KeysFile, password)
	if err != nil {
		return nil, err
	}
	return encryptedKeystore, nil
}
