package libpoolcreator

import (
	"context"
	"strconv"

	"github.com/poolforge/poolcreator/app/appmessage"
	"github.com/poolforge/poolcreator/cmd/poolcreator/keys"
	"github.com/poolforge/poolcreator/domain/ledger/model/externalapi"
	"github.com/poolforge/poolcreator/domain/ledger/utils/signing"
	"github.com/poolforge/poolcreator/domain/ledger/utils/txhashing"
)

const (
	testCoinTypeA = "0xa::coin_a::COIN_A"
	testCoinTypeB = "0xb::coin_b::COIN_B"
	testGasType   = "0x2::sui::SUI"
)

type executeCall struct {
	txBytes     string
	signatures  []string
	options     *appmessage.TransactionBlockResponseOptions
	requestType appmessage.ExecuteTransactionRequestType
}

// fakeLedger is an in-memory LedgerClient
type fakeLedger struct {
	coins    map[string][]*appmessage.Coin
	metadata map[string]*appmessage.CoinMetadata

	gasPrice    uint64
	gasPriceErr error

	executeResponse func(call *executeCall) (*appmessage.TransactionBlockResponse, error)
	transactions    map[externalapi.Digest]*appmessage.TransactionBlockResponse

	getCoinsCalls int
	executeCalls  []*executeCall
}

func newFakeLedger() *fakeLedger {
	return &fakeLedger{
		coins: make(map[string][]*appmessage.Coin),
		metadata: map[string]*appmessage.CoinMetadata{
			testCoinTypeA: {Decimals: 6, Name: "Coin A", Symbol: "A"},
			testCoinTypeB: {Decimals: 9, Name: "Coin B", Symbol: "B"},
			testGasType:   {Decimals: 9, Name: "Sui", Symbol: "SUI"},
		},
		gasPrice:        1000,
		executeResponse: successfulExecution,
		transactions:    make(map[externalapi.Digest]*appmessage.TransactionBlockResponse),
	}
}

var nextTestObject uint16

func (l *fakeLedger) addCoin(coinType string, balance uint64) *appmessage.Coin {
	nextTestObject++
	high, low := byte(nextTestObject>>8), byte(nextTestObject)
	coin := &appmessage.Coin{
		CoinType:     coinType,
		CoinObjectID: externalapi.ObjectID{0xc0, high, low},
		Version:      appmessage.BigInt(nextTestObject),
		Digest:       externalapi.Digest{high, low},
		Balance:      appmessage.BigInt(balance),
	}
	l.coins[coinType] = append(l.coins[coinType], coin)
	return coin
}

func (l *fakeLedger) GetCoins(ctx context.Context, owner externalapi.Address, coinType string,
	cursor *string, limit uint) (*appmessage.GetCoinsResponse, error) {

	l.getCoinsCalls++
	start := 0
	if cursor != nil {
		var err error
		start, err = strconv.Atoi(*cursor)
		if err != nil {
			return nil, err
		}
	}
	coins := l.coins[l.storedType(coinType)]
	end := start + int(limit)
	if end > len(coins) {
		end = len(coins)
	}
	response := &appmessage.GetCoinsResponse{Data: coins[start:end]}
	if end < len(coins) {
		nextCursor := strconv.Itoa(end)
		response.NextCursor = &nextCursor
		response.HasNextPage = true
	}
	return response, nil
}

func (l *fakeLedger) GetCoinMetadata(ctx context.Context, coinType string) (*appmessage.CoinMetadata, error) {
	return l.metadata[l.storedType(coinType)], nil
}

// storedType returns the key under which coinType was stored, accepting any
// spelling of its address the way a node does
func (l *fakeLedger) storedType(coinType string) string {
	canonical, err := externalapi.CanonicalStructTag(coinType)
	if err != nil {
		return coinType
	}
	for stored := range l.coins {
		if storedCanonical, err := externalapi.CanonicalStructTag(stored); err == nil && storedCanonical == canonical {
			return stored
		}
	}
	for stored := range l.metadata {
		if storedCanonical, err := externalapi.CanonicalStructTag(stored); err == nil && storedCanonical == canonical {
			return stored
		}
	}
	return coinType
}

func (l *fakeLedger) GetReferenceGasPrice(ctx context.Context) (uint64, error) {
	if l.gasPriceErr != nil {
		return 0, l.gasPriceErr
	}
	return l.gasPrice, nil
}

func (l *fakeLedger) ExecuteTransactionBlock(ctx context.Context, txBytes string, signatures []string,
	options *appmessage.TransactionBlockResponseOptions,
	requestType appmessage.ExecuteTransactionRequestType) (*appmessage.TransactionBlockResponse, error) {

	call := &executeCall{txBytes: txBytes, signatures: signatures, options: options, requestType: requestType}
	l.executeCalls = append(l.executeCalls, call)
	return l.executeResponse(call)
}

func (l *fakeLedger) GetTransactionBlock(ctx context.Context, digest externalapi.Digest,
	options *appmessage.TransactionBlockResponseOptions) (*appmessage.TransactionBlockResponse, error) {

	response, ok := l.transactions[digest]
	if !ok {
		return nil, context.Canceled
	}
	return response, nil
}

var testRawEffects = []byte{0x01, 0x02, 0x03, 0x04}

func successfulExecution(call *executeCall) (*appmessage.TransactionBlockResponse, error) {
	confirmed := true
	return &appmessage.TransactionBlockResponse{
		Effects: &appmessage.TransactionEffects{
			Status: appmessage.ExecutionStatus{Status: appmessage.ExecutionStatusSuccess},
		},
		RawEffects:              testRawEffects,
		ConfirmedLocalExecution: &confirmed,
	}, nil
}

// countingKeystore counts the signatures it produces
type countingKeystore struct {
	keys.Keystore
	signatures int
}

func (ks *countingKeystore) SignSecure(address externalapi.Address, data *externalapi.TransactionData,
	intent txhashing.Intent) (*signing.Signature, error) {

	ks.signatures++
	return ks.Keystore.SignSecure(address, data, intent)
}
