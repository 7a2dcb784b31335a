package libpoolcreator

import (
	"bytes"
	"context"
	"encoding/base64"
	"strings"
	"testing"

	"github.com/davecgh/go-spew/spew"
	"github.com/pkg/errors"
	"github.com/poolforge/poolcreator/app/appmessage"
	"github.com/poolforge/poolcreator/cmd/poolcreator/keys"
	"github.com/poolforge/poolcreator/domain/ledger/model/externalapi"
	"github.com/poolforge/poolcreator/domain/ledger/utils/serialization"
	"github.com/poolforge/poolcreator/domain/ledger/utils/signing"
	"github.com/poolforge/poolcreator/domain/ledger/utils/txhashing"
	"github.com/poolforge/poolcreator/domain/netconfig"
	"github.com/poolforge/poolcreator/infrastructure/network/rpcclient"
)

type testFixture struct {
	ledger   *fakeLedger
	keystore *countingKeystore
	cfg      *PoolConfig
}

func newTestFixture(t *testing.T) *testFixture {
	privateKey, err := signing.GenerateEd25519PrivateKey()
	if err != nil {
		t.Fatalf("GenerateEd25519PrivateKey: %+v", err)
	}
	cfg, err := DefaultPoolConfig(&netconfig.TestnetParams)
	if err != nil {
		t.Fatalf("DefaultPoolConfig: %+v", err)
	}
	cfg.Sender = signing.AddressOf(privateKey)
	cfg.CoinTypeA = testCoinTypeA
	cfg.CoinTypeB = testCoinTypeB
	cfg.AmountA = 100
	cfg.AmountB = 200

	ledger := newFakeLedger()
	ledger.addCoin(testGasType, 50_000_000)
	ledger.addCoin(testCoinTypeA, 1000)
	ledger.addCoin(testCoinTypeB, 1000)

	return &testFixture{
		ledger:   ledger,
		keystore: &countingKeystore{Keystore: keys.NewMemoryKeystore(privateKey)},
		cfg:      cfg,
	}
}

func TestBuildPoolTransactionLayout(t *testing.T) {
	fixture := newTestFixture(t)
	poolTransaction, err := BuildPoolTransaction(context.Background(), fixture.ledger, fixture.cfg)
	if err != nil {
		t.Fatalf("BuildPoolTransaction: %+v", err)
	}

	transaction := poolTransaction.Data.Kind
	if len(transaction.Inputs) != 12 || len(transaction.Commands) != 1 {
		t.Fatalf("expected 12 inputs and 1 command, got: %s", spew.Sdump(transaction))
	}
	call := transaction.Commands[0].MoveCall
	if call.Module != DefaultModule || call.Function != DefaultFunction || call.Package != fixture.cfg.PackageID {
		t.Fatalf("unexpected call target %s::%s::%s", call.Package, call.Module, call.Function)
	}
	for i, argument := range call.Arguments {
		if argument != externalapi.Input(uint16(i)) {
			t.Fatalf("argument %d is %s", i, argument)
		}
	}

	expectedPure := map[int][]byte{
		2:  {0x3c, 0, 0, 0},
		3:  make([]byte, 16),
		4:  {0},
		5:  {0, 0, 0, 0},
		10: {1},
	}
	for index, expected := range expectedPure {
		slot := transaction.Inputs[index]
		if slot.Kind != externalapi.InputSlotPure || !bytes.Equal(slot.Pure, expected) {
			t.Fatalf("input %d: expected %x, got %s", index, expected, slot)
		}
	}

	globalConfig, err := serialization.EncodePure(serialization.String(DefaultGlobalConfig))
	if err != nil {
		t.Fatalf("EncodePure: %+v", err)
	}
	if !bytes.Equal(transaction.Inputs[0].Pure, globalConfig) {
		t.Fatalf("input 0 is not the global config string")
	}

	clock := transaction.Inputs[11].Pure
	if len(clock) != 40 || !bytes.Equal(clock[:32], externalapi.ClockObjectID[:]) {
		t.Fatalf("unexpected clock record %x", clock)
	}

	var metadataA serialization.CoinMetadata
	err = serialization.DecodePure(transaction.Inputs[8].Pure, &metadataA)
	if err != nil {
		t.Fatalf("DecodePure: %+v", err)
	}
	if metadataA.Symbol != "A" || metadataA.Decimals != 6 {
		t.Fatalf("input 8 is not the metadata of coin A: %+v", metadataA)
	}

	coinA := transaction.Inputs[6].Object
	coinB := transaction.Inputs[7].Object
	if coinA.Kind != externalapi.ObjectArgReceiving || coinB.Kind != externalapi.ObjectArgReceiving {
		t.Fatalf("pool coins are not passed as receiving objects")
	}
	if coinA.Ref != poolTransaction.CoinsA.Primary().Ref() || coinB.Ref != poolTransaction.CoinsB.Primary().Ref() {
		t.Fatalf("pool coin slots do not reference the selected coins")
	}

	gasData := poolTransaction.Data.GasData
	if gasData.Budget != DefaultGasBudget || gasData.Price != 1000 || gasData.Owner != fixture.cfg.Sender {
		t.Fatalf("unexpected gas data %+v", gasData)
	}
	for _, payment := range gasData.Payment {
		if payment.ObjectID == coinA.Ref.ObjectID || payment.ObjectID == coinB.Ref.ObjectID {
			t.Fatalf("gas payment %s is also a pool coin", payment)
		}
	}
}

func TestPoolCoinsAreDistinctWhenTypesMatch(t *testing.T) {
	fixture := newTestFixture(t)
	fixture.cfg.CoinTypeA = testGasType
	fixture.cfg.CoinTypeB = testGasType
	fixture.ledger.addCoin(testGasType, 10_000)
	fixture.ledger.addCoin(testGasType, 20_000)

	poolTransaction, err := BuildPoolTransaction(context.Background(), fixture.ledger, fixture.cfg)
	if err != nil {
		t.Fatalf("BuildPoolTransaction: %+v", err)
	}
	used := make(map[externalapi.ObjectID]struct{})
	refs := append(poolTransaction.GasCoins.Refs(), poolTransaction.CoinsA.Refs()...)
	refs = append(refs, poolTransaction.CoinsB.Refs()...)
	for _, ref := range refs {
		if _, ok := used[ref.ObjectID]; ok {
			t.Fatalf("object %s is referenced twice", ref.ObjectID)
		}
		used[ref.ObjectID] = struct{}{}
	}

	fixture = newTestFixture(t)
	fixture.cfg.CoinTypeA = testGasType
	_, err = BuildPoolTransaction(context.Background(), fixture.ledger, fixture.cfg)
	if !errors.Is(err, ErrInsufficientBalance) {
		t.Fatalf("expected ErrInsufficientBalance when the only coin pays for gas, got %+v", err)
	}
}

func TestCreatePool(t *testing.T) {
	fixture := newTestFixture(t)
	response, err := CreatePool(context.Background(), fixture.ledger, fixture.keystore, fixture.cfg)
	if err != nil {
		t.Fatalf("CreatePool: %+v", err)
	}

	if len(fixture.ledger.executeCalls) != 1 {
		t.Fatalf("expected one submission, got %d", len(fixture.ledger.executeCalls))
	}
	call := fixture.ledger.executeCalls[0]
	if call.requestType != WaitForLocalExecution.requestType() {
		t.Fatalf("unexpected request type %s", call.requestType)
	}
	if !call.options.ShowRawEffects || !call.options.ShowBalanceChanges {
		t.Fatalf("full content was not requested: %+v", call.options)
	}
	if len(call.signatures) != 1 {
		t.Fatalf("expected one signature, got %d", len(call.signatures))
	}

	txBytes, err := base64.StdEncoding.DecodeString(call.txBytes)
	if err != nil {
		t.Fatalf("DecodeString: %+v", err)
	}
	signature, err := signing.ParseBase64Signature(call.signatures[0])
	if err != nil {
		t.Fatalf("ParseBase64Signature: %+v", err)
	}
	digest := txhashing.SigningDigest(txhashing.TransactionIntent(), txBytes)
	if !signing.VerifySignature(signature, digest) {
		t.Fatalf("the submitted signature does not verify against the transaction bytes")
	}
	if signing.AddressFromPublicKey(signature.Scheme, signature.PublicKey) != fixture.cfg.Sender {
		t.Fatalf("the transaction was not signed by its sender")
	}

	if response.EffectsDigest.IsZero() {
		t.Fatalf("expected an effects digest")
	}
	if response.EffectsDigest != txhashing.EffectsDigest(testRawEffects) {
		t.Fatalf("effects digest does not match the raw effects")
	}
	if response.Digest != txhashing.TransactionDigestFromBytes(txBytes) {
		t.Fatalf("response digest %s does not match the submitted bytes", response.Digest)
	}
	if !response.Confirmed {
		t.Fatalf("expected a confirmed response")
	}
}

func TestCreatePoolMatchesPaddedCoinTypes(t *testing.T) {
	padded := func(shortAddress string, rest string) string {
		return "0x" + strings.Repeat("0", 64-len(shortAddress)) + shortAddress + rest
	}
	tests := []struct {
		name        string
		ledgerTypeA string
		ledgerTypeB string
		configTypeA string
		configTypeB string
	}{
		{
			name:        "ledger reports padded addresses",
			ledgerTypeA: padded("a", "::coin_a::COIN_A"),
			ledgerTypeB: padded("b", "::coin_b::COIN_B"),
			configTypeA: testCoinTypeA,
			configTypeB: testCoinTypeB,
		},
		{
			name:        "config uses padded upper case addresses",
			ledgerTypeA: testCoinTypeA,
			ledgerTypeB: testCoinTypeB,
			configTypeA: padded("A", "::coin_a::COIN_A"),
			configTypeB: "0x000B::coin_b::COIN_B",
		},
	}
	for _, test := range tests {
		fixture := newTestFixture(t)
		fixture.ledger.coins = make(map[string][]*appmessage.Coin)
		delete(fixture.ledger.metadata, testCoinTypeA)
		delete(fixture.ledger.metadata, testCoinTypeB)
		fixture.ledger.metadata[test.ledgerTypeA] = &appmessage.CoinMetadata{Decimals: 6, Name: "Coin A", Symbol: "A"}
		fixture.ledger.metadata[test.ledgerTypeB] = &appmessage.CoinMetadata{Decimals: 9, Name: "Coin B", Symbol: "B"}
		fixture.ledger.addCoin(testGasType, 50_000_000)
		fixture.ledger.addCoin(test.ledgerTypeA, 1000)
		fixture.ledger.addCoin(test.ledgerTypeB, 1000)
		fixture.cfg.CoinTypeA = test.configTypeA
		fixture.cfg.CoinTypeB = test.configTypeB

		poolTransaction, err := BuildPoolTransaction(context.Background(), fixture.ledger, fixture.cfg)
		if err != nil {
			t.Fatalf("%s: BuildPoolTransaction: %+v", test.name, err)
		}
		if len(poolTransaction.CoinsA.Coins) != 1 || len(poolTransaction.CoinsB.Coins) != 1 {
			t.Fatalf("%s: unexpected coin selection %s", test.name, spew.Sdump(poolTransaction.CoinsA, poolTransaction.CoinsB))
		}
		if fixture.cfg.CoinTypeA != padded("a", "::coin_a::COIN_A") ||
			fixture.cfg.CoinTypeB != padded("b", "::coin_b::COIN_B") {
			t.Fatalf("%s: coin types were not canonicalized: %s, %s", test.name,
				fixture.cfg.CoinTypeA, fixture.cfg.CoinTypeB)
		}
	}
}

func TestCreatePoolInsufficientBalance(t *testing.T) {
	fixture := newTestFixture(t)
	fixture.ledger.coins[testCoinTypeB] = nil

	_, err := CreatePool(context.Background(), fixture.ledger, fixture.keystore, fixture.cfg)
	var insufficientBalanceError *InsufficientBalanceError
	if !errors.As(err, &insufficientBalanceError) {
		t.Fatalf("expected an InsufficientBalanceError, got %+v", err)
	}
	expectedType, err := externalapi.CanonicalStructTag(testCoinTypeB)
	if err != nil {
		t.Fatalf("CanonicalStructTag: %+v", err)
	}
	if insufficientBalanceError.CoinType != expectedType || insufficientBalanceError.Required != 200 ||
		insufficientBalanceError.Available != 0 {
		t.Fatalf("unexpected error details %+v", insufficientBalanceError)
	}
	if fixture.keystore.signatures != 0 || len(fixture.ledger.executeCalls) != 0 {
		t.Fatalf("the transaction was signed or submitted")
	}
}

func TestCreatePoolAmountNotCovered(t *testing.T) {
	fixture := newTestFixture(t)
	fixture.ledger.addCoin(testCoinTypeA, 500)
	fixture.cfg.AmountA = 1200

	_, err := BuildPoolTransaction(context.Background(), fixture.ledger, fixture.cfg)
	var insufficientBalanceError *InsufficientBalanceError
	if !errors.As(err, &insufficientBalanceError) {
		t.Fatalf("expected an InsufficientBalanceError for receiving coins, got %+v", err)
	}
	if insufficientBalanceError.Available != 1000 {
		t.Fatalf("expected the largest single coin to be reported, got %d", insufficientBalanceError.Available)
	}
}

func TestCreatePoolMergesOwnedCoins(t *testing.T) {
	fixture := newTestFixture(t)
	fixture.ledger.addCoin(testCoinTypeA, 500)
	fixture.cfg.AmountA = 1200
	fixture.cfg.CoinObjectKind = externalapi.ObjectArgImmOrOwned

	poolTransaction, err := BuildPoolTransaction(context.Background(), fixture.ledger, fixture.cfg)
	if err != nil {
		t.Fatalf("BuildPoolTransaction: %+v", err)
	}
	transaction := poolTransaction.Data.Kind
	if len(transaction.Inputs) != 13 || len(transaction.Commands) != 2 {
		t.Fatalf("expected 13 inputs and 2 commands, got: %s", spew.Sdump(transaction))
	}
	merge := transaction.Commands[0]
	if merge.Kind != externalapi.CommandMergeCoins || merge.MergeCoins.Destination != externalapi.Input(6) ||
		len(merge.MergeCoins.Sources) != 1 || merge.MergeCoins.Sources[0] != externalapi.Input(12) {
		t.Fatalf("unexpected merge command: %s", spew.Sdump(merge))
	}
	if transaction.Commands[1].Kind != externalapi.CommandMoveCall {
		t.Fatalf("the move call does not follow the merge")
	}
	if poolTransaction.CoinsA.Total != 1500 {
		t.Fatalf("unexpected coin A total %d", poolTransaction.CoinsA.Total)
	}
}

func TestCreatePoolMissingMetadata(t *testing.T) {
	fixture := newTestFixture(t)
	delete(fixture.ledger.metadata, testCoinTypeA)

	_, err := CreatePool(context.Background(), fixture.ledger, fixture.keystore, fixture.cfg)
	if !errors.Is(err, ErrMissingCoinMetadata) {
		t.Fatalf("expected ErrMissingCoinMetadata, got %+v", err)
	}
	if len(fixture.ledger.executeCalls) != 0 {
		t.Fatalf("the transaction was submitted")
	}
}

func TestCreatePoolGasPriceFailure(t *testing.T) {
	fixture := newTestFixture(t)
	fixture.ledger.gasPriceErr = errors.WithStack(&rpcclient.NetworkError{
		Method: "suix_getReferenceGasPrice",
		Err:    errors.New("connection refused"),
	})

	_, err := CreatePool(context.Background(), fixture.ledger, fixture.keystore, fixture.cfg)
	if !errors.Is(err, rpcclient.ErrNetwork) {
		t.Fatalf("expected ErrNetwork, got %+v", err)
	}
	if fixture.keystore.signatures != 0 {
		t.Fatalf("the transaction was signed")
	}
	if len(fixture.ledger.executeCalls) != 0 {
		t.Fatalf("the transaction was submitted")
	}
}

func TestCreatePoolKeyNotFound(t *testing.T) {
	fixture := newTestFixture(t)
	otherKey, err := signing.GenerateEd25519PrivateKey()
	if err != nil {
		t.Fatalf("GenerateEd25519PrivateKey: %+v", err)
	}
	fixture.keystore.Keystore = keys.NewMemoryKeystore(otherKey)

	_, err = CreatePool(context.Background(), fixture.ledger, fixture.keystore, fixture.cfg)
	if !errors.Is(err, keys.ErrKeyNotFound) {
		t.Fatalf("expected ErrKeyNotFound, got %+v", err)
	}
	if len(fixture.ledger.executeCalls) != 0 {
		t.Fatalf("the transaction was submitted")
	}
}

func TestPoolConfigValidate(t *testing.T) {
	fixture := newTestFixture(t)
	fixture.cfg.GasBudget = 0
	err := fixture.cfg.Validate()
	if !errors.Is(err, externalapi.ErrInvalidGasData) {
		t.Fatalf("expected ErrInvalidGasData for a zero budget, got %+v", err)
	}

	fixture = newTestFixture(t)
	fixture.cfg.CoinTypeB = "not a type"
	err = fixture.cfg.Validate()
	if err == nil {
		t.Fatalf("expected an error for an invalid coin type")
	}

	fixture = newTestFixture(t)
	fixture.cfg.CoinObjectKind = externalapi.ObjectArgShared
	err = fixture.cfg.Validate()
	if err == nil {
		t.Fatalf("expected an error for shared pool coins")
	}
}
