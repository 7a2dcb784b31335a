package appmessage

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/davecgh/go-spew/spew"
	"github.com/poolforge/poolcreator/domain/ledger/model/externalapi"
)

func TestBigInt(t *testing.T) {
	tests := []struct {
		json     string
		expected BigInt
	}{
		{json: `"1000"`, expected: 1000},
		{json: `750`, expected: 750},
		{json: `"18446744073709551615"`, expected: 18446744073709551615},
	}
	for _, test := range tests {
		var value BigInt
		err := json.Unmarshal([]byte(test.json), &value)
		if err != nil {
			t.Fatalf("Unmarshal %s: %+v", test.json, err)
		}
		if value != test.expected {
			t.Fatalf("Unmarshal %s: expected %d, got %d", test.json, test.expected, value)
		}
	}

	for _, invalid := range []string{`"-1"`, `"abc"`, `1.5`, `"18446744073709551616"`} {
		var value BigInt
		err := json.Unmarshal([]byte(invalid), &value)
		if err == nil {
			t.Fatalf("Unmarshal %s: expected an error", invalid)
		}
	}

	marshalled, err := json.Marshal(BigInt(42))
	if err != nil {
		t.Fatalf("Marshal: %+v", err)
	}
	if string(marshalled) != `"42"` {
		t.Fatalf("unexpected marshalled BigInt %s", marshalled)
	}
}

func TestRawBytes(t *testing.T) {
	var fromNumbers RawBytes
	err := json.Unmarshal([]byte(`[1, 2, 255]`), &fromNumbers)
	if err != nil {
		t.Fatalf("Unmarshal: %+v", err)
	}
	if !bytes.Equal(fromNumbers, []byte{1, 2, 255}) {
		t.Fatalf("unexpected bytes %x", []byte(fromNumbers))
	}

	var fromBase64 RawBytes
	err = json.Unmarshal([]byte(`"AQL/"`), &fromBase64)
	if err != nil {
		t.Fatalf("Unmarshal: %+v", err)
	}
	if !bytes.Equal(fromBase64, fromNumbers) {
		t.Fatalf("base64 and number forms differ: %x != %x", []byte(fromBase64), []byte(fromNumbers))
	}

	var outOfRange RawBytes
	err = json.Unmarshal([]byte(`[256]`), &outOfRange)
	if err == nil {
		t.Fatalf("Unmarshal: expected an error for a value over 255")
	}

	marshalled, err := json.Marshal(RawBytes{0, 7})
	if err != nil {
		t.Fatalf("Marshal: %+v", err)
	}
	if string(marshalled) != `[0,7]` {
		t.Fatalf("unexpected marshalled bytes %s", marshalled)
	}
}

func TestCoinPage(t *testing.T) {
	page := `{
		"data": [{
			"coinType": "0x2::sui::SUI",
			"coinObjectId": "0x5",
			"version": "12",
			"digest": "11111111111111111111111111111111",
			"balance": "3000000000",
			"previousTransaction": "11111111111111111111111111111111"
		}],
		"nextCursor": "0x5",
		"hasNextPage": true
	}`
	var response GetCoinsResponse
	err := json.Unmarshal([]byte(page), &response)
	if err != nil {
		t.Fatalf("Unmarshal: %+v", err)
	}
	if len(response.Data) != 1 || !response.HasNextPage || response.NextCursor == nil {
		t.Fatalf("unexpected page: %s", spew.Sdump(response))
	}

	expectedID, err := externalapi.ObjectIDFromHex("0x5")
	if err != nil {
		t.Fatalf("ObjectIDFromHex: %+v", err)
	}
	ref := response.Data[0].Ref()
	if ref.ObjectID != expectedID || ref.Version != 12 || !ref.Digest.IsZero() {
		t.Fatalf("unexpected ref %s", ref)
	}
	if response.Data[0].Balance != 3_000_000_000 {
		t.Fatalf("unexpected balance %d", response.Data[0].Balance)
	}
}
