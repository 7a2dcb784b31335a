package rpcclient

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/poolforge/poolcreator/app/appmessage"
	"github.com/poolforge/poolcreator/domain/ledger/model/externalapi"
)

type jsonRPCRequest struct {
	ID     json.RawMessage   `json:"id"`
	Method string            `json:"method"`
	Params []json.RawMessage `json:"params"`
}

type jsonRPCError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type handlerFunc func(params []json.RawMessage) (interface{}, *jsonRPCError)

func newTestServer(t *testing.T, handlers map[string]handlerFunc) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var request jsonRPCRequest
		err := json.NewDecoder(r.Body).Decode(&request)
		if err != nil {
			t.Errorf("Decode: %+v", err)
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		response := map[string]interface{}{"jsonrpc": "2.0", "id": request.ID}
		handler, ok := handlers[request.Method]
		if !ok {
			response["error"] = &jsonRPCError{Code: -32601, Message: "method not found"}
		} else {
			result, rpcErr := handler(request.Params)
			if rpcErr != nil {
				response["error"] = rpcErr
			} else {
				response["result"] = result
			}
		}
		w.Header().Set("Content-Type", "application/json")
		err = json.NewEncoder(w).Encode(response)
		if err != nil {
			t.Errorf("Encode: %+v", err)
		}
	}))
}

func newTestClient(t *testing.T, server *httptest.Server) *RPCClient {
	client, err := NewRPCClient(server.URL, nil)
	if err != nil {
		t.Fatalf("NewRPCClient: %+v", err)
	}
	return client
}

func TestGetCoins(t *testing.T) {
	owner, err := externalapi.AddressFromHex("0x26c25b83e42a5dd4af29b28db94eacc2caa037d6f311d17b8d7975f50ce4a451")
	if err != nil {
		t.Fatalf("AddressFromHex: %+v", err)
	}
	server := newTestServer(t, map[string]handlerFunc{
		"suix_getCoins": func(params []json.RawMessage) (interface{}, *jsonRPCError) {
			var requestedOwner, coinType string
			_ = json.Unmarshal(params[0], &requestedOwner)
			_ = json.Unmarshal(params[1], &coinType)
			if requestedOwner != owner.String() || coinType != "0x2::sui::SUI" || string(params[2]) != "null" {
				return nil, &jsonRPCError{Code: -32602, Message: "unexpected params"}
			}
			return map[string]interface{}{
				"data": []map[string]interface{}{{
					"coinType":     "0x2::sui::SUI",
					"coinObjectId": "0x7",
					"version":      "3",
					"digest":       "11111111111111111111111111111111",
					"balance":      "500",
				}},
				"nextCursor":  nil,
				"hasNextPage": false,
			}, nil
		},
	})
	defer server.Close()
	client := newTestClient(t, server)
	defer client.Close()

	page, err := client.GetCoins(context.Background(), owner, "0x2::sui::SUI", nil, 50)
	if err != nil {
		t.Fatalf("GetCoins: %+v", err)
	}
	if len(page.Data) != 1 || page.HasNextPage || page.Data[0].Balance != 500 || page.Data[0].Version != 3 {
		t.Fatalf("unexpected page %+v", page)
	}
}

func TestGetCoinMetadataAbsent(t *testing.T) {
	server := newTestServer(t, map[string]handlerFunc{
		"suix_getCoinMetadata": func(params []json.RawMessage) (interface{}, *jsonRPCError) {
			var coinType string
			_ = json.Unmarshal(params[0], &coinType)
			if coinType == "0x2::sui::SUI" {
				return map[string]interface{}{
					"decimals": 9, "name": "Sui", "symbol": "SUI", "description": "", "iconUrl": nil, "id": "0x9",
				}, nil
			}
			return nil, nil
		},
	})
	defer server.Close()
	client := newTestClient(t, server)
	defer client.Close()

	metadata, err := client.GetCoinMetadata(context.Background(), "0x2::sui::SUI")
	if err != nil {
		t.Fatalf("GetCoinMetadata: %+v", err)
	}
	if metadata == nil || metadata.Decimals != 9 || metadata.Symbol != "SUI" || metadata.ID == nil || metadata.IconURL != nil {
		t.Fatalf("unexpected metadata %+v", metadata)
	}

	metadata, err = client.GetCoinMetadata(context.Background(), "0xabc::nothing::HERE")
	if err != nil {
		t.Fatalf("GetCoinMetadata: %+v", err)
	}
	if metadata != nil {
		t.Fatalf("expected no metadata, got %+v", metadata)
	}
}

func TestGetReferenceGasPrice(t *testing.T) {
	server := newTestServer(t, map[string]handlerFunc{
		"suix_getReferenceGasPrice": func(params []json.RawMessage) (interface{}, *jsonRPCError) {
			return "750", nil
		},
	})
	defer server.Close()
	client := newTestClient(t, server)
	defer client.Close()

	price, err := client.GetReferenceGasPrice(context.Background())
	if err != nil {
		t.Fatalf("GetReferenceGasPrice: %+v", err)
	}
	if price != 750 {
		t.Fatalf("expected price 750, got %d", price)
	}
}

func TestExecuteTransactionBlock(t *testing.T) {
	server := newTestServer(t, map[string]handlerFunc{
		"sui_executeTransactionBlock": func(params []json.RawMessage) (interface{}, *jsonRPCError) {
			var signatures []string
			var options appmessage.TransactionBlockResponseOptions
			var requestType string
			_ = json.Unmarshal(params[1], &signatures)
			_ = json.Unmarshal(params[2], &options)
			_ = json.Unmarshal(params[3], &requestType)
			if len(signatures) != 1 || !options.ShowRawEffects || requestType != "WaitForLocalExecution" {
				return nil, &jsonRPCError{Code: -32602, Message: "unexpected params"}
			}
			return map[string]interface{}{
				"digest":                  "11111111111111111111111111111111",
				"effects":                 map[string]interface{}{"status": map[string]string{"status": "success"}},
				"rawEffects":              []int{1, 2, 3},
				"confirmedLocalExecution": true,
			}, nil
		},
	})
	defer server.Close()
	client := newTestClient(t, server)
	defer client.Close()

	response, err := client.ExecuteTransactionBlock(context.Background(), "AAAA", []string{"AAAA"},
		&appmessage.TransactionBlockResponseOptions{ShowEffects: true, ShowRawEffects: true},
		appmessage.RequestTypeWaitForLocalExecution)
	if err != nil {
		t.Fatalf("ExecuteTransactionBlock: %+v", err)
	}
	if response.Effects == nil || response.Effects.Status.Status != appmessage.ExecutionStatusSuccess {
		t.Fatalf("unexpected effects %+v", response.Effects)
	}
	if len(response.RawEffects) != 3 || response.ConfirmedLocalExecution == nil || !*response.ConfirmedLocalExecution {
		t.Fatalf("unexpected response %+v", response)
	}
}

func TestRPCError(t *testing.T) {
	server := newTestServer(t, map[string]handlerFunc{
		"sui_getTransactionBlock": func(params []json.RawMessage) (interface{}, *jsonRPCError) {
			return nil, &jsonRPCError{Code: -32602, Message: "Could not find the referenced transaction"}
		},
	})
	defer server.Close()
	client := newTestClient(t, server)
	defer client.Close()

	_, err := client.GetTransactionBlock(context.Background(), externalapi.Digest{}, nil)
	if !errors.Is(err, ErrRPC) {
		t.Fatalf("expected ErrRPC, got %+v", err)
	}
	if errors.Is(err, ErrNetwork) {
		t.Fatalf("an RPC error must not be reported as a network error")
	}
}

func TestNetworkError(t *testing.T) {
	server := newTestServer(t, map[string]handlerFunc{})
	client := newTestClient(t, server)
	defer client.Close()
	server.Close()

	_, err := client.GetReferenceGasPrice(context.Background())
	if !errors.Is(err, ErrNetwork) {
		t.Fatalf("expected ErrNetwork, got %+v", err)
	}
}

func TestTimeout(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	defer server.Close()
	defer close(release)

	client, err := NewRPCClient(server.URL, nil)
	if err != nil {
		t.Fatalf("NewRPCClient: %+v", err)
	}
	defer client.Close()
	client.SetTimeout(50 * time.Millisecond)

	_, err = client.GetReferenceGasPrice(context.Background())
	if !errors.Is(err, ErrNetwork) {
		t.Fatalf("expected ErrNetwork, got %+v", err)
	}
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected the cause to be a deadline, got %+v", err)
	}
}
