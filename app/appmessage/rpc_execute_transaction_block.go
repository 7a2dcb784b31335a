package appmessage

import (
	"encoding/json"
)

// ExecuteTransactionRequestType is the confirmation level the node waits
// for before answering an execution request
type ExecuteTransactionRequestType string

// Request types
const (
	RequestTypeImmediateReturn       ExecuteTransactionRequestType = "ImmediateReturn"
	RequestTypeWaitForEffectsCert    ExecuteTransactionRequestType = "WaitForEffectsCert"
	RequestTypeWaitForLocalExecution ExecuteTransactionRequestType = "WaitForLocalExecution"
)

// TransactionBlockResponseOptions selects the parts of a transaction
// response the node should include
type TransactionBlockResponseOptions struct {
	ShowInput          bool `json:"showInput"`
	ShowRawInput       bool `json:"showRawInput"`
	ShowEffects        bool `json:"showEffects"`
	ShowRawEffects     bool `json:"showRawEffects"`
	ShowEvents         bool `json:"showEvents"`
	ShowObjectChanges  bool `json:"showObjectChanges"`
	ShowBalanceChanges bool `json:"showBalanceChanges"`
}

// Execution status values
const (
	ExecutionStatusSuccess = "success"
	ExecutionStatusFailure = "failure"
)

// ExecutionStatus is the outcome of executing a transaction
type ExecutionStatus struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

// GasCostSummary is the gas charged to a transaction
type GasCostSummary struct {
	ComputationCost         BigInt `json:"computationCost"`
	StorageCost             BigInt `json:"storageCost"`
	StorageRebate           BigInt `json:"storageRebate"`
	NonRefundableStorageFee BigInt `json:"nonRefundableStorageFee"`
}

// TransactionEffects is the readable form of the effects of a transaction
type TransactionEffects struct {
	Status            ExecutionStatus `json:"status"`
	ExecutedEpoch     BigInt          `json:"executedEpoch"`
	GasUsed           *GasCostSummary `json:"gasUsed,omitempty"`
	TransactionDigest string          `json:"transactionDigest"`
}

// TransactionBlockResponse is the response to executing or querying a
// transaction
type TransactionBlockResponse struct {
	Digest                  string              `json:"digest"`
	Transaction             json.RawMessage     `json:"transaction,omitempty"`
	RawTransaction          string              `json:"rawTransaction,omitempty"`
	Effects                 *TransactionEffects `json:"effects,omitempty"`
	RawEffects              RawBytes            `json:"rawEffects,omitempty"`
	Events                  []json.RawMessage   `json:"events,omitempty"`
	ObjectChanges           []json.RawMessage   `json:"objectChanges,omitempty"`
	BalanceChanges          []json.RawMessage   `json:"balanceChanges,omitempty"`
	ConfirmedLocalExecution *bool               `json:"confirmedLocalExecution,omitempty"`
	Checkpoint              *BigInt             `json:"checkpoint,omitempty"`
	Errors                  []string            `json:"errors,omitempty"`
}
