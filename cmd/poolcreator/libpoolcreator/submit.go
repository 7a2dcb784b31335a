package libpoolcreator

import (
	"context"
	"fmt"
	"regexp"
	"strconv"

	"github.com/pkg/errors"
	"github.com/poolforge/poolcreator/app/appmessage"
	"github.com/poolforge/poolcreator/domain/ledger/model/externalapi"
	"github.com/poolforge/poolcreator/domain/ledger/utils/txhashing"
	"github.com/poolforge/poolcreator/infrastructure/network/rpcclient"
)

// ConfirmationPolicy is how long a submission waits before returning
type ConfirmationPolicy uint8

// Confirmation policies
const (
	// FireAndForget returns as soon as the node accepts the transaction
	FireAndForget ConfirmationPolicy = iota

	// WaitForLocalExecution waits until the node executed the transaction
	WaitForLocalExecution

	// WaitForEffectsCert waits until the effects are certified
	WaitForEffectsCert
)

var confirmationPolicyNames = map[ConfirmationPolicy]string{
	FireAndForget:         "fire-and-forget",
	WaitForLocalExecution: "wait-for-local-execution",
	WaitForEffectsCert:    "wait-for-effects-cert",
}

func (p ConfirmationPolicy) String() string {
	name, ok := confirmationPolicyNames[p]
	if !ok {
		return fmt.Sprintf("unknown policy %d", uint8(p))
	}
	return name
}

// ParseConfirmationPolicy parses the name of a confirmation policy
func ParseConfirmationPolicy(name string) (ConfirmationPolicy, error) {
	for policy, policyName := range confirmationPolicyNames {
		if policyName == name {
			return policy, nil
		}
	}
	return 0, errors.Errorf("unknown confirmation policy %s", name)
}

func (p ConfirmationPolicy) requestType() appmessage.ExecuteTransactionRequestType {
	switch p {
	case WaitForLocalExecution:
		return appmessage.RequestTypeWaitForLocalExecution
	case WaitForEffectsCert:
		return appmessage.RequestTypeWaitForEffectsCert
	}
	return appmessage.RequestTypeImmediateReturn
}

// ResponseOptions selects the parts of the execution response to request
type ResponseOptions appmessage.TransactionBlockResponseOptions

// FullContent requests every part of the execution response
func FullContent() *ResponseOptions {
	return &ResponseOptions{
		ShowInput:          true,
		ShowRawInput:       true,
		ShowEffects:        true,
		ShowRawEffects:     true,
		ShowEvents:         true,
		ShowObjectChanges:  true,
		ShowBalanceChanges: true,
	}
}

func (o *ResponseOptions) wantsEffects() bool {
	return o != nil && (o.ShowEffects || o.ShowRawEffects)
}

var (
	// ErrExecution indicates a transaction the ledger executed and aborted
	ErrExecution = errors.New("transaction execution failed")

	// ErrConfirmationTimeout indicates a submission whose outcome is unknown
	// because the confirmation did not arrive in time
	ErrConfirmationTimeout = errors.New("confirmation timed out")
)

// ExecutionError is a transaction execution failure reported by the ledger.
// It matches ErrExecution.
type ExecutionError struct {
	Digest  externalapi.Digest
	Message string

	// AbortCode and Command are set when a Move call aborted
	AbortCode *uint64
	Command   *uint64
}

func (e *ExecutionError) Error() string {
	if e.AbortCode != nil {
		return fmt.Sprintf("%s: transaction %s aborted with code %d: %s", ErrExecution, e.Digest, *e.AbortCode, e.Message)
	}
	return fmt.Sprintf("%s: transaction %s: %s", ErrExecution, e.Digest, e.Message)
}

// Is implements errors.Is
func (e *ExecutionError) Is(target error) bool {
	return target == ErrExecution
}

// ConfirmationTimeoutError reports a submission whose outcome is unknown.
// The transaction may still execute. It matches ErrConfirmationTimeout.
type ConfirmationTimeoutError struct {
	Digest externalapi.Digest
	Policy ConfirmationPolicy
	Err    error
}

func (e *ConfirmationTimeoutError) Error() string {
	message := fmt.Sprintf("%s: transaction %s was not confirmed with policy %s", ErrConfirmationTimeout, e.Digest, e.Policy)
	if e.Err != nil {
		message += ": " + e.Err.Error()
	}
	return message
}

// Is implements errors.Is
func (e *ConfirmationTimeoutError) Is(target error) bool {
	return target == ErrConfirmationTimeout
}

// Unwrap returns the cause of the timeout, if any
func (e *ConfirmationTimeoutError) Unwrap() error {
	return e.Err
}

// nodeTimeoutPattern matches the node's report that it stopped waiting for
// the transaction, which may still be finalized afterwards
var nodeTimeoutPattern = regexp.MustCompile(`(?i)timed out|timeout|finality`)

// isConfirmationTimeout reports whether err leaves the submission's outcome
// unknown, either because the local deadline passed or because the node
// gave up waiting for finality
func isConfirmationTimeout(ctx context.Context, err error) bool {
	if errors.Is(err, context.DeadlineExceeded) || ctx.Err() == context.DeadlineExceeded {
		return true
	}
	return errors.Is(err, rpcclient.ErrRPC) && nodeTimeoutPattern.MatchString(err.Error())
}

var moveAbortPattern = regexp.MustCompile(`MoveAbort\(.*,\s*(\d+)\)\s*in command\s+(\d+)`)

func newExecutionError(digest externalapi.Digest, message string) *ExecutionError {
	executionError := &ExecutionError{Digest: digest, Message: message}
	match := moveAbortPattern.FindStringSubmatch(message)
	if match == nil {
		return executionError
	}
	abortCode, err := strconv.ParseUint(match[1], 10, 64)
	if err == nil {
		executionError.AbortCode = &abortCode
	}
	command, err := strconv.ParseUint(match[2], 10, 64)
	if err == nil {
		executionError.Command = &command
	}
	return executionError
}

// ExecutionResponse is the outcome of a submitted transaction
type ExecutionResponse struct {
	Digest externalapi.Digest

	// Confirmed is whether the response satisfied the confirmation policy
	Confirmed bool

	// EffectsDigest is the digest of the raw effects, when returned
	EffectsDigest externalapi.Digest
	RawEffects    []byte

	Response *appmessage.TransactionBlockResponse
}

// Submit sends signed to the ledger and waits according to policy. The
// submission is never retried.
func Submit(ctx context.Context, client LedgerClient, signed *SignedTransaction,
	options *ResponseOptions, policy ConfirmationPolicy) (*ExecutionResponse, error) {

	log.Infof("Submitting transaction %s with policy %s", signed.Digest, policy)
	response, err := client.ExecuteTransactionBlock(ctx, signed.TxBytesBase64(), signed.SignaturesBase64(),
		(*appmessage.TransactionBlockResponseOptions)(options), policy.requestType())
	if err != nil {
		if policy != FireAndForget && isConfirmationTimeout(ctx, err) {
			return nil, errors.WithStack(&ConfirmationTimeoutError{Digest: signed.Digest, Policy: policy, Err: err})
		}
		return nil, errors.Wrapf(err, "error submitting transaction %s", signed.Digest)
	}

	executionResponse, err := toExecutionResponse(signed.Digest, response, options)
	if err != nil {
		return nil, err
	}

	switch policy {
	case FireAndForget:
		return executionResponse, nil
	case WaitForLocalExecution:
		if response.ConfirmedLocalExecution != nil && !*response.ConfirmedLocalExecution {
			executionResponse.Confirmed = false
		}
	}
	if !executionResponse.Confirmed {
		return nil, errors.WithStack(&ConfirmationTimeoutError{Digest: signed.Digest, Policy: policy})
	}

	log.Infof("Transaction %s executed", executionResponse.Digest)
	return executionResponse, nil
}

// QueryTransaction fetches the outcome of the transaction with the given
// digest. It is used to resolve a ConfirmationTimeoutError.
func QueryTransaction(ctx context.Context, client LedgerClient, digest externalapi.Digest,
	options *ResponseOptions) (*ExecutionResponse, error) {

	response, err := client.GetTransactionBlock(ctx, digest, (*appmessage.TransactionBlockResponseOptions)(options))
	if err != nil {
		return nil, errors.Wrapf(err, "error querying transaction %s", digest)
	}
	return toExecutionResponse(digest, response, options)
}

func toExecutionResponse(localDigest externalapi.Digest, response *appmessage.TransactionBlockResponse,
	options *ResponseOptions) (*ExecutionResponse, error) {

	digest := localDigest
	if response.Digest != "" {
		reportedDigest, err := externalapi.DigestFromBase58(response.Digest)
		if err != nil {
			return nil, errors.Wrapf(err, "the node reported an invalid digest for transaction %s", localDigest)
		}
		if reportedDigest != localDigest {
			log.Warnf("The node reported digest %s for transaction %s", reportedDigest, localDigest)
		}
		digest = reportedDigest
	}

	executionResponse := &ExecutionResponse{
		Digest:    digest,
		Confirmed: !options.wantsEffects() || response.Effects != nil || len(response.RawEffects) > 0,
		Response:  response,
	}
	if len(response.RawEffects) > 0 {
		executionResponse.RawEffects = response.RawEffects
		executionResponse.EffectsDigest = txhashing.EffectsDigest(response.RawEffects)
	}

	if response.Effects != nil && response.Effects.Status.Status == appmessage.ExecutionStatusFailure {
		return nil, errors.WithStack(newExecutionError(digest, response.Effects.Status.Error))
	}
	if response.Effects == nil && len(response.Errors) > 0 {
		return nil, errors.WithStack(newExecutionError(digest, response.Errors[0]))
	}
	return executionResponse, nil
}
