package externalapi

import (
	"fmt"

	"github.com/pkg/errors"
)

// ObjectArgKind distinguishes how an object input is passed to a call.
// Its value is the variant index used by the wire encoding.
type ObjectArgKind uint8

// ObjectArg kinds
const (
	ObjectArgImmOrOwned ObjectArgKind = iota
	ObjectArgShared
	ObjectArgReceiving
)

// ObjectArg is a reference to an on-ledger object used as a transaction input
type ObjectArg struct {
	Kind ObjectArgKind

	// Ref is set for ImmOrOwned and Receiving objects
	Ref ObjectRef

	// The following are set for Shared objects
	SharedObjectID       ObjectID
	InitialSharedVersion uint64
	Mutable              bool
}

// ID returns the identity of the referenced object
func (arg *ObjectArg) ID() ObjectID {
	if arg.Kind == ObjectArgShared {
		return arg.SharedObjectID
	}
	return arg.Ref.ObjectID
}

// InputSlotKind distinguishes pure inputs from object inputs.
// Its value is the variant index used by the wire encoding.
type InputSlotKind uint8

// InputSlot kinds
const (
	InputSlotPure InputSlotKind = iota
	InputSlotObject
)

// InputSlot is one positional input of a programmable transaction.
// Its index in ProgrammableTransaction.Inputs is its only identity.
type InputSlot struct {
	Kind   InputSlotKind
	Pure   []byte
	Object *ObjectArg
}

// Clone returns a deep copy of the slot
func (slot *InputSlot) Clone() *InputSlot {
	clone := &InputSlot{Kind: slot.Kind}
	if slot.Pure != nil {
		clone.Pure = append([]byte{}, slot.Pure...)
	}
	if slot.Object != nil {
		object := *slot.Object
		clone.Object = &object
	}
	return clone
}

func (slot *InputSlot) String() string {
	if slot.Kind == InputSlotObject {
		return fmt.Sprintf("Object(%d, %s)", slot.Object.Kind, slot.Object.ID())
	}
	return fmt.Sprintf("Pure(%x)", slot.Pure)
}

// ArgumentKind distinguishes the targets of an argument reference.
// Its value is the variant index used by the wire encoding.
type ArgumentKind uint8

// Argument kinds
const (
	ArgumentGasCoin ArgumentKind = iota
	ArgumentInput
	ArgumentResult
	ArgumentNestedResult
)

// Argument references either an input slot, the result of a previous
// command, or the gas coin
type Argument struct {
	Kind        ArgumentKind
	Index       uint16
	ResultIndex uint16
}

// GasCoin returns an argument referencing the gas coin
func GasCoin() Argument {
	return Argument{Kind: ArgumentGasCoin}
}

// Input returns an argument referencing input slot i
func Input(i uint16) Argument {
	return Argument{Kind: ArgumentInput, Index: i}
}

// Result returns an argument referencing the result of command i
func Result(i uint16) Argument {
	return Argument{Kind: ArgumentResult, Index: i}
}

// NestedResult returns an argument referencing the j-th result of command i
func NestedResult(i, j uint16) Argument {
	return Argument{Kind: ArgumentNestedResult, Index: i, ResultIndex: j}
}

func (arg Argument) String() string {
	switch arg.Kind {
	case ArgumentGasCoin:
		return "GasCoin"
	case ArgumentInput:
		return fmt.Sprintf("Input(%d)", arg.Index)
	case ArgumentResult:
		return fmt.Sprintf("Result(%d)", arg.Index)
	default:
		return fmt.Sprintf("NestedResult(%d, %d)", arg.Index, arg.ResultIndex)
	}
}

// CommandKind is the kind of a command. Its value is the variant index used by
// the wire encoding.
type CommandKind uint8

// Command kinds supported by this module
const (
	CommandMoveCall   CommandKind = 0
	CommandMergeCoins CommandKind = 3
)

// MoveCall is an invocation of function Module::Function in Package
type MoveCall struct {
	Package       PackageID
	Module        string
	Function      string
	TypeArguments []*TypeTag
	Arguments     []Argument
}

// MergeCoins folds Sources into Destination
type MergeCoins struct {
	Destination Argument
	Sources     []Argument
}

// Command is one step of a programmable transaction
type Command struct {
	Kind       CommandKind
	MoveCall   *MoveCall
	MergeCoins *MergeCoins
}

// Clone returns a deep copy of the command
func (c *Command) Clone() *Command {
	clone := &Command{Kind: c.Kind}
	if c.MoveCall != nil {
		clone.MoveCall = &MoveCall{
			Package:   c.MoveCall.Package,
			Module:    c.MoveCall.Module,
			Function:  c.MoveCall.Function,
			Arguments: append([]Argument(nil), c.MoveCall.Arguments...),
		}
		for _, typeArgument := range c.MoveCall.TypeArguments {
			clone.MoveCall.TypeArguments = append(clone.MoveCall.TypeArguments, typeArgument.Clone())
		}
	}
	if c.MergeCoins != nil {
		clone.MergeCoins = &MergeCoins{
			Destination: c.MergeCoins.Destination,
			Sources:     append([]Argument(nil), c.MergeCoins.Sources...),
		}
	}
	return clone
}

// Arguments returns every argument referenced by the command
func (c *Command) Arguments() []Argument {
	switch c.Kind {
	case CommandMoveCall:
		return c.MoveCall.Arguments
	case CommandMergeCoins:
		return append([]Argument{c.MergeCoins.Destination}, c.MergeCoins.Sources...)
	}
	return nil
}

// ProgrammableTransaction is an ordered list of input slots and an ordered
// list of commands referencing them, executed atomically
type ProgrammableTransaction struct {
	Inputs   []*InputSlot
	Commands []*Command
}

// GasData describes how a transaction pays for gas
type GasData struct {
	Payment []ObjectRef
	Owner   Address
	Price   uint64
	Budget  uint64
}

// TransactionExpiration bounds the epoch in which a transaction may execute.
// A nil Epoch means no expiration.
type TransactionExpiration struct {
	Epoch *uint64
}

// TransactionData is a finished, unsigned transaction
type TransactionData struct {
	Kind       *ProgrammableTransaction
	Sender     Address
	GasData    GasData
	Expiration TransactionExpiration
}

// ErrInvalidGasData indicates an unusable gas budget, price or payment
var ErrInvalidGasData = errors.New("invalid gas data")

// NewProgrammableTransactionData creates transaction data paying gas from
// gasPayment, owned by sender
func NewProgrammableTransactionData(sender Address, gasPayment []ObjectRef,
	transaction *ProgrammableTransaction, gasBudget, gasPrice uint64) (*TransactionData, error) {

	if gasBudget == 0 {
		return nil, errors.Wrapf(ErrInvalidGasData, "gas budget must be greater than 0")
	}
	if gasPrice == 0 {
		return nil, errors.Wrapf(ErrInvalidGasData, "gas price must be greater than 0")
	}
	if len(gasPayment) == 0 {
		return nil, errors.Wrapf(ErrInvalidGasData, "at least one gas payment object is required")
	}
	return &TransactionData{
		Kind:   transaction,
		Sender: sender,
		GasData: GasData{
			Payment: gasPayment,
			Owner:   sender,
			Price:   gasPrice,
			Budget:  gasBudget,
		},
	}, nil
}
