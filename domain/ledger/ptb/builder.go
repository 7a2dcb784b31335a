package ptb

import (
	"math"

	"github.com/pkg/errors"
	"github.com/poolforge/poolcreator/domain/ledger/model/externalapi"
	"github.com/poolforge/poolcreator/domain/ledger/utils/serialization"
)

// Aliases of the transaction model types the builder assembles
type (
	InputSlot               = externalapi.InputSlot
	ObjectArg               = externalapi.ObjectArg
	Argument                = externalapi.Argument
	Command                 = externalapi.Command
	ProgrammableTransaction = externalapi.ProgrammableTransaction
)

var (
	// ErrDanglingReference indicates an argument referencing an input slot
	// or command that was not yet appended
	ErrDanglingReference = errors.New("dangling argument reference")

	// ErrBuilderFinished indicates a call on a builder after Finish
	ErrBuilderFinished = errors.New("builder already finished")

	// ErrInvalidIdentifier indicates a module or function name that is not
	// a valid Move identifier
	ErrInvalidIdentifier = errors.New("invalid identifier")

	// ErrTooManyArguments indicates more input slots or commands than an
	// argument index can address
	ErrTooManyArguments = errors.New("too many arguments")

	// ErrInvalidCommand indicates a structurally malformed command
	ErrInvalidCommand = errors.New("invalid command")
)

const maxEntries = math.MaxUint16 + 1

// Builder accumulates the input slots and commands of one programmable
// transaction. A Builder is owned by a single goroutine.
type Builder struct {
	inputs   []*InputSlot
	commands []*Command
	finished bool
}

// NewBuilder returns an empty builder
func NewBuilder() *Builder {
	return &Builder{}
}

// AppendInput appends a copy of slot and returns its index. Indexes are
// assigned 0, 1, 2, ... in call order.
func (b *Builder) AppendInput(slot *InputSlot) (uint16, error) {
	if b.finished {
		return 0, ErrBuilderFinished
	}
	if len(b.inputs) >= maxEntries {
		return 0, errors.Wrapf(ErrTooManyArguments, "cannot append more than %d inputs", maxEntries)
	}
	err := validateInputSlot(slot)
	if err != nil {
		return 0, err
	}
	b.inputs = append(b.inputs, slot.Clone())
	return uint16(len(b.inputs) - 1), nil
}

// Pure encodes value and appends it as a pure input
func (b *Builder) Pure(value serialization.Value) (Argument, error) {
	if b.finished {
		return Argument{}, ErrBuilderFinished
	}
	encoded, err := serialization.EncodePure(value)
	if err != nil {
		return Argument{}, err
	}
	index, err := b.AppendInput(&InputSlot{Kind: externalapi.InputSlotPure, Pure: encoded})
	if err != nil {
		return Argument{}, err
	}
	return externalapi.Input(index), nil
}

// Object appends arg as an object input
func (b *Builder) Object(arg *ObjectArg) (Argument, error) {
	index, err := b.AppendInput(&InputSlot{Kind: externalapi.InputSlotObject, Object: arg})
	if err != nil {
		return Argument{}, err
	}
	return externalapi.Input(index), nil
}

// AppendCommand appends a copy of command and returns its index. Every
// argument of command must reference an input slot or command appended
// before it.
func (b *Builder) AppendCommand(command *Command) (uint16, error) {
	if b.finished {
		return 0, ErrBuilderFinished
	}
	if len(b.commands) >= maxEntries {
		return 0, errors.Wrapf(ErrTooManyArguments, "cannot append more than %d commands", maxEntries)
	}
	err := validateCommandShape(command)
	if err != nil {
		return 0, err
	}
	for _, argument := range command.Arguments() {
		err := b.validateArgument(argument)
		if err != nil {
			return 0, err
		}
	}
	b.commands = append(b.commands, command.Clone())
	return uint16(len(b.commands) - 1), nil
}

// MoveCall appends a call of packageID::module::function and returns an
// argument referencing its result
func (b *Builder) MoveCall(packageID externalapi.PackageID, module, function string,
	typeArguments []*externalapi.TypeTag, arguments []Argument) (Argument, error) {

	index, err := b.AppendCommand(&Command{
		Kind: externalapi.CommandMoveCall,
		MoveCall: &externalapi.MoveCall{
			Package:       packageID,
			Module:        module,
			Function:      function,
			TypeArguments: typeArguments,
			Arguments:     arguments,
		},
	})
	if err != nil {
		return Argument{}, err
	}
	return externalapi.Result(index), nil
}

// MergeCoins appends a command folding sources into destination
func (b *Builder) MergeCoins(destination Argument, sources []Argument) (Argument, error) {
	index, err := b.AppendCommand(&Command{
		Kind: externalapi.CommandMergeCoins,
		MergeCoins: &externalapi.MergeCoins{
			Destination: destination,
			Sources:     sources,
		},
	})
	if err != nil {
		return Argument{}, err
	}
	return externalapi.Result(index), nil
}

// Finish returns the finished transaction. The builder releases its slots
// and commands to the caller and cannot be used afterwards.
func (b *Builder) Finish() (*ProgrammableTransaction, error) {
	if b.finished {
		return nil, ErrBuilderFinished
	}
	b.finished = true
	transaction := &ProgrammableTransaction{Inputs: b.inputs, Commands: b.commands}
	b.inputs = nil
	b.commands = nil
	return transaction, nil
}

// InputCount returns the number of input slots appended so far
func (b *Builder) InputCount() int {
	return len(b.inputs)
}

// CommandCount returns the number of commands appended so far
func (b *Builder) CommandCount() int {
	return len(b.commands)
}

func (b *Builder) validateArgument(argument Argument) error {
	switch argument.Kind {
	case externalapi.ArgumentGasCoin:
		return nil
	case externalapi.ArgumentInput:
		if int(argument.Index) >= len(b.inputs) {
			return errors.Wrapf(ErrDanglingReference, "%s references one of %d inputs",
				argument, len(b.inputs))
		}
		return nil
	case externalapi.ArgumentResult, externalapi.ArgumentNestedResult:
		if int(argument.Index) >= len(b.commands) {
			return errors.Wrapf(ErrDanglingReference, "%s references one of %d commands",
				argument, len(b.commands))
		}
		return nil
	}
	return errors.Wrapf(ErrInvalidCommand, "unknown argument kind %d", argument.Kind)
}

func validateInputSlot(slot *InputSlot) error {
	if slot == nil {
		return errors.Wrapf(ErrInvalidCommand, "nil input slot")
	}
	switch slot.Kind {
	case externalapi.InputSlotPure:
		return nil
	case externalapi.InputSlotObject:
		if slot.Object == nil {
			return errors.Wrapf(ErrInvalidCommand, "object input slot without an object")
		}
		if slot.Object.Kind > externalapi.ObjectArgReceiving {
			return errors.Wrapf(ErrInvalidCommand, "unknown object argument kind %d", slot.Object.Kind)
		}
		return nil
	}
	return errors.Wrapf(ErrInvalidCommand, "unknown input slot kind %d", slot.Kind)
}

func validateCommandShape(command *Command) error {
	if command == nil {
		return errors.Wrapf(ErrInvalidCommand, "nil command")
	}
	switch command.Kind {
	case externalapi.CommandMoveCall:
		call := command.MoveCall
		if call == nil {
			return errors.Wrapf(ErrInvalidCommand, "move call command without a call")
		}
		if !externalapi.IsValidIdentifier(call.Module) {
			return errors.Wrapf(ErrInvalidIdentifier, "module name %q", call.Module)
		}
		if !externalapi.IsValidIdentifier(call.Function) {
			return errors.Wrapf(ErrInvalidIdentifier, "function name %q", call.Function)
		}
		for _, typeArgument := range call.TypeArguments {
			if typeArgument == nil {
				return errors.Wrapf(ErrInvalidCommand, "nil type argument in call to %s::%s",
					call.Module, call.Function)
			}
		}
		return nil
	case externalapi.CommandMergeCoins:
		if command.MergeCoins == nil || len(command.MergeCoins.Sources) == 0 {
			return errors.Wrapf(ErrInvalidCommand, "merge coins requires at least one source")
		}
		return nil
	}
	return errors.Wrapf(ErrInvalidCommand, "unsupported command kind %d", command.Kind)
}
