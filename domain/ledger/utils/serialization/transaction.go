package serialization

import (
	"github.com/pkg/errors"
	"github.com/poolforge/poolcreator/domain/ledger/model/externalapi"
)

const (
	transactionDataVersion1     = 0
	transactionKindProgrammable = 0
	transactionExpirationNone   = 0
	transactionExpirationEpoch  = 1
)

// SerializeTransactionData returns the canonical binary encoding of data.
// These are the bytes that are signed and submitted.
func SerializeTransactionData(data *externalapi.TransactionData) ([]byte, error) {
	if data.Kind == nil {
		return nil, errors.Wrapf(ErrEncoding, "transaction data has no programmable transaction")
	}
	w := &Writer{}
	w.WriteULEB128(transactionDataVersion1)
	w.WriteULEB128(transactionKindProgrammable)
	err := writeProgrammableTransaction(w, data.Kind)
	if err != nil {
		return nil, err
	}
	w.WriteFixedBytes(data.Sender[:])

	w.WriteULEB128(uint32(len(data.GasData.Payment)))
	for _, ref := range data.GasData.Payment {
		writeObjectRef(w, ref)
	}
	w.WriteFixedBytes(data.GasData.Owner[:])
	w.WriteU64(data.GasData.Price)
	w.WriteU64(data.GasData.Budget)

	if data.Expiration.Epoch == nil {
		w.WriteULEB128(transactionExpirationNone)
	} else {
		w.WriteULEB128(transactionExpirationEpoch)
		w.WriteU64(*data.Expiration.Epoch)
	}
	return w.Bytes(), nil
}

// SerializeProgrammableTransaction returns the canonical binary encoding of transaction
func SerializeProgrammableTransaction(transaction *externalapi.ProgrammableTransaction) ([]byte, error) {
	w := &Writer{}
	err := writeProgrammableTransaction(w, transaction)
	if err != nil {
		return nil, err
	}
	return w.Bytes(), nil
}

func writeProgrammableTransaction(w *Writer, transaction *externalapi.ProgrammableTransaction) error {
	w.WriteULEB128(uint32(len(transaction.Inputs)))
	for i, input := range transaction.Inputs {
		err := writeInputSlot(w, input)
		if err != nil {
			return errors.Wrapf(err, "input %d", i)
		}
	}
	w.WriteULEB128(uint32(len(transaction.Commands)))
	for i, command := range transaction.Commands {
		err := writeCommand(w, command)
		if err != nil {
			return errors.Wrapf(err, "command %d", i)
		}
	}
	return nil
}

func writeInputSlot(w *Writer, input *externalapi.InputSlot) error {
	w.WriteULEB128(uint32(input.Kind))
	switch input.Kind {
	case externalapi.InputSlotPure:
		w.WriteBytes(input.Pure)
		return nil
	case externalapi.InputSlotObject:
		if input.Object == nil {
			return errors.Wrapf(ErrEncoding, "object input has no object")
		}
		return writeObjectArg(w, input.Object)
	}
	return errors.Wrapf(ErrEncoding, "unknown input kind %d", input.Kind)
}

func writeObjectArg(w *Writer, arg *externalapi.ObjectArg) error {
	w.WriteULEB128(uint32(arg.Kind))
	switch arg.Kind {
	case externalapi.ObjectArgImmOrOwned, externalapi.ObjectArgReceiving:
		writeObjectRef(w, arg.Ref)
		return nil
	case externalapi.ObjectArgShared:
		w.WriteFixedBytes(arg.SharedObjectID[:])
		w.WriteU64(arg.InitialSharedVersion)
		w.WriteBool(arg.Mutable)
		return nil
	}
	return errors.Wrapf(ErrEncoding, "unknown object argument kind %d", arg.Kind)
}

func writeObjectRef(w *Writer, ref externalapi.ObjectRef) {
	w.WriteFixedBytes(ref.ObjectID[:])
	w.WriteU64(ref.Version)
	w.WriteBytes(ref.Digest[:])
}

func writeArgument(w *Writer, arg externalapi.Argument) error {
	w.WriteULEB128(uint32(arg.Kind))
	switch arg.Kind {
	case externalapi.ArgumentGasCoin:
	case externalapi.ArgumentInput, externalapi.ArgumentResult:
		w.WriteU16(arg.Index)
	case externalapi.ArgumentNestedResult:
		w.WriteU16(arg.Index)
		w.WriteU16(arg.ResultIndex)
	default:
		return errors.Wrapf(ErrEncoding, "unknown argument kind %d", arg.Kind)
	}
	return nil
}

func writeArguments(w *Writer, args []externalapi.Argument) error {
	w.WriteULEB128(uint32(len(args)))
	for _, arg := range args {
		err := writeArgument(w, arg)
		if err != nil {
			return err
		}
	}
	return nil
}

func writeCommand(w *Writer, command *externalapi.Command) error {
	w.WriteULEB128(uint32(command.Kind))
	switch command.Kind {
	case externalapi.CommandMoveCall:
		call := command.MoveCall
		w.WriteFixedBytes(call.Package[:])
		w.WriteString(call.Module)
		w.WriteString(call.Function)
		w.WriteULEB128(uint32(len(call.TypeArguments)))
		for _, typeArgument := range call.TypeArguments {
			err := writeTypeTag(w, typeArgument)
			if err != nil {
				return err
			}
		}
		return writeArguments(w, call.Arguments)
	case externalapi.CommandMergeCoins:
		err := writeArgument(w, command.MergeCoins.Destination)
		if err != nil {
			return err
		}
		return writeArguments(w, command.MergeCoins.Sources)
	}
	return errors.Wrapf(ErrEncoding, "unknown command kind %d", command.Kind)
}

func writeTypeTag(w *Writer, tag *externalapi.TypeTag) error {
	w.WriteULEB128(uint32(tag.Kind))
	switch tag.Kind {
	case externalapi.TypeTagVector:
		if tag.VectorOf == nil {
			return errors.Wrapf(ErrEncoding, "vector type tag has no element type")
		}
		return writeTypeTag(w, tag.VectorOf)
	case externalapi.TypeTagStruct:
		if tag.Struct == nil {
			return errors.Wrapf(ErrEncoding, "struct type tag has no struct")
		}
		return writeStructTag(w, tag.Struct)
	}
	if tag.Kind > externalapi.TypeTagU256 {
		return errors.Wrapf(ErrEncoding, "unknown type tag kind %d", tag.Kind)
	}
	return nil
}

func writeStructTag(w *Writer, tag *externalapi.StructTag) error {
	w.WriteFixedBytes(tag.Address[:])
	w.WriteString(tag.Module)
	w.WriteString(tag.Name)
	w.WriteULEB128(uint32(len(tag.TypeParams)))
	for _, param := range tag.TypeParams {
		err := writeTypeTag(w, param)
		if err != nil {
			return err
		}
	}
	return nil
}
