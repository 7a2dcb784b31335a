package libpoolcreator

import (
	"context"

	"github.com/pkg/errors"
)

// ErrInvalidGasPrice indicates a reference gas price the ledger cannot
// accept a transaction at
var ErrInvalidGasPrice = errors.New("invalid gas price")

// ReferenceGasPrice fetches the current reference gas price. Failures are
// returned as is, without retrying.
func ReferenceGasPrice(ctx context.Context, client LedgerClient) (uint64, error) {
	price, err := client.GetReferenceGasPrice(ctx)
	if err != nil {
		return 0, errors.Wrapf(err, "error fetching the reference gas price")
	}
	if price == 0 {
		return 0, errors.Wrapf(ErrInvalidGasPrice, "the node reported a reference gas price of 0")
	}
	log.Debugf("Reference gas price is %d", price)
	return price, nil
}
