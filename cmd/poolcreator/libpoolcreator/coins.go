package libpoolcreator

import (
	"context"
	"fmt"
	"math/bits"
	"sort"

	"github.com/pkg/errors"
	"github.com/poolforge/poolcreator/app/appmessage"
	"github.com/poolforge/poolcreator/domain/ledger/model/externalapi"
	"github.com/poolforge/poolcreator/domain/ledger/utils/serialization"
)

// DefaultCoinPageSize is the number of coins requested per page
const DefaultCoinPageSize = 50

var (
	// ErrInsufficientBalance indicates that the coins of an address cannot
	// cover a required amount
	ErrInsufficientBalance = errors.New("insufficient balance")

	// ErrMissingCoinMetadata indicates a coin type without metadata
	ErrMissingCoinMetadata = errors.New("missing coin metadata")
)

// InsufficientBalanceError reports the shortfall of a coin selection. It
// matches ErrInsufficientBalance.
type InsufficientBalanceError struct {
	CoinType  string
	Required  uint64
	Available uint64
}

func (e *InsufficientBalanceError) Error() string {
	return fmt.Sprintf("%s: %s requires %d but only %d is available",
		ErrInsufficientBalance, e.CoinType, e.Required, e.Available)
}

// Is implements errors.Is
func (e *InsufficientBalanceError) Is(target error) bool {
	return target == ErrInsufficientBalance
}

// CoinIterator pages through the coins of one type owned by an address
type CoinIterator struct {
	client   LedgerClient
	owner    externalapi.Address
	coinType string
	pageSize uint

	cursor *string
	done   bool
}

// NewCoinIterator returns an iterator positioned at the first page
func NewCoinIterator(client LedgerClient, owner externalapi.Address, coinType string, pageSize uint) *CoinIterator {
	if pageSize == 0 {
		pageSize = DefaultCoinPageSize
	}
	return &CoinIterator{
		client:   client,
		owner:    owner,
		coinType: coinType,
		pageSize: pageSize,
	}
}

// NextPage fetches the next page of coins. It returns no coins once Done.
func (it *CoinIterator) NextPage(ctx context.Context) ([]*appmessage.Coin, error) {
	if it.done {
		return nil, nil
	}
	page, err := it.client.GetCoins(ctx, it.owner, it.coinType, it.cursor, it.pageSize)
	if err != nil {
		return nil, errors.Wrapf(err, "error fetching %s coins of %s", it.coinType, it.owner)
	}
	if !page.HasNextPage || page.NextCursor == nil {
		it.done = true
	}
	it.cursor = page.NextCursor
	return page.Data, nil
}

// Done returns whether every page was fetched
func (it *CoinIterator) Done() bool {
	return it.done
}

// Reset positions the iterator back at the first page
func (it *CoinIterator) Reset() {
	it.cursor = nil
	it.done = false
}

// CoinSelection is a set of distinct coins of one type funding one slot.
// Coins[0] is the coin the others are merged into.
type CoinSelection struct {
	CoinType string
	Coins    []*appmessage.Coin
	Total    uint64
}

// Primary returns the coin the selection is merged into
func (s *CoinSelection) Primary() *appmessage.Coin {
	return s.Coins[0]
}

// Refs returns the object references of the selected coins
func (s *CoinSelection) Refs() []externalapi.ObjectRef {
	refs := make([]externalapi.ObjectRef, len(s.Coins))
	for i, coin := range s.Coins {
		refs[i] = coin.Ref()
	}
	return refs
}

// CoinSelector selects coins of an address so that no coin object is
// selected twice
type CoinSelector struct {
	client   LedgerClient
	owner    externalapi.Address
	pageSize uint
	maxPages int

	claimed map[externalapi.ObjectID]struct{}
}

// NewCoinSelector returns a selector of the coins of owner. A maxPages of 0
// pages through every coin.
func NewCoinSelector(client LedgerClient, owner externalapi.Address, pageSize uint, maxPages int) *CoinSelector {
	return &CoinSelector{
		client:   client,
		owner:    owner,
		pageSize: pageSize,
		maxPages: maxPages,
		claimed:  make(map[externalapi.ObjectID]struct{}),
	}
}

// SelectCoins selects unclaimed coins of coinType whose balances add up to
// at least amount, preferring larger coins among the pages fetched. At least
// one coin is always selected. With singleCoin set, one coin must cover the
// whole amount.
func (s *CoinSelector) SelectCoins(ctx context.Context, coinType string, amount uint64,
	singleCoin bool) (*CoinSelection, error) {

	canonicalType, err := externalapi.CanonicalStructTag(coinType)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid coin type %s", coinType)
	}
	coinType = canonicalType
	iterator := NewCoinIterator(s.client, s.owner, coinType, s.pageSize)
	var candidates []*appmessage.Coin
	seen := make(map[externalapi.ObjectID]struct{})
	var available, largest uint64
	covered := func() bool {
		if len(candidates) == 0 {
			return false
		}
		if singleCoin {
			return largest >= amount
		}
		return available >= amount
	}

	for pages := 0; !iterator.Done() && !covered(); pages++ {
		if s.maxPages > 0 && pages >= s.maxPages {
			log.Debugf("Stopped paging %s coins after %d pages", coinType, pages)
			break
		}
		coins, err := iterator.NextPage(ctx)
		if err != nil {
			return nil, err
		}
		for _, coin := range coins {
			if coin.CoinType != "" && !sameCoinType(coin.CoinType, coinType) {
				continue
			}
			if _, ok := s.claimed[coin.CoinObjectID]; ok {
				continue
			}
			if _, ok := seen[coin.CoinObjectID]; ok {
				continue
			}
			seen[coin.CoinObjectID] = struct{}{}
			candidates = append(candidates, coin)
			available = saturatingAdd(available, uint64(coin.Balance))
			if uint64(coin.Balance) > largest {
				largest = uint64(coin.Balance)
			}
		}
	}

	if !covered() {
		reported := available
		if singleCoin {
			reported = largest
		}
		return nil, errors.WithStack(&InsufficientBalanceError{
			CoinType:  coinType,
			Required:  amount,
			Available: reported,
		})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Balance > candidates[j].Balance
	})
	selection := &CoinSelection{CoinType: coinType}
	for _, coin := range candidates {
		selection.Coins = append(selection.Coins, coin)
		selection.Total = saturatingAdd(selection.Total, uint64(coin.Balance))
		if selection.Total >= amount {
			break
		}
	}
	for _, coin := range selection.Coins {
		s.claimed[coin.CoinObjectID] = struct{}{}
	}

	log.Debugf("Selected %d %s coins with a total balance of %d for an amount of %d",
		len(selection.Coins), coinType, selection.Total, amount)
	return selection, nil
}

func saturatingAdd(a, b uint64) uint64 {
	sum, carry := bits.Add64(a, b, 0)
	if carry != 0 {
		return ^uint64(0)
	}
	return sum
}

// sameCoinType reports whether the ledger-reported type names the canonical
// type. Unparsable types never match.
func sameCoinType(reported string, canonical string) bool {
	if reported == canonical {
		return true
	}
	reportedCanonical, err := externalapi.CanonicalStructTag(reported)
	return err == nil && reportedCanonical == canonical
}

// FetchCoinMetadata fetches the metadata record of coinType
func FetchCoinMetadata(ctx context.Context, client LedgerClient, coinType string) (*serialization.CoinMetadata, error) {
	metadata, err := client.GetCoinMetadata(ctx, coinType)
	if err != nil {
		return nil, errors.Wrapf(err, "error fetching the metadata of %s", coinType)
	}
	if metadata == nil {
		return nil, errors.Wrapf(ErrMissingCoinMetadata, "coin type %s", coinType)
	}
	return &serialization.CoinMetadata{
		Decimals:    metadata.Decimals,
		Name:        metadata.Name,
		Symbol:      metadata.Symbol,
		Description: metadata.Description,
		IconURL:     metadata.IconURL,
		ID:          metadata.ID,
	}, nil
}
