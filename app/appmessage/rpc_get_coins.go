package appmessage

import (
	"github.com/poolforge/poolcreator/domain/ledger/model/externalapi"
)

// Coin is one coin object owned by an address
type Coin struct {
	CoinType            string               `json:"coinType"`
	CoinObjectID        externalapi.ObjectID `json:"coinObjectId"`
	Version             BigInt               `json:"version"`
	Digest              externalapi.Digest   `json:"digest"`
	Balance             BigInt               `json:"balance"`
	PreviousTransaction string               `json:"previousTransaction,omitempty"`
}

// Ref returns the object reference of the coin
func (c *Coin) Ref() externalapi.ObjectRef {
	return externalapi.ObjectRef{
		ObjectID: c.CoinObjectID,
		Version:  uint64(c.Version),
		Digest:   c.Digest,
	}
}

// GetCoinsResponse is one page of the coins of an address
type GetCoinsResponse struct {
	Data        []*Coin `json:"data"`
	NextCursor  *string `json:"nextCursor"`
	HasNextPage bool    `json:"hasNextPage"`
}
