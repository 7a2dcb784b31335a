package appmessage

import (
	"github.com/poolforge/poolcreator/domain/ledger/model/externalapi"
)

// CoinMetadata describes a coin type
type CoinMetadata struct {
	Decimals    uint8                 `json:"decimals"`
	Name        string                `json:"name"`
	Symbol      string                `json:"symbol"`
	Description string                `json:"description"`
	IconURL     *string               `json:"iconUrl"`
	ID          *externalapi.ObjectID `json:"id"`
}
