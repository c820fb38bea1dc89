package feed

import (
	"github.com/fox-one/mixin-sdk-go/v2"
	"github.com/shopspring/decimal"
)

// CollateralMeta describes a depositable asset for registration and display.
type CollateralMeta struct {
	AssetID   string          `json:"assetId"`
	ChainID   string          `json:"chainId,omitempty"`
	Symbol    string          `json:"symbol"`
	Name      string          `json:"name"`
	Precision int32           `json:"precision"`
	Dust      decimal.Decimal `json:"dust"`
}

// CollateralMetaFromSafeAsset adapts a Mixin safe asset into collateral
// metadata, so hosts running on the Mixin rail can register collateral
// straight from the network's asset listing.
func CollateralMetaFromSafeAsset(asset *mixin.SafeAsset) CollateralMeta {
	return CollateralMeta{
		AssetID:   asset.AssetID,
		ChainID:   asset.ChainID,
		Symbol:    asset.Symbol,
		Name:      asset.Name,
		Precision: asset.Precision,
		Dust:      asset.Dust,
	}
}
