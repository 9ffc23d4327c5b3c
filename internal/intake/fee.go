package intake

import (
	"github.com/shopspring/decimal"

	"github.com/dwarvesf/ape-bridge-backend/internal/model"
)

const (
	// DefaultFee applies when neither direction of a route is priced.
	DefaultFee     = "0.001"
	sameNetworkFee = "0"
)

// Route is a directed network pair.
type Route struct {
	From model.Network
	To   model.Network
}

func (r Route) Reverse() Route {
	return Route{From: r.To, To: r.From}
}

// FeeTable prices each asset per route. Values are decimal strings.
type FeeTable map[model.Asset]map[Route]string

// DefaultFeeTable mirrors the bridge UI fee schedule.
func DefaultFeeTable() FeeTable {
	return FeeTable{
		model.AssetETH: {
			{From: model.NetworkEthereum, To: model.NetworkApechain}: "0.001",
			{From: model.NetworkApechain, To: model.NetworkEthereum}: "0.002",
		},
		model.AssetAPE: {
			{From: model.NetworkEthereum, To: model.NetworkApechain}: "0.5",
			{From: model.NetworkApechain, To: model.NetworkEthereum}: "1.0",
		},
	}
}

// Lookup resolves the fee for asset over from->to. Equal networks cost "0";
// a missing route falls back to the reverse direction, then to DefaultFee.
// Entries that are not valid decimals are skipped.
func (t FeeTable) Lookup(asset model.Asset, from, to model.Network) string {
	if from == to {
		return sameNetworkFee
	}

	routes := t[asset]
	route := Route{From: from, To: to}
	for _, r := range []Route{route, route.Reverse()} {
		fee, ok := routes[r]
		if !ok {
			continue
		}
		if _, err := decimal.NewFromString(fee); err != nil {
			continue
		}
		return fee
	}

	return DefaultFee
}
