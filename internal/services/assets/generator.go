package assets

import (
	"fmt"
	"math/rand/v2"

	"github.com/vadiminshakov/coinboard/internal/domain"
)

// DefaultCatalogSize number of assets generated when no size is configured.
const DefaultCatalogSize = 200

type knownAsset struct {
	name       string
	symbol     string
	categories []string
}

// well-known assets occupy the top ranks so tickers and names like BTC or Solana resolve on import.
var knownAssets = []knownAsset{
	{name: "Bitcoin", symbol: "BTC", categories: []string{"L1"}},
	{name: "Ethereum", symbol: "ETH", categories: []string{"L1", "DeFi"}},
	{name: "BNB", symbol: "BNB", categories: []string{"Exchange", "L1"}},
	{name: "Solana", symbol: "SOL", categories: []string{"L1"}},
	{name: "XRP", symbol: "XRP", categories: []string{"L1"}},
	{name: "Dogecoin", symbol: "DOGE", categories: []string{"Meme"}},
	{name: "Chainlink", symbol: "LINK", categories: []string{"Oracle", "Infra"}},
	{name: "Arbitrum", symbol: "ARB", categories: []string{"L2"}},
	{name: "Pepe", symbol: "PEPE", categories: []string{"Meme"}},
	{name: "Render", symbol: "RNDR", categories: []string{"AI", "Infra"}},
	{name: "Ondo", symbol: "ONDO", categories: []string{"RWA"}},
	{name: "Immutable", symbol: "IMX", categories: []string{"Gaming", "L2"}},
	{name: "Monero", symbol: "XMR", categories: []string{"Privacy"}},
	{name: "Fetch.ai", symbol: "FET", categories: []string{"AI"}},
	{name: "Uniswap", symbol: "UNI", categories: []string{"DeFi"}},
	{name: "Friend", symbol: "FRIEND", categories: []string{"SocialFi"}},
}

// Generate builds a deterministic catalog of size assets for the seed.
func Generate(size int, seed uint64) []domain.Asset {
	if size <= 0 {
		size = DefaultCatalogSize
	}

	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	out := make([]domain.Asset, 0, size)

	for i := 0; i < size; i++ {
		rank := i + 1
		a := domain.Asset{
			ID:     fmt.Sprintf("coin-%d", rank),
			Name:   fmt.Sprintf("Asset %d", rank),
			Symbol: fmt.Sprintf("TICKER%d", rank),
			Rank:   rank,
		}

		if i < len(knownAssets) {
			a.Name = knownAssets[i].name
			a.Symbol = knownAssets[i].symbol
			a.Categories = append([]string(nil), knownAssets[i].categories...)
		} else {
			a.Categories = randomCategories(rng)
		}

		a.Price = rng.Float64() * 50000
		rerollChanges(rng, &a)
		a.Volume24h = rng.Float64() * 1e9
		a.MarketCap = rng.Float64() * 5e11

		out = append(out, a)
	}

	return out
}

// randomChange returns a percentage in [-10, 10).
func randomChange(rng *rand.Rand) float64 {
	return rng.Float64()*20 - 10
}

func rerollChanges(rng *rand.Rand, a *domain.Asset) {
	a.Change1h = randomChange(rng) / 5
	a.Change12h = randomChange(rng) / 2
	a.Change24h = randomChange(rng)
	a.Change7d = randomChange(rng) * 2
}

// randomCategories picks one or two distinct narratives.
func randomCategories(rng *rand.Rand) []string {
	count := rng.IntN(2) + 1
	perm := rng.Perm(len(domain.Narratives))

	out := make([]string, 0, count)
	for _, idx := range perm[:count] {
		out = append(out, domain.Narratives[idx])
	}

	return out
}

// SeedWatchlists initial watchlists matching a generated catalog.
func SeedWatchlists() []domain.Watchlist {
	return []domain.Watchlist{
		{
			ID:            "watchlist-1",
			Name:          "Top Favorites",
			CoinIDs:       []string{"coin-1", "coin-2", "coin-3"},
			NotesByCoinID: map[string]string{"coin-1": "Great entry point"},
		},
	}
}
