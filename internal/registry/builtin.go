package registry

// builtinSymbols is the emergency fallback used when both the SEC fetch and
// the local cache are unavailable: large-cap and heavily-discussed tickers
// that keep a run minimally useful.
var builtinSymbols = []string{
	"AAPL", "MSFT", "GOOGL", "GOOG", "AMZN", "NVDA", "META", "TSLA", "BRK.B",
	"JPM", "V", "MA", "UNH", "XOM", "JNJ", "WMT", "PG", "HD", "COST", "BAC",
	"ABBV", "CVX", "KO", "PEP", "MRK", "AMD", "INTC", "CRM", "ORCL", "CSCO",
	"NFLX", "DIS", "ADBE", "PYPL", "GME", "AMC", "PLTR", "SOFI", "COIN",
	"HOOD", "RIVN", "NIO", "BB", "NOK", "SPY", "QQQ",
}
