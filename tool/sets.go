package tool

import (
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/tools"
)

// SetConfig configures the tool sets. The zero value uses live endpoints, the
// default fetcher and the wall clock.
type SetConfig struct {
	// Fallback resolves cities missing from the timezone table. May be nil.
	Fallback llms.Model
	Fetcher  *Fetcher
	Clock    Clock

	WeatherOptions   []WeatherOption
	SearchOptions    []DuckDuckGoOption
	WikipediaOptions []WikipediaOption
	MarketOptions    []MarketOption
}

func (c SetConfig) market() *Market {
	opts := append([]MarketOption{WithMarketClock(c.Clock)}, c.MarketOptions...)
	return NewMarket(c.Fetcher, opts...)
}

// BasicAgentTools returns the general purpose agent tool set: arithmetic,
// weather, date and time, timezones, web search, Wikipedia and stocks.
func BasicAgentTools(c SetConfig) []tools.Tool {
	m := c.market()
	return []tools.Tool{
		Add(),
		Multiply(),
		Subtract(),
		Divide(),
		NewWeather(c.Fetcher, c.WeatherOptions...),
		CurrentTime(c.Clock),
		CurrentDate(c.Clock),
		FutureDate(c.Clock),
		DateDifference(),
		NewTimezoneIdentifier(c.Fallback),
		TimeInTimezone(c.Clock),
		NewDuckDuckGo(c.Fetcher, c.SearchOptions...),
		LocalTimezone(c.Clock),
		NewWikipedia(c.Fetcher, c.WikipediaOptions...),
		m.USStockPriceTool(),
		m.NSEStockPriceTool(),
		m.USFinancialsTool(),
		m.NSEFinancialsTool(),
	}
}

// FinancialTools returns the stock analysis tool set.
func FinancialTools(c SetConfig) []tools.Tool {
	return c.market().Tools()
}

// ArithmeticTools returns add, multiply and divide.
func ArithmeticTools() []tools.Tool {
	return []tools.Tool{Add(), Multiply(), Divide()}
}
