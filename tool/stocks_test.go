package tool

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func marketServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/v7/finance/quote", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Query().Get("symbols") {
		case "AAPL", "aapl":
			w.Write([]byte(`{"quoteResponse":{"result":[{"symbol":"AAPL","regularMarketPrice":189.5,
				"longName":"Apple Inc.","marketCap":3500000000000,"trailingPE":29.1,
				"fiftyTwoWeekHigh":199.62,"fiftyTwoWeekLow":164.08,"sharesOutstanding":15000000000,
				"fiftyTwoWeekChangePercent":12.5}],"error":null}}`))
		case "MSFT":
			w.Write([]byte(`{"quoteResponse":{"result":[{"symbol":"MSFT","regularMarketPrice":410.2,
				"shortName":"Microsoft","marketCap":950000000,"forwardPE":31.2}],"error":null}}`))
		case "TSLA":
			w.Write([]byte(`{"quoteResponse":{"result":[{"symbol":"TSLA","regularMarketPrice":250,
				"sharesOutstanding":3000000000}],"error":null}}`))
		default:
			w.Write([]byte(`{"quoteResponse":{"result":[],"error":null}}`))
		}
	})
	mux.HandleFunc("/api/quote-equity", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("symbol") != "RELIANCE" {
			w.Write([]byte(`{}`))
			return
		}
		w.Write([]byte(`{"info":{"companyName":"Reliance Industries Limited"},
			"metadata":{"pdSymbolPe":24.5,"marketCap":1950000},
			"priceInfo":{"lastPrice":2890.5,"change":-12.3,"pChange":-0.42,"weekHighLow":{"max":3024.9,"min":2220.3}}}`))
	})
	mux.HandleFunc("/ws/fundamentals-timeseries/v1/finance/timeseries/", func(w http.ResponseWriter, r *http.Request) {
		sym := strings.TrimPrefix(r.URL.Path, "/ws/fundamentals-timeseries/v1/finance/timeseries/")
		switch sym {
		case "AAPL":
			w.Write([]byte(`{"timeseries":{"result":[
				{"meta":{"type":["annualTotalRevenue"]},"annualTotalRevenue":[
					{"asOfDate":"2023-09-30","reportedValue":{"raw":383285000000}},
					{"asOfDate":"2024-09-30","reportedValue":{"raw":391035500000}}]},
				{"meta":{"type":["annualNetIncome"]},"annualNetIncome":[
					{"asOfDate":"2024-09-30","reportedValue":{"raw":93736000000}}]},
				{"meta":{"type":["annualTotalAssets"]},"annualTotalAssets":[
					{"asOfDate":"2024-09-30","reportedValue":{"raw":364980000000}}]},
				{"meta":{"type":["annualTotalDebt"]}}]}}`))
		case "TCS.NS":
			w.Write([]byte(`{"timeseries":{"result":[
				{"meta":{"type":["annualTotalRevenue"]},"annualTotalRevenue":[
					{"asOfDate":"2024-03-31","reportedValue":{"raw":2408930000000}}]},
				{"meta":{"type":["annualNetIncome"]},"annualNetIncome":[
					{"asOfDate":"2024-03-31","reportedValue":{"raw":5000000}}]}]}}`))
		default:
			w.Write([]byte(`{"timeseries":{"result":[]}}`))
		}
	})
	mux.HandleFunc("/v8/finance/chart/", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "1d", r.URL.Query().Get("interval"))
		if !strings.HasSuffix(r.URL.Path, "/TSLA") {
			w.Write([]byte(`{"chart":{"result":[{"timestamp":[1736899200],"indicators":{"quote":[{"close":[100]}]}}]}}`))
			return
		}
		// 2025-01-02, 2025-01-03 (null close), 2025-01-06
		w.Write([]byte(`{"chart":{"result":[{"timestamp":[1735833600,1735920000,1736179200],
			"indicators":{"quote":[{"close":[200,null,250]}]}}]}}`))
	})
	return httptest.NewServer(mux)
}

func testMarket(t *testing.T) *Market {
	server := marketServer(t)
	t.Cleanup(server.Close)
	return NewMarket(testFetcher(),
		WithYahooBaseURL(server.URL),
		WithNSEBaseURL(server.URL),
		WithMarketClock(fixedClock))
}

func decode(t *testing.T, s string) map[string]any {
	t.Helper()
	var m map[string]any
	require.NoError(t, json.Unmarshal([]byte(s), &m), s)
	return m
}

func TestUSStockPrice(t *testing.T) {
	m := testMarket(t)
	ctx := context.Background()

	out, err := m.USStockPriceTool().Call(ctx, `{"ticker": "aapl"}`)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "{\n  \"symbol\": \"AAPL\",\n  \"current_price\": 189.5,"), out)
	got := decode(t, out)
	assert.Equal(t, "Apple Inc.", got["company_name"])
	assert.Equal(t, "$3.50T", got["market_cap_formatted"])
	assert.Equal(t, 29.1, got["pe_ratio"])

	out, err = m.USStockPriceTool().Call(ctx, `{"ticker": "ZZZZ"}`)
	require.NoError(t, err)
	assert.Equal(t, "Could not retrieve stock data for ticker 'ZZZZ'. Please verify the ticker symbol.", out)
}

func TestNSEStockPrice(t *testing.T) {
	m := testMarket(t)
	ctx := context.Background()

	out, err := m.NSEStockPriceTool().Call(ctx, `{"symbol": "reliance.ns"}`)
	require.NoError(t, err)
	got := decode(t, out)
	assert.Equal(t, "RELIANCE", got["symbol"])
	assert.Equal(t, 2890.5, got["current_price"])
	assert.Equal(t, "₹19.50 Lakh Cr", got["market_cap_formatted"])
	assert.Equal(t, -0.42, got["percent_change"])
	assert.Contains(t, out, "₹", "rupee sign must not be escaped")

	out, err = m.NSEStockPriceTool().Call(ctx, "NOPE")
	require.NoError(t, err)
	assert.Equal(t, "Could not retrieve stock data for symbol 'NOPE'. Please verify the NSE symbol.", out)
}

func TestFinancialStatements(t *testing.T) {
	m := testMarket(t)
	ctx := context.Background()

	out, err := m.USFinancialsTool().Call(ctx, `{"ticker": "AAPL"}`)
	require.NoError(t, err)
	got := decode(t, out)
	assert.Equal(t, "2024-09-30", got["period"])
	assert.Equal(t, "USD", got["currency"])
	assert.Equal(t, "$391.04B", got["revenue_formatted"])
	assert.Equal(t, "$93.74B", got["net_income_formatted"])
	assert.Nil(t, got["total_debt"])
	assert.NotContains(t, got, "total_debt_formatted")

	out, err = m.NSEFinancialsTool().Call(ctx, `{"symbol": "TCS.NS"}`)
	require.NoError(t, err)
	got = decode(t, out)
	assert.Equal(t, "TCS", got["symbol"])
	assert.Equal(t, "INR", got["currency"])
	assert.Equal(t, "₹240893.00 Cr", got["revenue_formatted"])
	assert.Equal(t, "₹5,000,000", got["net_income_formatted"])

	out, err = m.USFinancialsTool().Call(ctx, `{"ticker": "ZZZZ"}`)
	require.NoError(t, err)
	assert.Equal(t, "{\n  \"error\": \"No financial data available for ZZZZ\"\n}", out)
}

func TestMarketCapChange(t *testing.T) {
	m := testMarket(t)
	ctx := context.Background()

	out, err := m.MarketCapChangeTool().Call(ctx, `{"ticker": "TSLA", "days": 7}`)
	require.NoError(t, err)
	got := decode(t, out)
	assert.Equal(t, "2025-01-02", got["start_date"])
	assert.Equal(t, "2025-01-06", got["end_date"])
	assert.Equal(t, 600e9, got["initial_market_cap"])
	assert.Equal(t, 750e9, got["current_market_cap"])
	assert.Equal(t, 25.0, got["change_percent"])
	assert.Equal(t, "$150.00B", got["change_formatted"])

	out, err = m.MarketCapChangeTool().Call(ctx, `{"ticker": "AAPL"}`)
	require.NoError(t, err)
	assert.Contains(t, out, "Insufficient data for AAPL")
}

func TestCompareStocks(t *testing.T) {
	m := testMarket(t)

	out, err := m.CompareStocksTool().Call(context.Background(), `{"ticker1": "AAPL", "ticker2": "MSFT"}`)
	require.NoError(t, err)
	assert.Less(t, strings.Index(out, `"AAPL"`), strings.Index(out, `"MSFT"`), "tickers keep argument order")

	var got map[string]map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &got), out)
	assert.Equal(t, "$3.50T", got["AAPL"]["market_cap_formatted"])
	assert.Equal(t, 12.5, got["AAPL"]["52_week_change_percent"])
	assert.Nil(t, got["MSFT"]["market_cap_formatted"])
	assert.Equal(t, "Microsoft", got["MSFT"]["company_name"])
	assert.Equal(t, 31.2, got["MSFT"]["pe_ratio"])
}

func TestFormatters(t *testing.T) {
	assert.Equal(t, "$2.50T", FormatUSMarketCap(2.5e12))
	assert.Equal(t, "$950.00B", FormatUSMarketCap(950e9))
	assert.Equal(t, "$12.30M", FormatUSMarketCap(12.3e6))
	assert.Equal(t, "$999,999", FormatUSMarketCap(999999))

	assert.Equal(t, "₹19.50 Lakh Cr", FormatNSEMarketCap(1950000))
	assert.Equal(t, "₹5.25 Thousand Cr", FormatNSEMarketCap(5250))
	assert.Equal(t, "₹999.00 Cr", FormatNSEMarketCap(999))

	assert.Equal(t, "$-1.20B", FormatUSD(-1.2e9))
	assert.Equal(t, "$3.40M", FormatUSD(3.4e6))
	assert.Equal(t, "$12,345", FormatUSD(12345))

	assert.Equal(t, "₹2.00 Cr", FormatINR(2e7))
	assert.Equal(t, "₹-1.50 Cr", FormatINR(-1.5e7))
	assert.Equal(t, "₹123,456", FormatINR(123456))
}
