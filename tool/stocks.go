package tool

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/tidwall/gjson"
	"github.com/tmc/langchaingo/tools"
)

// Market fetches quotes and statements from Yahoo Finance and the NSE quote
// API and exposes them as agent tools.
type Market struct {
	YahooBaseURL string
	NSEBaseURL   string
	Clock        Clock
	fetcher      *Fetcher
}

// MarketOption configures NewMarket.
type MarketOption func(*Market)

// WithYahooBaseURL sets the Yahoo Finance host, e.g. https://query1.finance.yahoo.com.
func WithYahooBaseURL(baseURL string) MarketOption {
	return func(m *Market) {
		m.YahooBaseURL = strings.TrimRight(baseURL, "/")
	}
}

// WithNSEBaseURL sets the NSE India host.
func WithNSEBaseURL(baseURL string) MarketOption {
	return func(m *Market) {
		m.NSEBaseURL = strings.TrimRight(baseURL, "/")
	}
}

// WithMarketClock pins the clock used for statement lookback windows.
func WithMarketClock(c Clock) MarketOption {
	return func(m *Market) {
		m.Clock = c
	}
}

// NewMarket creates a market data client.
func NewMarket(f *Fetcher, opts ...MarketOption) *Market {
	m := &Market{
		YahooBaseURL: "https://query1.finance.yahoo.com",
		NSEBaseURL:   "https://www.nseindia.com",
		fetcher:      fetcherOrDefault(f),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// USStockQuote is the get_us_stock_price result.
type USStockQuote struct {
	Symbol             string   `json:"symbol"`
	CurrentPrice       *float64 `json:"current_price"`
	CompanyName        *string  `json:"company_name"`
	MarketCap          *float64 `json:"market_cap"`
	PERatio            *float64 `json:"pe_ratio"`
	FiftyTwoWeekHigh   *float64 `json:"52_week_high"`
	FiftyTwoWeekLow    *float64 `json:"52_week_low"`
	MarketCapFormatted string   `json:"market_cap_formatted,omitempty"`
}

// NSEStockQuote is the get_nse_stock_price result. Market cap is in crores.
type NSEStockQuote struct {
	Symbol             string   `json:"symbol"`
	CurrentPrice       *float64 `json:"current_price"`
	CompanyName        *string  `json:"company_name"`
	MarketCap          *float64 `json:"market_cap"`
	PERatio            *float64 `json:"pe_ratio"`
	FiftyTwoWeekHigh   *float64 `json:"52_week_high"`
	FiftyTwoWeekLow    *float64 `json:"52_week_low"`
	Change             *float64 `json:"change"`
	PercentChange      *float64 `json:"percent_change"`
	MarketCapFormatted string   `json:"market_cap_formatted,omitempty"`
}

// Financials is the latest annual statement summary.
type Financials struct {
	Symbol               string   `json:"symbol"`
	Period               string   `json:"period"`
	Currency             string   `json:"currency"`
	Revenue              *float64 `json:"revenue"`
	NetIncome            *float64 `json:"net_income"`
	TotalAssets          *float64 `json:"total_assets"`
	TotalDebt            *float64 `json:"total_debt"`
	RevenueFormatted     string   `json:"revenue_formatted,omitempty"`
	NetIncomeFormatted   string   `json:"net_income_formatted,omitempty"`
	TotalAssetsFormatted string   `json:"total_assets_formatted,omitempty"`
	TotalDebtFormatted   string   `json:"total_debt_formatted,omitempty"`
}

// MarketCapChange is the calculate_market_cap_change result.
type MarketCapChange struct {
	Symbol                    string  `json:"symbol"`
	StartDate                 string  `json:"start_date"`
	EndDate                   string  `json:"end_date"`
	InitialMarketCap          float64 `json:"initial_market_cap"`
	CurrentMarketCap          float64 `json:"current_market_cap"`
	Change                    float64 `json:"change"`
	ChangePercent             float64 `json:"change_percent"`
	InitialMarketCapFormatted string  `json:"initial_market_cap_formatted,omitempty"`
	CurrentMarketCapFormatted string  `json:"current_market_cap_formatted,omitempty"`
	ChangeFormatted           string  `json:"change_formatted,omitempty"`
}

// StockComparison is one entry of the compare_stocks result.
type StockComparison struct {
	CompanyName        *string  `json:"company_name"`
	CurrentPrice       *float64 `json:"current_price"`
	MarketCap          *float64 `json:"market_cap"`
	MarketCapFormatted *string  `json:"market_cap_formatted"`
	PERatio            *float64 `json:"pe_ratio"`
	FiftyTwoWeekHigh   *float64 `json:"52_week_high"`
	FiftyTwoWeekLow    *float64 `json:"52_week_low"`
	FiftyTwoWeekChange *float64 `json:"52_week_change_percent"`
}

// ToJSON marshals v with two space indentation and unescaped HTML/unicode.
func ToJSON(v any) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return "", err
	}
	return strings.TrimRight(buf.String(), "\n"), nil
}

func errorJSON(err error) string {
	return errorMessage(err.Error())
}

func errorMessage(msg string) string {
	out, _ := ToJSON(map[string]string{"error": msg})
	return out
}

// quote returns the first Yahoo quote for symbol.
func (m *Market) quote(ctx context.Context, symbol string) (gjson.Result, error) {
	params := url.Values{}
	params.Set("symbols", symbol)
	doc, err := m.fetcher.GetJSON(ctx, m.YahooBaseURL+"/v7/finance/quote?"+params.Encode(), nil)
	if err != nil {
		return gjson.Result{}, err
	}
	if msg := doc.Get("quoteResponse.error.description"); msg.Exists() && msg.String() != "" {
		return gjson.Result{}, errors.New(msg.String())
	}
	return doc.Get("quoteResponse.result.0"), nil
}

// USStock fetches the quote for ticker.
func (m *Market) USStock(ctx context.Context, ticker string) (*USStockQuote, error) {
	q, err := m.quote(ctx, ticker)
	if err != nil {
		return nil, err
	}
	out := &USStockQuote{
		Symbol:           strings.ToUpper(ticker),
		CurrentPrice:     firstNumber(q, "regularMarketPrice", "currentPrice"),
		CompanyName:      firstString(q, "longName", "shortName"),
		MarketCap:        firstNumber(q, "marketCap"),
		PERatio:          firstNumber(q, "trailingPE", "forwardPE"),
		FiftyTwoWeekHigh: firstNumber(q, "fiftyTwoWeekHigh"),
		FiftyTwoWeekLow:  firstNumber(q, "fiftyTwoWeekLow"),
	}
	if out.MarketCap != nil && *out.MarketCap != 0 {
		out.MarketCapFormatted = FormatUSMarketCap(*out.MarketCap)
	}
	return out, nil
}

// USStockPriceTool returns get_us_stock_price.
func (m *Market) USStockPriceTool() *Func {
	return NewFunc("get_us_stock_price",
		"Get detailed stock information for a given ticker symbol including price, company name, market cap, PE ratio, and 52-week range.",
		ObjectSchema(StringParam("ticker", "Ticker symbol, e.g. AAPL")),
		func(ctx context.Context, args Args) (string, error) {
			ticker := args.String("ticker")
			q, err := m.USStock(ctx, ticker)
			if err != nil {
				return fmt.Sprintf("Stock price error: %v", err), nil
			}
			if q.CurrentPrice == nil {
				return fmt.Sprintf("Could not retrieve stock data for ticker '%s'. Please verify the ticker symbol.", ticker), nil
			}
			out, err := ToJSON(q)
			if err != nil {
				return fmt.Sprintf("Stock price error: %v", err), nil
			}
			return out, nil
		})
}

// nseSymbol strips exchange suffixes and upper cases symbol.
func nseSymbol(symbol string) string {
	s := strings.ToUpper(strings.TrimSpace(symbol))
	s = strings.TrimSuffix(s, ".NS")
	return strings.TrimSuffix(s, ".BO")
}

// NSEStock fetches the NSE equity quote for symbol.
func (m *Market) NSEStock(ctx context.Context, symbol string) (*NSEStockQuote, error) {
	sym := nseSymbol(symbol)
	params := url.Values{}
	params.Set("symbol", sym)
	header := http.Header{}
	header.Set("Accept", "application/json")
	header.Set("Referer", m.NSEBaseURL+"/get-quotes/equity?symbol="+url.QueryEscape(sym))

	doc, err := m.fetcher.GetJSON(ctx, m.NSEBaseURL+"/api/quote-equity?"+params.Encode(), header)
	if err != nil {
		return nil, err
	}
	out := &NSEStockQuote{
		Symbol:           sym,
		CurrentPrice:     firstNumber(doc, "priceInfo.lastPrice"),
		CompanyName:      firstString(doc, "info.companyName"),
		MarketCap:        firstNumber(doc, "metadata.marketCap"),
		PERatio:          firstNumber(doc, "metadata.pdSymbolPe"),
		FiftyTwoWeekHigh: firstNumber(doc, "priceInfo.weekHighLow.max"),
		FiftyTwoWeekLow:  firstNumber(doc, "priceInfo.weekHighLow.min"),
		Change:           firstNumber(doc, "priceInfo.change"),
		PercentChange:    firstNumber(doc, "priceInfo.pChange"),
	}
	if out.MarketCap != nil && *out.MarketCap != 0 {
		out.MarketCapFormatted = FormatNSEMarketCap(*out.MarketCap)
	}
	return out, nil
}

// NSEStockPriceTool returns get_nse_stock_price.
func (m *Market) NSEStockPriceTool() *Func {
	return NewFunc("get_nse_stock_price",
		"Get detailed stock information for Indian stocks (NSE) including price, company name, market cap, PE ratio, and 52-week range. "+
			"Use stock symbols like 'RELIANCE', 'TCS', 'INFY', 'HDFCBANK', etc.",
		ObjectSchema(StringParam("symbol", "NSE symbol, e.g. RELIANCE")),
		func(ctx context.Context, args Args) (string, error) {
			symbol := args.String("symbol")
			q, err := m.NSEStock(ctx, symbol)
			if err != nil {
				return fmt.Sprintf("NSE stock error: %v", err), nil
			}
			if q.CurrentPrice == nil {
				return fmt.Sprintf("Could not retrieve stock data for symbol '%s'. Please verify the NSE symbol.", symbol), nil
			}
			out, err := ToJSON(q)
			if err != nil {
				return fmt.Sprintf("NSE stock error: %v", err), nil
			}
			return out, nil
		})
}

var statementTypes = []string{"annualTotalRevenue", "annualNetIncome", "annualTotalAssets", "annualTotalDebt"}

// Statements returns the latest annual figures for a Yahoo symbol. ok is
// false when the provider has no statement data.
func (m *Market) Statements(ctx context.Context, yahooSymbol string) (period string, values map[string]float64, ok bool, err error) {
	now := m.Clock.now()
	params := url.Values{}
	params.Set("type", strings.Join(statementTypes, ","))
	params.Set("period1", strconv.FormatInt(now.AddDate(-5, 0, 0).Unix(), 10))
	params.Set("period2", strconv.FormatInt(now.Unix(), 10))
	reqURL := fmt.Sprintf("%s/ws/fundamentals-timeseries/v1/finance/timeseries/%s?%s",
		m.YahooBaseURL, url.PathEscape(yahooSymbol), params.Encode())

	doc, err := m.fetcher.GetJSON(ctx, reqURL, nil)
	if err != nil {
		return "", nil, false, err
	}

	// type -> asOfDate -> value
	series := make(map[string]map[string]float64)
	for _, r := range doc.Get("timeseries.result").Array() {
		typ := r.Get("meta.type.0").String()
		for _, point := range r.Get(typ).Array() {
			v := point.Get("reportedValue.raw")
			if !v.Exists() {
				continue
			}
			if series[typ] == nil {
				series[typ] = make(map[string]float64)
			}
			series[typ][point.Get("asOfDate").String()] = v.Float()
		}
	}
	if len(series["annualTotalRevenue"]) == 0 && len(series["annualNetIncome"]) == 0 {
		return "", nil, false, nil
	}

	dates := make([]string, 0)
	for _, byDate := range series {
		for d := range byDate {
			dates = append(dates, d)
		}
	}
	sort.Strings(dates)
	period = dates[len(dates)-1]

	values = make(map[string]float64)
	for typ, byDate := range series {
		if v, found := byDate[period]; found {
			values[typ] = v
		}
	}
	return period, values, true, nil
}

func (m *Market) financials(ctx context.Context, display, yahooSymbol, currency string, format func(float64) string) string {
	period, values, ok, err := m.Statements(ctx, yahooSymbol)
	if err != nil {
		return errorJSON(err)
	}
	if !ok {
		return errorMessage("No financial data available for " + display)
	}
	out := Financials{Symbol: display, Period: period, Currency: currency}
	set := func(typ string, dst **float64, formatted *string) {
		if v, found := values[typ]; found {
			*dst = &v
			*formatted = format(v)
		}
	}
	set("annualTotalRevenue", &out.Revenue, &out.RevenueFormatted)
	set("annualNetIncome", &out.NetIncome, &out.NetIncomeFormatted)
	set("annualTotalAssets", &out.TotalAssets, &out.TotalAssetsFormatted)
	set("annualTotalDebt", &out.TotalDebt, &out.TotalDebtFormatted)

	s, err := ToJSON(out)
	if err != nil {
		return errorJSON(err)
	}
	return s
}

// USFinancialsTool returns get_us_financial_statements.
func (m *Market) USFinancialsTool() *Func {
	return NewFunc("get_us_financial_statements",
		"Retrieve key financial statement data for US/international stocks using ticker symbols like AAPL, TSLA, MSFT. "+
			"Returns revenue, net income, total assets, and total debt for the latest available period.",
		ObjectSchema(StringParam("ticker", "Ticker symbol, e.g. AAPL")),
		func(ctx context.Context, args Args) (string, error) {
			ticker := args.String("ticker")
			return m.financials(ctx, strings.ToUpper(ticker), ticker, "USD", FormatUSD), nil
		})
}

// NSEFinancialsTool returns get_nse_financial_statements.
func (m *Market) NSEFinancialsTool() *Func {
	return NewFunc("get_nse_financial_statements",
		"Retrieve key financial statement data for Indian NSE stocks like RELIANCE, TCS, INFY, HDFCBANK. "+
			"Returns revenue, net income, total assets, and total debt for the latest available period.",
		ObjectSchema(StringParam("symbol", "NSE symbol, e.g. TCS")),
		func(ctx context.Context, args Args) (string, error) {
			sym := nseSymbol(args.String("symbol"))
			return m.financials(ctx, sym, sym+".NS", "INR", FormatINR), nil
		})
}

// closes returns the daily closes of symbol over the last days days.
func (m *Market) closes(ctx context.Context, symbol string, days int) ([]time.Time, []float64, error) {
	params := url.Values{}
	params.Set("range", fmt.Sprintf("%dd", days))
	params.Set("interval", "1d")
	reqURL := fmt.Sprintf("%s/v8/finance/chart/%s?%s", m.YahooBaseURL, url.PathEscape(symbol), params.Encode())
	doc, err := m.fetcher.GetJSON(ctx, reqURL, nil)
	if err != nil {
		return nil, nil, err
	}
	if msg := doc.Get("chart.error.description"); msg.Exists() && msg.String() != "" {
		return nil, nil, errors.New(msg.String())
	}
	res := doc.Get("chart.result.0")
	stamps := res.Get("timestamp").Array()
	closes := res.Get("indicators.quote.0.close").Array()

	var ts []time.Time
	var cs []float64
	for i, st := range stamps {
		if i >= len(closes) || closes[i].Type != gjson.Number {
			continue
		}
		ts = append(ts, time.Unix(st.Int(), 0).UTC())
		cs = append(cs, closes[i].Float())
	}
	return ts, cs, nil
}

// MarketCapChange computes the change in market cap over days using the
// current share count.
func (m *Market) MarketCapChange(ctx context.Context, ticker string, days int) (string, error) {
	ts, cs, err := m.closes(ctx, ticker, days)
	if err != nil {
		return "", err
	}
	if len(cs) < 2 {
		return errorMessage("Insufficient data for " + ticker), nil
	}
	q, err := m.quote(ctx, ticker)
	if err != nil {
		return "", err
	}
	shares := q.Get("sharesOutstanding").Float()
	if shares == 0 {
		return errorMessage("Shares outstanding data not available"), nil
	}

	first := cs[0] * shares
	last := cs[len(cs)-1] * shares
	change := last - first
	out := MarketCapChange{
		Symbol:           strings.ToUpper(ticker),
		StartDate:        ts[0].Format(dateLayout),
		EndDate:          ts[len(ts)-1].Format(dateLayout),
		InitialMarketCap: first,
		CurrentMarketCap: last,
		Change:           change,
		ChangePercent:    math.Round(change/first*100*100) / 100,
	}
	if first >= 1e9 {
		out.InitialMarketCapFormatted = fmt.Sprintf("$%.2fB", first/1e9)
		out.CurrentMarketCapFormatted = fmt.Sprintf("$%.2fB", last/1e9)
		out.ChangeFormatted = fmt.Sprintf("$%.2fB", math.Abs(change)/1e9)
	}
	return ToJSON(out)
}

// MarketCapChangeTool returns calculate_market_cap_change.
func (m *Market) MarketCapChangeTool() *Func {
	return NewFunc("calculate_market_cap_change",
		"Calculate the change in market capitalization over a specified number of days for US stocks. "+
			"ticker: Stock ticker symbol (e.g., AAPL, TSLA, MSFT). days: Number of days to look back (default: 30).",
		ObjectSchema(
			StringParam("ticker", "Stock ticker symbol"),
			IntegerParam("days", "Number of days to look back").Optional(),
		),
		func(ctx context.Context, args Args) (string, error) {
			ticker := args.String("ticker")
			days := 30
			if args.IsObject() {
				d, err := args.Int("days", 30)
				if err != nil {
					return errorJSON(err), nil
				}
				days = d
			}
			out, err := m.MarketCapChange(ctx, ticker, days)
			if err != nil {
				return errorJSON(err), nil
			}
			return out, nil
		})
}

// Compare builds side by side metrics for the tickers.
func (m *Market) Compare(ctx context.Context, tickers ...string) (string, error) {
	var buf bytes.Buffer
	buf.WriteString("{")
	seen := make(map[string]bool)
	for _, t := range tickers {
		key := strings.ToUpper(t)
		if seen[key] {
			continue
		}
		q, err := m.quote(ctx, t)
		if err != nil {
			return "", err
		}
		entry := StockComparison{
			CompanyName:        firstString(q, "longName", "shortName"),
			CurrentPrice:       firstNumber(q, "regularMarketPrice", "currentPrice"),
			MarketCap:          firstNumber(q, "marketCap"),
			PERatio:            firstNumber(q, "trailingPE", "forwardPE"),
			FiftyTwoWeekHigh:   firstNumber(q, "fiftyTwoWeekHigh"),
			FiftyTwoWeekLow:    firstNumber(q, "fiftyTwoWeekLow"),
			FiftyTwoWeekChange: firstNumber(q, "fiftyTwoWeekChangePercent", "52WeekChange"),
		}
		if mc := entry.MarketCap; mc != nil && *mc >= 1e9 {
			f := FormatUSMarketCap(*mc)
			entry.MarketCapFormatted = &f
		}
		body, err := ToJSON(entry)
		if err != nil {
			return "", err
		}
		if len(seen) > 0 {
			buf.WriteString(",")
		}
		seen[key] = true
		name, _ := json.Marshal(key)
		buf.WriteString("\n  ")
		buf.Write(name)
		buf.WriteString(": ")
		buf.WriteString(strings.ReplaceAll(body, "\n", "\n  "))
	}
	buf.WriteString("\n}")
	return buf.String(), nil
}

// CompareStocksTool returns compare_stocks.
func (m *Market) CompareStocksTool() *Func {
	return NewFunc("compare_stocks",
		"Compare two stocks side by side with key metrics like price, market cap, PE ratio, and 52-week performance. "+
			"Works for US stocks (e.g., AAPL vs MSFT).",
		ObjectSchema(
			StringParam("ticker1", "First ticker"),
			StringParam("ticker2", "Second ticker"),
		),
		func(ctx context.Context, args Args) (string, error) {
			out, err := m.Compare(ctx, args.String("ticker1"), args.String("ticker2"))
			if err != nil {
				return errorJSON(err), nil
			}
			return out, nil
		})
}

// Tools returns the financial agent tool set.
func (m *Market) Tools() []tools.Tool {
	return []tools.Tool{
		m.USStockPriceTool(),
		m.NSEStockPriceTool(),
		m.USFinancialsTool(),
		m.NSEFinancialsTool(),
		m.MarketCapChangeTool(),
		m.CompareStocksTool(),
	}
}

// firstNumber returns the first numeric, non-zero field among paths.
func firstNumber(r gjson.Result, paths ...string) *float64 {
	for _, p := range paths {
		v := r.Get(p)
		var f float64
		switch v.Type {
		case gjson.Number:
			f = v.Num
		case gjson.String:
			parsed, err := strconv.ParseFloat(strings.ReplaceAll(v.Str, ",", ""), 64)
			if err != nil {
				continue
			}
			f = parsed
		case gjson.JSON:
			// Yahoo sometimes wraps values as {"raw": 1.0, "fmt": "1.00"}
			raw := v.Get("raw")
			if raw.Type != gjson.Number {
				continue
			}
			f = raw.Num
		default:
			continue
		}
		if f == 0 && len(paths) > 1 {
			continue
		}
		return &f
	}
	return nil
}

func firstString(r gjson.Result, paths ...string) *string {
	for _, p := range paths {
		if v := r.Get(p); v.Type == gjson.String && v.Str != "" {
			s := v.Str
			return &s
		}
	}
	return nil
}
