// Package tool provides the agent tools used by langlab agents.
//
// Every tool implements langchaingo's tools.Tool. Tools that take structured
// arguments also implement SchemaTool and accept a JSON object:
//
//	add := tool.Add()
//	out, _ := add.Call(ctx, `{"a": 2, "b": 4}`) // "6"
//
// # Available Tools
//
// Arithmetic: add, subtract, multiply, divide.
//
// Date and time: get_current_time, get_current_date, get_local_timezone,
// calculate_future_date, calculate_date_difference.
//
// Timezones: identify_timezone looks cities up in a static table and falls
// back to a model for unknown cities; calculate_time_in_timezone reports the
// time in an IANA zone and the offset from local time.
//
// Web: get_current_weather (wttr.in), search (DuckDuckGo HTML results parsed
// with goquery), wikipedia_search (MediaWiki API).
//
// Markets: get_us_stock_price, get_nse_stock_price,
// get_us_financial_statements, get_nse_financial_statements,
// calculate_market_cap_change and compare_stocks return indented JSON.
//
// # Errors
//
// Provider failures are returned as result text ("Weather error: ...") so the
// model can explain or retry. Call only returns an error when the arguments
// cannot be decoded.
//
// # HTTP
//
// All network tools share a Fetcher that limits requests per host with
// golang.org/x/time/rate and sends a browser user agent:
//
//	f := tool.NewFetcher(tool.WithRateLimit(rate.Every(time.Second), 1))
//	ts := tool.BasicAgentTools(tool.SetConfig{Fetcher: f, Fallback: llm})
package tool
