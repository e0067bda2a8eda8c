package tool

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	_ "time/tzdata" // IANA database for hosts without zoneinfo

	"github.com/tmc/langchaingo/llms"
)

// cityTimezones maps normalized city names to IANA zones.
var cityTimezones = map[string]string{
	// United States
	"new york": "America/New_York", "nyc": "America/New_York", "boston": "America/New_York",
	"washington dc": "America/New_York", "philadelphia": "America/New_York", "miami": "America/New_York",
	"orlando": "America/New_York", "atlanta": "America/New_York", "detroit": "America/New_York",
	"tampa": "America/New_York",
	"chicago": "America/Chicago", "houston": "America/Chicago", "dallas": "America/Chicago",
	"austin": "America/Chicago", "san antonio": "America/Chicago", "minneapolis": "America/Chicago",
	"st louis": "America/Chicago", "nashville": "America/Chicago",
	"denver": "America/Denver", "boulder": "America/Denver", "salt lake city": "America/Denver",
	"albuquerque": "America/Denver",
	"los angeles": "America/Los_Angeles", "la": "America/Los_Angeles", "san francisco": "America/Los_Angeles",
	"san jose": "America/Los_Angeles", "oakland": "America/Los_Angeles", "palo alto": "America/Los_Angeles",
	"mountain view": "America/Los_Angeles", "sunnyvale": "America/Los_Angeles", "seattle": "America/Los_Angeles",
	"portland": "America/Los_Angeles", "san diego": "America/Los_Angeles", "las vegas": "America/Los_Angeles",
	"phoenix": "America/Phoenix", "scottsdale": "America/Phoenix", // no DST

	// Canada
	"toronto": "America/Toronto", "ottawa": "America/Toronto", "montreal": "America/Toronto",
	"vancouver": "America/Vancouver", "calgary": "America/Edmonton", "edmonton": "America/Edmonton",
	"winnipeg": "America/Winnipeg", "halifax": "America/Halifax",

	// United Kingdom
	"london": "Europe/London", "manchester": "Europe/London", "birmingham": "Europe/London",
	"leeds": "Europe/London", "edinburgh": "Europe/London", "glasgow": "Europe/London",

	// Europe
	"paris": "Europe/Paris", "marseille": "Europe/Paris", "lyon": "Europe/Paris",
	"berlin": "Europe/Berlin", "munich": "Europe/Berlin", "hamburg": "Europe/Berlin", "frankfurt": "Europe/Berlin",
	"amsterdam": "Europe/Amsterdam", "brussels": "Europe/Brussels",
	"rome": "Europe/Rome", "milan": "Europe/Rome", "naples": "Europe/Rome",
	"madrid": "Europe/Madrid", "barcelona": "Europe/Madrid", "valencia": "Europe/Madrid",
	"lisbon": "Europe/Lisbon", "zurich": "Europe/Zurich", "geneva": "Europe/Zurich",
	"vienna": "Europe/Vienna", "prague": "Europe/Prague", "warsaw": "Europe/Warsaw", "budapest": "Europe/Budapest",
	"stockholm": "Europe/Stockholm", "oslo": "Europe/Oslo", "copenhagen": "Europe/Copenhagen",
	"helsinki": "Europe/Helsinki", "athens": "Europe/Athens", "istanbul": "Europe/Istanbul",
	"moscow": "Europe/Moscow",

	// India
	"mumbai": "Asia/Kolkata", "bombay": "Asia/Kolkata", "delhi": "Asia/Kolkata", "new delhi": "Asia/Kolkata",
	"bangalore": "Asia/Kolkata", "bengaluru": "Asia/Kolkata", "chennai": "Asia/Kolkata", "kolkata": "Asia/Kolkata",
	"pune": "Asia/Kolkata", "hyderabad": "Asia/Kolkata", "ahmedabad": "Asia/Kolkata", "jaipur": "Asia/Kolkata",
	"chandigarh": "Asia/Kolkata", "kochi": "Asia/Kolkata", "trivandrum": "Asia/Kolkata",

	// Asia
	"tokyo": "Asia/Tokyo", "osaka": "Asia/Tokyo", "kyoto": "Asia/Tokyo", "seoul": "Asia/Seoul",
	"beijing": "Asia/Shanghai", "shanghai": "Asia/Shanghai", "shenzhen": "Asia/Shanghai", "guangzhou": "Asia/Shanghai",
	"hong kong": "Asia/Hong_Kong", "taipei": "Asia/Taipei", "singapore": "Asia/Singapore",
	"bangkok": "Asia/Bangkok", "kuala lumpur": "Asia/Kuala_Lumpur", "jakarta": "Asia/Jakarta",
	"manila": "Asia/Manila", "dubai": "Asia/Dubai", "abu dhabi": "Asia/Dubai",
	"riyadh": "Asia/Riyadh", "jeddah": "Asia/Riyadh", "tel aviv": "Asia/Jerusalem",

	// Africa
	"cairo": "Africa/Cairo", "lagos": "Africa/Lagos", "nairobi": "Africa/Nairobi",
	"johannesburg": "Africa/Johannesburg", "cape town": "Africa/Johannesburg", "accra": "Africa/Accra",

	// South America
	"sao paulo": "America/Sao_Paulo", "rio de janeiro": "America/Sao_Paulo",
	"buenos aires": "America/Argentina/Buenos_Aires", "santiago": "America/Santiago",
	"bogota": "America/Bogota", "lima": "America/Lima",

	// Australia & NZ
	"sydney": "Australia/Sydney", "melbourne": "Australia/Melbourne", "brisbane": "Australia/Brisbane",
	"perth": "Australia/Perth", "adelaide": "Australia/Adelaide",
	"auckland": "Pacific/Auckland", "wellington": "Pacific/Auckland",
}

// LookupTimezone finds city in the static table. Case and extra spaces are
// ignored.
func LookupTimezone(city string) (string, bool) {
	tz, ok := cityTimezones[strings.Join(strings.Fields(strings.ToLower(city)), " ")]
	return tz, ok
}

const timezoneSystemPrompt = "You are a geography expert. Return ONLY the IANA timezone identifier. " +
	"Examples: 'America/New_York', 'Asia/Tokyo', 'Europe/London'. No explanation."

var errNoFallback = errors.New("city not in timezone table and no model configured")

// TimezoneIdentifier implements identify_timezone. Unknown cities are
// resolved by Model when one is set.
type TimezoneIdentifier struct {
	Model llms.Model
}

var _ SchemaTool = (*TimezoneIdentifier)(nil)

// NewTimezoneIdentifier creates the tool. model may be nil.
func NewTimezoneIdentifier(model llms.Model) *TimezoneIdentifier {
	return &TimezoneIdentifier{Model: model}
}

// Name returns the name of the tool.
func (t *TimezoneIdentifier) Name() string { return "identify_timezone" }

// Description returns the description of the tool.
func (t *TimezoneIdentifier) Description() string {
	return "Identify the IANA timezone for a given city. " +
		"Returns the timezone identifier (e.g., 'America/New_York', 'Asia/Tokyo', 'Europe/London'). " +
		"Use this first before calculating time in a city."
}

// Schema returns the JSON schema of the tool arguments.
func (t *TimezoneIdentifier) Schema() map[string]any {
	return ObjectSchema(StringParam("city", "City name, e.g. Tokyo"))
}

// Call resolves the city.
func (t *TimezoneIdentifier) Call(ctx context.Context, input string) (string, error) {
	city := ParseArgs(input).String("city")
	if tz, ok := LookupTimezone(city); ok {
		return tz, nil
	}
	tz, err := t.ask(ctx, city)
	if err != nil {
		return fmt.Sprintf("Error: %v", err), nil
	}
	return tz, nil
}

func (t *TimezoneIdentifier) ask(ctx context.Context, city string) (string, error) {
	if t.Model == nil {
		return "", errNoFallback
	}
	msgs := []llms.MessageContent{
		llms.TextParts(llms.ChatMessageTypeSystem, timezoneSystemPrompt),
		llms.TextParts(llms.ChatMessageTypeHuman, fmt.Sprintf("IANA timezone for %s?", city)),
	}
	resp, err := t.Model.GenerateContent(ctx, msgs, llms.WithTemperature(0))
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("empty response from model")
	}
	tz := strings.TrimSpace(resp.Choices[0].Content)
	tz = strings.NewReplacer("'", "", `"`, "").Replace(tz)
	return strings.TrimSpace(tz), nil
}

// TimeInTimezone returns the calculate_time_in_timezone tool.
func TimeInTimezone(clock Clock) *Func {
	return NewFunc("calculate_time_in_timezone",
		"Calculate the current time in a given IANA timezone. "+
			"timezone: IANA timezone identifier like 'America/New_York', 'Asia/Tokyo', 'Asia/Kolkata', 'Europe/London'. "+
			"Returns the current time, timezone name, and time difference from local time.",
		ObjectSchema(StringParam("timezone", "IANA timezone identifier")),
		func(_ context.Context, args Args) (string, error) {
			tz := args.String("timezone")
			out, err := timeIn(clock.now(), tz)
			if err != nil {
				return fmt.Sprintf("Error calculating time for timezone '%s': %v. Please verify the IANA timezone format.", tz, err), nil
			}
			return out, nil
		})
}

func timeIn(now time.Time, tz string) (string, error) {
	if tz == "" || tz == "Local" {
		return "", fmt.Errorf("unknown time zone %q", tz)
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return "", err
	}
	target := now.In(loc)
	_, localOffset := now.Zone()
	_, targetOffset := target.Zone()
	hours := float64(targetOffset-localOffset) / 3600
	return fmt.Sprintf("\nCurrent time: %s\nTimezone: %s\nTime difference from local: %+.1f hours",
		target.Format("2006-01-02 15:04:05 MST"), tz, hours), nil
}
