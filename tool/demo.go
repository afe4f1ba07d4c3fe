package tool

import (
	"context"
	"fmt"
	"time"
	_ "time/tzdata"
)

// The demo tools return fixed sample values; they exist to exercise tool
// selection and dispatch, not to answer questions.

type cityArgs struct {
	City string `json:"city"`
}

type timezoneArgs struct {
	Timezone string `json:"timezone"`
}

type queryArgs struct {
	Query string `json:"query"`
}

type distanceArgs struct {
	City1 string `json:"city1"`
	City2 string `json:"city2"`
}

type currencyArgs struct {
	Amount       float64 `json:"amount"`
	FromCurrency string  `json:"from_currency"`
	ToCurrency   string  `json:"to_currency"`
}

// DemoTools returns get_weather, get_time, search_wikipedia,
// calculate_distance and convert_currency.
func DemoTools(now func() time.Time) []Tool {
	if now == nil {
		now = time.Now
	}
	return []Tool{
		NewFunc("get_weather", "Get real-time weather for a city.",
			Object(map[string]any{"city": String("City name.")}, "city"),
			func(ctx context.Context, args cityArgs) (string, error) {
				return JSON(map[string]any{"city": args.City, "temp": "22°C", "condition": "Clear"})
			}),
		NewFunc("get_time", "Get current time in any timezone.",
			Object(map[string]any{"timezone": String("IANA timezone, e.g. Europe/London.")}, "timezone"),
			func(ctx context.Context, args timezoneArgs) (string, error) {
				loc, err := time.LoadLocation(args.Timezone)
				if err != nil {
					return "", fmt.Errorf("unknown timezone %q: %w", args.Timezone, err)
				}
				return JSON(map[string]any{"timezone": args.Timezone, "time": now().In(loc).Format("15:04")})
			}),
		NewFunc("search_wikipedia", "Search Wikipedia and return summary.",
			Object(map[string]any{"query": String("Search terms.")}, "query"),
			func(ctx context.Context, args queryArgs) (string, error) {
				return JSON(map[string]any{"query": args.Query, "summary": "This is a demo summary."})
			}),
		NewFunc("calculate_distance", "Calculate distance in km between two cities.",
			Object(map[string]any{"city1": String("First city."), "city2": String("Second city.")}, "city1", "city2"),
			func(ctx context.Context, args distanceArgs) (string, error) {
				return JSON(map[string]any{"city1": args.City1, "city2": args.City2, "distance_km": 450})
			}),
		NewFunc("convert_currency", "Convert currency amounts.",
			Object(map[string]any{
				"amount":        Number("Amount to convert."),
				"from_currency": String("Source currency code."),
				"to_currency":   String("Target currency code."),
			}, "amount", "from_currency", "to_currency"),
			func(ctx context.Context, args currencyArgs) (string, error) {
				return JSON(map[string]any{
					"amount":    args.Amount,
					"from":      args.FromCurrency,
					"to":        args.ToCurrency,
					"converted": args.Amount * 1.1,
				})
			}),
	}
}

// AssistantTools returns the tools offered to the assistant agent:
// get_current_time, get_weather_from_ip, write_txt_file and generate_qr_code.
func AssistantTools(baseDir string) []Tool {
	return []Tool{
		NewCurrentTime(nil),
		NewWeatherFromIP(),
		NewWriteTextFile(baseDir),
		NewQRCode(baseDir),
	}
}
