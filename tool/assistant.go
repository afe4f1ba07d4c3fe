package tool

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// NewCurrentTime returns get_current_time, which reports the local time as
// HH:MM:SS. now defaults to time.Now.
func NewCurrentTime(now func() time.Time) Tool {
	if now == nil {
		now = time.Now
	}
	return NewFunc("get_current_time", "Returns the current time as a string.", nil,
		func(ctx context.Context, _ struct{}) (string, error) {
			return now().Format("15:04:05"), nil
		})
}

// Default endpoints of the weather lookup.
const (
	DefaultIPInfoURL   = "https://ipinfo.io/json"
	DefaultForecastURL = "https://api.open-meteo.com/v1/forecast"
)

// WeatherFromIP looks up the caller's coordinates from their IP address and
// reports the current, high and low temperature in Fahrenheit.
type WeatherFromIP struct {
	Client      *http.Client
	IPInfoURL   string
	ForecastURL string
}

// NewWeatherFromIP returns get_weather_from_ip using the public endpoints.
func NewWeatherFromIP() *WeatherFromIP {
	return &WeatherFromIP{
		Client:      &http.Client{Timeout: 15 * time.Second},
		IPInfoURL:   DefaultIPInfoURL,
		ForecastURL: DefaultForecastURL,
	}
}

func (w *WeatherFromIP) Name() string { return "get_weather_from_ip" }

func (w *WeatherFromIP) Description() string {
	return "Gets the current, high, and low temperature in Fahrenheit for the user's location and returns it to the user."
}

func (w *WeatherFromIP) Parameters() map[string]any { return Object(nil) }

type forecast struct {
	Current struct {
		Temperature float64 `json:"temperature_2m"`
	} `json:"current"`
	Daily struct {
		Max []float64 `json:"temperature_2m_max"`
		Min []float64 `json:"temperature_2m_min"`
	} `json:"daily"`
}

func (w *WeatherFromIP) Call(ctx context.Context, _ string) (string, error) {
	var loc struct {
		Loc string `json:"loc"`
	}
	if err := w.getJSON(ctx, w.IPInfoURL, &loc); err != nil {
		return "", fmt.Errorf("failed to locate caller: %w", err)
	}
	lat, lon, ok := strings.Cut(loc.Loc, ",")
	if !ok {
		return "", fmt.Errorf("unexpected location %q", loc.Loc)
	}

	params := url.Values{}
	params.Set("latitude", strings.TrimSpace(lat))
	params.Set("longitude", strings.TrimSpace(lon))
	params.Set("current", "temperature_2m")
	params.Set("daily", "temperature_2m_max,temperature_2m_min")
	params.Set("temperature_unit", "fahrenheit")
	params.Set("timezone", "auto")

	var fc forecast
	if err := w.getJSON(ctx, w.ForecastURL+"?"+params.Encode(), &fc); err != nil {
		return "", fmt.Errorf("failed to fetch forecast: %w", err)
	}
	if len(fc.Daily.Max) == 0 || len(fc.Daily.Min) == 0 {
		return "", fmt.Errorf("forecast has no daily temperatures")
	}

	return fmt.Sprintf("Current: %s°F, High: %s°F, Low: %s°F",
		formatTemp(fc.Current.Temperature), formatTemp(fc.Daily.Max[0]), formatTemp(fc.Daily.Min[0])), nil
}

func (w *WeatherFromIP) getJSON(ctx context.Context, rawURL string, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	client := w.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%s returned status: %d", req.URL.Host, resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func formatTemp(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// resolve joins relative paths onto base.
func resolve(base, path string) string {
	if base == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(base, path)
}

type writeArgs struct {
	FilePath string `json:"file_path"`
	Content  string `json:"content"`
}

// NewWriteTextFile returns write_txt_file, which writes content to a file
// (overwriting it) and returns the path written. Relative paths are resolved
// against baseDir when it is set.
func NewWriteTextFile(baseDir string) Tool {
	params := Object(map[string]any{
		"file_path": String("Destination path."),
		"content":   String("Text to write."),
	}, "file_path", "content")

	return NewFunc("write_txt_file", "Write a string into a .txt file (overwrites if exists).", params,
		func(ctx context.Context, args writeArgs) (string, error) {
			path := resolve(baseDir, args.FilePath)
			if err := os.WriteFile(path, []byte(args.Content), 0o644); err != nil {
				return "", fmt.Errorf("failed to write to file: %w", err)
			}
			return path, nil
		})
}
