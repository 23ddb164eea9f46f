package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// WeatherFallback is shown whenever the provider cannot answer
const WeatherFallback = "Не удалось получить данные о погоде."

// WeatherClient queries an OpenWeatherMap-compatible endpoint for one city
type WeatherClient struct {
	httpClient *http.Client
	endpoint   string
	apiKey     string
	city       string
	timeout    time.Duration
	logger     *zap.Logger
	group      singleflight.Group
}

// NewWeatherClient creates a weather client bounded by timeout per lookup
func NewWeatherClient(endpoint, apiKey, city string, timeout time.Duration, logger *zap.Logger) *WeatherClient {
	return &WeatherClient{
		httpClient: &http.Client{Timeout: timeout},
		endpoint:   endpoint,
		apiKey:     apiKey,
		city:       city,
		timeout:    timeout,
		logger:     logger,
	}
}

type weatherResponse struct {
	Weather []struct {
		Description string `json:"description"`
	} `json:"weather"`
	Main *struct {
		Temp *float64 `json:"temp"`
	} `json:"main"`
}

// Current returns "<Description>, <temp>°C" or WeatherFallback.
// Concurrent callers share one upstream request.
func (c *WeatherClient) Current(ctx context.Context) string {
	v, _, _ := c.group.Do(c.city, func() (interface{}, error) {
		line, err := c.fetch(ctx)
		if err != nil {
			c.logger.Warn("Weather lookup failed, using fallback",
				zap.String("city", c.city),
				zap.Error(err),
			)
			return WeatherFallback, nil
		}
		return line, nil
	})
	return v.(string)
}

func (c *WeatherClient) fetch(ctx context.Context) (string, error) {
	if c.apiKey == "" {
		return "", errors.New("weather api key is not configured")
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	query := url.Values{}
	query.Set("q", c.city)
	query.Set("appid", c.apiKey)
	query.Set("units", "metric")
	query.Set("lang", "ru")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint+"?"+query.Encode(), nil)
	if err != nil {
		return "", fmt.Errorf("failed to build request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	var body weatherResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("failed to decode body: %w", err)
	}
	if len(body.Weather) == 0 || body.Main == nil || body.Main.Temp == nil {
		return "", errors.New("incomplete weather body")
	}

	temp := strconv.FormatFloat(*body.Main.Temp, 'f', -1, 64)
	return fmt.Sprintf("%s, %s°C", capitalize(body.Weather[0].Description), temp), nil
}

func capitalize(s string) string {
	s = strings.TrimSpace(s)
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + strings.ToLower(s[size:])
}
