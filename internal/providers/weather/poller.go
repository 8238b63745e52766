package weather

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/bytedance/sonic"
	"github.com/hashicorp/go-retryablehttp"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/deskfolio/internal/infrastructure/resilience"
)

// DefaultEndpoint is the current-conditions API
const DefaultEndpoint = "https://api.openweathermap.org/data/2.5/weather"

var (
	// ErrNotConfigured is returned when no API key is set
	ErrNotConfigured = errors.New("weather is not configured")
	// ErrNoData is returned before the first successful fetch
	ErrNoData = errors.New("no weather data yet")
)

// Config configures the poller
type Config struct {
	APIKey    string
	Endpoint  string
	City      string
	Interval  time.Duration
	RetryMax  int
	RetryWait time.Duration
}

// Report is the widget's view of the current weather
type Report struct {
	City        string    `json:"city"`
	TempC       float64   `json:"temp_c"`
	FeelsLikeC  float64   `json:"feels_like_c"`
	Humidity    int       `json:"humidity"`
	WindSpeed   float64   `json:"wind_speed"`
	Description string    `json:"description"`
	Icon        string    `json:"icon"`
	FetchedAt   time.Time `json:"fetched_at"`
}

type apiResponse struct {
	Name string `json:"name"`
	Main struct {
		Temp      float64 `json:"temp"`
		FeelsLike float64 `json:"feels_like"`
		Humidity  int     `json:"humidity"`
	} `json:"main"`
	Wind struct {
		Speed float64 `json:"speed"`
	} `json:"wind"`
	Weather []struct {
		Description string `json:"description"`
		Icon        string `json:"icon"`
	} `json:"weather"`
}

// Poller fetches the weather on an interval and caches the latest report
type Poller struct {
	cfg     Config
	client  *retryablehttp.Client
	breaker *resilience.Breaker
	logger  *zap.Logger

	mu     sync.RWMutex
	latest *Report // Protected by mu
}

// New creates a poller
func New(cfg Config, logger *zap.Logger) *Poller {
	if cfg.Endpoint == "" {
		cfg.Endpoint = DefaultEndpoint
	}
	if cfg.Interval <= 0 {
		cfg.Interval = 10 * time.Minute
	}
	if cfg.RetryMax < 0 {
		cfg.RetryMax = 0
	}
	if cfg.RetryWait <= 0 {
		cfg.RetryWait = time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.With(zap.String("provider", "weather"))

	client := retryablehttp.NewClient()
	client.RetryMax = cfg.RetryMax
	client.RetryWaitMin = cfg.RetryWait
	client.RetryWaitMax = 10 * cfg.RetryWait
	client.HTTPClient.Timeout = 10 * time.Second
	client.Logger = leveledLogger{logger.Sugar()}

	return &Poller{
		cfg:    cfg,
		client: client,
		breaker: resilience.New("weather", resilience.Settings{
			Failures: 3,
			Cooldown: cfg.Interval,
			OnStateChange: func(name string, from, to resilience.State) {
				logger.Warn("Circuit breaker state changed",
					zap.String("breaker", name),
					zap.String("from", from.String()),
					zap.String("to", to.String()))
			},
		}),
		logger: logger,
	}
}

// Configured reports whether the poller has an API key
func (p *Poller) Configured() bool {
	return p.cfg.APIKey != ""
}

// Latest returns the cached report
func (p *Poller) Latest() (Report, error) {
	if !p.Configured() {
		return Report{}, ErrNotConfigured
	}

	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.latest == nil {
		return Report{}, ErrNoData
	}
	return *p.latest, nil
}

// Fetch queries the API once and caches the result
func (p *Poller) Fetch(ctx context.Context) (Report, error) {
	if !p.Configured() {
		return Report{}, ErrNotConfigured
	}

	var report Report
	err := p.breaker.Do(ctx, func(ctx context.Context) error {
		var err error
		report, err = p.fetch(ctx)
		return err
	})
	if err != nil {
		return Report{}, err
	}

	p.mu.Lock()
	p.latest = &report
	p.mu.Unlock()
	return report, nil
}

func (p *Poller) fetch(ctx context.Context) (Report, error) {
	q := url.Values{}
	q.Set("q", p.cfg.City)
	q.Set("appid", p.cfg.APIKey)
	q.Set("units", "metric")

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, p.cfg.Endpoint+"?"+q.Encode(), nil)
	if err != nil {
		return Report{}, fmt.Errorf("failed to build request: %w", err)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return Report{}, fmt.Errorf("weather request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return Report{}, fmt.Errorf("failed to read weather response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return Report{}, fmt.Errorf("weather API returned status %d", resp.StatusCode)
	}

	var raw apiResponse
	if err := sonic.Unmarshal(body, &raw); err != nil {
		return Report{}, fmt.Errorf("failed to decode weather response: %w", err)
	}

	report := Report{
		City:       raw.Name,
		TempC:      raw.Main.Temp,
		FeelsLikeC: raw.Main.FeelsLike,
		Humidity:   raw.Main.Humidity,
		WindSpeed:  raw.Wind.Speed,
		FetchedAt:  time.Now(),
	}
	if report.City == "" {
		report.City = p.cfg.City
	}
	if len(raw.Weather) > 0 {
		report.Description = raw.Weather[0].Description
		report.Icon = raw.Weather[0].Icon
	}
	return report, nil
}

// Serve polls until ctx is done. An unconfigured poller just waits.
func (p *Poller) Serve(ctx context.Context) error {
	if !p.Configured() {
		p.logger.Info("Weather polling disabled, no API key")
		<-ctx.Done()
		return ctx.Err()
	}

	ticker := time.NewTicker(p.cfg.Interval)
	defer ticker.Stop()

	for {
		if _, err := p.Fetch(ctx); err != nil && ctx.Err() == nil {
			p.logger.Warn("Weather fetch failed", zap.Error(err))
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

func (p *Poller) String() string {
	return "weather-poller"
}

// leveledLogger adapts zap to retryablehttp's logger interface
type leveledLogger struct {
	s *zap.SugaredLogger
}

func (l leveledLogger) Error(msg string, kv ...interface{}) { l.s.Errorw(msg, kv...) }
func (l leveledLogger) Warn(msg string, kv ...interface{})  { l.s.Warnw(msg, kv...) }
func (l leveledLogger) Info(msg string, kv ...interface{})  { l.s.Debugw(msg, kv...) }
func (l leveledLogger) Debug(msg string, kv ...interface{}) { l.s.Debugw(msg, kv...) }
