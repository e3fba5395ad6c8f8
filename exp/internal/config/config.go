package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/rs/zerolog"
	"github.com/yyyoichi/fuzzyc"
)

var ErrInvalidConfig = errors.New("invalid config")

type (
	Config struct {
		Log     Log     `toml:"log"`
		Input   Input   `toml:"input"`
		Cluster Cluster `toml:"cluster"`
		Sweep   Sweep   `toml:"sweep"`
		Output  Output  `toml:"output"`
		Metrics Metrics `toml:"metrics"`
	}

	Log struct {
		Level string `toml:"level"`
	}

	// Input locates the weblog and how much of it is clustered.
	Input struct {
		Source   string `toml:"source"` // file path or http(s) URL
		CacheDir string `toml:"cache_dir"`
		Timeout  string `toml:"timeout"`
		Sample   int    `toml:"sample"` // 0 keeps every row
		Seed     int64  `toml:"seed"`
	}

	Cluster struct {
		Fuzziness     float64 `toml:"fuzziness"`
		Tolerance     float64 `toml:"tolerance"`
		MaxIterations int     `toml:"max_iterations"`
		Metric        string  `toml:"metric"`
		Aggregation   string  `toml:"aggregation"`
		Seed          *int64  `toml:"seed"`
		// Scale rescales every feature to [0, 1] before clustering.
		Scale bool `toml:"scale"`
	}

	Sweep struct {
		K        []int `toml:"k"`
		Workers  int   `toml:"workers"`
		Baseline bool  `toml:"baseline"` // also run hard k-means for every K
	}

	Output struct {
		DB     string `toml:"db"`
		Charts string `toml:"charts"`
	}

	Metrics struct {
		Addr string `toml:"addr"`
	}
)

func Default() Config {
	return Config{
		Log: Log{Level: "info"},
		Input: Input{
			CacheDir: "/tmp/fuzzyc_http_cache/",
			Timeout:  "30s",
			Seed:     1234,
		},
		Cluster: Cluster{
			Fuzziness:     2,
			Tolerance:     1e-6,
			MaxIterations: 100,
			Metric:        "sqeuclidean",
			Aggregation:   "mean",
		},
		Sweep: Sweep{
			K:        []int{2, 3, 4, 5, 6, 7, 8},
			Baseline: true,
		},
		Output: Output{
			DB:     "/tmp/fuzzyc/sweeps.db",
			Charts: "/tmp/fuzzyc/charts",
		},
		Metrics: Metrics{Addr: ":2112"},
	}
}

// Load decodes the TOML file at path over the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return cfg, fmt.Errorf("failed to decode config: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return cfg, fmt.Errorf("%w: unknown keys %v", ErrInvalidConfig, undecoded)
	}
	return cfg, cfg.Validate()
}

// Parse decodes TOML text over the defaults.
func Parse(data string) (Config, error) {
	cfg := Default()
	if _, err := toml.Decode(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to decode config: %w", err)
	}
	return cfg, cfg.Validate()
}

func (c Config) Validate() error {
	if c.Input.Source == "" {
		return fmt.Errorf("%w: input.source is required", ErrInvalidConfig)
	}
	if _, err := c.Timeout(); err != nil {
		return err
	}
	if _, err := c.LogLevel(); err != nil {
		return err
	}
	if len(c.Sweep.K) == 0 {
		return fmt.Errorf("%w: sweep.k is empty", ErrInvalidConfig)
	}
	if _, err := c.Options(); err != nil {
		return err
	}
	return nil
}

func (c Config) Timeout() (time.Duration, error) {
	d, err := time.ParseDuration(c.Input.Timeout)
	if err != nil {
		return 0, fmt.Errorf("%w: input.timeout: %w", ErrInvalidConfig, err)
	}
	return d, nil
}

func (c Config) LogLevel() (zerolog.Level, error) {
	lvl, err := zerolog.ParseLevel(c.Log.Level)
	if err != nil {
		return zerolog.NoLevel, fmt.Errorf("%w: log.level: %w", ErrInvalidConfig, err)
	}
	return lvl, nil
}

// Options translates the cluster and sweep sections into clustering options.
func (c Config) Options() ([]fuzzyc.Option, error) {
	metric, err := fuzzyc.ParseMetric(c.Cluster.Metric)
	if err != nil {
		return nil, err
	}
	agg, err := fuzzyc.ParseAggregation(c.Cluster.Aggregation)
	if err != nil {
		return nil, err
	}
	opts := []fuzzyc.Option{
		fuzzyc.WithFuzziness(c.Cluster.Fuzziness),
		fuzzyc.WithTolerance(c.Cluster.Tolerance),
		fuzzyc.WithMaxIterations(c.Cluster.MaxIterations),
		fuzzyc.WithMetric(metric),
		fuzzyc.WithAggregation(agg),
	}
	if c.Cluster.Seed != nil {
		opts = append(opts, fuzzyc.WithSeed(*c.Cluster.Seed))
	}
	if c.Sweep.Workers > 0 {
		opts = append(opts, fuzzyc.WithWorkers(c.Sweep.Workers))
	}
	if _, err := fuzzyc.New(opts...); err != nil {
		return nil, err
	}
	return opts, nil
}
