package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"

	"painburden/internal/simulation"
)

// DefaultSeed is used when neither a flag nor SEED provides one.
const DefaultSeed uint64 = 20240101

// AppConfig holds the complete application configuration.
type AppConfig struct {
	Simulation          simulation.Config
	ScenarioFile        string
	DataPath            string
	LogDir              string
	Seed                uint64
	Workers             int
	EnableMermaidCharts bool
	HTTPAddr            string
}

// Load loads the configuration from .env files, an optional YAML scenario
// and environment variables, in that order of increasing priority.
// scenarioPath overrides SCENARIO_FILE when non-empty.
func Load(scenarioPath string) (*AppConfig, error) {
	// 1. Try to load from the executable's directory (highest priority for MCP servers)
	exePath, err := os.Executable()
	exeDir := ""
	if err == nil {
		exeDir = filepath.Dir(exePath)
		envPath := filepath.Join(exeDir, ".env")
		if err := godotenv.Load(envPath); err == nil {
			log.Debug().Str("path", envPath).Msg("Loaded configuration from binary directory")
		}
	}

	// 2. Fallback to current working directory (useful for development/go run)
	if err := godotenv.Load(); err != nil {
		log.Debug().Msg("No .env file found in working directory, relying on environment variables or binary-relative .env")
	}

	// 3. Resolve Data Paths
	dataPath := os.Getenv("DATA_PATH")
	if dataPath == "" {
		if exeDir != "" {
			dataPath = exeDir
		} else {
			dataPath = "."
		}
	}
	logDir := getEnv("LOGS_FOLDER", filepath.Join(dataPath, "logs"))

	if scenarioPath == "" {
		scenarioPath = os.Getenv("SCENARIO_FILE")
	}

	// 4. Scenario file, then environment overrides
	sim := simulation.DefaultConfig()
	if scenarioPath != "" {
		if err := loadScenario(scenarioPath, &sim); err != nil {
			return nil, err
		}
		log.Debug().Str("path", scenarioPath).Msg("Loaded scenario file")
	}
	if err := applyEnv(&sim); err != nil {
		return nil, err
	}
	if err := sim.Validate(); err != nil {
		return nil, err
	}

	seed, err := getEnvUint("SEED", DefaultSeed)
	if err != nil {
		return nil, err
	}
	workers, err := getEnvInt("WORKERS", runtime.NumCPU())
	if err != nil {
		return nil, err
	}

	cfg := &AppConfig{
		Simulation:          sim,
		ScenarioFile:        scenarioPath,
		DataPath:            dataPath,
		LogDir:              logDir,
		Seed:                seed,
		Workers:             workers,
		EnableMermaidCharts: getEnvBool("ENABLE_MERMAID_CHARTS", false),
		HTTPAddr:            getEnv("HTTP_ADDR", ""),
	}

	return cfg, nil
}

// loadScenario overlays a YAML scenario onto cfg. Keys absent from the file
// keep their current values.
func loadScenario(path string, cfg *simulation.Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read scenario %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse scenario %s: %w", path, err)
	}
	return nil
}

func applyEnv(cfg *simulation.Config) error {
	floatVars := []struct {
		key string
		set func(float64)
	}{
		{"PREVALENCE_PER_100K", func(v float64) { cfg.AnnualPrevalencePer100k = v }},
		{"PROP_CHRONIC", func(v float64) { *cfg = cfg.WithChronicShare(v) }},
		{"PROP_TREATED", func(v float64) { *cfg = cfg.WithTreatedShare(v) }},
		{"PERCENT_TO_SIMULATE", func(v float64) { cfg.PercentToSimulate = v }},
		{"TRANSFORMATION_MAX_VALUE", func(v float64) { cfg.Transformation.MaxValue = v }},
		{"TRANSFORMATION_POWER", func(v float64) { cfg.Transformation.Power = v }},
		{"TRANSFORMATION_BASE", func(v float64) { cfg.Transformation.Base = v }},
		{"TRANSFORMATION_SCALING_FACTOR", func(v float64) { cfg.Transformation.ScalingFactor = v }},
	}
	for _, fv := range floatVars {
		raw, ok := os.LookupEnv(fv.key)
		if !ok || raw == "" {
			continue
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return fmt.Errorf("%s: %w", fv.key, err)
		}
		fv.set(v)
	}

	if raw, ok := os.LookupEnv("WORLD_ADULT_POPULATION"); ok && raw != "" {
		v, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return fmt.Errorf("WORLD_ADULT_POPULATION: %w", err)
		}
		cfg.WorldAdultPopulation = v
	}
	if raw, ok := os.LookupEnv("TAYLOR_ORDER"); ok && raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil {
			return fmt.Errorf("TAYLOR_ORDER: %w", err)
		}
		cfg.Transformation.TaylorOrder = v
	}
	if method := os.Getenv("TRANSFORMATION_METHOD"); method != "" {
		cfg.Transformation.Method = method
	}
	return nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if value, ok := os.LookupEnv(key); ok {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return fallback
}

func getEnvInt(key string, fallback int) (int, error) {
	value, ok := os.LookupEnv(key)
	if !ok || value == "" {
		return fallback, nil
	}
	v, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return v, nil
}

func getEnvUint(key string, fallback uint64) (uint64, error) {
	value, ok := os.LookupEnv(key)
	if !ok || value == "" {
		return fallback, nil
	}
	v, err := strconv.ParseUint(value, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return v, nil
}
