package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/jakechorley/ward-rota/pkg/core/model"
	"github.com/jakechorley/ward-rota/pkg/core/rotation"
)

const (
	DefaultPeriodLengthWeeks = 2
	DefaultHorizonWeeks      = 24

	configFileName = "ward_rota_config.yaml"
	dateLayout     = "2006-01-02"
)

// GroupConfig defines one rotation stop of a team
type GroupConfig struct {
	Label   string   `yaml:"label" validate:"required"`
	Wards   []string `yaml:"wards" validate:"required,min=1,dive,required"`
	Special bool     `yaml:"special,omitempty"`
}

// NurseConfig defines one rostered nurse
type NurseConfig struct {
	Name        string   `yaml:"name" validate:"required"`
	History     []string `yaml:"history,omitempty" validate:"dive,required"`
	StartOffset *int     `yaml:"startOffset,omitempty" validate:"omitempty,min=0"`
}

// TeamConfig defines a team, its rotation structure and its roster
type TeamConfig struct {
	Name   string        `yaml:"name" validate:"required"`
	Groups []GroupConfig `yaml:"groups" validate:"required,min=1,dive"`
	Nurses []NurseConfig `yaml:"nurses" validate:"dive"`
}

// DatabaseConfig selects the persistence backend
type DatabaseConfig struct {
	Driver string `yaml:"driver" validate:"required,oneof=postgres sqlite"`
	DSN    string `yaml:"dsn" validate:"required"`
}

// SheetsConfig enables importing skill records from Google Sheets
type SheetsConfig struct {
	OAuthClientFile string `yaml:"oauthClientFile,omitempty"`
}

// Config represents the application configuration
type Config struct {
	PeriodLengthWeeks int            `yaml:"periodLengthWeeks" validate:"min=1"`
	HorizonWeeks      int            `yaml:"horizonWeeks" validate:"min=1"`
	WardPolicy        string         `yaml:"wardPolicy,omitempty" validate:"omitempty,oneof=first-ward round-robin circuit"`
	StartDate         string         `yaml:"startDate,omitempty" validate:"omitempty,datetime=2006-01-02"`
	Database          DatabaseConfig `yaml:"database"`
	Sheets            SheetsConfig   `yaml:"sheets,omitempty"`
	Teams             []TeamConfig   `yaml:"teams" validate:"required,min=1,dive"`
}

var validate *validator.Validate

func init() {
	validate = validator.New()
}

// LoadWithEnv loads the configuration for an environment.
// For example, env="test" looks for "ward_rota_config.test.yaml" before
// falling back to "ward_rota_config.yaml".
func LoadWithEnv(env string) (*Config, error) {
	configPath, err := findConfigFile(env)
	if err != nil {
		return nil, fmt.Errorf("failed to find config file: %w", err)
	}

	return LoadFromPath(configPath)
}

// LoadFromPath loads and validates the configuration from a specific path
func LoadFromPath(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := Config{
		PeriodLengthWeeks: DefaultPeriodLengthWeeks,
		HorizonWeeks:      DefaultHorizonWeeks,
		WardPolicy:        rotation.PolicyFirstWard,
		Database: DatabaseConfig{
			Driver: "sqlite",
			DSN:    "ward_rota.db",
		},
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate validates the configuration struct and the cross-field rules
// the struct tags cannot express
func Validate(cfg *Config) error {
	if err := validate.Struct(cfg); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}

	// Nurse names identify nurses across the whole roster
	seenNurses := make(map[string]string)
	seenTeams := make(map[string]bool)
	for _, team := range cfg.Teams {
		if seenTeams[team.Name] {
			return fmt.Errorf("duplicate team name %q", team.Name)
		}
		seenTeams[team.Name] = true

		for _, nurse := range team.Nurses {
			if other, ok := seenNurses[nurse.Name]; ok {
				return fmt.Errorf("nurse %q appears in team %q and team %q", nurse.Name, other, team.Name)
			}
			seenNurses[nurse.Name] = team.Name
		}
	}

	return nil
}

// ParsedStartDate returns the configured start date, or false if none is set
func (c *Config) ParsedStartDate() (time.Time, bool) {
	if c.StartDate == "" {
		return time.Time{}, false
	}
	start, err := time.Parse(dateLayout, c.StartDate)
	if err != nil {
		return time.Time{}, false
	}
	return start, true
}

// GroupSpecs converts the team's groups into rotation group specs
func (t TeamConfig) GroupSpecs() []rotation.GroupSpec {
	specs := make([]rotation.GroupSpec, len(t.Groups))
	for i, g := range t.Groups {
		wards := make([]model.Ward, len(g.Wards))
		for j, w := range g.Wards {
			wards[j] = model.Ward(w)
		}
		specs[i] = rotation.GroupSpec{Label: g.Label, Wards: wards, Special: g.Special}
	}
	return specs
}

// Team converts the team's roster into the domain model
func (t TeamConfig) Team() model.Team {
	team := model.Team{Name: t.Name, Nurses: make([]model.Nurse, len(t.Nurses))}
	for i, n := range t.Nurses {
		history := make(model.WardSet, len(n.History))
		for _, w := range n.History {
			history.Add(model.Ward(w))
		}
		var startOffset *int
		if n.StartOffset != nil {
			v := *n.StartOffset
			startOffset = &v
		}
		team.Nurses[i] = model.Nurse{Name: n.Name, BaseHistory: history, StartOffset: startOffset}
	}
	return team
}

// TeamModels converts every configured team into the domain model, in file order
func (c *Config) TeamModels() []model.Team {
	teams := make([]model.Team, len(c.Teams))
	for i, t := range c.Teams {
		teams[i] = t.Team()
	}
	return teams
}

// findConfigFile searches for the config file in the current directory and
// then the home directory. An env-specific file takes precedence.
func findConfigFile(env string) (string, error) {
	candidates := []string{configFileName}
	if env != "" {
		candidates = []string{"ward_rota_config." + env + ".yaml", configFileName}
	}

	homeDir, homeErr := os.UserHomeDir()

	for _, name := range candidates {
		if _, err := os.Stat(name); err == nil {
			return name, nil
		}

		if homeErr != nil {
			continue
		}
		homeConfigPath := filepath.Join(homeDir, name)
		if _, err := os.Stat(homeConfigPath); err == nil {
			return homeConfigPath, nil
		}
	}

	if homeErr != nil {
		return "", fmt.Errorf("failed to get home directory: %w", homeErr)
	}

	return "", fmt.Errorf("config file not found in current directory or home directory")
}
