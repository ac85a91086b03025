// Package config provides YAML-based configuration loading for the game
// and the training driver. Configuration is read once at startup into
// typed structs; dotted-path key access exists only at the load boundary
// to produce precise missing-key errors.
package config

import "fmt"

// Config is the root configuration for the game and the AI driver.
type Config struct {
	Game  GameConfig  `yaml:"game"`
	Bird  BirdConfig  `yaml:"bird"`
	Pipe  PipeConfig  `yaml:"pipe"`
	Speed SpeedConfig `yaml:"speed"`
	AI    AIConfig    `yaml:"ai"`
}

// GameConfig defines window and pacing parameters.
type GameConfig struct {
	Name         string `yaml:"name"`
	WindowWidth  int    `yaml:"window_width"`
	WindowHeight int    `yaml:"window_height"`
	FPS          int    `yaml:"fps"`
}

// BirdConfig defines bird physics parameters.
type BirdConfig struct {
	MaxVelocity          float64 `yaml:"max_velocity"`
	DropRate             float64 `yaml:"drop_rate"`
	JumpHeight           int     `yaml:"jump_height"`
	JumpVelocityNegation float64 `yaml:"jump_velocity_negation"`
	AnimationSpeed       int     `yaml:"animation_speed"`
}

// PipeConfig defines obstacle spawn parameters.
type PipeConfig struct {
	SpawnFrequency  int `yaml:"spawn_frequency"`
	Gap             int `yaml:"pipe_gap"`
	GapOffset       int `yaml:"pipe_gap_offset"`
	OffScreenOffset int `yaml:"off_screen_offset"`
	Width           int `yaml:"width"`
}

// SpeedConfig defines the speed controller parameters.
type SpeedConfig struct {
	GameSpeed    float64 `yaml:"game_speed"`
	MaxGameSpeed float64 `yaml:"max_game_speed"`
}

// AIConfig defines evolution driver parameters.
type AIConfig struct {
	Reward               float64            `yaml:"reward"`
	Penalty              float64            `yaml:"penalty"`
	AliveReward          float64            `yaml:"alive_reward"`
	PopulationSize       int                `yaml:"population_size"`
	MaxGenerations       int                `yaml:"max_generations"`
	Activation           string             `yaml:"activation"`
	ActivationThresholds map[string]float64 `yaml:"activation_thresholds"`
	CheckpointDir        string             `yaml:"checkpoint_dir"`
	CheckpointPrefix     string             `yaml:"checkpoint_prefix"`
	BestModelFile        string             `yaml:"best_model_file"`
}

// ActivationThreshold returns the fly-decision threshold for the configured
// activation function. A missing entry is a configuration error: the driver
// cannot interpret network outputs without it.
func (c AIConfig) ActivationThreshold() (float64, error) {
	th, ok := c.ActivationThresholds[c.Activation]
	if !ok {
		return 0, &MissingConfigurationError{Key: "ai.activation_thresholds." + c.Activation}
	}
	return th, nil
}

// MissingConfigurationError reports a required configuration key that is
// absent from every configuration source.
type MissingConfigurationError struct {
	Key string
}

func (e *MissingConfigurationError) Error() string {
	return fmt.Sprintf("config: missing required key %q", e.Key)
}
