package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"gopkg.in/yaml.v3"
)

// requiredKeys are the dotted-path keys that must be present in whichever
// YAML source wins. Everything else is optional and falls back to defaults.
var requiredKeys = []string{
	"game.window_width",
	"game.window_height",
	"game.fps",
	"bird.max_velocity",
	"bird.drop_rate",
	"bird.jump_height",
	"bird.jump_velocity_negation",
	"pipe.spawn_frequency",
	"pipe.pipe_gap",
	"pipe.pipe_gap_offset",
	"pipe.off_screen_offset",
	"speed.game_speed",
	"speed.max_game_speed",
	"ai.reward",
	"ai.penalty",
	"ai.population_size",
	"ai.max_generations",
	"ai.activation",
}

// Load loads the game configuration.
// Search order: customPath -> ~/.flappyneat/game.yaml -> ./configs/game.yaml -> embedded default
//
// The winning source is validated for required keys before being decoded into
// the typed Config; optional keys that are absent are filled from defaults
// and logged at debug level.
func Load(customPath string, logger *log.Logger) (Config, error) {
	data, source, err := readSource(customPath)
	if err != nil {
		return Config{}, err
	}
	logger.Debug("loading configuration", "source", source)

	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return Config{}, fmt.Errorf("failed to parse config %s: %w", source, err)
	}
	for _, key := range requiredKeys {
		if !hasKey(raw, key) {
			return Config{}, &MissingConfigurationError{Key: key}
		}
	}

	cfg := DefaultConfig()
	// yaml merges into a non-nil map, which would let a file's threshold
	// table silently inherit default entries it never declared. A declared
	// table replaces the default wholesale.
	if hasKey(raw, "ai.activation_thresholds") {
		cfg.AI.ActivationThresholds = nil
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to decode config %s: %w", source, err)
	}
	applyOptionalDefaults(&cfg, raw, logger)

	if _, err := cfg.AI.ActivationThreshold(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// readSource returns the raw bytes of the first available config source.
func readSource(customPath string) ([]byte, string, error) {
	if customPath != "" {
		data, err := os.ReadFile(customPath)
		if err != nil {
			return nil, "", fmt.Errorf("failed to read config %s: %w", customPath, err)
		}
		return data, customPath, nil
	}

	if userPath := userConfigPath("game.yaml"); userPath != "" {
		if data, err := os.ReadFile(userPath); err == nil {
			return data, userPath, nil
		}
	}

	if data, err := os.ReadFile("configs/game.yaml"); err == nil {
		return data, "configs/game.yaml", nil
	}

	return defaultGameYAML, "embedded defaults", nil
}

// userConfigPath returns the path to the user config file, or empty if home
// is unavailable.
func userConfigPath(filename string) string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".flappyneat", filename)
}

// applyOptionalDefaults fills absent optional keys from DefaultConfig and
// logs each substitution so a stripped-down config file is still visible.
func applyOptionalDefaults(cfg *Config, raw map[string]any, logger *log.Logger) {
	def := DefaultConfig()

	if !hasKey(raw, "game.name") {
		cfg.Game.Name = def.Game.Name
		logger.Debug("using default", "key", "game.name", "value", def.Game.Name)
	}
	if !hasKey(raw, "bird.animation_speed") {
		cfg.Bird.AnimationSpeed = def.Bird.AnimationSpeed
		logger.Debug("using default", "key", "bird.animation_speed", "value", def.Bird.AnimationSpeed)
	}
	if !hasKey(raw, "pipe.width") {
		cfg.Pipe.Width = def.Pipe.Width
		logger.Debug("using default", "key", "pipe.width", "value", def.Pipe.Width)
	}
	if !hasKey(raw, "ai.alive_reward") {
		cfg.AI.AliveReward = def.AI.AliveReward
		logger.Debug("using default", "key", "ai.alive_reward", "value", def.AI.AliveReward)
	}
	if !hasKey(raw, "ai.activation_thresholds") {
		cfg.AI.ActivationThresholds = def.AI.ActivationThresholds
		logger.Debug("using default", "key", "ai.activation_thresholds")
	}
	if !hasKey(raw, "ai.checkpoint_dir") {
		cfg.AI.CheckpointDir = def.AI.CheckpointDir
		logger.Debug("using default", "key", "ai.checkpoint_dir", "value", def.AI.CheckpointDir)
	}
	if !hasKey(raw, "ai.checkpoint_prefix") {
		cfg.AI.CheckpointPrefix = def.AI.CheckpointPrefix
		logger.Debug("using default", "key", "ai.checkpoint_prefix", "value", def.AI.CheckpointPrefix)
	}
	if !hasKey(raw, "ai.best_model_file") {
		cfg.AI.BestModelFile = def.AI.BestModelFile
		logger.Debug("using default", "key", "ai.best_model_file", "value", def.AI.BestModelFile)
	}
}

// hasKey reports whether a dotted-path key exists in a decoded YAML map.
func hasKey(raw map[string]any, dotted string) bool {
	node := any(raw)
	start := 0
	for i := 0; i <= len(dotted); i++ {
		if i < len(dotted) && dotted[i] != '.' {
			continue
		}
		part := dotted[start:i]
		start = i + 1

		m, ok := node.(map[string]any)
		if !ok {
			return false
		}
		node, ok = m[part]
		if !ok {
			return false
		}
	}
	return true
}
