package config

import (
	_ "embed"
)

//go:embed defaults/game.yaml
var defaultGameYAML []byte

// DefaultConfig returns the default configuration. It matches the embedded
// defaults/game.yaml and serves as the last-resort fallback.
func DefaultConfig() Config {
	return Config{
		Game: GameConfig{
			Name:         "flappyneat",
			WindowWidth:  100,
			WindowHeight: 30,
			FPS:          60,
		},
		Bird: BirdConfig{
			MaxVelocity:          3.0,
			DropRate:             0.25,
			JumpHeight:           2,
			JumpVelocityNegation: -1.5,
			AnimationSpeed:       5,
		},
		Pipe: PipeConfig{
			SpawnFrequency:  90,
			Gap:             8,
			GapOffset:       2,
			OffScreenOffset: 10,
			Width:           6,
		},
		Speed: SpeedConfig{
			GameSpeed:    1.0,
			MaxGameSpeed: 4.0,
		},
		AI: AIConfig{
			Reward:         15,
			Penalty:        100,
			AliveReward:    0.1,
			PopulationSize: 50,
			MaxGenerations: 100,
			Activation:     "tanh",
			ActivationThresholds: map[string]float64{
				"tanh":    0.5,
				"sigmoid": 0.75,
			},
			CheckpointDir:    "checkpoints",
			CheckpointPrefix: "generation",
			BestModelFile:    "best_genome.json",
		},
	}
}
