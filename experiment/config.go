package experiment

import (
	"context"
	"runtime"
	"time"

	"testbed/bandit"

	"github.com/pkg/errors"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Hyper-parameter keys and their testbed defaults.
const (
	ParamPlays     = "plays"
	ParamBandits   = "bandits"
	ParamActions   = "actions"
	ParamPrecision = "precision"
	ParamMu        = "mu"
	ParamSigma     = "sigma"

	DefaultPlays   = 1000
	DefaultBandits = 2000
)

// DefaultEpsilons is the classic sweep: greedy, then two exploration rates.
var DefaultEpsilons = []float64{0, 0.1, 0.01}

// OuterConfig is the envelope of a config document; Def holds the Config itself.
type OuterConfig struct {
	Kind string      `mapstructure:"kind"`
	Def  interface{} `mapstructure:"def"`
}

// Config holds the experiment parameters: testbed dimensions as hyper-parameters, the
// epsilons to sweep, the seed, the worker count, output locations, and an optional deadline.
type Config struct {
	// HyperParams is a key-val pair of param names and their value.
	HyperParams []HyperParameter `yaml:"hyperparams"`
	Epsilons    []float64        `yaml:"epsilons"`
	Seed        uint64           `yaml:"seed"`
	Workers     int              `yaml:"workers"`
	Output      OutputConfig     `yaml:"output"`
	// TrainingDeadline is a duration after which the run is abandoned, e.g. {duration: 10m}.
	TrainingDeadline map[string]string `yaml:"trainingdeadline"`
}

type HyperParameter struct {
	Key string  `yaml:"key"`
	Val float64 `yaml:"val"`
}

// OutputConfig says where fixtures and rendered charts are written.
type OutputConfig struct {
	Fixtures string `yaml:"fixtures"`
	Charts   string `yaml:"charts"`
}

// DefaultConfig returns the classic 10-armed testbed: 2000 bandits, 1000 plays, epsilons 0, 0.1, 0.01.
func DefaultConfig() *Config {
	epsilons := make([]float64, len(DefaultEpsilons))
	copy(epsilons, DefaultEpsilons)
	return &Config{
		Epsilons: epsilons,
		Seed:     uint64(time.Now().UnixNano()),
		Workers:  runtime.NumCPU(),
		Output: OutputConfig{
			Fixtures: "fixtures",
			Charts:   "results",
		},
	}
}

func (cfg *Config) GetHyperParamOrDefault(param string, defaultVal float64) float64 {
	for _, kvp := range cfg.HyperParams {
		if kvp.Key == param {
			return kvp.Val
		}
	}
	return defaultVal
}

// SetHyperParam overrides or adds @param.
func (cfg *Config) SetHyperParam(param string, val float64) {
	for i := range cfg.HyperParams {
		if cfg.HyperParams[i].Key == param {
			cfg.HyperParams[i].Val = val
			return
		}
	}
	cfg.HyperParams = append(cfg.HyperParams, HyperParameter{Key: param, Val: val})
}

// Game resolves the parameters shared by every game of the run.
func (cfg *Config) Game() GameConfig {
	return GameConfig{
		Plays:     int(cfg.GetHyperParamOrDefault(ParamPlays, DefaultPlays)),
		Bandits:   int(cfg.GetHyperParamOrDefault(ParamBandits, DefaultBandits)),
		Actions:   int(cfg.GetHyperParamOrDefault(ParamActions, bandit.DefaultActions)),
		Precision: int(cfg.GetHyperParamOrDefault(ParamPrecision, bandit.DefaultPrecision)),
		Mu:        cfg.GetHyperParamOrDefault(ParamMu, 0),
		Sigma:     cfg.GetHyperParamOrDefault(ParamSigma, 1),
		Seed:      cfg.Seed,
		Workers:   cfg.Workers,
	}
}

// Validate checks the whole run before any game starts.
func (cfg *Config) Validate() error {
	if len(cfg.Epsilons) == 0 {
		return errors.Wrap(bandit.ErrInvalidConfiguration, "no epsilons to play")
	}
	g := cfg.Game()
	if err := g.Validate(); err != nil {
		return err
	}
	for _, epsilon := range cfg.Epsilons {
		if err := g.validateEpsilon(epsilon); err != nil {
			return err
		}
	}
	return nil
}

// WithTrainingDeadline returns a context extended by the training deadline, if one is specified.
func (cfg *Config) WithTrainingDeadline(
	ctx context.Context,
) (context.Context, context.CancelFunc, error) {
	if val, ok := cfg.TrainingDeadline["duration"]; ok {
		duration, err := time.ParseDuration(val)
		if err != nil {
			return nil, nil, errors.Wrapf(err, "training deadline %q", val)
		}
		innerCtx, cancel := context.WithTimeout(ctx, duration)
		return innerCtx, cancel, nil
	}
	defaultCtx, cancel := context.WithCancel(ctx)
	return defaultCtx, cancel, nil
}

// FromYaml reads a config document of the form {kind: ..., def: {...}}. Fields missing from
// def keep the values of DefaultConfig.
func FromYaml(path string) (*Config, error) {
	vp := viper.New()
	vp.SetConfigFile(path)
	vp.SetConfigType("yaml")
	var err error
	if err = vp.ReadInConfig(); err != nil {
		return nil, errors.Wrapf(err, "read config %s", path)
	}

	outerConfig := &OuterConfig{}
	if err = vp.Unmarshal(outerConfig); err != nil {
		return nil, errors.Wrapf(err, "decode config %s", path)
	}

	// viper lowercases every key, hence the all-lowercase yaml tags on Config.
	var spec []byte
	if spec, err = yaml.Marshal(outerConfig.Def); err != nil {
		return nil, errors.Wrapf(err, "config %s", path)
	}

	innerConfig := DefaultConfig()
	if err = yaml.Unmarshal(spec, innerConfig); err != nil {
		return nil, errors.Wrapf(err, "config %s", path)
	}

	return innerConfig, nil
}
