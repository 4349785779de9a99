package config

import (
	"math"

	"github.com/jessevdk/go-flags"
	"github.com/ledgersim/ledgersim/domain/consensus/utils/constants"
	"github.com/ledgersim/ledgersim/domain/consensusconfig"
	"github.com/ledgersim/ledgersim/infrastructure/logger"
	"github.com/pkg/errors"
	"github.com/tyler-smith/go-bip39"
)

const (
	defaultLogLevel    = "info"
	defaultTokenName   = "DPoS Coin"
	defaultTokenSymbol = "DPOS"
	defaultTokenSupply = 10000
)

// Flags defines the configuration options for ledgersim.
//
// Numeric consensus options left at zero keep the value of the selected
// parameter set.
type Flags struct {
	ShowVersion      bool    `short:"V" long:"version" description:"Display version information and exit"`
	LogDir           string  `long:"logdir" description:"Directory to write log files to. Logs go to stderr only when empty"`
	DebugLevel       string  `short:"d" long:"debuglevel" description:"Logging level for all subsystems {trace, debug, info, warn, error, critical} -- You may also specify <subsystem>=<level>,<subsystem2>=<level>,... to set the log level for individual subsystems -- Use show to list available subsystems"`
	Difficulty       int     `long:"difficulty" description:"Number of leading zero hex characters a proof-of-work block hash needs"`
	MinTx            float64 `long:"mintx" description:"Minimum input value of a transaction, in coins"`
	PowWorkers       int     `long:"powworkers" description:"Number of goroutines solving proof-of-work"`
	MaxNonce         uint64  `long:"maxnonce" description:"Upper bound of the proof-of-work nonce search"`
	Delegates        int     `long:"delegates" description:"Number of top voted delegates elected to produce blocks"`
	StrictDifficulty bool    `long:"strictdifficulty" description:"Require stake produced blocks to meet the proof-of-work difficulty as well"`
	Supply           uint64  `long:"supply" description:"Coins minted by the genesis block"`
	TokenName        string  `long:"tokenname" description:"Name of the deployed token"`
	TokenSymbol      string  `long:"tokensymbol" description:"Symbol of the deployed token"`
	TokenSupply      uint64  `long:"tokensupply" description:"Total supply of the deployed token"`
	Mnemonic         string  `long:"mnemonic" description:"BIP-39 mnemonic the scenario wallets are derived from. Fresh keys are generated when empty"`
	NoColor          bool    `long:"nocolor" description:"Disable colored output"`
	Profile          string  `long:"profile" description:"Enable HTTP profiling on given port -- NOTE port must be between 1024 and 65536"`
	NetworkFlags
}

// Config is the parsed configuration of ledgersim
type Config struct {
	*Flags
	Params *consensusconfig.Params
}

func newConfigParser(cfgFlags *Flags, options flags.Options) *flags.Parser {
	parser := flags.NewParser(cfgFlags, options)
	return parser
}

// LoadConfig parses args on top of the default configuration, validates the
// result and derives the consensus params.
func LoadConfig(args []string) (*Config, []string, error) {
	cfgFlags := &Flags{
		DebugLevel:  defaultLogLevel,
		TokenName:   defaultTokenName,
		TokenSymbol: defaultTokenSymbol,
		TokenSupply: defaultTokenSupply,
	}

	parser := newConfigParser(cfgFlags, flags.HelpFlag)
	remainingArgs, err := parser.ParseArgs(args)
	if err != nil {
		return nil, nil, err
	}

	cfg := &Config{Flags: cfgFlags}
	if cfg.ShowVersion {
		return cfg, remainingArgs, nil
	}

	if cfg.DebugLevel == "show" {
		return cfg, remainingArgs, nil
	}
	err = logger.ParseAndSetLogLevels(cfg.DebugLevel)
	if err != nil {
		return nil, nil, err
	}

	err = cfg.ResolveNetwork()
	if err != nil {
		return nil, nil, err
	}
	cfg.Params, err = cfg.deriveParams()
	if err != nil {
		return nil, nil, err
	}

	if cfg.Mnemonic != "" && !bip39.IsMnemonicValid(cfg.Mnemonic) {
		return nil, nil, errors.New("the specified mnemonic is not a valid BIP-39 mnemonic")
	}
	if cfg.TokenName == "" || cfg.TokenSymbol == "" {
		return nil, nil, errors.New("the token needs both a name and a symbol")
	}

	return cfg, remainingArgs, nil
}

func (cfg *Config) deriveParams() (*consensusconfig.Params, error) {
	params := cfg.NetParams()

	if cfg.Difficulty != 0 {
		params.Difficulty = cfg.Difficulty
	}
	if cfg.MinTx < 0 {
		return nil, errors.Errorf("the minimum transaction value cannot be negative, got %f", cfg.MinTx)
	}
	if cfg.MinTx != 0 {
		params.MinimumTransactionValue = uint64(math.Round(cfg.MinTx * constants.AtomsPerCoin))
	}
	if cfg.PowWorkers != 0 {
		params.PowWorkers = cfg.PowWorkers
	}
	if cfg.MaxNonce != 0 {
		params.MaxNonce = cfg.MaxNonce
	}
	if cfg.Delegates != 0 {
		params.DelegateCount = cfg.Delegates
	}
	if cfg.StrictDifficulty {
		params.EnforceDifficultyOnAllBlocks = true
	}
	if cfg.Supply != 0 {
		if cfg.Supply > constants.MaxAtoms/constants.AtomsPerCoin {
			return nil, errors.Errorf("a supply of %d coins exceeds the maximum of %d",
				cfg.Supply, constants.MaxAtoms/constants.AtomsPerCoin)
		}
		params.InitialSupply = cfg.Supply * constants.AtomsPerCoin
	}

	err := params.Validate()
	if err != nil {
		return nil, err
	}
	return params, nil
}
