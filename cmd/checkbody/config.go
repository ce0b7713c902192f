package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/jessevdk/go-flags"
	"github.com/pkg/errors"
	"github.com/tari-project/tari-sub014/infrastructure/config"
	"github.com/tari-project/tari-sub014/infrastructure/logger"
	"github.com/tari-project/tari-sub014/version"
)

const (
	defaultLogFilename    = "checkbody.log"
	defaultErrLogFilename = "checkbody_err.log"
)

type configFlags struct {
	ShowVersion bool   `short:"V" long:"version" description:"Display version information and exit"`
	BodyFile    string `short:"b" long:"body" description:"Path of the file holding the serialized aggregate body" required:"true"`
	Height      uint64 `long:"height" description:"Height to validate the body at" required:"true"`
	DataDir     string `long:"datadir" default:"checkbody-data" description:"Directory to keep the chain store database and logs in"`
	TxOffset    string `long:"offset" description:"Transaction offset of the body as a 64 character hex scalar (default all zero)"`
	Reward      uint64 `long:"reward" description:"Total coinbase reward claimable by the body, in µT"`
	Apply       bool   `long:"apply" description:"Apply the body to the chain store once it passes validation"`
	LogLevel    string `short:"d" long:"loglevel" default:"info" description:"Logging level for all subsystems {trace, debug, info, warn, error, critical} -- You may also specify <subsystem>=<level>,<subsystem2>=<level>,... to set the log level for individual subsystems -- Use show to list available subsystems"`
	Profile     string `long:"profile" description:"Enable HTTP profiling on given port -- NOTE port must be between 1024 and 65536"`
	config.NetworkFlags
}

func parseConfig() (*configFlags, error) {
	cfg := &configFlags{}
	parser := flags.NewParser(cfg, flags.PrintErrors|flags.HelpFlag)
	_, err := parser.Parse()

	// Show the version and exit if the version flag was specified.
	if cfg.ShowVersion {
		appName := filepath.Base(os.Args[0])
		appName = strings.TrimSuffix(appName, filepath.Ext(appName))
		fmt.Println(appName, "version", version.Version())
		os.Exit(0)
	}

	if err != nil {
		return nil, err
	}

	err = cfg.ResolveNetwork(parser)
	if err != nil {
		return nil, err
	}

	if cfg.Profile != "" {
		profilePort, err := strconv.Atoi(cfg.Profile)
		if err != nil || profilePort < 1024 || profilePort > 65535 {
			return nil, errors.New("The profile port must be between 1024 and 65535")
		}
	}

	// State of different networks must not mix, so the store and the logs
	// live in a per-network subdirectory.
	cfg.DataDir = filepath.Join(cfg.DataDir, cfg.NetParams().Name)

	// Special show command to list supported subsystems and exit.
	if cfg.LogLevel == "show" {
		fmt.Println("Supported subsystems", logger.SupportedSubsystems())
		os.Exit(0)
	}

	logger.InitLog(filepath.Join(cfg.DataDir, defaultLogFilename),
		filepath.Join(cfg.DataDir, defaultErrLogFilename))
	err = logger.ParseAndSetDebugLevels(cfg.LogLevel)
	if err != nil {
		return nil, err
	}

	return cfg, nil
}
