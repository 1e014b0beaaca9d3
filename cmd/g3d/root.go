package main

import (
	"os"
	"strings"

	"github.com/chazu/g3d/pkg/chunk"
	"github.com/chazu/g3d/pkg/g3d"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	flag "github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// envPrefix is prepended to the environment variable of every flag:
// --log.level is read from G3D_LOG_LEVEL.
const envPrefix = "G3D"

// subCommand pairs a cobra command with the viper instance bound to its
// flags.
type subCommand struct {
	Cmd  *cobra.Command
	Conf *viper.Viper
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "g3d",
		Short: "g3d: geometry interchange tool",
		Long: `
g3d reads and writes G3D containers: ordered attribute buffers described by
g3d:<type>:<association>:<channel>:<data type>:<arity> descriptors. It can
print and validate a file, convert it to a compact triangle mesh, and build
one from a scene script.`,
		SilenceUsage: true,
	}
	root.PersistentFlags().String("config", "",
		"Configuration file. Takes precedence over default values, but is "+
			"overridden by values set with environment variables and flags.")
	root.PersistentFlags().String("log.level", "info", "Log level: debug, info, warn or error.")
	root.PersistentFlags().Bool("log.json", false, "Write logs as JSON.")

	subcommands := []*subCommand{
		newInfoCmd(), newValidateCmd(), newConvertCmd(), newBuildCmd(),
	}
	for _, sc := range subcommands {
		root.AddCommand(sc.Cmd)
		sc.Conf = viper.New()
		bindFlags(sc.Conf, sc.Cmd.Flags(), root.PersistentFlags())
	}

	root.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		cfg, err := root.PersistentFlags().GetString("config")
		if err != nil || cfg == "" {
			return err
		}
		for _, sc := range subcommands {
			sc.Conf.SetConfigFile(cfg)
			if err := sc.Conf.ReadInConfig(); err != nil {
				return errors.Wrapf(err, "reading config %s", cfg)
			}
		}
		return nil
	}
	return root
}

// bindFlags makes every flag in sets readable through conf, with the
// environment taking precedence over config files and defaults.
func bindFlags(conf *viper.Viper, sets ...*flag.FlagSet) {
	for _, fs := range sets {
		if err := conf.BindPFlags(fs); err != nil {
			panic(err)
		}
	}
	conf.SetEnvPrefix(envPrefix)
	conf.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	conf.AutomaticEnv()
}

// newLogger builds the logger selected by log.level and log.json. Logs go to
// stderr so they never mix with command output.
func newLogger(conf *viper.Viper) (*zap.Logger, error) {
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(conf.GetString("log.level"))); err != nil {
		return nil, errors.Wrapf(err, "log.level")
	}
	encCfg := zap.NewDevelopmentEncoderConfig()
	enc := zapcore.NewConsoleEncoder(encCfg)
	if conf.GetBool("log.json") {
		enc = zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig())
	}
	core := zapcore.NewCore(enc, zapcore.Lock(os.Stderr), level)
	return zap.New(core), nil
}

// readContainer loads a packed container. The container borrows the file
// contents.
func readContainer(path string) (*g3d.G3D, error) {
	blob, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	g, err := g3d.Unmarshal(chunk.New(), blob)
	if err != nil {
		return nil, errors.Wrapf(err, "reading %s", path)
	}
	return g, nil
}

// writeContainer packs g into path, replacing any existing file.
func writeContainer(path string, g *g3d.G3D, compress bool) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := chunk.New(chunk.WithCompression(compress)).Write(f, g.Buffers()); err != nil {
		f.Close()
		return errors.Wrapf(err, "writing %s", path)
	}
	return f.Close()
}
