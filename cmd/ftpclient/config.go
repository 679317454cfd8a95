package main

import (
	"fmt"
	"io"
	"strings"
	"time"

	ftp "github.com/gonzalop/ftpsession"
	"github.com/sirupsen/logrus"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// envPrefix is prepended to every flag name to form its environment
// variable, e.g. FTPCLIENT_HOST or FTPCLIENT_CHUNK_SIZE.
const envPrefix = "FTPCLIENT"

type config struct {
	Host      string
	Port      int
	User      string
	Password  string
	Timeout   time.Duration
	ChunkSize int
	Limit     int64
	Verbose   bool
}

func registerFlags(flags *pflag.FlagSet) {
	flags.String("host", "", "FTP server host name or address")
	flags.IntP("port", "P", ftp.DefaultPort, "FTP control port")
	flags.StringP("user", "u", "anonymous", "user name")
	flags.StringP("password", "p", "", "password")
	flags.Duration("timeout", ftp.DefaultTimeout, "timeout for each dial, read and write (0 disables)")
	flags.Int("chunk-size", ftp.DefaultChunkSize, "transfer buffer size in bytes")
	flags.Int64("limit", 0, "bandwidth limit in bytes per second (0 = unlimited)")
	flags.BoolP("verbose", "v", false, "log the control channel to stderr")
}

func newViper(flags *pflag.FlagSet) (*viper.Viper, error) {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	if err := v.BindPFlags(flags); err != nil {
		return nil, fmt.Errorf("binding flags: %w", err)
	}
	return v, nil
}

func loadConfig(v *viper.Viper) (config, error) {
	cfg := config{
		Host:      strings.TrimSpace(v.GetString("host")),
		Port:      v.GetInt("port"),
		User:      v.GetString("user"),
		Password:  v.GetString("password"),
		Timeout:   v.GetDuration("timeout"),
		ChunkSize: v.GetInt("chunk-size"),
		Limit:     v.GetInt64("limit"),
		Verbose:   v.GetBool("verbose"),
	}
	if cfg.Host == "" {
		return cfg, fmt.Errorf("no host given: use --host or %s_HOST", envPrefix)
	}
	return cfg, nil
}

func (c config) logger(w io.Writer) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(w)
	logger.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	if c.Verbose {
		logger.SetLevel(logrus.DebugLevel)
	} else {
		logger.SetLevel(logrus.WarnLevel)
	}
	return logger
}

func (c config) options(logs io.Writer) []ftp.Option {
	return []ftp.Option{
		ftp.WithTimeout(c.Timeout),
		ftp.WithChunkSize(c.ChunkSize),
		ftp.WithBandwidthLimit(c.Limit),
		ftp.WithLogger(c.logger(logs)),
	}
}
