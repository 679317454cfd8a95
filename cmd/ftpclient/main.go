// Command ftpclient lists, downloads and uploads files over passive-mode FTP.
//
//	ftpclient --host ftp.example.com ls /pub
//	ftpclient --host ftp.example.com get /pub/README
//	FTPCLIENT_HOST=ftp.example.com ftpclient put report.csv /incoming/report.csv
package main

import (
	"fmt"
	"os"

	ftp "github.com/gonzalop/ftpsession"
	"github.com/spf13/cobra"
)

func main() {
	root := newRootCmd()
	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "ftpclient: %s\n", describe(err))
		os.Exit(exitCode(err))
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "ftpclient",
		Short:         "Passive-mode FTP client",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	registerFlags(root.PersistentFlags())

	root.AddCommand(
		&cobra.Command{
			Use:   "ls [path]",
			Short: "List a remote directory",
			Args:  cobra.MaximumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				dir := ""
				if len(args) > 0 {
					dir = args[0]
				}
				return withSession(cmd, func(s *ftp.Session) error {
					entries, err := s.ListDirectory(dir)
					if err != nil {
						return err
					}
					for _, line := range entries {
						fmt.Fprintln(cmd.OutOrStdout(), line)
					}
					return nil
				})
			},
		},
		&cobra.Command{
			Use:   "get <remote> [local]",
			Short: "Download a remote file",
			Args:  cobra.RangeArgs(1, 2),
			RunE: func(cmd *cobra.Command, args []string) error {
				local := ""
				if len(args) > 1 {
					local = args[1]
				}
				return withSession(cmd, func(s *ftp.Session) error {
					if err := s.DownloadFile(args[0], local); err != nil {
						return err
					}
					fmt.Fprintln(cmd.OutOrStdout(), ftp.ResolveLocalPath(args[0], local))
					return nil
				})
			},
		},
		&cobra.Command{
			Use:   "put <local> <remote>",
			Short: "Upload a local file",
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				return withSession(cmd, func(s *ftp.Session) error {
					return s.UploadFile(args[0], args[1])
				})
			},
		},
	)
	return root
}

// withSession connects and logs in, runs fn and disconnects.
func withSession(cmd *cobra.Command, fn func(*ftp.Session) error) error {
	v, err := newViper(cmd.Flags())
	if err != nil {
		return err
	}
	cfg, err := loadConfig(v)
	if err != nil {
		return err
	}

	s, err := ftp.NewSession(cfg.options(cmd.ErrOrStderr())...)
	if err != nil {
		return err
	}
	defer func() { _ = s.Close() }()

	if err := s.Connect(cfg.Host, cfg.Port); err != nil {
		return err
	}
	if err := s.Authenticate(cfg.User, cfg.Password); err != nil {
		return err
	}
	if err := fn(s); err != nil {
		return err
	}
	return s.Disconnect()
}

// describe prefixes session errors with their kind.
func describe(err error) string {
	if kind := ftp.KindOf(err); kind != 0 {
		return fmt.Sprintf("%s: %v", kind, err)
	}
	return err.Error()
}

func exitCode(err error) int {
	switch ftp.KindOf(err) {
	case ftp.KindConnection:
		return 2
	case ftp.KindProtocol:
		return 3
	case ftp.KindIO, ftp.KindTransfer:
		return 4
	case ftp.KindState:
		return 5
	}
	return 1
}
