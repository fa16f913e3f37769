package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/crossport/serial"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var cfgFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "serialctl",
	Short: "Serial port toolbox",
	Long: `serialctl is a toolbox for working with serial ports.

It can list and inspect ports, send and capture data, drive an interactive
terminal session, and control or monitor modem signals.

Port settings (baud rate, framing, flow control, timeouts) are shared
persistent flags. They can also come from a config file or from
SERIALCTL_* environment variables, so a fixed setup only has to be
written down once:

  # ~/.serialctl.yaml
  baud: 9600
  parity: even
  flow-control: hardware`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.serialctl.yaml)")
	rootCmd.PersistentFlags().IntP("baud", "b", 115200, "Baud rate")
	rootCmd.PersistentFlags().Int("data-bits", 8, "Data bits per character: 5-8")
	rootCmd.PersistentFlags().String("stop-bits", "1", "Stop bits: 1, 1.5, 2")
	rootCmd.PersistentFlags().String("parity", "none", "Parity: none, odd, even, mark, space")
	rootCmd.PersistentFlags().String("flow-control", "none", "Flow control: none, software, hardware")
	rootCmd.PersistentFlags().Duration("read-timeout", 0, "Read timeout (0 = block until data arrives)")
	rootCmd.PersistentFlags().Duration("write-timeout", 0, "Write timeout (0 = block until sent)")

	viper.BindPFlag("baud", rootCmd.PersistentFlags().Lookup("baud"))
	viper.BindPFlag("data-bits", rootCmd.PersistentFlags().Lookup("data-bits"))
	viper.BindPFlag("stop-bits", rootCmd.PersistentFlags().Lookup("stop-bits"))
	viper.BindPFlag("parity", rootCmd.PersistentFlags().Lookup("parity"))
	viper.BindPFlag("flow-control", rootCmd.PersistentFlags().Lookup("flow-control"))
	viper.BindPFlag("read-timeout", rootCmd.PersistentFlags().Lookup("read-timeout"))
	viper.BindPFlag("write-timeout", rootCmd.PersistentFlags().Lookup("write-timeout"))
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		viper.AddConfigPath(home)
		viper.SetConfigType("yaml")
		viper.SetConfigName(".serialctl")
	}

	viper.SetEnvPrefix("SERIALCTL")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	viper.ReadInConfig()
}

// portOptions builds the serial option list from the persistent flags,
// merged with any config file and environment values viper picked up.
func portOptions() ([]serial.Option, error) {
	opts := []serial.Option{
		serial.WithBaudRate(viper.GetInt("baud")),
		serial.WithDataBits(viper.GetInt("data-bits")),
	}

	stopBits, err := parseStopBits(viper.GetString("stop-bits"))
	if err != nil {
		return nil, err
	}
	opts = append(opts, serial.WithStopBits(stopBits))

	parity, err := parseParity(viper.GetString("parity"))
	if err != nil {
		return nil, err
	}
	opts = append(opts, serial.WithParity(parity))

	flow, err := parseFlowControl(viper.GetString("flow-control"))
	if err != nil {
		return nil, err
	}
	opts = append(opts, serial.WithFlowControl(flow))

	if d := viper.GetDuration("read-timeout"); d != 0 {
		opts = append(opts, serial.WithReadTimeout(d))
	}
	if d := viper.GetDuration("write-timeout"); d != 0 {
		opts = append(opts, serial.WithWriteTimeout(d))
	}

	return opts, nil
}

func parseStopBits(s string) (serial.StopBits, error) {
	switch s {
	case "1":
		return serial.StopBits1, nil
	case "1.5":
		return serial.StopBits1Half, nil
	case "2":
		return serial.StopBits2, nil
	default:
		return 0, fmt.Errorf("invalid stop bits %q (valid: 1, 1.5, 2)", s)
	}
}

func parseParity(s string) (serial.Parity, error) {
	switch strings.ToLower(s) {
	case "none", "n":
		return serial.ParityNone, nil
	case "odd", "o":
		return serial.ParityOdd, nil
	case "even", "e":
		return serial.ParityEven, nil
	case "mark", "m":
		return serial.ParityMark, nil
	case "space", "s":
		return serial.ParitySpace, nil
	default:
		return 0, fmt.Errorf("invalid parity %q (valid: none, odd, even, mark, space)", s)
	}
}

func parseFlowControl(s string) (serial.FlowControl, error) {
	switch strings.ToLower(s) {
	case "none":
		return serial.FlowControlNone, nil
	case "software", "xonxoff":
		return serial.FlowControlSoftware, nil
	case "hardware", "rtscts":
		return serial.FlowControlHardware, nil
	default:
		return 0, fmt.Errorf("invalid flow control %q (valid: none, software, hardware)", s)
	}
}
