package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/apex/log"
	clihander "github.com/apex/log/handlers/cli"
	"github.com/bentokun/elf2e32/internal/colors"
	"github.com/bentokun/elf2e32/internal/commands/translate"
	"github.com/bentokun/elf2e32/internal/config"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile string
	// Verbose boolean flag for verbose logging
	Verbose bool
	// Color boolean flag for colorized output
	Color bool
	// AppVersion stores the tool's version
	AppVersion string
	// AppBuildTime stores the tool's build time
	AppBuildTime string
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:           "elf2e32",
	Short:         "Translate post-linked ELF objects into E32 images",
	SilenceUsage:  true,
	SilenceErrors: true,
	Long: heredoc.Doc(`
		elf2e32 converts a host-built ELF shared object or executable into an
		E32 image, reconciling its exports against a frozen DEF file along the
		way. For DLL targets it also regenerates the DEF file and produces the
		proxy import DSO used by dependent link steps.`),
	Example: heredoc.Doc(`
		# freeze-check a DLL and produce all three outputs
		elf2e32 --elfinput foo.so --definput foo.def --defoutput foo.def \
		        --dsooutput foo.dso --linkas "foo{000a0001}.dll" --output foo.dll

		# unfrozen build, admit new exports with warnings
		elf2e32 --unfrozen --warn-new-exports --elfinput foo.so \
		        --definput foo.def --defoutput foo.def --output foo.dll`),
	RunE: func(cmd *cobra.Command, args []string) error {
		if Verbose {
			log.SetLevel(log.DebugLevel)
		}
		colors.Init(&Color)
		conf, err := config.LoadConfig()
		if err != nil {
			return err
		}
		return translate.Run(conf)
	},
}

// Execute runs the root command and exits with the code of the error kind.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		log.Error(err.Error())
		os.Exit(translate.ExitCode(err))
	}
}

func init() {
	log.SetHandler(clihander.Default)

	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.config/elf2e32/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&Verbose, "verbose", "V", false, "verbose output")
	rootCmd.PersistentFlags().BoolVar(&Color, "color", false, "colorize output")

	rootCmd.Flags().String("elfinput", "", "post-linked ELF input file")
	rootCmd.Flags().String("definput", "", "frozen DEF input file")
	rootCmd.Flags().String("output", "", "E32 image output file")
	rootCmd.Flags().String("defoutput", "", "regenerated DEF output file")
	rootCmd.Flags().String("dsooutput", "", "proxy import DSO output file")
	rootCmd.Flags().String("linkas", "", "versioned name recorded in the DSO (defaults to the input's DT_SONAME)")
	rootCmd.Flags().Bool("unfrozen", false, "treat missing frozen exports as warnings instead of errors")
	rootCmd.Flags().Bool("ignore-non-callable", false, "suppress vtable and typeinfo exports")
	rootCmd.Flags().Bool("custom-dll", false, "filter runtime-support symbols from the new exports")
	rootCmd.Flags().Bool("exclude-unwanted-exports", false, "filter runtime-support symbols from the new exports")
	rootCmd.Flags().Bool("warn-new-exports", false, "warn for every export not yet frozen")
	rootCmd.Flags().Bool("named-symlookup", false, "build the export table even without exports")
	rootCmd.Flags().Uint32("uid1", 0, "target UID1 (defaults from the target type)")
	rootCmd.Flags().Uint32("uid2", 0, "target UID2")
	rootCmd.Flags().Uint32("uid3", 0, "target UID3")
	rootCmd.MarkFlagRequired("elfinput")
	viper.BindPFlags(rootCmd.Flags())

	rootCmd.CompletionOptions.HiddenDefaultCmd = true
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		viper.AddConfigPath(filepath.Join(home, ".config", "elf2e32"))
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
	}

	viper.SetEnvPrefix("elf2e32")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}
