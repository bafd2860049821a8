package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"runtime"
	"strings"

	"github.com/spf13/cobra"

	printone "github.com/print-one/printone-go"
)

var (
	version string

	// Global flags
	flagAPIURL  string
	flagAPIKey  string
	flagProfile string
	flagOutput  string
	flagVerbose bool
)

var rootCmd = &cobra.Command{
	Use:   "printone",
	Short: "Command line client for the print.one API",
	Long: `printone inspects and manages templates, orders, batches, coupons and
webhooks of a print.one account.

Use "printone config set-profile" to store your API key.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// SetVersion sets the CLI version from build flags.
func SetVersion(v string) {
	version = v
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&flagAPIURL, "api-url", "", "Override API URL (env: PRINTONE_BASE_URL)")
	rootCmd.PersistentFlags().StringVar(&flagAPIKey, "api-key", "", "Override API key (env: PRINTONE_API_KEY)")
	rootCmd.PersistentFlags().StringVarP(&flagProfile, "profile", "p", "", "Use specific profile (env: PRINTONE_PROFILE)")
	rootCmd.PersistentFlags().StringVarP(&flagOutput, "output", "o", "table", "Output format: table, json, yaml")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "Log requests to stderr")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(whoamiCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(getCmd)
	rootCmd.AddCommand(orderCmd)
	rootCmd.AddCommand(webhookCmd)
}

func initConfig() {
	if flagAPIURL == "" {
		flagAPIURL = os.Getenv("PRINTONE_BASE_URL")
	}
	if flagAPIKey == "" {
		flagAPIKey = os.Getenv("PRINTONE_API_KEY")
	}

	if flagAPIURL == "" || flagAPIKey == "" {
		u, k := resolveFromConfigFile()
		if flagAPIURL == "" {
			flagAPIURL = u
		}
		if flagAPIKey == "" {
			flagAPIKey = k
		}
	}
}

func resolveFromConfigFile() (string, string) {
	name := flagProfile
	if name == "" {
		name = os.Getenv("PRINTONE_PROFILE")
	}

	cfg, err := loadConfig()
	if err != nil {
		return "", ""
	}

	if name == "" {
		name = cfg.CurrentProfile
	}

	p := cfg.GetProfile(name)
	if p == nil {
		return "", ""
	}

	apiKey := p.Profile.APIKey
	if apiKey == "" && p.Profile.APIKeyFile != "" {
		data, err := os.ReadFile(expandPath(p.Profile.APIKeyFile))
		if err == nil {
			apiKey = strings.TrimSpace(string(data))
		}
	}

	return p.Profile.APIURL, apiKey
}

func newLogger() *slog.Logger {
	level := slog.LevelWarn
	if flagVerbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

func mustClient() *printone.Client {
	if flagAPIKey == "" {
		fmt.Fprintln(os.Stderr, "Error: API key not configured. Use --api-key, PRINTONE_API_KEY, or 'printone config set-profile'")
		os.Exit(1)
	}

	opts := []printone.Option{
		printone.WithLogger(newLogger()),
		printone.WithUserAgent("printone-cli/" + version),
	}
	if flagAPIURL != "" {
		opts = append(opts, printone.WithBaseURL(flagAPIURL))
	}
	return printone.New(flagAPIKey, opts...)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show CLI version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("printone version %s\n", version)
		fmt.Printf("  Go:       %s\n", runtime.Version())
		fmt.Printf("  OS/Arch:  %s/%s\n", runtime.GOOS, runtime.GOARCH)
	},
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the company the API key belongs to",
	RunE: func(cmd *cobra.Command, args []string) error {
		client := mustClient()
		company, err := client.Self(cmd.Context())
		if err != nil {
			return fmt.Errorf("connection failed: %w", err)
		}

		view := companyView{
			ID:          company.ID(),
			CompanyName: company.CompanyName(),
			Email:       company.Email(),
			CanBeBilled: company.CanBeBilled(),
		}
		if printStructured(view) {
			return nil
		}

		fmt.Fprintf(os.Stdout, "print.one\n")
		fmt.Fprintf(os.Stdout, "  API URL:  %s\n", client.Config().BaseURL)
		fmt.Fprintf(os.Stdout, "  Status:   connected\n")
		fmt.Fprintf(os.Stdout, "\nAuthenticated as:\n")
		fmt.Fprintf(os.Stdout, "  ID:       %s\n", view.ID)
		fmt.Fprintf(os.Stdout, "  Company:  %s\n", view.CompanyName)
		fmt.Fprintf(os.Stdout, "  Email:    %s\n", view.Email)
		fmt.Fprintf(os.Stdout, "  Billable: %s\n", boolToStr(view.CanBeBilled))
		return nil
	},
}
