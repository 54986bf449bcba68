package droidsdk

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gookit/color"
	"github.com/spf13/cobra"
)

type globalOptions struct {
	buildRoot  string
	configPath string
	debug      bool
}

// session bundles what every command needs: the captured environment, tool
// config and absolute build root.
type session struct {
	env       *Environment
	cfg       *Config
	buildRoot string
}

func (o *globalOptions) open() (*session, error) {
	if o.debug {
		Debug = true
	}
	env, err := ProbeEnvironment()
	if err != nil {
		return nil, err
	}
	cfg, err := loadConfig(o.configPath, env)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", o.configPath, err)
	}
	root, err := filepath.Abs(o.buildRoot)
	if err != nil {
		return nil, err
	}
	if !isDir(root) {
		return nil, fmt.Errorf("build root %s is not a directory", root)
	}
	return &session{env: env, cfg: cfg, buildRoot: root}, nil
}

func (s *session) locate(ctx context.Context) (string, error) {
	p, err := NewArchiveProvisioner(ctx, s.cfg, s.env)
	if err != nil {
		return "", err
	}
	return (&Locator{Provisioner: p}).Locate(ctx, s.buildRoot, s.env)
}

// NewRootCmd creates the droidsdk command tree.
func NewRootCmd() *cobra.Command {
	opts := &globalOptions{}
	rootCmd := &cobra.Command{
		Use:   "droidsdk",
		Short: "Locate and provision the Android SDK for a build",
		Long: `droidsdk finds the Android SDK for a build (local.properties, $ANDROID_HOME,
~/.android-sdk), downloads one when none exists, records it in local.properties
and installs the SDK packages the build manifest declares.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVar(&opts.buildRoot, "root", ".", "build root containing local.properties")
	rootCmd.PersistentFlags().StringVar(&opts.configPath, "config", ConfigFile, "droidsdk configuration file")
	rootCmd.PersistentFlags().BoolVar(&opts.debug, "debug", false, "print debug output")

	rootCmd.AddCommand(newLocateCmd(opts))
	rootCmd.AddCommand(newResolveCmd(opts))
	rootCmd.AddCommand(newStatusCmd(opts))
	rootCmd.AddCommand(newVersionCmd())
	return rootCmd
}

func newLocateCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "locate",
		Short: "Print the SDK root, installing the SDK if none is found",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := opts.open()
			if err != nil {
				return err
			}
			sdkRoot, err := s.locate(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), sdkRoot)
			return nil
		},
	}
}

func newResolveCmd(opts *globalOptions) *cobra.Command {
	var manifestPath string
	var offline bool
	cmd := &cobra.Command{
		Use:   "resolve",
		Short: "Locate the SDK and install the packages the build manifest needs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := opts.open()
			if err != nil {
				return err
			}
			if manifestPath == "" {
				manifestPath = filepath.Join(s.buildRoot, ManifestFileName)
			}
			req, err := LoadRequirements(manifestPath)
			if err != nil {
				return err
			}

			sdkRoot, err := s.locate(cmd.Context())
			if err != nil {
				return err
			}
			if offline || req.Offline {
				colNote.Println("Offline build, not resolving SDK packages")
				return nil
			}

			resolver := &Resolver{Installer: &AndroidTool{SdkRoot: sdkRoot, OS: s.env.OS}}
			report, err := resolver.Resolve(cmd.Context(), sdkRoot, req)
			if err != nil {
				return err
			}
			printReport(cmd, sdkRoot, report)
			return nil
		},
	}
	cmd.Flags().StringVarP(&manifestPath, "manifest", "m", "", "build manifest (default <root>/"+ManifestFileName+")")
	cmd.Flags().BoolVar(&offline, "offline", false, "only locate the SDK, install nothing")
	return cmd
}

func printReport(cmd *cobra.Command, sdkRoot string, report *Report) {
	out := cmd.OutOrStdout()
	if len(report.Installed) == 0 {
		step("SDK at %s is up to date", sdkRoot)
	} else {
		step("Installed %d package(s) into %s", len(report.Installed), sdkRoot)
		for _, pkg := range report.Installed {
			fmt.Fprintf(out, "  %s\n", pkg)
		}
	}
	for _, repo := range report.Repositories {
		fmt.Fprintf(out, "repository %s\n", repo)
	}
}

func newStatusCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "List the packages installed in the build's SDK without changing anything",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := opts.open()
			if err != nil {
				return err
			}
			sdkRoot, err := (&Locator{ReadOnly: true}).Locate(cmd.Context(), s.buildRoot, s.env)
			if err != nil {
				return err
			}
			return ShowStatus(sdkRoot)
		},
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Version information",
		Run: func(cmd *cobra.Command, args []string) {
			colNote.Printf("droidsdk %s built %s\n", version, buildDate)
		},
	}
}

// Main is the CLI entrypoint for cmd/droidsdk.
func Main() {
	color.SetOutput(os.Stderr)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, os.Interrupt, syscall.SIGTERM)
	go func() {
		select {
		case sig := <-sigs:
			colArrow.Print("\n-> ")
			colWarn.Printf("Received %v. Cancelling process gracefully\n", sig)
			cancel()
			select {
			case <-sigs:
				colArrow.Print("\n-> ")
				colError.Println("Second interrupt received. Forcing immediate exit.")
				os.Exit(130)
			case <-time.After(5 * time.Second):
				os.Exit(130)
			}
		case <-ctx.Done():
		}
	}()

	if err := NewRootCmd().ExecuteContext(ctx); err != nil {
		colError.Printf("Error: %v\n", err)
		os.Exit(1)
	}
}
