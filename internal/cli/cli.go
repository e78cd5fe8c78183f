// Package cli implements zcontacts' command-line subcommands.
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/zarlcorp/core/pkg/zfilesystem"
	"github.com/zarlcorp/zcontacts/internal/config"
	"github.com/zarlcorp/zcontacts/internal/geocode"
	"github.com/zarlcorp/zcontacts/internal/pipeline"
	"github.com/zarlcorp/zcontacts/internal/postal"
	"github.com/zarlcorp/zcontacts/internal/store"
	"golang.org/x/term"
)

// Env carries the dependencies shared by every command. Zero-valued hooks
// are filled with the real implementations by NewRootCommand.
type Env struct {
	Config  config.Config
	Logger  *slog.Logger
	Version string

	Out io.Writer
	Err io.Writer

	// RunTUI starts the interactive interface for the bare command.
	RunTUI func(ctx context.Context) error

	// OpenVault unlocks the vault for commands that touch stored data.
	OpenVault func() (*store.Vault, error)

	// ReadPassword prompts without echo.
	ReadPassword func(prompt string) (string, error)

	// Postal and NewGeocoder build the lookup clients.
	Postal      pipeline.AddressResolver
	NewGeocoder func(apiKey string) geocode.Geocoder
}

func (e *Env) fill() {
	if e.Out == nil {
		e.Out = os.Stdout
	}
	if e.Err == nil {
		e.Err = os.Stderr
	}
	if e.Logger == nil {
		e.Logger = slog.New(slog.DiscardHandler)
	}
	if e.ReadPassword == nil {
		e.ReadPassword = func(prompt string) (string, error) {
			return ReadPassword(prompt, e.Err)
		}
	}
	if e.OpenVault == nil {
		e.OpenVault = e.openDefaultVault
	}
	if e.Postal == nil {
		e.Postal = postal.NewClient(postal.Config{
			BaseURL: e.Config.PostalURL,
			Timeout: e.Config.HTTPTimeout,
		})
	}
	if e.NewGeocoder == nil {
		e.NewGeocoder = func(apiKey string) geocode.Geocoder {
			return geocode.New(geocode.Config{
				APIKey:  apiKey,
				BaseURL: e.Config.GeocodeURL,
				Timeout: e.Config.HTTPTimeout,
			})
		}
	}
}

// NewRootCommand builds the zcontacts command tree.
func NewRootCommand(env *Env) *cobra.Command {
	env.fill()

	root := &cobra.Command{
		Use:           "zcontacts",
		Short:         "encrypted contact book with CPF validation and address lookup",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if env.RunTUI == nil {
				return fmt.Errorf("interactive mode unavailable")
			}
			return env.RunTUI(cmd.Context())
		},
	}
	root.SetOut(env.Out)
	root.SetErr(env.Err)

	root.AddCommand(
		versionCommand(env),
		taxidCommand(env),
		cepCommand(env),
		geocodeCommand(env),
		listCommand(env),
		searchCommand(env),
		addCommand(env),
		editCommand(env),
		removeCommand(env),
		registerCommand(env),
		sampleCommand(env),
	)

	return root
}

func versionCommand(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "print the version",
		Args:  cobra.NoArgs,
		Run: func(*cobra.Command, []string) {
			fmt.Fprintf(env.Out, "zcontacts %s\n", env.Version)
		},
	}
}

// ReadPassword prompts for a password on w and reads it without echo.
func ReadPassword(prompt string, w io.Writer) (string, error) {
	fmt.Fprint(w, prompt)
	b, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Fprintln(w)
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}
	return string(b), nil
}

// readNewPassword prompts for a new password with confirmation.
func (e *Env) readNewPassword(prompt string) (string, error) {
	pass, err := e.ReadPassword(prompt)
	if err != nil {
		return "", err
	}
	confirm, err := e.ReadPassword("confirm password: ")
	if err != nil {
		return "", err
	}
	if pass != confirm {
		return "", fmt.Errorf("passwords do not match")
	}
	return pass, nil
}

// openDefaultVault opens the vault in the configured data directory, taking
// the passphrase from the environment or a prompt.
func (e *Env) openDefaultVault() (*store.Vault, error) {
	dir := e.Config.DataDir
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}

	pass := e.Config.Passphrase
	if pass == "" {
		var err error
		if config.IsFirstRun(dir) {
			pass, err = e.readNewPassword("master password: ")
		} else {
			pass, err = e.ReadPassword("master password: ")
		}
		if err != nil {
			return nil, err
		}
	}

	return store.Open(zfilesystem.NewOSFileSystem(dir), []byte(pass))
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode json: %w", err)
	}
	return nil
}
