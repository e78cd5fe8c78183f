package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/zarlcorp/zcontacts/internal/taxid"
)

func taxidCommand(env *Env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "taxid",
		Short: "validate, generate and format cpf numbers",
	}

	validate := &cobra.Command{
		Use:   "validate <cpf>...",
		Short: "check cpf numbers; exits non-zero if any is invalid",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			bad := 0
			for _, a := range args {
				stripped := taxid.Strip(a)
				if taxid.IsValid(stripped) {
					fmt.Fprintf(env.Out, "%s valid\n", taxid.Format(stripped))
					continue
				}
				bad++
				fmt.Fprintf(env.Out, "%s invalid\n", a)
			}
			if bad > 0 {
				return fmt.Errorf("%d of %d invalid", bad, len(args))
			}
			return nil
		},
	}

	var (
		count     int
		formatted bool
	)
	generate := &cobra.Command{
		Use:   "generate",
		Short: "generate random valid cpf numbers for testing",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			if count < 1 {
				return fmt.Errorf("count must be at least 1")
			}
			for range count {
				id := taxid.Generate()
				if formatted {
					id = taxid.Format(id)
				}
				fmt.Fprintln(env.Out, id)
			}
			return nil
		},
	}
	generate.Flags().IntVarP(&count, "count", "n", 1, "how many to generate")
	generate.Flags().BoolVar(&formatted, "formatted", false, "print as 000.000.000-00")

	format := &cobra.Command{
		Use:   "format <cpf>",
		Short: "print a cpf as 000.000.000-00",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			s := taxid.Strip(args[0])
			if len(s) != taxid.Length {
				return fmt.Errorf("cpf must have %d digits", taxid.Length)
			}
			fmt.Fprintln(env.Out, taxid.Format(s))
			return nil
		},
	}

	cmd.AddCommand(validate, generate, format)
	return cmd
}

func cepCommand(env *Env) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "cep <code>",
		Short: "look up a postal code",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			addr, err := env.Postal.Lookup(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			if asJSON {
				return printJSON(env.Out, addr)
			}

			fmt.Fprintf(env.Out, "  cep:      %s\n", addr.PostalCode)
			fmt.Fprintf(env.Out, "  street:   %s\n", addr.Street)
			if addr.Complement != "" {
				fmt.Fprintf(env.Out, "  detail:   %s\n", addr.Complement)
			}
			fmt.Fprintf(env.Out, "  district: %s\n", addr.District)
			fmt.Fprintf(env.Out, "  city:     %s/%s\n", addr.Locality, addr.Region)
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print as json")
	return cmd
}

func geocodeCommand(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:   "geocode <address>...",
		Short: "resolve an address to coordinates",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			geo := env.NewGeocoder(env.Config.GoogleAPIKey)

			c, err := geo.Geocode(cmd.Context(), strings.Join(args, " "))
			if err != nil {
				return err
			}
			fmt.Fprintln(env.Out, c)
			return nil
		},
	}
}
