package cli

import (
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"
	"github.com/zarlcorp/zcontacts/internal/account"
	"github.com/zarlcorp/zcontacts/internal/contact"
	"github.com/zarlcorp/zcontacts/internal/pipeline"
	"github.com/zarlcorp/zcontacts/internal/sample"
	"github.com/zarlcorp/zcontacts/internal/store"
	"github.com/zarlcorp/zcontacts/internal/taxid"
)

// session is an unlocked vault with the contact pipeline on top.
type session struct {
	vault    *store.Vault
	pipeline *pipeline.Pipeline
}

func (e *Env) openSession() (*session, error) {
	v, err := e.OpenVault()
	if err != nil {
		return nil, err
	}

	s, err := contact.Open(v.Contacts())
	if err != nil {
		v.Close()
		return nil, err
	}

	geo := e.NewGeocoder(v.GeocodeAPIKey(e.Config.GoogleAPIKey))
	return &session{
		vault:    v,
		pipeline: pipeline.New(s, e.Postal, geo, e.Logger),
	}, nil
}

func (s *session) Close() {
	s.vault.Close()
}

func listCommand(env *Env) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "list saved contacts",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			s, err := env.openSession()
			if err != nil {
				return err
			}
			defer s.Close()

			return printContacts(env.Out, s.pipeline.Store().All(), asJSON, "no saved contacts")
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print as json")
	return cmd
}

func searchCommand(env *Env) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "search <term>",
		Short: "search contacts by name or tax id",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			s, err := env.openSession()
			if err != nil {
				return err
			}
			defer s.Close()

			return printContacts(env.Out, s.pipeline.Store().Search(args[0]), asJSON, "no matching contacts")
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print as json")
	return cmd
}

var errRegionLocality = errors.New("--region and --locality must be set together")

// draftFlags binds the editable contact fields to command flags.
type draftFlags struct {
	name, taxID, phone, street, postalCode, region, locality string
}

func (f *draftFlags) bind(cmd *cobra.Command) {
	fl := cmd.Flags()
	fl.StringVar(&f.name, "name", "", "full name")
	fl.StringVar(&f.taxID, "tax-id", "", "cpf, with or without punctuation")
	fl.StringVar(&f.phone, "phone", "", "phone number")
	fl.StringVar(&f.street, "street", "", "street address")
	fl.StringVar(&f.postalCode, "postal-code", "", "cep; the address is looked up when set")
	fl.StringVar(&f.region, "region", "", "state (uf)")
	fl.StringVar(&f.locality, "locality", "", "city")
}

// apply copies the flags the operator set onto d. Region and locality
// describe one place and are only accepted together.
func (f *draftFlags) apply(cmd *cobra.Command, d contact.Draft) (contact.Draft, error) {
	if cmd.Flags().Changed("region") != cmd.Flags().Changed("locality") {
		return d, errRegionLocality
	}

	set := func(name string, dst *string, v string) {
		if cmd.Flags().Changed(name) {
			*dst = v
		}
	}
	set("name", &d.FullName, f.name)
	set("tax-id", &d.TaxID, f.taxID)
	set("phone", &d.Phone, f.phone)
	set("street", &d.StreetAddress, f.street)
	set("postal-code", &d.PostalCode, f.postalCode)
	set("region", &d.Region, f.region)
	set("locality", &d.Locality, f.locality)
	return d, nil
}

func addCommand(env *Env) *cobra.Command {
	var flags draftFlags

	cmd := &cobra.Command{
		Use:   "add",
		Short: "add a contact",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			d, err := flags.apply(cmd, contact.Draft{})
			if err != nil {
				return err
			}

			s, err := env.openSession()
			if err != nil {
				return err
			}
			defer s.Close()

			res, err := s.pipeline.Create(cmd.Context(), d)
			return reportSave(env.Out, res, err)
		},
	}
	flags.bind(cmd)
	return cmd
}

func editCommand(env *Env) *cobra.Command {
	var flags draftFlags

	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "edit a contact; unset flags keep their stored value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			s, err := env.openSession()
			if err != nil {
				return err
			}
			defer s.Close()

			cur, err := s.pipeline.Store().Get(id)
			if err != nil {
				return err
			}

			d, err := flags.apply(cmd, cur.Draft())
			if err != nil {
				return err
			}

			res, err := s.pipeline.Edit(cmd.Context(), id, d)
			return reportSave(env.Out, res, err)
		},
	}
	flags.bind(cmd)
	return cmd
}

func removeCommand(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <id>",
		Short: "delete a contact",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			s, err := env.openSession()
			if err != nil {
				return err
			}
			defer s.Close()

			if err := s.pipeline.Store().Remove(id); err != nil {
				return err
			}
			fmt.Fprintf(env.Out, "deleted %d\n", id)
			return nil
		},
	}
}

func registerCommand(env *Env) *cobra.Command {
	var username string

	cmd := &cobra.Command{
		Use:   "register",
		Short: "register a login for the interactive interface",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			pass, err := env.ReadPassword("password: ")
			if err != nil {
				return err
			}
			confirm, err := env.ReadPassword("confirm password: ")
			if err != nil {
				return err
			}

			v, err := env.OpenVault()
			if err != nil {
				return err
			}
			defer v.Close()

			u, err := account.NewService(v.Accounts(), 0).Register(username, pass, confirm)
			if err != nil {
				return err
			}
			fmt.Fprintf(env.Out, "registered %s\n", u.Username)
			return nil
		},
	}
	cmd.Flags().StringVar(&username, "username", "", "login name")
	cmd.MarkFlagRequired("username")
	return cmd
}

func sampleCommand(env *Env) *cobra.Command {
	var (
		count int
		save  bool
	)

	cmd := &cobra.Command{
		Use:   "sample",
		Short: "generate fake contacts with valid cpf numbers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if count < 1 {
				return fmt.Errorf("count must be at least 1")
			}
			drafts := sample.New().Drafts(count)

			if !save {
				for _, d := range drafts {
					fmt.Fprintf(env.Out, "  %-28s %-14s %-16s %s, %s/%s\n",
						d.FullName, taxid.Format(d.TaxID), d.Phone,
						d.StreetAddress, d.Locality, d.Region)
				}
				return nil
			}

			s, err := env.openSession()
			if err != nil {
				return err
			}
			defer s.Close()

			for _, d := range drafts {
				res, err := s.pipeline.Create(cmd.Context(), d)
				if errors.Is(err, contact.ErrDuplicateTaxID) {
					fmt.Fprintf(env.Out, "skipped %s: %v\n", d.FullName, err)
					continue
				}
				if err := reportSave(env.Out, res, err); err != nil {
					return err
				}
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&count, "count", "n", 3, "how many to generate")
	cmd.Flags().BoolVar(&save, "save", false, "add them to the vault")
	return cmd
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid contact id %q", s)
	}
	return id, nil
}

// reportSave prints the step summary. A persistence failure still prints
// the record before returning the error.
func reportSave(w io.Writer, res pipeline.Result, err error) error {
	if err != nil && !errors.Is(err, contact.ErrPersistence) {
		return err
	}
	fmt.Fprintln(w, res.Summary())
	printContact(w, res.Contact)
	return err
}

func printContacts(w io.Writer, cs []contact.Contact, asJSON bool, empty string) error {
	if asJSON {
		if cs == nil {
			cs = []contact.Contact{}
		}
		return printJSON(w, cs)
	}

	if len(cs) == 0 {
		fmt.Fprintln(w, empty)
		return nil
	}

	for _, c := range cs {
		fmt.Fprintf(w, "  %-4d %-28s %-14s %s\n",
			c.ID,
			c.FullName,
			taxid.Format(c.TaxID),
			place(c),
		)
	}
	return nil
}

func printContact(w io.Writer, c contact.Contact) {
	fmt.Fprintf(w, "  id:       %d\n", c.ID)
	fmt.Fprintf(w, "  name:     %s\n", c.FullName)
	fmt.Fprintf(w, "  cpf:      %s\n", taxid.Format(c.TaxID))
	fmt.Fprintf(w, "  phone:    %s\n", c.Phone)
	fmt.Fprintf(w, "  address:  %s\n", place(c))
	fmt.Fprintf(w, "  cep:      %s\n", c.PostalCode)
	if c.HasCoordinates() {
		fmt.Fprintf(w, "  location: %.6f,%.6f\n", c.Latitude, c.Longitude)
	}
}

func place(c contact.Contact) string {
	switch {
	case c.StreetAddress != "" && c.Locality != "":
		return c.StreetAddress + ", " + c.Locality + "/" + c.Region
	case c.Locality != "":
		return c.Locality + "/" + c.Region
	default:
		return c.StreetAddress
	}
}
