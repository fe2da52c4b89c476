// Command partnerctl is the operator tool for partner accounts, API keys and
// catalog entries. It talks to the database directly and uses the same
// configuration as the API server.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/GTDGit/herbal_api/internal/config"
	"github.com/GTDGit/herbal_api/internal/database"
	"github.com/GTDGit/herbal_api/internal/models"
	"github.com/GTDGit/herbal_api/internal/repository"
	"github.com/GTDGit/herbal_api/internal/service"
	"github.com/GTDGit/herbal_api/internal/utils"
)

var Version = "dev"

func main() {
	log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "partnerctl",
		Short:         "Operator tool for partners, API keys and products",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(migrateCmd())
	root.AddCommand(createPartnerCmd())
	root.AddCommand(listPartnersCmd())
	root.AddCommand(setStatusCmd())
	root.AddCommand(setPasswordCmd())
	root.AddCommand(createKeyCmd())
	root.AddCommand(upsertProductCmd())

	return root
}

// env holds what every database-backed command needs.
type env struct {
	db       *sqlx.DB
	partners *service.AdminPartnerService
	keys     *service.APIKeyService
	products *repository.ProductRepository
}

func openEnv() (*env, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	db, err := database.Connect(&cfg.DB)
	if err != nil {
		return nil, err
	}
	keys := service.NewAPIKeyService(
		repository.NewAPIKeyRepository(db),
		utils.NewKeyCipher(cfg.Security.APIKeyEncryptionSecret),
	)
	return &env{
		db:       db,
		partners: service.NewAdminPartnerService(repository.NewPartnerRepository(db), keys),
		keys:     keys,
		products: repository.NewProductRepository(db),
	}, nil
}

// withEnv opens the database for the duration of fn.
func withEnv(fn func(ctx context.Context, e *env) error) error {
	e, err := openEnv()
	if err != nil {
		return err
	}
	defer e.db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	return fn(ctx, e)
}

func migrateCmd() *cobra.Command {
	var source string
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			db, err := database.Connect(&cfg.DB)
			if err != nil {
				return err
			}
			defer db.Close()
			if err := database.RunMigrations(db.DB, source); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "migrations applied")
			return nil
		},
	}
	cmd.Flags().StringVar(&source, "source", database.DefaultMigrationsURL, "migration source URL")
	return cmd
}

func createPartnerCmd() *cobra.Command {
	var email, phone, password, status string
	cmd := &cobra.Command{
		Use:   "create-partner [name]",
		Short: "Create a partner account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := parseStatus(status)
			if err != nil {
				return err
			}
			return withEnv(func(ctx context.Context, e *env) error {
				p, err := e.partners.Create(ctx, args[0], email, phone, password, st)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "created partner %s (%s)\n", p.ID, p.Status)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "partner email")
	cmd.Flags().StringVar(&phone, "phone", "", "partner phone")
	cmd.Flags().StringVar(&password, "password", "", "dashboard password (optional)")
	cmd.Flags().StringVar(&status, "status", string(models.PartnerActive), "PENDING, ACTIVE or SUSPENDED")
	return cmd
}

func listPartnersCmd() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "list-partners",
		Short: "List partners with their API keys",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEnv(func(ctx context.Context, e *env) error {
				partners, err := e.partners.List(ctx)
				if err != nil {
					return err
				}
				return printPartners(cmd.OutOrStdout(), partners, asJSON)
			})
		},
	}
	cmd.Flags().BoolVarP(&asJSON, "json", "j", false, "output as JSON")
	return cmd
}

func printPartners(w io.Writer, partners []service.AdminPartner, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(partners)
	}
	for _, p := range partners {
		active := 0
		for _, k := range p.APIKeys {
			if k.IsActive {
				active++
			}
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\tkeys=%d/%d\n", p.ID, p.Status, p.Name, contact(p), active, len(p.APIKeys))
	}
	return nil
}

func contact(p service.AdminPartner) string {
	var parts []string
	if p.Email != nil {
		parts = append(parts, *p.Email)
	}
	if p.Phone != nil {
		parts = append(parts, *p.Phone)
	}
	if len(parts) == 0 {
		return "-"
	}
	return strings.Join(parts, ",")
}

func setStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set-status [partner-id] [status]",
		Short: "Change a partner's status",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEnv(func(ctx context.Context, e *env) error {
				p, err := e.partners.SetStatus(ctx, args[0], strings.ToUpper(args[1]))
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "partner %s is now %s\n", p.ID, p.Status)
				return nil
			})
		},
	}
}

func setPasswordCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set-password [partner-id]",
		Short: "Set a partner's dashboard password (read from stdin)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			password, err := readSecret(cmd.InOrStdin())
			if err != nil {
				return err
			}
			return withEnv(func(ctx context.Context, e *env) error {
				if err := e.partners.SetPassword(ctx, args[0], password); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "password updated")
				return nil
			})
		},
	}
}

func createKeyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "create-key [partner-id]",
		Short: "Mint an API key for a partner and print it once",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEnv(func(ctx context.Context, e *env) error {
				plain, err := e.keys.CreateForPartnerStrict(ctx, args[0])
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), plain)
				return nil
			})
		},
	}
}

func upsertProductCmd() *cobra.Command {
	var (
		name, description, imageURL string
		price                       int64
		sortOrder                   int
		inactive, featured          bool
	)
	cmd := &cobra.Command{
		Use:   "upsert-product [slug]",
		Short: "Create or update a catalog product by slug",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := buildProduct(args[0], name, description, imageURL, price, sortOrder, !inactive, featured)
			if err != nil {
				return err
			}
			return withEnv(func(ctx context.Context, e *env) error {
				if err := e.products.Upsert(ctx, p); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "product %s saved (%s)\n", p.Slug, p.ID)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "display name (required)")
	cmd.Flags().StringVar(&description, "description", "", "description")
	cmd.Flags().StringVar(&imageURL, "image-url", "", "image URL")
	cmd.Flags().Int64Var(&price, "price", 0, "price in minor units; 0 leaves the product unorderable by partners")
	cmd.Flags().IntVar(&sortOrder, "sort-order", 0, "higher sorts first")
	cmd.Flags().BoolVar(&inactive, "inactive", false, "hide from the catalog")
	cmd.Flags().BoolVar(&featured, "featured", false, "mark as featured")
	return cmd
}

func buildProduct(slug, name, description, imageURL string, price int64, sortOrder int, active, featured bool) (*models.Product, error) {
	slug = strings.TrimSpace(strings.ToLower(slug))
	name = strings.TrimSpace(name)
	if slug == "" {
		return nil, fmt.Errorf("slug is required")
	}
	if name == "" {
		return nil, fmt.Errorf("--name is required")
	}
	if price < 0 {
		return nil, fmt.Errorf("--price must be >= 0")
	}
	p := &models.Product{
		Name:        name,
		Slug:        slug,
		Description: description,
		IsActive:    active,
		IsFeatured:  featured,
		SortOrder:   sortOrder,
	}
	if price > 0 {
		p.Price = &price
	}
	if u := strings.TrimSpace(imageURL); u != "" {
		p.ImageURL = &u
	}
	return p, nil
}

func parseStatus(s string) (models.PartnerStatus, error) {
	st, ok := models.ParsePartnerStatus(strings.ToUpper(strings.TrimSpace(s)))
	if !ok {
		return "", fmt.Errorf("invalid status %q", s)
	}
	return st, nil
}

func readSecret(r io.Reader) (string, error) {
	b, err := io.ReadAll(io.LimitReader(r, 4096))
	if err != nil {
		return "", err
	}
	s := strings.TrimRight(string(b), "\r\n")
	if s == "" {
		return "", fmt.Errorf("password must be provided on stdin")
	}
	return s, nil
}
