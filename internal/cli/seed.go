package cli

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"storefront/internal/domain"
	"storefront/internal/service"
)

var sampleProducts = []domain.Product{
	{Title: "Coffee beans 1kg", Code: "COF-001", Category: "coffee", Price: decimal.RequireFromString("24.90"), Stock: 40},
	{Title: "Espresso cup", Code: "CUP-002", Category: "accessories", Price: decimal.RequireFromString("6.50"), Stock: 120},
	{Title: "Hand grinder", Code: "GRD-003", Category: "equipment", Price: decimal.RequireFromString("79.00"), Stock: 8},
	{Title: "Pour-over kettle", Code: "KTL-004", Category: "equipment", Price: decimal.RequireFromString("54.00"), Stock: 0},
}

type seedOptions struct {
	adminEmail    string
	adminPassword string
	products      bool
}

func newSeedCmd(rt *runtime) *cobra.Command {
	var opts seedOptions
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Create the admin account and sample products",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context(), rt.cfg, rt.log)
			if err != nil {
				return err
			}
			defer a.Close()
			return seed(cmd.Context(), a, opts, cmd)
		},
	}
	cmd.Flags().StringVar(&opts.adminEmail, "admin-email", "admin@shop.local", "admin email")
	cmd.Flags().StringVar(&opts.adminPassword, "admin-password", "", "admin password (required)")
	cmd.Flags().BoolVar(&opts.products, "products", true, "insert sample products")
	return cmd
}

// seed повторяемый: существующий админ повышается, дубли товаров пропускаются
func seed(ctx context.Context, a *app, opts seedOptions, cmd *cobra.Command) error {
	if opts.adminPassword == "" {
		return fmt.Errorf("--admin-password is required")
	}
	admin, err := a.services.Users.EnsureAdmin(ctx, service.RegisterInput{
		FirstName: "Store",
		LastName:  "Admin",
		Email:     opts.adminEmail,
		Age:       30,
		Password:  opts.adminPassword,
	})
	if err != nil {
		return fmt.Errorf("admin: %w", err)
	}
	a.log.Info("admin ready", "user_id", admin.ID, "email", admin.Email)

	if !opts.products {
		return nil
	}
	created := 0
	for _, p := range sampleProducts {
		_, err := a.services.Products.Create(ctx, p)
		if err == nil {
			created++
			continue
		}
		if domain.KindOf(err) == domain.KindConflict {
			a.log.Debug("product exists", "code", p.Code)
			continue
		}
		return fmt.Errorf("product %s: %w", p.Code, err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "admin %s, %d products created\n", admin.Email, created)
	return nil
}
