package cli

import (
	"context"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/Abdurahmanit/GroupProject/classifieds/internal/client/cascade"
	"github.com/Abdurahmanit/GroupProject/classifieds/internal/client/categorytree"
	"github.com/Abdurahmanit/GroupProject/classifieds/internal/client/filters"
	"github.com/Abdurahmanit/GroupProject/classifieds/internal/domain"
	"github.com/spf13/cobra"
)

const defaultPageSize = 20

type searchOptions struct {
	keyword  string
	category int64
	minPrice string
	maxPrice string
	region   int64
	district int64
	city     int64
	page     int
	size     int
}

func newSearchCmd(app *App) *cobra.Command {
	var opts searchOptions
	cmd := &cobra.Command{
		Use:   "search [keyword]",
		Short: "Search active advertisements",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 && opts.keyword == "" {
				opts.keyword = args[0]
			}
			return runSearch(cmd.Context(), app, opts)
		},
	}
	f := cmd.Flags()
	f.StringVarP(&opts.keyword, "keyword", "k", "", "text to look for in title and description")
	f.Int64Var(&opts.category, "category", 0, "category id, includes its subcategories")
	f.StringVar(&opts.minPrice, "min-price", "", "lower price bound")
	f.StringVar(&opts.maxPrice, "max-price", "", "upper price bound")
	f.Int64Var(&opts.region, "region", 0, "region id")
	f.Int64Var(&opts.district, "district", 0, "district id, requires --region")
	f.Int64Var(&opts.city, "city", 0, "city id")
	f.IntVar(&opts.page, "page", 0, "zero-based page number")
	f.IntVar(&opts.size, "size", defaultPageSize, "page size")
	return cmd
}

func runSearch(ctx context.Context, app *App, opts searchOptions) error {
	search := filters.New(app.Backend, app.Log, nil)
	search.SetKeyword(opts.keyword)
	search.SetCategory(opts.category)
	if err := search.SetMinPrice(opts.minPrice); err != nil {
		return err
	}
	if err := search.SetMaxPrice(opts.maxPrice); err != nil {
		return err
	}
	if err := selectLocation(ctx, search.Cascade, opts.region, opts.district, opts.city); err != nil {
		return err
	}

	criteria := search.Apply()
	page, err := app.Backend.ListAdvertisements(ctx, criteria, opts.page, opts.size)
	if err != nil {
		return err
	}
	if len(page.Items) == 0 {
		app.printf("No advertisements found\n")
		return nil
	}

	tree, err := app.Backend.ListCategoriesAsTree(ctx)
	if err != nil {
		app.Log.Debug("Category names unavailable")
	}
	w := tabwriter.NewWriter(app.Out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTITLE\tPRICE\tCONDITION\tCATEGORY")
	for _, ad := range page.Items {
		fmt.Fprintf(w, "%d\t%s\t%.2f\t%s\t%s\n",
			ad.ID, ad.Title, ad.Price, ad.Condition, categorytree.ResolveName(tree, ad.CategoryID))
	}
	if err := w.Flush(); err != nil {
		return err
	}
	app.printf("Page %d of %d, %d advertisements\n", page.PageNumber+1, page.TotalPages, page.TotalElements)
	return nil
}

// selectLocation drives the cascade the way a user would: region first, then
// district, then city. A city alone is resolved to its ancestors.
func selectLocation(ctx context.Context, c *cascade.Cascade, region, district, city int64) error {
	if region <= 0 {
		if district > 0 {
			return fmt.Errorf("%w: --district requires --region", domain.ErrInvalidInput)
		}
		return c.Restore(ctx, city)
	}
	if err := cascade.Wait(ctx, c.SetRegion(ctx, region)); err != nil {
		return err
	}
	if district <= 0 {
		if city > 0 {
			return fmt.Errorf("%w: --city requires --district when --region is set", domain.ErrInvalidInput)
		}
		return nil
	}
	if !containsDistrict(c.Snapshot().Districts, district) {
		return fmt.Errorf("%w: district %d is not in region %d", domain.ErrInvalidInput, district, region)
	}
	if err := cascade.Wait(ctx, c.SetDistrict(ctx, district)); err != nil {
		return err
	}
	if city <= 0 {
		return nil
	}
	if !containsCity(c.Snapshot().Cities, city) {
		return fmt.Errorf("%w: city %d is not in district %d", domain.ErrInvalidInput, city, district)
	}
	c.SetCity(city)
	return nil
}

func containsDistrict(list []domain.District, id int64) bool {
	for _, d := range list {
		if d.ID == id {
			return true
		}
	}
	return false
}

func containsCity(list []domain.City, id int64) bool {
	for _, c := range list {
		if c.ID == id {
			return true
		}
	}
	return false
}

func newLocationsCmd(app *App) *cobra.Command {
	var region, district int64
	cmd := &cobra.Command{
		Use:   "locations",
		Short: "List regions, the districts of a region or the cities of a district",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			c := cascade.New(app.Backend, app.Log)
			w := tabwriter.NewWriter(app.Out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tNAME")
			switch {
			case district > 0:
				if err := cascade.Wait(ctx, c.SetDistrict(ctx, district)); err != nil {
					return err
				}
				for _, city := range c.Snapshot().Cities {
					fmt.Fprintf(w, "%d\t%s\n", city.ID, city.Name)
				}
			case region > 0:
				if err := cascade.Wait(ctx, c.SetRegion(ctx, region)); err != nil {
					return err
				}
				for _, d := range c.Snapshot().Districts {
					fmt.Fprintf(w, "%d\t%s\n", d.ID, d.Name)
				}
			default:
				if err := c.LoadRegions(ctx); err != nil {
					return err
				}
				for _, r := range c.Snapshot().Regions {
					fmt.Fprintf(w, "%d\t%s\n", r.ID, r.Name)
				}
			}
			return w.Flush()
		},
	}
	cmd.Flags().Int64Var(&region, "region", 0, "list the districts of this region")
	cmd.Flags().Int64Var(&district, "district", 0, "list the cities of this district")
	cmd.AddCommand(&cobra.Command{
		Use:   "resolve <city-id>",
		Short: "Show the region and district of a city",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			loc, err := app.Backend.ResolveCity(cmd.Context(), id)
			if err != nil {
				return err
			}
			app.printf("%s\n", formatLocation(*loc))
			return nil
		},
	})
	return cmd
}

func formatLocation(loc domain.CityLocation) string {
	return loc.City.Name + ", " + loc.District.Name + ", " + loc.Region.Name
}

func newCategoriesCmd(app *App) *cobra.Command {
	var pathOf int64
	cmd := &cobra.Command{
		Use:   "categories",
		Short: "Print the category tree",
		RunE: func(cmd *cobra.Command, _ []string) error {
			tree, err := app.Backend.ListCategoriesAsTree(cmd.Context())
			if err != nil {
				return err
			}
			if pathOf > 0 {
				path := categorytree.Path(tree, pathOf)
				if len(path) == 0 {
					return fmt.Errorf("category %d: %w", pathOf, domain.ErrNotFound)
				}
				names := make([]string, len(path))
				for i, node := range path {
					names[i] = node.Name
				}
				app.printf("%s\n", strings.Join(names, " / "))
				return nil
			}
			printTree(app, tree, 0)
			return nil
		},
	}
	cmd.Flags().Int64Var(&pathOf, "path", 0, "print the path from the root to this category")
	return cmd
}

func printTree(app *App, nodes []domain.CategoryNode, depth int) {
	for _, node := range nodes {
		app.printf("%s%s (%d)\n", strings.Repeat("  ", depth), node.Name, node.ID)
		printTree(app, node.Children, depth+1)
	}
}
