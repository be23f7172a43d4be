package cli

import (
	"fmt"
	"strings"

	"github.com/Abdurahmanit/GroupProject/classifieds/internal/client/filters"
	"github.com/Abdurahmanit/GroupProject/classifieds/internal/client/forms"
	"github.com/Abdurahmanit/GroupProject/classifieds/internal/domain"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

func newAdCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ad",
		Short: "Show and manage advertisements",
	}
	cmd.AddCommand(
		newAdShowCmd(app),
		newAdCreateCmd(app),
		newAdEditCmd(app),
		newAdDeleteCmd(app),
	)
	return cmd
}

func newAdShowCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show an advertisement",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			detail, err := app.Backend.GetAdvertisement(cmd.Context(), id)
			if err != nil {
				return err
			}
			printAd(app, detail)
			return nil
		},
	}
}

func printAd(app *App, d *domain.AdvertisementDetail) {
	app.printf("#%d %s\n", d.ID, d.Title)
	app.printf("Price:     %.2f\n", d.Price)
	app.printf("Condition: %s\n", d.Condition)
	app.printf("Status:    %s\n", d.Status)
	app.printf("Category:  %s\n", d.CategoryName)
	app.printf("Location:  %s\n", formatLocation(d.Location))
	seller := d.Seller.FirstName
	if d.Seller.Phone != "" {
		seller += ", " + d.Seller.Phone
	}
	app.printf("Seller:    %s\n", seller)
	if preview, ok := d.PreviewImage(); ok {
		app.printf("Preview:   %s\n", preview.URL)
	}
	if len(d.Images) > 1 {
		app.printf("Images:    %d\n", len(d.Images))
	}
	app.printf("\n%s\n", d.Description)
}

// adFlags registers the editable advertisement fields on fs.
func adFlags(fs *pflag.FlagSet) {
	fs.String("title", "", "title")
	fs.String("description", "", "description")
	fs.String("price", "", "price")
	fs.String("condition", "", "NEW, USED_PERFECT, USED_LIKE_NEW, USED_GOOD or USED_FAIR")
	fs.String("status", "", "ACTIVE, INACTIVE or SOLD")
	fs.Int64("category", 0, "category id")
	fs.Int64("city", 0, "city id")
	fs.StringSlice("image", nil, "path to an image, repeatable")
	fs.Int("preview", -1, "index of the --image used as preview")
}

// applyAdFlags overwrites the form fields whose flags were set.
func applyAdFlags(fs *pflag.FlagSet, form *forms.AdForm) error {
	if fs.Changed("title") {
		form.Title, _ = fs.GetString("title")
	}
	if fs.Changed("description") {
		form.Description, _ = fs.GetString("description")
	}
	if fs.Changed("price") {
		raw, _ := fs.GetString("price")
		price, err := filters.ParsePrice(raw)
		if err != nil {
			return forms.ValidationErrors{"price": "must be a non-negative number"}
		}
		form.Price = &price
	}
	if fs.Changed("condition") {
		v, _ := fs.GetString("condition")
		form.Condition = domain.Condition(strings.ToUpper(v))
	}
	if fs.Changed("status") {
		v, _ := fs.GetString("status")
		form.Status = domain.AdStatus(strings.ToUpper(v))
	}
	if fs.Changed("category") {
		form.CategoryID, _ = fs.GetInt64("category")
	}
	if fs.Changed("city") {
		form.CityID, _ = fs.GetInt64("city")
	}
	paths, _ := fs.GetStringSlice("image")
	clearImages, _ := fs.GetBool("clear-images")
	if len(paths) == 0 {
		if clearImages {
			form.Images = []domain.ImageUpload{}
		}
		return nil
	}
	preview, _ := fs.GetInt("preview")
	if preview >= len(paths) {
		return forms.ValidationErrors{"images": fmt.Sprintf("preview index %d is out of range", preview)}
	}
	form.Images = make([]domain.ImageUpload, 0, len(paths))
	for i, path := range paths {
		upload, err := readUpload(path)
		if err != nil {
			return err
		}
		upload.Preview = i == preview
		form.Images = append(form.Images, upload)
	}
	return nil
}

func newAdCreateCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Publish a new advertisement",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if _, err := requireSession(app); err != nil {
				return err
			}
			var form forms.AdForm
			if err := applyAdFlags(cmd.Flags(), &form); err != nil {
				return err
			}
			detail, err := app.Forms.SubmitAd(cmd.Context(), form)
			if err != nil {
				return err
			}
			app.printf("Advertisement %d published\n", detail.ID)
			return nil
		},
	}
	adFlags(cmd.Flags())
	return cmd
}

func newAdEditCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Edit one of your advertisements",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := requireSession(app); err != nil {
				return err
			}
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			current, err := app.Backend.GetAdvertisement(cmd.Context(), id)
			if err != nil {
				return err
			}
			if current.SellerID != app.Session.Identity().UserID {
				return fmt.Errorf("advertisement %d: %w", id, domain.ErrForbidden)
			}
			form := forms.AdFormFrom(current.Advertisement)
			if err := applyAdFlags(cmd.Flags(), &form); err != nil {
				return err
			}
			detail, err := app.Forms.SubmitAd(cmd.Context(), form)
			if err != nil {
				return err
			}
			app.printf("Advertisement %d saved\n", detail.ID)
			return nil
		},
	}
	adFlags(cmd.Flags())
	cmd.Flags().Bool("clear-images", false, "remove every stored image")
	return cmd
}

func newAdDeleteCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete one of your advertisements",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			token, err := requireSession(app)
			if err != nil {
				return err
			}
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			if err := app.Backend.DeleteAdvertisement(cmd.Context(), id, token); err != nil {
				return err
			}
			app.printf("Advertisement %d deleted\n", id)
			return nil
		},
	}
}
