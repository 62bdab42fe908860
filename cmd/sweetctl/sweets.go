package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"

	"github.com/erazemk/sweetshop/internal/imaging"
	"github.com/erazemk/sweetshop/internal/model"
)

var errInvalidNumbers = errors.New("Price and quantity must be valid positive values")

func newListCmd(a *app) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List all sweets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireSession(); err != nil {
				return err
			}
			sweets, err := a.inventory.List(cmd.Context())
			if err != nil {
				return err
			}

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(sweets)
			}

			t := table.NewWriter()
			t.SetOutputMirror(cmd.OutOrStdout())
			t.SetStyle(table.StyleLight)
			t.AppendHeader(table.Row{"ID", "Name", "Category", "Price", "Qty"})
			t.SetColumnConfigs([]table.ColumnConfig{
				{Number: 4, Align: text.AlignRight},
				{Number: 5, Align: text.AlignRight},
			})
			for _, s := range sweets {
				t.AppendRow(table.Row{s.ID, s.Name, s.Category, formatPrice(s.Price), s.Quantity})
			}
			t.AppendFooter(table.Row{"", fmt.Sprintf("%d sweets", len(sweets))})
			t.Render()
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON instead of a table")
	return cmd
}

func formatPrice(p float64) string {
	return "₹" + strconv.FormatFloat(p, 'f', -1, 64)
}

// sweetFlags are the editable fields shared by add and update.
type sweetFlags struct {
	name        string
	category    string
	price       float64
	quantity    int
	image       string
	description string
}

func (f *sweetFlags) register(cmd *cobra.Command) {
	fl := cmd.Flags()
	fl.StringVarP(&f.name, "name", "n", "", "name")
	fl.StringVarP(&f.category, "category", "c", model.CategoryChocolate, "one of: "+strings.Join(model.Categories, ", "))
	fl.Float64VarP(&f.price, "price", "p", 0, "price, must be positive")
	fl.IntVarP(&f.quantity, "quantity", "q", 0, "quantity in stock")
	fl.StringVar(&f.image, "image", "", "image URL, or a local JPEG/PNG file to embed")
	fl.StringVar(&f.description, "description", "", "description")
}

// apply copies the flags the user set onto in.
func (f *sweetFlags) apply(cmd *cobra.Command, in *model.ItemInput) error {
	changed := cmd.Flags().Changed
	if changed("name") {
		in.Name = f.name
	}
	if changed("category") || in.Category == "" {
		in.Category = f.category
	}
	if changed("price") {
		in.Price = f.price
	}
	if changed("quantity") {
		in.Quantity = f.quantity
	}
	if changed("description") {
		in.Description = f.description
	}
	if changed("image") {
		img, err := resolveImage(f.image)
		if err != nil {
			return err
		}
		in.Image = img
	}
	return nil
}

// resolveImage embeds local files as data URIs and passes anything else through.
func resolveImage(v string) (string, error) {
	if v == "" || strings.HasPrefix(v, "http://") || strings.HasPrefix(v, "https://") || strings.HasPrefix(v, "data:") {
		return v, nil
	}
	f, err := os.Open(v)
	if err != nil {
		return "", fmt.Errorf("opening image: %w", err)
	}
	defer f.Close()
	return imaging.ToDataURI(f)
}

func checkInput(in model.ItemInput) error {
	if !model.ValidPrice(in.Price) || in.Quantity < 0 {
		return errInvalidNumbers
	}
	return in.Validate()
}

func newAddCmd(a *app) *cobra.Command {
	var f sweetFlags
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a sweet (admin)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireAdmin(); err != nil {
				return err
			}
			var in model.ItemInput
			if err := f.apply(cmd, &in); err != nil {
				return err
			}
			if err := checkInput(in); err != nil {
				return err
			}
			if err := a.inventory.Create(cmd.Context(), in); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added %s\n", in.Name)
			return nil
		},
	}
	f.register(cmd)
	cmd.MarkFlagRequired("name")
	cmd.MarkFlagRequired("price")
	return cmd
}

func newUpdateCmd(a *app) *cobra.Command {
	var f sweetFlags
	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Change a sweet's fields (admin)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireAdmin(); err != nil {
				return err
			}
			sweets, err := a.inventory.List(cmd.Context())
			if err != nil {
				return err
			}
			var in *model.ItemInput
			for _, s := range sweets {
				if s.ID == args[0] {
					v := s.Input()
					in = &v
					break
				}
			}
			if in == nil {
				return fmt.Errorf("no sweet with id %q", args[0])
			}

			if err := f.apply(cmd, in); err != nil {
				return err
			}
			if err := checkInput(*in); err != nil {
				return err
			}
			if err := a.inventory.Update(cmd.Context(), args[0], *in); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated %s\n", in.Name)
			return nil
		},
	}
	f.register(cmd)
	return cmd
}

func newDeleteCmd(a *app) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a sweet (admin)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireAdmin(); err != nil {
				return err
			}
			if !yes {
				answer, err := a.prompt(cmd, "Are you sure you want to delete this sweet? [y/N] ")
				if err != nil {
					return err
				}
				if ans := strings.ToLower(strings.TrimSpace(answer)); ans != "y" && ans != "yes" {
					fmt.Fprintln(cmd.OutOrStdout(), "Cancelled")
					return nil
				}
			}
			if err := a.inventory.Delete(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", args[0])
			return nil
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "don't ask for confirmation")
	return cmd
}

func newRestockCmd(a *app) *cobra.Command {
	var amount int
	cmd := &cobra.Command{
		Use:   "restock <id>",
		Short: "Add stock to a sweet (admin)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireAdmin(); err != nil {
				return err
			}
			if amount <= 0 {
				return errors.New("amount must be positive")
			}
			if err := a.inventory.Restock(cmd.Context(), args[0], amount); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Restocked %s by %d\n", args[0], amount)
			return nil
		},
	}
	cmd.Flags().IntVarP(&amount, "amount", "a", model.DefaultRestockAmount, "units to add")
	return cmd
}
