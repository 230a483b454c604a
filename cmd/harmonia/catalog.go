package main

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/harmonia-app/harmonia/internal/catalog"
	"github.com/harmonia-app/harmonia/internal/cli"
	"github.com/harmonia-app/harmonia/internal/model"
	"github.com/harmonia-app/harmonia/internal/service"
)

func catalogCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Manage catalog trees",
		Long:  `List, browse, grow and search the hierarchical catalogs shared by all harmonia domains.`,
	}

	cmd.AddCommand(listCatalogCmd())
	cmd.AddCommand(treeCatalogCmd())
	cmd.AddCommand(getCatalogCmd())
	cmd.AddCommand(addCatalogCmd())
	cmd.AddCommand(updateCatalogCmd())
	cmd.AddCommand(deleteCatalogCmd())
	cmd.AddCommand(searchCatalogCmd())

	return cmd
}

func listCatalogCmd() *cobra.Command {
	var (
		parentID        string
		includeInactive bool
	)

	cmd := &cobra.Command{
		Use:   "list <catalog-type>",
		Short: "List catalog items of one type",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			catalogType, err := parseCatalogType(args[0])
			if err != nil {
				return err
			}
			userID, err := requireUser()
			if err != nil {
				return err
			}

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			in := catalog.ListInput{CatalogType: catalogType, IncludeInactive: includeInactive}
			if parentID != "" {
				in.ParentID = &parentID
			}

			items, err := catalog.NewService(store).List(ctx, in, userID)
			if err != nil {
				return fmt.Errorf("%s: %s", describeError(err), userMessage(err))
			}

			if len(items) == 0 {
				fmt.Println(cli.InfoStyle.Render("No catalog items found."))
				return nil
			}

			printItemTable(items)
			return nil
		},
	}

	cmd.Flags().StringVar(&parentID, "parent", "", "only items under this parent id")
	cmd.Flags().BoolVar(&includeInactive, "all", false, "include deactivated items")

	return cmd
}

func treeCatalogCmd() *cobra.Command {
	var includeInactive bool

	cmd := &cobra.Command{
		Use:   "tree <catalog-type>",
		Short: "Show one catalog as a tree",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			catalogType, err := parseCatalogType(args[0])
			if err != nil {
				return err
			}
			userID, err := requireUser()
			if err != nil {
				return err
			}

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			roots, err := catalog.NewService(store).Tree(ctx,
				catalog.ListInput{CatalogType: catalogType, IncludeInactive: includeInactive}, userID)
			if err != nil {
				return fmt.Errorf("%s: %s", describeError(err), userMessage(err))
			}

			if len(roots) == 0 {
				fmt.Println(cli.InfoStyle.Render("Catalog is empty."))
				return nil
			}

			fmt.Println(cli.TitleStyle.Render(string(catalogType)))
			for _, root := range roots {
				printTree(root, "")
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&includeInactive, "all", false, "include deactivated items")

	return cmd
}

// printTree renders a node and its subtree with branch glyphs.
func printTree(node *model.TreeNode, prefix string) {
	label := node.Name
	if node.Icon != "" {
		label = node.Icon + " " + label
	}
	if node.IsSystem {
		label += " " + cli.SubtleStyle.Render(cli.SystemIcon)
	}
	if !node.IsActive {
		label += " " + cli.WarningStyle.Render("(inactive)")
	}
	fmt.Println(prefix + label + "  " + cli.SubtleStyle.Render(node.ID))

	for i, child := range node.Children {
		connector := "├── "
		childPrefix := prefix + "│   "
		if i == len(node.Children)-1 {
			connector = "└── "
			childPrefix = prefix + "    "
		}
		fmt.Print(cli.TreeBranchStyle.Render(prefix + connector))
		printTree(child, childPrefix)
	}
}

func getCatalogCmd() *cobra.Command {
	var withUsage bool

	cmd := &cobra.Command{
		Use:   "get <id>",
		Short: "Show one catalog item",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			userID, err := requireUser()
			if err != nil {
				return err
			}

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			detail, err := catalog.NewService(store).Get(ctx, args[0], userID, withUsage)
			if err != nil {
				return fmt.Errorf("%s: %s", describeError(err), userMessage(err))
			}

			printDetail(detail)
			return nil
		},
	}

	cmd.Flags().BoolVar(&withUsage, "usage", false, "include the usage count")

	return cmd
}

func printDetail(detail *catalog.ItemDetail) {
	item := detail.Item

	fmt.Println(cli.TitleStyle.Render(item.Name))
	if len(detail.Breadcrumbs) > 0 {
		parts := make([]string, 0, len(detail.Breadcrumbs))
		for _, crumb := range detail.Breadcrumbs {
			parts = append(parts, crumb.Name)
		}
		fmt.Println(cli.SubtleStyle.Render(strings.Join(parts, " › ")))
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "ID\t%s\n", item.ID)
	fmt.Fprintf(w, "Type\t%s\n", item.CatalogType)
	fmt.Fprintf(w, "Slug\t%s\n", item.Slug)
	fmt.Fprintf(w, "Level\t%d\n", item.Level)
	if item.Description != "" {
		fmt.Fprintf(w, "Description\t%s\n", item.Description)
	}
	owner := "system"
	if item.UserID != nil {
		owner = *item.UserID
	}
	fmt.Fprintf(w, "Owner\t%s\n", owner)
	fmt.Fprintf(w, "Active\t%t\n", item.IsActive)
	if detail.UsageCount != nil {
		fmt.Fprintf(w, "Usage\t%d\n", *detail.UsageCount)
	}
	_ = w.Flush()

	if len(detail.Children) > 0 {
		fmt.Println()
		fmt.Println(cli.BoldStyle.Render("Children"))
		printItemTable(detail.Children)
	}
}

func printItemTable(items []model.CatalogItem) {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	defer func() { _ = w.Flush() }()

	fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
		cli.TableHeaderStyle.Render("Name"),
		cli.TableHeaderStyle.Render("Slug"),
		cli.TableHeaderStyle.Render("Level"),
		cli.TableHeaderStyle.Render("Owner"),
		cli.TableHeaderStyle.Render("ID"))

	for _, item := range items {
		owner := "system"
		if item.UserID != nil {
			owner = *item.UserID
		}
		name := item.Name
		if !item.IsActive {
			name += " (inactive)"
		}
		fmt.Fprintf(w, "%s\t%s\t%d\t%s\t%s\n", name, item.Slug, item.Level, owner, item.ID)
	}
}

func addCatalogCmd() *cobra.Command {
	var in catalog.CreateInput
	var parentID string

	cmd := &cobra.Command{
		Use:   "add <catalog-type> <name>",
		Short: "Create a catalog item",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			catalogType, err := parseCatalogType(args[0])
			if err != nil {
				return err
			}
			userID, err := requireUser()
			if err != nil {
				return err
			}

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			in.CatalogType = catalogType
			in.Name = args[1]
			if parentID != "" {
				in.ParentID = &parentID
			}

			detail, err := catalog.NewService(store).Create(ctx, in, userID)
			if err != nil {
				return fmt.Errorf("%s: %s", describeError(err), userMessage(err))
			}

			fmt.Println(cli.FormatSuccess(fmt.Sprintf("Created %q (%s)", detail.Item.Name, detail.Item.ID)))
			return nil
		},
	}

	cmd.Flags().StringVar(&parentID, "parent", "", "parent item id")
	cmd.Flags().StringVar(&in.Slug, "slug", "", "slug (derived from name when omitted)")
	cmd.Flags().StringVar(&in.Description, "description", "", "description")
	cmd.Flags().StringVar(&in.Icon, "icon", "", "icon")
	cmd.Flags().StringVar(&in.Color, "color", "", "display color")
	cmd.Flags().IntVar(&in.SortOrder, "sort-order", 0, "ordering among siblings")

	return cmd
}

func updateCatalogCmd() *cobra.Command {
	var (
		name        string
		description string
		icon        string
		color       string
		sortOrder   int
		activate    bool
		deactivate  bool
	)

	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Update a catalog item",
		Long: `Update the editable fields of a catalog item you own.

The catalog type, parent and slug are fixed at creation and cannot change.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			userID, err := requireUser()
			if err != nil {
				return err
			}

			var patch service.ItemPatch
			if cmd.Flags().Changed("name") {
				patch.Name = &name
			}
			if cmd.Flags().Changed("description") {
				patch.Description = &description
			}
			if cmd.Flags().Changed("icon") {
				patch.Icon = &icon
			}
			if cmd.Flags().Changed("color") {
				patch.Color = &color
			}
			if cmd.Flags().Changed("sort-order") {
				patch.SortOrder = &sortOrder
			}
			if activate && deactivate {
				return fmt.Errorf("--activate and --deactivate are mutually exclusive")
			}
			if activate || deactivate {
				patch.IsActive = &activate
			}

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			item, err := catalog.NewService(store).Update(ctx, args[0], patch, userID)
			if err != nil {
				return fmt.Errorf("%s: %s", describeError(err), userMessage(err))
			}

			fmt.Println(cli.FormatSuccess(fmt.Sprintf("Updated %q", item.Name)))
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "display name")
	cmd.Flags().StringVar(&description, "description", "", "description")
	cmd.Flags().StringVar(&icon, "icon", "", "icon")
	cmd.Flags().StringVar(&color, "color", "", "display color")
	cmd.Flags().IntVar(&sortOrder, "sort-order", 0, "ordering among siblings")
	cmd.Flags().BoolVar(&activate, "activate", false, "reactivate the item")
	cmd.Flags().BoolVar(&deactivate, "deactivate", false, "deactivate the item")

	return cmd
}

func deleteCatalogCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a catalog item",
		Long: `Delete a catalog item you own.

Items still referenced by domain records (or with children) are
deactivated instead of removed, so existing records stay valid.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			userID, err := requireUser()
			if err != nil {
				return err
			}

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			result, err := catalog.NewService(store).Delete(ctx, args[0], userID)
			if err != nil {
				return fmt.Errorf("%s: %s", describeError(err), userMessage(err))
			}

			switch result.Outcome {
			case catalog.OutcomeDeleted:
				fmt.Println(cli.FormatSuccess("Item deleted."))
			case catalog.OutcomeDeactivated:
				fmt.Println(cli.FormatWarning(fmt.Sprintf(
					"Item is still in use (%d references); deactivated instead.", result.UsageCount)))
			}
			return nil
		},
	}
}

func searchCatalogCmd() *cobra.Command {
	var (
		parentID string
		limit    int
		offset   int
	)

	cmd := &cobra.Command{
		Use:   "search <catalog-type> <query>",
		Short: "Search a catalog by name, slug or description",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			catalogType, err := parseCatalogType(args[0])
			if err != nil {
				return err
			}
			userID, err := requireUser()
			if err != nil {
				return err
			}

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			in := catalog.SearchInput{
				CatalogType: catalogType,
				Query:       args[1],
				Limit:       limit,
				Offset:      offset,
			}
			if parentID != "" {
				in.ParentID = &parentID
			}

			page, err := catalog.NewService(store).Search(ctx, in, userID)
			if err != nil {
				return fmt.Errorf("%s: %s", describeError(err), userMessage(err))
			}

			if page.TotalCount == 0 {
				fmt.Println(cli.InfoStyle.Render("No matches."))
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
				cli.TableHeaderStyle.Render("Score"),
				cli.TableHeaderStyle.Render("Name"),
				cli.TableHeaderStyle.Render("Path"),
				cli.TableHeaderStyle.Render("ID"))
			for _, result := range page.Results {
				parts := make([]string, 0, len(result.Breadcrumbs))
				for _, crumb := range result.Breadcrumbs {
					parts = append(parts, crumb.Name)
				}
				fmt.Fprintf(w, "%d\t%s\t%s\t%s\n",
					result.RelevanceScore, result.Item.Name,
					strings.Join(parts, " › "), result.Item.ID)
			}
			_ = w.Flush()

			fmt.Println(cli.SubtleStyle.Render(fmt.Sprintf(
				"Showing %d of %d (offset %d)", page.Count, page.TotalCount, page.Offset)))
			if page.HasMore {
				fmt.Println(cli.SubtleStyle.Render(fmt.Sprintf(
					"More results: rerun with --offset %d", page.Offset+page.Count)))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&parentID, "parent", "", "only items under this parent id")
	cmd.Flags().IntVar(&limit, "limit", catalog.DefaultSearchLimit, "page size (max 100)")
	cmd.Flags().IntVar(&offset, "offset", 0, "page offset")

	return cmd
}
