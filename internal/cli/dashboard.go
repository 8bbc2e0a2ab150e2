package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pratik-mahalle/dashlist/internal/collection"
	"github.com/pratik-mahalle/dashlist/internal/dashboardlist"
	"github.com/pratik-mahalle/dashlist/internal/pkg/utils"
	"github.com/pratik-mahalle/dashlist/pkg/client"
)

func newDashboardCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "dashboard",
		Aliases: []string{"dashboards", "db"},
		Short:   "Browse and manage dashboards",
	}

	cmd.AddCommand(newDashboardListCmd())
	cmd.AddCommand(newDashboardGetCmd())
	cmd.AddCommand(newDashboardEditCmd())
	cmd.AddCommand(newDashboardDeleteCmd())
	cmd.AddCommand(newDashboardFaveCmd())
	cmd.AddCommand(newDashboardOwnersCmd())

	return cmd
}

func preferences() dashboardlist.Preferences {
	return dashboardlist.Preferences{
		Thumbnails:  viper.GetBool("preferences.thumbnails"),
		DefaultView: dashboardlist.ViewMode(viper.GetString("preferences.default_view")),
	}
}

func openScreen(ctx context.Context) (*dashboardlist.Screen, *notifier, error) {
	user, err := currentUser(ctx)
	if err != nil {
		return nil, nil, err
	}
	n := newNotifier()
	screen := dashboardlist.New(dashboardlist.Options{
		API:         apiClient.Dashboards(),
		User:        user,
		Preferences: preferences(),
		Notifier:    n,
		Logger:      cliLogger,
	})
	return screen, n, nil
}

type listOutput struct {
	Count     int64              `json:"count" yaml:"count"`
	Page      int                `json:"page" yaml:"page"`
	PageSize  int                `json:"page_size" yaml:"page_size"`
	Items     []client.Dashboard `json:"items" yaml:"items"`
	Favorites map[int64]bool     `json:"favorites,omitempty" yaml:"favorites,omitempty"`
}

func newDashboardListCmd() *cobra.Command {
	var (
		page      int
		sortID    string
		owner     int64
		createdBy int64
		status    string
		favorite  string
		certified string
		search    string
		view      string
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List dashboards",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if page < 1 {
				return fmt.Errorf("page must be 1 or greater")
			}

			values := map[string]interface{}{}
			if cmd.Flags().Changed("owner") {
				values[dashboardlist.FilterOwner] = owner
			}
			if cmd.Flags().Changed("created-by") {
				values[dashboardlist.FilterCreatedBy] = createdBy
			}
			if status != "" {
				switch strings.ToLower(status) {
				case "published":
					values[dashboardlist.FilterStatus] = true
				case "draft":
					values[dashboardlist.FilterStatus] = false
				default:
					return fmt.Errorf("invalid status %q (want published or draft)", status)
				}
			}
			if favorite != "" {
				v, err := parseYesNo(favorite)
				if err != nil {
					return err
				}
				values[dashboardlist.FilterFavorite] = v
			}
			if certified != "" {
				v, err := parseYesNo(certified)
				if err != nil {
					return err
				}
				values[dashboardlist.FilterCertified] = v
			}
			if search != "" {
				values[dashboardlist.FilterSearchID] = search
			}

			screen, n, err := openScreen(ctx)
			if err != nil {
				return err
			}
			if err := screen.Fetch(ctx, page-1, sortID, values); err != nil {
				return n.check(err)
			}

			state := screen.State()
			if format := getOutputFormat(); format != "table" {
				return printOutput(listOutput{
					Count:     state.Count,
					Page:      page,
					PageSize:  screen.PageSize(),
					Items:     state.Items,
					Favorites: state.Favorites,
				})
			}

			mode := screen.View()
			if view != "" {
				mode = dashboardlist.ViewMode(view)
			}
			if mode == dashboardlist.ViewCard {
				renderCards(state, screen.Preferences().Thumbnails)
			} else {
				renderTable(state)
			}

			pages := utils.TotalPages(state.Count, screen.PageSize())
			if pages == 0 {
				pages = 1
			}
			fmt.Printf("\nPage %d of %d (%d dashboards)\n", page, pages, state.Count)
			return nil
		},
	}

	presets := make([]string, 0, 3)
	for _, p := range dashboardlist.SortPresets() {
		presets = append(presets, p.ID)
	}

	cmd.Flags().IntVar(&page, "page", 1, "page number")
	cmd.Flags().StringVar(&sortID, "sort", "", "sort: "+strings.Join(presets, ", ")+" (default: recently modified)")
	cmd.Flags().Int64Var(&owner, "owner", 0, "filter by owner user id")
	cmd.Flags().Int64Var(&createdBy, "created-by", 0, "filter by creator user id")
	cmd.Flags().StringVar(&status, "status", "", "filter by status (published, draft)")
	cmd.Flags().StringVar(&favorite, "favorite", "", "filter by favorite (yes, no)")
	cmd.Flags().StringVar(&certified, "certified", "", "filter by certification (yes, no)")
	cmd.Flags().StringVar(&search, "search", "", "search title or slug")
	cmd.Flags().StringVar(&view, "view", "", "view mode: table, card (overrides preferences)")

	return cmd
}

func renderTable(state collection.State[client.Dashboard]) {
	headers := []string{"ID", "TITLE", "STATUS", "MODIFIED BY", "MODIFIED", "OWNERS", "CERTIFIED"}
	withFav := state.Favorites != nil
	if withFav {
		headers = append(headers, "FAV")
	}

	t := NewTable(headers...)
	for _, d := range state.Items {
		row := []string{
			strconv.FormatInt(d.ID, 10),
			truncate(d.DashboardTitle, 40),
			formatStatus(d.Status),
			d.ChangedByName,
			d.ChangedOnDeltaHumanized,
			truncate(ownerNames(d.Owners), 30),
			formatBool(d.IsCertified()),
		}
		if withFav {
			v, _ := state.IsFavorite(d.ID)
			row = append(row, formatBool(v))
		}
		t.AddRow(row...)
	}
	t.Render()
}

func renderCards(state collection.State[client.Dashboard], thumbnails bool) {
	for i, d := range state.Items {
		if i > 0 {
			fmt.Println()
		}
		star := "   "
		if v, _ := state.IsFavorite(d.ID); v {
			star = "[*]"
		}
		fmt.Printf("%s %s (#%d)\n", star, d.DashboardTitle, d.ID)
		fmt.Printf("    %s, modified %s by %s\n", formatStatus(d.Status), d.ChangedOnDeltaHumanized, d.ChangedByName)
		if len(d.Owners) > 0 {
			fmt.Printf("    Owners: %s\n", ownerNames(d.Owners))
		}
		if d.IsCertified() {
			fmt.Printf("    Certified by %s\n", d.CertifiedBy)
		}
		if thumbnails && d.URL != "" {
			fmt.Printf("    Preview: %s%s\n", strings.TrimRight(viper.GetString("server_url"), "/"), d.URL)
		}
	}
}

func ownerNames(owners []client.Owner) string {
	names := make([]string, len(owners))
	for i, o := range owners {
		names[i] = o.Name()
	}
	return strings.Join(names, ", ")
}

func newDashboardGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Get dashboard details",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			d, err := apiClient.Dashboards().Get(cmd.Context(), id)
			if err != nil {
				return fmt.Errorf("failed to get dashboard: %w", err)
			}

			if getOutputFormat() != "table" {
				return printOutput(d)
			}

			fmt.Printf("ID:         %d\n", d.ID)
			fmt.Printf("Title:      %s\n", d.DashboardTitle)
			fmt.Printf("Slug:       %s\n", d.Slug)
			fmt.Printf("URL:        %s\n", d.URL)
			fmt.Printf("Status:     %s\n", formatStatus(d.Status))
			fmt.Printf("Owners:     %s\n", ownerNames(d.Owners))
			if d.CreatedBy != nil {
				fmt.Printf("Created by: %s (%s)\n", d.CreatedBy.Name(), d.CreatedOnDeltaHumanized)
			}
			fmt.Printf("Modified:   %s by %s\n", d.ChangedOnDeltaHumanized, d.ChangedByName)
			if d.IsCertified() {
				fmt.Printf("Certified:  %s\n", d.CertifiedBy)
				if d.CertificationDetails != "" {
					fmt.Printf("            %s\n", d.CertificationDetails)
				}
			}
			return nil
		},
	}
}

func newDashboardEditCmd() *cobra.Command {
	var (
		title, slug, css, metadata string
		certifiedBy, certDetails   string
		published                  bool
		owners                     []int64
	)

	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Edit dashboard properties",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireAuth(); err != nil {
				return err
			}
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			var req client.UpdateDashboardRequest
			flags := cmd.Flags()
			changed := 0
			for _, name := range []string{"title", "slug", "css", "json-metadata", "certified-by", "certification-details", "published", "owners"} {
				if flags.Changed(name) {
					changed++
				}
			}
			if changed == 0 {
				return fmt.Errorf("nothing to update")
			}
			if flags.Changed("title") {
				req.DashboardTitle = &title
			}
			if flags.Changed("slug") {
				req.Slug = &slug
			}
			if flags.Changed("css") {
				req.CSS = &css
			}
			if flags.Changed("json-metadata") {
				req.JSONMetadata = &metadata
			}
			if flags.Changed("certified-by") {
				req.CertifiedBy = &certifiedBy
			}
			if flags.Changed("certification-details") {
				req.CertificationDetails = &certDetails
			}
			if flags.Changed("published") {
				req.Published = &published
			}
			if flags.Changed("owners") {
				req.Owners = owners
			}

			screen, n, err := openScreen(cmd.Context())
			if err != nil {
				return err
			}
			if err := screen.Edit(cmd.Context(), id, req); err != nil {
				return n.check(err)
			}
			fmt.Printf("Dashboard %d updated\n", id)
			return nil
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "dashboard title")
	cmd.Flags().StringVar(&slug, "slug", "", "readable URL slug")
	cmd.Flags().StringVar(&css, "css", "", "custom CSS")
	cmd.Flags().StringVar(&metadata, "json-metadata", "", "JSON metadata")
	cmd.Flags().StringVar(&certifiedBy, "certified-by", "", "person or group that certified the dashboard")
	cmd.Flags().StringVar(&certDetails, "certification-details", "", "certification details")
	cmd.Flags().BoolVar(&published, "published", false, "publish or unpublish")
	cmd.Flags().Int64SliceVar(&owners, "owners", nil, "owner user ids")

	return cmd
}

func newDashboardDeleteCmd() *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "delete <id>...",
		Short: "Delete one or more dashboards",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireAuth(); err != nil {
				return err
			}
			ctx := cmd.Context()

			items := make([]client.Dashboard, 0, len(args))
			for _, arg := range args {
				id, err := parseID(arg)
				if err != nil {
					return err
				}
				items = append(items, client.Dashboard{ID: id})
			}

			if len(items) == 1 {
				d, err := apiClient.Dashboards().Get(ctx, items[0].ID)
				if err != nil {
					return fmt.Errorf("failed to get dashboard: %w", err)
				}
				items[0] = *d
			}

			if !yes && !confirm(fmt.Sprintf("Delete %d dashboard(s)? [y/N]: ", len(items))) {
				fmt.Println("Aborted")
				return nil
			}

			screen, n, err := openScreen(ctx)
			if err != nil {
				return err
			}
			if len(items) == 1 {
				err = screen.DeleteOne(ctx, items[0])
			} else {
				err = screen.DeleteMany(ctx, items)
			}
			if err != nil {
				return n.check(err)
			}

			fmt.Printf("%d dashboards remaining\n", screen.State().Count)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip confirmation")
	return cmd
}

func newDashboardFaveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "fave <id>",
		Short: "Toggle the favorite flag of a dashboard",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireAuth(); err != nil {
				return err
			}
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			ctx := cmd.Context()

			screen, n, err := openScreen(ctx)
			if err != nil {
				return err
			}
			if err := screen.FetchFavorites(ctx, []int64{id}); err != nil {
				return n.check(err)
			}
			if err := screen.ToggleFavorite(ctx, id); err != nil {
				return n.check(err)
			}

			if v, _ := screen.State().IsFavorite(id); v {
				fmt.Printf("Dashboard %d added to favorites\n", id)
			} else {
				fmt.Printf("Dashboard %d removed from favorites\n", id)
			}
			return nil
		},
	}
}

func newDashboardOwnersCmd() *cobra.Command {
	var (
		search    string
		page      int
		createdBy bool
	)

	cmd := &cobra.Command{
		Use:   "owners",
		Short: "List users available to the owner and created-by filters",
		RunE: func(cmd *cobra.Command, args []string) error {
			screen, _, err := openScreen(cmd.Context())
			if err != nil {
				return err
			}

			filterID := dashboardlist.FilterOwner
			if createdBy {
				filterID = dashboardlist.FilterCreatedBy
			}
			opts, count, err := screen.RelatedOptions(cmd.Context(), filterID, search, page-1)
			if err != nil {
				return fmt.Errorf("failed to list users: %w", err)
			}

			if getOutputFormat() != "table" {
				return printOutput(opts)
			}

			t := NewTable("ID", "NAME")
			for _, o := range opts {
				t.AddRow(fmt.Sprint(o.Value), o.Label)
			}
			t.Render()
			fmt.Printf("\nShowing %d of %d users\n", len(opts), count)
			return nil
		},
	}

	cmd.Flags().StringVar(&search, "search", "", "filter users by name")
	cmd.Flags().IntVar(&page, "page", 1, "page number")
	cmd.Flags().BoolVar(&createdBy, "created-by", false, "list dashboard creators instead of owners")

	return cmd
}

func parseID(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid dashboard id %q", raw)
	}
	return id, nil
}

func parseYesNo(raw string) (bool, error) {
	switch strings.ToLower(raw) {
	case "yes", "y", "true":
		return true, nil
	case "no", "n", "false":
		return false, nil
	}
	return false, fmt.Errorf("invalid value %q (want yes or no)", raw)
}

func confirm(prompt string) bool {
	fmt.Print(prompt)
	answer, _ := bufio.NewReader(os.Stdin).ReadString('\n')
	answer = strings.ToLower(strings.TrimSpace(answer))
	return answer == "y" || answer == "yes"
}
