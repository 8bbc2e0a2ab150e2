package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pratik-mahalle/dashlist/internal/dashboardlist"
	"github.com/pratik-mahalle/dashlist/pkg/query"
)

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show server health and dashboard counts",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			health, err := apiClient.Health(ctx)
			if err != nil {
				return fmt.Errorf("server unreachable: %w", err)
			}

			counts := []countLine{
				{label: "Total"},
				{label: "Published", filter: &query.Filter{Col: dashboardlist.ColumnPublished, Opr: query.OpEquals, Value: true}},
				{label: "Certified", filter: &query.Filter{Col: dashboardlist.ColumnID, Opr: query.OpDashboardIsCertified, Value: true}},
			}
			if apiClient.GetToken() != "" {
				counts = append(counts, countLine{label: "Favorites", filter: &query.Filter{Col: dashboardlist.ColumnID, Opr: query.OpDashboardIsFavorite, Value: true}})
			}

			summary := map[string]interface{}{
				"server":   health.Status,
				"database": health.Database,
			}
			for _, c := range counts {
				n, err := countDashboards(ctx, c.filter)
				if err != nil {
					summary[strings.ToLower(c.label)] = fmt.Sprintf("error: %v", err)
					continue
				}
				summary[strings.ToLower(c.label)] = n
			}

			if getOutputFormat() != "table" {
				return printOutput(summary)
			}

			fmt.Println("dashlist")
			fmt.Println(strings.Repeat("=", 40))
			fmt.Printf("  Server:     %s (database %s)\n", health.Status, health.Database)
			for _, c := range counts {
				fmt.Printf("  %-11s %v\n", c.label+":", summary[strings.ToLower(c.label)])
			}
			return nil
		},
	}
}

type countLine struct {
	label  string
	filter *query.Filter
}

func countDashboards(ctx context.Context, f *query.Filter) (int64, error) {
	q := query.Query{PageSize: 1}
	if f != nil {
		q.Filters = []query.Filter{*f}
	}
	resp, err := apiClient.Dashboards().List(ctx, q)
	if err != nil {
		return 0, err
	}
	return resp.Count, nil
}
