package client_test

import (
	"context"
	"fmt"
	"log"

	"github.com/pratik-mahalle/dashlist/pkg/client"
	"github.com/pratik-mahalle/dashlist/pkg/query"
)

// Example demonstrates basic usage of the dashlist client
func Example() {
	c := client.NewClient(client.Config{
		BaseURL: "http://localhost:8080",
	})

	ctx := context.Background()

	loginResp, err := c.Login(ctx, "user@example.com", "password")
	if err != nil {
		log.Fatal(err)
	}

	fmt.Printf("Logged in as: %s\n", loginResp.User.Email)

	list, err := c.Dashboards().List(ctx, query.Query{PageSize: 25})
	if err != nil {
		log.Fatal(err)
	}

	fmt.Printf("Found %d dashboards\n", list.Count)
}

// ExampleDashboardService_List demonstrates listing dashboards with filters
func ExampleDashboardService_List() {
	c := client.NewClient(client.Config{
		BaseURL: "http://localhost:8080",
		Token:   "access-token",
	})

	list, err := c.Dashboards().List(context.Background(), query.Query{
		Filters: []query.Filter{
			{Col: "published", Opr: query.OpEquals, Value: true},
			{Col: "dashboard_title", Opr: query.OpTitleOrSlug, Value: "sales"},
		},
		OrderColumn:    "dashboard_title",
		OrderDirection: query.Asc,
		PageSize:       25,
	})
	if err != nil {
		log.Fatal(err)
	}

	for _, d := range list.Items {
		fmt.Printf("Dashboard: %s (%s)\n", d.DashboardTitle, d.ChangedOnDeltaHumanized)
	}
}

// ExampleDashboardService_BulkDelete demonstrates deleting several dashboards
func ExampleDashboardService_BulkDelete() {
	c := client.NewClient(client.Config{
		BaseURL: "http://localhost:8080",
		Token:   "access-token",
	})

	msg, err := c.Dashboards().BulkDelete(context.Background(), []int64{3, 4})
	if err != nil {
		if apiErr, ok := client.AsAPIError(err); ok && apiErr.IsForbidden() {
			log.Fatal("not allowed to delete these dashboards")
		}
		log.Fatal(err)
	}

	fmt.Println(msg)
}
