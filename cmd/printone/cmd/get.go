package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	printone "github.com/print-one/printone-go"
)

var getCmd = &cobra.Command{
	Use:   "get",
	Short: "List resources",
}

var getTemplatesCmd = &cobra.Command{
	Use:     "templates",
	Aliases: []string{"template", "tpl"},
	Short:   "List templates",
	RunE:    runGetTemplates,
}

var getOrdersCmd = &cobra.Command{
	Use:     "orders",
	Aliases: []string{"order"},
	Short:   "List orders",
	RunE:    runGetOrders,
}

var getBatchesCmd = &cobra.Command{
	Use:     "batches",
	Aliases: []string{"batch"},
	Short:   "List batches",
	RunE:    runGetBatches,
}

var getCouponsCmd = &cobra.Command{
	Use:     "coupons",
	Aliases: []string{"coupon"},
	Short:   "List coupons",
	RunE:    runGetCoupons,
}

var getWebhooksCmd = &cobra.Command{
	Use:     "webhooks",
	Aliases: []string{"webhook", "wh"},
	Short:   "List webhooks",
	RunE:    runGetWebhooks,
}

func addListFlags(cmd *cobra.Command) {
	cmd.Flags().Int("page", 1, "Page number")
	cmd.Flags().Int("limit", 20, "Items per page")
	cmd.Flags().StringSlice("sort", nil, "Sort fields as field:ASC or field:DESC")
}

func init() {
	for _, c := range []*cobra.Command{getTemplatesCmd, getOrdersCmd, getBatchesCmd, getCouponsCmd, getWebhooksCmd} {
		addListFlags(c)
	}

	// templates flags
	getTemplatesCmd.Flags().StringSlice("name", nil, "Filter by name")
	getTemplatesCmd.Flags().String("label", "", "Filter by label")

	// orders flags
	getOrdersCmd.Flags().StringSlice("status", nil, "Filter by friendly status (Processing, Success, Sent, Scheduled, Cancelled, Failed)")
	getOrdersCmd.Flags().String("batch", "", "Filter by batch id")

	// batches flags
	getBatchesCmd.Flags().StringSlice("status", nil, "Filter by status")
	getBatchesCmd.Flags().String("name", "", "Filter by name")

	// coupons flags
	getCouponsCmd.Flags().String("name", "", "Filter by name")

	getCmd.AddCommand(getTemplatesCmd)
	getCmd.AddCommand(getOrdersCmd)
	getCmd.AddCommand(getBatchesCmd)
	getCmd.AddCommand(getCouponsCmd)
	getCmd.AddCommand(getWebhooksCmd)
}

func listOptions(cmd *cobra.Command) (printone.ListOptions, error) {
	opts := printone.ListOptions{}
	opts.Page, _ = cmd.Flags().GetInt("page")
	opts.Limit, _ = cmd.Flags().GetInt("limit")

	sorts, _ := cmd.Flags().GetStringSlice("sort")
	for _, s := range sorts {
		sort, err := printone.ParseSort(s)
		if err != nil {
			return opts, err
		}
		opts.SortBy = append(opts.SortBy, sort)
	}
	return opts, nil
}

func stringsAs[S ~string](values []string) []S {
	out := make([]S, 0, len(values))
	for _, v := range values {
		out = append(out, S(v))
	}
	return out
}

func runGetTemplates(cmd *cobra.Command, args []string) error {
	client := mustClient()

	opts, err := listOptions(cmd)
	if err != nil {
		return err
	}
	q := printone.TemplateQuery{ListOptions: opts}
	q.Name, _ = cmd.Flags().GetStringSlice("name")
	if v, _ := cmd.Flags().GetString("label"); v != "" {
		q.Labels = &printone.ContainsFilter{Value: v}
	}

	page, err := client.Templates(cmd.Context(), q)
	if err != nil {
		return err
	}

	views := mapViews(page.Data(), newTemplateView)
	if printStructured(views) {
		return nil
	}

	t := newTable("ID", "NAME", "FORMAT", "VERSION", "UPDATED")
	for _, v := range views {
		t.AddRow(v.ID, truncate(v.Name, 40), string(v.Format), strconv.Itoa(v.Version), shortTime(v.UpdatedAt))
	}
	t.Flush()
	printPagination(page.Meta())
	return nil
}

func runGetOrders(cmd *cobra.Command, args []string) error {
	client := mustClient()

	opts, err := listOptions(cmd)
	if err != nil {
		return err
	}
	q := printone.OrderQuery{ListOptions: opts}
	status, _ := cmd.Flags().GetStringSlice("status")
	q.FriendlyStatus = stringsAs[printone.FriendlyStatus](status)
	if v, _ := cmd.Flags().GetString("batch"); v != "" {
		q.BatchID = printone.Equals(v)
	}

	page, err := client.Orders(cmd.Context(), q)
	if err != nil {
		return err
	}

	views := mapViews(page.Data(), newOrderView)
	if printStructured(views) {
		return nil
	}

	t := newTable("ID", "STATUS", "RECIPIENT", "CITY", "SEND DATE")
	for _, v := range views {
		t.AddRow(v.ID, string(v.FriendlyStatus), truncate(v.Recipient.Name, 30), v.Recipient.City, shortTime(v.SendDate))
	}
	t.Flush()
	printPagination(page.Meta())
	return nil
}

func runGetBatches(cmd *cobra.Command, args []string) error {
	client := mustClient()

	opts, err := listOptions(cmd)
	if err != nil {
		return err
	}
	q := printone.BatchQuery{ListOptions: opts}
	status, _ := cmd.Flags().GetStringSlice("status")
	q.Status = stringsAs[printone.BatchStatus](status)
	if v, _ := cmd.Flags().GetString("name"); v != "" {
		q.Name = &printone.ContainsFilter{Value: v}
	}

	page, err := client.Batches(cmd.Context(), q)
	if err != nil {
		return err
	}

	views := mapViews(page.Data(), newBatchView)
	if printStructured(views) {
		return nil
	}

	t := newTable("ID", "NAME", "STATUS", "ORDERS", "CREATED")
	for _, v := range views {
		t.AddRow(v.ID, truncate(v.Name, 30), string(v.Status), strconv.Itoa(v.Orders.Total()), shortTime(v.CreatedAt))
	}
	t.Flush()
	printPagination(page.Meta())
	return nil
}

func runGetCoupons(cmd *cobra.Command, args []string) error {
	client := mustClient()

	opts, err := listOptions(cmd)
	if err != nil {
		return err
	}
	q := printone.CouponQuery{ListOptions: opts}
	if v, _ := cmd.Flags().GetString("name"); v != "" {
		q.Name = &printone.ContainsFilter{Value: v}
	}

	page, err := client.Coupons(cmd.Context(), q)
	if err != nil {
		return err
	}

	views := mapViews(page.Data(), newCouponView)
	if printStructured(views) {
		return nil
	}

	t := newTable("ID", "NAME", "USED", "REMAINING")
	for _, v := range views {
		t.AddRow(v.ID, truncate(v.Name, 30), fmt.Sprintf("%d/%d", v.Stats.Used, v.Stats.Total), strconv.Itoa(v.Stats.Remaining))
	}
	t.Flush()
	printPagination(page.Meta())
	return nil
}

func runGetWebhooks(cmd *cobra.Command, args []string) error {
	client := mustClient()

	opts, err := listOptions(cmd)
	if err != nil {
		return err
	}

	page, err := client.Webhooks(cmd.Context(), opts)
	if err != nil {
		return err
	}

	views := mapViews(page.Data(), newWebhookView)
	if printStructured(views) {
		return nil
	}

	t := newTable("ID", "NAME", "ACTIVE", "EVENTS", "URL")
	for _, v := range views {
		t.AddRow(v.ID, truncate(v.Name, 30), boolToStr(v.Active), strconv.Itoa(len(v.Events)), v.URL)
	}
	t.Flush()
	printPagination(page.Meta())
	return nil
}
