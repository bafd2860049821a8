package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"gopkg.in/yaml.v3"

	printone "github.com/print-one/printone-go"
)

// Output format constants.
const (
	outputJSON = "json"
	outputYAML = "yaml"
)

func printJSON(v any) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: marshal JSON: %v\n", err)
		return
	}
	fmt.Println(string(data))
}

func printYAML(v any) {
	data, err := yaml.Marshal(v)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: marshal YAML: %v\n", err)
		return
	}
	fmt.Print(string(data))
}

// printStructured prints v when a structured output format was requested
// and reports whether it did.
func printStructured(v any) bool {
	switch flagOutput {
	case outputJSON:
		printJSON(v)
		return true
	case outputYAML:
		printYAML(v)
		return true
	}
	return false
}

type tableWriter struct {
	w       *tabwriter.Writer
	headers []string
}

func newTable(headers ...string) *tableWriter {
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	t := &tableWriter{w: w, headers: headers}
	fmt.Fprintln(w, strings.Join(headers, "\t"))
	return t
}

func (t *tableWriter) AddRow(values ...string) {
	fmt.Fprintln(t.w, strings.Join(values, "\t"))
}

func (t *tableWriter) Flush() {
	t.w.Flush()
}

func printPagination(meta printone.PageMeta) {
	if meta.Total == 0 {
		fmt.Println("No resources found.")
		return
	}
	start := (meta.Page-1)*meta.PageSize + 1
	end := meta.Page * meta.PageSize
	if end > meta.Total {
		end = meta.Total
	}
	fmt.Printf("\nShowing %d-%d of %d results (page %d/%d)\n", start, end, meta.Total, meta.Page, meta.Pages)
}

func boolToStr(b bool) string {
	if b {
		return "true"
	}
	return "false"
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}

func shortTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.UTC().Format("2006-01-02 15:04:05")
}

// Views of the entities for structured output.

type companyView struct {
	ID          string `json:"id" yaml:"id"`
	CompanyName string `json:"companyName" yaml:"companyName"`
	Email       string `json:"email" yaml:"email"`
	CanBeBilled bool   `json:"canBeBilled" yaml:"canBeBilled"`
}

type templateView struct {
	ID        string          `json:"id" yaml:"id"`
	Name      string          `json:"name" yaml:"name"`
	Format    printone.Format `json:"format" yaml:"format"`
	Labels    []string        `json:"labels" yaml:"labels"`
	Version   int             `json:"version" yaml:"version"`
	UpdatedAt time.Time       `json:"updatedAt" yaml:"updatedAt"`
}

func newTemplateView(t *printone.Template) templateView {
	return templateView{
		ID:        t.ID(),
		Name:      t.Name(),
		Format:    t.Format(),
		Labels:    t.Labels(),
		Version:   t.Version(),
		UpdatedAt: t.UpdatedAt(),
	}
}

type orderView struct {
	ID             string                  `json:"id" yaml:"id"`
	TemplateID     string                  `json:"templateId" yaml:"templateId"`
	Status         printone.OrderStatus    `json:"status" yaml:"status"`
	FriendlyStatus printone.FriendlyStatus `json:"friendlyStatus" yaml:"friendlyStatus"`
	Recipient      printone.Address        `json:"recipient" yaml:"recipient"`
	BatchID        string                  `json:"batchId,omitempty" yaml:"batchId,omitempty"`
	SendDate       time.Time               `json:"sendDate" yaml:"sendDate"`
	CreatedAt      time.Time               `json:"createdAt" yaml:"createdAt"`
}

func newOrderView(o *printone.Order) orderView {
	return orderView{
		ID:             o.ID(),
		TemplateID:     o.TemplateID(),
		Status:         o.Status(),
		FriendlyStatus: o.FriendlyStatus(),
		Recipient:      o.Recipient(),
		BatchID:        o.BatchID(),
		SendDate:       o.SendDate(),
		CreatedAt:      o.CreatedAt(),
	}
}

type batchView struct {
	ID         string                    `json:"id" yaml:"id"`
	Name       string                    `json:"name" yaml:"name"`
	TemplateID string                    `json:"templateId" yaml:"templateId"`
	Status     printone.BatchStatus      `json:"status" yaml:"status"`
	Orders     printone.BatchOrderCounts `json:"orders" yaml:"orders"`
	CreatedAt  time.Time                 `json:"createdAt" yaml:"createdAt"`
}

func newBatchView(b *printone.Batch) batchView {
	return batchView{
		ID:         b.ID(),
		Name:       b.Name(),
		TemplateID: b.TemplateID(),
		Status:     b.Status(),
		Orders:     b.OrderCounts(),
		CreatedAt:  b.CreatedAt(),
	}
}

type couponView struct {
	ID    string               `json:"id" yaml:"id"`
	Name  string               `json:"name" yaml:"name"`
	Stats printone.CouponStats `json:"stats" yaml:"stats"`
}

func newCouponView(c *printone.Coupon) couponView {
	return couponView{ID: c.ID(), Name: c.Name(), Stats: c.Stats()}
}

type webhookView struct {
	ID     string                  `json:"id" yaml:"id"`
	Name   string                  `json:"name" yaml:"name"`
	URL    string                  `json:"url" yaml:"url"`
	Active bool                    `json:"active" yaml:"active"`
	Events []printone.WebhookEvent `json:"events" yaml:"events"`
}

func newWebhookView(w *printone.Webhook) webhookView {
	return webhookView{ID: w.ID(), Name: w.Name(), URL: w.URL(), Active: w.Active(), Events: w.Events()}
}

func mapViews[T, V any](items []T, view func(T) V) []V {
	out := make([]V, 0, len(items))
	for _, item := range items {
		out = append(out, view(item))
	}
	return out
}
