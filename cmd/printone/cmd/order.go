package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	printone "github.com/print-one/printone-go"
)

var orderCmd = &cobra.Command{
	Use:   "order",
	Short: "Inspect and manage a single order",
}

func init() {
	getOrderCmd := &cobra.Command{
		Use:   "get ID",
		Short: "Show an order",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := mustClient()
			order, err := client.Order(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			printOrder(order)
			return nil
		},
	}

	cancelOrderCmd := &cobra.Command{
		Use:   "cancel ID",
		Short: "Cancel an order",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := mustClient()
			order, err := client.Order(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			if err := order.Cancel(cmd.Context(), pollOptions(cmd)...); err != nil {
				return err
			}
			printOrder(order)
			return nil
		},
	}
	cancelOrderCmd.Flags().Bool("no-wait", false, "Do not wait for the order to be created first")

	downloadOrderCmd := &cobra.Command{
		Use:   "download ID",
		Short: "Download the rendered PDF of an order",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := mustClient()
			order, err := client.Order(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			data, err := order.Download(cmd.Context(), pollOptions(cmd)...)
			if err != nil {
				return err
			}

			out, _ := cmd.Flags().GetString("file")
			if out == "" {
				out = order.ID() + ".pdf"
			}
			if out == "-" {
				_, err = os.Stdout.Write(data)
				return err
			}
			if err := os.WriteFile(out, data, 0644); err != nil {
				return fmt.Errorf("write %s: %w", out, err)
			}
			fmt.Fprintf(os.Stderr, "Wrote %d bytes to %s.\n", len(data), out)
			return nil
		},
	}
	downloadOrderCmd.Flags().StringP("file", "f", "", "Output file, - for stdout (default ID.pdf)")
	downloadOrderCmd.Flags().Bool("no-wait", false, "Do not wait for the order to be created first")

	orderCmd.AddCommand(getOrderCmd, cancelOrderCmd, downloadOrderCmd)
}

func pollOptions(cmd *cobra.Command) []printone.PollOption {
	if noWait, _ := cmd.Flags().GetBool("no-wait"); noWait {
		return []printone.PollOption{printone.WithoutPolling()}
	}
	return nil
}

func printOrder(order *printone.Order) {
	view := newOrderView(order)
	if printStructured(view) {
		return
	}

	fmt.Fprintf(os.Stdout, "Order %s\n", view.ID)
	fmt.Fprintf(os.Stdout, "  Status:    %s (%s)\n", view.FriendlyStatus, view.Status)
	fmt.Fprintf(os.Stdout, "  Template:  %s\n", view.TemplateID)
	fmt.Fprintf(os.Stdout, "  Recipient: %s, %s %s\n", view.Recipient.Name, view.Recipient.PostalCode, view.Recipient.City)
	if view.BatchID != "" {
		fmt.Fprintf(os.Stdout, "  Batch:     %s\n", view.BatchID)
	}
	fmt.Fprintf(os.Stdout, "  Send date: %s\n", shortTime(view.SendDate))
	fmt.Fprintf(os.Stdout, "  Created:   %s\n", shortTime(view.CreatedAt))
}
