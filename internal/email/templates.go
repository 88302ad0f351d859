package email

import (
	"fmt"
	"strings"

	"github.com/example/checkout/internal/domain/order"
)

// formatAmount renders a minor-unit amount like 1050 as "10.50 EUR".
func formatAmount(amount int, currency string) string {
	return fmt.Sprintf("%d.%02d %s", amount/100, amount%100, strings.ToUpper(currency))
}

// BuildPaymentReceiptBody builds the HTML body for the customer receipt
func BuildPaymentReceiptBody(o *order.Order) string {
	var itemsHTML strings.Builder
	for _, item := range o.Items {
		name := item.Name
		if name == "" {
			name = item.ProductID
		}
		itemsHTML.WriteString(fmt.Sprintf(
			`<tr>
				<td style="padding: 12px; border-bottom: 1px solid #eee;">%s</td>
				<td style="padding: 12px; border-bottom: 1px solid #eee; text-align: center;">%d</td>
				<td style="padding: 12px; border-bottom: 1px solid #eee; text-align: right;">%s</td>
			</tr>`,
			name,
			item.Quantity,
			formatAmount(item.Price*item.Quantity, o.Currency),
		))
	}

	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<head><meta charset="UTF-8"></head>
<body style="font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif; line-height: 1.6; color: #333; max-width: 600px; margin: 0 auto; padding: 20px;">
	<h1 style="font-size: 22px;">Thank you for your payment</h1>
	<p>We have received your payment. Your order is confirmed.</p>
	<div style="background: #f8f9fa; padding: 15px; border-radius: 5px; margin: 20px 0;">
		<p style="margin: 0; font-size: 14px; color: #666;">Order number</p>
		<p style="margin: 5px 0 0 0; font-size: 18px; font-weight: bold; font-family: monospace;">%s</p>
	</div>
	<table style="width: 100%%; border-collapse: collapse; margin: 20px 0;">
		<thead>
			<tr>
				<th style="padding: 12px; text-align: left; border-bottom: 2px solid #333;">Item</th>
				<th style="padding: 12px; text-align: center; border-bottom: 2px solid #333;">Qty</th>
				<th style="padding: 12px; text-align: right; border-bottom: 2px solid #333;">Amount</th>
			</tr>
		</thead>
		<tbody>%s</tbody>
	</table>
	<p style="font-size: 18px; font-weight: bold; text-align: right;">Total: %s</p>
</body>
</html>`, o.ID, itemsHTML.String(), formatAmount(o.Amount, o.Currency))
}

// BuildMerchantNotificationBody builds the plain-text merchant alert
func BuildMerchantNotificationBody(o *order.Order) string {
	var items strings.Builder
	for _, item := range o.Items {
		name := item.Name
		if name == "" {
			name = item.ProductID
		}
		items.WriteString(fmt.Sprintf("- %s x %d - %s\n", name, item.Quantity, formatAmount(item.Price, o.Currency)))
	}

	return fmt.Sprintf(
		"New paid order received!\n\nOrder ID: %s\nCustomer: %s\nEmail: %s\n\nItems:\n%s\nTotal: %s\n",
		o.ID, o.CustomerName, o.CustomerEmail, items.String(), formatAmount(o.Amount, o.Currency),
	)
}
