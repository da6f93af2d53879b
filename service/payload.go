package service

import (
	"fmt"
	"strings"
	"unicode"

	"go-contaazul-api/model"
)

// Sale payload assembly: maps imported sale rows onto the provider's wire
// format, normalizing local payment descriptions into provider enums.

func normalizePaymentMethod(raw string) string {
	s := strings.ToUpper(strings.TrimSpace(raw))

	switch {
	case strings.Contains(s, "PIX"):
		return "PIX_PAGAMENTO_INSTANTANEO"
	case strings.Contains(s, "BOLETO"):
		return "BOLETO_BANCARIO"
	case strings.Contains(s, "CRÉDITO") || strings.Contains(s, "CREDITO"):
		return "CARTAO_CREDITO"
	case strings.Contains(s, "DÉBITO") || strings.Contains(s, "DEBITO"):
		return "CARTAO_DEBITO"
	case strings.Contains(s, "TRANSFER"):
		return "TRANSFERENCIA_BANCARIA"
	case strings.Contains(s, "DINHEIRO"):
		return "DINHEIRO"
	}
	return "OUTRO"
}

// installmentCount parses "3x", "em 6 vezes" etc.; "à vista" and anything
// without digits count as a single installment.
func installmentCount(paymentTerms string) int {
	t := strings.ToUpper(strings.TrimSpace(paymentTerms))
	if strings.Contains(t, "À VISTA") || strings.Contains(t, "A VISTA") {
		return 1
	}

	var digits strings.Builder
	for _, r := range t {
		if unicode.IsDigit(r) {
			digits.WriteRune(r)
		}
	}
	if digits.Len() == 0 {
		return 1
	}

	n := 0
	for _, r := range digits.String() {
		n = n*10 + int(r-'0')
	}
	if n < 1 {
		return 1
	}
	return n
}

func buildInstallments(total float64, dueDate string, count int) []model.Installment {
	amount := roundCents(total / float64(count))
	installments := make([]model.Installment, count)
	for i := range installments {
		installments[i] = model.Installment{DueDate: dueDate, Amount: amount}
	}
	return installments
}

func roundCents(v float64) float64 {
	return float64(int64(v*100+0.5)) / 100
}

// BuildSalePayload assembles the provider sale body from an imported sale,
// the resolved customer id, the allocated sale number, and the company's
// configured financial account (empty when unset).
func BuildSalePayload(sale *model.Sale, items []model.SaleItem, customerID string, number int, financialAccountID string) model.SalePayload {
	count := installmentCount(sale.PaymentTerms)

	option := "À vista"
	if count > 1 {
		option = fmt.Sprintf("%dx", count)
	}

	payloadItems := make([]model.SalePayloadItem, 0, len(items))
	for _, item := range items {
		payloadItems = append(payloadItems, model.SalePayloadItem{
			Description: item.ProductService,
			Quantity:    item.Qty,
			UnitPrice:   item.UnitPrice,
		})
	}

	return model.SalePayload{
		Situation:  "EM_ANDAMENTO",
		SaleDate:   sale.SaleDate.Format("2006-01-02"),
		Number:     fmt.Sprintf("%d", number),
		CustomerID: customerID,
		Notes:      "Venda importada automaticamente.",
		Items:      payloadItems,
		PaymentTerms: model.SalePaymentTerms{
			PaymentType:        normalizePaymentMethod(sale.PaymentMethod),
			PaymentOption:      option,
			Installments:       buildInstallments(sale.TotalAmount, sale.DueDate.Format("2006-01-02"), count),
			FinancialAccountID: financialAccountID,
		},
	}
}
