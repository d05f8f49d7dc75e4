package domain

import (
	"net/url"
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	cartdomain "github.com/dmehra2102/storefront/internal/cart/domain"
)

const fallbackItemName = "Produto"

// Message renders the order summary sent to the store over WhatsApp.
func Message(items []cartdomain.Item, q Quote, f Form) string {
	var b strings.Builder

	b.WriteString("🍇 *NOVO PEDIDO*\n\n")
	b.WriteString("*Itens:*\n")
	for i, it := range items {
		if i > 0 {
			b.WriteString("\n")
		}
		writeItem(&b, it)
	}
	b.WriteString("\n\n")

	b.WriteString("Subtotal: " + FormatBRL(q.Subtotal) + "\n")
	if f.ServiceType == Delivery {
		b.WriteString("Taxa de entrega: " + FormatBRL(q.DeliveryFee) + "\n")
	} else {
		b.WriteString("Retirada no local\n")
	}
	b.WriteString("*Total: " + FormatBRL(q.Total) + "*\n\n")

	b.WriteString("*Cliente:* " + f.Name + "\n")
	b.WriteString("*Telefone:* " + f.Phone + "\n")
	if f.ServiceType == Delivery {
		b.WriteString("*Endereço:* " + f.Address + "\n")
	}
	if f.Reference != "" {
		b.WriteString("*Referência:* " + f.Reference + "\n")
	}
	b.WriteString("*Serviço:* " + f.ServiceType.Label() + "\n")
	b.WriteString("*Pagamento:* " + paymentLabel(f.PaymentMethod))
	if change := f.ChangeFor(); change != "" {
		b.WriteString("\nTroco para: R$ " + change)
	}
	return b.String()
}

func writeItem(b *strings.Builder, it cartdomain.Item) {
	name := it.Name
	if name == "" {
		name = fallbackItemName
	}
	b.WriteString("• " + strconv.Itoa(it.Quantity) + "x " + name + " - " + FormatBRL(it.LineTotal()))

	if len(it.Addons) == 0 {
		return
	}
	names := make([]string, 0, len(it.Addons))
	for _, a := range it.Addons {
		names = append(names, a.Name)
	}
	b.WriteString("\n  _Adicionais: " + strings.Join(names, ", ") + "_")
}

func paymentLabel(p PaymentMethod) string {
	return cases.Title(language.BrazilianPortuguese).String(string(p))
}

// WhatsAppURL builds the wa.me deep link that opens a chat with number
// pre-filled with text. Non-digits are stripped from number.
func WhatsAppURL(number, text string) string {
	digits := onlyDigits(number)
	if digits == "" {
		digits = DefaultWhatsAppNumber
	}
	return "https://wa.me/" + digits + "?text=" + encodeURIComponent(text)
}

// uriUnreserved restores the characters encodeURIComponent leaves alone but
// QueryEscape escapes, and turns + back into %20.
var uriUnreserved = strings.NewReplacer(
	"+", "%20",
	"%21", "!",
	"%27", "'",
	"%28", "(",
	"%29", ")",
	"%2A", "*",
)

func encodeURIComponent(s string) string {
	return uriUnreserved.Replace(url.QueryEscape(s))
}

func onlyDigits(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
