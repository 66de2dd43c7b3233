package payments

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/farmledger/pkg/enums"
	"github.com/angelmondragon/farmledger/pkg/money"
)

// ReceiptWidth is the fixed column count of every receipt line, borders included.
const ReceiptWidth = 44

const innerWidth = ReceiptWidth - 4

const receiptTimeLayout = "02/01/2006 15:04"

// Receipt is the input of Render.
type Receipt struct {
	PaymentID   string
	WorkerName  string
	ServiceType enums.ServiceType
	Timestamp   time.Time
	Plantation  *PlantationSummary
	Deliveries  []Delivery
	Total       decimal.Decimal
}

var serviceLabels = map[enums.ServiceType]string{
	enums.ServiceTypePlantation:     "Plantação",
	enums.ServiceTypeAnimalDelivery: "Entrega de animais",
	enums.ServiceTypeCombined:       "Plantação + Entrega de animais",
}

// Render draws the fixed-width receipt posted to the payments channel.
func Render(r Receipt) string {
	var b strings.Builder
	rule(&b, '╔', '═', '╗')
	row(&b, center("RECIBO DE PAGAMENTO"))
	rule(&b, '╠', '═', '╣')
	row(&b, "Trabalhador: "+r.WorkerName)
	row(&b, "Serviço: "+serviceLabels[r.ServiceType])
	row(&b, "Data: "+r.Timestamp.UTC().Format(receiptTimeLayout))
	row(&b, "ID: "+r.PaymentID)

	if r.Plantation != nil && len(r.Plantation.Lines) > 0 {
		rule(&b, '╟', '─', '╢')
		row(&b, "PLANTAÇÃO")
		for _, line := range r.Plantation.Lines {
			left := fmt.Sprintf("%s %dx%s", truncate(line.Name, 16), line.Quantity, money.Format(line.UnitPrice))
			row(&b, spread(left, money.Format(line.Total)))
		}
		row(&b, spread("Subtotal", money.Format(r.Plantation.Total)))
	}

	if len(r.Deliveries) > 0 {
		rule(&b, '╟', '─', '╢')
		row(&b, "ENTREGAS DE ANIMAIS")
		subtotal := decimal.Zero
		for i, d := range r.Deliveries {
			left := fmt.Sprintf("#%d %s %s %s", i+1, statusMark(d.Status), d.Timestamp.UTC().Format("02/01 15:04"), money.Format(d.Deposit))
			row(&b, spread(left, money.Format(d.Payment)))
			if d.Note != "" {
				for _, part := range wrap(d.Note, innerWidth-3) {
					row(&b, "   "+part)
				}
			}
			subtotal = subtotal.Add(d.Payment)
		}
		row(&b, spread("Subtotal", money.Format(subtotal)))
	}

	rule(&b, '╠', '═', '╣')
	row(&b, spread("TOTAL", money.Format(r.Total)))
	rule(&b, '╚', '═', '╝')
	return b.String()
}

func statusMark(status enums.DeliveryStatus) string {
	switch status {
	case enums.DeliveryStatusComplete:
		return "OK"
	case enums.DeliveryStatusIncomplete:
		return "!!"
	}
	return "??"
}

func rule(b *strings.Builder, left, fill, right rune) {
	b.WriteRune(left)
	b.WriteString(strings.Repeat(string(fill), ReceiptWidth-2))
	b.WriteRune(right)
	b.WriteByte('\n')
}

func row(b *strings.Builder, text string) {
	text = truncate(text, innerWidth)
	b.WriteString("║ ")
	b.WriteString(text)
	b.WriteString(strings.Repeat(" ", innerWidth-utf8.RuneCountInString(text)))
	b.WriteString(" ║\n")
}

func center(text string) string {
	pad := (innerWidth - utf8.RuneCountInString(text)) / 2
	if pad <= 0 {
		return text
	}
	return strings.Repeat(" ", pad) + text
}

// spread left-aligns left and right-aligns right within the inner width.
func spread(left, right string) string {
	room := innerWidth - utf8.RuneCountInString(right) - 1
	left = truncate(left, room)
	gap := innerWidth - utf8.RuneCountInString(left) - utf8.RuneCountInString(right)
	return left + strings.Repeat(" ", gap) + right
}

func truncate(text string, max int) string {
	if max <= 0 {
		return ""
	}
	if utf8.RuneCountInString(text) <= max {
		return text
	}
	runes := []rune(text)
	if max == 1 {
		return string(runes[:1])
	}
	return string(runes[:max-1]) + "…"
}

func wrap(text string, width int) []string {
	var lines []string
	current := ""
	for _, word := range strings.Fields(text) {
		switch {
		case current == "":
			current = word
		case utf8.RuneCountInString(current)+1+utf8.RuneCountInString(word) <= width:
			current += " " + word
		default:
			lines = append(lines, current)
			current = word
		}
	}
	if current != "" {
		lines = append(lines, current)
	}
	return lines
}
