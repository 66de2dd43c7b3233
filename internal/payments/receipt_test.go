package payments

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/farmledger/internal/catalog"
	"github.com/angelmondragon/farmledger/pkg/enums"
)

func TestRenderFixedWidth(t *testing.T) {
	plantation := PlantationSummary{
		Lines: []PlantationLine{
			{Item: "wheat", Name: "Trigo", Class: catalog.ClassMainCrop, Quantity: 50, UnitPrice: dec("0.15"), Total: dec("7.50")},
			{Item: "sugarcane", Name: "Cana-de-açúcar com nome muito comprido", Quantity: 1200, UnitPrice: dec("0.15"), Total: dec("180")},
		},
		Total: dec("187.50"),
	}
	deliveries := []Delivery{
		{Timestamp: t0, Deposit: dec("160"), Payment: dec("60"), Status: enums.DeliveryStatusComplete},
		{Timestamp: t0, Deposit: dec("80"), Payment: dec("30"), Status: enums.DeliveryStatusIncomplete,
			Note: "incomplete delivery: deposit $80.00 of $160.00 expected"},
	}
	out := Render(Receipt{
		PaymentID:   "pay_123",
		WorkerName:  "Maria Silva",
		ServiceType: enums.ServiceTypeCombined,
		Timestamp:   t0,
		Plantation:  &plantation,
		Deliveries:  deliveries,
		Total:       dec("277.50"),
	})

	lines := strings.Split(strings.TrimSuffix(out, "\n"), "\n")
	for _, line := range lines {
		assert.Equal(t, ReceiptWidth, utf8.RuneCountInString(line), line)
	}
	assert.True(t, strings.HasPrefix(lines[0], "╔"))
	assert.True(t, strings.HasPrefix(lines[len(lines)-1], "╚"))
	assert.Contains(t, out, "Trabalhador: Maria Silva")
	assert.Contains(t, out, "Data: 10/06/2026 14:00")
	assert.Contains(t, out, "Trigo 50x$0.15")
	assert.Contains(t, out, "$277.50 ║")
	assert.Contains(t, out, "…")
}

func TestRenderPlantationOnly(t *testing.T) {
	out := Render(Receipt{
		PaymentID:   "pay_1",
		WorkerName:  "Ana",
		ServiceType: enums.ServiceTypePlantation,
		Timestamp:   t0,
		Plantation:  &PlantationSummary{Lines: []PlantationLine{{Name: "Trigo", Quantity: 50, UnitPrice: dec("0.15"), Total: dec("7.50")}}, Total: dec("7.50")},
		Total:       dec("7.50"),
	})
	require.NotContains(t, out, "ENTREGAS")
	assert.Contains(t, out, "Serviço: Plantação")
	total := strings.Split(out, "\n")
	assert.Equal(t, "║ TOTAL                              $7.50 ║", total[len(total)-3])
}
