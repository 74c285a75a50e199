package sanitize_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"khata/internal/sanitize"
)

func TestText(t *testing.T) {
	assert.Equal(t, "Sharma Traders", sanitize.Text("  <b>Sharma</b> Traders "))
	assert.Equal(t, "", sanitize.Text("<script>alert(1)</script>"))
	assert.Equal(t, "ab", sanitize.Text("a\x00b"))
	assert.Equal(t, "", sanitize.Text(""))
	assert.Equal(t, "Shah & Sons", sanitize.Text("Shah & Sons"))
}

func TestText_NormalisesToNFC(t *testing.T) {
	assert.Equal(t, "Caf\u00e9", sanitize.Text("Cafe\u0301"))
}

func TestName_CollapsesWhitespace(t *testing.T) {
	assert.Equal(t, "Gupta General Store", sanitize.Name("Gupta   General\n Store"))
}

func TestCode(t *testing.T) {
	assert.Equal(t, "27AAPFU0939F1ZV", sanitize.Code(" 27aapfu 0939f1zv "))
}

func TestEmail(t *testing.T) {
	assert.Equal(t, "owner@shop.in", sanitize.Email("  Owner@Shop.IN "))
}

func TestForSpreadsheet(t *testing.T) {
	assert.Equal(t, "'=SUM(A1)", sanitize.ForSpreadsheet("=SUM(A1)"))
	assert.Equal(t, "'-5", sanitize.ForSpreadsheet("-5"))
	assert.Equal(t, "Invoice 7", sanitize.ForSpreadsheet("Invoice 7"))
	assert.Equal(t, "", sanitize.ForSpreadsheet(""))
}
