package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"khata/internal/domain"
	"khata/mocks"
)

func driftedRow() domain.ReconciliationRow {
	return domain.ReconciliationRow{
		AccountID:       uuid.MustParse("7d1f6c1e-3a51-4b7a-9d0e-2f4c8a6b1e20"),
		DisplayName:     "HDFC Current",
		CurrentBalance:  decimal.RequireFromString("1200"),
		ExpectedBalance: decimal.RequireFromString("1150.5"),
		Drift:           decimal.RequireFromString("49.5"),
	}
}

func TestStepsArg(t *testing.T) {
	assert.NoError(t, stepsArg(nil, []string{"2"}))
	assert.NoError(t, stepsArg(nil, []string{"-1"}))
	assert.Error(t, stepsArg(nil, []string{"0"}))
	assert.Error(t, stepsArg(nil, []string{"two"}))
	assert.Error(t, stepsArg(nil, []string{}))
}

func TestIsValidFormat(t *testing.T) {
	assert.True(t, isValidFormat("json"))
	assert.True(t, isValidFormat("text"))
	assert.False(t, isValidFormat("yaml"))
}

func TestWriteReconciliation_Text(t *testing.T) {
	var out bytes.Buffer

	err := writeReconciliation(&out, []domain.ReconciliationRow{driftedRow()}, false, "text")

	require.NoError(t, err)
	assert.Contains(t, out.String(), "HDFC Current")
	assert.Contains(t, out.String(), "1150.50")
	assert.Contains(t, out.String(), "found 1 drifted account(s)")
}

func TestWriteReconciliation_TextClean(t *testing.T) {
	var out bytes.Buffer

	require.NoError(t, writeReconciliation(&out, nil, true, "text"))

	assert.Equal(t, "all account balances match their ledgers\n", out.String())
}

func TestWriteReconciliation_JSON(t *testing.T) {
	var out bytes.Buffer

	require.NoError(t, writeReconciliation(&out, []domain.ReconciliationRow{driftedRow()}, true, "json"))

	var got struct {
		Fixed    bool `json:"fixed"`
		Drifted  int  `json:"drifted"`
		Accounts []struct {
			DisplayName string `json:"display_name"`
			Drift       string `json:"drift"`
		} `json:"accounts"`
	}
	require.NoError(t, json.Unmarshal(out.Bytes(), &got))
	assert.True(t, got.Fixed)
	assert.Equal(t, 1, got.Drifted)
	require.Len(t, got.Accounts, 1)
	assert.Equal(t, "49.5", got.Accounts[0].Drift)
}

func TestRunReconcile_PassesScopeAndFix(t *testing.T) {
	ledger := new(mocks.MockLedgerService)
	companyID := uuid.New()
	ledger.On("Reconcile", mock.Anything, &companyID, true).Return([]domain.ReconciliationRow{driftedRow()}, nil)

	var out bytes.Buffer
	err := runReconcile(context.Background(), ledger, &companyID, true, "text", &out)

	require.NoError(t, err)
	assert.Contains(t, out.String(), "fixed 1 drifted account(s)")
	ledger.AssertExpectations(t)
}

func TestRunReconcile_Error(t *testing.T) {
	ledger := new(mocks.MockLedgerService)
	ledger.On("Reconcile", mock.Anything, (*uuid.UUID)(nil), false).Return(nil, errors.New("db down"))

	err := runReconcile(context.Background(), ledger, nil, false, "text", &bytes.Buffer{})

	assert.ErrorContains(t, err, "reconcile: db down")
}
