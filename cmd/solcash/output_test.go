package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/brojonat/solcash/service/history"
	"github.com/brojonat/solcash/service/payment"
)

func TestFormatHistoryLine(t *testing.T) {
	rec := history.Record{
		From:            history.Party{Name: "9xQe"},
		To:              history.Party{Name: "7pLm"},
		Description:     "coffee",
		TransactionDate: time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC),
		Status:          history.StatusConfirmed,
		Amount:          1.5,
	}

	line := formatHistoryLine(rec)
	assert.Equal(t, "2026-03-14 09:30  1.5 SOL  9xQe -> 7pLm  [confirmed]  coffee", line)
}

func TestFormatHistoryLine_WholeAmount(t *testing.T) {
	rec := history.Record{
		TransactionDate: time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC),
		Status:          history.StatusSubmitted,
		Amount:          2,
	}

	line := formatHistoryLine(rec)
	assert.Contains(t, line, "2 SOL")
	assert.NotContains(t, line, "%!")
}

func TestFormatReceipt(t *testing.T) {
	receipt := &payment.Receipt{
		Record: history.Record{
			To:     history.Party{Name: "7pLm"},
			Amount: 0.25,
			Status: history.StatusSubmitted,
		},
	}

	out := formatReceipt(receipt)
	assert.Contains(t, out, "Amount:    0.25 SOL")
	assert.Contains(t, out, "Status:    submitted")
	assert.NotContains(t, out, "%!")
}
