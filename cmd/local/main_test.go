package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jusunglee/mta-traintimes/internal/models"
)

func TestPrintResult(t *testing.T) {
	result := models.NewScanResult()
	result.SetUptown([]models.Arrival{{TrainID: "Q", Minutes: 1}, {TrainID: "N", Minutes: 6}})

	var buf bytes.Buffer
	require.NoError(t, printResult(&buf, "Q03N", "Q03S", result, false))
	assert.Equal(t, "Uptown (Q03N):   Q 1 min, N 6 min\nDowntown (Q03S): no predictions\n", buf.String())
}

func TestPrintResultJSON(t *testing.T) {
	result := models.NewScanResult()
	result.SetDowntown([]models.Arrival{{TrainID: "R", Minutes: 3}})

	var buf bytes.Buffer
	require.NoError(t, printResult(&buf, "Q03N", "Q03S", result, true))
	assert.JSONEq(t, `{"uptown_trains":[],"uptown_minutes":[],"downtown_trains":["R"],"downtown_minutes":[3]}`, buf.String())
}
