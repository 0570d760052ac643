package model

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDateJSON(t *testing.T) {
	var v struct {
		Date Date  `json:"date"`
		Next *Date `json:"next"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"date":"2024-02-29","next":null}`), &v))
	assert.Equal(t, NewDate(2024, time.February, 29), v.Date)
	assert.Nil(t, v.Next)

	out, err := json.Marshal(v)
	require.NoError(t, err)
	assert.JSONEq(t, `{"date":"2024-02-29","next":null}`, string(out))

	assert.Error(t, json.Unmarshal([]byte(`{"date":"29/02/2024"}`), &v))
}

func TestDateArithmetic(t *testing.T) {
	d := NewDate(2024, time.December, 31)
	assert.Equal(t, "2025-01-01", d.AddDays(1).String())
	assert.Equal(t, 1, d.AddDays(1).DaysSince(d))
	assert.True(t, d.Before(d.AddDays(1)))
	assert.Equal(t, "", Date{}.String())
}

func TestDateOfUsesLocation(t *testing.T) {
	brisbane, err := time.LoadLocation("Australia/Brisbane")
	require.NoError(t, err)

	utc := time.Date(2024, 3, 10, 20, 0, 0, 0, time.UTC)
	assert.Equal(t, "2024-03-11", DateOf(utc.In(brisbane)).String())
	assert.Equal(t, "2024-03-10", DateOf(utc).String())
}

func TestDatePgtype(t *testing.T) {
	d := NewDate(2024, time.May, 1)
	v, err := d.DateValue()
	require.NoError(t, err)
	assert.True(t, v.Valid)

	var scanned Date
	require.NoError(t, scanned.ScanDate(v))
	assert.Equal(t, d, scanned)

	require.NoError(t, scanned.ScanDate(pgtype.Date{}))
	assert.True(t, scanned.IsZero())
}
