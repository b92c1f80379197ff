package calendar

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	d, err := Parse("2025-06-20")
	require.NoError(t, err)
	require.Equal(t, NewDate(2025, time.June, 20), d)
	require.Equal(t, "2025-06-20", d.String())

	_, err = Parse("20/06/2025")
	require.Error(t, err)
}

func TestDate_Ordering(t *testing.T) {
	a := NewDate(2025, time.May, 15)
	b := NewDate(2025, time.June, 20)
	require.True(t, a.Before(b))
	require.True(t, b.After(a))
	require.False(t, a.Before(a))
}

func TestDate_UnixRoundTrip(t *testing.T) {
	d := NewDate(2025, time.July, 5)
	require.Equal(t, d, FromUnix(d.Unix()))
}

func TestDate_JSON(t *testing.T) {
	type payload struct {
		Due Date `json:"due"`
	}

	data, err := json.Marshal(payload{Due: NewDate(2025, time.June, 1)})
	require.NoError(t, err)
	require.JSONEq(t, `{"due": "2025-06-01"}`, string(data))

	data, err = json.Marshal(payload{})
	require.NoError(t, err)
	require.JSONEq(t, `{"due": null}`, string(data))

	var p payload
	require.NoError(t, json.Unmarshal([]byte(`{"due": ""}`), &p))
	require.True(t, p.Due.IsZero())
	require.Error(t, json.Unmarshal([]byte(`{"due": "June 1"}`), &p))
}
