package format

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTime(t *testing.T) {
	loc, err := time.LoadLocation("Asia/Kolkata")
	require.NoError(t, err)

	cases := []struct {
		in   string
		want string
	}{
		{"2024-05-01T10:00:00Z", "1 May 2024, 3:30 pm"},
		{"2024-05-01T18:35:00Z", "2 May 2024, 12:05 am"},
		{"2024-09-15T06:30:00Z", "15 Sept 2024, 12:00 pm"},
		{"2024-12-31T03:04:00Z", "31 Dec 2024, 8:34 am"},
	}
	for _, tc := range cases {
		ts, err := time.Parse(time.RFC3339, tc.in)
		require.NoError(t, err)
		assert.Equal(t, tc.want, Time(ts, loc), tc.in)
	}
}

func TestTime_Zero(t *testing.T) {
	assert.Equal(t, "", Time(time.Time{}, time.UTC))
}

func TestINR(t *testing.T) {
	cases := map[int]string{
		0:         "₹0",
		999:       "₹999",
		4512:      "₹4,512",
		12345:     "₹12,345",
		123456:    "₹1,23,456",
		12345678:  "₹1,23,45,678",
		-4512:     "-₹4,512",
		100000000: "₹10,00,00,000",
	}
	for in, want := range cases {
		assert.Equal(t, want, INR(in), "amount %d", in)
	}
}

func TestPrice(t *testing.T) {
	amount := 5999
	assert.Equal(t, "₹5,999", Price(&amount))
	assert.Equal(t, "", Price(nil))
}
