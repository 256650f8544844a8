package logx_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"propinvest/pkg/logx"
)

func TestSensitiveDataMaskerMask(t *testing.T) {
	masker := logx.NewSensitiveDataMasker()

	testCases := []struct {
		name   string
		input  []byte
		output []byte
	}{
		{
			name:   "Password",
			input:  []byte(`{"hello":"world","password":"abc123"}`),
			output: []byte(`{"hello":"world","password":"[MASKED]"}`),
		},
		{
			name:   "Password capital letter",
			input:  []byte(`{"hello":"world","Password":"abc123"}`),
			output: []byte(`{"hello":"world","Password":"[MASKED]"}`),
		},
		{
			name:   "Access token",
			input:  []byte(`{"accessToken":"eyJhbGciOiJFUzI1NiIsInR5cC","refreshToken":"eyJhbGciOiJFUzI1NiIsInR5cCI6IkpXVCJ9"}`),
			output: []byte(`{"accessToken":"[MASKED]","refreshToken":"[MASKED]"}`),
		},
		{
			name:   "Bot token",
			input:  []byte(`{"botToken":"123456:ABC-DEF","chatId":42}`),
			output: []byte(`{"botToken":"[MASKED]","chatId":42}`),
		},
		{
			name:   "Property address and email",
			input:  []byte(`{"deal": {"address": "12 Smith St, Richmond", "email": "jane@example.com"}, "price": 800000}`),
			output: []byte(`{"deal": {"address": "[MASKED]", "email": "[MASKED]"}, "price": 800000}`),
		},
		{
			name:   "Nothing to mask",
			input:  []byte(`{"jurisdiction":"VIC","occupancy":"INV"}`),
			output: []byte(`{"jurisdiction":"VIC","occupancy":"INV"}`),
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			rq := require.New(t)

			output := masker.Mask(tc.input)

			rq.Equal(tc.output, output, "%s vs %s", tc.output, output)
		})
	}
}
