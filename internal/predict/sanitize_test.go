package predict

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitizeNonFinite(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"untouched", `{"a":1.5}`, `{"a":1.5}`},
		{"nan", `[NaN,1]`, `[null,1]`},
		{"infinities", `[Infinity,-Infinity]`, `[null,null]`},
		{"inside string", `{"date":"NaN","x":NaN}`, `{"date":"NaN","x":null}`},
		{"escaped quote", `{"s":"a\"NaN","x":Infinity}`, `{"s":"a\"NaN","x":null}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, string(sanitizeNonFinite([]byte(tc.in))))
		})
	}
}
