package fhir_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/udap-tools/udap-client-app/fhir"
)

func TestNormalizeDate(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "already normalized", input: "2024-12-05", want: "2024-12-05"},
		{name: "us format", input: "12/05/2024", want: "2024-12-05"},
		{name: "us format without zero padding", input: "1/2/2024", want: "2024-01-02"},
		{name: "rfc3339", input: "2024-12-05T00:00:00Z", want: "2024-12-05"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := fhir.NormalizeDate(tc.input)
			require.NoError(t, err)
			require.Equal(t, tc.want, got)
		})
	}
}

func TestNormalizeDateRejectsGarbage(t *testing.T) {
	for _, input := range []string{"", "not-a-date", "2024-13-45"} {
		_, err := fhir.NormalizeDate(input)
		require.Error(t, err, "input %q", input)
	}
}
