package db

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/resume-screener/internal/types"
)

func TestStringArray_Scan(t *testing.T) {
	tests := []struct {
		name string
		src  interface{}
		want StringArray
	}{
		{"nil", nil, StringArray{}},
		{"bytes", []byte(`["python","sql"]`), StringArray{"python", "sql"}},
		{"string", `["machine learning"]`, StringArray{"machine learning"}},
		{"json null", []byte(`null`), StringArray{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var a StringArray
			require.NoError(t, a.Scan(tt.src))
			assert.Equal(t, tt.want, a)
		})
	}

	var a StringArray
	assert.Error(t, a.Scan(42))
	assert.Error(t, a.Scan([]byte(`{`)))
}

func TestStringArray_Value(t *testing.T) {
	v, err := StringArray(nil).Value()
	require.NoError(t, err)
	assert.Equal(t, []byte("[]"), v)

	v, err = StringArray{"go"}.Value()
	require.NoError(t, err)
	assert.Equal(t, []byte(`["go"]`), v)
}

func TestAssignRanks(t *testing.T) {
	rows := AssignRanks([]types.RankingRow{{Filename: "a"}, {Filename: "b"}})
	assert.Equal(t, 1, rows[0].Rank)
	assert.Equal(t, 2, rows[1].Rank)
}

func TestNormalizeLimit(t *testing.T) {
	assert.Equal(t, DefaultListLimit, NormalizeLimit(0))
	assert.Equal(t, DefaultListLimit, NormalizeLimit(-3))
	assert.Equal(t, 7, NormalizeLimit(7))
}

func TestUser_Public(t *testing.T) {
	u := &User{Username: "jane", PasswordHash: "secret"}
	pub := u.Public()
	assert.Equal(t, "jane", pub.Username)
}
