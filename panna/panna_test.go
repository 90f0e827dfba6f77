package panna_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"saudagar/panna"
)

func TestClassify(t *testing.T) {
	assert.Equal(t, panna.TriplePanna, panna.Classify("111"))
	assert.Equal(t, panna.DoublePanna, panna.Classify("112"))
	assert.Equal(t, panna.DoublePanna, panna.Classify("121"))
	assert.Equal(t, panna.SinglePanna, panna.Classify("123"))

	for _, bad := range []string{"", "1", "12", "1234", "12a", " 12"} {
		assert.Equal(t, panna.Invalid, panna.Classify(bad), bad)
	}
}

func TestReduce(t *testing.T) {
	assert.Equal(t, 2, panna.Reduce("129"))
	assert.Equal(t, 0, panna.Reduce("000"))
	assert.Equal(t, 7, panna.Reduce("999"))
}

func TestTablesPartitionEveryPanna(t *testing.T) {
	total := 0
	for _, c := range panna.Categories {
		for p := 0; p < 10; p++ {
			total += len(panna.CombinationsFor(c, p))
		}
	}
	require.Equal(t, 1000, total)

	for n := 0; n < 1000; n++ {
		s := fmt.Sprintf("%03d", n)
		d := panna.Reduce(s)
		hits := 0
		for _, c := range panna.Categories {
			if panna.Contains(c, d, s) {
				hits++
				assert.Equal(t, panna.Classify(s), c, s)
			}
		}
		assert.Equal(t, 1, hits, s)
	}
}

func TestCombinationsForReturnsCopy(t *testing.T) {
	a := panna.CombinationsFor(panna.TriplePanna, 3)
	require.Equal(t, []string{"111"}, a)
	a[0] = "xxx"
	assert.Equal(t, []string{"111"}, panna.CombinationsFor(panna.TriplePanna, 3))
	assert.Nil(t, panna.CombinationsFor(panna.SinglePanna, 10))
	assert.Nil(t, panna.CombinationsFor(panna.Invalid, 1))
}

func TestIsStrictDoublePanna(t *testing.T) {
	assert.True(t, panna.IsStrictDoublePanna("112"))
	assert.True(t, panna.IsStrictDoublePanna("040"))
	assert.False(t, panna.IsStrictDoublePanna("111"))
	assert.False(t, panna.IsStrictDoublePanna("123"))
	assert.False(t, panna.IsStrictDoublePanna("12"))
	assert.False(t, panna.IsStrictDoublePanna("1x1"))
}

func TestMatchJugar(t *testing.T) {
	assert.True(t, panna.MatchJugar("12345/067", "27"))
	assert.False(t, panna.MatchJugar("12345/067", "21"))
	assert.False(t, panna.MatchJugar("12345/067", "7"))
	assert.False(t, panna.MatchJugar("12345", "27"))
}

func TestParseJugar(t *testing.T) {
	j, err := panna.ParseJugar("12/09")
	require.NoError(t, err)
	assert.Equal(t, []string{"10", "19", "20", "29"}, j.Expand())

	for _, bad := range []string{"", "/", "12/", "/34", "1a/2", "11/2", "1/2/3"} {
		_, err := panna.ParseJugar(bad)
		assert.ErrorIs(t, err, panna.ErrInvalidJugar, bad)
	}
}

func TestExpandJugarCoversMatches(t *testing.T) {
	jodis, err := panna.ExpandJugar("135/24")
	require.NoError(t, err)
	assert.Len(t, jodis, 6)
	for _, jodi := range jodis {
		assert.True(t, panna.MatchJugar("135/24", jodi), jodi)
	}

	_, err = panna.ExpandJugar("13")
	assert.ErrorIs(t, err, panna.ErrInvalidJugar)
}
