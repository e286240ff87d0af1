package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestSplitList — пробелы обрезаются, пустые элементы отбрасываются.
func TestSplitList(t *testing.T) {
	assert.Equal(t,
		[]string{"Event planning", "Customer service"},
		SplitList("Event planning, , Customer service"))

	assert.Equal(t, []string{"a"}, SplitList("a"))
	assert.Equal(t, []string{"a", "b"}, SplitList(" a ,b "))
	assert.Equal(t, []string{}, SplitList(""))
	assert.Equal(t, []string{}, SplitList(" , ,"))
}

func TestJoinList(t *testing.T) {
	assert.Equal(t, "a,b", JoinList([]string{"a", "b"}))
	assert.Equal(t, "", JoinList(nil))

	// SplitList и JoinList согласованы для нормализованных значений.
	assert.Equal(t, "x,y", JoinList(SplitList(" x , ,y")))
}
