package mapper

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMapAll(t *testing.T) {
	m := Func[int, string](strconv.Itoa)

	assert.Equal(t, []string{"1", "2", "3"}, MapAll[int, string](m, []int{1, 2, 3}))
	assert.Nil(t, MapAll[int, string](m, nil))
	assert.Equal(t, []string{}, MapAll[int, string](m, []int{}))
}
