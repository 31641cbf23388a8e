package sig

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExplicitDeps(t *testing.T) {
	t.Run("computed only reacts to declared deps", func(t *testing.T) {
		runs := 0

		a := NewSignal(1)
		b := NewSignal(100) // read inside thunk but NOT declared as a dep

		c := NewComputedWithDeps(func() int {
			runs++
			return a.Read() + b.Read()
		}, a)

		assert.Equal(t, 101, c.Read())
		assert.Equal(t, 1, runs)

		b.Write(200) // undeclared dep changing must not trigger a recompute
		assert.Equal(t, 101, c.Peek())
		assert.Equal(t, 1, runs)

		a.Write(2) // declared dep changing must trigger a recompute
		assert.Equal(t, 202, c.Read())
		assert.Equal(t, 2, runs)
	})

	t.Run("effect only reacts to declared deps", func(t *testing.T) {
		var log []int

		a := NewSignal(1)
		b := NewSignal(100)

		NewEffectWithDeps(func() {
			log = append(log, a.Read()+b.Read())
		}, a)

		assert.Equal(t, []int{101}, log)

		b.Write(200)
		assert.Equal(t, []int{101}, log)

		a.Write(2)
		assert.Equal(t, []int{101, 202}, log)
	})

	t.Run("declared deps can include a computed", func(t *testing.T) {
		var log []int

		a := NewSignal(1)
		double := NewComputed(func() int { return a.Read() * 2 })

		NewEffectWithDeps(func() {
			log = append(log, double.Peek())
		}, double)

		assert.Equal(t, []int{2}, log)

		a.Write(5)
		assert.Equal(t, []int{2, 10}, log)
	})
}
