package main

import (
	"fmt"

	"github.com/nodegraph/sig"
)

func main() {
	owner := sig.NewOwner()
	defer owner.Dispose()

	owner.Run(func() error {
		a := sig.NewSignal(1)
		b := sig.NewSignal(2)

		sum := sig.NewComputed(func() int {
			result := a.Read() + b.Read()
			fmt.Println("  [computed] sum:", result)
			return result
		})

		// parity never changes when sum moves between two evens or two odds -
		// demonstrates the equality gate: writing to a/b dirties parity's
		// computation, but its recompute only propagates when the result
		// actually differs.
		parity := sig.NewComputed(func() bool {
			even := sum.Read()%2 == 0
			fmt.Println("  [computed] parity even:", even)
			return even
		})

		sig.NewEffect(func() {
			fmt.Println("  [effect] sum =", sum.Read(), "even =", parity.Read())
		})

		sum.Subscribe(func(newValue, oldValue int) {
			fmt.Println("  [subscribe] sum changed", oldValue, "->", newValue)
		})

		fmt.Println("\nwriting a=3, b=6 in a batch...")
		sig.NewBatch(func() {
			a.Write(3)
			b.Write(6)
		})
		fmt.Println("sum settles once at 9 (still odd); parity recomputes but its value is unchanged, so it never re-propagates to the effect")

		fmt.Println("\nwriting b=7 (flips sum's parity)...")
		b.Write(7)

		return nil
	})
}
