package orderkey_test

import (
	"fmt"

	"github.com/lupppig/orderkey"
)

func ExampleBetween() {
	fmt.Println(orderkey.Between("a", "c"))
	fmt.Println(orderkey.Between("a", "b"))
	// Output:
	// b
	// aO
}

func ExampleBefore() {
	fmt.Println(orderkey.Before("c"))
	fmt.Printf("%q\n", orderkey.Before(orderkey.FirstPosition))
	// Output:
	// b
	// " ~"
}

func ExampleAfter() {
	fmt.Println(orderkey.After("c"))
	fmt.Println(orderkey.After("~"))
	// Output:
	// d
	// ~!
}

func ExampleIsValid() {
	fmt.Println(orderkey.IsValid("!"))
	fmt.Println(orderkey.IsValid(""))
	fmt.Println(orderkey.IsValid("a "))
	// Output:
	// true
	// false
	// false
}

func ExampleGenBetween_append() {
	last := orderkey.MustParse("c")
	key, _ := orderkey.GenBetween(&last, nil)
	fmt.Println(key)
	// Output: d
}

func ExampleGenBetween_prepend() {
	first := orderkey.MustParse("c")
	key, _ := orderkey.GenBetween(nil, &first)
	fmt.Println(key)
	// Output: b
}

func ExampleGenBetween_outOfOrder() {
	a, b := orderkey.MustParse("a"), orderkey.MustParse("b")
	_, err := orderkey.GenBetween(&b, &a)
	fmt.Println(err)
	// Output: orderkey: invalid argument: bounds out of order: "b" is not before "a"
}

func ExampleReposition() {
	// Steps "whisk", "fold", "bake" are stored at "b", "d", "f".
	// Dragging "bake" to the top only needs a key for "bake".
	keys := []orderkey.Key{
		orderkey.MustParse("b"),
		orderkey.MustParse("d"),
		orderkey.MustParse("f"),
	}
	key, _ := orderkey.Reposition(keys, 2, 0)
	fmt.Println(key)
	// Output: a
}

func ExampleSort() {
	keys := []orderkey.Key{
		orderkey.MustParse("b"),
		orderkey.MustParse("aO"),
		orderkey.MustParse("a"),
	}
	orderkey.Sort(keys)
	for _, k := range keys {
		fmt.Println(k)
	}
	// Output:
	// a
	// aO
	// b
}
