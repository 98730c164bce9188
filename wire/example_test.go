package wire_test

import (
	"fmt"
	"reflect"

	"wireschema/examples/shapes"
	"wireschema/wire"
)

func ExampleEngine_UnmarshalAny() {
	e := wire.New(wire.Config{})

	data, err := e.Marshal(shapes.Circle{Radius: 2})
	if err != nil {
		panic(err)
	}

	text, _ := wire.Diagnose(data)
	fmt.Println(text)

	v, err := e.UnmarshalAny(data, reflect.TypeFor[shapes.Shape]())
	if err != nil {
		panic(err)
	}

	fmt.Printf("%T %v\n", v, v.(*shapes.Circle).Radius)
	// Output:
	// {500: {1: 2.0}}
	// *shapes.Circle 2
}
