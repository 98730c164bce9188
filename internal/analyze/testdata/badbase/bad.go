// Package badbase declares broken hierarchies for analyzer tests.
package badbase

type Root struct{}

type Other struct{}

type TwoBases struct {
	Root  `schema:",base"`
	Other `schema:",base"`
}

type PointerBase struct {
	*Root `schema:",base"`
}

type NamedBase struct {
	Parent Root `schema:",base"`
}

type hidden struct{}

type HiddenBase struct {
	hidden `schema:",base"`
}

type Generic[T any] struct {
	Value T
}

type GenericBase struct {
	Generic[int] `schema:",base"`
}

type Fine struct {
	Root `schema:",base"`
}
